package domain

import "time"

type Customer struct {
	ID        string    `json:"_id,omitempty"`
	ClerkID   string    `json:"clerkId"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}
