package idempotency

import (
	"net/http"
	"strings"
)

const (
	Header = "Idempotency-Key"
	// MaxKeyLength matches the limit the payment processor accepts.
	MaxKeyLength = 255
)

// Key returns the trimmed header value, or "" when absent or too long to forward.
func Key(r *http.Request) string {
	key := strings.TrimSpace(r.Header.Get(Header))
	if len(key) > MaxKeyLength {
		return ""
	}
	return key
}
