package http

import (
	"encoding/json"
	"net/http"
)

const (
	msgNotEnoughData  = "Not enough data to checkout"
	msgInternalServer = "Internal Server Error"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// respondRaw writes an already encoded JSON document.
func respondRaw(w http.ResponseWriter, status int, body []byte) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err := w.Write(body)
	return err
}

func respondError(w http.ResponseWriter, status int, message string) error {
	return respondJSON(w, status, ErrorResponse{Error: message})
}
