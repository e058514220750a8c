package handlers

import (
	"encoding/json"
	"net/http"

	"todolist/internal/apperrors"
)

// Response is the uniform envelope every endpoint returns. Status mirrors
// the HTTP status code; Data is null on errors.
type Response struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func writeJSON(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Response{Status: status, Message: message, Data: data})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, message, nil)
}

// writeBusinessError maps a business error to its status and client-safe
// message. Errors outside the taxonomy become a generic 500.
func writeBusinessError(w http.ResponseWriter, err error) {
	writeError(w, apperrors.Status(err), apperrors.Message(err))
}
