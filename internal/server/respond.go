package server

import (
	"encoding/json"
	"net/http"
)

// errorDTO is the wire form of an API error.
type errorDTO struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, message string, status int) {
	if message == "" {
		message = http.StatusText(status)
	}
	respondJSON(w, status, errorDTO{Status: status, Message: message})
}

func notFoundAction(w http.ResponseWriter, _ *http.Request) {
	respondError(w, "", http.StatusNotFound)
}

func methodNotAllowedAction(w http.ResponseWriter, _ *http.Request) {
	respondError(w, "", http.StatusMethodNotAllowed)
}
