package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"gameplatform/internal/session"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
}

// statusFor maps the session rejection taxonomy onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrSessionFull), errors.Is(err, session.ErrInvalidMove):
		return http.StatusConflict
	case errors.Is(err, session.ErrNotAParticipant), errors.Is(err, session.ErrNotYourTurn):
		return http.StatusForbidden
	case errors.Is(err, session.ErrUnknownGameType):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
