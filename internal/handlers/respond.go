package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/BallXZ48/markattendancebackend/internal/attendance"
	"github.com/BallXZ48/markattendancebackend/internal/course"
	"github.com/BallXZ48/markattendancebackend/internal/identity"
	"github.com/BallXZ48/markattendancebackend/internal/session"
)

var validate = validator.New()

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps service sentinels onto HTTP status codes. Everything
// unrecognized is a 500 and gets logged.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, course.ErrNotFound),
		errors.Is(err, identity.ErrNotFound),
		errors.Is(err, session.ErrNotFound),
		errors.Is(err, attendance.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, course.ErrCodeExists),
		errors.Is(err, identity.ErrEmailExists),
		errors.Is(err, session.ErrScheduleConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, attendance.ErrSessionClosed):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, session.ErrNotOwner):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, identity.ErrInvalidCredentials):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	default:
		log.Printf("Internal error: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// decodeAndValidate parses the JSON body into dst and runs validator tags.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return false
	}
	if err := validate.Struct(dst); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}
