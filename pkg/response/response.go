// Package response writes the API's JSON responses.
//
// Success payloads are written as-is (`{"users": ...}`, `{"card": ...}`,
// `{"token": ...}`); error payloads always carry a single short `msg`
// field and never a stack trace.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/bcardhq/bcard-api/pkg/httperr"
	"github.com/bcardhq/bcard-api/pkg/logger"
)

func write(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}

// JSON sends an arbitrary payload with the given status.
func JSON(w http.ResponseWriter, status int, payload interface{}) {
	write(w, status, payload)
}

// OK sends a 200 with the payload.
func OK(w http.ResponseWriter, payload interface{}) {
	write(w, http.StatusOK, payload)
}

// Created sends a 201 with the payload.
func Created(w http.ResponseWriter, payload interface{}) {
	write(w, http.StatusCreated, payload)
}

// Msg sends `{"msg": msg}` with the given status.
func Msg(w http.ResponseWriter, status int, msg string) {
	write(w, status, map[string]string{"msg": msg})
}

// Error maps err to its HTTP status. Known kinds (httperr.Error) keep
// their message; anything else is logged and reported as a generic 500.
func Error(w http.ResponseWriter, err error) {
	if e := httperr.From(err); e != nil {
		Msg(w, e.Status, e.Msg)
		return
	}
	logger.Error("unexpected error", "error", err)
	Msg(w, http.StatusInternalServerError, "Internal Server Error")
}

// NotFoundHandler serves the generic payload for unrecognised routes.
func NotFoundHandler(w http.ResponseWriter, _ *http.Request) {
	Msg(w, http.StatusNotFound, "Route does not exist")
}
