// Package httputil holds the JSON envelope helpers shared by every handler.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "notify-gateway/pkg/domain-errors"
)

// ErrorResponse is the single error envelope the API returns.
type ErrorResponse struct {
	Error string `json:"error"`
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates err to a status and writes {"error": message}.
// Internal errors never leak their message.
func WriteError(w http.ResponseWriter, err error) {
	WriteErrorStatus(w, StatusFor(err), err)
}

// WriteErrorStatus writes the error envelope with an explicit status.
func WriteErrorStatus(w http.ResponseWriter, status int, err error) {
	WriteJSON(w, status, ErrorResponse{Error: messageFor(err)})
}

// StatusFor maps err to an HTTP status through its domain code.
func StatusFor(err error) int {
	return dErrors.ToHTTPStatus(dErrors.CodeOf(err))
}

func messageFor(err error) string {
	var de *dErrors.Error
	if !errors.As(err, &de) || de.Code == dErrors.CodeInternal {
		return "internal error"
	}
	return de.Message
}
