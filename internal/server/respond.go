package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/somilnegi/AI-Interview-Prep-App/internal/session"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorBody{Code: code, Message: message})
}

// statusFor maps a session error kind to its HTTP status and error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, session.ErrValidation):
		return http.StatusBadRequest, "validation"
	case errors.Is(err, session.ErrAuthorization):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, session.ErrInvalidState):
		return http.StatusConflict, "invalid_state"
	case errors.Is(err, session.ErrUpstreamFormat):
		return http.StatusBadGateway, "upstream_format"
	case errors.Is(err, session.ErrUpstream):
		return http.StatusBadGateway, "upstream"
	default:
		return http.StatusInternalServerError, "storage"
	}
}

// messageFor hides causes of server-side failures from clients.
func messageFor(err error, status int) string {
	switch status {
	case http.StatusInternalServerError:
		return "internal storage error"
	case http.StatusBadGateway:
		var serr *session.Error
		if errors.As(err, &serr) {
			return serr.Kind.Error()
		}
		return "upstream failure"
	}
	var serr *session.Error
	if errors.As(err, &serr) && serr.Msg != "" {
		return serr.Msg
	}
	return err.Error()
}
