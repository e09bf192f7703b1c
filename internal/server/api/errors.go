package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/suggestionapp/internal/common"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message, action string) {
	writeJSON(w, status, errorBody{Code: code, Message: message, Action: action})
}

func writeNotFound(w http.ResponseWriter) {
	writeError(w, http.StatusNotFound, "NOT_FOUND", "The requested resource does not exist.", "")
}

func writeUnauthorized(w http.ResponseWriter) {
	writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication is required.", "Sign in and retry.")
}

func writeForbidden(w http.ResponseWriter) {
	writeError(w, http.StatusForbidden, "FORBIDDEN", "You are not allowed to do this.", "")
}

func writeValidation(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", message, "Correct the request and retry.")
}

// statusFor maps a store error onto an HTTP status and error code.
func statusFor(err error) (int, string, string) {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, "NOT_FOUND", "The requested resource does not exist."
	case errors.Is(err, common.ErrorValidation):
		return http.StatusBadRequest, "VALIDATION_ERROR", "The request is invalid."
	case errors.Is(err, common.ErrSelfVote):
		return http.StatusForbidden, "SELF_VOTE", common.ErrSelfVote.Error()
	case errors.Is(err, common.ErrConflictingDecision):
		return http.StatusConflict, "CONFLICTING_DECISION", common.ErrConflictingDecision.Error()
	case errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED", "Authentication is required."
	case errors.Is(err, common.ErrorForbidden):
		return http.StatusForbidden, "FORBIDDEN", "You are not allowed to do this."
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred."
	}
}

// handleServiceError writes the response for err and logs unexpected ones.
// Internal details never reach the client.
func (s *Server) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, message := statusFor(err)
	action := ""
	if status == http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		action = "Please wait a moment and retry."
	}
	writeError(w, status, code, message, action)
}
