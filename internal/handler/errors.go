package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/pkordes/tripplanner/internal/domain"
	"github.com/pkordes/tripplanner/internal/provider"
)

// ErrorDetail is the body of every error response.
type ErrorDetail struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Hints   []string `json:"hints,omitempty"`
}

// ErrorResponse wraps ErrorDetail as {"error": {...}}.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, d ErrorDetail) {
	writeJSON(w, status, ErrorResponse{Error: d})
}

// requestError answers 422 for input rejected before it reaches a service
// (malformed JSON, bad path parameters).
func requestError(w http.ResponseWriter, message string) {
	writeDetail(w, http.StatusUnprocessableEntity, ErrorDetail{Code: "validation_error", Message: message})
}

// fail maps err to a status code. notFound is the message used for
// domain.ErrNotFound, because the handler knows what was being looked up.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeDetail(w, http.StatusUnprocessableEntity, ErrorDetail{Code: "validation_error", Message: unwrapMessage(err)})
	case errors.Is(err, domain.ErrNotFound):
		writeDetail(w, http.StatusNotFound, ErrorDetail{Code: "not_found", Message: notFound})
	case errors.Is(err, domain.ErrProvider):
		s.logger.WarnContext(r.Context(), "provider call failed",
			"error", err, "request_id", chimiddleware.GetReqID(r.Context()))
		writeDetail(w, http.StatusBadGateway, ErrorDetail{
			Code:    "provider_error",
			Message: providerMessage(err),
			Hints:   provider.Hints(err),
		})
	default:
		s.logger.ErrorContext(r.Context(), "request failed",
			"error", err, "request_id", chimiddleware.GetReqID(r.Context()))
		writeDetail(w, http.StatusInternalServerError, ErrorDetail{Code: "internal_error", Message: "internal server error"})
	}
}

// unavailable answers 503 for a route whose dependency is not configured.
func unavailable(w http.ResponseWriter, what string) {
	writeDetail(w, http.StatusServiceUnavailable, ErrorDetail{
		Code:    "unavailable",
		Message: what + " is not configured on this server",
	})
}

// unwrapMessage extracts the human-readable part from a wrapped validation error.
// e.g. "validation error: destination is required" → "destination is required"
func unwrapMessage(err error) string {
	msg := err.Error()
	prefix := domain.ErrValidation.Error() + ": "
	if i := strings.Index(msg, prefix); i >= 0 {
		return msg[i+len(prefix):]
	}
	return msg
}

func providerMessage(err error) string {
	var pe *provider.Error
	if errors.As(err, &pe) && pe.Message != "" {
		return pe.Message
	}
	return "an external service request failed"
}

// decodeBody decodes the JSON request body into v. Unknown fields are
// ignored. On failure it writes the error response and reports false.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		writeDetail(w, http.StatusRequestEntityTooLarge, ErrorDetail{
			Code:    "body_too_large",
			Message: fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit),
		})
	case errors.Is(err, io.EOF):
		requestError(w, "request body is required")
	default:
		requestError(w, "malformed request body: "+err.Error())
	}
	return false
}

// pathID parses the UUID path parameter name.
func pathID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s must be a UUID", name)
	}
	return id, nil
}
