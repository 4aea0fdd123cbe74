// Package httputil holds the JSON boundary helpers shared by all handlers.
package httputil

import (
	"encoding/json"
	"log/slog"
	"net/http"

	dErrors "tably/pkg/domain-errors"
	"tably/pkg/requestcontext"
)

// ErrorBody is the wire shape for every error response.
type ErrorBody struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

// WriteJSON renders v as JSON with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps a domain error onto the {"error", "reason"} body.
// Uncoded errors become a generic 500; the original error is logged, not leaked.
func WriteError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status := dErrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError && logger != nil {
		logger.ErrorContext(r.Context(), "request failed",
			"error", err,
			"path", r.URL.Path,
			"request_id", requestcontext.RequestID(r.Context()),
		)
	}
	WriteJSON(w, status, ErrorBody{Error: dErrors.Message(err), Reason: dErrors.ReasonOf(err)})
}

// DecodeJSON decodes the request body into dst, rejecting unknown garbage
// with a 400-coded error.
func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return dErrors.New(dErrors.CodeInvalidInput, "request body is required")
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid JSON body")
	}
	return nil
}
