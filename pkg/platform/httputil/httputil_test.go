package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	dErrors "tably/pkg/domain-errors"
)

func TestWriteError(t *testing.T) {
	t.Run("internal error hides the underlying message", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/orders", nil)
		WriteError(w, r, nil, errors.New("pq: connection refused"))

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
		}

		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["error"] != "internal server error" {
			t.Fatalf("expected generic message for internal errors, got %q", body["error"])
		}
	})

	t.Run("missing table maps to 503 with reason", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/payments/config", nil)
		err := dErrors.New(dErrors.CodeUnavailable, "service not available").WithReason("missing_table")
		WriteError(w, r, nil, err)

		if w.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected status %d, got %d", http.StatusServiceUnavailable, w.Code)
		}

		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["error"] != "service not available" {
			t.Fatalf("unexpected error body %q", body["error"])
		}
		if body["reason"] != "missing_table" {
			t.Fatalf("expected reason missing_table, got %q", body["reason"])
		}
	})

	t.Run("invalid input includes the message", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/cart", nil)
		WriteError(w, r, nil, dErrors.New(dErrors.CodeInvalidInput, "items are required"))

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}

		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["error"] != "items are required" {
			t.Fatalf("expected validation message, got %q", body["error"])
		}
	})
}
