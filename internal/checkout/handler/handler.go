package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"tably/internal/checkout/service"
	"tably/pkg/platform/httputil"
)

// Handler serves the unauthenticated checkout routes.
type Handler struct {
	checkout *service.Service
	logger   *slog.Logger
}

func New(checkout *service.Service, logger *slog.Logger) *Handler {
	return &Handler{checkout: checkout, logger: logger}
}

// Register mounts the public checkout routes.
func (h *Handler) Register(r chi.Router) {
	r.Route("/checkout", func(r chi.Router) {
		r.Post("/create-intent", h.createIntent)
		r.Post("/confirm", h.confirm)
		r.Post("/cancel", h.cancel)
	})
}

type createIntentRequest struct {
	CartID   string `json:"cart_id"`
	Provider string `json:"provider,omitempty"`
}

func (h *Handler) createIntent(w http.ResponseWriter, r *http.Request) {
	var req createIntentRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	resp, err := h.checkout.CreateIntent(r.Context(), req.CartID, req.Provider)
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, resp)
}

type confirmRequest struct {
	IntentID        string          `json:"intent_id"`
	ProviderPayload json.RawMessage `json:"provider_payload,omitempty"`
}

func (h *Handler) confirm(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	result, err := h.checkout.Confirm(r.Context(), req.IntentID, req.ProviderPayload)
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

type cancelRequest struct {
	IntentID string `json:"intent_id"`
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	var req cancelRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	status, err := h.checkout.Cancel(r.Context(), req.IntentID)
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": string(status)})
}
