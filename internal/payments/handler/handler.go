package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"tably/internal/payments/models"
	"tably/internal/payments/service"
	id "tably/pkg/domain"
	dErrors "tably/pkg/domain-errors"
	"tably/pkg/platform/httputil"
	"tably/pkg/requestcontext"
)

// Handler wires the authed payment routes to the payments service.
type Handler struct {
	payments *service.Service
	logger   *slog.Logger
}

func New(payments *service.Service, logger *slog.Logger) *Handler {
	return &Handler{payments: payments, logger: logger}
}

// Register mounts the payment routes.
func (h *Handler) Register(r chi.Router) {
	r.Route("/payments", func(r chi.Router) {
		r.Get("/config", h.getConfig)
		r.Put("/config", h.putConfig)
		r.Post("/intent", h.createIntent)
		r.Post("/capture", h.capture)
		r.Post("/refund", h.refund)
		r.Post("/split", h.split)
		r.Post("/intents/{id}/emit-event", h.emitEvent)
		r.Route("/providers", func(r chi.Router) {
			r.Get("/", h.listProviders)
			r.Post("/", h.createProvider)
			r.Patch("/{id}", h.patchProvider)
			r.Post("/{id}/make-default", h.makeDefault)
		})
		r.Post("/webhook/{provider}", h.webhook)
	})
}

func (h *Handler) getConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.payments.GetConfig(r.Context(), requestcontext.TenantID(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, cfg)
}

type putConfigRequest struct {
	Provider       string   `json:"provider"`
	LiveMode       bool     `json:"live_mode"`
	Currency       string   `json:"currency"`
	EnabledMethods []string `json:"enabled_methods"`
	PublishableKey string   `json:"publishable_key,omitempty"`
	SecretKey      string   `json:"secret_key,omitempty"`
}

func (h *Handler) putConfig(w http.ResponseWriter, r *http.Request) {
	var req putConfigRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	cfg, err := h.payments.UpsertConfig(r.Context(), requestcontext.TenantID(r.Context()), &models.ProviderConfig{
		Provider:       models.ProviderName(req.Provider),
		LiveMode:       req.LiveMode,
		Currency:       req.Currency,
		EnabledMethods: req.EnabledMethods,
		PublishableKey: req.PublishableKey,
		SecretKey:      req.SecretKey,
	})
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, cfg)
}

func (h *Handler) createIntent(w http.ResponseWriter, r *http.Request) {
	var req service.CreateIntentInput
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	intent, err := h.payments.CreateIntent(r.Context(), requestcontext.TenantID(r.Context()), req)
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, intent)
}

func (h *Handler) capture(w http.ResponseWriter, r *http.Request) {
	var req service.CaptureInput
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	result, err := h.payments.Capture(r.Context(), requestcontext.TenantID(r.Context()), req)
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) refund(w http.ResponseWriter, r *http.Request) {
	var req service.RefundInput
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	result, err := h.payments.Refund(r.Context(), requestcontext.TenantID(r.Context()), req)
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) split(w http.ResponseWriter, r *http.Request) {
	var req service.SplitInput
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	result, err := h.payments.Split(r.Context(), requestcontext.TenantID(r.Context()), req)
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

type emitEventRequest struct {
	EventType string          `json:"event_type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

func (h *Handler) emitEvent(w http.ResponseWriter, r *http.Request) {
	intentID, err := id.ParseIntentID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	var req emitEventRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	ev, err := h.payments.EmitEvent(r.Context(), requestcontext.TenantID(r.Context()), intentID, req.EventType, req.Payload)
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, ev)
}

func (h *Handler) listProviders(w http.ResponseWriter, r *http.Request) {
	records, err := h.payments.ListProviders(r.Context(), requestcontext.TenantID(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"providers": records})
}

func (h *Handler) createProvider(w http.ResponseWriter, r *http.Request) {
	var req service.CreateProviderInput
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	rec, err := h.payments.CreateProvider(r.Context(), requestcontext.TenantID(r.Context()), req)
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, rec)
}

func (h *Handler) patchProvider(w http.ResponseWriter, r *http.Request) {
	providerID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, h.logger, dErrors.New(dErrors.CodeInvalidInput, "invalid provider id"))
		return
	}
	var patch models.ProviderPatch
	if err := httputil.DecodeJSON(r, &patch); err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	rec, err := h.payments.PatchProvider(r.Context(), requestcontext.TenantID(r.Context()), providerID, patch)
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rec)
}

func (h *Handler) makeDefault(w http.ResponseWriter, r *http.Request) {
	providerID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, h.logger, dErrors.New(dErrors.CodeInvalidInput, "invalid provider id"))
		return
	}
	if err := h.payments.MakeDefault(r.Context(), requestcontext.TenantID(r.Context()), providerID); err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// webhook acknowledges every inbound provider callback, even when
// processing fails, so upstream providers do not retry-storm us.
func (h *Handler) webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "received"})
		return
	}
	h.payments.HandleWebhook(r.Context(), requestcontext.TenantID(r.Context()), chi.URLParam(r, "provider"), body)
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "received"})
}
