package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"tably/internal/analytics/service"
	id "tably/pkg/domain"
	"tably/pkg/platform/httputil"
	"tably/pkg/requestcontext"
)

// Handler wires the read-only analytics routes to the analytics service.
type Handler struct {
	analytics *service.Service
	logger    *slog.Logger
}

func New(analytics *service.Service, logger *slog.Logger) *Handler {
	return &Handler{analytics: analytics, logger: logger}
}

// Register mounts the authed analytics routes.
func (h *Handler) Register(r chi.Router) {
	r.Route("/analytics", func(r chi.Router) {
		r.Get("/payment-funnel", h.paymentFunnel)
		r.Get("/peak-hours", h.peakHours)
		r.Get("/revenue-series", h.revenueSeries)
		r.Get("/revenue-breakdown", h.revenueBreakdown)
		r.Get("/fulfillment-timeline", h.fulfillmentTimeline)
	})
}

func (h *Handler) paymentFunnel(w http.ResponseWriter, r *http.Request) {
	report, err := h.analytics.PaymentFunnel(r.Context(), tenant(r), window(r))
	h.respond(w, r, report, err)
}

func (h *Handler) peakHours(w http.ResponseWriter, r *http.Request) {
	report, err := h.analytics.PeakHours(r.Context(), tenant(r), window(r))
	h.respond(w, r, report, err)
}

func (h *Handler) revenueSeries(w http.ResponseWriter, r *http.Request) {
	report, err := h.analytics.RevenueSeries(r.Context(), tenant(r), window(r))
	h.respond(w, r, report, err)
}

func (h *Handler) revenueBreakdown(w http.ResponseWriter, r *http.Request) {
	report, err := h.analytics.RevenueBreakdown(r.Context(), tenant(r), window(r))
	h.respond(w, r, report, err)
}

func (h *Handler) fulfillmentTimeline(w http.ResponseWriter, r *http.Request) {
	report, err := h.analytics.FulfillmentTimeline(r.Context(), tenant(r), window(r))
	h.respond(w, r, report, err)
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, report any, err error) {
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, report)
}

func tenant(r *http.Request) id.TenantID {
	return requestcontext.TenantID(r.Context())
}

func window(r *http.Request) string {
	return r.URL.Query().Get("window")
}
