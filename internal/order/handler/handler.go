package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"tably/internal/order/service"
	id "tably/pkg/domain"
	"tably/pkg/platform/httputil"
	"tably/pkg/requestcontext"
)

// Handler wires the order and kitchen-display routes to the order service.
type Handler struct {
	orders *service.Service
	logger *slog.Logger
}

func New(orders *service.Service, logger *slog.Logger) *Handler {
	return &Handler{orders: orders, logger: logger}
}

// Register mounts the authed order and KDS routes.
func (h *Handler) Register(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Get("/", h.listOrders)
		r.Get("/{id}", h.getOrder)
		r.Post("/{id}/emit-status", h.emitStatus)
	})
	r.Route("/kds", func(r chi.Router) {
		r.Get("/lanes", h.lanes)
		r.Post("/orders/{id}/advance", h.advance)
	})
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListOrders(r.Context(), requestcontext.TenantID(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := id.ParseOrderID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	detail, err := h.orders.GetOrder(r.Context(), requestcontext.TenantID(r.Context()), orderID)
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, detail)
}

type emitStatusRequest struct {
	ToStatus string `json:"to_status"`
	Note     string `json:"note,omitempty"`
}

func (h *Handler) emitStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := id.ParseOrderID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	var req emitStatusRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	ev, err := h.orders.EmitStatus(r.Context(), requestcontext.TenantID(r.Context()), orderID, req.ToStatus, req.Note)
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ev)
}

func (h *Handler) lanes(w http.ResponseWriter, r *http.Request) {
	lanes, err := h.orders.Lanes(r.Context(), requestcontext.TenantID(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, lanes)
}

type advanceRequest struct {
	ToStatus string `json:"to_status"`
}

func (h *Handler) advance(w http.ResponseWriter, r *http.Request) {
	orderID, err := id.ParseOrderID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	var req advanceRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	if _, err := h.orders.Advance(r.Context(), requestcontext.TenantID(r.Context()), orderID, req.ToStatus); err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
