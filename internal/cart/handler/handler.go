package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"tably/internal/cart/service"
	id "tably/pkg/domain"
	"tably/pkg/platform/httputil"
)

// Handler serves the unauthenticated cart routes.
type Handler struct {
	carts  *service.Service
	logger *slog.Logger
}

func New(carts *service.Service, logger *slog.Logger) *Handler {
	return &Handler{carts: carts, logger: logger}
}

// Register mounts the public cart routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/cart", h.createCart)
	r.Get("/cart/{id}", h.getCart)
}

type createCartRequest struct {
	TenantCode string              `json:"tenant_code"`
	OrderType  string              `json:"order_type"`
	TableID    *id.TableID         `json:"table_id,omitempty"`
	Items      []service.ItemInput `json:"items"`
}

func (h *Handler) createCart(w http.ResponseWriter, r *http.Request) {
	var req createCartRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	cartID, err := h.carts.CreateCart(r.Context(), req.TenantCode, req.OrderType, req.TableID, req.Items)
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]string{"cart_id": cartID.String()})
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	cartID, err := id.ParseCartID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	view, err := h.carts.GetCart(r.Context(), cartID)
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}
