package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"tably/internal/menu/service"
	"tably/pkg/platform/httputil"
)

// Handler serves the unauthenticated menu and QR entry routes.
type Handler struct {
	menus  *service.Service
	logger *slog.Logger
}

func New(menus *service.Service, logger *slog.Logger) *Handler {
	return &Handler{menus: menus, logger: logger}
}

// Register mounts the public menu routes.
func (h *Handler) Register(r chi.Router) {
	r.Get("/menu/public", h.publicMenu)
	r.Get("/qr/{tenantCode}/{tableNumber}", h.qrEntry)
}

func (h *Handler) publicMenu(w http.ResponseWriter, r *http.Request) {
	menu, err := h.menus.PublicMenu(r.Context(), r.URL.Query().Get("tenantCode"))
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, menu)
}

func (h *Handler) qrEntry(w http.ResponseWriter, r *http.Request) {
	menu, err := h.menus.QREntry(r.Context(), chi.URLParam(r, "tenantCode"), chi.URLParam(r, "tableNumber"))
	if err != nil {
		httputil.WriteError(w, r, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, menu)
}
