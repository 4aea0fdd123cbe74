package realtime

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	dErrors "tably/pkg/domain-errors"
	"tably/pkg/platform/httputil"
	"tably/pkg/requestcontext"
)

const heartbeatInterval = 25 * time.Second

// Handler streams refresh hints to dashboards over SSE.
type Handler struct {
	hub    *Hub
	logger *slog.Logger
}

func NewHandler(hub *Hub, logger *slog.Logger) *Handler {
	return &Handler{hub: hub, logger: logger}
}

// Register mounts the realtime routes. Callers wrap with RequireAuth.
func (h *Handler) Register(r chi.Router) {
	r.Get("/realtime/subscribe", h.subscribe)
}

// subscribe opens an SSE stream of refresh hints for the authenticated
// tenant. ?topics=orders,payment_intents narrows the watch set; the default
// is every topic. The subscription is released when the client disconnects.
func (h *Handler) subscribe(w http.ResponseWriter, r *http.Request) {
	tenantID := requestcontext.TenantID(r.Context())
	if tenantID.IsNil() {
		httputil.WriteError(w, r, h.logger, dErrors.New(dErrors.CodeUnauthorized, "missing tenant ID"))
		return
	}

	topics := Topics()
	if raw := r.URL.Query().Get("topics"); raw != "" {
		topics = topics[:0]
		for _, t := range strings.Split(raw, ",") {
			t = strings.TrimSpace(t)
			if !ValidTopic(t) {
				httputil.WriteError(w, r, h.logger, dErrors.Newf(dErrors.CodeInvalidInput, "unknown topic %q", t))
				return
			}
			topics = append(topics, t)
		}
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		httputil.WriteError(w, r, h.logger, dErrors.New(dErrors.CodeInternal, "streaming unsupported"))
		return
	}

	sub := h.hub.Subscribe(tenantID, topics...)
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case refresh, ok := <-sub.C():
			if !ok {
				return
			}
			payload, err := json.Marshal(refresh)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: refresh\ndata: %s\n\n", payload)
			flusher.Flush()
		}
	}
}
