// Package httpapi assembles the HTTP surface: public customer routes,
// the authenticated staff surface, and the operational endpoints.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	analyticshandler "tably/internal/analytics/handler"
	carthandler "tably/internal/cart/handler"
	checkouthandler "tably/internal/checkout/handler"
	menuhandler "tably/internal/menu/handler"
	orderhandler "tably/internal/order/handler"
	paymentshandler "tably/internal/payments/handler"
	"tably/internal/platform/middleware"
	"tably/internal/realtime"
	"tably/pkg/platform/httputil"
)

// Deps carries everything the router mounts.
type Deps struct {
	Logger    *slog.Logger
	Validator middleware.TokenValidator

	Menu      *menuhandler.Handler
	Cart      *carthandler.Handler
	Checkout  *checkouthandler.Handler
	Orders    *orderhandler.Handler
	Payments  *paymentshandler.Handler
	Analytics *analyticshandler.Handler
	Realtime  *realtime.Handler

	// Health probes. Nil probes are skipped.
	CheckDB    func(ctx context.Context) error
	CheckRedis func(ctx context.Context) error
}

// NewRouter wires the full HTTP surface. Customer-facing routes (menu, QR
// entry, cart, checkout) are public; staff routes require a bearer token.
func NewRouter(deps Deps) chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", healthHandler(deps))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Public customer surface.
	r.Group(func(r chi.Router) {
		deps.Menu.Register(r)
		deps.Cart.Register(r)
		deps.Checkout.Register(r)
	})

	// Authenticated staff surface.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(deps.Validator, deps.Logger))
		deps.Orders.Register(r)
		deps.Payments.Register(r)
		deps.Analytics.Register(r)
		deps.Realtime.Register(r)
	})

	return r
}

func healthHandler(deps Deps) http.HandlerFunc {
	type check struct {
		Name string `json:"name"`
		OK   bool   `json:"ok"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		checks := []check{}
		healthy := true
		run := func(name string, probe func(ctx context.Context) error) {
			if probe == nil {
				return
			}
			err := probe(ctx)
			if err != nil {
				healthy = false
				deps.Logger.Warn("health probe failed", "probe", name, "error", err)
			}
			checks = append(checks, check{Name: name, OK: err == nil})
		}
		run("postgres", deps.CheckDB)
		run("redis", deps.CheckRedis)

		status := http.StatusOK
		state := "ok"
		if !healthy {
			status = http.StatusServiceUnavailable
			state = "degraded"
		}
		httputil.WriteJSON(w, status, map[string]any{"status": state, "checks": checks})
	}
}
