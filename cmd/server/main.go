package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	analyticshandler "tably/internal/analytics/handler"
	analyticsservice "tably/internal/analytics/service"
	analyticsstore "tably/internal/analytics/store"
	carthandler "tably/internal/cart/handler"
	cartservice "tably/internal/cart/service"
	cartstore "tably/internal/cart/store"
	checkouthandler "tably/internal/checkout/handler"
	checkoutservice "tably/internal/checkout/service"
	checkoutstore "tably/internal/checkout/store"
	httpapi "tably/internal/http"
	menuhandler "tably/internal/menu/handler"
	menuservice "tably/internal/menu/service"
	menustore "tably/internal/menu/store"
	orderhandler "tably/internal/order/handler"
	orderservice "tably/internal/order/service"
	orderstore "tably/internal/order/store"
	paymentshandler "tably/internal/payments/handler"
	paymentsservice "tably/internal/payments/service"
	paymentsstore "tably/internal/payments/store"
	"tably/internal/platform/config"
	"tably/internal/platform/httpserver"
	"tably/internal/platform/logger"
	"tably/internal/platform/middleware"
	"tably/internal/platform/postgres"
	redisplatform "tably/internal/platform/redis"
	"tably/internal/realtime"
	tenantstore "tably/internal/tenant/store"
)

// main wires dependencies and owns the process lifecycle. Business logic
// lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	db, err := postgres.Open(cfg.DatabaseURL)
	if err != nil {
		log.Error("postgres connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := redisplatform.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if rdb != nil {
		defer rdb.Close()
	}

	// Fan-out: the hub serves local SSE subscribers. With redis configured,
	// writes publish through redis so every instance's hub sees them;
	// without it, services notify the hub directly.
	hub := realtime.NewHub(config.RealtimeDebounce)
	var notifier realtime.Notifier = hub
	if rdb != nil {
		notifier = realtime.NewRedisNotifier(rdb.Client, log)
	}

	tenants := tenantstore.NewPostgres(db)
	menus := menustore.NewPostgres(db)
	carts := cartstore.NewPostgres(db)
	orders := orderstore.NewPostgres(db)
	payments := paymentsstore.NewPostgres(db)
	paymentConfig := paymentsstore.NewFallbackConfigStore(payments, log)
	checkout := checkoutstore.NewPostgres(db)
	analytics := analyticsstore.NewPostgres(db)

	menuSvc := menuservice.New(menus, tenants)
	cartSvc := cartservice.New(carts, menus, tenants)
	orderSvc := orderservice.New(orders, notifier)
	paymentsSvc := paymentsservice.New(payments, paymentConfig, payments, notifier, log)
	checkoutSvc := checkoutservice.New(checkout, cartSvc, notifier)
	analyticsSvc := analyticsservice.New(analytics)

	validator := middleware.NewJWTValidator(cfg.JWTSigningKey)

	router := httpapi.NewRouter(httpapi.Deps{
		Logger:    log,
		Validator: validator,
		Menu:      menuhandler.New(menuSvc, log),
		Cart:      carthandler.New(cartSvc, log),
		Checkout:  checkouthandler.New(checkoutSvc, log),
		Orders:    orderhandler.New(orderSvc, log),
		Payments:  paymentshandler.New(paymentsSvc, log),
		Analytics: analyticshandler.New(analyticsSvc, log),
		Realtime:  realtime.NewHandler(hub, log),
		CheckDB:   db.PingContext,
		CheckRedis: func(ctx context.Context) error {
			if rdb == nil {
				return nil
			}
			return rdb.Health(ctx)
		},
	})

	srv := httpserver.New(cfg.Addr, router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if rdb != nil {
		listener := realtime.NewListener(rdb.Client, hub, log)
		g.Go(func() error {
			err := listener.Run(gctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
