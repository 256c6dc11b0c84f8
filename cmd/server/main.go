package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jcmexdev/lahma-store/internal/auth"
	"github.com/jcmexdev/lahma-store/internal/cart"
	"github.com/jcmexdev/lahma-store/internal/catalog"
	"github.com/jcmexdev/lahma-store/internal/config"
	"github.com/jcmexdev/lahma-store/internal/geocode"
	"github.com/jcmexdev/lahma-store/internal/httpx"
	"github.com/jcmexdev/lahma-store/internal/order"
	"github.com/jcmexdev/lahma-store/internal/order/orderlog"
	logsqlite "github.com/jcmexdev/lahma-store/internal/order/orderlog/sqlite"
	"github.com/jcmexdev/lahma-store/internal/pkg/kvstore"
	"github.com/jcmexdev/lahma-store/internal/pkg/telemetry"
)

func main() {
	telemetry.InitLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	shutdown, err := telemetry.SetupTracer(ctx, cfg.ServiceName)
	if err != nil {
		slog.Error("failed to initialise tracer", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			slog.Error("tracer shutdown error", "error", err)
		}
	}()

	store := kvstore.NewRedis(cfg.RedisAddr, "lahma")
	defer store.Close()

	var auditLog orderlog.Repository
	if cfg.OrderLogPath != "" {
		repo, err := logsqlite.Open(cfg.OrderLogPath)
		if err != nil {
			slog.Error("failed to open order audit log", "path", cfg.OrderLogPath, "error", err)
			os.Exit(1)
		}
		defer repo.Close()
		auditLog = repo
	}

	catalogSvc, err := catalog.NewService(ctx, store)
	if err != nil {
		slog.Error("failed to initialise catalog", "error", err)
		os.Exit(1)
	}

	carts := cart.NewService(store)
	orders := order.NewRepository(store, auditLog)

	// Cross-context signal: other processes writing the orders key (another
	// instance, an ops script) show up here so the dashboard badge stays
	// honest without polling.
	go watchOrders(ctx, store, orders)

	geocoder := geocode.New(cfg.GeocodeURL)
	authenticator := auth.New(cfg.AdminEmail, cfg.AdminPassword, cfg.JWTSecret, cfg.SessionTTL)

	handler := httpx.NewHandler(catalogSvc, carts, orders, geocoder, authenticator)
	router := httpx.NewRouter(handler)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           otelhttp.NewHandler(router, "http.server"),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("storefront HTTP server running", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}
	slog.Info("storefront stopped")
}

// watchOrders logs order-collection changes arriving from other contexts.
func watchOrders(ctx context.Context, store kvstore.Store, orders *order.Repository) {
	ch, err := store.Watch(ctx, "orders")
	if err != nil {
		slog.Warn("order change watch unavailable", "error", err)
		return
	}
	for range ch {
		n, err := orders.UnseenCount(ctx)
		if err != nil {
			slog.Warn("failed to refresh unseen count", "error", err)
			continue
		}
		slog.Info("order collection changed", "unseen", n)
	}
}
