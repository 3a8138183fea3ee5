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

	"checkout-gateway/internal/api"
	"checkout-gateway/internal/config"
	"checkout-gateway/internal/database"
	"checkout-gateway/internal/infrastructure/payment"
	"checkout-gateway/internal/logging"
	"checkout-gateway/internal/metrics"
	"checkout-gateway/internal/repo"
	"checkout-gateway/internal/service"
	"checkout-gateway/web"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.MustLoad(".env")
	logger := logging.New(cfg.Logs)
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	metrics.Setup(cfg.Metrics, logger)

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		logger.Error("database open failed", "driver", cfg.Database.Driver, "error", err)
		os.Exit(1)
	}
	dbService := database.New(db, cfg.Database.Driver)
	defer dbService.Close()
	logger.Info("database ready", "driver", cfg.Database.Driver, "path", cfg.Database.Path)

	gateway := newGateway(cfg.Gateway)
	if cfg.Gateway.Configured() {
		logger.Info("payment gateway configured", "mode", cfg.Gateway.Mode, "key_prefix", keyPrefix(cfg.Gateway.KeyID))
	} else {
		logger.Warn("payment gateway keys not set, order creation will fail")
	}

	orderRepo := repo.NewOrderRepo(db, cfg.Database.Driver)
	orderService := service.NewOrderService(orderRepo, gateway, cfg.Gateway.KeySecret, cfg.Checkout.Currencies, logger)
	handler := api.NewHandler(logger, orderService, dbService)

	gin.SetMode(gin.ReleaseMode)
	router, err := api.NewRouter(cfg.Server, logger, handler, web.Static())
	if err != nil {
		logger.Error("router setup failed", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.Gateway.Timeout + 5*time.Second,
	}

	go func() {
		logger.Info("http listening", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", "error", err)
	}
	logger.Info("checkout-gateway shutdown complete")
}

func newGateway(cfg config.Gateway) payment.PaymentGateway {
	if cfg.Mode == config.GatewayModeMock {
		return payment.NewMockGateway(cfg.KeyID, cfg.KeySecret)
	}
	return payment.NewRazorpayGateway(cfg.BaseURL, cfg.KeyID, cfg.KeySecret, cfg.Timeout)
}

func keyPrefix(keyID string) string {
	if len(keyID) > 12 {
		return keyID[:12] + "..."
	}
	return keyID
}
