package metrics

import (
	"io"
	"log/slog"

	"checkout-gateway/internal/config"

	"github.com/VictoriaMetrics/metrics"
)

var (
	OrdersCreated  = metrics.NewCounter(`checkout_orders_created_total`)
	GatewayErrors  = metrics.NewCounter(`checkout_gateway_errors_total`)
	PaymentsPaid   = metrics.NewCounter(`checkout_payments_total{result="paid"}`)
	PaymentsFailed = metrics.NewCounter(`checkout_payments_total{result="failed"}`)
	UnknownOrders  = metrics.NewCounter(`checkout_payments_total{result="unknown_order"}`)

	GatewayDuration = metrics.NewHistogram(`checkout_gateway_duration_seconds`)
)

// Setup starts pushing metrics when a push URL is configured.
func Setup(cfg config.Metrics, logger *slog.Logger) {
	if cfg.PushURL == "" {
		return
	}

	if err := metrics.InitPush(cfg.PushURL, cfg.PushInterval, `service="checkout-gateway"`, true); err != nil {
		logger.Error("metrics push init failed", "error", err)
	}
}

// Write emits all metrics in Prometheus text format.
func Write(w io.Writer) {
	metrics.WritePrometheus(w, true)
}
