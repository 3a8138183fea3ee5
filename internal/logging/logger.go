package logging

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"checkout-gateway/internal/config"

	"github.com/grafana/loki-client-go/loki"
	slogloki "github.com/samber/slog-loki/v3"
)

// New returns a JSON logger on stdout, or a Loki-backed logger when a Loki
// URL is configured. Both carry the attributes stored with AppendCtx.
func New(cfg config.Logs) *slog.Logger {
	level := parseLevel(cfg.Level)
	if cfg.LokiURL == "" {
		return localLogger(level).With("service", cfg.Service)
	}

	logger, err := remoteLogger(cfg.LokiURL, level)
	if err != nil {
		logger = localLogger(level)
		logger.Error("loki client init failed, logging to stdout", "error", err)
	}
	return logger.With("service", cfg.Service)
}

func localLogger(level slog.Level) *slog.Logger {
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(&ContextHandler{Handler: h})
}

func remoteLogger(url string, level slog.Level) (*slog.Logger, error) {
	lokiConfig, err := loki.NewDefaultConfig(url)
	if err != nil {
		return nil, err
	}
	client, err := loki.New(lokiConfig)
	if err != nil {
		return nil, err
	}

	return slog.New(slogloki.Option{
		Level:  level,
		Client: client,
		AttrFromContext: []func(ctx context.Context) []slog.Attr{
			attrsFromContext,
		},
	}.NewLokiHandler()), nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
