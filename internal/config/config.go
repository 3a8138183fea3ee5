package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Gateway struct {
	KeyID     string
	KeySecret string
	BaseURL   string
	Timeout   time.Duration
	Mode      string
}

// Configured reports whether both halves of the key pair are present.
func (g Gateway) Configured() bool {
	return g.KeyID != "" && g.KeySecret != ""
}

type Database struct {
	Driver string
	Path   string
}

type Server struct {
	Addr         string
	AllowOrigins []string
}

type Checkout struct {
	Currencies []string
}

type Logs struct {
	Level   string
	LokiURL string
	Service string
}

type Metrics struct {
	PushURL      string
	PushInterval time.Duration
}

type Config struct {
	Gateway  Gateway
	Database Database
	Server   Server
	Checkout Checkout
	Logs     Logs
	Metrics  Metrics
}

const (
	GatewayModeLive = "live"
	GatewayModeMock = "mock"

	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

var defaults = map[string]any{
	"razorpay_key_id":          "",
	"razorpay_key_secret":      "",
	"gateway_base_url":         "https://api.razorpay.com",
	"gateway_timeout_ms":       10_000,
	"gateway_mode":             GatewayModeLive,
	"db_driver":                DriverSQLite,
	"db_path":                  "orders.db",
	"http_addr":                ":8000",
	"supported_currencies":     "INR",
	"cors_allow_origins":       "*",
	"log_level":                "info",
	"loki_url":                 "",
	"metrics_push_url":         "",
	"metrics_push_interval_ms": 10_000,
}

// Load reads the process environment, after merging any of the given .env
// files that exist. Variables already set in the environment win.
func Load(envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	v := viper.New()
	v.AutomaticEnv()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}

	cfg := &Config{
		Gateway: Gateway{
			KeyID:     v.GetString("razorpay_key_id"),
			KeySecret: v.GetString("razorpay_key_secret"),
			BaseURL:   strings.TrimRight(v.GetString("gateway_base_url"), "/"),
			Timeout:   time.Duration(v.GetInt("gateway_timeout_ms")) * time.Millisecond,
			Mode:      strings.ToLower(v.GetString("gateway_mode")),
		},
		Database: Database{
			Driver: strings.ToLower(v.GetString("db_driver")),
			Path:   v.GetString("db_path"),
		},
		Server: Server{
			Addr:         v.GetString("http_addr"),
			AllowOrigins: splitList(v.GetString("cors_allow_origins")),
		},
		Checkout: Checkout{
			Currencies: upper(splitList(v.GetString("supported_currencies"))),
		},
		Logs: Logs{
			Level:   v.GetString("log_level"),
			LokiURL: v.GetString("loki_url"),
			Service: "checkout-gateway",
		},
		Metrics: Metrics{
			PushURL:      v.GetString("metrics_push_url"),
			PushInterval: time.Duration(v.GetInt("metrics_push_interval_ms")) * time.Millisecond,
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func MustLoad(envFiles ...string) *Config {
	cfg, err := Load(envFiles...)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) validate() error {
	switch c.Gateway.Mode {
	case GatewayModeLive, GatewayModeMock:
	default:
		return fmt.Errorf("unknown GATEWAY_MODE %q", c.Gateway.Mode)
	}
	switch c.Database.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.Database.Driver)
	}
	if c.Database.Path == "" {
		return errors.New("DB_PATH is empty")
	}
	if len(c.Checkout.Currencies) == 0 {
		return errors.New("SUPPORTED_CURRENCIES is empty")
	}
	if c.Gateway.Timeout <= 0 {
		return errors.New("GATEWAY_TIMEOUT_MS must be positive")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func upper(ss []string) []string {
	for i, s := range ss {
		ss[i] = strings.ToUpper(s)
	}
	return ss
}
