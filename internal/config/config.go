package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config keeps runtime settings for the planner.
type Config struct {
	// TelegramToken enables the bot. The HTTP API runs without it.
	TelegramToken string
	DatabaseURL   string
	HTTPAddr      string
	// APIToken, when set, is required as a bearer token on /v1 routes.
	APIToken string
	// CORSOrigins lists browser origins allowed to call the API. Empty disables
	// CORS handling.
	CORSOrigins    []string
	ReportInterval time.Duration
	// ReportTime is an HH:MM wall clock time. When set it replaces ReportInterval.
	ReportTime    string
	MaxInstances  int
	ShutdownGrace time.Duration
}

// environment is the raw variable set, decoded by envconfig.
type environment struct {
	TelegramToken       string        `envconfig:"TELEGRAM_TOKEN"`
	DatabaseURL         string        `envconfig:"DATABASE_URL" default:"workspace_planner.db"`
	HTTPAddr            string        `envconfig:"HTTP_ADDR" default:":8080"`
	APIToken            string        `envconfig:"API_TOKEN"`
	CORSOrigins         []string      `envconfig:"CORS_ORIGINS"`
	ReportIntervalHours float64       `envconfig:"REPORT_INTERVAL_HOURS" default:"5"`
	ReportTime          string        `envconfig:"REPORT_TIME"`
	MaxInstances        int           `envconfig:"MAX_RECURRENCE_INSTANCES" default:"100"`
	ShutdownGrace       time.Duration `envconfig:"SHUTDOWN_GRACE" default:"5s"`
}

// Load reads configuration from environment variables. A .env file in the
// working directory is loaded first if present; variables already set in the
// environment win.
func Load() (Config, error) {
	_ = godotenv.Load()

	var env environment
	if err := envconfig.Process("", &env); err != nil {
		return Config{}, fmt.Errorf("load env: %w", err)
	}

	if env.MaxInstances < 1 {
		return Config{}, fmt.Errorf("MAX_RECURRENCE_INSTANCES must be a positive integer, got %d", env.MaxInstances)
	}
	if env.ShutdownGrace < 0 {
		return Config{}, fmt.Errorf("SHUTDOWN_GRACE must not be negative, got %s", env.ShutdownGrace)
	}

	cfg := Config{
		TelegramToken:  strings.TrimSpace(env.TelegramToken),
		DatabaseURL:    strings.TrimSpace(env.DatabaseURL),
		HTTPAddr:       strings.TrimSpace(env.HTTPAddr),
		APIToken:       strings.TrimSpace(env.APIToken),
		CORSOrigins:    origins(env.CORSOrigins),
		ReportInterval: hours(env.ReportIntervalHours),
		ReportTime:     strings.TrimSpace(env.ReportTime),
		MaxInstances:   env.MaxInstances,
		ShutdownGrace:  env.ShutdownGrace,
	}
	return cfg, nil
}

// hours converts the configured report interval. Non-positive values fall
// back to the default.
func hours(h float64) time.Duration {
	if h <= 0 {
		return 5 * time.Hour
	}
	return time.Duration(h * float64(time.Hour))
}

func origins(raw []string) []string {
	var out []string
	for _, o := range raw {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
