package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetEnv removes the planner variables for the duration of the test. An
// empty but present variable would still be decoded by envconfig.
func unsetEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"TELEGRAM_TOKEN", "DATABASE_URL", "HTTP_ADDR", "API_TOKEN", "CORS_ORIGINS",
		"REPORT_INTERVAL_HOURS", "REPORT_TIME", "MAX_RECURRENCE_INSTANCES", "SHUTDOWN_GRACE",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoad_Defaults(t *testing.T) {
	unsetEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "workspace_planner.db", cfg.DatabaseURL)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 5*time.Hour, cfg.ReportInterval)
	assert.Equal(t, 100, cfg.MaxInstances)
	assert.Equal(t, 5*time.Second, cfg.ShutdownGrace)
	assert.Empty(t, cfg.TelegramToken)
	assert.Empty(t, cfg.CORSOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	unsetEnv(t)
	t.Setenv("TELEGRAM_TOKEN", " abc ")
	t.Setenv("REPORT_INTERVAL_HOURS", "1.5")
	t.Setenv("REPORT_TIME", "08:00")
	t.Setenv("MAX_RECURRENCE_INSTANCES", "250")
	t.Setenv("SHUTDOWN_GRACE", "10s")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "abc", cfg.TelegramToken)
	assert.Equal(t, 90*time.Minute, cfg.ReportInterval)
	assert.Equal(t, "08:00", cfg.ReportTime)
	assert.Equal(t, 250, cfg.MaxInstances)
	assert.Equal(t, 10*time.Second, cfg.ShutdownGrace)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestLoad_RejectsBadValues(t *testing.T) {
	for _, tc := range []struct{ key, value string }{
		{"MAX_RECURRENCE_INSTANCES", "0"},
		{"MAX_RECURRENCE_INSTANCES", "many"},
		{"SHUTDOWN_GRACE", "soon"},
		{"SHUTDOWN_GRACE", "-1s"},
		{"REPORT_INTERVAL_HOURS", "often"},
	} {
		t.Run(tc.key+"="+tc.value, func(t *testing.T) {
			unsetEnv(t)
			t.Setenv(tc.key, tc.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestHours(t *testing.T) {
	assert.Equal(t, 5*time.Hour, hours(0))
	assert.Equal(t, 5*time.Hour, hours(-3))
	assert.Equal(t, 12*time.Hour, hours(12))
}
