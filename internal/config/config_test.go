package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 12.0, cfg.Analytics.Policy.OperatingHours)
	assert.Equal(t, "KES", cfg.Analytics.Policy.Currency)
}

func TestLoad_OverridesKeepUnsetDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
database:
  driver: postgres
  dsn: host=db user=brigade dbname=brigade sslmode=disable
rabbitmq:
  enabled: true
dashboard:
  push_interval: 5s
analytics:
  lookback_days: 45
  policy:
    lead_time_days: 4
    currency: USD
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 9090, cfg.Server.MetricsPort)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.True(t, cfg.RabbitMQ.Enabled)
	assert.Equal(t, "insights_fanout", cfg.RabbitMQ.Exchange)
	assert.Equal(t, 5*time.Second, cfg.Dashboard.PushInterval)
	assert.Equal(t, 45, cfg.Analytics.LookbackDays)
	assert.Equal(t, 4.0, cfg.Analytics.Policy.LeadTimeDays)
	assert.Equal(t, 3.0, cfg.Analytics.Policy.SafetyStockDays)
	assert.Equal(t, "USD", cfg.Analytics.Policy.Currency)
	assert.Equal(t, 25.0, cfg.Analytics.Policy.Weights.Revenue)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad yaml", "server: [1, 2"},
		{"unknown driver", "database:\n  driver: mysql\n"},
		{"zero lookback", "analytics:\n  lookback_days: 0\n"},
		{"negative top alerts", "analytics:\n  policy:\n    top_alerts: -1\n"},
		{"negative upsell top n", "analytics:\n  policy:\n    upsell_top_n: -1\n"},
		{"negative top kitchen items", "analytics:\n  policy:\n    top_kitchen_items: -1\n"},
		{"negative alert limit", "analytics:\n  policy:\n    alert_limits:\n      kitchen: -2\n"},
		{"zero recent window", "analytics:\n  policy:\n    recent_window_days: 0\n"},
		{"all weights zero", "analytics:\n  policy:\n    weights: {menu: 0, revenue: 0, kitchen: 0, inventory: 0, reservations: 0}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestNewLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	cfg := Default()
	cfg.LogLevel = "warn"
	logger := cfg.NewLogger(&buf)

	logger.Info("hidden")
	logger.Warn("shown", "component", "test")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"component":"test"`)
}
