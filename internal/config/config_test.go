package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.agrohub.et/v1", cfg.UpstreamBaseURL)
	assert.Equal(t, 10*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, time.Hour, cfg.StationCacheTTL)
	assert.Equal(t, 3, cfg.ProbeBudget)
	assert.Equal(t, "ET", cfg.RegionQuery)
	assert.Equal(t, "stdio", cfg.MCPTransport)
	assert.Equal(t, ":8081", cfg.MCPAddr)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "forecast-usage-events", cfg.KafkaUsageTopic)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("UPSTREAM_BASE_URL", "http://localhost:9000/v1")
	t.Setenv("UPSTREAM_TIMEOUT", "3s")
	t.Setenv("STATION_CACHE_TTL", "30m")
	t.Setenv("PROBE_BUDGET", "5")
	t.Setenv("REGION_QUERY", "ethiopia")
	t.Setenv("MCP_TRANSPORT", "streamable")
	t.Setenv("MCP_ADDR", ":7000")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_USAGE_TOPIC", "custom-usage")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9000/v1", cfg.UpstreamBaseURL)
	assert.Equal(t, 3*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, 30*time.Minute, cfg.StationCacheTTL)
	assert.Equal(t, 5, cfg.ProbeBudget)
	assert.Equal(t, "ethiopia", cfg.RegionQuery)
	assert.Equal(t, "streamable", cfg.MCPTransport)
	assert.Equal(t, ":7000", cfg.MCPAddr)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-usage", cfg.KafkaUsageTopic)
}

func TestLoad_InvalidProbeBudget(t *testing.T) {
	t.Setenv("PROBE_BUDGET", "0")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PROBE_BUDGET")
}

func TestLoad_InvalidTransport(t *testing.T) {
	t.Setenv("MCP_TRANSPORT", "websocket")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MCP_TRANSPORT")
}

func TestLoad_InvalidTTL(t *testing.T) {
	t.Setenv("STATION_CACHE_TTL", "-5m")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STATION_CACHE_TTL")
}
