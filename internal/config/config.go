package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Supported MCP transports.
const (
	TransportStdio      = "stdio"
	TransportStreamable = "streamable"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	// Upstream agro-climate data service.
	UpstreamBaseURL string        `envconfig:"UPSTREAM_BASE_URL" default:"https://api.agrohub.et/v1"`
	UpstreamTimeout time.Duration `envconfig:"UPSTREAM_TIMEOUT" default:"10s"`

	// Station directory cache.
	StationCacheTTL time.Duration `envconfig:"STATION_CACHE_TTL" default:"1h"`

	// Forecast probe.
	ProbeBudget int `envconfig:"PROBE_BUDGET" default:"3"`

	// Deployment region: case-insensitive name substring or exact ISO-2 code.
	RegionQuery string `envconfig:"REGION_QUERY" default:"ET"`

	// MCP transport: "stdio" or "streamable".
	MCPTransport string `envconfig:"MCP_TRANSPORT" default:"stdio"`
	MCPAddr      string `envconfig:"MCP_ADDR" default:":8081"`

	// Operational HTTP endpoints (health, readiness, metrics).
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`

	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat       string        `envconfig:"LOG_FORMAT" default:"json"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	// Optional Kafka usage-event publishing.
	KafkaEnabled    bool     `envconfig:"KAFKA_ENABLED" default:"false"`
	KafkaBrokers    []string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	KafkaUsageTopic string   `envconfig:"KAFKA_USAGE_TOPIC" default:"forecast-usage-events"`
}

// Load reads configuration from environment variables, applying defaults
// where unset, and validates the result.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if cfg.UpstreamBaseURL == "" {
		return nil, errors.New("UPSTREAM_BASE_URL is required")
	}
	if cfg.UpstreamTimeout <= 0 {
		return nil, errors.New("UPSTREAM_TIMEOUT must be positive")
	}
	if cfg.StationCacheTTL <= 0 {
		return nil, errors.New("STATION_CACHE_TTL must be positive")
	}
	if cfg.ProbeBudget <= 0 {
		return nil, errors.New("PROBE_BUDGET must be positive")
	}
	if cfg.RegionQuery == "" {
		return nil, errors.New("REGION_QUERY is required")
	}
	if cfg.MCPTransport != TransportStdio && cfg.MCPTransport != TransportStreamable {
		return nil, fmt.Errorf("MCP_TRANSPORT must be stdio or streamable, got %q", cfg.MCPTransport)
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}

	return &cfg, nil
}
