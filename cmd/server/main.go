package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/miyamo2/qilin"
	"github.com/miyamo2/qilin/transport"

	"github.com/meskel/agroclimate-mcp/internal/adapter/agrohub"
	httpadapter "github.com/meskel/agroclimate-mcp/internal/adapter/http"
	kafkaadapter "github.com/meskel/agroclimate-mcp/internal/adapter/kafka"
	"github.com/meskel/agroclimate-mcp/internal/adapter/mcp"
	"github.com/meskel/agroclimate-mcp/internal/config"
	"github.com/meskel/agroclimate-mcp/internal/observability"
	"github.com/meskel/agroclimate-mcp/internal/query"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	client := agrohub.NewClient(cfg.UpstreamBaseURL, cfg.UpstreamTimeout, logger, metrics)
	stations := agrohub.NewCachedStations(client, cfg.StationCacheTTL, clockwork.NewRealClock(), metrics)
	regions := agrohub.NewRegionResolver(client, agrohub.MatchNameOrISO2(cfg.RegionQuery))

	// Usage-event publishing is feature-flagged via KAFKA_ENABLED.
	var events query.UsagePublisher
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		events = writer
		logger.Info("usage event publishing enabled", "topic", cfg.KafkaUsageTopic)
	} else {
		logger.Info("usage event publishing disabled")
	}

	svc := query.New(stations, client, regions, events, cfg.ProbeBudget, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, logger)

	q := qilin.New("agroclimate")
	mcp.Register(q, svc, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP sidecar.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Warm up the region resolution so the first tool call does not pay
	// for it. Failures are tolerated; resolution retries on demand.
	go func() {
		if _, err := regions.Resolve(ctx); err != nil {
			logger.Warn("region warm-up failed", "error", err)
		}
	}()

	// Serve MCP on the configured transport. Both block until ctx is done.
	switch cfg.MCPTransport {
	case config.TransportStreamable:
		listener, err := net.Listen("tcp", cfg.MCPAddr)
		if err != nil {
			logger.Error("mcp listener error", "error", err)
			os.Exit(1)
		}
		logger.Info("mcp server starting", "transport", cfg.MCPTransport, "addr", cfg.MCPAddr)
		streamable := transport.NewStreamable(transport.StreamableWithNetListener(listener))
		if err := q.Start(qilin.StartWithContext(ctx), qilin.StartWithListener(streamable)); err != nil {
			logger.Error("mcp server error", "error", err)
		}
	default:
		logger.Info("mcp server starting", "transport", cfg.MCPTransport)
		if err := q.Start(qilin.StartWithContext(ctx)); err != nil {
			logger.Error("mcp server error", "error", err)
		}
	}

	stop()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
