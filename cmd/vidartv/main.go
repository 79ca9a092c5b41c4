package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/friendsincode/vidar_tv/internal/config"
	"github.com/friendsincode/vidar_tv/internal/eventbus"
	"github.com/friendsincode/vidar_tv/internal/events"
	"github.com/friendsincode/vidar_tv/internal/jellyfin"
	"github.com/friendsincode/vidar_tv/internal/logbuffer"
	"github.com/friendsincode/vidar_tv/internal/logging"
	"github.com/friendsincode/vidar_tv/internal/pipeline"
	"github.com/friendsincode/vidar_tv/internal/server"
	"github.com/friendsincode/vidar_tv/internal/store"
	"github.com/friendsincode/vidar_tv/internal/telemetry"
	"github.com/friendsincode/vidar_tv/internal/version"
)

var (
	logger zerolog.Logger
	cfg    *config.Config
	logBuf *logbuffer.Buffer
)

var rootCmd = &cobra.Command{
	Use:     "vidartv",
	Short:   "Vidar TV - Broadcast grid generator for ErsatzTV",
	Long:    "Vidar TV builds randomized but reproducible broadcast grids from a Jellyfin library, validates them, and applies them to an ErsatzTV instance.",
	Version: version.Version,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Vidar TV server",
	Long:  "Start the HTTP API server for catalog generation and validation",
	Run:   runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func main() {
	// Run handlers manage their own exit codes; anything surfacing here is
	// a bad invocation.
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}
}

// fail reports an internal error and exits 1.
func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}

// usageFail reports unusable input (missing or unparsable files) and exits 2.
func usageFail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(2)
}

// loadConfig loads configuration (called by commands that need it)
func loadConfig() error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logBuf = logbuffer.New(1000)
	logger = logging.SetupWithWriter(cfg.Environment, logbuffer.NewWriter(logBuf, nil))
	return nil
}

// buildBus returns the NATS-mirrored bus when one is configured so CLI runs
// announce themselves to running server instances, otherwise an in-process
// bus.
func buildBus() events.PubSub {
	if cfg.NATSURL == "" {
		return events.NewBus()
	}

	nodeID := cfg.InstanceID
	if nodeID == "" {
		nodeID, _ = os.Hostname()
	}
	natsCfg := eventbus.DefaultNATSConfig()
	natsCfg.URL = cfg.NATSURL
	return eventbus.NewNATSBus(natsCfg, nodeID+"-cli", logger)
}

// buildPipeline assembles a pipeline service for one-shot CLI runs. The
// Redis cache is skipped: a single run gains nothing from it.
func buildPipeline(ctx context.Context) (*pipeline.Service, error) {
	objStore, err := store.New(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	var source pipeline.ShowSource
	if cfg.JellyfinURL != "" {
		client, err := jellyfin.NewClient(cfg.JellyfinURL, cfg.JellyfinAPIKey, cfg.JellyfinUsername, cfg.FetchWorkers, logger)
		if err != nil {
			return nil, fmt.Errorf("jellyfin client: %w", err)
		}
		source = client
	}

	return pipeline.New(objStore, nil, buildBus(), source, cfg.ShowCachePath(), cfg.LineupPath, logger), nil
}

func runServe(cmd *cobra.Command, args []string) {
	if err := loadConfig(); err != nil {
		fail("%v", err)
	}

	logger.Info().Str("version", version.Version).Msg("Vidar TV starting")

	tracerProvider, err := telemetry.InitTracer(context.Background(), telemetry.TracerConfig{
		ServiceName:    "vidar-tv",
		ServiceVersion: version.Version,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.TracingEnabled,
		SampleRate:     cfg.TracingSampleRate,
	}, logger)
	if err != nil {
		fail("initialize tracer: %v", err)
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown tracer provider")
		}
	}()

	srv, err := server.New(cfg, logBuf, logger)
	if err != nil {
		fail("initialize server: %v", err)
	}

	httpServer := srv.HTTPServer()

	go func() {
		logger.Info().Str("addr", httpServer.Addr).Msg("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down gracefully...")

	timeoutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(timeoutCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	if err := srv.Close(); err != nil {
		logger.Error().Err(err).Msg("shutdown cleanup failed")
	}

	logger.Info().Msg("Vidar TV stopped")
}
