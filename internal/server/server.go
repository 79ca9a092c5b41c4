/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package server assembles the HTTP service: storage, cache, event bus,
// media source and the generation pipeline behind a chi router.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/friendsincode/vidar_tv/internal/api"
	"github.com/friendsincode/vidar_tv/internal/cache"
	"github.com/friendsincode/vidar_tv/internal/config"
	"github.com/friendsincode/vidar_tv/internal/eventbus"
	"github.com/friendsincode/vidar_tv/internal/events"
	"github.com/friendsincode/vidar_tv/internal/jellyfin"
	"github.com/friendsincode/vidar_tv/internal/logbuffer"
	"github.com/friendsincode/vidar_tv/internal/pipeline"
	"github.com/friendsincode/vidar_tv/internal/store"
	"github.com/friendsincode/vidar_tv/internal/telemetry"
	"github.com/friendsincode/vidar_tv/internal/version"
)

// Server bundles HTTP and supporting services.
type Server struct {
	cfg        *config.Config
	logger     zerolog.Logger
	router     chi.Router
	httpServer *http.Server
	closers    []func() error

	store     store.ObjectStore
	cache     *cache.Cache
	bus       events.PubSub
	pipeline  *pipeline.Service
	logBuffer *logbuffer.Buffer
	api       *api.API
	checker   *version.Checker

	bgCancel context.CancelFunc
	bgWG     sync.WaitGroup
}

// New constructs the server and wires dependencies.
func New(cfg *config.Config, logBuf *logbuffer.Buffer, logger zerolog.Logger) (*Server, error) {
	for _, warn := range cfg.LegacyEnvWarnings {
		logger.Warn().Msg(warn)
	}

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(securityHeadersMiddleware)
	router.Use(telemetry.TracingMiddleware("vidartv-api"))
	router.Use(telemetry.MetricsMiddleware)
	if !cfg.RequestTimeoutDisabled {
		// A full generation run normally finishes well inside a minute;
		// VIDAR_REQUEST_TIMEOUT_DISABLED lifts the cap for huge lineups.
		router.Use(middleware.Timeout(60 * time.Second))
	}

	srv := &Server{
		cfg:       cfg,
		logger:    logger,
		router:    router,
		logBuffer: logBuf,
	}

	if err := srv.initDependencies(); err != nil {
		return nil, err
	}

	srv.configureRoutes()
	srv.startBackgroundWorkers()

	srv.httpServer = &http.Server{
		Addr:    cfg.HTTPAddr(),
		Handler: srv.router,
		// Keep the header deadline to protect against slowloris; catalog
		// uploads for validation are small, so a body read deadline is fine.
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      0,
		IdleTimeout:       60 * time.Second,
	}

	return srv, nil
}

func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; frame-ancestors 'none'; base-uri 'self'")

		// Only advertise HSTS for requests served over HTTPS.
		if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) initDependencies() error {
	if err := os.MkdirAll(s.cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("create data directory %s: %w", s.cfg.DataDir, err)
	}
	s.logger.Info().Str("path", s.cfg.DataDir).Msg("data directory ready")

	objStore, err := store.New(context.Background(), s.cfg, s.logger)
	if err != nil {
		return err
	}
	s.store = objStore

	cacheCfg := cache.DefaultConfig()
	cacheCfg.RedisAddr = s.cfg.RedisAddr
	cacheCfg.RedisPassword = s.cfg.RedisPassword
	cacheCfg.RedisDB = s.cfg.RedisDB
	cacheCfg.CatalogTTL = s.cfg.CatalogCacheTTL
	s.cache = cache.New(cacheCfg, s.logger)
	s.DeferClose(func() error { return s.cache.Close() })

	s.bus = s.buildBus()

	var source pipeline.ShowSource
	if s.cfg.JellyfinURL != "" {
		client, err := jellyfin.NewClient(s.cfg.JellyfinURL, s.cfg.JellyfinAPIKey, s.cfg.JellyfinUsername, s.cfg.FetchWorkers, s.logger)
		if err != nil {
			return fmt.Errorf("jellyfin client: %w", err)
		}
		source = client
	} else {
		s.logger.Warn().Msg("no media server configured, show fetches will rely on the local cache file")
	}

	s.pipeline = pipeline.New(s.store, s.cache, s.bus, source, s.cfg.ShowCachePath(), s.cfg.LineupPath, s.logger)
	s.checker = version.NewChecker(s.logger)
	s.api = api.New(s.pipeline, s.logBuffer, s.checker, s.logger)

	return nil
}

// buildBus picks the event bus backend. NATS wins when configured; a
// multi-instance deployment without NATS mirrors over Redis; a single
// instance keeps events in-process.
func (s *Server) buildBus() events.PubSub {
	nodeID := s.cfg.InstanceID
	if nodeID == "" {
		if host, err := os.Hostname(); err == nil {
			nodeID = host
		} else {
			nodeID = uuid.NewString()
		}
	}

	if s.cfg.NATSURL != "" {
		natsCfg := eventbus.DefaultNATSConfig()
		natsCfg.URL = s.cfg.NATSURL
		bus := eventbus.NewNATSBus(natsCfg, nodeID, s.logger)
		s.DeferClose(bus.Close)
		return bus
	}

	if s.cfg.InstanceID != "" {
		redisCfg := eventbus.DefaultRedisConfig()
		redisCfg.Addr = s.cfg.RedisAddr
		redisCfg.Password = s.cfg.RedisPassword
		redisCfg.DB = s.cfg.RedisDB
		bus := eventbus.NewRedisBus(redisCfg, nodeID, s.logger)
		s.DeferClose(bus.Close)
		return bus
	}

	return events.NewBus()
}

// HTTPServer exposes the underlying net/http server.
func (s *Server) HTTPServer() *http.Server {
	return s.httpServer
}

// LogBuffer returns the server's log buffer for attaching to zerolog.
func (s *Server) LogBuffer() *logbuffer.Buffer {
	return s.logBuffer
}

// Close releases owned resources in reverse order.
func (s *Server) Close() error {
	s.stopBackgroundWorkers()
	var firstErr error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// DeferClose registers a cleanup hook.
func (s *Server) DeferClose(fn func() error) {
	s.closers = append(s.closers, fn)
}

func (s *Server) startBackgroundWorkers() {
	ctx, cancel := context.WithCancel(context.Background())
	s.bgCancel = cancel

	s.checker.Start(ctx)

	s.bgWG.Add(1)
	go func() {
		defer s.bgWG.Done()
		s.runEventJournal(ctx)
	}()
}

// runEventJournal logs every pipeline event so operators can follow runs
// from the /api/v1/logs endpoint, including events mirrored from other
// instances.
func (s *Server) runEventJournal(ctx context.Context) {
	fetched := s.bus.Subscribe(events.EventShowsFetched)
	generated := s.bus.Subscribe(events.EventCatalogGenerated)
	validated := s.bus.Subscribe(events.EventCatalogValidated)
	applied := s.bus.Subscribe(events.EventCatalogApplied)

	defer func() {
		s.bus.Unsubscribe(events.EventShowsFetched, fetched)
		s.bus.Unsubscribe(events.EventCatalogGenerated, generated)
		s.bus.Unsubscribe(events.EventCatalogValidated, validated)
		s.bus.Unsubscribe(events.EventCatalogApplied, applied)
	}()

	journal := s.logger.With().Str("component", "events").Logger()
	journal.Info().Msg("event journal started")

	for {
		select {
		case <-ctx.Done():
			journal.Info().Msg("event journal stopped")
			return
		case payload := <-fetched:
			journal.Info().Fields(map[string]any(payload)).Msg("shows fetched")
		case payload := <-generated:
			journal.Info().Fields(map[string]any(payload)).Msg("catalog generated")
		case payload := <-validated:
			journal.Info().Fields(map[string]any(payload)).Msg("catalog validated")
		case payload := <-applied:
			journal.Info().Fields(map[string]any(payload)).Msg("catalog applied")
		}
	}
}

func (s *Server) stopBackgroundWorkers() {
	if s.bgCancel == nil {
		return
	}
	s.bgCancel()
	s.bgWG.Wait()
	s.bgCancel = nil
}

func (s *Server) configureRoutes() {
	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		response := `{"status":"ok"`
		if s.cache.Available() {
			response += `,"cache":"up"`
		} else {
			response += `,"cache":"down"`
		}
		response += `}`
		_, _ = w.Write([]byte(response))
	})

	s.router.Handle("/metrics", telemetry.Handler())

	s.api.Routes(s.router)
}
