/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package api exposes the HTTP surface: catalog generation and validation,
// stored catalog retrieval, the reference tables (slot formats and genres),
// the cached show list and recent logs.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/friendsincode/vidar_tv/internal/logbuffer"
	"github.com/friendsincode/vidar_tv/internal/pipeline"
	"github.com/friendsincode/vidar_tv/internal/version"
)

// API exposes HTTP handlers.
type API struct {
	pipeline  *pipeline.Service
	logBuffer *logbuffer.Buffer
	version   *version.Checker
	logger    zerolog.Logger
}

// New creates the API handler set.
func New(p *pipeline.Service, logBuf *logbuffer.Buffer, checker *version.Checker, logger zerolog.Logger) *API {
	return &API{
		pipeline:  p,
		logBuffer: logBuf,
		version:   checker,
		logger:    logger.With().Str("component", "api").Logger(),
	}
}

// Routes mounts all handlers under /api/v1.
func (a *API) Routes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/catalogs/generate", a.handleGenerateCatalog)
		r.Post("/catalogs/validate", a.handleValidateCatalog)
		r.Get("/catalogs", a.handleListCatalogs)
		r.Get("/catalogs/{key}", a.handleGetCatalog)
		r.Get("/catalogs/{key}/describe", a.handleDescribeCatalog)

		r.Get("/slot-formats", a.handleSlotFormats)
		r.Get("/genres", a.handleGenres)
		r.Get("/shows", a.handleShows)

		r.Get("/logs", a.handleLogs)
		r.Get("/version", a.handleVersion)
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
