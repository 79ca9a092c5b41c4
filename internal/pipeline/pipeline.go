/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package pipeline orchestrates a catalog run: retrieve shows, generate
// channel structure, assign content, persist and validate. Catalog.Step
// tracks progress so an interrupted run resumes where it stopped.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/friendsincode/vidar_tv/internal/cache"
	"github.com/friendsincode/vidar_tv/internal/describe"
	"github.com/friendsincode/vidar_tv/internal/events"
	"github.com/friendsincode/vidar_tv/internal/generator"
	"github.com/friendsincode/vidar_tv/internal/grid"
	"github.com/friendsincode/vidar_tv/internal/lineup"
	"github.com/friendsincode/vidar_tv/internal/selector"
	"github.com/friendsincode/vidar_tv/internal/store"
	"github.com/friendsincode/vidar_tv/internal/telemetry"
	"github.com/friendsincode/vidar_tv/internal/validator"
)

// ShowSource supplies the content catalog. Satisfied by *jellyfin.Client.
type ShowSource interface {
	FetchShows(ctx context.Context) ([]grid.Show, error)
}

// Service runs the generation pipeline.
type Service struct {
	store      store.ObjectStore
	cache      *cache.Cache // nil disables Redis caching
	bus        events.PubSub
	source     ShowSource // nil when no media server is configured
	showsPath  string
	lineupPath string
	logger     zerolog.Logger
}

// New wires the pipeline service. cache and source may be nil.
func New(objStore store.ObjectStore, c *cache.Cache, bus events.PubSub, source ShowSource, showsPath, lineupPath string, logger zerolog.Logger) *Service {
	return &Service{
		store:      objStore,
		cache:      c,
		bus:        bus,
		source:     source,
		showsPath:  showsPath,
		lineupPath: lineupPath,
		logger:     logger.With().Str("component", "pipeline").Logger(),
	}
}

// Result is the outcome of a full generation run.
type Result struct {
	RunID      string        `json:"run_id"`
	Catalog    *grid.Catalog `json:"catalog"`
	StorageKey string        `json:"storage_key"`
	Seed       int64         `json:"seed"`
	Errors     []string      `json:"errors"`
}

// CatalogKey is where a named catalog lives in object storage.
func CatalogKey(name string) string {
	return "catalogs/" + name + ".json"
}

// Shows returns the content catalog: Redis cache first, then the local JSON
// cache file, then the media server. refresh bypasses both caches.
func (s *Service) Shows(ctx context.Context, refresh bool) ([]grid.Show, error) {
	if !refresh {
		if s.cache != nil {
			if shows, ok := s.cache.Shows(ctx); ok {
				return shows, nil
			}
		}
		if shows, err := s.loadShowsFile(); err == nil {
			if s.cache != nil {
				s.cache.SetShows(ctx, shows)
			}
			return shows, nil
		}
	}
	return s.Fetch(ctx)
}

// Fetch retrieves the show list from the media server, rewrites the local
// cache file and announces the fetch.
func (s *Service) Fetch(ctx context.Context) ([]grid.Show, error) {
	if s.source == nil {
		return nil, fmt.Errorf("no media server configured (set VIDAR_JELLYFIN_URL) and no show cache at %s", s.showsPath)
	}

	shows, err := s.source.FetchShows(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch shows: %w", err)
	}

	if err := s.saveShowsFile(shows); err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.InvalidateShows(ctx)
		s.cache.SetShows(ctx, shows)
	}

	telemetry.ShowsFetchedTotal.Add(float64(len(shows)))
	s.bus.Publish(events.EventShowsFetched, events.Payload{
		"count": len(shows),
		"path":  s.showsPath,
	})
	s.logger.Info().Int("count", len(shows)).Str("path", s.showsPath).Msg("show list fetched")
	return shows, nil
}

func (s *Service) loadShowsFile() ([]grid.Show, error) {
	data, err := os.ReadFile(s.showsPath)
	if err != nil {
		return nil, err
	}
	var shows []grid.Show
	if err := json.Unmarshal(data, &shows); err != nil {
		return nil, fmt.Errorf("parse show cache %s: %w", s.showsPath, err)
	}
	return shows, nil
}

func (s *Service) saveShowsFile(shows []grid.Show) error {
	data, err := json.MarshalIndent(shows, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal shows: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.showsPath), 0755); err != nil {
		return fmt.Errorf("create show cache dir: %w", err)
	}
	if err := os.WriteFile(s.showsPath, data, 0644); err != nil {
		return fmt.Errorf("write show cache: %w", err)
	}
	return nil
}

// GenerateStructure builds the channel skeletons for step-0 catalogs:
// lineup channels with subsampled slot configuration and tiled blocks.
// Catalogs already past step 0 are left untouched.
func GenerateStructure(cat *grid.Catalog, l *lineup.Lineup, pools map[grid.Category][]any, rng *rand.Rand, logger zerolog.Logger) {
	if cat.Step >= grid.StepStructureGenerated {
		return
	}

	builder := generator.NewBuilder(pools, rng, logger)
	cat.Channels = make([]grid.Channel, 0, len(l.Channels))
	for _, lc := range l.Channels {
		ch := lc.GridChannel()
		builder.Build(&ch)
		cat.Channels = append(cat.Channels, ch)
	}
	cat.Step = grid.StepStructureGenerated
}

// AssignContent fills every block's show list for step-1 catalogs. Step-0
// catalogs have no structure to fill; step-2 catalogs keep their selection.
func AssignContent(cat *grid.Catalog, shows []grid.Show, rng *rand.Rand) {
	if cat.Step != grid.StepStructureGenerated {
		return
	}

	for i := range cat.Channels {
		selector.AssignChannel(&cat.Channels[i], shows, rng)
	}
	cat.Step = grid.StepContentAssigned
}

// Generate runs the whole pipeline and persists the finished catalog. A
// seed of 0 draws one from the clock; the effective seed is returned so a
// run can be replayed. The stored catalog is re-validated and any findings
// ride along in the result (an under-filled channel is a known generation
// artifact, reported rather than repaired).
func (s *Service) Generate(ctx context.Context, name string, seed int64) (*Result, error) {
	start := time.Now()
	result, err := s.generate(ctx, name, seed)
	if err != nil {
		telemetry.RecordPipelineRun("error", time.Since(start).Seconds())
		return nil, err
	}
	telemetry.RecordPipelineRun("ok", time.Since(start).Seconds())
	return result, nil
}

func (s *Service) generate(ctx context.Context, name string, seed int64) (*Result, error) {
	runID := uuid.NewString()
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	runLogger := s.logger.With().Str("run_id", runID).Int64("seed", seed).Logger()

	l, err := lineup.Load(s.lineupPath)
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = l.Catalog
	}

	shows, err := s.Shows(ctx, false)
	if err != nil {
		return nil, err
	}
	pools := selector.Analyze(shows)

	cat := &grid.Catalog{Name: name, Step: grid.StepInitialized}
	GenerateStructure(cat, l, pools, rng, runLogger)
	AssignContent(cat, shows, rng)

	data, err := json.MarshalIndent(cat, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal catalog: %w", err)
	}

	key := CatalogKey(name)
	if err := s.store.Put(ctx, key, data); err != nil {
		return nil, fmt.Errorf("store catalog: %w", err)
	}
	if s.cache != nil {
		s.cache.SetCatalog(ctx, key, cat)
	}

	findings, err := validator.ValidateBytes(data)
	if err != nil {
		return nil, err
	}
	telemetry.RecordValidation(len(findings))

	s.bus.Publish(events.EventCatalogGenerated, events.Payload{
		"run_id":   runID,
		"catalog":  name,
		"key":      key,
		"seed":     seed,
		"channels": len(cat.Channels),
		"errors":   len(findings),
	})

	runLogger.Info().
		Str("catalog", name).
		Str("key", key).
		Int("channels", len(cat.Channels)).
		Int("validation_errors", len(findings)).
		Msg("catalog generated")

	return &Result{
		RunID:      runID,
		Catalog:    cat,
		StorageKey: key,
		Seed:       seed,
		Errors:     findings,
	}, nil
}

// Validate checks a raw catalog document, records metrics and announces the
// verdict. The error return is reserved for undecodable input.
func (s *Service) Validate(ctx context.Context, data []byte) ([]string, error) {
	findings, err := validator.ValidateBytes(data)
	if err != nil {
		return nil, err
	}
	telemetry.RecordValidation(len(findings))

	s.bus.Publish(events.EventCatalogValidated, events.Payload{
		"valid":  len(findings) == 0,
		"errors": len(findings),
	})
	return findings, nil
}

// Catalog loads a stored catalog by storage key.
func (s *Service) Catalog(ctx context.Context, key string) (*grid.Catalog, error) {
	if s.cache != nil {
		if cat, ok := s.cache.Catalog(ctx, key); ok {
			return cat, nil
		}
	}

	data, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	var cat grid.Catalog
	if err := json.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("parse stored catalog %s: %w", key, err)
	}
	if s.cache != nil {
		s.cache.SetCatalog(ctx, key, &cat)
	}
	return &cat, nil
}

// Catalogs lists the stored catalog keys.
func (s *Service) Catalogs(ctx context.Context) ([]string, error) {
	return s.store.List(ctx, "catalogs/")
}

// Describe renders the per-channel reports for a stored catalog. Rendered
// descriptions are cached by channel name.
func (s *Service) Describe(ctx context.Context, key string) (*grid.Catalog, map[string]string, error) {
	cat, err := s.Catalog(ctx, key)
	if err != nil {
		return nil, nil, err
	}

	dataDir := filepath.Dir(s.showsPath)
	reports := make(map[string]string, len(cat.Channels))
	for _, ch := range cat.Channels {
		if s.cache != nil {
			if text, ok := s.cache.Description(ctx, ch.Name); ok {
				reports[ch.Name] = text
				continue
			}
		}
		text := describe.Render(ch, dataDir)
		if s.cache != nil {
			s.cache.SetDescription(ctx, ch.Name, text)
		}
		reports[ch.Name] = text
	}
	return cat, reports, nil
}
