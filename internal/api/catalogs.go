/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/friendsincode/vidar_tv/internal/pipeline"
	"github.com/friendsincode/vidar_tv/internal/store"
)

type generateRequest struct {
	Name string `json:"name"`
	Seed int64  `json:"seed,omitempty"`
}

// handleGenerateCatalog runs the full pipeline and returns the catalog.
func (a *API) handleGenerateCatalog(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body")
		return
	}

	result, err := a.pipeline.Generate(r.Context(), req.Name, req.Seed)
	if err != nil {
		a.logger.Error().Err(err).Str("catalog", req.Name).Msg("generation failed")
		writeError(w, http.StatusInternalServerError, "generation_failed")
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

type validateResponse struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// handleValidateCatalog validates the posted catalog document. A catalog
// that fails validation is still a 200: the verdict is the payload. Only an
// unparsable body is a fault.
func (a *API) handleValidateCatalog(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable_body")
		return
	}

	findings, err := a.pipeline.Validate(r.Context(), data)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	if findings == nil {
		findings = []string{}
	}
	writeJSON(w, http.StatusOK, validateResponse{
		Valid:  len(findings) == 0,
		Errors: findings,
	})
}

// catalogKeyParam resolves the {key} path parameter: a bare catalog name
// maps to its storage key, a full key passes through.
func catalogKeyParam(r *http.Request) string {
	key := chi.URLParam(r, "key")
	if !strings.HasSuffix(key, ".json") {
		key = pipeline.CatalogKey(key)
	}
	return key
}

func (a *API) handleGetCatalog(w http.ResponseWriter, r *http.Request) {
	cat, err := a.pipeline.Catalog(r.Context(), catalogKeyParam(r))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "catalog_not_found")
			return
		}
		a.logger.Error().Err(err).Msg("catalog load failed")
		writeError(w, http.StatusInternalServerError, "catalog_load_failed")
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

func (a *API) handleListCatalogs(w http.ResponseWriter, r *http.Request) {
	keys, err := a.pipeline.Catalogs(r.Context())
	if err != nil {
		a.logger.Error().Err(err).Msg("catalog list failed")
		writeError(w, http.StatusInternalServerError, "catalog_list_failed")
		return
	}
	if keys == nil {
		keys = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"catalogs": keys})
}

// handleDescribeCatalog renders the channel reports for a stored catalog.
func (a *API) handleDescribeCatalog(w http.ResponseWriter, r *http.Request) {
	cat, descriptions, err := a.pipeline.Describe(r.Context(), catalogKeyParam(r))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "catalog_not_found")
			return
		}
		a.logger.Error().Err(err).Msg("catalog load failed")
		writeError(w, http.StatusInternalServerError, "catalog_load_failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"catalog":      cat.Name,
		"step":         cat.Step,
		"descriptions": descriptions,
	})
}
