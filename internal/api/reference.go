/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"net/http"

	"github.com/friendsincode/vidar_tv/internal/grid"
)

// handleSlotFormats serves the closed set of slot shapes.
func (a *API) handleSlotFormats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"slot_formats": grid.AllowedSlotFormats,
	})
}

// handleGenres serves the normalized genre table.
func (a *API) handleGenres(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"keys":    grid.GenreKeys(),
		"aliases": grid.NormalizedGenres,
	})
}

// handleShows serves the cached show list. 410 signals the cache has never
// been populated: run a fetch first.
func (a *API) handleShows(w http.ResponseWriter, r *http.Request) {
	shows, err := a.pipeline.Shows(r.Context(), false)
	if err != nil {
		writeError(w, http.StatusGone, "shows_not_fetched")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count": len(shows),
		"shows": shows,
	})
}

// handleVersion reports the running version and any available update.
func (a *API) handleVersion(w http.ResponseWriter, r *http.Request) {
	info := a.version.Info()
	writeJSON(w, http.StatusOK, map[string]any{
		"version":          info.CurrentVersion,
		"latest":           info.LatestVersion,
		"update_available": info.UpdateAvailable,
		"release_url":      info.ReleaseURL,
	})
}
