/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"net/http"
	"strconv"

	"github.com/friendsincode/vidar_tv/internal/logbuffer"
)

// handleLogs serves recent in-memory log entries, newest first. Filters:
// ?level=, ?component=, ?search=, ?limit= (default 100).
func (a *API) handleLogs(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "invalid_limit")
			return
		}
		limit = parsed
	}

	entries := a.logBuffer.Query(logbuffer.QueryParams{
		Level:      r.URL.Query().Get("level"),
		Component:  r.URL.Query().Get("component"),
		Search:     r.URL.Query().Get("search"),
		Limit:      limit,
		Descending: true,
	})
	if entries == nil {
		entries = []logbuffer.LogEntry{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"entries":    entries,
		"components": a.logBuffer.Components(),
		"stats":      a.logBuffer.Stats(),
	})
}
