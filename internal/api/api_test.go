/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/friendsincode/vidar_tv/internal/events"
	"github.com/friendsincode/vidar_tv/internal/grid"
	"github.com/friendsincode/vidar_tv/internal/logbuffer"
	"github.com/friendsincode/vidar_tv/internal/pipeline"
	"github.com/friendsincode/vidar_tv/internal/store"
	"github.com/friendsincode/vidar_tv/internal/version"
)

const testLineup = `catalog: weekend
channels:
  - name: "Rétro"
    description: "Vieilles séries"
    begin: 6
    end: 4
    fillers: ["Comédie"]
`

type stubSource struct {
	shows []grid.Show
}

func (s *stubSource) FetchShows(ctx context.Context) ([]grid.Show, error) {
	return s.shows, nil
}

func testShows() []grid.Show {
	var shows []grid.Show
	genres := []string{"Action", "Drame", "Comédie"}
	for i := 0; i < 12; i++ {
		minutes := []float64{24, 48, 100}[i%3]
		shows = append(shows, grid.Show{
			Name: fmt.Sprintf("show-%02d", i),
			Properties: grid.ShowProperties{
				Genres:    []string{genres[i%3]},
				Types:     []string{"series"},
				Languages: []string{"fre"},
				Duration:  grid.DurationRange(minutes, minutes),
			},
		})
	}
	return shows
}

func newTestServer(t *testing.T, source pipeline.ShowSource) *httptest.Server {
	t.Helper()
	dir := t.TempDir()

	lineupPath := filepath.Join(dir, "lineup.yaml")
	if err := os.WriteFile(lineupPath, []byte(testLineup), 0644); err != nil {
		t.Fatal(err)
	}

	fs := store.NewFilesystemStore(filepath.Join(dir, "store"), zerolog.Nop())
	p := pipeline.New(fs, nil, events.NewBus(), source, filepath.Join(dir, "shows.json"), lineupPath, zerolog.Nop())

	a := New(p, logbuffer.New(100), version.NewChecker(zerolog.Nop()), zerolog.Nop())
	r := chi.NewRouter()
	a.Routes(r)

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return server
}

func decodeBody(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestGenerateEndpoint(t *testing.T) {
	server := newTestServer(t, &stubSource{shows: testShows()})

	resp, err := http.Post(server.URL+"/api/v1/catalogs/generate", "application/json",
		strings.NewReader(`{"name":"weekend","seed":42}`))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	var result pipeline.Result
	decodeBody(t, resp, &result)
	if result.Catalog == nil || result.Catalog.Step != grid.StepContentAssigned {
		t.Fatalf("result catalog = %+v, want step 2", result.Catalog)
	}
	if result.StorageKey != "catalogs/weekend.json" {
		t.Errorf("storage key = %q", result.StorageKey)
	}

	// The stored catalog is retrievable by name.
	getResp, err := http.Get(server.URL + "/api/v1/catalogs/weekend")
	if err != nil {
		t.Fatal(err)
	}
	if getResp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d, want 200", getResp.StatusCode)
	}
	var cat grid.Catalog
	decodeBody(t, getResp, &cat)
	if cat.Name != "weekend" {
		t.Errorf("catalog name = %q", cat.Name)
	}
}

func TestGenerateEndpointBadBody(t *testing.T) {
	server := newTestServer(t, &stubSource{shows: testShows()})

	resp, err := http.Post(server.URL+"/api/v1/catalogs/generate", "application/json",
		strings.NewReader("{not json"))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestValidateEndpoint(t *testing.T) {
	server := newTestServer(t, nil)

	valid := `{
		"name": "ok", "step": 2,
		"channels": [{
			"name": "c", "description": "d", "begin": 6.0, "end": 8.0, "fillers": [],
			"blocks": [{
				"begin": 6.0, "end": 8.0, "slot_count": 2,
				"slot_format": {"show_min_duration": 45, "show_max_duration": 52, "slot_duration": 60},
				"criteria": [{"category": "type", "values": ["series"], "forbidden": false}],
				"shows": []
			}]
		}]
	}`

	resp, err := http.Post(server.URL+"/api/v1/catalogs/validate", "application/json", strings.NewReader(valid))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var verdict struct {
		Valid  bool     `json:"valid"`
		Errors []string `json:"errors"`
	}
	decodeBody(t, resp, &verdict)
	if !verdict.Valid || len(verdict.Errors) != 0 {
		t.Fatalf("verdict = %+v, want valid", verdict)
	}

	// Invalid catalogs still return 200 with the findings.
	resp, err = http.Post(server.URL+"/api/v1/catalogs/validate", "application/json",
		strings.NewReader(`{"name":"bad","step":0}`))
	if err != nil {
		t.Fatal(err)
	}
	decodeBody(t, resp, &verdict)
	if verdict.Valid || len(verdict.Errors) == 0 {
		t.Fatalf("verdict = %+v, want findings", verdict)
	}

	// Unparsable JSON is the only fault.
	resp, err = http.Post(server.URL+"/api/v1/catalogs/validate", "application/json",
		strings.NewReader("{not json"))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestGetCatalogNotFound(t *testing.T) {
	server := newTestServer(t, nil)

	resp, err := http.Get(server.URL + "/api/v1/catalogs/missing")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestListCatalogsEmpty(t *testing.T) {
	server := newTestServer(t, nil)

	resp, err := http.Get(server.URL + "/api/v1/catalogs")
	if err != nil {
		t.Fatal(err)
	}
	var body struct {
		Catalogs []string `json:"catalogs"`
	}
	decodeBody(t, resp, &body)
	if body.Catalogs == nil || len(body.Catalogs) != 0 {
		t.Fatalf("catalogs = %v, want empty list", body.Catalogs)
	}
}

func TestSlotFormatsEndpoint(t *testing.T) {
	server := newTestServer(t, nil)

	resp, err := http.Get(server.URL + "/api/v1/slot-formats")
	if err != nil {
		t.Fatal(err)
	}
	var body struct {
		SlotFormats []grid.SlotFormat `json:"slot_formats"`
	}
	decodeBody(t, resp, &body)
	if len(body.SlotFormats) != 5 {
		t.Fatalf("len(slot_formats) = %d, want 5", len(body.SlotFormats))
	}
}

func TestGenresEndpoint(t *testing.T) {
	server := newTestServer(t, nil)

	resp, err := http.Get(server.URL + "/api/v1/genres")
	if err != nil {
		t.Fatal(err)
	}
	var body struct {
		Keys []string `json:"keys"`
	}
	decodeBody(t, resp, &body)
	if len(body.Keys) != 24 {
		t.Fatalf("len(keys) = %d, want 24", len(body.Keys))
	}
}

func TestShowsEndpointGoneWhenUnfetched(t *testing.T) {
	server := newTestServer(t, nil)

	resp, err := http.Get(server.URL + "/api/v1/shows")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusGone {
		t.Fatalf("status = %d, want 410", resp.StatusCode)
	}
}

func TestLogsEndpoint(t *testing.T) {
	server := newTestServer(t, nil)

	resp, err := http.Get(server.URL + "/api/v1/logs?limit=10")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body struct {
		Entries []logbuffer.LogEntry `json:"entries"`
	}
	decodeBody(t, resp, &body)
	if body.Entries == nil {
		t.Fatal("entries missing from response")
	}

	resp, err = http.Get(server.URL + "/api/v1/logs?limit=zero")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}
