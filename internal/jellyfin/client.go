/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package jellyfin retrieves movie and series metadata from a Jellyfin
// server and maps it onto the show properties the grid matcher understands.
package jellyfin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/friendsincode/vidar_tv/internal/grid"
)

const (
	defaultItemLimit = 1000
	defaultWorkers   = 8

	// Jellyfin reports runtimes in 100ns ticks.
	runTimeTicksPerMinute = 600_000_000
)

// Client is a Jellyfin API client using API key authentication.
type Client struct {
	baseURL    string
	apiKey     string
	username   string
	workers    int
	httpClient *http.Client
	logger     zerolog.Logger

	mu     sync.Mutex
	userID string
}

// NewClient creates a Jellyfin API client. workers bounds the concurrent
// episode lookups during series retrieval.
func NewClient(baseURL, apiKey, username string, workers int, logger zerolog.Logger) (*Client, error) {
	baseURL = strings.TrimSuffix(baseURL, "/")
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "https://" + baseURL
	}

	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if workers <= 0 {
		workers = defaultWorkers
	}

	return &Client{
		baseURL:  baseURL,
		apiKey:   apiKey,
		username: username,
		workers:  workers,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger.With().Str("component", "jellyfin").Logger(),
	}, nil
}

// System info returned by the public status endpoint.
type SystemInfo struct {
	ServerName string `json:"ServerName"`
	Version    string `json:"Version"`
}

type apiUser struct {
	Name string `json:"Name"`
	ID   string `json:"Id"`
}

type apiItemsPage struct {
	Items []apiItem `json:"Items"`
}

type apiItem struct {
	ID           string           `json:"Id"`
	Name         string           `json:"Name"`
	Type         string           `json:"Type"`
	Genres       []string         `json:"Genres"`
	RunTimeTicks int64            `json:"RunTimeTicks"`
	MediaStreams []apiMediaStream `json:"MediaStreams"`
}

type apiMediaStream struct {
	Type     string `json:"Type"`
	Language string `json:"Language"`
}

// doRequest performs an authenticated API request.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values) (*http.Response, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Emby-Token", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}

	return resp, nil
}

// decodeAPIResponse decodes a JSON response body.
func decodeAPIResponse[T any](resp *http.Response) (T, error) {
	var result T
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return result, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return result, fmt.Errorf("decode response: %w", err)
	}

	return result, nil
}

// Ping checks connectivity and returns public server info.
func (c *Client) Ping(ctx context.Context) (*SystemInfo, error) {
	resp, err := c.doRequest(ctx, "GET", "/System/Info/Public", nil)
	if err != nil {
		return nil, err
	}

	return decodeAPIResponse[*SystemInfo](resp)
}

// ResolveUser looks up the configured username and returns its user ID.
// The result is memoized for the lifetime of the client.
func (c *Client) ResolveUser(ctx context.Context) (string, error) {
	c.mu.Lock()
	cached := c.userID
	c.mu.Unlock()
	if cached != "" {
		return cached, nil
	}

	resp, err := c.doRequest(ctx, "GET", "/Users", nil)
	if err != nil {
		return "", err
	}

	users, err := decodeAPIResponse[[]apiUser](resp)
	if err != nil {
		return "", err
	}

	for _, u := range users {
		if u.Name == c.username {
			c.mu.Lock()
			c.userID = u.ID
			c.mu.Unlock()
			return u.ID, nil
		}
	}

	return "", fmt.Errorf("user %q not found", c.username)
}

// FetchShows retrieves the movie and series library visible to the
// configured user. Movies map directly; series fan out to an episode
// lookup per series to derive runtime bounds and audio languages. A series
// without episodes carries no usable runtime and is skipped.
func (c *Client) FetchShows(ctx context.Context) ([]grid.Show, error) {
	userID, err := c.ResolveUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve user: %w", err)
	}

	query := url.Values{
		"IncludeItemTypes": {"Movie,Series"},
		"Recursive":        {"true"},
		"Fields":           {"Genres,MediaStreams,RunTimeTicks"},
		"Limit":            {strconv.Itoa(defaultItemLimit)},
		"UserId":           {userID},
	}
	resp, err := c.doRequest(ctx, "GET", "/Items", query)
	if err != nil {
		return nil, err
	}

	page, err := decodeAPIResponse[apiItemsPage](resp)
	if err != nil {
		return nil, err
	}

	var shows []grid.Show
	var series []apiItem
	for _, item := range page.Items {
		switch item.Type {
		case "Movie":
			shows = append(shows, movieShow(item))
		case "Series":
			series = append(series, item)
		}
	}
	movieCount := len(shows)

	seriesShows, skipped, err := c.fetchSeries(ctx, series, userID)
	if err != nil {
		return nil, err
	}
	shows = append(shows, seriesShows...)

	c.logger.Info().
		Int("movies", movieCount).
		Int("series", len(seriesShows)).
		Int("skipped", skipped).
		Msg("library retrieved")

	return shows, nil
}

type seriesJob struct {
	index int
	item  apiItem
}

type seriesResult struct {
	index int
	show  grid.Show
	ok    bool
	err   error
}

// fetchSeries resolves series runtime bounds and languages with a bounded
// worker pool. Result order follows the input order so a seeded run stays
// reproducible.
func (c *Client) fetchSeries(ctx context.Context, series []apiItem, userID string) ([]grid.Show, int, error) {
	if len(series) == 0 {
		return nil, 0, nil
	}

	jobChan := make(chan seriesJob, len(series))
	resultChan := make(chan seriesResult, len(series))

	var wg sync.WaitGroup
	for i := 0; i < c.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobChan {
				show, ok, err := c.seriesShow(ctx, job.item, userID)
				resultChan <- seriesResult{index: job.index, show: show, ok: ok, err: err}
			}
		}()
	}

	for i, item := range series {
		jobChan <- seriesJob{index: i, item: item}
	}
	close(jobChan)

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	ordered := make([]*grid.Show, len(series))
	skipped := 0
	for result := range resultChan {
		if result.err != nil {
			if ctx.Err() != nil {
				continue
			}
			c.logger.Warn().
				Err(result.err).
				Str("series", series[result.index].Name).
				Msg("episode lookup failed, series skipped")
			skipped++
			continue
		}
		if !result.ok {
			skipped++
			continue
		}
		show := result.show
		ordered[result.index] = &show
	}

	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	shows := make([]grid.Show, 0, len(series))
	for _, s := range ordered {
		if s != nil {
			shows = append(shows, *s)
		}
	}
	return shows, skipped, nil
}

// seriesShow builds the show entry for one series. ok is false when the
// series has no episodes.
func (c *Client) seriesShow(ctx context.Context, item apiItem, userID string) (grid.Show, bool, error) {
	query := url.Values{
		"UserId": {userID},
		"Fields": {"MediaStreams,RunTimeTicks"},
	}
	resp, err := c.doRequest(ctx, "GET", "/Shows/"+item.ID+"/Episodes", query)
	if err != nil {
		return grid.Show{}, false, err
	}

	page, err := decodeAPIResponse[apiItemsPage](resp)
	if err != nil {
		return grid.Show{}, false, err
	}
	if len(page.Items) == 0 {
		return grid.Show{}, false, nil
	}

	var duration [2]*float64
	for _, ep := range page.Items {
		if ep.RunTimeTicks <= 0 {
			continue
		}
		minutes := float64(ep.RunTimeTicks) / runTimeTicksPerMinute
		if duration[0] == nil || minutes < *duration[0] {
			m := minutes
			duration[0] = &m
		}
		if duration[1] == nil || minutes > *duration[1] {
			m := minutes
			duration[1] = &m
		}
	}

	return grid.Show{
		Name: item.Name,
		Properties: grid.ShowProperties{
			Genres:    normalizeGenres(item.Genres),
			Types:     []string{"series"},
			Languages: audioLanguages(page.Items[0].MediaStreams),
			Duration:  duration,
		},
	}, true, nil
}

// movieShow builds the show entry for one movie. A zero runtime leaves the
// duration bounds unset.
func movieShow(item apiItem) grid.Show {
	var duration [2]*float64
	if item.RunTimeTicks > 0 {
		minutes := float64(item.RunTimeTicks) / runTimeTicksPerMinute
		duration = grid.DurationRange(minutes, minutes)
	}

	return grid.Show{
		Name: item.Name,
		Properties: grid.ShowProperties{
			Genres:    normalizeGenres(item.Genres),
			Types:     []string{"movie"},
			Languages: audioLanguages(item.MediaStreams),
			Duration:  duration,
		},
	}
}

// normalizeGenres maps raw Jellyfin genre labels onto normalized keys,
// deduplicated in encounter order. Unknown labels are dropped.
func normalizeGenres(raw []string) []string {
	var keys []string
	seen := make(map[string]bool)
	for _, g := range raw {
		for _, key := range grid.NormalizeGenre(g) {
			if !seen[key] {
				seen[key] = true
				keys = append(keys, key)
			}
		}
	}
	return keys
}

// audioLanguages collects the distinct audio stream languages in encounter
// order.
func audioLanguages(streams []apiMediaStream) []string {
	var langs []string
	seen := make(map[string]bool)
	for _, s := range streams {
		if s.Type != "Audio" || s.Language == "" {
			continue
		}
		if !seen[s.Language] {
			seen[s.Language] = true
			langs = append(langs, s.Language)
		}
	}
	return langs
}
