/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package jellyfin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

const testToken = "test-token"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	authed := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("X-Emby-Token") != testToken {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			next(w, r)
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/System/Info/Public", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ServerName":"test","Version":"10.9.0"}`))
	})
	mux.HandleFunc("/Users", authed(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"Name":"other","Id":"u2"},{"Name":"vidar","Id":"u1"}]`))
	}))
	mux.HandleFunc("/Items", authed(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("UserId"); got != "u1" {
			t.Errorf("items UserId = %q, want u1", got)
		}
		if got := r.URL.Query().Get("IncludeItemTypes"); got != "Movie,Series" {
			t.Errorf("items IncludeItemTypes = %q", got)
		}
		w.Write([]byte(`{"Items":[
			{"Id":"m1","Name":"Heat","Type":"Movie","Genres":["Drama","Crime"],"RunTimeTicks":72000000000,
			 "MediaStreams":[{"Type":"Video"},{"Type":"Audio","Language":"fre"},{"Type":"Audio","Language":"eng"},{"Type":"Audio","Language":"fre"}]},
			{"Id":"m2","Name":"No Runtime","Type":"Movie","Genres":["Reality"],"RunTimeTicks":0,"MediaStreams":[]},
			{"Id":"s1","Name":"The Wire","Type":"Series","Genres":["Crime"]},
			{"Id":"s2","Name":"Empty Series","Type":"Series","Genres":["Drama"]}
		]}`))
	}))
	mux.HandleFunc("/Shows/s1/Episodes", authed(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Items":[
			{"Id":"e1","RunTimeTicks":15000000000,"MediaStreams":[{"Type":"Audio","Language":"eng"}]},
			{"Id":"e2","RunTimeTicks":27000000000,"MediaStreams":[{"Type":"Audio","Language":"fre"}]}
		]}`))
	}))
	mux.HandleFunc("/Shows/s2/Episodes", authed(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Items":[]}`))
	}))

	return httptest.NewServer(mux)
}

func newTestClient(t *testing.T, srv *httptest.Server, username string) *Client {
	t.Helper()
	c, err := NewClient(srv.URL, testToken, username, 4, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return c
}

func TestFetchShows(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	c := newTestClient(t, srv, "vidar")
	shows, err := c.FetchShows(context.Background())
	if err != nil {
		t.Fatalf("FetchShows() error = %v", err)
	}

	if len(shows) != 3 {
		t.Fatalf("len(shows) = %d, want 3 (empty series skipped)", len(shows))
	}

	heat := shows[0]
	if heat.Name != "Heat" {
		t.Fatalf("shows[0].Name = %q, want Heat", heat.Name)
	}
	if !reflect.DeepEqual(heat.Properties.Types, []string{"movie"}) {
		t.Errorf("Heat types = %v, want [movie]", heat.Properties.Types)
	}
	if !reflect.DeepEqual(heat.Properties.Genres, []string{"Drame", "Crime"}) {
		t.Errorf("Heat genres = %v, want [Drame Crime]", heat.Properties.Genres)
	}
	if !reflect.DeepEqual(heat.Properties.Languages, []string{"fre", "eng"}) {
		t.Errorf("Heat languages = %v, want [fre eng]", heat.Properties.Languages)
	}
	min, max, ok := heat.Properties.DurationBounds()
	if !ok || min != 120 || max != 120 {
		t.Errorf("Heat duration = %v/%v/%v, want 120/120/true", min, max, ok)
	}

	noRuntime := shows[1]
	if noRuntime.Name != "No Runtime" {
		t.Fatalf("shows[1].Name = %q, want No Runtime", noRuntime.Name)
	}
	if noRuntime.Properties.Duration[0] != nil || noRuntime.Properties.Duration[1] != nil {
		t.Error("zero RunTimeTicks should leave duration bounds unset")
	}
	if len(noRuntime.Properties.Genres) != 0 {
		t.Errorf("unknown genre should be dropped, got %v", noRuntime.Properties.Genres)
	}

	wire := shows[2]
	if wire.Name != "The Wire" {
		t.Fatalf("shows[2].Name = %q, want The Wire", wire.Name)
	}
	if !reflect.DeepEqual(wire.Properties.Types, []string{"series"}) {
		t.Errorf("Wire types = %v, want [series]", wire.Properties.Types)
	}
	min, max, ok = wire.Properties.DurationBounds()
	if !ok || min != 25 || max != 45 {
		t.Errorf("Wire duration = %v/%v/%v, want 25/45/true", min, max, ok)
	}
	if !reflect.DeepEqual(wire.Properties.Languages, []string{"eng"}) {
		t.Errorf("Wire languages = %v, want first episode's [eng]", wire.Properties.Languages)
	}
}

func TestResolveUserNotFound(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	c := newTestClient(t, srv, "ghost")
	_, err := c.FetchShows(context.Background())
	if err == nil {
		t.Fatal("FetchShows() error = nil, want user not found")
	}
	if !strings.Contains(err.Error(), `user "ghost" not found`) {
		t.Fatalf("FetchShows() error = %v", err)
	}
}

func TestResolveUserMemoized(t *testing.T) {
	calls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/Users", func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`[{"Name":"vidar","Id":"u1"}]`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := newTestClient(t, srv, "vidar")
	for i := 0; i < 3; i++ {
		id, err := c.ResolveUser(context.Background())
		if err != nil {
			t.Fatalf("ResolveUser() error = %v", err)
		}
		if id != "u1" {
			t.Fatalf("ResolveUser() = %q, want u1", id)
		}
	}
	if calls != 1 {
		t.Fatalf("user lookup calls = %d, want 1", calls)
	}
}

func TestPing(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	c := newTestClient(t, srv, "vidar")
	info, err := c.Ping(context.Background())
	if err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
	if info.ServerName != "test" || info.Version != "10.9.0" {
		t.Fatalf("Ping() = %+v", info)
	}
}

func TestRejectsBadToken(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	c, err := NewClient(srv.URL, "wrong", "vidar", 4, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	if _, err := c.FetchShows(context.Background()); err == nil {
		t.Fatal("FetchShows() with a bad token should fail")
	}
}

func TestNewClientNormalizesURL(t *testing.T) {
	c, err := NewClient("jellyfin.local:8096/", testToken, "vidar", 0, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	if c.baseURL != "https://jellyfin.local:8096" {
		t.Fatalf("baseURL = %q", c.baseURL)
	}
	if c.workers != defaultWorkers {
		t.Fatalf("workers = %d, want default %d", c.workers, defaultWorkers)
	}
}
