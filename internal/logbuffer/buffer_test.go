/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package logbuffer

import (
	"testing"
	"time"
)

func TestBufferWrapsAtCapacity(t *testing.T) {
	b := New(3)
	for i, msg := range []string{"one", "two", "three", "four"} {
		b.Add(LogEntry{Message: msg, Timestamp: time.Unix(int64(i), 0)})
	}

	all := b.All()
	if len(all) != 3 {
		t.Fatalf("len(All()) = %d, want 3", len(all))
	}
	if all[0].Message != "two" || all[2].Message != "four" {
		t.Errorf("All() = [%s .. %s], want [two .. four]", all[0].Message, all[2].Message)
	}
}

func TestQueryFilters(t *testing.T) {
	b := New(10)
	b.Add(LogEntry{Level: "info", Component: "pipeline", Message: "catalog generated"})
	b.Add(LogEntry{Level: "error", Component: "jellyfin", Message: "episode lookup failed"})
	b.Add(LogEntry{Level: "info", Component: "jellyfin", Message: "library retrieved"})

	tests := []struct {
		name   string
		params QueryParams
		want   int
	}{
		{"by level", QueryParams{Level: "error"}, 1},
		{"by component", QueryParams{Component: "jellyfin"}, 2},
		{"by search", QueryParams{Search: "CATALOG"}, 1},
		{"with limit", QueryParams{Level: "info", Limit: 1}, 1},
		{"no match", QueryParams{Component: "store"}, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := len(b.Query(tc.params)); got != tc.want {
				t.Errorf("len(Query()) = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestQueryDescending(t *testing.T) {
	b := New(10)
	b.Add(LogEntry{Message: "first"})
	b.Add(LogEntry{Message: "second"})

	got := b.Query(QueryParams{Descending: true})
	if len(got) != 2 || got[0].Message != "second" {
		t.Fatalf("Query(Descending) first entry = %q, want %q", got[0].Message, "second")
	}
}

func TestWriterParsesZerologJSON(t *testing.T) {
	b := New(10)
	w := NewWriter(b, nil)

	line := []byte(`{"level":"warn","component":"eventbus","node_id":"a1","message":"redis unreachable"}` + "\n")
	if _, err := w.Write(line); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	all := b.All()
	if len(all) != 1 {
		t.Fatalf("len(All()) = %d, want 1", len(all))
	}
	entry := all[0]
	if entry.Level != "warn" || entry.Component != "eventbus" || entry.Message != "redis unreachable" {
		t.Errorf("entry = %+v, wrong standard fields", entry)
	}
	if entry.Fields["node_id"] != "a1" {
		t.Errorf("Fields[node_id] = %v, want a1", entry.Fields["node_id"])
	}
}

func TestComponentsAndStats(t *testing.T) {
	b := New(10)
	b.Add(LogEntry{Level: "info", Component: "pipeline"})
	b.Add(LogEntry{Level: "info", Component: "pipeline"})
	b.Add(LogEntry{Level: "error", Component: "store"})

	if got := len(b.Components()); got != 2 {
		t.Errorf("len(Components()) = %d, want 2", got)
	}
	stats := b.Stats()
	if stats.Count != 3 || stats.LevelCount["info"] != 2 {
		t.Errorf("Stats() = %+v, want count 3, info 2", stats)
	}
}
