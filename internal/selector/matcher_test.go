/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package selector

import (
	"testing"

	"github.com/friendsincode/vidar_tv/internal/grid"
)

func movieProps(genres []string, min, max float64) grid.ShowProperties {
	return grid.ShowProperties{
		Genres:    genres,
		Types:     []string{"movie"},
		Languages: []string{"fre"},
		Duration:  grid.DurationRange(min, max),
	}
}

func TestMatchesEmptyValues(t *testing.T) {
	p := movieProps([]string{"Action"}, 90, 90)

	c := grid.Criterion{Category: grid.CategoryGenre, Values: nil}
	if Matches(c, p) {
		t.Error("empty values matched, want false")
	}

	// Forbidden must not invert the empty-values result.
	c.Forbidden = true
	if Matches(c, p) {
		t.Error("empty forbidden values matched, want false unconditionally")
	}
}

func TestMatchesCategorical(t *testing.T) {
	p := movieProps([]string{"Action", "Drame"}, 90, 90)

	tests := []struct {
		name string
		c    grid.Criterion
		want bool
	}{
		{"genre hit", grid.Criterion{Category: grid.CategoryGenre, Values: []any{"Drame"}}, true},
		{"genre miss", grid.Criterion{Category: grid.CategoryGenre, Values: []any{"Romance"}}, false},
		{"genre one of many", grid.Criterion{Category: grid.CategoryGenre, Values: []any{"Romance", "Action"}}, true},
		{"type hit", grid.Criterion{Category: grid.CategoryType, Values: []any{"movie"}}, true},
		{"type miss", grid.Criterion{Category: grid.CategoryType, Values: []any{"series"}}, false},
		{"language hit", grid.Criterion{Category: grid.CategoryLanguage, Values: []any{"fre", "eng"}}, true},
		{"non-string values ignored", grid.Criterion{Category: grid.CategoryGenre, Values: []any{42}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Matches(tt.c, p); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatchesDuration(t *testing.T) {
	c := grid.Criterion{Category: grid.CategoryDuration, Values: []any{45, 52}}

	tests := []struct {
		name     string
		min, max float64
		want     bool
	}{
		{"inside", 46, 50, true},
		{"exact bounds excluded", 45, 52, false},
		{"below", 30, 40, false},
		{"above", 60, 70, false},
		{"straddles", 40, 50, false},
		{"collapsed movie range inside", 48, 48, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := movieProps(nil, tt.min, tt.max)
			if got := Matches(c, p); got != tt.want {
				t.Errorf("Matches(%v..%v) = %v, want %v", tt.min, tt.max, got, tt.want)
			}
		})
	}

	// JSON-decoded values arrive as float64; same rule must hold.
	cf := grid.Criterion{Category: grid.CategoryDuration, Values: []any{45.0, 52.0}}
	if !Matches(cf, movieProps(nil, 46, 50)) {
		t.Error("float64 values did not match")
	}
}

func TestMatchesDurationUnknownRuntime(t *testing.T) {
	c := grid.Criterion{Category: grid.CategoryDuration, Values: []any{45, 52}}
	p := grid.ShowProperties{Types: []string{"movie"}}

	if Matches(c, p) {
		t.Error("unknown runtime matched, want false")
	}

	// Absence excludes the exclusion: unknown runtime satisfies the
	// forbidden form of the same rule.
	c.Forbidden = true
	if !Matches(c, p) {
		t.Error("unknown runtime did not satisfy forbidden rule, want true")
	}
}

func TestMatchesForbiddenNegates(t *testing.T) {
	p := movieProps([]string{"Horror"}, 90, 90)

	cases := []grid.Criterion{
		{Category: grid.CategoryGenre, Values: []any{"Horror"}},
		{Category: grid.CategoryGenre, Values: []any{"Romance"}},
		{Category: grid.CategoryDuration, Values: []any{80, 100}},
		{Category: grid.CategoryDuration, Values: []any{10, 20}},
		{Category: grid.CategoryType, Values: []any{"series"}},
	}
	for _, c := range cases {
		plain := Matches(c, p)
		c.Forbidden = true
		inverted := Matches(c, p)
		if plain == inverted {
			t.Errorf("forbidden did not negate for %+v: both %v", c, plain)
		}
	}
}

func TestMatchesAll(t *testing.T) {
	p := movieProps([]string{"Action"}, 90, 90)
	criteria := []grid.Criterion{
		{Category: grid.CategoryGenre, Values: []any{"Action"}},
		{Category: grid.CategoryType, Values: []any{"movie"}},
	}
	if !MatchesAll(criteria, p) {
		t.Error("MatchesAll() = false, want true")
	}

	criteria = append(criteria, grid.Criterion{Category: grid.CategoryLanguage, Values: []any{"jpn"}})
	if MatchesAll(criteria, p) {
		t.Error("MatchesAll() = true with one failing criterion")
	}
	if !MatchesAll(nil, p) {
		t.Error("MatchesAll(nil) = false, want vacuous true")
	}
}
