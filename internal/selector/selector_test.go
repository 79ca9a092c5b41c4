/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package selector

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/friendsincode/vidar_tv/internal/grid"
)

func TestAssignShowsCuratesToTen(t *testing.T) {
	var shows []grid.Show
	for i := 0; i < 25; i++ {
		shows = append(shows, grid.Show{
			Name:       fmt.Sprintf("show-%02d", i),
			Properties: movieProps([]string{"Action"}, 48, 48),
		})
	}

	block := grid.Block{
		SlotFormat: grid.SlotFormat{ShowMin: 45, ShowMax: 52, SlotDuration: 60},
		Criteria: []grid.Criterion{
			{Category: grid.CategoryGenre, Values: []any{"Action"}},
		},
	}
	AssignShows(&block, shows, rand.New(rand.NewSource(1)))

	if len(block.Shows) != 10 {
		t.Fatalf("len(block.Shows) = %d, want 10", len(block.Shows))
	}
}

func TestAssignShowsSlotFormatGatesRuntime(t *testing.T) {
	shows := []grid.Show{
		{Name: "fits", Properties: movieProps(nil, 46, 50)},
		{Name: "too long", Properties: movieProps(nil, 95, 95)},
		{Name: "unknown runtime", Properties: grid.ShowProperties{Types: []string{"movie"}}},
	}

	// No stored criteria at all: the slot format alone must gate content.
	block := grid.Block{
		SlotFormat: grid.SlotFormat{ShowMin: 45, ShowMax: 52, SlotDuration: 60},
	}
	AssignShows(&block, shows, rand.New(rand.NewSource(1)))

	if len(block.Shows) != 1 || block.Shows[0].Name != "fits" {
		t.Fatalf("block.Shows = %v, want only the fitting show", block.Shows)
	}
}

func TestAssignShowsEmptyMatchStaysList(t *testing.T) {
	block := grid.Block{
		SlotFormat: grid.SlotFormat{ShowMin: 45, ShowMax: 52, SlotDuration: 60},
	}
	AssignShows(&block, nil, rand.New(rand.NewSource(1)))

	if block.Shows == nil {
		t.Fatal("block.Shows is nil, want empty list")
	}
	if len(block.Shows) != 0 {
		t.Fatalf("len(block.Shows) = %d, want 0", len(block.Shows))
	}
}

func TestAssignShowsSeededDeterminism(t *testing.T) {
	var shows []grid.Show
	for i := 0; i < 40; i++ {
		shows = append(shows, grid.Show{
			Name:       fmt.Sprintf("show-%02d", i),
			Properties: movieProps([]string{"Drame"}, 47, 47),
		})
	}
	block := grid.Block{SlotFormat: grid.SlotFormat{ShowMin: 45, ShowMax: 52, SlotDuration: 60}}

	first := block
	AssignShows(&first, shows, rand.New(rand.NewSource(7)))
	second := block
	AssignShows(&second, shows, rand.New(rand.NewSource(7)))

	if len(first.Shows) != len(second.Shows) {
		t.Fatalf("runs differ in size: %d vs %d", len(first.Shows), len(second.Shows))
	}
	for i := range first.Shows {
		if first.Shows[i].Name != second.Shows[i].Name {
			t.Fatalf("runs diverge at %d: %q vs %q", i, first.Shows[i].Name, second.Shows[i].Name)
		}
	}
}

func TestAssignShowsOnlyMutatesShows(t *testing.T) {
	block := grid.Block{
		Begin:      6,
		End:        8,
		SlotCount:  2,
		SlotFormat: grid.SlotFormat{ShowMin: 45, ShowMax: 52, SlotDuration: 60},
		Criteria: []grid.Criterion{
			{Category: grid.CategoryGenre, Values: []any{"Action"}},
		},
	}
	before := block
	AssignShows(&block, []grid.Show{{Name: "x", Properties: movieProps([]string{"Action"}, 48, 48)}}, rand.New(rand.NewSource(1)))

	if block.Begin != before.Begin || block.End != before.End ||
		block.SlotCount != before.SlotCount || block.SlotFormat != before.SlotFormat {
		t.Fatal("AssignShows mutated block timing or format")
	}
	if len(block.Criteria) != 1 {
		t.Fatalf("AssignShows mutated stored criteria: %v", block.Criteria)
	}
}

func TestAnalyze(t *testing.T) {
	d90 := 90.0
	shows := []grid.Show{
		{Name: "a", Properties: grid.ShowProperties{
			Genres:    []string{"Action", "Drame"},
			Types:     []string{"movie"},
			Languages: []string{"fre"},
			Duration:  grid.DurationRange(90, 90),
		}},
		{Name: "b", Properties: grid.ShowProperties{
			Genres:    []string{"Drame", "Romance"},
			Types:     []string{"series"},
			Languages: []string{"fre", "eng"},
			Duration:  [2]*float64{nil, &d90},
		}},
	}

	pools := Analyze(shows)

	wantGenres := []string{"Action", "Drame", "Romance"}
	genres := pools[grid.CategoryGenre]
	if len(genres) != len(wantGenres) {
		t.Fatalf("genre pool = %v, want %v", genres, wantGenres)
	}
	for i, w := range wantGenres {
		if genres[i] != w {
			t.Fatalf("genre pool order = %v, want %v", genres, wantGenres)
		}
	}

	if langs := pools[grid.CategoryLanguage]; len(langs) != 2 {
		t.Fatalf("language pool = %v, want [fre eng]", langs)
	}

	// 90 seen twice, nil bound skipped: one pooled duration value.
	if durs := pools[grid.CategoryDuration]; len(durs) != 1 || durs[0] != 90.0 {
		t.Fatalf("duration pool = %v, want [90]", durs)
	}
}

func TestAnalyzeEmptyCatalog(t *testing.T) {
	pools := Analyze(nil)
	if len(pools) != 0 {
		t.Fatalf("Analyze(nil) = %v, want empty", pools)
	}
}
