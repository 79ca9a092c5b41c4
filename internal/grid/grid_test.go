/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package grid

import "testing"

func TestSlotFormatAllowed(t *testing.T) {
	for _, f := range AllowedSlotFormats {
		if !f.Allowed() {
			t.Errorf("Allowed() = false for enumerated format %+v", f)
		}
	}

	bad := []SlotFormat{
		{ShowMin: 22, ShowMax: 26, SlotDuration: 31},
		{ShowMin: 23, ShowMax: 26, SlotDuration: 30},
		{ShowMin: 45, ShowMax: 53, SlotDuration: 60},
		{},
	}
	for _, f := range bad {
		if f.Allowed() {
			t.Errorf("Allowed() = true for %+v, want false", f)
		}
	}
}

func TestSlotFormatHours(t *testing.T) {
	tests := []struct {
		format SlotFormat
		count  int
		want   float64
	}{
		{SlotFormat{45, 52, 60}, 2, 2.0},
		{SlotFormat{95, 110, 120}, 1, 2.0},
		{SlotFormat{12, 13, 15}, 1, 0.25},
		{SlotFormat{22, 26, 30}, 3, 1.5},
	}
	for _, tt := range tests {
		if got := tt.format.Hours(tt.count); got != tt.want {
			t.Errorf("Hours(%d) of %+v = %v, want %v", tt.count, tt.format, got, tt.want)
		}
	}
}

func TestMinSlotFormat(t *testing.T) {
	got := MinSlotFormat([]SlotFormat{
		{45, 52, 60},
		{12, 13, 15},
		{95, 110, 120},
	})
	if got.SlotDuration != 15 {
		t.Fatalf("MinSlotFormat picked duration %d, want 15", got.SlotDuration)
	}
}

func TestGenreKeys(t *testing.T) {
	keys := GenreKeys()
	if len(keys) != 24 {
		t.Fatalf("GenreKeys() has %d keys, want 24", len(keys))
	}
	for i := 1; i < len(keys); i++ {
		if keys[i-1] >= keys[i] {
			t.Fatalf("GenreKeys() not sorted at %d: %q >= %q", i, keys[i-1], keys[i])
		}
	}
	for _, k := range keys {
		if !IsGenreKey(k) {
			t.Errorf("IsGenreKey(%q) = false for listed key", k)
		}
	}
	if IsGenreKey("Inexistant") {
		t.Error("IsGenreKey(Inexistant) = true, want false")
	}
}

func TestNormalizeGenre(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"Anime", []string{"Animation"}},
		{"Science-Fiction & Fantastique", []string{"Fantastique", "Science-Fiction"}},
		{"Action & Adventure", []string{"Action", "Aventure"}},
		{"Thriller", []string{"Suspense"}},
		{"Comedy", []string{"Comédie"}},
		{"Romance", []string{"Romance"}},
		{"Nope", nil},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := NormalizeGenre(tt.raw)
			if len(got) != len(tt.want) {
				t.Fatalf("NormalizeGenre(%q) = %v, want %v", tt.raw, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("NormalizeGenre(%q) = %v, want %v", tt.raw, got, tt.want)
				}
			}
		})
	}
}

func TestNormalizeHour(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{6.5, 6.5},
		{23.999, 23.999},
		{24, 0},
		{26.5, 2.5},
		{28, 4},
	}
	for _, tt := range tests {
		if got := NormalizeHour(tt.in); got != tt.want {
			t.Errorf("NormalizeHour(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFormatHour(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "12:00 AM"},
		{6, "06:00 AM"},
		{6.1, "06:06 AM"},
		{12, "12:00 PM"},
		{18.5, "06:30 PM"},
		{23.75, "11:45 PM"},
	}
	for _, tt := range tests {
		if got := FormatHour(tt.in); got != tt.want {
			t.Errorf("FormatHour(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCategorical(t *testing.T) {
	p := ShowProperties{
		Genres:    []string{"Action"},
		Types:     []string{"movie"},
		Languages: []string{"fre"},
		Duration:  DurationRange(90, 90),
	}
	if got := p.Categorical(CategoryGenre); len(got) != 1 || got[0] != "Action" {
		t.Errorf("Categorical(genre) = %v", got)
	}
	if got := p.Categorical(CategoryType); len(got) != 1 || got[0] != "movie" {
		t.Errorf("Categorical(type) = %v", got)
	}
	if got := p.Categorical(CategoryDuration); got != nil {
		t.Errorf("Categorical(duration) = %v, want nil", got)
	}
}

func TestDurationBounds(t *testing.T) {
	p := ShowProperties{Duration: DurationRange(22, 45)}
	min, max, ok := p.DurationBounds()
	if !ok || min != 22 || max != 45 {
		t.Fatalf("DurationBounds() = %v, %v, %v, want 22, 45, true", min, max, ok)
	}

	var unknown ShowProperties
	if _, _, ok := unknown.DurationBounds(); ok {
		t.Fatal("DurationBounds() ok = true for unknown runtime")
	}

	max45 := 45.0
	half := ShowProperties{Duration: [2]*float64{nil, &max45}}
	if _, _, ok := half.DurationBounds(); ok {
		t.Fatal("DurationBounds() ok = true with one nil bound")
	}
}

func TestCategoryValid(t *testing.T) {
	for _, c := range Categories {
		if !c.Valid() {
			t.Errorf("Valid() = false for %q", c)
		}
	}
	if Category("color").Valid() {
		t.Error("Valid() = true for unknown category")
	}
}
