/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package grid defines the broadcast grid data model: catalogs of channels
// tiled with blocks, the slot shapes blocks may take, the normalized genre
// vocabulary, and the selection criteria attached to each block.
package grid

// Category names one axis of content selection.
type Category string

const (
	CategoryGenre    Category = "genre"
	CategoryType     Category = "type"
	CategoryLanguage Category = "language"
	CategoryDuration Category = "duration"
)

// Categories lists the valid criterion categories.
var Categories = []Category{CategoryGenre, CategoryType, CategoryLanguage, CategoryDuration}

// Valid reports whether c is one of the four known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryGenre, CategoryType, CategoryLanguage, CategoryDuration:
		return true
	}
	return false
}

// ShowTypes lists the values a type criterion may carry.
var ShowTypes = []string{"movie", "series"}

// Criterion is one inclusion rule over a single category. Forbidden inverts
// the match after evaluation, turning the rule into an exclusion.
type Criterion struct {
	Category  Category `json:"category"`
	Values    []any    `json:"values"`
	Forbidden bool     `json:"forbidden"`
}

// Block is a contiguous segment of a channel's broadcast day. Begin and End
// are fractional hours; End is stored as the raw cursor value and may exceed
// 24 when the block wraps past midnight.
type Block struct {
	Begin      float64     `json:"begin"`
	End        float64     `json:"end"`
	SlotCount  int         `json:"slot_count"`
	SlotFormat SlotFormat  `json:"slot_format"`
	Criteria   []Criterion `json:"criteria"`
	Shows      []Show      `json:"shows"`
}

// Channel is one broadcast channel: a window of the day tiled with blocks
// plus the filler genres used as padding content. The Available* fields are
// the generation-time candidate pools; they ride along in stored catalogs so
// an interrupted run can be inspected, and validation ignores them.
type Channel struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Begin       float64  `json:"begin"`
	End         float64  `json:"end"`
	Fillers     []string `json:"fillers"`
	Logo        string   `json:"logo,omitempty"`
	Blocks      []Block  `json:"blocks"`

	AvailableProperties map[Category][]any `json:"available_properties,omitempty"`
	AvailableFormats    []SlotFormat       `json:"available_slot_formats,omitempty"`
	AvailableCounts     []int              `json:"available_slot_counts,omitempty"`
}

// Pipeline step markers carried by Catalog.Step.
const (
	StepInitialized        = 0
	StepStructureGenerated = 1
	StepContentAssigned    = 2
)

// Catalog is the terminal artifact of a generation run and the unit of
// persistence and validation. Step is a monotonic pipeline cursor allowing
// idempotent resumption.
type Catalog struct {
	Name     string    `json:"name"`
	Step     int       `json:"step"`
	Channels []Channel `json:"channels"`
}
