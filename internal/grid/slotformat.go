/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package grid

// SlotFormat pairs the show duration range a slot accepts with the slot's
// length on the grid, all in minutes.
type SlotFormat struct {
	ShowMin      int `json:"show_min_duration"`
	ShowMax      int `json:"show_max_duration"`
	SlotDuration int `json:"slot_duration"`
}

// AllowedSlotFormats is the closed set of slot shapes a block may use.
// Legality is exact equality on all three fields.
var AllowedSlotFormats = []SlotFormat{
	{ShowMin: 22, ShowMax: 26, SlotDuration: 30},
	{ShowMin: 45, ShowMax: 52, SlotDuration: 60},
	{ShowMin: 70, ShowMax: 80, SlotDuration: 90},
	{ShowMin: 95, ShowMax: 110, SlotDuration: 120},
	{ShowMin: 12, ShowMax: 13, SlotDuration: 15},
}

// Allowed reports whether f is one of the enumerated slot shapes.
func (f SlotFormat) Allowed() bool {
	for _, a := range AllowedSlotFormats {
		if f == a {
			return true
		}
	}
	return false
}

// Hours returns the grid length of count slots of this format, in
// fractional hours.
func (f SlotFormat) Hours(count int) float64 {
	return float64(f.SlotDuration*count) / 60
}

// DurationCriterion is the runtime rule a slot format implies: shows must
// run strictly between the format's bounds.
func (f SlotFormat) DurationCriterion() Criterion {
	return Criterion{
		Category: CategoryDuration,
		Values:   []any{f.ShowMin, f.ShowMax},
	}
}

// MinSlotFormat returns the format with the smallest slot duration among
// candidates. The caller guarantees candidates is non-empty.
func MinSlotFormat(candidates []SlotFormat) SlotFormat {
	min := candidates[0]
	for _, c := range candidates[1:] {
		if c.SlotDuration < min.SlotDuration {
			min = c
		}
	}
	return min
}
