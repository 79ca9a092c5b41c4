/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package grid

// ShowProperties is the fixed-shape property record of a content item.
// Duration holds the item's [min, max] runtime in minutes; a nil bound means
// the library reported no runtime. A movie's range collapses to one value
// repeated, a series spans its shortest and longest episode.
type ShowProperties struct {
	Genres    []string    `json:"genre"`
	Types     []string    `json:"type"`
	Languages []string    `json:"language"`
	Duration  [2]*float64 `json:"duration"`
}

// Categorical returns the property values for one of the string-valued
// categories. Duration is not categorical and yields nil.
func (p ShowProperties) Categorical(cat Category) []string {
	switch cat {
	case CategoryGenre:
		return p.Genres
	case CategoryType:
		return p.Types
	case CategoryLanguage:
		return p.Languages
	}
	return nil
}

// DurationBounds returns the runtime range and whether both bounds are
// known.
func (p ShowProperties) DurationBounds() (min, max float64, ok bool) {
	if p.Duration[0] == nil || p.Duration[1] == nil {
		return 0, 0, false
	}
	return *p.Duration[0], *p.Duration[1], true
}

// DurationRange builds a fully known runtime range.
func DurationRange(min, max float64) [2]*float64 {
	return [2]*float64{&min, &max}
}

// Show is one content item offered to the selector.
type Show struct {
	Name       string         `json:"name"`
	Properties ShowProperties `json:"properties"`
}
