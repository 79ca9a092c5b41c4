/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package selector evaluates selection criteria against content items and
// fills scheduled blocks with a curated sample of the shows that satisfy
// them.
package selector

import "github.com/friendsincode/vidar_tv/internal/grid"

// Matches evaluates one criterion against one content item.
//
// A criterion with no values matches nothing, unconditionally: the Forbidden
// inversion is skipped entirely so an empty rule can never turn into a
// match-everything exclusion.
//
// Duration criteria test strict open-interval containment of the item's
// runtime range; an item with an unknown runtime never matches the base
// rule. Categorical criteria test set intersection. Forbidden inverts the
// base result after evaluation, so an item missing the excluded trait
// satisfies the exclusion.
func Matches(c grid.Criterion, p grid.ShowProperties) bool {
	if len(c.Values) == 0 {
		return false
	}
	ok := baseMatch(c, p)
	if c.Forbidden {
		return !ok
	}
	return ok
}

func baseMatch(c grid.Criterion, p grid.ShowProperties) bool {
	if c.Category == grid.CategoryDuration {
		lo, hi, known := p.DurationBounds()
		if !known {
			return false
		}
		min, max, numeric := numericBounds(c.Values)
		if !numeric {
			return false
		}
		return min < lo && hi < max
	}

	props := p.Categorical(c.Category)
	if len(props) == 0 {
		return false
	}
	want := make(map[string]struct{}, len(c.Values))
	for _, v := range c.Values {
		if s, ok := v.(string); ok {
			want[s] = struct{}{}
		}
	}
	for _, prop := range props {
		if _, ok := want[prop]; ok {
			return true
		}
	}
	return false
}

// MatchesAll reports whether the item satisfies every criterion.
func MatchesAll(criteria []grid.Criterion, p grid.ShowProperties) bool {
	for _, c := range criteria {
		if !Matches(c, p) {
			return false
		}
	}
	return true
}

// numericBounds extracts the min and max of a criterion's values, tolerating
// the numeric types JSON decoding and in-process construction produce. Any
// non-numeric member disqualifies the bounds.
func numericBounds(values []any) (min, max float64, ok bool) {
	for i, v := range values {
		f, numeric := asFloat(v)
		if !numeric {
			return 0, 0, false
		}
		if i == 0 || f < min {
			min = f
		}
		if i == 0 || f > max {
			max = f
		}
	}
	return min, max, true
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
