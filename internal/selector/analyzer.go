/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package selector

import "github.com/friendsincode/vidar_tv/internal/grid"

// Analyze unions the property values observed across the whole content
// catalog, per category. Values are deduplicated preserving first-seen order
// so a seeded generation run is reproducible. Categories with no observed
// values are absent from the result; unknown runtime bounds are not pooled.
func Analyze(shows []grid.Show) map[grid.Category][]any {
	pools := make(map[grid.Category][]any)
	seen := make(map[grid.Category]map[any]struct{})

	add := func(cat grid.Category, v any) {
		if seen[cat] == nil {
			seen[cat] = make(map[any]struct{})
		}
		if _, dup := seen[cat][v]; dup {
			return
		}
		seen[cat][v] = struct{}{}
		pools[cat] = append(pools[cat], v)
	}

	for _, show := range shows {
		for _, cat := range []grid.Category{grid.CategoryGenre, grid.CategoryType, grid.CategoryLanguage} {
			for _, v := range show.Properties.Categorical(cat) {
				add(cat, v)
			}
		}
		for _, bound := range show.Properties.Duration {
			if bound != nil {
				add(grid.CategoryDuration, *bound)
			}
		}
	}
	return pools
}
