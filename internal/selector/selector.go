/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package selector

import (
	"math/rand"

	"github.com/friendsincode/vidar_tv/internal/grid"
)

// curationCap bounds how many matched shows a block keeps.
const curationCap = 10

// AssignShows fills block.Shows with a curated random sample of the shows
// matching the block's criteria. The effective criteria prepend a duration
// rule derived from the block's slot format, so a block whose stored
// criteria lost their duration rule still only receives shows that fit its
// slots. Only block.Shows is mutated; it is always left non-nil so the
// serialized block carries a list.
func AssignShows(block *grid.Block, shows []grid.Show, rng *rand.Rand) {
	criteria := make([]grid.Criterion, 0, len(block.Criteria)+1)
	criteria = append(criteria, block.SlotFormat.DurationCriterion())
	criteria = append(criteria, block.Criteria...)

	matched := make([]grid.Show, 0)
	for _, show := range shows {
		if MatchesAll(criteria, show.Properties) {
			matched = append(matched, show)
		}
	}

	rng.Shuffle(len(matched), func(i, j int) {
		matched[i], matched[j] = matched[j], matched[i]
	})
	if len(matched) > curationCap {
		matched = matched[:curationCap]
	}
	block.Shows = matched
}

// AssignChannel runs AssignShows over every block of a channel.
func AssignChannel(ch *grid.Channel, shows []grid.Show, rng *rand.Rand) {
	for i := range ch.Blocks {
		AssignShows(&ch.Blocks[i], shows, rng)
	}
}
