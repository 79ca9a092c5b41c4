/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package generator builds channel structure: it subsamples each channel's
// slot configuration and property pools from the analyzed content catalog,
// then tiles the channel's broadcast window with blocks carrying synthesized
// selection criteria.
package generator

import (
	"math/rand"

	"github.com/rs/zerolog"

	"github.com/friendsincode/vidar_tv/internal/grid"
)

// Subsampling caps. Each channel draws a bounded random subset of the slot
// shapes, slot counts and property values it may use, so per-block criteria
// fan-out stays small.
const (
	maxSlotFormatChoices  = 2
	maxSlotCountChoices   = 2
	maxPropertyPoolValues = 10
	maxCriterionValues    = 3
)

// slotCountOptions are the slot counts a block may pack. The validator's
// published contract only accepts 1 or 2; 3 remains in the generation pool
// for historical compatibility and is flagged downstream.
var slotCountOptions = []int{1, 2, 3}

// Builder assembles channel frames over a shared seeded random source. One
// Builder drives one generation run; it is not safe for concurrent use.
type Builder struct {
	rng    *rand.Rand
	pools  map[grid.Category][]any
	logger zerolog.Logger
}

// NewBuilder returns a Builder drawing from the analyzed property pools.
func NewBuilder(pools map[grid.Category][]any, rng *rand.Rand, logger zerolog.Logger) *Builder {
	return &Builder{
		rng:    rng,
		pools:  pools,
		logger: logger.With().Str("component", "generator").Logger(),
	}
}

// Build fills in a channel frame: the subsampled slot configuration and
// property pools, then the block tiling. Name, description, window, fillers
// and logo are expected to be set by the caller.
func (b *Builder) Build(ch *grid.Channel) {
	ch.AvailableFormats = Subsample(b.rng, grid.AllowedSlotFormats, maxSlotFormatChoices)
	ch.AvailableCounts = Subsample(b.rng, slotCountOptions, maxSlotCountChoices)

	props := make(map[grid.Category][]any, len(b.pools))
	for _, cat := range grid.Categories {
		pool := b.pools[cat]
		if len(pool) == 0 {
			continue
		}
		props[cat] = Subsample(b.rng, pool, maxPropertyPoolValues)
	}
	ch.AvailableProperties = props

	b.schedule(ch)
}

// schedule tiles the channel's window with blocks. The cursor starts at the
// channel's begin hour and every placed block advances it by the block's
// raw (un-normalized) end. A placement fails when the candidate block wraps
// past midnight beyond the channel's end hour; the first failure flips the
// builder into forced-minimum mode for the rest of the channel, and two
// consecutive failures terminate the tiling. Termination may leave the
// cursor short of the channel's end; the validator reports the residue.
func (b *Builder) schedule(ch *grid.Channel) {
	cursor := ch.Begin
	blocks := make([]grid.Block, 0)
	forceMinimum := false
	retry := 0
	for {
		block, ok := b.generateBlock(ch, cursor, forceMinimum)
		if ok {
			cursor = block.End
			blocks = append(blocks, block)
			retry = 0
		} else {
			forceMinimum = true
			retry++
		}
		if retry > 1 {
			break
		}
	}
	ch.Blocks = blocks

	if grid.NormalizeHour(cursor) != ch.End {
		b.logger.Debug().
			Str("channel", ch.Name).
			Float64("cursor", cursor).
			Float64("end", ch.End).
			Int("blocks", len(blocks)).
			Msg("tiling stopped short of channel end")
	}
}

func (b *Builder) generateBlock(ch *grid.Channel, begin float64, forceMinimum bool) (grid.Block, bool) {
	var format grid.SlotFormat
	var count int
	if forceMinimum {
		format = grid.MinSlotFormat(ch.AvailableFormats)
		count = minInt(ch.AvailableCounts)
	} else {
		format = ch.AvailableFormats[b.rng.Intn(len(ch.AvailableFormats))]
		count = ch.AvailableCounts[b.rng.Intn(len(ch.AvailableCounts))]
	}

	end := begin + format.Hours(count)
	normalized := grid.NormalizeHour(end)
	if end != normalized && normalized > ch.End {
		return grid.Block{}, false
	}

	return grid.Block{
		Begin:      begin,
		End:        end,
		SlotCount:  count,
		SlotFormat: format,
		Criteria:   b.blockCriteria(ch, format),
		Shows:      make([]grid.Show, 0),
	}, true
}

// blockCriteria synthesizes a block's criteria from the channel's property
// pools, in canonical category order so seeded runs reproduce. The duration
// rule comes straight from the chosen slot format; every other category
// gets a small random subsample of the channel's pool.
func (b *Builder) blockCriteria(ch *grid.Channel, format grid.SlotFormat) []grid.Criterion {
	var criteria []grid.Criterion
	for _, cat := range grid.Categories {
		pool, ok := ch.AvailableProperties[cat]
		if !ok || len(pool) == 0 {
			continue
		}
		if cat == grid.CategoryDuration {
			criteria = append(criteria, format.DurationCriterion())
			continue
		}
		criteria = append(criteria, grid.Criterion{
			Category: cat,
			Values:   Subsample(b.rng, pool, maxCriterionValues),
		})
	}
	return criteria
}

// Subsample picks between 1 and limit elements of options uniformly at
// random. The input is never mutated; the draw count is uniform on [1,
// min(limit, len(options))]. An empty options slice yields nil.
func Subsample[T any](rng *rand.Rand, options []T, limit int) []T {
	n := len(options)
	if n == 0 {
		return nil
	}
	if n > limit {
		n = limit
	}
	keep := rng.Intn(n) + 1

	out := make([]T, len(options))
	copy(out, options)
	rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out[:keep]
}

func minInt(values []int) int {
	min := values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
	}
	return min
}
