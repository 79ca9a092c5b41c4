/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package validator re-checks every structural, categorical, temporal and
// arithmetic rule a finished catalog must uphold, independently of how the
// catalog was produced. It works on loosely-typed JSON documents so that
// hand-authored catalogs get the same scrutiny as generated ones, and it
// never fails on malformed shapes: every violation becomes one message in
// the returned list, prefixed with the path of the offending record
// ([channel#i:name][block#j][criteria#k]).
package validator

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/friendsincode/vidar_tv/internal/grid"
)

const tolerance = 1e-6

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= tolerance
}

// ValidateBytes parses raw JSON and validates it. The error return is
// reserved for undecodable input; a decodable document always yields a
// (possibly empty) finding list.
func ValidateBytes(data []byte) ([]string, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		return []string{"[catalog] document must be a JSON object"}, nil
	}
	return Validate(obj), nil
}

// Validate checks a catalog document and returns one message per violation,
// in document order. An empty result means the catalog is valid.
func Validate(doc map[string]any) []string {
	errs := validateCatalogStruct(doc)

	channels, _ := doc["channels"].([]any)
	for i, raw := range channels {
		ch, ok := raw.(map[string]any)
		if !ok {
			errs = append(errs, fmt.Sprintf("[catalog] channel#%d must be a JSON object", i))
			continue
		}
		errs = append(errs, validateChannel(ch, i)...)
	}
	return errs
}

func validateCatalogStruct(doc map[string]any) []string {
	var errs []string
	for _, key := range []string{"name", "step", "channels"} {
		if _, ok := doc[key]; !ok {
			errs = append(errs, fmt.Sprintf("[catalog] missing key: %s", key))
		}
	}
	if raw, ok := doc["channels"]; ok {
		if _, isList := raw.([]any); !isList {
			errs = append(errs, "[catalog] 'channels' must be a list")
		}
	}
	return errs
}

func validateChannel(ch map[string]any, idx int) []string {
	var errs []string
	prefix := fmt.Sprintf("[channel#%d:%s]", idx, displayName(ch))

	for _, key := range []string{"name", "description", "begin", "end", "fillers", "blocks"} {
		if _, ok := ch[key]; !ok {
			errs = append(errs, fmt.Sprintf("%s missing key: %s", prefix, key))
		}
	}
	if raw, ok := ch["name"]; ok {
		if _, isStr := raw.(string); !isStr {
			errs = append(errs, fmt.Sprintf("%s 'name' must be a string", prefix))
		}
	}
	if raw, ok := ch["description"]; ok {
		if _, isStr := raw.(string); !isStr {
			errs = append(errs, fmt.Sprintf("%s 'description' must be a string", prefix))
		}
	}

	// Window bounds. Missing values default to zero so the ordering check
	// still runs; non-numeric values disable every check that needs them.
	begin, beginOK := numberOrDefault(ch, "begin")
	end, endOK := numberOrDefault(ch, "end")
	boundsKnown := beginOK && endOK
	if boundsKnown {
		if !(begin < end) {
			errs = append(errs, fmt.Sprintf("%s begin < end required (begin=%v, end=%v)", prefix, begin, end))
		}
	} else {
		errs = append(errs, fmt.Sprintf("%s begin/end must be numeric", prefix))
	}

	if raw, ok := ch["fillers"]; ok {
		fillers, isList := raw.([]any)
		if !isList {
			errs = append(errs, fmt.Sprintf("%s 'fillers' must be a list", prefix))
		} else {
			for _, g := range fillers {
				if s, isStr := g.(string); !isStr || !grid.IsGenreKey(s) {
					errs = append(errs, fmt.Sprintf("%s unknown filler genre (normalized key required): %v", prefix, g))
				}
			}
		}
	}

	blocks, blocksOK := ch["blocks"].([]any)
	if !blocksOK || len(blocks) == 0 {
		errs = append(errs, fmt.Sprintf("%s 'blocks' must be a non-empty list", prefix))
		return errs
	}

	sorted, sortable := sortBlocks(blocks)
	if !sortable {
		errs = append(errs, fmt.Sprintf("%s cannot sort blocks by 'begin' (numeric values required)", prefix))
		return errs
	}

	if boundsKnown {
		errs = append(errs, validateContinuity(sorted, begin, end, prefix)...)
	}

	for j, b := range sorted {
		errs = append(errs, validateBlock(b.block, fmt.Sprintf("%s[block#%d]", prefix, j))...)
	}
	return errs
}

// sortedBlock pairs a block with its parsed bounds. end carries its own
// validity flag: a block with a broken end is still sortable but excluded
// from the continuity checks that need it.
type sortedBlock struct {
	block map[string]any
	begin float64
	end   float64
	endOK bool
}

func sortBlocks(blocks []any) ([]sortedBlock, bool) {
	out := make([]sortedBlock, 0, len(blocks))
	for _, raw := range blocks {
		b, ok := raw.(map[string]any)
		if !ok {
			return nil, false
		}
		begin, ok := toNumber(b["begin"])
		if !ok {
			return nil, false
		}
		end, endOK := toNumber(b["end"])
		out = append(out, sortedBlock{block: b, begin: begin, end: end, endOK: endOK})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].begin < out[j].begin })
	return out, true
}

// validateContinuity checks that the sorted blocks exactly tile the channel
// window: boundary alignment, no overlaps, no gaps, nothing outside the
// window. Overlap and gap are distinct findings and can both fire on the
// same pair.
func validateContinuity(sorted []sortedBlock, begin, end float64, prefix string) []string {
	var errs []string

	if !almostEqual(sorted[0].begin, begin) {
		errs = append(errs, fmt.Sprintf("%s first block must start at 'begin' (want %v, got %v)", prefix, begin, sorted[0].begin))
	}
	last := sorted[len(sorted)-1]
	if last.endOK && !almostEqual(last.end, end) {
		errs = append(errs, fmt.Sprintf("%s last block must end at 'end' (want %v, got %v)", prefix, end, last.end))
	}

	for i := 0; i < len(sorted)-1; i++ {
		cur, next := sorted[i], sorted[i+1]
		if !cur.endOK {
			continue
		}
		if cur.end > next.begin+tolerance {
			errs = append(errs, fmt.Sprintf("%s blocks %d and %d overlap (end %v > begin %v)", prefix, i, i+1, cur.end, next.begin))
		}
		if !almostEqual(cur.end, next.begin) {
			errs = append(errs, fmt.Sprintf("%s gap between blocks %d and %d (end %v != begin %v)", prefix, i, i+1, cur.end, next.begin))
		}
	}

	for j, b := range sorted {
		if !b.endOK {
			continue
		}
		if b.begin < begin-tolerance || b.end > end+tolerance {
			errs = append(errs, fmt.Sprintf("%s block#%d outside channel range (block [%v,%v] vs [%v,%v])", prefix, j, b.begin, b.end, begin, end))
		}
	}
	return errs
}

func validateBlock(block map[string]any, prefix string) []string {
	var errs []string

	for _, key := range []string{"criteria", "begin", "end", "slot_count", "slot_format", "shows"} {
		if _, ok := block[key]; !ok {
			errs = append(errs, fmt.Sprintf("%s missing key: %s", prefix, key))
		}
	}

	begin, beginOK := numberOrDefault(block, "begin")
	end, endOK := numberOrDefault(block, "end")
	boundsKnown := beginOK && endOK
	if boundsKnown {
		if !(begin < end) {
			errs = append(errs, fmt.Sprintf("%s begin < end required (begin=%v, end=%v)", prefix, begin, end))
		}
	} else {
		errs = append(errs, fmt.Sprintf("%s begin/end must be numeric", prefix))
	}

	slotCountRaw := block["slot_count"]
	slotCount, slotCountNumeric := toNumber(slotCountRaw)
	if !slotCountNumeric || (slotCount != 1 && slotCount != 2) {
		errs = append(errs, fmt.Sprintf("%s slot_count must be 1 or 2 (got %v)", prefix, slotCountRaw))
	}

	sf, sfIsObject := slotFormatOf(block)
	if !sfIsObject || !allowedSlotFormat(sf) {
		errs = append(errs, fmt.Sprintf("%s slot_format not allowed or invalid: %v", prefix, block["slot_format"]))
	}

	// Duration arithmetic needs usable bounds, an integral slot count and an
	// object-shaped slot_format; a missing slot_duration counts as zero.
	if sfIsObject && boundsKnown && slotCountNumeric && math.Trunc(slotCount) == slotCount {
		if slotDuration, ok := slotDurationOf(sf); ok {
			expected := slotDuration * slotCount / 60.0
			actual := end - begin
			if !almostEqual(expected, actual) {
				errs = append(errs, fmt.Sprintf("%s block duration %vh != %vh expected (slot_duration*slot_count)", prefix, actual, expected))
			}
		}
	}

	criteria, criteriaOK := block["criteria"].([]any)
	if !criteriaOK || len(criteria) == 0 {
		errs = append(errs, fmt.Sprintf("%s criteria must be a non-empty list", prefix))
	} else {
		for k, raw := range criteria {
			critPrefix := fmt.Sprintf("%s[criteria#%d]", prefix, k)
			crit, ok := raw.(map[string]any)
			if !ok {
				errs = append(errs, fmt.Sprintf("%s must be a JSON object", critPrefix))
				continue
			}
			errs = append(errs, validateCriterion(crit, critPrefix)...)
		}
	}

	if _, ok := block["shows"]; !ok {
		errs = append(errs, fmt.Sprintf("%s 'shows' missing", prefix))
	} else if _, isList := block["shows"].([]any); !isList {
		errs = append(errs, fmt.Sprintf("%s 'shows' must be a list", prefix))
	}

	return errs
}

func validateCriterion(crit map[string]any, prefix string) []string {
	var errs []string

	cat, _ := crit["category"].(string)
	if !grid.Category(cat).Valid() {
		errs = append(errs, fmt.Sprintf("%s category invalid: %v (want [duration genre language type])", prefix, crit["category"]))
	}

	if _, isBool := crit["forbidden"].(bool); !isBool {
		errs = append(errs, fmt.Sprintf("%s 'forbidden' must be a boolean", prefix))
	}

	values, valuesOK := crit["values"].([]any)
	if !valuesOK || len(values) == 0 {
		errs = append(errs, fmt.Sprintf("%s 'values' must be a non-empty list", prefix))
		return errs
	}

	switch grid.Category(cat) {
	case grid.CategoryGenre:
		for _, v := range values {
			if s, isStr := v.(string); !isStr || !grid.IsGenreKey(s) {
				errs = append(errs, fmt.Sprintf("%s unknown genre (normalized key required): %v", prefix, v))
			}
		}
	case grid.CategoryType:
		for _, v := range values {
			if s, isStr := v.(string); !isStr || (s != "movie" && s != "series") {
				errs = append(errs, fmt.Sprintf("%s type invalid: %v (want [movie series])", prefix, v))
			}
		}
	case grid.CategoryLanguage:
		for _, v := range values {
			if _, isStr := v.(string); !isStr {
				errs = append(errs, fmt.Sprintf("%s language must be a string (got %T)", prefix, v))
			}
		}
	case grid.CategoryDuration:
		for _, v := range values {
			n, numeric := toNumber(v)
			if !numeric {
				errs = append(errs, fmt.Sprintf("%s duration must be numeric minutes (got %T)", prefix, v))
			} else if n <= 0 {
				errs = append(errs, fmt.Sprintf("%s duration must be > 0 (got %v)", prefix, v))
			}
		}
	}
	return errs
}

// allowedSlotFormat reports whether sf matches one of the enumerated shapes
// on all three fields.
func allowedSlotFormat(sf map[string]any) bool {
	min, okMin := toNumber(sf["show_min_duration"])
	max, okMax := toNumber(sf["show_max_duration"])
	dur, okDur := toNumber(sf["slot_duration"])
	if !okMin || !okMax || !okDur {
		return false
	}
	for _, a := range grid.AllowedSlotFormats {
		if min == float64(a.ShowMin) && max == float64(a.ShowMax) && dur == float64(a.SlotDuration) {
			return true
		}
	}
	return false
}

// slotFormatOf returns the block's slot_format as an object. A missing key
// behaves like an empty object (which no allowed shape matches); any other
// non-object shape is reported by the caller.
func slotFormatOf(block map[string]any) (map[string]any, bool) {
	raw, ok := block["slot_format"]
	if !ok {
		return map[string]any{}, true
	}
	sf, isObject := raw.(map[string]any)
	return sf, isObject
}

// slotDurationOf mirrors the arithmetic gate's tolerance for sparse slot
// formats: a missing slot_duration counts as zero, a non-numeric one
// disables the check.
func slotDurationOf(sf map[string]any) (float64, bool) {
	raw, ok := sf["slot_duration"]
	if !ok {
		return 0, true
	}
	return toNumber(raw)
}

func displayName(ch map[string]any) string {
	raw, ok := ch["name"]
	if !ok {
		return "?"
	}
	if s, isStr := raw.(string); isStr {
		return s
	}
	return fmt.Sprintf("%v", raw)
}

// numberOrDefault reads a numeric field, defaulting to zero when the key is
// absent. Present but non-numeric values report false.
func numberOrDefault(m map[string]any, key string) (float64, bool) {
	raw, ok := m[key]
	if !ok {
		return 0, true
	}
	return toNumber(raw)
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
