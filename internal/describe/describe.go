/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package describe renders a human-readable summary of a generated channel:
// broadcast window, block and show statistics, genres and fillers.
package describe

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/friendsincode/vidar_tv/internal/grid"
)

// showPreviewCap bounds how many distinct show names the report lists.
const showPreviewCap = 5

// Render produces the channel report. dataDir locates channel logos
// (dataDir/logo/<stem>); the logo line only reports file presence.
func Render(ch grid.Channel, dataDir string) string {
	name := ch.Name
	if name == "" {
		name = "Sans nom"
	}
	desc := ch.Description
	if desc == "" {
		desc = "Aucune"
	}

	logoStem := ch.Logo
	if logoStem == "" {
		logoStem = ch.Name + ".png"
	}
	logo := "Non"
	if _, err := os.Stat(filepath.Join(dataDir, "logo", logoStem)); err == nil {
		logo = "Oui"
	}

	blockCount := len(ch.Blocks)
	var totalDuration float64
	blocksWithoutShows := 0
	totalShows := 0
	uniqueShows := make(map[string]bool)
	slotDurations := make(map[int]bool)
	genres := make(map[string]bool)

	for _, b := range ch.Blocks {
		totalDuration += b.End - b.Begin
		if len(b.Shows) == 0 {
			blocksWithoutShows++
		}
		totalShows += len(b.Shows)
		for _, s := range b.Shows {
			if s.Name != "" {
				uniqueShows[s.Name] = true
			}
		}
		slotDurations[b.SlotFormat.SlotDuration] = true
		for _, crit := range b.Criteria {
			if crit.Category != grid.CategoryGenre {
				continue
			}
			for _, v := range crit.Values {
				genres[fmt.Sprintf("%v", v)] = true
			}
		}
	}

	meanDuration := 0.0
	if blockCount > 0 {
		meanDuration = totalDuration / float64(blockCount)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Chaîne : %s\n", name)
	fmt.Fprintf(&sb, "Description : %s\n", desc)
	fmt.Fprintf(&sb, "Logo présent : %s\n", logo)
	fmt.Fprintf(&sb, "Période de diffusion : %s -> %s\n\n", grid.FormatHour(ch.Begin), grid.FormatHour(ch.End))

	sb.WriteString("Blocks\n")
	fmt.Fprintf(&sb, " - Nombre de blocks : %d\n", blockCount)
	fmt.Fprintf(&sb, " - Blocks sans shows : %d\n", blocksWithoutShows)
	fmt.Fprintf(&sb, " - Durée totale des blocks : %.2f h\n", totalDuration)
	fmt.Fprintf(&sb, " - Durée moyenne d'un block : %.2f h\n", meanDuration)
	if len(slotDurations) > 0 {
		durations := sortedInts(slotDurations)
		fmt.Fprintf(&sb, " - Slot durations rencontrées : %v (min=%d, max=%d)\n",
			durations, durations[0], durations[len(durations)-1])
	} else {
		sb.WriteString(" - Slot durations rencontrées : Aucune\n")
	}
	sb.WriteString("\n")

	sb.WriteString("Shows\n")
	fmt.Fprintf(&sb, " - Nombre total d'émissions listées : %d\n", totalShows)
	fmt.Fprintf(&sb, " - Nombre d'émissions uniques : %d\n", len(uniqueShows))
	if len(uniqueShows) > 0 {
		preview := sortedStrings(uniqueShows)
		if len(preview) > showPreviewCap {
			preview = preview[:showPreviewCap]
		}
		fmt.Fprintf(&sb, " - Aperçu (%d max) : %s\n", showPreviewCap, strings.Join(preview, ", "))
	}
	sb.WriteString("\n")

	sb.WriteString("Genres\n")
	if len(genres) > 0 {
		fmt.Fprintf(&sb, " - %s\n", strings.Join(sortedStrings(genres), ", "))
	} else {
		sb.WriteString(" - Aucun genre détecté dans les critères\n")
	}
	sb.WriteString("\n")

	if len(ch.Fillers) > 0 {
		fmt.Fprintf(&sb, "Fillers : %s\n", strings.Join(ch.Fillers, ", "))
	} else {
		sb.WriteString("Fillers : Aucun\n")
	}

	return sb.String()
}

// RenderCatalog renders every channel of a catalog, separated by a rule.
func RenderCatalog(cat *grid.Catalog, dataDir string) string {
	parts := make([]string, 0, len(cat.Channels))
	for _, ch := range cat.Channels {
		parts = append(parts, Render(ch, dataDir))
	}
	return strings.Join(parts, "\n"+strings.Repeat("-", 40)+"\n\n")
}

func sortedInts(set map[int]bool) []int {
	out := make([]int, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}

func sortedStrings(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
