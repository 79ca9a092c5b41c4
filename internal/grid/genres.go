/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package grid

import "sort"

// NormalizedGenres maps every normalized genre key to the raw library
// genres it absorbs. Keys are the only genre values a catalog may carry;
// aliases exist so library metadata in either language lands on one key.
var NormalizedGenres = map[string][]string{
	"Podcast":         {"Podcast"},
	"Animation":       {"Animation", "Anime"},
	"Science-Fiction": {"Science-Fiction", "Science Fiction", "Science-Fiction & Fantastique"},
	"Fantastique":     {"Fantastique", "Fantasy", "Science-Fiction & Fantastique"},
	"Family":          {"Family", "Familial", "Children"},
	"Horror":          {"Horror", "Horreur"},
	"Mini-Series":     {"Mini-Series"},
	"Documentaire":    {"Documentaire", "Vulgarisation"},
	"Histoire":        {"Histoire", "History"},
	"Action":          {"Action", "Action & Adventure"},
	"Aventure":        {"Aventure", "Adventure", "Action & Adventure"},
	"Crime":           {"Crime"},
	"War & Politics":  {"War & Politics", "Guerre"},
	"Talk Show":       {"Talk Show"},
	"Comédie":         {"Comédie", "Comedy"},
	"Jeux télé":       {"Jeux télé"},
	"Sport":           {"Sport"},
	"Western":         {"Western"},
	"Drame":           {"Drame", "Drama"},
	"Martial Arts":    {"Martial Arts"},
	"Suspense":        {"Suspense", "Thriller"},
	"Mystery":         {"Mystery", "Mystère"},
	"Romance":         {"Romance"},
	"YouTube":         {"YouTube"},
}

// IsGenreKey reports whether s is a normalized genre key.
func IsGenreKey(s string) bool {
	_, ok := NormalizedGenres[s]
	return ok
}

// GenreKeys returns the normalized genre keys in sorted order.
func GenreKeys() []string {
	keys := make([]string, 0, len(NormalizedGenres))
	for k := range NormalizedGenres {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// NormalizeGenre maps a raw library genre onto the normalized keys whose
// alias lists contain it. One raw genre can land on several keys
// ("Science-Fiction & Fantastique" feeds both halves). The result is sorted
// so callers see a stable order; it is empty for unknown genres.
func NormalizeGenre(raw string) []string {
	var keys []string
	for key, aliases := range NormalizedGenres {
		for _, a := range aliases {
			if a == raw {
				keys = append(keys, key)
				break
			}
		}
	}
	sort.Strings(keys)
	return keys
}
