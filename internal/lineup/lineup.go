/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package lineup loads the channel lineup definition that seeds a catalog
// run: the catalog name plus one entry per channel to generate.
package lineup

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/friendsincode/vidar_tv/internal/grid"
)

// Lineup names the catalog and lists the channels it should contain.
type Lineup struct {
	Catalog  string    `yaml:"catalog"`
	Channels []Channel `yaml:"channels"`
}

// Channel is one broadcast window to generate. Begin and End are hours of
// day in [0,24); an end at or below begin is a window wrapping past
// midnight.
type Channel struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Begin       float64  `yaml:"begin"`
	End         float64  `yaml:"end"`
	Fillers     []string `yaml:"fillers"`
	Logo        string   `yaml:"logo,omitempty"`
}

// Wraps reports whether the window crosses midnight.
func (c Channel) Wraps() bool { return c.End <= c.Begin }

// GridChannel converts a lineup entry into the catalog channel the
// generator fills in.
func (c Channel) GridChannel() grid.Channel {
	fillers := make([]string, len(c.Fillers))
	copy(fillers, c.Fillers)
	return grid.Channel{
		Name:        c.Name,
		Description: c.Description,
		Begin:       c.Begin,
		End:         c.End,
		Fillers:     fillers,
		Logo:        c.Logo,
	}
}

// Default returns the lineup the project historically generated when none
// was configured: a single channel broadcasting 6 AM to 4 AM the next day.
func Default() *Lineup {
	return &Lineup{
		Catalog: "catalog",
		Channels: []Channel{
			{
				Name:        "Channel 1",
				Description: "General rotation",
				Begin:       6,
				End:         4,
			},
		},
	}
}

// Load reads and validates a lineup file.
func Load(path string) (*Lineup, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lineup: %w", err)
	}
	l, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("lineup %s: %w", path, err)
	}
	return l, nil
}

// Parse decodes and validates a YAML lineup document.
func Parse(data []byte) (*Lineup, error) {
	var l Lineup
	if err := yaml.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("parse lineup: %w", err)
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return &l, nil
}

// Validate checks the invariants the generator depends on. Hours must stay
// in [0,24): the block scheduler terminates on the midnight wrap test, and
// an end of 24 or more would never trip it. Fillers must be normalized
// genre keys so stored catalogs pass categorical validation.
func (l *Lineup) Validate() error {
	if l.Catalog == "" {
		return fmt.Errorf("catalog name is required")
	}
	if len(l.Channels) == 0 {
		return fmt.Errorf("at least one channel is required")
	}
	seen := make(map[string]bool, len(l.Channels))
	for i, ch := range l.Channels {
		if ch.Name == "" {
			return fmt.Errorf("channel #%d has no name", i)
		}
		if seen[ch.Name] {
			return fmt.Errorf("duplicate channel %q", ch.Name)
		}
		seen[ch.Name] = true
		if ch.Begin < 0 || ch.Begin >= 24 {
			return fmt.Errorf("channel %q: begin %v outside [0,24)", ch.Name, ch.Begin)
		}
		if ch.End < 0 || ch.End >= 24 {
			return fmt.Errorf("channel %q: end %v outside [0,24)", ch.Name, ch.End)
		}
		for _, f := range ch.Fillers {
			if !grid.IsGenreKey(f) {
				return fmt.Errorf("channel %q: filler %q is not a normalized genre", ch.Name, f)
			}
		}
	}
	return nil
}
