/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package ersatz applies a finished catalog to an ErsatzTV instance by
// driving its web UI with a headless browser. ErsatzTV has no public API
// for these flows; the UI is the contract, so selectors target the visible
// labels the UI renders.
package ersatz

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rs/zerolog"

	"github.com/friendsincode/vidar_tv/internal/grid"
)

// settleDelay gives the Blazor UI time to commit a mutation before the next
// navigation. ErsatzTV persists asynchronously after each click.
const settleDelay = time.Second

// Builder drives one ErsatzTV instance.
type Builder struct {
	url      string
	headless bool
	logger   zerolog.Logger
}

// NewBuilder creates a builder targeting the ErsatzTV UI at url.
func NewBuilder(url string, headless bool, logger zerolog.Logger) *Builder {
	return &Builder{
		url:      url,
		headless: headless,
		logger:   logger.With().Str("component", "ersatz").Logger(),
	}
}

// scheduleItem is one entry of an ErsatzTV schedule: a television-show
// search query played count times per visit.
type scheduleItem struct {
	query string
	count int
}

// scheduleItems flattens a channel's blocks into schedule entries: one per
// distinct show, counted by the slot count of the block that selected it.
func scheduleItems(ch grid.Channel) []scheduleItem {
	var items []scheduleItem
	seen := make(map[string]bool)
	for _, b := range ch.Blocks {
		for _, s := range b.Shows {
			if s.Name == "" || seen[s.Name] {
				continue
			}
			seen[s.Name] = true
			items = append(items, scheduleItem{query: s.Name, count: b.SlotCount})
		}
	}
	return items
}

// Apply creates one ErsatzTV channel, schedule and playout per catalog
// channel, plus a playlist group holding each channel's show rotation.
func (b *Builder) Apply(ctx context.Context, cat *grid.Catalog) error {
	l := launcher.New().Headless(b.headless)
	controlURL, err := l.Launch()
	if err != nil {
		return fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("connect browser: %w", err)
	}
	defer browser.MustClose()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return fmt.Errorf("open page: %w", err)
	}

	for _, ch := range cat.Channels {
		b.logger.Info().Str("channel", ch.Name).Msg("applying channel")

		if err := b.createChannel(page, ch.Name); err != nil {
			return fmt.Errorf("channel %s: %w", ch.Name, err)
		}

		groupName := cat.Name
		playlistName := ch.Name + " Rotation"
		items := scheduleItems(ch)

		if err := b.createPlaylistGroup(page, groupName); err != nil {
			return fmt.Errorf("playlist group %s: %w", groupName, err)
		}
		if err := b.createPlaylist(page, groupName, playlistName); err != nil {
			return fmt.Errorf("playlist %s: %w", playlistName, err)
		}
		if err := b.fillPlaylist(page, groupName, playlistName, items); err != nil {
			return fmt.Errorf("playlist items %s: %w", playlistName, err)
		}

		scheduleName := ch.Name + " Schedule"
		if err := b.createSchedule(page, scheduleName); err != nil {
			return fmt.Errorf("schedule %s: %w", scheduleName, err)
		}
		if err := b.addScheduleItems(page, scheduleName, items); err != nil {
			return fmt.Errorf("schedule items %s: %w", scheduleName, err)
		}
		if err := b.createPlayout(page, ch.Name, scheduleName); err != nil {
			return fmt.Errorf("playout %s: %w", ch.Name, err)
		}
	}
	return nil
}

func (b *Builder) createChannel(page *rod.Page, name string) error {
	return rod.Try(func() {
		page.MustNavigate(b.url + "/channels/add").MustWaitLoad()
		page.MustElement(`input[id="name"]`).MustInput(name)
		page.MustElementR("button", "Add Channel").MustClick()
		time.Sleep(settleDelay)
	})
}

func (b *Builder) createPlaylistGroup(page *rod.Page, name string) error {
	return rod.Try(func() {
		page.MustNavigate(b.url + "/media/playlists").MustWaitLoad()
		page.MustElement(`input[placeholder="Playlist Group Name"]`).MustInput(name)
		page.MustElementR("button", "Add Playlist Group").MustClick()
		time.Sleep(settleDelay)
	})
}

func (b *Builder) createPlaylist(page *rod.Page, group, name string) error {
	return rod.Try(func() {
		page.MustNavigate(b.url + "/media/playlists").MustWaitLoad()
		page.MustElement(`input[placeholder="Playlist Name"]`).MustInput(name)
		page.MustElement(`input[placeholder="Playlist Group"]`).MustClick()
		page.MustElementR("div", group).MustClick()
		page.MustElementR("button", "^Add Playlist$").MustClick()
		time.Sleep(settleDelay)
	})
}

// fillPlaylist adds each show as a "Television Show" collection item in
// chronological season/episode order.
func (b *Builder) fillPlaylist(page *rod.Page, group, name string, items []scheduleItem) error {
	return rod.Try(func() {
		page.MustNavigate(b.url + "/media/playlists").MustWaitLoad()
		page.MustElementR("div", group).MustClick()
		page.MustElementR("li", group+" "+name).MustElement("a").MustClick()
		time.Sleep(settleDelay)

		for _, item := range items {
			page.MustElementR("button", "Add Playlist Item").MustClick()
			page.MustElementR("div", "Collection Type").MustClick()
			page.MustElementR("div", "Television Show").MustClick()

			search := page.MustElement(`input[placeholder="Television Show"]`)
			search.MustInput(item.query)
			time.Sleep(settleDelay)
			search.MustType(input.Enter)

			page.MustElementR("div", "Playback Order").MustClick()
			page.MustElementR("div", "Season, Episode").MustClick()
		}
		page.MustElementR("button", "Save Changes").MustClick()
		time.Sleep(settleDelay)
	})
}

func (b *Builder) createSchedule(page *rod.Page, name string) error {
	return rod.Try(func() {
		page.MustNavigate(b.url + "/schedules/add").MustWaitLoad()
		page.MustElement(`input[id="name"]`).MustInput(name)
		page.MustElementR("button", "Add Schedule").MustClick()
		time.Sleep(settleDelay)
	})
}

// addScheduleItems configures every schedule entry: shuffled, season-episode
// order, one playout mode, multiple count.
func (b *Builder) addScheduleItems(page *rod.Page, schedule string, items []scheduleItem) error {
	return rod.Try(func() {
		page.MustNavigate(b.url + "/schedules/").MustWaitLoad()
		page.MustElementR("tr", schedule).MustElements("a")[1].MustClick()
		time.Sleep(settleDelay)

		for _, item := range items {
			page.MustElementR("button", "Add Schedule Item").MustClick()
			page.MustElementR("div", "Collection Type").MustClick()
			page.MustElementR("div", "Television Show").MustClick()

			search := page.MustElement(`input[placeholder="Television Show"]`)
			search.MustInput(item.query)
			time.Sleep(settleDelay)
			search.MustType(input.Enter)

			page.MustElementR("div", "Shuffle").MustClick()
			page.MustElementR("div", "Season, Episode").MustClick()
			page.MustElementR("div", "One Playout Mode").MustClick()
			page.MustElementR("div", "^Multiple$").MustClick()
			page.MustElement(`input[placeholder="Multiple Count"]`).MustInput(strconv.Itoa(item.count))
		}
		page.MustElementR("button", "Save Changes").MustClick()
		time.Sleep(settleDelay)
	})
}

func (b *Builder) createPlayout(page *rod.Page, channel, schedule string) error {
	return rod.Try(func() {
		page.MustNavigate(b.url + "/playouts/add").MustWaitLoad()
		page.MustElement(`input[placeholder="Channel"]`).MustClick()
		page.MustElementR("div", "- "+channel).MustClick()
		page.MustElement(`input[placeholder="Schedule"]`).MustClick()
		page.MustElementR("div", schedule).MustClick()
		page.MustElementR("button", "Add Playout").MustClick()
		time.Sleep(2 * settleDelay)
	})
}
