/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch the show list from Jellyfin",
	Long: `Retrieves movies and series from the configured Jellyfin server and
rewrites the local show cache. Requires VIDAR_JELLYFIN_URL and
VIDAR_JELLYFIN_API_KEY.`,
	Run: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) {
	if err := loadConfig(); err != nil {
		fail("%v", err)
	}

	ctx := context.Background()
	p, err := buildPipeline(ctx)
	if err != nil {
		fail("%v", err)
	}

	shows, err := p.Fetch(ctx)
	if err != nil {
		fail("%v", err)
	}

	fmt.Printf("%d shows cached at %s\n", len(shows), cfg.ShowCachePath())
}
