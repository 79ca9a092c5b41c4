/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/friendsincode/vidar_tv/internal/ersatz"
	"github.com/friendsincode/vidar_tv/internal/events"
	"github.com/friendsincode/vidar_tv/internal/grid"
	"github.com/friendsincode/vidar_tv/internal/validator"
)

var applyForce bool

var applyCmd = &cobra.Command{
	Use:   "apply <catalog.json>",
	Short: "Apply a catalog to ErsatzTV",
	Long: `Drives the ErsatzTV web UI through a headless browser: creates one
channel per catalog channel with its playlist, schedule and playout. The
catalog is validated first; --force applies it anyway.

Requires VIDAR_ERSATZ_URL (default http://localhost:8409).`,
	Args: cobra.ExactArgs(1),
	Run:  runApply,
}

func init() {
	rootCmd.AddCommand(applyCmd)

	applyCmd.Flags().BoolVar(&applyForce, "force", false, "Apply even when validation reports errors")
}

func runApply(cmd *cobra.Command, args []string) {
	if err := loadConfig(); err != nil {
		fail("%v", err)
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		usageFail("read catalog: %v", err)
	}
	var cat grid.Catalog
	if err := json.Unmarshal(data, &cat); err != nil {
		usageFail("parse catalog %s: %v", args[0], err)
	}

	findings, err := validator.ValidateBytes(data)
	if err != nil {
		usageFail("%v", err)
	}
	if len(findings) > 0 && !applyForce {
		fmt.Printf("%s: %d validation error(s), not applying (use --force to override)\n", args[0], len(findings))
		for _, f := range findings {
			fmt.Printf("- %s\n", f)
		}
		os.Exit(1)
	}

	ctx := context.Background()
	builder := ersatz.NewBuilder(cfg.ErsatzURL, cfg.ErsatzHeadless, logger)
	if err := builder.Apply(ctx, &cat); err != nil {
		fail("apply catalog: %v", err)
	}

	bus := buildBus()
	bus.Publish(events.EventCatalogApplied, events.Payload{
		"catalog":  cat.Name,
		"channels": len(cat.Channels),
		"target":   cfg.ErsatzURL,
	})

	fmt.Printf("catalog %q applied to %s (%d channels)\n", cat.Name, cfg.ErsatzURL, len(cat.Channels))
}
