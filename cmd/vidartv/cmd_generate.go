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
)

// Generate flags
var (
	generateSeed int64
	generateName string
	generateOut  string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a catalog from the lineup file",
	Long: `Runs the full pipeline: load or fetch the show list, generate the channel
structure from the lineup file, assign shows, store the catalog and validate
it. The effective seed is printed so a run can be replayed.

Examples:
  vidartv generate
  vidartv generate --seed 42 --out weekend.json
  vidartv generate --name weekend`,
	Run: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().Int64Var(&generateSeed, "seed", 0, "RNG seed (0 draws one from the clock)")
	generateCmd.Flags().StringVar(&generateName, "name", "", "Catalog name (default: the lineup file's catalog name)")
	generateCmd.Flags().StringVar(&generateOut, "out", "", "Also write the catalog JSON to this path")
}

func runGenerate(cmd *cobra.Command, args []string) {
	if err := loadConfig(); err != nil {
		fail("%v", err)
	}

	ctx := context.Background()
	p, err := buildPipeline(ctx)
	if err != nil {
		fail("%v", err)
	}

	result, err := p.Generate(ctx, generateName, generateSeed)
	if err != nil {
		fail("%v", err)
	}

	fmt.Printf("catalog %q generated (seed %d, %d channels) -> %s\n",
		result.Catalog.Name, result.Seed, len(result.Catalog.Channels), result.StorageKey)

	if len(result.Errors) > 0 {
		fmt.Printf("%d validation finding(s):\n", len(result.Errors))
		for _, f := range result.Errors {
			fmt.Printf("- %s\n", f)
		}
	}

	if generateOut != "" {
		data, err := json.MarshalIndent(result.Catalog, "", "  ")
		if err != nil {
			fail("marshal catalog: %v", err)
		}
		if err := os.WriteFile(generateOut, data, 0644); err != nil {
			fail("write %s: %v", generateOut, err)
		}
		fmt.Printf("catalog written to %s\n", generateOut)
	}
}
