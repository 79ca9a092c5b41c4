/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/friendsincode/vidar_tv/internal/describe"
	"github.com/friendsincode/vidar_tv/internal/grid"
)

var describeCmd = &cobra.Command{
	Use:   "describe <catalog.json>",
	Short: "Render the per-channel description report",
	Args:  cobra.ExactArgs(1),
	Run:   runDescribe,
}

func init() {
	rootCmd.AddCommand(describeCmd)
}

// readCatalogFile loads a catalog document from disk; exits 2 when the file
// is missing or not a catalog.
func readCatalogFile(path string) *grid.Catalog {
	data, err := os.ReadFile(path)
	if err != nil {
		usageFail("read catalog: %v", err)
	}

	var cat grid.Catalog
	if err := json.Unmarshal(data, &cat); err != nil {
		usageFail("parse catalog %s: %v", path, err)
	}
	return &cat
}

func runDescribe(cmd *cobra.Command, args []string) {
	if err := loadConfig(); err != nil {
		fail("%v", err)
	}

	cat := readCatalogFile(args[0])
	fmt.Println(describe.RenderCatalog(cat, cfg.DataDir))
}
