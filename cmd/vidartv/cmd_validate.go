/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/friendsincode/vidar_tv/internal/validator"
)

var validateCmd = &cobra.Command{
	Use:   "validate <catalog.json>",
	Short: "Validate a catalog file",
	Long: `Checks a catalog JSON document against the grid rules: document shape,
slot-format legality, block chaining within channel hours, criteria
consistency and per-block show conformance.

Exit codes:
  0  the catalog is valid
  1  the catalog violates grid rules (one line per finding)
  2  the file is missing, unreadable or not JSON`,
	Args: cobra.ExactArgs(1),
	Run:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) {
	path := args[0]

	data, err := os.ReadFile(path)
	if err != nil {
		usageFail("read catalog: %v", err)
	}

	findings, err := validator.ValidateBytes(data)
	if err != nil {
		usageFail("%v", err)
	}

	if len(findings) > 0 {
		fmt.Printf("%s: %d validation error(s)\n", path, len(findings))
		for _, f := range findings {
			fmt.Printf("- %s\n", f)
		}
		os.Exit(1)
	}

	fmt.Printf("%s: catalog is valid\n", path)
}
