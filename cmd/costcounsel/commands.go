// Copyright (C) 2026 Atlas Counsel (engineering@atlascounsel.sg)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"github.com/spf13/cobra"
)

// --- Global Command Variables ---
var (
	outputJSON bool
	quiet      bool

	estCourtLevel string
	estClaim      string
	estTrialDays  int

	rootCmd = &cobra.Command{
		Use:   "costcounsel",
		Short: "Offline tools for the CostCounsel legal-costs advisory service",
		Long: `costcounsel bundles the offline utilities of the advisory stack:
				validating rule-set directories before deployment and running
				deterministic scale-cost estimates without the HTTP service.`,
	}

	// --- Rules ---
	rulesCmd = &cobra.Command{
		Use:   "rules",
		Short: "Inspect and validate rule-set directories",
	}
	rulesCheckCmd = &cobra.Command{
		Use:   "check [directory]",
		Short: "Load a rule directory and report structural problems",
		Long: `rules check loads every rule YAML file in the directory, runs the
				structural checks (duplicate ids, unresolved references, parent
				cycles), and exits non-zero if anything is wrong.`,
		Args: cobra.ExactArgs(1),
		Run:  runRulesCheck, // Defined in cmd_rules.go
	}

	// --- Estimate ---
	estimateCmd = &cobra.Command{
		Use:   "estimate",
		Short: "Run a deterministic scale-cost estimate from the embedded tables",
		Run:   runEstimate, // Defined in cmd_estimate.go
	}
)

// init runs when the Go program starts
func init() {
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false,
		"Emit machine-readable JSON instead of text")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"Suppress log output")

	rootCmd.AddCommand(rulesCmd)
	rulesCmd.AddCommand(rulesCheckCmd)

	rootCmd.AddCommand(estimateCmd)
	estimateCmd.Flags().StringVar(&estCourtLevel, "court", "",
		"Court level: magistrate court, district court, or high court")
	estimateCmd.Flags().StringVar(&estClaim, "claim", "",
		"Claim amount in dollars, e.g. 45000")
	estimateCmd.Flags().IntVar(&estTrialDays, "trial-days", 1,
		"Number of trial days")
}
