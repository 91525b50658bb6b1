// Copyright (C) 2026 Atlas Counsel (engineering@atlascounsel.sg)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AtlasCounsel/CostCounsel/pkg/logging"
	"github.com/AtlasCounsel/CostCounsel/services/ruleset"
)

// Exit codes for rules check.
const (
	RulesCheckExitSuccess   = 0
	RulesCheckExitProblems  = 1
	RulesCheckExitLoadError = 2
)

// rulesCheckReport is the JSON output shape of rules check.
type rulesCheckReport struct {
	Directory string   `json:"directory"`
	Nodes     int      `json:"nodes"`
	Citations int      `json:"citations"`
	Problems  []string `json:"problems"`
}

func runRulesCheck(cmd *cobra.Command, args []string) {
	dir := args[0]
	logger := logging.New(logging.Config{Service: "costcounsel", Quiet: quiet || outputJSON})

	snapshot, problems, err := ruleset.NewLoader(logger).LoadDir(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not load %s: %v\n", dir, err)
		os.Exit(RulesCheckExitLoadError)
	}

	report := rulesCheckReport{
		Directory: dir,
		Nodes:     len(snapshot.Nodes),
		Citations: len(snapshot.Citations),
		Problems:  problems,
	}
	if report.Problems == nil {
		report.Problems = []string{}
	}

	if outputJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			fmt.Fprintf(os.Stderr, "Error: could not encode report: %v\n", err)
			os.Exit(RulesCheckExitLoadError)
		}
	} else {
		fmt.Printf("Checked %s: %d nodes, %d citations\n", dir, report.Nodes, report.Citations)
		for _, p := range report.Problems {
			fmt.Printf("  problem: %s\n", p)
		}
	}

	if len(report.Problems) > 0 {
		os.Exit(RulesCheckExitProblems)
	}
	os.Exit(RulesCheckExitSuccess)
}
