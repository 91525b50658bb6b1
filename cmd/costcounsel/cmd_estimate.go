// Copyright (C) 2026 Atlas Counsel (engineering@atlascounsel.sg)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/AtlasCounsel/CostCounsel/services/calculation"
	"github.com/AtlasCounsel/CostCounsel/services/hybrid"
)

// Exit codes for estimate.
const (
	EstimateExitSuccess      = 0
	EstimateExitMissingFacts = 1
	EstimateExitError        = 2
)

func runEstimate(cmd *cobra.Command, args []string) {
	calculator, err := calculation.NewCalculator()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not load cost tables: %v\n", err)
		os.Exit(EstimateExitError)
	}

	facts := map[string]string{}
	if estCourtLevel != "" {
		facts[calculation.FactCourtLevel] = estCourtLevel
	}
	if estClaim != "" {
		facts[calculation.FactClaimAmount] = estClaim
	}
	facts[calculation.FactTrialDays] = strconv.Itoa(estTrialDays)

	result, err := calculator.Calculate(facts)
	if err != nil {
		var missing *calculation.MissingFactsError
		if errors.As(err, &missing) {
			fmt.Fprintln(os.Stderr, "Missing facts:")
			for _, m := range missing.Missing {
				fmt.Fprintf(os.Stderr, "  --%s\n", flagForFact(m))
			}
			os.Exit(EstimateExitMissingFacts)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(EstimateExitError)
	}

	if outputJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			fmt.Fprintf(os.Stderr, "Error: could not encode result: %v\n", err)
			os.Exit(EstimateExitError)
		}
	} else {
		fmt.Println(hybrid.BasicExplanation(result))
	}
	os.Exit(EstimateExitSuccess)
}

// flagForFact maps a calculator fact key back to its CLI flag name.
func flagForFact(fact string) string {
	switch fact {
	case calculation.FactCourtLevel:
		return "court"
	case calculation.FactClaimAmount:
		return "claim"
	case calculation.FactTrialDays:
		return "trial-days"
	default:
		return fact
	}
}
