// Copyright (C) 2026 Atlas Counsel (engineering@atlascounsel.sg)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"testing"

	"github.com/AtlasCounsel/CostCounsel/services/calculation"
)

func TestFlagForFact(t *testing.T) {
	cases := []struct {
		fact string
		want string
	}{
		{calculation.FactCourtLevel, "court"},
		{calculation.FactClaimAmount, "claim"},
		{calculation.FactTrialDays, "trial-days"},
		{"something_else", "something_else"},
	}
	for _, tc := range cases {
		if got := flagForFact(tc.fact); got != tc.want {
			t.Errorf("flagForFact(%q) = %q, want %q", tc.fact, got, tc.want)
		}
	}
}

func TestCommandTree(t *testing.T) {
	if rootCmd.Use != "costcounsel" {
		t.Fatalf("unexpected root command: %q", rootCmd.Use)
	}
	var haveRules, haveEstimate bool
	for _, c := range rootCmd.Commands() {
		switch c.Name() {
		case "rules":
			haveRules = true
		case "estimate":
			haveEstimate = true
		}
	}
	if !haveRules || !haveEstimate {
		t.Fatalf("command tree incomplete: rules=%v estimate=%v", haveRules, haveEstimate)
	}
}
