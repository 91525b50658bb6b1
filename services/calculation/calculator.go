// Copyright (C) 2026 Atlas Counsel (engineering@atlascounsel.sg)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

/*
Package calculation is the deterministic core of the advisory pipeline.
Given validated case facts it produces a party-and-party cost breakdown
from fixed scale tables. Same facts in, same breakdown out; anything
probabilistic lives on the other side of the validation guard.
*/
package calculation

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Fact keys the calculator understands.
const (
	FactCourtLevel  = "court_level"
	FactClaimAmount = "claim_amount"
	FactTrialDays   = "trial_days"
)

// MissingFactsError reports which facts the calculator still needs.
// The conversation layer turns this into a follow-up question rather
// than an error page.
type MissingFactsError struct {
	Missing []string
}

func (e *MissingFactsError) Error() string {
	return fmt.Sprintf("calculation needs facts: %s", strings.Join(e.Missing, ", "))
}

// scale is one row of the cost tables.
type scale struct {
	CourtLevel       string  `yaml:"court_level"`
	Citation         string  `yaml:"citation"`
	MaxClaim         float64 `yaml:"max_claim"` // 0 means uncapped
	BaseCosts        float64 `yaml:"base_costs"`
	CostsPerExtraDay float64 `yaml:"costs_per_extra_day"`
}

type tables struct {
	GSTRate float64 `yaml:"gst_rate"`
	Scales  []scale `yaml:"scales"`
}

// Calculator computes cost breakdowns from the embedded scale tables.
//
// # Thread Safety
//
//	Immutable after construction. Safe for concurrent use.
type Calculator struct {
	tables  tables
	byCourt map[string]scale
}

// NewCalculator parses the embedded tables. Fails fast on a malformed
// table: the service must not start without a usable scale.
func NewCalculator() (*Calculator, error) {
	var t tables
	if err := yaml.Unmarshal(CostTables, &t); err != nil {
		return nil, fmt.Errorf("parsing cost tables: %w", err)
	}
	if t.GSTRate <= 0 || len(t.Scales) == 0 {
		return nil, fmt.Errorf("cost tables incomplete: gst_rate=%f scales=%d", t.GSTRate, len(t.Scales))
	}

	byCourt := make(map[string]scale, len(t.Scales))
	for _, s := range t.Scales {
		byCourt[strings.ToLower(s.CourtLevel)] = s
	}
	return &Calculator{tables: t, byCourt: byCourt}, nil
}

// Calculate produces the cost breakdown for the given facts.
//
// # Inputs
//
//	facts - Requires court_level and claim_amount; trial_days is
//	        optional and defaults to 1.
//
// # Outputs
//
//	map[string]any    - breakdown with base_costs, trial components,
//	                    gst, total_costs, and the governing citation.
//	error             - *MissingFactsError when required facts are
//	                    absent, a plain error for unusable values.
func (c *Calculator) Calculate(facts map[string]string) (map[string]any, error) {
	var missing []string
	if strings.TrimSpace(facts[FactCourtLevel]) == "" {
		missing = append(missing, FactCourtLevel)
	}
	if strings.TrimSpace(facts[FactClaimAmount]) == "" {
		missing = append(missing, FactClaimAmount)
	}
	if len(missing) > 0 {
		return nil, &MissingFactsError{Missing: missing}
	}

	court := strings.ToLower(strings.TrimSpace(facts[FactCourtLevel]))
	sc, ok := c.byCourt[court]
	if !ok {
		return nil, fmt.Errorf("no cost scale for court level %q", facts[FactCourtLevel])
	}

	claim, err := strconv.ParseFloat(strings.ReplaceAll(facts[FactClaimAmount], ",", ""), 64)
	if err != nil || claim < 0 {
		return nil, fmt.Errorf("claim amount %q is not a usable number", facts[FactClaimAmount])
	}
	if sc.MaxClaim > 0 && claim > sc.MaxClaim {
		return nil, fmt.Errorf("claim amount %.2f exceeds the %s jurisdiction cap of %.2f",
			claim, sc.CourtLevel, sc.MaxClaim)
	}

	trialDays := 1
	if raw := strings.TrimSpace(facts[FactTrialDays]); raw != "" {
		d, err := strconv.Atoi(raw)
		if err != nil || d < 1 {
			return nil, fmt.Errorf("trial days %q is not a usable count", raw)
		}
		trialDays = d
	}

	extraDays := float64(trialDays - 1)
	trialCosts := round2(extraDays * sc.CostsPerExtraDay)
	subtotal := round2(sc.BaseCosts + trialCosts)
	gst := round2(subtotal * c.tables.GSTRate)
	total := round2(subtotal + gst)

	return map[string]any{
		"court_level": sc.CourtLevel,
		"citation":    sc.Citation,
		"breakdown": map[string]any{
			"base_costs":        sc.BaseCosts,
			"extra_trial_costs": trialCosts,
			"gst":               gst,
		},
		"gst_rate_percent": round2(c.tables.GSTRate * 100),
		"total_costs":      total,
	}, nil
}

// Citations lists the authorities the tables draw on.
func (c *Calculator) Citations() []string {
	seen := map[string]bool{}
	var out []string
	for _, s := range c.tables.Scales {
		if !seen[s.Citation] {
			seen[s.Citation] = true
			out = append(out, s.Citation)
		}
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
