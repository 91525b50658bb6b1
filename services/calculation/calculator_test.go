// Copyright (C) 2026 Atlas Counsel (engineering@atlascounsel.sg)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package calculation

import (
	"errors"
	"reflect"
	"testing"
)

func mustCalculator(t *testing.T) *Calculator {
	t.Helper()
	c, err := NewCalculator()
	if err != nil {
		t.Fatalf("NewCalculator: %v", err)
	}
	return c
}

func TestCalculateMagistrateSingleDay(t *testing.T) {
	c := mustCalculator(t)
	got, err := c.Calculate(map[string]string{
		FactCourtLevel:  "magistrate court",
		FactClaimAmount: "45000",
	})
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	if got["total_costs"] != 5450.0 {
		t.Errorf("total_costs = %v, want 5450", got["total_costs"])
	}
	breakdown := got["breakdown"].(map[string]any)
	if breakdown["base_costs"] != 5000.0 {
		t.Errorf("base_costs = %v, want 5000", breakdown["base_costs"])
	}
	if breakdown["gst"] != 450.0 {
		t.Errorf("gst = %v, want 450", breakdown["gst"])
	}
	if got["citation"] != "Rules of Court 2021, Order 21" {
		t.Errorf("citation = %v", got["citation"])
	}
}

func TestCalculateExtraTrialDays(t *testing.T) {
	c := mustCalculator(t)
	got, err := c.Calculate(map[string]string{
		FactCourtLevel:  "magistrate court",
		FactClaimAmount: "45000",
		FactTrialDays:   "3",
	})
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	// 5000 base + 2 extra days at 2000, plus 9% GST.
	breakdown := got["breakdown"].(map[string]any)
	if breakdown["extra_trial_costs"] != 4000.0 {
		t.Errorf("extra_trial_costs = %v, want 4000", breakdown["extra_trial_costs"])
	}
	if got["total_costs"] != 9810.0 {
		t.Errorf("total_costs = %v, want 9810", got["total_costs"])
	}
}

func TestCalculateDeterministic(t *testing.T) {
	c := mustCalculator(t)
	facts := map[string]string{
		FactCourtLevel:  "district court",
		FactClaimAmount: "120,000",
		FactTrialDays:   "2",
	}
	first, err := c.Calculate(facts)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		again, err := c.Calculate(facts)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("calculation drifted: %v vs %v", first, again)
		}
	}
}

func TestCalculateMissingFacts(t *testing.T) {
	c := mustCalculator(t)
	_, err := c.Calculate(map[string]string{})

	var mf *MissingFactsError
	if !errors.As(err, &mf) {
		t.Fatalf("want MissingFactsError, got %v", err)
	}
	if len(mf.Missing) != 2 {
		t.Errorf("missing = %v, want court_level and claim_amount", mf.Missing)
	}
}

func TestCalculateBadValues(t *testing.T) {
	c := mustCalculator(t)

	tests := []struct {
		name  string
		facts map[string]string
	}{
		{
			name: "unknown court",
			facts: map[string]string{
				FactCourtLevel:  "small claims tribunal",
				FactClaimAmount: "1000",
			},
		},
		{
			name: "non-numeric claim",
			facts: map[string]string{
				FactCourtLevel:  "magistrate court",
				FactClaimAmount: "a lot",
			},
		},
		{
			name: "claim over jurisdiction cap",
			facts: map[string]string{
				FactCourtLevel:  "magistrate court",
				FactClaimAmount: "90000",
			},
		},
		{
			name: "zero trial days",
			facts: map[string]string{
				FactCourtLevel:  "magistrate court",
				FactClaimAmount: "45000",
				FactTrialDays:   "0",
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := c.Calculate(tc.facts); err == nil {
				t.Error("want error, got nil")
			}
		})
	}
}

func TestCitations(t *testing.T) {
	c := mustCalculator(t)
	cits := c.Citations()
	if len(cits) != 2 {
		t.Fatalf("citations = %v, want 2 distinct", cits)
	}
}
