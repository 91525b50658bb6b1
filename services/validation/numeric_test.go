// Copyright (C) 2026 Atlas Counsel (engineering@atlascounsel.sg)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package validation

import (
	"testing"
)

func TestFlattenNumeric(t *testing.T) {
	calc := map[string]any{
		"total_costs": 5450.0,
		"breakdown": map[string]any{
			"base":  5000.0,
			"gst":   450.0,
			"label": "fixed scale", // non-numeric leaf, ignored
		},
		"disbursements": []any{120.5, 30},
		"citation":      "Order 21",
	}

	values := FlattenNumeric(calc)
	if len(values) != 5 {
		t.Fatalf("got %d values %v, want 5", len(values), values)
	}

	// Sorted by path.
	wantPaths := []string{
		"breakdown.base",
		"breakdown.gst",
		"disbursements.0",
		"disbursements.1",
		"total_costs",
	}
	for i, w := range wantPaths {
		if values[i].Path != w {
			t.Errorf("path[%d] = %s, want %s", i, values[i].Path, w)
		}
	}
	if values[3].Value != 30.0 {
		t.Errorf("int leaf not converted: got %f", values[3].Value)
	}
}

func TestFlattenNumericEmpty(t *testing.T) {
	if got := FlattenNumeric(nil); len(got) != 0 {
		t.Errorf("nil calc should flatten to nothing, got %v", got)
	}
	if got := FlattenNumeric(map[string]any{"note": "text only"}); len(got) != 0 {
		t.Errorf("non-numeric calc should flatten to nothing, got %v", got)
	}
}

func TestExtractNumbers(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []float64
	}{
		{
			name: "plain dollar",
			text: "Costs are $5,000.00 plus GST.",
			want: []float64{5000.0},
		},
		{
			name: "singapore dollar",
			text: "A total of S$12,450.75 is payable.",
			want: []float64{12450.75},
		},
		{
			name: "percentage",
			text: "GST applies at 9%.",
			want: []float64{9},
		},
		{
			name: "mixed",
			text: "Base $5,000.00, GST 9%, total S$5,450.00.",
			want: []float64{5000.0, 5450.0, 9},
		},
		{
			name: "no numerics",
			text: "Costs follow the fixed scale.",
			want: nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ExtractNumbers(tc.text)
			if len(got) != len(tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
			for i := range tc.want {
				if got[i] != tc.want[i] {
					t.Errorf("value[%d] = %f, want %f", i, got[i], tc.want[i])
				}
			}
		})
	}
}

func TestNumericCheckerBands(t *testing.T) {
	checker := NewNumericChecker(nil)
	calc := map[string]any{"total": 108.0}

	tests := []struct {
		name     string
		text     string
		strict   bool
		wantType IssueType
		wantSev  Severity
		none     bool
	}{
		{
			name: "exact",
			text: "The total is $108.00.",
			none: true,
		},
		{
			name: "within tolerance",
			text: "The total is $108.005.",
			none: true,
		},
		{
			name:     "near match",
			text:     "The total is $108.05.",
			wantType: IssueNearMatch,
			wantSev:  SeverityWarning,
		},
		{
			name:     "missing strict",
			text:     "The total is payable forthwith.",
			strict:   true,
			wantType: IssueMissingValue,
			wantSev:  SeverityCritical,
		},
		{
			name:     "missing lenient",
			text:     "The total is payable forthwith.",
			wantType: IssueMissingValue,
			wantSev:  SeverityWarning,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			issues := checker.Check(&CheckInput{
				Calculation: calc,
				Explanation: tc.text,
				Strict:      tc.strict,
			})
			if tc.none {
				if len(issues) != 0 {
					t.Fatalf("want no issues, got %v", issues)
				}
				return
			}
			if len(issues) != 1 {
				t.Fatalf("want 1 issue, got %v", issues)
			}
			if issues[0].Type != tc.wantType || issues[0].Severity != tc.wantSev {
				t.Errorf("got %s/%s, want %s/%s",
					issues[0].Type, issues[0].Severity, tc.wantType, tc.wantSev)
			}
		})
	}
}

func TestMatchStats(t *testing.T) {
	checker := NewNumericChecker(nil)
	calc := map[string]any{
		"base":  5000.0,
		"gst":   450.0,
		"total": 5450.0,
	}

	matched, total := checker.MatchStats(calc, "Base $5,000.00 and GST of $450.00.")
	if total != 3 || matched != 2 {
		t.Errorf("got %d/%d, want 2/3", matched, total)
	}

	matched, total = checker.MatchStats(map[string]any{}, "anything")
	if total != 0 || matched != 0 {
		t.Errorf("empty calc should report 0/0, got %d/%d", matched, total)
	}
}
