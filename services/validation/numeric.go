// Copyright (C) 2026 Atlas Counsel (engineering@atlascounsel.sg)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package validation

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// currencyPattern matches "$1,234.56" and "S$1,234.56" amounts.
// percentPattern matches "12%" and "8.5%".
var (
	currencyPattern = regexp.MustCompile(`S?\$\s?([\d,]+(?:\.\d+)?)`)
	percentPattern  = regexp.MustCompile(`(\d+(?:\.\d+)?)\s?%`)
)

// NumericChecker verifies that every numeric value in the calculation
// appears in the explanation text.
//
// # Description
//
//	The calculation map is flattened to dotted-path leaves
//	(breakdown.gst -> 108.0), currency and percentage tokens are
//	extracted from the text, and each calculation value must find a
//	text value within tolerance. A value inside the widened near-match
//	band is a warning; a value absent from the text is missing, which
//	is critical in strict mode.
//
// # Thread Safety
//
//	Safe for concurrent use (stateless after construction).
type NumericChecker struct {
	config *NumericConfig
}

// NewNumericChecker creates the checker. A nil config uses defaults.
func NewNumericChecker(config *NumericConfig) *NumericChecker {
	if config == nil {
		config = DefaultNumericConfig()
	}
	return &NumericChecker{config: config}
}

// Name implements Checker.
func (c *NumericChecker) Name() string { return "numeric_checker" }

// Check implements Checker.
func (c *NumericChecker) Check(input *CheckInput) []Issue {
	values := FlattenNumeric(input.Calculation)
	if len(values) == 0 {
		return nil
	}

	textValues := ExtractNumbers(input.Explanation)
	tol := c.config.Tolerance
	nearTol := tol * c.config.NearMatchMultiplier

	var issues []Issue
	for _, cv := range values {
		best := math.Inf(1)
		for _, tv := range textValues {
			if d := math.Abs(cv.Value - tv); d < best {
				best = d
			}
		}

		switch {
		case best <= tol:
			// matched, nothing to report
		case best <= nearTol:
			issues = append(issues, Issue{
				Type:      IssueNearMatch,
				Severity:  SeverityWarning,
				Message:   fmt.Sprintf("value for %s appears rounded or drifted in the text", cv.Path),
				FieldName: cv.Path,
				Expected:  formatNumber(cv.Value),
				Found:     formatNumber(cv.Value + bestSigned(cv.Value, textValues)),
			})
		default:
			severity := SeverityWarning
			if input.Strict {
				severity = SeverityCritical
			}
			issues = append(issues, Issue{
				Type:       IssueMissingValue,
				Severity:   severity,
				Message:    fmt.Sprintf("calculated value for %s does not appear in the text", cv.Path),
				FieldName:  cv.Path,
				Expected:   formatNumber(cv.Value),
				Suggestion: "state every calculated figure verbatim",
			})
		}
	}
	return issues
}

// MatchStats counts how many calculation values the text states within
// tolerance. Used by the guard to derive report confidence.
func (c *NumericChecker) MatchStats(calculation map[string]any, text string) (matched, total int) {
	values := FlattenNumeric(calculation)
	total = len(values)
	if total == 0 {
		return 0, 0
	}
	textValues := ExtractNumbers(text)
	for _, cv := range values {
		for _, tv := range textValues {
			if math.Abs(cv.Value-tv) <= c.config.Tolerance {
				matched++
				break
			}
		}
	}
	return matched, total
}

// NumericValue is one flattened calculation leaf.
type NumericValue struct {
	Path  string
	Value float64
}

// FlattenNumeric walks the calculation map and returns every numeric
// leaf under its dotted path, sorted by path for determinism. Nested
// maps recurse; slices index into the path ("disbursements.0").
// Non-numeric leaves are ignored.
func FlattenNumeric(calculation map[string]any) []NumericValue {
	var out []NumericValue
	flattenInto("", calculation, &out)
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

func flattenInto(prefix string, v any, out *[]NumericValue) {
	switch val := v.(type) {
	case map[string]any:
		for k, child := range val {
			flattenInto(joinPath(prefix, k), child, out)
		}
	case []any:
		for i, child := range val {
			flattenInto(joinPath(prefix, strconv.Itoa(i)), child, out)
		}
	case float64:
		*out = append(*out, NumericValue{Path: prefix, Value: val})
	case float32:
		*out = append(*out, NumericValue{Path: prefix, Value: float64(val)})
	case int:
		*out = append(*out, NumericValue{Path: prefix, Value: float64(val)})
	case int64:
		*out = append(*out, NumericValue{Path: prefix, Value: float64(val)})
	}
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

// ExtractNumbers pulls currency amounts and percentages out of free
// text. Thousands separators are stripped; "S$12,000.50" yields
// 12000.5 and "12%" yields 12.
func ExtractNumbers(text string) []float64 {
	var out []float64
	for _, m := range currencyPattern.FindAllStringSubmatch(text, -1) {
		raw := strings.ReplaceAll(m[1], ",", "")
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			out = append(out, f)
		}
	}
	for _, m := range percentPattern.FindAllStringSubmatch(text, -1) {
		if f, err := strconv.ParseFloat(m[1], 64); err == nil {
			out = append(out, f)
		}
	}
	return out
}

func formatNumber(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// bestSigned returns the signed difference to the closest text value,
// for near-match evidence.
func bestSigned(target float64, textValues []float64) float64 {
	best := math.Inf(1)
	signed := 0.0
	for _, tv := range textValues {
		if d := math.Abs(target - tv); d < best {
			best = d
			signed = tv - target
		}
	}
	if math.IsInf(best, 1) {
		return 0
	}
	return signed
}
