// Copyright (C) 2026 Atlas Counsel (engineering@atlascounsel.sg)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package validation

import (
	"fmt"
	"regexp"
)

// suspiciousPattern pairs a compiled pattern with the severity it
// triggers.
type suspiciousPattern struct {
	label    string
	severity Severity
	re       *regexp.Regexp
}

// PatternChecker scans the explanation for phrases that signal the
// model refused, failed, or hedged instead of explaining the
// calculation it was given.
//
// # Thread Safety
//
//	Safe for concurrent use (patterns compiled at construction).
type PatternChecker struct {
	patterns []suspiciousPattern
}

// NewPatternChecker compiles the fixed pattern table.
//
// Critical patterns mean the text must never reach the user: the model
// claims inability, claims it has no data, leaks an error marker, or
// disclaims the numbers it was handed. Warning patterns are hedges
// that degrade trust but do not falsify the calculation.
func NewPatternChecker() *PatternChecker {
	return &PatternChecker{
		patterns: []suspiciousPattern{
			{
				label:    "claims inability to calculate",
				severity: SeverityCritical,
				re:       regexp.MustCompile(`(?i)\b(?:cannot|can't|unable\s+to)\s+(?:calculate|compute|determine)\b`),
			},
			{
				label:    "claims no data access",
				severity: SeverityCritical,
				re:       regexp.MustCompile(`(?i)\b(?:no|don't\s+have|do\s+not\s+have)\s+(?:access\s+to\s+)?(?:the\s+|any\s+)?(?:data|information)\b`),
			},
			{
				// Standalone word or bracketed marker. Word boundaries
				// keep "errors in filing" from tripping the scan.
				label:    "error marker",
				severity: SeverityCritical,
				re:       regexp.MustCompile(`(?i)(?:\[(?:error|invalid|unknown)\]|\b(?:error|invalid|unknown)\b)`),
			},
			{
				label:    "disclaims the calculations",
				severity: SeverityCritical,
				re:       regexp.MustCompile(`(?i)verify\s+these\s+calculations`),
			},
			{
				label:    "frames figures as estimates only",
				severity: SeverityCritical,
				re:       regexp.MustCompile(`(?i)estimates?\s+only`),
			},
			{
				label:    "hedging: approximately",
				severity: SeverityWarning,
				re:       regexp.MustCompile(`(?i)\bapproximately\b`),
			},
			{
				label:    "hedging: may be",
				severity: SeverityWarning,
				re:       regexp.MustCompile(`(?i)\bmay\s+be\b`),
			},
			{
				label:    "hedging: assuming that",
				severity: SeverityWarning,
				re:       regexp.MustCompile(`(?i)\bassuming\s+that\b`),
			},
			{
				label:    "hedging: in theory",
				severity: SeverityWarning,
				re:       regexp.MustCompile(`(?i)\bin\s+theory\b`),
			},
		},
	}
}

// Name implements Checker.
func (c *PatternChecker) Name() string { return "pattern_checker" }

// Check implements Checker. Each pattern reports at most one issue per
// explanation, carrying the first matched span as evidence.
func (c *PatternChecker) Check(input *CheckInput) []Issue {
	var issues []Issue
	for _, p := range c.patterns {
		loc := p.re.FindString(input.Explanation)
		if loc == "" {
			continue
		}
		issues = append(issues, Issue{
			Type:       IssueSuspiciousPattern,
			Severity:   p.severity,
			Message:    fmt.Sprintf("suspicious pattern: %s", p.label),
			Found:      loc,
			Suggestion: "regenerate the explanation from the calculation fields",
		})
	}
	return issues
}
