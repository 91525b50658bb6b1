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
	"strings"
)

// citationPattern matches the citation shapes the rule set uses:
// "Rules of Court 2021, Order 21", "Order 21 rule 2", "Appendix G",
// "Practice Directions 2021".
var citationPattern = regexp.MustCompile(
	`(?i)(rules\s+of\s+court\s+\d{4}(?:\s*,\s*(?:order\s+\d+|appendix\s+[a-z]))?` +
		`|order\s+\d+(?:\s+rule\s+\d+)?` +
		`|appendix\s+[a-z]\b` +
		`|practice\s+directions\s+\d{4})`,
)

// CitationChecker verifies that every legal authority the explanation
// cites is in the rule set's citation whitelist.
//
// # Description
//
//	Citation-shaped spans are extracted from the text and normalized
//	(whitespace collapsed, lowercased). A citation is known when it
//	matches a whitelist entry, is contained in one, or contains one.
//	Anything else is an invented authority and is critical: a legal
//	advisory that cites law that does not exist is worse than one that
//	cites nothing.
//
// # Thread Safety
//
//	Safe for concurrent use (stateless after construction).
type CitationChecker struct{}

// NewCitationChecker creates the checker.
func NewCitationChecker() *CitationChecker {
	return &CitationChecker{}
}

// Name implements Checker.
func (c *CitationChecker) Name() string { return "citation_checker" }

// Check implements Checker.
func (c *CitationChecker) Check(input *CheckInput) []Issue {
	if input.Context == nil || len(input.Context.KnownCitations) == 0 {
		return nil
	}

	whitelist := make([]string, 0, len(input.Context.KnownCitations))
	for _, k := range input.Context.KnownCitations {
		whitelist = append(whitelist, normalizeCitation(k))
	}

	var issues []Issue
	seen := map[string]bool{}
	for _, raw := range citationPattern.FindAllString(input.Explanation, -1) {
		cit := normalizeCitation(raw)
		if seen[cit] {
			continue
		}
		seen[cit] = true

		if citationKnown(cit, whitelist) {
			continue
		}
		issues = append(issues, Issue{
			Type:       IssueHallucination,
			Severity:   SeverityCritical,
			Message:    fmt.Sprintf("cited authority is not in the rule set: %s", strings.TrimSpace(raw)),
			Found:      strings.TrimSpace(raw),
			Suggestion: "cite only the authorities attached to the matched rules",
		})
	}
	return issues
}

func citationKnown(cit string, whitelist []string) bool {
	for _, w := range whitelist {
		if cit == w || strings.Contains(w, cit) || strings.Contains(cit, w) {
			return true
		}
	}
	return false
}

// normalizeCitation collapses whitespace and case so formatting
// differences never fail a legitimate citation.
func normalizeCitation(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
