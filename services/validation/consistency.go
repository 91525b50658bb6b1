// Copyright (C) 2026 Atlas Counsel (engineering@atlascounsel.sg)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package validation

import (
	"fmt"
	"strings"
)

// ConsistencyChecker detects contradictions between the explanation
// and categorical facts already established in the conversation.
//
// # Description
//
//	For every established fact whose key has a closed category set,
//	the checker looks for other members of that set in the text. If a
//	different member appears and the established value does not, the
//	text has silently switched the premise (a magistrate court matter
//	explained with high court figures) and gets a high-severity issue.
//
// # Thread Safety
//
//	Safe for concurrent use (stateless after construction).
type ConsistencyChecker struct {
	config *ConsistencyConfig
}

// NewConsistencyChecker creates the checker. A nil config uses
// defaults.
func NewConsistencyChecker(config *ConsistencyConfig) *ConsistencyChecker {
	if config == nil {
		config = DefaultConsistencyConfig()
	}
	return &ConsistencyChecker{config: config}
}

// Name implements Checker.
func (c *ConsistencyChecker) Name() string { return "consistency_checker" }

// Check implements Checker.
func (c *ConsistencyChecker) Check(input *CheckInput) []Issue {
	if input.Context == nil || len(input.Context.EstablishedFacts) == 0 {
		return nil
	}

	text := strings.ToLower(input.Explanation)
	var issues []Issue

	for key, established := range input.Context.EstablishedFacts {
		members, ok := c.config.Categories[key]
		if !ok {
			continue
		}
		establishedLower := strings.ToLower(established)
		if strings.Contains(text, establishedLower) {
			// The text names the established value; mentioning other
			// members alongside it is comparison, not contradiction.
			continue
		}
		for _, member := range members {
			memberLower := strings.ToLower(member)
			if memberLower == establishedLower {
				continue
			}
			if strings.Contains(text, memberLower) {
				issues = append(issues, Issue{
					Type:      IssueContradiction,
					Severity:  SeverityHigh,
					Message:   fmt.Sprintf("text contradicts the established %s", key),
					FieldName: key,
					Expected:  established,
					Found:     member,
				})
				break
			}
		}
	}
	return issues
}
