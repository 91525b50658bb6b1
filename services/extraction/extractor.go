// Copyright (C) 2026 Atlas Counsel (engineering@atlascounsel.sg)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

/*
Package extraction pulls structured case facts out of free-text user
messages with a compiled pattern table. It is intentionally shallow:
anything the patterns miss the conversation flow asks for explicitly,
which beats guessing on legal inputs.
*/
package extraction

import (
	"regexp"
	"strings"
)

// factPattern maps a compiled pattern to the fact key it fills.
type factPattern struct {
	key       string
	re        *regexp.Regexp
	normalize func(groups []string) string
}

// Extractor extracts case facts from user messages.
//
// # Thread Safety
//
//	Safe for concurrent use (patterns compiled at construction).
type Extractor struct {
	patterns []factPattern
}

// NewExtractor compiles the fact pattern table.
func NewExtractor() *Extractor {
	identity := func(groups []string) string { return strings.ToLower(groups[1]) }

	return &Extractor{
		patterns: []factPattern{
			{
				key: "court_level",
				re:  regexp.MustCompile(`(?i)\b(magistrate|district|high)\s+court\b`),
				normalize: func(groups []string) string {
					return strings.ToLower(groups[1]) + " court"
				},
			},
			{
				key: "court_level",
				re:  regexp.MustCompile(`(?i)\b(court\s+of\s+appeal)\b`),
				normalize: func(groups []string) string {
					return "court of appeal"
				},
			},
			{
				key: "claim_amount",
				re:  regexp.MustCompile(`(?i)(?:claim(?:ing)?|suing\s+for|sued\s+for|dispute\s+(?:worth|over)|amount\s+of)\s+(?:is\s+|for\s+|of\s+|about\s+)*S?\$?\s*([\d,]+(?:\.\d+)?)`),
				normalize: func(groups []string) string {
					return strings.ReplaceAll(groups[1], ",", "")
				},
			},
			{
				key: "claim_amount",
				re:  regexp.MustCompile(`S?\$\s*([\d,]+(?:\.\d+)?)`),
				normalize: func(groups []string) string {
					return strings.ReplaceAll(groups[1], ",", "")
				},
			},
			{
				key:       "trial_days",
				re:        regexp.MustCompile(`(?i)\b(\d+)[\s-]*days?\s+(?:of\s+)?trial\b`),
				normalize: identity,
			},
			{
				key:       "trial_days",
				re:        regexp.MustCompile(`(?i)\btrial\s+(?:lasted|took|ran\s+for|of)\s+(\d+)\s+days?\b`),
				normalize: identity,
			},
			{
				key:       "case_type",
				re:        regexp.MustCompile(`(?i)\b(contract\s+dispute|tort\s+claim|defamation|negligence)\b`),
				normalize: identity,
			},
		},
	}
}

// Extract returns every fact the message yields. The first pattern to
// fill a key wins; later patterns for the same key are skipped.
func (e *Extractor) Extract(message string) map[string]string {
	facts := map[string]string{}
	for _, p := range e.patterns {
		if _, done := facts[p.key]; done {
			continue
		}
		groups := p.re.FindStringSubmatch(message)
		if groups == nil {
			continue
		}
		if value := p.normalize(groups); value != "" {
			facts[p.key] = value
		}
	}
	return facts
}
