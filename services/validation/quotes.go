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

// quotePatterns capture quoted spans: straight and curly double quotes,
// straight single quotes, and curly single quotes. The straight
// single-quote pattern requires a non-letter before the opening mark so
// apostrophes inside words never pair up into a false span.
var quotePatterns = []*regexp.Regexp{
	regexp.MustCompile(`["\x{201c}]([^"\x{201c}\x{201d}]+)["\x{201d}]`),
	regexp.MustCompile(`(?:^|[^\p{L}])'([^']+)'(?:[^\p{L}]|$)`),
	regexp.MustCompile(`\x{2018}([^\x{2018}\x{2019}]+)\x{2019}`),
}

// QuoteChecker verifies that quoted rule text actually appears in the
// matched rule nodes.
//
// # Description
//
//	Quotes shorter than MinQuoteLength are ignored (everyday quoting,
//	not rule text). A quote that is an exact case-insensitive
//	substring of any node's dimension corpus verifies outright.
//	Otherwise the quote is slid across each corpus and the best
//	windowed longest-common-subsequence ratio decides: below the
//	threshold the quote is flagged as inaccurate, with the best score
//	as evidence.
//
// # Thread Safety
//
//	Safe for concurrent use (stateless after construction).
type QuoteChecker struct {
	config *QuoteConfig
}

// NewQuoteChecker creates the checker. A nil config uses defaults.
func NewQuoteChecker(config *QuoteConfig) *QuoteChecker {
	if config == nil {
		config = DefaultQuoteConfig()
	}
	return &QuoteChecker{config: config}
}

// Name implements Checker.
func (c *QuoteChecker) Name() string { return "quote_checker" }

// Check implements Checker.
func (c *QuoteChecker) Check(input *CheckInput) []Issue {
	if input.Context == nil || len(input.Context.Nodes) == 0 {
		return nil
	}

	var corpora []string
	for _, n := range input.Context.Nodes {
		if t := n.CorpusText(); t != "" {
			corpora = append(corpora, strings.ToLower(t))
		}
	}
	if len(corpora) == 0 {
		return nil
	}

	var issues []Issue
	for _, quote := range extractQuotes(input.Explanation) {
		if len(quote) < c.config.MinQuoteLength {
			continue
		}
		lowered := strings.ToLower(quote)

		best := 0.0
		verified := false
		for _, corpus := range corpora {
			if strings.Contains(corpus, lowered) {
				verified = true
				break
			}
			if s := windowedSimilarity(lowered, corpus); s > best {
				best = s
			}
		}
		if verified || best >= c.config.SimilarityThreshold {
			continue
		}

		issues = append(issues, Issue{
			Type:       IssueQuoteAccuracy,
			Severity:   SeverityHigh,
			Message:    fmt.Sprintf("quoted text does not match any rule (best similarity %.2f)", best),
			Found:      quote,
			Suggestion: "quote rule text verbatim or paraphrase without quotation marks",
		})
	}
	return issues
}

// extractQuotes returns the quoted spans of text in order of discovery,
// deduplicated across the quote styles.
func extractQuotes(text string) []string {
	seen := map[string]bool{}
	var quotes []string
	for _, p := range quotePatterns {
		for _, m := range p.FindAllStringSubmatch(text, -1) {
			quote := strings.TrimSpace(m[1])
			if quote == "" || seen[quote] {
				continue
			}
			seen[quote] = true
			quotes = append(quotes, quote)
		}
	}
	return quotes
}

// windowedSimilarity slides a window of the quote's length across the
// corpus in half-window steps and returns the best LCS ratio seen.
// The ratio is lcs(quote, window) / len(quote), so 1.0 means the whole
// quote appears in order inside one window.
func windowedSimilarity(quote, corpus string) float64 {
	qlen := len(quote)
	if qlen == 0 {
		return 0
	}
	if len(corpus) <= qlen {
		return float64(lcsLength(quote, corpus)) / float64(qlen)
	}

	step := qlen / 2
	if step == 0 {
		step = 1
	}

	best := 0.0
	for start := 0; start < len(corpus); start += step {
		end := start + qlen
		if end > len(corpus) {
			end = len(corpus)
		}
		ratio := float64(lcsLength(quote, corpus[start:end])) / float64(qlen)
		if ratio > best {
			best = ratio
		}
		if best == 1.0 || end == len(corpus) {
			break
		}
	}
	return best
}

// lcsLength computes longest-common-subsequence length with a rolling
// single-row table.
func lcsLength(a, b string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
