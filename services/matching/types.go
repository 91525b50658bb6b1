// Copyright (C) 2026 Atlas Counsel (engineering@atlascounsel.sg)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

/*
Package matching scores case facts against rule nodes across the six
logic-tree dimensions and returns ranked, threshold-filtered matches.

The scoring is deliberately lexical: a dimension item matches when it
shares at least one normalized token with the fact set. Ranking quality
comes from the weighted aggregation across dimensions, not from any
single dimension's precision.
*/
package matching

import (
	"github.com/AtlasCounsel/CostCounsel/services/ruleset"
)

// DimensionScore is the per-dimension outcome for one node.
type DimensionScore struct {
	Dimension    string   `json:"dimension"`
	Score        float64  `json:"score"`
	MatchedItems []string `json:"matched_items,omitempty"`
	ItemCount    int      `json:"item_count"`
	Reasoning    string   `json:"reasoning,omitempty"`
}

// MatchResult is one node's ranked match against a fact set.
//
// Node points into the registry snapshot that was passed to Match; the
// result is only as long-lived as that snapshot reference.
type MatchResult struct {
	NodeID          string            `json:"node_id"`
	Node            *ruleset.RuleNode `json:"-"`
	MatchScore      float64           `json:"match_score"`
	Facts           map[string]string `json:"facts"`
	Confidence      float64           `json:"confidence"`
	Reasoning       string            `json:"reasoning"`
	DimensionScores []DimensionScore  `json:"dimension_scores"`
}
