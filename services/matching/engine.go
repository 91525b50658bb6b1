// Copyright (C) 2026 Atlas Counsel (engineering@atlascounsel.sg)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package matching

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"sync/atomic"
	"time"
	"unicode"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/AtlasCounsel/CostCounsel/services/ruleset"
)

var tracer = otel.Tracer("costcounsel/matching")

// ErrInvalidThreshold is returned when a match threshold falls outside
// [0.0, 1.0]. Thresholds are never clamped.
var ErrInvalidThreshold = errors.New("match threshold must be in [0.0, 1.0]")

// Engine scores fact sets against rule nodes.
//
// # Description
//
//	For each node the engine computes a per-dimension overlap score
//	(matched items over total items), aggregates them with the
//	configured weights, filters on the caller's threshold (inclusive),
//	and returns results sorted by descending score. Ties keep input
//	order.
//
// # Thread Safety
//
//	Safe for concurrent use. Configuration is immutable after
//	construction; counters are atomic.
type Engine struct {
	cfg    Config
	logger *slog.Logger

	totalMatches   atomic.Int64
	totalEvaluated atomic.Int64
}

// NewEngine validates cfg and builds an engine. A weight map that does
// not cover all six dimensions or does not sum to 1.0 is a
// construction error, never a silent renormalization.
func NewEngine(cfg Config, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("matching config: %w", err)
	}
	return &Engine{cfg: cfg, logger: logger}, nil
}

// Match scores every node against facts and returns the matches at or
// above threshold, best first.
//
// # Inputs
//
//	ctx       - Carries the trace span; scoring itself never blocks.
//	nodes     - Rule nodes to score. Empty input yields an empty result.
//	facts     - Case facts as key-value strings. Empty yields an empty result.
//	threshold - Inclusive minimum overall score, must be in [0.0, 1.0].
//
// # Outputs
//
//	[]MatchResult - ranked matches, possibly empty, never nil on success.
//	error         - ErrInvalidThreshold for an out-of-range threshold.
func (e *Engine) Match(ctx context.Context, nodes []*ruleset.RuleNode, facts map[string]string, threshold float64) ([]MatchResult, error) {
	if threshold < 0.0 || threshold > 1.0 {
		return nil, fmt.Errorf("%w: got %f", ErrInvalidThreshold, threshold)
	}

	_, span := tracer.Start(ctx, "matching.Match")
	defer span.End()
	span.SetAttributes(
		attribute.Int("nodes.count", len(nodes)),
		attribute.Int("facts.count", len(facts)),
		attribute.Float64("threshold", threshold),
	)

	start := time.Now()
	e.totalMatches.Add(1)
	matchOperations.Inc()

	results := []MatchResult{}
	if len(nodes) == 0 || len(facts) == 0 {
		matchesReturned.Observe(0)
		matchDuration.Observe(time.Since(start).Seconds())
		return results, nil
	}

	factTokens := e.factTokens(facts)

	for _, node := range nodes {
		e.totalEvaluated.Add(1)
		nodesEvaluated.Inc()

		result := e.scoreNode(node, facts, factTokens)
		if result.MatchScore >= threshold {
			results = append(results, result)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].MatchScore > results[j].MatchScore
	})

	span.SetAttributes(attribute.Int("results.count", len(results)))
	matchesReturned.Observe(float64(len(results)))
	matchDuration.Observe(time.Since(start).Seconds())

	e.logger.Debug("match complete",
		slog.Int("nodes", len(nodes)),
		slog.Int("results", len(results)),
		slog.Float64("threshold", threshold))

	return results, nil
}

// scoreNode computes the weighted score and confidence for one node.
func (e *Engine) scoreNode(node *ruleset.RuleNode, facts map[string]string, factTokens map[string]struct{}) MatchResult {
	dimScores := make([]DimensionScore, 0, len(ruleset.DimensionNames))
	overall := 0.0

	for _, name := range ruleset.DimensionNames {
		ds := e.scoreDimension(name, node.Dimension(name), factTokens)
		overall += ds.Score * e.cfg.Weights[name]
		dimScores = append(dimScores, ds)
	}

	return MatchResult{
		NodeID:          node.NodeID,
		Node:            node,
		MatchScore:      overall,
		Facts:           facts,
		Confidence:      e.confidence(node, len(facts), dimScores),
		Reasoning:       buildReasoning(node, dimScores),
		DimensionScores: dimScores,
	}
}

// scoreDimension counts the items sharing at least one token with the
// fact set. An empty dimension scores 0.0 and contributes nothing.
func (e *Engine) scoreDimension(name string, items []ruleset.DimensionItem, factTokens map[string]struct{}) DimensionScore {
	ds := DimensionScore{Dimension: name, ItemCount: len(items)}
	if len(items) == 0 {
		ds.Reasoning = "no items"
		return ds
	}

	matched := 0
	for _, item := range items {
		text := item.Text()
		if e.overlaps(text, factTokens) {
			matched++
			ds.MatchedItems = append(ds.MatchedItems, text)
		}
	}

	ds.Score = float64(matched) / float64(len(items))
	ds.Reasoning = fmt.Sprintf("%d of %d items share tokens with the facts", matched, len(items))
	return ds
}

// confidence blends dimension coverage, fact richness, and score
// consistency into a secondary signal. It never affects ranking.
//
// coverage:    how many of the six dimensions carry content.
// fact term:   saturates at FactCountCap facts.
// consistency: 1 minus the mean absolute deviation of the non-zero
//
//	dimension scores. With no non-zero scores the term
//	contributes zero; there is no signal to be consistent.
func (e *Engine) confidence(node *ruleset.RuleNode, factCount int, dimScores []DimensionScore) float64 {
	coverage := float64(node.DimensionsWithContent()) / float64(len(ruleset.DimensionNames))
	factTerm := math.Min(1.0, float64(factCount)/float64(e.cfg.FactCountCap))

	var nonZero []float64
	for _, ds := range dimScores {
		if ds.Score > 0 {
			nonZero = append(nonZero, ds.Score)
		}
	}

	consistency := 0.0
	if len(nonZero) > 0 {
		mean := 0.0
		for _, s := range nonZero {
			mean += s
		}
		mean /= float64(len(nonZero))

		mad := 0.0
		for _, s := range nonZero {
			mad += math.Abs(s - mean)
		}
		mad /= float64(len(nonZero))
		consistency = 1.0 - mad
	}

	w := e.cfg.Confidence
	return w.Coverage*coverage + w.Facts*factTerm + w.Consistency*consistency
}

func buildReasoning(node *ruleset.RuleNode, dimScores []DimensionScore) string {
	var hits []string
	for _, ds := range dimScores {
		if ds.Score > 0 {
			hits = append(hits, fmt.Sprintf("%s=%.2f", ds.Dimension, ds.Score))
		}
	}
	if len(hits) == 0 {
		return fmt.Sprintf("node %s: no dimension overlap with the facts", node.NodeID)
	}
	return fmt.Sprintf("node %s matched on %s", node.NodeID, strings.Join(hits, ", "))
}

// factTokens builds the normalized token set for the whole fact map,
// keys and values both.
func (e *Engine) factTokens(facts map[string]string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for k, v := range facts {
		for _, t := range e.tokenize(k) {
			tokens[t] = struct{}{}
		}
		for _, t := range e.tokenize(v) {
			tokens[t] = struct{}{}
		}
	}
	return tokens
}

// overlaps reports whether text shares at least one token with the set.
func (e *Engine) overlaps(text string, factTokens map[string]struct{}) bool {
	for _, t := range e.tokenize(text) {
		if _, ok := factTokens[t]; ok {
			return true
		}
	}
	return false
}

func (e *Engine) tokenize(s string) []string {
	if !e.cfg.CaseSensitive {
		s = strings.ToLower(s)
	}
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// TotalMatches reports how many match operations have run since the
// last reset.
func (e *Engine) TotalMatches() int64 {
	return e.totalMatches.Load()
}

// TotalNodesEvaluated reports how many nodes have been scored since
// the last reset.
func (e *Engine) TotalNodesEvaluated() int64 {
	return e.totalEvaluated.Load()
}

// ResetCounters zeroes the in-process counters. Prometheus counters
// are cumulative by design and are not touched.
func (e *Engine) ResetCounters() {
	e.totalMatches.Store(0)
	e.totalEvaluated.Store(0)
}
