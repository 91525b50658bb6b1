// Copyright (C) 2026 Atlas Counsel (engineering@atlascounsel.sg)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package matching

import (
	"fmt"
	"math"

	"github.com/AtlasCounsel/CostCounsel/services/ruleset"
)

// weightSumTolerance is the allowed drift when checking that dimension
// weights sum to 1.0.
const weightSumTolerance = 0.001

// Config configures the matching engine.
type Config struct {
	// Weights maps each of the six dimension names to its share of the
	// overall score. Must cover all six dimensions and sum to 1.0
	// within weightSumTolerance.
	Weights map[string]float64

	// CaseSensitive disables lowercase normalization of tokens.
	CaseSensitive bool

	// FactCountCap is the fact count at which the confidence fact term
	// saturates.
	FactCountCap int

	// Confidence blends the three confidence terms. Zero value takes
	// the defaults.
	Confidence ConfidenceWeights
}

// ConfidenceWeights shares the confidence signal between dimension
// coverage, fact richness, and score consistency. Must sum to 1.0
// within weightSumTolerance.
type ConfidenceWeights struct {
	Coverage    float64
	Facts       float64
	Consistency float64
}

func (w ConfidenceWeights) sum() float64 {
	return w.Coverage + w.Facts + w.Consistency
}

// DefaultConfig returns the production weighting.
//
// The split favors what/which/if_then because those dimensions carry
// the operative rule content; modality/given/why are context.
func DefaultConfig() Config {
	return Config{
		Weights: map[string]float64{
			ruleset.DimWhat:     0.25,
			ruleset.DimWhich:    0.20,
			ruleset.DimIfThen:   0.20,
			ruleset.DimModality: 0.15,
			ruleset.DimGiven:    0.10,
			ruleset.DimWhy:      0.10,
		},
		CaseSensitive: false,
		FactCountCap:  5,
		Confidence: ConfidenceWeights{
			Coverage:    0.5,
			Facts:       0.3,
			Consistency: 0.2,
		},
	}
}

// validate checks the weight map at construction time.
func (c *Config) validate() error {
	if len(c.Weights) != len(ruleset.DimensionNames) {
		return fmt.Errorf("weights must cover all %d dimensions, got %d",
			len(ruleset.DimensionNames), len(c.Weights))
	}
	sum := 0.0
	for _, name := range ruleset.DimensionNames {
		w, ok := c.Weights[name]
		if !ok {
			return fmt.Errorf("missing weight for dimension %s", name)
		}
		if w < 0 {
			return fmt.Errorf("negative weight %f for dimension %s", w, name)
		}
		sum += w
	}
	if math.Abs(sum-1.0) > weightSumTolerance {
		return fmt.Errorf("dimension weights sum to %f, want 1.0 within %.3f",
			sum, weightSumTolerance)
	}
	if c.FactCountCap <= 0 {
		c.FactCountCap = DefaultConfig().FactCountCap
	}
	if c.Confidence == (ConfidenceWeights{}) {
		c.Confidence = DefaultConfig().Confidence
	}
	if c.Confidence.Coverage < 0 || c.Confidence.Facts < 0 || c.Confidence.Consistency < 0 {
		return fmt.Errorf("confidence weights must be non-negative, got %+v", c.Confidence)
	}
	if math.Abs(c.Confidence.sum()-1.0) > weightSumTolerance {
		return fmt.Errorf("confidence weights sum to %f, want 1.0 within %.3f",
			c.Confidence.sum(), weightSumTolerance)
	}
	return nil
}
