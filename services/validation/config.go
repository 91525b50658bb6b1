// Copyright (C) 2026 Atlas Counsel (engineering@atlascounsel.sg)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package validation

// Config configures the validation guard.
type Config struct {
	// StrictMode escalates unmatched calculation values to critical.
	// The advisory service always runs strict; lenient mode exists for
	// exploratory tooling.
	StrictMode bool

	// NumericConfig configures calculation-vs-text number comparison.
	NumericConfig *NumericConfig

	// QuoteConfig configures quoted-rule-text verification.
	QuoteConfig *QuoteConfig

	// ConsistencyConfig configures categorical-fact contradiction
	// detection.
	ConsistencyConfig *ConsistencyConfig

	// MinCorrectedLength is the minimum length of a corrected
	// explanation for the correction to be accepted.
	MinCorrectedLength int
}

// DefaultConfig returns the production validation configuration.
func DefaultConfig() Config {
	return Config{
		StrictMode:         true,
		NumericConfig:      DefaultNumericConfig(),
		QuoteConfig:        DefaultQuoteConfig(),
		ConsistencyConfig:  DefaultConsistencyConfig(),
		MinCorrectedLength: 20,
	}
}

// NumericConfig configures numeric comparison.
type NumericConfig struct {
	// Tolerance is the absolute difference under which a calculation
	// value and a text value are the same number.
	Tolerance float64

	// NearMatchMultiplier widens the tolerance for the near-match
	// band. A value within Tolerance*NearMatchMultiplier is flagged as
	// a near match instead of missing.
	NearMatchMultiplier float64
}

// DefaultNumericConfig returns tolerance 0.01 with a 10x near-match
// band.
func DefaultNumericConfig() *NumericConfig {
	return &NumericConfig{
		Tolerance:           0.01,
		NearMatchMultiplier: 10.0,
	}
}

// QuoteConfig configures quote verification.
type QuoteConfig struct {
	// MinQuoteLength is the shortest quoted span worth verifying.
	MinQuoteLength int

	// SimilarityThreshold is the minimum windowed similarity for a
	// non-exact quote to count as verified.
	SimilarityThreshold float64
}

// DefaultQuoteConfig returns the 20-char / 0.80 production settings.
func DefaultQuoteConfig() *QuoteConfig {
	return &QuoteConfig{
		MinQuoteLength:      20,
		SimilarityThreshold: 0.80,
	}
}

// ConsistencyConfig configures contradiction detection over
// categorical facts.
type ConsistencyConfig struct {
	// Categories maps a fact key to the closed set of values it can
	// take. A text that names a different member of the set than the
	// established value, without also naming the established value,
	// contradicts the conversation.
	Categories map[string][]string
}

// DefaultConsistencyConfig covers the categorical facts the advisory
// flow establishes.
func DefaultConsistencyConfig() *ConsistencyConfig {
	return &ConsistencyConfig{
		Categories: map[string][]string{
			"court_level": {
				"magistrate court",
				"district court",
				"high court",
				"appellate division",
				"court of appeal",
			},
			"case_type": {
				"contract dispute",
				"tort claim",
				"defamation",
				"negligence",
			},
		},
	}
}
