// Copyright (C) 2026 Atlas Counsel (engineering@atlascounsel.sg)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package hybrid

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AtlasCounsel/CostCounsel/services/llm"
	"github.com/AtlasCounsel/CostCounsel/services/validation"
)

// scriptedClient returns a fixed response or error.
type scriptedClient struct {
	response string
	err      error
	calls    int
}

func (s *scriptedClient) Generate(_ context.Context, _ string, _ llm.GenerationParams) (string, error) {
	s.calls++
	return s.response, s.err
}

func testCalc() map[string]any {
	return map[string]any{
		"court_level": "magistrate court",
		"citation":    "Rules of Court 2021, Order 21",
		"total_costs": 5450.0,
	}
}

func testVCtx() *validation.Context {
	return &validation.Context{
		KnownCitations: []string{"Rules of Court 2021, Order 21"},
		EstablishedFacts: map[string]string{
			"court_level": "magistrate court",
		},
	}
}

func newOrchestrator(client llm.Client) *Orchestrator {
	guard := validation.NewGuard(validation.DefaultConfig(), nil)
	return NewOrchestrator(DefaultConfig(), client, guard, nil)
}

func TestEnhanceAndValidateSafePath(t *testing.T) {
	client := &scriptedClient{
		response: "In the magistrate court, under the Rules of Court 2021, Order 21, total costs come to $5450.00.",
	}
	o := newOrchestrator(client)

	result := o.EnhanceAndValidate(context.Background(), testCalc(), testVCtx(), nil)

	assert.True(t, result.IsSafe)
	assert.False(t, result.UsedFallback)
	assert.Equal(t, client.response, result.Explanation)
	assert.Equal(t, 1.0, result.Report.Confidence)

	assert.Equal(t, int64(1), o.TotalRuns())
	assert.Equal(t, int64(1), o.SafeCount())
	assert.Zero(t, o.UnsafeCount())
	assert.Zero(t, o.FallbackCount())
}

func TestEnhanceAndValidateLLMFailure(t *testing.T) {
	client := &scriptedClient{err: errors.New("provider unreachable")}
	o := newOrchestrator(client)

	result := o.EnhanceAndValidate(context.Background(), testCalc(), testVCtx(), nil)

	assert.True(t, result.UsedFallback)
	assert.True(t, result.IsSafe, "deterministic fallback must validate")
	assert.Contains(t, result.Explanation, "$5450.00")
	assert.Contains(t, result.Explanation, "magistrate court")
	assert.Equal(t, int64(1), o.FallbackCount())
}

func TestEnhanceAndValidateRefusalFallsBack(t *testing.T) {
	client := &scriptedClient{response: "I cannot calculate this for you."}
	o := newOrchestrator(client)

	result := o.EnhanceAndValidate(context.Background(), testCalc(), testVCtx(), nil)

	assert.True(t, result.UsedFallback, "refusal text must be replaced")
	assert.True(t, result.IsSafe)
	assert.NotContains(t, result.Explanation, "cannot calculate")
	assert.Equal(t, validation.StatusFallback, result.Report.Status)
}

func TestEnhanceAndValidateCorrection(t *testing.T) {
	// Valid figures with a stray error marker the correction can strip.
	client := &scriptedClient{
		response: "Total costs in the magistrate court are $5450.00 under Rules of Court 2021, Order 21. [ERROR]",
	}
	o := newOrchestrator(client)

	result := o.EnhanceAndValidate(context.Background(), testCalc(), testVCtx(), nil)

	assert.True(t, result.Corrected)
	assert.False(t, result.UsedFallback)
	assert.True(t, result.IsSafe)
	assert.NotContains(t, result.Explanation, "[ERROR]")
}

func TestBasicExplanationPassesValidation(t *testing.T) {
	guard := validation.NewGuard(validation.DefaultConfig(), nil)

	calc := map[string]any{
		"court_level": "district court",
		"citation":    "Rules of Court 2021, Order 21",
		"breakdown": map[string]any{
			"base_costs": 9000.0,
			"gst":        810.0,
		},
		"gst_rate_percent": 9.0,
		"total_costs":      9810.0,
	}
	vctx := &validation.Context{
		KnownCitations:   []string{"Rules of Court 2021, Order 21"},
		EstablishedFacts: map[string]string{"court_level": "district court"},
	}

	text := BasicExplanation(calc)
	report := guard.Validate(context.Background(), calc, text, vctx)

	require.True(t, report.IsValid, "issues: %v", report.Issues)
	assert.Equal(t, 1.0, report.Confidence)
}

func TestResetCounters(t *testing.T) {
	client := &scriptedClient{err: errors.New("down")}
	o := newOrchestrator(client)

	o.EnhanceAndValidate(context.Background(), testCalc(), testVCtx(), nil)
	require.NotZero(t, o.TotalRuns())

	o.ResetCounters()
	assert.Zero(t, o.TotalRuns())
	assert.Zero(t, o.SafeCount())
	assert.Zero(t, o.UnsafeCount())
	assert.Zero(t, o.FallbackCount())
}
