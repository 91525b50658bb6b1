// Copyright (C) 2026 Atlas Counsel (engineering@atlascounsel.sg)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

/*
Package hybrid combines the deterministic calculator output with
LLM-written prose and guarantees the user only ever sees text that
survived validation. The LLM improves readability; it never changes a
number. When the model fails or its text cannot be salvaged, a plain
field-by-field explanation built from the calculation itself is served
instead, and that explanation passes validation by construction.
*/
package hybrid

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/AtlasCounsel/CostCounsel/services/llm"
	"github.com/AtlasCounsel/CostCounsel/services/matching"
	"github.com/AtlasCounsel/CostCounsel/services/validation"
)

var tracer = otel.Tracer("costcounsel/hybrid")

// Config configures the orchestrator.
type Config struct {
	// MinSafeConfidence is the report confidence floor below which a
	// validated response is still not safe to show.
	MinSafeConfidence float64

	// StrictMode swaps in the deterministic explanation whenever the
	// AI text is unsafe, instead of returning it flagged.
	StrictMode bool

	// Temperature and MaxTokens are passed to the LLM.
	Temperature float32
	MaxTokens   int
}

// DefaultConfig returns the production orchestration settings.
func DefaultConfig() Config {
	return Config{
		MinSafeConfidence: 0.3,
		StrictMode:        true,
		Temperature:       0.2,
		MaxTokens:         600,
	}
}

// SafeResult is the outcome of one enhance-and-validate run.
type SafeResult struct {
	Explanation  string             `json:"explanation"`
	Report       *validation.Report `json:"report"`
	IsSafe       bool               `json:"is_safe"`
	UsedFallback bool               `json:"used_fallback"`
	Corrected    bool               `json:"corrected"`
}

// Orchestrator runs the enhance-then-validate loop.
//
// # Thread Safety
//
//	Safe for concurrent use. Counters are atomic; collaborators are
//	concurrency safe by their own contracts.
type Orchestrator struct {
	cfg    Config
	client llm.Client
	guard  *validation.Guard
	logger *slog.Logger

	total    atomic.Int64
	safe     atomic.Int64
	unsafe   atomic.Int64
	fallback atomic.Int64
}

// NewOrchestrator wires the orchestrator. The client should already be
// wrapped with retries; the orchestrator treats any Generate error as
// final and falls back.
func NewOrchestrator(cfg Config, client llm.Client, guard *validation.Guard, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		cfg:    cfg,
		client: client,
		guard:  guard,
		logger: logger,
	}
}

// EnhanceAndValidate produces a safe explanation of calculation.
//
// # Description
//
//	The LLM is asked to explain the calculation in plain language,
//	restating every figure exactly and citing only whitelisted
//	authorities. The guard then validates the text. An invalid AI text
//	gets the single bounded correction attempt; if that fails too, the
//	deterministic explanation replaces it. The calculation map is
//	snapshotted before the LLM call; any mutation voids safety.
//
// # Outputs
//
//	*SafeResult - Never nil. IsSafe is the only field callers should
//	              gate user-visible output on.
func (o *Orchestrator) EnhanceAndValidate(ctx context.Context, calculation map[string]any, vctx *validation.Context, matches []matching.MatchResult) *SafeResult {
	ctx, span := tracer.Start(ctx, "hybrid.EnhanceAndValidate")
	defer span.End()
	start := time.Now()
	o.total.Add(1)

	snapshot := deepCopy(calculation)

	result := &SafeResult{}
	text, err := o.client.Generate(ctx, o.buildPrompt(calculation, vctx, matches), llm.GenerationParams{
		Temperature: llm.FloatPtr(o.cfg.Temperature),
		MaxTokens:   llm.IntPtr(o.cfg.MaxTokens),
	})
	if err != nil {
		o.logger.Warn("llm enhancement failed, using deterministic explanation",
			slog.String("error", err.Error()))
		text = BasicExplanation(calculation)
		result.UsedFallback = true
		o.fallback.Add(1)
		outcomesTotal.WithLabelValues("fallback").Inc()
	}

	report := o.guard.Validate(ctx, calculation, text, vctx)

	if !report.IsValid && !result.UsedFallback {
		if corrected, ok := o.guard.AttemptCorrection(text, report, vctx); ok {
			recheck := o.guard.Validate(ctx, calculation, corrected, vctx)
			if recheck.IsValid {
				text = corrected
				report = recheck
				report.Status = validation.StatusCorrected
				result.Corrected = true
				outcomesTotal.WithLabelValues("corrected").Inc()
			}
		}
	}

	if !report.IsValid && o.cfg.StrictMode && !result.UsedFallback {
		o.logger.Warn("ai explanation rejected, substituting deterministic explanation",
			slog.Int("critical_issues", report.CriticalCount()))
		text = BasicExplanation(calculation)
		result.UsedFallback = true
		o.fallback.Add(1)
		outcomesTotal.WithLabelValues("fallback").Inc()
		report = o.guard.Validate(ctx, calculation, text, vctx)
		report.Status = validation.StatusFallback
	}

	preserved := reflect.DeepEqual(snapshot, calculation)
	result.Explanation = text
	result.Report = report
	result.IsSafe = preserved &&
		report.IsValid &&
		report.CriticalCount() == 0 &&
		report.Confidence >= o.cfg.MinSafeConfidence

	if result.IsSafe {
		o.safe.Add(1)
		outcomesTotal.WithLabelValues("safe").Inc()
	} else {
		o.unsafe.Add(1)
		outcomesTotal.WithLabelValues("unsafe").Inc()
	}

	span.SetAttributes(
		attribute.Bool("result.is_safe", result.IsSafe),
		attribute.Bool("result.used_fallback", result.UsedFallback),
		attribute.Float64("report.confidence", report.Confidence),
	)
	enhanceDuration.Observe(time.Since(start).Seconds())
	return result
}

// buildPrompt frames the enhancement task with hard constraints the
// guard will enforce anyway. Telling the model the rules up front cuts
// the fallback rate; it does not replace validation.
func (o *Orchestrator) buildPrompt(calculation map[string]any, vctx *validation.Context, matches []matching.MatchResult) string {
	var sb strings.Builder
	sb.WriteString("You are explaining a legal cost calculation to a client in Singapore.\n")
	sb.WriteString("Rewrite the calculation below as clear prose.\n")
	sb.WriteString("Constraints:\n")
	sb.WriteString("- State every figure exactly as given, formatted as currency (for example $5000.00).\n")
	sb.WriteString("- Do not add, round, or omit any figure.\n")
	sb.WriteString("- Cite only the authorities listed. Never cite anything else.\n")
	sb.WriteString("- Do not hedge and do not disclaim the figures.\n\n")

	sb.WriteString("Calculation:\n")
	for _, nv := range validation.FlattenNumeric(calculation) {
		fmt.Fprintf(&sb, "  %s = %.2f\n", nv.Path, nv.Value)
	}

	if vctx != nil && len(vctx.KnownCitations) > 0 {
		sb.WriteString("\nAuthorities:\n")
		for _, c := range vctx.KnownCitations {
			fmt.Fprintf(&sb, "  - %s\n", c)
		}
	}

	if len(matches) > 0 {
		sb.WriteString("\nApplicable rules:\n")
		for i, m := range matches {
			if i == 3 {
				break
			}
			fmt.Fprintf(&sb, "  - %s (%s)\n", m.NodeID, m.Node.Citation)
		}
	}
	return sb.String()
}

// BasicExplanation renders the calculation field by field. It states
// every numeric leaf in a format the guard's extractor recognizes, so
// it passes validation by construction.
func BasicExplanation(calculation map[string]any) string {
	var sb strings.Builder

	if court, ok := calculation["court_level"].(string); ok {
		fmt.Fprintf(&sb, "Costs position for the %s. ", court)
	}
	if citation, ok := calculation["citation"].(string); ok {
		fmt.Fprintf(&sb, "This follows %s. ", citation)
	}

	values := validation.FlattenNumeric(calculation)
	sort.Slice(values, func(i, j int) bool { return values[i].Path < values[j].Path })
	for _, nv := range values {
		label := humanizePath(nv.Path)
		if strings.Contains(nv.Path, "percent") || strings.Contains(nv.Path, "rate") {
			fmt.Fprintf(&sb, "%s: %g%%. ", label, nv.Value)
		} else {
			fmt.Fprintf(&sb, "%s: $%.2f. ", label, nv.Value)
		}
	}

	return strings.TrimSpace(sb.String())
}

func humanizePath(path string) string {
	parts := strings.Split(path, ".")
	last := parts[len(parts)-1]
	words := strings.ReplaceAll(last, "_", " ")
	if len(words) > 0 {
		words = strings.ToUpper(words[:1]) + words[1:]
	}
	return words
}

func deepCopy(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		switch val := v.(type) {
		case map[string]any:
			out[k] = deepCopy(val)
		case []any:
			cp := make([]any, len(val))
			copy(cp, val)
			out[k] = cp
		default:
			out[k] = v
		}
	}
	return out
}

// TotalRuns reports how many enhancements have run since the last
// reset.
func (o *Orchestrator) TotalRuns() int64 { return o.total.Load() }

// SafeCount reports how many runs produced a safe result.
func (o *Orchestrator) SafeCount() int64 { return o.safe.Load() }

// UnsafeCount reports how many runs ended unsafe.
func (o *Orchestrator) UnsafeCount() int64 { return o.unsafe.Load() }

// FallbackCount reports how many runs served the deterministic
// explanation.
func (o *Orchestrator) FallbackCount() int64 { return o.fallback.Load() }

// ResetCounters zeroes the in-process counters.
func (o *Orchestrator) ResetCounters() {
	o.total.Store(0)
	o.safe.Store(0)
	o.unsafe.Store(0)
	o.fallback.Store(0)
}
