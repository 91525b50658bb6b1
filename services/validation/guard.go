// Copyright (C) 2026 Atlas Counsel (engineering@atlascounsel.sg)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package validation

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("costcounsel/validation")

// Guard runs the full validation pipeline over one explanation.
//
// # Description
//
//	The guard is the single gate between AI-generated text and the
//	user. It scans for refusal and hedge patterns, verifies citations
//	against the rule-set whitelist, checks quoted rule text, detects
//	contradictions with established facts, and compares every number
//	in the calculation against the text. Findings accumulate on a
//	Report; a critical finding invalidates the response.
//
//	Sub-checks are independent and their issues concatenate, with one
//	exception: in strict mode a hallucinated citation stops the
//	numeric comparison, because numbers justified by invented law are
//	not worth reconciling.
//
// # Thread Safety
//
//	Safe for concurrent use. Checkers are stateless; every call builds
//	a fresh Report.
type Guard struct {
	cfg    Config
	logger *slog.Logger

	pattern     *PatternChecker
	numeric     *NumericChecker
	quote       *QuoteChecker
	citation    *CitationChecker
	consistency *ConsistencyChecker
}

// NewGuard wires the checker pipeline.
func NewGuard(cfg Config, logger *slog.Logger) *Guard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{
		cfg:         cfg,
		logger:      logger,
		pattern:     NewPatternChecker(),
		numeric:     NewNumericChecker(cfg.NumericConfig),
		quote:       NewQuoteChecker(cfg.QuoteConfig),
		citation:    NewCitationChecker(),
		consistency: NewConsistencyChecker(cfg.ConsistencyConfig),
	}
}

// Validate checks explanation against calculation and vctx.
//
// # Inputs
//
//	ctx         - Trace propagation only; the pipeline never blocks.
//	calculation - The deterministic result the text must describe.
//	              Empty yields a warning report with confidence 0.5.
//	explanation - The AI-generated text. Blank is critical.
//	vctx        - Rule nodes, citation whitelist, established facts.
//	              May be nil; the corresponding checks then no-op.
//
// # Outputs
//
//	*Report - Never nil. IsValid is false iff a critical issue exists.
func (g *Guard) Validate(ctx context.Context, calculation map[string]any, explanation string, vctx *Context) *Report {
	_, span := tracer.Start(ctx, "validation.Validate")
	defer span.End()

	start := time.Now()
	report := NewReport()

	emptyCalc := len(calculation) == 0
	if emptyCalc {
		report.AddIssue(Issue{
			Type:     IssueMissingField,
			Severity: SeverityWarning,
			Message:  "no calculation supplied, numeric verification skipped",
		})
	}

	if strings.TrimSpace(explanation) == "" {
		report.AddIssue(Issue{
			Type:     IssueMissingContent,
			Severity: SeverityCritical,
			Message:  "explanation is empty",
		})
		report.Status = StatusScanned
		report.Confidence = 0.0
		g.finalize(report, span, start)
		return report
	}

	input := &CheckInput{
		Calculation: calculation,
		Explanation: explanation,
		Context:     vctx,
		Strict:      g.cfg.StrictMode,
	}

	g.addAll(report, g.pattern.Check(input))
	report.Status = StatusScanned

	g.addAll(report, g.citation.Check(input))
	g.addAll(report, g.quote.Check(input))
	g.addAll(report, g.consistency.Check(input))

	hallucinated := false
	for _, issue := range report.Issues {
		if issue.Type == IssueHallucination && issue.Severity == SeverityCritical {
			hallucinated = true
			break
		}
	}

	matched, total := 0, 0
	if !emptyCalc && !(g.cfg.StrictMode && hallucinated) {
		g.addAll(report, g.numeric.Check(input))
		matched, total = g.numeric.MatchStats(calculation, explanation)
	}
	report.Status = StatusCompared
	report.FieldsChecked = total
	report.FieldsMatched = matched

	switch {
	case emptyCalc:
		report.Confidence = 0.5
	case total > 0:
		report.Confidence = float64(matched) / float64(total)
	case len(report.Issues) == 0:
		report.Confidence = 1.0
	default:
		report.Confidence = degradedConfidence(report)
	}

	if report.IsValid {
		report.Status = StatusPassed
	}

	g.finalize(report, span, start)
	return report
}

// AttemptCorrection makes the single bounded attempt to salvage an
// invalid explanation.
//
// # Description
//
//	Offending spans recorded on the report's critical and high issues
//	are stripped from the text, then a citation-only recheck runs over
//	the remainder. The correction is accepted only when the remainder
//	still reads as an explanation (at least MinCorrectedLength chars)
//	and cites nothing unknown. There is exactly one attempt; a failed
//	correction means the caller must fall back to the deterministic
//	explanation.
//
// # Outputs
//
//	string - The corrected text, empty when not accepted.
//	bool   - Whether the correction was accepted.
func (g *Guard) AttemptCorrection(explanation string, report *Report, vctx *Context) (string, bool) {
	report.Status = StatusCorrecting

	corrected := explanation
	for _, issue := range report.Issues {
		if issue.Found == "" {
			continue
		}
		if issue.Severity != SeverityCritical && issue.Severity != SeverityHigh {
			continue
		}
		corrected = strings.ReplaceAll(corrected, issue.Found, "")
	}
	corrected = strings.Join(strings.Fields(corrected), " ")

	if len(corrected) < g.cfg.MinCorrectedLength {
		report.Status = StatusFallback
		correctionAttempts.WithLabelValues("too_short").Inc()
		return "", false
	}

	recheck := g.citation.Check(&CheckInput{
		Explanation: corrected,
		Context:     vctx,
		Strict:      g.cfg.StrictMode,
	})
	if len(recheck) > 0 {
		report.Status = StatusFallback
		correctionAttempts.WithLabelValues("recheck_failed").Inc()
		return "", false
	}

	report.Status = StatusCorrected
	correctionAttempts.WithLabelValues("accepted").Inc()
	g.logger.Info("explanation corrected",
		slog.Int("original_len", len(explanation)),
		slog.Int("corrected_len", len(corrected)))
	return corrected, true
}

func (g *Guard) addAll(report *Report, issues []Issue) {
	for _, issue := range issues {
		report.AddIssue(issue)
		issuesTotal.WithLabelValues(string(issue.Type), string(issue.Severity)).Inc()
	}
}

func (g *Guard) finalize(report *Report, span trace.Span, start time.Time) {
	report.CheckDuration = time.Since(start)
	validationDuration.Observe(report.CheckDuration.Seconds())
	reportsTotal.WithLabelValues(string(report.Status)).Inc()

	span.SetAttributes(
		attribute.Bool("report.is_valid", report.IsValid),
		attribute.String("report.status", string(report.Status)),
		attribute.Int("report.issues", len(report.Issues)),
		attribute.Float64("report.confidence", report.Confidence),
	)

	if !report.IsValid {
		g.logger.Warn("explanation rejected",
			slog.Int("critical", report.CriticalCount()),
			slog.Int("high", report.HighCount()),
			slog.Int("warnings", report.WarningCount()))
	}
}

// degradedConfidence applies severity decrements when there are no
// numeric fields to derive a ratio from but issues exist.
func degradedConfidence(report *Report) float64 {
	conf := 1.0
	conf -= 0.3 * float64(report.CriticalCount())
	conf -= 0.25 * float64(report.HighCount())
	conf -= 0.1 * float64(report.WarningCount())
	if conf < 0 {
		conf = 0
	}
	return conf
}
