// Copyright (C) 2026 Atlas Counsel (engineering@atlascounsel.sg)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

/*
Package validation cross-checks AI-generated explanations against the
deterministic calculation they claim to describe. Every number, citation,
and quoted rule fragment in the text must be traceable to the calculation
or the rule set; anything that is not becomes an issue on the report.

Validation findings are data, never errors. A report with critical
issues means "do not show this text", not "the validator failed".
*/
package validation

import (
	"time"

	"github.com/AtlasCounsel/CostCounsel/services/ruleset"
)

// Severity levels for validation issues.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// IssueType categorizes what a validation issue is about.
type IssueType string

const (
	IssueCitation          IssueType = "citation"
	IssueRequirement       IssueType = "requirement"
	IssueField             IssueType = "field"
	IssueHallucination     IssueType = "hallucination"
	IssueConsistency       IssueType = "consistency"
	IssueQuoteAccuracy     IssueType = "quote_accuracy"
	IssueMissingValue      IssueType = "missing_value"
	IssueNearMatch         IssueType = "near_match"
	IssueContradiction     IssueType = "contradiction"
	IssueMissingField      IssueType = "missing_field"
	IssueSuspiciousPattern IssueType = "suspicious_pattern"
	IssueMissingContent    IssueType = "missing_content"
)

// Issue is a single validation finding.
type Issue struct {
	Type       IssueType `json:"type"`
	Severity   Severity  `json:"severity"`
	Message    string    `json:"message"`
	FieldName  string    `json:"field_name,omitempty"`
	Expected   string    `json:"expected,omitempty"`
	Found      string    `json:"found,omitempty"`
	Suggestion string    `json:"suggestion,omitempty"`
}

// Status tracks a response through the validation lifecycle.
type Status string

const (
	StatusReceived   Status = "RECEIVED"
	StatusScanned    Status = "SCANNED"
	StatusCompared   Status = "COMPARED"
	StatusPassed     Status = "PASSED"
	StatusCorrecting Status = "CORRECTING"
	StatusCorrected  Status = "CORRECTED"
	StatusFallback   Status = "FALLBACK"
)

// Report is the outcome of validating one explanation.
//
// # Thread Safety
//
//	Built by a single goroutine during Validate; treat as read-only
//	once returned.
type Report struct {
	IsValid       bool          `json:"is_valid"`
	Status        Status        `json:"status"`
	Issues        []Issue       `json:"issues"`
	Warnings      []string      `json:"warnings"`
	FieldsChecked int           `json:"fields_checked"`
	FieldsMatched int           `json:"fields_matched"`
	Confidence    float64       `json:"confidence"`
	CheckDuration time.Duration `json:"check_duration"`

	criticalCount int
	highCount     int
	warningCount  int
}

// NewReport creates a report in the RECEIVED state, valid until an
// issue says otherwise.
func NewReport() *Report {
	return &Report{
		IsValid:    true,
		Status:     StatusReceived,
		Issues:     []Issue{},
		Warnings:   []string{},
		Confidence: 1.0,
	}
}

// AddIssue appends an issue and updates severity counts. A critical
// issue invalidates the report.
func (r *Report) AddIssue(issue Issue) {
	r.Issues = append(r.Issues, issue)
	switch issue.Severity {
	case SeverityCritical:
		r.criticalCount++
		r.IsValid = false
	case SeverityHigh:
		r.highCount++
	case SeverityWarning:
		r.warningCount++
		r.Warnings = append(r.Warnings, issue.Message)
	}
}

// CriticalCount reports how many critical issues were found.
func (r *Report) CriticalCount() int { return r.criticalCount }

// HighCount reports how many high-severity issues were found.
func (r *Report) HighCount() int { return r.highCount }

// WarningCount reports how many warning issues were found.
func (r *Report) WarningCount() int { return r.warningCount }

// Context carries the reference material an explanation is checked
// against.
type Context struct {
	// Nodes are the matched rule nodes whose text may be quoted.
	Nodes []*ruleset.RuleNode

	// KnownCitations is the whitelist of legal authorities the
	// response may cite.
	KnownCitations []string

	// EstablishedFacts are categorical facts already confirmed in the
	// conversation (court level, case type). The explanation must not
	// contradict them.
	EstablishedFacts map[string]string
}

// CheckInput bundles everything a checker sees.
type CheckInput struct {
	Calculation map[string]any
	Explanation string
	Context     *Context
	Strict      bool
}

// Checker is one validation pass. Checkers are stateless after
// construction and safe for concurrent use.
type Checker interface {
	Name() string
	Check(input *CheckInput) []Issue
}
