// Copyright (C) 2026 Atlas Counsel (engineering@atlascounsel.sg)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package datatypes holds the advisor API request and response shapes.
package datatypes

import (
	"github.com/AtlasCounsel/CostCounsel/services/validation"
)

// ConsultRequest is one conversational turn from the client.
type ConsultRequest struct {
	// SessionID continues an existing conversation. Empty starts a
	// new session; the response carries the assigned id.
	SessionID string `json:"session_id"`

	// Message is the user's free-text input.
	Message string `json:"message" binding:"required"`
}

// MatchSummary is the API view of one matched rule.
type MatchSummary struct {
	NodeID     string  `json:"node_id"`
	Citation   string  `json:"citation"`
	Score      float64 `json:"score"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

// ConsultResponse is the advisor's answer to one turn.
type ConsultResponse struct {
	SessionID string `json:"session_id"`

	// Explanation is the validated text to show the user.
	Explanation string `json:"explanation"`

	// NeedsFacts lists the facts still required before a calculation
	// can run. Non-empty means Explanation is a follow-up question.
	NeedsFacts []string `json:"needs_facts,omitempty"`

	// Facts echoes the accumulated session facts.
	Facts map[string]string `json:"facts"`

	Matches []MatchSummary `json:"matches,omitempty"`

	Calculation map[string]any `json:"calculation,omitempty"`

	IsSafe       bool               `json:"is_safe"`
	UsedFallback bool               `json:"used_fallback"`
	Report       *validation.Report `json:"report,omitempty"`
}

// SessionListResponse lists live session ids.
type SessionListResponse struct {
	Sessions []string `json:"sessions"`
	Count    int      `json:"count"`
}

// SessionFactsResponse returns the facts of one session.
type SessionFactsResponse struct {
	SessionID string            `json:"session_id"`
	Facts     map[string]string `json:"facts"`
}

// HealthResponse reports service liveness and rule-set state.
type HealthResponse struct {
	Status       string `json:"status"`
	RuleNodes    int    `json:"rule_nodes"`
	RuleReloads  int64  `json:"rule_reloads"`
	SessionCount int    `json:"session_count"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error string `json:"error"`
}
