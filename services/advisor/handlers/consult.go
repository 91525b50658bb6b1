// Copyright (C) 2026 Atlas Counsel (engineering@atlascounsel.sg)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/AtlasCounsel/CostCounsel/services/advisor/datatypes"
	"github.com/AtlasCounsel/CostCounsel/services/calculation"
	"github.com/AtlasCounsel/CostCounsel/services/matching"
	"github.com/AtlasCounsel/CostCounsel/services/ruleset"
	"github.com/AtlasCounsel/CostCounsel/services/session"
	"github.com/AtlasCounsel/CostCounsel/services/validation"
)

// factQuestions turns missing-fact keys into follow-up questions.
var factQuestions = map[string]string{
	calculation.FactCourtLevel:  "Which court is the matter in (magistrate court, district court, or high court)?",
	calculation.FactClaimAmount: "What is the claim amount in Singapore dollars?",
}

// Consult handles one conversational turn: extract facts, match rules,
// calculate when possible, and produce a validated explanation.
func Consult(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req datatypes.ConsultRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, datatypes.ErrorResponse{Error: err.Error()})
			return
		}

		sessionID := req.SessionID
		if sessionID == "" {
			sessionID = uuid.NewString()
		}
		ctx := c.Request.Context()

		if err := deps.Store.AppendTurn(ctx, sessionID, session.Turn{
			Role: "user", Content: req.Message, At: time.Now(),
		}); err != nil {
			slog.Error("recording user turn", slog.String("error", err.Error()))
		}

		extracted := deps.Extractor.Extract(req.Message)
		sess, err := deps.Store.MergeFacts(ctx, sessionID, extracted)
		if err != nil {
			c.JSON(http.StatusInternalServerError, datatypes.ErrorResponse{Error: "session store unavailable"})
			return
		}
		facts := sess.Facts

		snapshot := deps.Registry.Current()
		matches, err := deps.Engine.Match(ctx, snapshot.Nodes, facts, deps.MatchThreshold)
		if err != nil {
			c.JSON(http.StatusBadRequest, datatypes.ErrorResponse{Error: err.Error()})
			return
		}

		resp := datatypes.ConsultResponse{
			SessionID: sessionID,
			Facts:     facts,
			Matches:   summarize(matches),
		}

		calc, err := deps.Calculator.Calculate(facts)
		if err != nil {
			var missing *calculation.MissingFactsError
			if errors.As(err, &missing) {
				resp.NeedsFacts = missing.Missing
				resp.Explanation = followUpQuestion(missing.Missing)
				respond(c, deps, sessionID, resp)
				return
			}
			resp.Explanation = fmt.Sprintf("I can't run a costs calculation yet: %s.", err.Error())
			respond(c, deps, sessionID, resp)
			return
		}

		vctx := &validation.Context{
			Nodes:            matchedNodes(matches),
			KnownCitations:   snapshot.Citations,
			EstablishedFacts: categoricalFacts(facts),
		}
		result := deps.Orchestrator.EnhanceAndValidate(ctx, calc, vctx, matches)

		resp.Calculation = calc
		resp.Explanation = result.Explanation
		resp.IsSafe = result.IsSafe
		resp.UsedFallback = result.UsedFallback
		resp.Report = result.Report
		respond(c, deps, sessionID, resp)
	}
}

func respond(c *gin.Context, deps Deps, sessionID string, resp datatypes.ConsultResponse) {
	if err := deps.Store.AppendTurn(c.Request.Context(), sessionID, session.Turn{
		Role: "assistant", Content: resp.Explanation, At: time.Now(),
	}); err != nil {
		slog.Error("recording assistant turn", slog.String("error", err.Error()))
	}
	c.JSON(http.StatusOK, resp)
}

func followUpQuestion(missing []string) string {
	var questions []string
	for _, key := range missing {
		if q, ok := factQuestions[key]; ok {
			questions = append(questions, q)
		} else {
			questions = append(questions, fmt.Sprintf("Could you tell me the %s?",
				strings.ReplaceAll(key, "_", " ")))
		}
	}
	return strings.Join(questions, " ")
}

func summarize(matches []matching.MatchResult) []datatypes.MatchSummary {
	out := make([]datatypes.MatchSummary, 0, len(matches))
	for _, m := range matches {
		out = append(out, datatypes.MatchSummary{
			NodeID:     m.NodeID,
			Citation:   m.Node.Citation,
			Score:      m.MatchScore,
			Confidence: m.Confidence,
			Reasoning:  m.Reasoning,
		})
	}
	return out
}

func matchedNodes(matches []matching.MatchResult) []*ruleset.RuleNode {
	nodes := make([]*ruleset.RuleNode, 0, len(matches))
	for _, m := range matches {
		nodes = append(nodes, m.Node)
	}
	return nodes
}

// categoricalFacts keeps only the facts the consistency checker has
// category sets for.
func categoricalFacts(facts map[string]string) map[string]string {
	out := map[string]string{}
	for _, key := range []string{"court_level", "case_type"} {
		if v, ok := facts[key]; ok {
			out[key] = v
		}
	}
	return out
}
