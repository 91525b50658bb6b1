// Copyright (C) 2026 Atlas Counsel (engineering@atlascounsel.sg)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AtlasCounsel/CostCounsel/pkg/logging"
	"github.com/AtlasCounsel/CostCounsel/services/advisor/datatypes"
	"github.com/AtlasCounsel/CostCounsel/services/calculation"
	"github.com/AtlasCounsel/CostCounsel/services/extraction"
	"github.com/AtlasCounsel/CostCounsel/services/hybrid"
	"github.com/AtlasCounsel/CostCounsel/services/llm"
	"github.com/AtlasCounsel/CostCounsel/services/matching"
	"github.com/AtlasCounsel/CostCounsel/services/ruleset"
	"github.com/AtlasCounsel/CostCounsel/services/session"
	"github.com/AtlasCounsel/CostCounsel/services/validation"
)

func newTestRouter(t *testing.T) (*gin.Engine, Deps) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logging.New(logging.Config{Quiet: true})

	registry, err := ruleset.NewRegistry("testdata/rules", logger)
	require.NoError(t, err)
	engine, err := matching.NewEngine(matching.DefaultConfig(), logger)
	require.NoError(t, err)
	calculator, err := calculation.NewCalculator()
	require.NoError(t, err)

	guard := validation.NewGuard(validation.DefaultConfig(), logger)
	orchestrator := hybrid.NewOrchestrator(hybrid.DefaultConfig(), llm.NewDisabledClient(), guard, logger)

	deps := Deps{
		Registry:       registry,
		Engine:         engine,
		Calculator:     calculator,
		Orchestrator:   orchestrator,
		Store:          session.NewMemoryStore(time.Hour),
		Extractor:      extraction.NewExtractor(),
		MatchThreshold: 0.1,
	}

	router := gin.New()
	router.GET("/health", Health(deps))
	router.POST("/v1/consult", Consult(deps))
	router.GET("/v1/sessions", ListSessions(deps))
	router.GET("/v1/sessions/:id/facts", SessionFacts(deps))
	router.DELETE("/v1/sessions/:id", DeleteSession(deps))
	return router, deps
}

func postConsult(t *testing.T, router *gin.Engine, req datatypes.ConsultRequest) (int, datatypes.ConsultResponse) {
	t.Helper()
	body, err := json.Marshal(req)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	httpReq := httptest.NewRequest(http.MethodPost, "/v1/consult", bytes.NewReader(body))
	httpReq.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, httpReq)

	var resp datatypes.ConsultResponse
	if w.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w.Code, resp
}

func TestConsultAsksForMissingFacts(t *testing.T) {
	router, _ := newTestRouter(t)

	code, resp := postConsult(t, router, datatypes.ConsultRequest{
		Message: "How much will my costs be?",
	})

	require.Equal(t, http.StatusOK, code)
	assert.NotEmpty(t, resp.SessionID)
	assert.ElementsMatch(t, []string{"court_level", "claim_amount"}, resp.NeedsFacts)
	assert.Contains(t, resp.Explanation, "Which court")
	assert.Nil(t, resp.Calculation)
}

func TestConsultWithFullFacts(t *testing.T) {
	router, _ := newTestRouter(t)

	code, resp := postConsult(t, router, datatypes.ConsultRequest{
		Message: "I am in the magistrate court claiming $45,000 and the trial lasted 2 days.",
	})

	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, resp.NeedsFacts)
	assert.Equal(t, "magistrate court", resp.Facts["court_level"])
	assert.Equal(t, "45000", resp.Facts["claim_amount"])
	assert.Equal(t, "2", resp.Facts["trial_days"])

	require.NotNil(t, resp.Calculation)
	// 5000 base + 2000 extra day, plus 9% GST.
	assert.InDelta(t, 7630.0, resp.Calculation["total_costs"], 0.001)

	assert.True(t, resp.IsSafe)
	assert.True(t, resp.UsedFallback)
	assert.Contains(t, resp.Explanation, "magistrate court")
	assert.NotEmpty(t, resp.Matches)
}

func TestConsultAccumulatesFactsAcrossTurns(t *testing.T) {
	router, _ := newTestRouter(t)

	code, first := postConsult(t, router, datatypes.ConsultRequest{
		Message: "We are in the magistrate court.",
	})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{"claim_amount"}, first.NeedsFacts)

	code, second := postConsult(t, router, datatypes.ConsultRequest{
		SessionID: first.SessionID,
		Message:   "My claim is $30,000.",
	})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, first.SessionID, second.SessionID)
	assert.Empty(t, second.NeedsFacts)
	require.NotNil(t, second.Calculation)
	assert.Equal(t, "magistrate court", second.Facts["court_level"])
	assert.Equal(t, "30000", second.Facts["claim_amount"])
}

func TestConsultRejectsMissingMessage(t *testing.T) {
	router, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/consult", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/sessions/nope/facts", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	_, resp := postConsult(t, router, datatypes.ConsultRequest{
		Message: "We are in the high court.",
	})
	require.NotEmpty(t, resp.SessionID)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/sessions", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var list datatypes.SessionListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Contains(t, list.Sessions, resp.SessionID)
	assert.Equal(t, len(list.Sessions), list.Count)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/sessions/"+resp.SessionID+"/facts", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var facts datatypes.SessionFactsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &facts))
	assert.Equal(t, "high court", facts.Facts["court_level"])

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/v1/sessions/"+resp.SessionID, nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/sessions/"+resp.SessionID+"/facts", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var health datatypes.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, 2, health.RuleNodes)
	assert.Equal(t, int64(0), health.RuleReloads)
}

func TestFollowUpQuestionFallsBackToKeyName(t *testing.T) {
	q := followUpQuestion([]string{"trial_days"})
	assert.Equal(t, "Could you tell me the trial days?", q)
}
