// Copyright (C) 2026 Atlas Counsel (engineering@atlascounsel.sg)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package handlers implements the advisor HTTP endpoints.
package handlers

import (
	"github.com/AtlasCounsel/CostCounsel/services/calculation"
	"github.com/AtlasCounsel/CostCounsel/services/extraction"
	"github.com/AtlasCounsel/CostCounsel/services/hybrid"
	"github.com/AtlasCounsel/CostCounsel/services/matching"
	"github.com/AtlasCounsel/CostCounsel/services/ruleset"
	"github.com/AtlasCounsel/CostCounsel/services/session"
)

// Deps carries the collaborators the handlers need. Everything is
// injected; handlers own no state of their own.
type Deps struct {
	Registry     *ruleset.Registry
	Engine       *matching.Engine
	Calculator   *calculation.Calculator
	Orchestrator *hybrid.Orchestrator
	Store        session.Store
	Extractor    *extraction.Extractor

	// MatchThreshold is the inclusive score floor for surfacing rules
	// on the consult endpoint.
	MatchThreshold float64
}
