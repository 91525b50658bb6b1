// Copyright (C) 2026 Atlas Counsel (engineering@atlascounsel.sg)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AtlasCounsel/CostCounsel/services/advisor/datatypes"
)

// Health reports liveness and rule-set state.
func Health(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		snapshot := deps.Registry.Current()
		ids, _ := deps.Store.List(c.Request.Context())

		c.JSON(http.StatusOK, datatypes.HealthResponse{
			Status:       "ok",
			RuleNodes:    len(snapshot.Nodes),
			RuleReloads:  deps.Registry.Reloads(),
			SessionCount: len(ids),
		})
	}
}
