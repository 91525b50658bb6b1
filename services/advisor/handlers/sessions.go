// Copyright (C) 2026 Atlas Counsel (engineering@atlascounsel.sg)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AtlasCounsel/CostCounsel/services/advisor/datatypes"
	"github.com/AtlasCounsel/CostCounsel/services/session"
)

// ListSessions returns the live session ids.
func ListSessions(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ids, err := deps.Store.List(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, datatypes.ErrorResponse{Error: "session store unavailable"})
			return
		}
		c.JSON(http.StatusOK, datatypes.SessionListResponse{Sessions: ids, Count: len(ids)})
	}
}

// SessionFacts returns the accumulated facts for one session.
func SessionFacts(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		sess, err := deps.Store.Get(c.Request.Context(), id)
		if errors.Is(err, session.ErrNotFound) {
			c.JSON(http.StatusNotFound, datatypes.ErrorResponse{Error: "session not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, datatypes.ErrorResponse{Error: "session store unavailable"})
			return
		}
		c.JSON(http.StatusOK, datatypes.SessionFactsResponse{SessionID: id, Facts: sess.Facts})
	}
}

// DeleteSession removes a session and its facts.
func DeleteSession(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := deps.Store.Delete(c.Request.Context(), c.Param("id")); err != nil {
			c.JSON(http.StatusInternalServerError, datatypes.ErrorResponse{Error: "session store unavailable"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}
