package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ZODIAC3K/refactor-capstone/internal/middleware"
	"github.com/ZODIAC3K/refactor-capstone/internal/settlement"
)

type reconcileRequest struct {
	CreatorID string `json:"creator_id"`
}

// GetCreatorSettlement compares a creator's stored counters with the ledger.
func GetCreatorSettlement(svc *settlement.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/settlement/creator"
		defer handlePanic(c, route)

		creatorID, ok := parseObjectID(c.Query("id"))
		if !ok {
			respondWithError(c, http.StatusBadRequest, route, "Creator ID is required")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		tally, err := svc.CreatorSettlement(ctx, middleware.ActorFrom(c), creatorID)
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		respondSuccess(c, http.StatusOK, "", tally)
	}
}

// ReconcileSettlement rewrites counters from the ledger for one creator, or
// for all of them when creator_id is omitted.
func ReconcileSettlement(svc *settlement.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/settlement/reconcile"
		defer handlePanic(c, route)

		var req reconcileRequest
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				respondValidationError(c, err)
				return
			}
		}
		creatorID, err := parseOptionalObjectID(req.CreatorID)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "Invalid creator ID")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		tallies, err := svc.ReconcileSettlement(ctx, middleware.ActorFrom(c), creatorID)
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		respondSuccess(c, http.StatusOK, "Settlement reconciled", tallies)
	}
}
