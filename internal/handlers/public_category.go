package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ZODIAC3K/refactor-capstone/internal/logging"
	"github.com/ZODIAC3K/refactor-capstone/internal/store"
)

// CategoryReader is what the public category listing needs.
type CategoryReader interface {
	Pinger
	store.Categories
}

func GetCategories(st CategoryReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /category"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), st); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		categories, err := st.ListCategories(ctx, true)
		if err != nil {
			respondStoreError(c, route, err, "Category not found", "Failed to fetch categories")
			return
		}

		logging.FromContext(ctx).Debug("categories listed", zap.String("route", route), zap.Int("count", len(categories)))
		respondSuccess(c, http.StatusOK, "", categories)
	}
}
