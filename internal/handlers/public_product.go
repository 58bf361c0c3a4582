package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ZODIAC3K/refactor-capstone/internal/logging"
	"github.com/ZODIAC3K/refactor-capstone/internal/store"
)

// ProductReader is what the public product listing needs.
type ProductReader interface {
	Pinger
	store.Products
}

/*
GET /product
- ?id= returns a single product
- ?category= and ?creator= narrow the list
- pagination is optional: without page + limit every product is returned
*/
func GetProducts(st ProductReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /product"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), st); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		if rawID := c.Query("id"); rawID != "" {
			productID, ok := parseObjectID(rawID)
			if !ok {
				respondWithError(c, http.StatusBadRequest, route, "Invalid product ID")
				return
			}
			product, err := st.FindProduct(ctx, productID)
			if err != nil {
				respondStoreError(c, route, err, "Product not found", "Failed to fetch product")
				return
			}
			respondSuccess(c, http.StatusOK, "", product)
			return
		}

		filter, ok := productFilterFromQuery(c)
		if !ok {
			respondWithError(c, http.StatusBadRequest, route, "Invalid filter ID")
			return
		}

		var page store.Page
		pageStr, limitStr := c.Query("page"), c.Query("limit")
		if pageStr != "" && limitStr != "" {
			p, l, err := parsePaginationParams(pageStr, limitStr)
			if err != nil {
				respondWithError(c, http.StatusBadRequest, route, err.Error())
				return
			}
			page = store.Page{Page: p, Limit: l}
		}

		products, total, err := st.ListProducts(ctx, filter, page)
		if err != nil {
			respondStoreError(c, route, err, "Product not found", "Failed to fetch products")
			return
		}

		logging.FromContext(ctx).Debug("products listed",
			zap.String("route", route),
			zap.String("category", sanitizeLogValue(c.Query("category"), 40)),
			zap.Int("count", len(products)),
		)

		if page.Limit == 0 {
			respondSuccess(c, http.StatusOK, "", products)
			return
		}
		respondSuccess(c, http.StatusOK, "", gin.H{
			"products":   products,
			"pagination": paginationResponse(total, page),
		})
	}
}

func productFilterFromQuery(c *gin.Context) (store.ProductFilter, bool) {
	var filter store.ProductFilter
	if raw := strings.TrimSpace(c.Query("category")); raw != "" {
		id, ok := parseObjectID(raw)
		if !ok {
			return store.ProductFilter{}, false
		}
		filter.CategoryID = &id
	}
	if raw := strings.TrimSpace(c.Query("creator")); raw != "" {
		id, ok := parseObjectID(raw)
		if !ok {
			return store.ProductFilter{}, false
		}
		filter.CreatorID = &id
	}
	return filter, true
}
