package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ZODIAC3K/refactor-capstone/internal/logging"
	"github.com/ZODIAC3K/refactor-capstone/internal/models"
	"github.com/ZODIAC3K/refactor-capstone/internal/store"
)

// CatalogStore is the persistence needed by the admin catalogue handlers.
type CatalogStore interface {
	store.Products
	store.Creators
	store.Categories
	store.Users
}

/* =======================
   REQUEST MODELS
======================= */

type priceRequest struct {
	Amount   float64 `json:"amount" binding:"required"`
	Currency string  `json:"currency"`
}

type ProductCreateRequest struct {
	Title       string       `json:"title" binding:"required"`
	Description string       `json:"description"`
	CategoryIDs []string     `json:"category_id" binding:"required"`
	Creator     string       `json:"creator"`
	Price       priceRequest `json:"price" binding:"required"`
	Rating      float64      `json:"rating" binding:"gte=0,lte=5"`
}

type ProductUpdateRequest struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	CategoryIDs *[]string `json:"category_id"`
	Amount      *float64  `json:"price_amount"`
	Currency    *string   `json:"price_currency"`
	Rating      *float64  `json:"rating" binding:"omitempty,gte=0,lte=5"`
	SalesCount  *int      `json:"sales_count"`
}

type CreatorCreateRequest struct {
	UserID            string  `json:"userId" binding:"required"`
	Name              string  `json:"name" binding:"required"`
	Bio               string  `json:"bio"`
	RoyaltyPercentage float64 `json:"royaltyPercentage" binding:"gte=0,lte=100"`
}

/* =======================
   GET (ADMIN) – LIST
======================= */

func GetAllProducts(st CatalogStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/product"
		defer handlePanic(c, route)

		page, err := pageFromQuery(c)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}
		filter, ok := productFilterFromQuery(c)
		if !ok {
			respondWithError(c, http.StatusBadRequest, route, "Invalid filter ID")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		products, total, err := st.ListProducts(ctx, filter, page)
		if err != nil {
			respondStoreError(c, route, err, "Product not found", "Failed to fetch products")
			return
		}

		respondSuccess(c, http.StatusOK, "", gin.H{
			"products":   products,
			"pagination": paginationResponse(total, page),
		})
	}
}

/* =======================
   CREATE
======================= */

func CreateProduct(st CatalogStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/product"
		defer handlePanic(c, route)

		if !canManageCatalog(c, route) {
			return
		}

		var req ProductCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		title := cleanText(req.Title)
		if title == "" {
			respondWithError(c, http.StatusBadRequest, route, "Title is required")
			return
		}

		price, err := normalizePrice(req.Price.Amount, req.Price.Currency)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		categories, err := resolveCategoryIDs(ctx, st, req.CategoryIDs)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		creatorID, err := parseOptionalObjectID(req.Creator)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "Invalid creator ID")
			return
		}
		if creatorID != nil {
			if _, err := st.FindCreator(ctx, *creatorID); err != nil {
				if errors.Is(err, store.ErrNotFound) {
					respondWithError(c, http.StatusBadRequest, route, "Creator not found")
					return
				}
				respondStoreError(c, route, err, "Creator not found", "Failed to create product")
				return
			}
		}

		now := nowUTC()
		product := models.Product{
			Title:       title,
			Description: cleanText(req.Description),
			Category:    categories,
			Creator:     creatorID,
			Price:       price,
			Rating:      req.Rating,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := st.InsertProduct(ctx, &product); err != nil {
			respondStoreError(c, route, err, "Product not found", "Failed to create product")
			return
		}

		logging.FromContext(ctx).Info("product created", zap.String("productId", product.ID.Hex()), zap.String("title", sanitizeLogValue(title, 80)))
		respondSuccess(c, http.StatusCreated, "Product created successfully", product)
	}
}

/* =======================
   UPDATE
======================= */

// UpdateProduct edits the catalogue fields of a product. sales_count is owned
// by settlement and cannot be written here.
func UpdateProduct(st CatalogStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /admin/product"
		defer handlePanic(c, route)

		if !canManageCatalog(c, route) {
			return
		}

		productID, ok := parseObjectID(c.Param("id"))
		if !ok {
			respondWithError(c, http.StatusBadRequest, route, "Invalid product ID")
			return
		}

		var req ProductUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		if req.SalesCount != nil {
			respondWithError(c, http.StatusBadRequest, route, "sales_count is read-only")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		product, err := st.FindProduct(ctx, productID)
		if err != nil {
			respondStoreError(c, route, err, "Product not found", "Failed to update product")
			return
		}

		if req.Title != nil {
			title := cleanText(*req.Title)
			if title == "" {
				respondWithError(c, http.StatusBadRequest, route, "Title cannot be empty")
				return
			}
			product.Title = title
		}
		if req.Description != nil {
			product.Description = cleanText(*req.Description)
		}
		if req.CategoryIDs != nil {
			categories, err := resolveCategoryIDs(ctx, st, *req.CategoryIDs)
			if err != nil {
				respondWithError(c, http.StatusBadRequest, route, err.Error())
				return
			}
			product.Category = categories
		}
		if req.Amount != nil || req.Currency != nil {
			price, err := resolvePriceUpdate(product.Price, priceUpdateInput{Amount: req.Amount, Currency: req.Currency})
			if err != nil {
				respondWithError(c, http.StatusBadRequest, route, err.Error())
				return
			}
			product.Price = price
		}
		if req.Rating != nil {
			product.Rating = *req.Rating
		}
		product.UpdatedAt = nowUTC()

		if err := st.UpdateProductDetails(ctx, product); err != nil {
			respondStoreError(c, route, err, "Product not found", "Failed to update product")
			return
		}

		respondSuccess(c, http.StatusOK, "Product updated successfully", product)
	}
}

/* =======================
   CREATORS
======================= */

func CreateCreator(st CatalogStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/creator"
		defer handlePanic(c, route)

		if !canManageCatalog(c, route) {
			return
		}

		var req CreatorCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		userID, ok := parseObjectID(req.UserID)
		if !ok {
			respondWithError(c, http.StatusBadRequest, route, "Invalid user ID")
			return
		}
		name := cleanText(req.Name)
		if name == "" {
			respondWithError(c, http.StatusBadRequest, route, "Creator name is required")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		if _, err := st.FindUser(ctx, userID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				respondWithError(c, http.StatusBadRequest, route, "User not found")
				return
			}
			respondStoreError(c, route, err, "User not found", "Failed to create creator")
			return
		}

		now := nowUTC()
		creator := models.Creator{
			UserID:            userID,
			Name:              name,
			Bio:               cleanText(req.Bio),
			RoyaltyPercentage: req.RoyaltyPercentage,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if err := st.InsertCreator(ctx, &creator); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				respondWithError(c, http.StatusConflict, route, "Creator already exists")
				return
			}
			respondStoreError(c, route, err, "Creator not found", "Failed to create creator")
			return
		}

		respondSuccess(c, http.StatusCreated, "Creator created successfully", creator)
	}
}

func GetCreators(st CatalogStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/creator"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		if rawID := strings.TrimSpace(c.Query("id")); rawID != "" {
			creatorID, ok := parseObjectID(rawID)
			if !ok {
				respondWithError(c, http.StatusBadRequest, route, "Invalid creator ID")
				return
			}
			creator, err := st.FindCreator(ctx, creatorID)
			if err != nil {
				respondStoreError(c, route, err, "Creator not found", "Failed to fetch creator")
				return
			}
			respondSuccess(c, http.StatusOK, "", creator)
			return
		}

		creators, err := st.ListCreators(ctx)
		if err != nil {
			respondStoreError(c, route, err, "Creator not found", "Failed to fetch creators")
			return
		}
		respondSuccess(c, http.StatusOK, "", creators)
	}
}
