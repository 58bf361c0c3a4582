package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ZODIAC3K/refactor-capstone/internal/models"
	"github.com/ZODIAC3K/refactor-capstone/internal/store"
)

type CategoryCreateRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	IsActive    *bool  `json:"isActive"`
}

type CategoryUpdateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"isActive"`
}

/*
GET /admin/category
- every category, active and inactive
- ?isActive=true/false narrows the list
*/
func GetAllCategories(st store.Categories) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/category"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		categories, err := st.ListCategories(ctx, false)
		if err != nil {
			respondStoreError(c, route, err, "Category not found", "Failed to fetch categories")
			return
		}

		if v := strings.TrimSpace(c.Query("isActive")); v != "" {
			want := v == "true"
			filtered := make([]models.Category, 0, len(categories))
			for _, category := range categories {
				if category.IsActive == want {
					filtered = append(filtered, category)
				}
			}
			categories = filtered
		}

		respondSuccess(c, http.StatusOK, "", categories)
	}
}

/*
POST /admin/category
- names are unique
*/
func CreateCategory(st store.Categories) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/category"
		defer handlePanic(c, route)

		if !canManageCatalog(c, route) {
			return
		}

		var req CategoryCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		name := strings.TrimSpace(req.Name)
		if name == "" {
			respondWithError(c, http.StatusBadRequest, route, "Category name is required")
			return
		}

		isActive := true
		if req.IsActive != nil {
			isActive = *req.IsActive
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		category := models.Category{
			Name:        name,
			Description: strings.TrimSpace(req.Description),
			IsActive:    isActive,
			CreatedAt:   nowUTC(),
		}
		if err := st.InsertCategory(ctx, &category); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				respondWithError(c, http.StatusConflict, route, "Category already exists")
				return
			}
			respondStoreError(c, route, err, "Category not found", "Failed to create category")
			return
		}

		respondSuccess(c, http.StatusCreated, "Category created successfully", category)
	}
}

/*
PATCH /admin/category/:id
*/
func UpdateCategory(st store.Categories) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /admin/category"
		defer handlePanic(c, route)

		if !canManageCatalog(c, route) {
			return
		}

		id, ok := parseObjectID(c.Param("id"))
		if !ok {
			respondWithError(c, http.StatusBadRequest, route, "Invalid category ID")
			return
		}

		var req CategoryUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		if req.Name == nil && req.Description == nil && req.IsActive == nil {
			respondWithError(c, http.StatusBadRequest, route, "No fields to update")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		category, err := st.FindCategory(ctx, id)
		if err != nil {
			respondStoreError(c, route, err, "Category not found", "Failed to update category")
			return
		}

		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				respondWithError(c, http.StatusBadRequest, route, "Category name cannot be empty")
				return
			}
			category.Name = name
		}
		if req.Description != nil {
			category.Description = strings.TrimSpace(*req.Description)
		}
		if req.IsActive != nil {
			category.IsActive = *req.IsActive
		}

		if err := st.ReplaceCategory(ctx, category); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				respondWithError(c, http.StatusConflict, route, "Category already exists")
				return
			}
			respondStoreError(c, route, err, "Category not found", "Failed to update category")
			return
		}

		respondSuccess(c, http.StatusOK, "Category updated successfully", category)
	}
}

/*
DELETE /admin/category/:id
- soft delete
*/
func DeleteCategory(st store.Categories) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/category"
		defer handlePanic(c, route)

		if !canManageCatalog(c, route) {
			return
		}

		id, ok := parseObjectID(c.Param("id"))
		if !ok {
			respondWithError(c, http.StatusBadRequest, route, "Invalid category ID")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		category, err := st.FindCategory(ctx, id)
		if err != nil {
			respondStoreError(c, route, err, "Category not found", "Failed to delete category")
			return
		}
		category.IsActive = false
		if err := st.ReplaceCategory(ctx, category); err != nil {
			respondStoreError(c, route, err, "Category not found", "Failed to delete category")
			return
		}

		c.Status(http.StatusNoContent)
	}
}
