package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ZODIAC3K/refactor-capstone/internal/logging"
	"github.com/ZODIAC3K/refactor-capstone/internal/models"
	"github.com/ZODIAC3K/refactor-capstone/internal/settlement"
	"github.com/ZODIAC3K/refactor-capstone/internal/store"
)

type couponCreateRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Discount    float64    `json:"discount" binding:"required"`
	EndAt       *time.Time `json:"end_at" binding:"required"`
	Code        string     `json:"code" binding:"required"`
}

type couponUpdateRequest struct {
	ID          string     `json:"id" binding:"required"`
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Discount    *float64   `json:"discount"`
	EndAt       *time.Time `json:"end_at"`
	Code        *string    `json:"code"`
}

type couponVerifyRequest struct {
	CouponCode string `json:"coupon_code"`
}

/* =========================
   CREATE COUPON
========================= */

func CreateCoupon(st store.Coupons) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /coupon"
		defer handlePanic(c, route)

		if !canManageCatalog(c, route) {
			return
		}

		var req couponCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		now := nowUTC()
		coupon := models.Coupon{
			Title:       cleanText(req.Title),
			Description: cleanText(req.Description),
			Discount:    req.Discount,
			EndAt:       req.EndAt.UTC(),
			Code:        strings.TrimSpace(req.Code),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if msg := validateCoupon(coupon); msg != "" {
			respondWithError(c, http.StatusBadRequest, route, msg)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		if err := st.InsertCoupon(ctx, &coupon); err != nil {
			respondDiscountWriteError(c, route, err, "Coupon code already exists", "Failed to create coupon")
			return
		}

		logging.FromContext(ctx).Info("coupon created", zap.String("couponId", coupon.ID.Hex()), zap.String("code", coupon.Code))
		respondSuccess(c, http.StatusCreated, "Coupon created successfully", coupon)
	}
}

/* =========================
   GET COUPONS
========================= */

func GetCoupons(st store.Coupons) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /coupon"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		if rawID := c.Query("id"); rawID != "" {
			couponID, ok := parseObjectID(rawID)
			if !ok {
				respondWithError(c, http.StatusBadRequest, route, "Invalid coupon ID")
				return
			}
			coupon, err := st.FindCoupon(ctx, couponID)
			if err != nil {
				respondStoreError(c, route, err, "Coupon not found", "Failed to fetch coupon")
				return
			}
			respondSuccess(c, http.StatusOK, "", coupon)
			return
		}

		page, err := pageFromQuery(c)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}
		coupons, total, err := st.ListCoupons(ctx, page)
		if err != nil {
			respondStoreError(c, route, err, "Coupon not found", "Failed to fetch coupons")
			return
		}
		respondSuccess(c, http.StatusOK, "", gin.H{
			"coupons":    coupons,
			"pagination": paginationResponse(total, page),
		})
	}
}

/* =========================
   UPDATE COUPON
========================= */

func UpdateCoupon(st store.Coupons) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /coupon"
		defer handlePanic(c, route)

		if !canManageCatalog(c, route) {
			return
		}

		var req couponUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		couponID, ok := parseObjectID(req.ID)
		if !ok {
			respondWithError(c, http.StatusBadRequest, route, "Invalid coupon ID")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		coupon, err := st.FindCoupon(ctx, couponID)
		if err != nil {
			respondStoreError(c, route, err, "Coupon not found", "Failed to update coupon")
			return
		}

		if req.Title != nil {
			coupon.Title = cleanText(*req.Title)
		}
		if req.Description != nil {
			coupon.Description = cleanText(*req.Description)
		}
		if req.Discount != nil {
			coupon.Discount = *req.Discount
		}
		if req.EndAt != nil {
			coupon.EndAt = req.EndAt.UTC()
		}
		if req.Code != nil {
			coupon.Code = strings.TrimSpace(*req.Code)
		}
		if msg := validateCoupon(coupon); msg != "" {
			respondWithError(c, http.StatusBadRequest, route, msg)
			return
		}
		coupon.UpdatedAt = nowUTC()

		if err := st.ReplaceCoupon(ctx, coupon); err != nil {
			respondDiscountWriteError(c, route, err, "Coupon code already exists", "Failed to update coupon")
			return
		}

		respondSuccess(c, http.StatusOK, "Coupon updated successfully", coupon)
	}
}

/* =========================
   DELETE COUPON
========================= */

func DeleteCoupon(st store.Coupons) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /coupon"
		defer handlePanic(c, route)

		if !canManageCatalog(c, route) {
			return
		}

		couponID, ok := parseObjectID(c.Query("id"))
		if !ok {
			respondWithError(c, http.StatusBadRequest, route, "Coupon ID is required")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		if err := st.DeleteCoupon(ctx, couponID); err != nil {
			respondStoreError(c, route, err, "Coupon not found", "Failed to delete coupon")
			return
		}

		respondSuccess(c, http.StatusOK, "Coupon deleted successfully", gin.H{"_id": couponID.Hex()})
	}
}

/* =========================
   VERIFY COUPON
========================= */

func VerifyCoupon(st store.Coupons) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /coupon/verify"
		defer handlePanic(c, route)

		var req couponVerifyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		code := strings.TrimSpace(req.CouponCode)
		if code == "" {
			respondWithError(c, http.StatusBadRequest, route, "Coupon code is required")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		coupon, err := st.FindCouponByCode(ctx, code)
		if errors.Is(err, store.ErrNotFound) {
			respondWithError(c, http.StatusBadRequest, route, "Coupon code is invalid")
			return
		}
		if err != nil {
			respondStoreError(c, route, err, "Coupon code is invalid", "Failed to verify coupon")
			return
		}
		if coupon.Expired(nowUTC()) {
			respondWithError(c, http.StatusBadRequest, route, "Coupon code is expired")
			return
		}

		respondSuccess(c, http.StatusOK, "Coupon code is valid", coupon)
	}
}

func validateCoupon(coupon models.Coupon) string {
	switch {
	case coupon.Title == "":
		return "Coupon title is required"
	case coupon.Code == "":
		return "Coupon code is required"
	case !writableDiscount(coupon.Discount):
		return "Discount must be greater than 0 and at most 100"
	case coupon.EndAt.IsZero():
		return "Coupon end date is required"
	}
	return ""
}

// writableDiscount is stricter than the pricing bound: a stored discount of
// zero is tolerated, a new one is not.
func writableDiscount(pct float64) bool {
	return pct > 0 && settlement.ValidDiscount(pct)
}

// respondDiscountWriteError answers a duplicate code with 409.
func respondDiscountWriteError(c *gin.Context, route string, err error, duplicate, failed string) {
	if errors.Is(err, store.ErrDuplicate) {
		respondWithError(c, http.StatusConflict, route, duplicate)
		return
	}
	respondStoreError(c, route, err, "Discount not found", failed)
}
