package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ZODIAC3K/refactor-capstone/internal/logging"
	"github.com/ZODIAC3K/refactor-capstone/internal/models"
	"github.com/ZODIAC3K/refactor-capstone/internal/store"
)

// OfferStore is the persistence needed by the offer handlers.
type OfferStore interface {
	store.Offers
	store.Products
}

type offerCreateRequest struct {
	Title         string        `json:"title" binding:"required"`
	Description   string        `json:"description"`
	OfferDiscount float64       `json:"offer_discount" binding:"required"`
	ApplicableOn  models.IDList `json:"applicable_on"`
	Code          string        `json:"code"`
	EndAt         *time.Time    `json:"end_at"`
}

type offerUpdateRequest struct {
	ID            string         `json:"id" binding:"required"`
	Title         *string        `json:"title"`
	Description   *string        `json:"description"`
	OfferDiscount *float64       `json:"offer_discount"`
	ApplicableOn  *models.IDList `json:"applicable_on"`
	Code          *string        `json:"code"`
	EndAt         *time.Time     `json:"end_at"`
}

type offerVerifyRequest struct {
	OfferCode string        `json:"offer_code"`
	ProductID models.IDList `json:"product_id"`
}

/* =========================
   CREATE OFFER
========================= */

func CreateOffer(st OfferStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /offer"
		defer handlePanic(c, route)

		if !canManageCatalog(c, route) {
			return
		}

		var req offerCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		now := nowUTC()
		offer := models.Offer{
			Title:         cleanText(req.Title),
			Description:   cleanText(req.Description),
			OfferDiscount: req.OfferDiscount,
			ApplicableOn:  req.ApplicableOn,
			Code:          strings.TrimSpace(req.Code),
			EndAt:         utcPtr(req.EndAt),
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if msg := validateOffer(offer); msg != "" {
			respondWithError(c, http.StatusBadRequest, route, msg)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		if err := ensureProductsExist(ctx, st, offer.ApplicableOn); err != nil {
			respondOfferProductError(c, route, err)
			return
		}

		if err := st.InsertOffer(ctx, &offer); err != nil {
			respondDiscountWriteError(c, route, err, "Offer code already exists", "Failed to create offer")
			return
		}

		logging.FromContext(ctx).Info("offer created",
			zap.String("offerId", offer.ID.Hex()),
			zap.Strings("applicableOn", objectIDHexes(offer.ApplicableOn)),
		)
		respondSuccess(c, http.StatusCreated, "Offer created successfully", offer)
	}
}

/* =========================
   GET OFFERS
========================= */

func GetOffers(st OfferStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /offer"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		if rawID := c.Query("id"); rawID != "" {
			offerID, ok := parseObjectID(rawID)
			if !ok {
				respondWithError(c, http.StatusBadRequest, route, "Invalid offer ID")
				return
			}
			offer, err := st.FindOffer(ctx, offerID)
			if err != nil {
				respondStoreError(c, route, err, "Offer not found", "Failed to fetch offer")
				return
			}
			respondSuccess(c, http.StatusOK, "", offer)
			return
		}

		page, err := pageFromQuery(c)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}
		offers, total, err := st.ListOffers(ctx, page)
		if err != nil {
			respondStoreError(c, route, err, "Offer not found", "Failed to fetch offers")
			return
		}
		respondSuccess(c, http.StatusOK, "", gin.H{
			"offers":     offers,
			"pagination": paginationResponse(total, page),
		})
	}
}

/* =========================
   UPDATE OFFER
========================= */

func UpdateOffer(st OfferStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /offer"
		defer handlePanic(c, route)

		if !canManageCatalog(c, route) {
			return
		}

		var req offerUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		offerID, ok := parseObjectID(req.ID)
		if !ok {
			respondWithError(c, http.StatusBadRequest, route, "Invalid offer ID")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		offer, err := st.FindOffer(ctx, offerID)
		if err != nil {
			respondStoreError(c, route, err, "Offer not found", "Failed to update offer")
			return
		}

		if req.Title != nil {
			offer.Title = cleanText(*req.Title)
		}
		if req.Description != nil {
			offer.Description = cleanText(*req.Description)
		}
		if req.OfferDiscount != nil {
			offer.OfferDiscount = *req.OfferDiscount
		}
		if req.Code != nil {
			offer.Code = strings.TrimSpace(*req.Code)
		}
		if req.EndAt != nil {
			offer.EndAt = utcPtr(req.EndAt)
		}
		if req.ApplicableOn != nil {
			offer.ApplicableOn = *req.ApplicableOn
			if err := ensureProductsExist(ctx, st, offer.ApplicableOn); err != nil {
				respondOfferProductError(c, route, err)
				return
			}
		}
		if msg := validateOffer(offer); msg != "" {
			respondWithError(c, http.StatusBadRequest, route, msg)
			return
		}
		offer.UpdatedAt = nowUTC()

		if err := st.ReplaceOffer(ctx, offer); err != nil {
			respondDiscountWriteError(c, route, err, "Offer code already exists", "Failed to update offer")
			return
		}

		respondSuccess(c, http.StatusOK, "Offer updated successfully", offer)
	}
}

/* =========================
   DELETE OFFER
========================= */

func DeleteOffer(st OfferStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /offer"
		defer handlePanic(c, route)

		if !canManageCatalog(c, route) {
			return
		}

		offerID, ok := parseObjectID(c.Query("id"))
		if !ok {
			respondWithError(c, http.StatusBadRequest, route, "Offer ID is required")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		if err := st.DeleteOffer(ctx, offerID); err != nil {
			respondStoreError(c, route, err, "Offer not found", "Failed to delete offer")
			return
		}

		respondSuccess(c, http.StatusOK, "Offer deleted successfully", gin.H{"_id": offerID.Hex()})
	}
}

/* =========================
   VERIFY OFFER
========================= */

// VerifyOffer accepts product_id as one id or a list; the offer must cover
// every product given.
func VerifyOffer(st OfferStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /offer/verify"
		defer handlePanic(c, route)

		var req offerVerifyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "Invalid product ID")
			return
		}
		code := strings.TrimSpace(req.OfferCode)
		if code == "" {
			respondWithError(c, http.StatusBadRequest, route, "Offer code is required")
			return
		}
		if len(req.ProductID) == 0 {
			respondWithError(c, http.StatusBadRequest, route, "Product ID is required")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		if err := ensureProductsExist(ctx, st, req.ProductID); err != nil {
			respondOfferProductError(c, route, err)
			return
		}

		offer, err := st.FindOfferByCode(ctx, code)
		if errors.Is(err, store.ErrNotFound) {
			respondWithError(c, http.StatusBadRequest, route, "Offer code is invalid")
			return
		}
		if err != nil {
			respondStoreError(c, route, err, "Offer code is invalid", "Failed to verify offer")
			return
		}
		if offer.Expired(nowUTC()) {
			respondWithError(c, http.StatusBadRequest, route, "Offer code is expired")
			return
		}
		if !offer.CoversAll(req.ProductID) {
			respondWithError(c, http.StatusBadRequest, route, "Offer is not applicable to every product")
			return
		}

		respondSuccess(c, http.StatusOK, "Offer code is valid", offer)
	}
}

type missingProductError struct {
	id string
}

func (e missingProductError) Error() string {
	return fmt.Sprintf("product not found: %s", e.id)
}

func ensureProductsExist(ctx context.Context, st store.Products, ids models.IDList) error {
	for _, id := range ids {
		if _, err := st.FindProduct(ctx, id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return missingProductError{id: id.Hex()}
			}
			return err
		}
	}
	return nil
}

func respondOfferProductError(c *gin.Context, route string, err error) {
	var missing missingProductError
	if errors.As(err, &missing) {
		respondWithError(c, http.StatusBadRequest, route, "Product not found")
		return
	}
	respondStoreError(c, route, err, "Product not found", "Failed to load products")
}

func validateOffer(offer models.Offer) string {
	switch {
	case offer.Title == "":
		return "Offer title is required"
	case !writableDiscount(offer.OfferDiscount):
		return "Offer discount must be greater than 0 and at most 100"
	case len(offer.ApplicableOn) == 0:
		return "Offer must apply to at least one product"
	}
	return ""
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
