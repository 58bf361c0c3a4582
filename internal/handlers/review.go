package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ZODIAC3K/refactor-capstone/internal/logging"
	"github.com/ZODIAC3K/refactor-capstone/internal/middleware"
	"github.com/ZODIAC3K/refactor-capstone/internal/settlement"
	"github.com/ZODIAC3K/refactor-capstone/internal/store"
)

type createReviewRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Message   string `json:"message"`
	Rating    int    `json:"rating" binding:"required"`
}

type updateReviewRequest struct {
	ID      string  `json:"id" binding:"required"`
	Message *string `json:"message"`
	Rating  *int    `json:"rating"`
}

/* =========================
   CREATE REVIEW
========================= */

func CreateReview(svc *settlement.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /review"
		defer handlePanic(c, route)

		var req createReviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		productID, ok := parseObjectID(req.ProductID)
		if !ok {
			respondWithError(c, http.StatusBadRequest, route, "Invalid product ID")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		review, err := svc.CreateReview(ctx, middleware.ActorFrom(c), settlement.ReviewDraft{
			ProductID: productID,
			Message:   req.Message,
			Rating:    req.Rating,
		})
		if err != nil {
			respondAppError(c, route, err)
			return
		}

		respondSuccess(c, http.StatusCreated, "Review submitted successfully", review)
	}
}

/* =========================
   GET REVIEWS
========================= */

// GetReviews serves a single review by ?id, or a page filtered by
// ?product_id and ?user_id. Product pages carry rating stats.
func GetReviews(svc *settlement.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /review"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		if rawID := c.Query("id"); rawID != "" {
			reviewID, ok := parseObjectID(rawID)
			if !ok {
				respondWithError(c, http.StatusBadRequest, route, "Invalid review ID")
				return
			}
			review, err := svc.GetReview(ctx, reviewID)
			if err != nil {
				respondAppError(c, route, err)
				return
			}
			respondSuccess(c, http.StatusOK, "", review)
			return
		}

		productID, err := parseOptionalObjectID(c.Query("product_id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "Invalid product ID")
			return
		}
		userID, err := parseOptionalObjectID(c.Query("user_id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "Invalid user ID")
			return
		}
		page, err := pageFromQuery(c)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		reviews, total, stats, err := svc.ListReviews(ctx, store.ReviewFilter{ProductID: productID, UserID: userID}, page)
		if err != nil {
			respondAppError(c, route, err)
			return
		}

		data := gin.H{
			"reviews":    reviews,
			"pagination": paginationResponse(total, page),
		}
		if stats != nil {
			data["stats"] = stats
		}
		respondSuccess(c, http.StatusOK, "", data)
	}
}

/* =========================
   UPDATE REVIEW
========================= */

func UpdateReview(svc *settlement.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /review"
		defer handlePanic(c, route)

		var req updateReviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		reviewID, ok := parseObjectID(req.ID)
		if !ok {
			respondWithError(c, http.StatusBadRequest, route, "Invalid review ID")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		review, err := svc.UpdateReview(ctx, middleware.ActorFrom(c), settlement.ReviewChange{
			ID:      reviewID,
			Message: req.Message,
			Rating:  req.Rating,
		})
		if err != nil {
			respondAppError(c, route, err)
			return
		}

		respondSuccess(c, http.StatusOK, "Review updated successfully", review)
	}
}

/* =========================
   DELETE REVIEW
========================= */

func DeleteReview(svc *settlement.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /review"
		defer handlePanic(c, route)

		reviewID, ok := parseObjectID(c.Query("id"))
		if !ok {
			respondWithError(c, http.StatusBadRequest, route, "Review ID is required")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		actor := middleware.ActorFrom(c)
		if err := svc.DeleteReview(ctx, actor, reviewID); err != nil {
			respondAppError(c, route, err)
			return
		}

		logging.FromContext(ctx).Info("review deleted",
			zap.String("reviewId", reviewID.Hex()),
			zap.String("userId", actor.UserID.Hex()),
		)
		respondSuccess(c, http.StatusOK, "Review deleted successfully", gin.H{"_id": reviewID.Hex()})
	}
}
