package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ZODIAC3K/refactor-capstone/internal/apperr"
	"github.com/ZODIAC3K/refactor-capstone/internal/auth"
	"github.com/ZODIAC3K/refactor-capstone/internal/middleware"
	"github.com/ZODIAC3K/refactor-capstone/internal/models"
	"github.com/ZODIAC3K/refactor-capstone/internal/settlement"
)

type createReturnRequest struct {
	OrderID       string `json:"order_id" binding:"required"`
	ReturnReason  string `json:"return_reason" binding:"required"`
	ReturnAddress string `json:"return_address" binding:"required"`
}

type updateReturnRequest struct {
	ID                  string  `json:"id" binding:"required"`
	Status              string  `json:"status" binding:"required"`
	AdminNotes          *string `json:"admin_notes"`
	RefundTransactionID string  `json:"refund_transaction_id"`
}

/* =========================
   CREATE RETURN
========================= */

func CreateReturn(svc *settlement.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /refund"
		defer handlePanic(c, route)

		var req createReturnRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		orderID, ok := parseObjectID(req.OrderID)
		if !ok {
			respondWithError(c, http.StatusBadRequest, route, "Invalid order ID")
			return
		}
		addressID, ok := parseObjectID(req.ReturnAddress)
		if !ok {
			respondWithError(c, http.StatusBadRequest, route, "Invalid return address")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		ret, err := svc.CreateReturn(ctx, middleware.ActorFrom(c), settlement.ReturnRequest{
			OrderID:   orderID,
			Reason:    req.ReturnReason,
			AddressID: addressID,
		})
		if err != nil {
			// the duplicate-return answer of this route has always been a 400
			if apperr.Is(err, apperr.Conflict) {
				respondWithError(c, http.StatusBadRequest, route, apperr.Message(err))
				return
			}
			respondAppError(c, route, err)
			return
		}

		respondSuccess(c, http.StatusCreated, "Return request created successfully", ret)
	}
}

/* =========================
   GET RETURNS
========================= */

func GetReturns(svc *settlement.Service) gin.HandlerFunc {
	return listReturns(svc, "GET /refund", false)
}

// GetAllReturns lists every user's returns.
func GetAllReturns(svc *settlement.Service) gin.HandlerFunc {
	return listReturns(svc, "GET /admin/refund", true)
}

func listReturns(svc *settlement.Service, route string, all bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		actor := middleware.ActorFrom(c)

		if rawID := c.Query("id"); rawID != "" {
			returnID, ok := parseObjectID(rawID)
			if !ok {
				respondWithError(c, http.StatusBadRequest, route, "Invalid return ID")
				return
			}
			ret, err := svc.GetReturn(ctx, actor, returnID)
			if err != nil {
				respondAppError(c, route, err)
				return
			}
			respondSuccess(c, http.StatusOK, "", ret)
			return
		}

		if rawOrderID := c.Query("orderId"); rawOrderID != "" {
			orderID, ok := parseObjectID(rawOrderID)
			if !ok {
				respondWithError(c, http.StatusBadRequest, route, "Invalid order ID")
				return
			}
			ret, err := svc.GetReturnByOrder(ctx, actor, orderID)
			if err != nil {
				respondAppError(c, route, err)
				return
			}
			respondSuccess(c, http.StatusOK, "", ret)
			return
		}

		page, err := pageFromQuery(c)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		returns, total, err := svc.ListReturns(ctx, actor, settlement.ListOptions{
			Status: strings.TrimSpace(c.Query("status")),
			Page:   page,
			All:    all,
		})
		if err != nil {
			respondAppError(c, route, err)
			return
		}

		respondSuccess(c, http.StatusOK, "", gin.H{
			"returns":    returns,
			"pagination": paginationResponse(total, page),
		})
	}
}

/* =========================
   UPDATE RETURN
========================= */

// UpdateReturn is PATCH /refund: status Cancelled is the requester's cancel,
// any other status is an admin review.
func UpdateReturn(svc *settlement.Service) gin.HandlerFunc {
	return updateReturn(svc, "PATCH /refund", (*settlement.Service).UpdateReturn)
}

// ReviewReturn is PATCH /admin/refund.
func ReviewReturn(svc *settlement.Service) gin.HandlerFunc {
	return updateReturn(svc, "PATCH /admin/refund", (*settlement.Service).ReviewReturn)
}

type returnUpdater func(*settlement.Service, context.Context, auth.Actor, settlement.ReviewInput) (models.Return, error)

func updateReturn(svc *settlement.Service, route string, apply returnUpdater) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, route)

		var req updateReturnRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		returnID, ok := parseObjectID(req.ID)
		if !ok {
			respondWithError(c, http.StatusBadRequest, route, "Invalid return ID")
			return
		}
		refundID, err := parseOptionalObjectID(req.RefundTransactionID)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "Invalid refund transaction ID")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		ret, err := apply(svc, ctx, middleware.ActorFrom(c), settlement.ReviewInput{
			ID:                  returnID,
			Status:              strings.TrimSpace(req.Status),
			AdminNotes:          req.AdminNotes,
			RefundTransactionID: refundID,
		})
		if err != nil {
			respondAppError(c, route, err)
			return
		}

		respondSuccess(c, http.StatusOK, "Return request updated successfully", ret)
	}
}

/* =========================
   DELETE RETURN
========================= */

func DeleteReturn(svc *settlement.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /refund"
		defer handlePanic(c, route)

		returnID, ok := parseObjectID(c.Query("id"))
		if !ok {
			respondWithError(c, http.StatusBadRequest, route, "Return ID is required")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		if err := svc.CancelReturn(ctx, middleware.ActorFrom(c), returnID); err != nil {
			respondAppError(c, route, err)
			return
		}

		respondSuccess(c, http.StatusOK, "Return request cancelled successfully", gin.H{"_id": returnID.Hex()})
	}
}
