package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ZODIAC3K/refactor-capstone/internal/middleware"
	"github.com/ZODIAC3K/refactor-capstone/internal/settlement"
)

type createTransactionRequest struct {
	OrderID           string `json:"order_id" binding:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" binding:"required"`
	RazorpayOrderID   string `json:"razorpay_order_id" binding:"required"`
	RazorpaySignature string `json:"razorpay_signature" binding:"required"`
}

type updateTransactionRequest struct {
	ID                string `json:"id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpaySignature string `json:"razorpay_signature"`
}

/* =========================
   RECORD TRANSACTION
========================= */

func CreateTransaction(svc *settlement.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /transaction"
		defer handlePanic(c, route)

		var req createTransactionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		orderID, ok := parseObjectID(req.OrderID)
		if !ok {
			respondWithError(c, http.StatusBadRequest, route, "Invalid order ID")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		tx, err := svc.RecordTransaction(ctx, middleware.ActorFrom(c), orderID, settlement.GatewayRefs{
			PaymentID: req.RazorpayPaymentID,
			OrderID:   req.RazorpayOrderID,
			Signature: req.RazorpaySignature,
		})
		if err != nil {
			respondAppError(c, route, err)
			return
		}

		respondSuccess(c, http.StatusCreated, "Transaction recorded successfully", tx)
	}
}

/* =========================
   GET TRANSACTIONS
========================= */

func GetTransactions(svc *settlement.Service) gin.HandlerFunc {
	return listTransactions(svc, "GET /transaction", false)
}

// GetAllTransactions lists every user's transactions.
func GetAllTransactions(svc *settlement.Service) gin.HandlerFunc {
	return listTransactions(svc, "GET /admin/transaction", true)
}

func listTransactions(svc *settlement.Service, route string, all bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		actor := middleware.ActorFrom(c)

		if rawID := c.Query("id"); rawID != "" {
			id, ok := parseObjectID(rawID)
			if !ok {
				respondWithError(c, http.StatusBadRequest, route, "Invalid transaction ID")
				return
			}
			tx, err := svc.GetTransaction(ctx, actor, id)
			if err != nil {
				respondAppError(c, route, err)
				return
			}
			respondSuccess(c, http.StatusOK, "", tx)
			return
		}

		if rawOrderID := c.Query("orderId"); rawOrderID != "" {
			orderID, ok := parseObjectID(rawOrderID)
			if !ok {
				respondWithError(c, http.StatusBadRequest, route, "Invalid order ID")
				return
			}
			tx, err := svc.GetTransactionByOrder(ctx, actor, orderID)
			if err != nil {
				respondAppError(c, route, err)
				return
			}
			respondSuccess(c, http.StatusOK, "", tx)
			return
		}

		page, err := pageFromQuery(c)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		txs, total, err := svc.ListTransactions(ctx, actor, settlement.ListOptions{Page: page, All: all})
		if err != nil {
			respondAppError(c, route, err)
			return
		}

		respondSuccess(c, http.StatusOK, "", gin.H{
			"transactions": txs,
			"pagination":   paginationResponse(total, page),
		})
	}
}

/* =========================
   UPDATE TRANSACTION
========================= */

func UpdateTransaction(svc *settlement.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /transaction"
		defer handlePanic(c, route)

		var req updateTransactionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		id, ok := parseObjectID(req.ID)
		if !ok {
			respondWithError(c, http.StatusBadRequest, route, "Transaction ID is required")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		tx, err := svc.UpdateTransaction(ctx, middleware.ActorFrom(c), id, settlement.GatewayRefs{
			PaymentID: req.RazorpayPaymentID,
			OrderID:   req.RazorpayOrderID,
			Signature: req.RazorpaySignature,
		})
		if err != nil {
			respondAppError(c, route, err)
			return
		}

		respondSuccess(c, http.StatusOK, "Transaction updated successfully", tx)
	}
}

/* =========================
   DELETE TRANSACTION
========================= */

func DeleteTransaction(svc *settlement.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /transaction"
		defer handlePanic(c, route)

		id, ok := parseObjectID(c.Query("id"))
		if !ok {
			respondWithError(c, http.StatusBadRequest, route, "Transaction ID is required")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		if err := svc.DeleteTransaction(ctx, middleware.ActorFrom(c), id); err != nil {
			respondAppError(c, route, err)
			return
		}

		respondSuccess(c, http.StatusOK, "Transaction deleted successfully", gin.H{"_id": id.Hex()})
	}
}
