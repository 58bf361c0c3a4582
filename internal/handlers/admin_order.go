package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ZODIAC3K/refactor-capstone/internal/middleware"
	"github.com/ZODIAC3K/refactor-capstone/internal/settlement"
)

type orderStatusRequest struct {
	ID     string `json:"id" binding:"required"`
	Status string `json:"status" binding:"required"`
}

// GetAllOrders lists every user's orders.
func GetAllOrders(svc *settlement.Service) gin.HandlerFunc {
	return listOrders(svc, "GET /admin/order", true)
}

func UpdateOrderStatus(svc *settlement.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /admin/order"
		defer handlePanic(c, route)

		var req orderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		orderID, ok := parseObjectID(req.ID)
		if !ok {
			respondWithError(c, http.StatusBadRequest, route, "Invalid order ID")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		order, err := svc.UpdateOrderStatus(ctx, middleware.ActorFrom(c), orderID, strings.TrimSpace(req.Status))
		if err != nil {
			respondAppError(c, route, err)
			return
		}

		respondSuccess(c, http.StatusOK, "Order status updated", order)
	}
}
