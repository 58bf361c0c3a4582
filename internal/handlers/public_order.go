package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/ZODIAC3K/refactor-capstone/internal/logging"
	"github.com/ZODIAC3K/refactor-capstone/internal/middleware"
	"github.com/ZODIAC3K/refactor-capstone/internal/settlement"
)

/* =========================
   REQUEST DTOs
========================= */

type createOrderRequest struct {
	ProductOrdered  []string `json:"product_ordered"`
	SizeOrdered     []string `json:"size_ordered"`
	QuantityOrdered []int    `json:"quantity_ordered"`
	CouponUsed      string   `json:"coupon_used"`
	OfferUsed       string   `json:"offer_used"`
	AddressID       string   `json:"address_id"`
	TransactionID   string   `json:"transcation_id"`
}

/* =========================
   CREATE ORDER
========================= */

func CreateOrder(svc *settlement.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /order"
		defer handlePanic(c, route)

		var req createOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		orderReq, err := buildOrderRequest(req)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		order, err := svc.CreateOrder(ctx, middleware.ActorFrom(c), orderReq)
		if err != nil {
			respondAppError(c, route, err)
			return
		}

		respondSuccess(c, http.StatusCreated, "Order created successfully", order)
	}
}

/* =========================
   GET ORDERS
========================= */

func GetOrders(svc *settlement.Service) gin.HandlerFunc {
	return listOrders(svc, "GET /order", false)
}

func listOrders(svc *settlement.Service, route string, all bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		actor := middleware.ActorFrom(c)

		if rawID := c.Query("id"); rawID != "" {
			orderID, ok := parseObjectID(rawID)
			if !ok {
				respondWithError(c, http.StatusBadRequest, route, "Invalid order ID")
				return
			}
			order, err := svc.GetOrder(ctx, actor, orderID)
			if err != nil {
				respondAppError(c, route, err)
				return
			}
			respondSuccess(c, http.StatusOK, "", order)
			return
		}

		page, err := pageFromQuery(c)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		orders, total, err := svc.ListOrders(ctx, actor, settlement.ListOptions{
			Status: strings.TrimSpace(c.Query("status")),
			Page:   page,
			All:    all,
		})
		if err != nil {
			respondAppError(c, route, err)
			return
		}

		logging.FromContext(ctx).Debug("orders listed", zap.String("route", route), zap.Int("count", len(orders)))
		respondSuccess(c, http.StatusOK, "", gin.H{
			"orders":     orders,
			"pagination": paginationResponse(total, page),
		})
	}
}

/* =========================
   DELETE ORDER
========================= */

func DeleteOrder(svc *settlement.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /order"
		defer handlePanic(c, route)

		orderID, ok := parseObjectID(c.Query("id"))
		if !ok {
			respondWithError(c, http.StatusBadRequest, route, "Order ID is required")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		if err := svc.DeleteOrder(ctx, middleware.ActorFrom(c), orderID); err != nil {
			respondAppError(c, route, err)
			return
		}

		respondSuccess(c, http.StatusOK, "Order deleted successfully", gin.H{"_id": orderID.Hex()})
	}
}

/* =========================
   BUILD ORDER
========================= */

func buildOrderRequest(req createOrderRequest) (settlement.OrderRequest, error) {
	productIDs, err := parseObjectIDs(req.ProductOrdered)
	if err != nil {
		return settlement.OrderRequest{}, errors.New("Invalid product ID")
	}
	couponID, err := parseOptionalObjectID(req.CouponUsed)
	if err != nil {
		return settlement.OrderRequest{}, errors.New("Invalid coupon ID")
	}
	offerID, err := parseOptionalObjectID(req.OfferUsed)
	if err != nil {
		return settlement.OrderRequest{}, errors.New("Invalid offer ID")
	}

	out := settlement.OrderRequest{
		ProductIDs: productIDs,
		Sizes:      trimAll(req.SizeOrdered),
		Quantities: req.QuantityOrdered,
		CouponID:   couponID,
		OfferID:    offerID,
	}

	if strings.TrimSpace(req.AddressID) != "" {
		id, ok := parseObjectID(req.AddressID)
		if !ok {
			return settlement.OrderRequest{}, errors.New("Invalid address ID")
		}
		out.AddressID = id
	}
	if strings.TrimSpace(req.TransactionID) != "" {
		id, ok := parseObjectID(req.TransactionID)
		if !ok {
			return settlement.OrderRequest{}, errors.New("Invalid transaction ID")
		}
		out.TransactionID = id
	}
	return out, nil
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, strings.TrimSpace(v))
	}
	return out
}

// objectIDHexes renders ids for log fields.
func objectIDHexes(ids []primitive.ObjectID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.Hex())
	}
	return out
}
