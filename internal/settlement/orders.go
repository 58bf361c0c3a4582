package settlement

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/ZODIAC3K/refactor-capstone/internal/apperr"
	"github.com/ZODIAC3K/refactor-capstone/internal/auth"
	"github.com/ZODIAC3K/refactor-capstone/internal/events"
	"github.com/ZODIAC3K/refactor-capstone/internal/logging"
	"github.com/ZODIAC3K/refactor-capstone/internal/models"
	"github.com/ZODIAC3K/refactor-capstone/internal/store"
)

// orderTransitions lists the fulfilment steps an admin may apply. Return
// states are driven by the return workflow only.
var orderTransitions = map[string]string{
	models.OrderStatusPending:    models.OrderStatusProcessing,
	models.OrderStatusProcessing: models.OrderStatusShipped,
	models.OrderStatusShipped:    models.OrderStatusDelivered,
}

// CreateOrder validates, prices and persists an order and records the sale
// against each product and creator in one transaction.
func (s *Service) CreateOrder(ctx context.Context, actor auth.Actor, req OrderRequest) (order models.Order, err error) {
	ctx, span := tracer.Start(ctx, "settlement.CreateOrder")
	defer func() { finishSpan(span, err) }()
	span.SetAttributes(attribute.Int("order.lines", len(req.ProductIDs)))

	if err := s.validator.CheckRequest(actor, req); err != nil {
		return models.Order{}, err
	}

	err = s.store.RunInTx(ctx, func(ctx context.Context) error {
		eligible, err := s.validator.Resolve(ctx, req)
		if err != nil {
			return err
		}

		if s.rejectDup {
			used, err := s.store.CountOrdersByTransaction(ctx, req.TransactionID)
			if err != nil {
				return internal("Failed to create order", err)
			}
			if used > 0 {
				return apperr.New(apperr.Conflict, "Transaction ID already used for another order")
			}
		}

		quote, err := PriceOrder(eligible.Lines, eligible.Offer, eligible.Coupon)
		if err != nil {
			return err
		}

		now := s.now()
		order = models.Order{
			UserID:          actor.UserID,
			Status:          models.OrderStatusPending,
			ProductOrdered:  append([]primitive.ObjectID(nil), req.ProductIDs...),
			SizeOrdered:     append([]string(nil), req.Sizes...),
			QuantityOrdered: append([]int(nil), req.Quantities...),
			CouponUsed:      req.CouponID,
			OfferUsed:       req.OfferID,
			TotalAmount:     quote.Total.InexactFloat64(),
			AmountPaid:      quote.Paid.InexactFloat64(),
			Address:         req.AddressID,
			TransactionID:   req.TransactionID,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := s.store.InsertOrder(ctx, &order); err != nil {
			return internal("Failed to create order", err)
		}
		return s.counters.Apply(ctx, order, eligible.Products)
	})
	if err != nil {
		return models.Order{}, err
	}

	logging.FromContext(ctx).Info("order created",
		zap.String("orderId", order.ID.Hex()),
		zap.String("userId", actor.UserID.Hex()),
		zap.Float64("amountPaid", order.AmountPaid),
	)
	s.publish(ctx, events.Event{
		Type:    events.OrderCreated,
		OrderID: order.ID.Hex(),
		UserID:  actor.UserID.Hex(),
		Status:  order.Status,
		Amount:  order.AmountPaid,
	})
	return order, nil
}

// DeleteOrder cancels a pending order owned by actor, reversing its sales.
func (s *Service) DeleteOrder(ctx context.Context, actor auth.Actor, orderID primitive.ObjectID) (err error) {
	ctx, span := tracer.Start(ctx, "settlement.DeleteOrder")
	defer func() { finishSpan(span, err) }()

	if err := requireActor(actor); err != nil {
		return err
	}

	err = s.store.RunInTx(ctx, func(ctx context.Context) error {
		order, err := s.findOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if !Can(actor, ActionCancelOrder, OrderResource(order)) {
			if order.UserID != actor.UserID {
				return apperr.New(apperr.Forbidden, "Unauthorized to delete this order")
			}
			return apperr.New(apperr.Forbidden, "Only pending orders can be deleted")
		}
		if err := s.counters.Reverse(ctx, order, models.SettlementOrderCancelled); err != nil {
			return err
		}
		if err := s.store.DeleteOrder(ctx, order.ID); err != nil {
			return internal("Failed to delete order", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logging.FromContext(ctx).Info("order deleted", zap.String("orderId", orderID.Hex()))
	s.publish(ctx, events.Event{
		Type:    events.OrderDeleted,
		OrderID: orderID.Hex(),
		UserID:  actor.UserID.Hex(),
	})
	return nil
}

// GetOrder returns an order visible to actor.
func (s *Service) GetOrder(ctx context.Context, actor auth.Actor, orderID primitive.ObjectID) (models.Order, error) {
	if err := requireActor(actor); err != nil {
		return models.Order{}, err
	}
	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return models.Order{}, err
	}
	if !Can(actor, ActionViewOrder, OrderResource(order)) {
		return models.Order{}, apperr.New(apperr.Forbidden, "Unauthorized to access this order")
	}
	return order, nil
}

// ListOrders returns a page of the actor's orders, newest first.
func (s *Service) ListOrders(ctx context.Context, actor auth.Actor, opts ListOptions) ([]models.Order, int64, error) {
	if err := requireActor(actor); err != nil {
		return nil, 0, err
	}
	filter := store.OrderFilter{Status: opts.Status}
	if opts.All {
		if !actor.IsAdmin() {
			return nil, 0, apperr.New(apperr.Forbidden, "Only administrators can list all orders")
		}
	} else {
		filter.UserID = &actor.UserID
	}
	orders, total, err := s.store.ListOrders(ctx, filter, opts.Page)
	if err != nil {
		return nil, 0, internal("Failed to fetch orders", err)
	}
	return orders, total, nil
}

// UpdateOrderStatus advances an order through fulfilment. Only the next step
// of pending, Processing, Shipped, Delivered is accepted.
func (s *Service) UpdateOrderStatus(ctx context.Context, actor auth.Actor, orderID primitive.ObjectID, status string) (order models.Order, err error) {
	ctx, span := tracer.Start(ctx, "settlement.UpdateOrderStatus")
	defer func() { finishSpan(span, err) }()

	if err := requireActor(actor); err != nil {
		return models.Order{}, err
	}
	if !Can(actor, ActionUpdateOrderStatus, Resource{}) {
		return models.Order{}, apperr.New(apperr.Forbidden, "Only administrators can update order status")
	}
	if !knownOrderStatus(status) {
		return models.Order{}, apperr.New(apperr.ValidationFailed, "Invalid order status")
	}

	err = s.store.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		order, err = s.findOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if next, ok := orderTransitions[order.Status]; !ok || next != status {
			return apperr.New(apperr.Forbidden, fmt.Sprintf("Cannot move order from %s to %s", order.Status, status))
		}
		now := s.now()
		if err := s.store.SetOrderStatus(ctx, order.ID, status, now); err != nil {
			return internal("Failed to update order", err)
		}
		order.Status = status
		order.UpdatedAt = now
		return nil
	})
	if err != nil {
		return models.Order{}, err
	}

	s.publish(ctx, events.Event{
		Type:    events.OrderStatusChanged,
		OrderID: order.ID.Hex(),
		UserID:  order.UserID.Hex(),
		Status:  order.Status,
	})
	return order, nil
}

func (s *Service) findOrder(ctx context.Context, orderID primitive.ObjectID) (models.Order, error) {
	order, err := s.store.FindOrder(ctx, orderID)
	if errors.Is(err, store.ErrNotFound) {
		return models.Order{}, apperr.New(apperr.NotFound, "Order not found")
	}
	if err != nil {
		return models.Order{}, internal("Failed to load order", err)
	}
	return order, nil
}

func knownOrderStatus(status string) bool {
	switch status {
	case models.OrderStatusPending, models.OrderStatusProcessing, models.OrderStatusShipped,
		models.OrderStatusDelivered, models.OrderStatusReturnRequested, models.OrderStatusReturnApproved,
		models.OrderStatusReturnProcess, models.OrderStatusReturned:
		return true
	}
	return false
}
