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

// returnTransitions are the review steps available to an admin.
var returnTransitions = map[string][]string{
	models.ReturnStatusRequested:  {models.ReturnStatusApproved, models.ReturnStatusRejected},
	models.ReturnStatusApproved:   {models.ReturnStatusProcessing},
	models.ReturnStatusProcessing: {models.ReturnStatusCompleted},
}

// orderStatusForReturn maps a return status to the status its order takes.
var orderStatusForReturn = map[string]string{
	models.ReturnStatusApproved:   models.OrderStatusReturnApproved,
	models.ReturnStatusProcessing: models.OrderStatusReturnProcess,
	models.ReturnStatusCompleted:  models.OrderStatusReturned,
	models.ReturnStatusRejected:   models.OrderStatusDelivered,
}

// ReturnRequest is the input of CreateReturn.
type ReturnRequest struct {
	OrderID   primitive.ObjectID
	Reason    string
	AddressID primitive.ObjectID
}

// ReviewInput is an update to a return. AdminNotes and RefundTransactionID
// are left unchanged when nil.
type ReviewInput struct {
	ID                  primitive.ObjectID
	Status              string
	AdminNotes          *string
	RefundTransactionID *primitive.ObjectID
}

/* ===== REQUEST ===== */

// CreateReturn opens a return for a delivered order owned by actor and moves
// the order to Return Requested.
func (s *Service) CreateReturn(ctx context.Context, actor auth.Actor, req ReturnRequest) (ret models.Return, err error) {
	ctx, span := tracer.Start(ctx, "settlement.CreateReturn")
	defer func() { finishSpan(span, err) }()
	span.SetAttributes(attribute.String("order.id", req.OrderID.Hex()))

	if err := requireActor(actor); err != nil {
		return models.Return{}, err
	}
	reason := s.clean(req.Reason)
	if reason == "" {
		return models.Return{}, apperr.New(apperr.ValidationFailed, "Return reason is required")
	}

	err = s.store.RunInTx(ctx, func(ctx context.Context) error {
		order, err := s.findOrder(ctx, req.OrderID)
		if err != nil {
			return err
		}
		if !Can(actor, ActionRequestReturn, OrderResource(order)) {
			return apperr.New(apperr.Forbidden, "Unauthorized to request return for this order")
		}
		if _, err := s.store.FindReturnByOrder(ctx, order.ID); err == nil {
			return apperr.New(apperr.Conflict, "Return already requested for this order")
		} else if !errors.Is(err, store.ErrNotFound) {
			return internal("Failed to create return request", err)
		}

		if order.Status != models.OrderStatusDelivered {
			return apperr.New(apperr.ValidationFailed, "Only delivered orders can be returned")
		}

		if _, err := s.store.FindAddress(ctx, req.AddressID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return apperr.New(apperr.ValidationFailed, "Invalid return address")
			}
			return internal("Failed to load address", err)
		}

		now := s.now()
		ret = models.Return{
			OrderID:       order.ID,
			UserID:        actor.UserID,
			Status:        models.ReturnStatusRequested,
			ReturnReason:  reason,
			ReturnAddress: req.AddressID,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := s.store.InsertReturn(ctx, &ret); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return apperr.New(apperr.Conflict, "Return already requested for this order")
			}
			return internal("Failed to create return request", err)
		}
		if err := s.store.SetOrderStatus(ctx, order.ID, models.OrderStatusReturnRequested, now); err != nil {
			return internal("Failed to update order", err)
		}
		return nil
	})
	if err != nil {
		return models.Return{}, err
	}

	logging.FromContext(ctx).Info("return requested",
		zap.String("returnId", ret.ID.Hex()),
		zap.String("orderId", ret.OrderID.Hex()),
	)
	s.publish(ctx, events.Event{
		Type:     events.ReturnCreated,
		OrderID:  ret.OrderID.Hex(),
		ReturnID: ret.ID.Hex(),
		UserID:   actor.UserID.Hex(),
		Status:   ret.Status,
	})
	return ret, nil
}

/* ===== CANCEL ===== */

// CancelReturn deletes a return that is still Requested and moves its order
// back to Delivered. Only the requester may cancel.
func (s *Service) CancelReturn(ctx context.Context, actor auth.Actor, returnID primitive.ObjectID) (err error) {
	ctx, span := tracer.Start(ctx, "settlement.CancelReturn")
	defer func() { finishSpan(span, err) }()

	if err := requireActor(actor); err != nil {
		return err
	}

	var ret models.Return
	err = s.store.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		ret, err = s.findReturn(ctx, returnID)
		if err != nil {
			return err
		}
		if !Can(actor, ActionCancelReturn, ReturnResource(ret)) {
			if ret.UserID != actor.UserID {
				return apperr.New(apperr.Forbidden, "Unauthorized to cancel this return request")
			}
			return apperr.New(apperr.Forbidden, "Only pending return requests can be cancelled")
		}
		if err := s.store.DeleteReturn(ctx, ret.ID); err != nil {
			return internal("Failed to cancel return request", err)
		}
		if err := s.store.SetOrderStatus(ctx, ret.OrderID, models.OrderStatusDelivered, s.now()); err != nil && !errors.Is(err, store.ErrNotFound) {
			return internal("Failed to update order", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.publish(ctx, events.Event{
		Type:     events.ReturnCancelled,
		OrderID:  ret.OrderID.Hex(),
		ReturnID: ret.ID.Hex(),
		UserID:   actor.UserID.Hex(),
		Status:   models.ReturnStatusCancelled,
	})
	return nil
}

/* ===== REVIEW ===== */

// ReviewReturn moves a return along its review path and applies the matching
// order status. Completing a return reverses the order's sales.
func (s *Service) ReviewReturn(ctx context.Context, actor auth.Actor, in ReviewInput) (ret models.Return, err error) {
	ctx, span := tracer.Start(ctx, "settlement.ReviewReturn")
	defer func() { finishSpan(span, err) }()
	span.SetAttributes(attribute.String("return.status", in.Status))

	if err := requireActor(actor); err != nil {
		return models.Return{}, err
	}
	if !Can(actor, ActionReviewReturn, Resource{}) {
		return models.Return{}, apperr.New(apperr.Forbidden, "Unauthorized to update this return request")
	}
	orderStatus, ok := orderStatusForReturn[in.Status]
	if !ok {
		return models.Return{}, apperr.New(apperr.ValidationFailed, "Invalid return status")
	}

	err = s.store.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		ret, err = s.findReturn(ctx, in.ID)
		if err != nil {
			return err
		}
		if !allowedReturnStep(ret.Status, in.Status) {
			return apperr.New(apperr.Forbidden, fmt.Sprintf("Cannot move return from %s to %s", ret.Status, in.Status))
		}

		now := s.now()
		ret.Status = in.Status
		ret.UpdatedAt = now
		if in.AdminNotes != nil {
			ret.AdminNotes = s.clean(*in.AdminNotes)
		}
		if in.RefundTransactionID != nil {
			ret.RefundTransactionID = in.RefundTransactionID
		}
		if err := s.store.ReplaceReturn(ctx, ret); err != nil {
			return internal("Failed to update return request", err)
		}

		order, err := s.findOrder(ctx, ret.OrderID)
		if err != nil {
			return err
		}
		if err := s.store.SetOrderStatus(ctx, order.ID, orderStatus, now); err != nil {
			return internal("Failed to update order", err)
		}
		if in.Status == models.ReturnStatusCompleted {
			return s.counters.Reverse(ctx, order, models.SettlementOrderReturned)
		}
		return nil
	})
	if err != nil {
		return models.Return{}, err
	}

	logging.FromContext(ctx).Info("return updated",
		zap.String("returnId", ret.ID.Hex()),
		zap.String("status", ret.Status),
	)
	s.publish(ctx, events.Event{
		Type:     events.ReturnUpdated,
		OrderID:  ret.OrderID.Hex(),
		ReturnID: ret.ID.Hex(),
		UserID:   ret.UserID.Hex(),
		Status:   ret.Status,
	})
	return ret, nil
}

// UpdateReturn is the single update entry point for a return. The Cancelled
// status takes the requester's cancel path, every other status is a review.
func (s *Service) UpdateReturn(ctx context.Context, actor auth.Actor, in ReviewInput) (models.Return, error) {
	if in.Status != models.ReturnStatusCancelled {
		return s.ReviewReturn(ctx, actor, in)
	}
	ret, err := s.GetReturn(ctx, actor, in.ID)
	if err != nil {
		return models.Return{}, err
	}
	if err := s.CancelReturn(ctx, actor, in.ID); err != nil {
		return models.Return{}, err
	}
	ret.Status = models.ReturnStatusCancelled
	return ret, nil
}

/* ===== READ ===== */

// GetReturn returns a return visible to actor.
func (s *Service) GetReturn(ctx context.Context, actor auth.Actor, returnID primitive.ObjectID) (models.Return, error) {
	if err := requireActor(actor); err != nil {
		return models.Return{}, err
	}
	ret, err := s.findReturn(ctx, returnID)
	if err != nil {
		return models.Return{}, err
	}
	if !Can(actor, ActionViewReturn, ReturnResource(ret)) {
		return models.Return{}, apperr.New(apperr.Forbidden, "Unauthorized to access this return request")
	}
	return ret, nil
}

// GetReturnByOrder returns the return opened for orderID.
func (s *Service) GetReturnByOrder(ctx context.Context, actor auth.Actor, orderID primitive.ObjectID) (models.Return, error) {
	if err := requireActor(actor); err != nil {
		return models.Return{}, err
	}
	ret, err := s.store.FindReturnByOrder(ctx, orderID)
	if errors.Is(err, store.ErrNotFound) {
		return models.Return{}, apperr.New(apperr.NotFound, "No return request found for this order")
	}
	if err != nil {
		return models.Return{}, internal("Failed to fetch return request", err)
	}
	if !Can(actor, ActionViewReturn, ReturnResource(ret)) {
		return models.Return{}, apperr.New(apperr.Forbidden, "Unauthorized to access this return request")
	}
	return ret, nil
}

// ListReturns returns a page of the actor's returns, newest first.
func (s *Service) ListReturns(ctx context.Context, actor auth.Actor, opts ListOptions) ([]models.Return, int64, error) {
	if err := requireActor(actor); err != nil {
		return nil, 0, err
	}
	filter := store.ReturnFilter{Status: opts.Status}
	if opts.All {
		if !actor.IsAdmin() {
			return nil, 0, apperr.New(apperr.Forbidden, "Only administrators can list all return requests")
		}
	} else {
		filter.UserID = &actor.UserID
	}
	returns, total, err := s.store.ListReturns(ctx, filter, opts.Page)
	if err != nil {
		return nil, 0, internal("Failed to fetch return requests", err)
	}
	return returns, total, nil
}

func (s *Service) findReturn(ctx context.Context, returnID primitive.ObjectID) (models.Return, error) {
	ret, err := s.store.FindReturn(ctx, returnID)
	if errors.Is(err, store.ErrNotFound) {
		return models.Return{}, apperr.New(apperr.NotFound, "Return request not found")
	}
	if err != nil {
		return models.Return{}, internal("Failed to load return request", err)
	}
	return ret, nil
}

func allowedReturnStep(from, to string) bool {
	for _, next := range returnTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
