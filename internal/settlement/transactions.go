package settlement

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/ZODIAC3K/refactor-capstone/internal/apperr"
	"github.com/ZODIAC3K/refactor-capstone/internal/auth"
	"github.com/ZODIAC3K/refactor-capstone/internal/logging"
	"github.com/ZODIAC3K/refactor-capstone/internal/models"
	"github.com/ZODIAC3K/refactor-capstone/internal/store"
)

// GatewayRefs are the identifiers the payment gateway returns for a payment.
// Empty fields are left unchanged by UpdateTransaction.
type GatewayRefs struct {
	PaymentID string
	OrderID   string
	Signature string
}

/* ===== WRITE ===== */

// RecordTransaction stores the gateway payment for one of actor's orders. The
// transaction takes the payment reference the order was placed with as its
// ID when the order carries one.
func (s *Service) RecordTransaction(ctx context.Context, actor auth.Actor, orderID primitive.ObjectID, refs GatewayRefs) (tx models.Transaction, err error) {
	ctx, span := tracer.Start(ctx, "settlement.RecordTransaction")
	defer func() { finishSpan(span, err) }()
	span.SetAttributes(attribute.String("order.id", orderID.Hex()))

	if err := requireActor(actor); err != nil {
		return models.Transaction{}, err
	}
	refs = trimRefs(refs)
	if refs.PaymentID == "" || refs.OrderID == "" || refs.Signature == "" {
		return models.Transaction{}, apperr.New(apperr.ValidationFailed, "Payment details are required")
	}

	err = s.store.RunInTx(ctx, func(ctx context.Context) error {
		order, err := s.findOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if !Can(actor, ActionManageTransaction, OrderResource(order)) {
			return apperr.New(apperr.Forbidden, "Unauthorized to record payment for this order")
		}

		now := s.now()
		tx = models.Transaction{
			ID:                order.TransactionID,
			UserID:            actor.UserID,
			OrderID:           order.ID,
			RazorpayPaymentID: refs.PaymentID,
			RazorpayOrderID:   refs.OrderID,
			RazorpaySignature: refs.Signature,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if err := s.store.InsertTransaction(ctx, &tx); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return apperr.New(apperr.Conflict, "Transaction already recorded for this order")
			}
			return internal("Failed to record transaction", err)
		}
		return nil
	})
	if err != nil {
		return models.Transaction{}, err
	}

	logging.FromContext(ctx).Info("transaction recorded",
		zap.String("transactionId", tx.ID.Hex()),
		zap.String("orderId", tx.OrderID.Hex()),
	)
	return tx, nil
}

// UpdateTransaction replaces the non-empty gateway references of actor's own
// transaction.
func (s *Service) UpdateTransaction(ctx context.Context, actor auth.Actor, id primitive.ObjectID, refs GatewayRefs) (tx models.Transaction, err error) {
	ctx, span := tracer.Start(ctx, "settlement.UpdateTransaction")
	defer func() { finishSpan(span, err) }()

	if err := requireActor(actor); err != nil {
		return models.Transaction{}, err
	}
	refs = trimRefs(refs)

	err = s.store.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		tx, err = s.findTransaction(ctx, id)
		if err != nil {
			return err
		}
		if !Can(actor, ActionManageTransaction, TransactionResource(tx)) {
			return apperr.New(apperr.Forbidden, "Unauthorized to update this transaction")
		}
		if refs.PaymentID != "" {
			tx.RazorpayPaymentID = refs.PaymentID
		}
		if refs.OrderID != "" {
			tx.RazorpayOrderID = refs.OrderID
		}
		if refs.Signature != "" {
			tx.RazorpaySignature = refs.Signature
		}
		tx.UpdatedAt = s.now()
		if err := s.store.ReplaceTransaction(ctx, tx); err != nil {
			return internal("Failed to update transaction", err)
		}
		return nil
	})
	if err != nil {
		return models.Transaction{}, err
	}
	return tx, nil
}

// DeleteTransaction removes actor's own transaction while its order is still
// Pending. A transaction whose order no longer exists may always be removed.
func (s *Service) DeleteTransaction(ctx context.Context, actor auth.Actor, id primitive.ObjectID) (err error) {
	ctx, span := tracer.Start(ctx, "settlement.DeleteTransaction")
	defer func() { finishSpan(span, err) }()

	if err := requireActor(actor); err != nil {
		return err
	}

	return s.store.RunInTx(ctx, func(ctx context.Context) error {
		tx, err := s.findTransaction(ctx, id)
		if err != nil {
			return err
		}
		if !Can(actor, ActionManageTransaction, TransactionResource(tx)) {
			return apperr.New(apperr.Forbidden, "Unauthorized to delete this transaction")
		}
		order, err := s.store.FindOrder(ctx, tx.OrderID)
		switch {
		case errors.Is(err, store.ErrNotFound):
		case err != nil:
			return internal("Failed to load order", err)
		case order.Status != models.OrderStatusPending:
			return apperr.New(apperr.ValidationFailed, "Cannot delete transaction for non-pending orders")
		}
		if err := s.store.DeleteTransaction(ctx, tx.ID); err != nil {
			return internal("Failed to delete transaction", err)
		}
		return nil
	})
}

/* ===== READ ===== */

// GetTransaction returns a transaction visible to actor.
func (s *Service) GetTransaction(ctx context.Context, actor auth.Actor, id primitive.ObjectID) (models.Transaction, error) {
	if err := requireActor(actor); err != nil {
		return models.Transaction{}, err
	}
	tx, err := s.findTransaction(ctx, id)
	if err != nil {
		return models.Transaction{}, err
	}
	if !Can(actor, ActionViewTransaction, TransactionResource(tx)) {
		return models.Transaction{}, apperr.New(apperr.Forbidden, "Unauthorized to access this transaction")
	}
	return tx, nil
}

// GetTransactionByOrder returns the transaction recorded for orderID.
func (s *Service) GetTransactionByOrder(ctx context.Context, actor auth.Actor, orderID primitive.ObjectID) (models.Transaction, error) {
	if err := requireActor(actor); err != nil {
		return models.Transaction{}, err
	}
	tx, err := s.store.FindTransactionByOrder(ctx, orderID)
	if errors.Is(err, store.ErrNotFound) {
		return models.Transaction{}, apperr.New(apperr.NotFound, "Transaction not found for this order")
	}
	if err != nil {
		return models.Transaction{}, internal("Failed to fetch transaction", err)
	}
	if !Can(actor, ActionViewTransaction, TransactionResource(tx)) {
		return models.Transaction{}, apperr.New(apperr.Forbidden, "Unauthorized to access this transaction")
	}
	return tx, nil
}

// ListTransactions returns a page of actor's transactions, newest first. All
// lists every user's transactions and requires the admin role.
func (s *Service) ListTransactions(ctx context.Context, actor auth.Actor, opts ListOptions) ([]models.Transaction, int64, error) {
	if err := requireActor(actor); err != nil {
		return nil, 0, err
	}
	filter := store.TransactionFilter{}
	if opts.All {
		if !actor.IsAdmin() {
			return nil, 0, apperr.New(apperr.Forbidden, "Only administrators can list all transactions")
		}
	} else {
		filter.UserID = &actor.UserID
	}
	txs, total, err := s.store.ListTransactions(ctx, filter, opts.Page)
	if err != nil {
		return nil, 0, internal("Failed to fetch transactions", err)
	}
	return txs, total, nil
}

func (s *Service) findTransaction(ctx context.Context, id primitive.ObjectID) (models.Transaction, error) {
	tx, err := s.store.FindTransaction(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return models.Transaction{}, apperr.New(apperr.NotFound, "Transaction not found")
	}
	if err != nil {
		return models.Transaction{}, internal("Failed to load transaction", err)
	}
	return tx, nil
}

func trimRefs(refs GatewayRefs) GatewayRefs {
	return GatewayRefs{
		PaymentID: strings.TrimSpace(refs.PaymentID),
		OrderID:   strings.TrimSpace(refs.OrderID),
		Signature: strings.TrimSpace(refs.Signature),
	}
}
