// Package settlement implements order placement, cancellation and returns
// together with the product and creator sales counters they drive, plus
// product reviews and the payment records attached to orders.
package settlement

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/ZODIAC3K/refactor-capstone/internal/apperr"
	"github.com/ZODIAC3K/refactor-capstone/internal/auth"
	"github.com/ZODIAC3K/refactor-capstone/internal/events"
	"github.com/ZODIAC3K/refactor-capstone/internal/logging"
	"github.com/ZODIAC3K/refactor-capstone/internal/store"
)

var tracer = otel.Tracer("github.com/ZODIAC3K/refactor-capstone/internal/settlement")

// Store is the persistence required by the settlement service.
type Store interface {
	store.Transactor
	store.Orders
	store.Products
	store.Creators
	store.Coupons
	store.Offers
	store.Addresses
	store.Returns
	store.Reviews
	store.Transactions
	store.Ledger
}

// ServiceDeps bundles the collaborators of Service.
type ServiceDeps struct {
	Store     Store
	Publisher events.Publisher
	Clock     func() time.Time
	IDs       func() string
	// RejectDuplicateTransaction makes CreateOrder fail with Conflict when the
	// payment reference is already attached to another order.
	RejectDuplicateTransaction bool
}

// ListOptions selects a page of orders or returns. All lists every user's
// records and requires the admin role.
type ListOptions struct {
	Status string
	Page   store.Page
	All    bool
}

// Service exposes the order and return workflows.
type Service struct {
	store     Store
	publisher events.Publisher
	now       func() time.Time
	newID     func() string
	rejectDup bool
	validator *Validator
	counters  *Counters
	sanitizer *bluemonday.Policy
}

// NewService constructs a Service.
func NewService(deps ServiceDeps) (*Service, error) {
	if deps.Store == nil {
		return nil, errors.New("settlement service: store is required")
	}
	now := deps.Clock
	if now == nil {
		now = time.Now
	}
	newID := deps.IDs
	if newID == nil {
		newID = func() string { return ulid.Make().String() }
	}
	return &Service{
		store:     deps.Store,
		publisher: deps.Publisher,
		now:       now,
		newID:     newID,
		rejectDup: deps.RejectDuplicateTransaction,
		validator: NewValidator(deps.Store, now),
		counters:  NewCounters(deps.Store, now, newID),
		sanitizer: bluemonday.StrictPolicy(),
	}, nil
}

// Counters returns the settlement counter component.
func (s *Service) Counters() *Counters {
	return s.counters
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	event.ID = s.newID()
	event.OccurredAt = s.now().UTC()
	if err := s.publisher.Publish(ctx, event); err != nil {
		logging.FromContext(ctx).Warn("event publish failed",
			zap.String("eventType", event.Type),
			zap.String("orderId", event.OrderID),
			zap.Error(err),
		)
	}
}

func (s *Service) clean(text string) string {
	return strings.TrimSpace(s.sanitizer.Sanitize(text))
}

func requireActor(actor auth.Actor) error {
	if actor.UserID.IsZero() {
		return apperr.New(apperr.AuthenticationMissing, "No access token provided")
	}
	return nil
}

// internal tags untyped failures so callers see a generic message.
func internal(message string, err error) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperr.Wrap(apperr.Internal, message, err)
}

func finishSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, apperr.Message(err))
	}
	span.End()
}
