// Package events publishes order and return lifecycle notifications after
// their transactions commit.
package events

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Event types.
const (
	OrderCreated        = "order.created"
	OrderDeleted        = "order.deleted"
	OrderStatusChanged  = "order.status_changed"
	ReturnCreated       = "return.created"
	ReturnUpdated       = "return.updated"
	ReturnCancelled     = "return.cancelled"
	SettlementReconcile = "settlement.reconciled"
)

// Event is the payload published for every lifecycle change.
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	OrderID    string    `json:"orderId,omitempty"`
	ReturnID   string    `json:"returnId,omitempty"`
	UserID     string    `json:"userId,omitempty"`
	Status     string    `json:"status,omitempty"`
	Amount     float64   `json:"amount,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Publisher delivers events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// LogPublisher writes events to the structured log. It is used when no
// Pub/Sub topic is configured.
type LogPublisher struct {
	logger *zap.Logger
}

// NewLogPublisher returns a LogPublisher; a nil logger discards events.
func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, event Event) error {
	p.logger.Info("event published",
		zap.String("eventId", event.ID),
		zap.String("eventType", event.Type),
		zap.String("orderId", event.OrderID),
		zap.String("returnId", event.ReturnID),
		zap.String("status", event.Status),
	)
	return nil
}
