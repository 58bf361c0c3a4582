package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Return states.
const (
	ReturnStatusRequested  = "Requested"
	ReturnStatusApproved   = "Approved"
	ReturnStatusRejected   = "Rejected"
	ReturnStatusProcessing = "Processing"
	ReturnStatusCompleted  = "Completed"
	// ReturnStatusCancelled is never persisted; cancelling deletes the return.
	ReturnStatusCancelled = "Cancelled"
)

// Return tracks a post-delivery return of a whole order. There is at most one
// return per order.
type Return struct {
	ID                  primitive.ObjectID  `bson:"_id,omitempty" json:"_id"`
	OrderID             primitive.ObjectID  `bson:"order_id" json:"order_id"`
	UserID              primitive.ObjectID  `bson:"user_id" json:"user_id"`
	Status              string              `bson:"status" json:"status"`
	ReturnReason        string              `bson:"return_reason" json:"return_reason"`
	RefundTransactionID *primitive.ObjectID `bson:"refund_transaction_id,omitempty" json:"refund_transaction_id,omitempty"`
	AdminNotes          string              `bson:"admin_notes,omitempty" json:"admin_notes,omitempty"`
	ReturnAddress       primitive.ObjectID  `bson:"return_address" json:"return_address"`
	CreatedAt           time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time           `bson:"updatedAt" json:"updatedAt"`
}
