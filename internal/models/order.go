package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order lifecycle states as persisted in the status field.
const (
	OrderStatusPending         = "pending"
	OrderStatusProcessing      = "Processing"
	OrderStatusShipped         = "Shipped"
	OrderStatusDelivered       = "Delivered"
	OrderStatusReturnRequested = "Return Requested"
	OrderStatusReturnApproved  = "Return Approved"
	OrderStatusReturnProcess   = "Return Processing"
	OrderStatusReturned        = "Returned"
)

// Order defines the persisted order document. ProductOrdered, SizeOrdered and
// QuantityOrdered are parallel arrays of equal length.
type Order struct {
	ID              primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	UserID          primitive.ObjectID   `bson:"user_id" json:"user_id"`
	Status          string               `bson:"status" json:"status"`
	ProductOrdered  []primitive.ObjectID `bson:"product_ordered" json:"product_ordered"`
	SizeOrdered     []string             `bson:"size_ordered" json:"size_ordered"`
	QuantityOrdered []int                `bson:"quantity_ordered" json:"quantity_ordered"`
	CouponUsed      *primitive.ObjectID  `bson:"coupon_used,omitempty" json:"coupon_used,omitempty"`
	OfferUsed       *primitive.ObjectID  `bson:"offer_used,omitempty" json:"offer_used,omitempty"`
	TotalAmount     float64              `bson:"total_amount" json:"total_amount"`
	AmountPaid      float64              `bson:"amount_paid" json:"amount_paid"`
	Address         primitive.ObjectID   `bson:"address" json:"address"`
	TransactionID   primitive.ObjectID   `bson:"transcation_id" json:"transcation_id"`
	CreatedAt       time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// LineCount returns the number of ordered lines.
func (o Order) LineCount() int {
	return len(o.ProductOrdered)
}
