package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Transaction records the gateway payment made for an order. Its ID is the
// payment reference the order was placed with, so an order has at most one.
type Transaction struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID            primitive.ObjectID `bson:"user_id" json:"user_id"`
	OrderID           primitive.ObjectID `bson:"order_id" json:"order_id"`
	RazorpayPaymentID string             `bson:"razorpay_payment_id" json:"razorpay_payment_id"`
	RazorpayOrderID   string             `bson:"razorpay_order_id" json:"razorpay_order_id"`
	RazorpaySignature string             `bson:"razorpay_signature" json:"razorpay_signature"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
}
