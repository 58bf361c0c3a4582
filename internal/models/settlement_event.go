package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Settlement event kinds.
const (
	SettlementOrderPlaced    = "order_placed"
	SettlementOrderCancelled = "order_cancelled"
	SettlementOrderReturned  = "order_returned"
)

// SettlementEvent is one immutable ledger line describing a change to a
// product's sales_count and its creator's totalSales. Cancellations and
// completed returns carry negative Quantity and Amount.
type SettlementEvent struct {
	ID        string              `bson:"_id" json:"id"`
	Kind      string              `bson:"kind" json:"kind"`
	OrderID   primitive.ObjectID  `bson:"order_id" json:"order_id"`
	ProductID primitive.ObjectID  `bson:"product_id" json:"product_id"`
	CreatorID *primitive.ObjectID `bson:"creator_id,omitempty" json:"creator_id,omitempty"`
	Quantity  int                 `bson:"quantity" json:"quantity"`
	Amount    float64             `bson:"amount" json:"amount"`
	At        time.Time           `bson:"at" json:"at"`
}
