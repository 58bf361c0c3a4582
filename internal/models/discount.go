package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Coupon is a percentage discount redeemable by code on any order.
type Coupon struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Discount    float64            `bson:"discount" json:"discount"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	EndAt       time.Time          `bson:"end_at" json:"end_at"`
	Code        string             `bson:"code" json:"code"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Expired reports whether the coupon can no longer be redeemed at now.
func (c Coupon) Expired(now time.Time) bool {
	return !c.EndAt.After(now)
}

// Offer is a percentage discount valid only when every ordered product is in
// ApplicableOn.
type Offer struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	OfferDiscount float64            `bson:"offer_discount" json:"offer_discount"`
	Title         string             `bson:"title" json:"title"`
	Description   string             `bson:"description" json:"description"`
	ApplicableOn  IDList             `bson:"applicable_on" json:"applicable_on"`
	Code          string             `bson:"code" json:"code"`
	EndAt         *time.Time         `bson:"end_at,omitempty" json:"end_at,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Expired reports whether the offer has an end date at or before now.
func (o Offer) Expired(now time.Time) bool {
	return o.EndAt != nil && !o.EndAt.After(now)
}

// CoversAll reports whether every product id is listed in ApplicableOn.
func (o Offer) CoversAll(productIDs []primitive.ObjectID) bool {
	for _, id := range productIDs {
		if !o.ApplicableOn.Contains(id) {
			return false
		}
	}
	return true
}
