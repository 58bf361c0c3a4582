package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Price is a unit price in a single currency.
type Price struct {
	Amount   float64 `bson:"amount" json:"amount"`
	Currency string  `bson:"currency" json:"currency"`
}

// Product is the catalogue entry an order line refers to. SalesCount is only
// ever changed by settlement.
type Product struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"_id"`
	Title       string              `bson:"title" json:"title"`
	Description string              `bson:"description" json:"description"`
	Category    IDList              `bson:"category" json:"category"`
	Creator     *primitive.ObjectID `bson:"creator,omitempty" json:"creator,omitempty"`
	Price       Price               `bson:"price" json:"price"`
	SalesCount  int                 `bson:"sales_count" json:"sales_count"`
	Rating      float64             `bson:"rating" json:"rating"`
	CreatedAt   time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// Creator owns products and accumulates the monetary value of their sales.
type Creator struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID            primitive.ObjectID `bson:"userId" json:"userId"`
	Name              string             `bson:"name" json:"name"`
	Bio               string             `bson:"bio" json:"bio"`
	TotalSales        float64            `bson:"totalSales" json:"totalSales"`
	RoyaltyPercentage float64            `bson:"royaltyPercentage" json:"royaltyPercentage"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
}
