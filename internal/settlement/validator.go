package settlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ZODIAC3K/refactor-capstone/internal/apperr"
	"github.com/ZODIAC3K/refactor-capstone/internal/auth"
	"github.com/ZODIAC3K/refactor-capstone/internal/models"
	"github.com/ZODIAC3K/refactor-capstone/internal/store"
)

// OrderRequest is the input of CreateOrder. ProductIDs, Sizes and Quantities
// are parallel.
type OrderRequest struct {
	ProductIDs    []primitive.ObjectID
	Sizes         []string
	Quantities    []int
	CouponID      *primitive.ObjectID
	OfferID       *primitive.ObjectID
	AddressID     primitive.ObjectID
	TransactionID primitive.ObjectID
}

// Eligible is an order request with every reference resolved.
type Eligible struct {
	Products map[primitive.ObjectID]models.Product
	Lines    []PricedLine
	Offer    *models.Offer
	Coupon   *models.Coupon
	Address  models.Address
}

type validatorStore interface {
	store.Products
	store.Offers
	store.Coupons
	store.Addresses
}

// Validator rejects order requests before anything is written.
type Validator struct {
	store validatorStore
	now   func() time.Time
}

// NewValidator constructs a Validator.
func NewValidator(st validatorStore, now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	return &Validator{store: st, now: now}
}

// Validate runs CheckRequest followed by Resolve.
func (v *Validator) Validate(ctx context.Context, actor auth.Actor, req OrderRequest) (Eligible, error) {
	if err := v.CheckRequest(actor, req); err != nil {
		return Eligible{}, err
	}
	return v.Resolve(ctx, req)
}

// CheckRequest performs the checks that need no database access.
func (v *Validator) CheckRequest(actor auth.Actor, req OrderRequest) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if len(req.ProductIDs) == 0 || len(req.Sizes) == 0 || len(req.Quantities) == 0 {
		return apperr.New(apperr.ValidationFailed, "Product, size, and quantity details are required")
	}
	if len(req.ProductIDs) != len(req.Sizes) || len(req.ProductIDs) != len(req.Quantities) {
		return apperr.New(apperr.ValidationFailed, "Product, size, and quantity arrays must have same length")
	}
	for _, qty := range req.Quantities {
		if qty <= 0 {
			return apperr.New(apperr.ValidationFailed, "Quantity must be greater than zero")
		}
	}
	if req.TransactionID.IsZero() {
		return apperr.New(apperr.ValidationFailed, "Transaction ID is required")
	}
	return nil
}

// Resolve loads every referenced product, the offer, the coupon and the
// address, failing on the first reference that is missing or ineligible.
func (v *Validator) Resolve(ctx context.Context, req OrderRequest) (Eligible, error) {
	eligible := Eligible{
		Products: make(map[primitive.ObjectID]models.Product, len(req.ProductIDs)),
		Lines:    make([]PricedLine, 0, len(req.ProductIDs)),
	}

	for i, productID := range req.ProductIDs {
		product, ok := eligible.Products[productID]
		if !ok {
			var err error
			product, err = v.store.FindProduct(ctx, productID)
			if errors.Is(err, store.ErrNotFound) {
				return Eligible{}, apperr.New(apperr.ValidationFailed, fmt.Sprintf("Product not found: %s", productID.Hex()))
			}
			if err != nil {
				return Eligible{}, internal("Failed to load product", err)
			}
			eligible.Products[productID] = product
		}
		eligible.Lines = append(eligible.Lines, PricedLine{
			ProductID: productID,
			UnitPrice: decimal.NewFromFloat(product.Price.Amount),
			Quantity:  req.Quantities[i],
		})
	}

	if req.OfferID != nil {
		offer, err := v.store.FindOffer(ctx, *req.OfferID)
		if errors.Is(err, store.ErrNotFound) {
			return Eligible{}, apperr.New(apperr.ValidationFailed, "Invalid offer")
		}
		if err != nil {
			return Eligible{}, internal("Failed to load offer", err)
		}
		if offer.Expired(v.now()) {
			return Eligible{}, apperr.New(apperr.ValidationFailed, "Offer has expired")
		}
		if !offer.CoversAll(req.ProductIDs) {
			return Eligible{}, apperr.New(apperr.ValidationFailed, "Offer cannot be applied - not all products are eligible")
		}
		eligible.Offer = &offer
	}

	if req.CouponID != nil {
		coupon, err := v.store.FindCoupon(ctx, *req.CouponID)
		if errors.Is(err, store.ErrNotFound) {
			return Eligible{}, apperr.New(apperr.ValidationFailed, "Invalid coupon")
		}
		if err != nil {
			return Eligible{}, internal("Failed to load coupon", err)
		}
		if coupon.Expired(v.now()) {
			return Eligible{}, apperr.New(apperr.ValidationFailed, "Coupon has expired")
		}
		eligible.Coupon = &coupon
	}

	address, err := v.store.FindAddress(ctx, req.AddressID)
	if errors.Is(err, store.ErrNotFound) {
		return Eligible{}, apperr.New(apperr.ValidationFailed, "Invalid address")
	}
	if err != nil {
		return Eligible{}, internal("Failed to load address", err)
	}
	eligible.Address = address

	return eligible, nil
}
