package settlement

import (
	"fmt"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ZODIAC3K/refactor-capstone/internal/apperr"
	"github.com/ZODIAC3K/refactor-capstone/internal/models"
)

var hundred = decimal.NewFromInt(100)

// PricedLine is an order line with its resolved unit price.
type PricedLine struct {
	ProductID primitive.ObjectID
	UnitPrice decimal.Decimal
	Quantity  int
}

// Quote is the result of pricing an order.
type Quote struct {
	Total decimal.Decimal
	Paid  decimal.Decimal
}

// LineAmount returns unit price times quantity rounded to two places.
func LineAmount(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
}

// PriceOrder sums the lines and applies the offer and then the coupon as
// sequential percentages of the running paid amount. Offer applicability is
// checked by the caller. Both amounts are rounded to two places, which keeps
// Paid <= Total.
func PriceOrder(lines []PricedLine, offer *models.Offer, coupon *models.Coupon) (Quote, error) {
	total := decimal.Zero
	for _, line := range lines {
		if line.Quantity <= 0 {
			return Quote{}, apperr.New(apperr.ValidationFailed, "Quantity must be greater than zero")
		}
		if line.UnitPrice.IsNegative() {
			return Quote{}, apperr.New(apperr.ValidationFailed, fmt.Sprintf("Product has a negative price: %s", line.ProductID.Hex()))
		}
		total = total.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	paid := total
	if offer != nil {
		pct, err := percent(offer.OfferDiscount, "Offer")
		if err != nil {
			return Quote{}, err
		}
		paid = applyPercent(paid, pct)
	}
	if coupon != nil {
		pct, err := percent(coupon.Discount, "Coupon")
		if err != nil {
			return Quote{}, err
		}
		paid = applyPercent(paid, pct)
	}

	return Quote{Total: total.Round(2), Paid: paid.Round(2)}, nil
}

func applyPercent(amount, pct decimal.Decimal) decimal.Decimal {
	return amount.Sub(amount.Mul(pct).Div(hundred))
}

// ValidDiscount reports whether pct is an acceptable stored percentage.
func ValidDiscount(pct float64) bool {
	return pct >= 0 && pct <= 100
}

func percent(value float64, label string) (decimal.Decimal, error) {
	if !ValidDiscount(value) {
		return decimal.Zero, apperr.New(apperr.ValidationFailed, fmt.Sprintf("%s discount must be between 0 and 100", label))
	}
	return decimal.NewFromFloat(value), nil
}
