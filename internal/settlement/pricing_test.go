package settlement

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ZODIAC3K/refactor-capstone/internal/apperr"
	"github.com/ZODIAC3K/refactor-capstone/internal/models"
)

func line(price float64, qty int) PricedLine {
	return PricedLine{ProductID: primitive.NewObjectID(), UnitPrice: decimal.NewFromFloat(price), Quantity: qty}
}

func TestPriceOrderOfferThenCoupon(t *testing.T) {
	quote, err := PriceOrder(
		[]PricedLine{line(500, 2)},
		&models.Offer{OfferDiscount: 20},
		&models.Coupon{Discount: 10},
	)
	require.NoError(t, err)
	require.Equal(t, "1000", quote.Total.String())
	require.Equal(t, "720", quote.Paid.String())
}

func TestPriceOrderWithoutDiscounts(t *testing.T) {
	quote, err := PriceOrder([]PricedLine{line(199.99, 3), line(0.01, 1)}, nil, nil)
	require.NoError(t, err)
	require.True(t, quote.Total.Equal(decimal.RequireFromString("599.98")), quote.Total.String())
	require.True(t, quote.Paid.Equal(quote.Total))
}

func TestPriceOrderIsDeterministicAndBounded(t *testing.T) {
	lines := []PricedLine{line(333.33, 3), line(12.5, 7)}
	for _, pct := range []float64{0, 0.5, 33.333, 50, 99.99, 100} {
		first, err := PriceOrder(lines, &models.Offer{OfferDiscount: pct}, &models.Coupon{Discount: pct})
		require.NoError(t, err)
		second, err := PriceOrder(lines, &models.Offer{OfferDiscount: pct}, &models.Coupon{Discount: pct})
		require.NoError(t, err)

		require.True(t, first.Total.Equal(second.Total))
		require.True(t, first.Paid.Equal(second.Paid))
		require.True(t, first.Paid.LessThanOrEqual(first.Total), "pct=%v", pct)
		require.False(t, first.Paid.IsNegative(), "pct=%v", pct)
	}
}

func TestPriceOrderFullDiscountIsZero(t *testing.T) {
	quote, err := PriceOrder([]PricedLine{line(80, 1)}, nil, &models.Coupon{Discount: 100})
	require.NoError(t, err)
	require.True(t, quote.Paid.IsZero())
}

func TestPriceOrderRejectsOutOfRangeDiscounts(t *testing.T) {
	_, err := PriceOrder([]PricedLine{line(80, 1)}, &models.Offer{OfferDiscount: 120}, nil)
	require.Equal(t, apperr.ValidationFailed, apperr.KindOf(err))

	_, err = PriceOrder([]PricedLine{line(80, 1)}, nil, &models.Coupon{Discount: -5})
	require.Equal(t, apperr.ValidationFailed, apperr.KindOf(err))
}

func TestPriceOrderRejectsNonPositiveQuantity(t *testing.T) {
	_, err := PriceOrder([]PricedLine{line(80, 0)}, nil, nil)
	require.Equal(t, apperr.ValidationFailed, apperr.KindOf(err))
}
