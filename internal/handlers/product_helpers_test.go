package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ZODIAC3K/refactor-capstone/internal/models"
	"github.com/ZODIAC3K/refactor-capstone/internal/store/memory"
)

func TestNormalizePriceRoundsAndDefaultsCurrency(t *testing.T) {
	price, err := normalizePrice(499.999, " ")
	require.NoError(t, err)
	require.Equal(t, 500.0, price.Amount)
	require.Equal(t, "INR", price.Currency)

	price, err = normalizePrice(12.5, "usd")
	require.NoError(t, err)
	require.Equal(t, "USD", price.Currency)
}

func TestNormalizePriceRejectsNonPositive(t *testing.T) {
	for _, amount := range []float64{0, -1, 0.001} {
		_, err := normalizePrice(amount, "INR")
		require.Error(t, err, "amount %v", amount)
	}
}

func TestResolvePriceUpdateKeepsUnsetFields(t *testing.T) {
	existing := models.Price{Amount: 250, Currency: "INR"}

	amount := 300.0
	updated, err := resolvePriceUpdate(existing, priceUpdateInput{Amount: &amount})
	require.NoError(t, err)
	require.Equal(t, models.Price{Amount: 300, Currency: "INR"}, updated)

	currency := "eur"
	updated, err = resolvePriceUpdate(existing, priceUpdateInput{Currency: &currency})
	require.NoError(t, err)
	require.Equal(t, models.Price{Amount: 250, Currency: "EUR"}, updated)
}

func TestResolveCategoryIDs(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	shirts := models.Category{Name: "Shirts", IsActive: true}
	require.NoError(t, st.InsertCategory(ctx, &shirts))

	ids, err := resolveCategoryIDs(ctx, st, []string{shirts.ID.Hex(), " ", shirts.ID.Hex()})
	require.NoError(t, err)
	require.Equal(t, models.IDList{shirts.ID}, ids)

	_, err = resolveCategoryIDs(ctx, st, nil)
	require.EqualError(t, err, "category_id required")

	_, err = resolveCategoryIDs(ctx, st, []string{"nope"})
	require.EqualError(t, err, "invalid category_id: nope")

	missing := primitive.NewObjectID()
	_, err = resolveCategoryIDs(ctx, st, []string{missing.Hex()})
	require.EqualError(t, err, "category not found: "+missing.Hex())
}
