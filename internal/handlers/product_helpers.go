package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ZODIAC3K/refactor-capstone/internal/models"
	"github.com/ZODIAC3K/refactor-capstone/internal/store"
)

const defaultCurrency = "INR"

type priceUpdateInput struct {
	Amount   *float64
	Currency *string
}

// normalizePrice rounds amount to two places and fills the default currency.
func normalizePrice(amount float64, currency string) (models.Price, error) {
	value := decimal.NewFromFloat(amount).Round(2)
	if !value.IsPositive() {
		return models.Price{}, errors.New("price must be greater than 0")
	}
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = defaultCurrency
	}
	return models.Price{Amount: value.InexactFloat64(), Currency: currency}, nil
}

func resolvePriceUpdate(existing models.Price, input priceUpdateInput) (models.Price, error) {
	amount := existing.Amount
	currency := existing.Currency
	if input.Amount != nil {
		amount = *input.Amount
	}
	if input.Currency != nil {
		currency = *input.Currency
	}
	return normalizePrice(amount, currency)
}

// resolveCategoryIDs parses ids in order, drops duplicates and requires every
// category to exist.
func resolveCategoryIDs(ctx context.Context, st store.Categories, raw []string) (models.IDList, error) {
	seen := map[primitive.ObjectID]struct{}{}
	ids := make(models.IDList, 0, len(raw))

	for _, value := range raw {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		id, err := primitive.ObjectIDFromHex(value)
		if err != nil {
			return nil, fmt.Errorf("invalid category_id: %s", value)
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	if len(ids) == 0 {
		return nil, errors.New("category_id required")
	}

	for _, id := range ids {
		if _, err := st.FindCategory(ctx, id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, fmt.Errorf("category not found: %s", id.Hex())
			}
			return nil, err
		}
	}
	return ids, nil
}

func sanitizeLogValue(value string, max int) string {
	trimmed := strings.TrimSpace(value)
	if max <= 0 {
		max = 80
	}
	if len(trimmed) <= max {
		return trimmed
	}
	return trimmed[:max] + "..."
}
