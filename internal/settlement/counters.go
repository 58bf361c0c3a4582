package settlement

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ZODIAC3K/refactor-capstone/internal/apperr"
	"github.com/ZODIAC3K/refactor-capstone/internal/models"
	"github.com/ZODIAC3K/refactor-capstone/internal/store"
)

type countersStore interface {
	store.Transactor
	store.Products
	store.Creators
	store.Ledger
}

// Counters is the only writer of products.sales_count and
// creators.totalSales. Every change is an atomic increment paired with an
// append to the settlement ledger in the caller's transaction, so the stored
// counters can always be rebuilt from the ledger.
type Counters struct {
	store countersStore
	now   func() time.Time
	newID func() string
}

// NewCounters constructs Counters.
func NewCounters(st countersStore, now func() time.Time, newID func() string) *Counters {
	return &Counters{store: st, now: now, newID: newID}
}

// ProductTally compares a product's stored sales_count with the ledger.
type ProductTally struct {
	ProductID primitive.ObjectID `json:"product_id"`
	Stored    int                `json:"stored"`
	Ledger    int                `json:"ledger"`
}

// CreatorTally compares a creator's stored totalSales with the ledger.
type CreatorTally struct {
	CreatorID primitive.ObjectID `json:"creator_id"`
	Stored    float64            `json:"stored"`
	Ledger    float64            `json:"ledger"`
	Products  []ProductTally     `json:"products"`
}

// Apply records the sale of every line of order. Must run inside the
// transaction that inserts the order.
func (c *Counters) Apply(ctx context.Context, order models.Order, products map[primitive.ObjectID]models.Product) error {
	at := c.now()
	entries := make([]models.SettlementEvent, 0, order.LineCount())
	for i, productID := range order.ProductOrdered {
		product, ok := products[productID]
		if !ok {
			return apperr.New(apperr.Internal, "Product missing during settlement")
		}
		qty := order.QuantityOrdered[i]
		amount := LineAmount(decimal.NewFromFloat(product.Price.Amount), qty)
		entries = append(entries, models.SettlementEvent{
			ID:        c.newID(),
			Kind:      models.SettlementOrderPlaced,
			OrderID:   order.ID,
			ProductID: productID,
			CreatorID: product.Creator,
			Quantity:  qty,
			Amount:    amount.InexactFloat64(),
			At:        at,
		})
	}
	return c.post(ctx, entries)
}

// Reverse undoes the placement of order with compensating ledger entries of
// kind. It replays the placement entries so the exact quantities and amounts
// applied at creation are removed. Orders placed before the ledger existed
// are reversed at current product prices. Reversing twice is a no-op.
func (c *Counters) Reverse(ctx context.Context, order models.Order, kind string) error {
	existing, err := c.store.ListSettlementEvents(ctx, store.LedgerFilter{OrderID: &order.ID})
	if err != nil {
		return internal("Failed to read settlement ledger", err)
	}

	placed := make([]models.SettlementEvent, 0, len(existing))
	for _, ev := range existing {
		switch ev.Kind {
		case models.SettlementOrderPlaced:
			placed = append(placed, ev)
		case models.SettlementOrderCancelled, models.SettlementOrderReturned:
			return nil
		}
	}

	if len(placed) == 0 {
		placed, err = c.legacyPlacement(ctx, order)
		if err != nil {
			return err
		}
	}

	at := c.now()
	entries := make([]models.SettlementEvent, 0, len(placed))
	for _, ev := range placed {
		entries = append(entries, models.SettlementEvent{
			ID:        c.newID(),
			Kind:      kind,
			OrderID:   order.ID,
			ProductID: ev.ProductID,
			CreatorID: ev.CreatorID,
			Quantity:  -ev.Quantity,
			Amount:    -ev.Amount,
			At:        at,
		})
	}
	return c.post(ctx, entries)
}

func (c *Counters) legacyPlacement(ctx context.Context, order models.Order) ([]models.SettlementEvent, error) {
	out := make([]models.SettlementEvent, 0, order.LineCount())
	for i, productID := range order.ProductOrdered {
		product, err := c.store.FindProduct(ctx, productID)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, internal("Failed to load product", err)
		}
		qty := order.QuantityOrdered[i]
		out = append(out, models.SettlementEvent{
			Kind:      models.SettlementOrderPlaced,
			ProductID: productID,
			CreatorID: product.Creator,
			Quantity:  qty,
			Amount:    LineAmount(decimal.NewFromFloat(product.Price.Amount), qty).InexactFloat64(),
		})
	}
	return out, nil
}

// post applies the increments of entries and appends them to the ledger.
// A product or creator reference that no longer resolves is recorded but not
// counted.
func (c *Counters) post(ctx context.Context, entries []models.SettlementEvent) error {
	if len(entries) == 0 {
		return nil
	}
	for _, ev := range entries {
		if err := c.store.IncProductSales(ctx, ev.ProductID, ev.Quantity); err != nil && !errors.Is(err, store.ErrNotFound) {
			return internal("Failed to update product sales", err)
		}
		if ev.CreatorID == nil {
			continue
		}
		if err := c.store.IncCreatorSales(ctx, *ev.CreatorID, ev.Amount); err != nil && !errors.Is(err, store.ErrNotFound) {
			return internal("Failed to update creator sales", err)
		}
	}
	if err := c.store.AppendSettlementEvents(ctx, entries); err != nil {
		return internal("Failed to write settlement ledger", err)
	}
	return nil
}

// Tally reads a creator's stored counters next to the ledger totals.
func (c *Counters) Tally(ctx context.Context, creatorID primitive.ObjectID) (CreatorTally, error) {
	creator, err := c.store.FindCreator(ctx, creatorID)
	if errors.Is(err, store.ErrNotFound) {
		return CreatorTally{}, apperr.New(apperr.NotFound, "Creator not found")
	}
	if err != nil {
		return CreatorTally{}, internal("Failed to load creator", err)
	}

	creatorEvents, err := c.store.ListSettlementEvents(ctx, store.LedgerFilter{CreatorID: &creatorID})
	if err != nil {
		return CreatorTally{}, internal("Failed to read settlement ledger", err)
	}

	products, _, err := c.store.ListProducts(ctx, store.ProductFilter{CreatorID: &creatorID}, store.Page{})
	if err != nil {
		return CreatorTally{}, internal("Failed to load products", err)
	}

	tally := CreatorTally{
		CreatorID: creatorID,
		Stored:    creator.TotalSales,
		Ledger:    sumAmounts(creatorEvents).InexactFloat64(),
		Products:  make([]ProductTally, 0, len(products)),
	}
	for _, p := range products {
		productEvents, err := c.store.ListSettlementEvents(ctx, store.LedgerFilter{ProductID: &p.ID})
		if err != nil {
			return CreatorTally{}, internal("Failed to read settlement ledger", err)
		}
		tally.Products = append(tally.Products, ProductTally{
			ProductID: p.ID,
			Stored:    p.SalesCount,
			Ledger:    sumQuantities(productEvents),
		})
	}
	return tally, nil
}

// Reconcile overwrites a creator's totalSales and the sales_count of each of
// their products with the ledger totals.
func (c *Counters) Reconcile(ctx context.Context, creatorID primitive.ObjectID) (CreatorTally, error) {
	var tally CreatorTally
	err := c.store.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		tally, err = c.Tally(ctx, creatorID)
		if err != nil {
			return err
		}
		if err := c.store.SetCreatorSales(ctx, creatorID, tally.Ledger); err != nil {
			return internal("Failed to update creator sales", err)
		}
		tally.Stored = tally.Ledger
		for i, p := range tally.Products {
			if err := c.store.SetProductSales(ctx, p.ProductID, p.Ledger); err != nil {
				return internal("Failed to update product sales", err)
			}
			tally.Products[i].Stored = p.Ledger
		}
		return nil
	})
	if err != nil {
		return CreatorTally{}, err
	}
	return tally, nil
}

// ReconcileAll reconciles every creator.
func (c *Counters) ReconcileAll(ctx context.Context) ([]CreatorTally, error) {
	creators, err := c.store.ListCreators(ctx)
	if err != nil {
		return nil, internal("Failed to load creators", err)
	}
	out := make([]CreatorTally, 0, len(creators))
	for _, creator := range creators {
		tally, err := c.Reconcile(ctx, creator.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, tally)
	}
	return out, nil
}

func sumAmounts(entries []models.SettlementEvent) decimal.Decimal {
	total := decimal.Zero
	for _, ev := range entries {
		total = total.Add(decimal.NewFromFloat(ev.Amount))
	}
	return total.Round(2)
}

func sumQuantities(entries []models.SettlementEvent) int {
	total := 0
	for _, ev := range entries {
		total += ev.Quantity
	}
	return total
}
