// Package store declares the persistence contract shared by the MongoDB and
// in-memory backends.
package store

import (
	"context"
	"errors"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ZODIAC3K/refactor-capstone/internal/models"
)

var (
	// ErrNotFound is returned when a lookup by id or key matches nothing.
	ErrNotFound = errors.New("store: not found")
	// ErrDuplicate is returned when a write violates a unique key.
	ErrDuplicate = errors.New("store: duplicate key")
)

// Page selects a 1-based page of results.
type Page struct {
	Page  int64
	Limit int64
}

// Skip returns the number of documents before the page.
func (p Page) Skip() int64 {
	if p.Page < 1 || p.Limit < 1 {
		return 0
	}
	if p.Page-1 > math.MaxInt64/p.Limit {
		return math.MaxInt64
	}
	return (p.Page - 1) * p.Limit
}

type OrderFilter struct {
	UserID *primitive.ObjectID
	Status string
}

type ReturnFilter struct {
	UserID  *primitive.ObjectID
	OrderID *primitive.ObjectID
	Status  string
}

type ReviewFilter struct {
	ProductID *primitive.ObjectID
	UserID    *primitive.ObjectID
}

type TransactionFilter struct {
	UserID *primitive.ObjectID
}

type ProductFilter struct {
	CreatorID  *primitive.ObjectID
	CategoryID *primitive.ObjectID
}

type LedgerFilter struct {
	OrderID   *primitive.ObjectID
	ProductID *primitive.ObjectID
	CreatorID *primitive.ObjectID
	Kind      string
}

// Transactor runs fn atomically. Repository calls made with the context passed
// to fn take part in the transaction; if fn returns an error every write made
// through that context is discarded.
type Transactor interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Orders interface {
	InsertOrder(ctx context.Context, order *models.Order) error
	FindOrder(ctx context.Context, id primitive.ObjectID) (models.Order, error)
	ListOrders(ctx context.Context, filter OrderFilter, page Page) ([]models.Order, int64, error)
	SetOrderStatus(ctx context.Context, id primitive.ObjectID, status string, at time.Time) error
	DeleteOrder(ctx context.Context, id primitive.ObjectID) error
	CountOrdersByTransaction(ctx context.Context, transactionID primitive.ObjectID) (int64, error)
}

type Products interface {
	InsertProduct(ctx context.Context, product *models.Product) error
	FindProduct(ctx context.Context, id primitive.ObjectID) (models.Product, error)
	ListProducts(ctx context.Context, filter ProductFilter, page Page) ([]models.Product, int64, error)
	// UpdateProductDetails writes every field except sales_count and creator.
	UpdateProductDetails(ctx context.Context, product models.Product) error
	IncProductSales(ctx context.Context, id primitive.ObjectID, delta int) error
	SetProductSales(ctx context.Context, id primitive.ObjectID, count int) error
	SetProductRating(ctx context.Context, id primitive.ObjectID, rating float64, at time.Time) error
}

type Creators interface {
	InsertCreator(ctx context.Context, creator *models.Creator) error
	FindCreator(ctx context.Context, id primitive.ObjectID) (models.Creator, error)
	ListCreators(ctx context.Context) ([]models.Creator, error)
	IncCreatorSales(ctx context.Context, id primitive.ObjectID, delta float64) error
	SetCreatorSales(ctx context.Context, id primitive.ObjectID, total float64) error
}

type Coupons interface {
	InsertCoupon(ctx context.Context, coupon *models.Coupon) error
	FindCoupon(ctx context.Context, id primitive.ObjectID) (models.Coupon, error)
	FindCouponByCode(ctx context.Context, code string) (models.Coupon, error)
	ListCoupons(ctx context.Context, page Page) ([]models.Coupon, int64, error)
	ReplaceCoupon(ctx context.Context, coupon models.Coupon) error
	DeleteCoupon(ctx context.Context, id primitive.ObjectID) error
}

type Offers interface {
	InsertOffer(ctx context.Context, offer *models.Offer) error
	FindOffer(ctx context.Context, id primitive.ObjectID) (models.Offer, error)
	FindOfferByCode(ctx context.Context, code string) (models.Offer, error)
	ListOffers(ctx context.Context, page Page) ([]models.Offer, int64, error)
	ReplaceOffer(ctx context.Context, offer models.Offer) error
	DeleteOffer(ctx context.Context, id primitive.ObjectID) error
}

type Addresses interface {
	InsertAddress(ctx context.Context, address *models.Address) error
	FindAddress(ctx context.Context, id primitive.ObjectID) (models.Address, error)
	ListAddresses(ctx context.Context, userID primitive.ObjectID) ([]models.Address, error)
	ReplaceAddress(ctx context.Context, address models.Address) error
	DeleteAddress(ctx context.Context, id primitive.ObjectID) error
	ClearDefaultAddress(ctx context.Context, userID primitive.ObjectID) error
}

type Returns interface {
	InsertReturn(ctx context.Context, ret *models.Return) error
	FindReturn(ctx context.Context, id primitive.ObjectID) (models.Return, error)
	FindReturnByOrder(ctx context.Context, orderID primitive.ObjectID) (models.Return, error)
	ListReturns(ctx context.Context, filter ReturnFilter, page Page) ([]models.Return, int64, error)
	ReplaceReturn(ctx context.Context, ret models.Return) error
	DeleteReturn(ctx context.Context, id primitive.ObjectID) error
}

type Reviews interface {
	// InsertReview fails with ErrDuplicate when the user already reviewed the
	// product.
	InsertReview(ctx context.Context, review *models.Review) error
	FindReview(ctx context.Context, id primitive.ObjectID) (models.Review, error)
	ListReviews(ctx context.Context, filter ReviewFilter, page Page) ([]models.Review, int64, error)
	ReplaceReview(ctx context.Context, review models.Review) error
	DeleteReview(ctx context.Context, id primitive.ObjectID) error
}

type Transactions interface {
	// InsertTransaction fails with ErrDuplicate when the order or the ID
	// already has a transaction.
	InsertTransaction(ctx context.Context, tx *models.Transaction) error
	FindTransaction(ctx context.Context, id primitive.ObjectID) (models.Transaction, error)
	FindTransactionByOrder(ctx context.Context, orderID primitive.ObjectID) (models.Transaction, error)
	ListTransactions(ctx context.Context, filter TransactionFilter, page Page) ([]models.Transaction, int64, error)
	ReplaceTransaction(ctx context.Context, tx models.Transaction) error
	DeleteTransaction(ctx context.Context, id primitive.ObjectID) error
}

type Sessions interface {
	InsertSession(ctx context.Context, session *models.AuthSession) error
	FindSession(ctx context.Context, accessToken, refreshToken string) (models.AuthSession, error)
	DeleteSession(ctx context.Context, id primitive.ObjectID) error
}

type Users interface {
	InsertUser(ctx context.Context, user *models.User) error
	FindUser(ctx context.Context, id primitive.ObjectID) (models.User, error)
	FindUserByEmail(ctx context.Context, email string) (models.User, error)
	SetUserStatus(ctx context.Context, id primitive.ObjectID, active bool, at time.Time) error
}

type Categories interface {
	InsertCategory(ctx context.Context, category *models.Category) error
	FindCategory(ctx context.Context, id primitive.ObjectID) (models.Category, error)
	ListCategories(ctx context.Context, activeOnly bool) ([]models.Category, error)
	ReplaceCategory(ctx context.Context, category models.Category) error
}

type Ledger interface {
	AppendSettlementEvents(ctx context.Context, events []models.SettlementEvent) error
	ListSettlementEvents(ctx context.Context, filter LedgerFilter) ([]models.SettlementEvent, error)
}

// Store is the full persistence surface used by the HTTP layer.
type Store interface {
	Transactor
	Orders
	Products
	Creators
	Coupons
	Offers
	Addresses
	Returns
	Reviews
	Transactions
	Sessions
	Users
	Categories
	Ledger

	Ping(ctx context.Context) error
}
