package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ZODIAC3K/refactor-capstone/internal/models"
	"github.com/ZODIAC3K/refactor-capstone/internal/store"
)

/* ===== REVIEWS ===== */

func (s *MongoStore) InsertReview(ctx context.Context, review *models.Review) error {
	if review.ID.IsZero() {
		review.ID = primitive.NewObjectID()
	}
	return insert(ctx, s.col(CollectionReviews), review)
}

func (s *MongoStore) FindReview(ctx context.Context, id primitive.ObjectID) (models.Review, error) {
	return findOne[models.Review](ctx, s.col(CollectionReviews), bson.M{"_id": id})
}

func (s *MongoStore) ListReviews(ctx context.Context, filter store.ReviewFilter, page store.Page) ([]models.Review, int64, error) {
	query := bson.M{}
	if filter.ProductID != nil {
		query["product_id"] = *filter.ProductID
	}
	if filter.UserID != nil {
		query["user_id"] = *filter.UserID
	}
	return findPage[models.Review](ctx, s.col(CollectionReviews), query, page)
}

func (s *MongoStore) ReplaceReview(ctx context.Context, review models.Review) error {
	return replaceByID(ctx, s.col(CollectionReviews), review.ID, review)
}

func (s *MongoStore) DeleteReview(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, s.col(CollectionReviews), id)
}

func (s *MongoStore) SetProductRating(ctx context.Context, id primitive.ObjectID, rating float64, at time.Time) error {
	return updateByID(ctx, s.col(CollectionProducts), id, bson.M{
		"$set": bson.M{"rating": rating, "updatedAt": at},
	})
}

/* ===== TRANSACTIONS ===== */

func (s *MongoStore) InsertTransaction(ctx context.Context, tx *models.Transaction) error {
	if tx.ID.IsZero() {
		tx.ID = primitive.NewObjectID()
	}
	return insert(ctx, s.col(CollectionTransactions), tx)
}

func (s *MongoStore) FindTransaction(ctx context.Context, id primitive.ObjectID) (models.Transaction, error) {
	return findOne[models.Transaction](ctx, s.col(CollectionTransactions), bson.M{"_id": id})
}

func (s *MongoStore) FindTransactionByOrder(ctx context.Context, orderID primitive.ObjectID) (models.Transaction, error) {
	return findOne[models.Transaction](ctx, s.col(CollectionTransactions), bson.M{"order_id": orderID})
}

func (s *MongoStore) ListTransactions(ctx context.Context, filter store.TransactionFilter, page store.Page) ([]models.Transaction, int64, error) {
	query := bson.M{}
	if filter.UserID != nil {
		query["user_id"] = *filter.UserID
	}
	return findPage[models.Transaction](ctx, s.col(CollectionTransactions), query, page)
}

func (s *MongoStore) ReplaceTransaction(ctx context.Context, tx models.Transaction) error {
	return replaceByID(ctx, s.col(CollectionTransactions), tx.ID, tx)
}

func (s *MongoStore) DeleteTransaction(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, s.col(CollectionTransactions), id)
}
