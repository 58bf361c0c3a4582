package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/ZODIAC3K/refactor-capstone/internal/store"
)

// Collection names.
const (
	CollectionOrders       = "orders"
	CollectionProducts     = "products"
	CollectionCreators     = "creators"
	CollectionCoupons      = "coupons"
	CollectionOffers       = "offers"
	CollectionAddresses    = "addresses"
	CollectionReturns      = "returns"
	CollectionReviews      = "reviews"
	CollectionTransactions = "transactions"
	CollectionSessions     = "auths"
	CollectionUsers        = "users"
	CollectionCategories   = "categories"
	CollectionLedger       = "settlement_ledger"
)

// MongoStore implements store.Store on a MongoDB database. Transactions need
// a replica set or sharded cluster.
type MongoStore struct {
	db *mongo.Database
}

var _ store.Store = (*MongoStore)(nil)

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db}
}

func (s *MongoStore) col(name string) *mongo.Collection {
	return s.db.Collection(name)
}

// RunInTx runs fn in a multi-document transaction. A ctx that already carries
// a session joins it.
func (s *MongoStore) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if mongo.SessionFromContext(ctx) != nil {
		return fn(ctx)
	}

	session, err := s.db.Client().StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessCtx)
	})
	return err
}

func (s *MongoStore) Ping(ctx context.Context) error {
	checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.db.Client().Ping(checkCtx, readpref.Primary())
}

// mapErr translates driver errors into store sentinels.
func mapErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return store.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return store.ErrDuplicate
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func findOne[T any](ctx context.Context, col *mongo.Collection, filter any) (T, error) {
	var out T
	err := col.FindOne(ctx, filter).Decode(&out)
	return out, mapErr("find "+col.Name(), err)
}

func findAll[T any](ctx context.Context, col *mongo.Collection, filter any, opts *options.FindOptions) ([]T, error) {
	cursor, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, mapErr("find "+col.Name(), err)
	}
	defer cursor.Close(ctx)

	out := make([]T, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", col.Name(), err)
	}
	return out, nil
}

// findPage returns one page sorted newest first together with the total
// number of matching documents.
func findPage[T any](ctx context.Context, col *mongo.Collection, filter any, page store.Page) ([]T, int64, error) {
	total, err := col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, mapErr("count "+col.Name(), err)
	}
	opts := options.Find().SetSort(newestFirst)
	if page.Limit > 0 {
		opts.SetSkip(page.Skip()).SetLimit(page.Limit)
	}
	items, err := findAll[T](ctx, col, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

var newestFirst = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}

// updateByID applies update to the document with id and reports ErrNotFound
// when nothing matched.
func updateByID(ctx context.Context, col *mongo.Collection, id any, update any) error {
	res, err := col.UpdateByID(ctx, id, update)
	if err != nil {
		return mapErr("update "+col.Name(), err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func replaceByID(ctx context.Context, col *mongo.Collection, id any, doc any) error {
	res, err := col.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		return mapErr("replace "+col.Name(), err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func deleteByID(ctx context.Context, col *mongo.Collection, id any) error {
	res, err := col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return mapErr("delete "+col.Name(), err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func insert(ctx context.Context, col *mongo.Collection, doc any) error {
	_, err := col.InsertOne(ctx, doc)
	return mapErr("insert "+col.Name(), err)
}
