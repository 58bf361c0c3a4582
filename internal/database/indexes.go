package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// EnsureIndexes creates every index the store relies on. Unique indexes back
// the duplicate checks of returns, reviews, payment transactions, coupons,
// offers, users and categories.
func EnsureIndexes(db *mongo.Database) error {
	steps := []func(*mongo.Database) error{
		EnsureOrderIndexes,
		EnsureReturnIndexes,
		EnsureReviewIndexes,
		EnsureTransactionIndexes,
		EnsureDiscountIndexes,
		EnsureUserIndexes,
		EnsureCategoryIndexes,
		EnsureLedgerIndexes,
	}
	for _, step := range steps {
		if err := step(db); err != nil {
			return err
		}
	}
	return nil
}

func createIndexes(db *mongo.Database, collection string, indexModels ...mongo.IndexModel) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	names, err := db.Collection(collection).Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		zap.L().Error("index creation failed", zap.String("collection", collection), zap.Error(err))
		return err
	}
	zap.L().Info("indexes ensured", zap.String("collection", collection), zap.Strings("indexes", names))
	return nil
}

func EnsureOrderIndexes(db *mongo.Database) error {
	return createIndexes(db, CollectionOrders,
		mongo.IndexModel{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("user_id_createdAt"),
		},
		mongo.IndexModel{
			Keys:    bson.D{{Key: "transcation_id", Value: 1}},
			Options: options.Index().SetName("transcation_id_index"),
		},
	)
}

func EnsureReturnIndexes(db *mongo.Database) error {
	return createIndexes(db, CollectionReturns,
		mongo.IndexModel{
			Keys:    bson.D{{Key: "order_id", Value: 1}},
			Options: options.Index().SetName("order_id_unique").SetUnique(true),
		},
		mongo.IndexModel{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("user_id_createdAt"),
		},
	)
}

func EnsureReviewIndexes(db *mongo.Database) error {
	return createIndexes(db, CollectionReviews,
		mongo.IndexModel{
			Keys:    bson.D{{Key: "product_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetName("product_id_user_id_unique").SetUnique(true),
		},
		mongo.IndexModel{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("user_id_createdAt"),
		},
	)
}

func EnsureTransactionIndexes(db *mongo.Database) error {
	return createIndexes(db, CollectionTransactions,
		mongo.IndexModel{
			Keys:    bson.D{{Key: "order_id", Value: 1}},
			Options: options.Index().SetName("order_id_unique").SetUnique(true),
		},
		mongo.IndexModel{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("user_id_createdAt"),
		},
	)
}

func EnsureDiscountIndexes(db *mongo.Database) error {
	if err := createIndexes(db, CollectionCoupons,
		mongo.IndexModel{
			Keys:    bson.D{{Key: "code", Value: 1}},
			Options: options.Index().SetName("code_unique").SetUnique(true),
		},
	); err != nil {
		return err
	}
	return createIndexes(db, CollectionOffers,
		mongo.IndexModel{
			Keys: bson.D{{Key: "code", Value: 1}},
			Options: options.Index().
				SetName("code_unique").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{
					"code": bson.M{"$gt": ""},
				}),
		},
	)
}

func EnsureUserIndexes(db *mongo.Database) error {
	if err := createIndexes(db, CollectionUsers,
		mongo.IndexModel{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("email_unique").SetUnique(true),
		},
	); err != nil {
		return err
	}
	if err := createIndexes(db, CollectionAddresses,
		mongo.IndexModel{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetName("user_id_index"),
		},
	); err != nil {
		return err
	}
	return createIndexes(db, CollectionSessions,
		mongo.IndexModel{
			Keys:    bson.D{{Key: "accessToken", Value: 1}, {Key: "refreshToken", Value: 1}},
			Options: options.Index().SetName("token_pair"),
		},
	)
}

func EnsureCategoryIndexes(db *mongo.Database) error {
	return createIndexes(db, CollectionCategories,
		mongo.IndexModel{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetName("name_unique").SetUnique(true),
		},
	)
}

func EnsureLedgerIndexes(db *mongo.Database) error {
	return createIndexes(db, CollectionLedger,
		mongo.IndexModel{
			Keys:    bson.D{{Key: "order_id", Value: 1}},
			Options: options.Index().SetName("order_id_index"),
		},
		mongo.IndexModel{
			Keys:    bson.D{{Key: "product_id", Value: 1}},
			Options: options.Index().SetName("product_id_index"),
		},
		mongo.IndexModel{
			Keys:    bson.D{{Key: "creator_id", Value: 1}},
			Options: options.Index().SetName("creator_id_index"),
		},
	)
}
