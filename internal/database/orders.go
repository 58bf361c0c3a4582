package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ZODIAC3K/refactor-capstone/internal/models"
	"github.com/ZODIAC3K/refactor-capstone/internal/store"
)

/* ===== ORDERS ===== */

func (s *MongoStore) InsertOrder(ctx context.Context, order *models.Order) error {
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	return insert(ctx, s.col(CollectionOrders), order)
}

func (s *MongoStore) FindOrder(ctx context.Context, id primitive.ObjectID) (models.Order, error) {
	return findOne[models.Order](ctx, s.col(CollectionOrders), bson.M{"_id": id})
}

func (s *MongoStore) ListOrders(ctx context.Context, filter store.OrderFilter, page store.Page) ([]models.Order, int64, error) {
	query := bson.M{}
	if filter.UserID != nil {
		query["user_id"] = *filter.UserID
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	return findPage[models.Order](ctx, s.col(CollectionOrders), query, page)
}

func (s *MongoStore) SetOrderStatus(ctx context.Context, id primitive.ObjectID, status string, at time.Time) error {
	return updateByID(ctx, s.col(CollectionOrders), id, bson.M{
		"$set": bson.M{"status": status, "updatedAt": at},
	})
}

func (s *MongoStore) DeleteOrder(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, s.col(CollectionOrders), id)
}

func (s *MongoStore) CountOrdersByTransaction(ctx context.Context, transactionID primitive.ObjectID) (int64, error) {
	n, err := s.col(CollectionOrders).CountDocuments(ctx, bson.M{"transcation_id": transactionID})
	return n, mapErr("count orders", err)
}

/* ===== RETURNS ===== */

func (s *MongoStore) InsertReturn(ctx context.Context, ret *models.Return) error {
	if ret.ID.IsZero() {
		ret.ID = primitive.NewObjectID()
	}
	return insert(ctx, s.col(CollectionReturns), ret)
}

func (s *MongoStore) FindReturn(ctx context.Context, id primitive.ObjectID) (models.Return, error) {
	return findOne[models.Return](ctx, s.col(CollectionReturns), bson.M{"_id": id})
}

func (s *MongoStore) FindReturnByOrder(ctx context.Context, orderID primitive.ObjectID) (models.Return, error) {
	return findOne[models.Return](ctx, s.col(CollectionReturns), bson.M{"order_id": orderID})
}

func (s *MongoStore) ListReturns(ctx context.Context, filter store.ReturnFilter, page store.Page) ([]models.Return, int64, error) {
	query := bson.M{}
	if filter.UserID != nil {
		query["user_id"] = *filter.UserID
	}
	if filter.OrderID != nil {
		query["order_id"] = *filter.OrderID
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	return findPage[models.Return](ctx, s.col(CollectionReturns), query, page)
}

func (s *MongoStore) ReplaceReturn(ctx context.Context, ret models.Return) error {
	return replaceByID(ctx, s.col(CollectionReturns), ret.ID, ret)
}

func (s *MongoStore) DeleteReturn(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, s.col(CollectionReturns), id)
}

/* ===== LEDGER ===== */

func (s *MongoStore) AppendSettlementEvents(ctx context.Context, events []models.SettlementEvent) error {
	if len(events) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(events))
	for _, ev := range events {
		docs = append(docs, ev)
	}
	_, err := s.col(CollectionLedger).InsertMany(ctx, docs)
	return mapErr("append ledger", err)
}

func (s *MongoStore) ListSettlementEvents(ctx context.Context, filter store.LedgerFilter) ([]models.SettlementEvent, error) {
	query := bson.M{}
	if filter.OrderID != nil {
		query["order_id"] = *filter.OrderID
	}
	if filter.ProductID != nil {
		query["product_id"] = *filter.ProductID
	}
	if filter.CreatorID != nil {
		query["creator_id"] = *filter.CreatorID
	}
	if filter.Kind != "" {
		query["kind"] = filter.Kind
	}
	opts := options.Find().SetSort(bson.D{{Key: "at", Value: 1}, {Key: "_id", Value: 1}})
	return findAll[models.SettlementEvent](ctx, s.col(CollectionLedger), query, opts)
}
