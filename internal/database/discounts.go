package database

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ZODIAC3K/refactor-capstone/internal/models"
	"github.com/ZODIAC3K/refactor-capstone/internal/store"
)

/* ===== COUPONS ===== */

func (s *MongoStore) InsertCoupon(ctx context.Context, coupon *models.Coupon) error {
	if coupon.ID.IsZero() {
		coupon.ID = primitive.NewObjectID()
	}
	return insert(ctx, s.col(CollectionCoupons), coupon)
}

func (s *MongoStore) FindCoupon(ctx context.Context, id primitive.ObjectID) (models.Coupon, error) {
	return findOne[models.Coupon](ctx, s.col(CollectionCoupons), bson.M{"_id": id})
}

func (s *MongoStore) FindCouponByCode(ctx context.Context, code string) (models.Coupon, error) {
	return findOne[models.Coupon](ctx, s.col(CollectionCoupons), bson.M{"code": code})
}

func (s *MongoStore) ListCoupons(ctx context.Context, page store.Page) ([]models.Coupon, int64, error) {
	return findPage[models.Coupon](ctx, s.col(CollectionCoupons), bson.M{}, page)
}

func (s *MongoStore) ReplaceCoupon(ctx context.Context, coupon models.Coupon) error {
	return replaceByID(ctx, s.col(CollectionCoupons), coupon.ID, coupon)
}

func (s *MongoStore) DeleteCoupon(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, s.col(CollectionCoupons), id)
}

/* ===== OFFERS ===== */

func (s *MongoStore) InsertOffer(ctx context.Context, offer *models.Offer) error {
	if offer.ID.IsZero() {
		offer.ID = primitive.NewObjectID()
	}
	return insert(ctx, s.col(CollectionOffers), offer)
}

func (s *MongoStore) FindOffer(ctx context.Context, id primitive.ObjectID) (models.Offer, error) {
	return findOne[models.Offer](ctx, s.col(CollectionOffers), bson.M{"_id": id})
}

func (s *MongoStore) FindOfferByCode(ctx context.Context, code string) (models.Offer, error) {
	return findOne[models.Offer](ctx, s.col(CollectionOffers), bson.M{"code": code})
}

func (s *MongoStore) ListOffers(ctx context.Context, page store.Page) ([]models.Offer, int64, error) {
	return findPage[models.Offer](ctx, s.col(CollectionOffers), bson.M{}, page)
}

func (s *MongoStore) ReplaceOffer(ctx context.Context, offer models.Offer) error {
	return replaceByID(ctx, s.col(CollectionOffers), offer.ID, offer)
}

func (s *MongoStore) DeleteOffer(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, s.col(CollectionOffers), id)
}
