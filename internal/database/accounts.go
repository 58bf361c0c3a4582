package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ZODIAC3K/refactor-capstone/internal/models"
)

/* ===== ADDRESSES ===== */

func (s *MongoStore) InsertAddress(ctx context.Context, address *models.Address) error {
	if address.ID.IsZero() {
		address.ID = primitive.NewObjectID()
	}
	return insert(ctx, s.col(CollectionAddresses), address)
}

func (s *MongoStore) FindAddress(ctx context.Context, id primitive.ObjectID) (models.Address, error) {
	return findOne[models.Address](ctx, s.col(CollectionAddresses), bson.M{"_id": id})
}

func (s *MongoStore) ListAddresses(ctx context.Context, userID primitive.ObjectID) ([]models.Address, error) {
	return findAll[models.Address](ctx, s.col(CollectionAddresses), bson.M{"user_id": userID}, options.Find().SetSort(newestFirst))
}

func (s *MongoStore) ReplaceAddress(ctx context.Context, address models.Address) error {
	return replaceByID(ctx, s.col(CollectionAddresses), address.ID, address)
}

func (s *MongoStore) DeleteAddress(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, s.col(CollectionAddresses), id)
}

func (s *MongoStore) ClearDefaultAddress(ctx context.Context, userID primitive.ObjectID) error {
	_, err := s.col(CollectionAddresses).UpdateMany(ctx,
		bson.M{"user_id": userID, "default": true},
		bson.M{"$set": bson.M{"default": false}},
	)
	return mapErr("clear default address", err)
}

/* ===== SESSIONS & USERS ===== */

func (s *MongoStore) InsertSession(ctx context.Context, session *models.AuthSession) error {
	if session.ID.IsZero() {
		session.ID = primitive.NewObjectID()
	}
	return insert(ctx, s.col(CollectionSessions), session)
}

func (s *MongoStore) FindSession(ctx context.Context, accessToken, refreshToken string) (models.AuthSession, error) {
	return findOne[models.AuthSession](ctx, s.col(CollectionSessions), bson.M{
		"accessToken":  accessToken,
		"refreshToken": refreshToken,
	})
}

func (s *MongoStore) DeleteSession(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, s.col(CollectionSessions), id)
}

func (s *MongoStore) InsertUser(ctx context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	return insert(ctx, s.col(CollectionUsers), user)
}

func (s *MongoStore) FindUser(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	return findOne[models.User](ctx, s.col(CollectionUsers), bson.M{"_id": id})
}

func (s *MongoStore) FindUserByEmail(ctx context.Context, email string) (models.User, error) {
	return findOne[models.User](ctx, s.col(CollectionUsers), bson.M{"email": email})
}

func (s *MongoStore) SetUserStatus(ctx context.Context, id primitive.ObjectID, active bool, at time.Time) error {
	return updateByID(ctx, s.col(CollectionUsers), id, bson.M{
		"$set": bson.M{"status": active, "modified_at": at},
	})
}
