package database

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ZODIAC3K/refactor-capstone/internal/models"
	"github.com/ZODIAC3K/refactor-capstone/internal/store"
)

/* ===== PRODUCTS ===== */

func (s *MongoStore) InsertProduct(ctx context.Context, product *models.Product) error {
	if product.ID.IsZero() {
		product.ID = primitive.NewObjectID()
	}
	return insert(ctx, s.col(CollectionProducts), product)
}

func (s *MongoStore) FindProduct(ctx context.Context, id primitive.ObjectID) (models.Product, error) {
	return findOne[models.Product](ctx, s.col(CollectionProducts), bson.M{"_id": id})
}

func (s *MongoStore) ListProducts(ctx context.Context, filter store.ProductFilter, page store.Page) ([]models.Product, int64, error) {
	query := bson.M{}
	if filter.CreatorID != nil {
		query["creator"] = *filter.CreatorID
	}
	if filter.CategoryID != nil {
		// matches both the single-id and the array form of category
		query["category"] = *filter.CategoryID
	}
	return findPage[models.Product](ctx, s.col(CollectionProducts), query, page)
}

func (s *MongoStore) UpdateProductDetails(ctx context.Context, product models.Product) error {
	return updateByID(ctx, s.col(CollectionProducts), product.ID, bson.M{
		"$set": bson.M{
			"title":       product.Title,
			"description": product.Description,
			"category":    product.Category,
			"price":       product.Price,
			"rating":      product.Rating,
			"updatedAt":   product.UpdatedAt,
		},
	})
}

func (s *MongoStore) IncProductSales(ctx context.Context, id primitive.ObjectID, delta int) error {
	return updateByID(ctx, s.col(CollectionProducts), id, bson.M{
		"$inc": bson.M{"sales_count": delta},
	})
}

func (s *MongoStore) SetProductSales(ctx context.Context, id primitive.ObjectID, count int) error {
	return updateByID(ctx, s.col(CollectionProducts), id, bson.M{
		"$set": bson.M{"sales_count": count},
	})
}

/* ===== CREATORS ===== */

func (s *MongoStore) InsertCreator(ctx context.Context, creator *models.Creator) error {
	if creator.ID.IsZero() {
		creator.ID = primitive.NewObjectID()
	}
	return insert(ctx, s.col(CollectionCreators), creator)
}

func (s *MongoStore) FindCreator(ctx context.Context, id primitive.ObjectID) (models.Creator, error) {
	return findOne[models.Creator](ctx, s.col(CollectionCreators), bson.M{"_id": id})
}

func (s *MongoStore) ListCreators(ctx context.Context) ([]models.Creator, error) {
	return findAll[models.Creator](ctx, s.col(CollectionCreators), bson.M{}, options.Find().SetSort(newestFirst))
}

func (s *MongoStore) IncCreatorSales(ctx context.Context, id primitive.ObjectID, delta float64) error {
	return updateByID(ctx, s.col(CollectionCreators), id, bson.M{
		"$inc": bson.M{"totalSales": delta},
	})
}

func (s *MongoStore) SetCreatorSales(ctx context.Context, id primitive.ObjectID, total float64) error {
	return updateByID(ctx, s.col(CollectionCreators), id, bson.M{
		"$set": bson.M{"totalSales": total},
	})
}

/* ===== CATEGORIES ===== */

func (s *MongoStore) InsertCategory(ctx context.Context, category *models.Category) error {
	if category.ID.IsZero() {
		category.ID = primitive.NewObjectID()
	}
	return insert(ctx, s.col(CollectionCategories), category)
}

func (s *MongoStore) FindCategory(ctx context.Context, id primitive.ObjectID) (models.Category, error) {
	return findOne[models.Category](ctx, s.col(CollectionCategories), bson.M{"_id": id})
}

func (s *MongoStore) ListCategories(ctx context.Context, activeOnly bool) ([]models.Category, error) {
	query := bson.M{}
	if activeOnly {
		query["isActive"] = true
	}
	return findAll[models.Category](ctx, s.col(CollectionCategories), query, options.Find().SetSort(newestFirst))
}

func (s *MongoStore) ReplaceCategory(ctx context.Context, category models.Category) error {
	return replaceByID(ctx, s.col(CollectionCategories), category.ID, category)
}
