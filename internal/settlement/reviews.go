package settlement

import (
	"context"
	"errors"
	"strconv"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/ZODIAC3K/refactor-capstone/internal/apperr"
	"github.com/ZODIAC3K/refactor-capstone/internal/auth"
	"github.com/ZODIAC3K/refactor-capstone/internal/logging"
	"github.com/ZODIAC3K/refactor-capstone/internal/models"
	"github.com/ZODIAC3K/refactor-capstone/internal/store"
)

// ReviewDraft is the input of CreateReview.
type ReviewDraft struct {
	ProductID primitive.ObjectID
	Message   string
	Rating    int
}

// ReviewChange is an update to a review. Nil fields are left unchanged.
type ReviewChange struct {
	ID      primitive.ObjectID
	Message *string
	Rating  *int
}

// ReviewStats summarises every review of one product.
type ReviewStats struct {
	AverageRating      float64        `json:"averageRating"`
	TotalReviews       int            `json:"totalReviews"`
	RatingDistribution map[string]int `json:"ratingDistribution"`
}

/* ===== WRITE ===== */

// CreateReview records actor's review of a product and refreshes the
// product's rating.
func (s *Service) CreateReview(ctx context.Context, actor auth.Actor, in ReviewDraft) (review models.Review, err error) {
	ctx, span := tracer.Start(ctx, "settlement.CreateReview")
	defer func() { finishSpan(span, err) }()
	span.SetAttributes(attribute.String("product.id", in.ProductID.Hex()))

	if err := requireActor(actor); err != nil {
		return models.Review{}, err
	}
	if err := checkRating(in.Rating); err != nil {
		return models.Review{}, err
	}

	err = s.store.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.store.FindProduct(ctx, in.ProductID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return apperr.New(apperr.NotFound, "Product not found")
			}
			return internal("Failed to load product", err)
		}

		now := s.now()
		review = models.Review{
			ProductID: in.ProductID,
			UserID:    actor.UserID,
			Message:   s.clean(in.Message),
			Rating:    in.Rating,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.store.InsertReview(ctx, &review); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return apperr.New(apperr.ValidationFailed, "You have already reviewed this product")
			}
			return internal("Failed to submit review", err)
		}
		return s.refreshRating(ctx, in.ProductID)
	})
	if err != nil {
		return models.Review{}, err
	}

	logging.FromContext(ctx).Info("review submitted",
		zap.String("reviewId", review.ID.Hex()),
		zap.String("productId", review.ProductID.Hex()),
		zap.Int("rating", review.Rating),
	)
	return review, nil
}

// UpdateReview changes the message or rating of actor's own review.
func (s *Service) UpdateReview(ctx context.Context, actor auth.Actor, in ReviewChange) (review models.Review, err error) {
	ctx, span := tracer.Start(ctx, "settlement.UpdateReview")
	defer func() { finishSpan(span, err) }()

	if err := requireActor(actor); err != nil {
		return models.Review{}, err
	}

	err = s.store.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		review, err = s.findReview(ctx, in.ID)
		if err != nil {
			return err
		}
		if !Can(actor, ActionEditReview, ReviewResource(review)) {
			return apperr.New(apperr.Forbidden, "Unauthorized to update this review")
		}
		if in.Rating != nil {
			if err := checkRating(*in.Rating); err != nil {
				return err
			}
			review.Rating = *in.Rating
		}
		if in.Message != nil {
			review.Message = s.clean(*in.Message)
		}
		review.UpdatedAt = s.now()
		if err := s.store.ReplaceReview(ctx, review); err != nil {
			return internal("Failed to update review", err)
		}
		if in.Rating == nil {
			return nil
		}
		return s.refreshRating(ctx, review.ProductID)
	})
	if err != nil {
		return models.Review{}, err
	}
	return review, nil
}

// DeleteReview removes a review and recomputes its product's rating. The
// author and administrators may delete.
func (s *Service) DeleteReview(ctx context.Context, actor auth.Actor, reviewID primitive.ObjectID) (err error) {
	ctx, span := tracer.Start(ctx, "settlement.DeleteReview")
	defer func() { finishSpan(span, err) }()

	if err := requireActor(actor); err != nil {
		return err
	}

	return s.store.RunInTx(ctx, func(ctx context.Context) error {
		review, err := s.findReview(ctx, reviewID)
		if err != nil {
			return err
		}
		if !Can(actor, ActionDeleteReview, ReviewResource(review)) {
			return apperr.New(apperr.Forbidden, "Unauthorized to delete this review")
		}
		if err := s.store.DeleteReview(ctx, review.ID); err != nil {
			return internal("Failed to delete review", err)
		}
		return s.refreshRating(ctx, review.ProductID)
	})
}

/* ===== READ ===== */

// GetReview returns a single review. Reviews are public.
func (s *Service) GetReview(ctx context.Context, reviewID primitive.ObjectID) (models.Review, error) {
	return s.findReview(ctx, reviewID)
}

// ListReviews returns a page of reviews, newest first. Stats are computed
// when the filter names a product.
func (s *Service) ListReviews(ctx context.Context, filter store.ReviewFilter, page store.Page) ([]models.Review, int64, *ReviewStats, error) {
	reviews, total, err := s.store.ListReviews(ctx, filter, page)
	if err != nil {
		return nil, 0, nil, internal("Failed to fetch reviews", err)
	}
	if filter.ProductID == nil {
		return reviews, total, nil, nil
	}
	all, _, err := s.store.ListReviews(ctx, store.ReviewFilter{ProductID: filter.ProductID}, store.Page{})
	if err != nil {
		return nil, 0, nil, internal("Failed to fetch reviews", err)
	}
	stats := summarize(all)
	return reviews, total, &stats, nil
}

// refreshRating stores the mean rating of the product's reviews, or zero
// when none remain.
func (s *Service) refreshRating(ctx context.Context, productID primitive.ObjectID) error {
	reviews, _, err := s.store.ListReviews(ctx, store.ReviewFilter{ProductID: &productID}, store.Page{})
	if err != nil {
		return internal("Failed to load reviews", err)
	}
	err = s.store.SetProductRating(ctx, productID, summarize(reviews).AverageRating, s.now())
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return internal("Failed to update product rating", err)
	}
	return nil
}

func (s *Service) findReview(ctx context.Context, reviewID primitive.ObjectID) (models.Review, error) {
	review, err := s.store.FindReview(ctx, reviewID)
	if errors.Is(err, store.ErrNotFound) {
		return models.Review{}, apperr.New(apperr.NotFound, "Review not found")
	}
	if err != nil {
		return models.Review{}, internal("Failed to load review", err)
	}
	return review, nil
}

func checkRating(rating int) error {
	if rating < models.MinReviewRating || rating > models.MaxReviewRating {
		return apperr.New(apperr.ValidationFailed, "Rating must be an integer between 1 and 5")
	}
	return nil
}

// summarize averages ratings to one decimal place.
func summarize(reviews []models.Review) ReviewStats {
	stats := ReviewStats{
		TotalReviews:       len(reviews),
		RatingDistribution: make(map[string]int, models.MaxReviewRating),
	}
	for r := models.MinReviewRating; r <= models.MaxReviewRating; r++ {
		stats.RatingDistribution[strconv.Itoa(r)] = 0
	}
	if len(reviews) == 0 {
		return stats
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
		stats.RatingDistribution[strconv.Itoa(r.Rating)]++
	}
	stats.AverageRating = decimal.NewFromInt(int64(sum)).
		Div(decimal.NewFromInt(int64(len(reviews)))).
		Round(1).
		InexactFloat64()
	return stats
}
