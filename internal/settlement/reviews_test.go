package settlement

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ZODIAC3K/refactor-capstone/internal/apperr"
	"github.com/ZODIAC3K/refactor-capstone/internal/auth"
	"github.com/ZODIAC3K/refactor-capstone/internal/models"
	"github.com/ZODIAC3K/refactor-capstone/internal/store"
)

func (f *fixture) rating(t *testing.T) float64 {
	t.Helper()
	p, err := f.st.FindProduct(f.ctx, f.product.ID)
	require.NoError(t, err)
	return p.Rating
}

func TestReviewsDriveProductRating(t *testing.T) {
	f := newFixture(t)
	second := auth.Actor{UserID: primitive.NewObjectID(), Role: models.RoleUser}
	third := auth.Actor{UserID: primitive.NewObjectID(), Role: models.RoleUser}

	first, err := f.svc.CreateReview(f.ctx, f.buyer, ReviewDraft{ProductID: f.product.ID, Message: "<script>x</script>Soft fabric", Rating: 5})
	require.NoError(t, err)
	require.Equal(t, "Soft fabric", first.Message)
	require.Equal(t, 5.0, f.rating(t))

	_, err = f.svc.CreateReview(f.ctx, second, ReviewDraft{ProductID: f.product.ID, Rating: 4})
	require.NoError(t, err)
	last, err := f.svc.CreateReview(f.ctx, third, ReviewDraft{ProductID: f.product.ID, Rating: 4})
	require.NoError(t, err)
	require.Equal(t, 4.3, f.rating(t))

	two := 2
	updated, err := f.svc.UpdateReview(f.ctx, f.buyer, ReviewChange{ID: first.ID, Rating: &two})
	require.NoError(t, err)
	require.Equal(t, 2, updated.Rating)
	require.Equal(t, "Soft fabric", updated.Message)
	require.Equal(t, 3.3, f.rating(t))

	require.NoError(t, f.svc.DeleteReview(f.ctx, f.buyer, first.ID))
	require.Equal(t, 4.0, f.rating(t))
	require.NoError(t, f.svc.DeleteReview(f.ctx, f.admin, last.ID))

	_, _, stats, err := f.svc.ListReviews(f.ctx, store.ReviewFilter{ProductID: &f.product.ID}, store.Page{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Equal(t, 1, stats.TotalReviews)
	require.Equal(t, 4.0, stats.AverageRating)
	require.Equal(t, map[string]int{"1": 0, "2": 0, "3": 0, "4": 1, "5": 0}, stats.RatingDistribution)

	reviews, _, _, err := f.svc.ListReviews(f.ctx, store.ReviewFilter{UserID: &second.UserID}, store.Page{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	require.NoError(t, f.svc.DeleteReview(f.ctx, second, reviews[0].ID))
	require.Zero(t, f.rating(t))
}

func TestCreateReviewGuards(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateReview(f.ctx, f.buyer, ReviewDraft{ProductID: f.product.ID, Rating: 6})
	require.True(t, apperr.Is(err, apperr.ValidationFailed))
	require.Equal(t, "Rating must be an integer between 1 and 5", apperr.Message(err))

	_, err = f.svc.CreateReview(f.ctx, f.buyer, ReviewDraft{ProductID: primitive.NewObjectID(), Rating: 3})
	require.True(t, apperr.Is(err, apperr.NotFound))

	_, err = f.svc.CreateReview(f.ctx, auth.Actor{}, ReviewDraft{ProductID: f.product.ID, Rating: 3})
	require.True(t, apperr.Is(err, apperr.AuthenticationMissing))

	_, err = f.svc.CreateReview(f.ctx, f.buyer, ReviewDraft{ProductID: f.product.ID, Rating: 3})
	require.NoError(t, err)
	_, err = f.svc.CreateReview(f.ctx, f.buyer, ReviewDraft{ProductID: f.product.ID, Rating: 1})
	require.True(t, apperr.Is(err, apperr.ValidationFailed))
	require.Equal(t, "You have already reviewed this product", apperr.Message(err))
	require.Equal(t, 3.0, f.rating(t))
}

func TestReviewOwnership(t *testing.T) {
	f := newFixture(t)
	stranger := auth.Actor{UserID: primitive.NewObjectID(), Role: models.RoleUser}

	review, err := f.svc.CreateReview(f.ctx, f.buyer, ReviewDraft{ProductID: f.product.ID, Message: "ok", Rating: 4})
	require.NoError(t, err)

	msg := "changed"
	_, err = f.svc.UpdateReview(f.ctx, stranger, ReviewChange{ID: review.ID, Message: &msg})
	require.True(t, apperr.Is(err, apperr.Forbidden))
	require.Equal(t, "Unauthorized to update this review", apperr.Message(err))

	_, err = f.svc.UpdateReview(f.ctx, f.admin, ReviewChange{ID: review.ID, Message: &msg})
	require.True(t, apperr.Is(err, apperr.Forbidden))

	err = f.svc.DeleteReview(f.ctx, stranger, review.ID)
	require.True(t, apperr.Is(err, apperr.Forbidden))
	require.Equal(t, "Unauthorized to delete this review", apperr.Message(err))

	bad := 0
	_, err = f.svc.UpdateReview(f.ctx, f.buyer, ReviewChange{ID: review.ID, Rating: &bad})
	require.True(t, apperr.Is(err, apperr.ValidationFailed))

	got, err := f.svc.GetReview(f.ctx, review.ID)
	require.NoError(t, err)
	require.Equal(t, "ok", got.Message)
	require.Equal(t, 4, got.Rating)

	_, err = f.svc.GetReview(f.ctx, primitive.NewObjectID())
	require.True(t, apperr.Is(err, apperr.NotFound))
	require.Equal(t, "Review not found", apperr.Message(err))
}
