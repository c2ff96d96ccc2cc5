package services_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/rameshmuthu-dev/mobilemania-backend/models"
	"github.com/rameshmuthu-dev/mobilemania-backend/services"
)

func newReviewFixture(t *testing.T) (*services.ReviewService, *memReviewRepo, *memProductRepo, *models.Product) {
	t.Helper()
	reviewRepo := newMemReviewRepo()
	productRepo := newMemProductRepo()
	product := productRepo.add(&models.Product{Name: "Galaxy S24", Price: 900, CountInStock: 5})
	svc := services.NewReviewService(reviewRepo, productRepo, zap.NewNop())
	return svc, reviewRepo, productRepo, product
}

func TestCreateReview_UpdatesProductRating(t *testing.T) {
	svc, _, productRepo, product := newReviewFixture(t)

	_, svcErr := svc.CreateReview(context.Background(), primitive.NewObjectID().Hex(), "Asha", product.ID.Hex(), &services.CreateReviewRequest{Rating: 4, Comment: "Solid phone"})
	require.Nil(t, svcErr)

	got, err := productRepo.FindByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.0, got.Rating)
	assert.Equal(t, 1, got.NumReviews)

	_, svcErr = svc.CreateReview(context.Background(), primitive.NewObjectID().Hex(), "Vikram", product.ID.Hex(), &services.CreateReviewRequest{Rating: 5, Comment: "Love it"})
	require.Nil(t, svcErr)

	got, err = productRepo.FindByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.5, got.Rating)
	assert.Equal(t, 2, got.NumReviews)
}

func TestCreateReview_DuplicatePerUser(t *testing.T) {
	svc, _, _, product := newReviewFixture(t)
	userID := primitive.NewObjectID().Hex()

	_, svcErr := svc.CreateReview(context.Background(), userID, "Asha", product.ID.Hex(), &services.CreateReviewRequest{Rating: 4, Comment: "Good"})
	require.Nil(t, svcErr)

	_, svcErr = svc.CreateReview(context.Background(), userID, "Asha", product.ID.Hex(), &services.CreateReviewRequest{Rating: 5, Comment: "Changed my mind"})
	require.NotNil(t, svcErr)
	assert.Equal(t, http.StatusConflict, svcErr.StatusCode)
}

func TestCreateReview_ProductNotFound(t *testing.T) {
	svc, _, _, _ := newReviewFixture(t)

	_, svcErr := svc.CreateReview(context.Background(), primitive.NewObjectID().Hex(), "Asha", primitive.NewObjectID().Hex(), &services.CreateReviewRequest{Rating: 3, Comment: "?"})
	require.NotNil(t, svcErr)
	assert.Equal(t, http.StatusNotFound, svcErr.StatusCode)
}

func TestUpdateReview_AuthorOnly(t *testing.T) {
	svc, _, productRepo, product := newReviewFixture(t)
	author := primitive.NewObjectID().Hex()

	review, svcErr := svc.CreateReview(context.Background(), author, "Asha", product.ID.Hex(), &services.CreateReviewRequest{Rating: 2, Comment: "Meh"})
	require.Nil(t, svcErr)

	_, svcErr = svc.UpdateReview(context.Background(), primitive.NewObjectID().Hex(), review.ID.Hex(), &services.UpdateReviewRequest{Rating: 5, Comment: "Hijacked"})
	require.NotNil(t, svcErr)
	assert.Equal(t, http.StatusUnauthorized, svcErr.StatusCode)

	updated, svcErr := svc.UpdateReview(context.Background(), author, review.ID.Hex(), &services.UpdateReviewRequest{Rating: 4, Comment: "Grew on me"})
	require.Nil(t, svcErr)
	assert.Equal(t, 4.0, updated.Rating)

	got, err := productRepo.FindByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.0, got.Rating)
}

func TestDeleteReview_RecomputesRating(t *testing.T) {
	svc, _, productRepo, product := newReviewFixture(t)
	author := primitive.NewObjectID().Hex()

	four, svcErr := svc.CreateReview(context.Background(), author, "Asha", product.ID.Hex(), &services.CreateReviewRequest{Rating: 4, Comment: "Good"})
	require.Nil(t, svcErr)
	_, svcErr = svc.CreateReview(context.Background(), primitive.NewObjectID().Hex(), "Vikram", product.ID.Hex(), &services.CreateReviewRequest{Rating: 5, Comment: "Great"})
	require.Nil(t, svcErr)

	svcErr = svc.DeleteReview(context.Background(), author, false, four.ID.Hex())
	require.Nil(t, svcErr)

	got, err := productRepo.FindByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, 5.0, got.Rating)
	assert.Equal(t, 1, got.NumReviews)
}

func TestDeleteLastReview_ResetsRatingToZero(t *testing.T) {
	svc, _, productRepo, product := newReviewFixture(t)
	author := primitive.NewObjectID().Hex()

	review, svcErr := svc.CreateReview(context.Background(), author, "Asha", product.ID.Hex(), &services.CreateReviewRequest{Rating: 3, Comment: "OK"})
	require.Nil(t, svcErr)

	svcErr = svc.DeleteReview(context.Background(), author, false, review.ID.Hex())
	require.Nil(t, svcErr)

	got, err := productRepo.FindByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.Rating)
	assert.Equal(t, 0, got.NumReviews)
}

func TestDeleteReview_AdminOverride(t *testing.T) {
	svc, _, _, product := newReviewFixture(t)

	review, svcErr := svc.CreateReview(context.Background(), primitive.NewObjectID().Hex(), "Asha", product.ID.Hex(), &services.CreateReviewRequest{Rating: 1, Comment: "Spam"})
	require.Nil(t, svcErr)

	svcErr = svc.DeleteReview(context.Background(), primitive.NewObjectID().Hex(), true, review.ID.Hex())
	assert.Nil(t, svcErr)
}
