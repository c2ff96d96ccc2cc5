package services

import (
	"context"
	"errors"
	"math"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/rameshmuthu-dev/mobilemania-backend/models"
	"github.com/rameshmuthu-dev/mobilemania-backend/repository"
)

type CreateReviewRequest struct {
	Rating  float64 `json:"rating" binding:"required,min=1,max=5"`
	Comment string  `json:"comment" binding:"required"`
}

type UpdateReviewRequest struct {
	Rating  float64 `json:"rating" binding:"required,min=1,max=5"`
	Comment string  `json:"comment" binding:"required"`
}

// ReviewService owns review CRUD and the derived rating fields on products.
// Every mutation recomputes the parent product's rating and review count from
// the full live review set.
type ReviewService struct {
	reviewRepo  repository.ReviewRepository
	productRepo repository.ProductRepository
	logger      *zap.Logger
}

func NewReviewService(reviewRepo repository.ReviewRepository, productRepo repository.ProductRepository, logger *zap.Logger) *ReviewService {
	return &ReviewService{
		reviewRepo:  reviewRepo,
		productRepo: productRepo,
		logger:      logger,
	}
}

func (s *ReviewService) CreateReview(ctx context.Context, userID, userName, productID string, req *CreateReviewRequest) (*models.Review, *ServiceError) {
	userOID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, NewValidationError("Invalid user ID format")
	}
	productOID, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return nil, NewValidationError("Invalid product ID format")
	}

	if _, err := s.productRepo.FindByID(ctx, productOID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, NewNotFoundError("Product not found")
		}
		s.logger.Error("Failed to resolve product for review", zap.String("product_id", productID), zap.Error(err))
		return nil, NewInternalError("Failed to create review")
	}

	if _, err := s.reviewRepo.FindByProductAndUser(ctx, productOID, userOID); err == nil {
		return nil, NewDuplicateError("You have already reviewed this product")
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		s.logger.Error("Failed to check for existing review", zap.String("product_id", productID), zap.Error(err))
		return nil, NewInternalError("Failed to create review")
	}

	review := &models.Review{
		Product:  productOID,
		User:     userOID,
		UserName: userName,
		Rating:   req.Rating,
		Comment:  req.Comment,
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		// The unique (product, user) index closes the race between the
		// existence check and the insert.
		if mongo.IsDuplicateKeyError(err) {
			return nil, NewDuplicateError("You have already reviewed this product")
		}
		s.logger.Error("Failed to persist review", zap.String("product_id", productID), zap.Error(err))
		return nil, NewInternalError("Failed to create review")
	}

	if svcErr := s.recomputeProductRating(ctx, productOID); svcErr != nil {
		return nil, svcErr
	}
	return review, nil
}

func (s *ReviewService) UpdateReview(ctx context.Context, userID, reviewID string, req *UpdateReviewRequest) (*models.Review, *ServiceError) {
	review, svcErr := s.loadReview(ctx, reviewID)
	if svcErr != nil {
		return nil, svcErr
	}
	if review.User.Hex() != userID {
		return nil, NewUnauthorizedError("You can only edit your own review")
	}

	updates := bson.M{"rating": req.Rating, "comment": req.Comment}
	if err := s.reviewRepo.Update(ctx, review.ID, updates); err != nil {
		s.logger.Error("Failed to update review", zap.String("review_id", reviewID), zap.Error(err))
		return nil, NewInternalError("Failed to update review")
	}
	review.Rating = req.Rating
	review.Comment = req.Comment

	if svcErr := s.recomputeProductRating(ctx, review.Product); svcErr != nil {
		return nil, svcErr
	}
	return review, nil
}

func (s *ReviewService) DeleteReview(ctx context.Context, userID string, isAdmin bool, reviewID string) *ServiceError {
	review, svcErr := s.loadReview(ctx, reviewID)
	if svcErr != nil {
		return svcErr
	}
	if !isAdmin && review.User.Hex() != userID {
		return NewUnauthorizedError("You can only delete your own review")
	}

	if err := s.reviewRepo.Delete(ctx, review.ID); err != nil {
		s.logger.Error("Failed to delete review", zap.String("review_id", reviewID), zap.Error(err))
		return NewInternalError("Failed to delete review")
	}

	return s.recomputeProductRating(ctx, review.Product)
}

func (s *ReviewService) GetProductReviews(ctx context.Context, productID string) ([]models.Review, *ServiceError) {
	productOID, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return nil, NewValidationError("Invalid product ID format")
	}

	reviews, err := s.reviewRepo.FindByProduct(ctx, productOID)
	if err != nil {
		s.logger.Error("Failed to fetch reviews", zap.String("product_id", productID), zap.Error(err))
		return nil, NewInternalError("Failed to fetch reviews")
	}
	if reviews == nil {
		reviews = []models.Review{}
	}
	return reviews, nil
}

// recomputeProductRating reloads every review for the product and persists
// the 1-decimal mean and the live count. Full rescan keeps the aggregate
// correct at the cost of an O(review count) read per mutation.
func (s *ReviewService) recomputeProductRating(ctx context.Context, productID primitive.ObjectID) *ServiceError {
	reviews, err := s.reviewRepo.FindByProduct(ctx, productID)
	if err != nil {
		s.logger.Error("Failed to reload reviews for aggregation", zap.String("product_id", productID.Hex()), zap.Error(err))
		return NewInternalError("Failed to update product rating")
	}

	rating := 0.0
	if len(reviews) > 0 {
		var sum float64
		for _, r := range reviews {
			sum += r.Rating
		}
		rating = round1(sum / float64(len(reviews)))
	}

	if err := s.productRepo.SetRating(ctx, productID, rating, len(reviews)); err != nil {
		s.logger.Error("Failed to persist product rating", zap.String("product_id", productID.Hex()), zap.Error(err))
		return NewInternalError("Failed to update product rating")
	}
	return nil
}

func (s *ReviewService) loadReview(ctx context.Context, reviewID string) (*models.Review, *ServiceError) {
	reviewOID, err := primitive.ObjectIDFromHex(reviewID)
	if err != nil {
		return nil, NewValidationError("Invalid review ID format")
	}

	review, err := s.reviewRepo.FindByID(ctx, reviewOID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, NewNotFoundError("Review not found")
		}
		s.logger.Error("Failed to fetch review", zap.String("review_id", reviewID), zap.Error(err))
		return nil, NewInternalError("Failed to fetch review")
	}
	return review, nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
