package services

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/rameshmuthu-dev/mobilemania-backend/models"
	"github.com/rameshmuthu-dev/mobilemania-backend/repository"
)

type CreateCarouselRequest struct {
	Title    string `json:"title" binding:"required"`
	Image    string `json:"image" binding:"required"`
	Link     string `json:"link"`
	Position int    `json:"position" binding:"min=0"`
	IsActive *bool  `json:"isActive"`
}

type UpdateCarouselRequest struct {
	Title    *string `json:"title"`
	Image    *string `json:"image"`
	Link     *string `json:"link"`
	Position *int    `json:"position"`
	IsActive *bool   `json:"isActive"`
}

// CarouselService manages the homepage carousel entries. Admins manage the
// full set; the storefront only sees active entries ordered by position.
type CarouselService struct {
	carouselRepo repository.CarouselRepository
	logger       *zap.Logger
}

func NewCarouselService(carouselRepo repository.CarouselRepository, logger *zap.Logger) *CarouselService {
	return &CarouselService{carouselRepo: carouselRepo, logger: logger}
}

func (s *CarouselService) CreateCarousel(ctx context.Context, req *CreateCarouselRequest) (*models.Carousel, *ServiceError) {
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	carousel := &models.Carousel{
		Title:    req.Title,
		Image:    req.Image,
		Link:     req.Link,
		Position: req.Position,
		IsActive: active,
	}
	if err := s.carouselRepo.Create(ctx, carousel); err != nil {
		s.logger.Error("Failed to persist carousel entry", zap.String("title", req.Title), zap.Error(err))
		return nil, NewInternalError("Failed to create carousel entry")
	}
	return carousel, nil
}

func (s *CarouselService) UpdateCarousel(ctx context.Context, carouselID string, req *UpdateCarouselRequest) (*models.Carousel, *ServiceError) {
	carouselOID, err := primitive.ObjectIDFromHex(carouselID)
	if err != nil {
		return nil, NewValidationError("Invalid carousel ID format")
	}

	updates := bson.M{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Image != nil {
		updates["image"] = *req.Image
	}
	if req.Link != nil {
		updates["link"] = *req.Link
	}
	if req.Position != nil {
		if *req.Position < 0 {
			return nil, NewValidationError("Position cannot be negative")
		}
		updates["position"] = *req.Position
	}
	if req.IsActive != nil {
		updates["isActive"] = *req.IsActive
	}
	if len(updates) == 0 {
		return nil, NewValidationError("No fields to update")
	}

	if err := s.carouselRepo.Update(ctx, carouselOID, updates); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, NewNotFoundError("Carousel entry not found")
		}
		s.logger.Error("Failed to update carousel entry", zap.String("carousel_id", carouselID), zap.Error(err))
		return nil, NewInternalError("Failed to update carousel entry")
	}

	carousel, err := s.carouselRepo.FindByID(ctx, carouselOID)
	if err != nil {
		s.logger.Error("Failed to reload carousel entry", zap.String("carousel_id", carouselID), zap.Error(err))
		return nil, NewInternalError("Failed to update carousel entry")
	}
	return carousel, nil
}

func (s *CarouselService) DeleteCarousel(ctx context.Context, carouselID string) *ServiceError {
	carouselOID, err := primitive.ObjectIDFromHex(carouselID)
	if err != nil {
		return NewValidationError("Invalid carousel ID format")
	}

	if err := s.carouselRepo.Delete(ctx, carouselOID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return NewNotFoundError("Carousel entry not found")
		}
		s.logger.Error("Failed to delete carousel entry", zap.String("carousel_id", carouselID), zap.Error(err))
		return NewInternalError("Failed to delete carousel entry")
	}
	return nil
}

// ListCarousels returns entries sorted by position. activeOnly restricts the
// result to entries visible on the storefront.
func (s *CarouselService) ListCarousels(ctx context.Context, activeOnly bool) ([]models.Carousel, *ServiceError) {
	carousels, err := s.carouselRepo.FindAll(ctx, activeOnly)
	if err != nil {
		s.logger.Error("Failed to list carousel entries", zap.Error(err))
		return nil, NewInternalError("Failed to fetch carousel entries")
	}
	if carousels == nil {
		carousels = []models.Carousel{}
	}
	return carousels, nil
}
