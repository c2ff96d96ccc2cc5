package services

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/rameshmuthu-dev/mobilemania-backend/models"
	"github.com/rameshmuthu-dev/mobilemania-backend/repository"
)

type CartItemRequest struct {
	Product string `json:"product" binding:"required"`
	Qty     int    `json:"qty" binding:"required,min=1"`
}

type PutCartRequest struct {
	Items []CartItemRequest `json:"items" binding:"required,dive"`
}

// CartService keeps per-user carts in Redis and the wishlist on the user
// document.
type CartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
	logger      *zap.Logger
}

func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository, userRepo repository.UserRepository, logger *zap.Logger) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		logger:      logger,
	}
}

func (s *CartService) GetCart(ctx context.Context, userID string) (*models.Cart, *ServiceError) {
	cart, err := s.cartRepo.GetCart(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to fetch cart", zap.String("user_id", userID), zap.Error(err))
		return nil, NewInternalError("Failed to fetch cart")
	}
	if cart == nil {
		cart = &models.Cart{UserID: userID, Items: []models.CartItem{}}
	}
	return cart, nil
}

// PutCart replaces the user's cart with the given items, revalidating each
// product and snapshotting its current name and price for display.
func (s *CartService) PutCart(ctx context.Context, userID string, req *PutCartRequest) (*models.Cart, *ServiceError) {
	items := make([]models.CartItem, 0, len(req.Items))
	for _, item := range req.Items {
		productOID, err := primitive.ObjectIDFromHex(item.Product)
		if err != nil {
			return nil, NewValidationError("Invalid product ID format")
		}
		product, err := s.productRepo.FindByID(ctx, productOID)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, NewValidationError(fmt.Sprintf("Product %s does not exist", item.Product))
			}
			s.logger.Error("Failed to resolve cart product", zap.String("product_id", item.Product), zap.Error(err))
			return nil, NewInternalError("Failed to update cart")
		}
		items = append(items, models.CartItem{
			Product: product.ID.Hex(),
			Name:    product.Name,
			Price:   product.Price,
			Qty:     item.Qty,
		})
	}

	cart := &models.Cart{UserID: userID, Items: items}
	if err := s.cartRepo.SaveCart(ctx, cart); err != nil {
		s.logger.Error("Failed to save cart", zap.String("user_id", userID), zap.Error(err))
		return nil, NewInternalError("Failed to update cart")
	}
	return cart, nil
}

func (s *CartService) RemoveItem(ctx context.Context, userID, productID string) (*models.Cart, *ServiceError) {
	cart, svcErr := s.GetCart(ctx, userID)
	if svcErr != nil {
		return nil, svcErr
	}

	kept := cart.Items[:0]
	for _, item := range cart.Items {
		if item.Product != productID {
			kept = append(kept, item)
		}
	}
	cart.Items = kept

	if len(cart.Items) == 0 {
		if err := s.cartRepo.DeleteCart(ctx, userID); err != nil {
			s.logger.Error("Failed to clear cart", zap.String("user_id", userID), zap.Error(err))
			return nil, NewInternalError("Failed to update cart")
		}
		return cart, nil
	}

	if err := s.cartRepo.SaveCart(ctx, cart); err != nil {
		s.logger.Error("Failed to save cart", zap.String("user_id", userID), zap.Error(err))
		return nil, NewInternalError("Failed to update cart")
	}
	return cart, nil
}

func (s *CartService) ClearCart(ctx context.Context, userID string) *ServiceError {
	if err := s.cartRepo.DeleteCart(ctx, userID); err != nil {
		s.logger.Error("Failed to clear cart", zap.String("user_id", userID), zap.Error(err))
		return NewInternalError("Failed to clear cart")
	}
	return nil
}

func (s *CartService) AddToWishlist(ctx context.Context, userID, productID string) *ServiceError {
	userOID, productOID, svcErr := parseUserAndProduct(userID, productID)
	if svcErr != nil {
		return svcErr
	}

	if _, err := s.productRepo.FindByID(ctx, productOID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return NewNotFoundError("Product not found")
		}
		s.logger.Error("Failed to resolve wishlist product", zap.String("product_id", productID), zap.Error(err))
		return NewInternalError("Failed to update wishlist")
	}

	if err := s.userRepo.AddToWishlist(ctx, userOID, productOID); err != nil {
		s.logger.Error("Failed to add to wishlist", zap.String("user_id", userID), zap.Error(err))
		return NewInternalError("Failed to update wishlist")
	}
	return nil
}

func (s *CartService) RemoveFromWishlist(ctx context.Context, userID, productID string) *ServiceError {
	userOID, productOID, svcErr := parseUserAndProduct(userID, productID)
	if svcErr != nil {
		return svcErr
	}

	if err := s.userRepo.RemoveFromWishlist(ctx, userOID, productOID); err != nil {
		s.logger.Error("Failed to remove from wishlist", zap.String("user_id", userID), zap.Error(err))
		return NewInternalError("Failed to update wishlist")
	}
	return nil
}

// GetWishlist resolves the user's wishlist refs against the live catalog.
// Products deleted since being wishlisted are silently dropped.
func (s *CartService) GetWishlist(ctx context.Context, userID string) ([]models.Product, *ServiceError) {
	userOID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, NewValidationError("Invalid user ID format")
	}

	user, err := s.userRepo.FindByID(ctx, userOID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, NewNotFoundError("User not found")
		}
		s.logger.Error("Failed to fetch user for wishlist", zap.String("user_id", userID), zap.Error(err))
		return nil, NewInternalError("Failed to fetch wishlist")
	}

	products := make([]models.Product, 0, len(user.Wishlist))
	for _, productID := range user.Wishlist {
		product, err := s.productRepo.FindByID(ctx, productID)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				continue
			}
			s.logger.Error("Failed to resolve wishlist product", zap.String("product_id", productID.Hex()), zap.Error(err))
			return nil, NewInternalError("Failed to fetch wishlist")
		}
		products = append(products, *product)
	}
	return products, nil
}

func parseUserAndProduct(userID, productID string) (primitive.ObjectID, primitive.ObjectID, *ServiceError) {
	userOID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, NewValidationError("Invalid user ID format")
	}
	productOID, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, NewValidationError("Invalid product ID format")
	}
	return userOID, productOID, nil
}
