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

type CreateProductRequest struct {
	Name         string              `json:"name" binding:"required"`
	Brand        string              `json:"brand" binding:"required"`
	Description  string              `json:"description" binding:"required"`
	Price        float64             `json:"price" binding:"required,gt=0"`
	Images       []string            `json:"images" binding:"required,min=1"`
	Category     string              `json:"category" binding:"required"`
	SubCategory  string              `json:"subCategory" binding:"required"`
	CountInStock int                 `json:"countInStock" binding:"min=0"`
	Specs        models.ProductSpecs `json:"specs"`
}

type UpdateProductRequest struct {
	Name         *string              `json:"name"`
	Brand        *string              `json:"brand"`
	Description  *string              `json:"description"`
	Price        *float64             `json:"price"`
	Images       []string             `json:"images"`
	Category     *string              `json:"category"`
	SubCategory  *string              `json:"subCategory"`
	CountInStock *int                 `json:"countInStock"`
	Specs        *models.ProductSpecs `json:"specs"`
}

// ProductListParams carries the supported catalog filters.
type ProductListParams struct {
	Category    string
	SubCategory string
	Brand       string
	Search      string
	MinPrice    float64
	MaxPrice    float64
	Page        int
	Limit       int
}

type ProductsResponse struct {
	Products []models.Product `json:"products"`
	Meta     MetaData         `json:"meta"`
}

type ProductService struct {
	productRepo repository.ProductRepository
	logger      *zap.Logger
}

func NewProductService(productRepo repository.ProductRepository, logger *zap.Logger) *ProductService {
	return &ProductService{productRepo: productRepo, logger: logger}
}

func (s *ProductService) CreateProduct(ctx context.Context, adminID string, req *CreateProductRequest) (*models.Product, *ServiceError) {
	adminOID, err := primitive.ObjectIDFromHex(adminID)
	if err != nil {
		return nil, NewValidationError("Invalid user ID format")
	}

	if _, err := s.productRepo.FindByName(ctx, req.Name); err == nil {
		return nil, NewDuplicateError("A product with this name already exists")
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		s.logger.Error("Failed to check product name", zap.String("name", req.Name), zap.Error(err))
		return nil, NewInternalError("Failed to create product")
	}

	product := &models.Product{
		Name:         req.Name,
		Brand:        req.Brand,
		Description:  req.Description,
		Price:        req.Price,
		Images:       req.Images,
		Category:     req.Category,
		SubCategory:  req.SubCategory,
		CountInStock: req.CountInStock,
		Specs:        req.Specs,
		CreatedBy:    adminOID,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, NewDuplicateError("A product with this name already exists")
		}
		s.logger.Error("Failed to persist product", zap.String("name", req.Name), zap.Error(err))
		return nil, NewInternalError("Failed to create product")
	}
	return product, nil
}

func (s *ProductService) UpdateProduct(ctx context.Context, productID string, req *UpdateProductRequest) (*models.Product, *ServiceError) {
	productOID, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return nil, NewValidationError("Invalid product ID format")
	}

	updates := bson.M{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Brand != nil {
		updates["brand"] = *req.Brand
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		if *req.Price <= 0 {
			return nil, NewValidationError("Price must be greater than zero")
		}
		updates["price"] = *req.Price
	}
	if req.Images != nil {
		updates["images"] = req.Images
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.SubCategory != nil {
		updates["subCategory"] = *req.SubCategory
	}
	if req.CountInStock != nil {
		if *req.CountInStock < 0 {
			return nil, NewValidationError("Stock count cannot be negative")
		}
		updates["countInStock"] = *req.CountInStock
	}
	if req.Specs != nil {
		updates["specs"] = *req.Specs
	}
	if len(updates) == 0 {
		return nil, NewValidationError("No fields to update")
	}

	if err := s.productRepo.Update(ctx, productOID, updates); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, NewNotFoundError("Product not found")
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, NewDuplicateError("A product with this name already exists")
		}
		s.logger.Error("Failed to update product", zap.String("product_id", productID), zap.Error(err))
		return nil, NewInternalError("Failed to update product")
	}

	return s.GetProductByID(ctx, productID)
}

func (s *ProductService) DeleteProduct(ctx context.Context, productID string) *ServiceError {
	productOID, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return NewValidationError("Invalid product ID format")
	}

	if err := s.productRepo.Delete(ctx, productOID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return NewNotFoundError("Product not found")
		}
		s.logger.Error("Failed to delete product", zap.String("product_id", productID), zap.Error(err))
		return NewInternalError("Failed to delete product")
	}
	return nil
}

func (s *ProductService) GetProductByID(ctx context.Context, productID string) (*models.Product, *ServiceError) {
	productOID, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return nil, NewValidationError("Invalid product ID format")
	}

	product, err := s.productRepo.FindByID(ctx, productOID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, NewNotFoundError("Product not found")
		}
		s.logger.Error("Failed to fetch product", zap.String("product_id", productID), zap.Error(err))
		return nil, NewInternalError("Failed to fetch product")
	}
	return product, nil
}

func (s *ProductService) ListProducts(ctx context.Context, params *ProductListParams) (*ProductsResponse, *ServiceError) {
	filter := bson.M{}
	if params.Category != "" {
		filter["category"] = params.Category
	}
	if params.SubCategory != "" {
		filter["subCategory"] = params.SubCategory
	}
	if params.Brand != "" {
		filter["brand"] = params.Brand
	}
	if params.Search != "" {
		filter["name"] = bson.M{"$regex": params.Search, "$options": "i"}
	}
	price := bson.M{}
	if params.MinPrice > 0 {
		price["$gte"] = params.MinPrice
	}
	if params.MaxPrice > 0 {
		price["$lte"] = params.MaxPrice
	}
	if len(price) > 0 {
		filter["price"] = price
	}

	products, total, err := s.productRepo.Find(ctx, filter, params.Page, params.Limit)
	if err != nil {
		s.logger.Error("Failed to list products", zap.Error(err))
		return nil, NewInternalError("Failed to fetch products")
	}
	if products == nil {
		products = []models.Product{}
	}

	return &ProductsResponse{
		Products: products,
		Meta: MetaData{
			Page:       params.Page,
			Limit:      params.Limit,
			Total:      total,
			TotalPages: calculateTotalPages(total, params.Limit),
			HasMore:    total > int64(params.Page*params.Limit),
		},
	}, nil
}
