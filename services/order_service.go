package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/rameshmuthu-dev/mobilemania-backend/models"
	"github.com/rameshmuthu-dev/mobilemania-backend/repository"
)

type OrderItemRequest struct {
	Product string `json:"product" binding:"required"`
	Qty     int    `json:"qty" binding:"required,min=1"`
}

type CreateOrderRequest struct {
	OrderItems      []OrderItemRequest     `json:"orderItems" binding:"required,dive"`
	ShippingAddress models.ShippingAddress `json:"shippingAddress" binding:"required"`
	PaymentMethod   string                 `json:"paymentMethod" binding:"required"`
}

type OrdersResponse struct {
	Orders []models.Order `json:"orders"`
	Meta   MetaData       `json:"meta"`
}

type MetaData struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
	HasMore    bool  `json:"has_more"`
}

// PricePolicy holds the configured shipping and tax rules applied at order
// creation.
type PricePolicy struct {
	ShippingFlatFee   float64
	FreeShippingAbove float64
	TaxRate           float64
}

type OrderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	policy      PricePolicy
	logger      *zap.Logger
}

func NewOrderService(orderRepo repository.OrderRepository, productRepo repository.ProductRepository, policy PricePolicy, logger *zap.Logger) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		policy:      policy,
		logger:      logger,
	}
}

// CreateOrder validates every line item against the live catalog, snapshots
// item names and prices, applies the price policy and persists the order as
// unpaid and undelivered.
func (s *OrderService) CreateOrder(ctx context.Context, userID string, req *CreateOrderRequest) (*models.Order, *ServiceError) {
	userOID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, NewValidationError("Invalid user ID format")
	}
	if len(req.OrderItems) == 0 {
		return nil, NewValidationError("At least one order item is required")
	}

	items := make([]models.OrderItem, 0, len(req.OrderItems))
	var itemsPrice float64
	for _, item := range req.OrderItems {
		productOID, err := primitive.ObjectIDFromHex(item.Product)
		if err != nil {
			return nil, NewValidationError("Invalid product ID format")
		}

		product, err := s.productRepo.FindByID(ctx, productOID)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, NewValidationError(fmt.Sprintf("Product %s does not exist", item.Product))
			}
			s.logger.Error("Failed to resolve order item product", zap.String("product_id", item.Product), zap.Error(err))
			return nil, NewInternalError("Failed to create order")
		}

		if item.Qty > product.CountInStock {
			return nil, NewValidationError(fmt.Sprintf("Insufficient stock for %s: requested %d, available %d", product.Name, item.Qty, product.CountInStock))
		}

		items = append(items, models.OrderItem{
			Product: product.ID,
			Name:    product.Name,
			Qty:     item.Qty,
			Price:   product.Price,
		})
		itemsPrice += product.Price * float64(item.Qty)
	}

	itemsPrice = round2(itemsPrice)
	shippingPrice := s.policy.ShippingFlatFee
	if itemsPrice >= s.policy.FreeShippingAbove {
		shippingPrice = 0
	}
	taxPrice := round2(itemsPrice * s.policy.TaxRate)
	totalPrice := round2(itemsPrice + shippingPrice + taxPrice)

	order := &models.Order{
		User:            userOID,
		OrderItems:      items,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		ItemsPrice:      itemsPrice,
		ShippingPrice:   shippingPrice,
		TaxPrice:        taxPrice,
		TotalPrice:      totalPrice,
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		s.logger.Error("Failed to persist order", zap.String("user_id", userID), zap.Error(err))
		return nil, NewInternalError("Failed to create order")
	}

	s.logger.Info("Order created",
		zap.String("order_id", order.ID.Hex()),
		zap.String("user_id", userID),
		zap.Float64("total_price", order.TotalPrice),
	)
	return order, nil
}

// GetOrderByID returns an order visible to the caller: its owner or an admin.
func (s *OrderService) GetOrderByID(ctx context.Context, userID string, isAdmin bool, orderID string) (*models.Order, *ServiceError) {
	order, svcErr := s.loadOrder(ctx, orderID)
	if svcErr != nil {
		return nil, svcErr
	}
	if !isAdmin && order.User.Hex() != userID {
		return nil, NewUnauthorizedError("You do not have access to this order")
	}
	return order, nil
}

func (s *OrderService) GetUserOrders(ctx context.Context, userID string, page, limit int) (*OrdersResponse, *ServiceError) {
	userOID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, NewValidationError("Invalid user ID format")
	}

	orders, total, err := s.orderRepo.FindByUserID(ctx, userOID, page, limit)
	if err != nil {
		s.logger.Error("Failed to fetch user orders", zap.String("user_id", userID), zap.Error(err))
		return nil, NewInternalError("Failed to fetch orders")
	}
	return newOrdersResponse(orders, page, limit, total), nil
}

func (s *OrderService) GetAllOrders(ctx context.Context, page, limit int) (*OrdersResponse, *ServiceError) {
	orders, total, err := s.orderRepo.FindAll(ctx, page, limit)
	if err != nil {
		s.logger.Error("Failed to fetch all orders", zap.Error(err))
		return nil, NewInternalError("Failed to fetch orders")
	}
	return newOrdersResponse(orders, page, limit, total), nil
}

// MarkPaid transitions an order to paid exactly once. When the order is
// already paid the call reports alreadyPaid and leaves paidAt untouched.
func (s *OrderService) MarkPaid(ctx context.Context, orderID string) (order *models.Order, alreadyPaid bool, svcErr *ServiceError) {
	order, svcErr = s.loadOrder(ctx, orderID)
	if svcErr != nil {
		return nil, false, svcErr
	}
	if order.IsPaid {
		return order, true, nil
	}

	now := time.Now().UTC()
	if err := s.orderRepo.SetPaid(ctx, order.ID, now); err != nil {
		s.logger.Error("Failed to mark order paid", zap.String("order_id", orderID), zap.Error(err))
		return nil, false, NewInternalError("Failed to update order")
	}
	order.IsPaid = true
	order.PaidAt = &now
	return order, false, nil
}

// MarkDelivered records delivery; re-applying refreshes the timestamp.
func (s *OrderService) MarkDelivered(ctx context.Context, orderID string) (*models.Order, *ServiceError) {
	order, svcErr := s.loadOrder(ctx, orderID)
	if svcErr != nil {
		return nil, svcErr
	}

	now := time.Now().UTC()
	if err := s.orderRepo.SetDelivered(ctx, order.ID, now); err != nil {
		s.logger.Error("Failed to mark order delivered", zap.String("order_id", orderID), zap.Error(err))
		return nil, NewInternalError("Failed to update order")
	}
	order.IsDelivered = true
	order.DeliveredAt = &now
	return order, nil
}

// DeleteOrder removes an order. Owners may delete only unpaid orders; paid
// orders are removable by admins alone.
func (s *OrderService) DeleteOrder(ctx context.Context, userID string, isAdmin bool, orderID string) *ServiceError {
	order, svcErr := s.loadOrder(ctx, orderID)
	if svcErr != nil {
		return svcErr
	}
	if !isAdmin {
		if order.User.Hex() != userID {
			return NewUnauthorizedError("You do not have access to this order")
		}
		if order.IsPaid {
			return NewValidationError("Paid orders cannot be deleted")
		}
	}

	if err := s.orderRepo.Delete(ctx, order.ID); err != nil {
		s.logger.Error("Failed to delete order", zap.String("order_id", orderID), zap.Error(err))
		return NewInternalError("Failed to delete order")
	}
	return nil
}

func (s *OrderService) loadOrder(ctx context.Context, orderID string) (*models.Order, *ServiceError) {
	orderOID, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return nil, NewValidationError("Invalid order ID format")
	}

	order, err := s.orderRepo.FindByID(ctx, orderOID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, NewNotFoundError("Order not found")
		}
		s.logger.Error("Failed to fetch order", zap.String("order_id", orderID), zap.Error(err))
		return nil, NewInternalError("Failed to fetch order")
	}
	return order, nil
}

func newOrdersResponse(orders []models.Order, page, limit int, total int64) *OrdersResponse {
	if orders == nil {
		orders = []models.Order{}
	}
	return &OrdersResponse{
		Orders: orders,
		Meta: MetaData{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: calculateTotalPages(total, limit),
			HasMore:    total > int64(page*limit),
		},
	}
}

func calculateTotalPages(total int64, limit int) int64 {
	if limit == 0 {
		return 0
	}
	return (total + int64(limit) - 1) / int64(limit)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
