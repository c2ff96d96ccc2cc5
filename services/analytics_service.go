package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/rameshmuthu-dev/mobilemania-backend/repository"
)

// DashboardStats is the admin analytics snapshot. All figures are derived
// from live collections on every request.
type DashboardStats struct {
	GrossSales    float64 `json:"grossSales"`
	TotalOrders   int64   `json:"totalOrders"`
	PaidOrders    int64   `json:"paidOrders"`
	TotalProducts int64   `json:"totalProducts"`
	TotalUsers    int64   `json:"totalUsers"`
}

type AnalyticsService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
	logger      *zap.Logger
}

func NewAnalyticsService(orderRepo repository.OrderRepository, productRepo repository.ProductRepository, userRepo repository.UserRepository, logger *zap.Logger) *AnalyticsService {
	return &AnalyticsService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		logger:      logger,
	}
}

func (s *AnalyticsService) GetDashboardStats(ctx context.Context) (*DashboardStats, *ServiceError) {
	totals, err := s.orderRepo.Totals(ctx)
	if err != nil {
		s.logger.Error("Failed to aggregate order totals", zap.Error(err))
		return nil, NewInternalError("Failed to fetch dashboard stats")
	}

	productCount, err := s.productRepo.Count(ctx)
	if err != nil {
		s.logger.Error("Failed to count products", zap.Error(err))
		return nil, NewInternalError("Failed to fetch dashboard stats")
	}

	userCount, err := s.userRepo.Count(ctx)
	if err != nil {
		s.logger.Error("Failed to count users", zap.Error(err))
		return nil, NewInternalError("Failed to fetch dashboard stats")
	}

	return &DashboardStats{
		GrossSales:    totals.GrossSales,
		TotalOrders:   totals.TotalOrders,
		PaidOrders:    totals.PaidOrders,
		TotalProducts: productCount,
		TotalUsers:    userCount,
	}, nil
}
