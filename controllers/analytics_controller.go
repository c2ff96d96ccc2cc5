package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rameshmuthu-dev/mobilemania-backend/services"
)

// AnalyticsController handles HTTP requests for the admin dashboard.
type AnalyticsController struct {
	analyticsService *services.AnalyticsService
}

func NewAnalyticsController(analyticsService *services.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{analyticsService: analyticsService}
}

// Dashboard handles GET /api/admin/dashboard (admin only).
func (ac *AnalyticsController) Dashboard(ctx *gin.Context) {
	stats, svcErr := ac.analyticsService.GetDashboardStats(ctx.Request.Context())
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"stats": stats})
}
