package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rameshmuthu-dev/mobilemania-backend/middleware"
	"github.com/rameshmuthu-dev/mobilemania-backend/services"
)

// ReviewController handles HTTP requests for product reviews.
type ReviewController struct {
	reviewService *services.ReviewService
	authService   *services.AuthService
}

func NewReviewController(reviewService *services.ReviewService, authService *services.AuthService) *ReviewController {
	return &ReviewController{reviewService: reviewService, authService: authService}
}

// ListProductReviews handles GET /api/products/:id/reviews.
func (rc *ReviewController) ListProductReviews(ctx *gin.Context) {
	reviews, svcErr := rc.reviewService.GetProductReviews(ctx.Request.Context(), ctx.Param("id"))
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"reviews": reviews})
}

// CreateReview handles POST /api/products/:id/reviews.
func (rc *ReviewController) CreateReview(ctx *gin.Context) {
	var req services.CreateReviewRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	userID := middleware.GetUserID(ctx)
	user, svcErr := rc.authService.GetUser(ctx.Request.Context(), userID)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	review, svcErr := rc.reviewService.CreateReview(ctx.Request.Context(), userID, user.Name, ctx.Param("id"), &req)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"review": review})
}

// UpdateReview handles PUT /api/reviews/:id.
func (rc *ReviewController) UpdateReview(ctx *gin.Context) {
	var req services.UpdateReviewRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	review, svcErr := rc.reviewService.UpdateReview(ctx.Request.Context(), middleware.GetUserID(ctx), ctx.Param("id"), &req)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"review": review})
}

// DeleteReview handles DELETE /api/reviews/:id.
func (rc *ReviewController) DeleteReview(ctx *gin.Context) {
	svcErr := rc.reviewService.DeleteReview(ctx.Request.Context(), middleware.GetUserID(ctx), middleware.IsAdmin(ctx), ctx.Param("id"))
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Review deleted"})
}
