package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rameshmuthu-dev/mobilemania-backend/services"
)

// CarouselController handles HTTP requests for homepage carousel entries.
type CarouselController struct {
	carouselService *services.CarouselService
}

func NewCarouselController(carouselService *services.CarouselService) *CarouselController {
	return &CarouselController{carouselService: carouselService}
}

// ListActive handles GET /api/carousels. The storefront only sees active
// entries.
func (cc *CarouselController) ListActive(ctx *gin.Context) {
	carousels, svcErr := cc.carouselService.ListCarousels(ctx.Request.Context(), true)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"carousels": carousels})
}

// ListAll handles GET /api/admin/carousels (admin only).
func (cc *CarouselController) ListAll(ctx *gin.Context) {
	carousels, svcErr := cc.carouselService.ListCarousels(ctx.Request.Context(), false)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"carousels": carousels})
}

// Create handles POST /api/admin/carousels (admin only).
func (cc *CarouselController) Create(ctx *gin.Context) {
	var req services.CreateCarouselRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	carousel, svcErr := cc.carouselService.CreateCarousel(ctx.Request.Context(), &req)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"carousel": carousel})
}

// Update handles PUT /api/admin/carousels/:id (admin only).
func (cc *CarouselController) Update(ctx *gin.Context) {
	var req services.UpdateCarouselRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	carousel, svcErr := cc.carouselService.UpdateCarousel(ctx.Request.Context(), ctx.Param("id"), &req)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"carousel": carousel})
}

// Delete handles DELETE /api/admin/carousels/:id (admin only).
func (cc *CarouselController) Delete(ctx *gin.Context) {
	if svcErr := cc.carouselService.DeleteCarousel(ctx.Request.Context(), ctx.Param("id")); svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Carousel entry deleted"})
}
