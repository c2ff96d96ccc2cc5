package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rameshmuthu-dev/mobilemania-backend/middleware"
	"github.com/rameshmuthu-dev/mobilemania-backend/services"
)

// CartController handles HTTP requests for the cart and wishlist.
type CartController struct {
	cartService *services.CartService
}

func NewCartController(cartService *services.CartService) *CartController {
	return &CartController{cartService: cartService}
}

// GetCart handles GET /api/cart.
func (cc *CartController) GetCart(ctx *gin.Context) {
	cart, svcErr := cc.cartService.GetCart(ctx.Request.Context(), middleware.GetUserID(ctx))
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"cart": cart})
}

// PutCart handles PUT /api/cart.
func (cc *CartController) PutCart(ctx *gin.Context) {
	var req services.PutCartRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	cart, svcErr := cc.cartService.PutCart(ctx.Request.Context(), middleware.GetUserID(ctx), &req)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"cart": cart})
}

// RemoveItem handles DELETE /api/cart/items/:productId.
func (cc *CartController) RemoveItem(ctx *gin.Context) {
	cart, svcErr := cc.cartService.RemoveItem(ctx.Request.Context(), middleware.GetUserID(ctx), ctx.Param("productId"))
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"cart": cart})
}

// ClearCart handles DELETE /api/cart.
func (cc *CartController) ClearCart(ctx *gin.Context) {
	if svcErr := cc.cartService.ClearCart(ctx.Request.Context(), middleware.GetUserID(ctx)); svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
}

// GetWishlist handles GET /api/wishlist.
func (cc *CartController) GetWishlist(ctx *gin.Context) {
	products, svcErr := cc.cartService.GetWishlist(ctx.Request.Context(), middleware.GetUserID(ctx))
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"products": products})
}

// AddToWishlist handles POST /api/wishlist/:productId.
func (cc *CartController) AddToWishlist(ctx *gin.Context) {
	svcErr := cc.cartService.AddToWishlist(ctx.Request.Context(), middleware.GetUserID(ctx), ctx.Param("productId"))
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Added to wishlist"})
}

// RemoveFromWishlist handles DELETE /api/wishlist/:productId.
func (cc *CartController) RemoveFromWishlist(ctx *gin.Context) {
	svcErr := cc.cartService.RemoveFromWishlist(ctx.Request.Context(), middleware.GetUserID(ctx), ctx.Param("productId"))
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Removed from wishlist"})
}
