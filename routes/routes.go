package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rameshmuthu-dev/mobilemania-backend/controllers"
	"github.com/rameshmuthu-dev/mobilemania-backend/middleware"
)

// Controllers bundles everything RegisterRoutes needs to wire the HTTP
// surface.
type Controllers struct {
	Auth      *controllers.AuthController
	Product   *controllers.ProductController
	Review    *controllers.ReviewController
	Order     *controllers.OrderController
	Payment   *controllers.PaymentController
	Cart      *controllers.CartController
	Carousel  *controllers.CarouselController
	Analytics *controllers.AnalyticsController
}

// RegisterRoutes mounts the full API surface. The payment webhook is mounted
// outside the authenticated groups; it authenticates via the provider
// signature over the raw body instead of a session token.
func RegisterRoutes(router *gin.Engine, c *Controllers, jwtSecret string) {
	router.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.POST("/api/payments/webhook", c.Payment.StripeWebhook)

	auth := router.Group("/api/auth")
	auth.Use(middleware.RateLimitMiddleware())
	{
		auth.POST("/register", c.Auth.Register)
		auth.POST("/verify-email", c.Auth.VerifyEmail)
		auth.POST("/login", c.Auth.Login)
		auth.POST("/logout", c.Auth.Logout)
		auth.POST("/forgot-password", c.Auth.ForgotPassword)
		auth.POST("/reset-password", c.Auth.ResetPassword)
		auth.GET("/me", middleware.Auth(jwtSecret), c.Auth.Me)
	}

	public := router.Group("/api")
	{
		public.GET("/products", c.Product.ListProducts)
		public.GET("/products/:id", c.Product.GetProduct)
		public.GET("/products/:id/reviews", c.Review.ListProductReviews)
		public.GET("/carousels", c.Carousel.ListActive)
	}

	authed := router.Group("/api")
	authed.Use(middleware.Auth(jwtSecret))
	{
		authed.POST("/products/:id/reviews", c.Review.CreateReview)
		authed.PUT("/reviews/:id", c.Review.UpdateReview)
		authed.DELETE("/reviews/:id", c.Review.DeleteReview)

		authed.POST("/orders", c.Order.CreateOrder)
		authed.GET("/orders/mine", c.Order.GetMyOrders)
		authed.GET("/orders/:id", c.Order.GetOrder)
		authed.DELETE("/orders/:id", c.Order.DeleteOrder)
		authed.POST("/orders/:id/checkout", c.Payment.CreateCheckoutSession)

		authed.GET("/cart", c.Cart.GetCart)
		authed.PUT("/cart", c.Cart.PutCart)
		authed.DELETE("/cart", c.Cart.ClearCart)
		authed.DELETE("/cart/items/:productId", c.Cart.RemoveItem)

		authed.GET("/wishlist", c.Cart.GetWishlist)
		authed.POST("/wishlist/:productId", c.Cart.AddToWishlist)
		authed.DELETE("/wishlist/:productId", c.Cart.RemoveFromWishlist)
	}

	admin := router.Group("/api")
	admin.Use(middleware.Auth(jwtSecret), middleware.AdminOnly())
	{
		admin.POST("/products", c.Product.CreateProduct)
		admin.PUT("/products/:id", c.Product.UpdateProduct)
		admin.DELETE("/products/:id", c.Product.DeleteProduct)

		admin.GET("/orders", c.Order.GetAllOrders)
		admin.PUT("/orders/:id/deliver", c.Order.MarkDelivered)

		admin.GET("/admin/carousels", c.Carousel.ListAll)
		admin.POST("/admin/carousels", c.Carousel.Create)
		admin.PUT("/admin/carousels/:id", c.Carousel.Update)
		admin.DELETE("/admin/carousels/:id", c.Carousel.Delete)

		admin.GET("/admin/dashboard", c.Analytics.Dashboard)
	}
}
