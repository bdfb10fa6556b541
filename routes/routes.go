package routes

import (
	"time"

	"shopcart-backend/handlers"
	"shopcart-backend/middleware"

	"github.com/gin-gonic/gin"
)

// Deps carries the shared pieces every cart handler is built from.
type Deps struct {
	Cart    *handlers.CartHandler
	Product *handlers.ProductHandler
	Coupon  *handlers.CouponHandler
	Fee     *handlers.FeeHandler
}

func SetupRoutes(r *gin.Engine, deps Deps) {
	// Coupon redemption is the obvious brute-force target; everything else
	// rides without a limiter.
	couponLimiter := middleware.NewSessionRateLimiter(20, 1*time.Minute)

	api := r.Group("/api")
	{
		// Public catalog routes
		api.GET("/products", deps.Product.GetProducts)
		api.GET("/products/:id", deps.Product.GetProduct)
	}

	// Cart routes resolve a session before anything else.
	cart := api.Group("/cart")
	cart.Use(middleware.CartSessionMiddleware())
	{
		cart.GET("", deps.Cart.GetCart)
		cart.DELETE("", deps.Cart.ClearCart)

		cart.POST("/items", deps.Cart.AddItem)
		cart.PUT("/items/:rowId", deps.Cart.UpdateItem)
		cart.DELETE("/items/:rowId", deps.Cart.RemoveItem)

		cart.POST("/coupons", couponLimiter.Middleware(), deps.Cart.ApplyCoupon)
		cart.DELETE("/coupons", deps.Cart.ClearCoupons)

		cart.POST("/fees", deps.Cart.ApplyFee)

		cart.POST("/store", deps.Cart.StoreCart)
		cart.POST("/restore", deps.Cart.RestoreCart)
		cart.DELETE("/store", deps.Cart.DeleteStoredCart)

		cart.GET("/metrics", deps.Cart.GetMetrics)
	}

	// Admin routes (catalog and pricing reference data)
	admin := api.Group("/admin")
	{
		admin.POST("/products", deps.Product.CreateProduct)
		admin.PUT("/products/:id", deps.Product.UpdateProduct)
		admin.DELETE("/products/:id", deps.Product.DeleteProduct)

		admin.GET("/coupons", deps.Coupon.GetCoupons)
		admin.GET("/coupons/:code", deps.Coupon.GetCoupon)
		admin.POST("/coupons", deps.Coupon.CreateCoupon)
		admin.PUT("/coupons/:code", deps.Coupon.UpdateCoupon)
		admin.DELETE("/coupons/:code", deps.Coupon.DeleteCoupon)

		admin.GET("/fees", deps.Fee.GetFees)
		admin.POST("/fees", deps.Fee.CreateFee)
		admin.DELETE("/fees/:name", deps.Fee.DeleteFee)
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
}
