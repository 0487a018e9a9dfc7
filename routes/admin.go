package routes

import (
	"github.com/gin-gonic/gin"

	cartControllers "github.com/TUNKSTUN/thepicklehouse-sub000/controllers/cart"
	couponControllers "github.com/TUNKSTUN/thepicklehouse-sub000/controllers/coupon"
	orderControllers "github.com/TUNKSTUN/thepicklehouse-sub000/controllers/order"
	productcontroller "github.com/TUNKSTUN/thepicklehouse-sub000/controllers/product"
	userControllers "github.com/TUNKSTUN/thepicklehouse-sub000/controllers/user"
	"github.com/TUNKSTUN/thepicklehouse-sub000/middleware"
)

// SetupAdminRoutes registers all "/admin/*" endpoints. Requires API-Key
// middleware.
func SetupAdminRoutes(r *gin.Engine, deps Deps) {
	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.ValidateAPIKey(deps.Cfg.AdminAPIKey))
	{
		// ─────────── Product Management ───────────
		productAdmin := adminGroup.Group("/products")
		{
			productAdmin.POST("", productcontroller.CreateProduct(deps.DB))
			productAdmin.PUT("/:id", productcontroller.UpdateProduct(deps.DB))
			productAdmin.DELETE("/:id", productcontroller.DeleteProduct(deps.DB))
		}
		adminGroup.POST("/categories", productcontroller.CreateCategory(deps.DB))

		// ─────────── Coupon Management ───────────
		couponAdmin := adminGroup.Group("/coupons")
		{
			couponAdmin.POST("", couponControllers.CreateCoupon(deps.Coupons))
			couponAdmin.DELETE("/:code", couponControllers.DeactivateCoupon(deps.Coupons))
		}

		// ─────────── Order Management ───────────
		orderAdmin := adminGroup.Group("/orders")
		{
			orderAdmin.GET("", orderControllers.GetAllOrders(deps.Orders))
			orderAdmin.PUT("/:order_id/delivery-status", orderControllers.UpdateDeliveryStatus(deps.Orders))
			orderAdmin.PUT("/:order_id/payment-status", orderControllers.UpdatePaymentStatus(deps.Orders))
		}

		adminGroup.GET("/users", userControllers.GetAllUsers(deps.DB))
		adminGroup.GET("/user-cart/:user_id", cartControllers.GetUserCartForAdmin(deps.Carts))
	}
}
