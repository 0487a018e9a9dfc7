package routes

import (
	"github.com/gin-gonic/gin"

	cartControllers "github.com/TUNKSTUN/thepicklehouse-sub000/controllers/cart"
	orderControllers "github.com/TUNKSTUN/thepicklehouse-sub000/controllers/order"
	userControllers "github.com/TUNKSTUN/thepicklehouse-sub000/controllers/user"
	"github.com/TUNKSTUN/thepicklehouse-sub000/middleware"
)

// SetupShopperRoutes registers the token-protected surface. Guest and user
// tokens both work on cart and checkout; profile, order history and cart
// sync need a user account.
func SetupShopperRoutes(r *gin.Engine, deps Deps) {
	shop := r.Group("/")
	shop.Use(middleware.ResolveOwner(deps.Cfg.JWTSecret))
	{
		// ──────────────── Shopping Cart ────────────────
		cartGroup := shop.Group("/cart")
		{
			cartGroup.GET("", cartControllers.GetCart(deps.Carts))
			cartGroup.POST("", cartControllers.AddToCart(deps.Carts))
			cartGroup.PUT("/:product_id", cartControllers.UpdateQuantity(deps.Carts))
			cartGroup.DELETE("/:product_id", cartControllers.RemoveFromCart(deps.Carts))
			cartGroup.DELETE("", cartControllers.ClearCart(deps.Carts))
		}

		// ──────────────── Checkout & Orders ────────────────
		shop.POST("/checkout", orderControllers.Checkout(deps.Orders))
		shop.GET("/orders", orderControllers.GetOwnOrders(deps.Orders))
		shop.GET("/orders/:order_id", orderControllers.GetOrderByID(deps.Orders))

		// ──────────────── Account ────────────────
		userGroup := shop.Group("/user")
		userGroup.Use(middleware.RequireUser())
		{
			userGroup.GET("", userControllers.GetUser(deps.DB))
			userGroup.PUT("", userControllers.UpdateUser(deps.DB))
			userGroup.POST("/cart/sync", cartControllers.SyncGuestCart(deps.Carts))
		}
	}
}
