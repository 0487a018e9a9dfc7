package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/TUNKSTUN/thepicklehouse-sub000/auth"
	contactControllers "github.com/TUNKSTUN/thepicklehouse-sub000/controllers/contact"
	couponControllers "github.com/TUNKSTUN/thepicklehouse-sub000/controllers/coupon"
	productcontroller "github.com/TUNKSTUN/thepicklehouse-sub000/controllers/product"
)

// SetupStorefrontRoutes registers the public endpoints: catalog browsing,
// guest session issue, coupon pre-checks and the contact form.
func SetupStorefrontRoutes(r *gin.Engine, deps Deps) {
	r.GET("/products", productcontroller.GetProducts(deps.DB))
	r.GET("/products/:id", productcontroller.GetProductByID(deps.DB))
	r.GET("/categories", productcontroller.GetAllCategories(deps.DB))

	r.POST("/auth/guest", auth.CreateGuestSession(deps.Carts, deps.Cfg))

	r.POST("/coupons/validate", couponControllers.ValidateCoupon(deps.Coupons))

	r.POST("/contact", contactControllers.SubmitContact(deps.Notifier))
}
