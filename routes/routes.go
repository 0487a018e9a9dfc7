package routes

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/TUNKSTUN/thepicklehouse-sub000/config"
	contactControllers "github.com/TUNKSTUN/thepicklehouse-sub000/controllers/contact"
	"github.com/TUNKSTUN/thepicklehouse-sub000/services"
)

// Deps bundles everything the route groups need. Services are built once
// here; controllers stay thin closures over them.
type Deps struct {
	DB       *gorm.DB
	Cfg      config.Config
	Logger   *slog.Logger
	Carts    *services.CartService
	Coupons  *services.CouponService
	Orders   *services.OrderService
	Notifier contactControllers.Notifier
}

// NewDeps wires the service layer from the database handle and config.
func NewDeps(db *gorm.DB, cfg config.Config, logger *slog.Logger) Deps {
	coupons := services.NewCouponService(db)
	return Deps{
		DB:      db,
		Cfg:     cfg,
		Logger:  logger,
		Carts:   services.NewCartService(db),
		Coupons: coupons,
		Orders: services.NewOrderService(db, coupons, services.ShippingConfig{
			FreeShippingThreshold: cfg.FreeShippingThreshold,
			ShippingFee:           cfg.ShippingFee,
		}),
		Notifier: contactControllers.LogNotifier{Logger: logger},
	}
}

// SetupRoutes is the single entry-point that wires up the public storefront,
// the token-protected cart/checkout surface and the admin group.
func SetupRoutes(r *gin.Engine, deps Deps) {
	SetupStorefrontRoutes(r, deps)
	SetupShopperRoutes(r, deps)
	SetupAdminRoutes(r, deps)
}
