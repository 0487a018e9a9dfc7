package couponControllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/TUNKSTUN/thepicklehouse-sub000/controllers/httperr"
	"github.com/TUNKSTUN/thepicklehouse-sub000/models"
	"github.com/TUNKSTUN/thepicklehouse-sub000/services"
)

type ValidateCouponRequest struct {
	Code     string          `json:"code" binding:"required"`
	Subtotal decimal.Decimal `json:"subtotal" binding:"required"`
}

type CreateCouponRequest struct {
	Code        string          `json:"code" binding:"required"`
	Type        string          `json:"type" binding:"required"` // "flat" or "percentage"
	Value       decimal.Decimal `json:"value" binding:"required"`
	MinPurchase decimal.Decimal `json:"min_purchase"`
	ExpiresAt   *time.Time      `json:"expires_at"`
}

// POST /coupons/validate
//
// Lets the cart page check a code before checkout. An inapplicable coupon is
// a normal response here, not an error; checkout is where it becomes fatal.
func ValidateCoupon(coupons *services.CouponService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ValidateCouponRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		coupon, err := coupons.ValidateCoupon(c.Request.Context(), req.Code, req.Subtotal)
		if err != nil {
			if cerr, ok := err.(*services.InvalidCouponError); ok {
				c.JSON(http.StatusOK, gin.H{"valid": false, "reason": cerr.Reason})
				return
			}
			httperr.JSON(c, err)
			return
		}
		discount := services.CalculateDiscount(coupon, req.Subtotal)
		c.JSON(http.StatusOK, gin.H{
			"valid":    true,
			"coupon":   coupon,
			"discount": discount.Round(2),
		})
	}
}

// POST /admin/coupons
func CreateCoupon(coupons *services.CouponService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateCouponRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		coupon := models.Coupon{
			Code:        req.Code,
			Type:        models.CouponType(req.Type),
			Value:       req.Value,
			MinPurchase: req.MinPurchase,
			ExpiresAt:   req.ExpiresAt,
			Active:      true,
		}
		if err := coupons.CreateCoupon(c.Request.Context(), &coupon); err != nil {
			httperr.JSON(c, err)
			return
		}
		c.JSON(http.StatusCreated, coupon)
	}
}

// DELETE /admin/coupons/:code
func DeactivateCoupon(coupons *services.CouponService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := coupons.DeactivateCoupon(c.Request.Context(), c.Param("code")); err != nil {
			httperr.JSON(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Coupon deactivated"})
	}
}
