package orderControllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/TUNKSTUN/thepicklehouse-sub000/controllers/httperr"
	"github.com/TUNKSTUN/thepicklehouse-sub000/middleware"
	"github.com/TUNKSTUN/thepicklehouse-sub000/models"
	"github.com/TUNKSTUN/thepicklehouse-sub000/services"
)

// -------- Request Structs --------

type CheckoutRequest struct {
	ShippingAddress models.Address `json:"shipping_address" binding:"required"`
	PaymentMethod   string         `json:"payment_method" binding:"required"` // "online" or "cod"
	CouponCode      string         `json:"coupon_code"`
}

type UpdateDeliveryStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason"`
}

type UpdatePaymentStatusRequest struct {
	PaymentStatus string `json:"payment_status" binding:"required"`
}

// -------- Handlers --------

// POST /checkout
func Checkout(orders *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner, ok := middleware.Owner(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req CheckoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		result, err := orders.InitiateCheckout(c.Request.Context(), services.CheckoutInput{
			Owner:         owner,
			Address:       req.ShippingAddress,
			PaymentMethod: models.PaymentMethod(req.PaymentMethod),
			CouponCode:    req.CouponCode,
		})
		if err != nil {
			httperr.JSON(c, err)
			return
		}
		c.JSON(http.StatusCreated, result)
	}
}

// GET /orders
func GetOwnOrders(orders *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner, ok := middleware.Owner(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		history, err := orders.ListOrders(c.Request.Context(), owner)
		if err != nil {
			httperr.JSON(c, err)
			return
		}
		c.JSON(http.StatusOK, history)
	}
}

// GET /orders/:order_id
func GetOrderByID(orders *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner, ok := middleware.Owner(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		order, err := orders.GetOrder(c.Request.Context(), c.Param("order_id"))
		if err != nil {
			httperr.JSON(c, err)
			return
		}
		if order.OwnerID != owner.ID {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

// GET /admin/orders
func GetAllOrders(orders *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		all, err := orders.ListAllOrders(c.Request.Context())
		if err != nil {
			httperr.JSON(c, err)
			return
		}
		c.JSON(http.StatusOK, all)
	}
}

// PUT /admin/orders/:order_id/delivery-status
func UpdateDeliveryStatus(orders *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateDeliveryStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		status, err := services.MapDeliveryStatus(req.Status)
		if err != nil {
			httperr.JSON(c, err)
			return
		}
		if err := orders.UpdateDeliveryStatus(c.Request.Context(), c.Param("order_id"), status, req.Reason); err != nil {
			httperr.JSON(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Delivery status updated"})
	}
}

// PUT /admin/orders/:order_id/payment-status
func UpdatePaymentStatus(orders *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdatePaymentStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		status, err := services.MapPaymentStatus(req.PaymentStatus)
		if err != nil {
			httperr.JSON(c, err)
			return
		}
		if err := orders.UpdatePaymentStatus(c.Request.Context(), c.Param("order_id"), status); err != nil {
			httperr.JSON(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Payment status updated"})
	}
}
