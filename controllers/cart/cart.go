package cartControllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/TUNKSTUN/thepicklehouse-sub000/controllers/httperr"
	"github.com/TUNKSTUN/thepicklehouse-sub000/middleware"
	"github.com/TUNKSTUN/thepicklehouse-sub000/services"
)

type CartItemInput struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

type QuantityInput struct {
	Quantity *int `json:"quantity" binding:"required,min=0"`
}

type SyncCartInput struct {
	GuestCartID string `json:"guest_cart_id" binding:"required"`
}

// GET /cart
func GetCart(carts *services.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner, ok := middleware.Owner(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		view, err := carts.GetCart(c.Request.Context(), owner)
		if err != nil {
			httperr.JSON(c, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

// POST /cart
func AddToCart(carts *services.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner, ok := middleware.Owner(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var input CartItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		cart, err := carts.AddToCart(c.Request.Context(), owner, input.ProductID, input.Quantity)
		if err != nil {
			httperr.JSON(c, err)
			return
		}
		c.JSON(http.StatusCreated, cart)
	}
}

// PUT /cart/:product_id
func UpdateQuantity(carts *services.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner, ok := middleware.Owner(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var input QuantityInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		cart, err := carts.UpdateQuantity(c.Request.Context(), owner, c.Param("product_id"), *input.Quantity)
		if err != nil {
			httperr.JSON(c, err)
			return
		}
		if cart == nil {
			c.JSON(http.StatusOK, gin.H{"message": "No cart to update"})
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

// DELETE /cart/:product_id
func RemoveFromCart(carts *services.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner, ok := middleware.Owner(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		cart, err := carts.RemoveFromCart(c.Request.Context(), owner, c.Param("product_id"))
		if err != nil {
			httperr.JSON(c, err)
			return
		}
		if cart == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Cart not found"})
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

// DELETE /cart
func ClearCart(carts *services.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner, ok := middleware.Owner(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		cart, err := carts.ClearCart(c.Request.Context(), owner)
		if err != nil {
			httperr.JSON(c, err)
			return
		}
		if cart == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Cart not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
	}
}

// GET /admin/user-cart/:user_id
func GetUserCartForAdmin(carts *services.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		view, err := carts.GetCart(c.Request.Context(), services.UserRef(c.Param("user_id")))
		if err != nil {
			httperr.JSON(c, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

// POST /user/cart/sync
//
// Called once right after login to fold the guest cart into the user's cart.
func SyncGuestCart(carts *services.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner, ok := middleware.Owner(c)
		if !ok || owner.Kind != services.OwnerUser {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var input SyncCartInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		cart, err := carts.SyncGuestCart(c.Request.Context(), owner.ID, input.GuestCartID)
		if err != nil {
			httperr.JSON(c, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}
