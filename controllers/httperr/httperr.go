// Package httperr converts the services error taxonomy into HTTP responses.
// Every controller recovers service errors here so the UI always learns which
// product, coupon or field caused the failure.
package httperr

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/TUNKSTUN/thepicklehouse-sub000/services"
)

// JSON writes the error as a {"error": ...} payload with the status code
// matching its kind. Unknown errors become an opaque 500.
func JSON(c *gin.Context, err error) {
	var (
		validation *services.ValidationError
		notFound   *services.NotFoundError
		emptyCart  *services.EmptyCartError
		stock      *services.InsufficientStockError
		coupon     *services.InvalidCouponError
		conflict   *services.ConflictError
	)
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Error(), "field": validation.Field})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound.Error(), "entity": notFound.Entity})
	case errors.As(err, &emptyCart):
		c.JSON(http.StatusConflict, gin.H{"error": emptyCart.Error()})
	case errors.As(err, &stock):
		c.JSON(http.StatusConflict, gin.H{
			"error":      stock.Error(),
			"product_id": stock.ProductID,
			"available":  stock.Available,
		})
	case errors.As(err, &coupon):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": coupon.Error(), "coupon_code": coupon.Code})
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{"error": conflict.Error(), "retryable": true})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
