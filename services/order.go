package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/TUNKSTUN/thepicklehouse-sub000/ident"
	"github.com/TUNKSTUN/thepicklehouse-sub000/models"
)

// ShippingConfig is the storefront's shipping rule: free at or above the
// threshold, flat fee below it.
type ShippingConfig struct {
	FreeShippingThreshold decimal.Decimal
	ShippingFee           decimal.Decimal
}

// OrderService turns a cart into an immutable order. The checkout sequence
// writes the order row before touching stock, decrements stock with atomic
// conditional updates, and runs inside one transaction so any failure leaves
// cart, stock and order store unchanged.
type OrderService struct {
	db       *gorm.DB
	coupons  *CouponService
	shipping ShippingConfig
}

func NewOrderService(db *gorm.DB, coupons *CouponService, shipping ShippingConfig) *OrderService {
	return &OrderService{db: db, coupons: coupons, shipping: shipping}
}

type CheckoutInput struct {
	Owner         OwnerRef
	Address       models.Address
	PaymentMethod models.PaymentMethod
	CouponCode    string // optional
}

type CheckoutResult struct {
	Order *models.Order `json:"order"`
	// PaymentRef is the reference handed to the external payment gateway
	// for online orders; empty for cash on delivery.
	PaymentRef string `json:"payment_ref,omitempty"`
}

// InitiateCheckout builds an order from the owner's cart: live prices are
// re-fetched and locked in, stock is verified before any write, the coupon is
// applied or the whole checkout fails, and the cart transitions to
// checked-out. At-most-once per cart instance: a checked-out cart cannot
// produce a second order.
func (s *OrderService) InitiateCheckout(ctx context.Context, in CheckoutInput) (*CheckoutResult, error) {
	if err := in.Owner.validate(); err != nil {
		return nil, err
	}
	switch in.PaymentMethod {
	case models.PaymentMethodOnline, models.PaymentMethodCOD:
	default:
		return nil, &ValidationError{Field: "payment_method", Reason: "must be online or cod"}
	}
	if in.Address.Street == "" || in.Address.City == "" {
		return nil, &ValidationError{Field: "shipping_address", Reason: "street and city are required"}
	}

	var order models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := findCart(tx, in.Owner, true)
		if err != nil {
			return err
		}
		if cart == nil || len(cart.Items) == 0 {
			return &EmptyCartError{}
		}
		// distinct from an empty cart so the client can say "this cart
		// already produced an order"
		if cart.IsCheckedOut {
			return &ValidationError{Field: "cart", Reason: "cart already checked out"}
		}

		// Re-fetch every product: checkout is the authoritative pricing
		// moment, and a deleted product fails the whole attempt.
		type line struct {
			product *models.Product
			qty     int
		}
		lines := make([]line, 0, len(cart.Items))
		subtotal := decimal.Zero
		for _, item := range cart.Items {
			var product models.Product
			if err := tx.First(&product, "id = ?", item.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return &NotFoundError{Entity: "product", ID: item.ProductID}
				}
				return err
			}
			// full stock check before any write, so a short item aborts
			// with nothing to roll back
			if product.Stock < item.Quantity {
				return &InsufficientStockError{
					ProductID:   product.ID,
					ProductName: product.Name,
					Requested:   item.Quantity,
					Available:   product.Stock,
				}
			}
			lines = append(lines, line{product: &product, qty: item.Quantity})
			subtotal = subtotal.Add(product.DiscountedPrice().Mul(decimal.NewFromInt(int64(item.Quantity))))
		}

		discount := decimal.Zero
		couponCode := ""
		if in.CouponCode != "" {
			coupon, err := s.coupons.validate(tx, in.CouponCode, subtotal)
			if err != nil {
				return err
			}
			discount = CalculateDiscount(coupon, subtotal)
			couponCode = coupon.Code
		}

		discounted := subtotal.Sub(discount)
		shippingFee := s.shipping.ShippingFee
		if discounted.GreaterThanOrEqual(s.shipping.FreeShippingThreshold) {
			shippingFee = decimal.Zero
		}
		// round once, at the final total
		total := discounted.Add(shippingFee).Round(2)

		orderItems := make([]models.OrderItem, 0, len(lines))
		for _, l := range lines {
			orderItems = append(orderItems, models.OrderItem{
				ProductID:       l.product.ID,
				ProductName:     l.product.Name,
				Quantity:        l.qty,
				PriceAtPurchase: l.product.DiscountedPrice(),
			})
		}

		order = models.Order{
			ID:              ident.New(ident.PrefixOrder),
			OwnerID:         in.Owner.ID,
			Items:           orderItems,
			Subtotal:        subtotal,
			Discount:        discount,
			ShippingFee:     shippingFee,
			TotalAmount:     total,
			CouponCode:      couponCode,
			PaymentStatus:   models.PaymentStatusPending,
			DeliveryStatus:  models.DeliveryStatusProcessing,
			PaymentMethod:   in.PaymentMethod,
			ShippingAddress: in.Address,
			CreatedAt:       time.Now(),
		}
		if in.PaymentMethod == models.PaymentMethodOnline {
			order.PaymentRef = uuid.NewString()
		}

		// The order row is written before any stock decrement; a crash in
		// between leaves a pending order to reconcile, never vanished stock.
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		for _, l := range lines {
			// Conditional decrement: only succeeds while the resulting
			// stock stays non-negative, so concurrent checkouts cannot
			// oversell. A lost race aborts the transaction, rolling back
			// the order row and every decrement already applied.
			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", l.product.ID, l.qty).
				UpdateColumns(map[string]interface{}{
					"stock":    gorm.Expr("stock - ?", l.qty),
					"in_stock": gorm.Expr("stock - ? > 0", l.qty),
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return &ConflictError{Op: "stock decrement for " + l.product.Name}
			}
		}

		// The cart stays around with its items for historical display but
		// no longer accepts mutations.
		return tx.Model(&models.Cart{}).Where("id = ?", cart.ID).
			Update("is_checked_out", true).Error
	})
	if err != nil {
		return nil, err
	}

	return &CheckoutResult{Order: &order, PaymentRef: order.PaymentRef}, nil
}

// GetOrder fetches one order with its item snapshot.
func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	if !ident.Valid(orderID, ident.PrefixOrder) {
		return nil, &ValidationError{Field: "order_id", Reason: "malformed order id"}
	}
	var order models.Order
	err := s.db.WithContext(ctx).Preload("Items").First(&order, "id = ?", orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Entity: "order", ID: orderID}
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListOrders returns the owner's purchase history, newest first.
func (s *OrderService) ListOrders(ctx context.Context, owner OwnerRef) ([]models.Order, error) {
	if err := owner.validate(); err != nil {
		return nil, err
	}
	var orders []models.Order
	err := s.db.WithContext(ctx).Preload("Items").
		Where("owner_id = ?", owner.ID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// ListAllOrders returns every order, newest first (admin surface).
func (s *OrderService) ListAllOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.WithContext(ctx).Preload("Items").
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// MapDeliveryStatus parses a delivery status supplied over the wire.
func MapDeliveryStatus(status string) (models.DeliveryStatus, error) {
	switch strings.ToLower(status) {
	case string(models.DeliveryStatusProcessing):
		return models.DeliveryStatusProcessing, nil
	case string(models.DeliveryStatusShipped):
		return models.DeliveryStatusShipped, nil
	case string(models.DeliveryStatusDelivered):
		return models.DeliveryStatusDelivered, nil
	case string(models.DeliveryStatusCancelled):
		return models.DeliveryStatusCancelled, nil
	default:
		return "", &ValidationError{Field: "delivery_status", Reason: "unknown status " + status}
	}
}

// MapPaymentStatus parses a payment status supplied over the wire.
func MapPaymentStatus(status string) (models.PaymentStatus, error) {
	switch strings.ToLower(status) {
	case string(models.PaymentStatusPending):
		return models.PaymentStatusPending, nil
	case string(models.PaymentStatusPaid):
		return models.PaymentStatusPaid, nil
	case string(models.PaymentStatusFailed):
		return models.PaymentStatusFailed, nil
	case string(models.PaymentStatusCancelled):
		return models.PaymentStatusCancelled, nil
	default:
		return "", &ValidationError{Field: "payment_status", Reason: "unknown status " + status}
	}
}

// UpdateDeliveryStatus transitions an order's delivery state (admin surface).
// Cancellation may carry a reason.
func (s *OrderService) UpdateDeliveryStatus(ctx context.Context, orderID string, status models.DeliveryStatus, reason string) error {
	if !ident.Valid(orderID, ident.PrefixOrder) {
		return &ValidationError{Field: "order_id", Reason: "malformed order id"}
	}
	updates := map[string]interface{}{"delivery_status": status}
	if status == models.DeliveryStatusCancelled {
		updates["cancel_reason"] = reason
	}
	res := s.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", orderID).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &NotFoundError{Entity: "order", ID: orderID}
	}
	return nil
}

// UpdatePaymentStatus transitions an order's payment state, e.g. from a
// gateway webhook or the admin surface.
func (s *OrderService) UpdatePaymentStatus(ctx context.Context, orderID string, status models.PaymentStatus) error {
	if !ident.Valid(orderID, ident.PrefixOrder) {
		return &ValidationError{Field: "order_id", Reason: "malformed order id"}
	}
	res := s.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", orderID).Update("payment_status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &NotFoundError{Entity: "order", ID: orderID}
	}
	return nil
}
