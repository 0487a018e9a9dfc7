package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string
type DeliveryStatus string
type PaymentMethod string

const (
	// Payment statuses
	PaymentStatusPending   PaymentStatus = "pending"   // Awaiting payment
	PaymentStatusPaid      PaymentStatus = "paid"      // Payment completed successfully
	PaymentStatusFailed    PaymentStatus = "failed"    // Payment attempt failed
	PaymentStatusCancelled PaymentStatus = "cancelled" // Payment cancelled

	// Delivery statuses (typical e-commerce flow)
	DeliveryStatusProcessing DeliveryStatus = "processing" // Order placed, being prepared
	DeliveryStatusShipped    DeliveryStatus = "shipped"    // Out for delivery
	DeliveryStatusDelivered  DeliveryStatus = "delivered"  // Customer received the items
	DeliveryStatusCancelled  DeliveryStatus = "cancelled"  // Cancelled before shipping

	// Payment methods
	PaymentMethodOnline PaymentMethod = "online"
	PaymentMethodCOD    PaymentMethod = "cod" // cash on delivery
)

type Order struct {
	ID string `gorm:"primaryKey" json:"id"` // order_<token>
	// OwnerID is the user id for authenticated checkouts, or the guest
	// cart id for guest checkouts.
	OwnerID         string          `gorm:"index;not null" json:"owner_id"`
	Items           []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	Subtotal        decimal.Decimal `gorm:"type:numeric" json:"subtotal"`
	Discount        decimal.Decimal `gorm:"type:numeric" json:"discount"`
	ShippingFee     decimal.Decimal `gorm:"type:numeric" json:"shipping_fee"`
	TotalAmount     decimal.Decimal `gorm:"type:numeric" json:"total_amount"`
	CouponCode      string          `json:"coupon_code,omitempty"`
	PaymentStatus   PaymentStatus   `gorm:"type:VARCHAR(20);default:'pending'" json:"payment_status"`
	DeliveryStatus  DeliveryStatus  `gorm:"type:VARCHAR(20);default:'processing'" json:"delivery_status"`
	CancelReason    string          `json:"cancel_reason,omitempty"`
	PaymentMethod   PaymentMethod   `gorm:"type:VARCHAR(20)" json:"payment_method"`
	PaymentRef      string          `json:"payment_ref,omitempty"` // external gateway reference, online orders only
	ShippingAddress Address         `gorm:"embedded;embeddedPrefix:ship_" json:"shipping_address"`
	CreatedAt       time.Time       `json:"created_at"`
}

// OrderItem is a frozen snapshot: product id, name and unit price are
// copied at checkout and never re-synced to the catalog.
type OrderItem struct {
	ID              uint            `gorm:"primaryKey" json:"-"`
	OrderID         string          `gorm:"index" json:"-"`
	ProductID       string          `json:"product_id"`
	ProductName     string          `json:"product_name"`
	Quantity        int             `json:"quantity"`
	PriceAtPurchase decimal.Decimal `gorm:"type:numeric" json:"price_at_purchase"`
}
