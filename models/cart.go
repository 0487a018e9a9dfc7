package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Cart struct {
	ID string `gorm:"primaryKey" json:"id"` // cart_<token>
	// OwnerID is the owning user id, or nil for guest carts. Guest carts
	// are keyed by the cart id itself, which doubles as the guest token.
	// The partial unique index enforces one open cart per user; checked-out
	// carts fall out of it and stay around as purchase history.
	OwnerID      *string    `gorm:"index:idx_carts_open_owner,unique,where:is_checked_out = false" json:"owner_id,omitempty"`
	Items        []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	IsCheckedOut bool       `json:"is_checked_out"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type CartItem struct {
	ID        uint   `gorm:"primaryKey" json:"-"`
	CartID    string `gorm:"index;uniqueIndex:idx_cart_product" json:"-"`
	ProductID string `gorm:"uniqueIndex:idx_cart_product" json:"product_id"`
	Quantity  int    `json:"quantity"`
	// PriceAtAdd is the base price snapshot captured when the item was
	// first added. Displayed and checkout prices are always recomputed
	// from the live catalog; this field is historical only.
	PriceAtAdd decimal.Decimal `gorm:"type:numeric" json:"price_at_add"`
	AddedAt    time.Time       `json:"added_at"`
}
