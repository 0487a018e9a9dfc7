package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	ID          string `gorm:"primaryKey" json:"id"` // prod_<token>
	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`
	// Price is the base unit price. DiscountPct is an optional percentage
	// off (0 = no discount); the displayed price is always derived from
	// these two, never stored.
	Price       decimal.Decimal `gorm:"type:numeric;not null" json:"price"`
	DiscountPct int             `json:"discount_pct"`
	Stock       int             `json:"stock"`
	InStock     bool            `json:"in_stock"` // derived: stock > 0
	Categories  []Category      `gorm:"many2many:product_categories;" json:"categories,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// DiscountedPrice returns the currently effective unit price.
func (p *Product) DiscountedPrice() decimal.Decimal {
	if p.DiscountPct <= 0 {
		return p.Price
	}
	pct := decimal.NewFromInt(int64(100 - p.DiscountPct)).Div(decimal.NewFromInt(100))
	return p.Price.Mul(pct)
}

// BeforeSave keeps the in-stock flag consistent with the stock count.
// Conditional stock updates that bypass hooks must set in_stock themselves.
func (p *Product) BeforeSave(_ *gorm.DB) error {
	p.InStock = p.Stock > 0
	return nil
}
