package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type CouponType string

const (
	CouponFlat       CouponType = "flat"
	CouponPercentage CouponType = "percentage" // value must be <= 100
)

type Coupon struct {
	// Code is stored upper-cased; lookups are case-insensitive.
	Code        string          `gorm:"primaryKey" json:"code"`
	Type        CouponType      `gorm:"type:VARCHAR(20);not null" json:"type"`
	Value       decimal.Decimal `gorm:"type:numeric;not null" json:"value"`
	MinPurchase decimal.Decimal `gorm:"type:numeric" json:"min_purchase"`
	ExpiresAt   *time.Time      `json:"expires_at,omitempty"`
	Active      bool            `json:"active"`
	CreatedAt   time.Time       `json:"created_at"`
}
