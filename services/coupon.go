package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/TUNKSTUN/thepicklehouse-sub000/models"
)

// CouponService validates promotion codes against a cart subtotal. Coupons
// are created by the admin surface and read-only here.
type CouponService struct {
	db *gorm.DB
}

func NewCouponService(db *gorm.DB) *CouponService {
	return &CouponService{db: db}
}

var hundred = decimal.NewFromInt(100)

// ValidateCoupon looks up an active coupon by case-insensitive exact code
// match and checks it against the subtotal. Inapplicable coupons return an
// *InvalidCouponError naming the reason, never a silent nil.
func (s *CouponService) ValidateCoupon(ctx context.Context, code string, subtotal decimal.Decimal) (*models.Coupon, error) {
	return s.validate(s.db.WithContext(ctx), code, subtotal)
}

// validate runs the coupon checks on the given handle so checkout can reuse
// them inside its own transaction.
func (s *CouponService) validate(tx *gorm.DB, code string, subtotal decimal.Decimal) (*models.Coupon, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, &ValidationError{Field: "coupon_code", Reason: "must not be empty"}
	}

	var coupon models.Coupon
	err := tx.First(&coupon, "code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &InvalidCouponError{Code: code, Reason: "not found"}
	}
	if err != nil {
		return nil, err
	}

	if !coupon.Active {
		return nil, &InvalidCouponError{Code: code, Reason: "no longer active"}
	}
	if coupon.ExpiresAt != nil && coupon.ExpiresAt.Before(time.Now()) {
		return nil, &InvalidCouponError{Code: code, Reason: "expired"}
	}
	if subtotal.LessThan(coupon.MinPurchase) {
		return nil, &InvalidCouponError{
			Code:   code,
			Reason: "minimum purchase of " + coupon.MinPurchase.StringFixed(2) + " not met",
		}
	}
	return &coupon, nil
}

// CalculateDiscount returns the discount amount for an already-validated
// coupon. A flat discount is capped at the subtotal so the total can never
// go negative; percentages stay exact and are rounded only at the final
// order total.
func CalculateDiscount(coupon *models.Coupon, subtotal decimal.Decimal) decimal.Decimal {
	switch coupon.Type {
	case models.CouponFlat:
		if coupon.Value.GreaterThan(subtotal) {
			return subtotal
		}
		return coupon.Value
	case models.CouponPercentage:
		return coupon.Value.Div(hundred).Mul(subtotal)
	default:
		return decimal.Zero
	}
}

// CreateCoupon registers a new promotion code (admin surface). Codes are
// normalized to upper case so lookups stay case-insensitive.
func (s *CouponService) CreateCoupon(ctx context.Context, coupon *models.Coupon) error {
	coupon.Code = strings.ToUpper(strings.TrimSpace(coupon.Code))
	if coupon.Code == "" {
		return &ValidationError{Field: "code", Reason: "must not be empty"}
	}
	switch coupon.Type {
	case models.CouponFlat, models.CouponPercentage:
	default:
		return &ValidationError{Field: "type", Reason: "must be flat or percentage"}
	}
	if coupon.Value.LessThanOrEqual(decimal.Zero) {
		return &ValidationError{Field: "value", Reason: "must be positive"}
	}
	if coupon.Type == models.CouponPercentage && coupon.Value.GreaterThan(hundred) {
		return &ValidationError{Field: "value", Reason: "percentage must not exceed 100"}
	}
	if coupon.MinPurchase.LessThan(decimal.Zero) {
		return &ValidationError{Field: "min_purchase", Reason: "must not be negative"}
	}
	return s.db.WithContext(ctx).Create(coupon).Error
}

// DeactivateCoupon turns a code off without deleting its record.
func (s *CouponService) DeactivateCoupon(ctx context.Context, code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	res := s.db.WithContext(ctx).Model(&models.Coupon{}).
		Where("code = ?", code).Update("active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &NotFoundError{Entity: "coupon", ID: code}
	}
	return nil
}
