package services

import "fmt"

// The cart/checkout core never lets storage errors escape raw: every failure
// a caller can act on is one of the typed errors below, carrying the field,
// product or coupon that caused it.

// ValidationError rejects malformed input before any storage access.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError reports an absent product, cart, coupon or order, distinct
// from a malformed request so the UI can tell "bad request" from "stale
// reference".
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// EmptyCartError rejects checkout on a cart with no items.
type EmptyCartError struct{}

func (e *EmptyCartError) Error() string { return "cart is empty" }

// InsufficientStockError names the product short of stock. Checkout aborts
// entirely; no partial order is created.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d",
		e.ProductName, e.Requested, e.Available)
}

// InvalidCouponError reports why a coupon code cannot be applied. Checkout
// aborts rather than silently dropping the discount.
type InvalidCouponError struct {
	Code   string
	Reason string
}

func (e *InvalidCouponError) Error() string {
	return fmt.Sprintf("coupon %s: %s", e.Code, e.Reason)
}

// ConflictError means an atomic conditional write lost its race. The caller
// should retry the whole operation from a fresh read.
type ConflictError struct {
	Op string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("concurrent modification during %s, retry the operation", e.Op)
}
