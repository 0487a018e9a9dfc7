package services

import (
	"github.com/TUNKSTUN/thepicklehouse-sub000/ident"
)

type OwnerKind string

const (
	OwnerUser  OwnerKind = "user"
	OwnerGuest OwnerKind = "guest"
)

// OwnerRef identifies the actor a cart belongs to: an authenticated user by
// user id, or an anonymous guest by their cart id (the guest token). It is
// resolved by the identity bridge before core code runs; nothing in the
// services package inspects cookies or auth state.
type OwnerRef struct {
	Kind OwnerKind
	ID   string
}

func UserRef(userID string) OwnerRef {
	return OwnerRef{Kind: OwnerUser, ID: userID}
}

func GuestRef(cartID string) OwnerRef {
	return OwnerRef{Kind: OwnerGuest, ID: cartID}
}

// validate rejects malformed owner references at the boundary.
func (o OwnerRef) validate() error {
	switch o.Kind {
	case OwnerUser:
		if !ident.Valid(o.ID, ident.PrefixUser) {
			return &ValidationError{Field: "owner", Reason: "malformed user id"}
		}
	case OwnerGuest:
		if !ident.Valid(o.ID, ident.PrefixCart) {
			return &ValidationError{Field: "owner", Reason: "malformed guest cart id"}
		}
	default:
		return &ValidationError{Field: "owner", Reason: "unknown owner kind"}
	}
	return nil
}
