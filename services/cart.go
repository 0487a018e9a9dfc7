package services

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/TUNKSTUN/thepicklehouse-sub000/ident"
	"github.com/TUNKSTUN/thepicklehouse-sub000/models"
)

// CartService owns the cart lifecycle: lazy creation, item mutations and the
// guest-to-user merge on login. All multi-step mutations run in a transaction
// and per-item writes are atomic conditional updates, so concurrent requests
// for the same cart cannot clobber each other.
type CartService struct {
	db *gorm.DB
}

func NewCartService(db *gorm.DB) *CartService {
	return &CartService{db: db}
}

// CartView is what the storefront displays: stored items joined against the
// live catalog. Unit prices are always the product's current discounted
// price, never the stored snapshot; items whose product no longer exists are
// excluded.
type CartView struct {
	CartID       string          `json:"cart_id,omitempty"`
	IsCheckedOut bool            `json:"is_checked_out"`
	Items        []CartItemView  `json:"items"`
	Subtotal     decimal.Decimal `json:"subtotal"`
}

type CartItemView struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// GetCart resolves the owner's cart and joins it against the catalog. A
// missing cart yields an empty view; reads never create carts.
func (s *CartService) GetCart(ctx context.Context, owner OwnerRef) (*CartView, error) {
	if err := owner.validate(); err != nil {
		return nil, err
	}

	tx := s.db.WithContext(ctx)
	cart, err := findCart(tx, owner, true)
	if err != nil {
		return nil, err
	}

	view := &CartView{Items: []CartItemView{}, Subtotal: decimal.Zero}
	if cart == nil {
		return view, nil
	}
	view.CartID = cart.ID
	view.IsCheckedOut = cart.IsCheckedOut

	if len(cart.Items) == 0 {
		return view, nil
	}

	productIDs := make([]string, 0, len(cart.Items))
	for _, item := range cart.Items {
		productIDs = append(productIDs, item.ProductID)
	}
	var products []models.Product
	if err := tx.Where("id IN ?", productIDs).Find(&products).Error; err != nil {
		return nil, err
	}
	byID := make(map[string]*models.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	for _, item := range cart.Items {
		product, ok := byID[item.ProductID]
		if !ok {
			// product deleted since it was added
			continue
		}
		price := product.DiscountedPrice()
		line := price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		view.Items = append(view.Items, CartItemView{
			ProductID: item.ProductID,
			Name:      product.Name,
			Quantity:  item.Quantity,
			UnitPrice: price,
			LineTotal: line,
		})
		view.Subtotal = view.Subtotal.Add(line)
	}
	return view, nil
}

// CreateCart returns the owner's active cart, creating one if needed. A nil
// owner creates a brand-new guest cart whose id doubles as the guest token.
func (s *CartService) CreateCart(ctx context.Context, owner *OwnerRef) (*models.Cart, error) {
	tx := s.db.WithContext(ctx)

	if owner == nil {
		cart := models.Cart{ID: ident.New(ident.PrefixCart)}
		if err := tx.Create(&cart).Error; err != nil {
			return nil, err
		}
		cart.Items = []models.CartItem{}
		return &cart, nil
	}

	if err := owner.validate(); err != nil {
		return nil, err
	}

	var result *models.Cart
	err := tx.Transaction(func(tx *gorm.DB) error {
		cart, err := ensureCart(tx, *owner)
		if err != nil {
			return err
		}
		result = cart
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// AddToCart appends the product or, if the cart already holds it, atomically
// adds the quantities together (a single line item per product, always).
func (s *CartService) AddToCart(ctx context.Context, owner OwnerRef, productID string, quantity int) (*models.Cart, error) {
	if err := owner.validate(); err != nil {
		return nil, err
	}
	if quantity < 1 {
		return nil, &ValidationError{Field: "quantity", Reason: "must be at least 1"}
	}
	if !ident.Valid(productID, ident.PrefixProduct) {
		return nil, &ValidationError{Field: "product_id", Reason: "malformed product id"}
	}

	var result *models.Cart
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.First(&product, "id = ?", productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entity: "product", ID: productID}
			}
			return err
		}

		cart, err := ensureCart(tx, owner)
		if err != nil {
			return err
		}

		item := models.CartItem{
			CartID:     cart.ID,
			ProductID:  product.ID,
			Quantity:   quantity,
			PriceAtAdd: product.Price,
			AddedAt:    time.Now(),
		}
		// Atomic upsert: concurrent adds for the same product sum instead
		// of clobbering each other.
		err = tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"quantity": gorm.Expr("cart_items.quantity + excluded.quantity"),
				"added_at": item.AddedAt,
			}),
		}).Create(&item).Error
		if err != nil {
			return err
		}

		result, err = loadCart(tx, cart.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateQuantity sets an item's quantity. Zero removes the item; a quantity
// for a product not yet in the cart behaves as an add with a fresh price
// snapshot. Returns (nil, nil) when there is no cart and nothing to do.
func (s *CartService) UpdateQuantity(ctx context.Context, owner OwnerRef, productID string, quantity int) (*models.Cart, error) {
	if err := owner.validate(); err != nil {
		return nil, err
	}
	if quantity < 0 {
		return nil, &ValidationError{Field: "quantity", Reason: "must not be negative"}
	}
	if !ident.Valid(productID, ident.PrefixProduct) {
		return nil, &ValidationError{Field: "product_id", Reason: "malformed product id"}
	}

	var result *models.Cart
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := findCart(tx, owner, false)
		if err != nil {
			return err
		}
		if cart == nil {
			if quantity == 0 {
				return nil // no cart, nothing to remove
			}
			cart, err = ensureCart(tx, owner)
			if err != nil {
				return err
			}
		}
		if cart.IsCheckedOut {
			cart, err = ensureCart(tx, owner)
			if err != nil {
				return err
			}
		}

		if quantity == 0 {
			if err := tx.Where("cart_id = ? AND product_id = ?", cart.ID, productID).
				Delete(&models.CartItem{}).Error; err != nil {
				return err
			}
			result, err = loadCart(tx, cart.ID)
			return err
		}

		// Atomic per-item update keyed by (cart id, product id); no whole
		// document read-modify-write.
		res := tx.Model(&models.CartItem{}).
			Where("cart_id = ? AND product_id = ?", cart.ID, productID).
			Updates(map[string]interface{}{"quantity": quantity, "added_at": time.Now()})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// item not in cart yet: effectively an add, re-fetching the price
			var product models.Product
			if err := tx.First(&product, "id = ?", productID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return &NotFoundError{Entity: "product", ID: productID}
				}
				return err
			}
			item := models.CartItem{
				CartID:     cart.ID,
				ProductID:  product.ID,
				Quantity:   quantity,
				PriceAtAdd: product.Price,
				AddedAt:    time.Now(),
			}
			err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
				DoUpdates: clause.Assignments(map[string]interface{}{
					"quantity": quantity,
					"added_at": item.AddedAt,
				}),
			}).Create(&item).Error
			if err != nil {
				return err
			}
		}

		result, err = loadCart(tx, cart.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RemoveFromCart deletes the matching item unconditionally. Returns
// (nil, nil) when the owner has no cart.
func (s *CartService) RemoveFromCart(ctx context.Context, owner OwnerRef, productID string) (*models.Cart, error) {
	if err := owner.validate(); err != nil {
		return nil, err
	}
	if !ident.Valid(productID, ident.PrefixProduct) {
		return nil, &ValidationError{Field: "product_id", Reason: "malformed product id"}
	}

	var result *models.Cart
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := findCart(tx, owner, false)
		if err != nil {
			return err
		}
		if cart == nil {
			return nil
		}
		if cart.IsCheckedOut {
			cart, err = ensureCart(tx, owner)
			if err != nil {
				return err
			}
		}
		if err := tx.Where("cart_id = ? AND product_id = ?", cart.ID, productID).
			Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		result, err = loadCart(tx, cart.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ClearCart empties the open cart. After a checkout it opens a fresh empty
// cart instead of touching the purchased one. Returns (nil, nil) when the
// owner has no cart.
func (s *CartService) ClearCart(ctx context.Context, owner OwnerRef) (*models.Cart, error) {
	if err := owner.validate(); err != nil {
		return nil, err
	}

	var result *models.Cart
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := findCart(tx, owner, false)
		if err != nil {
			return err
		}
		if cart == nil {
			return nil
		}
		if cart.IsCheckedOut {
			cart, err = ensureCart(tx, owner)
			if err != nil {
				return err
			}
			result, err = loadCart(tx, cart.ID)
			return err
		}
		if err := tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		result, err = loadCart(tx, cart.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SyncGuestCart merges a guest cart into the user's cart at login: matching
// products sum their quantities, the rest move over unchanged, and the guest
// cart is deleted in the same transaction. The delete doubles as the merge
// guard: if a concurrent login already consumed the guest cart, the merge is
// skipped and the user cart is returned as-is, so two tabs can never
// double-count.
func (s *CartService) SyncGuestCart(ctx context.Context, userID, guestCartID string) (*models.Cart, error) {
	if !ident.Valid(userID, ident.PrefixUser) {
		return nil, &ValidationError{Field: "user_id", Reason: "malformed user id"}
	}
	if !ident.Valid(guestCartID, ident.PrefixCart) {
		return nil, &ValidationError{Field: "guest_cart_id", Reason: "malformed cart id"}
	}

	var result *models.Cart
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var guest models.Cart
		err := tx.Preload("Items").
			Where("id = ? AND owner_id IS NULL", guestCartID).
			First(&guest).Error
		guestMissing := errors.Is(err, gorm.ErrRecordNotFound)
		if err != nil && !guestMissing {
			return err
		}

		userCart, err := ensureCart(tx, UserRef(userID))
		if err != nil {
			return err
		}

		// A checked-out guest cart was already turned into an order; its
		// items must not reappear, and the row stays behind as the anchor
		// for the guest's purchase history.
		if guestMissing || guest.IsCheckedOut {
			result = userCart
			return nil
		}

		// Consume the guest cart first; zero rows affected means another
		// login merged it already.
		res := tx.Where("id = ? AND owner_id IS NULL", guestCartID).Delete(&models.Cart{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			result = userCart
			return nil
		}
		if err := tx.Where("cart_id = ?", guestCartID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}

		for _, item := range guest.Items {
			merged := models.CartItem{
				CartID:     userCart.ID,
				ProductID:  item.ProductID,
				Quantity:   item.Quantity,
				PriceAtAdd: item.PriceAtAdd,
				AddedAt:    item.AddedAt,
			}
			err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
				DoUpdates: clause.Assignments(map[string]interface{}{
					"quantity": gorm.Expr("cart_items.quantity + excluded.quantity"),
				}),
			}).Create(&merged).Error
			if err != nil {
				return err
			}
		}

		result, err = loadCart(tx, userCart.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// findCart resolves the owner's cart row, nil if absent.
func findCart(tx *gorm.DB, owner OwnerRef, withItems bool) (*models.Cart, error) {
	q := tx
	if withItems {
		q = q.Preload("Items")
	}
	var cart models.Cart
	var err error
	switch owner.Kind {
	case OwnerUser:
		// prefer the open cart; fall back to the latest checked-out one
		err = q.Where("owner_id = ?", owner.ID).
			Order("is_checked_out").Order("created_at DESC").
			First(&cart).Error
	default:
		err = q.Where("id = ? AND owner_id IS NULL", owner.ID).First(&cart).Error
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// ensureCart returns the owner's open (non-checked-out) cart, creating it
// atomically when absent. Creation is an upsert keyed by owner identity, so
// two racing first-requests cannot produce duplicate carts. A checked-out
// cart is terminal: for users the first mutation after checkout opens a
// fresh cart while the purchased one stays behind as history. A checked-out
// guest cart is rejected; the client must start a new guest session.
func ensureCart(tx *gorm.DB, owner OwnerRef) (*models.Cart, error) {
	if owner.Kind == OwnerGuest {
		cart := models.Cart{ID: owner.ID}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoNothing: true,
		}).Create(&cart).Error; err != nil {
			return nil, err
		}
		var existing models.Cart
		if err := tx.Where("id = ? AND owner_id IS NULL", owner.ID).First(&existing).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, &NotFoundError{Entity: "cart", ID: owner.ID}
			}
			return nil, err
		}
		if existing.IsCheckedOut {
			return nil, &ValidationError{Field: "cart", Reason: "cart already checked out"}
		}
		return &existing, nil
	}

	// The conflict target is the partial unique index on open carts, so a
	// checked-out cart never collides and history rows are left untouched.
	cart := models.Cart{ID: ident.New(ident.PrefixCart), OwnerID: &owner.ID}
	if err := tx.Clauses(clause.OnConflict{
		Columns:     []clause.Column{{Name: "owner_id"}},
		TargetWhere: clause.Where{Exprs: []clause.Expression{gorm.Expr("is_checked_out = false")}},
		DoNothing:   true,
	}).Create(&cart).Error; err != nil {
		return nil, err
	}
	var existing models.Cart
	err := tx.Where("owner_id = ? AND is_checked_out = ?", owner.ID, false).
		First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &ConflictError{Op: "cart creation"}
	}
	if err != nil {
		return nil, err
	}
	return &existing, nil
}

func loadCart(tx *gorm.DB, cartID string) (*models.Cart, error) {
	var cart models.Cart
	if err := tx.Preload("Items").First(&cart, "id = ?", cartID).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}
