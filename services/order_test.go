package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/TUNKSTUN/thepicklehouse-sub000/models"
)

func newOrderService(db *gorm.DB) (*CartService, *OrderService) {
	coupons := NewCouponService(db)
	return NewCartService(db), NewOrderService(db, coupons, defaultShipping())
}

func testAddress() models.Address {
	return models.Address{
		Country: "IN", State: "KA", City: "Bengaluru",
		Street: "14 Brine Lane", PostalCode: "560001",
	}
}

func TestCheckoutHappyPathCOD(t *testing.T) {
	db := openTestDB(t)
	carts, orders := newOrderService(db)
	owner := newUserRef()
	// 10% off 100 -> 90 each, qty 2 -> 180, below threshold -> +49 shipping
	product := seedProduct(t, db, "100", 10, 5)

	_, err := carts.AddToCart(ctx(), owner, product.ID, 2)
	require.NoError(t, err)

	result, err := orders.InitiateCheckout(ctx(), CheckoutInput{
		Owner:         owner,
		Address:       testAddress(),
		PaymentMethod: models.PaymentMethodCOD,
	})
	require.NoError(t, err)

	order := result.Order
	require.Len(t, order.Items, 1)
	requireDecimal(t, "90", order.Items[0].PriceAtPurchase)
	requireDecimal(t, "180", order.Subtotal)
	requireDecimal(t, "0", order.Discount)
	requireDecimal(t, "49", order.ShippingFee)
	requireDecimal(t, "229", order.TotalAmount)
	assert.Equal(t, models.PaymentStatusPending, order.PaymentStatus)
	assert.Equal(t, models.DeliveryStatusProcessing, order.DeliveryStatus)
	assert.Equal(t, owner.ID, order.OwnerID)
	assert.Empty(t, result.PaymentRef, "cod orders have no gateway reference")

	var live models.Product
	require.NoError(t, db.First(&live, "id = ?", product.ID).Error)
	assert.Equal(t, 3, live.Stock)
	assert.True(t, live.InStock)

	view, err := carts.GetCart(ctx(), owner)
	require.NoError(t, err)
	assert.True(t, view.IsCheckedOut)
}

func TestCheckoutOnlineReturnsPaymentRef(t *testing.T) {
	db := openTestDB(t)
	carts, orders := newOrderService(db)
	owner := newUserRef()
	product := seedProduct(t, db, "100", 0, 5)

	_, err := carts.AddToCart(ctx(), owner, product.ID, 1)
	require.NoError(t, err)

	result, err := orders.InitiateCheckout(ctx(), CheckoutInput{
		Owner:         owner,
		Address:       testAddress(),
		PaymentMethod: models.PaymentMethodOnline,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.PaymentRef)
	assert.Equal(t, result.Order.PaymentRef, result.PaymentRef)
}

func TestCheckoutEmptyCart(t *testing.T) {
	db := openTestDB(t)
	_, orders := newOrderService(db)

	_, err := orders.InitiateCheckout(ctx(), CheckoutInput{
		Owner:         newUserRef(),
		Address:       testAddress(),
		PaymentMethod: models.PaymentMethodCOD,
	})
	var eerr *EmptyCartError
	require.ErrorAs(t, err, &eerr)
}

func TestCheckoutInsufficientStockLeavesEverythingUntouched(t *testing.T) {
	db := openTestDB(t)
	carts, orders := newOrderService(db)
	owner := newUserRef()
	short := seedProduct(t, db, "100", 0, 1)
	plenty := seedProduct(t, db, "50", 0, 10)

	_, err := carts.AddToCart(ctx(), owner, short.ID, 2)
	require.NoError(t, err)
	_, err = carts.AddToCart(ctx(), owner, plenty.ID, 1)
	require.NoError(t, err)

	_, err = orders.InitiateCheckout(ctx(), CheckoutInput{
		Owner:         owner,
		Address:       testAddress(),
		PaymentMethod: models.PaymentMethodCOD,
	})
	var serr *InsufficientStockError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, short.ID, serr.ProductID)
	assert.Equal(t, 2, serr.Requested)
	assert.Equal(t, 1, serr.Available)

	// no partial writes: both stocks unchanged, no order, cart still open
	var plentyAfter models.Product
	require.NoError(t, db.First(&plentyAfter, "id = ?", plenty.ID).Error)
	assert.Equal(t, 10, plentyAfter.Stock)
	var shortAfter models.Product
	require.NoError(t, db.First(&shortAfter, "id = ?", short.ID).Error)
	assert.Equal(t, 1, shortAfter.Stock)

	var orderCount int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orderCount).Error)
	assert.EqualValues(t, 0, orderCount)

	view, err := carts.GetCart(ctx(), owner)
	require.NoError(t, err)
	assert.False(t, view.IsCheckedOut)
}

func TestCheckoutLostStockRaceRollsBackCompletely(t *testing.T) {
	db := openTestDB(t)
	carts, orders := newOrderService(db)
	owner := newUserRef()
	productA := seedProduct(t, db, "100", 0, 5)
	productB := seedProduct(t, db, "50", 0, 1)

	_, err := carts.AddToCart(ctx(), owner, productA.ID, 2)
	require.NoError(t, err)
	_, err = carts.AddToCart(ctx(), owner, productB.ID, 1)
	require.NoError(t, err)

	// Drain productB right after the order row is written: the stock
	// pre-check has already passed, so the conditional decrement is the
	// only thing standing between this checkout and overselling.
	require.NoError(t, db.Callback().Create().After("gorm:create").
		Register("test_drain_stock", func(tx *gorm.DB) {
			if _, ok := tx.Statement.Dest.(*models.Order); !ok {
				return
			}
			tx.Session(&gorm.Session{NewDB: true}).
				Model(&models.Product{}).
				Where("id = ?", productB.ID).
				UpdateColumn("stock", 0)
		}))
	t.Cleanup(func() { _ = db.Callback().Create().Remove("test_drain_stock") })

	_, err = orders.InitiateCheckout(ctx(), CheckoutInput{
		Owner:         owner,
		Address:       testAddress(),
		PaymentMethod: models.PaymentMethodCOD,
	})
	var cerr *ConflictError
	require.ErrorAs(t, err, &cerr)

	// everything rolled back: order row gone, both stocks as seeded, cart open
	var aAfter models.Product
	require.NoError(t, db.First(&aAfter, "id = ?", productA.ID).Error)
	assert.Equal(t, 5, aAfter.Stock)
	var bAfter models.Product
	require.NoError(t, db.First(&bAfter, "id = ?", productB.ID).Error)
	assert.Equal(t, 1, bAfter.Stock)

	var orderCount int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orderCount).Error)
	assert.EqualValues(t, 0, orderCount)

	view, err := carts.GetCart(ctx(), owner)
	require.NoError(t, err)
	assert.False(t, view.IsCheckedOut)
}

func TestCheckoutLocksInLivePriceNotCartSnapshot(t *testing.T) {
	db := openTestDB(t)
	carts, orders := newOrderService(db)
	owner := newUserRef()
	product := seedProduct(t, db, "100", 0, 5)

	_, err := carts.AddToCart(ctx(), owner, product.ID, 1)
	require.NoError(t, err)

	// price rises between add and checkout
	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", product.ID).
		Update("price", decimal.NewFromInt(150)).Error)

	result, err := orders.InitiateCheckout(ctx(), CheckoutInput{
		Owner:         owner,
		Address:       testAddress(),
		PaymentMethod: models.PaymentMethodCOD,
	})
	require.NoError(t, err)
	requireDecimal(t, "150", result.Order.Items[0].PriceAtPurchase)

	// ... and stays frozen when the catalog changes again afterward
	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", product.ID).
		Update("price", decimal.NewFromInt(999)).Error)
	reloaded, err := orders.GetOrder(ctx(), result.Order.ID)
	require.NoError(t, err)
	requireDecimal(t, "150", reloaded.Items[0].PriceAtPurchase)
}

func TestCheckoutDeletedProductFails(t *testing.T) {
	db := openTestDB(t)
	carts, orders := newOrderService(db)
	owner := newUserRef()
	product := seedProduct(t, db, "100", 0, 5)

	_, err := carts.AddToCart(ctx(), owner, product.ID, 1)
	require.NoError(t, err)
	require.NoError(t, db.Delete(&models.Product{}, "id = ?", product.ID).Error)

	_, err = orders.InitiateCheckout(ctx(), CheckoutInput{
		Owner:         owner,
		Address:       testAddress(),
		PaymentMethod: models.PaymentMethodCOD,
	})
	var nferr *NotFoundError
	require.ErrorAs(t, err, &nferr)
	assert.Equal(t, "product", nferr.Entity)
}

func TestCheckoutInvalidCouponAborts(t *testing.T) {
	db := openTestDB(t)
	carts, orders := newOrderService(db)
	owner := newUserRef()
	product := seedProduct(t, db, "100", 0, 5)

	_, err := carts.AddToCart(ctx(), owner, product.ID, 1)
	require.NoError(t, err)

	_, err = orders.InitiateCheckout(ctx(), CheckoutInput{
		Owner:         owner,
		Address:       testAddress(),
		PaymentMethod: models.PaymentMethodCOD,
		CouponCode:    "NOSUCH",
	})
	var cerr *InvalidCouponError
	require.ErrorAs(t, err, &cerr, "checkout must not silently proceed without the discount")

	// aborted entirely: stock untouched, no order created
	var p models.Product
	require.NoError(t, db.First(&p, "id = ?", product.ID).Error)
	assert.Equal(t, 5, p.Stock)
	var orderCount int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orderCount).Error)
	assert.EqualValues(t, 0, orderCount)
}

func TestCheckoutFlatCouponCappedAtSubtotal(t *testing.T) {
	db := openTestDB(t)
	carts, orders := newOrderService(db)
	owner := newUserRef()
	product := seedProduct(t, db, "300", 0, 5)
	seedCoupon(t, db, models.Coupon{
		Code: "MEGA", Type: models.CouponFlat,
		Value: decimal.NewFromInt(1000), Active: true,
	})

	_, err := carts.AddToCart(ctx(), owner, product.ID, 1)
	require.NoError(t, err)

	result, err := orders.InitiateCheckout(ctx(), CheckoutInput{
		Owner:         owner,
		Address:       testAddress(),
		PaymentMethod: models.PaymentMethodCOD,
		CouponCode:    "MEGA",
	})
	require.NoError(t, err)
	requireDecimal(t, "300", result.Order.Subtotal)
	requireDecimal(t, "300", result.Order.Discount)
	// discounted subtotal is 0, never negative; only shipping remains
	requireDecimal(t, "49", result.Order.TotalAmount)
	assert.Equal(t, "MEGA", result.Order.CouponCode)
}

func TestCheckoutFreeShippingThreshold(t *testing.T) {
	db := openTestDB(t)

	t.Run("exactly at threshold ships free", func(t *testing.T) {
		carts, orders := newOrderService(db)
		owner := newUserRef()
		product := seedProduct(t, db, "499", 0, 5)
		_, err := carts.AddToCart(ctx(), owner, product.ID, 1)
		require.NoError(t, err)

		result, err := orders.InitiateCheckout(ctx(), CheckoutInput{
			Owner:         owner,
			Address:       testAddress(),
			PaymentMethod: models.PaymentMethodCOD,
		})
		require.NoError(t, err)
		requireDecimal(t, "0", result.Order.ShippingFee)
		requireDecimal(t, "499", result.Order.TotalAmount)
	})

	t.Run("one unit below pays the flat fee", func(t *testing.T) {
		carts, orders := newOrderService(db)
		owner := newUserRef()
		product := seedProduct(t, db, "498", 0, 5)
		_, err := carts.AddToCart(ctx(), owner, product.ID, 1)
		require.NoError(t, err)

		result, err := orders.InitiateCheckout(ctx(), CheckoutInput{
			Owner:         owner,
			Address:       testAddress(),
			PaymentMethod: models.PaymentMethodCOD,
		})
		require.NoError(t, err)
		requireDecimal(t, "49", result.Order.ShippingFee)
		requireDecimal(t, "547", result.Order.TotalAmount)
	})
}

func TestCheckoutIsAtMostOncePerCart(t *testing.T) {
	db := openTestDB(t)
	carts, orders := newOrderService(db)
	owner := newUserRef()
	product := seedProduct(t, db, "100", 0, 5)

	_, err := carts.AddToCart(ctx(), owner, product.ID, 1)
	require.NoError(t, err)

	in := CheckoutInput{
		Owner:         owner,
		Address:       testAddress(),
		PaymentMethod: models.PaymentMethodCOD,
	}
	_, err = orders.InitiateCheckout(ctx(), in)
	require.NoError(t, err)

	_, err = orders.InitiateCheckout(ctx(), in)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr, "a checked-out cart cannot produce a second order")
	assert.Equal(t, "cart", verr.Field)

	var p models.Product
	require.NoError(t, db.First(&p, "id = ?", product.ID).Error)
	assert.Equal(t, 4, p.Stock, "stock decremented exactly once")
}

func TestCheckoutKeepsPurchasedCartWhenShoppingResumes(t *testing.T) {
	db := openTestDB(t)
	carts, orders := newOrderService(db)
	owner := newUserRef()
	product := seedProduct(t, db, "100", 0, 10)

	purchased, err := carts.AddToCart(ctx(), owner, product.ID, 1)
	require.NoError(t, err)
	_, err = orders.InitiateCheckout(ctx(), CheckoutInput{
		Owner: owner, Address: testAddress(), PaymentMethod: models.PaymentMethodCOD,
	})
	require.NoError(t, err)

	// the next mutation opens a fresh cart instead of recycling the old row
	fresh, err := carts.AddToCart(ctx(), owner, product.ID, 3)
	require.NoError(t, err)
	assert.NotEqual(t, purchased.ID, fresh.ID)
	require.Len(t, fresh.Items, 1)
	assert.Equal(t, 3, fresh.Items[0].Quantity)
	assert.False(t, fresh.IsCheckedOut)

	// the purchased cart is untouched, items included
	var old models.Cart
	require.NoError(t, db.Preload("Items").First(&old, "id = ?", purchased.ID).Error)
	assert.True(t, old.IsCheckedOut)
	require.Len(t, old.Items, 1)
}

func TestCheckoutForGuestCart(t *testing.T) {
	db := openTestDB(t)
	carts, orders := newOrderService(db)
	product := seedProduct(t, db, "100", 0, 5)

	guest, err := carts.CreateCart(ctx(), nil)
	require.NoError(t, err)
	guestRef := GuestRef(guest.ID)
	_, err = carts.AddToCart(ctx(), guestRef, product.ID, 1)
	require.NoError(t, err)

	result, err := orders.InitiateCheckout(ctx(), CheckoutInput{
		Owner:         guestRef,
		Address:       testAddress(),
		PaymentMethod: models.PaymentMethodCOD,
	})
	require.NoError(t, err)
	assert.Equal(t, guest.ID, result.Order.OwnerID)
}

func TestListOrdersIsPurchaseHistory(t *testing.T) {
	db := openTestDB(t)
	carts, orders := newOrderService(db)
	owner := newUserRef()
	product := seedProduct(t, db, "100", 0, 10)

	_, err := carts.AddToCart(ctx(), owner, product.ID, 1)
	require.NoError(t, err)
	first, err := orders.InitiateCheckout(ctx(), CheckoutInput{
		Owner: owner, Address: testAddress(), PaymentMethod: models.PaymentMethodCOD,
	})
	require.NoError(t, err)

	history, err := orders.ListOrders(ctx(), owner)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, first.Order.ID, history[0].ID)
	require.Len(t, history[0].Items, 1)
}

func TestOrderStatusTransitions(t *testing.T) {
	db := openTestDB(t)
	carts, orders := newOrderService(db)
	owner := newUserRef()
	product := seedProduct(t, db, "100", 0, 10)

	_, err := carts.AddToCart(ctx(), owner, product.ID, 1)
	require.NoError(t, err)
	result, err := orders.InitiateCheckout(ctx(), CheckoutInput{
		Owner: owner, Address: testAddress(), PaymentMethod: models.PaymentMethodCOD,
	})
	require.NoError(t, err)
	orderID := result.Order.ID

	require.NoError(t, orders.UpdatePaymentStatus(ctx(), orderID, models.PaymentStatusPaid))
	require.NoError(t, orders.UpdateDeliveryStatus(ctx(), orderID, models.DeliveryStatusCancelled, "customer changed their mind"))

	order, err := orders.GetOrder(ctx(), orderID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, order.PaymentStatus)
	assert.Equal(t, models.DeliveryStatusCancelled, order.DeliveryStatus)
	assert.Equal(t, "customer changed their mind", order.CancelReason)

	var nferr *NotFoundError
	err = orders.UpdatePaymentStatus(ctx(), "order_00000000000000000000000000000000", models.PaymentStatusPaid)
	require.ErrorAs(t, err, &nferr)
}

func TestMapStatusHelpers(t *testing.T) {
	status, err := MapDeliveryStatus("Shipped")
	require.NoError(t, err)
	assert.Equal(t, models.DeliveryStatusShipped, status)

	_, err = MapDeliveryStatus("teleported")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	pay, err := MapPaymentStatus("PAID")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, pay)

	_, err = MapPaymentStatus("iou")
	require.ErrorAs(t, err, &verr)
}
