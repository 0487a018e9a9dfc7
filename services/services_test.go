package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/TUNKSTUN/thepicklehouse-sub000/ident"
	"github.com/TUNKSTUN/thepicklehouse-sub000/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one connection keeps the shared in-memory database alive and
	// serializes sqlite writes
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Category{},
		&models.Cart{},
		&models.CartItem{},
		&models.Coupon{},
		&models.Order{},
		&models.OrderItem{},
	))
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, price string, discountPct, stock int) *models.Product {
	t.Helper()
	p := &models.Product{
		ID:          ident.New(ident.PrefixProduct),
		Name:        gofakeit.ProductName(),
		Description: gofakeit.Sentence(6),
		Price:       decimal.RequireFromString(price),
		DiscountPct: discountPct,
		Stock:       stock,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func newUserRef() OwnerRef {
	return UserRef(ident.New(ident.PrefixUser))
}

func requireDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.True(t, decimal.RequireFromString(want).Equal(got),
		"want %s, got %s", want, got.String())
}

func ctx() context.Context { return context.Background() }

func defaultShipping() ShippingConfig {
	return ShippingConfig{
		FreeShippingThreshold: decimal.NewFromInt(499),
		ShippingFee:           decimal.NewFromInt(49),
	}
}
