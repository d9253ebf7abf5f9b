package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/DeiVid1337/Boss-Pods-Api/internal/model"
	"github.com/DeiVid1337/Boss-Pods-Api/pkg/events"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&model.Store{},
		&model.User{},
		&model.Product{},
		&model.StoreProduct{},
		&model.Customer{},
		&model.Sale{},
		&model.SaleItem{},
		&model.SellerInventory{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func createStore(t *testing.T, db *gorm.DB, name string) *model.Store {
	t.Helper()
	store := model.Store{Name: name, IsActive: true}
	if err := db.Create(&store).Error; err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return &store
}

func createUser(t *testing.T, db *gorm.DB, role model.Role, storeID *uint) *model.User {
	t.Helper()
	var count int64
	db.Model(&model.User{}).Count(&count)
	user := model.User{
		Name:     "Test " + string(role),
		Email:    fmt.Sprintf("%s%d@test.local", role, count+1),
		Password: "hashed",
		Role:     role,
		StoreID:  storeID,
		IsActive: true,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return &user
}

func createStoreProduct(t *testing.T, db *gorm.DB, store *model.Store, salePrice float64, stock int) *model.StoreProduct {
	t.Helper()

	var count int64
	db.Model(&model.Product{}).Count(&count)
	product := model.Product{Brand: "Ignite", Name: "V50", Flavor: fmt.Sprintf("Test %d", count+1)}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("failed to create product: %v", err)
	}

	sp := model.StoreProduct{
		StoreID:       store.ID,
		ProductID:     product.ID,
		CostPrice:     salePrice / 2,
		SalePrice:     salePrice,
		StockQuantity: stock,
		MinStockLevel: 1,
		IsActive:      true,
	}
	if err := db.Create(&sp).Error; err != nil {
		t.Fatalf("failed to create store product: %v", err)
	}
	return &sp
}

func createHolding(t *testing.T, db *gorm.DB, user *model.User, sp *model.StoreProduct, quantity int) *model.SellerInventory {
	t.Helper()
	holding := model.SellerInventory{UserID: user.ID, StoreProductID: sp.ID, Quantity: quantity}
	if err := db.Create(&holding).Error; err != nil {
		t.Fatalf("failed to create seller inventory: %v", err)
	}
	return &holding
}

func reloadStoreProduct(t *testing.T, db *gorm.DB, id uint) *model.StoreProduct {
	t.Helper()
	var sp model.StoreProduct
	if err := db.First(&sp, id).Error; err != nil {
		t.Fatalf("failed to reload store product: %v", err)
	}
	return &sp
}

type mockPublisher struct {
	events []events.SaleCompleted
	err    error
}

func (m *mockPublisher) PublishSaleCompleted(ctx context.Context, event events.SaleCompleted) error {
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, event)
	return nil
}
