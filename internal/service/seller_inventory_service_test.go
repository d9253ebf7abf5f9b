package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/DeiVid1337/Boss-Pods-Api/internal/model"
	"gorm.io/gorm"
)

func TestWithdraw_MovesCustodyNotOwnership(t *testing.T) {
	db := setupTestDB(t)
	store := createStore(t, db, "Central")
	seller := createUser(t, db, model.RoleSeller, &store.ID)
	sp := createStoreProduct(t, db, store, 20.00, 100)

	svc := NewSellerInventoryService(db)
	holdings, err := svc.Withdraw(context.Background(), store, seller, []SaleItemInput{
		{StoreProductID: sp.ID, Quantity: 25},
	})
	if err != nil {
		t.Fatalf("expected withdrawal to succeed, got %v", err)
	}

	if len(holdings) != 1 || holdings[0].Quantity != 25 {
		t.Fatalf("expected one holding of 25, got %+v", holdings)
	}

	// Stock is untouched: the units are still store-owned
	if got := reloadStoreProduct(t, db, sp.ID).StockQuantity; got != 100 {
		t.Errorf("withdraw must not change stock, got %d", got)
	}

	available, err := AvailableQuantity(db, sp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if available != 75 {
		t.Errorf("expected available 75 after withdrawal, got %d", available)
	}
}

func TestWithdraw_CheckedAgainstAvailableNotStock(t *testing.T) {
	db := setupTestDB(t)
	store := createStore(t, db, "Central")
	sellerA := createUser(t, db, model.RoleSeller, &store.ID)
	sellerB := createUser(t, db, model.RoleSeller, &store.ID)
	sp := createStoreProduct(t, db, store, 20.00, 30)
	createHolding(t, db, sellerA, sp, 20)

	svc := NewSellerInventoryService(db)
	_, err := svc.Withdraw(context.Background(), store, sellerB, []SaleItemInput{
		{StoreProductID: sp.ID, Quantity: 15},
	})
	errs, ok := AsValidationErrors(err)
	if !ok {
		t.Fatalf("expected validation errors, got %v", err)
	}
	want := "Insufficient available quantity. Available: 10, Requested (total for this product): 15."
	messages := errs["items.0.quantity"]
	if len(messages) == 0 || messages[0] != want {
		t.Errorf("expected %q, got %v", want, errs)
	}
}

func TestWithdraw_AggregatesDuplicateLines(t *testing.T) {
	db := setupTestDB(t)
	store := createStore(t, db, "Central")
	seller := createUser(t, db, model.RoleSeller, &store.ID)
	sp := createStoreProduct(t, db, store, 20.00, 8)

	svc := NewSellerInventoryService(db)
	_, err := svc.Withdraw(context.Background(), store, seller, []SaleItemInput{
		{StoreProductID: sp.ID, Quantity: 5},
		{StoreProductID: sp.ID, Quantity: 5},
	})
	errs, ok := AsValidationErrors(err)
	if !ok {
		t.Fatalf("expected validation errors, got %v", err)
	}
	messages := errs["items.0.quantity"]
	if len(messages) == 0 || !strings.Contains(messages[0], "Requested (total for this product): 10") {
		t.Errorf("expected aggregated check, got %v", errs)
	}

	var count int64
	db.Model(&model.SellerInventory{}).Count(&count)
	if count != 0 {
		t.Errorf("expected no holdings written on failure, got %d", count)
	}
}

func TestWithdraw_RestoresSoftDeletedHolding(t *testing.T) {
	db := setupTestDB(t)
	store := createStore(t, db, "Central")
	seller := createUser(t, db, model.RoleSeller, &store.ID)
	sp := createStoreProduct(t, db, store, 20.00, 100)

	holding := createHolding(t, db, seller, sp, 5)
	if err := db.Model(holding).UpdateColumn("quantity", 0).Error; err != nil {
		t.Fatalf("failed to zero holding: %v", err)
	}
	if err := db.Delete(holding).Error; err != nil {
		t.Fatalf("failed to soft-delete holding: %v", err)
	}

	svc := NewSellerInventoryService(db)
	holdings, err := svc.Withdraw(context.Background(), store, seller, []SaleItemInput{
		{StoreProductID: sp.ID, Quantity: 7},
	})
	if err != nil {
		t.Fatalf("expected withdrawal to succeed, got %v", err)
	}

	// Same row restored, not a duplicate
	if holdings[0].ID != holding.ID {
		t.Errorf("expected restored row %d, got %d", holding.ID, holdings[0].ID)
	}
	var count int64
	db.Unscoped().Model(&model.SellerInventory{}).
		Where("user_id = ? AND store_product_id = ?", seller.ID, sp.ID).
		Count(&count)
	if count != 1 {
		t.Fatalf("expected a single row, got %d", count)
	}

	var reloaded model.SellerInventory
	if err := db.Where("user_id = ? AND store_product_id = ?", seller.ID, sp.ID).First(&reloaded).Error; err != nil {
		t.Fatalf("expected live holding, got %v", err)
	}
	if reloaded.Quantity != 7 {
		t.Errorf("expected restored quantity 7, got %d", reloaded.Quantity)
	}
}

func TestReturn_DecrementsHolding(t *testing.T) {
	db := setupTestDB(t)
	store := createStore(t, db, "Central")
	seller := createUser(t, db, model.RoleSeller, &store.ID)
	sp := createStoreProduct(t, db, store, 20.00, 100)
	createHolding(t, db, seller, sp, 10)

	svc := NewSellerInventoryService(db)
	holdings, err := svc.Return(context.Background(), store, seller, []SaleItemInput{
		{StoreProductID: sp.ID, Quantity: 4},
	})
	if err != nil {
		t.Fatalf("expected return to succeed, got %v", err)
	}
	if holdings[0].Quantity != 6 {
		t.Errorf("expected holding 10 -> 6, got %d", holdings[0].Quantity)
	}

	if got := reloadStoreProduct(t, db, sp.ID).StockQuantity; got != 100 {
		t.Errorf("return must not change stock, got %d", got)
	}
}

func TestReturn_SoftDeletesEmptiedHolding(t *testing.T) {
	db := setupTestDB(t)
	store := createStore(t, db, "Central")
	seller := createUser(t, db, model.RoleSeller, &store.ID)
	sp := createStoreProduct(t, db, store, 20.00, 100)
	createHolding(t, db, seller, sp, 4)

	svc := NewSellerInventoryService(db)
	_, err := svc.Return(context.Background(), store, seller, []SaleItemInput{
		{StoreProductID: sp.ID, Quantity: 4},
	})
	if err != nil {
		t.Fatalf("expected return to succeed, got %v", err)
	}

	var holding model.SellerInventory
	err = db.Where("user_id = ? AND store_product_id = ?", seller.ID, sp.ID).First(&holding).Error
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected emptied holding to be soft-deleted, got %v", err)
	}
}

func TestReturn_MoreThanHeldFails(t *testing.T) {
	db := setupTestDB(t)
	store := createStore(t, db, "Central")
	seller := createUser(t, db, model.RoleSeller, &store.ID)
	sp := createStoreProduct(t, db, store, 20.00, 100)
	createHolding(t, db, seller, sp, 5)

	svc := NewSellerInventoryService(db)
	_, err := svc.Return(context.Background(), store, seller, []SaleItemInput{
		{StoreProductID: sp.ID, Quantity: 10},
	})
	errs, ok := AsValidationErrors(err)
	if !ok {
		t.Fatalf("expected validation errors, got %v", err)
	}
	want := "Insufficient quantity in seller inventory. Available: 5, Requested (total for this product): 10."
	messages := errs["items.0.quantity"]
	if len(messages) == 0 || messages[0] != want {
		t.Errorf("expected %q, got %v", want, errs)
	}

	var holding model.SellerInventory
	if err := db.Where("user_id = ?", seller.ID).First(&holding).Error; err != nil {
		t.Fatalf("failed to reload holding: %v", err)
	}
	if holding.Quantity != 5 {
		t.Errorf("holding must be untouched on failure, got %d", holding.Quantity)
	}
}

func TestReturn_WithoutHoldingFails(t *testing.T) {
	db := setupTestDB(t)
	store := createStore(t, db, "Central")
	seller := createUser(t, db, model.RoleSeller, &store.ID)
	sp := createStoreProduct(t, db, store, 20.00, 100)

	svc := NewSellerInventoryService(db)
	_, err := svc.Return(context.Background(), store, seller, []SaleItemInput{
		{StoreProductID: sp.ID, Quantity: 1},
	})
	errs, ok := AsValidationErrors(err)
	if !ok {
		t.Fatalf("expected validation errors, got %v", err)
	}
	messages := errs["items.0.store_product_id"]
	if len(messages) == 0 || messages[0] != "Seller inventory not found for this product." {
		t.Errorf("expected missing-holding error, got %v", errs)
	}
}

func TestWithdraw_CrossStoreProductRejected(t *testing.T) {
	db := setupTestDB(t)
	central := createStore(t, db, "Central")
	mall := createStore(t, db, "Mall")
	seller := createUser(t, db, model.RoleSeller, &central.ID)
	other := createStoreProduct(t, db, mall, 20.00, 50)

	svc := NewSellerInventoryService(db)
	_, err := svc.Withdraw(context.Background(), central, seller, []SaleItemInput{
		{StoreProductID: other.ID, Quantity: 1},
	})
	errs, ok := AsValidationErrors(err)
	if !ok {
		t.Fatalf("expected validation errors, got %v", err)
	}
	messages := errs["items.0.store_product_id"]
	if len(messages) == 0 || !strings.Contains(messages[0], "does not belong to this store") {
		t.Errorf("expected cross-store error, got %v", errs)
	}
}

func TestListForStore_FiltersByStore(t *testing.T) {
	db := setupTestDB(t)
	central := createStore(t, db, "Central")
	mall := createStore(t, db, "Mall")
	sellerA := createUser(t, db, model.RoleSeller, &central.ID)
	sellerB := createUser(t, db, model.RoleSeller, &mall.ID)
	spCentral := createStoreProduct(t, db, central, 20.00, 50)
	spMall := createStoreProduct(t, db, mall, 20.00, 50)
	createHolding(t, db, sellerA, spCentral, 5)
	createHolding(t, db, sellerB, spMall, 5)

	svc := NewSellerInventoryService(db)
	holdings, total, err := svc.ListForStore(central, 1, 15)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 || len(holdings) != 1 {
		t.Fatalf("expected 1 holding for central, got %d", total)
	}
	if holdings[0].UserID != sellerA.ID {
		t.Errorf("expected central seller's holding, got user %d", holdings[0].UserID)
	}
}
