package service

import (
	"context"
	"errors"
	"testing"

	"github.com/DeiVid1337/Boss-Pods-Api/internal/model"
	"gorm.io/gorm"
)

func TestCreateSale_HappyPath(t *testing.T) {
	db := setupTestDB(t)
	store := createStore(t, db, "Central")
	manager := createUser(t, db, model.RoleManager, &store.ID)
	sp := createStoreProduct(t, db, store, 20.00, 10)

	publisher := &mockPublisher{}
	svc := NewSaleService(db, publisher)

	sale, err := svc.CreateSale(context.Background(), store, manager, CreateSaleInput{
		Items: []SaleItemInput{{StoreProductID: sp.ID, Quantity: 3}},
		Notes: "walk-in",
	})
	if err != nil {
		t.Fatalf("expected sale to succeed, got %v", err)
	}

	if sale.TotalAmount != 60.00 {
		t.Errorf("expected total 60.00, got %.2f", sale.TotalAmount)
	}
	if len(sale.SaleItems) != 1 {
		t.Fatalf("expected 1 sale item, got %d", len(sale.SaleItems))
	}
	item := sale.SaleItems[0]
	if item.UnitPrice != 20.00 || item.Subtotal != 60.00 || item.Quantity != 3 {
		t.Errorf("unexpected sale item: %+v", item)
	}

	if got := reloadStoreProduct(t, db, sp.ID).StockQuantity; got != 7 {
		t.Errorf("expected stock 10 -> 7, got %d", got)
	}

	if len(publisher.events) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(publisher.events))
	}
	event := publisher.events[0]
	if event.SaleID != sale.ID || event.StoreID != store.ID || event.TotalAmount != 60.00 {
		t.Errorf("unexpected event: %+v", event)
	}
}

func TestCreateSale_ValidationFailureWritesNothing(t *testing.T) {
	db := setupTestDB(t)
	store := createStore(t, db, "Central")
	manager := createUser(t, db, model.RoleManager, &store.ID)
	sp := createStoreProduct(t, db, store, 20.00, 5)

	publisher := &mockPublisher{}
	svc := NewSaleService(db, publisher)

	_, err := svc.CreateSale(context.Background(), store, manager, CreateSaleInput{
		Items: []SaleItemInput{{StoreProductID: sp.ID, Quantity: 8}},
	})
	errs, ok := AsValidationErrors(err)
	if !ok {
		t.Fatalf("expected validation errors, got %v", err)
	}
	if _, found := errs["items.0.quantity"]; !found {
		t.Errorf("expected error on items.0.quantity, got %v", errs)
	}

	if got := reloadStoreProduct(t, db, sp.ID).StockQuantity; got != 5 {
		t.Errorf("stock must be untouched on validation failure, got %d", got)
	}
	var saleCount int64
	db.Model(&model.Sale{}).Count(&saleCount)
	if saleCount != 0 {
		t.Errorf("expected no sale rows, got %d", saleCount)
	}
	if len(publisher.events) != 0 {
		t.Errorf("expected no events on failure, got %d", len(publisher.events))
	}
}

func TestCreateSale_UnknownCustomerRollsBack(t *testing.T) {
	db := setupTestDB(t)
	store := createStore(t, db, "Central")
	manager := createUser(t, db, model.RoleManager, &store.ID)
	sp := createStoreProduct(t, db, store, 20.00, 10)

	svc := NewSaleService(db, nil)

	missing := uint(404)
	_, err := svc.CreateSale(context.Background(), store, manager, CreateSaleInput{
		CustomerID: &missing,
		Items:      []SaleItemInput{{StoreProductID: sp.ID, Quantity: 2}},
	})
	errs, ok := AsValidationErrors(err)
	if !ok {
		t.Fatalf("expected validation errors, got %v", err)
	}
	messages := errs["customer_id"]
	if len(messages) == 0 || messages[0] != "The selected customer does not exist." {
		t.Errorf("expected customer error, got %v", errs)
	}

	if got := reloadStoreProduct(t, db, sp.ID).StockQuantity; got != 10 {
		t.Errorf("stock must be untouched, got %d", got)
	}
}

func TestCreateSale_IncrementsCustomerPurchases(t *testing.T) {
	db := setupTestDB(t)
	store := createStore(t, db, "Central")
	manager := createUser(t, db, model.RoleManager, &store.ID)
	sp := createStoreProduct(t, db, store, 20.00, 10)

	customer := model.Customer{Name: "Joao", Phone: "+55 11 90000-0001", TotalPurchases: 5}
	if err := db.Create(&customer).Error; err != nil {
		t.Fatalf("failed to create customer: %v", err)
	}

	svc := NewSaleService(db, nil)
	_, err := svc.CreateSale(context.Background(), store, manager, CreateSaleInput{
		CustomerID: &customer.ID,
		Items:      []SaleItemInput{{StoreProductID: sp.ID, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("expected sale to succeed, got %v", err)
	}

	var reloaded model.Customer
	if err := db.First(&reloaded, customer.ID).Error; err != nil {
		t.Fatalf("failed to reload customer: %v", err)
	}
	if reloaded.TotalPurchases != 7 {
		t.Errorf("expected total purchases 5 -> 7, got %d", reloaded.TotalPurchases)
	}
}

func TestCreateSale_SnapshotsUnitPrice(t *testing.T) {
	db := setupTestDB(t)
	store := createStore(t, db, "Central")
	manager := createUser(t, db, model.RoleManager, &store.ID)
	sp := createStoreProduct(t, db, store, 20.00, 10)

	svc := NewSaleService(db, nil)
	sale, err := svc.CreateSale(context.Background(), store, manager, CreateSaleInput{
		Items: []SaleItemInput{{StoreProductID: sp.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("expected sale to succeed, got %v", err)
	}

	// Raising the price later must not touch the recorded sale
	if err := db.Model(sp).UpdateColumn("sale_price", 35.00).Error; err != nil {
		t.Fatalf("failed to update price: %v", err)
	}

	reloaded, err := svc.Find(store, sale.ID)
	if err != nil {
		t.Fatalf("failed to reload sale: %v", err)
	}
	if reloaded.SaleItems[0].UnitPrice != 20.00 {
		t.Errorf("expected snapshotted unit price 20.00, got %.2f", reloaded.SaleItems[0].UnitPrice)
	}
	if reloaded.TotalAmount != 20.00 {
		t.Errorf("expected total 20.00, got %.2f", reloaded.TotalAmount)
	}
}

func TestCreateSale_SellerDecrementsOwnHolding(t *testing.T) {
	db := setupTestDB(t)
	store := createStore(t, db, "Central")
	seller := createUser(t, db, model.RoleSeller, &store.ID)
	sp := createStoreProduct(t, db, store, 20.00, 10)
	createHolding(t, db, seller, sp, 5)

	svc := NewSaleService(db, nil)
	_, err := svc.CreateSale(context.Background(), store, seller, CreateSaleInput{
		Items: []SaleItemInput{{StoreProductID: sp.ID, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("expected sale to succeed, got %v", err)
	}

	var holding model.SellerInventory
	err = db.Where("user_id = ? AND store_product_id = ?", seller.ID, sp.ID).First(&holding).Error
	if err != nil {
		t.Fatalf("failed to reload holding: %v", err)
	}
	if holding.Quantity != 3 {
		t.Errorf("expected holding 5 -> 3, got %d", holding.Quantity)
	}

	// Store stock still decremented; the units left the building
	if got := reloadStoreProduct(t, db, sp.ID).StockQuantity; got != 8 {
		t.Errorf("expected stock 10 -> 8, got %d", got)
	}
}

func TestCreateSale_SellerHoldingSoftDeletedAtZero(t *testing.T) {
	db := setupTestDB(t)
	store := createStore(t, db, "Central")
	seller := createUser(t, db, model.RoleSeller, &store.ID)
	sp := createStoreProduct(t, db, store, 20.00, 10)
	createHolding(t, db, seller, sp, 2)

	svc := NewSaleService(db, nil)
	_, err := svc.CreateSale(context.Background(), store, seller, CreateSaleInput{
		Items: []SaleItemInput{{StoreProductID: sp.ID, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("expected sale to succeed, got %v", err)
	}

	var holding model.SellerInventory
	err = db.Where("user_id = ? AND store_product_id = ?", seller.ID, sp.ID).First(&holding).Error
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected emptied holding to be soft-deleted, got %v", err)
	}

	err = db.Unscoped().Where("user_id = ? AND store_product_id = ?", seller.ID, sp.ID).First(&holding).Error
	if err != nil {
		t.Fatalf("expected soft-deleted row to remain, got %v", err)
	}
	if holding.Quantity != 0 || !holding.DeletedAt.Valid {
		t.Errorf("expected quantity 0 and deleted_at set, got %+v", holding)
	}
}

func TestCreateSale_MultipleItems(t *testing.T) {
	db := setupTestDB(t)
	store := createStore(t, db, "Central")
	manager := createUser(t, db, model.RoleManager, &store.ID)
	spA := createStoreProduct(t, db, store, 20.00, 10)
	spB := createStoreProduct(t, db, store, 35.00, 4)

	svc := NewSaleService(db, nil)
	sale, err := svc.CreateSale(context.Background(), store, manager, CreateSaleInput{
		Items: []SaleItemInput{
			{StoreProductID: spA.ID, Quantity: 2},
			{StoreProductID: spB.ID, Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("expected sale to succeed, got %v", err)
	}

	if sale.TotalAmount != 75.00 {
		t.Errorf("expected total 75.00, got %.2f", sale.TotalAmount)
	}
	if got := reloadStoreProduct(t, db, spA.ID).StockQuantity; got != 8 {
		t.Errorf("expected first product stock 8, got %d", got)
	}
	if got := reloadStoreProduct(t, db, spB.ID).StockQuantity; got != 3 {
		t.Errorf("expected second product stock 3, got %d", got)
	}
}

func TestFind_ScopedToStore(t *testing.T) {
	db := setupTestDB(t)
	central := createStore(t, db, "Central")
	mall := createStore(t, db, "Mall")
	manager := createUser(t, db, model.RoleManager, &central.ID)
	sp := createStoreProduct(t, db, central, 20.00, 10)

	svc := NewSaleService(db, nil)
	sale, err := svc.CreateSale(context.Background(), central, manager, CreateSaleInput{
		Items: []SaleItemInput{{StoreProductID: sp.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("expected sale to succeed, got %v", err)
	}

	if _, err := svc.Find(mall, sale.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for another store's sale, got %v", err)
	}
}

func TestList_SellersSeeOnlyOwnSales(t *testing.T) {
	db := setupTestDB(t)
	store := createStore(t, db, "Central")
	manager := createUser(t, db, model.RoleManager, &store.ID)
	seller := createUser(t, db, model.RoleSeller, &store.ID)
	sp := createStoreProduct(t, db, store, 20.00, 50)
	createHolding(t, db, seller, sp, 10)

	svc := NewSaleService(db, nil)
	ctx := context.Background()

	if _, err := svc.CreateSale(ctx, store, manager, CreateSaleInput{
		Items: []SaleItemInput{{StoreProductID: sp.ID, Quantity: 1}},
	}); err != nil {
		t.Fatalf("manager sale failed: %v", err)
	}
	if _, err := svc.CreateSale(ctx, store, seller, CreateSaleInput{
		Items: []SaleItemInput{{StoreProductID: sp.ID, Quantity: 1}},
	}); err != nil {
		t.Fatalf("seller sale failed: %v", err)
	}

	sales, total, err := svc.List(store, seller, SaleFilters{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 || len(sales) != 1 {
		t.Fatalf("expected seller to see 1 sale, got %d", total)
	}
	if sales[0].UserID != seller.ID {
		t.Errorf("expected seller's own sale, got user %d", sales[0].UserID)
	}

	_, managerTotal, err := svc.List(store, manager, SaleFilters{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if managerTotal != 2 {
		t.Errorf("expected manager to see 2 sales, got %d", managerTotal)
	}
}

func TestCreateSale_PublishFailureDoesNotFailSale(t *testing.T) {
	db := setupTestDB(t)
	store := createStore(t, db, "Central")
	manager := createUser(t, db, model.RoleManager, &store.ID)
	sp := createStoreProduct(t, db, store, 20.00, 10)

	publisher := &mockPublisher{err: errors.New("broker down")}
	svc := NewSaleService(db, publisher)

	sale, err := svc.CreateSale(context.Background(), store, manager, CreateSaleInput{
		Items: []SaleItemInput{{StoreProductID: sp.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("sale must survive a publish failure, got %v", err)
	}
	if sale.ID == 0 {
		t.Error("expected committed sale")
	}
}
