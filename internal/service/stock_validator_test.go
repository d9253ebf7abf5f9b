package service

import (
	"strings"
	"testing"

	"github.com/DeiVid1337/Boss-Pods-Api/internal/model"
)

func TestAggregateItems_SumsDuplicateProducts(t *testing.T) {
	totals, order := aggregateItems([]SaleItemInput{
		{StoreProductID: 7, Quantity: 5},
		{StoreProductID: 9, Quantity: 2},
		{StoreProductID: 7, Quantity: 5},
	})

	if len(order) != 2 {
		t.Fatalf("expected 2 distinct products, got %d", len(order))
	}
	if order[0] != 7 || order[1] != 9 {
		t.Errorf("expected first-appearance order [7 9], got %v", order)
	}
	if totals[7].total != 10 {
		t.Errorf("expected aggregated total 10 for product 7, got %d", totals[7].total)
	}
	if totals[7].firstIndex != 0 {
		t.Errorf("expected first index 0 for product 7, got %d", totals[7].firstIndex)
	}
	if totals[9].total != 2 || totals[9].firstIndex != 1 {
		t.Errorf("unexpected aggregation for product 9: %+v", totals[9])
	}
}

func TestValidateSaleStock_AggregatedQuantityExceedsStock(t *testing.T) {
	db := setupTestDB(t)
	store := createStore(t, db, "Central")
	manager := createUser(t, db, model.RoleManager, &store.ID)
	sp := createStoreProduct(t, db, store, 20.00, 8)

	// Two lines of 5 for the same product must be checked as 10, not 5
	items := []SaleItemInput{
		{StoreProductID: sp.ID, Quantity: 5},
		{StoreProductID: sp.ID, Quantity: 5},
	}

	_, err := validateSaleStock(db, store, manager, items)
	errs, ok := AsValidationErrors(err)
	if !ok {
		t.Fatalf("expected validation errors, got %v", err)
	}

	messages, found := errs["items.0.quantity"]
	if !found {
		t.Fatalf("expected error keyed by first index, got %v", errs)
	}
	want := "Insufficient stock. Available: 8, Requested (total for this product): 10."
	if messages[0] != want {
		t.Errorf("expected %q, got %q", want, messages[0])
	}
}

func TestValidateSaleStock_AggregatedQuantityWithinStock(t *testing.T) {
	db := setupTestDB(t)
	store := createStore(t, db, "Central")
	manager := createUser(t, db, model.RoleManager, &store.ID)
	sp := createStoreProduct(t, db, store, 20.00, 10)

	items := []SaleItemInput{
		{StoreProductID: sp.ID, Quantity: 5},
		{StoreProductID: sp.ID, Quantity: 5},
	}

	storeProducts, err := validateSaleStock(db, store, manager, items)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, ok := storeProducts[sp.ID]; !ok {
		t.Errorf("expected resolved store product %d", sp.ID)
	}
}

func TestValidateSaleStock_UnknownProduct(t *testing.T) {
	db := setupTestDB(t)
	store := createStore(t, db, "Central")
	manager := createUser(t, db, model.RoleManager, &store.ID)

	_, err := validateSaleStock(db, store, manager, []SaleItemInput{
		{StoreProductID: 999, Quantity: 1},
	})
	errs, ok := AsValidationErrors(err)
	if !ok {
		t.Fatalf("expected validation errors, got %v", err)
	}
	if _, found := errs["items.0.store_product_id"]; !found {
		t.Errorf("expected error on items.0.store_product_id, got %v", errs)
	}
}

func TestValidateSaleStock_ProductFromAnotherStore(t *testing.T) {
	db := setupTestDB(t)
	central := createStore(t, db, "Central")
	mall := createStore(t, db, "Mall")
	manager := createUser(t, db, model.RoleManager, &central.ID)
	other := createStoreProduct(t, db, mall, 20.00, 10)

	_, err := validateSaleStock(db, central, manager, []SaleItemInput{
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

func TestValidateSaleStock_SoftDeletedProductNotFound(t *testing.T) {
	db := setupTestDB(t)
	store := createStore(t, db, "Central")
	manager := createUser(t, db, model.RoleManager, &store.ID)
	sp := createStoreProduct(t, db, store, 20.00, 10)

	if err := db.Delete(sp).Error; err != nil {
		t.Fatalf("failed to soft-delete store product: %v", err)
	}

	_, err := validateSaleStock(db, store, manager, []SaleItemInput{
		{StoreProductID: sp.ID, Quantity: 1},
	})
	errs, ok := AsValidationErrors(err)
	if !ok {
		t.Fatalf("expected validation errors, got %v", err)
	}
	messages := errs["items.0.store_product_id"]
	if len(messages) == 0 || !strings.Contains(messages[0], "does not exist") {
		t.Errorf("expected not-found error for soft-deleted product, got %v", errs)
	}
}

func TestValidateSaleStock_SellerCheckedAgainstOwnHoldings(t *testing.T) {
	db := setupTestDB(t)
	store := createStore(t, db, "Central")
	seller := createUser(t, db, model.RoleSeller, &store.ID)
	sp := createStoreProduct(t, db, store, 20.00, 100)
	createHolding(t, db, seller, sp, 3)

	// Store has plenty of stock; the seller's ledger is what counts
	_, err := validateSaleStock(db, store, seller, []SaleItemInput{
		{StoreProductID: sp.ID, Quantity: 5},
	})
	errs, ok := AsValidationErrors(err)
	if !ok {
		t.Fatalf("expected validation errors, got %v", err)
	}
	want := "Insufficient quantity in seller inventory. Available: 3, Requested (total for this product): 5."
	messages := errs["items.0.quantity"]
	if len(messages) == 0 || messages[0] != want {
		t.Errorf("expected %q, got %v", want, errs)
	}
}

func TestValidateSaleStock_SellerWithoutHolding(t *testing.T) {
	db := setupTestDB(t)
	store := createStore(t, db, "Central")
	seller := createUser(t, db, model.RoleSeller, &store.ID)
	sp := createStoreProduct(t, db, store, 20.00, 100)

	_, err := validateSaleStock(db, store, seller, []SaleItemInput{
		{StoreProductID: sp.ID, Quantity: 1},
	})
	errs, ok := AsValidationErrors(err)
	if !ok {
		t.Fatalf("expected validation errors, got %v", err)
	}
	messages := errs["items.0.quantity"]
	if len(messages) == 0 || !strings.Contains(messages[0], "Available: 0") {
		t.Errorf("expected zero availability for seller without holding, got %v", errs)
	}
}

func TestValidateSaleStock_DoesNotMutate(t *testing.T) {
	db := setupTestDB(t)
	store := createStore(t, db, "Central")
	manager := createUser(t, db, model.RoleManager, &store.ID)
	sp := createStoreProduct(t, db, store, 20.00, 8)

	items := []SaleItemInput{{StoreProductID: sp.ID, Quantity: 5}}
	for i := 0; i < 3; i++ {
		if _, err := validateSaleStock(db, store, manager, items); err != nil {
			t.Fatalf("run %d: expected no error, got %v", i, err)
		}
	}

	if got := reloadStoreProduct(t, db, sp.ID).StockQuantity; got != 8 {
		t.Errorf("validation must not change stock, got %d", got)
	}
}

func TestAvailableQuantity(t *testing.T) {
	db := setupTestDB(t)
	store := createStore(t, db, "Central")
	sellerA := createUser(t, db, model.RoleSeller, &store.ID)
	sellerB := createUser(t, db, model.RoleSeller, &store.ID)
	sp := createStoreProduct(t, db, store, 20.00, 50)

	createHolding(t, db, sellerA, sp, 10)
	createHolding(t, db, sellerB, sp, 15)

	available, err := AvailableQuantity(db, sp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if available != 25 {
		t.Errorf("expected available 25 (50 - 10 - 15), got %d", available)
	}
}

func TestAvailableQuantity_ClampedAtZero(t *testing.T) {
	db := setupTestDB(t)
	store := createStore(t, db, "Central")
	seller := createUser(t, db, model.RoleSeller, &store.ID)
	sp := createStoreProduct(t, db, store, 20.00, 5)

	// Holdings can exceed stock after a direct stock adjustment
	createHolding(t, db, seller, sp, 8)

	available, err := AvailableQuantity(db, sp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if available != 0 {
		t.Errorf("expected available clamped to 0, got %d", available)
	}
}
