package service

import (
	"errors"
	"fmt"

	"github.com/DeiVid1337/Boss-Pods-Api/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SaleItemInput is one requested line item. Quantity is guaranteed >= 1 by
// request binding before it reaches this package.
type SaleItemInput struct {
	StoreProductID uint `json:"store_product_id"`
	Quantity       int  `json:"quantity"`
}

// aggregated holds the summed quantity for one distinct store product and the
// first request index that referenced it. Summing first prevents a request
// from splitting one large quantity across several lines to dodge the
// availability ceiling.
type aggregated struct {
	total      int
	firstIndex int
}

// aggregateItems sums quantities per distinct store product, preserving the
// order in which products first appear.
func aggregateItems(items []SaleItemInput) (map[uint]*aggregated, []uint) {
	totals := make(map[uint]*aggregated, len(items))
	var order []uint
	for index, item := range items {
		if item.StoreProductID == 0 {
			continue
		}
		if agg, ok := totals[item.StoreProductID]; ok {
			agg.total += item.Quantity
			continue
		}
		totals[item.StoreProductID] = &aggregated{total: item.Quantity, firstIndex: index}
		order = append(order, item.StoreProductID)
	}
	return totals, order
}

// lockForUpdate locks the selected rows for the duration of the transaction.
// The clause is postgres-only; sqlite (used in tests) has a single writer and
// rejects the syntax.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// loadStoreProducts resolves and reference-checks every line item against the
// store. Soft-deleted products resolve as not found. Items that fail a
// reference check get a field error and are excluded from the returned map.
func loadStoreProducts(tx *gorm.DB, store *model.Store, items []SaleItemInput, errs ValidationErrors) map[uint]*model.StoreProduct {
	storeProducts := make(map[uint]*model.StoreProduct, len(items))

	for index, item := range items {
		if item.StoreProductID == 0 {
			errs.Add(fmt.Sprintf("items.%d.store_product_id", index), "The store product ID is required.")
			continue
		}
		if _, seen := storeProducts[item.StoreProductID]; seen {
			continue
		}

		var storeProduct model.StoreProduct
		err := lockForUpdate(tx).First(&storeProduct, item.StoreProductID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				errs.Add(fmt.Sprintf("items.%d.store_product_id", index), "The selected store product does not exist.")
				continue
			}
			errs.Add(fmt.Sprintf("items.%d.store_product_id", index), "The selected store product could not be loaded.")
			continue
		}

		if storeProduct.StoreID != store.ID {
			errs.Add(fmt.Sprintf("items.%d.store_product_id", index), "The store product does not belong to this store.")
			continue
		}

		storeProducts[item.StoreProductID] = &storeProduct
	}

	return storeProducts
}

// validateSaleStock runs the full pre-mutation check for a sale: reference
// checks, per-product aggregation, then availability against the ledger the
// actor sells from (a seller's own holdings, otherwise store stock). Returns
// the resolved store products on success and ValidationErrors on any failure.
// Nothing is mutated either way.
func validateSaleStock(tx *gorm.DB, store *model.Store, user *model.User, items []SaleItemInput) (map[uint]*model.StoreProduct, error) {
	errs := ValidationErrors{}
	storeProducts := loadStoreProducts(tx, store, items, errs)
	totals, order := aggregateItems(items)

	for _, storeProductID := range order {
		storeProduct, ok := storeProducts[storeProductID]
		if !ok {
			continue
		}
		agg := totals[storeProductID]

		if user.IsSeller() {
			holding, err := findHolding(tx, user.ID, storeProductID)
			if err != nil {
				return nil, err
			}
			available := 0
			if holding != nil {
				available = holding.Quantity
			}
			if available < agg.total {
				errs.Add(fmt.Sprintf("items.%d.quantity", agg.firstIndex),
					fmt.Sprintf("Insufficient quantity in seller inventory. Available: %d, Requested (total for this product): %d.", available, agg.total))
			}
			continue
		}

		if !storeProduct.HasStock(agg.total) {
			errs.Add(fmt.Sprintf("items.%d.quantity", agg.firstIndex),
				fmt.Sprintf("Insufficient stock. Available: %d, Requested (total for this product): %d.", storeProduct.StockQuantity, agg.total))
		}
	}

	if errs.Any() {
		return nil, errs
	}
	return storeProducts, nil
}

// findHolding fetches a seller's live inventory row for one store product.
// Returns nil without error when no row exists.
func findHolding(tx *gorm.DB, userID, storeProductID uint) (*model.SellerInventory, error) {
	var holding model.SellerInventory
	err := tx.Where("user_id = ? AND store_product_id = ?", userID, storeProductID).First(&holding).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &holding, nil
}

// totalHoldings sums every seller's live holdings for a store product
func totalHoldings(tx *gorm.DB, storeProductID uint) (int, error) {
	var total int
	err := tx.Model(&model.SellerInventory{}).
		Where("store_product_id = ?", storeProductID).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&total).Error
	return total, err
}

// AvailableQuantity is the store stock not currently checked out to any
// seller: max(0, stock_quantity - sum of all sellers' holdings). Used for
// display and as the withdrawal ceiling.
func AvailableQuantity(db *gorm.DB, storeProduct *model.StoreProduct) (int, error) {
	held, err := totalHoldings(db, storeProduct.ID)
	if err != nil {
		return 0, err
	}
	available := storeProduct.StockQuantity - held
	if available < 0 {
		available = 0
	}
	return available, nil
}
