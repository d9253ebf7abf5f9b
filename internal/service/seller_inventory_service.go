package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/DeiVid1337/Boss-Pods-Api/internal/model"
	"gorm.io/gorm"
)

// SellerInventoryService reconciles stock custody between a store and its
// sellers. Withdrawals move units from the store's uncommitted stock into a
// seller's holding without touching stock_quantity; returns move them back.
type SellerInventoryService struct {
	db *gorm.DB
}

func NewSellerInventoryService(db *gorm.DB) *SellerInventoryService {
	return &SellerInventoryService{db: db}
}

// Withdraw checks the requested quantities against the store's available
// quantity (stock minus every seller's current holdings) and then increments
// the seller's holding rows, creating or restoring them as needed. All items
// succeed or fail together. Store stock is never decremented here: the units
// stay store-owned, only custody moves.
func (s *SellerInventoryService) Withdraw(ctx context.Context, store *model.Store, seller *model.User, items []SaleItemInput) ([]model.SellerInventory, error) {
	var results []model.SellerInventory

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		errs := ValidationErrors{}
		storeProducts := loadStoreProducts(tx, store, items, errs)
		totals, order := aggregateItems(items)

		for _, storeProductID := range order {
			storeProduct, ok := storeProducts[storeProductID]
			if !ok {
				continue
			}
			agg := totals[storeProductID]

			available, err := AvailableQuantity(tx, storeProduct)
			if err != nil {
				return err
			}
			if available < agg.total {
				errs.Add(fmt.Sprintf("items.%d.quantity", agg.firstIndex),
					fmt.Sprintf("Insufficient available quantity. Available: %d, Requested (total for this product): %d.", available, agg.total))
			}
		}

		if errs.Any() {
			return errs
		}

		results = make([]model.SellerInventory, 0, len(items))
		for _, item := range items {
			holding, err := incrementHolding(tx, seller.ID, item.StoreProductID, item.Quantity)
			if err != nil {
				return err
			}
			results = append(results, *holding)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// Return checks each aggregated quantity against the seller's own holding and
// then decrements it, clamped at zero, soft-deleting emptied rows. All items
// succeed or fail together.
func (s *SellerInventoryService) Return(ctx context.Context, store *model.Store, seller *model.User, items []SaleItemInput) ([]model.SellerInventory, error) {
	var results []model.SellerInventory

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		errs := ValidationErrors{}
		storeProducts := loadStoreProducts(tx, store, items, errs)
		totals, order := aggregateItems(items)

		for _, storeProductID := range order {
			if _, ok := storeProducts[storeProductID]; !ok {
				continue
			}
			agg := totals[storeProductID]

			holding, err := findHolding(tx, seller.ID, storeProductID)
			if err != nil {
				return err
			}
			if holding == nil {
				errs.Add(fmt.Sprintf("items.%d.store_product_id", agg.firstIndex),
					"Seller inventory not found for this product.")
				continue
			}
			if holding.Quantity < agg.total {
				errs.Add(fmt.Sprintf("items.%d.quantity", agg.firstIndex),
					fmt.Sprintf("Insufficient quantity in seller inventory. Available: %d, Requested (total for this product): %d.", holding.Quantity, agg.total))
			}
		}

		if errs.Any() {
			return errs
		}

		results = make([]model.SellerInventory, 0, len(items))
		for _, item := range items {
			holding, err := findHolding(tx, seller.ID, item.StoreProductID)
			if err != nil {
				return err
			}
			if holding == nil {
				// Row vanished between validation and mutation; roll back
				return fmt.Errorf("seller inventory for store product %d changed concurrently", item.StoreProductID)
			}

			newQuantity := holding.Quantity - item.Quantity
			if newQuantity < 0 {
				newQuantity = 0
			}
			holding.Quantity = newQuantity
			if err := tx.Save(holding).Error; err != nil {
				return err
			}
			if newQuantity == 0 {
				if err := tx.Delete(holding).Error; err != nil {
					return err
				}
			}
			results = append(results, *holding)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// incrementHolding finds the seller's holding row for a store product,
// creating it or restoring a soft-deleted one, and adds the quantity.
func incrementHolding(tx *gorm.DB, userID, storeProductID uint, quantity int) (*model.SellerInventory, error) {
	var holding model.SellerInventory
	err := tx.Unscoped().
		Where("user_id = ? AND store_product_id = ?", userID, storeProductID).
		First(&holding).Error

	switch {
	case err == nil:
		updates := map[string]interface{}{
			"quantity":   holding.Quantity + quantity,
			"deleted_at": nil,
		}
		if err := tx.Unscoped().Model(&holding).Updates(updates).Error; err != nil {
			return nil, err
		}
		holding.Quantity += quantity
		holding.DeletedAt = gorm.DeletedAt{}
		return &holding, nil

	case errors.Is(err, gorm.ErrRecordNotFound):
		holding = model.SellerInventory{
			UserID:         userID,
			StoreProductID: storeProductID,
			Quantity:       quantity,
		}
		if err := tx.Create(&holding).Error; err != nil {
			return nil, err
		}
		return &holding, nil

	default:
		return nil, err
	}
}

// ListForUser returns a seller's live holdings, newest first
func (s *SellerInventoryService) ListForUser(seller *model.User, page, perPage int) ([]model.SellerInventory, int64, error) {
	query := s.db.Model(&model.SellerInventory{}).Where("user_id = ?", seller.ID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, perPage = normalizePage(page, perPage)

	var holdings []model.SellerInventory
	err := query.
		Order("created_at desc").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Preload("StoreProduct.Product").
		Preload("StoreProduct.Store").
		Find(&holdings).Error
	return holdings, total, err
}

// ListForStore returns every seller's holdings for one store, newest first
func (s *SellerInventoryService) ListForStore(store *model.Store, page, perPage int) ([]model.SellerInventory, int64, error) {
	query := s.db.Model(&model.SellerInventory{}).
		Joins("JOIN store_products ON store_products.id = seller_inventory.store_product_id").
		Where("store_products.store_id = ?", store.ID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, perPage = normalizePage(page, perPage)

	var holdings []model.SellerInventory
	err := query.
		Order("seller_inventory.created_at desc").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Preload("User").
		Preload("StoreProduct.Product").
		Find(&holdings).Error
	return holdings, total, err
}
