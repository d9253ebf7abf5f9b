package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/DeiVid1337/Boss-Pods-Api/internal/model"
	"github.com/DeiVid1337/Boss-Pods-Api/pkg/events"
	"github.com/DeiVid1337/Boss-Pods-Api/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SaleService owns the sale transaction workflow: validate stock and
// ownership, then persist the sale, its items, the stock decrements, the
// seller holding decrements and the customer purchase total as one
// all-or-nothing transaction.
type SaleService struct {
	db        *gorm.DB
	publisher events.Publisher
}

// NewSaleService creates a sale service. A nil publisher disables events.
func NewSaleService(db *gorm.DB, publisher events.Publisher) *SaleService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &SaleService{db: db, publisher: publisher}
}

// CreateSaleInput is the validated request body for a sale
type CreateSaleInput struct {
	CustomerID *uint           `json:"customer_id"`
	Items      []SaleItemInput `json:"items"`
	Notes      string          `json:"notes"`
}

// SaleFilters narrows and orders sale listings
type SaleFilters struct {
	Search    string
	From      *time.Time
	To        *time.Time
	SortBy    string
	SortOrder string
	Page      int
	PerPage   int
}

// List returns sales for a store, newest first by default. Sellers only see
// their own sales.
func (s *SaleService) List(store *model.Store, user *model.User, filters SaleFilters) ([]model.Sale, int64, error) {
	query := s.db.Model(&model.Sale{}).Where("store_id = ?", store.ID)

	if user.IsSeller() {
		query = query.Where("user_id = ?", user.ID)
	}

	if filters.Search != "" {
		query = query.Where("LOWER(notes) LIKE LOWER(?)", "%"+filters.Search+"%")
	}

	if filters.From != nil && filters.To != nil {
		query = query.Where("sale_date BETWEEN ? AND ?", *filters.From, *filters.To)
	} else if filters.From != nil {
		query = query.Where("sale_date >= ?", *filters.From)
	} else if filters.To != nil {
		query = query.Where("sale_date <= ?", *filters.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortBy := filters.SortBy
	switch sortBy {
	case "sale_date", "total_amount", "created_at":
	default:
		sortBy = "sale_date"
	}
	sortOrder := filters.SortOrder
	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "desc"
	}

	page, perPage := normalizePage(filters.Page, filters.PerPage)

	var sales []model.Sale
	err := query.
		Order(fmt.Sprintf("%s %s", sortBy, sortOrder)).
		Offset((page - 1) * perPage).
		Limit(perPage).
		Preload("SaleItems.StoreProduct.Product").
		Preload("Customer").
		Preload("User").
		Find(&sales).Error
	return sales, total, err
}

// Find returns one sale scoped to the store, or ErrNotFound
func (s *SaleService) Find(store *model.Store, id uint) (*model.Sale, error) {
	var sale model.Sale
	err := s.db.Where("store_id = ?", store.ID).
		Preload("SaleItems.StoreProduct.Product").
		Preload("Customer").
		Preload("User").
		First(&sale, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &sale, nil
}

// CreateSale runs the whole orchestration inside one transaction. On
// validation failure it returns ValidationErrors with nothing written; on
// any later failure the transaction rolls back entirely. The sale-completed
// event is published only after commit.
func (s *SaleService) CreateSale(ctx context.Context, store *model.Store, user *model.User, input CreateSaleInput) (*model.Sale, error) {
	var sale model.Sale

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		storeProducts, err := validateSaleStock(tx, store, user, input.Items)
		if err != nil {
			return err
		}

		var customer *model.Customer
		if input.CustomerID != nil {
			customer = &model.Customer{}
			if err := tx.First(customer, *input.CustomerID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					errs := ValidationErrors{}
					errs.Add("customer_id", "The selected customer does not exist.")
					return errs
				}
				return err
			}
		}

		// Snapshot prices before any write so later price changes cannot
		// leak into this sale.
		totalAmount := 0.0
		totalUnits := 0
		unitPrices := make([]float64, len(input.Items))
		for i, item := range input.Items {
			unitPrices[i] = storeProducts[item.StoreProductID].SalePrice
			totalAmount += unitPrices[i] * float64(item.Quantity)
			totalUnits += item.Quantity
		}

		sale = model.Sale{
			StoreID:     store.ID,
			UserID:      user.ID,
			CustomerID:  input.CustomerID,
			TotalAmount: totalAmount,
			SaleDate:    time.Now(),
			Notes:       input.Notes,
		}
		if err := tx.Create(&sale).Error; err != nil {
			return err
		}

		for i, item := range input.Items {
			saleItem := model.SaleItem{
				SaleID:         sale.ID,
				StoreProductID: item.StoreProductID,
				Quantity:       item.Quantity,
				UnitPrice:      unitPrices[i],
				Subtotal:       unitPrices[i] * float64(item.Quantity),
			}
			if err := tx.Create(&saleItem).Error; err != nil {
				return err
			}

			// Conditional decrement: the WHERE guard plus the affected-row
			// check keeps stock from ever crossing zero, even if another
			// transaction slipped between validation and this write.
			result := tx.Model(&model.StoreProduct{}).
				Where("id = ? AND stock_quantity >= ?", item.StoreProductID, item.Quantity).
				UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", item.Quantity))
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("stock for store product %d changed concurrently", item.StoreProductID)
			}

			if user.IsSeller() {
				if err := decrementHolding(tx, user.ID, item.StoreProductID, item.Quantity); err != nil {
					return err
				}
			}
		}

		if customer != nil {
			err := tx.Model(customer).
				UpdateColumn("total_purchases", gorm.Expr("total_purchases + ?", totalUnits)).Error
			if err != nil {
				return err
			}
		}

		return tx.Preload("SaleItems.StoreProduct.Product").
			Preload("Customer").
			Preload("User").
			First(&sale, sale.ID).Error
	})
	if err != nil {
		return nil, err
	}

	s.publishCompleted(ctx, &sale)

	return &sale, nil
}

// decrementHolding reduces a seller's holding after a sale, clamped at zero,
// soft-deleting the row when it empties. A missing row is not an error: the
// validator already confirmed the seller ledger, and a vanished row means
// there is nothing left to decrement.
func decrementHolding(tx *gorm.DB, userID, storeProductID uint, quantity int) error {
	holding, err := findHolding(tx, userID, storeProductID)
	if err != nil || holding == nil {
		return err
	}

	newQuantity := holding.Quantity - quantity
	if newQuantity < 0 {
		newQuantity = 0
	}
	holding.Quantity = newQuantity

	if err := tx.Save(holding).Error; err != nil {
		return err
	}
	if newQuantity == 0 {
		return tx.Delete(holding).Error
	}
	return nil
}

func (s *SaleService) publishCompleted(ctx context.Context, sale *model.Sale) {
	items := make([]events.SaleItemEvent, len(sale.SaleItems))
	for i, item := range sale.SaleItems {
		items[i] = events.SaleItemEvent{
			StoreProductID: item.StoreProductID,
			Quantity:       item.Quantity,
			UnitPrice:      item.UnitPrice,
			Subtotal:       item.Subtotal,
		}
	}

	err := s.publisher.PublishSaleCompleted(ctx, events.SaleCompleted{
		SaleID:      sale.ID,
		StoreID:     sale.StoreID,
		UserID:      sale.UserID,
		CustomerID:  sale.CustomerID,
		TotalAmount: sale.TotalAmount,
		SaleDate:    sale.SaleDate,
		Items:       items,
	})
	if err != nil {
		// The sale is committed; a lost event must not fail the request
		logger.GetLogger().Warn("Failed to publish sale event",
			zap.Uint("sale_id", sale.ID),
			zap.Error(err))
	}
}

func normalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 15
	}
	if perPage > 100 {
		perPage = 100
	}
	return page, perPage
}
