package model

import (
	"time"

	"gorm.io/gorm"
)

// StoreProduct is the per-store inventory ledger row: price and stock for one
// product in one store. StockQuantity counts units owned by the store and is
// decremented only at sale time; withdrawals by sellers move custody, not
// ownership.
type StoreProduct struct {
	ID            uint           `json:"id" gorm:"primarykey"`
	StoreID       uint           `json:"store_id" gorm:"not null;uniqueIndex:idx_store_products_store_product"`
	Store         *Store         `json:"store,omitempty" gorm:"foreignKey:StoreID"`
	ProductID     uint           `json:"product_id" gorm:"not null;uniqueIndex:idx_store_products_store_product"`
	Product       *Product       `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	CostPrice     float64        `json:"cost_price" gorm:"type:decimal(10,2);not null"`
	SalePrice     float64        `json:"sale_price" gorm:"type:decimal(10,2);not null"`
	StockQuantity int            `json:"stock_quantity" gorm:"not null;default:0"`
	MinStockLevel int            `json:"min_stock_level" gorm:"not null;default:0"`
	IsActive      bool           `json:"is_active" gorm:"not null"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// HasStock reports whether the store owns at least the requested quantity
func (sp *StoreProduct) HasStock(quantity int) bool {
	return sp.StockQuantity >= quantity
}

// IsLowStock reports whether the stock has fallen to the reorder threshold
func (sp *StoreProduct) IsLowStock() bool {
	return sp.StockQuantity <= sp.MinStockLevel
}
