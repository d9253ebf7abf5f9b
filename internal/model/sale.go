package model

import (
	"time"
)

// Sale is a completed transaction. Sales are immutable after creation; there
// are no update or delete paths.
type Sale struct {
	ID          uint       `json:"id" gorm:"primarykey"`
	StoreID     uint       `json:"store_id" gorm:"not null;index"`
	Store       *Store     `json:"store,omitempty" gorm:"foreignKey:StoreID"`
	UserID      uint       `json:"user_id" gorm:"not null;index"`
	User        *User      `json:"user,omitempty" gorm:"foreignKey:UserID"`
	CustomerID  *uint      `json:"customer_id" gorm:"index"`
	Customer    *Customer  `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	TotalAmount float64    `json:"total_amount" gorm:"type:decimal(10,2);not null"`
	SaleDate    time.Time  `json:"sale_date" gorm:"not null;index"`
	Notes       string     `json:"notes" gorm:"type:varchar(1000)"`
	SaleItems   []SaleItem `json:"items,omitempty" gorm:"foreignKey:SaleID"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// SaleItem is one line of a sale. UnitPrice snapshots the store product's
// sale price at transaction time; later price changes never touch it.
type SaleItem struct {
	ID             uint          `json:"id" gorm:"primarykey"`
	SaleID         uint          `json:"sale_id" gorm:"not null;index"`
	StoreProductID uint          `json:"store_product_id" gorm:"not null;index"`
	StoreProduct   *StoreProduct `json:"store_product,omitempty" gorm:"foreignKey:StoreProductID"`
	Quantity       int           `json:"quantity" gorm:"not null"`
	UnitPrice      float64       `json:"unit_price" gorm:"type:decimal(10,2);not null"`
	Subtotal       float64       `json:"subtotal" gorm:"type:decimal(10,2);not null"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}
