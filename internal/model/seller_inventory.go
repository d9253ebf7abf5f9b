package model

import (
	"time"

	"gorm.io/gorm"
)

// SellerInventory tracks units a seller has physically withdrawn from a store
// for independent resale. Rows are soft-deleted when the quantity reaches zero
// and restored if the seller withdraws the same product again.
type SellerInventory struct {
	ID             uint           `json:"id" gorm:"primarykey"`
	UserID         uint           `json:"user_id" gorm:"not null;uniqueIndex:idx_seller_inventory_user_store_product"`
	User           *User          `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	StoreProductID uint           `json:"store_product_id" gorm:"not null;uniqueIndex:idx_seller_inventory_user_store_product"`
	StoreProduct   *StoreProduct  `json:"store_product,omitempty" gorm:"foreignKey:StoreProductID"`
	Quantity       int            `json:"quantity" gorm:"not null;default:0"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// TableName keeps the singular table name used by the original schema
func (SellerInventory) TableName() string {
	return "seller_inventory"
}
