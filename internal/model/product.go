package model

import (
	"fmt"
	"time"
)

// Product is catalog master data shared by all stores. The brand/name/flavor
// triple is unique; per-store pricing and stock live on StoreProduct.
type Product struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	Brand     string    `json:"brand" gorm:"type:varchar(255);not null;uniqueIndex:idx_products_brand_name_flavor"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null;uniqueIndex:idx_products_brand_name_flavor"`
	Flavor    string    `json:"flavor" gorm:"type:varchar(255);not null;uniqueIndex:idx_products_brand_name_flavor"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FullName returns the display name used in listings
func (p *Product) FullName() string {
	return fmt.Sprintf("%s - %s - %s", p.Brand, p.Name, p.Flavor)
}
