package model

import (
	"time"

	"gorm.io/gorm"
)

// Customer represents a buyer. TotalPurchases is a cumulative unit count,
// incremented only by completed sales.
type Customer struct {
	ID             uint           `json:"id" gorm:"primarykey"`
	Name           string         `json:"name" gorm:"type:varchar(255);not null"`
	Phone          string         `json:"phone" gorm:"type:varchar(30);uniqueIndex;not null"`
	TotalPurchases int            `json:"total_purchases" gorm:"not null;default:0"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
