package model

import (
	"time"

	"gorm.io/gorm"
)

// Role is the closed set of user roles
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleSeller  Role = "seller"
)

// Valid reports whether the role is one of the three known roles
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleSeller:
		return true
	}
	return false
}

// User represents a staff account. Admins have no store; managers and sellers
// belong to exactly one store.
type User struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	Name      string         `json:"name" gorm:"type:varchar(255);not null"`
	Email     string         `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	Password  string         `json:"-" gorm:"type:varchar(255);not null"`
	Role      Role           `json:"role" gorm:"type:varchar(20);not null;index"`
	StoreID   *uint          `json:"store_id" gorm:"index"`
	Store     *Store         `json:"store,omitempty" gorm:"foreignKey:StoreID"`
	IsActive  bool           `json:"is_active" gorm:"not null"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) IsManager() bool {
	return u.Role == RoleManager
}

func (u *User) IsSeller() bool {
	return u.Role == RoleSeller
}

// BelongsToStore reports whether the user is assigned to the given store
func (u *User) BelongsToStore(storeID uint) bool {
	return u.StoreID != nil && *u.StoreID == storeID
}
