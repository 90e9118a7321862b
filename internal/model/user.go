package model

import (
	"time"

	"gorm.io/gorm"
)

// User represents a store owner account. Each account owns exactly one
// store, identified publicly by StoreID.
type User struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	Email     string         `json:"email" gorm:"type:varchar(255);unique;not null"`
	Password  string         `json:"-" gorm:"type:varchar(255);not null"`
	StoreName string         `json:"storeName" gorm:"type:varchar(255);not null"`
	StoreID   string         `json:"storeId" gorm:"type:varchar(64);uniqueIndex;not null"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}
