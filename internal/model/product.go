package model

import (
	"time"

	"gorm.io/gorm"
)

// Product represents one sellable item of a store
type Product struct {
	ID           uint           `json:"id" gorm:"primarykey"`
	Name         string         `json:"name" gorm:"type:varchar(255);not null"`
	Description  string         `json:"description" gorm:"type:text"`
	Price        int64          `json:"price" gorm:"not null"`
	Stock        int            `json:"stock" gorm:"not null;default:0"`
	ImageURL     string         `json:"imageUrl" gorm:"type:varchar(512)"`
	CategoryID   *uint          `json:"categoryId"`
	StoreID      string         `json:"storeId" gorm:"type:varchar(64);index;not null"`
	Category     *Category      `json:"category,omitempty"`
	OptionGroups []OptionGroup  `json:"optionGroups" gorm:"many2many:product_option_groups"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}

// ProductOptionGroup is the owned association table between products and
// option groups, keyed by both sides.
type ProductOptionGroup struct {
	ProductID     uint `json:"productId" gorm:"primaryKey"`
	OptionGroupID uint `json:"optionGroupId" gorm:"primaryKey"`
}
