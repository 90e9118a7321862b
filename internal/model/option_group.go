package model

import (
	"time"

	"gorm.io/gorm"
)

// OptionGroup is a named customization axis (e.g. "Size") owned by a store
type OptionGroup struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	Name      string         `json:"name" gorm:"type:varchar(100);not null"`
	StoreID   string         `json:"storeId" gorm:"type:varchar(64);index;not null"`
	Options   []Option       `json:"options"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// Option is one selectable choice within an option group. Price is the
// delta added to the product price when the option is selected.
type Option struct {
	ID            uint      `json:"id" gorm:"primarykey"`
	Name          string    `json:"name" gorm:"type:varchar(100);not null"`
	Price         int64     `json:"price" gorm:"not null;default:0"`
	OptionGroupID uint      `json:"optionGroupId" gorm:"index;not null"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
