package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Order is an append-only record of one kiosk submission. TotalAmount is
// computed server-side at creation time and never changes afterwards.
type Order struct {
	ID          uint        `json:"id" gorm:"primarykey"`
	StoreID     string      `json:"storeId" gorm:"type:varchar(64);index;not null"`
	TotalAmount int64       `json:"totalAmount" gorm:"not null"`
	Items       []OrderItem `json:"orderItems" gorm:"foreignKey:OrderID"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// OrderItem snapshots one ordered line. PricePerItem is the effective unit
// price (product price plus selected option prices) at submission time,
// immune to later product or option edits.
type OrderItem struct {
	ID              uint            `json:"id" gorm:"primarykey"`
	OrderID         uint            `json:"orderId" gorm:"index;not null"`
	ProductID       uint            `json:"productId" gorm:"not null"`
	Quantity        int             `json:"quantity" gorm:"not null"`
	PricePerItem    int64           `json:"pricePerItem" gorm:"not null"`
	SelectedOptions SelectedOptions `json:"selectedOptions" gorm:"type:jsonb"`
	Product         *Product        `json:"product,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// SelectedOption records the chosen option of one option group
type SelectedOption struct {
	OptionID uint `json:"optionId"`
}

// SelectedOptions maps an option-group id (as submitted by the kiosk, a
// decimal string) to the chosen option. Stored as a JSON column.
type SelectedOptions map[string]SelectedOption

// Value implements driver.Valuer
func (s SelectedOptions) Value() (driver.Value, error) {
	if s == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(s)
}

// Scan implements sql.Scanner
func (s *SelectedOptions) Scan(value interface{}) error {
	if value == nil {
		*s = SelectedOptions{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type for selected options: %T", value)
	}
	return json.Unmarshal(data, s)
}
