package order

import (
	"errors"
	"fmt"
)

// ErrInvalidRequest marks an order submission rejected before any database
// work: empty item list, missing store, non-positive quantity.
var ErrInvalidRequest = errors.New("invalid order request")

// ProductNotFoundError is returned when a requested product does not exist
// in the submitting store.
type ProductNotFoundError struct {
	ProductID uint
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %d not found", e.ProductID)
}

// InsufficientStockError is returned when a line requests more units than
// the product has in stock. The product name is surfaced to the kiosk.
type InsufficientStockError struct {
	ProductName string
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock: %s", e.ProductName)
}
