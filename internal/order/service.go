package order

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"kiosk-service/internal/model"
)

// LineItem is one requested (product, quantity, selected options) tuple
type LineItem struct {
	ProductID       uint                  `json:"productId"`
	Quantity        int                   `json:"quantity"`
	SelectedOptions model.SelectedOptions `json:"selectedOptions"`
}

// PlaceOrderRequest is the kiosk order submission
type PlaceOrderRequest struct {
	StoreID string     `json:"storeId"`
	Items   []LineItem `json:"items"`
}

// Service computes authoritative pricing and persists orders atomically.
// All writes of one submission happen inside a single database transaction:
// either the order, its items and every stock decrement become visible
// together, or nothing does.
type Service struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewService creates an order service backed by the given database handle
func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{
		db:     db,
		logger: logger,
	}
}

// PlaceOrder validates the submission, computes the total from current
// product and option prices, and creates the order, its item snapshots and
// the stock decrements in one transaction.
//
// The decrement is a conditional UPDATE guarded by "stock >= quantity", so
// two concurrent submissions competing for the last unit cannot both
// commit: the engine serializes the row update and the loser sees zero
// affected rows, which aborts its transaction.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*model.Order, error) {
	if req.StoreID == "" {
		return nil, fmt.Errorf("%w: storeId is required", ErrInvalidRequest)
	}
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: items must not be empty", ErrInvalidRequest)
	}
	productIDs := make([]uint, 0, len(req.Items))
	for _, item := range req.Items {
		if item.ProductID == 0 {
			return nil, fmt.Errorf("%w: productId is required", ErrInvalidRequest)
		}
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be positive", ErrInvalidRequest)
		}
		productIDs = append(productIDs, item.ProductID)
	}

	var order *model.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Single read of every referenced product with its option groups
		var products []model.Product
		if err := tx.Preload("OptionGroups.Options").
			Where("id IN ? AND store_id = ?", productIDs, req.StoreID).
			Find(&products).Error; err != nil {
			return err
		}

		byID := make(map[uint]*model.Product, len(products))
		for i := range products {
			byID[products[i].ID] = &products[i]
		}

		var total int64
		unitPrices := make([]int64, len(req.Items))
		for i, item := range req.Items {
			product, ok := byID[item.ProductID]
			if !ok {
				return &ProductNotFoundError{ProductID: item.ProductID}
			}
			if product.Stock < item.Quantity {
				return &InsufficientStockError{ProductName: product.Name, Requested: item.Quantity}
			}
			unit := product.Price + selectedOptionsPrice(product, item.SelectedOptions)
			unitPrices[i] = unit
			total += unit * int64(item.Quantity)
		}

		order = &model.Order{
			StoreID:     req.StoreID,
			TotalAmount: total,
		}
		if err := tx.Create(order).Error; err != nil {
			return err
		}

		for i, item := range req.Items {
			product := byID[item.ProductID]

			selected := item.SelectedOptions
			if selected == nil {
				selected = model.SelectedOptions{}
			}
			orderItem := model.OrderItem{
				OrderID:         order.ID,
				ProductID:       product.ID,
				Quantity:        item.Quantity,
				PricePerItem:    unitPrices[i],
				SelectedOptions: selected,
			}
			if err := tx.Create(&orderItem).Error; err != nil {
				return err
			}
			order.Items = append(order.Items, orderItem)

			// Conditional decrement; zero affected rows means a concurrent
			// order already took the stock.
			result := tx.Model(&model.Product{}).
				Where("id = ? AND stock >= ?", product.ID, item.Quantity).
				UpdateColumn("stock", gorm.Expr("stock - ?", item.Quantity))
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return &InsufficientStockError{ProductName: product.Name, Requested: item.Quantity}
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order placed",
		zap.Uint("order_id", order.ID),
		zap.String("store_id", order.StoreID),
		zap.Int64("total_amount", order.TotalAmount),
		zap.Int("items", len(order.Items)))

	return order, nil
}

// selectedOptionsPrice resolves each selected option inside the option
// group matching the submitted group key. Unmatched groups or options
// contribute zero.
func selectedOptionsPrice(product *model.Product, selected model.SelectedOptions) int64 {
	var sum int64
	for groupKey, choice := range selected {
		for _, group := range product.OptionGroups {
			if strconv.FormatUint(uint64(group.ID), 10) != groupKey {
				continue
			}
			for _, option := range group.Options {
				if option.ID == choice.OptionID {
					sum += option.Price
					break
				}
			}
			break
		}
	}
	return sum
}
