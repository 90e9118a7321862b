package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"kiosk-service/internal/middleware"
	"kiosk-service/internal/model"
	"kiosk-service/internal/order"
	"kiosk-service/pkg/logger"
	"kiosk-service/prometheus"
)

// OrderHandler serves the public kiosk order submission and the admin
// order history endpoints.
type OrderHandler struct {
	db  *gorm.DB
	svc *order.Service
}

// NewOrderHandler creates an order handler around the order service
func NewOrderHandler(db *gorm.DB, svc *order.Service) *OrderHandler {
	return &OrderHandler{db: db, svc: svc}
}

// Create is the kiosk order submission endpoint. The order service does
// all validation, pricing and stock work inside one transaction; this
// handler only maps its errors to HTTP statuses.
func (h *OrderHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)

	var req order.PlaceOrderRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse order submission", zap.Error(err))
		prometheus.RecordOrderRejected("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	placed, err := h.svc.PlaceOrder(c.Request().Context(), req)
	if err != nil {
		var notFound *order.ProductNotFoundError
		var noStock *order.InsufficientStockError
		switch {
		case errors.Is(err, order.ErrInvalidRequest):
			log.Warn("Invalid order submission", zap.Error(err))
			prometheus.RecordOrderRejected("invalid_request")
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		case errors.As(err, &notFound):
			log.Warn("Order referenced unknown product",
				zap.Uint("product_id", notFound.ProductID),
				zap.String("store_id", req.StoreID))
			prometheus.RecordOrderRejected("product_not_found")
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		case errors.As(err, &noStock):
			log.Warn("Order rejected for insufficient stock",
				zap.String("product_name", noStock.ProductName),
				zap.Int("requested", noStock.Requested),
				zap.String("store_id", req.StoreID))
			prometheus.RecordOrderRejected("insufficient_stock")
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		default:
			log.Error("Failed to place order", zap.Error(err))
			prometheus.RecordOrderRejected("internal_error")
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to place order"})
		}
	}

	prometheus.RecordOrderPlaced(placed.TotalAmount)
	return c.JSON(http.StatusCreated, placed)
}

// List retrieves the authenticated store's orders, newest first, with an
// optional from/to date-range filter (inclusive days, format 2006-01-02).
func (h *OrderHandler) List(c echo.Context) error {
	log := logger.FromContext(c)

	storeID, ok := middleware.StoreIDFromContext(c)
	if !ok {
		log.Warn("Missing store_id in context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "store_id is required"})
	}

	query := h.db.Where("store_id = ?", storeID)

	if from := c.QueryParam("from"); from != "" {
		fromDate, err := time.Parse("2006-01-02", from)
		if err != nil {
			log.Warn("Invalid from parameter", zap.String("from", from))
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid from date, expected YYYY-MM-DD"})
		}
		query = query.Where("created_at >= ?", fromDate)
	}
	if to := c.QueryParam("to"); to != "" {
		toDate, err := time.Parse("2006-01-02", to)
		if err != nil {
			log.Warn("Invalid to parameter", zap.String("to", to))
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid to date, expected YYYY-MM-DD"})
		}
		query = query.Where("created_at < ?", toDate.AddDate(0, 0, 1))
	}

	var orders []model.Order
	result := query.Order("created_at DESC").Find(&orders)
	if result.Error != nil {
		log.Error("Failed to list orders",
			zap.String("store_id", storeID),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve orders"})
	}

	log.Info("Orders retrieved",
		zap.Int("count", len(orders)),
		zap.String("store_id", storeID))
	return c.JSON(http.StatusOK, orders)
}

// Get retrieves one order with its item snapshots and product info.
// Products stay visible here even after being removed from the catalog.
func (h *OrderHandler) Get(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	storeID, ok := middleware.StoreIDFromContext(c)
	if !ok {
		log.Warn("Missing store_id in context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "store_id is required"})
	}

	var found model.Order
	result := h.db.
		Preload("Items").
		Preload("Items.Product", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Where("id = ? AND store_id = ?", id, storeID).
		First(&found)
	if result.Error != nil {
		log.Warn("Order not found",
			zap.String("order_id", id),
			zap.String("store_id", storeID))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Order not found"})
	}

	return c.JSON(http.StatusOK, found)
}
