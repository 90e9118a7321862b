package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"kiosk-service/internal/middleware"
	"kiosk-service/internal/model"
	"kiosk-service/pkg/logger"
	"kiosk-service/prometheus"
)

// Products with this many units or fewer show up on the low-stock list
const lowStockThreshold = 10

// AnalyticsHandler serves the read-only dashboard aggregates
type AnalyticsHandler struct {
	db *gorm.DB
}

// NewAnalyticsHandler creates an analytics handler backed by the given database handle
func NewAnalyticsHandler(db *gorm.DB) *AnalyticsHandler {
	return &AnalyticsHandler{db: db}
}

// TopProduct is one row of the top-selling products listing
type TopProduct struct {
	Name     string `json:"name"`
	Quantity int64  `json:"quantity"`
}

// LowStockProduct is one row of the low-stock listing
type LowStockProduct struct {
	Name  string `json:"name"`
	Stock int    `json:"stock"`
}

// SalesSummary returns the total sales amount of the authenticated store
func (h *AnalyticsHandler) SalesSummary(c echo.Context) error {
	log := logger.FromContext(c)

	storeID, ok := middleware.StoreIDFromContext(c)
	if !ok {
		log.Warn("Missing store_id in context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "store_id is required"})
	}

	defer prometheus.TrackDBOperation("aggregate")(time.Now())
	var totalSales int64
	result := h.db.Model(&model.Order{}).
		Where("store_id = ?", storeID).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&totalSales)
	if result.Error != nil {
		log.Error("Failed to compute sales summary",
			zap.String("store_id", storeID),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to compute sales summary"})
	}

	return c.JSON(http.StatusOK, echo.Map{"totalSales": totalSales})
}

// TopProducts returns the five best-selling products by summed quantity
func (h *AnalyticsHandler) TopProducts(c echo.Context) error {
	log := logger.FromContext(c)

	storeID, ok := middleware.StoreIDFromContext(c)
	if !ok {
		log.Warn("Missing store_id in context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "store_id is required"})
	}

	defer prometheus.TrackDBOperation("aggregate")(time.Now())
	top := make([]TopProduct, 0, 5)
	result := h.db.Table("order_items").
		Select("products.name AS name, SUM(order_items.quantity) AS quantity").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Joins("JOIN products ON products.id = order_items.product_id").
		Where("orders.store_id = ?", storeID).
		Group("products.id, products.name").
		Order("quantity DESC").
		Limit(5).
		Scan(&top)
	if result.Error != nil {
		log.Error("Failed to compute top products",
			zap.String("store_id", storeID),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to compute top products"})
	}

	return c.JSON(http.StatusOK, top)
}

// LowStock returns the store's products at or below the stock threshold,
// emptiest first
func (h *AnalyticsHandler) LowStock(c echo.Context) error {
	log := logger.FromContext(c)

	storeID, ok := middleware.StoreIDFromContext(c)
	if !ok {
		log.Warn("Missing store_id in context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "store_id is required"})
	}

	low := make([]LowStockProduct, 0)
	result := h.db.Model(&model.Product{}).
		Select("name, stock").
		Where("store_id = ? AND stock <= ?", storeID, lowStockThreshold).
		Order("stock ASC").
		Scan(&low)
	if result.Error != nil {
		log.Error("Failed to list low-stock products",
			zap.String("store_id", storeID),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve low-stock products"})
	}

	return c.JSON(http.StatusOK, low)
}
