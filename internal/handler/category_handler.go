package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"kiosk-service/internal/middleware"
	"kiosk-service/internal/model"
	"kiosk-service/pkg/logger"
	"kiosk-service/prometheus"
)

// CategoryHandler serves the admin category CRUD and the public kiosk listing
type CategoryHandler struct {
	db *gorm.DB
}

// NewCategoryHandler creates a category handler backed by the given database handle
func NewCategoryHandler(db *gorm.DB) *CategoryHandler {
	return &CategoryHandler{db: db}
}

// CategoryRequest defines the structure for category creation/update requests
type CategoryRequest struct {
	Name string `json:"name"`
}

// List retrieves the authenticated store's categories
func (h *CategoryHandler) List(c echo.Context) error {
	log := logger.FromContext(c)

	storeID, ok := middleware.StoreIDFromContext(c)
	if !ok {
		log.Warn("Missing store_id in context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "store_id is required"})
	}

	var categories []model.Category
	result := h.db.Where("store_id = ?", storeID).Find(&categories)
	if result.Error != nil {
		log.Error("Failed to retrieve categories",
			zap.Error(result.Error),
			zap.String("store_id", storeID))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve categories"})
	}

	log.Info("Categories retrieved",
		zap.Int("count", len(categories)),
		zap.String("store_id", storeID))
	return c.JSON(http.StatusOK, categories)
}

// Create adds a new category to the authenticated store
func (h *CategoryHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)
	log.Info("Creating new category")

	storeID, ok := middleware.StoreIDFromContext(c)
	if !ok {
		log.Warn("Missing store_id in context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "store_id is required"})
	}

	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	if req.Name == "" {
		log.Warn("Missing category name")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	// Check if category with same name exists in the same store
	var count int64
	h.db.Model(&model.Category{}).
		Where("name = ? AND store_id = ?", req.Name, storeID).
		Count(&count)
	if count > 0 {
		log.Warn("Category with this name already exists for this store",
			zap.String("name", req.Name),
			zap.String("store_id", storeID))
		return c.JSON(http.StatusConflict, echo.Map{"error": "Category with this name already exists"})
	}

	category := model.Category{
		Name:    req.Name,
		StoreID: storeID,
	}

	result := h.db.Create(&category)
	if result.Error != nil {
		log.Error("Failed to create category",
			zap.String("name", req.Name),
			zap.String("store_id", storeID),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create category"})
	}

	prometheus.RecordCategoryOperation("create")
	log.Info("Category created",
		zap.Uint("category_id", category.ID),
		zap.String("name", category.Name),
		zap.String("store_id", storeID))
	return c.JSON(http.StatusCreated, category)
}

// Update renames an existing category
func (h *CategoryHandler) Update(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")
	log.Info("Updating category", zap.String("category_id", id))

	storeID, ok := middleware.StoreIDFromContext(c)
	if !ok {
		log.Warn("Missing store_id in context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "store_id is required"})
	}

	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.String("category_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	if req.Name == "" {
		log.Warn("Missing category name")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	var category model.Category
	result := h.db.First(&category, id)
	if result.Error != nil {
		log.Warn("Category not found", zap.String("category_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Category not found"})
	}

	// Ensure the category belongs to the store in the token
	if category.StoreID != storeID {
		log.Warn("Unauthorized attempt to update category from different store",
			zap.String("category_id", id),
			zap.String("category_store", category.StoreID),
			zap.String("request_store", storeID))
		return c.JSON(http.StatusForbidden, echo.Map{"error": "You don't have permission to update this category"})
	}

	oldName := category.Name
	category.Name = req.Name

	result = h.db.Save(&category)
	if result.Error != nil {
		log.Error("Failed to update category", zap.String("category_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update category"})
	}

	prometheus.RecordCategoryOperation("update")
	log.Info("Category updated",
		zap.String("category_id", id),
		zap.String("old_name", oldName),
		zap.String("new_name", category.Name))
	return c.JSON(http.StatusOK, category)
}

// Delete removes a category unless it is still referenced by products
func (h *CategoryHandler) Delete(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	storeID, ok := middleware.StoreIDFromContext(c)
	if !ok {
		log.Warn("Missing store_id in context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "store_id is required"})
	}

	log.Info("Deleting category",
		zap.String("category_id", id),
		zap.String("store_id", storeID))

	var category model.Category
	preResult := h.db.Where("id = ? AND store_id = ?", id, storeID).First(&category)
	if preResult.Error != nil {
		log.Warn("Category not found or does not belong to store",
			zap.String("category_id", id),
			zap.String("store_id", storeID))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Category not found"})
	}

	// A category in use by a product cannot be deleted
	var count int64
	h.db.Model(&model.Product{}).
		Where("category_id = ? AND store_id = ?", category.ID, storeID).
		Count(&count)
	if count > 0 {
		log.Warn("Cannot delete category that is being used by products",
			zap.String("category_id", id),
			zap.Int64("product_count", count))
		return c.JSON(http.StatusConflict, echo.Map{"error": "Cannot delete category that is being used by products"})
	}

	result := h.db.Delete(&category)
	if result.Error != nil {
		log.Error("Failed to delete category", zap.String("category_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete category"})
	}

	prometheus.RecordCategoryOperation("delete")
	log.Info("Category deleted", zap.String("category_id", id))
	return c.NoContent(http.StatusNoContent)
}

// KioskList is the public category listing for the kiosk, keyed by store ID
func (h *CategoryHandler) KioskList(c echo.Context) error {
	log := logger.FromContext(c)
	storeID := c.Param("storeId")

	var categories []model.Category
	result := h.db.Where("store_id = ?", storeID).Find(&categories)
	if result.Error != nil {
		log.Error("Failed to list kiosk categories",
			zap.String("store_id", storeID),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve categories"})
	}

	return c.JSON(http.StatusOK, categories)
}
