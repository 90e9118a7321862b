package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"kiosk-service/internal/middleware"
	"kiosk-service/internal/model"
	"kiosk-service/pkg/logger"
	"kiosk-service/prometheus"
)

// ProductHandler serves the admin product CRUD and the public kiosk listing
type ProductHandler struct {
	db *gorm.DB
}

// NewProductHandler creates a product handler backed by the given database handle
func NewProductHandler(db *gorm.DB) *ProductHandler {
	return &ProductHandler{db: db}
}

// ProductRequest defines the structure for product creation/update requests
type ProductRequest struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	Price          int64  `json:"price"`
	Stock          int    `json:"stock"`
	ImageURL       string `json:"imageUrl"`
	CategoryID     *uint  `json:"categoryId"`
	OptionGroupIDs []uint `json:"optionGroupIds"`
}

// List retrieves the authenticated store's products, newest first
func (h *ProductHandler) List(c echo.Context) error {
	log := logger.FromContext(c)

	storeID, ok := middleware.StoreIDFromContext(c)
	if !ok {
		log.Warn("Missing store_id in context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "store_id is required"})
	}

	var products []model.Product
	result := h.db.Preload("Category").Preload("OptionGroups").
		Where("store_id = ?", storeID).
		Order("created_at DESC").
		Find(&products)
	if result.Error != nil {
		log.Error("Failed to list products", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve products"})
	}

	log.Info("Products retrieved",
		zap.Int("count", len(products)),
		zap.String("store_id", storeID))
	return c.JSON(http.StatusOK, products)
}

// Detail retrieves a single product with its option groups and options
func (h *ProductHandler) Detail(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	storeID, ok := middleware.StoreIDFromContext(c)
	if !ok {
		log.Warn("Missing store_id in context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "store_id is required"})
	}

	var product model.Product
	result := h.db.Preload("Category").Preload("OptionGroups.Options").First(&product, id)
	if result.Error != nil {
		log.Warn("Product not found", zap.String("product_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Product not found"})
	}

	if product.StoreID != storeID {
		log.Warn("Product belongs to a different store",
			zap.String("product_id", id),
			zap.String("product_store", product.StoreID),
			zap.String("request_store", storeID))
		return c.JSON(http.StatusForbidden, echo.Map{"error": "You don't have permission to view this product"})
	}

	return c.JSON(http.StatusOK, product)
}

// Create adds a new product to the authenticated store
func (h *ProductHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)
	log.Info("Creating new product")

	storeID, ok := middleware.StoreIDFromContext(c)
	if !ok {
		log.Warn("Missing store_id in context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "store_id is required"})
	}

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	if msg := validateProductRequest(&req); msg != "" {
		log.Warn("Invalid product data", zap.String("reason", msg))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	if req.CategoryID != nil {
		if msg := h.checkCategoryOwnership(*req.CategoryID, storeID); msg != "" {
			log.Warn("Invalid category reference",
				zap.Uint("category_id", *req.CategoryID),
				zap.String("store_id", storeID))
			return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
		}
	}

	if msg := h.checkOptionGroupOwnership(req.OptionGroupIDs, storeID); msg != "" {
		log.Warn("Invalid option group reference", zap.String("store_id", storeID))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	product := model.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		ImageURL:    req.ImageURL,
		CategoryID:  req.CategoryID,
		StoreID:     storeID,
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&product).Error; err != nil {
			return err
		}
		return replaceOptionGroupLinks(tx, product.ID, req.OptionGroupIDs)
	})
	if err != nil {
		log.Error("Failed to create product",
			zap.String("name", req.Name),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create product"})
	}

	prometheus.RecordProductOperation("create")
	log.Info("Product created",
		zap.Uint("product_id", product.ID),
		zap.String("name", product.Name),
		zap.String("store_id", storeID))
	return c.JSON(http.StatusCreated, product)
}

// Update modifies an existing product and replaces its option group links
func (h *ProductHandler) Update(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")
	log.Info("Updating product", zap.String("product_id", id))

	storeID, ok := middleware.StoreIDFromContext(c)
	if !ok {
		log.Warn("Missing store_id in context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "store_id is required"})
	}

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.String("product_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	if msg := validateProductRequest(&req); msg != "" {
		log.Warn("Invalid product data", zap.String("reason", msg))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	var product model.Product
	result := h.db.First(&product, id)
	if result.Error != nil {
		log.Warn("Product not found for update", zap.String("product_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Product not found"})
	}

	if product.StoreID != storeID {
		log.Warn("Unauthorized attempt to update product from different store",
			zap.String("product_id", id),
			zap.String("product_store", product.StoreID),
			zap.String("request_store", storeID))
		return c.JSON(http.StatusForbidden, echo.Map{"error": "You don't have permission to update this product"})
	}

	if req.CategoryID != nil {
		if msg := h.checkCategoryOwnership(*req.CategoryID, storeID); msg != "" {
			log.Warn("Invalid category reference",
				zap.Uint("category_id", *req.CategoryID),
				zap.String("store_id", storeID))
			return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
		}
	}

	if msg := h.checkOptionGroupOwnership(req.OptionGroupIDs, storeID); msg != "" {
		log.Warn("Invalid option group reference", zap.String("store_id", storeID))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	product.Name = req.Name
	product.Description = req.Description
	product.Price = req.Price
	product.Stock = req.Stock
	product.ImageURL = req.ImageURL
	product.CategoryID = req.CategoryID

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&product).Error; err != nil {
			return err
		}
		return replaceOptionGroupLinks(tx, product.ID, req.OptionGroupIDs)
	})
	if err != nil {
		log.Error("Failed to update product", zap.String("product_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update product"})
	}

	prometheus.RecordProductOperation("update")
	log.Info("Product updated",
		zap.String("product_id", id),
		zap.String("name", product.Name))
	return c.JSON(http.StatusOK, product)
}

// Delete removes a product and its option group links
func (h *ProductHandler) Delete(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")
	log.Info("Deleting product", zap.String("product_id", id))

	storeID, ok := middleware.StoreIDFromContext(c)
	if !ok {
		log.Warn("Missing store_id in context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "store_id is required"})
	}

	var product model.Product
	result := h.db.First(&product, id)
	if result.Error != nil {
		log.Warn("Product not found for deletion", zap.String("product_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Product not found"})
	}

	if product.StoreID != storeID {
		log.Warn("Unauthorized attempt to delete product from different store",
			zap.String("product_id", id),
			zap.String("product_store", product.StoreID),
			zap.String("request_store", storeID))
		return c.JSON(http.StatusForbidden, echo.Map{"error": "You don't have permission to delete this product"})
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", product.ID).Delete(&model.ProductOptionGroup{}).Error; err != nil {
			return err
		}
		return tx.Delete(&product).Error
	})
	if err != nil {
		log.Error("Failed to delete product", zap.String("product_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete product"})
	}

	prometheus.RecordProductOperation("delete")
	log.Info("Product deleted", zap.String("product_id", id))
	return c.NoContent(http.StatusNoContent)
}

// KioskList is the public product listing for the kiosk, keyed by store ID
func (h *ProductHandler) KioskList(c echo.Context) error {
	log := logger.FromContext(c)
	storeID := c.Param("storeId")

	var products []model.Product
	result := h.db.Preload("Category").Preload("OptionGroups.Options").
		Where("store_id = ?", storeID).
		Order("created_at DESC").
		Find(&products)
	if result.Error != nil {
		log.Error("Failed to list kiosk products",
			zap.String("store_id", storeID),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve products"})
	}

	return c.JSON(http.StatusOK, products)
}

// validateProductRequest returns a human-readable reason when the request
// violates the catalog invariants, or "" when it is acceptable.
func validateProductRequest(req *ProductRequest) string {
	if req.Name == "" {
		return "name is required"
	}
	if req.Price < 0 {
		return "price must not be negative"
	}
	if req.Stock < 0 {
		return "stock must not be negative"
	}
	return ""
}

func (h *ProductHandler) checkCategoryOwnership(categoryID uint, storeID string) string {
	var count int64
	h.db.Model(&model.Category{}).
		Where("id = ? AND store_id = ?", categoryID, storeID).
		Count(&count)
	if count == 0 {
		return "category " + strconv.FormatUint(uint64(categoryID), 10) + " does not belong to this store"
	}
	return ""
}

func (h *ProductHandler) checkOptionGroupOwnership(groupIDs []uint, storeID string) string {
	if len(groupIDs) == 0 {
		return ""
	}
	var count int64
	h.db.Model(&model.OptionGroup{}).
		Where("id IN ? AND store_id = ?", groupIDs, storeID).
		Count(&count)
	if count != int64(len(groupIDs)) {
		return "one or more option groups do not belong to this store"
	}
	return ""
}

// replaceOptionGroupLinks rewrites the owned association table rows for one product
func replaceOptionGroupLinks(tx *gorm.DB, productID uint, groupIDs []uint) error {
	if err := tx.Where("product_id = ?", productID).Delete(&model.ProductOptionGroup{}).Error; err != nil {
		return err
	}
	for _, groupID := range groupIDs {
		link := model.ProductOptionGroup{ProductID: productID, OptionGroupID: groupID}
		if err := tx.Create(&link).Error; err != nil {
			return err
		}
	}
	return nil
}
