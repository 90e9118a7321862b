package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"kiosk-service/internal/middleware"
	"kiosk-service/internal/model"
	"kiosk-service/pkg/logger"
)

// OptionGroupHandler serves the admin option-group CRUD
type OptionGroupHandler struct {
	db *gorm.DB
}

// NewOptionGroupHandler creates an option-group handler backed by the given database handle
func NewOptionGroupHandler(db *gorm.DB) *OptionGroupHandler {
	return &OptionGroupHandler{db: db}
}

// OptionRequest defines one option inside a creation request
type OptionRequest struct {
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

// OptionGroupCreateRequest defines the structure for option-group creation
type OptionGroupCreateRequest struct {
	Name    string          `json:"name"`
	Options []OptionRequest `json:"options"`
}

// OptionGroupUpdateRequest defines the structure for option-group updates.
// Only the group name can be edited; the options list is fixed at creation.
type OptionGroupUpdateRequest struct {
	Name string `json:"name"`
}

// List retrieves the authenticated store's option groups with their options
func (h *OptionGroupHandler) List(c echo.Context) error {
	log := logger.FromContext(c)

	storeID, ok := middleware.StoreIDFromContext(c)
	if !ok {
		log.Warn("Missing store_id in context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "store_id is required"})
	}

	var groups []model.OptionGroup
	result := h.db.Preload("Options").Where("store_id = ?", storeID).Find(&groups)
	if result.Error != nil {
		log.Error("Failed to retrieve option groups",
			zap.Error(result.Error),
			zap.String("store_id", storeID))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve option groups"})
	}

	log.Info("Option groups retrieved",
		zap.Int("count", len(groups)),
		zap.String("store_id", storeID))
	return c.JSON(http.StatusOK, groups)
}

// Create adds a new option group together with its options
func (h *OptionGroupHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)
	log.Info("Creating new option group")

	storeID, ok := middleware.StoreIDFromContext(c)
	if !ok {
		log.Warn("Missing store_id in context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "store_id is required"})
	}

	var req OptionGroupCreateRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	if req.Name == "" {
		log.Warn("Missing option group name")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	for _, option := range req.Options {
		if option.Name == "" {
			log.Warn("Missing option name", zap.String("group_name", req.Name))
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "every option needs a name"})
		}
		if option.Price < 0 {
			log.Warn("Negative option price",
				zap.String("group_name", req.Name),
				zap.String("option_name", option.Name))
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "option price must not be negative"})
		}
	}

	group := model.OptionGroup{
		Name:    req.Name,
		StoreID: storeID,
	}
	for _, option := range req.Options {
		group.Options = append(group.Options, model.Option{
			Name:  option.Name,
			Price: option.Price,
		})
	}

	result := h.db.Create(&group)
	if result.Error != nil {
		log.Error("Failed to create option group",
			zap.String("name", req.Name),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create option group"})
	}

	log.Info("Option group created",
		zap.Uint("option_group_id", group.ID),
		zap.String("name", group.Name),
		zap.Int("options", len(group.Options)),
		zap.String("store_id", storeID))
	return c.JSON(http.StatusCreated, group)
}

// Update renames an option group. Editing the options list is intentionally
// unsupported; kiosks may hold option snapshots in submitted orders.
func (h *OptionGroupHandler) Update(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")
	log.Info("Updating option group", zap.String("option_group_id", id))

	storeID, ok := middleware.StoreIDFromContext(c)
	if !ok {
		log.Warn("Missing store_id in context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "store_id is required"})
	}

	var req OptionGroupUpdateRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.String("option_group_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	if req.Name == "" {
		log.Warn("Missing option group name")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	var group model.OptionGroup
	result := h.db.First(&group, id)
	if result.Error != nil {
		log.Warn("Option group not found", zap.String("option_group_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Option group not found"})
	}

	if group.StoreID != storeID {
		log.Warn("Unauthorized attempt to update option group from different store",
			zap.String("option_group_id", id),
			zap.String("group_store", group.StoreID),
			zap.String("request_store", storeID))
		return c.JSON(http.StatusForbidden, echo.Map{"error": "You don't have permission to update this option group"})
	}

	group.Name = req.Name
	result = h.db.Save(&group)
	if result.Error != nil {
		log.Error("Failed to update option group", zap.String("option_group_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update option group"})
	}

	log.Info("Option group updated",
		zap.String("option_group_id", id),
		zap.String("name", group.Name))
	return c.JSON(http.StatusOK, group)
}

// Delete removes an option group unless it is still linked to products
func (h *OptionGroupHandler) Delete(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	storeID, ok := middleware.StoreIDFromContext(c)
	if !ok {
		log.Warn("Missing store_id in context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "store_id is required"})
	}

	log.Info("Deleting option group",
		zap.String("option_group_id", id),
		zap.String("store_id", storeID))

	var group model.OptionGroup
	preResult := h.db.Where("id = ? AND store_id = ?", id, storeID).First(&group)
	if preResult.Error != nil {
		log.Warn("Option group not found or does not belong to store",
			zap.String("option_group_id", id),
			zap.String("store_id", storeID))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Option group not found"})
	}

	// An option group linked to products cannot be deleted
	var count int64
	h.db.Model(&model.ProductOptionGroup{}).
		Where("option_group_id = ?", group.ID).
		Count(&count)
	if count > 0 {
		log.Warn("Cannot delete option group that is linked to products",
			zap.String("option_group_id", id),
			zap.Int64("product_count", count))
		return c.JSON(http.StatusConflict, echo.Map{"error": "Cannot delete option group that is linked to products"})
	}

	result := h.db.Delete(&group)
	if result.Error != nil {
		log.Error("Failed to delete option group", zap.String("option_group_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete option group"})
	}

	log.Info("Option group deleted", zap.String("option_group_id", id))
	return c.NoContent(http.StatusNoContent)
}
