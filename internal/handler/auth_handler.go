package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"kiosk-service/internal/model"
	"kiosk-service/pkg/jwtutil"
	"kiosk-service/pkg/logger"
	"kiosk-service/prometheus"
)

// AuthHandler serves registration, login and account/store lookups
type AuthHandler struct {
	db *gorm.DB
}

// NewAuthHandler creates an auth handler backed by the given database handle
func NewAuthHandler(db *gorm.DB) *AuthHandler {
	return &AuthHandler{db: db}
}

// RegisterRequest defines the structure for store owner registration
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	StoreName string `json:"storeName"`
}

// Register creates a store owner account and issues its public store ID
func (h *AuthHandler) Register(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RegisterCounter.Inc()

	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse registration request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Email == "" || req.Password == "" || req.StoreName == "" {
		log.Warn("Incomplete registration data",
			zap.String("email", req.Email),
			zap.Bool("password_provided", req.Password != ""),
			zap.String("store_name", req.StoreName))
		prometheus.RecordAuthError("incomplete_registration")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email, password and storeName are required"})
	}

	// Check if the email is already registered
	var existingUser model.User
	result := h.db.Where("email = ?", req.Email).First(&existingUser)
	if result.Error == nil {
		log.Warn("Email already registered", zap.String("email", req.Email))
		prometheus.RecordAuthError("email_already_exists")
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
	}

	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		prometheus.RecordAuthError("password_hash_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	// The public store identifier is issued once and never changes
	user := model.User{
		Email:     req.Email,
		Password:  string(hashedPassword),
		StoreName: req.StoreName,
		StoreID:   uuid.New().String(),
	}

	if result := h.db.Create(&user); result.Error != nil {
		log.Error("Failed to create user", zap.Error(result.Error))
		prometheus.RecordAuthError("user_creation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	log.Info("Store owner registered",
		zap.String("email", user.Email),
		zap.String("store_id", user.StoreID))
	return c.JSON(http.StatusCreated, user)
}

// LoginRequest defines the structure for login requests
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login verifies credentials and issues a bearer token carrying the store identity
func (h *AuthHandler) Login(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.LoginCounter.Inc()

	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	var user model.User
	result := h.db.Where("email = ?", req.Email).First(&user)
	if result.Error != nil {
		log.Warn("User not found", zap.String("email", req.Email))
		prometheus.RecordAuthError("user_not_found")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		log.Warn("Invalid password", zap.String("email", req.Email))
		prometheus.RecordAuthError("invalid_password")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	token, err := jwtutil.GenerateToken(user.Email, user.ID, user.StoreID)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	log.Info("User logged in",
		zap.String("email", user.Email),
		zap.String("store_id", user.StoreID))
	return c.JSON(http.StatusOK, echo.Map{"token": token})
}

// Me returns the authenticated owner's account and store info
func (h *AuthHandler) Me(c echo.Context) error {
	log := logger.FromContext(c)

	userID, ok := c.Get("user_id").(uint)
	if !ok {
		log.Warn("Missing user_id in context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
	}

	var user model.User
	result := h.db.First(&user, userID)
	if result.Error != nil {
		log.Error("User not found", zap.Uint("user_id", userID), zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"email":     user.Email,
		"storeName": user.StoreName,
		"storeId":   user.StoreID,
	})
}

// GetStore is the public store lookup used by the kiosk setup screen
func (h *AuthHandler) GetStore(c echo.Context) error {
	log := logger.FromContext(c)
	storeID := c.Param("storeId")

	var user model.User
	result := h.db.Where("store_id = ?", storeID).First(&user)
	if result.Error != nil {
		log.Warn("Store not found", zap.String("store_id", storeID))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "store not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{"storeName": user.StoreName})
}
