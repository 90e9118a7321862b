package main

import (
	"os"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"kiosk-service/internal/handler"
	mid "kiosk-service/internal/middleware"
	"kiosk-service/internal/model"
	"kiosk-service/internal/order"
	"kiosk-service/pkg/config"
	"kiosk-service/pkg/database"
	"kiosk-service/pkg/jwtutil"
	"kiosk-service/pkg/logger"
	"kiosk-service/prometheus"
)

func main() {
	// Load configuration. This fails when JWT_SIGNING_KEY is absent.
	appConfig, err := config.Load("kiosk-service")
	if err != nil {
		// Can't use the structured logger yet since it's not initialized
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	if err := logger.InitLogger(&logger.LogConfig{
		Level:       appConfig.Log.Level,
		Environment: appConfig.Server.Env,
		ServiceName: appConfig.ServiceName,
	}); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting kiosk-service", appConfig.LogConfig()...)

	// Initialize JWT utility
	jwtutil.Initialize(&appConfig.JWT)
	log.Info("JWT utility initialized")

	// Initialize Prometheus metrics
	prometheus.InitMetrics(appConfig)
	log.Info("Prometheus metrics initialized",
		zap.String("metrics_prefix", appConfig.Metrics.Prefix))

	// Initialize database
	db, err := database.Open(&appConfig.DB)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer database.Close(db)
	log.Info("Database connection established")

	// Register the owned product/option-group association table before migrating
	if err := db.SetupJoinTable(&model.Product{}, "OptionGroups", &model.ProductOptionGroup{}); err != nil {
		log.Fatal("Failed to set up association table", zap.Error(err))
	}
	if err := database.Migrate(db,
		&model.User{},
		&model.Category{},
		&model.OptionGroup{},
		&model.Option{},
		&model.Product{},
		&model.Order{},
		&model.OrderItem{},
	); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}
	log.Info("Database migrations applied")

	// Make sure the upload directory exists before serving from it
	if err := os.MkdirAll(appConfig.Upload.Dir, 0o755); err != nil {
		log.Fatal("Failed to create upload directory", zap.Error(err))
	}

	orderService := order.NewService(db, log)

	authHandler := handler.NewAuthHandler(db)
	productHandler := handler.NewProductHandler(db)
	categoryHandler := handler.NewCategoryHandler(db)
	optionGroupHandler := handler.NewOptionGroupHandler(db)
	orderHandler := handler.NewOrderHandler(db, orderService)
	analyticsHandler := handler.NewAnalyticsHandler(db)
	uploadHandler := handler.NewUploadHandler(appConfig.Upload.Dir)

	// Initialize Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(mid.RequestIDMiddleware)
	e.Use(mid.MetricsMiddleware)

	// Metrics endpoint
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Health check endpoint
	e.GET("/health", handler.Health)

	// Uploaded product images
	e.Static("/uploads", appConfig.Upload.Dir)
	e.POST("/api/upload", uploadHandler.Upload)

	// Auth routes
	e.POST("/api/auth/register", authHandler.Register)
	e.POST("/api/auth/login", authHandler.Login)
	e.GET("/api/me", authHandler.Me, mid.AuthMiddleware)
	e.GET("/api/store/:storeId", authHandler.GetStore)

	// Admin product routes
	productAPI := e.Group("/api/products", mid.AuthMiddleware)
	productAPI.GET("", productHandler.List)
	productAPI.GET("/detail/:id", productHandler.Detail)
	productAPI.POST("", productHandler.Create)
	productAPI.PUT("/:id", productHandler.Update)
	productAPI.DELETE("/:id", productHandler.Delete)

	// Admin category routes
	categoryAPI := e.Group("/api/categories", mid.AuthMiddleware)
	categoryAPI.GET("", categoryHandler.List)
	categoryAPI.POST("", categoryHandler.Create)
	categoryAPI.PUT("/:id", categoryHandler.Update)
	categoryAPI.DELETE("/:id", categoryHandler.Delete)

	// Admin option group routes
	optionGroupAPI := e.Group("/api/option-groups", mid.AuthMiddleware)
	optionGroupAPI.GET("", optionGroupHandler.List)
	optionGroupAPI.POST("", optionGroupHandler.Create)
	optionGroupAPI.PUT("/:id", optionGroupHandler.Update)
	optionGroupAPI.DELETE("/:id", optionGroupHandler.Delete)

	// Admin order history and dashboard aggregates
	e.GET("/api/orders", orderHandler.List, mid.AuthMiddleware)
	e.GET("/api/orders/:id", orderHandler.Get, mid.AuthMiddleware)
	e.GET("/api/sales/summary", analyticsHandler.SalesSummary, mid.AuthMiddleware)
	e.GET("/api/analytics/top-products", analyticsHandler.TopProducts, mid.AuthMiddleware)
	e.GET("/api/analytics/low-stock", analyticsHandler.LowStock, mid.AuthMiddleware)

	// Kiosk routes, no authentication, scoped by the public store ID
	e.GET("/api/products/:storeId", productHandler.KioskList)
	e.GET("/api/categories/:storeId", categoryHandler.KioskList)
	e.POST("/api/orders", orderHandler.Create)

	// Start server
	port := appConfig.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Server error", zap.Error(err))
	}
}
