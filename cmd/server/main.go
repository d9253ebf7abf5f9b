package main

import (
	"net/http"

	"github.com/DeiVid1337/Boss-Pods-Api/internal/handler"
	mid "github.com/DeiVid1337/Boss-Pods-Api/internal/middleware"
	"github.com/DeiVid1337/Boss-Pods-Api/internal/model"
	"github.com/DeiVid1337/Boss-Pods-Api/pkg/cache"
	"github.com/DeiVid1337/Boss-Pods-Api/pkg/config"
	"github.com/DeiVid1337/Boss-Pods-Api/pkg/database"
	"github.com/DeiVid1337/Boss-Pods-Api/pkg/events"
	"github.com/DeiVid1337/Boss-Pods-Api/pkg/jwtutil"
	"github.com/DeiVid1337/Boss-Pods-Api/pkg/logger"
	"github.com/DeiVid1337/Boss-Pods-Api/prometheus"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		// Just log a warning, don't fail if .env file is not found
		// The fallback values will be used in case env vars are not set
	}

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		// Can't use structured logger yet since it's not initialized
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	logger.InitLogger(appConfig)
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting boss-pods-api",
		zap.String("environment", appConfig.Server.Env),
		zap.String("port", appConfig.Server.Port))

	// Initialize JWT utility
	jwtutil.Initialize(&appConfig.JWT)
	log.Info("JWT utility initialized")

	// Initialize Prometheus metrics
	prometheus.InitMetrics(appConfig)
	log.Info("Prometheus metrics initialized",
		zap.String("metrics_prefix", appConfig.Metrics.Prefix))

	// Initialize database
	if _, err := database.InitDB(&appConfig.DB); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	err = database.MigrateModels(
		&model.Store{},
		&model.User{},
		&model.Product{},
		&model.StoreProduct{},
		&model.Customer{},
		&model.Sale{},
		&model.SaleItem{},
		&model.SellerInventory{},
	)
	if err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}
	log.Info("Database migrations completed")

	// Read-through cache for list endpoints, disabled when REDIS_ADDR is empty
	handler.Cache = cache.New(&appConfig.Cache)
	if handler.Cache.Enabled() {
		log.Info("Redis cache enabled", zap.String("addr", appConfig.Cache.Addr))
	}

	// Sale event publisher, disabled when AMQP_URL is empty
	if appConfig.Events.URL != "" {
		publisher, err := events.NewAMQPPublisher(&appConfig.Events)
		if err != nil {
			log.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
		}
		handler.Publisher = publisher
		log.Info("Sale event publisher connected",
			zap.String("exchange", appConfig.Events.Exchange))
	}

	// Initialize Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Recover())
	e.Use(mid.RequestIDMiddleware)
	e.Use(mid.MetricsMiddleware)

	// Metrics endpoint
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	api := e.Group("/api/v1")

	// Auth routes
	api.POST("/auth/login", handler.Login)
	api.GET("/auth/me", handler.Me, mid.AuthMiddleware)

	// Everything below requires a valid token
	auth := api.Group("", mid.AuthMiddleware)

	// Store routes
	auth.GET("/stores", handler.ListStores)
	auth.POST("/stores", handler.CreateStore)

	// Product catalog routes
	auth.GET("/products", handler.ListProducts)
	auth.POST("/products", handler.CreateProduct)
	auth.GET("/products/:id", handler.GetProduct)
	auth.PUT("/products/:id", handler.UpdateProduct)
	auth.DELETE("/products/:id", handler.DeleteProduct)

	// Customer routes
	auth.GET("/customers", handler.ListCustomers)
	auth.POST("/customers", handler.CreateCustomer)
	auth.GET("/customers/:id", handler.GetCustomer)
	auth.PUT("/customers/:id", handler.UpdateCustomer)

	// User routes
	auth.GET("/users", handler.ListUsers)
	auth.POST("/users", handler.CreateUser)
	auth.GET("/users/:id", handler.GetUser)
	auth.PUT("/users/:id", handler.UpdateUser)
	auth.DELETE("/users/:id", handler.DeleteUser)
	auth.GET("/users/:id/inventory", handler.ListUserInventory)

	// Store-scoped routes, gated on store membership
	store := auth.Group("/stores/:store", mid.StoreAccessMiddleware)

	store.GET("", handler.GetStore)
	store.PUT("", handler.UpdateStore)
	store.DELETE("", handler.DeleteStore)

	store.GET("/products", handler.ListStoreProducts)
	store.POST("/products", handler.CreateStoreProduct)
	store.GET("/products/:id", handler.GetStoreProduct)
	store.PUT("/products/:id", handler.UpdateStoreProduct)
	store.DELETE("/products/:id", handler.DeleteStoreProduct)

	store.GET("/sales", handler.ListSales)
	store.POST("/sales", handler.CreateSale)
	store.GET("/sales/:id", handler.GetSale)

	store.GET("/inventory", handler.ListStoreInventory)
	store.POST("/inventory/withdraw", handler.WithdrawInventory)
	store.POST("/inventory/return", handler.ReturnInventory)

	// Start server
	port := appConfig.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Server error", zap.Error(err))
	}
}
