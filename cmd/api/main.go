package main

import (
	"fmt"
	"net/http"
	"os"

	"expensedash/internal/config"
	"expensedash/internal/database"
	"expensedash/internal/handlers"
	"expensedash/internal/logger"
	"expensedash/internal/mailer"
	"expensedash/internal/middleware"
	"expensedash/internal/services"
	"expensedash/internal/validator"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "expensedash/internal/docs" // Import swagger docs
)

// @title           Expensedash API
// @version         1.0
// @description     Expensedash is a personal expense tracking service with categorised records, dashboards and CSV import.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Register custom binding validators
	validator.Register()

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Initialize services
	db := dbManager.DB()
	userService := services.NewUserService(db, mailer.FromConfig(appConfig))
	categoryService := services.NewCategoryService(db)
	subCategoryService := services.NewSubCategoryService(db)
	recordService := services.NewRecordService(db)
	dashboardService := services.NewDashboardService(db, appConfig.HighExpenseThreshold, appConfig.ChartDayStartHour)
	importService := services.NewImportService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	subCategoryHandler := handlers.NewSubCategoryHandler(subCategoryService)
	recordHandler := handlers.NewRecordHandler(recordService, importService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/verify-code", authHandler.VerifyCode)
	auth.POST("/login", authHandler.Login)
	auth.POST("/verify-email", authHandler.VerifyEmail)
	auth.POST("/reset-password", authHandler.ResetPassword)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	// User profile
	protected.GET("/auth/me", authHandler.GetProfile)

	// Category routes
	categories := protected.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetUserCategories)
	categories.GET("/all", categoryHandler.GetCategoryTree)
	categories.GET("/:id", categoryHandler.GetCategoryByID)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	// Sub-category routes
	subCategories := protected.Group("/sub-categories")
	subCategories.POST("", subCategoryHandler.CreateSubCategory)
	subCategories.GET("", subCategoryHandler.GetUserSubCategories)
	subCategories.GET("/:id", subCategoryHandler.GetSubCategoryByID)
	subCategories.PUT("/:id", subCategoryHandler.UpdateSubCategory)
	subCategories.DELETE("/:id", subCategoryHandler.DeleteSubCategory)

	// Expense record routes
	records := protected.Group("/records")
	records.POST("", recordHandler.CreateRecord)
	records.POST("/bulk", recordHandler.BulkImport)
	records.GET("", recordHandler.GetUserRecords)
	records.GET("/:id", recordHandler.GetRecordByID)
	records.PUT("/:id", recordHandler.UpdateRecord)
	records.DELETE("/:id", recordHandler.DeleteRecord)

	// Dashboard routes
	dashboard := protected.Group("/dashboard")
	dashboard.GET("", dashboardHandler.GetCardSummary)
	dashboard.GET("/bar-chart", dashboardHandler.GetBarChart)
	dashboard.GET("/pie-chart", dashboardHandler.GetPieChart)

	log.Infof("Starting Expensedash backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
