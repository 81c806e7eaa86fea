// Package router assembles the HTTP engine: services, handlers, middleware
// and the route table.
package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"ledgerly/internal/config"
	"ledgerly/internal/handlers"
	"ledgerly/internal/middleware"
	"ledgerly/internal/oauth"
	"ledgerly/internal/services"
	"ledgerly/internal/tokenstore"
	"ledgerly/internal/validator"

	_ "ledgerly/internal/docs" // registers the swagger spec
)

// Deps are the long-lived collaborators the router wires into handlers.
type Deps struct {
	Config    *config.Config
	DB        *gorm.DB
	Blacklist tokenstore.Blacklist
	// Google is nil when Google sign-in is not configured.
	Google oauth.Provider
}

// New builds a gin engine serving the full API.
func New(deps Deps) *gin.Engine {
	cfg := deps.Config
	if cfg == nil {
		cfg = config.Get()
	}
	blacklist := deps.Blacklist
	if blacklist == nil {
		blacklist = tokenstore.Noop{}
	}
	db := deps.DB

	validator.Register()

	// Services
	userService := services.NewUserService(db)
	auditService := services.NewAuditService(db)
	spaceService := services.NewSpaceService(db)
	categoryService := services.NewCategoryService(db)
	paymentMethodService := services.NewPaymentMethodService(db)
	transactionService := services.NewTransactionService(db)
	bulkService := services.NewBulkService(db, cfg.BulkBatchSize)
	templateService := services.NewTemplateService(db, transactionService)
	analyticsService := services.NewAnalyticsService(db)

	// Handlers
	authOpts := []handlers.AuthOption{
		handlers.WithBlacklist(blacklist),
		handlers.WithSecureCookies(cfg.Env == "production"),
	}
	if deps.Google != nil {
		authOpts = append(authOpts, handlers.WithGoogle(deps.Google))
	}
	authHandler := handlers.NewAuthHandler(userService, auditService, authOpts...)
	spaceHandler := handlers.NewSpaceHandler(spaceService, auditService)
	categoryHandler := handlers.NewCategoryHandler(categoryService, auditService)
	paymentMethodHandler := handlers.NewPaymentMethodHandler(paymentMethodService, auditService)
	transactionHandler := handlers.NewTransactionHandler(transactionService, auditService)
	bulkHandler := handlers.NewBulkHandler(bulkService, auditService)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)
	templateHandler := handlers.NewTemplateHandler(templateService, auditService)
	healthHandler := handlers.NewHealthHandler(cfg.Env)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogging())
	r.Use(middleware.CORS(cfg.CORSOrigin))
	r.Use(middleware.ErrorHandler())

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/health", healthHandler.Health)

	api := r.Group("/api")
	api.GET("/health", healthHandler.Health)

	// Public routes
	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.GET("/google", authHandler.GoogleLogin)
	auth.GET("/google/callback", authHandler.GoogleCallback)

	// Protected routes
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(blacklist))
	if cfg.RequireVerifiedEmail {
		protected.Use(middleware.RequireVerifiedEmail())
	}

	account := protected.Group("/auth")
	account.POST("/logout", authHandler.Logout)
	account.GET("/me", authHandler.GetProfile)
	account.PUT("/me", authHandler.UpdateProfile)
	account.PUT("/change-password", authHandler.ChangePassword)
	account.POST("/link/google", authHandler.LinkGoogle)
	account.DELETE("/link/google", authHandler.UnlinkGoogle)

	spaces := protected.Group("/spaces")
	spaces.GET("", spaceHandler.GetSpaces)
	spaces.POST("", spaceHandler.CreateSpace)
	spaces.GET("/:id", spaceHandler.GetSpaceByID)
	spaces.POST("/:id/members", spaceHandler.AddMember)
	spaces.DELETE("/:id/members/:userId", spaceHandler.RemoveMember)

	transactions := protected.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetTransactions)
	transactions.GET("/search", transactionHandler.SearchTransactions)
	transactions.GET("/stats/summary", transactionHandler.GetTransactionStats)
	transactions.GET("/:id", transactionHandler.GetTransactionByID)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	bulk := transactions.Group("/bulk")
	bulk.POST("/create", bulkHandler.BulkCreate)
	bulk.PUT("/update", bulkHandler.BulkUpdate)
	bulk.DELETE("/delete", bulkHandler.BulkDelete)
	bulk.POST("/duplicate", bulkHandler.BulkDuplicate)
	bulk.PUT("/categorize", bulkHandler.BulkCategorize)
	bulk.PUT("/tag", bulkHandler.BulkTag)
	bulk.POST("/export", bulkHandler.BulkExport)

	analytics := transactions.Group("/analytics")
	analytics.GET("/trends", analyticsHandler.GetSpendingTrends)
	analytics.GET("/categories", analyticsHandler.GetCategoryAnalysis)
	analytics.GET("/payment-methods", analyticsHandler.GetPaymentMethodAnalysis)
	analytics.GET("/monthly-comparison", analyticsHandler.GetMonthlyComparison)
	analytics.GET("/financial-health", analyticsHandler.GetFinancialHealth)

	templates := transactions.Group("/templates")
	templates.GET("", templateHandler.GetTemplates)
	templates.POST("", templateHandler.CreateTemplate)
	templates.GET("/popular", templateHandler.GetPopularTemplates)
	templates.GET("/stats", templateHandler.GetTemplateStats)
	templates.GET("/:id", templateHandler.GetTemplateByID)
	templates.PUT("/:id", templateHandler.UpdateTemplate)
	templates.DELETE("/:id", templateHandler.DeleteTemplate)
	templates.POST("/:id/create-transaction", templateHandler.CreateTransactionFromTemplate)
	templates.POST("/:id/duplicate", templateHandler.DuplicateTemplate)

	categories := protected.Group("/categories")
	categories.GET("", categoryHandler.GetCategories)
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("/defaults", categoryHandler.GetDefaultCategories)
	categories.GET("/:id", categoryHandler.GetCategoryByID)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	paymentMethods := protected.Group("/payment-methods")
	paymentMethods.GET("", paymentMethodHandler.GetPaymentMethods)
	paymentMethods.POST("", paymentMethodHandler.CreatePaymentMethod)
	paymentMethods.GET("/defaults", paymentMethodHandler.GetDefaultPaymentMethods)
	paymentMethods.GET("/:id", paymentMethodHandler.GetPaymentMethodByID)
	paymentMethods.PUT("/:id", paymentMethodHandler.UpdatePaymentMethod)
	paymentMethods.DELETE("/:id", paymentMethodHandler.DeletePaymentMethod)

	return r
}
