// Package server assembles the HTTP stack: services, handlers, middleware
// and routes.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"pennywise/internal/config"
	_ "pennywise/internal/docs" // swagger spec
	"pennywise/internal/handlers"
	"pennywise/internal/metrics"
	"pennywise/internal/middleware"
	"pennywise/internal/services"
)

// Options configures New. Nil Metrics disables instrumentation, a nil
// Gatherer hides /metrics and a nil RateLimiter disables rate limiting.
type Options struct {
	DB          *gorm.DB
	Config      *config.Config
	Metrics     *metrics.Recorder
	Gatherer    prometheus.Gatherer
	RateLimiter *middleware.RateLimiter
	Swagger     bool
}

// New builds the router with every route registered.
func New(opts Options) *gin.Engine {
	cfg := opts.Config
	db := opts.DB
	thresholds := services.Thresholds{Group: cfg.GroupAlertThreshold, Budget: cfg.BudgetAlertThreshold}

	userService := services.NewUserService(db, cfg.BaseCurrency)
	categoryService := services.NewCategoryService(db)
	currencyService := services.NewCurrencyService(db)
	expenseService := services.NewExpenseService(db, categoryService, currencyService)
	budgetService := services.NewBudgetService(db, opts.Metrics, thresholds)
	groupService := services.NewBudgetGroupService(db, opts.Metrics, thresholds)
	planService := services.NewMonthlyPlanService(db, opts.Metrics, thresholds)
	auditService := services.NewAuditService(db)

	authHandler := handlers.NewAuthHandler(userService)
	categoryHandler := handlers.NewCategoryHandler(categoryService, auditService)
	currencyHandler := handlers.NewCurrencyHandler(currencyService, auditService)
	expenseHandler := handlers.NewExpenseHandler(expenseService, auditService)
	budgetHandler := handlers.NewBudgetHandler(budgetService, auditService)
	groupHandler := handlers.NewBudgetGroupHandler(groupService, auditService)
	planHandler := handlers.NewPlanHandler(planService, auditService)
	auditHandler := handlers.NewAuditHandler(auditService)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.Metrics(opts.Metrics))
	router.Use(middleware.ErrorHandler())
	router.Use(cors())
	if opts.RateLimiter != nil {
		router.Use(opts.RateLimiter.Middleware())
	}

	if opts.Swagger {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
	if opts.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)
	protected.GET("/audit-logs", auditHandler.GetAuditLogs)

	categories := protected.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetUserCategories)
	categories.GET("/tree", categoryHandler.GetCategoryTree)
	categories.GET("/:id", categoryHandler.GetCategoryByID)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	currencies := protected.Group("/currencies")
	currencies.GET("", currencyHandler.ListCurrencies)
	currencies.PUT("/rates", currencyHandler.UpsertRate)

	expenses := protected.Group("/expenses")
	expenses.POST("", expenseHandler.CreateExpense)
	expenses.GET("", expenseHandler.GetExpenses)
	expenses.GET("/:id", expenseHandler.GetExpense)
	expenses.DELETE("/:id", expenseHandler.DeleteExpense)

	budgets := protected.Group("/budgets")
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.GET("", budgetHandler.GetBudgets)
	budgets.GET("/summary", budgetHandler.GetBudgetSummary)
	budgets.GET("/alerts", budgetHandler.GetBudgetAlerts)
	budgets.GET("/current", budgetHandler.GetCurrentBudgets)
	budgets.GET("/:id", budgetHandler.GetBudget)
	budgets.PUT("/:id", budgetHandler.UpdateBudget)
	budgets.DELETE("/:id", budgetHandler.DeactivateBudget)
	budgets.GET("/:id/performance", budgetHandler.GetBudgetPerformance)

	groups := protected.Group("/budget-groups")
	groups.POST("", groupHandler.CreateBudgetGroup)
	groups.GET("", groupHandler.GetBudgetGroups)
	groups.GET("/current", groupHandler.GetCurrentBudgetGroups)
	groups.GET("/summary", groupHandler.GetUserGroupsSummary)
	groups.POST("/validate-period", groupHandler.ValidateGroupPeriod)
	groups.GET("/:id", groupHandler.GetBudgetGroup)
	groups.PUT("/:id", groupHandler.UpdateBudgetGroup)
	groups.DELETE("/:id", groupHandler.DeactivateBudgetGroup)
	groups.GET("/:id/summary", groupHandler.GetBudgetGroupSummary)
	groups.POST("/:id/generate", groupHandler.GenerateBudgets)
	groups.PUT("/:id/amounts", groupHandler.BulkUpdateAmounts)
	groups.GET("/:id/export", groupHandler.ExportBudgetGroup)

	plans := protected.Group("/plans")
	plans.POST("", planHandler.CreatePlan)
	plans.GET("", planHandler.ListPlans)
	plans.GET("/:year/:month", planHandler.GetPlan)
	plans.PUT("/:year/:month", planHandler.UpdatePlan)
	plans.DELETE("/:year/:month", planHandler.DeletePlan)

	return router
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
