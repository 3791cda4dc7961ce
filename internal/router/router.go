// Package router assembles the gin engine: middleware, templates, static
// assets and every route.
package router

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"budgettracker/internal/config"
	"budgettracker/internal/handlers"
	"budgettracker/internal/middleware"
	"budgettracker/internal/services"
	"budgettracker/internal/validator"
	"budgettracker/web"
)

// Services bundles the service layer the handlers depend on.
type Services struct {
	Users        services.UserServicer
	Sessions     services.SessionServicer
	Transactions services.TransactionServicer
	Budgets      services.BudgetServicer
	Reports      services.ReportServicer
	Audit        services.AuditServicer
}

// NewServices builds the gorm-backed services.
func NewServices(db *gorm.DB, cfg *config.Config) Services {
	return Services{
		Users:        services.NewUserService(db),
		Sessions:     services.NewSessionService(db, cfg.SecretKey, cfg.SessionTTL),
		Transactions: services.NewTransactionService(db),
		Budgets:      services.NewBudgetService(db),
		Reports:      services.NewReportService(db),
		Audit:        services.NewAuditService(db),
	}
}

// New returns the configured engine.
func New(cfg *config.Config, svc Services) (*gin.Engine, error) {
	validator.Register()

	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	static, err := web.Static()
	if err != nil {
		return nil, fmt.Errorf("failed to mount static assets: %w", err)
	}

	secure := cfg.IsProduction()

	authHandler := handlers.NewAuthHandler(svc.Users, svc.Sessions, svc.Audit, cfg.SessionTTL, secure)
	dashboardHandler := handlers.NewDashboardHandler(svc.Reports)
	transactionHandler := handlers.NewTransactionHandler(svc.Transactions, svc.Audit)
	budgetHandler := handlers.NewBudgetHandler(svc.Budgets, svc.Audit)
	exportHandler := handlers.NewExportHandler(svc.Transactions, svc.Reports, svc.Users, svc.Audit)
	apiHandler := handlers.NewAPIHandler(svc.Reports, svc.Transactions)

	router := gin.New()
	router.SetHTMLTemplate(tmpl)
	router.Use(middleware.RequestLogging())
	router.Use(middleware.Recovery())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.ErrorHandler())

	router.NoRoute(func(c *gin.Context) {
		middleware.RenderError(c, http.StatusNotFound, "NOT_FOUND", "Page not found.")
	})

	router.StaticFS("/static", http.FS(static))
	router.GET("/health", handlers.Health)

	// Public routes
	router.GET("/login", authHandler.ShowLogin)
	router.POST("/login", authHandler.Login)
	router.GET("/register", authHandler.ShowRegister)
	router.POST("/register", authHandler.Register)

	// Browser routes
	pages := router.Group("/")
	pages.Use(middleware.RequireSession(svc.Sessions, secure))
	pages.GET("/", dashboardHandler.Index)
	pages.GET("/logout", authHandler.Logout)
	pages.POST("/logout", authHandler.Logout)
	pages.POST("/account/delete", authHandler.DeleteAccount)
	pages.POST("/add", transactionHandler.Add)
	pages.GET("/edit/:id", transactionHandler.ShowEdit)
	pages.POST("/edit/:id", transactionHandler.Edit)
	pages.POST("/delete/:id", transactionHandler.Delete)
	pages.POST("/set-budget", budgetHandler.SetBudget)
	pages.GET("/export.csv", exportHandler.CSV)
	pages.GET("/export.xlsx", exportHandler.XLSX)
	pages.GET("/export.pdf", exportHandler.PDF)
	pages.GET("/chart/categories.png", exportHandler.CategoryChart)

	// JSON routes
	api := router.Group("/api")
	api.Use(middleware.RequireSessionAPI(svc.Sessions))
	api.GET("/summary", apiHandler.Summary)
	api.GET("/transactions", apiHandler.Transactions)

	return router, nil
}
