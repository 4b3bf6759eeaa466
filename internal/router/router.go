package router

import (
	"travel-ledger/internal/config"
	"travel-ledger/internal/handler"
	"travel-ledger/internal/ledger"
	"travel-ledger/internal/middleware"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter configures the Gin engine and the API routes.
func SetupRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	ledgerSvc := ledger.NewService(db)

	api := r.Group("/api")

	authHandler := handler.NewAuthHandler(db, cfg.JWT.Secret, cfg.JWT.ExpireHours, cfg.Security.BcryptCost)
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(cfg.JWT.Secret, db))

	protected.POST("/auth/logout", authHandler.Logout)
	protected.GET("/me", handler.GetMe)

	cashBoxHandler := handler.NewCashBoxHandler(ledgerSvc)
	protected.POST("/cashboxes", cashBoxHandler.Create)
	protected.GET("/cashboxes", cashBoxHandler.List)
	protected.GET("/cashboxes/:id", cashBoxHandler.Get)
	protected.PUT("/cashboxes/:id", cashBoxHandler.Update)
	protected.DELETE("/cashboxes/:id", cashBoxHandler.Delete)
	protected.GET("/cashboxes/:id/balance", cashBoxHandler.Balance)

	txnHandler := handler.NewTransactionHandler(ledgerSvc)
	protected.POST("/transactions", txnHandler.Create)
	protected.GET("/transactions", txnHandler.List)
	protected.GET("/transactions/:id", txnHandler.Get)
	protected.PUT("/transactions/:id", txnHandler.Update)
	protected.DELETE("/transactions/:id", txnHandler.Void)

	reportHandler := handler.NewReportHandler(ledgerSvc)
	protected.GET("/reports/monthly", reportHandler.Monthly)
	protected.GET("/reports/yearly", reportHandler.Yearly)
	protected.GET("/reports/monthly/export", reportHandler.ExportMonthlyXLSX)

	auditHandler := handler.NewAuditLogHandler(db, cfg.App.PageSize)
	protected.GET("/auditlogs", auditHandler.List)

	return r
}
