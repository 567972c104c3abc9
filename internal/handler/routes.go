package handler

import (
	"github.com/labstack/echo/v4"
)

// Handlers groups every API handler for route registration
type Handlers struct {
	Account     *AccountHandler
	Category    *CategoryHandler
	Transaction *TransactionHandler
	Transfer    *TransferHandler
	Budget      *BudgetHandler
	Export      *ExportHandler
	WebSocket   *WebSocketHandler
}

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, h Handlers, middlewares ...echo.MiddlewareFunc) {
	// API version 1
	api := e.Group("/api/v1", middlewares...)

	accounts := api.Group("/accounts")
	accounts.POST("", h.Account.CreateAccount)
	accounts.GET("", h.Account.GetAccounts)
	accounts.GET("/balances", h.Account.GetAccountBalances)

	categories := api.Group("/categories")
	categories.POST("", h.Category.CreateCategory)
	categories.GET("", h.Category.GetCategories)
	categories.GET("/balances", h.Category.GetCategoryBalances)

	groups := api.Group("/category-groups")
	groups.POST("", h.Category.CreateCategoryGroup)
	groups.GET("", h.Category.GetCategoryGroups)
	groups.GET("/balances", h.Category.GetGroupBalances)

	transactions := api.Group("/transactions")
	transactions.POST("", h.Transaction.CreateTransaction)
	transactions.GET("", h.Transaction.GetTransactions)

	categoryTransfers := api.Group("/category-transfers")
	categoryTransfers.POST("", h.Transfer.CreateCategoryTransfer)
	categoryTransfers.GET("", h.Transfer.GetCategoryTransfers)

	accountTransfers := api.Group("/account-transfers")
	accountTransfers.POST("", h.Transfer.CreateAccountTransfer)
	accountTransfers.GET("", h.Transfer.GetAccountTransfers)

	api.GET("/budget", h.Budget.GetBudget)
	api.GET("/dashboard", h.Budget.GetDashboard)
	api.GET("/available", h.Budget.GetAvailable)
	api.GET("/net-worth", h.Budget.GetNetWorth)

	api.POST("/exports", h.Export.CreateExport)

	// WebSocket endpoint
	api.GET("/ws", h.WebSocket.HandleWS)
}
