package handler

import (
	"net/http"

	"github.com/dafibh/envelope/envelope-backend/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// TransactionHandler handles transaction-related HTTP requests
type TransactionHandler struct {
	transactionService *service.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(transactionService *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
	}
}

// CreateTransactionRequest represents the create transaction request body
type CreateTransactionRequest struct {
	ID         uuid.UUID       `json:"id"`
	Date       string          `json:"date"`
	Payee      *string         `json:"payee"`
	Memo       *string         `json:"memo"`
	AccountID  uuid.UUID       `json:"account_id"`
	CategoryID *uuid.UUID      `json:"category_id"`
	Inflow     decimal.Decimal `json:"inflow"`
	Outflow    decimal.Decimal `json:"outflow"`
	Status     string          `json:"status"`
}

// CreateTransaction handles POST /api/v1/transactions
func (h *TransactionHandler) CreateTransaction(c echo.Context) error {
	var req CreateTransactionRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	if req.AccountID == uuid.Nil {
		return requiredField(c, "account_id")
	}

	transaction, err := h.transactionService.CreateTransaction(service.CreateTransactionInput{
		ID:         req.ID,
		Date:       req.Date,
		Payee:      req.Payee,
		Memo:       req.Memo,
		AccountID:  req.AccountID,
		CategoryID: req.CategoryID,
		Inflow:     req.Inflow,
		Outflow:    req.Outflow,
		Status:     req.Status,
	})
	if err != nil {
		return handleCreateError(c, err, "create transaction")
	}

	log.Info().
		Str("transaction_id", transaction.ID.String()).
		Str("account_id", transaction.AccountID.String()).
		Msg("Transaction created")

	return c.JSON(http.StatusCreated, transaction)
}

// GetTransactions handles GET /api/v1/transactions
func (h *TransactionHandler) GetTransactions(c echo.Context) error {
	transactions, err := h.transactionService.GetTransactions()
	if err != nil {
		log.Error().Err(err).Msg("Failed to get transactions")
		return NewInternalError(c, "Failed to get transactions")
	}

	return c.JSON(http.StatusOK, transactions)
}
