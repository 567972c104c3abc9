package handler

import (
	"net/http"

	"github.com/dafibh/envelope/envelope-backend/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// TransferHandler handles category and account transfers
type TransferHandler struct {
	categoryService *service.CategoryService
	accountService  *service.AccountService
}

// NewTransferHandler creates a new TransferHandler
func NewTransferHandler(categoryService *service.CategoryService, accountService *service.AccountService) *TransferHandler {
	return &TransferHandler{
		categoryService: categoryService,
		accountService:  accountService,
	}
}

// CreateCategoryTransferRequest represents the create category transfer request body
type CreateCategoryTransferRequest struct {
	ID             uuid.UUID        `json:"id"`
	Date           string           `json:"date"`
	FromCategoryID uuid.UUID        `json:"from_category_id"`
	ToCategoryID   uuid.UUID        `json:"to_category_id"`
	Amount         *decimal.Decimal `json:"amount"`
	Memo           *string          `json:"memo"`
}

// CreateAccountTransferRequest represents the create account transfer request body
type CreateAccountTransferRequest struct {
	ID            uuid.UUID        `json:"id"`
	Date          string           `json:"date"`
	FromAccountID uuid.UUID        `json:"from_account_id"`
	ToAccountID   uuid.UUID        `json:"to_account_id"`
	Amount        *decimal.Decimal `json:"amount"`
	Memo          *string          `json:"memo"`
}

// CreateCategoryTransfer handles POST /api/v1/category-transfers
func (h *TransferHandler) CreateCategoryTransfer(c echo.Context) error {
	var req CreateCategoryTransferRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	switch {
	case req.FromCategoryID == uuid.Nil:
		return requiredField(c, "from_category_id")
	case req.ToCategoryID == uuid.Nil:
		return requiredField(c, "to_category_id")
	case req.Amount == nil:
		return requiredField(c, "amount")
	}

	transfer, err := h.categoryService.CreateCategoryTransfer(service.CreateCategoryTransferInput{
		ID:             req.ID,
		Date:           req.Date,
		FromCategoryID: req.FromCategoryID,
		ToCategoryID:   req.ToCategoryID,
		Amount:         *req.Amount,
		Memo:           req.Memo,
	})
	if err != nil {
		return handleCreateError(c, err, "create category transfer")
	}

	log.Info().
		Str("transfer_id", transfer.ID.String()).
		Str("from_category_id", transfer.FromCategoryID.String()).
		Str("to_category_id", transfer.ToCategoryID.String()).
		Msg("Category transfer created")

	return c.JSON(http.StatusCreated, transfer)
}

// GetCategoryTransfers handles GET /api/v1/category-transfers
func (h *TransferHandler) GetCategoryTransfers(c echo.Context) error {
	transfers, err := h.categoryService.GetCategoryTransfers()
	if err != nil {
		log.Error().Err(err).Msg("Failed to get category transfers")
		return NewInternalError(c, "Failed to get category transfers")
	}

	return c.JSON(http.StatusOK, transfers)
}

// CreateAccountTransfer handles POST /api/v1/account-transfers
func (h *TransferHandler) CreateAccountTransfer(c echo.Context) error {
	var req CreateAccountTransferRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	switch {
	case req.FromAccountID == uuid.Nil:
		return requiredField(c, "from_account_id")
	case req.ToAccountID == uuid.Nil:
		return requiredField(c, "to_account_id")
	case req.Amount == nil:
		return requiredField(c, "amount")
	}

	transfer, err := h.accountService.CreateAccountTransfer(service.CreateAccountTransferInput{
		ID:            req.ID,
		Date:          req.Date,
		FromAccountID: req.FromAccountID,
		ToAccountID:   req.ToAccountID,
		Amount:        *req.Amount,
		Memo:          req.Memo,
	})
	if err != nil {
		return handleCreateError(c, err, "create account transfer")
	}

	log.Info().
		Str("transfer_id", transfer.ID.String()).
		Str("from_account_id", transfer.FromAccountID.String()).
		Str("to_account_id", transfer.ToAccountID.String()).
		Msg("Account transfer created")

	return c.JSON(http.StatusCreated, transfer)
}

// GetAccountTransfers handles GET /api/v1/account-transfers
func (h *TransferHandler) GetAccountTransfers(c echo.Context) error {
	transfers, err := h.accountService.GetAccountTransfers()
	if err != nil {
		log.Error().Err(err).Msg("Failed to get account transfers")
		return NewInternalError(c, "Failed to get account transfers")
	}

	return c.JSON(http.StatusOK, transfers)
}
