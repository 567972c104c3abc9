package handler

import (
	"net/http"

	"github.com/dafibh/envelope/envelope-backend/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// AccountHandler handles account-related HTTP requests
type AccountHandler struct {
	accountService     *service.AccountService
	calculationService *service.CalculationService
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(accountService *service.AccountService, calculationService *service.CalculationService) *AccountHandler {
	return &AccountHandler{
		accountService:     accountService,
		calculationService: calculationService,
	}
}

// CreateAccountRequest represents the create account request body.
// Decimals may be sent as JSON numbers or strings.
type CreateAccountRequest struct {
	ID              uuid.UUID       `json:"id"`
	Name            string          `json:"name"`
	StartingBalance decimal.Decimal `json:"starting_balance"`
}

// AccountBalanceResponse represents an account with its derived balances
type AccountBalanceResponse struct {
	AccountID            uuid.UUID `json:"account_id"`
	Name                 string    `json:"name"`
	StartingBalance      string    `json:"starting_balance"`
	Balance              string    `json:"balance"`
	TransferNet          string    `json:"transfer_net"`
	BalanceWithTransfers string    `json:"balance_with_transfers"`
}

// CreateAccount handles POST /api/v1/accounts
func (h *AccountHandler) CreateAccount(c echo.Context) error {
	var req CreateAccountRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	account, err := h.accountService.CreateAccount(service.CreateAccountInput{
		ID:              req.ID,
		Name:            req.Name,
		StartingBalance: req.StartingBalance,
	})
	if err != nil {
		return handleCreateError(c, err, "create account")
	}

	log.Info().Str("account_id", account.ID.String()).Str("name", account.Name).Msg("Account created")

	return c.JSON(http.StatusCreated, account)
}

// GetAccounts handles GET /api/v1/accounts
func (h *AccountHandler) GetAccounts(c echo.Context) error {
	accounts, err := h.accountService.GetAccounts()
	if err != nil {
		log.Error().Err(err).Msg("Failed to get accounts")
		return NewInternalError(c, "Failed to get accounts")
	}

	return c.JSON(http.StatusOK, accounts)
}

// GetAccountBalances handles GET /api/v1/accounts/balances
func (h *AccountHandler) GetAccountBalances(c echo.Context) error {
	results, err := h.calculationService.CalculateAccountBalances()
	if err != nil {
		log.Error().Err(err).Msg("Failed to calculate account balances")
		return NewInternalError(c, "Failed to calculate account balances")
	}

	response := make([]AccountBalanceResponse, len(results))
	for i, r := range results {
		response[i] = AccountBalanceResponse{
			AccountID:            r.AccountID,
			Name:                 r.Name,
			StartingBalance:      r.StartingBalance.StringFixed(2),
			Balance:              r.Balance.StringFixed(2),
			TransferNet:          r.TransferNet.StringFixed(2),
			BalanceWithTransfers: r.BalanceWithTransfers.StringFixed(2),
		}
	}

	return c.JSON(http.StatusOK, response)
}
