package handler

import (
	"encoding/json"
	"net/http"

	"github.com/dafibh/envelope/envelope-backend/internal/domain"
	"github.com/dafibh/envelope/envelope-backend/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// BudgetHandler serves budget-wide figures
type BudgetHandler struct {
	categoryService    *service.CategoryService
	calculationService *service.CalculationService
}

// NewBudgetHandler creates a new BudgetHandler
func NewBudgetHandler(categoryService *service.CategoryService, calculationService *service.CalculationService) *BudgetHandler {
	return &BudgetHandler{
		categoryService:    categoryService,
		calculationService: calculationService,
	}
}

// BudgetResponse describes the budget's fixed properties
type BudgetResponse struct {
	SystemAvailableCategoryID   uuid.UUID              `json:"system_available_category_id"`
	SystemAvailableCategoryName string                 `json:"system_available_category_name"`
	ReferencePolicy             domain.ReferencePolicy `json:"reference_policy"`
}

// DashboardResponse represents the dashboard API response
type DashboardResponse struct {
	AvailableToBudget string `json:"available_to_budget"`
}

// NetWorthResponse represents the net worth API response
type NetWorthResponse struct {
	Assets      string `json:"assets"`
	Liabilities string `json:"liabilities"`
	NetWorth    string `json:"net_worth"`
}

// GetBudget handles GET /api/v1/budget
func (h *BudgetHandler) GetBudget(c echo.Context) error {
	system := h.categoryService.GetSystemAvailableCategory()
	return c.JSON(http.StatusOK, BudgetResponse{
		SystemAvailableCategoryID:   system.ID,
		SystemAvailableCategoryName: system.Name,
		ReferencePolicy:             h.categoryService.GetReferencePolicy(),
	})
}

// GetDashboard handles GET /api/v1/dashboard
func (h *BudgetHandler) GetDashboard(c echo.Context) error {
	available, err := h.calculationService.AvailableToBudget()
	if err != nil {
		log.Error().Err(err).Msg("Failed to calculate available to budget")
		return NewInternalError(c, "Failed to calculate available to budget")
	}

	return c.JSON(http.StatusOK, DashboardResponse{
		AvailableToBudget: available.StringFixed(2),
	})
}

// GetAvailable handles GET /api/v1/available. The body is a bare JSON number.
func (h *BudgetHandler) GetAvailable(c echo.Context) error {
	available, err := h.calculationService.AvailableToBudget()
	if err != nil {
		log.Error().Err(err).Msg("Failed to calculate available to budget")
		return NewInternalError(c, "Failed to calculate available to budget")
	}

	return c.JSON(http.StatusOK, json.RawMessage(available.String()))
}

// GetNetWorth handles GET /api/v1/net-worth
func (h *BudgetHandler) GetNetWorth(c echo.Context) error {
	summary, err := h.calculationService.NetWorth()
	if err != nil {
		log.Error().Err(err).Msg("Failed to calculate net worth")
		return NewInternalError(c, "Failed to calculate net worth")
	}

	return c.JSON(http.StatusOK, NetWorthResponse{
		Assets:      summary.Assets.StringFixed(2),
		Liabilities: summary.Liabilities.StringFixed(2),
		NetWorth:    summary.NetWorth.StringFixed(2),
	})
}
