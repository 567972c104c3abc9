package handler

import (
	"net/http"

	"github.com/dafibh/envelope/envelope-backend/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// CategoryHandler handles category-related HTTP requests
type CategoryHandler struct {
	categoryService    *service.CategoryService
	calculationService *service.CalculationService
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService *service.CategoryService, calculationService *service.CalculationService) *CategoryHandler {
	return &CategoryHandler{
		categoryService:    categoryService,
		calculationService: calculationService,
	}
}

// CreateCategoryRequest represents the create category request body
type CreateCategoryRequest struct {
	ID      uuid.UUID  `json:"id"`
	Name    string     `json:"name"`
	GroupID *uuid.UUID `json:"group_id"`
}

// CategoryBalanceResponse represents a category balance in API responses
type CategoryBalanceResponse struct {
	CategoryID uuid.UUID  `json:"category_id"`
	Name       string     `json:"name"`
	GroupID    *uuid.UUID `json:"group_id,omitempty"`
	Balance    string     `json:"balance"`
	System     bool       `json:"system"`
}

// CreateCategoryGroupRequest represents the create category group request body
type CreateCategoryGroupRequest struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// GroupBalanceResponse represents a category group and its categories
type GroupBalanceResponse struct {
	GroupID    *uuid.UUID                `json:"group_id"`
	Name       string                    `json:"name"`
	Balance    string                    `json:"balance"`
	Categories []CategoryBalanceResponse `json:"categories"`
}

// CreateCategory handles POST /api/v1/categories
func (h *CategoryHandler) CreateCategory(c echo.Context) error {
	var req CreateCategoryRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	category, err := h.categoryService.CreateCategory(service.CreateCategoryInput{
		ID:      req.ID,
		Name:    req.Name,
		GroupID: req.GroupID,
	})
	if err != nil {
		return handleCreateError(c, err, "create category")
	}

	log.Info().Str("category_id", category.ID.String()).Str("name", category.Name).Msg("Category created")

	return c.JSON(http.StatusCreated, category)
}

// GetCategories handles GET /api/v1/categories
func (h *CategoryHandler) GetCategories(c echo.Context) error {
	categories, err := h.categoryService.GetCategories()
	if err != nil {
		log.Error().Err(err).Msg("Failed to get categories")
		return NewInternalError(c, "Failed to get categories")
	}

	return c.JSON(http.StatusOK, categories)
}

// GetCategoryBalances handles GET /api/v1/categories/balances
func (h *CategoryHandler) GetCategoryBalances(c echo.Context) error {
	results, err := h.calculationService.CalculateCategoryBalances()
	if err != nil {
		log.Error().Err(err).Msg("Failed to calculate category balances")
		return NewInternalError(c, "Failed to calculate category balances")
	}

	return c.JSON(http.StatusOK, toCategoryBalanceResponses(results))
}

// CreateCategoryGroup handles POST /api/v1/category-groups
func (h *CategoryHandler) CreateCategoryGroup(c echo.Context) error {
	var req CreateCategoryGroupRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	group, err := h.categoryService.CreateCategoryGroup(service.CreateCategoryGroupInput{
		ID:   req.ID,
		Name: req.Name,
	})
	if err != nil {
		return handleCreateError(c, err, "create category group")
	}

	log.Info().Str("group_id", group.ID.String()).Str("name", group.Name).Msg("Category group created")

	return c.JSON(http.StatusCreated, group)
}

// GetCategoryGroups handles GET /api/v1/category-groups
func (h *CategoryHandler) GetCategoryGroups(c echo.Context) error {
	groups, err := h.categoryService.GetCategoryGroups()
	if err != nil {
		log.Error().Err(err).Msg("Failed to get category groups")
		return NewInternalError(c, "Failed to get category groups")
	}

	return c.JSON(http.StatusOK, groups)
}

// GetGroupBalances handles GET /api/v1/category-groups/balances
func (h *CategoryHandler) GetGroupBalances(c echo.Context) error {
	results, err := h.calculationService.CalculateGroupBalances()
	if err != nil {
		log.Error().Err(err).Msg("Failed to calculate group balances")
		return NewInternalError(c, "Failed to calculate group balances")
	}

	response := make([]GroupBalanceResponse, len(results))
	for i, r := range results {
		response[i] = GroupBalanceResponse{
			GroupID:    r.GroupID,
			Name:       r.Name,
			Balance:    r.Balance.StringFixed(2),
			Categories: toCategoryBalanceResponses(r.Categories),
		}
	}

	return c.JSON(http.StatusOK, response)
}

func toCategoryBalanceResponses(results []service.CategoryBalanceResult) []CategoryBalanceResponse {
	response := make([]CategoryBalanceResponse, len(results))
	for i, r := range results {
		response[i] = CategoryBalanceResponse{
			CategoryID: r.CategoryID,
			Name:       r.Name,
			GroupID:    r.GroupID,
			Balance:    r.Balance.StringFixed(2),
			System:     r.System,
		}
	}
	return response
}
