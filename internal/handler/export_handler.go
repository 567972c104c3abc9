package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/dafibh/envelope/envelope-backend/internal/domain"
	"github.com/dafibh/envelope/envelope-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ExportHandler triggers ledger snapshot exports
type ExportHandler struct {
	exportService *service.ExportService
}

// NewExportHandler creates a new ExportHandler
func NewExportHandler(exportService *service.ExportService) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

// ExportResponse represents a completed export
type ExportResponse struct {
	Location string `json:"location"`
	TakenAt  string `json:"taken_at"`
	Objects  int    `json:"objects"`
}

// CreateExport handles POST /api/v1/exports
func (h *ExportHandler) CreateExport(c echo.Context) error {
	result, err := h.exportService.Export(c.Request().Context())
	if err != nil {
		if errors.Is(err, domain.ErrExportDisabled) {
			return NewServiceUnavailableError(c, "Snapshot export is not configured")
		}
		log.Error().Err(err).Msg("Failed to export snapshot")
		return NewInternalError(c, "Failed to export snapshot")
	}

	return c.JSON(http.StatusCreated, ExportResponse{
		Location: result.Location,
		TakenAt:  result.TakenAt.Format(time.RFC3339),
		Objects:  result.Objects,
	})
}
