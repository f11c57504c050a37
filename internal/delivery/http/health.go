package http

import (
	"net/http"

	"golang-finance/internal/dto"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupHealth(base *echo.Group) {
	base.GET("/health", h.Health)
}

func (h *HttpAPIHandler) Health(c echo.Context) error {
	stats, err := h.service.AnalysisService.Stats(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, err.Error(), nil))
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("ok", stats))
}
