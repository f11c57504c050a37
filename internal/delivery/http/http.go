package http

import (
	"context"

	"golang-finance/config"
	"golang-finance/internal/service"
	"golang-finance/pkg/middleware"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type HttpAPIHandler struct {
	echo      *echo.Echo
	cfg       *config.Config
	validator *goValidator.Validate
	service   *service.Service
}

func NewHttpAPIHandler(ctx context.Context, echo *echo.Echo, cfg *config.Config, validator *goValidator.Validate, service *service.Service) *HttpAPIHandler {
	return &HttpAPIHandler{
		echo:      echo,
		cfg:       cfg,
		validator: validator,
		service:   service,
	}
}

func (h *HttpAPIHandler) SetupRoutes() {
	h.echo.Use(middleware.NewRateLimiterMiddleware(h.cfg.API.MaxRequestsPerMinute))

	base := h.echo.Group("/api")
	h.SetupAnalysis(base)
	h.SetupSnapshots(base)
	h.SetupHealth(base)
}
