package http

import (
	"errors"
	"net/http"

	"golang-finance/internal/dto"
	"golang-finance/internal/service"
	"golang-finance/pkg/middleware"
	"golang-finance/pkg/utils"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupAnalysis(base *echo.Group) {
	v1 := base.Group("/v1/analysis")

	// Generation-triggering endpoints carry their own fixed per-origin
	// budget on top of the global limiter.
	strict := middleware.NewGenerationRateLimiterMiddleware(h.cfg.API.MaxGenerationsPerMinute)
	v1.POST("", h.AnalyzeStock, strict)
	v1.POST("/bulk", h.AnalyzeStockBulk, strict)

	v1.GET("/trending", h.TrendingAnalyses)
	v1.GET("/stats", h.AnalysisStats)
	v1.DELETE("/cache/:market/:ticker", h.InvalidateAnalysisCache)
}

func (h *HttpAPIHandler) AnalyzeStock(c echo.Context) error {
	var req dto.AnalyzeStockRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid request body"))
	}
	if err := h.validator.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	result, err := h.service.AnalysisService.GetOrCreate(c.Request().Context(), req.Market, req.Ticker, req.Timeframe)
	if err != nil {
		response := generationErrorResponse(err)
		return c.JSON(response.Code, response)
	}

	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Analysis ready", result))
}

func (h *HttpAPIHandler) AnalyzeStockBulk(c echo.Context) error {
	var req dto.BulkAnalyzeStockRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid request body"))
	}
	if err := h.validator.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	results := h.service.AnalysisService.GetOrCreateBulk(c.Request().Context(), req.Items)
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Bulk analysis completed", results))
}

func (h *HttpAPIHandler) TrendingAnalyses(c echo.Context) error {
	results, err := h.service.AnalysisService.Trending(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, err.Error(), nil))
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Trending analyses", results))
}

func (h *HttpAPIHandler) AnalysisStats(c echo.Context) error {
	stats, err := h.service.AnalysisService.Stats(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, err.Error(), nil))
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Analysis stats", stats))
}

func (h *HttpAPIHandler) InvalidateAnalysisCache(c echo.Context) error {
	market := c.Param("market")
	ticker := c.Param("ticker")
	if !utils.ContainsString(dto.GetMarketList(), market) || ticker == "" {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid market or ticker"))
	}

	var timeframe *string
	if tf := c.QueryParam("timeframe"); tf != "" {
		if !utils.ContainsString(dto.GetTimeframeList(), tf) {
			return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid timeframe"))
		}
		timeframe = utils.ToPointer(tf)
	}

	if err := h.service.AnalysisService.InvalidateCache(c.Request().Context(), market, ticker, timeframe); err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, err.Error(), nil))
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Cache invalidated", nil))
}

// generationErrorResponse keeps the two failure reasons distinct: exhausted
// retries imply "wait and try again", an invalid model response implies the
// prompt/model contract needs fixing.
func generationErrorResponse(err error) *dto.BaseResponse {
	var generationErr *service.GenerationError
	if errors.As(err, &generationErr) {
		switch generationErr.Kind {
		case service.GenerationInvalidResponse:
			return dto.NewBadGatewayResponse("analysis service returned an invalid response, please report this")
		default:
			return dto.NewBadGatewayResponse("analysis service unavailable, please try again later")
		}
	}
	return dto.NewBaseResponse(http.StatusInternalServerError, err.Error(), nil)
}
