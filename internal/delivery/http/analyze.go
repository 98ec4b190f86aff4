package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"stock-advisor/internal/dto"
)

func (h *HttpAPIHandler) SetupAnalysis(base *echo.Group) {
	analysisGroup := base.Group("/analysis")
	analysisGroup.GET("/:ticker", h.analyzeTicker)
	analysisGroup.GET("/:ticker/history", h.analysisHistory)
	analysisGroup.POST("", h.analyzeMany)
}

func (h *HttpAPIHandler) analyzeTicker(c echo.Context) error {
	ctx := c.Request().Context()

	ticker := c.Param("ticker")
	if ticker == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "ticker is required"})
	}

	result, err := h.service.AnalysisService.AnalyzeTicker(ctx, ticker, c.QueryParam("range"), c.QueryParam("interval"))
	if err != nil {
		return analysisError(c, err)
	}

	return c.JSON(http.StatusOK, result)
}

func (h *HttpAPIHandler) analyzeMany(c echo.Context) error {
	ctx := c.Request().Context()

	req := new(dto.AnalyzeRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	results, err := h.service.AnalysisService.AnalyzeMany(ctx, *req)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to analyze tickers"})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"results": results})
}

func (h *HttpAPIHandler) analysisHistory(c echo.Context) error {
	ctx := c.Request().Context()

	ticker := c.Param("ticker")
	limit := 20
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
		}
		limit = parsed
	}

	analyses, err := h.service.AnalysisService.History(ctx, ticker, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to load analysis history"})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"history": analyses})
}

// analysisError maps the typed engine errors onto HTTP statuses: bad
// inputs are the client's problem, everything else is ours.
func analysisError(c echo.Context, err error) error {
	var insufficient *dto.InsufficientDataError
	var invalid *dto.InvalidParameterError
	var gap *dto.DataGapError

	switch {
	case errors.As(err, &insufficient), errors.As(err, &gap):
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	case errors.As(err, &invalid):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "analysis failed"})
	}
}
