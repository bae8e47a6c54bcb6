package api

import (
	"context"
	"errors"
	"time"

	"OeeForecast/internal/domain/models"
	"OeeForecast/internal/usecase"
	"OeeForecast/pkg/cache"
	xhttp "OeeForecast/pkg/http"
	xlogger "OeeForecast/pkg/logger"

	"github.com/labstack/echo/v4"
)

// OeeHandler serves forecasts, the algorithm comparison and machine history.
type OeeHandler struct {
	logger      *xlogger.Logger
	predictions *usecase.PredictionUseCase
	analysis    *usecase.AnalysisUseCase
	cache       cache.Service
	cacheTTL    time.Duration
}

func NewOeeHandler(logger *xlogger.Logger, predictions *usecase.PredictionUseCase, analysis *usecase.AnalysisUseCase) *OeeHandler {
	return &OeeHandler{logger: logger, predictions: predictions, analysis: analysis}
}

// SetCache enables response caching of the comparison endpoint.
func (h *OeeHandler) SetCache(c cache.Service, ttl time.Duration) {
	h.cache = c
	h.cacheTTL = ttl
}

func (h *OeeHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/oee")
	g.GET("/predictions", h.Predictions)
	g.GET("/comparison", h.Comparison)
	g.GET("/machines/:machineId/history", h.History)
}

func (h *OeeHandler) Predictions(c echo.Context) error {
	req := &models.PredictionRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	report, err := h.predictions.Predict(c.Request().Context(), usecase.PredictParams{
		UserID:         optionalUserID(c),
		HistoricalDays: req.Days,
		Request: models.ForecastRequest{
			PredictionDays:  req.PredictionDays,
			Algorithm:       models.Algorithm(req.Algorithm),
			ConfidenceLevel: req.ConfidenceLevel,
			AlertThreshold:  req.AlertThreshold,
			MovingAvgWindow: req.MovingAvgWindow,
			SmoothingFactor: req.SmoothingFactor,
		},
		DropAlert:     req.DropAlert,
		MachineIDs:    req.MachineIDs,
		ConfigID:      req.ConfigID,
		IncludeSeries: req.IncludeSeries,
	})
	if err != nil {
		return h.fail(c, "predictions", err)
	}
	return xhttp.SuccessResponse(c, report)
}

func (h *OeeHandler) Comparison(c echo.Context) error {
	req := &models.ComparisonRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	ctx := c.Request().Context()

	key := cache.Key("comparison", req.Days, req.PredictionDays)
	var res *models.ComparisonResult
	if h.cached(ctx, key, &res) {
		c.Response().Header().Set("X-Cache", "HIT")
		return xhttp.SuccessResponse(c, res)
	}

	res, err := h.analysis.Compare(ctx, req.Days, req.PredictionDays)
	if err != nil {
		return h.fail(c, "comparison", err)
	}
	if h.cache != nil {
		if err := h.cache.Set(ctx, key, res, h.cacheTTL); err != nil {
			h.logger.Warn("comparison cache write failed", xlogger.Error(err))
		}
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=60")
	return xhttp.SuccessResponse(c, res)
}

func (h *OeeHandler) History(c echo.Context) error {
	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	obs, err := h.analysis.History(c.Request().Context(), req.MachineID, req.Days)
	if err != nil {
		return h.fail(c, "history", err)
	}
	return xhttp.ListResponse(c, obs, int64(len(obs)))
}

func (h *OeeHandler) cached(ctx context.Context, key string, dest interface{}) bool {
	if h.cache == nil {
		return false
	}
	err := h.cache.Get(ctx, key, dest)
	if err != nil && !errors.Is(err, cache.ErrCacheMiss) {
		h.logger.Warn("comparison cache read failed", xlogger.Error(err))
	}
	return err == nil
}

func (h *OeeHandler) fail(c echo.Context, op string, err error) error {
	appErr := toAppError(err)
	if appErr.Status >= 500 {
		h.logger.Error(op+" usecase error", xlogger.Error(err))
	}
	return xhttp.AppErrorResponse(c, appErr)
}
