package api

import (
	"OeeForecast/internal/domain/models"
	"OeeForecast/internal/usecase"
	xhttp "OeeForecast/pkg/http"
	xlogger "OeeForecast/pkg/logger"

	"github.com/labstack/echo/v4"
)

// PredictionConfigHandler exposes the caller's saved prediction configs.
type PredictionConfigHandler struct {
	logger *xlogger.Logger
	uc     *usecase.PredictionConfigUseCase
}

func NewPredictionConfigHandler(logger *xlogger.Logger, uc *usecase.PredictionConfigUseCase) *PredictionConfigHandler {
	return &PredictionConfigHandler{logger: logger, uc: uc}
}

func (h *PredictionConfigHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/oee/prediction-configs")
	g.GET("", h.List)
	g.POST("", h.Save)
	g.GET("/default", h.Default)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

func (h *PredictionConfigHandler) List(c echo.Context) error {
	uid, aerr := userID(c)
	if aerr != nil {
		return xhttp.AppErrorResponse(c, aerr)
	}
	req := &models.ListPredictionConfigsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	rows, err := h.uc.List(c.Request().Context(), uid, models.ConfigType(req.ConfigType))
	if err != nil {
		return h.fail(c, err)
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

func (h *PredictionConfigHandler) Default(c echo.Context) error {
	uid, aerr := userID(c)
	if aerr != nil {
		return xhttp.AppErrorResponse(c, aerr)
	}
	req := &models.DefaultPredictionConfigRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	cfg, err := h.uc.Default(c.Request().Context(), uid, models.ConfigType(req.ConfigType))
	if err != nil {
		return h.fail(c, err)
	}
	return xhttp.SuccessResponse(c, cfg)
}

func (h *PredictionConfigHandler) Get(c echo.Context) error {
	uid, aerr := userID(c)
	if aerr != nil {
		return xhttp.AppErrorResponse(c, aerr)
	}
	req := &models.IDRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	cfg, err := h.uc.Get(c.Request().Context(), uid, req.ID)
	if err != nil {
		return h.fail(c, err)
	}
	return xhttp.SuccessResponse(c, cfg)
}

func (h *PredictionConfigHandler) Save(c echo.Context) error {
	uid, aerr := userID(c)
	if aerr != nil {
		return xhttp.AppErrorResponse(c, aerr)
	}
	req := &models.SavePredictionConfigRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	cfg, err := h.uc.Save(c.Request().Context(), &models.PredictionConfig{
		UserID:          uid,
		ConfigName:      req.ConfigName,
		ConfigType:      models.ConfigType(req.ConfigType),
		Algorithm:       models.Algorithm(req.Algorithm),
		PredictionDays:  req.PredictionDays,
		ConfidenceLevel: req.ConfidenceLevel,
		AlertThreshold:  req.AlertThreshold,
		MovingAvgWindow: req.MovingAvgWindow,
		SmoothingFactor: req.SmoothingFactor,
		HistoricalDays:  req.HistoricalDays,
		IsDefault:       req.IsDefault,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return xhttp.CreatedResponse(c, cfg)
}

func (h *PredictionConfigHandler) Update(c echo.Context) error {
	uid, aerr := userID(c)
	if aerr != nil {
		return xhttp.AppErrorResponse(c, aerr)
	}
	req := &models.UpdatePredictionConfigRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	patch := models.PredictionConfigPatch{
		ConfigName:      req.ConfigName,
		PredictionDays:  req.PredictionDays,
		ConfidenceLevel: req.ConfidenceLevel,
		AlertThreshold:  req.AlertThreshold,
		MovingAvgWindow: req.MovingAvgWindow,
		SmoothingFactor: req.SmoothingFactor,
		HistoricalDays:  req.HistoricalDays,
		IsDefault:       req.IsDefault,
	}
	if req.Algorithm != nil {
		alg := models.Algorithm(*req.Algorithm)
		patch.Algorithm = &alg
	}
	cfg, err := h.uc.Update(c.Request().Context(), uid, req.ID, patch)
	if err != nil {
		return h.fail(c, err)
	}
	return xhttp.SuccessResponse(c, cfg)
}

func (h *PredictionConfigHandler) Delete(c echo.Context) error {
	uid, aerr := userID(c)
	if aerr != nil {
		return xhttp.AppErrorResponse(c, aerr)
	}
	req := &models.IDRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if err := h.uc.Delete(c.Request().Context(), uid, req.ID); err != nil {
		return h.fail(c, err)
	}
	return xhttp.NoContentResponse(c)
}

func (h *PredictionConfigHandler) fail(c echo.Context, err error) error {
	appErr := toAppError(err)
	if appErr.Status >= 500 {
		h.logger.Error("prediction config usecase error", xlogger.Error(err))
	}
	return xhttp.AppErrorResponse(c, appErr)
}
