package api

import (
	"OeeForecast/internal/domain/models"
	"OeeForecast/internal/usecase"
	xhttp "OeeForecast/pkg/http"
	xlogger "OeeForecast/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ThresholdHandler exposes alert threshold management.
type ThresholdHandler struct {
	logger *xlogger.Logger
	uc     *usecase.ThresholdUseCase
}

func NewThresholdHandler(logger *xlogger.Logger, uc *usecase.ThresholdUseCase) *ThresholdHandler {
	return &ThresholdHandler{logger: logger, uc: uc}
}

func (h *ThresholdHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/oee/thresholds")
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/effective/:machineId", h.Effective)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

func (h *ThresholdHandler) List(c echo.Context) error {
	req := &models.ListThresholdsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	var filter models.ThresholdFilter
	if req.MachineID > 0 {
		filter.MachineID = &req.MachineID
	}
	if req.ProductionLineID > 0 {
		filter.ProductionLineID = &req.ProductionLineID
	}
	rows, err := h.uc.List(c.Request().Context(), filter)
	if err != nil {
		return h.fail(c, err)
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

func (h *ThresholdHandler) Get(c echo.Context) error {
	req := &models.IDRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	t, err := h.uc.Get(c.Request().Context(), req.ID)
	if err != nil {
		return h.fail(c, err)
	}
	return xhttp.SuccessResponse(c, t)
}

func (h *ThresholdHandler) Effective(c echo.Context) error {
	req := &models.EffectiveThresholdRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	return xhttp.SuccessResponse(c, h.uc.Effective(c.Request().Context(), req.MachineID))
}

func (h *ThresholdHandler) Create(c echo.Context) error {
	req := &models.CreateThresholdRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	t := &models.AlertThreshold{
		TargetOee:             req.TargetOee,
		WarningThreshold:      req.WarningThreshold,
		CriticalThreshold:     req.CriticalThreshold,
		DropAlertThreshold:    req.DropAlertThreshold,
		RelativeDropThreshold: req.RelativeDropThreshold,
		AvailabilityTarget:    req.AvailabilityTarget,
		PerformanceTarget:     req.PerformanceTarget,
		QualityTarget:         req.QualityTarget,
	}
	if req.MachineID > 0 {
		t.MachineID = &req.MachineID
	}
	if req.ProductionLineID > 0 {
		t.ProductionLineID = &req.ProductionLineID
	}
	if uid := optionalUserID(c); uid > 0 {
		t.CreatedBy = &uid
	}

	created, err := h.uc.Create(c.Request().Context(), t)
	if err != nil {
		return h.fail(c, err)
	}
	return xhttp.CreatedResponse(c, created)
}

func (h *ThresholdHandler) Update(c echo.Context) error {
	req := &models.UpdateThresholdRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	t, err := h.uc.Update(c.Request().Context(), req.ID, models.ThresholdPatch{
		TargetOee:             req.TargetOee,
		WarningThreshold:      req.WarningThreshold,
		CriticalThreshold:     req.CriticalThreshold,
		DropAlertThreshold:    req.DropAlertThreshold,
		RelativeDropThreshold: req.RelativeDropThreshold,
		AvailabilityTarget:    req.AvailabilityTarget,
		PerformanceTarget:     req.PerformanceTarget,
		QualityTarget:         req.QualityTarget,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return xhttp.SuccessResponse(c, t)
}

func (h *ThresholdHandler) Delete(c echo.Context) error {
	req := &models.IDRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if err := h.uc.Delete(c.Request().Context(), req.ID); err != nil {
		return h.fail(c, err)
	}
	return xhttp.NoContentResponse(c)
}

func (h *ThresholdHandler) fail(c echo.Context, err error) error {
	appErr := toAppError(err)
	if appErr.Status >= 500 {
		h.logger.Error("threshold usecase error", xlogger.Error(err))
	}
	return xhttp.AppErrorResponse(c, appErr)
}
