package api

import (
	"OeeForecast/internal/domain/models"
	"OeeForecast/internal/usecase"
	xhttp "OeeForecast/pkg/http"
	xlogger "OeeForecast/pkg/logger"

	"github.com/labstack/echo/v4"
)

// AlertHandler sends ad-hoc alerts and schedules background evaluations.
type AlertHandler struct {
	logger      *xlogger.Logger
	alerts      *usecase.AlertUseCase
	evaluations *usecase.EvaluationUseCase
}

func NewAlertHandler(logger *xlogger.Logger, alerts *usecase.AlertUseCase, evaluations *usecase.EvaluationUseCase) *AlertHandler {
	return &AlertHandler{logger: logger, alerts: alerts, evaluations: evaluations}
}

func (h *AlertHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/oee")
	g.POST("/alerts/send", h.Send)
	g.POST("/evaluations", h.Enqueue)
	g.GET("/evaluations/:id", h.Status)
}

type sendAlertResponse struct {
	Sent   int      `json:"sent"`
	Failed []string `json:"failed"`
}

func (h *AlertHandler) Send(c echo.Context) error {
	req := &models.SendAlertRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	sent, failed, err := h.alerts.Send(c.Request().Context(), usecase.SendAlertParams{
		MachineName:  req.MachineName,
		CurrentOee:   req.CurrentOee,
		PredictedOee: req.PredictedOee,
		Change:       req.Change,
		Severity:     models.Severity(req.Severity),
		Recipients:   req.Recipients,
	})
	if err != nil {
		return h.fail(c, err)
	}
	if failed == nil {
		failed = []string{}
	}
	return xhttp.SuccessResponse(c, sendAlertResponse{Sent: sent, Failed: failed})
}

type enqueueResponse struct {
	JobID string `json:"jobId"`
}

func (h *AlertHandler) Enqueue(c echo.Context) error {
	req := &models.EnqueueEvaluationRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	id, err := h.evaluations.Enqueue(c.Request().Context(), usecase.EvaluationPayload{
		UserID:         optionalUserID(c),
		HistoricalDays: req.Days,
		ConfigID:       req.ConfigID,
		MachineIDs:     req.MachineIDs,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return xhttp.AcceptedResponse(c, enqueueResponse{JobID: id})
}

func (h *AlertHandler) Status(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("id is required"))
	}
	st, err := h.evaluations.Status(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return xhttp.SuccessResponse(c, st)
}

func (h *AlertHandler) fail(c echo.Context, err error) error {
	appErr := toAppError(err)
	if appErr.Status >= 500 {
		h.logger.Error("alert usecase error", xlogger.Error(err))
	}
	return xhttp.AppErrorResponse(c, appErr)
}
