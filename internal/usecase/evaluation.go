package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"OeeForecast/internal/domain/models"
	domrepo "OeeForecast/internal/domain/repository"
	"OeeForecast/internal/services/alerting"
	applogger "OeeForecast/pkg/logger"
	"OeeForecast/pkg/queue"
)

// EvaluateFleetType is the queue message type of a background fleet evaluation.
const EvaluateFleetType = "oee.evaluate_fleet"

// AlertDispatcher hands alerts to the delivery pipeline.
type AlertDispatcher interface {
	Dispatch(ctx context.Context, alerts []models.Alert, horizonDays int, alg models.Algorithm) ([]*models.AlertEvent, error)
}

// EvaluationPayload is the queued request of a fleet evaluation.
type EvaluationPayload struct {
	UserID         int64   `json:"userId"`
	HistoricalDays int     `json:"historicalDays"`
	ConfigID       int64   `json:"configId,omitempty"`
	MachineIDs     []int64 `json:"machineIds,omitempty"`
}

// EvaluationUseCase enqueues fleet evaluations and reports their progress.
type EvaluationUseCase struct {
	queue queue.Publisher
}

func NewEvaluationUseCase(q queue.Publisher) *EvaluationUseCase {
	return &EvaluationUseCase{queue: q}
}

// Enqueue schedules an evaluation and returns its job id.
func (uc *EvaluationUseCase) Enqueue(ctx context.Context, p EvaluationPayload) (string, error) {
	if uc.queue == nil {
		return "", ErrQueueDisabled
	}
	return uc.queue.Enqueue(ctx, EvaluateFleetType, p)
}

// Status returns the progress of a queued evaluation.
func (uc *EvaluationUseCase) Status(ctx context.Context, id string) (*queue.Status, error) {
	if uc.queue == nil {
		return nil, ErrQueueDisabled
	}
	st, err := uc.queue.Status(ctx, id)
	if errors.Is(err, queue.ErrNotFound) {
		return nil, domrepo.ErrNotFound
	}
	return st, err
}

// ErrQueueDisabled is returned when background evaluation is not configured.
var ErrQueueDisabled = errors.New("evaluation queue is disabled")

// EvaluateFleetJob runs a fleet prediction and dispatches its alerts.
type EvaluateFleetJob struct {
	predictions *PredictionUseCase
	configs     domrepo.PredictionConfigStore
	dispatcher  AlertDispatcher
	defaults    models.ForecastRequest
	l           *applogger.Logger
}

func NewEvaluateFleetJob(predictions *PredictionUseCase, configs domrepo.PredictionConfigStore, dispatcher AlertDispatcher, defaults models.ForecastRequest, l *applogger.Logger) *EvaluateFleetJob {
	return &EvaluateFleetJob{predictions: predictions, configs: configs, dispatcher: dispatcher, defaults: defaults, l: l}
}

func (j *EvaluateFleetJob) Name() string { return "evaluate-fleet" }

func (j *EvaluateFleetJob) Type() string { return EvaluateFleetType }

// Handle uses the referenced config, else the user's default OEE config, else service defaults.
func (j *EvaluateFleetJob) Handle(ctx context.Context, payload json.RawMessage) error {
	p, err := queue.ParsePayload[EvaluationPayload](payload)
	if err != nil {
		return err
	}
	params := PredictParams{
		UserID:         p.UserID,
		HistoricalDays: p.HistoricalDays,
		Request:        j.defaults,
		MachineIDs:     p.MachineIDs,
		ConfigID:       p.ConfigID,
	}
	if params.ConfigID == 0 && p.UserID > 0 && j.configs != nil {
		if def, err := j.configs.GetDefault(ctx, p.UserID, models.ConfigTypeOee); err == nil {
			params.ConfigID = def.ID
		}
	}

	report, err := j.predictions.Predict(ctx, params)
	if err != nil {
		return fmt.Errorf("evaluate fleet: %w", err)
	}
	evs, err := j.dispatcher.Dispatch(ctx, report.Alerts, report.Settings.PredictionDays, report.Settings.Algorithm)
	if err != nil {
		// the pipeline keeps the batch and retries it; the evaluation itself succeeded
		j.l.Warn("alert delivery deferred", applogger.Int("alerts", len(evs)), applogger.Error(err))
	}
	j.l.Info("fleet evaluation done",
		applogger.Int("predictions", len(report.Predictions)),
		applogger.Int("alerts", len(report.Alerts)),
		applogger.Int("dispatched", len(evs)),
	)
	return nil
}

// AlertMailer mails one alert to explicit recipients.
type AlertMailer interface {
	SendTo(ctx context.Context, recipients []string, ev *models.AlertEvent) error
}

// SendAlertParams is a manually triggered alert.
type SendAlertParams struct {
	MachineName  string
	CurrentOee   float64
	PredictedOee float64
	Change       float64
	Severity     models.Severity
	Recipients   []string
}

// AlertUseCase sends ad-hoc alert e-mails.
type AlertUseCase struct {
	mailer AlertMailer
	l      *applogger.Logger
}

func NewAlertUseCase(mailer AlertMailer, l *applogger.Logger) *AlertUseCase {
	return &AlertUseCase{mailer: mailer, l: l}
}

// ErrMailerDisabled is returned when e-mail delivery is not configured.
var ErrMailerDisabled = errors.New("e-mail delivery is disabled")

// Send mails the alert to each recipient and reports how many succeeded.
func (uc *AlertUseCase) Send(ctx context.Context, p SendAlertParams) (sent int, failed []string, err error) {
	if uc.mailer == nil {
		return 0, nil, ErrMailerDisabled
	}
	ev := &models.AlertEvent{Alert: models.Alert{
		MachineName:    p.MachineName,
		Severity:       p.Severity,
		CurrentValue:   p.CurrentOee,
		PredictedValue: p.PredictedOee,
		ChangeDelta:    p.Change,
		Message:        fmt.Sprintf("Predicted OEE %.1f%% (change %+.1f%%)", p.PredictedOee, p.Change),
		Recommendation: alerting.Recommend(p.Change),
	}}
	for _, to := range p.Recipients {
		if err := uc.mailer.SendTo(ctx, []string{to}, ev); err != nil {
			uc.l.Warn("alert e-mail failed", applogger.String("recipient", to), applogger.Error(err))
			failed = append(failed, to)
			continue
		}
		sent++
	}
	return sent, failed, nil
}
