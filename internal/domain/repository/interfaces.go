package repository

import (
	"context"
	"errors"
	"time"

	"OeeForecast/internal/domain/models"
)

// ErrNotFound is returned by stores when a row does not exist or was deactivated.
var ErrNotFound = errors.New("not found")

// OeeSource is the read-only daily OEE time series.
type OeeSource interface {
	// GetDailyOee returns one machine's daily observations since the given date, oldest first.
	GetDailyOee(ctx context.Context, machineID int64, since time.Time) ([]models.OeeObservation, error)
	// GetFleetDailyOee returns daily observations for every machine (or only machineIDs when set).
	GetFleetDailyOee(ctx context.Context, since time.Time, machineIDs []int64) ([]models.MachineSeries, error)
	// GetAggregateDailyOee returns the fleet average per day.
	GetAggregateDailyOee(ctx context.Context, since time.Time, machineIDs []int64) ([]models.OeeObservation, error)
	Health(ctx context.Context) error
	Close() error
}

// ThresholdStore persists alert thresholds.
type ThresholdStore interface {
	MachineLine(ctx context.Context, machineID int64) (lineID int64, ok bool, err error)
	ActiveThresholds(ctx context.Context, scope models.ThresholdScope, targetID int64) ([]models.AlertThreshold, error)
	List(ctx context.Context, filter models.ThresholdFilter) ([]models.AlertThreshold, error)
	Get(ctx context.Context, id int64) (*models.AlertThreshold, error)
	Create(ctx context.Context, t *models.AlertThreshold) (int64, error)
	Update(ctx context.Context, id int64, patch models.ThresholdPatch) error
	// Delete deactivates the row; thresholds are never hard-deleted.
	Delete(ctx context.Context, id int64) error
}

// PredictionConfigStore persists named per-user forecast parameter bundles.
type PredictionConfigStore interface {
	List(ctx context.Context, userID int64, configType models.ConfigType) ([]models.PredictionConfig, error)
	Get(ctx context.Context, userID, id int64) (*models.PredictionConfig, error)
	GetDefault(ctx context.Context, userID int64, configType models.ConfigType) (*models.PredictionConfig, error)
	// Save inserts a config. When it is the default, other defaults of the same user and type are cleared first.
	Save(ctx context.Context, c *models.PredictionConfig) (int64, error)
	Update(ctx context.Context, userID, id int64, patch models.PredictionConfigPatch) error
	Delete(ctx context.Context, userID, id int64) error
}

// AlertPublisher ships alert events to the message bus.
type AlertPublisher interface {
	Publish(ctx context.Context, ev *models.AlertEvent) error
	PublishBatch(ctx context.Context, evs []*models.AlertEvent) error
	Close() error
}

// Notifier delivers alerts to people or external systems.
type Notifier interface {
	Name() string
	Notify(ctx context.Context, evs []*models.AlertEvent) error
}

type Metrics interface {
	RecordForecast(algorithm, outcome string)
	RecordAlert(severity string)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
	RecordPredictedOee(machine string, value float64)
}
