package service

import (
	"context"
	"time"

	"OeeForecast/internal/domain/models"
)

// Forecaster fits one algorithm over a machine series.
type Forecaster interface {
	Forecast(series []models.OeeObservation, req models.ForecastRequest) (models.ForecastResult, error)
}

// AlgorithmComparator scores every algorithm over the same series.
type AlgorithmComparator interface {
	Compare(series []models.OeeObservation, predictionDays int, today time.Time) (models.ComparisonResult, error)
}

// ThresholdResolver returns the single threshold that applies to a machine.
type ThresholdResolver interface {
	Resolve(ctx context.Context, machineID int64) models.AlertThreshold
}

// AlertEvaluator derives alerts from a forecast.
type AlertEvaluator interface {
	Evaluate(machineID int64, current float64, forecast models.ForecastResult, eff models.EffectiveThreshold) []models.Alert
}
