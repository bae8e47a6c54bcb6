package alerting

import (
	"fmt"
	"math"
	"slices"

	"OeeForecast/internal/domain/models"
)

const (
	// AbsoluteDropPoints fires an alert when the forecast falls this many OEE points or more.
	AbsoluteDropPoints = 10.0
	// SevereDropPoints marks a drop of this size or more as high severity.
	SevereDropPoints = 15.0
	// SevereMarginPoints marks a forecast this far below the caller's floor as high severity.
	SevereMarginPoints = 15.0
)

const (
	RecommendInspect  = "inspect/maintain equipment"
	RecommendMonitor  = "monitor closely"
	RecommendPositive = "positive trend, continue"
	RecommendMaintain = "maintain current performance"
)

// Generator turns a forecast into alerts. The zero value is not usable; use NewGenerator.
type Generator struct {
	AbsoluteDrop float64
	SevereDrop   float64
	SevereMargin float64
}

// NewGenerator returns a generator with the standard offsets.
func NewGenerator() *Generator {
	return &Generator{
		AbsoluteDrop: AbsoluteDropPoints,
		SevereDrop:   SevereDropPoints,
		SevereMargin: SevereMarginPoints,
	}
}

// Evaluate returns at most one alert for a machine. It is pure and safe for concurrent use.
func (g *Generator) Evaluate(machineID int64, current float64, forecast models.ForecastResult, eff models.EffectiveThreshold) []models.Alert {
	if len(forecast.PointForecasts) == 0 {
		return nil
	}
	predicted := forecast.Last()
	change := predicted - current

	fires := predicted < eff.AlertFloor ||
		change <= -g.AbsoluteDrop ||
		change <= -eff.DropAlert
	if !fires {
		return nil
	}

	return []models.Alert{{
		MachineID:      machineID,
		Severity:       g.Severity(predicted, change, eff.AlertFloor),
		CurrentValue:   current,
		PredictedValue: predicted,
		ChangeDelta:    change,
		Message:        Message(change, len(forecast.PointForecasts)),
		Recommendation: Recommend(change),
	}}
}

// Severity classifies a firing alert.
func (g *Generator) Severity(predicted, change, alertFloor float64) models.Severity {
	switch {
	case predicted < alertFloor-g.SevereMargin || change <= -g.SevereDrop:
		return models.SeverityHigh
	case change <= -g.AbsoluteDrop:
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}

// Recommend maps a forecast change onto advice text.
func Recommend(change float64) string {
	switch {
	case change < -5:
		return RecommendInspect
	case change < -2:
		return RecommendMonitor
	case change > 5:
		return RecommendPositive
	default:
		return RecommendMaintain
	}
}

// Message renders the human readable alert line.
func Message(change float64, horizonDays int) string {
	verb := "drops"
	if change >= 0 {
		verb = "changes"
	}
	return fmt.Sprintf("OEE forecast %s %.1f%% over the next %d days", verb, math.Abs(change), horizonDays)
}

// SortBySeverity moves high alerts to the front, keeping discovery order otherwise.
func SortBySeverity(alerts []models.Alert) {
	slices.SortStableFunc(alerts, func(a, b models.Alert) int {
		return rank(a.Severity) - rank(b.Severity)
	})
}

func rank(s models.Severity) int {
	if s == models.SeverityHigh {
		return 0
	}
	return 1
}
