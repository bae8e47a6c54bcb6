package models

import "time"

// ConfigType is the metric family a prediction config applies to.
type ConfigType string

const (
	ConfigTypeOee ConfigType = "oee"
	ConfigTypeCpk ConfigType = "cpk"
	ConfigTypeSpc ConfigType = "spc"
)

// PredictionConfig is a named per-user bundle of forecast parameters.
// At most one active config per (UserID, ConfigType) has IsDefault set.
type PredictionConfig struct {
	ID              int64      `json:"id"`
	UserID          int64      `json:"userId"`
	ConfigName      string     `json:"configName"`
	ConfigType      ConfigType `json:"configType"`
	Algorithm       Algorithm  `json:"algorithm"`
	PredictionDays  int        `json:"predictionDays"`
	ConfidenceLevel float64    `json:"confidenceLevel"`
	AlertThreshold  float64    `json:"alertThreshold"`
	MovingAvgWindow *int       `json:"movingAvgWindow,omitempty"`
	SmoothingFactor *float64   `json:"smoothingFactor,omitempty"`
	HistoricalDays  int        `json:"historicalDays"`
	IsDefault       bool       `json:"isDefault"`
	IsActive        bool       `json:"isActive"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// ApplyTo copies the config's parameters onto a forecast request.
func (c PredictionConfig) ApplyTo(req *ForecastRequest) {
	if c.Algorithm != "" {
		req.Algorithm = c.Algorithm
	}
	if c.PredictionDays > 0 {
		req.PredictionDays = c.PredictionDays
	}
	if c.ConfidenceLevel > 0 {
		req.ConfidenceLevel = c.ConfidenceLevel
	}
	if c.AlertThreshold > 0 {
		req.AlertThreshold = c.AlertThreshold
	}
	if c.MovingAvgWindow != nil {
		req.MovingAvgWindow = *c.MovingAvgWindow
	}
	if c.SmoothingFactor != nil {
		req.SmoothingFactor = *c.SmoothingFactor
	}
}

// PredictionConfigPatch carries the optional fields of a config update.
type PredictionConfigPatch struct {
	ConfigName      *string
	Algorithm       *Algorithm
	PredictionDays  *int
	ConfidenceLevel *float64
	AlertThreshold  *float64
	MovingAvgWindow *int
	SmoothingFactor *float64
	HistoricalDays  *int
	IsDefault       *bool
}
