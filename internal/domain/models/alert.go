package models

import "time"

// Severity ranks an alert.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Label returns the upper-case label used in notification subjects.
func (s Severity) Label() string {
	switch s {
	case SeverityHigh:
		return "HIGH"
	case SeverityMedium:
		return "MEDIUM"
	default:
		return "LOW"
	}
}

// Color returns the hex color used when rendering the severity.
func (s Severity) Color() string {
	switch s {
	case SeverityHigh:
		return "#ef4444"
	case SeverityMedium:
		return "#f59e0b"
	default:
		return "#3b82f6"
	}
}

// Alert is a derived forecast alert; it has no persisted identity.
type Alert struct {
	MachineID      int64    `json:"machineId"`
	MachineName    string   `json:"machineName,omitempty"`
	Severity       Severity `json:"severity"`
	CurrentValue   float64  `json:"currentValue"`
	PredictedValue float64  `json:"predictedValue"`
	ChangeDelta    float64  `json:"changeDelta"`
	Message        string   `json:"message"`
	Recommendation string   `json:"recommendation"`
}

// AlertEvent is the envelope used when alerts leave the service.
type AlertEvent struct {
	ID          string    `json:"id"`
	Alert       Alert     `json:"alert"`
	HorizonDays int       `json:"horizonDays"`
	Algorithm   Algorithm `json:"algorithm"`
	CreatedAt   time.Time `json:"createdAt"`
}
