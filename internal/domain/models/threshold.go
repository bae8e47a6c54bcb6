package models

import "time"

// ThresholdScope tells where a threshold record was resolved from.
type ThresholdScope string

const (
	ScopeMachine ThresholdScope = "machine"
	ScopeLine    ThresholdScope = "line"
	ScopeGlobal  ThresholdScope = "global"
	ScopeDefault ThresholdScope = "default"
)

// AlertThreshold is a persisted alert-threshold row. MachineID and ProductionLineID are
// nil for wider scopes; a row with both nil is global.
type AlertThreshold struct {
	ID                    int64          `json:"id,omitempty"`
	Scope                 ThresholdScope `json:"scope"`
	MachineID             *int64         `json:"machineId"`
	ProductionLineID      *int64         `json:"productionLineId"`
	TargetOee             float64        `json:"targetOee"`
	WarningThreshold      float64        `json:"warningThreshold"`
	CriticalThreshold     float64        `json:"criticalThreshold"`
	DropAlertThreshold    float64        `json:"dropAlertThreshold"`
	RelativeDropThreshold float64        `json:"relativeDropThreshold"`
	AvailabilityTarget    *float64       `json:"availabilityTarget,omitempty"`
	PerformanceTarget     *float64       `json:"performanceTarget,omitempty"`
	QualityTarget         *float64       `json:"qualityTarget,omitempty"`
	IsActive              bool           `json:"isActive"`
	CreatedBy             *int64         `json:"createdBy,omitempty"`
	CreatedAt             time.Time      `json:"createdAt"`
	UpdatedAt             time.Time      `json:"updatedAt"`
}

// ScopeOf derives the scope of a row from its keys.
func (t AlertThreshold) ScopeOf() ThresholdScope {
	switch {
	case t.MachineID != nil:
		return ScopeMachine
	case t.ProductionLineID != nil:
		return ScopeLine
	default:
		return ScopeGlobal
	}
}

// TargetID returns the machine or line id the row is scoped to, if any.
func (t AlertThreshold) TargetID() *int64 {
	if t.MachineID != nil {
		return t.MachineID
	}
	return t.ProductionLineID
}

// EffectiveThreshold is the single threshold value used during one evaluation.
type EffectiveThreshold struct {
	AlertFloor float64        `json:"alertFloor"`
	DropAlert  float64        `json:"dropAlert"`
	Source     ThresholdScope `json:"source"`
	Record     AlertThreshold `json:"record"`
}

// ThresholdFilter narrows threshold listings.
type ThresholdFilter struct {
	MachineID        *int64
	ProductionLineID *int64
}

// ThresholdPatch carries the optional fields of a threshold update.
type ThresholdPatch struct {
	TargetOee             *float64
	WarningThreshold      *float64
	CriticalThreshold     *float64
	DropAlertThreshold    *float64
	RelativeDropThreshold *float64
	AvailabilityTarget    *float64
	PerformanceTarget     *float64
	QualityTarget         *float64
}

// ThresholdEvent is published when a threshold row changes.
type ThresholdEvent struct {
	Action           string `json:"action"`
	ThresholdID      int64  `json:"thresholdId"`
	MachineID        *int64 `json:"machineId,omitempty"`
	ProductionLineID *int64 `json:"productionLineId,omitempty"`
}
