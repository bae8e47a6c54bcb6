package models

// Requests for the OEE HTTP endpoints.

type PredictionRequest struct {
	Days            int     `query:"days" json:"days" default:"30" validate:"gte=7,lte=365"`
	PredictionDays  int     `query:"predictionDays" json:"predictionDays" default:"14" validate:"gte=1,lte=90"`
	Algorithm       string  `query:"algorithm" json:"algorithm" default:"linear" validate:"oneof=linear moving_avg exp_smoothing"`
	ConfidenceLevel float64 `query:"confidenceLevel" json:"confidenceLevel" default:"95" validate:"gt=0,lt=100"`
	AlertThreshold  float64 `query:"alertThreshold" json:"alertThreshold" default:"65" validate:"gte=0,lte=100"`
	DropAlert       float64 `query:"dropAlert" json:"dropAlert" validate:"gte=0,lte=100"`
	MovingAvgWindow int     `query:"movingAvgWindow" json:"movingAvgWindow" validate:"gte=0,lte=90"`
	SmoothingFactor float64 `query:"smoothingFactor" json:"smoothingFactor" validate:"gte=0,lte=1"`
	MachineIDs      []int64 `query:"machineId" json:"machineIds"`
	ConfigID        int64   `query:"configId" json:"configId" validate:"gte=0"`
	IncludeSeries   bool    `query:"includeSeries" json:"includeSeries"`
}

type ComparisonRequest struct {
	Days           int `query:"days" json:"days" default:"30" validate:"gte=7,lte=365"`
	PredictionDays int `query:"predictionDays" json:"predictionDays" default:"14" validate:"gte=1,lte=90"`
}

type HistoryRequest struct {
	MachineID int64 `param:"machineId" validate:"required,gt=0"`
	Days      int   `query:"days" default:"30" validate:"gte=1,lte=365"`
}

type EffectiveThresholdRequest struct {
	MachineID int64 `param:"machineId" validate:"required,gt=0"`
}

type ListThresholdsRequest struct {
	MachineID        int64 `query:"machineId" validate:"gte=0"`
	ProductionLineID int64 `query:"productionLineId" validate:"gte=0"`
}

type CreateThresholdRequest struct {
	MachineID             int64    `json:"machineId" validate:"gte=0"`
	ProductionLineID      int64    `json:"productionLineId" validate:"gte=0"`
	TargetOee             float64  `json:"targetOee" default:"85" validate:"gte=0,lte=100"`
	WarningThreshold      float64  `json:"warningThreshold" default:"80" validate:"gte=0,lte=100"`
	CriticalThreshold     float64  `json:"criticalThreshold" default:"70" validate:"gte=0,lte=100"`
	DropAlertThreshold    float64  `json:"dropAlertThreshold" default:"5" validate:"gte=0,lte=100"`
	RelativeDropThreshold float64  `json:"relativeDropThreshold" default:"10" validate:"gte=0,lte=100"`
	AvailabilityTarget    *float64 `json:"availabilityTarget" validate:"omitempty,gte=0,lte=100"`
	PerformanceTarget     *float64 `json:"performanceTarget" validate:"omitempty,gte=0,lte=100"`
	QualityTarget         *float64 `json:"qualityTarget" validate:"omitempty,gte=0,lte=100"`
}

type UpdateThresholdRequest struct {
	ID                    int64    `param:"id" validate:"required,gt=0"`
	TargetOee             *float64 `json:"targetOee" validate:"omitempty,gte=0,lte=100"`
	WarningThreshold      *float64 `json:"warningThreshold" validate:"omitempty,gte=0,lte=100"`
	CriticalThreshold     *float64 `json:"criticalThreshold" validate:"omitempty,gte=0,lte=100"`
	DropAlertThreshold    *float64 `json:"dropAlertThreshold" validate:"omitempty,gte=0,lte=100"`
	RelativeDropThreshold *float64 `json:"relativeDropThreshold" validate:"omitempty,gte=0,lte=100"`
	AvailabilityTarget    *float64 `json:"availabilityTarget" validate:"omitempty,gte=0,lte=100"`
	PerformanceTarget     *float64 `json:"performanceTarget" validate:"omitempty,gte=0,lte=100"`
	QualityTarget         *float64 `json:"qualityTarget" validate:"omitempty,gte=0,lte=100"`
}

type IDRequest struct {
	ID int64 `param:"id" validate:"required,gt=0"`
}

type SavePredictionConfigRequest struct {
	ConfigName      string   `json:"configName" validate:"required,min=1,max=100"`
	ConfigType      string   `json:"configType" default:"oee" validate:"oneof=oee cpk spc"`
	Algorithm       string   `json:"algorithm" default:"linear" validate:"oneof=linear moving_avg exp_smoothing"`
	PredictionDays  int      `json:"predictionDays" default:"14" validate:"gte=1,lte=90"`
	ConfidenceLevel float64  `json:"confidenceLevel" default:"95" validate:"gt=0,lt=100"`
	AlertThreshold  float64  `json:"alertThreshold" default:"5" validate:"gte=0,lte=100"`
	MovingAvgWindow *int     `json:"movingAvgWindow" validate:"omitempty,gte=1,lte=90"`
	SmoothingFactor *float64 `json:"smoothingFactor" validate:"omitempty,gt=0,lte=1"`
	HistoricalDays  int      `json:"historicalDays" default:"30" validate:"gte=7,lte=365"`
	IsDefault       bool     `json:"isDefault"`
}

type UpdatePredictionConfigRequest struct {
	ID              int64    `param:"id" validate:"required,gt=0"`
	ConfigName      *string  `json:"configName" validate:"omitempty,min=1,max=100"`
	Algorithm       *string  `json:"algorithm" validate:"omitempty,oneof=linear moving_avg exp_smoothing"`
	PredictionDays  *int     `json:"predictionDays" validate:"omitempty,gte=1,lte=90"`
	ConfidenceLevel *float64 `json:"confidenceLevel" validate:"omitempty,gt=0,lt=100"`
	AlertThreshold  *float64 `json:"alertThreshold" validate:"omitempty,gte=0,lte=100"`
	MovingAvgWindow *int     `json:"movingAvgWindow" validate:"omitempty,gte=1,lte=90"`
	SmoothingFactor *float64 `json:"smoothingFactor" validate:"omitempty,gt=0,lte=1"`
	HistoricalDays  *int     `json:"historicalDays" validate:"omitempty,gte=7,lte=365"`
	IsDefault       *bool    `json:"isDefault"`
}

type ListPredictionConfigsRequest struct {
	ConfigType string `query:"configType" validate:"omitempty,oneof=oee cpk spc"`
}

type DefaultPredictionConfigRequest struct {
	ConfigType string `query:"configType" default:"oee" validate:"oneof=oee cpk spc"`
}

type SendAlertRequest struct {
	MachineName  string   `json:"machineName" validate:"required"`
	CurrentOee   float64  `json:"currentOee"`
	PredictedOee float64  `json:"predictedOee"`
	Change       float64  `json:"change"`
	Severity     string   `json:"severity" validate:"oneof=high medium low"`
	Recipients   []string `json:"recipients" validate:"required,min=1,dive,email"`
}

type EnqueueEvaluationRequest struct {
	Days       int     `json:"days" default:"30" validate:"gte=7,lte=365"`
	ConfigID   int64   `json:"configId" validate:"gte=0"`
	MachineIDs []int64 `json:"machineIds"`
}
