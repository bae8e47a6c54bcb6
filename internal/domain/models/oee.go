package models

import "time"

// OeeObservation is one daily OEE value for a machine, in percent.
type OeeObservation struct {
	MachineID   int64     `json:"machineId"`
	MachineName string    `json:"machineName,omitempty"`
	Date        time.Time `json:"date"`
	Oee         float64   `json:"oee"`
}

// MachineSeries groups the ascending daily observations of one machine.
type MachineSeries struct {
	MachineID    int64            `json:"machineId"`
	MachineName  string           `json:"machineName"`
	Observations []OeeObservation `json:"observations"`
}

// Values returns the OEE values in date order.
func (s MachineSeries) Values() []float64 {
	return ObservationValues(s.Observations)
}

// ObservationValues extracts the OEE values of a series.
func ObservationValues(obs []OeeObservation) []float64 {
	out := make([]float64, len(obs))
	for i, o := range obs {
		out[i] = o.Oee
	}
	return out
}

// Algorithm identifies a forecasting strategy.
type Algorithm string

const (
	AlgorithmLinear       Algorithm = "linear"
	AlgorithmMovingAvg    Algorithm = "moving_avg"
	AlgorithmExpSmoothing Algorithm = "exp_smoothing"
)

// Algorithms lists the strategies in tie-break priority order.
var Algorithms = []Algorithm{AlgorithmLinear, AlgorithmMovingAvg, AlgorithmExpSmoothing}

// DisplayName returns the human readable algorithm name.
func (a Algorithm) DisplayName() string {
	switch a {
	case AlgorithmLinear:
		return "Linear Regression"
	case AlgorithmMovingAvg:
		return "Moving Average"
	case AlgorithmExpSmoothing:
		return "Exponential Smoothing"
	default:
		return string(a)
	}
}

// ForecastRequest carries the parameters of a single forecast.
// MovingAvgWindow and SmoothingFactor are optional; zero means "use the default".
type ForecastRequest struct {
	MachineID       int64     `json:"machineId"`
	PredictionDays  int       `json:"predictionDays"`
	Algorithm       Algorithm `json:"algorithm"`
	ConfidenceLevel float64   `json:"confidenceLevel"`
	AlertThreshold  float64   `json:"alertThreshold"`
	MovingAvgWindow int       `json:"movingAvgWindow,omitempty"`
	SmoothingFactor float64   `json:"smoothingFactor,omitempty"`
}

// ForecastResult holds point forecasts and bands, all of length PredictionDays and within [0,100].
type ForecastResult struct {
	AlgorithmUsed  Algorithm `json:"algorithmUsed"`
	PointForecasts []float64 `json:"pointForecasts"`
	LowerBound     []float64 `json:"lowerBound"`
	UpperBound     []float64 `json:"upperBound"`
	R2             float64   `json:"r2"`
	RMSE           float64   `json:"rmse"`
}

// Last returns the final point forecast, or 0 for an empty result.
func (r ForecastResult) Last() float64 {
	if len(r.PointForecasts) == 0 {
		return 0
	}
	return r.PointForecasts[len(r.PointForecasts)-1]
}

// ChartPoint is one row of the prediction chart. Historical rows carry only Actual,
// future rows only the forecast fields.
type ChartPoint struct {
	Date       string   `json:"date"`
	Actual     *float64 `json:"actual"`
	Predicted  *float64 `json:"predicted"`
	UpperBound *float64 `json:"upperBound"`
	LowerBound *float64 `json:"lowerBound"`
}

// MachinePrediction summarises the forecast for one machine.
type MachinePrediction struct {
	MachineID       int64           `json:"machineId"`
	MachineName     string          `json:"machineName"`
	CurrentOee      float64         `json:"currentOee"`
	PredictedOee    float64         `json:"predictedOee"`
	Change          float64         `json:"change"`
	Confidence      float64         `json:"confidence"`
	Recommendation  string          `json:"recommendation"`
	ThresholdSource ThresholdScope  `json:"thresholdSource"`
	Forecast        *ForecastResult `json:"forecast,omitempty"`
}

// PredictionReport is the output of a fleet prediction run.
type PredictionReport struct {
	ChartData   []ChartPoint        `json:"chartData"`
	Predictions []MachinePrediction `json:"predictions"`
	Alerts      []Alert             `json:"alerts"`
	Skipped     []int64             `json:"skipped,omitempty"`
	Errors      map[int64]string    `json:"errors,omitempty"`
	Settings    ForecastRequest     `json:"settings"`
	GeneratedAt time.Time           `json:"generatedAt"`
}
