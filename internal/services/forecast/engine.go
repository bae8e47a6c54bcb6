package forecast

import "OeeForecast/internal/domain/models"

// Engine fits one algorithm to one series. It is stateless and safe for concurrent use.
type Engine struct{}

// NewEngine creates a forecast engine.
func NewEngine() *Engine { return &Engine{} }

// Forecast fits req.Algorithm to the series and returns clamped point forecasts and bands.
func (e *Engine) Forecast(series []models.OeeObservation, req models.ForecastRequest) (models.ForecastResult, error) {
	if req.PredictionDays < 1 {
		return models.ForecastResult{}, invalidParameter("predictionDays must be >= 1, got %d", req.PredictionDays)
	}
	strategy, err := NewStrategy(Params{
		Algorithm:       req.Algorithm,
		MovingAvgWindow: req.MovingAvgWindow,
		SmoothingFactor: req.SmoothingFactor,
	})
	if err != nil {
		return models.ForecastResult{}, err
	}
	if len(series) < MinObservations {
		return models.ForecastResult{}, insufficientData(len(series))
	}

	fit := strategy.Fit(models.ObservationValues(series), req.PredictionDays)
	return band(strategy.Algorithm(), fit, ZScore(req.ConfidenceLevel)), nil
}

// band turns a raw fit into a result with a flat half-width of z*Spread.
func band(alg models.Algorithm, fit Fit, z float64) models.ForecastResult {
	half := Sanitize(z * fit.Spread)
	res := models.ForecastResult{
		AlgorithmUsed:  alg,
		PointForecasts: make([]float64, len(fit.Points)),
		LowerBound:     make([]float64, len(fit.Points)),
		UpperBound:     make([]float64, len(fit.Points)),
		R2:             clampUnit(fit.R2),
		RMSE:           Sanitize(fit.RMSE),
	}
	for i, p := range fit.Points {
		p = Sanitize(p)
		res.PointForecasts[i] = Clamp(p)
		res.LowerBound[i] = Clamp(p - half)
		res.UpperBound[i] = Clamp(p + half)
	}
	return res
}

// Confidence is the display confidence in percent for a forecast.
// Linear uses r2, moving average the series variance, exponential smoothing the smoothing factor.
func Confidence(values []float64, req models.ForecastRequest, res models.ForecastResult) float64 {
	switch res.AlgorithmUsed {
	case models.AlgorithmLinear:
		return Sanitize(res.R2 * 100)
	case models.AlgorithmMovingAvg:
		v := 100 - popVariance(values)
		if v < 0 {
			return 0
		}
		return v
	case models.AlgorithmExpSmoothing:
		a := req.SmoothingFactor
		if a == 0 {
			a = DefaultSmoothingFactor
		}
		return 70 + a*30
	default:
		return 0
	}
}
