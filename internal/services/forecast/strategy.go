package forecast

import "OeeForecast/internal/domain/models"

const (
	DefaultMovingAvgWindow = 7
	DefaultSmoothingFactor = 0.3
)

// Fit is the raw output of a strategy before banding and clamping.
// Spread is the standard deviation the confidence band is scaled from.
type Fit struct {
	Points []float64
	Spread float64
	R2     float64
	RMSE   float64
}

// Strategy fits one forecasting algorithm to a series of values in date order.
type Strategy interface {
	Algorithm() models.Algorithm
	Fit(values []float64, horizon int) Fit
}

// Params selects and tunes a strategy. Zero values pick the defaults.
type Params struct {
	Algorithm       models.Algorithm
	MovingAvgWindow int
	SmoothingFactor float64
}

// NewStrategy is the strategy factory.
func NewStrategy(p Params) (Strategy, error) {
	switch p.Algorithm {
	case models.AlgorithmLinear:
		return Linear{}, nil
	case models.AlgorithmMovingAvg:
		w := p.MovingAvgWindow
		if w == 0 {
			w = DefaultMovingAvgWindow
		}
		if w < 1 {
			return nil, invalidParameter("movingAvgWindow must be >= 1, got %d", w)
		}
		return MovingAverage{Window: w}, nil
	case models.AlgorithmExpSmoothing:
		a := p.SmoothingFactor
		if a == 0 {
			a = DefaultSmoothingFactor
		}
		if !(a > 0 && a <= 1) {
			return nil, invalidParameter("smoothingFactor must be in (0,1], got %v", a)
		}
		return ExpSmoothing{Alpha: a}, nil
	default:
		return nil, invalidParameter("unsupported algorithm %q", p.Algorithm)
	}
}
