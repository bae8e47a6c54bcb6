package forecast

import (
	"math"

	"OeeForecast/internal/domain/models"
)

// MovingAverage forecasts the mean of the last Window points for every step.
type MovingAverage struct {
	Window int
}

func (MovingAverage) Algorithm() models.Algorithm { return models.AlgorithmMovingAvg }

func (m MovingAverage) Fit(values []float64, horizon int) Fit {
	w := m.Window
	if w > len(values) {
		w = len(values)
	}
	window := values[len(values)-w:]
	avg := mean(window)

	// heuristic band: sample variance of the window
	spread := Sanitize(math.Sqrt(sampleVariance(window)))

	// fit quality uses the population variance of the window
	pVar := popVariance(window)
	r2 := 0.0
	if len(values) > 0 {
		if around := sumSquaredDeviation(values, avg) / float64(len(values)); around > 0 {
			r2 = clampUnit(1 - pVar/around)
		}
	}
	return Fit{Points: repeat(avg, horizon), Spread: spread, R2: r2, RMSE: Sanitize(math.Sqrt(pVar))}
}
