package forecast

import (
	"math"

	"OeeForecast/internal/domain/models"
)

// ExpSmoothing is single exponential smoothing. The forecast is flat at the final level.
type ExpSmoothing struct {
	Alpha float64
}

func (ExpSmoothing) Algorithm() models.Algorithm { return models.AlgorithmExpSmoothing }

func (e ExpSmoothing) Fit(values []float64, horizon int) Fit {
	if len(values) == 0 {
		return Fit{Points: repeat(0, horizon)}
	}

	level := values[0]
	sse := 0.0
	for _, y := range values[1:] {
		d := y - level
		sse += d * d
		level = e.Alpha*y + (1-e.Alpha)*level
	}

	rmse := 0.0
	if len(values) > 1 {
		rmse = Sanitize(math.Sqrt(sse / float64(len(values)-1)))
	}
	r2 := 0.0
	if ssTot := sumSquaredDeviation(values, mean(values)); ssTot > 0 {
		r2 = clampUnit(1 - sse/ssTot)
	}
	spread := Sanitize(math.Sqrt(popVariance(values)) * (1 - e.Alpha))

	return Fit{Points: repeat(level, horizon), Spread: spread, R2: r2, RMSE: rmse}
}
