package forecast

import (
	"math"

	"OeeForecast/internal/domain/models"

	"gonum.org/v1/gonum/stat"
)

// Linear is ordinary least squares on (day index, value) with days numbered 1..n.
// Step h of the horizon is evaluated at n+h.
type Linear struct{}

func (Linear) Algorithm() models.Algorithm { return models.AlgorithmLinear }

func (Linear) Fit(values []float64, horizon int) Fit {
	n := len(values)
	slope, intercept := regress(values)

	ssRes := 0.0
	for i, y := range values {
		r := y - (slope*float64(i+1) + intercept)
		ssRes += r * r
	}
	ssTot := sumSquaredDeviation(values, mean(values))

	r2 := 0.0
	if ssTot > 0 {
		r2 = clampUnit(1 - ssRes/ssTot)
	}
	rmse := 0.0
	if n > 0 {
		rmse = Sanitize(math.Sqrt(ssRes / float64(n)))
	}

	points := make([]float64, horizon)
	for h := 1; h <= horizon; h++ {
		points[h-1] = slope*float64(n+h) + intercept
	}
	return Fit{Points: points, Spread: rmse, R2: r2, RMSE: rmse}
}

// regress returns slope and intercept. A zero OLS denominator yields a flat line at the mean.
func regress(values []float64) (slope, intercept float64) {
	n := len(values)
	if n == 0 {
		return 0, 0
	}
	xs := make([]float64, n)
	var sumX, sumX2 float64
	for i := range xs {
		x := float64(i + 1)
		xs[i] = x
		sumX += x
		sumX2 += x * x
	}
	if float64(n)*sumX2-sumX*sumX == 0 {
		return 0, mean(values)
	}
	intercept, slope = stat.LinearRegression(xs, values, nil, false)
	return Sanitize(slope), Sanitize(intercept)
}
