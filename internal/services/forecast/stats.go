package forecast

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	// MinObservations is the shortest series a forecast is fitted on.
	MinObservations = 7

	minOee = 0.0
	maxOee = 100.0
)

// ZScore returns the normal quantile for a confidence level in percent.
// Levels other than 99, 95 and 90 use 1.28.
func ZScore(level float64) float64 {
	switch level {
	case 99:
		return 2.576
	case 95:
		return 1.96
	case 90:
		return 1.645
	default:
		return 1.28
	}
}

// Clamp bounds v to the OEE percentage range. Non-finite values become 0.
func Clamp(v float64) float64 {
	v = Sanitize(v)
	return math.Max(minOee, math.Min(maxOee, v))
}

// Sanitize replaces NaN and infinities with 0.
func Sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func clampUnit(v float64) float64 {
	v = Sanitize(v)
	return math.Max(0, math.Min(1, v))
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stat.Mean(xs, nil)
}

// sampleVariance is the n-1 variance; series shorter than two points have none.
func sampleVariance(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	return Sanitize(stat.Variance(xs, nil))
}

func popVariance(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return Sanitize(stat.PopVariance(xs, nil))
}

// sumSquaredDeviation returns Σ(x-center)².
func sumSquaredDeviation(xs []float64, center float64) float64 {
	sq := make([]float64, len(xs))
	for i, x := range xs {
		d := x - center
		sq[i] = d * d
	}
	return floats.Sum(sq)
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}
