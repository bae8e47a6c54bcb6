package forecast

import (
	"fmt"
	"time"

	"OeeForecast/internal/domain/models"
	xutil "OeeForecast/pkg/util"
)

// ScoreWeights weight r2 against the RMSE term when ranking algorithms.
type ScoreWeights struct {
	R2   float64
	RMSE float64
}

// DefaultScoreWeights favours explained variance slightly over absolute error.
var DefaultScoreWeights = ScoreWeights{R2: 0.6, RMSE: 0.4}

// Score computes r2*w.R2 + (1/(1+rmse))*w.RMSE.
func (w ScoreWeights) Score(r2, rmse float64) float64 {
	return Sanitize(r2*w.R2 + (1/(1+rmse))*w.RMSE)
}

var descriptions = map[models.Algorithm]string{
	models.AlgorithmLinear:       "Suits series with a clear linear trend",
	models.AlgorithmMovingAvg:    "Suits series with strong short-term fluctuation",
	models.AlgorithmExpSmoothing: "Suits series where recent values matter most",
}

// Comparator runs every algorithm with its default parameters on the same series.
type Comparator struct {
	Weights ScoreWeights
}

// NewComparator creates a comparator with the default weights.
func NewComparator() *Comparator {
	return &Comparator{Weights: DefaultScoreWeights}
}

// Compare fits all algorithms and recommends the best score. Ties keep the earlier
// algorithm in models.Algorithms order. Forecast rows of the chart start the day after today.
func (c *Comparator) Compare(series []models.OeeObservation, predictionDays int, today time.Time) (models.ComparisonResult, error) {
	if predictionDays < 1 {
		return models.ComparisonResult{}, invalidParameter("predictionDays must be >= 1, got %d", predictionDays)
	}
	if len(series) < MinObservations {
		return models.ComparisonResult{}, insufficientData(len(series))
	}
	values := models.ObservationValues(series)

	res := models.ComparisonResult{
		Algorithms: make([]models.AlgorithmScore, 0, len(models.Algorithms)),
		Actual:     values,
	}
	best := -1
	for _, alg := range models.Algorithms {
		strategy, err := NewStrategy(Params{Algorithm: alg})
		if err != nil {
			return models.ComparisonResult{}, err
		}
		out := band(alg, strategy.Fit(values, predictionDays), 0)
		score := models.AlgorithmScore{
			Name:        alg.DisplayName(),
			Code:        alg,
			Predictions: out.PointForecasts,
			R2:          out.R2,
			RMSE:        out.RMSE,
			Score:       c.Weights.Score(out.R2, out.RMSE),
			Description: descriptions[alg],
		}
		res.Algorithms = append(res.Algorithms, score)
		if best < 0 || score.Score > res.Algorithms[best].Score {
			best = len(res.Algorithms) - 1
		}
	}

	winner := res.Algorithms[best]
	res.Recommendation = &models.Recommendation{
		Algorithm: winner.Name,
		Code:      winner.Code,
		Reason: fmt.Sprintf("%s has R² = %.1f%% and RMSE = %.2f, the best fit for the current data.",
			winner.Name, winner.R2*100, winner.RMSE),
	}
	res.ChartData = comparisonChart(series, res.Algorithms, predictionDays, today)
	return res, nil
}

// comparisonChart lays history and forecasts on one date axis, the same way the prediction
// chart does: future dates run from the day after today.
func comparisonChart(series []models.OeeObservation, algs []models.AlgorithmScore, predictionDays int, today time.Time) []models.ComparisonRow {
	rows := make([]models.ComparisonRow, 0, len(series)+predictionDays)
	for _, o := range series {
		v := o.Oee
		rows = append(rows, models.ComparisonRow{Date: xutil.DateKey(o.Date), Actual: &v})
	}
	future := xutil.NextDays(today, predictionDays)
	for i, date := range future {
		row := models.ComparisonRow{Date: date}
		for _, a := range algs {
			row.Set(a.Code, a.Predictions[i])
		}
		rows = append(rows, row)
	}
	return rows
}
