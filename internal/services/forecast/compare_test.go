package forecast

import (
	"errors"
	"math"
	"testing"
	"time"

	"OeeForecast/internal/domain/models"
)

var today = time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

func TestCompareRecommendsLinearForTrend(t *testing.T) {
	t.Parallel()

	values := make([]float64, 15)
	for i := range values {
		values[i] = 90 - float64(i)
	}
	res, err := NewComparator().Compare(series(values...), 14, today)
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	if res.Recommendation == nil || res.Recommendation.Code != models.AlgorithmLinear {
		t.Fatalf("Recommendation = %+v, want linear", res.Recommendation)
	}
	if len(res.Algorithms) != 3 {
		t.Fatalf("len(Algorithms) = %d, want 3", len(res.Algorithms))
	}
	lin := res.Algorithms[0]
	if math.Abs(lin.Score-1.0) > 1e-6 {
		t.Errorf("linear score = %v, want 1.0", lin.Score)
	}
	for _, a := range res.Algorithms {
		if len(a.Predictions) != 14 {
			t.Errorf("%s: %d predictions, want 14", a.Code, len(a.Predictions))
		}
		if a.R2 < 0 || a.R2 > 1 {
			t.Errorf("%s: R2 = %v", a.Code, a.R2)
		}
	}
}

func TestCompareTiesFollowPriority(t *testing.T) {
	t.Parallel()

	res, err := NewComparator().Compare(constant(80, 10), 5, today)
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	for _, a := range res.Algorithms {
		if math.Abs(a.Score-0.4) > tolerance {
			t.Fatalf("%s: score = %v, want 0.4 on a flat series", a.Code, a.Score)
		}
	}
	if res.Recommendation.Code != models.AlgorithmLinear {
		t.Errorf("Recommendation = %s, want linear on a tie", res.Recommendation.Code)
	}
}

func TestCompareIsDeterministic(t *testing.T) {
	t.Parallel()

	obs := series(72, 65, 78, 70, 69, 74, 71, 68, 73, 70)
	c := NewComparator()
	first, err := c.Compare(obs, 7, today)
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	for i := 0; i < 10; i++ {
		again, _ := c.Compare(obs, 7, today)
		if again.Recommendation.Code != first.Recommendation.Code {
			t.Fatalf("run %d recommended %s, first run %s", i, again.Recommendation.Code, first.Recommendation.Code)
		}
	}
}

func TestCompareChartAxis(t *testing.T) {
	t.Parallel()

	obs := constant(60, 8)
	res, err := NewComparator().Compare(obs, 3, today)
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	if len(res.ChartData) != 11 {
		t.Fatalf("len(ChartData) = %d, want 11", len(res.ChartData))
	}
	hist := res.ChartData[7]
	if hist.Actual == nil || hist.Linear != nil || hist.MovingAvg != nil || hist.ExpSmoothing != nil {
		t.Errorf("historical row = %+v, want actual only", hist)
	}
	future := res.ChartData[8]
	if future.Actual != nil || future.Linear == nil || future.MovingAvg == nil || future.ExpSmoothing == nil {
		t.Errorf("future row = %+v, want forecasts only", future)
	}
	if future.Date != "2024-06-02" {
		t.Errorf("first future date = %s, want 2024-06-02", future.Date)
	}
	if last := res.ChartData[10]; last.Date != "2024-06-04" {
		t.Errorf("last future date = %s, want 2024-06-04", last.Date)
	}
}

func TestCompareInsufficientData(t *testing.T) {
	t.Parallel()

	_, err := NewComparator().Compare(constant(60, 6), 3, today)
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("error = %v, want ErrInsufficientData", err)
	}
}

func TestCustomWeightsChangeRecommendation(t *testing.T) {
	t.Parallel()

	// with the r2 weight at zero the lowest RMSE wins
	obs := series(70, 74, 69, 75, 70, 74, 69, 75, 70, 74)
	c := &Comparator{Weights: ScoreWeights{R2: 0, RMSE: 1}}
	res, err := c.Compare(obs, 3, today)
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	best := res.Algorithms[0]
	for _, a := range res.Algorithms[1:] {
		if a.RMSE < best.RMSE {
			best = a
		}
	}
	if res.Recommendation.Code != best.Code {
		t.Errorf("Recommendation = %s, want lowest-RMSE %s", res.Recommendation.Code, best.Code)
	}
}

func TestScoreWeights(t *testing.T) {
	t.Parallel()

	if got := DefaultScoreWeights.Score(1, 0); math.Abs(got-1) > tolerance {
		t.Errorf("Score(1, 0) = %v, want 1", got)
	}
	if got := DefaultScoreWeights.Score(0.5, 1); math.Abs(got-0.5) > tolerance {
		t.Errorf("Score(0.5, 1) = %v, want 0.5", got)
	}
}
