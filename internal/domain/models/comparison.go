package models

// AlgorithmScore is the fit of one algorithm over a shared series.
type AlgorithmScore struct {
	Name        string    `json:"name"`
	Code        Algorithm `json:"code"`
	Predictions []float64 `json:"predictions"`
	R2          float64   `json:"r2"`
	RMSE        float64   `json:"rmse"`
	Score       float64   `json:"score"`
	Description string    `json:"description"`
}

// Recommendation names the best scoring algorithm.
type Recommendation struct {
	Algorithm string    `json:"algorithm"`
	Code      Algorithm `json:"code"`
	Reason    string    `json:"reason"`
}

// ComparisonRow is one date of the comparison chart. Historical rows carry Actual only.
type ComparisonRow struct {
	Date         string   `json:"date"`
	Actual       *float64 `json:"actual"`
	Linear       *float64 `json:"linear"`
	MovingAvg    *float64 `json:"movingAvg"`
	ExpSmoothing *float64 `json:"expSmoothing"`
}

// Set stores v under the column of the given algorithm.
func (r *ComparisonRow) Set(alg Algorithm, v float64) {
	switch alg {
	case AlgorithmLinear:
		r.Linear = &v
	case AlgorithmMovingAvg:
		r.MovingAvg = &v
	case AlgorithmExpSmoothing:
		r.ExpSmoothing = &v
	}
}

// ComparisonResult is the output of running every algorithm on the same series.
type ComparisonResult struct {
	Algorithms     []AlgorithmScore `json:"algorithms"`
	Actual         []float64        `json:"actual"`
	ChartData      []ComparisonRow  `json:"chartData"`
	Recommendation *Recommendation  `json:"recommendation"`
}
