package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"OeeForecast/internal/domain/models"
	domrepo "OeeForecast/internal/domain/repository"
	domsvc "OeeForecast/internal/domain/service"
	"OeeForecast/internal/services/forecast"
	applogger "OeeForecast/pkg/logger"
	xutil "OeeForecast/pkg/util"
)

// AnalysisUseCase serves the algorithm comparison and machine history.
type AnalysisUseCase struct {
	source     domrepo.OeeSource
	comparator domsvc.AlgorithmComparator
	metrics    domrepo.Metrics
	l          *applogger.Logger
	now        func() time.Time
}

func NewAnalysisUseCase(source domrepo.OeeSource, comparator domsvc.AlgorithmComparator, metrics domrepo.Metrics, l *applogger.Logger) *AnalysisUseCase {
	return &AnalysisUseCase{source: source, comparator: comparator, metrics: metrics, l: l, now: time.Now}
}

// Compare scores every algorithm on the fleet daily average. Too little history yields an
// empty result without a recommendation.
func (uc *AnalysisUseCase) Compare(ctx context.Context, days, predictionDays int) (*models.ComparisonResult, error) {
	start := uc.now()
	series, err := uc.source.GetAggregateDailyOee(ctx, xutil.DaysAgo(start, days), nil)
	if err != nil {
		uc.metrics.RecordError("oee_source")
		return nil, fmt.Errorf("load aggregate oee: %w", err)
	}

	res, err := uc.comparator.Compare(series, predictionDays, start)
	if errors.Is(err, forecast.ErrInsufficientData) {
		return &models.ComparisonResult{
			Algorithms: []models.AlgorithmScore{},
			Actual:     []float64{},
			ChartData:  []models.ComparisonRow{},
		}, nil
	}
	if err != nil {
		return nil, err
	}

	uc.metrics.RecordLatency("compare_algorithms", uc.now().Sub(start).Seconds())
	if res.Recommendation != nil {
		uc.l.Debug("algorithm comparison done",
			applogger.Int("points", len(series)),
			applogger.String("recommended", string(res.Recommendation.Code)),
		)
	}
	return &res, nil
}

// History returns a machine's daily series over the last days.
func (uc *AnalysisUseCase) History(ctx context.Context, machineID int64, days int) ([]models.OeeObservation, error) {
	obs, err := uc.source.GetDailyOee(ctx, machineID, xutil.DaysAgo(uc.now(), days))
	if err != nil {
		uc.metrics.RecordError("oee_source")
		return nil, fmt.Errorf("load machine history: %w", err)
	}
	return obs, nil
}
