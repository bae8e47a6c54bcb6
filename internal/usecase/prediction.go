package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"OeeForecast/internal/domain/models"
	domrepo "OeeForecast/internal/domain/repository"
	domsvc "OeeForecast/internal/domain/service"
	"OeeForecast/internal/services/alerting"
	"OeeForecast/internal/services/forecast"
	"OeeForecast/internal/services/threshold"
	applogger "OeeForecast/pkg/logger"
	xutil "OeeForecast/pkg/util"

	"golang.org/x/sync/errgroup"
)

// PredictParams describes one fleet prediction run.
type PredictParams struct {
	UserID         int64
	HistoricalDays int
	Request        models.ForecastRequest
	DropAlert      float64
	MachineIDs     []int64
	ConfigID       int64
	IncludeSeries  bool
}

// PredictionUseCase forecasts every machine of the fleet and derives alerts.
type PredictionUseCase struct {
	source      domrepo.OeeSource
	configs     domrepo.PredictionConfigStore
	forecaster  domsvc.Forecaster
	resolver    domsvc.ThresholdResolver
	evaluator   domsvc.AlertEvaluator
	metrics     domrepo.Metrics
	l           *applogger.Logger
	concurrency int
	timeout     time.Duration
	now         func() time.Time
}

// PredictionOption configures PredictionUseCase.
type PredictionOption func(*PredictionUseCase)

// WithConcurrency bounds how many machines are forecast at once.
func WithConcurrency(n int) PredictionOption {
	return func(uc *PredictionUseCase) {
		if n > 0 {
			uc.concurrency = n
		}
	}
}

// WithTimeout bounds a whole run.
func WithTimeout(d time.Duration) PredictionOption {
	return func(uc *PredictionUseCase) {
		if d > 0 {
			uc.timeout = d
		}
	}
}

// WithNow replaces time.Now.
func WithNow(now func() time.Time) PredictionOption {
	return func(uc *PredictionUseCase) {
		if now != nil {
			uc.now = now
		}
	}
}

func NewPredictionUseCase(
	source domrepo.OeeSource,
	configs domrepo.PredictionConfigStore,
	forecaster domsvc.Forecaster,
	resolver domsvc.ThresholdResolver,
	evaluator domsvc.AlertEvaluator,
	metrics domrepo.Metrics,
	l *applogger.Logger,
	opts ...PredictionOption,
) *PredictionUseCase {
	uc := &PredictionUseCase{
		source:      source,
		configs:     configs,
		forecaster:  forecaster,
		resolver:    resolver,
		evaluator:   evaluator,
		metrics:     metrics,
		l:           l,
		concurrency: 8,
		timeout:     30 * time.Second,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

type machineOutcome struct {
	prediction *models.MachinePrediction
	alerts     []models.Alert
	skipped    bool
	err        error
}

// Predict runs the selected algorithm for each machine. Machines with too little history are
// listed in Skipped; an invalid parameter aborts the run.
func (uc *PredictionUseCase) Predict(ctx context.Context, p PredictParams) (*models.PredictionReport, error) {
	start := uc.now()
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	if err := uc.applyConfig(ctx, &p); err != nil {
		return nil, err
	}
	req := p.Request
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	since := xutil.DaysAgo(start, p.HistoricalDays)
	fleet, err := uc.source.GetFleetDailyOee(ctx, since, p.MachineIDs)
	if err != nil {
		uc.metrics.RecordError("oee_source")
		return nil, fmt.Errorf("load fleet oee: %w", err)
	}

	outcomes := make([]machineOutcome, len(fleet))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.concurrency)
	for i := range fleet {
		g.Go(func() error {
			outcomes[i] = uc.predictMachine(gctx, fleet[i], req, p.DropAlert, p.IncludeSeries)
			if o := outcomes[i]; o.err != nil && errors.Is(o.err, forecast.ErrInvalidParameter) {
				return o.err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &models.PredictionReport{
		Predictions: make([]models.MachinePrediction, 0, len(fleet)),
		Alerts:      make([]models.Alert, 0),
		Settings:    req,
		GeneratedAt: start.UTC(),
	}
	for i, o := range outcomes {
		switch {
		case o.skipped:
			report.Skipped = append(report.Skipped, fleet[i].MachineID)
		case o.err != nil:
			if report.Errors == nil {
				report.Errors = make(map[int64]string)
			}
			report.Errors[fleet[i].MachineID] = o.err.Error()
		default:
			report.Predictions = append(report.Predictions, *o.prediction)
			report.Alerts = append(report.Alerts, o.alerts...)
		}
	}
	sort.SliceStable(report.Predictions, func(a, b int) bool {
		return report.Predictions[a].PredictedOee < report.Predictions[b].PredictedOee
	})
	alerting.SortBySeverity(report.Alerts)
	report.ChartData = uc.chart(fleet, req, start)

	uc.metrics.RecordLatency("predict_fleet", uc.now().Sub(start).Seconds())
	uc.l.Info("fleet prediction done",
		applogger.String("algorithm", string(req.Algorithm)),
		applogger.Int("machines", len(fleet)),
		applogger.Int("predicted", len(report.Predictions)),
		applogger.Int("skipped", len(report.Skipped)),
		applogger.Int("alerts", len(report.Alerts)),
		applogger.Duration("duration_ms", uc.now().Sub(start)),
	)
	return report, nil
}

func (uc *PredictionUseCase) predictMachine(ctx context.Context, s models.MachineSeries, req models.ForecastRequest, dropAlert float64, includeSeries bool) machineOutcome {
	if err := ctx.Err(); err != nil {
		return machineOutcome{err: err}
	}
	req.MachineID = s.MachineID
	res, err := uc.forecaster.Forecast(s.Observations, req)
	if err != nil {
		if errors.Is(err, forecast.ErrInsufficientData) {
			uc.metrics.RecordForecast(string(req.Algorithm), "skipped")
			return machineOutcome{skipped: true}
		}
		uc.metrics.RecordForecast(string(req.Algorithm), "error")
		return machineOutcome{err: err}
	}
	uc.metrics.RecordForecast(string(req.Algorithm), "ok")

	name := machineName(s)
	values := s.Values()
	current := values[len(values)-1]
	predicted := res.Last()

	record := uc.resolver.Resolve(ctx, s.MachineID)
	eff := threshold.Effective(record, req.AlertThreshold, dropAlert)
	alerts := uc.evaluator.Evaluate(s.MachineID, current, res, eff)
	for i := range alerts {
		alerts[i].MachineName = name
	}
	uc.metrics.RecordPredictedOee(name, predicted)

	mp := &models.MachinePrediction{
		MachineID:       s.MachineID,
		MachineName:     name,
		CurrentOee:      current,
		PredictedOee:    predicted,
		Change:          predicted - current,
		Confidence:      forecast.Confidence(values, req, res),
		Recommendation:  alerting.Recommend(predicted - current),
		ThresholdSource: eff.Source,
	}
	if includeSeries {
		mp.Forecast = &res
	}
	return machineOutcome{prediction: mp, alerts: alerts}
}

// chart fits the same algorithm to the fleet daily average. History rows carry the average,
// future rows start the day after now.
func (uc *PredictionUseCase) chart(fleet []models.MachineSeries, req models.ForecastRequest, now time.Time) []models.ChartPoint {
	agg := fleetAverage(fleet)
	rows := make([]models.ChartPoint, 0, len(agg)+req.PredictionDays)
	for _, o := range agg {
		v := o.Oee
		rows = append(rows, models.ChartPoint{Date: xutil.DateKey(o.Date), Actual: &v})
	}

	res, err := uc.forecaster.Forecast(agg, req)
	if err != nil {
		return rows
	}
	for i, date := range xutil.NextDays(now, req.PredictionDays) {
		p, lo, hi := res.PointForecasts[i], res.LowerBound[i], res.UpperBound[i]
		rows = append(rows, models.ChartPoint{Date: date, Predicted: &p, LowerBound: &lo, UpperBound: &hi})
	}
	return rows
}

func (uc *PredictionUseCase) applyConfig(ctx context.Context, p *PredictParams) error {
	if p.ConfigID <= 0 || uc.configs == nil {
		return nil
	}
	cfg, err := uc.configs.Get(ctx, p.UserID, p.ConfigID)
	if err != nil {
		if errors.Is(err, domrepo.ErrNotFound) {
			return fmt.Errorf("prediction config %d: %w", p.ConfigID, domrepo.ErrNotFound)
		}
		return fmt.Errorf("load prediction config: %w", err)
	}
	cfg.ApplyTo(&p.Request)
	if cfg.HistoricalDays > 0 {
		p.HistoricalDays = cfg.HistoricalDays
	}
	return nil
}

// validateRequest rejects bad parameters before any data is loaded.
func validateRequest(req models.ForecastRequest) error {
	_, err := forecast.NewStrategy(forecast.Params{
		Algorithm:       req.Algorithm,
		MovingAvgWindow: req.MovingAvgWindow,
		SmoothingFactor: req.SmoothingFactor,
	})
	if err != nil {
		return err
	}
	if req.PredictionDays < 1 {
		return &forecast.Error{Kind: forecast.KindInvalidParameter, Msg: "predictionDays must be >= 1"}
	}
	return nil
}

// fleetAverage averages machine values per date, oldest first.
func fleetAverage(fleet []models.MachineSeries) []models.OeeObservation {
	type acc struct {
		date  time.Time
		sum   float64
		count int
	}
	byDay := make(map[string]*acc)
	for _, s := range fleet {
		for _, o := range s.Observations {
			k := xutil.DateKey(o.Date)
			a, ok := byDay[k]
			if !ok {
				a = &acc{date: o.Date}
				byDay[k] = a
			}
			a.sum += o.Oee
			a.count++
		}
	}
	out := make([]models.OeeObservation, 0, len(byDay))
	for _, a := range byDay {
		out = append(out, models.OeeObservation{Date: a.date, Oee: a.sum / float64(a.count)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

func machineName(s models.MachineSeries) string {
	if s.MachineName != "" {
		return s.MachineName
	}
	return "Machine " + strconv.FormatInt(s.MachineID, 10)
}
