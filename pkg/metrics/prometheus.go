package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	forecasts    *prometheus.CounterVec
	alerts       *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec
	predictedOee *prometheus.GaugeVec
	latency      *prometheus.HistogramVec
}

// New creates a recorder registered on the default registry.
func New() *Recorder {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates a recorder registered on reg. A nil reg leaves the collectors unregistered.
func NewWithRegisterer(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		forecasts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oee_forecasts_total",
				Help: "Total number of machine forecasts by algorithm and outcome",
			},
			[]string{"algorithm", "outcome"},
		),
		alerts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oee_alerts_total",
				Help: "Total number of forecast alerts raised",
			},
			[]string{"severity"},
		),
		errorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oee_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		predictedOee: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "oee_predicted_value",
				Help: "Last predicted OEE at the end of the horizon",
			},
			[]string{"machine"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "oee_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
	if reg != nil {
		reg.MustRegister(r.forecasts, r.alerts, r.errorsTotal, r.predictedOee, r.latency)
	}
	return r
}

// RecordForecast counts one forecast attempt.
func (r *Recorder) RecordForecast(algorithm, outcome string) {
	r.forecasts.WithLabelValues(algorithm, outcome).Inc()
}

// RecordAlert counts one alert.
func (r *Recorder) RecordAlert(severity string) {
	r.alerts.WithLabelValues(severity).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// RecordPredictedOee stores the horizon-end forecast of a machine.
func (r *Recorder) RecordPredictedOee(machine string, value float64) {
	r.predictedOee.WithLabelValues(machine).Set(value)
}

// Nop discards every measurement.
type Nop struct{}

func (Nop) RecordForecast(string, string)      {}
func (Nop) RecordAlert(string)                 {}
func (Nop) RecordError(string)                 {}
func (Nop) RecordLatency(string, float64)      {}
func (Nop) RecordPredictedOee(string, float64) {}
