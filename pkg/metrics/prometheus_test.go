package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewWithRegisterer(reg)

	r.RecordForecast("linear", "ok")
	r.RecordForecast("linear", "ok")
	r.RecordForecast("moving_avg", "skipped")
	r.RecordAlert("high")
	r.RecordPredictedOee("Press 1", 61.5)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.forecasts.WithLabelValues("linear", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.forecasts.WithLabelValues("moving_avg", "skipped")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.alerts.WithLabelValues("high")))
	assert.Equal(t, 61.5, testutil.ToFloat64(r.predictedOee.WithLabelValues("Press 1")))
}
