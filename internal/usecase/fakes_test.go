package usecase

import (
	"context"
	"sync"
	"time"

	"OeeForecast/internal/domain/models"
	domrepo "OeeForecast/internal/domain/repository"
	"OeeForecast/pkg/queue"
)

var testNow = time.Date(2024, 3, 20, 9, 30, 0, 0, time.UTC)

func series(id int64, name string, values ...float64) models.MachineSeries {
	s := models.MachineSeries{MachineID: id, MachineName: name}
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, v := range values {
		s.Observations = append(s.Observations, models.OeeObservation{
			MachineID: id, MachineName: name, Date: base.AddDate(0, 0, i), Oee: v,
		})
	}
	return s
}

func ramp(from, step float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = from + step*float64(i)
	}
	return out
}

type fakeSource struct {
	domrepo.OeeSource
	fleet     []models.MachineSeries
	aggregate []models.OeeObservation
	since     time.Time
	ids       []int64
	err       error
}

func (f *fakeSource) GetFleetDailyOee(_ context.Context, since time.Time, ids []int64) ([]models.MachineSeries, error) {
	f.since, f.ids = since, ids
	return f.fleet, f.err
}

func (f *fakeSource) GetAggregateDailyOee(_ context.Context, since time.Time, _ []int64) ([]models.OeeObservation, error) {
	f.since = since
	return f.aggregate, f.err
}

func (f *fakeSource) GetDailyOee(_ context.Context, id int64, since time.Time) ([]models.OeeObservation, error) {
	f.since, f.ids = since, []int64{id}
	for _, s := range f.fleet {
		if s.MachineID == id {
			return s.Observations, nil
		}
	}
	return nil, f.err
}

type fixedResolver struct{ record models.AlertThreshold }

func (r fixedResolver) Resolve(context.Context, int64) models.AlertThreshold { return r.record }

type fakeConfigStore struct {
	domrepo.PredictionConfigStore
	configs map[int64]models.PredictionConfig
	def     *models.PredictionConfig
}

func (s *fakeConfigStore) Get(_ context.Context, _ int64, id int64) (*models.PredictionConfig, error) {
	c, ok := s.configs[id]
	if !ok {
		return nil, domrepo.ErrNotFound
	}
	return &c, nil
}

func (s *fakeConfigStore) GetDefault(context.Context, int64, models.ConfigType) (*models.PredictionConfig, error) {
	if s.def == nil {
		return nil, domrepo.ErrNotFound
	}
	return s.def, nil
}

type fakeThresholdStore struct {
	domrepo.ThresholdStore
	rows    map[int64]models.AlertThreshold
	nextID  int64
	deleted []int64
}

func (s *fakeThresholdStore) Create(_ context.Context, t *models.AlertThreshold) (int64, error) {
	s.nextID++
	t.ID = s.nextID
	t.IsActive = true
	s.rows[t.ID] = *t
	return t.ID, nil
}

func (s *fakeThresholdStore) Get(_ context.Context, id int64) (*models.AlertThreshold, error) {
	t, ok := s.rows[id]
	if !ok {
		return nil, domrepo.ErrNotFound
	}
	return &t, nil
}

func (s *fakeThresholdStore) Update(_ context.Context, id int64, p models.ThresholdPatch) error {
	t, ok := s.rows[id]
	if !ok {
		return domrepo.ErrNotFound
	}
	if p.TargetOee != nil {
		t.TargetOee = *p.TargetOee
	}
	s.rows[id] = t
	return nil
}

func (s *fakeThresholdStore) Delete(_ context.Context, id int64) error {
	delete(s.rows, id)
	s.deleted = append(s.deleted, id)
	return nil
}

type recordingEvents struct {
	mu  sync.Mutex
	evs []models.ThresholdEvent
}

func (r *recordingEvents) PublishThresholdEvent(_ context.Context, ev models.ThresholdEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evs = append(r.evs, ev)
	return nil
}

type recordingDispatcher struct {
	alerts  []models.Alert
	horizon int
	alg     models.Algorithm
}

func (d *recordingDispatcher) Dispatch(_ context.Context, alerts []models.Alert, horizon int, alg models.Algorithm) ([]*models.AlertEvent, error) {
	d.alerts, d.horizon, d.alg = alerts, horizon, alg
	out := make([]*models.AlertEvent, len(alerts))
	for i := range alerts {
		out[i] = &models.AlertEvent{Alert: alerts[i]}
	}
	return out, nil
}

type fakeQueue struct {
	msgType string
	payload interface{}
	status  map[string]*queue.Status
}

func (q *fakeQueue) Enqueue(_ context.Context, msgType string, payload interface{}) (string, error) {
	q.msgType, q.payload = msgType, payload
	return "job-1", nil
}

func (q *fakeQueue) Status(_ context.Context, id string) (*queue.Status, error) {
	st, ok := q.status[id]
	if !ok {
		return nil, queue.ErrNotFound
	}
	return st, nil
}
