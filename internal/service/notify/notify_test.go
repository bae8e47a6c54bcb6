package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"OeeForecast/internal/domain/models"
	xhttp "OeeForecast/pkg/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
)

func sampleEvent() *models.AlertEvent {
	return &models.AlertEvent{
		ID: "ev-1",
		Alert: models.Alert{
			MachineID:      4,
			MachineName:    "Press 4",
			Severity:       models.SeverityHigh,
			CurrentValue:   76,
			PredictedValue: 58,
			ChangeDelta:    -18,
			Message:        "OEE forecast drops 18.0% over the next 14 days",
			Recommendation: "inspect/maintain equipment",
		},
	}
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "[OEE ALERT - HIGH] Press 4", Subject(sampleEvent().Alert))
	assert.Equal(t, "[OEE ALERT - LOW] Machine 9", Subject(models.Alert{MachineID: 9, Severity: models.SeverityLow}))
}

func partContent(t *testing.T, m *mail.Msg, ct mail.ContentType) string {
	t.Helper()
	for _, p := range m.GetParts() {
		if p.GetContentType() == ct {
			b, err := p.GetContent()
			require.NoError(t, err)
			return string(b)
		}
	}
	t.Fatalf("no %s part", ct)
	return ""
}

func TestEmailNotifier_SendTo(t *testing.T) {
	var got []*mail.Msg
	send := func(_ context.Context, msgs ...*mail.Msg) error {
		got = append(got, msgs...)
		return nil
	}
	n, err := NewEmailNotifier(EmailConfig{Host: "smtp.local", From: "oee@plant.local"}, WithSendFunc(send))
	require.NoError(t, err)

	require.NoError(t, n.SendTo(context.Background(), []string{"ops@plant.local"}, sampleEvent()))
	require.Len(t, got, 1)
	m := got[0]

	to, err := m.GetRecipients()
	require.NoError(t, err)
	assert.Equal(t, []string{"ops@plant.local"}, to)
	assert.Equal(t, []string{"[OEE ALERT - HIGH] Press 4"}, m.GetGenHeader(mail.HeaderSubject))

	html := partContent(t, m, mail.TypeTextHTML)
	assert.Contains(t, html, "#ef4444")
	assert.Contains(t, html, "58.0%")
	assert.Contains(t, html, "-18.0%")
	assert.Contains(t, partContent(t, m, mail.TypeTextPlain), "Predicted OEE: 58.0%")
}

func TestEmailNotifier_NotifySendsOneBatch(t *testing.T) {
	calls, msgs := 0, 0
	send := func(_ context.Context, m ...*mail.Msg) error {
		calls++
		msgs += len(m)
		return nil
	}
	n, err := NewEmailNotifier(EmailConfig{Host: "smtp.local", From: "oee@plant.local",
		Recipients: []string{"a@plant.local", "b@plant.local"}}, WithSendFunc(send))
	require.NoError(t, err)

	require.NoError(t, n.Notify(context.Background(), []*models.AlertEvent{sampleEvent(), sampleEvent()}))
	assert.Equal(t, 1, calls)
	assert.Equal(t, 2, msgs)
}

func TestEmailNotifier_RejectsBadAddress(t *testing.T) {
	n, err := NewEmailNotifier(EmailConfig{Host: "smtp.local", From: "oee@plant.local"},
		WithSendFunc(func(context.Context, ...*mail.Msg) error { return nil }))
	require.NoError(t, err)
	assert.Error(t, n.SendTo(context.Background(), []string{"not an address"}, sampleEvent()))
}

func TestEmailNotifier_BuildsClient(t *testing.T) {
	n, err := NewEmailNotifier(EmailConfig{Host: "smtp.local", Port: 2525, Username: "u", Password: "p", From: "oee@plant.local"})
	require.NoError(t, err)
	assert.NotNil(t, n.send)

	_, err = NewEmailNotifier(EmailConfig{From: "oee@plant.local"})
	assert.Error(t, err)
}

func TestEmailNotifier_NoRecipientsIsNoop(t *testing.T) {
	called := false
	send := func(context.Context, ...*mail.Msg) error {
		called = true
		return nil
	}
	n, err := NewEmailNotifier(EmailConfig{Host: "smtp.local"}, WithSendFunc(send))
	require.NoError(t, err)
	require.NoError(t, n.Notify(context.Background(), []*models.AlertEvent{sampleEvent()}))
	assert.False(t, called)
}

func TestWebhookNotifier_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		var p WebhookPayload
		_ = json.NewDecoder(r.Body).Decode(&p)
		if len(p.Alerts) != 1 || p.Source != "oee-forecast" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := xhttp.NewClient(xhttp.WithBackoff(time.Millisecond))
	n := NewWebhookNotifier(client, srv.URL, 3)
	require.NoError(t, n.Notify(context.Background(), []*models.AlertEvent{sampleEvent()}))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

type stubNotifier struct {
	name string
	err  error
	got  int
}

func (s *stubNotifier) Name() string { return s.name }

func (s *stubNotifier) Notify(_ context.Context, evs []*models.AlertEvent) error {
	s.got += len(evs)
	return s.err
}

func TestFanout_ContinuesPastFailures(t *testing.T) {
	a := &stubNotifier{name: "a", err: errors.New("down")}
	b := &stubNotifier{name: "b"}
	f := NewFanout(nil, a, nil, b)

	err := f.Notify(context.Background(), []*models.AlertEvent{sampleEvent(), sampleEvent()})
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "a: down"))
	assert.Equal(t, 2, a.got)
	assert.Equal(t, 2, b.got)

	var de *DeliveryError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, []string{"a"}, de.Failed())

	// retrying through the remainder skips the target that already succeeded
	_ = de.Remaining().Notify(context.Background(), []*models.AlertEvent{sampleEvent()})
	assert.Equal(t, 3, a.got)
	assert.Equal(t, 2, b.got)
}

func TestFanout_AllDelivered(t *testing.T) {
	f := NewFanout(nil, &stubNotifier{name: "a"}, &stubNotifier{name: "b"})
	assert.NoError(t, f.Notify(context.Background(), []*models.AlertEvent{sampleEvent()}))
}
