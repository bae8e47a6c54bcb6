package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"OeeForecast/internal/domain/models"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlertHub_Broadcast(t *testing.T) {
	hub := NewAlertHub(nil, nil)
	e := echo.New()
	hub.RegisterRoutes(e)
	srv := httptest.NewServer(e)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/alerts"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	ev := &models.AlertEvent{ID: "a1", Alert: models.Alert{MachineID: 2, Severity: models.SeverityMedium}}
	require.NoError(t, hub.Notify(context.Background(), []*models.AlertEvent{ev}))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got Message
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "oee.alerts", got.Type)
	require.Len(t, got.Alerts, 1)
	assert.Equal(t, "a1", got.Alerts[0].ID)

	conn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 10*time.Millisecond)
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://plant.example"})

	ok := httptest.NewRequest(http.MethodGet, "/", nil)
	ok.Header.Set("Origin", "https://plant.example")
	assert.True(t, check(ok))

	bad := httptest.NewRequest(http.MethodGet, "/", nil)
	bad.Header.Set("Origin", "https://evil.example")
	assert.False(t, check(bad))

	assert.True(t, originChecker(nil)(bad))
}
