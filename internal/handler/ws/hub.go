package ws

import (
	"context"
	"net/http"
	"sync"
	"time"

	"OeeForecast/internal/domain/models"
	applogger "OeeForecast/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendBuffer = 64
)

// Message is the frame pushed to subscribers.
type Message struct {
	Type   string               `json:"type"`
	Alerts []*models.AlertEvent `json:"alerts"`
}

type client struct {
	conn   *websocket.Conn
	send   chan Message
	remote string
}

// AlertHub streams alerts to connected websocket clients.
type AlertHub struct {
	mu       sync.RWMutex
	clients  map[*client]struct{}
	upgrader websocket.Upgrader
	l        *applogger.Logger
}

func NewAlertHub(l *applogger.Logger, allowedOrigins []string) *AlertHub {
	if l == nil {
		l = applogger.Nop()
	}
	h := &AlertHub{clients: make(map[*client]struct{}), l: l}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

func (h *AlertHub) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws/alerts", h.Serve)
}

// Serve upgrades the request and keeps the connection until the client leaves.
func (h *AlertHub) Serve(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.l.Warn("websocket upgrade failed", applogger.Error(err))
		return nil
	}
	cl := &client{conn: conn, send: make(chan Message, sendBuffer), remote: c.RealIP()}
	h.register(cl)

	go h.writePump(cl)
	h.readPump(cl)
	return nil
}

func (h *AlertHub) Name() string { return "websocket" }

// Notify broadcasts alerts. Slow clients drop frames rather than block the caller.
func (h *AlertHub) Notify(_ context.Context, evs []*models.AlertEvent) error {
	if len(evs) == 0 {
		return nil
	}
	msg := Message{Type: "oee.alerts", Alerts: evs}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for cl := range h.clients {
		select {
		case cl.send <- msg:
		default:
			h.l.Warn("websocket send buffer full, dropping alerts", applogger.String("remote", cl.remote))
		}
	}
	return nil
}

// ClientCount returns the number of connected clients.
func (h *AlertHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *AlertHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for cl := range h.clients {
		delete(h.clients, cl)
		close(cl.send)
	}
}

func (h *AlertHub) register(cl *client) {
	h.mu.Lock()
	h.clients[cl] = struct{}{}
	h.mu.Unlock()
	h.l.Debug("websocket client connected", applogger.String("remote", cl.remote))
}

func (h *AlertHub) unregister(cl *client) {
	h.mu.Lock()
	if _, ok := h.clients[cl]; ok {
		delete(h.clients, cl)
		close(cl.send)
	}
	h.mu.Unlock()
	h.l.Debug("websocket client disconnected", applogger.String("remote", cl.remote))
}

func (h *AlertHub) writePump(cl *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = cl.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-cl.send:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = cl.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := cl.conn.WriteJSON(msg); err != nil {
				h.l.Debug("websocket write error", applogger.Error(err))
				return
			}
		case <-ticker.C:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump drains client frames to notice disconnects and pongs.
func (h *AlertHub) readPump(cl *client) {
	defer func() {
		h.unregister(cl)
		_ = cl.conn.Close()
	}()
	cl.conn.SetReadLimit(512)
	_ = cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	cl.conn.SetPongHandler(func(string) error {
		return cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := cl.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}
