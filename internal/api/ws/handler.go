package ws

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/browser/internal/api/middleware"
	"github.com/GriffinCanCode/AgentOS/browser/internal/domain/session"
	"github.com/GriffinCanCode/AgentOS/browser/internal/domain/tabs"
	"github.com/GriffinCanCode/AgentOS/browser/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/browser/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/browser/internal/shared/utils"
)

const (
	writeTimeout = 10 * time.Second
	eventBuffer  = 16
)

// Message is a client-to-server message
type Message struct {
	Type string `json:"type"`
}

// Handler manages WebSocket connections
type Handler struct {
	session  *session.Manager
	logger   *logging.Logger
	metrics  *monitoring.Metrics
	upgrader websocket.Upgrader
}

// NewHandler creates a new WebSocket handler. Upgrades are accepted from
// the origins cors allows. metrics may be nil.
func NewHandler(sessionManager *session.Manager, cors middleware.CORSConfig, logger *logging.Logger, metrics *monitoring.Metrics) *Handler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handler{
		session:  sessionManager,
		logger:   logger.Named("ws"),
		metrics:  metrics,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return cors.AllowOrigin(r.Header.Get("Origin"))
			},
		},
	}
}

// safeConn serializes writes; gorilla allows one concurrent writer
type safeConn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

func (c *safeConn) send(data interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return c.ws.WriteJSON(data)
}

// HandleConnection handles WebSocket upgrade and messages
func (h *Handler) HandleConnection(c *gin.Context) {
	wsConn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer wsConn.Close()
	wsConn.SetReadLimit(utils.MaxMessageSize)

	if h.metrics != nil {
		h.metrics.IncWSConnections()
		defer h.metrics.DecWSConnections()
	}

	conn := &safeConn{ws: wsConn}
	events, cancel := h.session.Subscribe(eventBuffer)
	defer cancel()

	h.send(conn, map[string]interface{}{
		"type":       "system",
		"message":    "Connected to browser session",
		"session_id": h.session.ID(),
	})

	done := make(chan struct{})
	defer close(done)
	go h.forward(conn, events, done)

	// Listen for messages
	for {
		var msg Message
		if err := wsConn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("WebSocket read error", zap.Error(err))
			}
			return
		}
		h.record("in", msg.Type)

		switch msg.Type {
		case "ping":
			h.send(conn, map[string]interface{}{"type": "pong"})
		case "get_state":
			h.send(conn, map[string]interface{}{
				"type":    "state",
				"session": h.session.View(),
			})
		default:
			h.sendError(conn, "unknown message type")
		}
	}
}

// forward relays state-changed notifications until the subscription closes
// or the connection ends
func (h *Handler) forward(conn *safeConn, events <-chan tabs.Event, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			err := h.send(conn, map[string]interface{}{
				"type":          "state_changed",
				"kind":          ev.Kind,
				"tabs":          ev.Count,
				"current_index": ev.Current,
				"timestamp":     time.Now().Unix(),
			})
			if err != nil {
				return
			}
		}
	}
}

func (h *Handler) send(conn *safeConn, data map[string]interface{}) error {
	if err := conn.send(data); err != nil {
		h.logger.Debug("WebSocket write failed", zap.Error(err))
		return err
	}
	if t, ok := data["type"].(string); ok {
		h.record("out", t)
	}
	return nil
}

func (h *Handler) sendError(conn *safeConn, msg string) error {
	return h.send(conn, map[string]interface{}{
		"type":      "error",
		"message":   msg,
		"timestamp": time.Now().Unix(),
	})
}

func (h *Handler) record(direction, msgType string) {
	if h.metrics != nil {
		h.metrics.RecordWSMessage(direction, msgType)
	}
}
