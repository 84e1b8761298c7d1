package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/todoapp/notifier/internal/delivery"
	"github.com/todoapp/notifier/internal/platform/logger"
	"github.com/todoapp/notifier/internal/service/auth"
)

// Protocol event names.
const (
	EventAuthenticate  = "authenticate"
	EventAuthenticated = "authenticated"
	EventError         = "error"
)

// AuthFailedMessage is the only detail a client gets for a rejected token.
const AuthFailedMessage = "authentication failed"

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 4096
)

// ErrConnectionGone is returned by Push when the registered connection
// closed before the write.
var ErrConnectionGone = errors.New("realtime: connection closed")

type inbound struct {
	Event string `json:"event"`
	Token string `json:"token"`
}

type outbound struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type authenticatedData struct {
	UserID       uuid.UUID `json:"userId"`
	ConnectionID string    `json:"connectionId"`
}

type errorData struct {
	Message string `json:"message"`
}

type conn struct {
	id string
	ws *websocket.Conn

	writeMu sync.Mutex
}

func (c *conn) write(deadline time.Time, msg outbound) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.ws.SetWriteDeadline(deadline); err != nil {
		return err
	}
	return c.ws.WriteJSON(msg)
}

func (c *conn) ping() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

// Hub accepts websocket connections and implements delivery.Pusher.
type Hub struct {
	registry  *delivery.Registry
	validator auth.TokenValidator
	upgrader  websocket.Upgrader
	logger    *slog.Logger

	mu    sync.RWMutex
	conns map[string]*conn
}

var (
	_ http.Handler    = (*Hub)(nil)
	_ delivery.Pusher = (*Hub)(nil)
)

// NewHub creates a Hub recording authenticated connections in registry.
func NewHub(registry *delivery.Registry, validator auth.TokenValidator, log *slog.Logger) *Hub {
	if log == nil {
		log = logger.Discard()
	}
	return &Hub{
		registry:  registry,
		validator: validator,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Clients authenticate with a bearer token, not cookies.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: log.With("component", "realtime_hub"),
		conns:  make(map[string]*conn),
	}
}

// ServeHTTP upgrades the request and serves the connection until it
// closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		h.logger.Debug("websocket upgrade failed", "error", err)
		return
	}

	c := &conn{id: uuid.NewString(), ws: ws}
	h.mu.Lock()
	h.conns[c.id] = c
	h.mu.Unlock()

	log := h.logger.With("connection_id", c.id)
	log.Debug("connection opened")

	stop := make(chan struct{})
	defer func() {
		close(stop)
		h.drop(c)
		if userID, ok := h.registry.Unregister(c.id); ok {
			log.Info("user disconnected", "user_id", userID, "connected_users", h.registry.Len())
		}
		_ = ws.Close()
	}()
	go h.keepAlive(c, stop)

	h.readLoop(r.Context(), log, c)
}

func (h *Hub) readLoop(ctx context.Context, log *slog.Logger, c *conn) {
	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg inbound
		if err := c.ws.ReadJSON(&msg); err != nil {
			var syntaxErr *json.SyntaxError
			if errors.As(err, &syntaxErr) {
				_ = c.write(time.Now().Add(writeWait), outbound{EventError, errorData{"malformed message"}})
				continue
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug("connection read failed", "error", err)
			}
			return
		}

		switch msg.Event {
		case EventAuthenticate:
			h.authenticate(ctx, log, c, msg.Token)
		default:
			log.Debug("ignoring client event", "event", msg.Event)
		}
	}
}

func (h *Hub) authenticate(ctx context.Context, log *slog.Logger, c *conn, token string) {
	claims, err := h.validator.ValidateToken(ctx, token)
	if err != nil {
		log.Debug("authentication rejected", "error", err)
		_ = c.write(time.Now().Add(writeWait), outbound{EventError, errorData{AuthFailedMessage}})
		return
	}

	if old, replaced := h.registry.Register(claims.UserID, c.id); replaced {
		log.Debug("replaced previous connection", "user_id", claims.UserID, "previous_connection_id", old)
	}
	log.Info("user authenticated", "user_id", claims.UserID, "connected_users", h.registry.Len())

	_ = c.write(time.Now().Add(writeWait), outbound{
		Event: EventAuthenticated,
		Data:  authenticatedData{UserID: claims.UserID, ConnectionID: c.id},
	})
}

func (h *Hub) keepAlive(c *conn, stop <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := c.ping(); err != nil {
				return
			}
		}
	}
}

func (h *Hub) drop(c *conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, c.id)
}

// Push implements delivery.Pusher. The write deadline is the earlier of
// ctx's deadline and the default write timeout.
func (h *Hub) Push(ctx context.Context, recipientID uuid.UUID, event string, payload any) (bool, error) {
	handle, ok := h.registry.Lookup(recipientID)
	if !ok {
		return false, nil
	}

	h.mu.RLock()
	c, ok := h.conns[handle]
	h.mu.RUnlock()
	if !ok {
		return false, ErrConnectionGone
	}

	deadline := time.Now().Add(writeWait)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.write(deadline, outbound{Event: event, Data: payload}); err != nil {
		return false, fmt.Errorf("realtime: write %s: %w", event, err)
	}
	return true, nil
}

// Connections returns the number of open connections, authenticated or
// not.
func (h *Hub) Connections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Close closes every open connection. Their handlers then unregister them.
func (h *Hub) Close() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.conns {
		c.writeMu.Lock()
		_ = c.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		c.writeMu.Unlock()
		_ = c.ws.Close()
	}
}
