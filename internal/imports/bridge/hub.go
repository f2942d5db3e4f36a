// Package bridge relays catalog creation events between companion clients
// and live import sessions over websockets.
package bridge

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/altustroy/snab/internal/imports/entity"
	"github.com/altustroy/snab/internal/imports/service"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(_ *http.Request) bool { return true },
}

// client wraps one websocket connection. Writes are serialized because the
// session broadcast and the read-loop acks share the connection.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) write(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

// Hub tracks which connections watch which import session and feeds
// inbound bridge messages to the import service. It is the service's
// Notifier, so every session change reaches its watchers.
type Hub struct {
	mu       sync.RWMutex
	watchers map[string]map[*client]bool
	apply    func(service.BridgeMessage) bool
	logger   *zap.Logger
}

func NewHub(apply func(service.BridgeMessage) bool, logger *zap.Logger) *Hub {
	return &Hub{
		watchers: make(map[string]map[*client]bool),
		apply:    apply,
		logger:   logger,
	}
}

// ServeSession upgrades the request and pumps bridge messages for one
// session until the peer disconnects.
func (h *Hub) ServeSession(w http.ResponseWriter, r *http.Request, sessionID string) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	c := &client{conn: conn}
	h.register(sessionID, c)
	defer func() {
		h.unregister(sessionID, c)
		conn.Close()
	}()

	if err := c.write(map[string]interface{}{
		"type":       "connected",
		"session_id": sessionID,
	}); err != nil {
		return err
	}

	conn.SetReadLimit(64 << 10)
	for {
		var msg service.BridgeMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("bridge websocket closed", zap.String("session_id", sessionID), zap.Error(err))
			}
			return nil
		}
		applied := h.apply(msg)
		if err := c.write(map[string]interface{}{
			"type":    "ack",
			"applied": applied,
		}); err != nil {
			return nil
		}
	}
}

// SessionUpdated broadcasts the session to everyone watching it.
func (h *Hub) SessionUpdated(sess *entity.ImportSession) {
	h.mu.RLock()
	conns := make([]*client, 0, len(h.watchers[sess.ID]))
	for c := range h.watchers[sess.ID] {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	payload := map[string]interface{}{
		"type":    "sessionUpdated",
		"session": sess,
	}
	for _, c := range conns {
		if err := c.write(payload); err != nil {
			h.logger.Debug("bridge broadcast failed", zap.String("session_id", sess.ID), zap.Error(err))
		}
	}
}

func (h *Hub) register(sessionID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.watchers[sessionID] == nil {
		h.watchers[sessionID] = make(map[*client]bool)
	}
	h.watchers[sessionID][c] = true
}

func (h *Hub) unregister(sessionID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.watchers[sessionID], c)
	if len(h.watchers[sessionID]) == 0 {
		delete(h.watchers, sessionID)
	}
}
