package server

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/decred/slog"
	"github.com/gorilla/websocket"

	"github.com/vctt94/pokertable/pkg/poker"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Authenticator resolves the player identity for an incoming websocket
// request. The default trusts the "player" query parameter, which is
// only acceptable behind a trusted front end.
type Authenticator func(r *http.Request) (playerID string, err error)

func queryAuthenticator(r *http.Request) (string, error) {
	playerID := r.URL.Query().Get("player")
	if playerID == "" {
		return "", errors.New("missing player id")
	}
	return playerID, nil
}

type wsClient struct {
	conn     *websocket.Conn
	send     chan []byte
	playerID string
	tableID  string
}

// Hub tracks websocket viewers per table and fans table snapshots out
// to them, redacted per viewer.
type Hub struct {
	log  slog.Logger
	srv  *Server
	auth Authenticator

	upgrader websocket.Upgrader

	mu      sync.RWMutex
	viewers map[string]map[*wsClient]struct{}
}

func newHub(srv *Server, log slog.Logger, auth Authenticator) *Hub {
	if auth == nil {
		auth = queryAuthenticator
	}
	return &Hub{
		log:  log,
		srv:  srv,
		auth: auth,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		viewers: make(map[string]map[*wsClient]struct{}),
	}
}

// ServeHTTP upgrades the connection and runs the client pumps. Clients
// connect with ?table=<id>&player=<id>.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	tableID := r.URL.Query().Get("table")
	if tableID == "" {
		http.Error(w, "missing table id", http.StatusBadRequest)
		return
	}
	if !h.srv.HasTable(tableID) {
		http.Error(w, "unknown table", http.StatusNotFound)
		return
	}
	playerID, err := h.auth(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warnf("websocket upgrade failed: %v", err)
		return
	}

	c := &wsClient{
		conn:     conn,
		send:     make(chan []byte, 32),
		playerID: playerID,
		tableID:  tableID,
	}
	h.register(c)

	go c.writePump()
	h.readPump(c)
}

func (h *Hub) register(c *wsClient) {
	h.mu.Lock()
	if h.viewers[c.tableID] == nil {
		h.viewers[c.tableID] = make(map[*wsClient]struct{})
	}
	h.viewers[c.tableID][c] = struct{}{}
	h.mu.Unlock()

	h.srv.metrics.ClientsActive.Inc()
	h.srv.clientConnected(c.tableID, c.playerID)
	h.log.Debugf("client %s connected to table %s", c.playerID, c.tableID)
}

func (h *Hub) unregister(c *wsClient) {
	h.mu.Lock()
	viewers := h.viewers[c.tableID]
	if _, ok := viewers[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(viewers, c)
	if len(viewers) == 0 {
		delete(h.viewers, c.tableID)
	}
	stillConnected := false
	for other := range viewers {
		if other.playerID == c.playerID {
			stillConnected = true
			break
		}
	}
	h.mu.Unlock()

	close(c.send)
	h.srv.metrics.ClientsActive.Dec()
	if !stillConnected {
		h.srv.clientDisconnected(c.tableID, c.playerID)
	}
	h.log.Debugf("client %s disconnected from table %s", c.playerID, c.tableID)
}

func (h *Hub) readPump(c *wsClient) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var action ClientAction
		if err := c.conn.ReadJSON(&action); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warnf("client %s read error: %v", c.playerID, err)
			}
			return
		}

		ev, err := action.toEvent(c.playerID)
		if err != nil {
			c.trySend(errorMessage("bad_request", err.Error()))
			continue
		}
		if err := h.srv.Dispatch(c.tableID, ev); err != nil {
			c.trySend(errorMessage("dispatch_failed", err.Error()))
		}
	}
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// trySend queues a frame without blocking; slow clients drop frames
// rather than stalling the hub.
func (c *wsClient) trySend(msg []byte) {
	select {
	case c.send <- msg:
	default:
	}
}

// BroadcastState sends a snapshot to every viewer of a table, redacting
// hole cards per viewer.
func (h *Hub) BroadcastState(tableID string, snap *poker.TableSnapshot) {
	h.mu.RLock()
	clients := make([]*wsClient, 0, len(h.viewers[tableID]))
	for c := range h.viewers[tableID] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		msg, err := marshalMessage("state", snap.RedactFor(c.playerID))
		if err != nil {
			h.log.Errorf("marshal snapshot: %v", err)
			return
		}
		c.trySend(msg)
	}
}

// BroadcastResult sends a completed hand record to every viewer of a
// table. Hand records hold only revealed cards, so no redaction is
// needed.
func (h *Hub) BroadcastResult(tableID string, record *poker.HandLogRecord) {
	msg, err := marshalMessage("hand_result", record)
	if err != nil {
		h.log.Errorf("marshal hand result: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.viewers[tableID] {
		c.trySend(msg)
	}
}
