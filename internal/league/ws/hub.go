package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/radieske/betbuddy-league/pkg/contracts/events"
)

const writeWait = 5 * time.Second

// client serializa escritas: gorilla/websocket não aceita writers concorrentes
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) write(b []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, b)
}

func (c *client) writeJSON(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.write(b)
}

// Hub gerencia conexões WebSocket e assinaturas por partido
// subs: mapeia matchID para o conjunto de clientes inscritos
type Hub struct {
	Log      *zap.Logger
	upgrader websocket.Upgrader
	mu       sync.RWMutex
	// matchID -> set of clients
	subs map[int64]map[*client]struct{}
}

// NewHub cria uma instância de Hub com política customizada de origem (CORS)
func NewHub(allowOrigin func(r *http.Request) bool, log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		Log:      log,
		upgrader: websocket.Upgrader{CheckOrigin: allowOrigin},
		subs:     make(map[int64]map[*client]struct{}),
	}
}

// HandleWS gerencia o ciclo de vida de uma conexão WebSocket
// Cada cliente pode se inscrever em vários partidos
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := &client{conn: conn}
	defer func() {
		h.drop(c)
		conn.Close()
	}()

	for {
		var msg ClientMsg
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		switch msg.Type {
		case "subscribe":
			if msg.MatchID <= 0 {
				_ = c.writeJSON(map[string]string{"type": "error", "error": "matchId required"})
				continue
			}
			h.mu.Lock()
			if _, ok := h.subs[msg.MatchID]; !ok {
				h.subs[msg.MatchID] = make(map[*client]struct{})
			}
			h.subs[msg.MatchID][c] = struct{}{}
			h.mu.Unlock()
			_ = c.writeJSON(map[string]any{"type": "subscribed", "matchId": msg.MatchID})
		case "unsubscribe":
			h.mu.Lock()
			if m, ok := h.subs[msg.MatchID]; ok {
				delete(m, c)
				if len(m) == 0 {
					delete(h.subs, msg.MatchID)
				}
			}
			h.mu.Unlock()
		case "ping":
			_ = c.writeJSON(map[string]string{"type": "pong"})
		}
	}
}

// drop remove o cliente de todas as assinaturas
func (h *Hub) drop(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, set := range h.subs {
		delete(set, c)
		if len(set) == 0 {
			delete(h.subs, id)
		}
	}
}

// Subscribers devolve quantos clientes acompanham o partido
func (h *Hub) Subscribers(matchID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[matchID])
}

// Broadcast envia a atualização para os clientes inscritos no partido
func (h *Hub) Broadcast(update events.LiveUpdate) {
	h.mu.RLock()
	set := h.subs[update.MatchID]
	conns := make([]*client, 0, len(set))
	for c := range set {
		conns = append(conns, c)
	}
	h.mu.RUnlock()
	if len(conns) == 0 {
		return
	}

	b, err := json.Marshal(update)
	if err != nil {
		return
	}
	for _, c := range conns {
		if err := c.write(b); err != nil {
			h.Log.Debug("ws write failed", zap.Error(err))
		}
	}
}
