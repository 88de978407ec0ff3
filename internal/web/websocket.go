package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/lmorrow/chessrules/internal/chess"
	"github.com/rs/zerolog/log"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

// WebSocket upgrader with reasonable settings
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Update types pushed to watchers of a game.
const (
	UpdateState     = "state"
	UpdateMove      = "move"
	UpdatePromotion = "promotion"
	UpdateHistory   = "history"
	UpdateSelection = "selection"
	UpdateClosed    = "closed"
)

// GameUpdate is one message pushed to the clients watching a game.
type GameUpdate struct {
	GameID string      `json:"gameId"`
	Type   string      `json:"type"`
	Data   interface{} `json:"data"`
}

// Hub maintains active WebSocket connections
type Hub struct {
	// Registered clients by game ID
	gameClients map[string]map[*Client]bool

	unregister chan *Client
	done       chan struct{}
	closed     bool

	// mu also guards closing of client send channels: a send made while
	// holding the read lock to a registered client never hits a closed channel.
	mu sync.RWMutex
}

// Client represents a WebSocket connection
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	gameID string
}

func NewHub() *Hub {
	return &Hub{
		gameClients: make(map[string]map[*Client]bool),
		unregister:  make(chan *Client),
		done:        make(chan struct{}),
	}
}

// Run is the hub's event loop. It returns when ctx is done, closing every
// client's send channel so their write pumps shut the connections.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			h.closed = true
			for gameID, clients := range h.gameClients {
				for client := range clients {
					close(client.send)
				}
				delete(h.gameClients, gameID)
			}
			h.mu.Unlock()
			return

		case client := <-h.unregister:
			h.remove(client)
			log.Info().Str("gameID", client.gameID).Msg("Client disconnected from game")
		}
	}
}

// add registers client and queues state as its first message in one step, so
// no broadcast can reach the client ahead of it. It fails once the hub has
// stopped.
func (h *Hub) add(client *Client, state []byte) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	if h.gameClients[client.gameID] == nil {
		h.gameClients[client.gameID] = make(map[*Client]bool)
	}
	h.gameClients[client.gameID][client] = true
	client.send <- state

	log.Info().Str("gameID", client.gameID).Msg("Client connected to game")
	return true
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	clients, ok := h.gameClients[client.gameID]
	if !ok {
		return
	}
	if _, ok := clients[client]; ok {
		delete(clients, client)
		close(client.send)
		if len(clients) == 0 {
			delete(h.gameClients, client.gameID)
		}
	}
}

// deliver queues message for one registered client, dropping it when the
// client is gone or its buffer is full.
func (h *Hub) deliver(client *Client, message []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if !h.gameClients[client.gameID][client] {
		return false
	}
	select {
	case client.send <- message:
		return true
	default:
		return false
	}
}

// BroadcastGameUpdate queues an update for every client watching its game
// before returning. Callers that broadcast while holding the game's session
// lock therefore publish updates in commit order. A client whose buffer is
// full is dropped.
func (h *Hub) BroadcastGameUpdate(update GameUpdate) {
	message, err := json.Marshal(update)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal game update")
		return
	}

	h.mu.RLock()
	var slow []*Client
	for client := range h.gameClients[update.GameID] {
		select {
		case client.send <- message:
		default:
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range slow {
		log.Warn().Str("gameID", update.GameID).Msg("Client too slow, dropping")
		h.remove(client)
	}
}

// ClientCount is the number of connections watching gameID.
func (h *Hub) ClientCount(gameID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.gameClients[gameID])
}

// WebSocketHandler upgrades a request for ?gameId= and streams that game's
// updates, starting with its current state.
func (s *Service) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	gameID := r.URL.Query().Get("gameId")
	if gameID == "" {
		http.Error(w, "Missing gameId parameter", http.StatusBadRequest)
		return
	}
	session, err := s.store.Get(gameID)
	if err != nil {
		writeError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	client := &Client{
		hub:    s.hub,
		conn:   conn,
		send:   make(chan []byte, 256),
		gameID: gameID,
	}

	// Commands broadcast under the session lock, so holding it here puts the
	// snapshot exactly between the updates already sent and those to come.
	registered := false
	session.View(func(g chess.Game) {
		state, err := json.Marshal(GameUpdate{
			GameID: gameID,
			Type:   UpdateState,
			Data:   newGameView(gameID, g),
		})
		if err != nil {
			log.Error().Err(err).Msg("Failed to marshal game state")
			return
		}
		registered = s.hub.add(client, state)
	})
	if !registered {
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// readPump handles incoming messages from the WebSocket
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Msg("WebSocket error")
			}
			break
		}

		var msg struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(message, &msg); err == nil && msg.Type == "ping" {
			c.hub.deliver(c, []byte(`{"type":"pong"}`))
		}
	}
}

// writePump handles sending messages to the WebSocket, one update per frame.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				if !errors.Is(err, websocket.ErrCloseSent) {
					log.Debug().Err(err).Str("gameID", c.gameID).Msg("WebSocket write failed")
				}
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
