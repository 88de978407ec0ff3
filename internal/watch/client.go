package watch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/lmorrow/chessrules/internal/web"
	"github.com/rs/zerolog"
)

const (
	// Reconnection parameters
	initialReconnectDelay  = 1 * time.Second
	maxReconnectDelay      = 2 * time.Minute
	reconnectBackoffFactor = 2

	pingInterval = 30 * time.Second
	pongTimeout  = 70 * time.Second
	writeTimeout = 10 * time.Second
	dialTimeout  = 30 * time.Second
)

// ErrGameClosed is returned by Run when the server reports the game deleted
// or evicted.
var ErrGameClosed = errors.New("game closed")

// Update is one game update as received from the server.
type Update struct {
	GameID string       `json:"gameId"`
	Type   string       `json:"type"`
	Game   web.GameView `json:"data"`
}

// Handler is called for each update in the order received.
type Handler func(Update) error

// Client follows one game on a chess server, reconnecting with exponential
// backoff. Every (re)connection starts with a "state" update.
type Client struct {
	url            string
	gameID         string
	handler        Handler
	logger         zerolog.Logger
	dialer         *websocket.Dialer
	reconnectDelay time.Duration
	maxDelay       time.Duration

	mu        sync.RWMutex
	conn      *websocket.Conn
	connected bool
}

// Option configures the client
type Option func(*Client)

// WithLogger sets a custom logger
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDialer replaces the default websocket dialer.
func WithDialer(dialer *websocket.Dialer) Option {
	return func(c *Client) {
		c.dialer = dialer
	}
}

// WithReconnectDelay sets the first and the largest reconnect delay.
func WithReconnectDelay(initial, limit time.Duration) Option {
	return func(c *Client) {
		c.reconnectDelay = initial
		c.maxDelay = limit
	}
}

// NewClient builds a client for gameID on the server at baseURL, an http(s)
// or ws(s) URL such as http://localhost:8080.
func NewClient(baseURL, gameID string, handler Handler, opts ...Option) (*Client, error) {
	u, err := streamURL(baseURL, gameID)
	if err != nil {
		return nil, err
	}
	client := &Client{
		url:            u,
		gameID:         gameID,
		handler:        handler,
		logger:         zerolog.Nop(),
		dialer:         websocket.DefaultDialer,
		reconnectDelay: initialReconnectDelay,
		maxDelay:       maxReconnectDelay,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

func streamURL(baseURL, gameID string) (string, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid server url %q: %w", baseURL, err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q in %q", u.Scheme, baseURL)
	}
	u.Path += "/api/ws"
	u.RawQuery = url.Values{"gameId": {gameID}}.Encode()
	return u.String(), nil
}

// IsConnected returns whether the client is connected
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// Run follows the game until ctx is done, the game is closed, the server no
// longer knows the game, or the handler returns an error.
func (c *Client) Run(ctx context.Context) error {
	delay := c.reconnectDelay
	for {
		err := c.connect(ctx)
		if err == nil {
			delay = c.reconnectDelay
			err = c.listen(ctx)
		}
		c.disconnect()

		var fatal *fatalError
		switch {
		case ctx.Err() != nil:
			return nil
		case errors.Is(err, ErrGameClosed):
			return err
		case errors.As(err, &fatal):
			return fatal.err
		}

		c.logger.Warn().Err(err).Str("delay", delay.String()).Msg("Lost game stream, reconnecting")
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil
		}
		delay = time.Duration(float64(delay) * reconnectBackoffFactor)
		if delay > c.maxDelay {
			delay = c.maxDelay
		}
	}
}

// fatalError stops Run instead of triggering a reconnect.
type fatalError struct{ err error }

func (e *fatalError) Error() string { return e.err.Error() }

func (c *Client) connect(ctx context.Context) error {
	c.logger.Info().Str("url", c.url).Msg("Connecting to game stream")

	headers := http.Header{}
	headers.Set("User-Agent", "chesswatch/1.0")

	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	conn, resp, err := c.dialer.DialContext(dialCtx, c.url, headers)
	if err != nil {
		if resp != nil && (resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusBadRequest) {
			return &fatalError{fmt.Errorf("game %s: server answered %s: %w", c.gameID, resp.Status, ErrGameClosed)}
		}
		return fmt.Errorf("websocket dial failed: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	_ = conn.SetReadDeadline(time.Now().Add(pongTimeout))
	conn.SetPingHandler(func(data string) error {
		_ = conn.SetReadDeadline(time.Now().Add(pongTimeout))
		return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(writeTimeout))
	})
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongTimeout))
	})

	c.logger.Info().Str("gameID", c.gameID).Msg("Connected to game stream")
	return nil
}

func (c *Client) listen(ctx context.Context) error {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()

	listenCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go c.pingLoop(listenCtx, conn)
	go func() {
		<-listenCtx.Done()
		conn.Close()
	}()

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("websocket read error: %w", err)
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongTimeout))
		if messageType != websocket.TextMessage {
			continue
		}
		if err := c.processMessage(data); err != nil {
			return err
		}
	}
}

func (c *Client) processMessage(data []byte) error {
	var update Update
	if err := json.Unmarshal(data, &update); err != nil {
		c.logger.Error().Err(err).Msg("Error decoding game update")
		return nil
	}
	// Replies to our own pings carry no game.
	if update.GameID == "" {
		return nil
	}
	if update.Type == web.UpdateClosed {
		return ErrGameClosed
	}
	if err := c.handler(update); err != nil {
		return &fatalError{err}
	}
	return nil
}

func (c *Client) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				c.logger.Debug().Err(err).Msg("Ping failed")
				return
			}
		}
	}
}

func (c *Client) disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = false
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}
