package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wsUpdate struct {
	GameID string   `json:"gameId"`
	Type   string   `json:"type"`
	Data   GameView `json:"data"`
}

func startServer(t *testing.T) (*Service, *httptest.Server) {
	t.Helper()
	s, h := newTestService()
	ctx, cancel := context.WithCancel(context.Background())
	go s.hub.Run(ctx)

	srv := httptest.NewServer(h)
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return s, srv
}

func dial(t *testing.T, srv *httptest.Server, gameID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws?gameId=" + gameID
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readUpdate(t *testing.T, conn *websocket.Conn) wsUpdate {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var u wsUpdate
	require.NoError(t, conn.ReadJSON(&u))
	return u
}

func TestWebSocketStreamsGameUpdates(t *testing.T) {
	s, srv := startServer(t)
	id := createGame(t, srv.Config.Handler, "standard").ID

	conn := dial(t, srv, id)

	state := readUpdate(t, conn)
	assert.Equal(t, UpdateState, state.Type)
	assert.Equal(t, id, state.GameID)
	assert.Equal(t, 1, state.Data.HistoryLength)
	assert.Equal(t, 1, s.hub.ClientCount(id))

	resp := command(t, srv.Config.Handler, "/api/games/"+id+"/moves", MoveRequest{From: "e2", To: "e4"})
	require.True(t, resp.Accepted)

	move := readUpdate(t, conn)
	assert.Equal(t, UpdateMove, move.Type)
	assert.Equal(t, []string{"e2e4"}, move.Data.Plies)

	// A refused move is not broadcast; the next update is the history step.
	command(t, srv.Config.Handler, "/api/games/"+id+"/moves", MoveRequest{From: "d2", To: "d4"})
	command(t, srv.Config.Handler, "/api/games/"+id+"/history", HistoryRequest{Action: "back"})

	history := readUpdate(t, conn)
	assert.Equal(t, UpdateHistory, history.Type)
	assert.Equal(t, 0, history.Data.HistoryIndex)
}

func TestWebSocketOnlyReceivesOwnGame(t *testing.T) {
	_, srv := startServer(t)
	h := srv.Config.Handler
	watched := createGame(t, h, "standard").ID
	other := createGame(t, h, "standard").ID

	conn := dial(t, srv, watched)
	readUpdate(t, conn)

	command(t, h, "/api/games/"+other+"/moves", MoveRequest{From: "e2", To: "e4"})
	command(t, h, "/api/games/"+watched+"/moves", MoveRequest{From: "d2", To: "d4"})

	u := readUpdate(t, conn)
	assert.Equal(t, watched, u.GameID)
	assert.Equal(t, []string{"d2d4"}, u.Data.Plies)
}

func TestWebSocketPing(t *testing.T) {
	_, srv := startServer(t)
	id := createGame(t, srv.Config.Handler, "empty").ID

	conn := dial(t, srv, id)
	readUpdate(t, conn)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "ping"}))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var pong map[string]string
	require.NoError(t, json.Unmarshal(msg, &pong))
	assert.Equal(t, "pong", pong["type"])
}

func TestWebSocketRejectsUnknownGame(t *testing.T) {
	_, srv := startServer(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws?gameId=nope"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	url = "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws"
	_, resp, err = websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHubDropsDisconnectedClients(t *testing.T) {
	s, srv := startServer(t)
	id := createGame(t, srv.Config.Handler, "standard").ID

	conn := dial(t, srv, id)
	readUpdate(t, conn)
	require.Equal(t, 1, s.hub.ClientCount(id))

	conn.Close()
	assert.Eventually(t, func() bool {
		return s.hub.ClientCount(id) == 0
	}, 5*time.Second, 10*time.Millisecond)
}

func TestWebSocketEveryConnectionStartsWithState(t *testing.T) {
	s, srv := startServer(t)
	h := srv.Config.Handler
	id := createGame(t, h, "standard").ID
	command(t, h, "/api/games/"+id+"/moves", MoveRequest{From: "e2", To: "e4"})

	for i := 1; i <= 10; i++ {
		conn := dial(t, srv, id)
		state := readUpdate(t, conn)
		assert.Equal(t, UpdateState, state.Type, "connection %d", i)
		assert.Equal(t, []string{"e2e4"}, state.Data.Plies, "connection %d", i)
		assert.Equal(t, i, s.hub.ClientCount(id), "registered before the state frame")
	}
}

func TestConcurrentCommandsBroadcastInCommitOrder(t *testing.T) {
	_, srv := startServer(t)
	h := srv.Config.Handler
	id := createGame(t, h, "standard").ID

	conn := dial(t, srv, id)
	readUpdate(t, conn)

	// Each request selects a different piece, so every one of them changes
	// the game and is broadcast.
	var squares []string
	for _, file := range "abcdefgh" {
		squares = append(squares, string(file)+"1", string(file)+"2")
	}
	var (
		wg       sync.WaitGroup
		accepted int32
	)
	for _, sq := range squares {
		wg.Add(1)
		go func(sq string) {
			defer wg.Done()
			body, _ := json.Marshal(SelectRequest{Square: sq})
			req := httptest.NewRequest("POST", "/api/games/"+id+"/select", bytes.NewReader(body))
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			var resp CommandResponse
			if json.Unmarshal(rr.Body.Bytes(), &resp) == nil && resp.Accepted {
				atomic.AddInt32(&accepted, 1)
			}
		}(sq)
	}
	wg.Wait()
	require.EqualValues(t, len(squares), accepted)

	var last wsUpdate
	for i := 0; i < len(squares); i++ {
		last = readUpdate(t, conn)
		require.Equal(t, UpdateSelection, last.Type)
	}

	rr := do(t, h, "GET", "/api/games/"+id, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var final GameView
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &final))
	require.NotNil(t, final.Selected)
	require.NotNil(t, last.Data.Selected)
	assert.Equal(t, final.Selected.Square, last.Data.Selected.Square, "last frame is the committed state")
}
