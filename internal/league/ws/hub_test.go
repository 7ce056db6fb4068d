package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/betbuddy-league/pkg/contracts/events"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readJSON(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var out map[string]any
	require.NoError(t, conn.ReadJSON(&out))
	return out
}

func TestSubscribeReceivesOnlyItsMatch(t *testing.T) {
	hub := NewHub(func(*http.Request) bool { return true }, nil)
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	defer srv.Close()

	a, b := dial(t, srv), dial(t, srv)
	require.NoError(t, a.WriteJSON(ClientMsg{Type: "subscribe", MatchID: 1}))
	require.NoError(t, b.WriteJSON(ClientMsg{Type: "subscribe", MatchID: 2}))
	assert.Equal(t, "subscribed", readJSON(t, a)["type"])
	assert.Equal(t, "subscribed", readJSON(t, b)["type"])

	hub.Broadcast(events.LiveUpdate{MatchID: 1, Kind: "goal", Payload: json.RawMessage(`{"minute":12}`)})
	got := readJSON(t, a)
	assert.Equal(t, "goal", got["kind"])
	assert.EqualValues(t, 1, got["matchId"])

	require.NoError(t, b.WriteJSON(ClientMsg{Type: "ping"}))
	assert.Equal(t, "pong", readJSON(t, b)["type"])
}

func TestUnsubscribeAndDisconnectCleanUp(t *testing.T) {
	hub := NewHub(func(*http.Request) bool { return true }, nil)
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	defer srv.Close()

	a := dial(t, srv)
	require.NoError(t, a.WriteJSON(ClientMsg{Type: "subscribe", MatchID: 3}))
	readJSON(t, a)
	assert.Equal(t, 1, hub.Subscribers(3))

	require.NoError(t, a.WriteJSON(ClientMsg{Type: "unsubscribe", MatchID: 3}))
	require.Eventually(t, func() bool { return hub.Subscribers(3) == 0 }, time.Second, 5*time.Millisecond)

	require.NoError(t, a.WriteJSON(ClientMsg{Type: "subscribe", MatchID: 3}))
	readJSON(t, a)
	a.Close()
	require.Eventually(t, func() bool { return hub.Subscribers(3) == 0 }, time.Second, 5*time.Millisecond)
}

func TestRedisSubscriberForwardsToHub(t *testing.T) {
	mini := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	hub := NewHub(func(*http.Request) bool { return true }, nil)
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, StartRedisSubscriber(ctx, client, "live", hub))

	a := dial(t, srv)
	require.NoError(t, a.WriteJSON(ClientMsg{Type: "subscribe", MatchID: 8}))
	readJSON(t, a)

	b, _ := json.Marshal(events.LiveUpdate{MatchID: 8, Kind: "full_time", Payload: json.RawMessage(`{}`)})
	require.NoError(t, client.Publish(ctx, "live", b).Err())
	assert.Equal(t, "full_time", readJSON(t, a)["kind"])
}
