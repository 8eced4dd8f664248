package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/peterkuimelis/goldfish/internal/catalog"
	"github.com/peterkuimelis/goldfish/internal/game"
	gnet "github.com/peterkuimelis/goldfish/internal/net"
)

func newTestServer(t *testing.T, cfg game.Config) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(NewServer(cfg, zap.NewNop()).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.CloseNow() })
	return conn
}

// next reads until a state or error message and returns it with the event
// types that preceded it.
func next(t *testing.T, conn *websocket.Conn) (gnet.ServerMessage, []string) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	var events []string
	for {
		var msg gnet.ServerMessage
		require.NoError(t, wsjson.Read(ctx, conn, &msg))
		if msg.Type == gnet.TypeEvent {
			events = append(events, msg.Event.Type)
			continue
		}
		return msg, events
	}
}

func send(t *testing.T, conn *websocket.Conn, msg gnet.ClientMessage) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, wsjson.Write(ctx, conn, msg))
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, game.Config{})
	resp, err := http.Get(ts.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestCatalogEndpoint(t *testing.T) {
	ts := newTestServer(t, game.Config{})
	resp, err := http.Get(ts.URL + "/api/catalog")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var info CatalogInfo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&info))
	def := catalog.Default()
	assert.Equal(t, def.Name, info.Name)
	assert.Len(t, info.Actions, len(def.Actions))
	assert.Len(t, info.Responses.Cast, len(def.Responses.Cast))
	assert.Positive(t, info.Summary.Actions[catalog.KindCreature])
	assert.Positive(t, info.Summary.Attack[catalog.KindBlock])
}

func TestIndexPage(t *testing.T) {
	ts := newTestServer(t, game.Config{})
	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
}

func TestWebSocketFullTurn(t *testing.T) {
	ts := newTestServer(t, game.Config{Seed: 11})
	conn := dial(t, ts)

	send(t, conn, gnet.ClientMessage{Type: gnet.CmdState})
	msg, _ := next(t, conn)
	require.Equal(t, gnet.TypeState, msg.Type)
	assert.True(t, msg.State.IsYourTurn)
	assert.NotEmpty(t, msg.State.GameID)

	send(t, conn, gnet.ClientMessage{Type: gnet.CmdPass})
	msg, events := next(t, conn)
	assert.Equal(t, "Upkeep", msg.State.Phase)
	assert.Contains(t, events, "NewTurn")

	for _, want := range []string{"Play", "Combat", "End"} {
		send(t, conn, gnet.ClientMessage{Type: gnet.CmdAdvance})
		msg, _ = next(t, conn)
		require.Equal(t, gnet.TypeState, msg.Type, msg.Error)
		assert.Equal(t, want, msg.State.Phase)
	}
	assert.Equal(t, 2, msg.State.Turn)
	assert.True(t, msg.State.IsYourTurn)

	send(t, conn, gnet.ClientMessage{Type: gnet.CmdAdvance})
	msg, _ = next(t, conn)
	assert.Equal(t, gnet.TypeError, msg.Type)

	require.NoError(t, conn.Close(websocket.StatusNormalClosure, ""))
}

func TestWebSocketGamesAreIndependent(t *testing.T) {
	ts := newTestServer(t, game.Config{Seed: 4})
	a := dial(t, ts)
	b := dial(t, ts)

	send(t, a, gnet.ClientMessage{Type: gnet.CmdLife, Delta: -10})
	msg, _ := next(t, a)
	assert.Equal(t, 30, msg.State.Opponent.Life)

	send(t, b, gnet.ClientMessage{Type: gnet.CmdState})
	msg, _ = next(t, b)
	assert.Equal(t, game.DefaultLife, msg.State.Opponent.Life)
}

func TestWebSocketPushesTimerAdvances(t *testing.T) {
	ts := newTestServer(t, game.Config{Seed: 8, AutoAdvance: 10 * time.Millisecond})
	conn := dial(t, ts)

	send(t, conn, gnet.ClientMessage{Type: gnet.CmdPass})
	var phases []string
	for len(phases) == 0 || phases[len(phases)-1] != "End" {
		msg, _ := next(t, conn)
		require.Equal(t, gnet.TypeState, msg.Type)
		phases = append(phases, msg.State.Phase)
	}
	assert.Equal(t, []string{"Upkeep", "Play", "Combat", "End"}, phases)
}

func TestListenAndServeStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewServer(game.Config{}, zap.NewNop()).ListenAndServe(ctx, "127.0.0.1:0") }()
	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}
