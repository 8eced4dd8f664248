package net

import (
	"bytes"
	"encoding/json"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/peterkuimelis/goldfish/internal/game"
)

// syncBuffer is a bytes.Buffer safe for one writer goroutine and a polling
// test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newController(t *testing.T) *game.Controller {
	t.Helper()
	ctrl, err := game.NewController(game.Config{Seed: 1, Zap: zaptest.NewLogger(t)})
	require.NoError(t, err)
	t.Cleanup(ctrl.Close)
	return ctrl
}

// wireClient is the test side of a session over net.Pipe.
type wireClient struct {
	t    *testing.T
	conn net.Conn
	enc  *json.Encoder
	msgs chan ServerMessage
}

func newWireClient(t *testing.T, conn net.Conn) *wireClient {
	wc := &wireClient{t: t, conn: conn, enc: json.NewEncoder(conn), msgs: make(chan ServerMessage, 256)}
	go func() {
		defer close(wc.msgs)
		dec := json.NewDecoder(conn)
		for {
			var m ServerMessage
			if err := dec.Decode(&m); err != nil {
				return
			}
			wc.msgs <- m
		}
	}()
	return wc
}

func (wc *wireClient) send(msg ClientMessage) {
	wc.t.Helper()
	require.NoError(wc.t, wc.enc.Encode(msg))
}

// next reads messages until a state or error arrives and returns it with the
// events that preceded it.
func (wc *wireClient) next() (ServerMessage, []*EventView) {
	wc.t.Helper()
	var events []*EventView
	timeout := time.After(2 * time.Second)
	for {
		select {
		case m, ok := <-wc.msgs:
			require.True(wc.t, ok, "connection closed")
			if m.Type == TypeEvent {
				events = append(events, m.Event)
				continue
			}
			return m, events
		case <-timeout:
			wc.t.Fatal("timed out waiting for server message")
		}
	}
}

func eventTypes(events []*EventView) []string {
	var out []string
	for _, e := range events {
		out = append(out, e.Type)
	}
	return out
}
