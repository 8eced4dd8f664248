package net

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/peterkuimelis/goldfish/internal/game"
)

// pushBuffer bounds queued state pushes per connection. Pushes beyond it are
// dropped until the client catches up.
const pushBuffer = 64

var pastDeadline = time.Unix(1, 0)

// session serves one client connection: it decodes commands, dispatches them,
// and streams state pushes with the events that led to them.
type session struct {
	conn    net.Conn
	g       Game
	zl      *zap.Logger
	enc     *json.Encoder
	dec     *json.Decoder
	mu      sync.Mutex // guards enc and lastSeq
	lastSeq int
}

// ServeConn runs the protocol on conn until the client disconnects or ctx is
// cancelled. It does not close conn on a clean client EOF; callers own it.
func ServeConn(ctx context.Context, conn net.Conn, g Game, zl *zap.Logger) error {
	if zl == nil {
		zl = zap.NewNop()
	}
	s := &session{
		conn: conn,
		g:    g,
		zl:   zl,
		enc:  json.NewEncoder(conn),
		dec:  json.NewDecoder(conn),
	}
	// Events before the client joined are history, not news.
	s.lastSeq = g.Events().LastEvent().Seq

	pushes := make(chan game.Snapshot, pushBuffer)
	unsubscribe := g.Subscribe(func(snap game.Snapshot) {
		select {
		case pushes <- snap:
		default:
			zl.Warn("dropping state push", zap.String("remote", conn.RemoteAddr().String()))
		}
	})
	defer unsubscribe()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	grp, ctx := errgroup.WithContext(ctx)

	grp.Go(func() error {
		defer cancel()
		return s.readLoop()
	})
	grp.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case snap := <-pushes:
				if err := s.sendState(ServerMessage{Type: TypeState, State: BuildStateView(snap)}); err != nil {
					if ctx.Err() != nil {
						return nil
					}
					return err
				}
			}
		}
	})
	// Unblock a pending Decode when the context ends first.
	grp.Go(func() error {
		<-ctx.Done()
		_ = conn.SetReadDeadline(pastDeadline)
		return nil
	})

	return grp.Wait()
}

func (s *session) readLoop() error {
	for {
		var msg ClientMessage
		if err := s.dec.Decode(&msg); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrClosedPipe) || isTimeout(err) {
				return nil
			}
			// Malformed JSON leaves the decoder unusable; report and hang up.
			_ = s.sendState(ServerMessage{Type: TypeError, Error: fmt.Sprintf("bad message: %v", err)})
			return fmt.Errorf("read message: %w", err)
		}
		s.zl.Debug("command", zap.String("type", msg.Type), zap.Int("index", msg.Index), zap.Int("delta", msg.Delta))

		reply := Dispatch(s.g, msg)
		if reply.Type == TypeError || !msg.Mutates() {
			if err := s.sendState(reply); err != nil {
				return err
			}
		}
	}
}

// sendState writes any events logged since the last send, then msg.
func (s *session) sendState(msg ServerMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if msg.State != nil {
		for _, e := range s.g.Events().Since(s.lastSeq) {
			if err := s.enc.Encode(ServerMessage{Type: TypeEvent, Event: BuildEventView(e)}); err != nil {
				return fmt.Errorf("send event: %w", err)
			}
			s.lastSeq = e.Seq
		}
	}
	if err := s.enc.Encode(msg); err != nil {
		return fmt.Errorf("send %s: %w", msg.Type, err)
	}
	return nil
}


func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
