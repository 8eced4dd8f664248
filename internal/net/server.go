package net

import (
	"context"
	"fmt"
	"io"
	"net"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/peterkuimelis/goldfish/internal/game"
	"github.com/peterkuimelis/goldfish/internal/log"
)

// Server hosts one goldfish game for a single TCP client. The host console
// shows the opponent's event log.
type Server struct {
	Addr    string      // listen address, e.g. ":7777"
	Game    game.Config // Logger is replaced by a TextLogger on Console
	Console io.Writer
	Logger  *zap.Logger
}

// Run starts the server, waits for a client to join, then serves the game
// until the client leaves.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	defer ln.Close()
	return s.Serve(ctx, ln)
}

// Serve accepts exactly one connection from ln and runs a game on it.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	zl := s.Logger
	if zl == nil {
		zl = zap.NewNop()
	}
	zl.Info("waiting for player", zap.String("addr", ln.Addr().String()))

	// Accept returns once a client connects or the listener is closed.
	stop := context.AfterFunc(ctx, func() { ln.Close() })
	conn, err := ln.Accept()
	stop()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("accept: %w", err)
	}
	defer conn.Close()
	zl.Info("player connected", zap.String("remote", conn.RemoteAddr().String()))

	cfg := s.Game
	console := s.Console
	if console == nil {
		console = io.Discard
	}
	cfg.Logger = log.NewTextLogger(console)
	cfg.Zap = zl

	ctrl, err := game.NewController(cfg)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	err = ServeConn(ctx, conn, ctrl, zl)
	zl.Info("player left", zap.String("game", ctrl.Snapshot().GameID))
	return err
}

// Play runs a game in-process: the server side and the terminal client are
// joined by a pipe.
func Play(ctx context.Context, cfg game.Config, in io.Reader, out io.Writer, zl *zap.Logger) error {
	if zl == nil {
		zl = zap.NewNop()
	}
	cfg.Zap = zl
	if cfg.Logger == nil {
		cfg.Logger = log.NewMemoryLogger()
	}
	ctrl, err := game.NewController(cfg)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	clientConn, serverConn := net.Pipe()
	grp, ctx := errgroup.WithContext(ctx)
	grp.Go(func() error {
		defer serverConn.Close()
		return ServeConn(ctx, serverConn, ctrl, zl)
	})
	grp.Go(func() error {
		defer clientConn.Close()
		c := NewClient(clientConn, in, out)
		return c.Run(ctx)
	})
	return grp.Wait()
}
