package web

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/peterkuimelis/goldfish/internal/catalog"
	"github.com/peterkuimelis/goldfish/internal/game"
	"github.com/peterkuimelis/goldfish/internal/log"
	gnet "github.com/peterkuimelis/goldfish/internal/net"
)

//go:embed static
var staticFiles embed.FS

const shutdownTimeout = 5 * time.Second

// Server is the goldfish web server. Every websocket connection plays its own
// game against a fresh controller built from the shared config.
type Server struct {
	game game.Config
	zl   *zap.Logger
	mux  *http.ServeMux
}

// NewServer creates a web server. A nil catalog in cfg means the embedded
// default.
func NewServer(cfg game.Config, zl *zap.Logger) *Server {
	if zl == nil {
		zl = zap.NewNop()
	}
	if cfg.Catalog == nil {
		cfg.Catalog = catalog.Default()
	}
	s := &Server{
		game: cfg,
		zl:   zl,
		mux:  http.NewServeMux(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	staticFS, _ := fs.Sub(staticFiles, "static")

	s.mux.Handle("GET /", http.FileServer(http.FS(staticFS)))
	s.mux.HandleFunc("GET /api/health", s.handleHealth)
	s.mux.HandleFunc("GET /api/catalog", s.handleCatalog)
	s.mux.HandleFunc("GET /ws", s.handleWebSocket)
}

// Handler returns the server's routes.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	wsConn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // Allow connections from any origin
	})
	if err != nil {
		s.zl.Warn("websocket accept", zap.Error(err))
		return
	}
	defer wsConn.CloseNow()

	cfg := s.game
	cfg.Logger = log.NewMemoryLogger()
	cfg.Zap = s.zl
	ctrl, err := game.NewController(cfg)
	if err != nil {
		s.zl.Error("new game", zap.Error(err))
		wsConn.Close(websocket.StatusInternalError, "could not start game")
		return
	}
	defer ctrl.Close()

	ctx := r.Context()
	zl := s.zl.With(zap.String("game", ctrl.Snapshot().GameID), zap.String("remote", r.RemoteAddr))
	zl.Info("player connected")

	// Each JSON value the session encodes is written as one text message.
	conn := websocket.NetConn(ctx, wsConn, websocket.MessageText)
	err = gnet.ServeConn(ctx, conn, ctrl, zl)
	switch {
	case err == nil, websocket.CloseStatus(err) != -1, errors.Is(err, context.Canceled):
		zl.Info("player left")
	default:
		zl.Warn("session ended", zap.Error(err))
	}
	wsConn.Close(websocket.StatusNormalClosure, "game ended")
}

// ListenAndServe serves HTTP on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.mux}
	stop := context.AfterFunc(ctx, func() {
		shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutCtx); err != nil {
			s.zl.Warn("shutdown", zap.Error(err))
		}
	})
	defer stop()

	s.zl.Info("web server listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
