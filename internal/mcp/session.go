package mcp

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/peterkuimelis/goldfish/internal/game"
	"github.com/peterkuimelis/goldfish/internal/log"
	gnet "github.com/peterkuimelis/goldfish/internal/net"
)

// ToolResponse is the JSON envelope returned by all MCP tools.
type ToolResponse struct {
	Events []*gnet.EventView `json:"events"`
	State  *gnet.StateView   `json:"state"`
	Error  string            `json:"error,omitempty"`
}

// GameSession holds a single goldfish game driven through MCP tools. Events
// are buffered between calls and handed out once.
type GameSession struct {
	ctrl   *game.Controller
	events *log.MemoryLogger

	mu      sync.Mutex // guards lastSeq
	lastSeq int
}

// NewGameSession starts a game from cfg. Timer-driven advances are disabled;
// the caller steps every phase explicitly.
func NewGameSession(cfg game.Config) (*GameSession, error) {
	events := log.NewMemoryLogger()
	cfg.Logger = events
	cfg.AutoAdvance = 0

	ctrl, err := game.NewController(cfg)
	if err != nil {
		return nil, fmt.Errorf("new game: %w", err)
	}
	return &GameSession{ctrl: ctrl, events: events}, nil
}

// Close stops the session's game.
func (s *GameSession) Close() {
	s.ctrl.Close()
}

// drainEvents returns the events logged since the previous drain.
func (s *GameSession) drainEvents() []*gnet.EventView {
	s.mu.Lock()
	defer s.mu.Unlock()

	views := []*gnet.EventView{}
	for _, e := range s.events.Since(s.lastSeq) {
		views = append(views, gnet.BuildEventView(e))
		s.lastSeq = e.Seq
	}
	return views
}

// run applies one command and packages the outcome with the events it
// produced.
func (s *GameSession) run(msg gnet.ClientMessage) *ToolResponse {
	reply := gnet.Dispatch(s.ctrl, msg)
	return &ToolResponse{
		Events: s.drainEvents(),
		State:  reply.State,
		Error:  reply.Error,
	}
}

// respondJSON marshals a ToolResponse to a JSON string.
func respondJSON(resp *ToolResponse) string {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Sprintf(`{"error": "marshal error: %v"}`, err)
	}
	return string(data)
}
