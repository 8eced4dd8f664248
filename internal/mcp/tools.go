package mcp

import (
	"context"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/peterkuimelis/goldfish/internal/game"
	gnet "github.com/peterkuimelis/goldfish/internal/net"
)

var (
	sessionMu sync.Mutex
	// activeSession is the singleton game session (one per stdio process).
	activeSession *GameSession
	// gameConfig is the template for new games, set by main.
	gameConfig game.Config
)

// SetConfig sets the configuration new games are started from.
func SetConfig(cfg game.Config) {
	sessionMu.Lock()
	defer sessionMu.Unlock()
	gameConfig = cfg
}

// CloseSession ends the running game, if any.
func CloseSession() {
	sessionMu.Lock()
	defer sessionMu.Unlock()
	if activeSession != nil {
		activeSession.Close()
		activeSession = nil
	}
}

// RegisterTools adds all game tools to the MCP server.
func RegisterTools(s *server.MCPServer) {
	s.AddTool(newGameTool(), handleNewGame)
	s.AddTool(simpleTool("advance_phase",
		"Advance the opponent's turn by one phase (Upkeep, Play, Combat, End). Fails while it is your turn."),
		commandHandler(gnet.CmdAdvance))
	s.AddTool(simpleTool("pass_turn",
		"Pass the turn. From your turn this starts the opponent's Upkeep; during the opponent's turn it runs the remaining phases."),
		commandHandler(gnet.CmdPass))
	s.AddTool(simpleTool("respond_to_spell",
		"Tell the opponent you cast a spell. It may pay mana to answer, flash in a creature or get ready to block."),
		commandHandler(gnet.CmdRespondSpell))
	s.AddTool(simpleTool("respond_to_attack",
		"Tell the opponent you are attacking. It may answer with an instant or a block."),
		commandHandler(gnet.CmdRespondAttack))
	s.AddTool(indexTool("tap_creature", "Toggle the tapped state of an opponent creature."),
		indexHandler(gnet.CmdTap))
	s.AddTool(indexTool("destroy_creature", "Destroy an opponent creature and put it in the graveyard."),
		indexHandler(gnet.CmdDestroy))
	s.AddTool(indexTool("block_creature", "Toggle whether an opponent creature is blocking."),
		indexHandler(gnet.CmdBlock))
	s.AddTool(adjustLifeTool(), handleAdjustLife)
	s.AddTool(simpleTool("get_game_state",
		"Get the current game state and any events since the last call. Read-only."),
		commandHandler(gnet.CmdState))
}

// --- Tool definitions ---

func newGameTool() mcp.Tool {
	return mcp.NewTool("new_game",
		mcp.WithDescription("Start a new goldfish game against a scripted opponent, replacing any running game. "+
			"The game starts on your turn; use pass_turn to let the opponent act."),
		mcp.WithNumber("seed", mcp.Description("Random seed for a reproducible game (0 picks one)")),
	)
}

func simpleTool(name, desc string) mcp.Tool {
	return mcp.NewTool(name, mcp.WithDescription(desc))
}

func indexTool(name, desc string) mcp.Tool {
	return mcp.NewTool(name,
		mcp.WithDescription(desc+" Indices outside the board are ignored."),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("0-based index of the creature in state.creatures")),
	)
}

func adjustLifeTool() mcp.Tool {
	return mcp.NewTool("adjust_life",
		mcp.WithDescription("Change the opponent's life total, e.g. after combat damage."),
		mcp.WithNumber("delta", mcp.Required(), mcp.Description("Amount to add; negative for damage")),
	)
}

// --- Tool handlers ---

func handleNewGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionMu.Lock()
	defer sessionMu.Unlock()

	cfg := gameConfig
	if seed := request.GetInt("seed", 0); seed != 0 {
		cfg.Seed = int64(seed)
	}
	sess, err := NewGameSession(cfg)
	if err != nil {
		return mcp.NewToolResultErrorf("Failed to start game: %v", err), nil
	}
	if activeSession != nil {
		activeSession.Close()
	}
	activeSession = sess

	return result(sess.run(gnet.ClientMessage{Type: gnet.CmdState})), nil
}

func commandHandler(cmd string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return runCommand(gnet.ClientMessage{Type: cmd}), nil
	}
}

func indexHandler(cmd string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		index, err := request.RequireInt("index")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return runCommand(gnet.ClientMessage{Type: cmd, Index: index}), nil
	}
}

func handleAdjustLife(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	delta, err := request.RequireInt("delta")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return runCommand(gnet.ClientMessage{Type: gnet.CmdLife, Delta: delta}), nil
}

func runCommand(msg gnet.ClientMessage) *mcp.CallToolResult {
	sessionMu.Lock()
	defer sessionMu.Unlock()

	if activeSession == nil {
		return mcp.NewToolResultError("No game is running. Use new_game first.")
	}
	return result(activeSession.run(msg))
}

func result(resp *ToolResponse) *mcp.CallToolResult {
	if resp.Error != "" {
		return mcp.NewToolResultError(respondJSON(resp))
	}
	return mcp.NewToolResultText(respondJSON(resp))
}
