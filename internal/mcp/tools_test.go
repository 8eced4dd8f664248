package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/peterkuimelis/goldfish/internal/game"
)

func call(t *testing.T, h server.ToolHandlerFunc, args map[string]any) (*ToolResponse, bool) {
	t.Helper()
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	res, err := h(context.Background(), req)
	require.NoError(t, err)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)

	var resp ToolResponse
	if err := json.Unmarshal([]byte(text.Text), &resp); err != nil {
		// Plain-text errors carry no envelope.
		return &ToolResponse{Error: text.Text}, res.IsError
	}
	return &resp, res.IsError
}

func startGame(t *testing.T) {
	t.Helper()
	SetConfig(game.Config{Seed: 21, Zap: zaptest.NewLogger(t)})
	t.Cleanup(CloseSession)
	resp, isErr := call(t, handleNewGame, nil)
	require.False(t, isErr)
	require.NotNil(t, resp.State)
}

func TestNoGameRunning(t *testing.T) {
	CloseSession()
	resp, isErr := call(t, commandHandler("state"), nil)
	assert.True(t, isErr)
	assert.Contains(t, resp.Error, "new_game")
}

func TestNewGame(t *testing.T) {
	startGame(t)
	resp, _ := call(t, commandHandler("state"), nil)
	assert.True(t, resp.State.IsYourTurn)
	assert.Equal(t, 1, resp.State.Turn)
	assert.Equal(t, game.DefaultLife, resp.State.Opponent.Life)
	assert.NotNil(t, resp.Events)

	id := resp.State.GameID
	resp, _ = call(t, handleNewGame, map[string]any{"seed": float64(5)})
	assert.NotEqual(t, id, resp.State.GameID)
}

func TestToolsRoundTripTurn(t *testing.T) {
	startGame(t)

	resp, isErr := call(t, commandHandler("advance"), nil)
	assert.True(t, isErr, "advancing on your own turn is refused")
	assert.Contains(t, resp.Error, "your turn")
	require.NotNil(t, resp.State)

	resp, isErr = call(t, commandHandler("pass"), nil)
	require.False(t, isErr)
	assert.Equal(t, "Upkeep", resp.State.Phase)
	var types []string
	for _, e := range resp.Events {
		types = append(types, e.Type)
	}
	assert.Contains(t, types, "NewTurn")

	for _, want := range []string{"Play", "Combat", "End"} {
		resp, isErr = call(t, commandHandler("advance"), nil)
		require.False(t, isErr, resp.Error)
		assert.Equal(t, want, resp.State.Phase)
		assert.NotEmpty(t, resp.Events)
	}
	assert.Equal(t, 2, resp.State.Turn)
	assert.True(t, resp.State.IsYourTurn)

	// Events are handed out once.
	resp, _ = call(t, commandHandler("state"), nil)
	assert.Empty(t, resp.Events)
}

func TestBoardTools(t *testing.T) {
	startGame(t)

	resp, isErr := call(t, handleAdjustLife, map[string]any{"delta": float64(-7)})
	require.False(t, isErr)
	assert.Equal(t, 33, resp.State.Opponent.Life)
	require.Len(t, resp.Events, 1)
	assert.Equal(t, "LifeChange", resp.Events[0].Type)

	for _, cmd := range []string{"tap", "destroy", "block"} {
		resp, isErr = call(t, indexHandler(cmd), map[string]any{"index": float64(4)})
		assert.False(t, isErr, cmd)
		assert.Empty(t, resp.State.Creatures)
	}

	_, isErr = call(t, indexHandler("tap"), map[string]any{})
	assert.True(t, isErr, "index is required")
	_, isErr = call(t, handleAdjustLife, nil)
	assert.True(t, isErr, "delta is required")
}

func TestResponseTools(t *testing.T) {
	startGame(t)
	for _, cmd := range []string{"respond_spell", "respond_attack"} {
		resp, isErr := call(t, commandHandler(cmd), nil)
		require.False(t, isErr, cmd)
		assert.NotEmpty(t, resp.State.Message, cmd)
		assert.NotEmpty(t, resp.Events, cmd)
	}
}

func TestRegisterTools(t *testing.T) {
	s := server.NewMCPServer("goldfish-test", "0.0.0")
	RegisterTools(s)
	names := make([]string, 0)
	for name := range s.ListTools() {
		names = append(names, name)
	}
	assert.ElementsMatch(t, []string{
		"new_game", "advance_phase", "pass_turn", "respond_to_spell", "respond_to_attack",
		"tap_creature", "destroy_creature", "block_creature", "adjust_life", "get_game_state",
	}, names)
}
