package game

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/peterkuimelis/goldfish/internal/catalog"
	"github.com/peterkuimelis/goldfish/internal/log"
)

// freeResponses returns a responses pool whose only entry is the zero-cost
// fallback.
func freeResponses() []catalog.Action {
	return []catalog.Action{
		{Type: catalog.KindOther, Cost: 0, Weight: 1, Message: MsgNoResponse},
	}
}

// testCatalog builds a catalog around the given turn actions.
func testCatalog(actions ...catalog.Action) *catalog.Catalog {
	return &catalog.Catalog{
		Name:    "test",
		Actions: actions,
		Responses: catalog.Responses{
			Cast:   freeResponses(),
			Attack: freeResponses(),
		},
	}
}

// bear is a creature action that always rolls a 2/2.
var bear = catalog.Action{
	Type:    catalog.KindCreature,
	Cost:    1,
	Weight:  1,
	Message: "A */# creature enters.",
	Range:   []int{2, 2},
}

// newTestController creates a controller with a memory logger, a zaptest
// logger and a fixed seed unless cfg overrides them.
func newTestController(t *testing.T, cfg Config) (*Controller, *log.MemoryLogger) {
	t.Helper()
	mem := log.NewMemoryLogger()
	cfg.Logger = mem
	if cfg.Zap == nil {
		cfg.Zap = zaptest.NewLogger(t)
	}
	if cfg.Seed == 0 {
		cfg.Seed = 42
	}
	c, err := NewController(cfg)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c, mem
}

// runToPlayer advances until the player holds priority again.
func runToPlayer(t *testing.T, c *Controller) Snapshot {
	t.Helper()
	snap, err := c.PassTurn()
	require.NoError(t, err)
	if snap.Priority == PriorityOpponent {
		snap, err = c.PassTurn()
		require.NoError(t, err)
	}
	require.Equal(t, PriorityPlayer, snap.Priority)
	return snap
}

// phaseNames extracts the phase-change sequence from the event log.
func phaseNames(events []log.GameEvent) []string {
	var out []string
	for _, e := range events {
		if e.Type == log.EventPhaseChange {
			out = append(out, e.Phase)
		}
	}
	return out
}
