package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func board() []Creature {
	return []Creature{
		{Power: "1", Toughness: "1", IsTapped: true, HasSummoningSickness: true},
		{Power: "2", Toughness: "2", HasBlocked: true},
		{Power: "3", Toughness: "3", Ability: "reach", IsTapped: true, HasBlocked: true},
	}
}

func TestUntapAll(t *testing.T) {
	in := board()
	out := UntapAll(in)
	for _, c := range out {
		assert.False(t, c.IsTapped)
		assert.False(t, c.HasSummoningSickness)
		assert.False(t, c.HasBlocked)
	}
	assert.True(t, in[0].IsTapped, "input must not be modified")
}

func TestTapToggles(t *testing.T) {
	in := board()
	out := Tap(in, 1)
	assert.True(t, out[1].IsTapped)
	assert.False(t, in[1].IsTapped)
	assert.False(t, Tap(out, 1)[1].IsTapped)
}

func TestBlockToggles(t *testing.T) {
	in := board()
	out := Block(in, 0)
	assert.True(t, out[0].HasBlocked)
	assert.False(t, Block(out, 0)[0].HasBlocked)
}

func TestDestroy(t *testing.T) {
	in := board()
	out, ok := Destroy(in, 1)
	require.True(t, ok)
	require.Len(t, out, 2)
	assert.Equal(t, "1", out[0].Power)
	assert.Equal(t, "3", out[1].Power)
	assert.Len(t, in, 3)
}

func TestOutOfRangeIsNoop(t *testing.T) {
	in := board()
	for _, i := range []int{-1, 3, 100} {
		assert.Equal(t, in, Tap(in, i))
		assert.Equal(t, in, Block(in, i))
		out, ok := Destroy(in, i)
		assert.False(t, ok)
		assert.Equal(t, in, out)
	}

	// The copy must not alias the input.
	out := Tap(in, 10)
	out[0].Power = "9"
	assert.Equal(t, "1", in[0].Power)
}

func TestDrawAndGainMana(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	s := DefaultStats()

	got, res := s.DrawAndGainMana(rng, 1)
	assert.Equal(t, DrawCardAndMana, res)
	assert.Equal(t, 8, got.HandSize)
	assert.Equal(t, 59, got.Library)
	assert.Equal(t, 1, got.ManaPool)
	assert.Equal(t, 1, got.AvailableMana)

	got, res = s.DrawAndGainMana(rng, -1)
	assert.Equal(t, DrawCard, res)
	assert.Equal(t, 0, got.ManaPool)
	assert.Equal(t, 8, got.HandSize)

	empty := Stats{HandSize: 4, Library: 0, ManaPool: 3, AvailableMana: 1, Life: 20}
	got, res = empty.DrawAndGainMana(rng, 1)
	assert.Equal(t, DrawNone, res)
	assert.Equal(t, empty, got)
}

func TestSpend(t *testing.T) {
	s := Stats{HandSize: 3, AvailableMana: 4, ManaPool: 4}
	assert.Equal(t, s, s.Spend(0))

	got := s.Spend(3)
	assert.Equal(t, 1, got.AvailableMana)
	assert.Equal(t, 2, got.HandSize)
	assert.Equal(t, 4, got.ManaPool)
}

func TestStatsEndOfTurn(t *testing.T) {
	s := Stats{HandSize: 10, AvailableMana: 0, ManaPool: 5}
	got := s.EndOfTurn(7)
	assert.Equal(t, 7, got.HandSize)
	assert.Equal(t, 5, got.AvailableMana)

	small := Stats{HandSize: 2, ManaPool: 1}
	assert.Equal(t, 2, small.EndOfTurn(7).HandSize)
}

func TestStatsAdjustLife(t *testing.T) {
	s := Stats{Life: 2}
	assert.Equal(t, -3, s.AdjustLife(-5).Life)
	assert.Equal(t, 3, s.AdjustLife(1).Life)
}

func TestPhaseNext(t *testing.T) {
	assert.Equal(t, PhasePlay, PhaseUpkeep.Next())
	assert.Equal(t, PhaseCombat, PhasePlay.Next())
	assert.Equal(t, PhaseEnd, PhaseCombat.Next())
	assert.Equal(t, PhaseUpkeep, PhaseEnd.Next())
	assert.Equal(t, "Combat", PhaseCombat.String())
}
