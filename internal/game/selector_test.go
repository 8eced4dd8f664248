package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peterkuimelis/goldfish/internal/catalog"
)

func TestPickEmptyPool(t *testing.T) {
	a, err := Pick(nil, 10, rand.New(rand.NewSource(1)))
	require.ErrorIs(t, err, ErrEmptyCatalog)
	assert.True(t, a.IsNoop())
}

func TestPickNothingAffordable(t *testing.T) {
	pool := []catalog.Action{
		{Cost: 3, Weight: 1, Message: "three"},
		{Cost: 5, Weight: 1, Message: "five"},
	}
	a, err := Pick(pool, 2, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Equal(t, Noop, a)
	assert.Empty(t, a.Message)
}

func TestPickRespectsMana(t *testing.T) {
	pool := []catalog.Action{
		{Cost: 0, Weight: 1, Message: "zero"},
		{Cost: 1, Weight: 3, Message: "one"},
		{Cost: 2, Weight: 3, Message: "two"},
		{Cost: 4, Weight: 3, Message: "four"},
	}
	rng := rand.New(rand.NewSource(7))
	for mana := 0; mana <= 5; mana++ {
		for i := 0; i < 500; i++ {
			a, err := Pick(pool, mana, rng)
			require.NoError(t, err)
			assert.LessOrEqual(t, a.Cost, mana)
		}
	}
}

func TestPickDoesNotMutatePool(t *testing.T) {
	pool := []catalog.Action{
		{Cost: 1, Weight: 2, Message: "a */#", Range: []int{1, 3}},
		{Cost: 2, Weight: 5, Message: "b"},
	}
	before := make([]catalog.Action, len(pool))
	copy(before, pool)

	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 100; i++ {
		_, err := Pick(pool, 2, rng)
		require.NoError(t, err)
	}
	assert.Equal(t, before, pool)
}

func TestPickZeroWeightsFallsBackToLastEligible(t *testing.T) {
	pool := []catalog.Action{
		{Cost: 0, Weight: 0, Message: "first"},
		{Cost: 0, Weight: 0, Message: "second"},
		{Cost: 9, Weight: 0, Message: "unaffordable"},
	}
	a, err := Pick(pool, 1, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Equal(t, "second", a.Message)
}

// TestPickDistribution draws 20,000 times and checks each action's share
// against its weight, both per action and with a chi-square statistic.
func TestPickDistribution(t *testing.T) {
	pool := []catalog.Action{
		{Cost: 0, Weight: 1, Message: "w1"},
		{Cost: 1, Weight: 2, Message: "w2"},
		{Cost: 2, Weight: 3, Message: "w3"},
		{Cost: 3, Weight: 4, Message: "w4"},
		{Cost: 8, Weight: 50, Message: "too expensive"},
	}
	const draws = 20000
	rng := rand.New(rand.NewSource(2024))

	counts := make(map[string]int)
	for i := 0; i < draws; i++ {
		a, err := Pick(pool, 3, rng)
		require.NoError(t, err)
		counts[a.Message]++
	}
	assert.Zero(t, counts["too expensive"])

	total := 10.0
	chi2 := 0.0
	for _, a := range pool[:4] {
		expected := float64(a.Weight) / total
		observed := float64(counts[a.Message]) / draws
		assert.InDelta(t, expected, observed, 0.05, "share of %s", a.Message)

		e := expected * draws
		d := float64(counts[a.Message]) - e
		chi2 += d * d / e
	}
	// df=3; 16.27 is the 0.001 critical value.
	assert.Less(t, chi2, 16.27)
}
