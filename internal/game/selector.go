package game

import (
	"errors"
	"math/rand"

	"github.com/peterkuimelis/goldfish/internal/catalog"
)

// ErrEmptyCatalog is returned when Pick is handed a pool with no entries.
var ErrEmptyCatalog = errors.New("empty action pool")

// Noop is the action returned when nothing in a pool is affordable.
var Noop = catalog.Action{}

// Pick draws one action with cost <= availableMana, weighted by Weight.
// If no action is affordable it returns Noop. The pool is never modified.
func Pick(pool []catalog.Action, availableMana int, rng *rand.Rand) (catalog.Action, error) {
	if len(pool) == 0 {
		return Noop, ErrEmptyCatalog
	}
	i := pickIndex(pool, availableMana, func(int) bool { return true }, rng)
	if i < 0 {
		return Noop, nil
	}
	return pool[i], nil
}

// pickIndex returns the index of the drawn action among those that are
// affordable and accepted by keep, or -1 when none qualify.
func pickIndex(pool []catalog.Action, availableMana int, keep func(i int) bool, rng *rand.Rand) int {
	eligible := make([]int, 0, len(pool))
	total := 0
	for i, a := range pool {
		if a.Cost > availableMana || !keep(i) {
			continue
		}
		eligible = append(eligible, i)
		total += a.Weight
	}
	if len(eligible) == 0 {
		return -1
	}
	last := eligible[len(eligible)-1]
	if total <= 0 {
		return last
	}

	draw := rng.Intn(total)
	cum := 0
	for _, i := range eligible {
		cum += pool[i].Weight
		if draw < cum {
			return i
		}
	}
	return last
}
