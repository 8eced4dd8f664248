package game

import "math/rand"

// Defaults for a new game.
const (
	DefaultHandSize     = 7
	DefaultLibrary      = 60
	DefaultLife         = 40
	DefaultMaxHandSize  = 7
	DefaultManaChance   = 0.6
	DefaultAttackChance = 0.6
)

// --- Board transforms ---
//
// Every transform returns a fresh slice; the input is never written to.
// Out-of-range indices return an unchanged copy.

func cloneCreatures(creatures []Creature) []Creature {
	out := make([]Creature, len(creatures))
	copy(out, creatures)
	return out
}

// UntapAll clears the tapped, summoning sickness and blocked flags on every
// creature.
func UntapAll(creatures []Creature) []Creature {
	out := cloneCreatures(creatures)
	for i := range out {
		out[i].IsTapped = false
		out[i].HasSummoningSickness = false
		out[i].HasBlocked = false
	}
	return out
}

// Tap toggles the tapped flag of the creature at i.
func Tap(creatures []Creature, i int) []Creature {
	out := cloneCreatures(creatures)
	if i >= 0 && i < len(out) {
		out[i].IsTapped = !out[i].IsTapped
	}
	return out
}

// Destroy removes the creature at i. The bool reports whether anything was
// removed.
func Destroy(creatures []Creature, i int) ([]Creature, bool) {
	if i < 0 || i >= len(creatures) {
		return cloneCreatures(creatures), false
	}
	out := make([]Creature, 0, len(creatures)-1)
	out = append(out, creatures[:i]...)
	out = append(out, creatures[i+1:]...)
	return out, true
}

// Block toggles the blocked flag of the creature at i.
func Block(creatures []Creature, i int) []Creature {
	out := cloneCreatures(creatures)
	if i >= 0 && i < len(out) {
		out[i].HasBlocked = !out[i].HasBlocked
	}
	return out
}

// --- Stats transforms ---

// DrawResult describes what happened during an Upkeep draw.
type DrawResult int

const (
	DrawNone DrawResult = iota // library was empty
	DrawCard
	DrawCardAndMana
)

// DrawAndGainMana draws one card and, with probability chance, adds a mana
// source that is usable immediately. An empty library leaves s unchanged.
func (s Stats) DrawAndGainMana(rng *rand.Rand, chance float64) (Stats, DrawResult) {
	if s.Library <= 0 {
		return s, DrawNone
	}
	s.Library--
	s.HandSize++
	if rng.Float64() < chance {
		s.ManaPool++
		s.AvailableMana++
		return s, DrawCardAndMana
	}
	return s, DrawCard
}

// Spend pays for a resolved action. Free actions cost nothing and keep the
// card in hand.
func (s Stats) Spend(cost int) Stats {
	if cost <= 0 {
		return s
	}
	s.AvailableMana -= cost
	s.HandSize--
	return s
}

// EndOfTurn refills available mana from the pool and trims the hand to
// maxHand.
func (s Stats) EndOfTurn(maxHand int) Stats {
	s.AvailableMana = s.ManaPool
	if s.HandSize > maxHand {
		s.HandSize = maxHand
	}
	return s
}

// AdjustLife changes the life total. It may go below zero.
func (s Stats) AdjustLife(delta int) Stats {
	s.Life += delta
	return s
}
