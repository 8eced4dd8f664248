package game

import "fmt"

// --- Enums ---

type Phase int

const (
	PhaseUpkeep Phase = iota
	PhasePlay
	PhaseCombat
	PhaseEnd
)

func (p Phase) String() string {
	switch p {
	case PhaseUpkeep:
		return "Upkeep"
	case PhasePlay:
		return "Play"
	case PhaseCombat:
		return "Combat"
	case PhaseEnd:
		return "End"
	default:
		return "None"
	}
}

// Next returns the phase that follows p, wrapping End back to Upkeep.
func (p Phase) Next() Phase {
	if p >= PhaseEnd {
		return PhaseUpkeep
	}
	return p + 1
}

type Priority int

const (
	PriorityPlayer Priority = iota
	PriorityOpponent
)

func (p Priority) String() string {
	if p == PriorityOpponent {
		return "opponent"
	}
	return "player"
}

// --- Board ---

// Creature is one opponent creature on the board. Power and toughness are
// fixed once rolled.
type Creature struct {
	Power                string `json:"power"`
	Toughness            string `json:"toughness"`
	Ability              string `json:"ability,omitempty"`
	IsTapped             bool   `json:"isTapped"`
	HasSummoningSickness bool   `json:"hasSummoningSickness"`
	HasBlocked           bool   `json:"hasBlocked"`
}

// CanAttack reports whether the creature is untapped and has been around
// since the last Upkeep.
func (c Creature) CanAttack() bool {
	return !c.IsTapped && !c.HasSummoningSickness
}

// CanBlock reports whether the creature may be declared as a blocker.
func (c Creature) CanBlock() bool {
	return !c.IsTapped && !c.HasBlocked
}

// String renders the creature the way messages describe it, e.g.
// "3/2 flying creature".
func (c Creature) String() string {
	if c.Ability != "" {
		return fmt.Sprintf("%s/%s %s creature", c.Power, c.Toughness, c.Ability)
	}
	return fmt.Sprintf("%s/%s creature", c.Power, c.Toughness)
}

// Described prefixes the creature description with its indefinite article.
func (c Creature) Described() string {
	s := c.String()
	return article(s) + " " + s
}

// article picks "a" or "an" for a description starting with a stat line or a
// keyword. Only numbers read aloud with a vowel sound take "an".
func article(s string) string {
	n := 0
	digits := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + int(r-'0')
		digits++
	}
	if digits > 0 {
		switch {
		case n == 8 || n == 11 || n == 18:
			return "an"
		case n >= 80 && n <= 89:
			return "an"
		}
		return "a"
	}
	if s != "" {
		switch s[0] {
		case 'a', 'e', 'i', 'o', 'u', 'A', 'E', 'I', 'O', 'U':
			return "an"
		}
	}
	return "a"
}

// Stats is the opponent's resource economy.
type Stats struct {
	HandSize      int `json:"handSize"`
	Library       int `json:"library"`
	ManaPool      int `json:"manaPool"`
	AvailableMana int `json:"availableMana"`
	Graveyard     int `json:"graveyard"`
	Life          int `json:"life"`
}

// DefaultStats is the opening position of a new game.
func DefaultStats() Stats {
	return Stats{
		HandSize: DefaultHandSize,
		Library:  DefaultLibrary,
		Life:     DefaultLife,
	}
}

// Snapshot is a read-only copy of the controller state. The creature slice is
// never shared with the controller.
type Snapshot struct {
	GameID    string     `json:"gameId"`
	Stats     Stats      `json:"stats"`
	Creatures []Creature `json:"creatures"`
	Phase     Phase      `json:"phase"`
	Message   string     `json:"message"`
	Turn      int        `json:"turn"`
	Priority  Priority   `json:"priority"`
}
