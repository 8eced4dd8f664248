package game

import (
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"github.com/peterkuimelis/goldfish/internal/catalog"
)

// Message tokens.
const (
	TokenPower     = "*"
	TokenToughness = "#"
	TokenAbility   = "[ability]"
)

// Keywords is the fixed pool the [ability] token draws from.
var Keywords = []string{
	"lifelink",
	"reach",
	"deathtouch",
	"hexproof",
	"indestructible",
	"menace",
	"protection",
	"trample",
	"flying",
	"infect",
	"toxic",
}

// ErrMalformedTemplate is returned when a message has unbalanced brackets or
// an unknown bracket token. The message is still usable verbatim.
var ErrMalformedTemplate = errors.New("malformed message template")

// Expansion is the result of filling in a message template.
type Expansion struct {
	Message  string
	Creature *Creature // nil when the message had no tokens and no creature was given
}

// Templater resolves wildcard tokens using its own random source.
type Templater struct {
	rng *rand.Rand
}

func NewTemplater(rng *rand.Rand) *Templater {
	return &Templater{rng: rng}
}

// Expand replaces every token present in a.Message. Fields already set on c
// are reused rather than rolled again, so expanding twice against the same
// creature yields the same text. c itself is never modified.
func (t *Templater) Expand(a catalog.Action, c *Creature) (Expansion, error) {
	if err := checkBrackets(a.Message); err != nil {
		return Expansion{Message: a.Message, Creature: c}, err
	}

	var cr Creature
	if c != nil {
		cr = *c
	}
	msg := a.Message
	touched := false

	if strings.Contains(msg, TokenPower) {
		if cr.Power == "" {
			cr.Power = t.rollStat(a)
		}
		msg = strings.ReplaceAll(msg, TokenPower, cr.Power)
		touched = true
	}
	if strings.Contains(msg, TokenToughness) {
		if cr.Toughness == "" {
			cr.Toughness = t.rollStat(a)
		}
		msg = strings.ReplaceAll(msg, TokenToughness, cr.Toughness)
		touched = true
	}
	if strings.Contains(msg, TokenAbility) {
		if cr.Ability == "" {
			cr.Ability = Keywords[t.rng.Intn(len(Keywords))]
		}
		msg = strings.ReplaceAll(msg, TokenAbility, cr.Ability)
		touched = true
	}

	if !touched {
		return Expansion{Message: msg, Creature: c}, nil
	}
	return Expansion{Message: msg, Creature: &cr}, nil
}

// Complete rolls any stat the message did not mention so that every creature
// on the board has a power and toughness.
func (t *Templater) Complete(a catalog.Action, cr Creature) Creature {
	if cr.Power == "" {
		cr.Power = t.rollStat(a)
	}
	if cr.Toughness == "" {
		cr.Toughness = t.rollStat(a)
	}
	return cr
}

func (t *Templater) rollStat(a catalog.Action) string {
	lo, hi := statBounds(a)
	return strconv.Itoa(lo + t.rng.Intn(hi-lo+1))
}

// statBounds is the action's range when set, otherwise 1..cost (at least 1).
func statBounds(a catalog.Action) (int, int) {
	if len(a.Range) == 2 && a.Range[0] >= 1 && a.Range[1] >= a.Range[0] {
		return a.Range[0], a.Range[1]
	}
	return 1, max(a.Cost, 1)
}

func checkBrackets(msg string) error {
	rest := msg
	for {
		start := strings.IndexByte(rest, '[')
		end := strings.IndexByte(rest, ']')
		switch {
		case start < 0 && end < 0:
			return nil
		case start < 0 || (end >= 0 && end < start):
			return fmt.Errorf("%w: unmatched ']' in %q", ErrMalformedTemplate, msg)
		case end < 0:
			return fmt.Errorf("%w: unmatched '[' in %q", ErrMalformedTemplate, msg)
		}
		token := rest[start : end+1]
		if token != TokenAbility {
			return fmt.Errorf("%w: unknown token %s in %q", ErrMalformedTemplate, token, msg)
		}
		rest = rest[end+1:]
	}
}
