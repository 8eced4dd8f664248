package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultCatalog []byte

// Kind tags what an action does when it resolves.
type Kind string

const (
	KindCreature Kind = "creature"
	KindSpell    Kind = "spell"
	KindAttack   Kind = "attack"
	KindBlock    Kind = "block"
	KindOther    Kind = "other"
)

func (k Kind) valid() bool {
	switch k {
	case KindCreature, KindSpell, KindAttack, KindBlock, KindOther:
		return true
	}
	return false
}

// Action is a single catalog entry. Catalog data is never mutated after load;
// the engine works on copies.
type Action struct {
	Cost    int    `yaml:"cost" json:"cost"`
	Weight  int    `yaml:"weight" json:"weight"`
	Message string `yaml:"message" json:"message"`
	Type    Kind   `yaml:"type,omitempty" json:"type,omitempty"`

	// Range bounds rolled power/toughness as [min, max]. Empty means 1..cost.
	Range []int `yaml:"range,omitempty" json:"range,omitempty"`
}

// IsNoop reports whether this is the canonical "nothing eligible" action.
func (a Action) IsNoop() bool {
	return a.Message == "" && a.Cost == 0 && a.Weight == 0
}

// Responses holds the pools drawn from when the player acts.
type Responses struct {
	Cast   []Action `yaml:"cast" json:"cast"`
	Attack []Action `yaml:"attack" json:"attack"`
}

// Catalog is the full opponent "personality": what it casts on its own turn
// and how it answers the player's spells and attacks.
type Catalog struct {
	Name      string    `yaml:"name" json:"name"`
	Actions   []Action  `yaml:"actions" json:"actions"`
	Responses Responses `yaml:"responses" json:"responses"`
}

var (
	// ErrEmptyPool is returned when a pool has no entries.
	ErrEmptyPool = errors.New("action pool is empty")
	// ErrNoFreeResponse is returned when a responses pool lacks an always-affordable fallback.
	ErrNoFreeResponse = errors.New("responses pool has no zero-cost fallback")
	// ErrInvalidAction is returned for entries with impossible values.
	ErrInvalidAction = errors.New("invalid action")
)

// Parse decodes and validates catalog YAML.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog YAML: %w", err)
	}
	c.normalize()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Load reads and validates a catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// Default returns the embedded catalog.
// Panics if the embedded data is invalid.
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return c
}

// normalize fills in the type for untyped entries.
func (c *Catalog) normalize() {
	for _, pool := range c.pools() {
		for i := range pool.actions {
			if pool.actions[i].Type == "" {
				pool.actions[i].Type = KindOther
			}
		}
	}
}

type namedPool struct {
	name    string
	actions []Action
}

func (c *Catalog) pools() []namedPool {
	return []namedPool{
		{"actions", c.Actions},
		{"responses.cast", c.Responses.Cast},
		{"responses.attack", c.Responses.Attack},
	}
}

// Validate checks every pool. The engine relies on these guarantees: no pool
// is empty, and each responses pool has a zero-cost entry that always resolves.
func (c *Catalog) Validate() error {
	for _, pool := range c.pools() {
		if len(pool.actions) == 0 {
			return fmt.Errorf("%s: %w", pool.name, ErrEmptyPool)
		}
		for i, a := range pool.actions {
			if err := validateAction(a); err != nil {
				return fmt.Errorf("%s[%d]: %w", pool.name, i, err)
			}
		}
	}

	for _, pool := range c.pools()[1:] {
		if !hasFreeFallback(pool.actions) {
			return fmt.Errorf("%s: %w", pool.name, ErrNoFreeResponse)
		}
	}
	return nil
}

func validateAction(a Action) error {
	if a.Cost < 0 {
		return fmt.Errorf("%w: negative cost %d", ErrInvalidAction, a.Cost)
	}
	if a.Weight < 0 {
		return fmt.Errorf("%w: negative weight %d", ErrInvalidAction, a.Weight)
	}
	if !a.Type.valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidAction, a.Type)
	}
	if a.Message == "" && a.Type != KindBlock {
		return fmt.Errorf("%w: empty message", ErrInvalidAction)
	}
	if len(a.Range) != 0 {
		if len(a.Range) != 2 {
			return fmt.Errorf("%w: range needs exactly two values", ErrInvalidAction)
		}
		if a.Range[0] < 1 || a.Range[1] < a.Range[0] {
			return fmt.Errorf("%w: bad range %v", ErrInvalidAction, a.Range)
		}
	}
	return nil
}

// hasFreeFallback reports whether the pool has a weighted zero-cost entry that
// resolves unconditionally. Block responses need an untapped creature, so they
// do not count.
func hasFreeFallback(pool []Action) bool {
	for _, a := range pool {
		if a.Cost == 0 && a.Weight > 0 && a.Type != KindBlock {
			return true
		}
	}
	return false
}
