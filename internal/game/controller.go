package game

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/peterkuimelis/goldfish/internal/catalog"
	"github.com/peterkuimelis/goldfish/internal/log"
)

// Messages shown to the player.
const (
	MsgLibraryEmpty   = "Opponent has no cards left in their library."
	MsgDraw           = "Opponent draws a card."
	MsgDrawAndMana    = "Opponent draws a card and adds a mana source."
	MsgNoAction       = "No actions taken."
	MsgCannotAttack   = "Opponent cannot attack."
	MsgChooseNoAttack = "Opponent chooses not to attack."
	MsgEndTurn        = "Opponent ends their turn."
	MsgNoResponse     = "No response."
	MsgBlockReady     = "Opponent is ready to block. Select a creature to block with."
)

var (
	// ErrPlayerPriority is returned by AdvancePhase while it is the player's turn.
	ErrPlayerPriority = errors.New("player has priority")
	// ErrClosed is returned by phase transitions after Close.
	ErrClosed = errors.New("controller closed")
)

// Config holds configuration for a new controller. Zero values select the
// defaults.
type Config struct {
	Catalog       *catalog.Catalog // nil uses catalog.Default()
	Logger        log.EventLogger  // game events; nil uses a MemoryLogger
	Zap           *zap.Logger      // process log; nil discards
	Seed          int64            // RNG seed (0 for random)
	StartingStats Stats            // zero value uses DefaultStats()
	MaxHandSize   int
	ManaChance    float64 // chance an Upkeep draw adds a mana source; negative means never
	AttackChance  float64 // chance to attack when able; negative means never
	AutoAdvance   time.Duration
}

func (cfg Config) withDefaults() Config {
	if cfg.Catalog == nil {
		cfg.Catalog = catalog.Default()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewMemoryLogger()
	}
	if cfg.Zap == nil {
		cfg.Zap = zap.NewNop()
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if cfg.StartingStats == (Stats{}) {
		cfg.StartingStats = DefaultStats()
	}
	if cfg.MaxHandSize <= 0 {
		cfg.MaxHandSize = DefaultMaxHandSize
	}
	if cfg.ManaChance == 0 {
		cfg.ManaChance = DefaultManaChance
	}
	if cfg.AttackChance == 0 {
		cfg.AttackChance = DefaultAttackChance
	}
	return cfg
}

// Controller runs the opponent's turn. All transitions are serialized by mu;
// subscribers are notified after the lock is released.
type Controller struct {
	mu  sync.Mutex
	cfg Config
	zl  *zap.Logger
	rng *rand.Rand
	tpl *Templater

	gameID    string
	stats     Stats
	creatures []Creature
	phase     Phase
	message   string
	turn      int
	priority  Priority

	timer  *time.Timer
	gen    uint64 // bumped on every explicit transition; stale timers compare against it
	closed bool

	notifyMu sync.Mutex // keeps pushes in transition order
	subMu    sync.Mutex
	subs     map[int]func(Snapshot)
	nextSub  int
}

// NewController validates the catalog and returns a controller at the start
// of turn 1 with the player holding priority.
func NewController(cfg Config) (*Controller, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Catalog.Validate(); err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	rng := rand.New(rand.NewSource(cfg.Seed))
	c := &Controller{
		cfg:  cfg,
		zl:   cfg.Zap,
		rng:  rng,
		tpl:  NewTemplater(rng),
		subs: make(map[int]func(Snapshot)),
	}
	c.resetLocked()
	return c, nil
}

// --- Read side ---

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Events returns the game event logger.
func (c *Controller) Events() log.EventLogger {
	return c.cfg.Logger
}

// Catalog returns the catalog the controller draws from.
func (c *Controller) Catalog() *catalog.Catalog {
	return c.cfg.Catalog
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		GameID:    c.gameID,
		Stats:     c.stats,
		Creatures: cloneCreatures(c.creatures),
		Phase:     c.phase,
		Message:   c.message,
		Turn:      c.turn,
		Priority:  c.priority,
	}
}

// --- Subscriptions ---

// Subscribe registers fn to receive a snapshot after every transition,
// including timer-driven ones. fn must not call back into the controller
// synchronously. The returned func removes the subscription.
func (c *Controller) Subscribe(fn func(Snapshot)) func() {
	c.subMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.subMu.Unlock()
	return func() {
		c.subMu.Lock()
		delete(c.subs, id)
		c.subMu.Unlock()
	}
}

// unlockedSnapshot releases mu and returns the unchanged state. Must be called
// with mu held.
func (c *Controller) unlockedSnapshot() Snapshot {
	snap := c.snapshotLocked()
	c.mu.Unlock()
	return snap
}

// commit snapshots the state, releases mu and notifies subscribers.
// Must be called with mu held.
func (c *Controller) commit() Snapshot {
	snap := c.snapshotLocked()
	c.notifyMu.Lock()
	c.mu.Unlock()
	defer c.notifyMu.Unlock()

	c.subMu.Lock()
	fns := make([]func(Snapshot), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.subMu.Unlock()
	for _, fn := range fns {
		fn(snap)
	}
	return snap
}

// --- Phase transitions ---

// PassTurn hands the turn to the opponent and runs its Upkeep. During the
// opponent's turn it runs every remaining phase in order through End.
func (c *Controller) PassTurn() (Snapshot, error) {
	c.mu.Lock()
	if c.closed {
		return c.unlockedSnapshot(), ErrClosed
	}
	c.cancelTimerLocked()
	if c.priority == PriorityPlayer {
		c.priority = PriorityOpponent
		c.upkeepLocked()
	} else {
		for c.priority == PriorityOpponent {
			c.stepLocked()
		}
	}
	c.armTimerLocked()
	return c.commit(), nil
}

// AdvancePhase runs the next opponent phase.
func (c *Controller) AdvancePhase() (Snapshot, error) {
	c.mu.Lock()
	if c.closed {
		return c.unlockedSnapshot(), ErrClosed
	}
	if c.priority == PriorityPlayer {
		return c.unlockedSnapshot(), ErrPlayerPriority
	}
	c.cancelTimerLocked()
	c.stepLocked()
	c.armTimerLocked()
	return c.commit(), nil
}

func (c *Controller) stepLocked() {
	switch c.phase.Next() {
	case PhaseUpkeep:
		c.upkeepLocked()
	case PhasePlay:
		c.playLocked()
	case PhaseCombat:
		c.combatLocked()
	case PhaseEnd:
		c.endLocked()
	}
}

func (c *Controller) enterLocked(p Phase) {
	c.phase = p
	c.cfg.Logger.Log(log.NewPhaseChangeEvent(c.turn, p.String()))
	c.zl.Debug("phase", zap.String("game", c.gameID), zap.Int("turn", c.turn), zap.Stringer("phase", p))
}

func (c *Controller) upkeepLocked() {
	c.cfg.Logger.Log(log.NewTurnEvent(c.turn))
	c.enterLocked(PhaseUpkeep)

	c.creatures = UntapAll(c.creatures)
	c.cfg.Logger.Log(log.NewUntapEvent(c.turn, len(c.creatures)))

	stats, res := c.stats.DrawAndGainMana(c.rng, c.cfg.ManaChance)
	c.stats = stats
	switch res {
	case DrawNone:
		c.message = MsgLibraryEmpty
		c.cfg.Logger.Log(log.NewLibraryEmptyEvent(c.turn))
	case DrawCard:
		c.message = MsgDraw
		c.cfg.Logger.Log(log.NewDrawEvent(c.turn, stats.HandSize, stats.Library))
	case DrawCardAndMana:
		c.message = MsgDrawAndMana
		c.cfg.Logger.Log(log.NewDrawEvent(c.turn, stats.HandSize, stats.Library))
		c.cfg.Logger.Log(log.NewManaGainEvent(c.turn, stats.ManaPool))
	}
}

func (c *Controller) playLocked() {
	c.enterLocked(PhasePlay)

	if c.stats.HandSize <= 0 || c.stats.AvailableMana <= 0 {
		c.noActionLocked("no cards or no mana")
		return
	}
	a, err := Pick(castable(c.cfg.Catalog.Actions), c.stats.AvailableMana, c.rng)
	if err != nil {
		c.zl.Warn("no castable actions", zap.Error(err), zap.String("game", c.gameID))
		c.noActionLocked("no castable actions")
		return
	}
	if a.IsNoop() {
		c.noActionLocked("nothing affordable")
		return
	}
	c.message = c.resolveLocked(a)
	c.cfg.Logger.Log(log.NewCastEvent(c.turn, c.phase.String(), c.message, a.Cost))
}

// castable drops block entries, which only make sense as responses.
func castable(pool []catalog.Action) []catalog.Action {
	out := make([]catalog.Action, 0, len(pool))
	for _, a := range pool {
		if a.Type != catalog.KindBlock {
			out = append(out, a)
		}
	}
	return out
}

func (c *Controller) noActionLocked(reason string) {
	c.message = MsgNoAction
	c.cfg.Logger.Log(log.NewNoActionEvent(c.turn, c.phase.String(), reason))
}

// resolveLocked expands and pays for a, spawning a creature for creature
// actions. It returns the rendered message.
func (c *Controller) resolveLocked(a catalog.Action) string {
	exp, err := c.tpl.Expand(a, nil)
	if err != nil {
		c.zl.Warn("template", zap.Error(err), zap.String("game", c.gameID))
	}

	switch a.Type {
	case catalog.KindCreature:
		var cr Creature
		if exp.Creature != nil {
			cr = *exp.Creature
		}
		cr = c.tpl.Complete(a, cr)
		cr.HasSummoningSickness = true
		c.creatures = append(cloneCreatures(c.creatures), cr)
		c.stats = c.stats.Spend(a.Cost)
		c.cfg.Logger.Log(log.NewCreatureEntersEvent(c.turn, c.phase.String(), cr.String(), len(c.creatures)-1))
	default:
		c.stats = c.stats.Spend(a.Cost)
		if a.Cost > 0 {
			c.stats.Graveyard++
		}
	}
	return exp.Message
}

func (c *Controller) combatLocked() {
	c.enterLocked(PhaseCombat)

	var able []int
	for i, cr := range c.creatures {
		if cr.CanAttack() {
			able = append(able, i)
		}
	}
	if len(able) == 0 {
		c.message = MsgCannotAttack
		c.cfg.Logger.Log(log.NewNoAttackEvent(c.turn, "no untapped creatures"))
		return
	}
	if c.rng.Float64() >= c.cfg.AttackChance {
		c.message = MsgChooseNoAttack
		c.cfg.Logger.Log(log.NewNoAttackEvent(c.turn, "declined"))
		return
	}

	n := 1 + c.rng.Intn(len(able))
	chosen := make([]int, 0, n)
	for _, p := range c.rng.Perm(len(able))[:n] {
		chosen = append(chosen, able[p])
	}
	sort.Ints(chosen)

	creatures := cloneCreatures(c.creatures)
	descs := make([]string, 0, n)
	for _, i := range chosen {
		creatures[i].IsTapped = true
		descs = append(descs, creatures[i].Described())
		c.cfg.Logger.Log(log.NewAttackDeclareEvent(c.turn, creatures[i].String(), i))
	}
	c.creatures = creatures
	c.message = "Opponent attacks with " + joinAnd(descs) + "."
}

// joinAnd joins items as "a, b and c".
func joinAnd(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	}
	return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
}

func (c *Controller) endLocked() {
	c.enterLocked(PhaseEnd)

	before := c.stats.HandSize
	c.stats = c.stats.EndOfTurn(c.cfg.MaxHandSize)
	if c.stats.HandSize != before {
		c.cfg.Logger.Log(log.NewHandSizeCapEvent(c.turn, before, c.stats.HandSize))
	}
	c.cfg.Logger.Log(log.NewEndTurnEvent(c.turn, c.stats.AvailableMana))
	c.message = MsgEndTurn
	c.turn++
	c.priority = PriorityPlayer
}

// --- Responses ---

// RespondToSpell lets the opponent answer a spell the player cast.
func (c *Controller) RespondToSpell() Snapshot {
	c.mu.Lock()
	if c.closed {
		return c.unlockedSnapshot()
	}
	c.respondLocked(c.cfg.Catalog.Responses.Cast, "spell")
	return c.commit()
}

// RespondToAttack lets the opponent answer the player's attack.
func (c *Controller) RespondToAttack() Snapshot {
	c.mu.Lock()
	if c.closed {
		return c.unlockedSnapshot()
	}
	c.respondLocked(c.cfg.Catalog.Responses.Attack, "attack")
	return c.commit()
}

// respondLocked draws from pool until something resolves. Block entries are
// dropped from the draw when no creature can block; the number of draws is
// bounded by the pool size.
func (c *Controller) respondLocked(pool []catalog.Action, to string) {
	mana := c.stats.AvailableMana
	if c.stats.HandSize <= 0 {
		mana = 0
	}
	excluded := make(map[int]bool)
	keep := func(i int) bool { return !excluded[i] }

	for attempt := 0; attempt < len(pool); attempt++ {
		i := pickIndex(pool, mana, keep, c.rng)
		if i < 0 {
			break
		}
		a := pool[i]
		if a.Type == catalog.KindBlock {
			if !c.hasBlockerLocked() {
				excluded[i] = true
				continue
			}
			c.message = MsgBlockReady
			c.cfg.Logger.Log(log.NewBlockReadyEvent(c.turn, c.phase.String()))
			return
		}
		c.message = c.resolveLocked(a)
		if c.message == MsgNoResponse {
			c.cfg.Logger.Log(log.NewNoResponseEvent(c.turn, c.phase.String(), to))
		} else {
			c.cfg.Logger.Log(log.NewResponseEvent(c.turn, c.phase.String(), to, c.message))
		}
		return
	}

	c.message = MsgNoResponse
	c.cfg.Logger.Log(log.NewNoResponseEvent(c.turn, c.phase.String(), to))
}

func (c *Controller) hasBlockerLocked() bool {
	for _, cr := range c.creatures {
		if cr.CanBlock() {
			return true
		}
	}
	return false
}

// --- Board edits from the player ---

// TapCreature toggles the tapped flag of the creature at index.
func (c *Controller) TapCreature(index int) Snapshot {
	c.mu.Lock()
	if c.closed {
		return c.unlockedSnapshot()
	}
	if c.inRangeLocked(index, "tap") {
		c.creatures = Tap(c.creatures, index)
		cr := c.creatures[index]
		c.cfg.Logger.Log(log.NewTapEvent(c.turn, c.phase.String(), cr.String(), index, cr.IsTapped))
	}
	return c.commit()
}

// DestroyCreature removes the creature at index and puts it in the graveyard.
func (c *Controller) DestroyCreature(index int) Snapshot {
	c.mu.Lock()
	if c.closed {
		return c.unlockedSnapshot()
	}
	if c.inRangeLocked(index, "destroy") {
		desc := c.creatures[index].String()
		c.creatures, _ = Destroy(c.creatures, index)
		c.stats.Graveyard++
		c.cfg.Logger.Log(log.NewDestroyEvent(c.turn, c.phase.String(), desc, index))
	}
	return c.commit()
}

// BlockCreature toggles the blocked flag of the creature at index.
func (c *Controller) BlockCreature(index int) Snapshot {
	c.mu.Lock()
	if c.closed {
		return c.unlockedSnapshot()
	}
	if c.inRangeLocked(index, "block") {
		c.creatures = Block(c.creatures, index)
		cr := c.creatures[index]
		c.cfg.Logger.Log(log.NewBlockEvent(c.turn, c.phase.String(), cr.String(), index, cr.HasBlocked))
	}
	return c.commit()
}

func (c *Controller) inRangeLocked(index int, op string) bool {
	if index >= 0 && index < len(c.creatures) {
		return true
	}
	c.zl.Debug("index out of range", zap.String("op", op), zap.Int("index", index), zap.Int("creatures", len(c.creatures)))
	return false
}

// AdjustLife changes the opponent's life total by delta.
func (c *Controller) AdjustLife(delta int) Snapshot {
	c.mu.Lock()
	if c.closed {
		return c.unlockedSnapshot()
	}
	before := c.stats.Life
	c.stats = c.stats.AdjustLife(delta)
	c.cfg.Logger.Log(log.NewLifeChangeEvent(c.turn, c.phase.String(), before, c.stats.Life))
	return c.commit()
}

// Reset starts a new game with a fresh ID.
func (c *Controller) Reset() Snapshot {
	c.mu.Lock()
	if c.closed {
		return c.unlockedSnapshot()
	}
	c.cancelTimerLocked()
	c.resetLocked()
	return c.commit()
}

func (c *Controller) resetLocked() {
	c.gameID = uuid.NewString()
	c.stats = c.cfg.StartingStats
	c.creatures = []Creature{}
	c.phase = PhaseEnd
	c.message = ""
	c.turn = 1
	c.priority = PriorityPlayer
	c.cfg.Logger.Log(log.NewResetEvent(c.gameID))
	c.zl.Info("new game", zap.String("game", c.gameID))
}

// --- Auto-advance ---

func (c *Controller) cancelTimerLocked() {
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// armTimerLocked schedules the next phase while the opponent holds priority.
func (c *Controller) armTimerLocked() {
	if c.cfg.AutoAdvance <= 0 || c.closed || c.priority != PriorityOpponent {
		return
	}
	gen := c.gen
	c.timer = time.AfterFunc(c.cfg.AutoAdvance, func() { c.autoAdvance(gen) })
}

func (c *Controller) autoAdvance(gen uint64) {
	c.mu.Lock()
	if gen != c.gen || c.closed || c.priority != PriorityOpponent {
		c.mu.Unlock()
		return
	}
	c.cancelTimerLocked()
	c.stepLocked()
	c.armTimerLocked()
	c.commit()
}

// Close stops any pending auto-advance. Later phase transitions fail with
// ErrClosed; responses, board edits and Reset leave the state unchanged.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.cancelTimerLocked()
}
