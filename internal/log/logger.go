package log

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
)

// EventLogger is the interface for logging game events.
type EventLogger interface {
	Log(event GameEvent)
	Events() []GameEvent
	// Since returns the events with Seq greater than seq, oldest first.
	Since(seq int) []GameEvent
	LastEvent() GameEvent
}

// --- MemoryLogger: stores events in memory for test assertions ---

// MemoryLogger is safe for concurrent use; the auto-advance timer logs from
// its own goroutine.
type MemoryLogger struct {
	mu     sync.Mutex
	events []GameEvent
	seq    int
}

func NewMemoryLogger() *MemoryLogger {
	return &MemoryLogger{}
}

func (l *MemoryLogger) Log(event GameEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq++
	event.Seq = l.seq
	l.events = append(l.events, event)
}

// Events returns a copy of everything logged so far.
func (l *MemoryLogger) Events() []GameEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]GameEvent, len(l.events))
	copy(out, l.events)
	return out
}

// Since returns events with a sequence number greater than seq. Events are
// stored in Seq order, so only the tail is copied.
func (l *MemoryLogger) Since(seq int) []GameEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := sort.Search(len(l.events), func(i int) bool { return l.events[i].Seq > seq })
	if i == len(l.events) {
		return nil
	}
	out := make([]GameEvent, len(l.events)-i)
	copy(out, l.events[i:])
	return out
}

// EventsOfType returns all events matching the given type.
func (l *MemoryLogger) EventsOfType(t EventType) []GameEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	var result []GameEvent
	for _, e := range l.events {
		if e.Type == t {
			result = append(result, e)
		}
	}
	return result
}

// LastEvent returns the most recent event, or a zero event if none.
func (l *MemoryLogger) LastEvent() GameEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.events) == 0 {
		return GameEvent{}
	}
	return l.events[len(l.events)-1]
}

// --- TextLogger: writes human-readable lines to an io.Writer ---

type TextLogger struct {
	MemoryLogger
	wmu sync.Mutex
	w   io.Writer
}

func NewTextLogger(w io.Writer) *TextLogger {
	return &TextLogger{w: w}
}

func (l *TextLogger) Log(event GameEvent) {
	l.MemoryLogger.Log(event)
	l.wmu.Lock()
	fmt.Fprintln(l.w, FormatEvent(event))
	l.wmu.Unlock()
}

// --- Formatting ---

// FormatEvent formats a single event as a human-readable line.
func FormatEvent(e GameEvent) string {
	return fmt.Sprintf("T%-2d %-8s| %s", e.Turn, e.Phase, e.Details)
}

// FormatAll formats all events as a multi-line string.
func FormatAll(events []GameEvent) string {
	var sb strings.Builder
	for _, e := range events {
		sb.WriteString(FormatEvent(e))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// --- Helper constructors for common events ---

func NewTurnEvent(turn int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   "Upkeep",
		Player:  SideOpponent,
		Type:    EventNewTurn,
		Details: fmt.Sprintf("=== Turn %d (Opp) ===", turn),
	}
}

func NewPhaseChangeEvent(turn int, phase string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  SideOpponent,
		Type:    EventPhaseChange,
		Details: fmt.Sprintf("Phase → %s", phase),
	}
}

func NewUntapEvent(turn int, count int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   "Upkeep",
		Player:  SideOpponent,
		Type:    EventUntap,
		Details: fmt.Sprintf("Opp untaps %d creature(s)", count),
	}
}

func NewDrawEvent(turn int, hand, library int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   "Upkeep",
		Player:  SideOpponent,
		Type:    EventDraw,
		Details: fmt.Sprintf("Opp draws (hand %d, library %d)", hand, library),
	}
}

func NewManaGainEvent(turn int, pool int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   "Upkeep",
		Player:  SideOpponent,
		Type:    EventManaGain,
		Details: fmt.Sprintf("Opp adds a mana source (pool %d)", pool),
	}
}

func NewLibraryEmptyEvent(turn int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   "Upkeep",
		Player:  SideOpponent,
		Type:    EventLibraryEmpty,
		Details: "Opp has no cards left to draw",
	}
}

func NewCastEvent(turn int, phase string, message string, cost int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  SideOpponent,
		Type:    EventCast,
		Details: fmt.Sprintf("%s (cost %d)", message, cost),
	}
}

func NewCreatureEntersEvent(turn int, phase string, creature string, index int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  SideOpponent,
		Type:    EventCreatureEnters,
		Card:    creature,
		Details: fmt.Sprintf("%s enters at slot %d", creature, index+1),
	}
}

func NewNoActionEvent(turn int, phase string, reason string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  SideOpponent,
		Type:    EventNoAction,
		Details: fmt.Sprintf("Opp takes no action (%s)", reason),
	}
}

func NewAttackDeclareEvent(turn int, creature string, index int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   "Combat",
		Player:  SideOpponent,
		Type:    EventAttackDeclare,
		Card:    creature,
		Details: fmt.Sprintf("Opp attacks with %s (slot %d)", creature, index+1),
	}
}

func NewNoAttackEvent(turn int, reason string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   "Combat",
		Player:  SideOpponent,
		Type:    EventNoAttack,
		Details: fmt.Sprintf("Opp does not attack (%s)", reason),
	}
}

func NewResponseEvent(turn int, phase string, to string, message string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  SideOpponent,
		Type:    EventResponse,
		Details: fmt.Sprintf("Opp responds to your %s: %s", to, message),
	}
}

func NewBlockReadyEvent(turn int, phase string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  SideOpponent,
		Type:    EventBlockReady,
		Details: "Opp is ready to block",
	}
}

func NewNoResponseEvent(turn int, phase string, to string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  SideOpponent,
		Type:    EventNoResponse,
		Details: fmt.Sprintf("Opp does not respond to your %s", to),
	}
}

func NewTapEvent(turn int, phase string, creature string, index int, tapped bool) GameEvent {
	state := "untapped"
	if tapped {
		state = "tapped"
	}
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  SidePlayer,
		Type:    EventTap,
		Card:    creature,
		Details: fmt.Sprintf("%s (slot %d) is %s by %s", creature, index+1, state, sideName(SidePlayer)),
	}
}

func NewDestroyEvent(turn int, phase string, creature string, index int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  SidePlayer,
		Type:    EventDestroy,
		Card:    creature,
		Details: fmt.Sprintf("%s (slot %d) is destroyed", creature, index+1),
	}
}

func NewBlockEvent(turn int, phase string, creature string, index int, blocking bool) GameEvent {
	details := fmt.Sprintf("%s (slot %d) blocks", creature, index+1)
	if !blocking {
		details = fmt.Sprintf("%s (slot %d) no longer blocks", creature, index+1)
	}
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  SideOpponent,
		Type:    EventBlock,
		Card:    creature,
		Details: details,
	}
}

func NewHandSizeCapEvent(turn int, from, to int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   "End",
		Player:  SideOpponent,
		Type:    EventHandSizeCap,
		Details: fmt.Sprintf("Opp hand trimmed %d → %d", from, to),
	}
}

func NewLifeChangeEvent(turn int, phase string, oldLife, newLife int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  SideOpponent,
		Type:    EventLifeChange,
		Details: fmt.Sprintf("Opp life: %d → %d", oldLife, newLife),
	}
}

func NewEndTurnEvent(turn int, mana int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   "End",
		Player:  SideOpponent,
		Type:    EventEndTurn,
		Details: fmt.Sprintf("Opp ends turn with %d mana available", mana),
	}
}

func NewResetEvent(gameID string) GameEvent {
	return GameEvent{
		Turn:    1,
		Player:  SidePlayer,
		Type:    EventReset,
		Details: fmt.Sprintf("New game %s", gameID),
	}
}
