package log

// EventType enumerates all observable game events.
type EventType int

const (
	EventNewTurn EventType = iota
	EventPhaseChange
	EventUntap
	EventDraw
	EventManaGain
	EventLibraryEmpty
	EventCast
	EventCreatureEnters
	EventNoAction
	EventAttackDeclare
	EventNoAttack
	EventResponse
	EventBlockReady
	EventNoResponse
	EventTap
	EventDestroy
	EventBlock
	EventHandSizeCap // hand trimmed to the maximum at End
	EventLifeChange
	EventEndTurn
	EventReset
)

var eventTypeNames = map[EventType]string{
	EventNewTurn:        "NewTurn",
	EventPhaseChange:    "PhaseChange",
	EventUntap:          "Untap",
	EventDraw:           "Draw",
	EventManaGain:       "ManaGain",
	EventLibraryEmpty:   "LibraryEmpty",
	EventCast:           "Cast",
	EventCreatureEnters: "CreatureEnters",
	EventNoAction:       "NoAction",
	EventAttackDeclare:  "AttackDeclare",
	EventNoAttack:       "NoAttack",
	EventResponse:       "Response",
	EventBlockReady:     "BlockReady",
	EventNoResponse:     "NoResponse",
	EventTap:            "Tap",
	EventDestroy:        "Destroy",
	EventBlock:          "Block",
	EventHandSizeCap:    "HandSizeCap",
	EventLifeChange:     "LifeChange",
	EventEndTurn:        "EndTurn",
	EventReset:          "Reset",
}

func (e EventType) String() string {
	if s, ok := eventTypeNames[e]; ok {
		return s
	}
	return "Unknown"
}

// Acting side of an event.
const (
	SidePlayer   = 0
	SideOpponent = 1
)

// GameEvent represents a single observable event in a goldfish game.
type GameEvent struct {
	Seq     int       // monotonic sequence number
	Turn    int       // which turn (1-based)
	Phase   string    // current phase name (e.g. "Combat")
	Player  int       // acting side (SidePlayer or SideOpponent)
	Type    EventType // event type
	Card    string    // creature description (if applicable)
	Details string    // human-readable detail string
}
