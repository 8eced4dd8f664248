package net

import (
	"github.com/peterkuimelis/goldfish/internal/game"
	"github.com/peterkuimelis/goldfish/internal/log"
)

// Message types for the newline-delimited JSON protocol. The same envelopes
// are used over TCP and websocket.

// --- Server → Client messages ---

const (
	TypeState = "state"
	TypeEvent = "event"
	TypeError = "error"
)

// ServerMessage is the envelope for all server-to-client messages.
type ServerMessage struct {
	Type string `json:"type"`

	// For "state" and "error"
	State *StateView `json:"state,omitempty"`

	// For "event"
	Event *EventView `json:"event,omitempty"`

	// For "error"
	Error string `json:"error,omitempty"`
}

// EventView is a simplified game event for the client.
type EventView struct {
	Seq     int    `json:"seq"`
	Turn    int    `json:"turn"`
	Phase   string `json:"phase"`
	Player  int    `json:"player"`
	Type    string `json:"type"`
	Card    string `json:"card,omitempty"`
	Details string `json:"details"`
}

// StateView is the game as the player sees it.
type StateView struct {
	GameID     string         `json:"game_id"`
	Turn       int            `json:"turn"`
	Phase      string         `json:"phase"`
	Priority   string         `json:"priority"`
	IsYourTurn bool           `json:"is_your_turn"`
	Message    string         `json:"message"`
	Opponent   OpponentView   `json:"opponent"`
	Creatures  []CreatureView `json:"creatures"`
}

// OpponentView shows the opponent's resources.
type OpponentView struct {
	Life          int `json:"life"`
	HandCount     int `json:"hand_count"`
	LibraryCount  int `json:"library_count"`
	ManaPool      int `json:"mana_pool"`
	AvailableMana int `json:"available_mana"`
	Graveyard     int `json:"graveyard"`
}

// CreatureView describes one opponent creature. Index is the 0-based slot
// used by tap, destroy and block.
type CreatureView struct {
	Index         int    `json:"index"`
	Desc          string `json:"desc"`
	Power         string `json:"power"`
	Toughness     string `json:"toughness"`
	Ability       string `json:"ability,omitempty"`
	Tapped        bool   `json:"tapped,omitempty"`
	SummoningSick bool   `json:"summoning_sick,omitempty"`
	Blocking      bool   `json:"blocking,omitempty"`
}

// --- Client → Server messages ---

// Commands a client may send.
const (
	CmdAdvance       = "advance"
	CmdPass          = "pass"
	CmdRespondSpell  = "respond_spell"
	CmdRespondAttack = "respond_attack"
	CmdTap           = "tap"
	CmdDestroy       = "destroy"
	CmdBlock         = "block"
	CmdLife          = "life"
	CmdReset         = "reset"
	CmdState         = "state"
)

// ClientMessage is the envelope for all client-to-server messages.
type ClientMessage struct {
	Type string `json:"type"`

	// For "tap", "destroy" and "block"
	Index int `json:"index,omitempty"`

	// For "life"
	Delta int `json:"delta,omitempty"`
}

// Mutates reports whether the command changes the game. Successful mutations
// reach subscribers through the controller, so transports that subscribe
// need not echo the reply.
func (m ClientMessage) Mutates() bool {
	return m.Type != CmdState
}

// --- Views ---

// BuildStateView converts a controller snapshot into its wire form.
func BuildStateView(snap game.Snapshot) *StateView {
	sv := &StateView{
		GameID:     snap.GameID,
		Turn:       snap.Turn,
		Phase:      snap.Phase.String(),
		Priority:   snap.Priority.String(),
		IsYourTurn: snap.Priority == game.PriorityPlayer,
		Message:    snap.Message,
		Opponent: OpponentView{
			Life:          snap.Stats.Life,
			HandCount:     snap.Stats.HandSize,
			LibraryCount:  snap.Stats.Library,
			ManaPool:      snap.Stats.ManaPool,
			AvailableMana: snap.Stats.AvailableMana,
			Graveyard:     snap.Stats.Graveyard,
		},
		Creatures: make([]CreatureView, 0, len(snap.Creatures)),
	}
	for i, c := range snap.Creatures {
		sv.Creatures = append(sv.Creatures, CreatureView{
			Index:         i,
			Desc:          c.String(),
			Power:         c.Power,
			Toughness:     c.Toughness,
			Ability:       c.Ability,
			Tapped:        c.IsTapped,
			SummoningSick: c.HasSummoningSickness,
			Blocking:      c.HasBlocked,
		})
	}
	return sv
}

// BuildEventView converts a logged game event into its wire form.
func BuildEventView(e log.GameEvent) *EventView {
	return &EventView{
		Seq:     e.Seq,
		Turn:    e.Turn,
		Phase:   e.Phase,
		Player:  e.Player,
		Type:    e.Type.String(),
		Card:    e.Card,
		Details: e.Details,
	}
}
