package net

import (
	"errors"
	"fmt"

	"github.com/peterkuimelis/goldfish/internal/game"
	"github.com/peterkuimelis/goldfish/internal/log"
)

// Engine is the set of controller operations a client can drive.
type Engine interface {
	Snapshot() game.Snapshot
	PassTurn() (game.Snapshot, error)
	AdvancePhase() (game.Snapshot, error)
	RespondToSpell() game.Snapshot
	RespondToAttack() game.Snapshot
	TapCreature(index int) game.Snapshot
	DestroyCreature(index int) game.Snapshot
	BlockCreature(index int) game.Snapshot
	AdjustLife(delta int) game.Snapshot
	Reset() game.Snapshot
}

// Game is an Engine that also publishes transitions and events.
type Game interface {
	Engine
	Subscribe(fn func(game.Snapshot)) func()
	Events() log.EventLogger
}

// ErrUnknownCommand is returned for a client message with an unrecognized type.
var ErrUnknownCommand = errors.New("unknown command")

// Dispatch runs one client command against e. The reply always carries the
// resulting state; failures are reported as "error" messages and leave the
// game unchanged.
func Dispatch(e Engine, msg ClientMessage) ServerMessage {
	snap, err := apply(e, msg)
	sv := BuildStateView(snap)
	if err != nil {
		return ServerMessage{Type: TypeError, State: sv, Error: ErrorText(err)}
	}
	return ServerMessage{Type: TypeState, State: sv}
}

func apply(e Engine, msg ClientMessage) (game.Snapshot, error) {
	switch msg.Type {
	case CmdAdvance:
		return e.AdvancePhase()
	case CmdPass:
		return e.PassTurn()
	case CmdRespondSpell:
		return e.RespondToSpell(), nil
	case CmdRespondAttack:
		return e.RespondToAttack(), nil
	case CmdTap:
		return e.TapCreature(msg.Index), nil
	case CmdDestroy:
		return e.DestroyCreature(msg.Index), nil
	case CmdBlock:
		return e.BlockCreature(msg.Index), nil
	case CmdLife:
		return e.AdjustLife(msg.Delta), nil
	case CmdReset:
		return e.Reset(), nil
	case CmdState:
		return e.Snapshot(), nil
	default:
		return e.Snapshot(), fmt.Errorf("%w: %q", ErrUnknownCommand, msg.Type)
	}
}

// ErrorText turns an engine error into text for the player.
func ErrorText(err error) string {
	switch {
	case errors.Is(err, game.ErrPlayerPriority):
		return "It is your turn. Pass the turn to let the opponent act."
	case errors.Is(err, game.ErrClosed):
		return "The game has ended."
	default:
		return err.Error()
	}
}
