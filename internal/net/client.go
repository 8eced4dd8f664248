package net

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

var (
	errQuit = errors.New("quit")
	errHelp = errors.New("help")
)

// Client connects to a game server and provides a terminal REPL.
type Client struct {
	conn net.Conn
	in   io.Reader
	out  io.Writer
	mu   sync.Mutex // serializes writes to out
}

func NewClient(conn net.Conn, in io.Reader, out io.Writer) *Client {
	return &Client{conn: conn, in: in, out: out}
}

// Connect dials a host and runs the REPL until the player quits or the host
// goes away.
func Connect(ctx context.Context, addr string, in io.Reader, out io.Writer) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	fmt.Fprintln(out, "Connected! Type h for help.")
	return NewClient(conn, in, out).Run(ctx)
}

// Run renders server messages and sends commands read from the input.
func (c *Client) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// The scanner blocks on input and cannot be interrupted; it exits on the
	// next line or EOF after Run returns.
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	grp, gctx := errgroup.WithContext(ctx)
	grp.Go(func() error {
		defer cancel()
		return c.readLoop()
	})
	grp.Go(func() error {
		defer c.conn.Close()
		return c.inputLoop(gctx, lines)
	})
	return grp.Wait()
}

func (c *Client) readLoop() error {
	dec := json.NewDecoder(c.conn)
	for {
		var msg ServerMessage
		if err := dec.Decode(&msg); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrClosedPipe) {
				return nil
			}
			return fmt.Errorf("read message: %w", err)
		}

		c.mu.Lock()
		switch msg.Type {
		case TypeEvent:
			c.renderEvent(msg.Event)
		case TypeState:
			c.renderState(msg.State)
		case TypeError:
			fmt.Fprintf(c.out, "! %s\n", msg.Error)
		}
		fmt.Fprint(c.out, "> ")
		c.mu.Unlock()
	}
}

func (c *Client) inputLoop(ctx context.Context, lines <-chan string) error {
	enc := json.NewEncoder(c.conn)
	if err := enc.Encode(ClientMessage{Type: CmdState}); err != nil {
		return fmt.Errorf("send state: %w", err)
	}
	for {
		var line string
		select {
		case <-ctx.Done():
			return nil
		case l, ok := <-lines:
			if !ok {
				return nil
			}
			line = l
		}

		msg, err := ParseCommand(line)
		switch {
		case errors.Is(err, errQuit):
			return nil
		case errors.Is(err, errHelp):
			c.mu.Lock()
			fmt.Fprint(c.out, helpText)
			fmt.Fprint(c.out, "> ")
			c.mu.Unlock()
			continue
		case err != nil:
			c.mu.Lock()
			fmt.Fprintf(c.out, "%v\n> ", err)
			c.mu.Unlock()
			continue
		}
		if err := enc.Encode(msg); err != nil {
			return fmt.Errorf("send %s: %w", msg.Type, err)
		}
	}
}

const helpText = `Commands:
  a        advance the opponent's phase
  p        pass the turn
  s        cast a spell (opponent may respond)
  k        attack (opponent may respond)
  t N      tap/untap opponent creature N
  d N      destroy opponent creature N
  b N      toggle creature N as a blocker
  l N      change opponent life by N (e.g. l -3)
  r        new game
  v        show the board
  q        quit
`

// ParseCommand turns one REPL line into a client message. Creature numbers
// are 1-based on the command line and 0-based on the wire.
func ParseCommand(line string) (ClientMessage, error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return ClientMessage{}, errHelp
	}

	simple := map[string]string{
		"a": CmdAdvance, "advance": CmdAdvance,
		"p": CmdPass, "pass": CmdPass,
		"s": CmdRespondSpell, "spell": CmdRespondSpell,
		"k": CmdRespondAttack, "attack": CmdRespondAttack,
		"r": CmdReset, "reset": CmdReset,
		"v": CmdState, "state": CmdState,
	}
	indexed := map[string]string{
		"t": CmdTap, "tap": CmdTap,
		"d": CmdDestroy, "destroy": CmdDestroy,
		"b": CmdBlock, "block": CmdBlock,
	}

	cmd := fields[0]
	switch {
	case cmd == "q" || cmd == "quit":
		return ClientMessage{}, errQuit
	case cmd == "h" || cmd == "help" || cmd == "?":
		return ClientMessage{}, errHelp
	case simple[cmd] != "":
		return ClientMessage{Type: simple[cmd]}, nil
	case indexed[cmd] != "":
		if len(fields) != 2 {
			return ClientMessage{}, fmt.Errorf("usage: %s N", cmd)
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil || n < 1 {
			return ClientMessage{}, fmt.Errorf("creature number must be 1 or more, got %q", fields[1])
		}
		return ClientMessage{Type: indexed[cmd], Index: n - 1}, nil
	case cmd == "l" || cmd == "life":
		if len(fields) != 2 {
			return ClientMessage{}, fmt.Errorf("usage: %s N", cmd)
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			return ClientMessage{}, fmt.Errorf("life change must be a number, got %q", fields[1])
		}
		return ClientMessage{Type: CmdLife, Delta: n}, nil
	}
	return ClientMessage{}, fmt.Errorf("unknown command %q (h for help)", cmd)
}

func (c *Client) renderEvent(ev *EventView) {
	if ev == nil {
		return
	}
	fmt.Fprintf(c.out, "T%-2d %-8s| %s\n", ev.Turn, ev.Phase, ev.Details)
}

func (c *Client) renderState(sv *StateView) {
	if sv == nil {
		return
	}
	opp := sv.Opponent

	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, "╔══════════════════════════════════════════════════════╗")
	fmt.Fprintf(c.out, "║  OPPONENT (Life: %d)  Hand: %d  Library: %d  Graveyard: %d\n",
		opp.Life, opp.HandCount, opp.LibraryCount, opp.Graveyard)
	fmt.Fprintf(c.out, "║  Mana: %d/%d\n", opp.AvailableMana, opp.ManaPool)
	fmt.Fprintln(c.out, "║──────────────────────────────────────────────────────")
	if len(sv.Creatures) == 0 {
		fmt.Fprintln(c.out, "║  (no creatures)")
	}
	for _, cv := range sv.Creatures {
		fmt.Fprintf(c.out, "║  %d) %s%s\n", cv.Index+1, cv.Desc, creatureFlags(cv))
	}
	fmt.Fprintln(c.out, "╚══════════════════════════════════════════════════════╝")

	turnInfo := fmt.Sprintf("Turn %d | %s", sv.Turn, sv.Phase)
	if sv.IsYourTurn {
		turnInfo += " | Your turn"
	} else {
		turnInfo += " | Opponent's turn"
	}
	fmt.Fprintln(c.out, turnInfo)
	if sv.Message != "" {
		fmt.Fprintf(c.out, "» %s\n", sv.Message)
	}
}

func creatureFlags(cv CreatureView) string {
	var flags []string
	if cv.Tapped {
		flags = append(flags, "tapped")
	}
	if cv.SummoningSick {
		flags = append(flags, "sick")
	}
	if cv.Blocking {
		flags = append(flags, "blocking")
	}
	if len(flags) == 0 {
		return ""
	}
	return " [" + strings.Join(flags, ", ") + "]"
}
