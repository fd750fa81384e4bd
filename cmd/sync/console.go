package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/osse101/RespawnQueue_Go/internal/clientsync"
	"github.com/osse101/RespawnQueue_Go/internal/domain"
)

var errQuit = errors.New("quit")

const helpText = `commands:
  list                          respawns and their state
  state                         your claims and queue entries
  claim <respawn_id> <char_id>  claim a respawn
  release <claim_id>            release one of your claims
  join <respawn_id> <char_id>   join a respawn queue
  leave <respawn_id>            leave a respawn queue
  refresh                       reload from the server
  quit
`

// commands is the part of the syncer the console drives
type commands interface {
	View() *clientsync.View
	Refresh(ctx context.Context) error
	Claim(ctx context.Context, respawnID, characterID int64) error
	Release(ctx context.Context, claimID int64) error
	Join(ctx context.Context, respawnID, characterID int64) (int, error)
	Leave(ctx context.Context, respawnID int64) error
}

// console reads one command per line
type console struct {
	cmds commands
	in   io.Reader
	out  io.Writer
}

func newConsole(cmds commands, in io.Reader, out io.Writer) *console {
	return &console{cmds: cmds, in: in, out: out}
}

// Run executes commands until input ends, quit is entered or ctx is done
func (c *console) Run(ctx context.Context) error {
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

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if err := c.exec(ctx, line); err != nil {
				if errors.Is(err, errQuit) {
					return err
				}
				fmt.Fprintf(c.out, "error: %v\n", err)
			}
		}
	}
}

func (c *console) exec(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	args, err := parseIDs(fields[1:])
	if err != nil {
		return err
	}

	switch cmd := fields[0]; {
	case cmd == "quit" || cmd == "exit":
		return errQuit
	case cmd == "help":
		fmt.Fprint(c.out, helpText)
	case cmd == "list":
		c.printRespawns()
	case cmd == "state":
		c.printState()
	case cmd == "refresh":
		return c.cmds.Refresh(ctx)
	case cmd == "claim" && len(args) == 2:
		if err := c.cmds.Claim(ctx, args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "claimed respawn %d\n", args[0])
	case cmd == "release" && len(args) == 1:
		if err := c.cmds.Release(ctx, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "released claim %d\n", args[0])
	case cmd == "join" && len(args) == 2:
		position, err := c.cmds.Join(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "joined queue for respawn %d at position %d\n", args[0], position)
	case cmd == "leave" && len(args) == 1:
		if err := c.cmds.Leave(ctx, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "left queue for respawn %d\n", args[0])
	default:
		return fmt.Errorf("unknown command %q, try help", line)
	}
	return nil
}

func parseIDs(fields []string) ([]int64, error) {
	ids := make([]int64, 0, len(fields))
	for _, f := range fields {
		id, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q", f)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (c *console) printRespawns() {
	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCODE\tNAME\tSTATE\tHOLDER\tQUEUE")
	for _, r := range c.cmds.View().Respawns() {
		holder := "-"
		switch {
		case r.ActiveClaim != nil:
			holder = claimHolder(*r.ActiveClaim)
		case r.PriorityHolder != nil:
			holder = r.PriorityHolder.UserID + " (priority)"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%d\n", r.ID, r.Code, r.Name, r.State, holder, r.QueueLength)
	}
	_ = w.Flush()
}

func (c *console) printState() {
	state := c.cmds.View().State()
	if len(state.Claims) == 0 && len(state.QueueEntries) == 0 {
		fmt.Fprintln(c.out, "no claims or queue entries")
		return
	}
	for _, cl := range state.Claims {
		left := "pending"
		if !cl.ExpiresAt.IsZero() {
			left = time.Until(cl.ExpiresAt).Round(time.Second).String()
		}
		fmt.Fprintf(c.out, "claim %d on respawn %d, %s left\n", cl.ID, cl.RespawnID, left)
	}
	for _, e := range state.QueueEntries {
		fmt.Fprintf(c.out, "queued for respawn %d at position %d\n", e.RespawnID, e.Position)
	}
}

func claimHolder(c domain.Claim) string {
	if c.CharacterName != "" {
		return c.CharacterName
	}
	return c.UserID
}
