package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/thraizz/nfc-monopoly-go/internal/game"
)

// command is one line of an input script. Exactly one of its fields is set.
type command struct {
	line   int
	input  game.Input
	action func(e *game.Engine) error
	wait   time.Duration
	save   bool
	quit   bool
}

var buttons = map[string]game.Button{
	"left":   game.ButtonLeft,
	"center": game.ButtonCenter,
	"right":  game.ButtonRight,
}

// parseScript reads an input script. Blank lines and lines starting with #
// are skipped.
//
//	short center           button press
//	long center            long press
//	player card-1 Alice    player card tap, the name is optional
//	property 6             property card tap
//	event 2                event card tap
//	buy 1 | rent 1 | fine 1 | jailcard 1 | endturn 1
//	build 1 6 | sell 1 6 | mortgage 1 6 | unmortgage 1 6
//	bid 2 60 | surrender 6
//	wait 1.5s | save | quit
func parseScript(r io.Reader) ([]command, error) {
	var (
		cmds     []command
		parseErr error
	)
	err := scanScript(r, func(cmd command, err error) bool {
		if err != nil {
			parseErr = err
			return false
		}
		cmds = append(cmds, cmd)
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	if err != nil {
		return nil, err
	}
	return cmds, nil
}

// streamScript parses r line by line in the background so a script can be
// typed live on stdin. Bad lines are logged and skipped. The channel closes
// at end of input or when ctx is done.
func streamScript(ctx context.Context, r io.Reader, logger *zap.Logger) <-chan command {
	out := make(chan command)
	go func() {
		defer close(out)
		err := scanScript(r, func(cmd command, err error) bool {
			if err != nil {
				logger.Warn("skipping script line", zap.Error(err))
				return true
			}
			select {
			case out <- cmd:
				return true
			case <-ctx.Done():
				return false
			}
		})
		if err != nil {
			logger.Error("script input failed", zap.Error(err))
		}
	}()
	return out
}

// scanScript calls yield for each command line until yield returns false.
func scanScript(r io.Reader, yield func(cmd command, err error) bool) error {
	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		cmd, err := parseLine(line)
		if err != nil {
			err = fmt.Errorf("line %d: %w", n, err)
		}
		cmd.line = n
		if !yield(cmd, err) {
			return nil
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("failed to read script: %w", err)
	}
	return nil
}

func parseLine(line string) (command, error) {
	fields := strings.Fields(line)
	verb, args := strings.ToLower(fields[0]), fields[1:]

	ints := func(want int) ([]int, error) {
		if len(args) != want {
			return nil, fmt.Errorf("%s takes %d arguments", verb, want)
		}
		out := make([]int, want)
		for i, a := range args {
			v, err := strconv.Atoi(a)
			if err != nil {
				return nil, fmt.Errorf("%s: %q is not a number", verb, a)
			}
			out[i] = v
		}
		return out, nil
	}
	action := func(want int, fn func(e *game.Engine, v []int) error) (command, error) {
		v, err := ints(want)
		if err != nil {
			return command{}, err
		}
		return command{action: func(e *game.Engine) error { return fn(e, v) }}, nil
	}

	switch verb {
	case "short", "long":
		if len(args) != 1 {
			return command{}, fmt.Errorf("%s takes a button", verb)
		}
		b, ok := buttons[strings.ToLower(args[0])]
		if !ok {
			return command{}, fmt.Errorf("unknown button %q", args[0])
		}
		if verb == "long" {
			return command{input: game.Long(b)}, nil
		}
		return command{input: game.Short(b)}, nil
	case "player":
		if len(args) == 0 {
			return command{}, fmt.Errorf("player takes a card id")
		}
		return command{input: game.CardTap{Kind: game.CardPlayer, ID: args[0], Name: strings.Join(args[1:], " ")}}, nil
	case "property", "event":
		if len(args) != 1 {
			return command{}, fmt.Errorf("%s takes an id", verb)
		}
		kind := game.CardProperty
		if verb == "event" {
			kind = game.CardEvent
		}
		return command{input: game.CardTap{Kind: kind, ID: args[0]}}, nil
	case "buy":
		return action(1, func(e *game.Engine, v []int) error { return e.Buy(v[0]) })
	case "rent":
		return action(1, func(e *game.Engine, v []int) error { return e.PayRent(v[0]) })
	case "fine":
		return action(1, func(e *game.Engine, v []int) error { return e.PayJailFine(v[0]) })
	case "jailcard":
		return action(1, func(e *game.Engine, v []int) error { return e.UseJailCard(v[0]) })
	case "endturn":
		return action(1, func(e *game.Engine, v []int) error { return e.EndTurn(v[0]) })
	case "build":
		return action(2, func(e *game.Engine, v []int) error { return e.Build(v[0], v[1]) })
	case "sell":
		return action(2, func(e *game.Engine, v []int) error { return e.Sell(v[0], v[1]) })
	case "mortgage":
		return action(2, func(e *game.Engine, v []int) error { return e.Mortgage(v[0], v[1]) })
	case "unmortgage":
		return action(2, func(e *game.Engine, v []int) error { return e.Unmortgage(v[0], v[1]) })
	case "bid":
		return action(2, func(e *game.Engine, v []int) error { return e.Bid(v[0], v[1]) })
	case "surrender":
		return action(1, func(e *game.Engine, v []int) error { return e.SurrenderProperty(v[0]) })
	case "wait":
		if len(args) != 1 {
			return command{}, fmt.Errorf("wait takes a duration")
		}
		d, err := time.ParseDuration(args[0])
		if err != nil || d < 0 {
			return command{}, fmt.Errorf("bad duration %q", args[0])
		}
		return command{wait: d}, nil
	case "save":
		return command{save: true}, nil
	case "quit":
		return command{quit: true}, nil
	default:
		return command{}, fmt.Errorf("unknown command %q", verb)
	}
}
