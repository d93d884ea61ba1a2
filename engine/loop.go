// Package engine drives a rules.Session at a fixed tick rate between an input
// and rendering collaborator.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/brensch/wrapsnek/game"
	"github.com/brensch/wrapsnek/rules"
)

type IntentKind uint8

const (
	IntentNone IntentKind = iota
	IntentTurn
	IntentQuit
)

// Intent is what the player asked for since the last poll.
type Intent struct {
	Kind      IntentKind
	Direction game.Direction
}

func Turn(d game.Direction) Intent {
	return Intent{Kind: IntentTurn, Direction: d}
}

var Quit = Intent{Kind: IntentQuit}

// Display is the input and rendering side of the game. The loop opens it
// before the first frame and closes it on every exit path.
type Display interface {
	Open(ctx context.Context, grid game.Grid, palette rules.Palette) error
	// Poll returns at most one pending intent without blocking.
	Poll() Intent
	Render(frame rules.Frame) error
	Close() error
}

// Observer receives a copy of every frame after the display has drawn it.
type Observer interface {
	Observe(frame rules.Frame)
}

type Options struct {
	Session   *rules.Session
	Display   Display
	TickRate  int
	Observers []Observer
	// HoldOnWin keeps polling after the board fills so the display can show
	// its win screen until the player quits.
	HoldOnWin bool
	Logger    *slog.Logger
}

type Result struct {
	Outcome rules.Outcome
	Turns   int
	Length  int
}

type Loop struct {
	session   *rules.Session
	display   Display
	interval  time.Duration
	observers []Observer
	holdOnWin bool
	log       *slog.Logger
}

func New(opts Options) (*Loop, error) {
	if opts.Session == nil {
		return nil, errors.New("engine: session is required")
	}
	if opts.Display == nil {
		return nil, errors.New("engine: display is required")
	}
	if opts.TickRate <= 0 {
		return nil, fmt.Errorf("engine: tick rate must be positive, got %d", opts.TickRate)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		session:   opts.Session,
		display:   opts.Display,
		interval:  time.Second / time.Duration(opts.TickRate),
		observers: opts.Observers,
		holdOnWin: opts.HoldOnWin,
		log:       logger,
	}, nil
}

// Run plays until the player quits, ctx is cancelled or the board fills.
// A quit is a normal result, not an error.
func (l *Loop) Run(ctx context.Context) (res Result, err error) {
	if err := l.display.Open(ctx, l.session.Grid(), l.session.Palette()); err != nil {
		return l.result(rules.OutcomeQuit), fmt.Errorf("open display: %w", err)
	}
	defer func() {
		if cerr := l.display.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close display: %w", cerr)
		}
	}()

	if err := l.publish(l.session.Start()); err != nil {
		return l.result(rules.OutcomeQuit), err
	}

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.log.Info("loop cancelled", "turn", l.session.Snapshot().Turn)
			return l.result(rules.OutcomeQuit), nil
		case <-ticker.C:
		}

		in := l.display.Poll()
		switch in.Kind {
		case IntentQuit:
			l.log.Info("player quit", "turn", l.session.Snapshot().Turn)
			return l.result(rules.OutcomeQuit), nil
		case IntentTurn:
			l.session.Steer(in.Direction)
		}

		if l.session.Outcome() != rules.OutcomeRunning {
			continue
		}

		frame := l.session.Step()
		if frame.Reset {
			l.log.Debug("snake hit itself", "turn", frame.Turn)
		}
		if frame.Ate {
			l.log.Debug("food eaten", "turn", frame.Turn, "length", frame.State.Length)
		}
		if err := l.publish(frame); err != nil {
			return l.result(rules.OutcomeQuit), err
		}

		if frame.Outcome == rules.OutcomeBoardFull {
			l.log.Info("board full", "turn", frame.Turn, "length", frame.State.Length)
			if !l.holdOnWin {
				return l.result(rules.OutcomeBoardFull), nil
			}
		}
	}
}

func (l *Loop) publish(frame rules.Frame) error {
	if err := l.display.Render(frame); err != nil {
		return fmt.Errorf("render turn %d: %w", frame.Turn, err)
	}
	for _, o := range l.observers {
		o.Observe(frame)
	}
	return nil
}

// result reports a win once the board has filled, whatever ended the loop.
func (l *Loop) result(fallback rules.Outcome) Result {
	snap := l.session.Snapshot()
	out := fallback
	if l.session.Outcome() == rules.OutcomeBoardFull {
		out = rules.OutcomeBoardFull
	}
	return Result{Outcome: out, Turns: snap.Turn, Length: snap.Length}
}
