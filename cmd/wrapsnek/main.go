package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/brensch/wrapsnek/config"
	"github.com/brensch/wrapsnek/engine"
	"github.com/brensch/wrapsnek/logging"
	"github.com/brensch/wrapsnek/rules"
	"github.com/brensch/wrapsnek/spectate"
	"github.com/brensch/wrapsnek/trace"
	"github.com/brensch/wrapsnek/tui"
	"github.com/brensch/wrapsnek/window"
)

func main() {
	if err := run(os.Args[1:], os.Getenv); err != nil {
		fmt.Fprintln(os.Stderr, "wrapsnek:", err)
		os.Exit(1)
	}
}

func run(args []string, getenv func(string) string) error {
	cfg, err := config.Parse(args, getenv)
	if err != nil {
		return err
	}

	logger, logCloser, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessionID := uuid.NewString()
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	logger = logger.With("session", sessionID)
	logger.Info("starting",
		"ui", cfg.UI,
		"grid", fmt.Sprintf("%dx%d", cfg.Grid.Width, cfg.Grid.Height),
		"tick_rate", cfg.TickRate,
		"seed", seed,
	)

	if cfg.UI == config.UITerminal {
		switch err := tui.CheckTerminal(int(os.Stdout.Fd()), cfg.Grid); {
		case errors.Is(err, tui.ErrTooSmall):
			logger.Warn("terminal smaller than board, rows will wrap", "err", err)
		case err != nil:
			return fmt.Errorf("%w (try -ui window)", err)
		}
	}

	session, err := rules.NewSession(rules.Settings{Grid: cfg.Grid, Palette: cfg.Palette}, rand.New(rand.NewSource(seed)))
	if err != nil {
		return err
	}

	var observers []engine.Observer

	if cfg.SpectateAddr != "" {
		hub := spectate.NewHub(sessionID, cfg.Grid, cfg.Palette, logger)
		srv, err := spectate.Listen(cfg.SpectateAddr, hub)
		if err != nil {
			return err
		}
		go func() {
			if err := srv.Serve(); err != nil {
				logger.Error("spectate server stopped", "err", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("spectate shutdown", "err", err)
			}
		}()
		logger.Info("spectators welcome", "addr", "ws://"+srv.Addr()+"/ws")
		observers = append(observers, hub)
	}

	if cfg.TraceDir != "" {
		rec, err := trace.NewRecorder(cfg.TraceDir, sessionID, trace.DefaultFlushRows, logger)
		if err != nil {
			return err
		}
		defer func() {
			if err := rec.Close(); err != nil {
				logger.Error("trace close", "err", err)
				return
			}
			logger.Info("trace written", "files", rec.Files())
		}()
		observers = append(observers, rec)
	}

	loop, err := engine.New(engine.Options{
		Session:   session,
		Display:   newDisplay(cfg),
		TickRate:  cfg.TickRate,
		Observers: observers,
		HoldOnWin: true,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	res, err := loop.Run(ctx)
	logger.Info("game over", "outcome", res.Outcome.String(), "turns", res.Turns, "length", res.Length)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if res.Outcome == rules.OutcomeBoardFull {
		fmt.Printf("Board full! You win with length %d.\n", res.Length)
	}
	return nil
}

func newDisplay(cfg config.Config) engine.Display {
	if cfg.UI == config.UIWindow {
		return window.New(cfg.CellSize)
	}
	return tui.New()
}

