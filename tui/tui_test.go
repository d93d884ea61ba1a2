package tui

import (
	"errors"
	"os"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/brensch/wrapsnek/engine"
	"github.com/brensch/wrapsnek/game"
	"github.com/brensch/wrapsnek/rules"
)

func TestKeyIntent(t *testing.T) {
	cases := map[string]engine.Intent{
		"up":     engine.Turn(game.Up),
		"j":      engine.Turn(game.Down),
		"a":      engine.Turn(game.Left),
		"right":  engine.Turn(game.Right),
		"q":      engine.Quit,
		"ctrl+c": engine.Quit,
		"x":      {},
	}
	for key, want := range cases {
		if got := keyIntent(key); got != want {
			t.Fatalf("keyIntent(%q)=%+v want=%+v", key, got, want)
		}
	}
}

func TestModel_KeysReachInbox(t *testing.T) {
	in := newInbox()
	m := newModel(game.Grid{Width: 4, Height: 3}, rules.DefaultPalette, in)
	done := make(chan struct{})

	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("l")})

	if got := in.poll(done); got != engine.Turn(game.Up) {
		t.Fatalf("first poll=%+v want up", got)
	}
	if got := in.poll(done); got != engine.Turn(game.Right) {
		t.Fatalf("second poll=%+v want right", got)
	}
	if got := in.poll(done); got.Kind != engine.IntentNone {
		t.Fatalf("third poll=%+v want none", got)
	}

	// Quit wins over queued turns.
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if got := in.poll(done); got != engine.Quit {
		t.Fatalf("poll after q=%+v want quit", got)
	}
}

func TestInbox_DropsTurnsWhenFull(t *testing.T) {
	in := newInbox()
	for i := 0; i < turnBuffer+3; i++ {
		in.turn(game.Left)
	}
	if len(in.turns) != turnBuffer {
		t.Fatalf("queued=%d want %d", len(in.turns), turnBuffer)
	}
}

func TestInbox_ProgramExitIsQuit(t *testing.T) {
	in := newInbox()
	done := make(chan struct{})
	close(done)
	if got := in.poll(done); got != engine.Quit {
		t.Fatalf("poll=%+v want quit", got)
	}
}

func TestModel_FramesUpdateView(t *testing.T) {
	grid := game.Grid{Width: 4, Height: 3}
	m := newModel(grid, rules.DefaultPalette, newInbox())

	next, _ := m.Update(frameMsg(rules.Frame{
		Turn: 7,
		Ops: []rules.Op{
			{Kind: rules.OpPaint, Cell: game.Point{X: 1, Y: 1}, Color: rules.DefaultPalette.Snake},
		},
		State: rules.Snapshot{Length: 1},
	}))
	m = next.(model)
	if c, ok := m.canvas.At(game.Point{X: 1, Y: 1}); !ok || c != rules.DefaultPalette.Snake {
		t.Fatalf("cell (1,1)=%v,%v want snake", c, ok)
	}

	view := m.View()
	if !strings.Contains(view, "turn 7") {
		t.Fatalf("view missing turn counter:\n%s", view)
	}
	if strings.Contains(view, "You win") {
		t.Fatalf("win banner shown early:\n%s", view)
	}
	// Header, one line per row and the help line.
	if lines := strings.Count(view, "\n"); lines != grid.Height+2 {
		t.Fatalf("view has %d lines want %d", lines, grid.Height+2)
	}

	next, _ = m.Update(frameMsg(rules.Frame{Turn: 8, Outcome: rules.OutcomeBoardFull, State: rules.Snapshot{Length: 11}}))
	m = next.(model)
	if view := m.View(); !strings.Contains(view, "You win with length 11") {
		t.Fatalf("win banner missing:\n%s", view)
	}
}

func TestModel_ResetCountsAndClears(t *testing.T) {
	m := newModel(game.Grid{Width: 3, Height: 3}, rules.DefaultPalette, newInbox())
	m.canvas.Apply([]rules.Op{{Kind: rules.OpPaint, Cell: game.Point{X: 0, Y: 0}, Color: rules.DefaultPalette.Snake}})

	next, _ := m.Update(frameMsg(rules.Frame{
		Reset: true,
		Ops:   []rules.Op{{Kind: rules.OpClear, Color: rules.DefaultPalette.Background}},
		State: rules.Snapshot{Length: 1},
	}))
	m = next.(model)
	if _, ok := m.canvas.At(game.Point{X: 0, Y: 0}); ok {
		t.Fatalf("cell survived a clear")
	}
	if m.resets != 1 {
		t.Fatalf("resets=%d want 1", m.resets)
	}
}

func TestRequiredSize(t *testing.T) {
	cols, rows := RequiredSize(game.Grid{Width: 32, Height: 24})
	if cols != 64 || rows != 27 {
		t.Fatalf("size=%dx%d want 64x27", cols, rows)
	}
}

func TestCheckTerminal_NotATerminal(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	defer f.Close()
	if err := CheckTerminal(int(f.Fd()), game.Grid{Width: 4, Height: 4}); !errors.Is(err, ErrNotTerminal) {
		t.Fatalf("err=%v want ErrNotTerminal", err)
	}
}
