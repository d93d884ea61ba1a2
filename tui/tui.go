// Package tui is a terminal display for the game built on bubbletea.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/brensch/wrapsnek/engine"
	"github.com/brensch/wrapsnek/game"
	"github.com/brensch/wrapsnek/rules"
)

// turnBuffer is how many direction keys can queue between ticks.
const turnBuffer = 4

type frameMsg rules.Frame

// inbox carries key presses from the bubbletea goroutine to the game loop.
type inbox struct {
	turns    chan game.Direction
	quit     chan struct{}
	quitOnce sync.Once
}

func newInbox() *inbox {
	return &inbox{turns: make(chan game.Direction, turnBuffer), quit: make(chan struct{})}
}

func (b *inbox) turn(d game.Direction) {
	select {
	case b.turns <- d:
	default:
	}
}

func (b *inbox) requestQuit() {
	b.quitOnce.Do(func() { close(b.quit) })
}

func (b *inbox) poll(done <-chan struct{}) engine.Intent {
	select {
	case <-b.quit:
		return engine.Quit
	case <-done:
		return engine.Quit
	default:
	}
	select {
	case d := <-b.turns:
		return engine.Turn(d)
	default:
		return engine.Intent{}
	}
}

// Display runs a bubbletea program in the background and feeds it frames.
type Display struct {
	options []tea.ProgramOption

	inbox   *inbox
	program *tea.Program
	done    chan struct{}
	runErr  error
}

// New returns a display using the alternate screen. Extra options are passed
// to tea.NewProgram.
func New(options ...tea.ProgramOption) *Display {
	return &Display{options: append([]tea.ProgramOption{tea.WithAltScreen()}, options...)}
}

func (d *Display) Open(ctx context.Context, grid game.Grid, palette rules.Palette) error {
	if d.program != nil {
		return errors.New("tui: already open")
	}
	d.inbox = newInbox()
	d.done = make(chan struct{})

	opts := append([]tea.ProgramOption{tea.WithContext(ctx)}, d.options...)
	d.program = tea.NewProgram(newModel(grid, palette, d.inbox), opts...)
	go func() {
		defer close(d.done)
		_, err := d.program.Run()
		d.runErr = err
	}()
	return nil
}

func (d *Display) Poll() engine.Intent {
	return d.inbox.poll(d.done)
}

func (d *Display) Render(frame rules.Frame) error {
	select {
	case <-d.done:
		// The program is gone; Poll reports the quit on the next tick.
		return nil
	default:
	}
	d.program.Send(frameMsg(frame))
	return nil
}

func (d *Display) Close() error {
	if d.program == nil {
		return nil
	}
	d.program.Quit()
	<-d.done
	d.program = nil

	err := d.runErr
	if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) {
		return nil
	}
	return err
}

type model struct {
	grid    game.Grid
	palette rules.Palette
	canvas  *rules.Canvas
	inbox   *inbox
	styles  map[game.Color]lipgloss.Style

	turn   int
	length int
	resets int
	won    bool
}

func newModel(grid game.Grid, palette rules.Palette, in *inbox) model {
	return model{
		grid:    grid,
		palette: palette,
		canvas:  rules.NewCanvas(grid, palette.Background),
		inbox:   in,
		styles:  map[game.Color]lipgloss.Style{},
		length:  1,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		in := keyIntent(msg.String())
		switch in.Kind {
		case engine.IntentQuit:
			m.inbox.requestQuit()
		case engine.IntentTurn:
			m.inbox.turn(in.Direction)
		}
	case frameMsg:
		m.canvas.Apply(msg.Ops)
		m.turn = msg.Turn
		m.length = msg.State.Length
		if msg.Reset {
			m.resets++
		}
		if msg.Outcome == rules.OutcomeBoardFull {
			m.won = true
		}
	}
	return m, nil
}

// keyIntent maps a key to an intent. Arrows, hjkl and wasd steer.
func keyIntent(key string) engine.Intent {
	switch key {
	case "up", "k", "w":
		return engine.Turn(game.Up)
	case "down", "j", "s":
		return engine.Turn(game.Down)
	case "left", "h", "a":
		return engine.Turn(game.Left)
	case "right", "l", "d":
		return engine.Turn(game.Right)
	case "q", "esc", "ctrl+c":
		return engine.Quit
	}
	return engine.Intent{}
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	winStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FAFAFA")).Background(lipgloss.Color("#7D56F4")).Padding(0, 1)
	helpStyle   = lipgloss.NewStyle().Faint(true)
)

func (m model) View() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("wrapsnek  length %d  turn %d  resets %d", m.length, m.turn, m.resets)))
	b.WriteByte('\n')

	for y := 0; y < m.grid.Height; y++ {
		run, runLen := m.canvas.Background(), 0
		for x := 0; x < m.grid.Width; x++ {
			c, _ := m.canvas.At(game.Point{X: x, Y: y})
			if runLen > 0 && c != run {
				b.WriteString(m.style(run).Render(strings.Repeat("  ", runLen)))
				runLen = 0
			}
			run = c
			runLen++
		}
		if runLen > 0 {
			b.WriteString(m.style(run).Render(strings.Repeat("  ", runLen)))
		}
		b.WriteByte('\n')
	}

	if m.won {
		b.WriteString(winStyle.Render(fmt.Sprintf("Board full! You win with length %d.", m.length)))
		b.WriteByte('\n')
	}
	b.WriteString(helpStyle.Render("arrows/hjkl/wasd to steer, q to quit"))
	b.WriteByte('\n')
	return b.String()
}

func (m model) style(c game.Color) lipgloss.Style {
	s, ok := m.styles[c]
	if !ok {
		s = lipgloss.NewStyle().Background(lipgloss.Color(c.Hex()))
		m.styles[c] = s
	}
	return s
}
