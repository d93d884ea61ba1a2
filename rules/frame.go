package rules

import (
	"fmt"

	"github.com/brensch/wrapsnek/game"
)

// OpKind says what a display should do with a cell.
type OpKind uint8

const (
	OpPaint OpKind = iota
	OpErase
	// OpClear wipes the whole board to the op's colour. Cell is ignored.
	OpClear
)

func (k OpKind) String() string {
	switch k {
	case OpPaint:
		return "paint"
	case OpErase:
		return "erase"
	case OpClear:
		return "clear"
	default:
		return fmt.Sprintf("op(%d)", uint8(k))
	}
}

// Op is a single paint, erase or clear request.
type Op struct {
	Kind  OpKind
	Cell  game.Point
	Color game.Color
}

// Paint requests drawing d at its position in its colour.
func Paint(d game.Drawable) Op {
	return Op{Kind: OpPaint, Cell: d.Position(), Color: d.Color()}
}

// Outcome is the state of a session after a tick.
type Outcome uint8

const (
	OutcomeRunning Outcome = iota
	// OutcomeBoardFull ends the game as a win: no room is left for food.
	OutcomeBoardFull
	// OutcomeQuit is reported by the loop when the player or the process quits.
	OutcomeQuit
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRunning:
		return "running"
	case OutcomeBoardFull:
		return "board_full"
	case OutcomeQuit:
		return "quit"
	default:
		return fmt.Sprintf("outcome(%d)", uint8(o))
	}
}

// Snapshot is a copy of the game state after a tick.
type Snapshot struct {
	Turn      int
	Grid      game.Grid
	Body      []game.Point
	Length    int
	Direction game.Direction
	Food      game.Point
}

// Frame is everything that changed during one tick.
// Ops lists only the cells that changed visually.
type Frame struct {
	Turn    int
	Ops     []Op
	Ate     bool
	Reset   bool
	Outcome Outcome
	State   Snapshot
}

// Canvas is a W×H colour buffer built by applying ops, for displays that
// redraw the whole board every frame.
type Canvas struct {
	grid       game.Grid
	background game.Color
	cells      []game.Color
	filled     []bool
}

func NewCanvas(grid game.Grid, background game.Color) *Canvas {
	c := &Canvas{
		grid:       grid,
		background: background,
		cells:      make([]game.Color, grid.Size()),
		filled:     make([]bool, grid.Size()),
	}
	c.clear(background)
	return c
}

func (c *Canvas) Grid() game.Grid {
	return c.grid
}

func (c *Canvas) Background() game.Color {
	return c.background
}

// Apply updates the buffer. Ops for cells off the grid are dropped.
func (c *Canvas) Apply(ops []Op) {
	for _, op := range ops {
		if op.Kind == OpClear {
			c.clear(op.Color)
			continue
		}
		if !c.grid.Contains(op.Cell) {
			continue
		}
		i := op.Cell.Y*c.grid.Width + op.Cell.X
		switch op.Kind {
		case OpPaint:
			c.cells[i] = op.Color
			c.filled[i] = true
		case OpErase:
			c.cells[i] = c.background
			c.filled[i] = false
		}
	}
}

// At returns the colour of p and whether something is drawn there.
func (c *Canvas) At(p game.Point) (game.Color, bool) {
	if !c.grid.Contains(p) {
		return c.background, false
	}
	i := p.Y*c.grid.Width + p.X
	return c.cells[i], c.filled[i]
}

// Ops replays the buffer as a clear followed by one paint per filled cell.
func (c *Canvas) Ops() []Op {
	ops := []Op{{Kind: OpClear, Color: c.background}}
	for i, ok := range c.filled {
		if !ok {
			continue
		}
		p := game.Point{X: i % c.grid.Width, Y: i / c.grid.Width}
		ops = append(ops, Op{Kind: OpPaint, Cell: p, Color: c.cells[i]})
	}
	return ops
}

func (c *Canvas) clear(col game.Color) {
	c.background = col
	for i := range c.cells {
		c.cells[i] = col
		c.filled[i] = false
	}
}
