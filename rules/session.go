// Package rules advances a snake game one tick at a time and reports the
// cells that changed.
package rules

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/brensch/wrapsnek/game"
)

// Palette holds the display colours. None of them affect the rules.
type Palette struct {
	Background game.Color
	Border     game.Color
	Snake      game.Color
	Food       game.Color
}

var DefaultPalette = Palette{
	Background: game.Color{R: 0, G: 0, B: 0},
	Border:     game.Color{R: 93, G: 216, B: 228},
	Snake:      game.Color{R: 0, G: 255, B: 0},
	Food:       game.Color{R: 255, G: 0, B: 0},
}

type Settings struct {
	Grid    game.Grid
	Palette Palette
}

// Session owns one snake and one food item on a grid.
type Session struct {
	grid    game.Grid
	palette Palette
	snake   *game.Snake
	food    *game.Food
	turn    int
	outcome Outcome
}

// NewSession starts a game with a fresh snake at the grid center and food on a
// random free cell.
func NewSession(settings Settings, rng *rand.Rand) (*Session, error) {
	if settings.Grid.Width <= 0 || settings.Grid.Height <= 0 {
		return nil, fmt.Errorf("invalid grid %dx%d", settings.Grid.Width, settings.Grid.Height)
	}
	snake := game.NewSnake(settings.Grid, rng, settings.Palette.Snake)
	food, err := game.NewFood(settings.Grid, rng, settings.Palette.Food, snake.Occupied())
	if err != nil {
		return nil, fmt.Errorf("place food: %w", err)
	}
	return &Session{grid: settings.Grid, palette: settings.Palette, snake: snake, food: food}, nil
}

// NewSessionFromState starts a game from an explicit body and food cell.
// The food cell must be on the grid and off the body.
func NewSessionFromState(settings Settings, rng *rand.Rand, body []game.Point, dir game.Direction, food game.Point) (*Session, error) {
	snake, err := game.NewSnakeFromBody(settings.Grid, rng, settings.Palette.Snake, body, dir)
	if err != nil {
		return nil, err
	}
	if !settings.Grid.Contains(food) || snake.Occupied().Contains(food) {
		return nil, fmt.Errorf("food at %v must be a free cell on the grid", food)
	}

	// Sample against everything but the requested cell so the food lands there.
	excluded := game.CellSet{}
	for y := 0; y < settings.Grid.Height; y++ {
		for x := 0; x < settings.Grid.Width; x++ {
			if p := (game.Point{X: x, Y: y}); p != food {
				excluded.Add(p)
			}
		}
	}
	f, err := game.NewFood(settings.Grid, rng, settings.Palette.Food, excluded)
	if err != nil {
		return nil, fmt.Errorf("place food: %w", err)
	}
	return &Session{grid: settings.Grid, palette: settings.Palette, snake: snake, food: f}, nil
}

// Start returns the frame that draws the initial board.
func (s *Session) Start() Frame {
	ops := []Op{{Kind: OpClear, Color: s.palette.Background}}
	for _, p := range s.snake.Positions() {
		ops = append(ops, Op{Kind: OpPaint, Cell: p, Color: s.snake.Color()})
	}
	ops = append(ops, Paint(s.food))
	return Frame{Turn: s.turn, Ops: ops, Outcome: s.outcome, State: s.Snapshot()}
}

// Steer feeds one direction intent; it takes effect on the next Step.
func (s *Session) Steer(d game.Direction) {
	s.snake.SetPendingDirection(d)
}

// Step advances the game by one tick.
//
// The snake moves first, possibly resetting to the center. If its head then
// sits on the food it grows and the food moves, unless the body already
// covers all but one cell, which ends the game as OutcomeBoardFull. Once the
// board is full Step does nothing.
func (s *Session) Step() Frame {
	if s.outcome != OutcomeRunning {
		return Frame{Turn: s.turn, Outcome: s.outcome, State: s.Snapshot()}
	}

	s.turn++
	frame := Frame{Turn: s.turn}
	mv := s.snake.Advance()

	if mv.Reset {
		frame.Reset = true
		frame.Ops = append(frame.Ops,
			Op{Kind: OpClear, Color: s.palette.Background},
			Paint(s.snake),
		)
		// The clear wiped the food, so it is repainted unless eaten and moved.
		if !s.eatIfOnFood(&frame) {
			frame.Ops = append(frame.Ops, Paint(s.food))
		}
	} else {
		frame.Ops = append(frame.Ops, Paint(s.snake))
		if mv.HasErased {
			frame.Ops = append(frame.Ops, Op{Kind: OpErase, Cell: mv.Erased, Color: s.palette.Background})
		}
		s.eatIfOnFood(&frame)
	}

	frame.Outcome = s.outcome
	frame.State = s.Snapshot()
	return frame
}

// eatIfOnFood grows the snake when its head is on the food, then either ends
// the game as board full or moves the food and paints it. It reports whether
// the food was eaten.
func (s *Session) eatIfOnFood(frame *Frame) bool {
	if s.snake.Head() != s.food.Position() {
		return false
	}
	frame.Ate = true
	s.snake.Grow()
	if s.snake.Len() >= s.grid.Size()-1 {
		s.outcome = OutcomeBoardFull
	} else if s.relocateFood() {
		frame.Ops = append(frame.Ops, Paint(s.food))
	}
	return true
}

func (s *Session) relocateFood() bool {
	err := s.food.RandomizePosition(s.snake.Occupied())
	if errors.Is(err, game.ErrBoardFull) {
		s.outcome = OutcomeBoardFull
		return false
	}
	return err == nil
}

func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		Turn:      s.turn,
		Grid:      s.grid,
		Body:      s.snake.Positions(),
		Length:    s.snake.Length(),
		Direction: s.snake.Direction(),
		Food:      s.food.Position(),
	}
}

func (s *Session) Outcome() Outcome {
	return s.outcome
}

func (s *Session) Grid() game.Grid {
	return s.grid
}

func (s *Session) Palette() Palette {
	return s.palette
}

