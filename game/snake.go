package game

import (
	"errors"
	"fmt"
	"math/rand"
)

// ErrInvalidBody is returned when an explicit snake body cannot exist on the grid.
var ErrInvalidBody = errors.New("invalid snake body")

// Snake is the player's body: an ordered list of cells, head first.
//
// A Snake is created at the grid center with length 1 and a random direction.
// Advance moves it one cell per tick. Running into its own body resets it to
// that initial configuration.
type Snake struct {
	grid  Grid
	rng   *rand.Rand
	color Color

	positions  []Point
	length     int
	direction  Direction
	pending    Direction
	hasPending bool
}

// Move describes what one Advance did to the body.
type Move struct {
	Head Point
	// Erased is the vacated tail cell, valid when HasErased is set.
	Erased    Point
	HasErased bool
	// Reset is set when the new head hit the body and the snake restarted.
	Reset bool
}

// NewSnake returns a snake in its initial state. rng may be nil, in which case
// the package-level source is used.
func NewSnake(grid Grid, rng *rand.Rand, color Color) *Snake {
	s := &Snake{grid: grid, rng: rng, color: color}
	s.Reset()
	return s
}

// NewSnakeFromBody builds a snake with an explicit body (head first) moving in
// dir. Its target length is len(body).
func NewSnakeFromBody(grid Grid, rng *rand.Rand, color Color, body []Point, dir Direction) (*Snake, error) {
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrInvalidBody)
	}
	if !dir.Valid() {
		return nil, fmt.Errorf("%w: bad direction %d", ErrInvalidBody, dir)
	}
	seen := make(CellSet, len(body))
	for i, p := range body {
		if !grid.Contains(p) {
			return nil, fmt.Errorf("%w: segment %d at %v is off the %dx%d grid", ErrInvalidBody, i, p, grid.Width, grid.Height)
		}
		if seen.Contains(p) {
			return nil, fmt.Errorf("%w: segment %d at %v overlaps the body", ErrInvalidBody, i, p)
		}
		seen.Add(p)
	}

	positions := make([]Point, len(body))
	copy(positions, body)
	return &Snake{
		grid:      grid,
		rng:       rng,
		color:     color,
		positions: positions,
		length:    len(body),
		direction: dir,
	}, nil
}

// Reset puts the snake back on the center cell with length 1, a uniformly
// random direction and no pending turn.
func (s *Snake) Reset() {
	s.positions = append(s.positions[:0], s.grid.Center())
	s.length = 1
	s.direction = Directions[intn(s.rng, len(Directions))]
	s.hasPending = false
}

// SetPendingDirection queues d for the next Advance. Reversing straight into
// the body is silently ignored.
func (s *Snake) SetPendingDirection(d Direction) {
	if !d.Valid() || d == s.direction.Opposite() {
		return
	}
	s.pending = d
	s.hasPending = true
}

// Grow lengthens the target size by one; the next Advance keeps its tail.
func (s *Snake) Grow() {
	s.length++
}

// Advance applies the pending turn and moves the head one cell.
//
// Every current body cell counts as occupied for the collision test, the tail
// included, even though a normal move would vacate it this tick.
func (s *Snake) Advance() Move {
	if s.hasPending {
		s.direction = s.pending
		s.hasPending = false
	}

	head := s.grid.Step(s.Head(), s.direction)
	for _, p := range s.positions {
		if p == head {
			s.Reset()
			return Move{Head: s.Head(), Reset: true}
		}
	}

	s.positions = append(s.positions, Point{})
	copy(s.positions[1:], s.positions)
	s.positions[0] = head

	mv := Move{Head: head}
	if len(s.positions) > s.length {
		last := len(s.positions) - 1
		mv.Erased = s.positions[last]
		mv.HasErased = true
		s.positions = s.positions[:last]
	}
	return mv
}

func (s *Snake) Head() Point {
	return s.positions[0]
}

// Positions returns a copy of the body, head first.
func (s *Snake) Positions() []Point {
	out := make([]Point, len(s.positions))
	copy(out, s.positions)
	return out
}

// Occupied is the set of cells covered by the body.
func (s *Snake) Occupied() CellSet {
	return NewCellSet(s.positions...)
}

// Len is the number of cells the body currently covers.
func (s *Snake) Len() int {
	return len(s.positions)
}

// Length is the target size the body grows towards.
func (s *Snake) Length() int {
	return s.length
}

func (s *Snake) Direction() Direction {
	return s.direction
}

// Pending returns the queued direction, if any.
func (s *Snake) Pending() (Direction, bool) {
	return s.pending, s.hasPending
}

// Position is the head cell.
func (s *Snake) Position() Point {
	return s.Head()
}

func (s *Snake) Color() Color {
	return s.color
}

func intn(rng *rand.Rand, n int) int {
	if rng != nil {
		return rng.Intn(n)
	}
	return rand.Intn(n)
}
