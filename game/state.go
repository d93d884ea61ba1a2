// Package game defines the core snake game state: the toroidal grid, the snake
// state machine and the food sampler.
//
// Everything here is single-threaded by contract. A Snake and a Food are owned
// by one tick loop and mutated synchronously within a tick.
package game

import "fmt"

// Point is a grid cell coordinate.
// Coordinates follow screen conventions: (0,0) is top-left and Y grows down.
type Point struct {
	X int
	Y int
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Grid is a fixed-size toroidal board of Width × Height cells.
type Grid struct {
	Width  int
	Height int
}

// GridForScreen derives the grid from screen dimensions and cell size in pixels.
func GridForScreen(screenWidth, screenHeight, cellSize int) (Grid, error) {
	if cellSize <= 0 {
		return Grid{}, fmt.Errorf("cell size must be positive, got %d", cellSize)
	}
	g := Grid{Width: screenWidth / cellSize, Height: screenHeight / cellSize}
	if g.Width <= 0 || g.Height <= 0 {
		return Grid{}, fmt.Errorf("screen %dx%d too small for %dpx cells", screenWidth, screenHeight, cellSize)
	}
	return g, nil
}

// Size is the number of cells on the board.
func (g Grid) Size() int {
	return g.Width * g.Height
}

// Center is the cell a fresh snake starts on.
func (g Grid) Center() Point {
	return Point{X: g.Width / 2, Y: g.Height / 2}
}

func (g Grid) Contains(p Point) bool {
	return p.X >= 0 && p.X < g.Width && p.Y >= 0 && p.Y < g.Height
}

// Wrap folds p back onto the board. Works for any offset, not just ±1.
func (g Grid) Wrap(p Point) Point {
	return Point{X: mod(p.X, g.Width), Y: mod(p.Y, g.Height)}
}

// Step moves one cell from p in direction d, wrapping at the edges.
func (g Grid) Step(p Point, d Direction) Point {
	dx, dy := d.Delta()
	return g.Wrap(Point{X: p.X + dx, Y: p.Y + dy})
}

func mod(a, n int) int {
	r := a % n
	if r < 0 {
		r += n
	}
	return r
}

// Direction is one of the four unit moves.
// Values match the move indices used elsewhere: 0=Up, 1=Down, 2=Left, 3=Right.
type Direction uint8

const (
	Up Direction = iota
	Down
	Left
	Right
)

// Directions lists every direction in index order.
var Directions = [...]Direction{Up, Down, Left, Right}

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return fmt.Sprintf("direction(%d)", uint8(d))
	}
}

// Delta returns the (dx, dy) offset of one step. Up decreases Y.
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case Up:
		return 0, -1
	case Down:
		return 0, 1
	case Left:
		return -1, 0
	case Right:
		return 1, 0
	default:
		return 0, 0
	}
}

func (d Direction) Opposite() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	case Right:
		return Left
	default:
		return d
	}
}

func (d Direction) Valid() bool {
	return d <= Right
}

// Color is an RGB triple. It carries no game semantics.
type Color struct {
	R, G, B uint8
}

func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Drawable is anything that occupies a cell with a colour.
type Drawable interface {
	Position() Point
	Color() Color
}

// CellSet is a set of occupied cells.
type CellSet map[Point]struct{}

func NewCellSet(points ...Point) CellSet {
	s := make(CellSet, len(points))
	for _, p := range points {
		s[p] = struct{}{}
	}
	return s
}

func (s CellSet) Contains(p Point) bool {
	_, ok := s[p]
	return ok
}

func (s CellSet) Add(p Point) {
	s[p] = struct{}{}
}

// CountIn returns how many members of s lie on g.
func (s CellSet) CountIn(g Grid) int {
	n := 0
	for p := range s {
		if g.Contains(p) {
			n++
		}
	}
	return n
}
