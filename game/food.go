// food.go implements food placement by rejection sampling.

package game

import (
	"errors"
	"math/rand"
)

// ErrBoardFull means every cell is excluded and food has nowhere to go.
var ErrBoardFull = errors.New("board full")

// maxRejections bounds the sampling loop before falling back to enumerating
// free cells. Sparse boards almost never get near it.
const maxRejections = 64

// Food is a single cell the snake can eat.
type Food struct {
	grid     Grid
	rng      *rand.Rand
	color    Color
	position Point
}

// NewFood places food on a random cell outside excluded.
func NewFood(grid Grid, rng *rand.Rand, color Color, excluded CellSet) (*Food, error) {
	f := &Food{grid: grid, rng: rng, color: color}
	if err := f.RandomizePosition(excluded); err != nil {
		return nil, err
	}
	return f, nil
}

// RandomizePosition moves the food to a uniformly random cell not in excluded.
// It returns ErrBoardFull, leaving the position unchanged, when excluded covers
// the whole grid.
func (f *Food) RandomizePosition(excluded CellSet) error {
	taken := excluded.CountIn(f.grid)
	if taken >= f.grid.Size() {
		return ErrBoardFull
	}

	for i := 0; i < maxRejections; i++ {
		p := Point{X: intn(f.rng, f.grid.Width), Y: intn(f.rng, f.grid.Height)}
		if !excluded.Contains(p) {
			f.position = p
			return nil
		}
	}

	// Dense board: pick uniformly among the free cells instead.
	free := make([]Point, 0, f.grid.Size()-taken)
	for y := 0; y < f.grid.Height; y++ {
		for x := 0; x < f.grid.Width; x++ {
			p := Point{X: x, Y: y}
			if !excluded.Contains(p) {
				free = append(free, p)
			}
		}
	}
	f.position = free[intn(f.rng, len(free))]
	return nil
}

func (f *Food) Position() Point {
	return f.position
}

func (f *Food) Color() Color {
	return f.color
}
