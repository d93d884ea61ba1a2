package game

import (
	"errors"
	"math/rand"
	"testing"
)

var testRed = Color{R: 255}

func allCellsExcept(g Grid, keep ...Point) CellSet {
	keepSet := NewCellSet(keep...)
	s := CellSet{}
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			p := Point{X: x, Y: y}
			if !keepSet.Contains(p) {
				s.Add(p)
			}
		}
	}
	return s
}

func TestRandomizePosition_AvoidsSparseExcludedSet(t *testing.T) {
	g := Grid{Width: 32, Height: 24}
	rng := rand.New(rand.NewSource(3))
	excluded := NewCellSet(Point{X: 16, Y: 12}, Point{X: 15, Y: 12}, Point{X: 14, Y: 12}, Point{X: 0, Y: 0})

	f, err := NewFood(g, rng, testRed, excluded)
	if err != nil {
		t.Fatalf("NewFood: %v", err)
	}
	for i := 0; i < 2000; i++ {
		if err := f.RandomizePosition(excluded); err != nil {
			t.Fatalf("RandomizePosition: %v", err)
		}
		if excluded.Contains(f.Position()) {
			t.Fatalf("food placed on excluded cell %v", f.Position())
		}
		if !g.Contains(f.Position()) {
			t.Fatalf("food %v off grid", f.Position())
		}
	}
}

func TestRandomizePosition_SingleFreeCell(t *testing.T) {
	g := Grid{Width: 32, Height: 24}
	f := &Food{grid: g, rng: rand.New(rand.NewSource(9)), color: testRed, position: Point{X: 5, Y: 5}}

	if err := f.RandomizePosition(allCellsExcept(g, Point{X: 0, Y: 0})); err != nil {
		t.Fatalf("RandomizePosition: %v", err)
	}
	if f.Position() != (Point{X: 0, Y: 0}) {
		t.Fatalf("position=%v want=(0,0)", f.Position())
	}
}

func TestRandomizePosition_DenseBoardIsStillUniform(t *testing.T) {
	g := Grid{Width: 6, Height: 6}
	a, b := Point{X: 1, Y: 4}, Point{X: 5, Y: 0}
	excluded := allCellsExcept(g, a, b)
	f := &Food{grid: g, rng: rand.New(rand.NewSource(11)), color: testRed}

	counts := map[Point]int{}
	for i := 0; i < 400; i++ {
		if err := f.RandomizePosition(excluded); err != nil {
			t.Fatalf("RandomizePosition: %v", err)
		}
		counts[f.Position()]++
	}
	if len(counts) != 2 || counts[a] == 0 || counts[b] == 0 {
		t.Fatalf("placements=%v want both %v and %v", counts, a, b)
	}
}

func TestRandomizePosition_BoardFull(t *testing.T) {
	g := Grid{Width: 3, Height: 2}
	start := Point{X: 2, Y: 1}
	f := &Food{grid: g, rng: rand.New(rand.NewSource(1)), color: testRed, position: start}

	excluded := allCellsExcept(g)
	// Cells off the board do not make it any fuller.
	excluded.Add(Point{X: -1, Y: 0})

	err := f.RandomizePosition(excluded)
	if !errors.Is(err, ErrBoardFull) {
		t.Fatalf("err=%v want ErrBoardFull", err)
	}
	if f.Position() != start {
		t.Fatalf("position moved to %v on a full board", f.Position())
	}

	if _, err := NewFood(g, nil, testRed, excluded); !errors.Is(err, ErrBoardFull) {
		t.Fatalf("NewFood err=%v want ErrBoardFull", err)
	}
}

func TestNewFood_NotOnSnake(t *testing.T) {
	g := Grid{Width: 4, Height: 4}
	s := mustSnake(t, g, []Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}, {X: 3, Y: 0}, {X: 3, Y: 1}, {X: 2, Y: 1}, {X: 1, Y: 1}, {X: 0, Y: 1}}, Down)

	for seed := int64(0); seed < 50; seed++ {
		f, err := NewFood(g, rand.New(rand.NewSource(seed)), testRed, s.Occupied())
		if err != nil {
			t.Fatalf("NewFood: %v", err)
		}
		if s.Occupied().Contains(f.Position()) {
			pos := f.Position()
			t.Fatalf("seed %d: food on snake\n%s", seed, dumpBoard(g, s.Positions(), &pos))
		}
	}
}
