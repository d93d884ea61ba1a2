package tui

import (
	"errors"
	"fmt"

	"golang.org/x/term"

	"github.com/brensch/wrapsnek/game"
)

var (
	ErrNotTerminal = errors.New("tui: output is not a terminal")
	ErrTooSmall    = errors.New("tui: terminal too small for grid")
)

// RequiredSize is the terminal area the view needs for grid: two columns per
// cell plus header, win banner and help lines.
func RequiredSize(grid game.Grid) (cols, rows int) {
	return grid.Width * 2, grid.Height + 3
}

// CheckTerminal reports whether fd is a terminal large enough for grid.
// A too-small terminal still works but the board wraps.
func CheckTerminal(fd int, grid game.Grid) error {
	if !term.IsTerminal(fd) {
		return ErrNotTerminal
	}
	w, h, err := term.GetSize(fd)
	if err != nil {
		return fmt.Errorf("tui: terminal size: %w", err)
	}
	cols, rows := RequiredSize(grid)
	if w < cols || h < rows {
		return fmt.Errorf("%w: need %dx%d, have %dx%d", ErrTooSmall, cols, rows, w, h)
	}
	return nil
}
