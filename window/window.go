// Package window is a desktop display for the game built on raylib.
//
// raylib must be driven from the main OS thread, so the game loop using this
// display has to run on the main goroutine.
package window

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/brensch/wrapsnek/engine"
	"github.com/brensch/wrapsnek/game"
	"github.com/brensch/wrapsnek/rules"
)

func init() {
	runtime.LockOSThread()
}

const title = "Snake"

// Display draws each cell as a filled square with a one pixel border.
type Display struct {
	cellSize int32

	grid    game.Grid
	palette rules.Palette
	canvas  *rules.Canvas
	length  int
	won     bool
	open    bool
}

func New(cellSize int) *Display {
	return &Display{cellSize: int32(cellSize)}
}

func (d *Display) Open(_ context.Context, grid game.Grid, palette rules.Palette) error {
	if d.open {
		return errors.New("window: already open")
	}
	if d.cellSize <= 0 {
		return fmt.Errorf("window: cell size must be positive, got %d", d.cellSize)
	}

	rl.SetTraceLogLevel(rl.LogWarning)
	rl.InitWindow(int32(grid.Width)*d.cellSize, int32(grid.Height)*d.cellSize, title)
	if !rl.IsWindowReady() {
		return errors.New("window: raylib could not create a window")
	}

	d.grid = grid
	d.palette = palette
	d.canvas = rules.NewCanvas(grid, palette.Background)
	d.length = 1
	d.won = false
	d.open = true
	return nil
}

func (d *Display) Poll() engine.Intent {
	// Nothing is rendered while the win screen is up, so keep the window
	// responsive from here.
	if d.won {
		d.draw()
	}
	if rl.WindowShouldClose() {
		return engine.Quit
	}
	for key := rl.GetKeyPressed(); key != 0; key = rl.GetKeyPressed() {
		if in := keyIntent(key); in.Kind != engine.IntentNone {
			return in
		}
	}
	return engine.Intent{}
}

func keyIntent(key int32) engine.Intent {
	switch key {
	case rl.KeyUp, rl.KeyW, rl.KeyK:
		return engine.Turn(game.Up)
	case rl.KeyDown, rl.KeyS, rl.KeyJ:
		return engine.Turn(game.Down)
	case rl.KeyLeft, rl.KeyA, rl.KeyH:
		return engine.Turn(game.Left)
	case rl.KeyRight, rl.KeyD, rl.KeyL:
		return engine.Turn(game.Right)
	case rl.KeyQ:
		return engine.Quit
	}
	return engine.Intent{}
}

func (d *Display) Render(frame rules.Frame) error {
	if !d.open {
		return errors.New("window: not open")
	}
	d.canvas.Apply(frame.Ops)
	d.length = frame.State.Length
	if frame.Outcome == rules.OutcomeBoardFull {
		d.won = true
	}
	d.draw()
	return nil
}

func (d *Display) Close() error {
	if !d.open {
		return nil
	}
	rl.CloseWindow()
	d.open = false
	return nil
}

func (d *Display) draw() {
	rl.BeginDrawing()
	rl.ClearBackground(toRL(d.canvas.Background()))

	for y := 0; y < d.grid.Height; y++ {
		for x := 0; x < d.grid.Width; x++ {
			c, ok := d.canvas.At(game.Point{X: x, Y: y})
			if !ok {
				continue
			}
			px, py := int32(x)*d.cellSize, int32(y)*d.cellSize
			rl.DrawRectangle(px, py, d.cellSize, d.cellSize, toRL(c))
			rl.DrawRectangleLines(px, py, d.cellSize, d.cellSize, toRL(d.palette.Border))
		}
	}

	if d.won {
		d.drawWin()
	}
	rl.EndDrawing()
}

func (d *Display) drawWin() {
	width := int32(d.grid.Width) * d.cellSize
	height := int32(d.grid.Height) * d.cellSize
	fontSize := height / 12
	if fontSize < 10 {
		fontSize = 10
	}

	msg := "You win!"
	sub := fmt.Sprintf("Length %d - press Q to quit", d.length)
	rl.DrawRectangle(0, height/2-fontSize*2, width, fontSize*4, rl.Fade(rl.Black, 0.7))
	rl.DrawText(msg, (width-rl.MeasureText(msg, fontSize))/2, height/2-fontSize, fontSize, rl.White)
	rl.DrawText(sub, (width-rl.MeasureText(sub, fontSize/2))/2, height/2+fontSize/2, fontSize/2, rl.White)
}

func toRL(c game.Color) rl.Color {
	return rl.Color{R: c.R, G: c.G, B: c.B, A: 255}
}
