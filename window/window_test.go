package window

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/brensch/wrapsnek/engine"
	"github.com/brensch/wrapsnek/game"
	"github.com/brensch/wrapsnek/rules"
)

func TestKeyIntent(t *testing.T) {
	cases := []struct {
		key  int32
		want engine.Intent
	}{
		{rl.KeyUp, engine.Turn(game.Up)},
		{rl.KeyJ, engine.Turn(game.Down)},
		{rl.KeyA, engine.Turn(game.Left)},
		{rl.KeyRight, engine.Turn(game.Right)},
		{rl.KeyQ, engine.Quit},
		{rl.KeySpace, engine.Intent{}},
	}
	for _, tc := range cases {
		if got := keyIntent(tc.key); got != tc.want {
			t.Fatalf("keyIntent(%d)=%+v want=%+v", tc.key, got, tc.want)
		}
	}
}

func TestToRL(t *testing.T) {
	got := toRL(rules.DefaultPalette.Border)
	if got != (rl.Color{R: 93, G: 216, B: 228, A: 255}) {
		t.Fatalf("border colour=%+v", got)
	}
}

func TestRenderBeforeOpen(t *testing.T) {
	d := New(20)
	if err := d.Render(rules.Frame{}); err == nil {
		t.Fatalf("expected error rendering to a closed window")
	}
	if err := d.Close(); err != nil {
		t.Fatalf("Close on unopened display: %v", err)
	}
}
