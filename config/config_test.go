package config

import (
	"errors"
	"testing"

	"github.com/brensch/wrapsnek/game"
	"github.com/brensch/wrapsnek/rules"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse(nil, nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Grid != (game.Grid{Width: 32, Height: 24}) {
		t.Fatalf("grid=%+v want 32x24", cfg.Grid)
	}
	if cfg.TickRate != 20 || cfg.UI != UITerminal || cfg.Seed != 0 {
		t.Fatalf("cfg=%+v", cfg)
	}
	if cfg.Palette != rules.DefaultPalette {
		t.Fatalf("palette=%+v want %+v", cfg.Palette, rules.DefaultPalette)
	}
	if cfg.Log.Path != "wrapsnek.log" || cfg.SpectateAddr != "" || cfg.TraceDir != "" {
		t.Fatalf("cfg=%+v", cfg)
	}
}

func TestParse_EnvThenFlags(t *testing.T) {
	env := envMap(map[string]string{
		"SCREEN_WIDTH": "100",
		"CELL_SIZE":    "10",
		"TICK_RATE":    "not-a-number",
		"SEED":         "42",
		"UI":           "window",
	})

	cfg, err := Parse([]string{"-screen-height", "50", "-snake-color", "#123456"}, env)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Grid != (game.Grid{Width: 10, Height: 5}) {
		t.Fatalf("grid=%+v want 10x5", cfg.Grid)
	}
	if cfg.TickRate != 20 {
		t.Fatalf("tick rate=%d want default 20 for a bad env value", cfg.TickRate)
	}
	if cfg.Seed != 42 || cfg.UI != UIWindow {
		t.Fatalf("seed=%d ui=%q", cfg.Seed, cfg.UI)
	}
	if cfg.Palette.Snake != (game.Color{R: 0x12, G: 0x34, B: 0x56}) {
		t.Fatalf("snake colour=%+v", cfg.Palette.Snake)
	}

	cfg, err = Parse([]string{"-ui", "TUI", "-tick-rate", "5"}, env)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.UI != UITerminal || cfg.TickRate != 5 {
		t.Fatalf("flags should beat env: ui=%q tick=%d", cfg.UI, cfg.TickRate)
	}
}

func TestParse_Invalid(t *testing.T) {
	cases := []struct {
		name string
		args []string
	}{
		{"zero cell", []string{"-cell-size", "0"}},
		{"screen smaller than cell", []string{"-screen-width", "10"}},
		{"single cell grid", []string{"-screen-width", "20", "-screen-height", "20"}},
		{"zero tick rate", []string{"-tick-rate", "0"}},
		{"unknown ui", []string{"-ui", "web"}},
		{"bad colour", []string{"-food-color", "red"}},
		{"bad log format", []string{"-log-format", "xml"}},
		{"bad log level", []string{"-log-level", "chatty"}},
		{"unknown flag", []string{"-fast"}},
		{"positional", []string{"extra"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.args, nil)
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("err=%v want ErrInvalid", err)
			}
		})
	}
}

func TestParse_TwoCellGrid(t *testing.T) {
	cfg, err := Parse([]string{"-screen-width", "40", "-screen-height", "20"}, nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Grid.Size() != 2 {
		t.Fatalf("grid=%+v want 2 cells", cfg.Grid)
	}
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#5dd8e4")
	if err != nil {
		t.Fatalf("ParseColor: %v", err)
	}
	if c != (game.Color{R: 93, G: 216, B: 228}) {
		t.Fatalf("colour=%+v", c)
	}
	if c.Hex() != "#5dd8e4" {
		t.Fatalf("hex=%s", c.Hex())
	}
}
