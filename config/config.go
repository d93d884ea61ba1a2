// Package config reads game settings from flags, falling back to environment
// variables and then to built-in defaults.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/brensch/wrapsnek/game"
	"github.com/brensch/wrapsnek/logging"
	"github.com/brensch/wrapsnek/rules"
)

// ErrInvalid wraps every validation failure returned by Parse.
var ErrInvalid = errors.New("invalid config")

const (
	UITerminal = "tui"
	UIWindow   = "window"
)

type Config struct {
	ScreenWidth  int
	ScreenHeight int
	CellSize     int
	TickRate     int
	// Seed 0 means seed from the clock.
	Seed int64
	UI   string

	Grid    game.Grid
	Palette rules.Palette

	// SpectateAddr enables the websocket spectator server when set.
	SpectateAddr string
	// TraceDir enables the parquet tick trace when set.
	TraceDir string

	Log logging.Options
}

// Parse reads args (without the program name). getenv is usually os.Getenv.
func Parse(args []string, getenv func(string) string) (Config, error) {
	if getenv == nil {
		getenv = func(string) string { return "" }
	}
	env := envLookup(getenv)

	fs := flag.NewFlagSet("wrapsnek", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var cfg Config
	fs.IntVar(&cfg.ScreenWidth, "screen-width", env.getInt("SCREEN_WIDTH", 640), "Screen width in pixels")
	fs.IntVar(&cfg.ScreenHeight, "screen-height", env.getInt("SCREEN_HEIGHT", 480), "Screen height in pixels")
	fs.IntVar(&cfg.CellSize, "cell-size", env.getInt("CELL_SIZE", 20), "Cell size in pixels")
	fs.IntVar(&cfg.TickRate, "tick-rate", env.getInt("TICK_RATE", 20), "Game ticks per second")
	fs.Int64Var(&cfg.Seed, "seed", env.getInt64("SEED", 0), "Random seed (0 = time based)")
	fs.StringVar(&cfg.UI, "ui", env.get("UI", UITerminal), "Display: tui or window")

	def := rules.DefaultPalette
	snakeColor := fs.String("snake-color", def.Snake.Hex(), "Snake colour (#rrggbb)")
	foodColor := fs.String("food-color", def.Food.Hex(), "Food colour (#rrggbb)")
	bgColor := fs.String("background-color", def.Background.Hex(), "Background colour (#rrggbb)")
	borderColor := fs.String("border-color", def.Border.Hex(), "Cell border colour (#rrggbb)")

	fs.StringVar(&cfg.SpectateAddr, "spectate-addr", env.get("SPECTATE_ADDR", ""), "Listen address for websocket spectators (empty = off)")
	fs.StringVar(&cfg.TraceDir, "trace-dir", env.get("TRACE_DIR", ""), "Directory for parquet tick traces (empty = off)")
	fs.StringVar(&cfg.Log.Path, "log-file", env.get("LOG_FILE", "wrapsnek.log"), "Log file (- = stderr)")
	fs.StringVar(&cfg.Log.Format, "log-format", env.get("LOG_FORMAT", logging.FormatPretty), "Log format: pretty, json or text")
	fs.StringVar(&cfg.Log.Level, "log-level", env.get("LOG_LEVEL", "info"), "Log level")

	if err := fs.Parse(args); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if fs.NArg() > 0 {
		return Config{}, fmt.Errorf("%w: unexpected arguments %q", ErrInvalid, fs.Args())
	}

	var err error
	colors := []struct {
		name string
		raw  string
		dst  *game.Color
	}{
		{"snake-color", *snakeColor, &cfg.Palette.Snake},
		{"food-color", *foodColor, &cfg.Palette.Food},
		{"background-color", *bgColor, &cfg.Palette.Background},
		{"border-color", *borderColor, &cfg.Palette.Border},
	}
	for _, c := range colors {
		if *c.dst, err = ParseColor(c.raw); err != nil {
			return Config{}, fmt.Errorf("%w: %s: %v", ErrInvalid, c.name, err)
		}
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.TickRate <= 0 {
		return fmt.Errorf("%w: tick-rate must be positive, got %d", ErrInvalid, c.TickRate)
	}
	grid, err := game.GridForScreen(c.ScreenWidth, c.ScreenHeight, c.CellSize)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if grid.Size() < 2 {
		return fmt.Errorf("%w: grid %dx%d needs at least two cells", ErrInvalid, grid.Width, grid.Height)
	}
	c.Grid = grid

	c.UI = strings.ToLower(c.UI)
	if c.UI != UITerminal && c.UI != UIWindow {
		return fmt.Errorf("%w: ui must be %s or %s, got %q", ErrInvalid, UITerminal, UIWindow, c.UI)
	}
	level, err := logging.ParseLevel(c.Log.Level)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, err := logging.NewHandler(io.Discard, c.Log.Format, level); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// ParseColor reads a "#rrggbb" hex colour.
func ParseColor(s string) (game.Color, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return game.Color{}, err
	}
	r, g, b := c.RGB255()
	return game.Color{R: r, G: g, B: b}, nil
}

// envLookup supplies flag defaults. Unparseable values fall back to the default.
type envLookup func(string) string

func (e envLookup) get(key, defaultVal string) string {
	if val := e(key); val != "" {
		return val
	}
	return defaultVal
}

func (e envLookup) getInt(key string, defaultVal int) int {
	if val := e(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func (e envLookup) getInt64(key string, defaultVal int64) int64 {
	if val := e(key); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			return i
		}
	}
	return defaultVal
}
