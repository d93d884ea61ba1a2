// Package trace records one row per game tick to Parquet files for offline
// debugging. Trace files are write-only: the game never reads them back.
package trace

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"

	"github.com/brensch/wrapsnek/rules"
)

// DefaultFlushRows is how many ticks are buffered before a file is written.
const DefaultFlushRows = 4096

// TickRow is the state of the board after one tick.
//
// The body is stored head first as parallel X/Y lists. Ops is the number of
// paint/erase/clear requests the tick produced.
type TickRow struct {
	SessionID string  `parquet:"session_id,dict"`
	Turn      int32   `parquet:"turn"`
	Width     int32   `parquet:"width"`
	Height    int32   `parquet:"height"`
	Direction string  `parquet:"direction,dict"`
	Length    int32   `parquet:"length"`
	BodyX     []int32 `parquet:"body_x"`
	BodyY     []int32 `parquet:"body_y"`
	FoodX     int32   `parquet:"food_x"`
	FoodY     int32   `parquet:"food_y"`
	Ate       bool    `parquet:"ate"`
	Reset     bool    `parquet:"reset"`
	Outcome   string  `parquet:"outcome,dict"`
	Ops       int32   `parquet:"ops"`
}

func rowFromFrame(session string, f rules.Frame) TickRow {
	s := f.State
	row := TickRow{
		SessionID: session,
		Turn:      int32(f.Turn),
		Width:     int32(s.Grid.Width),
		Height:    int32(s.Grid.Height),
		Direction: s.Direction.String(),
		Length:    int32(s.Length),
		BodyX:     make([]int32, len(s.Body)),
		BodyY:     make([]int32, len(s.Body)),
		FoodX:     int32(s.Food.X),
		FoodY:     int32(s.Food.Y),
		Ate:       f.Ate,
		Reset:     f.Reset,
		Outcome:   f.Outcome.String(),
		Ops:       int32(len(f.Ops)),
	}
	for i, p := range s.Body {
		row.BodyX[i] = int32(p.X)
		row.BodyY[i] = int32(p.Y)
	}
	return row
}

// Recorder buffers tick rows and flushes them to outDir in batches.
// It implements engine.Observer and is only used from the game loop.
type Recorder struct {
	outDir    string
	session   string
	flushRows int
	log       *slog.Logger

	rows    []TickRow
	batch   int
	written []string
	err     error
}

func NewRecorder(outDir, session string, flushRows int, logger *slog.Logger) (*Recorder, error) {
	if outDir == "" {
		return nil, fmt.Errorf("outDir is required")
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create trace dir: %w", err)
	}
	if flushRows <= 0 {
		flushRows = DefaultFlushRows
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		outDir:    outDir,
		session:   session,
		flushRows: flushRows,
		log:       logger.With("component", "trace"),
		rows:      make([]TickRow, 0, flushRows),
	}, nil
}

func (r *Recorder) Observe(frame rules.Frame) {
	r.rows = append(r.rows, rowFromFrame(r.session, frame))
	if len(r.rows) >= r.flushRows {
		r.flush("full")
	}
}

// Close writes any buffered rows and returns the first write error.
func (r *Recorder) Close() error {
	r.flush("close")
	return r.err
}

// Files lists the trace files written so far.
func (r *Recorder) Files() []string {
	return append([]string(nil), r.written...)
}

func (r *Recorder) flush(reason string) {
	if len(r.rows) == 0 {
		return
	}
	name := fmt.Sprintf("trace_%s_%04d.parquet", r.session, r.batch)
	path, err := writeAtomic(r.outDir, name, r.rows)
	if err != nil {
		r.log.Error("trace flush failed", "reason", reason, "rows", len(r.rows), "err", err)
		if r.err == nil {
			r.err = err
		}
	} else {
		r.log.Debug("trace flushed", "reason", reason, "rows", len(r.rows), "path", path)
		r.written = append(r.written, path)
	}
	r.batch++
	r.rows = r.rows[:0]
}

// writeAtomic writes rows into outDir/tmp and renames the file into outDir so
// readers never see a partial file.
func writeAtomic(outDir, name string, rows []TickRow) (string, error) {
	tmpDir := filepath.Join(outDir, "tmp")
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return "", fmt.Errorf("create tmp dir: %w", err)
	}

	finalPath := filepath.Join(outDir, name)
	tmpPath := filepath.Join(tmpDir, name+".tmp")
	_ = os.Remove(tmpPath)

	if err := parquet.WriteFile(tmpPath, rows,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
		parquet.KeyValueMetadata("schema", "tick_row_v1"),
	); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("write parquet: %w", err)
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("rename parquet: %w", err)
	}
	return finalPath, nil
}
