package services

import (
	"path/filepath"
	"time"

	"github/itish2003/pdfchat/logger"

	"go.uber.org/zap"
)

const traceFileName = "engine_trace.jsonl"

// TraceLogger is a passive, file-only record of reasoning-engine steps.
type TraceLogger struct {
	log *zap.Logger
}

// NewTraceLogger writes to <dir>/engine_trace.jsonl. An empty dir disables
// tracing.
func NewTraceLogger(dir string) *TraceLogger {
	if dir == "" {
		return &TraceLogger{log: zap.NewNop()}
	}
	return &TraceLogger{log: logger.NewIsolated(filepath.Join(dir, traceFileName))}
}

// TraceStep describes one model call.
type TraceStep struct {
	RunID      string
	Backend    string
	Model      string
	Call       int
	Depth      int
	Chunk      int
	InputChars int
	Output     string
	Duration   time.Duration
	Err        error
}

func (t *TraceLogger) Step(s TraceStep) {
	fields := []zap.Field{
		zap.String("run_id", s.RunID),
		zap.String("backend", s.Backend),
		zap.String("model", s.Model),
		zap.Int("call", s.Call),
		zap.Int("depth", s.Depth),
		zap.Int("chunk", s.Chunk),
		zap.Int("input_chars", s.InputChars),
		zap.Int("output_chars", len(s.Output)),
		zap.Duration("duration", s.Duration),
	}
	if s.Err != nil {
		t.log.Error("engine step failed", append(fields, zap.Error(s.Err))...)
		return
	}
	t.log.Info("engine step", fields...)
}

func (t *TraceLogger) Finish(runID string, calls int, err error) {
	if err != nil {
		t.log.Error("engine run failed", zap.String("run_id", runID), zap.Int("calls", calls), zap.Error(err))
		return
	}
	t.log.Info("engine run finished", zap.String("run_id", runID), zap.Int("calls", calls))
}

func (t *TraceLogger) Sync() {
	_ = t.log.Sync()
}
