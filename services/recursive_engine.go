package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github/itish2003/pdfchat/models"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/textsplitter"
	"go.uber.org/zap"
)

const (
	noRelevantMarker = "NONE"

	excerptPreamble = `You are reading one part of a longer document. Copy out, verbatim where possible, every passage of this part that helps with the task below. If nothing in this part is relevant, reply with exactly NONE.

Task:
`
)

type EngineOptions struct {
	MaxIterations int
	ChunkSize     int
	ChunkOverlap  int
}

func (o EngineOptions) withDefaults() EngineOptions {
	if o.MaxIterations <= 0 {
		o.MaxIterations = 30
	}
	if o.ChunkSize <= 0 {
		o.ChunkSize = 100000
	}
	if o.ChunkOverlap < 0 || o.ChunkOverlap >= o.ChunkSize {
		o.ChunkOverlap = 0
	}
	return o
}

// RecursiveEngine answers over contexts of any size. A context that fits in
// one chunk is answered with a single model call. A larger one is split, each
// part is reduced to its relevant excerpts, and the engine recurses over the
// excerpts. Every run is bounded by MaxIterations model calls.
type RecursiveEngine struct {
	factories map[models.BackendKind]ModelFactory
	opts      EngineOptions
	log       *zap.Logger

	mu     sync.Mutex
	traces map[string]*TraceLogger
}

func NewRecursiveEngine(factories map[models.BackendKind]ModelFactory, opts EngineOptions, log *zap.Logger) *RecursiveEngine {
	return &RecursiveEngine{
		factories: factories,
		opts:      opts.withDefaults(),
		log:       log,
		traces:    make(map[string]*TraceLogger),
	}
}

func (e *RecursiveEngine) traceFor(dir string) *TraceLogger {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, ok := e.traces[dir]
	if !ok {
		t = NewTraceLogger(dir)
		e.traces[dir] = t
	}
	return t
}

func (e *RecursiveEngine) Initialize(ctx context.Context, cfg models.BackendConfig) (EngineHandle, error) {
	factory, ok := e.factories[cfg.Kind]
	if !ok {
		return nil, &InitializationError{Backend: cfg.Kind.DisplayName(), Err: fmt.Errorf("no model provider registered")}
	}
	model, err := factory(ctx, cfg)
	if err != nil {
		return nil, &InitializationError{Backend: cfg.Kind.DisplayName(), Err: err}
	}

	e.log.Info("SERVICE: engine initialized",
		zap.String("backend", string(cfg.Kind)),
		zap.String("model", cfg.ModelName),
		zap.Int("max_iterations", e.opts.MaxIterations),
	)
	return &recursiveHandle{
		model:    model,
		cfg:      cfg,
		opts:     e.opts,
		splitter: textsplitter.NewRecursiveCharacter(textsplitter.WithChunkSize(e.opts.ChunkSize), textsplitter.WithChunkOverlap(e.opts.ChunkOverlap)),
		trace:    e.traceFor(cfg.LogDir),
	}, nil
}

type recursiveHandle struct {
	model    CompletionModel
	cfg      models.BackendConfig
	opts     EngineOptions
	splitter textsplitter.RecursiveCharacter
	trace    *TraceLogger
}

func (h *recursiveHandle) Complete(ctx context.Context, corpus, instruction string) (models.Answer, error) {
	run := &engineRun{
		handle:    h,
		id:        uuid.New().String(),
		remaining: h.opts.MaxIterations,
	}
	text, err := run.answer(ctx, corpus, instruction, 0)
	h.trace.Finish(run.id, run.calls, err)
	if err != nil {
		return models.Answer{}, err
	}
	return models.Answer{Response: strings.TrimSpace(text)}, nil
}

// engineRun carries the iteration budget of a single Complete call.
type engineRun struct {
	handle    *recursiveHandle
	id        string
	remaining int
	calls     int
}

func (r *engineRun) answer(ctx context.Context, corpus, instruction string, depth int) (string, error) {
	if len(corpus) <= r.handle.opts.ChunkSize {
		return r.call(ctx, depth, 0, corpus, instruction)
	}

	chunks, err := r.handle.splitter.SplitText(corpus)
	if err != nil {
		return "", fmt.Errorf("failed to split context: %w", err)
	}
	// Reducing every chunk plus one final answer must fit in what is left.
	if len(chunks)+1 > r.remaining {
		return "", fmt.Errorf("%w: %d parts at depth %d, %d calls left", ErrIterationBudget, len(chunks), depth, r.remaining)
	}

	var notes []string
	for i, chunk := range chunks {
		out, err := r.call(ctx, depth, i+1, chunk, excerptPreamble+instruction)
		if err != nil {
			return "", err
		}
		out = strings.TrimSpace(out)
		if out == "" || strings.EqualFold(out, noRelevantMarker) {
			continue
		}
		notes = append(notes, fmt.Sprintf("[Part %d of %d]\n%s", i+1, len(chunks), out))
	}
	if len(notes) == 0 {
		notes = append(notes, "No part of the document contains information relevant to the question.")
	}
	return r.answer(ctx, strings.Join(notes, "\n\n"), instruction, depth+1)
}

func (r *engineRun) call(ctx context.Context, depth, chunk int, corpus, instruction string) (string, error) {
	if r.remaining <= 0 {
		return "", fmt.Errorf("%w after %d model calls", ErrIterationBudget, r.calls)
	}
	r.remaining--
	r.calls++

	start := time.Now()
	out, err := r.handle.model.Generate(ctx, corpus, instruction)
	r.handle.trace.Step(TraceStep{
		RunID:      r.id,
		Backend:    string(r.handle.cfg.Kind),
		Model:      r.handle.cfg.ModelName,
		Call:       r.calls,
		Depth:      depth,
		Chunk:      chunk,
		InputChars: len(corpus) + len(instruction),
		Output:     out,
		Duration:   time.Since(start),
		Err:        err,
	})
	if err != nil {
		return "", err
	}
	return out, nil
}
