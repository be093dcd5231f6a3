package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github/itish2003/pdfchat/models"

	"go.uber.org/zap"
)

// FallbackAnswer is recorded when the engine returns no answer at all.
const FallbackAnswer = "I could not generate a response. The document may not contain relevant information for this question, or the model encountered an issue."

type SessionState int

const (
	StateEmpty SessionState = iota
	StateReady
	StateAnswering
	StateLoading
)

func (s SessionState) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateReady:
		return "ready"
	case StateAnswering:
		return "answering"
	case StateLoading:
		return "loading"
	default:
		return fmt.Sprintf("SessionState(%d)", int(s))
	}
}

// Session binds an uploaded corpus, a backend and the conversation about
// them. The mutex only guards transitions and is never held while extracting
// or while the engine works. Overlapping requests are rejected by the
// Loading and Answering states.
type Session struct {
	mu      sync.Mutex
	state   SessionState
	corpus  *models.ExtractedCorpus
	config  *models.BackendConfig
	handle  EngineHandle
	history []models.Message
}

func NewSession() *Session {
	return &Session{state: StateEmpty}
}

func (s *Session) IsReady() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready()
}

func (s *Session) ready() bool {
	return s.corpus != nil && s.config != nil
}

func (s *Session) busy() bool {
	return s.state == StateAnswering || s.state == StateLoading
}

func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// History returns a copy of the conversation so far.
func (s *Session) History() []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Message, len(s.history))
	copy(out, s.history)
	return out
}

func (s *Session) Status() models.SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := models.SessionStatus{
		State:      s.state.String(),
		Ready:      s.ready(),
		HistoryLen: len(s.history),
	}
	if s.corpus != nil {
		st.Documents = s.corpus.Documents
		st.Characters = len(s.corpus.Text)
		st.Failed = append([]string(nil), s.corpus.Failed...)
	}
	if s.config != nil {
		st.Backend = s.config.Kind.DisplayName()
		st.Model = s.config.ModelName
	}
	return st
}

// reset drops the corpus, backend and history, returning the session to
// Empty. It reports whether there was anything to drop.
func (s *Session) reset() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy() {
		return false, ErrBusy
	}
	had := s.ready() || len(s.history) > 0
	s.corpus = nil
	s.config = nil
	s.handle = nil
	s.history = nil
	s.state = StateEmpty
	return had, nil
}

// SessionOrchestrator drives the load and query cycle of sessions.
type SessionOrchestrator struct {
	extractor    *PDFExtractor
	configurator *BackendConfigurator
	engine       Engine
	log          *zap.Logger
}

func NewSessionOrchestrator(extractor *PDFExtractor, configurator *BackendConfigurator, engine Engine, log *zap.Logger) *SessionOrchestrator {
	return &SessionOrchestrator{
		extractor:    extractor,
		configurator: configurator,
		engine:       engine,
		log:          log,
	}
}

// LoadDocuments extracts docs, validates params and initializes the engine.
// Only when all three succeed is the result published to the session, with
// an empty history. On failure the session is left exactly as it was.
func (o *SessionOrchestrator) LoadDocuments(ctx context.Context, s *Session, docs []models.RawDocument, params models.BackendParams) (models.ExtractedCorpus, error) {
	if len(docs) == 0 {
		return models.ExtractedCorpus{}, ErrNoDocuments
	}

	s.mu.Lock()
	if s.busy() {
		s.mu.Unlock()
		return models.ExtractedCorpus{}, ErrBusy
	}
	prev := s.state
	s.state = StateLoading
	s.mu.Unlock()

	corpus, cfg, handle, err := o.prepare(ctx, docs, params)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = prev
		o.log.Error("SERVICE: failed to load documents", zap.Int("documents", len(docs)), zap.Error(err))
		return models.ExtractedCorpus{}, err
	}

	s.corpus = &corpus
	s.config = &cfg
	s.handle = handle
	s.history = nil
	s.state = StateReady

	o.log.Info("SERVICE: loaded documents",
		zap.Int("documents", len(docs)),
		zap.Int("characters", len(corpus.Text)),
		zap.String("backend", string(cfg.Kind)),
		zap.String("model", cfg.ModelName),
	)
	return corpus, nil
}

func (o *SessionOrchestrator) prepare(ctx context.Context, docs []models.RawDocument, params models.BackendParams) (models.ExtractedCorpus, models.BackendConfig, EngineHandle, error) {
	corpus := o.extractor.Extract(ctx, docs)
	if err := ctx.Err(); err != nil {
		return models.ExtractedCorpus{}, models.BackendConfig{}, nil, err
	}

	cfg, err := o.configurator.Configure(params)
	if err != nil {
		return models.ExtractedCorpus{}, models.BackendConfig{}, nil, err
	}

	handle, err := o.engine.Initialize(ctx, cfg)
	if err != nil {
		return models.ExtractedCorpus{}, models.BackendConfig{}, nil, err
	}
	if err := ctx.Err(); err != nil {
		return models.ExtractedCorpus{}, models.BackendConfig{}, nil, err
	}
	return corpus, cfg, handle, nil
}

// Ask records the question, runs the engine and records its reply. Engine
// failures become the assistant reply; the returned error only reports a
// question that was rejected without touching the history.
func (o *SessionOrchestrator) Ask(ctx context.Context, s *Session, question string) (models.Message, error) {
	if strings.TrimSpace(question) == "" {
		return models.Message{}, ErrEmptyQuestion
	}

	s.mu.Lock()
	switch {
	case s.busy():
		s.mu.Unlock()
		return models.Message{}, ErrBusy
	case s.state != StateReady:
		s.mu.Unlock()
		return models.Message{}, ErrNotReady
	}
	s.history = append(s.history, models.Message{Role: models.RoleUser, Content: question})
	s.state = StateAnswering
	corpus := s.corpus.Text
	handle := s.handle
	s.mu.Unlock()

	o.log.Info("SERVICE: asking engine", zap.Int("question_chars", len(question)), zap.Int("context_chars", len(corpus)))
	answer, err := complete(ctx, handle, corpus, BuildQueryPrompt(question))

	var content string
	switch {
	case err != nil:
		o.log.Error("SERVICE: engine call failed", zap.Error(err))
		content = fmt.Sprintf("Error: %v", err)
	case strings.TrimSpace(answer.Response) == "":
		content = FallbackAnswer
	default:
		content = answer.Response
	}

	reply := models.Message{Role: models.RoleAssistant, Content: content}
	s.mu.Lock()
	s.history = append(s.history, reply)
	s.state = StateReady
	s.mu.Unlock()
	return reply, nil
}

// complete runs the engine, turning a panic into an error so the session
// always leaves Answering.
func complete(ctx context.Context, handle EngineHandle, corpus, instruction string) (answer models.Answer, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("engine panic: %v", r)
		}
	}()
	return handle.Complete(ctx, corpus, instruction)
}
