package services

import (
	"errors"
	"fmt"
)

var (
	ErrNotReady      = errors.New("please load PDFs first")
	ErrBusy          = errors.New("a request for this session is still in progress")
	ErrNoDocuments   = errors.New("please upload at least one PDF file")
	ErrEmptyQuestion = errors.New("question must not be empty")
)

// ExtractionError describes a single document that could not be read. It is
// never returned to callers; its text is embedded in the corpus instead.
type ExtractionError struct {
	File string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("Error reading %s: %v", e.File, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// ConfigurationError rejects a backend selection. The session keeps its
// previous state.
type ConfigurationError struct {
	Backend string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s configuration: %s", e.Backend, e.Reason)
}

// InitializationError is returned when the reasoning engine cannot be set up
// for an otherwise valid configuration.
type InitializationError struct {
	Backend string
	Err     error
}

func (e *InitializationError) Error() string {
	return fmt.Sprintf("failed to initialize %s engine: %v", e.Backend, e.Err)
}

func (e *InitializationError) Unwrap() error { return e.Err }

var ErrIterationBudget = errors.New("reasoning engine exhausted its iteration budget")
