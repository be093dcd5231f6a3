package services

import (
	"context"

	"github/itish2003/pdfchat/models"
)

// Engine creates reasoning-engine handles for a backend configuration.
type Engine interface {
	Initialize(ctx context.Context, cfg models.BackendConfig) (EngineHandle, error)
}

// EngineHandle answers one instruction against a context payload. The two
// strings are separate channels and must not be merged by callers.
type EngineHandle interface {
	Complete(ctx context.Context, corpus, instruction string) (models.Answer, error)
}
