package services

import (
	"fmt"
	"os"
	"strings"

	"github/itish2003/pdfchat/models"

	"github.com/go-playground/validator/v10"
)

const (
	DefaultLocalBaseURL = "http://localhost:11434/v1"
	DefaultLocalAPIKey  = "ollama"
)

var defaultModels = map[models.BackendKind]string{
	models.BackendOpenAI: "gpt-5-mini",
	models.BackendGemini: "gemini-2.5-flash-lite",
	models.BackendLocal:  "llama3",
}

// DefaultCredentials are the API keys pre-supplied by the environment.
type DefaultCredentials struct {
	OpenAI string
	Gemini string
}

func (d DefaultCredentials) forKind(kind models.BackendKind) string {
	switch kind {
	case models.BackendOpenAI:
		return d.OpenAI
	case models.BackendGemini:
		return d.Gemini
	default:
		return ""
	}
}

// BackendConfigurator validates user backend selections.
type BackendConfigurator struct {
	defaults DefaultCredentials
	logDir   string
	validate *validator.Validate
}

func NewBackendConfigurator(defaults DefaultCredentials, logDir string) *BackendConfigurator {
	return &BackendConfigurator{
		defaults: defaults,
		logDir:   logDir,
		validate: validator.New(),
	}
}

// Configure builds an immutable BackendConfig. It also makes sure the log
// directory used for engine traces exists.
func (b *BackendConfigurator) Configure(params models.BackendParams) (models.BackendConfig, error) {
	kind, ok := models.ParseBackendKind(params.Kind)
	if !ok {
		return models.BackendConfig{}, &ConfigurationError{
			Backend: params.Kind,
			Reason:  "unknown backend",
		}
	}

	cfg := models.BackendConfig{
		Kind:      kind,
		ModelName: strings.TrimSpace(params.ModelName),
		APIKey:    strings.TrimSpace(params.APIKey),
		LogDir:    b.logDir,
	}
	if cfg.ModelName == "" {
		cfg.ModelName = defaultModels[kind]
	}

	switch kind {
	case models.BackendOpenAI, models.BackendGemini:
		if cfg.APIKey == "" {
			cfg.APIKey = b.defaults.forKind(kind)
		}
		if cfg.APIKey == "" {
			return models.BackendConfig{}, &ConfigurationError{
				Backend: kind.DisplayName(),
				Reason:  fmt.Sprintf("please enter your %s API Key", kind.DisplayName()),
			}
		}
	case models.BackendLocal:
		cfg.BaseURL = strings.TrimSpace(params.BaseURL)
		if cfg.BaseURL == "" {
			cfg.BaseURL = DefaultLocalBaseURL
		}
		if err := b.validate.Var(cfg.BaseURL, "url"); err != nil {
			return models.BackendConfig{}, &ConfigurationError{
				Backend: kind.DisplayName(),
				Reason:  fmt.Sprintf("invalid base URL %q", cfg.BaseURL),
			}
		}
		if cfg.APIKey == "" {
			cfg.APIKey = DefaultLocalAPIKey
		}
	}

	if err := os.MkdirAll(b.logDir, 0o755); err != nil {
		return models.BackendConfig{}, &ConfigurationError{
			Backend: kind.DisplayName(),
			Reason:  fmt.Sprintf("could not create log directory: %v", err),
		}
	}
	return cfg, nil
}
