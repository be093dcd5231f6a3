package models

import "strings"

// BackendKind identifies the language-model provider behind a session.
type BackendKind string

const (
	BackendOpenAI BackendKind = "openai"
	BackendGemini BackendKind = "gemini"
	BackendLocal  BackendKind = "local"
)

// DisplayName is the name shown to users in errors and status output.
func (k BackendKind) DisplayName() string {
	switch k {
	case BackendOpenAI:
		return "OpenAI"
	case BackendGemini:
		return "Gemini"
	case BackendLocal:
		return "Ollama"
	default:
		return string(k)
	}
}

// ParseBackendKind accepts the wire names plus the display aliases
// ("ollama", "vllm") used by clients.
func ParseBackendKind(s string) (BackendKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "openai":
		return BackendOpenAI, true
	case "gemini":
		return BackendGemini, true
	case "local", "ollama", "vllm", "localmodel":
		return BackendLocal, true
	default:
		return "", false
	}
}

// BackendParams is the unvalidated backend selection entered by a user.
type BackendParams struct {
	Kind      string `json:"backend" form:"backend"`
	ModelName string `json:"model" form:"model"`
	APIKey    string `json:"api_key" form:"api_key"`
	BaseURL   string `json:"base_url" form:"base_url"`
}

// BackendConfig is a validated backend connection. It is passed by value and
// never changed after BackendConfigurator builds it.
type BackendConfig struct {
	Kind      BackendKind
	ModelName string
	APIKey    string
	BaseURL   string
	LogDir    string
}
