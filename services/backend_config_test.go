package services

import (
	"os"
	"path/filepath"
	"testing"

	"github/itish2003/pdfchat/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigure_OpenAIRequiresKey(t *testing.T) {
	b := newTestConfigurator(t)

	_, err := b.Configure(models.BackendParams{Kind: "openai", ModelName: "gpt-x"})
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "OpenAI", cfgErr.Backend)
	assert.Contains(t, err.Error(), "OpenAI API Key")

	cfg, err := b.Configure(models.BackendParams{Kind: "openai", ModelName: "gpt-x", APIKey: "sk-..."})
	require.NoError(t, err)
	assert.Equal(t, models.BackendOpenAI, cfg.Kind)
	assert.Equal(t, "gpt-x", cfg.ModelName)
	assert.Equal(t, "sk-...", cfg.APIKey)
	assert.Empty(t, cfg.BaseURL)
}

func TestConfigure_GeminiMissingKeyNamesBackend(t *testing.T) {
	_, err := newTestConfigurator(t).Configure(models.BackendParams{Kind: "gemini"})
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "Gemini", cfgErr.Backend)
}

func TestConfigure_EnvironmentDefaults(t *testing.T) {
	b := NewBackendConfigurator(DefaultCredentials{OpenAI: "sk-env", Gemini: "g-env"}, t.TempDir())

	cfg, err := b.Configure(models.BackendParams{Kind: "openai"})
	require.NoError(t, err)
	assert.Equal(t, "sk-env", cfg.APIKey)
	assert.Equal(t, "gpt-5-mini", cfg.ModelName)

	cfg, err = b.Configure(models.BackendParams{Kind: "gemini", APIKey: "g-user"})
	require.NoError(t, err)
	assert.Equal(t, "g-user", cfg.APIKey, "user entered key wins over the default")
	assert.Equal(t, "gemini-2.5-flash-lite", cfg.ModelName)
}

func TestConfigure_LocalModel(t *testing.T) {
	b := newTestConfigurator(t)

	cfg, err := b.Configure(models.BackendParams{Kind: "ollama"})
	require.NoError(t, err)
	assert.Equal(t, models.BackendLocal, cfg.Kind)
	assert.Equal(t, DefaultLocalBaseURL, cfg.BaseURL)
	assert.Equal(t, DefaultLocalAPIKey, cfg.APIKey)
	assert.Equal(t, "llama3", cfg.ModelName)

	cfg, err = b.Configure(models.BackendParams{Kind: "local", ModelName: "qwen2", BaseURL: "http://gpu-box:8000/v1", APIKey: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "http://gpu-box:8000/v1", cfg.BaseURL)
	assert.Equal(t, "secret", cfg.APIKey)
	assert.Equal(t, "qwen2", cfg.ModelName)

	_, err = b.Configure(models.BackendParams{Kind: "local", BaseURL: "not a url"})
	var cfgErr *ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestConfigure_UnknownBackend(t *testing.T) {
	_, err := newTestConfigurator(t).Configure(models.BackendParams{Kind: "claude-on-a-toaster"})
	var cfgErr *ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestConfigure_CreatesLogDirIdempotently(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "logs")
	b := NewBackendConfigurator(DefaultCredentials{}, dir)

	cfg, err := b.Configure(openAIParams())
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.LogDir)
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	_, err = b.Configure(openAIParams())
	assert.NoError(t, err)
}

func TestConfigure_LogDirFailure(t *testing.T) {
	file := filepath.Join(t.TempDir(), "occupied")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	_, err := NewBackendConfigurator(DefaultCredentials{}, filepath.Join(file, "logs")).Configure(openAIParams())
	var cfgErr *ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}
