package services

import (
	"context"
	"fmt"
	"strings"

	"github/itish2003/pdfchat/models"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"google.golang.org/genai"
)

// CompletionModel is a single provider call: every part is sent as its own
// piece of one user turn and the reply text is returned.
type CompletionModel interface {
	Generate(ctx context.Context, parts ...string) (string, error)
}

// ModelFactory connects to a provider for a validated configuration.
type ModelFactory func(ctx context.Context, cfg models.BackendConfig) (CompletionModel, error)

// DefaultModelFactories wires Gemini through genai and both OpenAI and local
// OpenAI-compatible servers (Ollama, vLLM) through langchaingo.
func DefaultModelFactories() map[models.BackendKind]ModelFactory {
	return map[models.BackendKind]ModelFactory{
		models.BackendGemini: NewGeminiModel,
		models.BackendOpenAI: NewOpenAIModel,
		models.BackendLocal:  NewOpenAIModel,
	}
}

type geminiModel struct {
	client *genai.Client
	model  string
}

func NewGeminiModel(ctx context.Context, cfg models.BackendConfig) (CompletionModel, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &geminiModel{client: client, model: cfg.ModelName}, nil
}

func (m *geminiModel) Generate(ctx context.Context, parts ...string) (string, error) {
	content := &genai.Content{Role: "user"}
	for _, p := range parts {
		content.Parts = append(content.Parts, &genai.Part{Text: p})
	}

	result, err := m.client.Models.GenerateContent(ctx, m.model, []*genai.Content{content}, nil)
	if err != nil {
		return "", fmt.Errorf("gemini api call failed: %w", err)
	}
	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return "", nil
	}

	var responseText strings.Builder
	for _, p := range result.Candidates[0].Content.Parts {
		if p != nil && p.Text != "" {
			responseText.WriteString(p.Text)
		}
	}
	return responseText.String(), nil
}

type openAIModel struct {
	llm *openai.LLM
}

func NewOpenAIModel(_ context.Context, cfg models.BackendConfig) (CompletionModel, error) {
	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
		openai.WithModel(cfg.ModelName),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s client: %w", cfg.Kind.DisplayName(), err)
	}
	return &openAIModel{llm: llm}, nil
}

func (m *openAIModel) Generate(ctx context.Context, parts ...string) (string, error) {
	msg := llms.MessageContent{Role: llms.ChatMessageTypeHuman}
	for _, p := range parts {
		msg.Parts = append(msg.Parts, llms.TextContent{Text: p})
	}

	resp, err := m.llm.GenerateContent(ctx, []llms.MessageContent{msg})
	if err != nil {
		return "", fmt.Errorf("completion call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Content, nil
}
