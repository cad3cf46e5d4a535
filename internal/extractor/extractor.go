// Package extractor turns a free-text book description into "Key: Value"
// lines using a language model.
package extractor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mtthwcarey/catalogger/internal/config"
	"github.com/mtthwcarey/catalogger/internal/gemini"
	"github.com/mtthwcarey/catalogger/internal/ollama"
	"github.com/mtthwcarey/catalogger/internal/openai"
	"github.com/mtthwcarey/catalogger/internal/providers"
)

// SystemPrompt is sent as the system instruction with every request.
const SystemPrompt = "You are an assistant that extracts book details from text."

// Extractor returns the raw model reply for a description, or false when
// nothing usable came back.
type Extractor interface {
	Extract(ctx context.Context, description string) (string, bool)
}

// LLMExtractor implements Extractor on top of a providers.Provider.
type LLMExtractor struct {
	provider    providers.Provider
	model       string
	temperature float64
}

// New returns an extractor backed by provider.
func New(provider providers.Provider, model string, temperature float64) *LLMExtractor {
	return &LLMExtractor{
		provider:    provider,
		model:       model,
		temperature: temperature,
	}
}

// NewFromConfig picks the provider named in cfg.
func NewFromConfig(cfg config.LLM) (*LLMExtractor, error) {
	provider, err := NewProvider(cfg)
	if err != nil {
		return nil, err
	}
	return New(provider, cfg.Model, cfg.Temperature), nil
}

// NewProvider constructs the provider named in cfg.
func NewProvider(cfg config.LLM) (providers.Provider, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return openai.New(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL), nil
	case config.ProviderOllama:
		return ollama.New(cfg.OllamaURL), nil
	case config.ProviderGemini:
		return gemini.New(cfg.GeminiAPIKey), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}
}

// BuildPrompt returns the user message for description.
func BuildPrompt(description string) string {
	return fmt.Sprintf(`Extract the following details from this book description:
- Title
- Author
- Format (e.g., hardcover, paperback)
- Year

Reply with one "Key: Value" line per detail.

Description: %s`, description)
}

// Extract sends description to the model. Failures are logged, never returned.
func (e *LLMExtractor) Extract(ctx context.Context, description string) (string, bool) {
	description = strings.TrimSpace(description)
	if description == "" {
		slog.Warn("Refusing to extract details from an empty description")
		return "", false
	}

	text, err := e.provider.ExtractText(ctx, providers.Config{
		Model:        e.model,
		Temperature:  e.temperature,
		SystemPrompt: SystemPrompt,
		Prompt:       BuildPrompt(description),
	})
	if err != nil {
		slog.Error("Book detail extraction failed", "model", e.model, "err", err)
		return "", false
	}

	text = strings.TrimSpace(text)
	if text == "" {
		slog.Warn("Model returned an empty reply", "model", e.model)
		return "", false
	}

	slog.Info("Book details extracted", "model", e.model, "details", text)
	return text, true
}
