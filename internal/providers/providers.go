package providers

import (
	"context"
	"errors"
)

// ErrMissingAPIKey is returned by providers that need a credential when none
// was configured.
var ErrMissingAPIKey = errors.New("API key not set")

// Config represents the configuration for a single LLM request
type Config struct {
	Model        string
	Temperature  float64
	SystemPrompt string
	Prompt       string
}

// Provider defines the interface for an LLM provider
type Provider interface {
	ExtractText(ctx context.Context, config Config) (string, error)
}
