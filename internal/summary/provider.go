package summary

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/wastenet/wastenet-go/internal/errors"
)

// Provider names.
const (
	ProviderGemini = "gemini"
	ProviderOllama = "ollama"
)

// ProviderConfig selects a generator backend.
type ProviderConfig struct {
	Provider  string
	Model     string
	APIKey    string
	Endpoint  string // Gemini endpoint override
	OllamaURL string
}

// NewGenerator builds the generator named by cfg.Provider; empty means Gemini.
func NewGenerator(ctx context.Context, cfg ProviderConfig, httpClient *http.Client) (TextGenerator, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", ProviderGemini:
		return NewGeminiGenerator(ctx, GeminiConfig{APIKey: cfg.APIKey, Model: cfg.Model, Endpoint: cfg.Endpoint})
	case ProviderOllama:
		return NewOllamaGenerator(cfg.OllamaURL, cfg.Model, httpClient)
	default:
		return nil, errors.New(fmt.Errorf("unknown summary provider %q", cfg.Provider)).
			Component("summary").
			Category(errors.CategoryConfiguration).
			Build()
	}
}
