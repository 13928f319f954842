package summary

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ollama/ollama/api"

	"github.com/wastenet/wastenet-go/internal/errors"
)

// DefaultOllamaURL is the local Ollama server.
const DefaultOllamaURL = "http://localhost:11434"

// OllamaGenerator calls a local Ollama chat model.
type OllamaGenerator struct {
	client *api.Client
	model  string
}

// NewOllamaGenerator connects to the Ollama server at serverURL. Only the
// scheme and host of serverURL are used. A nil httpClient means http.DefaultClient.
func NewOllamaGenerator(serverURL, model string, httpClient *http.Client) (*OllamaGenerator, error) {
	if serverURL == "" {
		serverURL = DefaultOllamaURL
	}
	parsed, err := url.Parse(serverURL)
	if err != nil || parsed.Host == "" {
		if err == nil {
			err = fmt.Errorf("missing host")
		}
		return nil, errors.New(fmt.Errorf("invalid ollama url %q: %w", serverURL, err)).
			Component("summary").
			Category(errors.CategoryConfiguration).
			Build()
	}
	if model == "" {
		return nil, errors.New(errors.NewStd("ollama model is not set")).
			Component("summary").
			Category(errors.CategoryConfiguration).
			Build()
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	base := &url.URL{Scheme: parsed.Scheme, Host: parsed.Host}
	return &OllamaGenerator{
		client: api.NewClient(base, httpClient),
		model:  model,
	}, nil
}

// Generate implements TextGenerator.
func (o *OllamaGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	stream := false
	req := &api.ChatRequest{
		Model: o.model,
		Messages: []api.Message{{
			Role:    "user",
			Content: prompt,
		}},
		Stream: &stream,
	}

	var content string
	err := o.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		content += resp.Message.Content
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama chat: %w", err)
	}
	if content == "" {
		return "", fmt.Errorf("empty response from ollama")
	}
	return content, nil
}
