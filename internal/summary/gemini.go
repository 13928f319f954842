package summary

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/generativelanguage/v1beta"
	"google.golang.org/api/option"

	"github.com/wastenet/wastenet-go/internal/errors"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-1.5-flash"

// GeminiConfig configures GeminiGenerator.
type GeminiConfig struct {
	APIKey string
	Model  string
	// Endpoint overrides the API base URL.
	Endpoint string
}

// GeminiGenerator calls the Gemini generateContent API.
type GeminiGenerator struct {
	svc   *generativelanguage.Service
	model string
}

// NewGeminiGenerator creates a generator for cfg. Extra client options are
// appended after the ones derived from cfg.
func NewGeminiGenerator(ctx context.Context, cfg GeminiConfig, extra ...option.ClientOption) (*GeminiGenerator, error) {
	if cfg.APIKey == "" {
		return nil, errors.New(errors.NewStd("gemini api key is not set")).
			Component("summary").
			Category(errors.CategoryConfiguration).
			Build()
	}

	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}
	opts = append(opts, extra...)

	svc, err := generativelanguage.NewService(ctx, opts...)
	if err != nil {
		return nil, errors.New(fmt.Errorf("create gemini client: %w", err)).
			Component("summary").
			Category(errors.CategoryConfiguration).
			Build()
	}

	model := cfg.Model
	if model == "" {
		model = DefaultGeminiModel
	}

	return &GeminiGenerator{svc: svc, model: model}, nil
}

// Generate implements TextGenerator.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	req := &generativelanguage.GenerateContentRequest{
		Contents: []*generativelanguage.Content{{
			Role:  "user",
			Parts: []*generativelanguage.Part{{Text: prompt}},
		}},
	}

	resp, err := g.svc.Models.GenerateContent(g.modelName(), req).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("gemini generateContent: %w", err)
	}

	if len(resp.Candidates) == 0 {
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return "", fmt.Errorf("gemini blocked the prompt: %s", resp.PromptFeedback.BlockReason)
		}
		return "", fmt.Errorf("gemini returned no candidates")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return "", fmt.Errorf("gemini candidate has no content (finish reason %s)", candidate.FinishReason)
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		sb.WriteString(part.Text)
	}
	return sb.String(), nil
}

func (g *GeminiGenerator) modelName() string {
	if strings.HasPrefix(g.model, "models/") {
		return g.model
	}
	return "models/" + g.model
}
