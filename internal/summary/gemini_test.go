package summary

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGeminiServer(t *testing.T, handler http.HandlerFunc) *GeminiGenerator {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	gen, err := NewGeminiGenerator(t.Context(), GeminiConfig{
		APIKey:   "test-key",
		Endpoint: server.URL + "/",
	})
	require.NoError(t, err)
	return gen
}

func TestGeminiGenerate(t *testing.T) {
	var gotPath string
	var gotBody map[string]any

	gen := newGeminiServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Glass "},{"text":"peaks on Mondays."}]}}]}`))
	})

	text, err := gen.Generate(t.Context(), "summarize this")
	require.NoError(t, err)
	assert.Equal(t, "Glass peaks on Mondays.", text)
	assert.Equal(t, "/v1beta/models/gemini-1.5-flash:generateContent", gotPath)

	contents, ok := gotBody["contents"].([]any)
	require.True(t, ok, "request body: %v", gotBody)
	require.Len(t, contents, 1)
	parts := contents[0].(map[string]any)["parts"].([]any)
	assert.Equal(t, "summarize this", parts[0].(map[string]any)["text"])
}

func TestGeminiGenerateFailures(t *testing.T) {
	tests := map[string]http.HandlerFunc{
		"http error": func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":{"code":429,"message":"quota exceeded","status":"RESOURCE_EXHAUSTED"}}`))
		},
		"blocked prompt": func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"promptFeedback":{"blockReason":"SAFETY"}}`))
		},
		"no candidates": func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{}`))
		},
	}

	for name, handler := range tests {
		t.Run(name, func(t *testing.T) {
			gen := newGeminiServer(t, handler)
			_, err := gen.Generate(t.Context(), "prompt")
			require.Error(t, err)
		})
	}
}

func TestNewGeminiGeneratorRequiresKey(t *testing.T) {
	_, err := NewGeminiGenerator(t.Context(), GeminiConfig{})
	require.Error(t, err)
}

func TestGeminiModelName(t *testing.T) {
	assert.Equal(t, "models/gemini-pro", (&GeminiGenerator{model: "gemini-pro"}).modelName())
	assert.Equal(t, "models/custom", (&GeminiGenerator{model: "models/custom"}).modelName())
}
