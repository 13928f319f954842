package summary

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaGenerate(t *testing.T) {
	var gotReq struct {
		Model    string `json:"model"`
		Stream   *bool  `json:"stream"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"llama3.2","message":{"role":"assistant","content":"Compost the paper."},"done":true}` + "\n"))
	}))
	t.Cleanup(server.Close)

	gen, err := NewOllamaGenerator(server.URL+"/api/chat", "llama3.2", server.Client())
	require.NoError(t, err)

	text, err := gen.Generate(t.Context(), "what about paper?")
	require.NoError(t, err)
	assert.Equal(t, "Compost the paper.", text)

	assert.Equal(t, "llama3.2", gotReq.Model)
	require.NotNil(t, gotReq.Stream)
	assert.False(t, *gotReq.Stream)
	require.Len(t, gotReq.Messages, 1)
	assert.Equal(t, "user", gotReq.Messages[0].Role)
	assert.Equal(t, "what about paper?", gotReq.Messages[0].Content)
}

func TestOllamaGenerateServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"model \"llama3.2\" not found, try pulling it first"}`))
	}))
	t.Cleanup(server.Close)

	gen, err := NewOllamaGenerator(server.URL, "llama3.2", server.Client())
	require.NoError(t, err)

	_, err = gen.Generate(t.Context(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestNewOllamaGeneratorValidation(t *testing.T) {
	_, err := NewOllamaGenerator("://bad", "llama3.2", nil)
	require.Error(t, err)

	_, err = NewOllamaGenerator(DefaultOllamaURL, "", nil)
	require.Error(t, err)

	gen, err := NewOllamaGenerator("", "llama3.2", nil)
	require.NoError(t, err)
	assert.NotNil(t, gen)
}

func TestNewGeneratorSelectsProvider(t *testing.T) {
	gen, err := NewGenerator(t.Context(), ProviderConfig{Provider: "Ollama", Model: "llama3.2"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &OllamaGenerator{}, gen)

	gen, err = NewGenerator(t.Context(), ProviderConfig{APIKey: "k"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &GeminiGenerator{}, gen)

	_, err = NewGenerator(t.Context(), ProviderConfig{Provider: "markov"}, nil)
	require.Error(t, err)
}
