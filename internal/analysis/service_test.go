package analysis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wastenet/wastenet-go/internal/analytics"
	"github.com/wastenet/wastenet-go/internal/logger"
)

func analyticsEmpty() analytics.Result {
	return analytics.Aggregate(nil)
}

func TestServeStopsOnCancel(t *testing.T) {
	settings := testSettings(t)
	settings.WebServer.Listen = "127.0.0.1:0"
	settings.Summary.Provider = "ollama"
	settings.Summary.Model = "llama3.2"
	settings.Summary.OllamaURL = "http://127.0.0.1:11434"

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, settings, logger.NewSlogLogger(nil, logger.LogLevelInfo, nil)) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("service did not stop")
	}
}
