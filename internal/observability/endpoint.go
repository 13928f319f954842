package observability

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/wastenet/wastenet-go/internal/logger"
	"github.com/wastenet/wastenet-go/internal/observability/metrics"
)

// Endpoint serves /metrics on its own listener, separate from the API.
type Endpoint struct {
	listenAddress string
	metrics       *Metrics
	log           logger.Logger
}

// NewEndpoint creates an endpoint for listenAddress.
func NewEndpoint(listenAddress string, m *Metrics, log logger.Logger) *Endpoint {
	if log == nil {
		log = logger.NewSlogLogger(nil, logger.LogLevelInfo, nil)
	}
	return &Endpoint{
		listenAddress: listenAddress,
		metrics:       m,
		log:           log.Module("telemetry"),
	}
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (e *Endpoint) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", e.listenAddress)
	if err != nil {
		return err
	}
	return e.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (e *Endpoint) Serve(ctx context.Context, ln net.Listener) error {
	mux := http.NewServeMux()
	e.metrics.RegisterHandlers(mux)

	server := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		e.log.Info("telemetry endpoint starting", logger.String("address", ln.Addr().String()))
		if err := server.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	e.log.Info("stopping telemetry endpoint")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), metrics.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		e.log.Error("telemetry endpoint shutdown error", logger.Error(err))
		return err
	}
	return <-errCh
}
