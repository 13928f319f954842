package analysis

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wastenet/wastenet-go/internal/api"
	"github.com/wastenet/wastenet-go/internal/conf"
	"github.com/wastenet/wastenet-go/internal/logger"
	"github.com/wastenet/wastenet-go/internal/mqtt"
	"github.com/wastenet/wastenet-go/internal/observability"
	"github.com/wastenet/wastenet-go/internal/telemetry"
)

// telemetryFlushTimeout bounds how long pending error reports are sent on exit.
const telemetryFlushTimeout = 2 * time.Second

// Serve runs the HTTP API, the optional metrics endpoint and the optional
// MQTT publisher until ctx is canceled or one of them fails.
func Serve(ctx context.Context, settings *conf.Settings, log logger.Logger) error {
	if err := telemetry.Init(settings.SentryConfig(), log); err != nil {
		return err
	}
	defer telemetry.Flush(telemetryFlushTimeout)

	m, err := observability.NewMetrics()
	if err != nil {
		return err
	}

	comps, err := NewComponents(ctx, settings, log, m)
	if err != nil {
		return err
	}
	defer func() {
		if err := comps.Close(); err != nil {
			log.Warn("failed to close prediction log", logger.Error(err))
		}
	}()

	g, gctx := errgroup.WithContext(ctx)

	serverOpts := []api.ServerOption{
		api.WithLogger(log),
		api.WithStore(comps.Store),
		api.WithDetector(comps.Detector),
		api.WithSummarizer(comps.Summarizer),
		api.WithMetrics(m),
	}

	if settings.MQTT.Enabled {
		mqttLog := log.Module("mqtt")
		client, err := mqtt.NewClient(settings.MQTTConfig(), m.MQTT, mqttLog)
		if err != nil {
			return err
		}
		defer client.Disconnect()

		publisher := mqtt.NewPublisher(client, settings.MQTT.Topic, mqttLog)
		serverOpts = append(serverOpts, api.WithPublisher(publisher))

		g.Go(func() error {
			connectWithRetry(gctx, client, settings.MQTTConfig().ReconnectCooldown, mqttLog)
			return nil
		})
	}

	server, err := api.New(settings, serverOpts...)
	if err != nil {
		return err
	}
	g.Go(func() error { return server.Run(gctx) })

	if settings.Telemetry.Prometheus.Enabled {
		endpoint := observability.NewEndpoint(settings.Telemetry.Prometheus.Listen, m, log)
		g.Go(func() error { return endpoint.Run(gctx) })
	}

	log.Info("service started",
		logger.String("listen", settings.WebServer.Listen),
		logger.String("backend", settings.PredictionLog.Backend),
		logger.Bool("mqtt", settings.MQTT.Enabled),
		logger.Bool("prometheus", settings.Telemetry.Prometheus.Enabled))

	return g.Wait()
}

// connectWithRetry keeps trying the first broker connection until it
// succeeds or ctx ends. Later drops are handled by the client's own reconnect.
func connectWithRetry(ctx context.Context, client mqtt.Client, interval time.Duration, log logger.Logger) {
	if interval <= 0 {
		interval = mqtt.DefaultConfig().ReconnectCooldown
	}

	for {
		err := client.Connect(ctx)
		if err == nil {
			return
		}
		log.Warn("MQTT connection failed, predictions are not published until it succeeds",
			logger.Error(err),
			logger.Duration("retry_in", interval))

		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
		}
	}
}
