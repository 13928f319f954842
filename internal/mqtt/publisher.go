package mqtt

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/wastenet/wastenet-go/internal/detection"
	"github.com/wastenet/wastenet-go/internal/logger"
	"github.com/wastenet/wastenet-go/internal/predictionlog"
)

// Publisher sends prediction events to a fixed topic.
type Publisher struct {
	client Client
	topic  string
	log    logger.Logger
}

// NewPublisher wraps client. An empty topic means DefaultTopic.
func NewPublisher(client Client, topic string, log logger.Logger) *Publisher {
	if topic == "" {
		topic = DefaultTopic
	}
	if log == nil {
		log = logger.NewSlogLogger(nil, logger.LogLevelInfo, nil)
	}
	return &Publisher{client: client, topic: topic, log: log.Module("mqtt")}
}

// Topic returns the publish topic.
func (p *Publisher) Topic() string {
	return p.topic
}

// PublishPrediction publishes rec. Events are dropped with a debug log while
// the client is disconnected.
func (p *Publisher) PublishPrediction(ctx context.Context, rec predictionlog.Record, box *detection.Box) error {
	if !p.client.IsConnected() {
		p.log.Debug("dropping prediction event, broker not connected",
			logger.String("image", rec.ImageName))
		return nil
	}

	payload, err := json.Marshal(NewPredictionEventDTO(rec, box))
	if err != nil {
		return fmt.Errorf("marshal prediction event: %w", err)
	}
	return p.client.Publish(ctx, p.topic, string(payload))
}
