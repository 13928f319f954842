package mqtt

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/wastenet/wastenet-go/internal/errors"
	"github.com/wastenet/wastenet-go/internal/logger"
	"github.com/wastenet/wastenet-go/internal/observability/metrics"
)

// client implements the Client interface on top of paho.
type client struct {
	config          Config
	internalClient  paho.Client
	lastConnAttempt time.Time
	mu              sync.Mutex
	metrics         *metrics.MQTTMetrics
	log             logger.Logger
}

// NewClient creates a new MQTT client. m may be nil.
func NewClient(cfg Config, m *metrics.MQTTMetrics, log logger.Logger) (Client, error) {
	if cfg.Broker == "" {
		return nil, errors.Newf("mqtt broker is not configured").
			Component("mqtt").
			Category(errors.CategoryConfiguration).
			Build()
	}
	if _, err := url.Parse(cfg.Broker); err != nil {
		return nil, errors.New(fmt.Errorf("invalid broker URL: %w", err)).
			Component("mqtt").
			Category(errors.CategoryConfiguration).
			Context("broker", cfg.Broker).
			Build()
	}
	if log == nil {
		log = logger.NewSlogLogger(nil, logger.LogLevelInfo, nil)
	}
	return &client{
		config:  cfg.withDefaults(),
		metrics: m,
		log:     log.Module("mqtt"),
	}, nil
}

// Connect attempts to establish a connection to the MQTT broker.
// It first resolves the broker's hostname and then attempts to connect.
func (c *client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.lastConnAttempt.IsZero() && time.Since(c.lastConnAttempt) < c.config.ReconnectCooldown {
		return c.connectError(fmt.Errorf("connection attempt too recent, last attempt was %v ago",
			time.Since(c.lastConnAttempt)))
	}
	c.lastConnAttempt = time.Now()

	u, err := url.Parse(c.config.Broker)
	if err != nil {
		return c.connectError(fmt.Errorf("invalid broker URL: %w", err))
	}

	host := u.Hostname()
	if net.ParseIP(host) == nil {
		if _, err := net.DefaultResolver.LookupHost(ctx, host); err != nil {
			return c.connectError(fmt.Errorf("failed to resolve hostname %s: %w", host, err))
		}
	}

	opts := paho.NewClientOptions()
	opts.AddBroker(c.config.Broker)
	opts.SetClientID(c.config.ClientID)
	opts.SetUsername(c.config.Username)
	opts.SetPassword(c.config.Password)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(c.config.ConnectTimeout)
	opts.SetMaxReconnectInterval(5 * time.Minute)
	opts.SetOnConnectHandler(c.onConnect)
	opts.SetConnectionLostHandler(c.onConnectionLost)
	opts.SetReconnectingHandler(c.onReconnecting)

	c.internalClient = paho.NewClient(opts)

	token := c.internalClient.Connect()
	select {
	case <-token.Done():
	case <-ctx.Done():
		return c.connectError(ctx.Err())
	case <-time.After(c.config.ConnectTimeout):
		return c.connectError(fmt.Errorf("connection timeout"))
	}
	if err := token.Error(); err != nil {
		return c.connectError(fmt.Errorf("connection error: %w", err))
	}

	if c.metrics != nil {
		c.metrics.UpdateConnectionStatus(true)
	}
	return nil
}

// Publish sends a message to the specified topic on the MQTT broker.
func (c *client) Publish(ctx context.Context, topic string, payload string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.isConnected() {
		return c.publishError(fmt.Errorf("not connected to MQTT broker"), topic)
	}

	c.log.Debug("publishing", logger.String("topic", topic), logger.Int("bytes", len(payload)))

	if c.metrics != nil {
		timer := c.metrics.StartPublishTimer()
		defer timer.ObserveDuration()
	}

	token := c.internalClient.Publish(topic, c.config.QoS, c.config.Retain, payload)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return c.publishError(ctx.Err(), topic)
	case <-time.After(c.config.PublishTimeout):
		return c.publishError(fmt.Errorf("publish timeout"), topic)
	}
	if err := token.Error(); err != nil {
		return c.publishError(err, topic)
	}

	if c.metrics != nil {
		c.metrics.IncrementMessagesDelivered()
		c.metrics.ObserveMessageSize(float64(len(payload)))
	}
	return nil
}

// IsConnected returns true if the client is currently connected to the MQTT broker.
func (c *client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isConnected()
}

func (c *client) isConnected() bool {
	return c.internalClient != nil && c.internalClient.IsConnected()
}

// Disconnect closes the connection to the MQTT broker.
func (c *client) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.internalClient == nil {
		return
	}
	c.internalClient.Disconnect(uint(c.config.DisconnectTimeout.Milliseconds()))
	if c.metrics != nil {
		c.metrics.UpdateConnectionStatus(false)
	}
}

func (c *client) onConnect(paho.Client) {
	c.log.Info("connected to MQTT broker", logger.String("broker", c.config.Broker))
	if c.metrics != nil {
		c.metrics.UpdateConnectionStatus(true)
	}
}

func (c *client) onConnectionLost(_ paho.Client, err error) {
	c.log.Warn("connection to MQTT broker lost",
		logger.String("broker", c.config.Broker),
		logger.Error(err))
	if c.metrics != nil {
		c.metrics.UpdateConnectionStatus(false)
		c.metrics.IncrementErrors()
	}
}

func (c *client) onReconnecting(paho.Client, *paho.ClientOptions) {
	c.log.Debug("reconnecting to MQTT broker", logger.String("broker", c.config.Broker))
	if c.metrics != nil {
		c.metrics.IncrementReconnectAttempts()
	}
}

func (c *client) connectError(err error) error {
	if c.metrics != nil {
		c.metrics.IncrementErrors()
	}
	return errors.New(err).
		Component("mqtt").
		Category(errors.CategoryMQTTConnect).
		NetworkContext(c.config.Broker, c.config.ConnectTimeout).
		Build()
}

func (c *client) publishError(err error, topic string) error {
	if c.metrics != nil {
		c.metrics.IncrementErrors()
	}
	return errors.New(err).
		Component("mqtt").
		Category(errors.CategoryMQTTPublish).
		Context("topic", topic).
		Build()
}
