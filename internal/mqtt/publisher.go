package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/i474232898/willyweather-bridge/internal/config"
	"github.com/i474232898/willyweather-bridge/internal/entity"
	"github.com/i474232898/willyweather-bridge/internal/entry"
	"github.com/i474232898/willyweather-bridge/internal/weather"
)

const publishTimeout = 5 * time.Second

// Publisher mirrors entity states to an MQTT broker and announces each
// entity with Home Assistant discovery messages. States and discovery
// configs are retained so consumers can restart without waiting a poll
// cycle.
type Publisher struct {
	client paho.Client
	cfg    config.MQTTConfig
	logger *slog.Logger

	mu        sync.Mutex
	connected bool
	announced map[string]*entry.Entry
}

// New builds a Publisher. Connect must be called before anything is
// published.
func New(cfg config.MQTTConfig, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}

	p := &Publisher{
		cfg:       cfg,
		logger:    logger,
		announced: make(map[string]*entry.Entry),
	}

	opts := paho.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.Broker, cfg.Port))
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(60 * time.Second)
	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetWill(bridgeAvailabilityTopic(cfg.TopicPrefix), "offline", 1, true)

	opts.SetOnConnectHandler(func(paho.Client) {
		p.setConnected(true)
		p.publish(bridgeAvailabilityTopic(cfg.TopicPrefix), "online", true)
		logger.Info("mqtt connected", "broker", cfg.Broker, "port", cfg.Port)
	})
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		p.setConnected(false)
		logger.Warn("mqtt connection lost", "error", err)
	})

	p.client = paho.NewClient(opts)
	return p
}

func (p *Publisher) setConnected(v bool) {
	p.mu.Lock()
	p.connected = v
	p.mu.Unlock()
}

// Connected reports whether the broker session is up.
func (p *Publisher) Connected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connected
}

// Connect dials the broker, waiting until the session is up or ctx ends.
func (p *Publisher) Connect(ctx context.Context) error {
	token := p.client.Connect()
	for {
		if token.WaitTimeout(200 * time.Millisecond) {
			if err := token.Error(); err != nil {
				return fmt.Errorf("mqtt connect: %w", err)
			}
			return nil
		}
		select {
		case <-ctx.Done():
			p.client.Disconnect(0)
			return ctx.Err()
		default:
		}
	}
}

// Announce publishes retained discovery configs for an entry's entities.
// Calling it again after an options change replaces the set.
func (p *Publisher) Announce(e *entry.Entry, entities []entity.Entity) {
	p.mu.Lock()
	p.announced[e.ID] = e
	p.mu.Unlock()

	for _, ent := range entities {
		payload := buildDiscovery(p.cfg, e, ent)
		body, err := json.Marshal(payload)
		if err != nil {
			p.logger.Warn("failed to marshal discovery config", "entity", ent.Key(), "error", err)
			continue
		}
		p.publish(discoveryTopic(p.cfg.DiscoveryPrefix, e.StationID, ent), string(body), true)
	}

	p.logger.Info("announced entities", "station", e.StationID, "count", len(entities))
}

// PublishStates pushes every entity's state for one snapshot and marks the
// entry online.
func (p *Publisher) PublishStates(e *entry.Entry, entities []entity.Entity, snap *weather.Snapshot) {
	p.PublishAvailability(e, true)

	for _, ent := range entities {
		p.publish(stateTopic(p.cfg.TopicPrefix, e.StationID, ent.Key()), stateString(ent.State(snap)), true)

		if attrs := ent.Attributes(snap); attrs != nil {
			body, err := json.Marshal(attrs)
			if err != nil {
				p.logger.Warn("failed to marshal attributes", "entity", ent.Key(), "error", err)
				continue
			}
			p.publish(attributesTopic(p.cfg.TopicPrefix, e.StationID, ent.Key()), string(body), true)
		}
	}
}

// PublishAvailability flips one entry's availability topic.
func (p *Publisher) PublishAvailability(e *entry.Entry, online bool) {
	payload := "offline"
	if online {
		payload = "online"
	}
	p.publish(entryAvailabilityTopic(p.cfg.TopicPrefix, e.StationID), payload, true)
}

// Stop marks every announced entry and the bridge itself offline, then
// disconnects.
func (p *Publisher) Stop() {
	p.mu.Lock()
	entries := make([]*entry.Entry, 0, len(p.announced))
	for _, e := range p.announced {
		entries = append(entries, e)
	}
	p.mu.Unlock()

	for _, e := range entries {
		p.PublishAvailability(e, false)
	}
	p.publish(bridgeAvailabilityTopic(p.cfg.TopicPrefix), "offline", true)

	p.client.Disconnect(250)
	p.setConnected(false)
}

func (p *Publisher) publish(topic, payload string, retained bool) {
	token := p.client.Publish(topic, 1, retained, payload)
	if !token.WaitTimeout(publishTimeout) {
		p.logger.Warn("mqtt publish timed out", "topic", topic)
		return
	}
	if err := token.Error(); err != nil {
		p.logger.Warn("mqtt publish failed", "topic", topic, "error", err)
	}
}
