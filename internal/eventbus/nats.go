package eventbus

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/friendsincode/vidar_tv/internal/events"
)

// subjectPrefix namespaces vidar events on a shared NATS cluster.
const subjectPrefix = "vidartv.events."

// NATSBus mirrors bus events over NATS subjects. Like the Redis bus it
// embeds an in-process bus for local delivery and skips its own messages
// on receive.
type NATSBus struct {
	conn   *nats.Conn
	logger zerolog.Logger
	local  *events.Bus
	nodeID string

	mu   sync.Mutex
	subs map[events.EventType]*nats.Subscription

	degraded bool
}

// NATSConfig contains NATS connection configuration.
type NATSConfig struct {
	URL   string
	Token string

	// Connection options
	MaxReconnects int
	ReconnectWait time.Duration
	Timeout       time.Duration
}

// DefaultNATSConfig returns default NATS configuration.
func DefaultNATSConfig() NATSConfig {
	return NATSConfig{
		URL:           nats.DefaultURL,
		MaxReconnects: -1,
		ReconnectWait: 2 * time.Second,
		Timeout:       5 * time.Second,
	}
}

// NewNATSBus creates a NATS-backed event bus. When the broker is
// unreachable the bus degrades to in-process delivery only; the nats
// client's own reconnect handling covers drops after a successful connect.
func NewNATSBus(cfg NATSConfig, nodeID string, logger zerolog.Logger) *NATSBus {
	nb := &NATSBus{
		logger: logger.With().Str("component", "eventbus").Logger(),
		local:  events.NewBus(),
		nodeID: nodeID,
		subs:   make(map[events.EventType]*nats.Subscription),
	}

	opts := []nats.Option{
		nats.Name("vidartv-" + nodeID),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.Timeout),
	}
	if cfg.Token != "" {
		opts = append(opts, nats.Token(cfg.Token))
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		nb.degraded = true
		nb.logger.Warn().Err(err).Str("url", cfg.URL).Msg("nats unreachable, events stay in-process")
		return nb
	}

	nb.conn = conn
	nb.logger.Info().Str("url", cfg.URL).Msg("nats event bus initialized")
	return nb
}

func subjectFor(eventType events.EventType) string {
	return subjectPrefix + string(eventType)
}

// Subscribe registers a local subscriber and ensures the matching subject
// subscription exists.
func (nb *NATSBus) Subscribe(eventType events.EventType) events.Subscriber {
	sub := nb.local.Subscribe(eventType)

	nb.mu.Lock()
	defer nb.mu.Unlock()
	if nb.degraded {
		return sub
	}

	if _, exists := nb.subs[eventType]; !exists {
		natsSub, err := nb.conn.Subscribe(subjectFor(eventType), func(m *nats.Msg) {
			nb.deliver(eventType, m.Data)
		})
		if err != nil {
			nb.logger.Error().Err(err).Str("subject", subjectFor(eventType)).Msg("nats subscribe failed")
			return sub
		}
		nb.subs[eventType] = natsSub
	}
	return sub
}

func (nb *NATSBus) deliver(eventType events.EventType, data []byte) {
	msg, err := unmarshalNATSMessage(data)
	if err != nil {
		nb.logger.Error().Err(err).Msg("bad nats event payload")
		return
	}
	if msg.NodeID == nb.nodeID {
		return
	}
	nb.local.Publish(eventType, msg.Payload)
}

// Publish delivers locally and mirrors the event to the NATS subject.
func (nb *NATSBus) Publish(eventType events.EventType, payload events.Payload) {
	nb.local.Publish(eventType, payload)

	nb.mu.Lock()
	degraded := nb.degraded
	nb.mu.Unlock()
	if degraded {
		return
	}

	data, err := marshalNATSMessage(eventType, payload, nb.nodeID)
	if err != nil {
		nb.logger.Error().Err(err).Msg("marshal nats event")
		return
	}
	if err := nb.conn.Publish(subjectFor(eventType), data); err != nil {
		nb.logger.Error().Err(err).Str("subject", subjectFor(eventType)).Msg("publish to nats failed")
	}
}

// Unsubscribe removes a local subscriber. Subject subscriptions stay open
// for the life of the bus; Close tears them down.
func (nb *NATSBus) Unsubscribe(eventType events.EventType, sub events.Subscriber) {
	nb.local.Unsubscribe(eventType, sub)
}

// Close drains the connection so in-flight events flush before shutdown.
func (nb *NATSBus) Close() error {
	nb.mu.Lock()
	defer nb.mu.Unlock()

	if nb.conn == nil {
		return nil
	}

	for _, sub := range nb.subs {
		sub.Unsubscribe()
	}
	nb.subs = make(map[events.EventType]*nats.Subscription)

	if err := nb.conn.Drain(); err != nil {
		nb.conn.Close()
		return fmt.Errorf("drain nats connection: %w", err)
	}
	return nil
}

// natsMessage is the wire format for mirrored events.
type natsMessage struct {
	EventType events.EventType `json:"event_type"`
	Payload   events.Payload   `json:"payload"`
	Timestamp time.Time        `json:"timestamp"`
	NodeID    string           `json:"node_id"`
	MessageID string           `json:"message_id"` // For deduplication
}

func marshalNATSMessage(eventType events.EventType, payload events.Payload, nodeID string) ([]byte, error) {
	msg := natsMessage{
		EventType: eventType,
		Payload:   payload,
		Timestamp: time.Now(),
		NodeID:    nodeID,
		MessageID: uuid.NewString(),
	}
	return json.Marshal(msg)
}

func unmarshalNATSMessage(data []byte) (*natsMessage, error) {
	var msg natsMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("unmarshal nats message: %w", err)
	}
	return &msg, nil
}
