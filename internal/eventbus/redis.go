/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package eventbus fans catalog lifecycle events out between instances.
// The Redis bus mirrors events over pub/sub channels, the NATS bus over
// vidartv.events.* subjects. Both keep delivering in-process when the
// broker is unreachable.
package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/friendsincode/vidar_tv/internal/events"
)

// RedisBus mirrors bus events over Redis pub/sub. Local delivery always
// goes through the embedded in-process bus; Redis carries the copies for
// other instances. Messages published by this node are skipped on receive
// so nothing is delivered twice.
type RedisBus struct {
	client *redis.Client
	logger zerolog.Logger
	local  *events.Bus
	nodeID string

	mu       sync.Mutex
	counts   map[events.EventType]int
	channels map[events.EventType]*redis.PubSub

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// Circuit breaker state
	degraded  bool
	failCount int
	maxFails  int
	lastCheck time.Time
}

// RedisConfig contains Redis connection configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int

	// Connection pooling
	PoolSize     int
	MinIdleConns int

	// Timeouts
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Circuit breaker
	MaxFailures   int
	CheckInterval time.Duration
}

// DefaultRedisConfig returns default Redis configuration.
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:          "localhost:6379",
		PoolSize:      10,
		MinIdleConns:  2,
		DialTimeout:   5 * time.Second,
		ReadTimeout:   3 * time.Second,
		WriteTimeout:  3 * time.Second,
		MaxFailures:   5,
		CheckInterval: 30 * time.Second,
	}
}

// NewRedisBus creates a Redis-backed event bus. When Redis is unreachable
// the bus starts degraded: events still flow in-process and TryReconnect
// can restore mirroring later.
func NewRedisBus(cfg RedisConfig, nodeID string, logger zerolog.Logger) *RedisBus {
	ctx, cancel := context.WithCancel(context.Background())

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	rb := &RedisBus{
		client:   client,
		logger:   logger.With().Str("component", "eventbus").Logger(),
		local:    events.NewBus(),
		nodeID:   nodeID,
		counts:   make(map[events.EventType]int),
		channels: make(map[events.EventType]*redis.PubSub),
		ctx:      ctx,
		cancel:   cancel,
		maxFails: cfg.MaxFailures,
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		rb.degraded = true
		rb.lastCheck = time.Now()
		rb.logger.Warn().Err(err).Msg("redis unreachable, events stay in-process")
	} else {
		rb.logger.Info().Str("addr", cfg.Addr).Msg("redis event bus initialized")
	}

	return rb
}

// Subscribe registers a local subscriber and ensures the matching Redis
// channel subscription exists.
func (rb *RedisBus) Subscribe(eventType events.EventType) events.Subscriber {
	sub := rb.local.Subscribe(eventType)

	rb.mu.Lock()
	defer rb.mu.Unlock()
	rb.counts[eventType]++
	if !rb.degraded {
		rb.ensureChannelLocked(eventType)
	}
	return sub
}

func (rb *RedisBus) ensureChannelLocked(eventType events.EventType) {
	if _, exists := rb.channels[eventType]; exists {
		return
	}
	pubsub := rb.client.Subscribe(rb.ctx, string(eventType))
	rb.channels[eventType] = pubsub

	rb.wg.Add(1)
	go rb.receive(eventType, pubsub)
}

// receive pumps one Redis channel into the local bus.
func (rb *RedisBus) receive(eventType events.EventType, pubsub *redis.PubSub) {
	defer rb.wg.Done()

	ch := pubsub.Channel()
	for {
		select {
		case <-rb.ctx.Done():
			return

		case msg, ok := <-ch:
			if !ok {
				rb.logger.Warn().Str("event_type", string(eventType)).Msg("redis channel closed")
				rb.handleFailure()
				return
			}

			remote, err := unmarshalMessage([]byte(msg.Payload))
			if err != nil {
				rb.logger.Error().Err(err).Msg("bad redis event payload")
				continue
			}
			if remote.NodeID == rb.nodeID {
				continue
			}

			rb.local.Publish(eventType, remote.Payload)
		}
	}
}

// Publish delivers locally and mirrors the event to Redis.
func (rb *RedisBus) Publish(eventType events.EventType, payload events.Payload) {
	rb.local.Publish(eventType, payload)

	rb.mu.Lock()
	degraded := rb.degraded
	rb.mu.Unlock()
	if degraded {
		return
	}

	data, err := marshalMessage(eventType, payload, rb.nodeID)
	if err != nil {
		rb.logger.Error().Err(err).Msg("marshal redis event")
		return
	}

	ctx, cancel := context.WithTimeout(rb.ctx, 2*time.Second)
	defer cancel()
	if err := rb.client.Publish(ctx, string(eventType), data).Err(); err != nil {
		rb.logger.Error().Err(err).Str("event_type", string(eventType)).Msg("publish to redis failed")
		rb.handleFailure()
		return
	}

	rb.mu.Lock()
	rb.failCount = 0
	rb.mu.Unlock()
}

// Unsubscribe removes a local subscriber and closes the Redis channel
// subscription once nobody listens for the type anymore.
func (rb *RedisBus) Unsubscribe(eventType events.EventType, sub events.Subscriber) {
	rb.local.Unsubscribe(eventType, sub)

	rb.mu.Lock()
	defer rb.mu.Unlock()
	if rb.counts[eventType] > 0 {
		rb.counts[eventType]--
	}
	if rb.counts[eventType] == 0 {
		if pubsub, exists := rb.channels[eventType]; exists {
			pubsub.Close()
			delete(rb.channels, eventType)
		}
	}
}

// handleFailure counts broker errors and trips the breaker at the
// threshold. The client stays open so TryReconnect can probe it.
func (rb *RedisBus) handleFailure() {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	rb.failCount++
	if rb.failCount >= rb.maxFails && !rb.degraded {
		rb.logger.Warn().
			Int("failures", rb.failCount).
			Msg("redis failure threshold reached, events stay in-process")

		rb.degraded = true
		rb.lastCheck = time.Now()
		for eventType, pubsub := range rb.channels {
			pubsub.Close()
			delete(rb.channels, eventType)
		}
	}
}

// TryReconnect probes Redis after the breaker has tripped and, on success,
// re-establishes the channel subscriptions existing subscribers expect.
// Call it periodically from a background worker.
func (rb *RedisBus) TryReconnect() error {
	rb.mu.Lock()
	if !rb.degraded {
		rb.mu.Unlock()
		return nil
	}
	if time.Since(rb.lastCheck) < 30*time.Second {
		rb.mu.Unlock()
		return fmt.Errorf("too soon to retry")
	}
	rb.lastCheck = time.Now()
	rb.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rb.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis still unavailable: %w", err)
	}

	rb.mu.Lock()
	rb.degraded = false
	rb.failCount = 0
	for eventType, n := range rb.counts {
		if n > 0 {
			rb.ensureChannelLocked(eventType)
		}
	}
	rb.mu.Unlock()

	rb.logger.Info().Msg("reconnected to redis, event mirroring resumed")
	return nil
}

// Close stops the receivers and closes the Redis connection.
func (rb *RedisBus) Close() error {
	rb.cancel()
	rb.wg.Wait()

	rb.mu.Lock()
	for _, pubsub := range rb.channels {
		pubsub.Close()
	}
	rb.channels = make(map[events.EventType]*redis.PubSub)
	rb.mu.Unlock()

	if err := rb.client.Close(); err != nil {
		return fmt.Errorf("close redis client: %w", err)
	}
	return nil
}

// redisMessage is the wire format for mirrored events.
type redisMessage struct {
	EventType events.EventType `json:"event_type"`
	Payload   events.Payload   `json:"payload"`
	Timestamp time.Time        `json:"timestamp"`
	NodeID    string           `json:"node_id"`
}

func marshalMessage(eventType events.EventType, payload events.Payload, nodeID string) ([]byte, error) {
	msg := redisMessage{
		EventType: eventType,
		Payload:   payload,
		Timestamp: time.Now(),
		NodeID:    nodeID,
	}
	return json.Marshal(msg)
}

func unmarshalMessage(data []byte) (*redisMessage, error) {
	var msg redisMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("unmarshal redis message: %w", err)
	}
	return &msg, nil
}
