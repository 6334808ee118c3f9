// Harmonium - Music Library Analytics and Recommendations
// Copyright 2026 Harmonium Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/harmonium-app/harmonium

package eventstream

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/harmonium-app/harmonium/internal/config"
	"github.com/harmonium-app/harmonium/internal/logging"
	"github.com/harmonium-app/harmonium/internal/metrics"
	"github.com/harmonium-app/harmonium/internal/models"
)

// MessageSource is the subscription side of the transport.
type MessageSource interface {
	Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error)
}

// HistorySink persists consumed play events.
type HistorySink interface {
	InsertPlayEvent(ctx context.Context, songID int64, playedAt time.Time) (*models.PlayEvent, error)
}

// ConsumerStats holds runtime statistics for monitoring.
type ConsumerStats struct {
	MessagesReceived  int64
	MessagesPersisted int64
	ParseErrors       int64
	DuplicatesSkipped int64
	LastMessageTime   time.Time
}

// Consumer reads playback events off the transport and writes them to
// the play history. Events are deduplicated by EventID within a TTL
// window; malformed payloads are acked and dropped so they cannot wedge
// the stream.
type Consumer struct {
	source MessageSource
	sink   HistorySink
	topic  string

	dedupTTL time.Duration
	dedupMu  sync.Mutex
	seen     map[string]time.Time

	running atomic.Bool
	stopCh  chan struct{}
	doneCh  chan struct{}

	messagesReceived  atomic.Int64
	messagesPersisted atomic.Int64
	parseErrors       atomic.Int64
	duplicatesSkipped atomic.Int64
	lastMessageTime   atomic.Value // time.Time
}

// NewConsumer creates a consumer bound to the configured topic.
func NewConsumer(source MessageSource, sink HistorySink, cfg config.EventsConfig) (*Consumer, error) {
	if source == nil {
		return nil, fmt.Errorf("message source required")
	}
	if sink == nil {
		return nil, fmt.Errorf("history sink required")
	}

	dedupTTL := cfg.DedupTTL
	if dedupTTL <= 0 {
		dedupTTL = time.Hour
	}

	c := &Consumer{
		source:   source,
		sink:     sink,
		topic:    cfg.Topic,
		dedupTTL: dedupTTL,
		seen:     make(map[string]time.Time),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	c.lastMessageTime.Store(time.Time{})

	return c, nil
}

// Start begins consuming. Returns immediately; consumption happens in
// a goroutine.
func (c *Consumer) Start(ctx context.Context) error {
	if c.running.Swap(true) {
		return nil
	}

	messages, err := c.source.Subscribe(ctx, c.topic)
	if err != nil {
		c.running.Store(false)
		return fmt.Errorf("subscribe to %s: %w", c.topic, err)
	}

	go c.consumeLoop(ctx, messages)

	logging.Info().
		Str("topic", c.topic).
		Dur("dedup_ttl", c.dedupTTL).
		Msg("Play event consumer started")
	return nil
}

// Stop gracefully stops the consumer, draining buffered messages.
func (c *Consumer) Stop() {
	if !c.running.Swap(false) {
		return
	}

	close(c.stopCh)
	<-c.doneCh

	logging.Info().Msg("Play event consumer stopped")
}

// IsRunning reports whether the consume loop is active.
func (c *Consumer) IsRunning() bool {
	return c.running.Load()
}

// Stats returns current runtime statistics.
func (c *Consumer) Stats() ConsumerStats {
	var lastTime time.Time
	if t, ok := c.lastMessageTime.Load().(time.Time); ok {
		lastTime = t
	}
	return ConsumerStats{
		MessagesReceived:  c.messagesReceived.Load(),
		MessagesPersisted: c.messagesPersisted.Load(),
		ParseErrors:       c.parseErrors.Load(),
		DuplicatesSkipped: c.duplicatesSkipped.Load(),
		LastMessageTime:   lastTime,
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, messages <-chan *message.Message) {
	defer func() {
		c.running.Store(false)
		close(c.doneCh)
	}()

	for {
		select {
		case <-ctx.Done():
			c.drainMessages(messages)
			return
		case <-c.stopCh:
			c.drainMessages(messages)
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			c.processMessage(ctx, msg)
		}
	}
}

// drainMessages processes buffered messages before shutdown so events
// accepted by the API are not lost. A short timeout bounds the drain if
// the channel keeps receiving.
func (c *Consumer) drainMessages(messages <-chan *message.Message) {
	drainTimeout := time.After(100 * time.Millisecond)
	drained := 0

	for {
		select {
		case <-drainTimeout:
			c.logDrained(drained)
			return
		case msg, ok := <-messages:
			if !ok {
				c.logDrained(drained)
				return
			}
			// Original context is canceled at this point.
			c.processMessage(context.Background(), msg)
			drained++
		default:
			c.logDrained(drained)
			return
		}
	}
}

func (c *Consumer) logDrained(count int) {
	if count > 0 {
		logging.Info().Int("count", count).Msg("Play event consumer drained messages during shutdown")
	}
}

func (c *Consumer) processMessage(ctx context.Context, msg *message.Message) {
	c.messagesReceived.Add(1)
	c.lastMessageTime.Store(time.Now())
	metrics.EventsConsumed.Inc()

	event, err := DeserializeEvent(msg.Payload)
	if err == nil {
		err = event.Validate()
	}
	if err != nil {
		c.parseErrors.Add(1)
		metrics.EventParseFailures.Inc()
		logging.Warn().
			Str("message_uuid", msg.UUID).
			Err(err).
			Msg("Dropping malformed play event")
		// Ack to prevent redelivery of malformed messages.
		msg.Ack()
		return
	}

	if c.isDuplicate(event.EventID) {
		c.duplicatesSkipped.Add(1)
		metrics.EventsDeduplicated.Inc()
		msg.Ack()
		return
	}

	if _, err := c.sink.InsertPlayEvent(ctx, event.SongID, event.PlayedAt); err != nil {
		logging.Warn().
			Str("event_id", event.EventID).
			Int64("song_id", event.SongID).
			Err(err).
			Msg("Failed to persist play event")
		msg.Nack()
		return
	}

	c.recordSeen(event.EventID)
	c.messagesPersisted.Add(1)
	metrics.EventsPersisted.Inc()
	msg.Ack()
}

// isDuplicate reports whether the event ID was persisted within the
// dedup window. Expired entries are pruned inline; the map stays small
// at the event rates a single library produces.
func (c *Consumer) isDuplicate(eventID string) bool {
	c.dedupMu.Lock()
	defer c.dedupMu.Unlock()

	now := time.Now()
	for id, at := range c.seen {
		if now.Sub(at) > c.dedupTTL {
			delete(c.seen, id)
		}
	}

	_, ok := c.seen[eventID]
	return ok
}

func (c *Consumer) recordSeen(eventID string) {
	c.dedupMu.Lock()
	defer c.dedupMu.Unlock()
	c.seen[eventID] = time.Now()
}
