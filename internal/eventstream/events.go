// Harmonium - Music Library Analytics and Recommendations
// Copyright 2026 Harmonium Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/harmonium-app/harmonium

// Package eventstream carries play events from the HTTP layer to the
// database through a Watermill pubsub channel. Publishing is protected
// by a circuit breaker so a wedged transport fails fast instead of
// stalling request handlers.
package eventstream

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// PlaybackEvent is the wire envelope for a single play.
type PlaybackEvent struct {
	// EventID uniquely identifies this event for deduplication.
	EventID string `json:"event_id"`

	// SongID is the library song that was played.
	SongID int64 `json:"song_id"`

	// PlayedAt is when playback happened, UTC.
	PlayedAt time.Time `json:"played_at"`

	// Source names the producer, e.g. "api".
	Source string `json:"source,omitempty"`
}

// NewPlaybackEvent builds an event with a fresh UUID. A zero playedAt
// is stamped with the current time.
func NewPlaybackEvent(songID int64, playedAt time.Time, source string) *PlaybackEvent {
	if playedAt.IsZero() {
		playedAt = time.Now().UTC()
	}
	return &PlaybackEvent{
		EventID:  uuid.New().String(),
		SongID:   songID,
		PlayedAt: playedAt.UTC(),
		Source:   source,
	}
}

// Validate checks the event for fields that would make it unprocessable.
func (e *PlaybackEvent) Validate() error {
	if e.EventID == "" {
		return fmt.Errorf("event_id is required")
	}
	if e.SongID <= 0 {
		return fmt.Errorf("song_id must be positive, got %d", e.SongID)
	}
	if e.PlayedAt.IsZero() {
		return fmt.Errorf("played_at is required")
	}
	return nil
}

// SerializeEvent encodes an event for transport.
func SerializeEvent(e *PlaybackEvent) ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("serialize event %s: %w", e.EventID, err)
	}
	return data, nil
}

// DeserializeEvent decodes an event from its wire form.
func DeserializeEvent(data []byte) (*PlaybackEvent, error) {
	var e PlaybackEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("deserialize event: %w", err)
	}
	return &e, nil
}
