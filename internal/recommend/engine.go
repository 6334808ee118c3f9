// Harmonium - Music Library Analytics and Recommendations
// Copyright 2026 Harmonium Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/harmonium-app/harmonium

package recommend

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/harmonium-app/harmonium/internal/logging"
)

// Engine is the recommendation engine. It holds no per-request state; all
// operations are safe for concurrent use. The jitter source is guarded by a
// mutex since *rand.Rand is not goroutine-safe.
type Engine struct {
	store  Store
	config Config
	logger zerolog.Logger

	rngMu sync.Mutex
	rng   *rand.Rand

	now func() time.Time
}

// Option customizes engine construction.
type Option func(*Engine)

// WithLogger sets the engine logger. Defaults to the global logger with a
// component field.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithRandSource replaces the jitter source. Tests pass a fixed seed so
// shuffle orderings are reproducible.
func WithRandSource(src rand.Source) Option {
	return func(e *Engine) { e.rng = rand.New(src) }
}

// WithClock replaces the time source used for recency calculations.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New creates an engine over the given store.
func New(store Store, cfg Config, opts ...Option) (*Engine, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}

	e := &Engine{
		store:  store,
		config: cfg,
		logger: logging.WithComponent("recommend"),
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() Config {
	return e.config
}

// jitter returns a uniform random value in [-j, j] where j is the
// configured shuffle jitter.
func (e *Engine) jitter() float64 {
	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	return (e.rng.Float64()*2 - 1) * e.config.ShuffleJitter
}

// daysAgo computes the calendar-date difference between playedAt and now
// in UTC. Both timestamps are truncated to midnight before differencing,
// so two plays on the same calendar day receive identical decay weight
// regardless of the time of day on either side. Future timestamps clamp
// to zero.
func (e *Engine) daysAgo(playedAt time.Time) int {
	d := int(startOfDayUTC(e.now()).Sub(startOfDayUTC(playedAt)).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}

// startOfDayUTC truncates a timestamp to midnight UTC.
func startOfDayUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
