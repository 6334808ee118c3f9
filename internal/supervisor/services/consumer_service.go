// Harmonium - Music Library Analytics and Recommendations
// Copyright 2026 Harmonium Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/harmonium-app/harmonium

package services

import (
	"context"
	"fmt"
)

// EventConsumer matches the play event consumer's lifecycle methods.
type EventConsumer interface {
	Start(ctx context.Context) error
	Stop()
}

// ConsumerService wraps the play event consumer as a supervised
// service. The consumer runs its own goroutine; Serve blocks on the
// context and stops the consumer when canceled so suture can restart
// it cleanly after failures.
type ConsumerService struct {
	consumer EventConsumer
	name     string
}

// NewConsumerService creates a consumer service wrapper.
func NewConsumerService(consumer EventConsumer) *ConsumerService {
	return &ConsumerService{
		consumer: consumer,
		name:     "event-consumer",
	}
}

// Serve implements suture.Service.
func (c *ConsumerService) Serve(ctx context.Context) error {
	if err := c.consumer.Start(ctx); err != nil {
		return fmt.Errorf("start event consumer: %w", err)
	}

	<-ctx.Done()
	c.consumer.Stop()
	return ctx.Err()
}

// String identifies the service in suture log messages.
func (c *ConsumerService) String() string {
	return c.name
}
