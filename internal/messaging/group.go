package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.uber.org/zap"
)

// ErrDuplicateTopic is returned by ConsumerGroup.Add when a topic already has a consumer.
var ErrDuplicateTopic = errors.New("topic already has a consumer")

// Runnable is a consumer bound to one topic.
type Runnable interface {
	Topic() string
	Start(ctx context.Context) error
	Shutdown() error
}

// ConsumerGroup runs one consumer per topic over a shared subscriber.
// Only consumers that started are shut down.
type ConsumerGroup struct {
	mu         sync.Mutex
	consumers  []Runnable
	started    []Runnable
	subscriber message.Subscriber
	logger     *zap.Logger
}

func NewConsumerGroup(subscriber message.Subscriber, logger *zap.Logger) *ConsumerGroup {
	return &ConsumerGroup{
		subscriber: subscriber,
		logger:     logger,
	}
}

// Add registers consumers. Each topic may be consumed once.
func (g *ConsumerGroup) Add(consumers ...Runnable) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, c := range consumers {
		for _, existing := range g.consumers {
			if existing.Topic() == c.Topic() {
				return fmt.Errorf("%w: %s", ErrDuplicateTopic, c.Topic())
			}
		}

		g.consumers = append(g.consumers, c)
	}

	return nil
}

// Topics lists the consumed topics in registration order.
func (g *ConsumerGroup) Topics() []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	return topicsOf(g.consumers)
}

// Start starts every consumer. On failure the ones already running are stopped again.
func (g *ConsumerGroup) Start(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, c := range g.consumers {
		if err := c.Start(ctx); err != nil {
			g.stopStarted()

			return fmt.Errorf("start consumer for %s: %w", c.Topic(), err)
		}

		g.started = append(g.started, c)
		g.logger.Debug("consumer started", zap.String("topic", c.Topic()))
	}

	g.logger.Info("consumer group started", zap.Strings("topics", topicsOf(g.started)))

	return nil
}

// Shutdown stops the running consumers, newest first, then closes the subscriber.
func (g *ConsumerGroup) Shutdown() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.logger.Info("shutting down consumer group", zap.Strings("topics", topicsOf(g.started)))

	err := g.stopStarted()

	return errors.Join(err, g.subscriber.Close())
}

func (g *ConsumerGroup) stopStarted() error {
	var errs []error

	for i := len(g.started) - 1; i >= 0; i-- {
		c := g.started[i]
		if err := c.Shutdown(); err != nil {
			g.logger.Error("consumer shutdown failed", zap.String("topic", c.Topic()), zap.Error(err))
			errs = append(errs, fmt.Errorf("stop consumer for %s: %w", c.Topic(), err))
		}
	}

	g.started = nil

	return errors.Join(errs...)
}

func topicsOf(consumers []Runnable) []string {
	topics := make([]string, 0, len(consumers))
	for _, c := range consumers {
		topics = append(topics, c.Topic())
	}

	return topics
}
