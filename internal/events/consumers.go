package events

import (
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/serroba/shortify/internal/messaging"
	"go.uber.org/zap"
)

// NewConsumers builds one consumer per audit topic, all writing to store.
func NewConsumers(subscriber message.Subscriber, store Store, logger *zap.Logger) []messaging.Runnable {
	return []messaging.Runnable{
		messaging.NewConsumer(subscriber, TopicLinkCreated, store.SaveLinkCreated, logger),
		messaging.NewConsumer(subscriber, TopicAccountRegistered, store.SaveAccountRegistered, logger),
	}
}
