package events

import (
	"context"

	"github.com/nortavo/dispatch/internal/domain"
	"github.com/nortavo/dispatch/internal/infrastructure/logging"
	"github.com/nortavo/dispatch/internal/infrastructure/messaging"
	"github.com/nortavo/dispatch/internal/infrastructure/metrics"
	"github.com/nortavo/dispatch/internal/infrastructure/ws"
	"github.com/rabbitmq/amqp091-go"
)

type roomBroadcaster interface {
	Deliver(roomKey string, frame *ws.Frame) int
}

// Consumer attaches once, at process start, to all domain topics through
// the shared updates queue, and routes each decoded event to the room for
// its entity.
type Consumer struct {
	rabbitmq *messaging.RabbitMQ
	hub      roomBroadcaster
	logger   logging.Logger
}

func NewConsumer(rabbitmq *messaging.RabbitMQ, hub roomBroadcaster, logger logging.Logger) *Consumer {
	return &Consumer{
		rabbitmq: rabbitmq,
		hub:      hub,
		logger:   logger,
	}
}

// Listen binds the updates queue to every topic in the table and blocks
// consuming it.
func (c *Consumer) Listen() error {
	if err := c.rabbitmq.DeclareAndBindQueue(messaging.UpdatesQueue, domain.AllTopics()); err != nil {
		return err
	}

	return c.rabbitmq.ConsumeMessages(messaging.UpdatesQueue, c.handle)
}

// handle processes one delivery. A message that cannot be decoded is
// rejected to the dead letter exchange and counted; the error return never
// stops the consume loop, so one malformed message cannot halt ingestion of
// the ones behind it.
func (c *Consumer) handle(_ context.Context, msg amqp091.Delivery) error {
	envelope, err := domain.DecodeEnvelope(msg.RoutingKey, msg.Body)
	if err != nil {
		metrics.MalformedMessages.WithLabelValues(msg.RoutingKey).Inc()
		c.logger.Error(logging.RabbitMQ, logging.Consume, "dropping undecodable message", map[logging.ExtraKey]any{
			logging.Topic:        msg.RoutingKey,
			logging.ErrorMessage: err.Error(),
		})
		return err
	}

	roomKey := envelope.RoomKey()
	delivered := c.hub.Deliver(roomKey, ws.NewUpdate(roomKey, envelope.Payload))

	metrics.EventsConsumed.WithLabelValues(msg.RoutingKey).Inc()
	c.logger.Debug(logging.RabbitMQ, logging.Consume, "event routed", map[logging.ExtraKey]any{
		logging.Topic:    msg.RoutingKey,
		logging.RoomID:   roomKey,
		logging.EntityID: envelope.EntityID,
		"Recipients":     delivered,
	})

	return nil
}
