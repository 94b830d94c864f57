package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nortavo/dispatch/internal/domain"
	"github.com/nortavo/dispatch/internal/infrastructure/logging"
	"github.com/nortavo/dispatch/internal/infrastructure/metrics"
)

type messageBroker interface {
	PublishMessage(ctx context.Context, routingKey string, body []byte) error
}

// Publisher hands entity snapshots to the broker after a mutation commits.
// A failed submission is reported to the caller for logging, but the store
// write it follows is final either way; real-time notification is
// best-effort.
type Publisher struct {
	broker messageBroker
	logger logging.Logger
}

func NewPublisher(broker messageBroker, logger logging.Logger) *Publisher {
	return &Publisher{
		broker: broker,
		logger: logger,
	}
}

// Publish resolves the topic for (kind, event), serializes the snapshot and
// submits it. The snapshot must be the full post-mutation state of the
// entity identified by entityID.
func (p *Publisher) Publish(ctx context.Context, kind domain.EntityKind, event domain.EventType, entityID string, snapshot any) error {
	topic, err := domain.Topic(kind, event)
	if err != nil {
		return err
	}

	body, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode %s snapshot: %w", topic, err)
	}

	if err := p.broker.PublishMessage(ctx, topic, body); err != nil {
		metrics.PublishFailures.WithLabelValues(topic).Inc()
		return err
	}

	metrics.EventsPublished.WithLabelValues(topic).Inc()
	p.logger.Debug(logging.RabbitMQ, logging.Publish, "event published", map[logging.ExtraKey]any{
		logging.Topic:    topic,
		logging.EntityID: entityID,
	})

	return nil
}
