package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

var (
	ErrUnknownTopic  = errors.New("unknown topic")
	ErrUnknownKind   = errors.New("unknown entity kind")
	ErrMissingID     = errors.New("event payload has no entity id")
	ErrEmptyPayload  = errors.New("event payload is empty")
	ErrTopicTableGap = errors.New("topic table is missing an entry")
)

// EntityKind selects the routing table and the room namespace.
type EntityKind string

const (
	KindRide  EntityKind = "ride"
	KindOrder EntityKind = "order"
)

func ValidKind(kind EntityKind) bool {
	return kind == KindRide || kind == KindOrder
}

type EventType string

const (
	EventCreated EventType = "created"
	EventUpdated EventType = "updated"
)

// topicTable is the closed mapping from (kind, event) to a broker routing
// key. Ad hoc topic names are not supported; ValidateTopics runs at startup
// and fails the process if an entry is missing or duplicated.
var topicTable = map[EntityKind]map[EventType]string{
	KindRide: {
		EventCreated: "ride.created",
		EventUpdated: "ride.updated",
	},
	KindOrder: {
		EventCreated: "order.created",
		EventUpdated: "order.updated",
	},
}

func Topic(kind EntityKind, event EventType) (string, error) {
	events, ok := topicTable[kind]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	topic, ok := events[event]
	if !ok {
		return "", fmt.Errorf("%w: %s.%s", ErrUnknownTopic, kind, event)
	}

	return topic, nil
}

// ParseTopic inverts the topic table for the consumer side.
func ParseTopic(topic string) (EntityKind, EventType, error) {
	for kind, events := range topicTable {
		for event, name := range events {
			if name == topic {
				return kind, event, nil
			}
		}
	}

	return "", "", fmt.Errorf("%w: %q", ErrUnknownTopic, topic)
}

// AllTopics returns every routing key in the table, sorted so queue
// bindings are declared deterministically.
func AllTopics() []string {
	topics := make([]string, 0, 4)
	for _, events := range topicTable {
		for _, name := range events {
			topics = append(topics, name)
		}
	}

	sort.Strings(topics)
	return topics
}

// ValidateTopics checks the table exhaustively: every kind has an entry for
// every event type, and no routing key is reused.
func ValidateTopics() error {
	kinds := []EntityKind{KindRide, KindOrder}
	events := []EventType{EventCreated, EventUpdated}

	seen := make(map[string]struct{}, len(kinds)*len(events))

	for _, kind := range kinds {
		for _, event := range events {
			topic, err := Topic(kind, event)
			if err != nil {
				return fmt.Errorf("%w: %s.%s", ErrTopicTableGap, kind, event)
			}
			if _, dup := seen[topic]; dup {
				return fmt.Errorf("duplicate routing key %q in topic table", topic)
			}
			seen[topic] = struct{}{}
		}
	}

	return nil
}

// RoomKey namespaces room identifiers per entity kind so ride and order
// rooms never collide even when the underlying ids are reused across kinds.
func RoomKey(kind EntityKind, entityID string) string {
	return string(kind) + ":" + entityID
}

// Envelope is one domain event as it travels from a mutation to the rooms
// watching the entity. Payload is always the full post-mutation snapshot,
// never a diff; receivers replace whole state rather than merge.
type Envelope struct {
	Kind     EntityKind      `json:"kind"`
	Type     EventType       `json:"type"`
	EntityID string          `json:"entityId"`
	Payload  json.RawMessage `json:"payload"`
}

func (e *Envelope) RoomKey() string {
	return RoomKey(e.Kind, e.EntityID)
}

// DecodeEnvelope rebuilds an Envelope from a broker delivery: the kind and
// event type travel in the routing key, the entity id inside the snapshot.
func DecodeEnvelope(topic string, body []byte) (*Envelope, error) {
	kind, event, err := ParseTopic(topic)
	if err != nil {
		return nil, err
	}

	if len(body) == 0 {
		return nil, ErrEmptyPayload
	}

	var snapshot struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &snapshot); err != nil {
		return nil, fmt.Errorf("malformed event payload on %q: %w", topic, err)
	}
	if snapshot.ID == "" {
		return nil, ErrMissingID
	}

	return &Envelope{
		Kind:     kind,
		Type:     event,
		EntityID: snapshot.ID,
		Payload:  json.RawMessage(body),
	}, nil
}
