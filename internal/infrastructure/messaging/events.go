package messaging

import "errors"

// ErrConnectionClosed is reported by health probes when the broker
// connection has gone away.
var ErrConnectionClosed = errors.New("rabbitmq connection closed")

const (
	// UpdatesQueue is the shared durable queue behind the four domain
	// topics. Because every instance consumes from the same queue, the set
	// of instances acts as one consumer group: each event is handed to
	// exactly one process, which then fans it out to its local rooms.
	UpdatesQueue    = "dispatch.updates"
	DeadLetterQueue = "dispatch.dead_letter"
)
