package ws

import (
	"time"

	"github.com/nortavo/dispatch/internal/domain"
)

// Frame is the unit sent to clients. Data on an "update" frame is always
// the full entity snapshot; clients render the most recently received frame
// and never merge against older state, since events for one entity can
// arrive out of order across broker partitions.
type Frame struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// Command is the unit received from clients.
type Command struct {
	Type     string            `json:"type"`
	Kind     domain.EntityKind `json:"kind"`
	EntityID string            `json:"entityId"`
}

type PresencePayload struct {
	UserID    string `json:"userId"`
	Timestamp string `json:"timestamp"`
}

type ErrorPayload struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

func NewUpdate(roomKey string, snapshot any) *Frame {
	return &Frame{
		Type:   FrameUpdate,
		RoomID: roomKey,
		Data:   snapshot,
	}
}

func NewMemberJoined(roomKey, userID string) *Frame {
	return &Frame{
		Type:   FrameMemberJoined,
		RoomID: roomKey,
		Data: PresencePayload{
			UserID:    userID,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	}
}

func NewMemberLeft(roomKey, userID string) *Frame {
	return &Frame{
		Type:   FrameMemberLeft,
		RoomID: roomKey,
		Data: PresencePayload{
			UserID:    userID,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	}
}

func NewError(roomKey, message string) *Frame {
	return &Frame{
		Type:   ErrorEvent,
		RoomID: roomKey,
		Data: ErrorPayload{
			Message: message,
		},
	}
}

func NewAuthError(message string) *Frame {
	return &Frame{
		Type: AuthenticationError,
		Data: ErrorPayload{
			Code:    "AUTH_FAILED",
			Message: message,
		},
	}
}

func NewJoinFailed(roomKey, reason string) *Frame {
	return &Frame{
		Type:   JoinFailed,
		RoomID: roomKey,
		Data: ErrorPayload{
			Code:    "JOIN_FAILED",
			Message: reason,
		},
	}
}
