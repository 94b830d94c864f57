package ws

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/nortavo/dispatch/internal/domain"
	"github.com/nortavo/dispatch/internal/infrastructure/logging"
	"github.com/nortavo/dispatch/internal/infrastructure/metrics"
)

const maxCommandBytes = 1024

// Client is one authenticated connection. The hub holds non-owning
// references to it through room membership; lifecycle is owned here and by
// the gateway handler that created it.
type Client struct {
	ID     string
	UserID string

	conn *connWrapper
	hub  *Hub

	send      chan *Frame
	done      chan struct{}
	closeOnce sync.Once

	logger logging.Logger
}

func NewClient(hub *Hub, conn *websocket.Conn, userID string) *Client {
	return &Client{
		ID:     uuid.NewString(),
		UserID: userID,
		conn:   newConnWrapper(conn),
		hub:    hub,
		send:   make(chan *Frame, hub.sendBuffer),
		done:   make(chan struct{}),
		logger: hub.logger,
	}
}

// ReadPump consumes commands until the transport drops, then detaches the
// client from every room before returning.
func (c *Client) ReadPump() {
	defer c.hub.Unregister(c)

	c.conn.conn.SetReadLimit(maxCommandBytes)

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Warn(logging.WebSocket, logging.Disconnect, "read error", map[logging.ExtraKey]any{
					logging.ConnectionID: c.ID,
					logging.ErrorMessage: err.Error(),
				})
			}
			return
		}

		var cmd Command
		if err := json.Unmarshal(raw, &cmd); err != nil {
			c.trySend(NewError("", "invalid command"))
			continue
		}

		c.handleCommand(&cmd)
	}
}

func (c *Client) handleCommand(cmd *Command) {
	switch cmd.Type {
	case CommandJoin:
		if !domain.ValidKind(cmd.Kind) || cmd.EntityID == "" {
			c.trySend(NewJoinFailed("", "a join command needs a known kind and an entityId"))
			return
		}
		// Rooms exist implicitly; joining one no event has touched yet is
		// fine.
		c.hub.Join(c, domain.RoomKey(cmd.Kind, cmd.EntityID))

	case CommandLeave:
		if !domain.ValidKind(cmd.Kind) || cmd.EntityID == "" {
			c.trySend(NewError("", "a leave command needs a known kind and an entityId"))
			return
		}
		c.hub.Leave(c, domain.RoomKey(cmd.Kind, cmd.EntityID))

	default:
		c.trySend(NewError("", "unknown command type: "+cmd.Type))
	}
}

// WritePump drains the send buffer onto the wire. Every write carries a
// deadline so a stalled peer cannot wedge the pump.
func (c *Client) WritePump() {
	defer c.Close()

	for {
		select {
		case <-c.done:
			return
		case frame := <-c.send:
			if err := c.conn.WriteJSON(frame, c.hub.writeTimeout); err != nil {
				c.logger.Warn(logging.WebSocket, logging.Disconnect, "write error", map[logging.ExtraKey]any{
					logging.ConnectionID: c.ID,
					logging.ErrorMessage: err.Error(),
				})
				return
			}
		}
	}
}

// Close is idempotent and safe to call concurrently with an in-flight
// delivery to this client.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

// trySend enqueues without blocking. A client mid-close or with a full
// buffer loses the frame; one slow connection never stalls delivery to the
// rest of its room.
func (c *Client) trySend(frame *Frame) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- frame:
		return true
	default:
		metrics.FramesDropped.Inc()
		c.logger.Warn(logging.WebSocket, logging.Broadcast, "send buffer full, dropping frame", map[logging.ExtraKey]any{
			logging.ConnectionID: c.ID,
			logging.RoomID:       frame.RoomID,
		})
		return false
	}
}
