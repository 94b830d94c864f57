package ws

import (
	"sync"
	"time"

	"github.com/nortavo/dispatch/internal/infrastructure/logging"
	"github.com/nortavo/dispatch/internal/infrastructure/metrics"
)

const (
	DefaultSendBuffer   = 64
	DefaultWriteTimeout = 10 * time.Second
)

type Options struct {
	// SendBuffer is the per-connection frame buffer; overflow drops frames
	// for that connection only.
	SendBuffer int
	// WriteTimeout bounds each network write.
	WriteTimeout time.Duration
}

// Hub is the room broadcaster: a registry from room key to the connections
// currently watching that entity. Membership changes and deliveries arrive
// from independent goroutines (the gateway and the broker consumer); the
// registry mutex is only ever held for map operations, never across a
// network write.
type Hub struct {
	mu          sync.RWMutex
	rooms       map[string]map[string]*Client  // room key -> connection id -> client
	memberships map[string]map[string]struct{} // connection id -> room keys
	clients     map[string]*Client

	sendBuffer   int
	writeTimeout time.Duration

	logger logging.Logger
}

func NewHub(opts Options, logger logging.Logger) *Hub {
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = DefaultSendBuffer
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = DefaultWriteTimeout
	}

	return &Hub{
		rooms:        make(map[string]map[string]*Client),
		memberships:  make(map[string]map[string]struct{}),
		clients:      make(map[string]*Client),
		sendBuffer:   opts.SendBuffer,
		writeTimeout: opts.WriteTimeout,
		logger:       logger,
	}
}

// Register makes an authenticated connection known to the hub. It belongs
// to no room until it joins one.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c.ID] = c
	h.mu.Unlock()

	metrics.OpenConnections.Inc()
}

// Unregister strips the connection from every room it is in, then closes
// it. The removal completes before this returns, so a later Deliver can
// never reference the connection. Safe to call more than once.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()

	if _, ok := h.clients[c.ID]; !ok {
		h.mu.Unlock()
		c.Close()
		return
	}

	left := make([]string, 0, len(h.memberships[c.ID]))
	for roomKey := range h.memberships[c.ID] {
		h.removeFromRoom(c, roomKey)
		left = append(left, roomKey)
	}

	delete(h.memberships, c.ID)
	delete(h.clients, c.ID)
	metrics.ActiveRooms.Set(float64(len(h.rooms)))
	h.mu.Unlock()

	metrics.OpenConnections.Dec()
	c.Close()

	for _, roomKey := range left {
		h.Deliver(roomKey, NewMemberLeft(roomKey, c.UserID))
	}

	h.logger.Info(logging.WebSocket, logging.Disconnect, "connection closed", map[logging.ExtraKey]any{
		logging.ConnectionID: c.ID,
	})
}

// Join adds the connection to a room, creating the room on first use, and
// announces the join to everyone already there (including the joiner).
func (h *Hub) Join(c *Client, roomKey string) bool {
	h.mu.Lock()

	if _, ok := h.clients[c.ID]; !ok {
		// Connection already closed; it must not reappear in any room.
		h.mu.Unlock()
		return false
	}

	room, ok := h.rooms[roomKey]
	if !ok {
		room = make(map[string]*Client)
		h.rooms[roomKey] = room
	}
	room[c.ID] = c

	if h.memberships[c.ID] == nil {
		h.memberships[c.ID] = make(map[string]struct{})
	}
	h.memberships[c.ID][roomKey] = struct{}{}
	metrics.ActiveRooms.Set(float64(len(h.rooms)))
	h.mu.Unlock()

	h.logger.Debug(logging.WebSocket, logging.RoomJoin, "joined room", map[logging.ExtraKey]any{
		logging.ConnectionID: c.ID,
		logging.RoomID:       roomKey,
	})

	h.Deliver(roomKey, NewMemberJoined(roomKey, c.UserID))
	return true
}

func (h *Hub) Leave(c *Client, roomKey string) {
	h.mu.Lock()
	if _, ok := h.memberships[c.ID][roomKey]; !ok {
		h.mu.Unlock()
		return
	}

	h.removeFromRoom(c, roomKey)
	delete(h.memberships[c.ID], roomKey)
	metrics.ActiveRooms.Set(float64(len(h.rooms)))
	h.mu.Unlock()

	h.Deliver(roomKey, NewMemberLeft(roomKey, c.UserID))
}

// removeFromRoom must be called with h.mu held.
func (h *Hub) removeFromRoom(c *Client, roomKey string) {
	room, ok := h.rooms[roomKey]
	if !ok {
		return
	}

	delete(room, c.ID)
	if len(room) == 0 {
		delete(h.rooms, roomKey)
	}
}

// Deliver sends the frame to every connection in the room, independently
// and best-effort: a member mid-close or with a full buffer is skipped.
// Membership is snapshotted once at the start of the call. Returns the
// number of connections the frame was enqueued for.
func (h *Hub) Deliver(roomKey string, frame *Frame) int {
	h.mu.RLock()
	room := h.rooms[roomKey]
	members := make([]*Client, 0, len(room))
	for _, c := range room {
		members = append(members, c)
	}
	h.mu.RUnlock()

	delivered := 0
	for _, c := range members {
		if c.trySend(frame) {
			delivered++
		}
	}

	return delivered
}

// RoomSize reports current membership; zero for rooms that do not exist.
func (h *Hub) RoomSize(roomKey string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomKey])
}

func (h *Hub) Connections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
