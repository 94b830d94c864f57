package ws

import (
	"sync"
	"testing"

	"github.com/nortavo/dispatch/internal/domain"
	"github.com/nortavo/dispatch/internal/infrastructure/logging"
)

func newTestHub() *Hub {
	return NewHub(Options{SendBuffer: 8}, logging.NewNop())
}

func newTestClient(t *testing.T, h *Hub, userID string) *Client {
	t.Helper()
	c := NewClient(h, nil, userID)
	h.Register(c)
	return c
}

// drain pulls every frame currently buffered for the client.
func drain(c *Client) []*Frame {
	var frames []*Frame
	for {
		select {
		case f := <-c.send:
			frames = append(frames, f)
		default:
			return frames
		}
	}
}

func TestDeliverReachesJoinedConnection(t *testing.T) {
	h := newTestHub()
	c := newTestClient(t, h, "u1")

	room := domain.RoomKey(domain.KindRide, "r1")
	h.Join(c, room)
	drain(c) // discard the join presence frame

	if n := h.Deliver(room, NewUpdate(room, map[string]string{"id": "r1", "status": "accepted"})); n != 1 {
		t.Fatalf("Deliver enqueued for %d connections, want 1", n)
	}

	frames := drain(c)
	if len(frames) != 1 || frames[0].Type != FrameUpdate || frames[0].RoomID != room {
		t.Fatalf("unexpected frames: %+v", frames)
	}
}

func TestDeliverFansOutToAllMembers(t *testing.T) {
	h := newTestHub()
	a := newTestClient(t, h, "u1")
	b := newTestClient(t, h, "u2")

	room := domain.RoomKey(domain.KindOrder, "o1")
	h.Join(a, room)
	h.Join(b, room)
	drain(a)
	drain(b)

	frame := NewUpdate(room, map[string]string{"id": "o1", "status": "preparing"})
	if n := h.Deliver(room, frame); n != 2 {
		t.Fatalf("Deliver enqueued for %d connections, want 2", n)
	}

	for _, c := range []*Client{a, b} {
		frames := drain(c)
		if len(frames) != 1 || frames[0] != frame {
			t.Fatalf("client %s got frames %+v, want exactly the delivered frame", c.ID, frames)
		}
	}
}

func TestJoinAfterDeliveryGetsNoReplay(t *testing.T) {
	h := newTestHub()
	room := domain.RoomKey(domain.KindRide, "r1")

	h.Deliver(room, NewUpdate(room, map[string]string{"id": "r1"}))

	c := newTestClient(t, h, "u1")
	h.Join(c, room)

	for _, f := range drain(c) {
		if f.Type == FrameUpdate {
			t.Fatalf("late joiner received a replayed update frame: %+v", f)
		}
	}
}

func TestUnregisterRemovesFromEveryRoom(t *testing.T) {
	h := newTestHub()
	c := newTestClient(t, h, "u1")

	rideRoom := domain.RoomKey(domain.KindRide, "r1")
	orderRoom := domain.RoomKey(domain.KindOrder, "o1")
	h.Join(c, rideRoom)
	h.Join(c, orderRoom)

	h.Unregister(c)

	if h.RoomSize(rideRoom) != 0 || h.RoomSize(orderRoom) != 0 {
		t.Fatal("rooms still hold the unregistered connection")
	}
	if h.Connections() != 0 {
		t.Fatalf("hub still tracks %d connections", h.Connections())
	}

	if n := h.Deliver(rideRoom, NewUpdate(rideRoom, nil)); n != 0 {
		t.Fatalf("delivery after disconnect reached %d connections", n)
	}
}

func TestUnregisterIsIdempotent(t *testing.T) {
	h := newTestHub()
	c := newTestClient(t, h, "u1")
	h.Join(c, domain.RoomKey(domain.KindRide, "r1"))

	h.Unregister(c)
	h.Unregister(c)

	if h.Connections() != 0 {
		t.Fatalf("hub tracks %d connections after double unregister", h.Connections())
	}
}

func TestJoinAfterCloseIsRejected(t *testing.T) {
	h := newTestHub()
	c := newTestClient(t, h, "u1")
	h.Unregister(c)

	room := domain.RoomKey(domain.KindRide, "r1")
	if h.Join(c, room) {
		t.Fatal("closed connection was allowed to join a room")
	}
	if h.RoomSize(room) != 0 {
		t.Fatal("closed connection appears in room membership")
	}
}

func TestSlowConsumerDropsInsteadOfBlocking(t *testing.T) {
	h := NewHub(Options{SendBuffer: 2}, logging.NewNop())
	c := newTestClient(t, h, "u1")

	room := domain.RoomKey(domain.KindRide, "r1")
	h.Join(c, room)
	drain(c)

	// Two fit the buffer, the third must be dropped without blocking.
	for i := 0; i < 3; i++ {
		h.Deliver(room, NewUpdate(room, i))
	}

	if got := len(drain(c)); got != 2 {
		t.Fatalf("slow consumer buffered %d frames, want 2", got)
	}
}

func TestDuplicateDeliveryIsNotDeduplicated(t *testing.T) {
	h := newTestHub()
	c := newTestClient(t, h, "u1")

	room := domain.RoomKey(domain.KindOrder, "o1")
	h.Join(c, room)
	drain(c)

	frame := NewUpdate(room, map[string]string{"id": "o1", "status": "pending"})
	h.Deliver(room, frame)
	h.Deliver(room, frame)

	frames := drain(c)
	if len(frames) != 2 {
		t.Fatalf("duplicate broker delivery produced %d frames, want 2", len(frames))
	}
	if frames[0] != frame || frames[1] != frame {
		t.Fatal("duplicate deliveries do not carry identical content")
	}
}

func TestPresenceAnnouncedOnJoin(t *testing.T) {
	h := newTestHub()
	a := newTestClient(t, h, "u1")
	b := newTestClient(t, h, "u2")

	room := domain.RoomKey(domain.KindRide, "r1")
	h.Join(a, room)
	drain(a)

	h.Join(b, room)

	frames := drain(a)
	if len(frames) != 1 || frames[0].Type != FrameMemberJoined {
		t.Fatalf("existing member got %+v, want one member.joined frame", frames)
	}
	payload, ok := frames[0].Data.(PresencePayload)
	if !ok || payload.UserID != "u2" {
		t.Fatalf("presence payload = %+v", frames[0].Data)
	}
}

func TestConcurrentJoinsAndDeliveries(t *testing.T) {
	h := NewHub(Options{SendBuffer: 1}, logging.NewNop())
	room := domain.RoomKey(domain.KindRide, "r1")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		c := newTestClient(t, h, "u")

		wg.Add(2)
		go func() {
			defer wg.Done()
			h.Join(c, room)
			h.Unregister(c)
		}()
		go func() {
			defer wg.Done()
			h.Deliver(room, NewUpdate(room, nil))
		}()
	}
	wg.Wait()

	if h.Connections() != 0 {
		t.Fatalf("hub tracks %d connections after all unregistered", h.Connections())
	}
	if h.RoomSize(room) != 0 {
		t.Fatalf("room still has %d members", h.RoomSize(room))
	}
}

func TestCloseConcurrentWithDelivery(t *testing.T) {
	h := newTestHub()
	c := newTestClient(t, h, "u1")

	room := domain.RoomKey(domain.KindRide, "r1")
	h.Join(c, room)
	drain(c)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			h.Deliver(room, NewUpdate(room, i))
		}
	}()
	go func() {
		defer wg.Done()
		c.Close()
		c.Close()
	}()
	wg.Wait()
}
