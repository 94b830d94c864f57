package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/nortavo/dispatch/internal/infrastructure/logging"
	"github.com/nortavo/dispatch/internal/infrastructure/ws"
	"github.com/rabbitmq/amqp091-go"
)

type fakeHub struct {
	rooms  []string
	frames []*ws.Frame
}

func (f *fakeHub) Deliver(roomKey string, frame *ws.Frame) int {
	f.rooms = append(f.rooms, roomKey)
	f.frames = append(f.frames, frame)
	return 1
}

func newTestConsumer(hub *fakeHub) *Consumer {
	return &Consumer{hub: hub, logger: logging.NewNop()}
}

func TestHandleRoutesToEntityRoom(t *testing.T) {
	hub := &fakeHub{}
	c := newTestConsumer(hub)

	body := []byte(`{"id":"r1","userId":"u1","status":"accepted"}`)
	err := c.handle(context.Background(), amqp091.Delivery{
		RoutingKey: "ride.updated",
		Body:       body,
	})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}

	if len(hub.rooms) != 1 || hub.rooms[0] != "ride:r1" {
		t.Fatalf("delivered to rooms %v, want [ride:r1]", hub.rooms)
	}

	frame := hub.frames[0]
	if frame.Type != ws.FrameUpdate || frame.RoomID != "ride:r1" {
		t.Fatalf("unexpected frame: %+v", frame)
	}

	payload, ok := frame.Data.(json.RawMessage)
	if !ok || string(payload) != string(body) {
		t.Fatalf("frame payload is not the verbatim snapshot: %v", frame.Data)
	}
}

func TestHandleMalformedMessageDoesNotHaltIngestion(t *testing.T) {
	hub := &fakeHub{}
	c := newTestConsumer(hub)

	if err := c.handle(context.Background(), amqp091.Delivery{
		RoutingKey: "order.created",
		Body:       []byte(`{"id":`),
	}); err == nil {
		t.Fatal("malformed body should be rejected")
	}
	if len(hub.rooms) != 0 {
		t.Fatalf("malformed message reached rooms %v", hub.rooms)
	}

	// The next well-formed message on the same topic still goes through.
	err := c.handle(context.Background(), amqp091.Delivery{
		RoutingKey: "order.created",
		Body:       []byte(`{"id":"o1","status":"pending"}`),
	})
	if err != nil {
		t.Fatalf("well-formed message after malformed one: %v", err)
	}
	if len(hub.rooms) != 1 || hub.rooms[0] != "order:o1" {
		t.Fatalf("delivered to rooms %v, want [order:o1]", hub.rooms)
	}
}

func TestHandleUnknownRoutingKey(t *testing.T) {
	hub := &fakeHub{}
	c := newTestConsumer(hub)

	if err := c.handle(context.Background(), amqp091.Delivery{
		RoutingKey: "ride.deleted",
		Body:       []byte(`{"id":"r1"}`),
	}); err == nil {
		t.Fatal("unknown routing key should be rejected")
	}
	if len(hub.rooms) != 0 {
		t.Fatal("unknown routing key reached a room")
	}
}
