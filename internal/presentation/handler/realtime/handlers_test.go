package realtime

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/nortavo/dispatch/internal/infrastructure/auth"
	"github.com/nortavo/dispatch/internal/infrastructure/logging"
	"github.com/nortavo/dispatch/internal/infrastructure/ws"
)

const testSecret = "realtime-test-secret"

func signToken(t *testing.T, subject string) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": subject,
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return token
}

func newTestServer(t *testing.T) (*httptest.Server, *ws.Hub) {
	t.Helper()

	hub := ws.NewHub(ws.Options{}, logging.NewNop())
	h := NewHandler(hub, auth.NewJWTVerifier(testSecret), logging.NewNop())

	r := chi.NewRouter()
	r.Get("/api/realtime", h.ConnectHandler)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return srv, hub
}

func dial(t *testing.T, srv *httptest.Server, header http.Header, query string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/realtime" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	return conn
}

type frame struct {
	Type   string          `json:"type"`
	RoomID string          `json:"roomId"`
	Data   json.RawMessage `json:"data"`
}

func readFrame(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()

	var f frame
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("reading frame: %v", err)
	}
	return f
}

func TestConnectJoinAndReceiveUpdate(t *testing.T) {
	srv, hub := newTestServer(t)

	header := http.Header{"Authorization": []string{"Bearer " + signToken(t, "user-42")}}
	conn := dial(t, srv, header, "")

	join := map[string]string{"type": "join", "kind": "ride", "entityId": "r1"}
	if err := conn.WriteJSON(join); err != nil {
		t.Fatalf("sending join: %v", err)
	}

	// The presence frame confirms the subscription is live.
	joined := readFrame(t, conn)
	if joined.Type != ws.FrameMemberJoined || joined.RoomID != "ride:r1" {
		t.Fatalf("got %+v, want member.joined for ride:r1", joined)
	}

	var presence struct {
		UserID string `json:"userId"`
	}
	if err := json.Unmarshal(joined.Data, &presence); err != nil {
		t.Fatalf("decoding presence: %v", err)
	}
	if presence.UserID != "user-42" {
		t.Fatalf("presence userId = %q, want the token subject", presence.UserID)
	}

	hub.Deliver("ride:r1", ws.NewUpdate("ride:r1", map[string]string{"id": "r1", "status": "accepted"}))

	update := readFrame(t, conn)
	if update.Type != ws.FrameUpdate || update.RoomID != "ride:r1" {
		t.Fatalf("got %+v, want update for ride:r1", update)
	}
	if !strings.Contains(string(update.Data), `"accepted"`) {
		t.Fatalf("update payload = %s, want the delivered snapshot", update.Data)
	}
}

func TestConnectWithQueryToken(t *testing.T) {
	srv, hub := newTestServer(t)

	conn := dial(t, srv, nil, "?token="+signToken(t, "user-7"))

	if err := conn.WriteJSON(map[string]string{"type": "join", "kind": "order", "entityId": "o9"}); err != nil {
		t.Fatalf("sending join: %v", err)
	}

	joined := readFrame(t, conn)
	if joined.Type != ws.FrameMemberJoined || joined.RoomID != "order:o9" {
		t.Fatalf("got %+v, want member.joined for order:o9", joined)
	}

	if size := hub.RoomSize("order:o9"); size != 1 {
		t.Fatalf("room size = %d, want 1", size)
	}
}

func TestConnectRejectsBadToken(t *testing.T) {
	srv, hub := newTestServer(t)

	conn := dial(t, srv, http.Header{"Authorization": []string{"Bearer not-a-token"}}, "")

	f := readFrame(t, conn)
	if f.Type != ws.AuthenticationError {
		t.Fatalf("got %+v, want %s", f, ws.AuthenticationError)
	}

	// The connection is closed right after the rejection frame and is never
	// registered with the hub.
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatal("expected the connection to be closed after the auth error")
	}
	if hub.Connections() != 0 {
		t.Fatalf("hub has %d connections, want 0", hub.Connections())
	}
}

func TestConnectRejectsMissingToken(t *testing.T) {
	srv, _ := newTestServer(t)

	conn := dial(t, srv, nil, "")

	if f := readFrame(t, conn); f.Type != ws.AuthenticationError {
		t.Fatalf("got %+v, want %s", f, ws.AuthenticationError)
	}
}

func TestJoinUnknownKindRejected(t *testing.T) {
	srv, hub := newTestServer(t)

	conn := dial(t, srv, http.Header{"Authorization": []string{"Bearer " + signToken(t, "user-1")}}, "")

	if err := conn.WriteJSON(map[string]string{"type": "join", "kind": "driver", "entityId": "d1"}); err != nil {
		t.Fatalf("sending join: %v", err)
	}

	f := readFrame(t, conn)
	if f.Type != ws.JoinFailed {
		t.Fatalf("got %+v, want %s", f, ws.JoinFailed)
	}
	if hub.RoomSize("driver:d1") != 0 {
		t.Fatal("no room should exist for an unknown kind")
	}
}
