package realtime

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/nortavo/dispatch/internal/infrastructure/auth"
	"github.com/nortavo/dispatch/internal/infrastructure/logging"
	"github.com/nortavo/dispatch/internal/infrastructure/ws"
)

const authWriteTimeout = 5 * time.Second

type Handler struct {
	hub      *ws.Hub
	verifier auth.Verifier
	upgrader websocket.Upgrader
	logger   logging.Logger
}

func NewHandler(hub *ws.Hub, verifier auth.Verifier, logger logging.Logger) *Handler {
	return &Handler{
		hub:      hub,
		verifier: verifier,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		logger: logger,
	}
}

// ConnectHandler godoc
// @Summary      Open a realtime connection
// @Description  Upgrades to WebSocket and authenticates with a JWT taken from the Authorization header or the token query parameter. Room subscriptions are managed with join/leave commands over the socket.
// @Tags         realtime
// @Param        token query string false "JWT, alternative to the Authorization header"
// @Success      101 {object} map[string]interface{} "Switching Protocols - WebSocket connection established"
// @Failure      400 {object} map[string]interface{} "Bad request - upgrade failed"
// @Security     BearerAuth
// @Router       /api/realtime [get]
func (h *Handler) ConnectHandler(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn(logging.WebSocket, logging.Connect, "websocket upgrade failed", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
		})
		return
	}

	principal, err := h.verifier.Verify(token)
	if err != nil {
		// The handshake already succeeded, so the rejection goes out as a
		// frame the client can read before the close.
		_ = conn.SetWriteDeadline(time.Now().Add(authWriteTimeout))
		_ = conn.WriteJSON(ws.NewAuthError("Authentication failed"))
		_ = conn.Close()

		h.logger.Warn(logging.WebSocket, logging.Connect, "rejected unauthenticated connection", map[logging.ExtraKey]any{
			logging.ClientIp: r.RemoteAddr,
		})
		return
	}

	client := ws.NewClient(h.hub, conn, principal.Subject)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()

	h.logger.Info(logging.WebSocket, logging.Connect, "client connected", map[logging.ExtraKey]any{
		logging.ConnectionID: client.ID,
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return r.URL.Query().Get("token")
}
