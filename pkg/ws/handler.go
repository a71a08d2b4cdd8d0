package ws

import (
	"net/http"

	"github.com/gorilla/websocket"

	"sparkchat/pkg/auth"
	"sparkchat/pkg/logger"
	"sparkchat/pkg/presence"
	"sparkchat/pkg/utils"
)

// Handler upgrades authenticated requests to realtime channels and binds
// them in the presence router.
type Handler struct {
	gate     *auth.Gate
	router   *presence.Router
	submit   SubmitFunc
	upgrader websocket.Upgrader
}

func NewHandler(gate *auth.Gate, router *presence.Router, submit SubmitFunc) *Handler {
	return &Handler{
		gate:   gate,
		router: router,
		submit: submit,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Cross-origin policy is enforced by the security middleware;
			// the handshake itself accepts any origin.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ServeHTTP validates the handshake credential before any data flows. A
// connection that cannot present a valid credential is rejected
// immediately; there is no retry inside the gateway.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token := auth.BearerToken(r)
	if token == "" {
		utils.JSONError(w, http.StatusUnauthorized, "missing credential")
		return
	}
	identity, err := h.gate.Verify(token)
	if err != nil {
		utils.JSONError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("ws_upgrade_failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	client := newClient(identity, conn, h.router, h.submit)
	h.router.Bind(identity, client)
	logger.Info("ws_connected", "identity", identity)
	go client.writePump()
	client.readPump()
}
