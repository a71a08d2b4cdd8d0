package ws

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"sparkchat/pkg/dispatch"
	"sparkchat/pkg/logger"
	"sparkchat/pkg/models"
	"sparkchat/pkg/presence"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	sendBuffer     = 32
)

// SubmitFunc runs the persist+dispatch send path shared with the REST
// surface.
type SubmitFunc func(m models.Message) (models.Message, error)

// Client is one bound realtime connection. Its buffered send channel makes
// pushes non-blocking: a connection that stops draining gets its payloads
// dropped and is torn down by the next failed write or missed pong.
type Client struct {
	identity string
	conn     *websocket.Conn
	send     chan []byte
	done     chan struct{}
	router   *presence.Router
	submit   SubmitFunc
}

func newClient(identity string, conn *websocket.Conn, router *presence.Router, submit SubmitFunc) *Client {
	return &Client{
		identity: identity,
		conn:     conn,
		send:     make(chan []byte, sendBuffer),
		done:     make(chan struct{}),
		router:   router,
		submit:   submit,
	}
}

// Send implements presence.Channel.
func (c *Client) Send(payload []byte) bool {
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

type inboundFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// reportError tells this client, and only this client, that its submitted
// frame was refused. A failed send is never silent: the message was not
// persisted, so the caller must hear about it.
func (c *Client) reportError(err error) {
	payload, merr := json.Marshal(dispatch.Envelope{
		Event: dispatch.EventError,
		Data:  map[string]string{"error": err.Error()},
	})
	if merr != nil {
		return
	}
	c.Send(payload)
}

// readPump consumes client frames until the connection dies. Disconnection
// unconditionally unbinds the channel; missed messages are recovered via
// the history fetch, not a replay buffer.
func (c *Client) readPump() {
	defer func() {
		c.router.Unbind(c.identity, c)
		// The send channel stays open so a concurrent Push can never hit a
		// closed channel; writePump exits via done instead.
		close(c.done)
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			logger.Debug("ws_read_closed", "identity", c.identity, "error", err)
			return
		}
		var frame inboundFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			logger.Warn("ws_invalid_frame", "identity", c.identity)
			continue
		}
		switch frame.Event {
		case "send-message":
			var m models.Message
			if err := json.Unmarshal(frame.Data, &m); err != nil {
				logger.Warn("ws_invalid_message", "identity", c.identity)
				continue
			}
			// The bound identity is the only trusted sender claim.
			m.Sender = c.identity
			if _, err := c.submit(m); err != nil {
				logger.Warn("ws_send_rejected", "identity", c.identity, "error", err)
				c.reportError(err)
			}
		default:
			logger.Debug("ws_unknown_event", "identity", c.identity, "event", frame.Event)
		}
	}
}

// writePump drains the send channel onto the wire and keeps the connection
// alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case payload := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}
