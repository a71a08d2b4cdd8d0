package ws

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"sparkchat/pkg/auth"
	"sparkchat/pkg/dispatch"
	"sparkchat/pkg/models"
	"sparkchat/pkg/presence"
)

func newTestGateway(t *testing.T, submit SubmitFunc) (*httptest.Server, *auth.Gate, *presence.Router) {
	t.Helper()
	gate := auth.NewGate("test-secret", time.Hour)
	router := presence.NewRouter()
	if submit == nil {
		submit = func(m models.Message) (models.Message, error) { return m, nil }
	}
	srv := httptest.NewServer(NewHandler(gate, router, submit))
	t.Cleanup(srv.Close)
	return srv, gate, router
}

func wsURL(srv *httptest.Server, token string) string {
	u := "ws" + strings.TrimPrefix(srv.URL, "http")
	if token != "" {
		u += "?token=" + token
	}
	return u
}

func dial(t *testing.T, srv *httptest.Server, token string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, token), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting: %s", msg)
}

func TestHandler_RejectsBeforeUpgrade(t *testing.T) {
	srv, _, router := newTestGateway(t, nil)

	t.Run("MissingToken", func(t *testing.T) {
		_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, ""), nil)
		if err == nil {
			t.Fatalf("expected handshake failure without a token")
		}
		if resp == nil || resp.StatusCode != 401 {
			t.Fatalf("expected 401, got %+v", resp)
		}
	})

	t.Run("BadToken", func(t *testing.T) {
		_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, "not-a-token"), nil)
		if err == nil {
			t.Fatalf("expected handshake failure with a bad token")
		}
		if resp == nil || resp.StatusCode != 401 {
			t.Fatalf("expected 401, got %+v", resp)
		}
	})

	// Nothing was ever bound for the refused handshakes.
	if n := router.Channels("alice"); n != 0 {
		t.Fatalf("expected 0 bound channels, got %d", n)
	}
}

func TestHandler_BindPushUnbind(t *testing.T) {
	srv, gate, router := newTestGateway(t, nil)

	conn := dial(t, srv, gate.Sign("alice"))
	waitFor(t, func() bool { return router.Channels("alice") == 1 }, "channel bound after connect")

	want := []byte(`{"event":"message","data":{"id":"m1"}}`)
	router.Push("alice", want)

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, got, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read pushed payload: %v", err)
	}
	if string(got) != string(want) {
		t.Fatalf("pushed payload mismatch: %s", got)
	}

	_ = conn.Close()
	waitFor(t, func() bool { return router.Channels("alice") == 0 }, "channel unbound after disconnect")
}

func TestHandler_SubmitPath(t *testing.T) {
	submitted := make(chan models.Message, 1)
	submit := func(m models.Message) (models.Message, error) {
		if m.Text == "" && m.File == "" {
			return m, errors.New("text or file is required")
		}
		submitted <- m
		return m, nil
	}
	srv, gate, router := newTestGateway(t, submit)

	conn := dial(t, srv, gate.Sign("alice"))
	waitFor(t, func() bool { return router.Channels("alice") == 1 }, "channel bound after connect")

	t.Run("SenderClaimFromBinding", func(t *testing.T) {
		frame := `{"event":"send-message","data":{"sender":"mallory","receiver":"bob","text":"hi"}}`
		if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
			t.Fatalf("write: %v", err)
		}
		select {
		case m := <-submitted:
			if m.Sender != "alice" {
				t.Fatalf("expected bound identity as sender, got %q", m.Sender)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("frame never reached the submit path")
		}
	})

	t.Run("RefusedSendReportsError", func(t *testing.T) {
		frame := `{"event":"send-message","data":{"receiver":"bob"}}`
		if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
			t.Fatalf("write: %v", err)
		}
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, got, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("expected an error frame, read failed: %v", err)
		}
		var env struct {
			Event string            `json:"event"`
			Data  map[string]string `json:"data"`
		}
		if err := json.Unmarshal(got, &env); err != nil {
			t.Fatalf("unmarshal frame: %v", err)
		}
		if env.Event != dispatch.EventError {
			t.Fatalf("expected event %q, got %q", dispatch.EventError, env.Event)
		}
		if env.Data["error"] == "" {
			t.Fatalf("expected an error description, got %+v", env)
		}
	})
}
