package push

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"

	"github.com/nhle/activity-sync/internal/model"
)

var upgrader = websocket.Upgrader{}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func receive(t *testing.T, ch <-chan model.InboundEvent) model.InboundEvent {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return model.InboundEvent{}
	}
}

func TestListener_DeliversInOrderAndDropsMalformed(t *testing.T) {
	var auth atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth.Store(r.Header.Get("Authorization"))
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		frames := []string{
			`{"title":"Activity join","message":"alice joined"}`,
			`not json`,
			`{"message":"no title"}`,
			`{"title":"Join request","message":"bob asks","extra":1}`,
		}
		for _, f := range frames {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(f)); err != nil {
				return
			}
		}
		// Hold the connection open until the client goes away.
		_, _, _ = conn.ReadMessage()
	}))
	defer srv.Close()

	l := NewListener(wsURL(srv), "tok", nil)
	out := make(chan model.InboundEvent)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx, out) }()

	first := receive(t, out)
	second := receive(t, out)
	assert.Equal(t, model.InboundEvent{Title: "Activity join", Message: "alice joined"}, first)
	assert.Equal(t, model.InboundEvent{Title: "Join request", Message: "bob asks"}, second)
	assert.Equal(t, "Bearer tok", auth.Load())

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("listener did not stop")
	}
	assert.Equal(t, uint64(2), l.Received())
	assert.Equal(t, uint64(2), l.Dropped())
}

func TestListener_Reconnects(t *testing.T) {
	var sessions int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&sessions, 1)
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		msg := `{"title":"Activity join","message":"session ` + string(rune('0'+n)) + `"}`
		_ = conn.WriteMessage(websocket.TextMessage, []byte(msg))
		if n > 1 {
			_, _, _ = conn.ReadMessage()
		}
	}))
	defer srv.Close()

	l := NewListener(wsURL(srv), "", nil)
	l.SetBackoff(10*time.Millisecond, 20*time.Millisecond)
	out := make(chan model.InboundEvent)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = l.Run(ctx, out) }()

	assert.Equal(t, "session 1", receive(t, out).Message)
	assert.Equal(t, "session 2", receive(t, out).Message)
}

func TestListener_DialFailureKeepsRetryingUntilCancelled(t *testing.T) {
	l := NewListener("ws://127.0.0.1:1/nothing", "", nil)
	l.SetBackoff(5*time.Millisecond, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := l.Run(ctx, make(chan model.InboundEvent))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
