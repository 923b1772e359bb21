// Package push consumes the server's push channel: a websocket carrying
// JSON event payloads. It holds one connection at a time and reconnects
// automatically on connection loss.
package push

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/nhle/activity-sync/internal/logger"
	"github.com/nhle/activity-sync/internal/model"
	"github.com/nhle/activity-sync/internal/relevance"
)

const (
	reconnectBackoff = 5 * time.Second
	maxReconnect     = 30 * time.Second
)

// Listener dials the push channel and forwards decoded events in arrival
// order.
type Listener struct {
	url    string
	header http.Header
	dialer *websocket.Dialer
	log    *logrus.Entry

	backoff    time.Duration
	maxBackoff time.Duration

	received atomic.Uint64
	dropped  atomic.Uint64
}

// NewListener creates a listener for url. A non-empty token is sent as a
// Bearer Authorization header on every dial.
func NewListener(url, token string, log *logrus.Entry) *Listener {
	if log == nil {
		log = logger.Discard()
	}

	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	return &Listener{
		url:        url,
		header:     header,
		dialer:     websocket.DefaultDialer,
		log:        log.WithField("component", "push"),
		backoff:    reconnectBackoff,
		maxBackoff: maxReconnect,
	}
}

// SetBackoff overrides the reconnect delays. Tests use short values.
func (l *Listener) SetBackoff(initial, maxDelay time.Duration) {
	l.backoff = initial
	l.maxBackoff = maxDelay
}

// Received reports how many well-formed events were forwarded.
func (l *Listener) Received() uint64 { return l.received.Load() }

// Dropped reports how many payloads were discarded as malformed.
func (l *Listener) Dropped() uint64 { return l.dropped.Load() }

// Run connects and forwards events to out until ctx is cancelled. Each
// event is delivered before the next frame is read, so out observes
// arrival order. Run always returns ctx.Err().
func (l *Listener) Run(ctx context.Context, out chan<- model.InboundEvent) error {
	backoff := l.backoff

	for {
		connected, err := l.listenLoop(ctx, out)
		if ctx.Err() != nil {
			l.log.Info("push listener stopped")
			return ctx.Err()
		}
		if connected {
			backoff = l.backoff
		}

		l.log.WithError(err).WithField("backoff", backoff.String()).
			Warn("push channel disconnected, reconnecting")

		select {
		case <-time.After(backoff):
			backoff = min(backoff*2, l.maxBackoff)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// listenLoop runs a single session. It reports whether the dial succeeded
// and returns when the connection drops or ctx is cancelled.
func (l *Listener) listenLoop(ctx context.Context, out chan<- model.InboundEvent) (bool, error) {
	conn, _, err := l.dialer.DialContext(ctx, l.url, l.header)
	if err != nil {
		return false, fmt.Errorf("dialing %s: %w", l.url, err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() {
		_ = conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		_ = conn.Close()
	})
	defer stop()

	l.log.WithField("url", l.url).Info("push channel connected")

	for {
		kind, payload, err := conn.ReadMessage()
		if err != nil {
			return true, fmt.Errorf("reading frame: %w", err)
		}
		if kind != websocket.TextMessage && kind != websocket.BinaryMessage {
			continue
		}

		event, ok := relevance.Decode(payload)
		if !ok {
			l.dropped.Add(1)
			l.log.WithField("payload", truncate(payload, 200)).Debug("dropping malformed push payload")
			continue
		}
		l.received.Add(1)

		select {
		case out <- event:
		case <-ctx.Done():
			return true, ctx.Err()
		}
	}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
