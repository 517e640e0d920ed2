// Package stream maintains the persistent connection to the Misskey
// streaming API and feeds mention events to the agent.
package stream

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/hutchisr/grok/internal/misskey"
)

// mainChannelID labels the single main-channel subscription this process
// holds; the server echoes it back on every frame.
const mainChannelID = "11111"

// MentionHandler consumes one mention note. Implementations must not panic
// the process; the ingestor runs each call in its own goroutine.
type MentionHandler interface {
	HandleMention(ctx context.Context, note *misskey.Note)
}

// Ingestor connects to the streaming endpoint, subscribes to the main
// channel, and dispatches mention events. It reconnects on any connection
// failure until Shutdown is called or the context is done.
type Ingestor struct {
	wsURL   string
	token   string
	handler MentionHandler
	backoff time.Duration
	dialer  *websocket.Dialer

	stop     chan struct{}
	stopOnce sync.Once
}

func NewIngestor(wsURL, token string, handler MentionHandler, backoff time.Duration) *Ingestor {
	if backoff <= 0 {
		backoff = time.Second
	}
	return &Ingestor{
		wsURL:   wsURL,
		token:   token,
		handler: handler,
		backoff: backoff,
		dialer:  &websocket.Dialer{HandshakeTimeout: 15 * time.Second},
		stop:    make(chan struct{}),
	}
}

type subscribeFrame struct {
	Type string        `json:"type"`
	Body subscribeBody `json:"body"`
}

type subscribeBody struct {
	Channel string `json:"channel"`
	ID      string `json:"id"`
}

// Run connects and pumps frames until Shutdown or context cancellation.
// Each connection failure is followed by a backoff and a fresh dial.
func (in *Ingestor) Run(ctx context.Context) error {
	for {
		if in.stopped(ctx) {
			return ctx.Err()
		}
		if err := in.session(ctx); err != nil {
			slog.Warn("Stream connection lost", "error", err)
		}
		if in.stopped(ctx) {
			return ctx.Err()
		}
		slog.Info("Reconnecting to stream", "backoff", in.backoff)
		select {
		case <-time.After(in.backoff):
		case <-in.stop:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// session holds one connection: dial, subscribe, pump until the connection
// drops or shutdown begins.
func (in *Ingestor) session(ctx context.Context) error {
	conn, _, err := in.dialer.DialContext(ctx, in.wsURL+"/streaming?i="+in.token, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	sub := subscribeFrame{Type: "connect", Body: subscribeBody{Channel: "main", ID: mainChannelID}}
	if err := conn.WriteJSON(sub); err != nil {
		return err
	}
	slog.Info("Subscribed to main channel")

	pumpDone := make(chan error, 1)
	go func() {
		for {
			_, frame, err := conn.ReadMessage()
			if err != nil {
				pumpDone <- err
				return
			}
			in.dispatch(frame)
		}
	}()

	select {
	case err := <-pumpDone:
		return err
	case <-in.stop:
		// Close unblocks the reader; the pump goroutine exits on its
		// read error.
		conn.Close()
		<-pumpDone
		return nil
	case <-ctx.Done():
		conn.Close()
		<-pumpDone
		return ctx.Err()
	}
}

// dispatch decodes one frame and hands mention events to the handler.
// Malformed frames are dropped. Handlers run detached from the connection
// context so an in-flight reply survives a reconnect or shutdown.
func (in *Ingestor) dispatch(frame []byte) {
	var msg misskey.StreamMessage
	if err := json.Unmarshal(frame, &msg); err != nil {
		slog.Debug("Dropping malformed stream frame", "error", err)
		return
	}
	if !msg.IsMention() {
		return
	}
	var note misskey.Note
	if err := json.Unmarshal(msg.Body.Body, &note); err != nil {
		slog.Debug("Dropping malformed mention payload", "error", err)
		return
	}
	go func() {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("Mention handler panicked", "note", note.ID, "panic", r)
			}
		}()
		in.handler.HandleMention(context.Background(), &note)
	}()
}

// Shutdown stops the ingestor. It is safe to call more than once and safe
// to call while a reconnect wait is in progress.
func (in *Ingestor) Shutdown() {
	in.stopOnce.Do(func() { close(in.stop) })
}

func (in *Ingestor) stopped(ctx context.Context) bool {
	select {
	case <-in.stop:
		return true
	case <-ctx.Done():
		return true
	default:
		return false
	}
}