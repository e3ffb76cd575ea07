package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/academy/internal/web"
	"github.com/dmitrymomot/academy/pkg/events"
)

const (
	defaultHeartbeat = 25 * time.Second
	streamBuffer     = 64
	retryMillis      = 3000
)

// Events streams the visitor's bus events as Server-Sent Events.
type Events struct {
	// Heartbeat is the interval of keep-alive comments. Zero means 25s.
	Heartbeat time.Duration
}

// Routes implements web.Handler.
func (h Events) Routes(r web.Router) {
	r.GET("/api/events", h.stream)
}

func (h Events) stream(c web.Context) error {
	root, err := visitor(c)
	if err != nil {
		return err
	}

	w := c.Response()
	rc := http.NewResponseController(w)
	// The stream outlives any server write timeout.
	_ = rc.SetWriteDeadline(time.Time{})

	c.SetHeader("Content-Type", "text/event-stream")
	c.SetHeader("Cache-Control", "no-cache")
	c.SetHeader("Connection", "keep-alive")
	c.SetHeader("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	ch := make(chan events.Event, streamBuffer)
	unsubscribe := root.Site().Bus().SubscribeAll(func(ctx context.Context, e events.Event) {
		if !root.Sees(c, e) {
			return
		}
		select {
		case ch <- e:
		default:
			c.Logger().WarnContext(ctx, "event stream buffer full, event dropped",
				slog.String("topic", string(e.Topic)),
			)
		}
	})
	defer unsubscribe()

	if _, err := fmt.Fprintf(w, "retry: %d\nevent: ready\ndata: {\"visitor\":%q}\n\n", retryMillis, root.VisitorID); err != nil {
		return nil
	}
	if err := rc.Flush(); err != nil {
		return err
	}

	interval := h.Heartbeat
	if interval <= 0 {
		interval = defaultHeartbeat
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.Done():
			return nil
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return nil
			}
		case e := <-ch:
			// Sign-in from another tab changes what this stream may see.
			if e.Topic == events.AuthChanged && e.Scope == root.VisitorID {
				root.Session.Store().Reload(c)
			}
			if err := writeEvent(w, e); err != nil {
				return nil
			}
		}
		if err := rc.Flush(); err != nil {
			return nil
		}
	}
}

func writeEvent(w http.ResponseWriter, e events.Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.Topic, data)
	return err
}
