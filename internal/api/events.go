// ABOUTME: Server-sent event stream of the coordinator's published state.
// ABOUTME: Browser clients get each topic's current value, then every change.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/harperreed/levelup/internal/coordinator"
)

// eventBuffer bounds how far a slow client may fall behind before updates
// are dropped. Each topic's latest value is re-sent on the next change.
const eventBuffer = 64

const keepAlive = 30 * time.Second

type event struct {
	topic string
	value any
}

// GET /api/events?topics=profile,lootboxes
//
// Each event is named after its topic. A null payload means the value was
// reset, for example after sign-out.
func (h *Handler) Events(c *gin.Context) {
	topics, err := parseTopics(c.Query("topics"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := make(chan event, eventBuffer)
	store := h.coord.Store()
	for _, t := range topics {
		topic := t
		unsub := store.Subscribe(topic, func(v any) {
			select {
			case updates <- event{topic: topic, value: v}:
			default:
				h.log.Debug("dropped event", "topic", topic)
			}
		})
		defer unsub()
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-updates:
			data, err := json.Marshal(ev.value)
			if err != nil {
				h.log.Warn("encode event", "topic", ev.topic, "err", err)
				continue
			}
			c.SSEvent(ev.topic, string(data))
			c.Writer.Flush()
		case <-ticker.C:
			c.SSEvent("ping", time.Now().Unix())
			c.Writer.Flush()
		}
	}
}

func parseTopics(raw string) ([]string, error) {
	all := coordinator.Topics()
	if strings.TrimSpace(raw) == "" {
		return all, nil
	}

	known := make(map[string]bool, len(all))
	for _, t := range all {
		known[t] = true
	}
	var out []string
	for _, t := range strings.Split(raw, ",") {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if !known[t] {
			return nil, fmt.Errorf("unknown topic %q (want one of %s)", t, strings.Join(all, ", "))
		}
		out = append(out, t)
	}
	if len(out) == 0 {
		return all, nil
	}
	return out, nil
}
