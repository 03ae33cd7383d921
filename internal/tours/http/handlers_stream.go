package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ambi360/ambi360-backend/internal/logging"
	"github.com/ambi360/ambi360-backend/internal/tours/domain"
)

const keepAliveInterval = 15 * time.Second

// StreamUnlocks streams first-time unlocks of a project using Server-Sent Events (SSE)
func (h *Handler) StreamUnlocks(c *gin.Context) {
	if h.events == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": "unlock events are not enabled"})
		return
	}
	projectID := c.Param("projectId")
	if !domain.ValidID(projectID) {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "project not found"})
		return
	}

	ctx := c.Request.Context()
	events, err := h.events.Subscribe(ctx, projectID)
	if err != nil {
		writeError(c, err, "failed to subscribe to unlock events")
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "streaming unsupported"})
		return
	}

	c.Status(http.StatusOK)
	fmt.Fprint(c.Writer, ": connected\n\n")
	flusher.Flush()

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			fmt.Fprint(c.Writer, ": keep-alive\n\n")
			flusher.Flush()

		case ev, open := <-events:
			if !open {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				logging.Ctx(ctx).Warn().Err(err).Msg("encode unlock event")
				continue
			}
			fmt.Fprintf(c.Writer, "event: unlock\ndata: %s\n\n", data)
			flusher.Flush()
		}
	}
}
