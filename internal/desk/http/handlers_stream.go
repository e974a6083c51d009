package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vox-librorum/vox-desk/internal/auth"
)

// stream pushes conduit entries using Server-Sent Events (SSE). The backlog is
// replayed first, then live entries follow.
func (h *Handler) stream(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	userID := auth.UserID(c)

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "streaming unsupported"})
		return
	}

	// Subscribe before reading the backlog so nothing falls between the two.
	entries, cancel := ctrl.Conduit().Subscribe(64)
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // nginx: disable buffering

	// since resumes a stream without replaying what the client already has
	lastSeq, _ := strconv.ParseUint(c.Query("since"), 10, 64)
	catchUp := func() {
		// Since also covers entries a full subscriber buffer dropped
		for _, e := range ctrl.Conduit().Since(lastSeq) {
			data, _ := json.Marshal(e)
			fmt.Fprintf(c.Writer, "id: %d\nevent: entry\ndata: %s\n\n", e.Seq, string(data))
			lastSeq = e.Seq
		}
		flusher.Flush()
	}
	catchUp()

	ctx := c.Request.Context()
	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Client disconnected
			return

		case <-ticker.C:
			// an open stream counts as use of the desk
			h.desks.Touch(userID)
			fmt.Fprint(c.Writer, ": keep-alive\n\n")
			flusher.Flush()

		case _, open := <-entries:
			if !open {
				// desk closed or swept; the client reconnects to a fresh one
				return
			}
			catchUp()
		}
	}
}
