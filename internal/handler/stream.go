package handler

import (
	"io"
	"time"

	"blood-request-coordinator/internal/realtime"

	"github.com/gin-gonic/gin"
)

const keepAliveInterval = 15 * time.Second

// streamSnapshots relays a subscription as server-sent events: one
// "snapshot" event per emission and a final "error" event if the
// subscription fails. The subscription is closed when the client leaves.
func streamSnapshots[T any](c *gin.Context, sub *realtime.Subscription[T], render func(T) interface{}) {
	defer sub.Close()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case snapshot, ok := <-sub.Snapshots():
			if !ok {
				select {
				case err := <-sub.Err():
					c.SSEvent("error", errorEvent(err))
				default:
				}
				return false
			}
			c.SSEvent("snapshot", render(snapshot))
			return true
		case <-keepAlive.C:
			_, err := io.WriteString(w, ": keep-alive\n\n")
			return err == nil
		case <-c.Request.Context().Done():
			return false
		}
	})
}
