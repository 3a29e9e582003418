package service

import (
	"context"

	"blood-request-coordinator/internal/logging"
	"blood-request-coordinator/internal/realtime"
)

type notifier struct {
	feed realtime.Feed
}

// publish tells live views their data changed. A failed publish never fails
// the mutation that already committed.
func (n notifier) publish(ctx context.Context, topics ...realtime.Topic) {
	if n.feed == nil {
		return
	}
	if err := n.feed.Publish(ctx, topics...); err != nil {
		logging.API.WithError(err).Warn("Failed to publish change")
	}
}
