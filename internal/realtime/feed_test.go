package realtime

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func pending(l *Listener) bool {
	select {
	case <-l.C:
		return true
	default:
		return false
	}
}

func TestLocalFeedRoutesByTopic(t *testing.T) {
	f := NewLocalFeed()
	requests := f.Subscribe(TopicBloodRequests)
	both := f.Subscribe(TopicHospitals, TopicBloodRequests)

	assert.NoError(t, f.Publish(context.Background(), TopicHospitals))

	assert.False(t, pending(requests))
	assert.True(t, pending(both))
}

func TestLocalFeedCoalesces(t *testing.T) {
	f := NewLocalFeed()
	l := f.Subscribe(TopicBloodRequests)

	for i := 0; i < 5; i++ {
		assert.NoError(t, f.Publish(context.Background(), TopicBloodRequests))
	}

	assert.True(t, pending(l))
	assert.False(t, pending(l))
}

func TestListenerClose(t *testing.T) {
	f := NewLocalFeed()
	l := f.Subscribe(TopicHospitals, TopicBloodRequests)
	assert.Equal(t, 1, f.count())

	l.Close()
	l.Close()
	assert.Equal(t, 0, f.count())

	assert.NoError(t, f.Publish(context.Background(), TopicHospitals))
	assert.False(t, pending(l))
}

func TestRedisFeedChannelNames(t *testing.T) {
	f := &RedisFeed{prefix: defaultChannelPrefix}

	assert.Equal(t, "blood:changes:bloodRequests", f.channel(TopicBloodRequests))

	topic, ok := f.topic("blood:changes:hospitals")
	assert.True(t, ok)
	assert.Equal(t, TopicHospitals, topic)

	_, ok = f.topic("other:hospitals")
	assert.False(t, ok)
}
