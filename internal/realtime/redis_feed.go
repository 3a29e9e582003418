package realtime

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"blood-request-coordinator/internal/logging"

	"github.com/redis/go-redis/v9"
)

const defaultChannelPrefix = "blood:changes:"

// RedisFeed shares notifications between server instances through redis
// pub/sub. Every instance relays what it receives into a local fan-out.
type RedisFeed struct {
	client *redis.Client
	prefix string
	local  *LocalFeed
	pubsub *redis.PubSub

	closeOnce sync.Once
	done      chan struct{}
}

// NewRedisFeed subscribes to the change channels of every topic and starts
// relaying messages.
func NewRedisFeed(ctx context.Context, client *redis.Client) (*RedisFeed, error) {
	f := &RedisFeed{
		client: client,
		prefix: defaultChannelPrefix,
		local:  NewLocalFeed(),
		done:   make(chan struct{}),
	}

	f.pubsub = client.Subscribe(ctx, f.channel(TopicHospitals), f.channel(TopicBloodRequests))
	// wait for the subscription confirmation so early publishes are not lost
	if _, err := f.pubsub.Receive(ctx); err != nil {
		_ = f.pubsub.Close()
		return nil, fmt.Errorf("subscribe to change channels: %w", err)
	}

	go f.relay()
	return f, nil
}

func (f *RedisFeed) channel(topic Topic) string {
	return f.prefix + string(topic)
}

func (f *RedisFeed) topic(channel string) (Topic, bool) {
	if !strings.HasPrefix(channel, f.prefix) {
		return "", false
	}
	return Topic(strings.TrimPrefix(channel, f.prefix)), true
}

func (f *RedisFeed) relay() {
	defer close(f.done)
	for msg := range f.pubsub.Channel() {
		if topic, ok := f.topic(msg.Channel); ok {
			f.local.notify(topic)
		}
	}
}

// Publish signals local listeners immediately and broadcasts to the other
// instances.
func (f *RedisFeed) Publish(ctx context.Context, topics ...Topic) error {
	f.local.notify(topics...)
	for _, topic := range topics {
		if err := f.client.Publish(ctx, f.channel(topic), "changed").Err(); err != nil {
			return fmt.Errorf("publish %s change: %w", topic, err)
		}
	}
	return nil
}

func (f *RedisFeed) Subscribe(topics ...Topic) *Listener {
	return f.local.Subscribe(topics...)
}

func (f *RedisFeed) Close() error {
	var err error
	f.closeOnce.Do(func() {
		err = f.pubsub.Close()
		<-f.done
		_ = f.local.Close()
		logging.Store.Info("Change feed closed")
	})
	return err
}
