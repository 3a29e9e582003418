// Package realtime carries change notifications from mutations to live query
// subscriptions. Notifications carry no payload: a subscriber re-runs its
// query and emits the full result.
package realtime

import (
	"context"
	"sync"
)

// Topic names a collection whose documents changed
type Topic string

const (
	TopicHospitals     Topic = "hospitals"
	TopicBloodRequests Topic = "bloodRequests"
)

// Feed fans change notifications out to listeners
type Feed interface {
	Publish(ctx context.Context, topics ...Topic) error
	Subscribe(topics ...Topic) *Listener
	Close() error
}

// Listener receives a signal on C after one or more changes on its topics.
// Signals coalesce: C holds at most one pending signal.
type Listener struct {
	C <-chan struct{}

	c      chan struct{}
	once   sync.Once
	remove func()
}

func newListener() *Listener {
	c := make(chan struct{}, 1)
	return &Listener{C: c, c: c}
}

func (l *Listener) signal() {
	select {
	case l.c <- struct{}{}:
	default:
	}
}

// Close detaches the listener from its feed
func (l *Listener) Close() {
	l.once.Do(func() {
		if l.remove != nil {
			l.remove()
		}
	})
}

// LocalFeed delivers notifications within the process
type LocalFeed struct {
	mu        sync.Mutex
	listeners map[Topic]map[*Listener]struct{}
}

func NewLocalFeed() *LocalFeed {
	return &LocalFeed{listeners: make(map[Topic]map[*Listener]struct{})}
}

func (f *LocalFeed) Publish(_ context.Context, topics ...Topic) error {
	f.notify(topics...)
	return nil
}

func (f *LocalFeed) notify(topics ...Topic) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, topic := range topics {
		for l := range f.listeners[topic] {
			l.signal()
		}
	}
}

func (f *LocalFeed) Subscribe(topics ...Topic) *Listener {
	l := newListener()

	f.mu.Lock()
	for _, topic := range topics {
		if f.listeners[topic] == nil {
			f.listeners[topic] = make(map[*Listener]struct{})
		}
		f.listeners[topic][l] = struct{}{}
	}
	f.mu.Unlock()

	l.remove = func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		for _, topic := range topics {
			delete(f.listeners[topic], l)
		}
	}
	return l
}

// Close drops every listener. Their channels stay open and simply stop
// receiving signals.
func (f *LocalFeed) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listeners = make(map[Topic]map[*Listener]struct{})
	return nil
}

func (f *LocalFeed) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := make(map[*Listener]struct{})
	for _, ls := range f.listeners {
		for l := range ls {
			seen[l] = struct{}{}
		}
	}
	return len(seen)
}
