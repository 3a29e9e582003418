package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// NameLock serializes hospital creations that use the same name so the
// duplicate check and the insert cannot interleave.
type NameLock interface {
	Lock(ctx context.Context, name string) (unlock func(), err error)
}

// LocalNameLock guards names within one process
type LocalNameLock struct {
	mu    sync.Mutex
	names map[string]*nameEntry
}

type nameEntry struct {
	mu   sync.Mutex
	refs int
}

func NewLocalNameLock() *LocalNameLock {
	return &LocalNameLock{names: make(map[string]*nameEntry)}
}

func (l *LocalNameLock) Lock(_ context.Context, name string) (func(), error) {
	l.mu.Lock()
	entry, ok := l.names[name]
	if !ok {
		entry = &nameEntry{}
		l.names[name] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.names, name)
		}
		l.mu.Unlock()
	}, nil
}

// releaseScript deletes the lock key only while it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// RedisNameLock guards names across every server instance sharing a redis
type RedisNameLock struct {
	client *redis.Client
	ttl    time.Duration
	retry  time.Duration
}

// NewRedisNameLock holds each name for at most ten seconds, so a crashed
// holder cannot block creation for long.
func NewRedisNameLock(client *redis.Client) *RedisNameLock {
	return &RedisNameLock{
		client: client,
		ttl:    10 * time.Second,
		retry:  50 * time.Millisecond,
	}
}

// Lock polls until the name is free or ctx is done
func (l *RedisNameLock) Lock(ctx context.Context, name string) (func(), error) {
	key := "blood:hospital-name:" + name
	token := uuid.NewString()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire name lock: %w", err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.retry):
		}
	}

	return func() {
		// release even if the caller's context is already done
		_ = releaseScript.Run(context.Background(), l.client, []string{key}, token).Err()
	}, nil
}
