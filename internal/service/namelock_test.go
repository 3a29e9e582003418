package service

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// maxHolders locks name from n goroutines, spread over locks, and reports
// the most that ever held it at once.
func maxHolders(t *testing.T, name string, n int, locks ...NameLock) int32 {
	var inside, maxInside int32
	var wg sync.WaitGroup

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(l NameLock) {
			defer wg.Done()
			unlock, err := l.Lock(context.Background(), name)
			if !assert.NoError(t, err) {
				return
			}
			held := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if held <= m || atomic.CompareAndSwapInt32(&maxInside, m, held) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
			unlock()
		}(locks[i%len(locks)])
	}
	wg.Wait()
	return maxInside
}

func TestLocalNameLockSerializesSameName(t *testing.T) {
	l := NewLocalNameLock()

	assert.Equal(t, int32(1), maxHolders(t, "Apollo Hospital", 10, l))
	assert.Empty(t, l.names)
}

func TestLocalNameLockIndependentNames(t *testing.T) {
	l := NewLocalNameLock()
	unlockA, err := l.Lock(context.Background(), "A")
	require.NoError(t, err)
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlockB, _ := l.Lock(context.Background(), "B")
		unlockB()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on B blocked behind A")
	}
}

// Runs against a live redis. Set TEST_REDIS_URL to enable.
func TestRedisNameLock(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("Skipping redis name lock test. Set TEST_REDIS_URL to run against a live redis.")
	}

	opt, err := redis.ParseURL(url)
	require.NoError(t, err)
	clientA, clientB := redis.NewClient(opt), redis.NewClient(opt)
	defer clientA.Close()
	defer clientB.Close()

	// two instances contending for one name
	a, b := NewRedisNameLock(clientA), NewRedisNameLock(clientB)
	name := "Apollo Hospital " + uuid.NewString()

	t.Run("serializes across instances", func(t *testing.T) {
		assert.Equal(t, int32(1), maxHolders(t, name, 6, a, b))

		exists, err := clientA.Exists(context.Background(), "blood:hospital-name:"+name).Result()
		require.NoError(t, err)
		assert.Zero(t, exists)
	})

	t.Run("waiting honors context", func(t *testing.T) {
		unlock, err := a.Lock(context.Background(), name)
		require.NoError(t, err)
		defer unlock()

		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()
		_, err = b.Lock(ctx, name)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}
