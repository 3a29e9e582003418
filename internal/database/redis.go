package database

import (
	"context"
	"fmt"
	"time"

	"blood-request-coordinator/internal/logging"

	"github.com/redis/go-redis/v9"
)

// OpenRedis connects to the redis URL used for cross-instance change
// notifications and hospital name locks. An empty URL returns (nil, nil).
func OpenRedis(ctx context.Context, url string) (*redis.Client, error) {
	if url == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	logging.Store.WithField("addr", opts.Addr).Info("Connected to Redis")
	return client, nil
}
