package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ProbeTimeout bounds the start-up connectivity check.
const ProbeTimeout = 5 * time.Second

// New creates a new Redis client and pings it.
func New(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	if err := Probe(ctx, client); err != nil {
		_ = client.Close()
		return nil, err
	}

	return client, nil
}

// Probe pings client within ProbeTimeout.
func Probe(ctx context.Context, client *redis.Client) error {
	ctx, cancel := context.WithTimeout(ctx, ProbeTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("platform/cache: ping: %w", err)
	}
	return nil
}
