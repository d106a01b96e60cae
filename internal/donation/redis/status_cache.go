package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/frahmantamala/donation-management/internal/donation"
	goredis "github.com/redis/go-redis/v9"
)

const (
	namespace  = "donation:status"
	defaultTTL = 24 * time.Hour
)

// Client is the subset of redis.UniversalClient the cache uses.
type Client interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.StatusCmd
}

// NewClient returns a cluster client when useCluster is set and several
// addresses are given, a single-node client otherwise.
func NewClient(addrs []string, password string, useCluster bool) goredis.UniversalClient {
	if useCluster && len(addrs) > 1 {
		return goredis.NewClusterClient(&goredis.ClusterOptions{
			Addrs:    addrs,
			Password: password,
		})
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     addrs[0],
		Password: password,
		DB:       0,
	})
}

// StatusCache keeps terminal donation statuses. Pending is never stored
// because it can still change.
type StatusCache struct {
	client Client
	ttl    time.Duration
}

func NewStatusCache(client Client, ttl time.Duration) *StatusCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &StatusCache{client: client, ttl: ttl}
}

func (c *StatusCache) Get(ctx context.Context, orderID string) (donation.Status, bool, error) {
	val, err := c.client.Get(ctx, key(orderID)).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %s: %w", orderID, err)
	}

	status, err := donation.ParseStatus(val)
	if err != nil || !status.IsTerminal() {
		return "", false, nil
	}
	return status, true, nil
}

func (c *StatusCache) Set(ctx context.Context, orderID string, status donation.Status) error {
	if !status.IsTerminal() {
		return nil
	}
	if err := c.client.Set(ctx, key(orderID), string(status), c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", orderID, err)
	}
	return nil
}

func key(orderID string) string {
	return namespace + ":" + orderID
}
