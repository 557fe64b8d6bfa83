package jobs

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RunLock is a best-effort Redis mutex preventing concurrent worker
// replicas from running the same job at the same time. A nil lock always
// acquires, so single-instance deployments can skip the Redis round trip.
type RunLock struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRunLock constructs a lock helper. The ttl bounds how long a crashed
// holder can block other replicas.
func NewRunLock(client *redis.Client, ttl time.Duration) *RunLock {
	return &RunLock{client: client, ttl: ttl}
}

func lockKey(job string) string {
	return "jobs:lock:" + job
}

// Acquire attempts to take the lock for job. It returns false when another
// replica holds it.
func (l *RunLock) Acquire(ctx context.Context, job string) (bool, error) {
	if l == nil || l.client == nil {
		return true, nil
	}
	return l.client.SetNX(ctx, lockKey(job), 1, l.ttl).Result()
}

// Release frees the lock early so the next scheduled run is not blocked
// for the full ttl.
func (l *RunLock) Release(ctx context.Context, job string) {
	if l == nil || l.client == nil {
		return
	}
	l.client.Del(ctx, lockKey(job))
}
