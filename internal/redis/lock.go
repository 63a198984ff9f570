package redisclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	ErrLockNotAcquired = errors.New("lock not acquired")
)

// Locker guards read-check-write sequences on a single resource across processes.
type Locker interface {
	WithLock(ctx context.Context, resource string, id uuid.UUID, fn func(ctx context.Context) error) error
}

type redisLocker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisLocker creates a locker that uses one Redis key per resource id.
func NewRedisLocker(client *redis.Client, ttl time.Duration) Locker {
	return &redisLocker{
		client: client,
		ttl:    ttl,
	}
}

func LockKey(resource string, id uuid.UUID) string {
	return fmt.Sprintf("lock:%s:%s", resource, id.String())
}

func (l *redisLocker) WithLock(ctx context.Context, resource string, id uuid.UUID, fn func(ctx context.Context) error) error {
	key := LockKey(resource, id)
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return fmt.Errorf("acquire %s lock: %w", resource, err)
	}
	if !ok {
		return ErrLockNotAcquired
	}

	defer func() {
		_ = l.release(context.WithoutCancel(ctx), key, token)
	}()

	ctxWithTimeout, cancel := context.WithTimeout(ctx, l.ttl)
	defer cancel()

	return fn(ctxWithTimeout)
}

var unlockScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if val == ARGV[1] then
  return redis.call("DEL", KEYS[1])
else
  return 0
end
`)

func (l *redisLocker) release(ctx context.Context, key, token string) error {
	_, err := unlockScript.Run(ctx, l.client, []string{key}, token).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release lock: %w", err)
	}
	return nil
}

// NoopLocker runs fn directly. Used by tests and single-process tools.
type NoopLocker struct{}

func (NoopLocker) WithLock(ctx context.Context, _ string, _ uuid.UUID, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
