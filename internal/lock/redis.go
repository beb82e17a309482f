package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// releaseScript deletes the lease only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker is a Locker backed by Redis leases, for deployments that run
// more than one server instance against the same store.
type RedisLocker struct {
	rdb    redis.UniversalClient
	prefix string
	ttl    time.Duration
	poll   time.Duration
	logger *zap.Logger
}

// RedisOptions tunes a RedisLocker.
type RedisOptions struct {
	// Prefix is prepended to every key. Default: "interview:lock:".
	Prefix string
	// TTL bounds how long a crashed holder can block a key. It must exceed
	// the longest exclusive section. Default: 2m.
	TTL time.Duration
	// Poll is the wait between acquisition attempts. Default: 50ms.
	Poll time.Duration
}

// NewRedisLocker creates a RedisLocker. logger may be nil.
func NewRedisLocker(rdb redis.UniversalClient, opts RedisOptions, logger *zap.Logger) *RedisLocker {
	if opts.Prefix == "" {
		opts.Prefix = "interview:lock:"
	}
	if opts.TTL <= 0 {
		opts.TTL = 2 * time.Minute
	}
	if opts.Poll <= 0 {
		opts.Poll = 50 * time.Millisecond
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisLocker{rdb: rdb, prefix: opts.Prefix, ttl: opts.TTL, poll: opts.Poll, logger: logger}
}

// Lock polls SET NX until the lease is acquired or ctx is done.
func (r *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	k := r.prefix + key
	token := uuid.NewString()

	for {
		ok, err := r.rdb.SetNX(ctx, k, token, r.ttl).Result()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if ok {
			break
		}

		t := time.NewTimer(r.poll)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}

	return func() {
		// Release must run even when the caller's context is already done.
		relCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := releaseScript.Run(relCtx, r.rdb, []string{k}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
			r.logger.Warn("failed to release lock", zap.String("key", key), zap.Error(err))
		}
	}, nil
}
