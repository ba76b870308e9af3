package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"sportsadmin.backend/pkg/crypto"
)

// ErrLockNotAcquired is returned when the lock stays held past the wait budget.
var ErrLockNotAcquired = errors.New("lock not acquired")

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker hands out short-lived exclusive locks keyed by name
type Locker struct {
	prefix string
	ttl    time.Duration
	wait   time.Duration
	retry  time.Duration
}

// NewLocker creates a locker. ttl caps how long a lock lives if its holder dies;
// wait caps how long Acquire blocks.
func NewLocker(prefix string, ttl, wait time.Duration) *Locker {
	return &Locker{prefix: prefix, ttl: ttl, wait: wait, retry: 25 * time.Millisecond}
}

// Acquire blocks until the lock for key is held, the wait budget is spent or ctx ends.
// The returned release function only deletes the key if this holder still owns it.
func (l *Locker) Acquire(ctx context.Context, key string) (func(context.Context), error) {
	token, err := crypto.GenerateRandomToken(16)
	if err != nil {
		return nil, err
	}
	fullKey := l.prefix + key
	deadline := time.Now().Add(l.wait)

	for {
		ok, err := SetNX(ctx, fullKey, token, l.ttl)
		if err != nil {
			return nil, err
		}
		if ok {
			return func(releaseCtx context.Context) {
				_ = releaseScript.Run(releaseCtx, client, []string{fullKey}, token).Err()
			}, nil
		}
		if !time.Now().Before(deadline) {
			return nil, ErrLockNotAcquired
		}

		timer := time.NewTimer(l.retry)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}
