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
	ErrLockNotAcquired = errors.New("hospital lock not acquired")
)

const retryInterval = 25 * time.Millisecond

// Locker serialises bed allocation per hospital.
type Locker interface {
	WithHospitalLock(ctx context.Context, hospital string, fn func(ctx context.Context) error) error
}

// NopLocker runs fn directly. Used when the store alone provides isolation.
type NopLocker struct{}

func (NopLocker) WithHospitalLock(ctx context.Context, _ string, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type HospitalLocker struct {
	client *redis.Client
	ttl    time.Duration
	wait   time.Duration
}

// NewHospitalLocker creates a locker keyed per hospital. ttl bounds how long
// a holder keeps the lock; wait bounds how long a caller polls for it.
func NewHospitalLocker(client *redis.Client, ttl, wait time.Duration) *HospitalLocker {
	return &HospitalLocker{
		client: client,
		ttl:    ttl,
		wait:   wait,
	}
}

func lockKey(hospital string) string {
	return fmt.Sprintf("lock:hospital:%s", hospital)
}

func (l *HospitalLocker) WithHospitalLock(ctx context.Context, hospital string, fn func(ctx context.Context) error) error {
	key := lockKey(hospital)
	token := uuid.NewString()

	if err := l.acquire(ctx, key, token); err != nil {
		return err
	}

	defer func() {
		// release must run even when ctx is already cancelled
		_ = l.release(context.WithoutCancel(ctx), key, token)
	}()

	ctxWithTimeout, cancel := context.WithTimeout(ctx, l.ttl)
	defer cancel()

	return fn(ctxWithTimeout)
}

func (l *HospitalLocker) acquire(ctx context.Context, key, token string) error {
	waitCtx, cancel := context.WithTimeout(ctx, l.wait)
	defer cancel()

	ticker := time.NewTicker(retryInterval)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(waitCtx, key, token, l.ttl).Result()
		if err != nil {
			if waitCtx.Err() != nil {
				return ErrLockNotAcquired
			}
			return fmt.Errorf("acquire hospital lock: %w", err)
		}
		if ok {
			return nil
		}

		select {
		case <-waitCtx.Done():
			return ErrLockNotAcquired
		case <-ticker.C:
		}
	}
}

var unlockScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if val == ARGV[1] then
  return redis.call("DEL", KEYS[1])
else
  return 0
end
`)

func (l *HospitalLocker) release(ctx context.Context, key, token string) error {
	_, err := unlockScript.Run(ctx, l.client, []string{key}, token).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release hospital lock: %w", err)
	}
	return nil
}
