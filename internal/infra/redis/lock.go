package redis

import (
	"context"
	"time"

	"account-activation/internal/domain"
	"account-activation/internal/domain/ports/adapter"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

var _ adapter.Locker = (*RedisLocker)(nil)

type RedisLocker struct {
	store    Store
	attempts int
	backoff  time.Duration
}

func NewLocker(store Store) *RedisLocker {
	return &RedisLocker{store: store, attempts: 5, backoff: 50 * time.Millisecond}
}

// TryLock sets key to a fresh token if it is free, retrying briefly while it
// is held. It returns domain.ErrActivationInProgress when the key stays taken,
// the last redis error when redis never answered, and ctx.Err() on cancellation.
func (l *RedisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	var lastErr error
	for i := 0; i < l.attempts; i++ {
		ok, err := l.store.SetNX(ctx, key, token, ttl)
		if err != nil {
			lastErr = err
		} else if ok {
			return token, nil
		} else {
			lastErr = nil
		}
		if i == l.attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(l.backoff):
		}
	}
	if lastErr != nil {
		return "", lastErr
	}
	return "", domain.ErrActivationInProgress
}

var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// Unlock releases key only if it still holds token.
func (l *RedisLocker) Unlock(ctx context.Context, key, token string) error {
	_, err := l.store.Eval(ctx, unlockScript, []string{key}, token)
	return err
}
