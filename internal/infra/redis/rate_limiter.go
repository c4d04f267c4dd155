package redis

import (
	"context"
	"fmt"
	"time"

	"account-activation/internal/domain/ports/adapter"

	"github.com/go-redis/redis/v8"
)

var _ adapter.RateLimiter = (*RateLimiter)(nil)

// RateLimiter is a fixed-window counter: the first hit starts the window.
type RateLimiter struct {
	store Store
}

func NewRateLimiter(store Store) *RateLimiter {
	return &RateLimiter{store: store}
}

// hitScript increments the counter and arms its expiry in one step. A
// counter found without a TTL is re-armed as well.
var hitScript = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 or redis.call("PTTL", KEYS[1]) < 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return n`)

func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	res, err := r.store.Eval(ctx, hitScript, []string{key}, window.Milliseconds())
	if err != nil {
		return false, err
	}
	count, ok := res.(int64)
	if !ok {
		return false, fmt.Errorf("rate limiter: unexpected reply %T", res)
	}
	return count <= int64(limit), nil
}
