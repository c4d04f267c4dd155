//go:build !integration

package redis

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// memStore is an in-memory Store. It understands the two scripts this
// package ships and nothing else.
type memStore struct {
	mu   sync.Mutex
	vals map[string]string
	ttls map[string]time.Duration

	SetNXCalls int
	SetNXFunc  func(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error)
	EvalFunc   func(ctx context.Context, script *redis.Script, keys []string, args ...interface{}) (interface{}, error)
	EvalArgs   [][]interface{}
}

var _ Store = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{vals: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memStore) Ping(ctx context.Context) error { return nil }
func (m *memStore) Close() error                   { return nil }

func (m *memStore) SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	m.SetNXCalls++
	m.mu.Unlock()
	if m.SetNXFunc != nil {
		return m.SetNXFunc(ctx, key, value, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.vals[key]; ok {
		return false, nil
	}
	m.vals[key] = value.(string)
	m.ttls[key] = ttl
	return true, nil
}

func (m *memStore) Eval(ctx context.Context, script *redis.Script, keys []string, args ...interface{}) (interface{}, error) {
	m.mu.Lock()
	m.EvalArgs = append(m.EvalArgs, args)
	m.mu.Unlock()
	if m.EvalFunc != nil {
		return m.EvalFunc(ctx, script, keys, args...)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := keys[0]
	switch script {
	case unlockScript:
		if m.vals[key] == args[0].(string) {
			delete(m.vals, key)
			delete(m.ttls, key)
			return int64(1), nil
		}
		return int64(0), nil
	case hitScript:
		n, _ := strconv.ParseInt(m.vals[key], 10, 64)
		n++
		m.vals[key] = strconv.FormatInt(n, 10)
		if n == 1 || m.ttls[key] <= 0 {
			m.ttls[key] = time.Duration(args[0].(int64)) * time.Millisecond
		}
		return n, nil
	}
	panic("memStore: unknown script")
}

func (m *memStore) get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vals[key]
	return v, ok
}
