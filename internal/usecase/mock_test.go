//go:build !integration

package usecase

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"account-activation/internal/domain"
	"account-activation/internal/domain/model"
	"account-activation/internal/domain/ports/adapter"
	"account-activation/internal/domain/ports/repository"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

// ---- In-memory ActivationRepository ----

type MockActivationRepo struct {
	mu   sync.Mutex
	byID map[string]*model.Activation

	Creates int
	Deletes int
	Updates int

	CreateFunc     func(ctx context.Context, tx repository.Tx, a *model.Activation) error
	FindByCodeFunc func(ctx context.Context, tx repository.Tx, code string) (*model.Activation, error)
	ListByUserFunc func(ctx context.Context, tx repository.Tx, userID string) ([]*model.Activation, error)
	UpdateFunc     func(ctx context.Context, tx repository.Tx, a *model.Activation) error
}

var _ repository.ActivationRepository = (*MockActivationRepo)(nil)

func NewMockActivationRepo() *MockActivationRepo {
	return &MockActivationRepo{byID: make(map[string]*model.Activation)}
}

func cloneActivation(a *model.Activation) *model.Activation {
	cp := *a
	if a.CompletedAt != nil {
		t := *a.CompletedAt
		cp.CompletedAt = &t
	}
	return &cp
}

// Seed stores a copy of a without counting it as a Create.
func (r *MockActivationRepo) Seed(a *model.Activation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[a.ID] = cloneActivation(a)
}

func (r *MockActivationRepo) Create(ctx context.Context, tx repository.Tx, a *model.Activation) error {
	if r.CreateFunc != nil {
		return r.CreateFunc(ctx, tx, a)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if existing.Code == a.Code {
			return domain.ErrAlreadyExists
		}
	}
	r.Creates++
	r.byID[a.ID] = cloneActivation(a)
	return nil
}

func (r *MockActivationRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.Activation, error) {
	if r.FindByCodeFunc != nil {
		return r.FindByCodeFunc(ctx, tx, code)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.byID {
		if a.Code == code {
			return cloneActivation(a), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *MockActivationRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Activation, error) {
	if r.ListByUserFunc != nil {
		return r.ListByUserFunc(ctx, tx, userID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Activation
	for _, a := range r.byID {
		if a.UserID == userID {
			out = append(out, cloneActivation(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *MockActivationRepo) DeleteByUser(ctx context.Context, tx repository.Tx, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Deletes++
	for id, a := range r.byID {
		if a.UserID == userID {
			delete(r.byID, id)
		}
	}
	return nil
}

func (r *MockActivationRepo) Update(ctx context.Context, tx repository.Tx, a *model.Activation) error {
	if r.UpdateFunc != nil {
		return r.UpdateFunc(ctx, tx, a)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[a.ID]; !ok {
		return domain.ErrNotFound
	}
	r.Updates++
	r.byID[a.ID] = cloneActivation(a)
	return nil
}

func (r *MockActivationRepo) All() []*model.Activation {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Activation, 0, len(r.byID))
	for _, a := range r.byID {
		out = append(out, cloneActivation(a))
	}
	return out
}

// ---- In-memory UserRepository ----

type MockUserRepo struct {
	mu      sync.Mutex
	byID    map[string]*model.User
	SaveErr error
	SavedTx []repository.Tx

	FindByEmailFunc func(ctx context.Context, tx repository.Tx, email string) (*model.User, error)
}

var _ repository.UserRepository = (*MockUserRepo)(nil)

func NewMockUserRepo() *MockUserRepo {
	return &MockUserRepo{byID: make(map[string]*model.User)}
}

func (r *MockUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.SavedTx = append(r.SavedTx, tx)
	if r.SaveErr != nil {
		return r.SaveErr
	}
	cp := *u
	r.byID[u.ID] = &cp
	return nil
}

func (r *MockUserRepo) FindByEmail(ctx context.Context, tx repository.Tx, email string) (*model.User, error) {
	if r.FindByEmailFunc != nil {
		return r.FindByEmailFunc(ctx, tx, email)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

// ---- Code generators ----

// seqCodeGenerator returns the queued codes in order, then numbered codes.
type seqCodeGenerator struct {
	mu    sync.Mutex
	queue []string
	n     int
	Calls int
	Err   error
}

var _ adapter.CodeGenerator = (*seqCodeGenerator)(nil)

func newSeqCodeGenerator(queue ...string) *seqCodeGenerator {
	return &seqCodeGenerator{queue: queue}
}

func (g *seqCodeGenerator) Generate(length int) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Calls++
	if g.Err != nil {
		return "", g.Err
	}
	if len(g.queue) > 0 {
		c := g.queue[0]
		g.queue = g.queue[1:]
		return c, nil
	}
	g.n++
	return fmt.Sprintf("CODE%0*d", length-4, g.n), nil
}

// ---- Adapters ----

type MockMailer struct {
	mu    sync.Mutex
	Sent  []string // links
	To    []string // addresses
	Err   error
	Calls int
}

var _ adapter.Mailer = (*MockMailer)(nil)

func (m *MockMailer) Name() string { return "mock" }

func (m *MockMailer) SendActivation(ctx context.Context, to *model.User, link string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, link)
	m.To = append(m.To, to.Email)
	return nil
}

type MockRateLimiter struct {
	AllowFunc func(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	Keys      []string
}

func (m *MockRateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	m.Keys = append(m.Keys, key)
	if m.AllowFunc != nil {
		return m.AllowFunc(ctx, key, limit, window)
	}
	return true, nil
}

// ---- In-memory Locker (implements adapter.Locker port) ----

type MockLocker struct {
	mu       sync.Mutex
	held     map[string]string
	n        int
	ErrOn    map[string]error
	Unlocked []string
}

func NewMockLocker() *MockLocker {
	return &MockLocker{held: map[string]string{}, ErrOn: map[string]error{}}
}

func (l *MockLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err, ok := l.ErrOn[key]; ok {
		return "", err
	}
	if _, busy := l.held[key]; busy {
		return "", domain.ErrActivationInProgress
	}
	l.n++
	token := fmt.Sprintf("tok-%d", l.n)
	l.held[key] = token
	return token, nil
}

func (l *MockLocker) Unlock(ctx context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] == token {
		delete(l.held, key)
		l.Unlocked = append(l.Unlocked, key)
	}
	return nil
}

// ---- Transactions ----

type MockTxManager struct {
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
	Calls      int
	Begun      int
}

// mockTx is the handle MockTxManager passes to callbacks.
type mockTx struct{ id int }

type mockTxKey struct{}

func NewMockTxManager() *MockTxManager {
	return &MockTxManager{}
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

// WithTx runs fn immediately with a fresh *mockTx, or with the one already
// carried by ctx, unless WithTxFunc overrides it.
func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	m.Calls++
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	if outer, ok := ctx.Value(mockTxKey{}).(*mockTx); ok {
		return fn(ctx, outer)
	}
	m.Begun++
	tx := &mockTx{id: m.Begun}
	return fn(context.WithValue(ctx, mockTxKey{}, tx), tx)
}

// ---- Misc ----

// fixedClock is a controllable time source.
type fixedClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFixedClock(t time.Time) *fixedClock { return &fixedClock{t: t} }

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}
