//go:build !integration

package web

import (
	"context"
	"io"
	"sync"

	"account-activation/internal/domain/model"

	"github.com/rs/zerolog"
)

type mockFlowUC struct {
	mu          sync.Mutex
	RepeatFunc  func(ctx context.Context, email string) (*model.Activation, error)
	CompleteOK  map[string]bool
	RepeatCalls []string
	Completed   []string
}

func (m *mockFlowUC) Repeat(ctx context.Context, email string) (*model.Activation, error) {
	m.mu.Lock()
	m.RepeatCalls = append(m.RepeatCalls, email)
	m.mu.Unlock()
	if m.RepeatFunc != nil {
		return m.RepeatFunc(ctx, email)
	}
	return &model.Activation{Code: "CODE"}, nil
}

func (m *mockFlowUC) Complete(ctx context.Context, code string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Completed = append(m.Completed, code)
	return m.CompleteOK[code]
}

func (m *mockFlowUC) Register(ctx context.Context, email, name string, activated bool) (*model.User, *model.Activation, error) {
	return nil, nil, nil
}

type mockSettingsUC struct {
	info model.SentPageInfo
}

func (m mockSettingsUC) SentPage(ctx context.Context) model.SentPageInfo { return m.info }

type mockVerifier struct {
	key       string
	Accept    string
	Err       error
	Tokens    []string
	RemoteIPs []string
}

func (m *mockVerifier) SiteKey() string { return m.key }

func (m *mockVerifier) Verify(ctx context.Context, token, remoteIP string) (bool, error) {
	m.Tokens = append(m.Tokens, token)
	m.RemoteIPs = append(m.RemoteIPs, remoteIP)
	if m.Err != nil {
		return false, m.Err
	}
	return token == m.Accept, nil
}

func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}
