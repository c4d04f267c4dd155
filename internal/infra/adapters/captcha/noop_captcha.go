package captcha

import (
	"context"

	"account-activation/internal/domain/ports/adapter"
)

var _ adapter.CaptchaVerifier = (*NoopVerifier)(nil)

// NoopVerifier accepts every request. Used when captcha is disabled.
type NoopVerifier struct{}

func NewNoopVerifier() *NoopVerifier { return &NoopVerifier{} }

func (NoopVerifier) SiteKey() string { return "" }

func (NoopVerifier) Verify(ctx context.Context, token, remoteIP string) (bool, error) {
	return true, nil
}
