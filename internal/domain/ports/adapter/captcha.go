package adapter

import "context"

// CaptchaVerifier checks a client-side captcha response token.
type CaptchaVerifier interface {
	// SiteKey is the public key rendered by the front-end; empty when disabled.
	SiteKey() string
	Verify(ctx context.Context, token, remoteIP string) (bool, error)
}
