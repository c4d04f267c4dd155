// File: internal/infra/adapters/captcha/recaptcha.go
package captcha

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"account-activation/internal/domain/ports/adapter"
)

var _ adapter.CaptchaVerifier = (*RecaptchaVerifier)(nil)

const DefaultVerifyURL = "https://www.google.com/recaptcha/api/siteverify"

// RecaptchaVerifier implements adapter.CaptchaVerifier against a
// reCAPTCHA-compatible siteverify endpoint (reCAPTCHA, hCaptcha, Turnstile).
type RecaptchaVerifier struct {
	siteKey   string
	secret    string
	verifyURL string
	client    *http.Client
}

func NewRecaptchaVerifier(siteKey, secret, verifyURL string) (*RecaptchaVerifier, error) {
	if siteKey == "" || secret == "" {
		return nil, errors.New("captcha site key and secret are required")
	}
	if verifyURL == "" {
		verifyURL = DefaultVerifyURL
	}
	if _, err := url.Parse(verifyURL); err != nil {
		return nil, fmt.Errorf("invalid verify url: %w", err)
	}
	return &RecaptchaVerifier{
		siteKey:   siteKey,
		secret:    secret,
		verifyURL: verifyURL,
		client:    &http.Client{Timeout: 5 * time.Second},
	}, nil
}

func (v *RecaptchaVerifier) SiteKey() string { return v.siteKey }

// Verify posts the token to the siteverify endpoint. An empty token is
// rejected without a round trip.
func (v *RecaptchaVerifier) Verify(ctx context.Context, token, remoteIP string) (bool, error) {
	if token == "" {
		return false, nil
	}
	form := url.Values{
		"secret":   {v.secret},
		"response": {token},
	}
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := v.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("captcha verify: unexpected status %d", resp.StatusCode)
	}
	var out struct {
		Success    bool     `json:"success"`
		ErrorCodes []string `json:"error-codes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, fmt.Errorf("captcha verify: %w", err)
	}
	return out.Success, nil
}
