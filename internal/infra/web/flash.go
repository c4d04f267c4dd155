package web

import (
	"errors"
	"net/http"
	"time"

	"account-activation/internal/domain/model"

	"github.com/golang-jwt/jwt/v5"
)

// FlashConfig configures the one-shot notification cookie.
type FlashConfig struct {
	HMACSecret []byte
	CookieName string
	Secure     bool
	TTL        time.Duration
}

// Flasher carries a single notification across a redirect in a signed cookie.
// It keeps no state of its own, so one instance serves every request.
type Flasher struct {
	cfg FlashConfig
	now func() time.Time
}

func NewFlasher(secret, cookieName string, secure bool, ttl time.Duration) *Flasher {
	if cookieName == "" {
		cookieName = "message"
	}
	if ttl <= 0 {
		ttl = 1337 * time.Minute
	}
	return &Flasher{
		cfg: FlashConfig{
			HMACSecret: []byte(secret),
			CookieName: cookieName,
			Secure:     secure,
			TTL:        ttl,
		},
		now: time.Now,
	}
}

type flashClaims struct {
	Type model.NotificationType `json:"type"`
	Text string                 `json:"text"`
	jwt.RegisteredClaims
}

// Set replaces any pending notification with n.
func (f *Flasher) Set(w http.ResponseWriter, n model.Notification) error {
	if !n.Type.Valid() {
		return errors.New("invalid notification type")
	}
	now := f.now()
	claims := flashClaims{
		Type: n.Type,
		Text: n.Message,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(f.cfg.TTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(f.cfg.HMACSecret)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     f.cfg.CookieName,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(f.cfg.TTL.Seconds()),
		HttpOnly: false, // the front-end checks for its presence
		Secure:   f.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Pop returns the pending notification, if any, and clears the cookie.
// Tampered or expired cookies are dropped silently.
func (f *Flasher) Pop(w http.ResponseWriter, r *http.Request) (model.Notification, bool) {
	c, err := r.Cookie(f.cfg.CookieName)
	if err != nil {
		return model.Notification{}, false
	}
	f.clear(w)

	claims := &flashClaims{}
	tkn, err := jwt.ParseWithClaims(c.Value, claims, func(t *jwt.Token) (any, error) {
		return f.cfg.HMACSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(f.now))
	if err != nil || !tkn.Valid || !claims.Type.Valid() {
		return model.Notification{}, false
	}
	return model.Notification{Type: claims.Type, Message: claims.Text}, true
}

func (f *Flasher) clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     f.cfg.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   f.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
