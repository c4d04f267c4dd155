package web

import (
	"bytes"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"

	"account-activation/internal/domain/model"
	"account-activation/internal/domain/ports/adapter"
	"account-activation/internal/infra/logging"

	"github.com/rs/zerolog"
)

const (
	captchaHeader = "X-Captcha-Token"
	maxBodyBytes  = 1 << 20
)

// RequireCaptcha rejects requests whose captcha token the verifier does not
// accept. The token comes from the X-Captcha-Token header or the "captcha"
// field of a JSON body; the body is restored for the next handler.
func RequireCaptcha(verifier adapter.CaptchaVerifier, logger *zerolog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := strings.TrimSpace(r.Header.Get(captchaHeader))
			if token == "" && r.Body != nil {
				body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
				if err != nil {
					writeJSON(w, http.StatusBadRequest, envelope{Status: statusInvalidArgument})
					return
				}
				r.Body = io.NopCloser(bytes.NewReader(body))
				var payload struct {
					Captcha string `json:"captcha"`
				}
				if json.Unmarshal(body, &payload) == nil {
					token = strings.TrimSpace(payload.Captcha)
				}
			}

			ok, err := verifier.Verify(r.Context(), token, clientIP(r))
			if err != nil {
				logging.With(r.Context(), logger).Warn().Err(err).Msg("captcha verification failed")
			}
			if !ok {
				writeJSON(w, http.StatusUnprocessableEntity, envelope{Status: statusCaptchaFailed}.
					notify(model.Danger("Please confirm that you are not a robot.")))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
