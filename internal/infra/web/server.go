package web

import (
	"net/http"
	"time"

	"account-activation/internal/domain/ports/adapter"
	"account-activation/internal/usecase"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Server exposes the activation flows over HTTP.
type Server struct {
	flowUC     usecase.ActivationFlowUseCase
	settingsUC usecase.SettingsUseCase
	flash      *Flasher
	captcha    adapter.CaptchaVerifier
	homeURL    string
	timeout    time.Duration
	log        *zerolog.Logger
}

func NewServer(
	flowUC usecase.ActivationFlowUseCase,
	settingsUC usecase.SettingsUseCase,
	flash *Flasher,
	captcha adapter.CaptchaVerifier,
	homeURL string,
	timeout time.Duration,
	logger *zerolog.Logger,
) *Server {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Server{
		flowUC:     flowUC,
		settingsUC: settingsUC,
		flash:      flash,
		captcha:    captcha,
		homeURL:    homeURL,
		timeout:    timeout,
		log:        logger,
	}
}

// Routes builds the router with the middleware chain applied.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(TraceID(), RequestLog(s.log), Recover(s.log), Timeout(s.timeout))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/activation", func(r chi.Router) {
		r.Get("/sent", s.handleSent)
		r.With(RequireCaptcha(s.captcha, s.log)).Post("/repeat", s.handleRepeat)
		r.Get("/complete/{code}", s.handleComplete)
	})
	r.Get("/flash", s.handleFlash)
	return r
}
