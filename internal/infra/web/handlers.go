package web

import (
	"encoding/json"
	"io"
	"net/http"

	"account-activation/internal/domain/model"
	"account-activation/internal/infra/logging"

	"github.com/go-chi/chi/v5"
)

type repeatRequest struct {
	Email string `json:"email"`
}

func (s *Server) handleSent(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, envelope{Status: statusSuccess, Data: s.settingsUC.SentPage(r.Context())})
}

func (s *Server) handleRepeat(w http.ResponseWriter, r *http.Request) {
	var req repeatRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, envelope{Status: statusInvalidArgument}.
			notify(model.Danger("Please enter a valid email address.")))
		return
	}

	if _, err := s.flowUC.Repeat(r.Context(), req.Email); err != nil {
		code, body := errorResponse(err)
		if code == http.StatusInternalServerError {
			logging.With(r.Context(), s.log).Error().Err(err).Msg("activation resend failed")
		}
		writeJSON(w, code, body)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Status: statusSuccess}.
		notify(model.Success("A new activation link has been sent to your email address.")))
}

func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	n := model.Danger("The activation link is invalid or has expired.")
	if s.flowUC.Complete(r.Context(), chi.URLParam(r, "code")) {
		n = model.Success("Your account has been activated.")
	}
	if err := s.flash.Set(w, n); err != nil {
		logging.With(r.Context(), s.log).Error().Err(err).Msg("failed to set flash notification")
	}
	http.Redirect(w, r, s.homeURL, http.StatusSeeOther)
}

func (s *Server) handleFlash(w http.ResponseWriter, r *http.Request) {
	n, ok := s.flash.Pop(w, r)
	if !ok {
		writeJSON(w, http.StatusOK, envelope{Status: statusSuccess})
		return
	}
	writeJSON(w, http.StatusOK, envelope{Status: statusSuccess, Data: n})
}
