package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"account-activation/internal/domain"
	"account-activation/internal/domain/model"
)

const (
	statusSuccess          = "success"
	statusError            = "error"
	statusUserNotFound     = "user_not_found"
	statusAlreadyActivated = "already_activated"
	statusInvalidArgument  = "invalid_argument"
	statusTooManyRequests  = "too_many_requests"
	statusInProgress       = "in_progress"
	statusCaptchaFailed    = "captcha_failed"
)

// envelope is the body of every JSON response.
type envelope struct {
	Status        string               `json:"status"`
	Data          any                  `json:"data,omitempty"`
	Notifications []model.Notification `json:"notifications,omitempty"`
}

func (e envelope) notify(n model.Notification) envelope {
	e.Notifications = append(e.Notifications, n)
	return e
}

func writeJSON(w http.ResponseWriter, code int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

// errorResponse maps a use-case error to an HTTP status and response body.
func errorResponse(err error) (int, envelope) {
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, envelope{Status: statusUserNotFound}.
			notify(model.Danger("No account is registered with this email address."))
	case errors.Is(err, domain.ErrAlreadyActivated):
		return http.StatusConflict, envelope{Status: statusAlreadyActivated}.
			notify(model.Danger("This account has already been activated."))
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusUnprocessableEntity, envelope{Status: statusInvalidArgument}.
			notify(model.Danger("Please enter a valid email address."))
	case errors.Is(err, domain.ErrTooManyRequests):
		return http.StatusTooManyRequests, envelope{Status: statusTooManyRequests}.
			notify(model.Warning("Too many activation emails requested. Please try again later."))
	case errors.Is(err, domain.ErrActivationInProgress):
		return http.StatusConflict, envelope{Status: statusInProgress}.
			notify(model.Warning("An activation email is already being sent."))
	default:
		return http.StatusInternalServerError, envelope{Status: statusError}.
			notify(model.Danger("Something went wrong. Please try again later."))
	}
}
