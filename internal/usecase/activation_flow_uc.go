package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"account-activation/internal/domain"
	"account-activation/internal/domain/model"
	"account-activation/internal/domain/ports/adapter"
	"account-activation/internal/domain/ports/repository"
	"account-activation/internal/infra/logging"
	"account-activation/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ ActivationFlowUseCase = (*activationFlowUC)(nil)

// ActivationFlowUseCase is the caller-side policy around the Activator: it
// resolves identities, refuses re-sends for verified accounts and delivers
// activation links.
type ActivationFlowUseCase interface {
	// Repeat issues a new code for the unverified account behind email and
	// mails the link. It fails with domain.ErrUserNotFound or
	// domain.ErrAlreadyActivated when the policy forbids a re-send.
	Repeat(ctx context.Context, email string) (*model.Activation, error)
	// Complete redeems code. Any failure, including storage errors, is false.
	Complete(ctx context.Context, code string) bool
	// Register creates an account and either pre-activates it or issues a
	// pending activation and mails the link.
	Register(ctx context.Context, email, name string, activated bool) (*model.User, *model.Activation, error)
}

// FlowSettings configures the re-send policy.
type FlowSettings struct {
	BaseURL      string
	ResendLimit  int
	ResendWindow time.Duration
	LockTTL      time.Duration
	Dev          bool
}

type activationFlowUC struct {
	users     repository.UserRepository
	activator Activator
	tm        repository.TransactionManager
	mailer    adapter.Mailer
	limiter   adapter.RateLimiter // optional
	locker    adapter.Locker      // optional
	settings  FlowSettings
	log       *zerolog.Logger
}

func NewActivationFlowUseCase(
	users repository.UserRepository,
	activator Activator,
	tm repository.TransactionManager,
	mailer adapter.Mailer,
	limiter adapter.RateLimiter,
	locker adapter.Locker,
	settings FlowSettings,
	logger *zerolog.Logger,
) *activationFlowUC {
	if settings.ResendLimit <= 0 {
		settings.ResendLimit = 5
	}
	if settings.ResendWindow <= 0 {
		settings.ResendWindow = 15 * time.Minute
	}
	if settings.LockTTL <= 0 {
		settings.LockTTL = 10 * time.Second
	}
	return &activationFlowUC{
		users:     users,
		activator: activator,
		tm:        tm,
		mailer:    mailer,
		limiter:   limiter,
		locker:    locker,
		settings:  settings,
		log:       logger,
	}
}

func resendKey(email string) string { return "rate_limit:activation_resend:" + email }
func userLockKey(id string) string  { return "lock:activation:" + id }

// ActivationLink is the URL a user follows to complete an activation.
func ActivationLink(baseURL, code string) string {
	return strings.TrimRight(baseURL, "/") + "/activation/complete/" + url.PathEscape(code)
}

func (f *activationFlowUC) Repeat(ctx context.Context, email string) (*model.Activation, error) {
	defer logging.TraceDuration(f.log, "ActivationFlowUC.Repeat")()

	email, err := model.NormalizeEmail(email)
	if err != nil {
		metrics.IncResend("invalid")
		return nil, err
	}
	l := logging.With(ctx, f.log).With().Str("email", logging.Redact(email, f.settings.Dev)).Logger()

	if f.limiter != nil {
		ok, err := f.limiter.Allow(ctx, resendKey(email), f.settings.ResendLimit, f.settings.ResendWindow)
		switch {
		case err != nil:
			// fail open
			l.Warn().Err(err).Msg("resend rate limiter unavailable")
		case !ok:
			metrics.IncResend("rate_limited")
			return nil, domain.ErrTooManyRequests
		}
	}

	user, err := f.users.FindByEmail(ctx, repository.NoTX, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.IncResend("user_not_found")
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	ctx = logging.WithUserID(ctx, user.ID)
	l = logging.With(ctx, f.log).With().Str("email", logging.Redact(email, f.settings.Dev)).Logger()

	activated, err := f.activator.IsActivated(ctx, user)
	if err != nil {
		return nil, err
	}
	if activated {
		metrics.IncResend("already_activated")
		return nil, domain.ErrAlreadyActivated
	}

	if f.locker != nil {
		key := userLockKey(user.ID)
		token, err := f.locker.TryLock(ctx, key, f.settings.LockTTL)
		switch {
		case errors.Is(err, domain.ErrActivationInProgress):
			metrics.IncResend("in_progress")
			return nil, err
		case err != nil:
			// fail open, Issue still serialises on the per-user advisory lock
			l.Warn().Err(err).Msg("activation locker unavailable")
		default:
			defer func() {
				if err := f.locker.Unlock(context.WithoutCancel(ctx), key, token); err != nil {
					l.Warn().Err(err).Msg("failed to release activation lock")
				}
			}()
		}
	}

	a, err := f.activator.Issue(ctx, user)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.IncResend("user_not_found")
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	if err := f.mailer.SendActivation(ctx, user, ActivationLink(f.settings.BaseURL, a.Code)); err != nil {
		l.Error().Err(err).Str("mailer", f.mailer.Name()).Msg("failed to deliver activation link")
		return nil, fmt.Errorf("send activation mail: %w", err)
	}

	metrics.IncResend("sent")
	l.Info().Msg("activation re-sent")
	return a, nil
}

func (f *activationFlowUC) Complete(ctx context.Context, code string) bool {
	defer logging.TraceDuration(f.log, "ActivationFlowUC.Complete")()

	code = strings.TrimSpace(code)
	if code == "" {
		return false
	}
	ok, err := f.activator.Complete(ctx, code)
	if err != nil {
		logging.With(ctx, f.log).Error().Err(err).Msg("activation completion failed")
		return false
	}
	return ok
}

// Register saves the account and its first activation in one transaction, so
// a failed issuance leaves no account behind. The link is mailed after commit.
func (f *activationFlowUC) Register(ctx context.Context, email, name string, activated bool) (*model.User, *model.Activation, error) {
	defer logging.TraceDuration(f.log, "ActivationFlowUC.Register")()

	user, err := model.NewUser("", email, name)
	if err != nil {
		return nil, nil, err
	}
	if _, err := f.users.FindByEmail(ctx, repository.NoTX, user.Email); err == nil {
		return nil, nil, domain.ErrAlreadyExists
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, nil, fmt.Errorf("find user: %w", err)
	}
	ctx = logging.WithUserID(ctx, user.ID)

	var a *model.Activation
	err = f.tm.WithTx(ctx, activationTxOpts, func(ctx context.Context, tx repository.Tx) error {
		if err := f.users.Save(ctx, tx, user); err != nil {
			return err
		}
		var err error
		if activated {
			a, err = f.activator.IssuePreActivated(ctx, user)
		} else {
			a, err = f.activator.Issue(ctx, user)
		}
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	if activated {
		return user, a, nil
	}

	if err := f.mailer.SendActivation(ctx, user, ActivationLink(f.settings.BaseURL, a.Code)); err != nil {
		logging.With(ctx, f.log).Error().Err(err).Str("mailer", f.mailer.Name()).Msg("failed to deliver activation link")
		return user, a, fmt.Errorf("send activation mail: %w", err)
	}
	return user, a, nil
}
