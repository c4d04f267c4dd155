package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"account-activation/internal/domain"
	"account-activation/internal/domain/model"
	"account-activation/internal/domain/ports/adapter"
	"account-activation/internal/domain/ports/repository"
	"account-activation/internal/infra/logging"
	"account-activation/internal/infra/metrics"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ Activator = (*activationUC)(nil)

// Activator owns the lifecycle of activation codes. It is the only authority
// on code validity, expiry and completion.
type Activator interface {
	// Issue replaces every activation of user with a fresh pending one.
	Issue(ctx context.Context, user *model.User) (*model.Activation, error)
	// IssuePreActivated records an already completed activation for user
	// without touching earlier ones.
	IssuePreActivated(ctx context.Context, user *model.User) (*model.Activation, error)
	// Complete redeems code. It reports false, without mutating anything, for
	// unknown, expired and already completed codes.
	Complete(ctx context.Context, code string) (bool, error)
	IsActivated(ctx context.Context, user *model.User) (bool, error)
	// FindCompletedActivation returns the oldest completed activation of user,
	// or nil when there is none.
	FindCompletedActivation(ctx context.Context, user *model.User) (*model.Activation, error)
	IsExpired(a *model.Activation) bool
}

// ActivationSettings tunes code issuance and expiry.
type ActivationSettings struct {
	Lifetime    time.Duration
	CodeLength  int
	MaxAttempts int
}

type activationUC struct {
	activations repository.ActivationRepository
	codes       adapter.CodeGenerator
	tm          repository.TransactionManager
	settings    ActivationSettings
	now         func() time.Time
	log         *zerolog.Logger
}

func NewActivationUseCase(
	activations repository.ActivationRepository,
	codes adapter.CodeGenerator,
	tm repository.TransactionManager,
	settings ActivationSettings,
	logger *zerolog.Logger,
) *activationUC {
	if settings.Lifetime <= 0 {
		settings.Lifetime = time.Hour
	}
	if settings.CodeLength <= 0 {
		settings.CodeLength = model.DefaultCodeLength
	}
	if settings.MaxAttempts <= 0 {
		settings.MaxAttempts = 10
	}
	return &activationUC{
		activations: activations,
		codes:       codes,
		tm:          tm,
		settings:    settings,
		now:         time.Now,
		log:         logger,
	}
}

// WithClock replaces the time source.
func (uc *activationUC) WithClock(now func() time.Time) *activationUC {
	uc.now = now
	return uc
}

var activationTxOpts = pgx.TxOptions{IsoLevel: pgx.ReadCommitted}

func (uc *activationUC) Issue(ctx context.Context, user *model.User) (*model.Activation, error) {
	defer logging.TraceDuration(uc.log, "ActivationUC.Issue")()
	if user.IsZero() {
		return nil, domain.ErrInvalidArgument
	}

	var issued *model.Activation
	err := uc.tm.WithTx(ctx, activationTxOpts, func(ctx context.Context, tx repository.Tx) error {
		if err := uc.activations.DeleteByUser(ctx, tx, user.ID); err != nil {
			return fmt.Errorf("delete previous activations: %w", err)
		}
		code, err := uc.uniqueCode(ctx, tx)
		if err != nil {
			return err
		}
		a := model.NewActivation(user.ID, code, uc.now())
		if err := uc.activations.Create(ctx, tx, a); err != nil {
			return fmt.Errorf("create activation: %w", err)
		}
		issued = a
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.IncActivationIssued("pending")
	logging.With(logging.WithUserID(ctx, user.ID), uc.log).Info().Str("activation_id", issued.ID).Msg("activation issued")
	return issued, nil
}

func (uc *activationUC) IssuePreActivated(ctx context.Context, user *model.User) (*model.Activation, error) {
	defer logging.TraceDuration(uc.log, "ActivationUC.IssuePreActivated")()
	if user.IsZero() {
		return nil, domain.ErrInvalidArgument
	}

	var issued *model.Activation
	err := uc.tm.WithTx(ctx, activationTxOpts, func(ctx context.Context, tx repository.Tx) error {
		code, err := uc.uniqueCode(ctx, tx)
		if err != nil {
			return err
		}
		now := uc.now()
		a := model.NewActivation(user.ID, code, now).Complete(now)
		if err := uc.activations.Create(ctx, tx, a); err != nil {
			return fmt.Errorf("create activation: %w", err)
		}
		issued = a
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.IncActivationIssued("preactivated")
	logging.With(logging.WithUserID(ctx, user.ID), uc.log).Info().Str("activation_id", issued.ID).Msg("pre-activated account")
	return issued, nil
}

// uniqueCode draws codes until one is not held by any stored activation,
// giving up after MaxAttempts collisions.
func (uc *activationUC) uniqueCode(ctx context.Context, tx repository.Tx) (string, error) {
	for attempt := 1; attempt <= uc.settings.MaxAttempts; attempt++ {
		code, err := uc.codes.Generate(uc.settings.CodeLength)
		if err != nil {
			return "", fmt.Errorf("generate activation code: %w", err)
		}
		_, err = uc.activations.FindByCode(ctx, tx, code)
		if errors.Is(err, domain.ErrNotFound) {
			return code, nil
		}
		if err != nil {
			return "", fmt.Errorf("check activation code: %w", err)
		}
		metrics.IncCodeCollision()
		uc.log.Warn().Int("attempt", attempt).Msg("activation code collision")
	}
	uc.log.Error().Int("max_attempts", uc.settings.MaxAttempts).Msg("activation code space exhausted")
	return "", domain.ErrCodeSpaceExhausted
}

func (uc *activationUC) Complete(ctx context.Context, code string) (bool, error) {
	defer logging.TraceDuration(uc.log, "ActivationUC.Complete")()

	var completed bool
	err := uc.tm.WithTx(ctx, activationTxOpts, func(ctx context.Context, tx repository.Tx) error {
		a, err := uc.activations.FindByCode(ctx, tx, code)
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("find activation: %w", err)
		}
		now := uc.now()
		if a.IsExpired(now, uc.settings.Lifetime) || a.IsCompleted() {
			return nil
		}
		if err := uc.activations.Update(ctx, tx, a.Complete(now)); err != nil {
			return fmt.Errorf("complete activation: %w", err)
		}
		completed = true
		return nil
	})
	if err != nil {
		return false, err
	}

	metrics.IncActivationCompletion(completed)
	return completed, nil
}

func (uc *activationUC) IsActivated(ctx context.Context, user *model.User) (bool, error) {
	defer logging.TraceDuration(uc.log, "ActivationUC.IsActivated")()
	a, err := uc.FindCompletedActivation(ctx, user)
	if err != nil {
		return false, err
	}
	return a != nil, nil
}

func (uc *activationUC) FindCompletedActivation(ctx context.Context, user *model.User) (*model.Activation, error) {
	if user.IsZero() {
		return nil, domain.ErrInvalidArgument
	}
	list, err := uc.activations.ListByUser(ctx, repository.NoTX, user.ID)
	if err != nil {
		return nil, fmt.Errorf("list activations: %w", err)
	}
	for _, a := range list {
		if a.IsCompleted() {
			return a, nil
		}
	}
	return nil, nil
}

func (uc *activationUC) IsExpired(a *model.Activation) bool {
	return a.IsExpired(uc.now(), uc.settings.Lifetime)
}
