package model

import (
	"time"

	"github.com/google/uuid"
)

// DefaultCodeLength is the length of codes issued when none is configured.
const DefaultCodeLength = 32

// Activation links a user to a one-time code. CompletedAt is nil while the
// activation is pending.
type Activation struct {
	ID          string
	UserID      string
	Code        string
	CreatedAt   time.Time
	CompletedAt *time.Time // Pointer to allow for NULL
}

func NewActivation(userID, code string, now time.Time) *Activation {
	return &Activation{
		ID:        uuid.NewString(),
		UserID:    userID,
		Code:      code,
		CreatedAt: now,
	}
}

func (a *Activation) IsCompleted() bool { return a != nil && a.CompletedAt != nil }

// Complete marks the activation as redeemed at now.
func (a *Activation) Complete(now time.Time) *Activation {
	t := now
	a.CompletedAt = &t
	return a
}

// IsExpired reports whether more than lifetime has passed since the code was
// issued. An activation exactly lifetime old is still valid.
func (a *Activation) IsExpired(now time.Time, lifetime time.Duration) bool {
	return now.Sub(a.CreatedAt) > lifetime
}
