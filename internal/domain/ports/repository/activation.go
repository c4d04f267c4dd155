package repository

import (
	"context"

	"account-activation/internal/domain/model"
)

// ActivationRepository is the port for persisting activations. It holds no
// business rules.
type ActivationRepository interface {
	// Create inserts a new activation.
	Create(ctx context.Context, tx Tx, a *model.Activation) error
	// FindByCode returns the activation holding code or domain.ErrNotFound.
	// Inside a transaction the row is locked for update.
	FindByCode(ctx context.Context, tx Tx, code string) (*model.Activation, error)
	// ListByUser returns every activation of the user, oldest first.
	ListByUser(ctx context.Context, tx Tx, userID string) ([]*model.Activation, error)
	// DeleteByUser removes every activation of the user.
	DeleteByUser(ctx context.Context, tx Tx, userID string) error
	// Update persists the mutable fields of an existing activation.
	Update(ctx context.Context, tx Tx, a *model.Activation) error
}
