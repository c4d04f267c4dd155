package repository

import (
	"context"

	"account-activation/internal/domain/model"
)

// UserRepository reads and writes accounts owned by the surrounding
// application. FindByEmail matches case-insensitively.
type UserRepository interface {
	Save(ctx context.Context, tx Tx, u *model.User) error
	FindByEmail(ctx context.Context, tx Tx, email string) (*model.User, error)
}
