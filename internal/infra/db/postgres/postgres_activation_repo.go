package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"account-activation/internal/domain"
	"account-activation/internal/domain/model"
	"account-activation/internal/domain/ports/repository"
)

// Ensure implementation satisfies the interface.
var _ repository.ActivationRepository = (*activationRepo)(nil)

type activationRepo struct {
	pool *pgxpool.Pool
}

func NewActivationRepo(pool *pgxpool.Pool) repository.ActivationRepository {
	return &activationRepo{pool: pool}
}

const activationColumns = `id, user_id, code, created_at, completed_at`

func (r *activationRepo) Create(ctx context.Context, tx repository.Tx, a *model.Activation) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	const q = `
INSERT INTO activations (id, user_id, code, created_at, completed_at)
VALUES ($1, $2, $3, $4, $5);`
	_, err := execSQL(ctx, r.pool, tx, q, a.ID, a.UserID, a.Code, a.CreatedAt, a.CompletedAt)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) || errors.Is(err, domain.ErrInvalidExecContext) {
			return err
		}
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		if isForeignKeyViolation(err) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("%w: create activation: %v", domain.ErrOperationFailed, err)
	}
	return nil
}

// FindByCode returns the activation holding code. When called inside a
// transaction the row is locked so concurrent redemptions serialise.
func (r *activationRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.Activation, error) {
	q := `SELECT ` + activationColumns + ` FROM activations WHERE code = $1`
	if inTx(tx) {
		q += " FOR UPDATE"
	}
	row, err := pickRow(ctx, r.pool, tx, q+";", code)
	if err != nil {
		return nil, err
	}

	var a model.Activation
	if err := row.Scan(&a.ID, &a.UserID, &a.Code, &a.CreatedAt, &a.CompletedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &a, nil
}

func (r *activationRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Activation, error) {
	const q = `
SELECT ` + activationColumns + `
  FROM activations
 WHERE user_id = $1
 ORDER BY created_at ASC, id ASC;`
	rows, err := queryRows(ctx, r.pool, tx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Activation
	for rows.Next() {
		var a model.Activation
		if err := rows.Scan(&a.ID, &a.UserID, &a.Code, &a.CreatedAt, &a.CompletedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list activations: %v", domain.ErrOperationFailed, err)
	}
	return out, nil
}

// DeleteByUser removes all activations of the user. Inside a transaction it
// first takes a per-user advisory lock held until commit, so concurrent
// issuance for the same user cannot interleave delete and create.
func (r *activationRepo) DeleteByUser(ctx context.Context, tx repository.Tx, userID string) error {
	if inTx(tx) {
		if _, err := execSQL(ctx, r.pool, tx, `SELECT pg_advisory_xact_lock($1);`, hashToInt64(userID)); err != nil {
			return fmt.Errorf("%w: lock user activations: %v", domain.ErrOperationFailed, err)
		}
	}
	_, err := execSQL(ctx, r.pool, tx, `DELETE FROM activations WHERE user_id = $1;`, userID)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) || errors.Is(err, domain.ErrInvalidExecContext) {
			return err
		}
		return fmt.Errorf("%w: delete activations: %v", domain.ErrOperationFailed, err)
	}
	return nil
}

func (r *activationRepo) Update(ctx context.Context, tx repository.Tx, a *model.Activation) error {
	const q = `UPDATE activations SET code = $2, completed_at = $3 WHERE id = $1;`
	tag, err := execSQL(ctx, r.pool, tx, q, a.ID, a.Code, a.CompletedAt)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) || errors.Is(err, domain.ErrInvalidExecContext) {
			return err
		}
		return fmt.Errorf("%w: update activation: %v", domain.ErrOperationFailed, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
