package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

type Tx interface{}

var NoTX interface{}

// TransactionManager executes fn inside a storage transaction and hands the
// transaction handle to fn as tx.
//
// The concrete type of tx is infra-defined (pgx.Tx for Postgres). Repositories
// MUST accept a nil tx and fall back to the non-transactional path.
//
//	tm.WithTx(ctx, opts, func(ctx context.Context, tx Tx) error {
//	    if err := activations.DeleteByUser(ctx, tx, userID); err != nil {
//	        return err
//	    }
//	    return activations.Create(ctx, tx, a)
//	})
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
