package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

type Tx interface{}

var NoTX interface{}

// TransactionManager runs fn inside one database transaction and hands the
// infra-defined handle (pgx.Tx for Postgres) to repositories through tx.
// Repositories must accept a nil tx and then run outside a transaction;
// given a transaction they lock rows they read (SELECT ... FOR UPDATE).
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
