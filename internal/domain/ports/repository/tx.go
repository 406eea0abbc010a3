package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

type Tx interface{}

var NoTX interface{}

// TransactionManager executes fn inside one database transaction and hands the
// transaction handle to fn as tx.
//
// Repositories receiving a non-nil tx run their statements on it and lock the rows
// they read (SELECT ... FOR UPDATE). Repositories MUST accept NoTX (nil) and then run
// on the pool without locking.
//
// fn returning an error rolls the transaction back; otherwise it is committed.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
