package postgres

import (
	"context"
	"time"

	"github.com/Temutjin2k/campus-radar/pkg/metrics"
	"github.com/Temutjin2k/campus-radar/pkg/trm"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const storeName = "postgres"

type Querier interface {
	Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, query string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) pgx.Row
}

// TxorDB returns the transaction carried by ctx, or the pool when there is none.
func TxorDB(ctx context.Context, db *pgxpool.Pool) Querier {
	tx, ok := ctx.Value(trm.TxKey).(pgx.Tx)
	if !ok {
		return db
	}
	return tx
}

func observe(op string, start time.Time, err *error) {
	metrics.RecordDatabaseQuery(storeName, op, *err, time.Since(start))
}
