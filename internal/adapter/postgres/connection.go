package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Temutjin2k/campus-radar/internal/domain/types"
	wrap "github.com/Temutjin2k/campus-radar/pkg/logger/wrapper"
	pgpkg "github.com/Temutjin2k/campus-radar/pkg/postgres"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ConnectionRepo struct {
	db *pgxpool.Pool
}

func NewConnectionRepo(db *pgxpool.Pool) *ConnectionRepo {
	return &ConnectionRepo{
		db: db,
	}
}

// AreConnected reports whether a and b share an accepted connection in either direction.
func (r *ConnectionRepo) AreConnected(ctx context.Context, a, b uuid.UUID) (_ bool, err error) {
	const op = "ConnectionRepo.AreConnected"
	defer observe(op, time.Now(), &err)

	const q = `
		SELECT EXISTS (
			SELECT 1 FROM connections
			WHERE status = $3
			  AND ((requester_id = $1 AND addressee_id = $2)
			    OR (requester_id = $2 AND addressee_id = $1))
		);`

	var ok bool
	if err = TxorDB(ctx, r.db).QueryRow(ctx, q, a.String(), b.String(), string(types.ConnectionAccepted)).Scan(&ok); err != nil {
		ctx = wrap.WithAction(ctx, types.ActionDatabaseQueryFailed)
		return false, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	return ok, nil
}

// Create records a connection from requester to addressee, replacing the status of an existing pair.
func (r *ConnectionRepo) Create(ctx context.Context, requester, addressee uuid.UUID, status types.ConnectionStatus) (err error) {
	const op = "ConnectionRepo.Create"
	defer observe(op, time.Now(), &err)

	const q = `
		INSERT INTO connections (requester_id, addressee_id, status)
		VALUES ($1, $2, $3)
		ON CONFLICT (requester_id, addressee_id) DO UPDATE SET status = EXCLUDED.status, updated_at = now();`

	if _, err = TxorDB(ctx, r.db).Exec(ctx, q, requester.String(), addressee.String(), string(status)); err != nil {
		if pgpkg.IsForeignKeyViolation(err) {
			return fmt.Errorf("%s: %w", op, types.ErrUserNotFound)
		}
		ctx = wrap.WithAction(ctx, types.ActionDatabaseTransactionFailed)
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	return nil
}
