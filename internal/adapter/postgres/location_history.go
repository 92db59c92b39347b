package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Temutjin2k/campus-radar/internal/domain/models"
	"github.com/Temutjin2k/campus-radar/internal/domain/types"
	wrap "github.com/Temutjin2k/campus-radar/pkg/logger/wrapper"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LocationHistoryRepo is the append-only log of accepted location updates.
type LocationHistoryRepo struct {
	db *pgxpool.Pool
}

func NewLocationHistoryRepo(db *pgxpool.Pool) *LocationHistoryRepo {
	return &LocationHistoryRepo{
		db: db,
	}
}

func (r *LocationHistoryRepo) Append(ctx context.Context, p models.LocationHistoryPoint) (err error) {
	const op = "LocationHistoryRepo.Append"
	defer observe(op, time.Now(), &err)

	const q = `
		INSERT INTO location_history (user_id, latitude, longitude, accuracy, recorded_at)
		VALUES ($1, $2, $3, $4, $5);`

	if _, err = TxorDB(ctx, r.db).Exec(ctx, q, p.UserID.String(), p.Latitude, p.Longitude, p.Accuracy, p.RecordedAt); err != nil {
		ctx = wrap.WithAction(ctx, types.ActionDatabaseTransactionFailed)
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	return nil
}

// ListSince returns points recorded at or after since, most recent first.
func (r *LocationHistoryRepo) ListSince(ctx context.Context, userID uuid.UUID, since time.Time, limit int) (_ []models.LocationHistoryPoint, err error) {
	const op = "LocationHistoryRepo.ListSince"
	defer observe(op, time.Now(), &err)

	const q = `
		SELECT user_id, latitude, longitude, accuracy, recorded_at
		FROM location_history
		WHERE user_id = $1 AND recorded_at >= $2
		ORDER BY recorded_at DESC
		LIMIT $3;`

	rows, err := TxorDB(ctx, r.db).Query(ctx, q, userID.String(), since, limit)
	if err != nil {
		ctx = wrap.WithAction(ctx, types.ActionDatabaseQueryFailed)
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	defer rows.Close()

	out := make([]models.LocationHistoryPoint, 0)
	for rows.Next() {
		var p models.LocationHistoryPoint
		if err = rows.Scan(&p.UserID, &p.Latitude, &p.Longitude, &p.Accuracy, &p.RecordedAt); err != nil {
			return nil, wrap.Error(ctx, fmt.Errorf("%s: scan: %w", op, err))
		}
		out = append(out, p)
	}
	if err = rows.Err(); err != nil {
		ctx = wrap.WithAction(ctx, types.ActionDatabaseQueryFailed)
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	return out, nil
}
