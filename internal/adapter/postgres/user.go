package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Temutjin2k/campus-radar/internal/domain/models"
	"github.com/Temutjin2k/campus-radar/internal/domain/types"
	wrap "github.com/Temutjin2k/campus-radar/pkg/logger/wrapper"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepo struct {
	db *pgxpool.Pool
}

func NewUserRepo(db *pgxpool.Pool) *UserRepo {
	return &UserRepo{
		db: db,
	}
}

// Create inserts a directory record. A zero u.ID lets the database assign one.
func (r *UserRepo) Create(ctx context.Context, u *models.User) (_ uuid.UUID, err error) {
	const op = "UserRepo.Create"
	defer observe(op, time.Now(), &err)

	if u == nil {
		return uuid.Nil, errors.New("nil user")
	}

	const q = `
		INSERT INTO users (id, first_name, last_name, email, profile_picture_url, bio, program, last_seen)
		VALUES (COALESCE(NULLIF($1, '00000000-0000-0000-0000-000000000000')::uuid, gen_random_uuid()), $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (email) DO UPDATE SET email = EXCLUDED.email
		RETURNING id, created_at;`

	var id uuid.UUID
	err = TxorDB(ctx, r.db).QueryRow(ctx, q,
		u.ID.String(), u.FirstName, u.LastName, u.Email, u.ProfilePictureURL, u.Bio, u.Program, u.LastSeen,
	).Scan(&id, &u.CreatedAt)
	if err != nil {
		ctx = wrap.WithAction(ctx, types.ActionDatabaseTransactionFailed)
		return uuid.Nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	u.ID = id
	return id, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (_ *models.User, err error) {
	const op = "UserRepo.GetByID"
	defer observe(op, time.Now(), &err)

	const q = `
		SELECT id, first_name, last_name, email, profile_picture_url, bio, program, last_seen, created_at
		FROM users
		WHERE id = $1;`

	u := &models.User{}
	err = TxorDB(ctx, r.db).QueryRow(ctx, q, id.String()).Scan(
		&u.ID,
		&u.FirstName,
		&u.LastName,
		&u.Email,
		&u.ProfilePictureURL,
		&u.Bio,
		&u.Program,
		&u.LastSeen,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrUserNotFound
		}
		ctx = wrap.WithAction(ctx, types.ActionDatabaseQueryFailed)
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	return u, nil
}
