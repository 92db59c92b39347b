package postgres

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Temutjin2k/campus-radar/internal/domain/models"
	"github.com/Temutjin2k/campus-radar/internal/domain/types"
	wrap "github.com/Temutjin2k/campus-radar/pkg/logger/wrapper"
	pgpkg "github.com/Temutjin2k/campus-radar/pkg/postgres"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PrivacyRepo struct {
	db *pgxpool.Pool
}

func NewPrivacyRepo(db *pgxpool.Pool) *PrivacyRepo {
	return &PrivacyRepo{
		db: db,
	}
}

const privacyColumns = `user_id, profile_visibility, visibility_radius, show_exact_location, visible_fields, updated_at`

// Get returns the stored settings or ErrSettingsNotFound.
func (r *PrivacyRepo) Get(ctx context.Context, userID uuid.UUID) (_ *models.PrivacySettings, err error) {
	const op = "PrivacyRepo.Get"
	defer observe(op, time.Now(), &err)

	q := `SELECT ` + privacyColumns + ` FROM privacy_settings WHERE user_id = $1;`
	return r.getOne(ctx, op, q, userID)
}

// GetForUpdate is Get with a row lock; it must run inside a transaction.
func (r *PrivacyRepo) GetForUpdate(ctx context.Context, userID uuid.UUID) (_ *models.PrivacySettings, err error) {
	const op = "PrivacyRepo.GetForUpdate"
	defer observe(op, time.Now(), &err)

	q := `SELECT ` + privacyColumns + ` FROM privacy_settings WHERE user_id = $1 FOR UPDATE;`
	return r.getOne(ctx, op, q, userID)
}

func (r *PrivacyRepo) getOne(ctx context.Context, op, q string, userID uuid.UUID) (*models.PrivacySettings, error) {
	s, err := scanSettings(TxorDB(ctx, r.db).QueryRow(ctx, q, userID.String()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrSettingsNotFound
		}
		ctx = wrap.WithAction(ctx, types.ActionDatabaseQueryFailed)
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	return s, nil
}

// GetMany loads settings for every id that has a row. Missing users are absent from the map.
func (r *PrivacyRepo) GetMany(ctx context.Context, userIDs []uuid.UUID) (_ map[uuid.UUID]*models.PrivacySettings, err error) {
	const op = "PrivacyRepo.GetMany"
	defer observe(op, time.Now(), &err)

	out := make(map[uuid.UUID]*models.PrivacySettings, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}

	ids := make([]string, len(userIDs))
	for i, id := range userIDs {
		ids[i] = id.String()
	}

	q := `SELECT ` + privacyColumns + ` FROM privacy_settings WHERE user_id = ANY($1::uuid[]);`
	rows, err := TxorDB(ctx, r.db).Query(ctx, q, ids)
	if err != nil {
		ctx = wrap.WithAction(ctx, types.ActionDatabaseQueryFailed)
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	defer rows.Close()

	for rows.Next() {
		s, scanErr := scanSettings(rows)
		if scanErr != nil {
			err = scanErr
			ctx = wrap.WithAction(ctx, types.ActionDatabaseQueryFailed)
			return nil, wrap.Error(ctx, fmt.Errorf("%s: scan: %w", op, err))
		}
		out[s.UserID] = s
	}
	if err = rows.Err(); err != nil {
		ctx = wrap.WithAction(ctx, types.ActionDatabaseQueryFailed)
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	return out, nil
}

// InsertDefault stores s only when the user has no row yet, so a following
// GetForUpdate always has a row to lock.
func (r *PrivacyRepo) InsertDefault(ctx context.Context, s *models.PrivacySettings) (err error) {
	const op = "PrivacyRepo.InsertDefault"
	defer observe(op, time.Now(), &err)

	fields, err := json.Marshal(s.VisibleFields)
	if err != nil {
		return fmt.Errorf("%s: marshal visible fields: %w", op, err)
	}

	const q = `
		INSERT INTO privacy_settings (user_id, profile_visibility, visibility_radius, show_exact_location, visible_fields, updated_at)
		VALUES ($1, $2, $3, $4, $5::jsonb, now())
		ON CONFLICT (user_id) DO NOTHING;`

	_, err = TxorDB(ctx, r.db).Exec(ctx, q,
		s.UserID.String(), string(s.ProfileVisibility), s.VisibilityRadius, s.ShowExactLocation, string(fields),
	)
	if err != nil {
		if pgpkg.IsForeignKeyViolation(err) {
			return fmt.Errorf("%s: %w", op, types.ErrUserNotFound)
		}
		ctx = wrap.WithAction(ctx, types.ActionDatabaseTransactionFailed)
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	return nil
}

// Upsert writes s as the user's settings and stamps UpdatedAt.
func (r *PrivacyRepo) Upsert(ctx context.Context, s *models.PrivacySettings) (err error) {
	const op = "PrivacyRepo.Upsert"
	defer observe(op, time.Now(), &err)

	fields, err := json.Marshal(s.VisibleFields)
	if err != nil {
		return fmt.Errorf("%s: marshal visible fields: %w", op, err)
	}

	const q = `
		INSERT INTO privacy_settings (user_id, profile_visibility, visibility_radius, show_exact_location, visible_fields, updated_at)
		VALUES ($1, $2, $3, $4, $5::jsonb, now())
		ON CONFLICT (user_id) DO UPDATE SET
			profile_visibility  = EXCLUDED.profile_visibility,
			visibility_radius   = EXCLUDED.visibility_radius,
			show_exact_location = EXCLUDED.show_exact_location,
			visible_fields      = EXCLUDED.visible_fields,
			updated_at          = now()
		RETURNING updated_at;`

	err = TxorDB(ctx, r.db).QueryRow(ctx, q,
		s.UserID.String(), string(s.ProfileVisibility), s.VisibilityRadius, s.ShowExactLocation, string(fields),
	).Scan(&s.UpdatedAt)
	if err != nil {
		if pgpkg.IsForeignKeyViolation(err) {
			return fmt.Errorf("%s: %w", op, types.ErrUserNotFound)
		}
		ctx = wrap.WithAction(ctx, types.ActionDatabaseTransactionFailed)
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	return nil
}

func scanSettings(row pgx.Row) (*models.PrivacySettings, error) {
	var (
		s          models.PrivacySettings
		visibility string
		rawFields  []byte
	)
	if err := row.Scan(&s.UserID, &visibility, &s.VisibilityRadius, &s.ShowExactLocation, &rawFields, &s.UpdatedAt); err != nil {
		return nil, err
	}

	s.ProfileVisibility = types.Visibility(visibility)
	fields, err := decodeVisibleFields(rawFields)
	if err != nil {
		return nil, fmt.Errorf("visible_fields of %s: %w", s.UserID, err)
	}
	s.VisibleFields = fields
	return &s, nil
}

// decodeVisibleFields turns the stored mask into the typed struct.
// Keys missing from the document keep their default, and a mask stored
// as a JSON string holding an object is unwrapped first.
func decodeVisibleFields(raw []byte) (models.VisibleFields, error) {
	fields := models.DefaultPrivacySettings(uuid.Nil).VisibleFields

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return fields, nil
	}

	if raw[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return fields, err
		}
		raw = []byte(inner)
	}

	if err := json.Unmarshal(raw, &fields); err != nil {
		return models.DefaultPrivacySettings(uuid.Nil).VisibleFields, err
	}
	return fields, nil
}
