package postgres

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/Temutjin2k/campus-radar/internal/domain/models"
	"github.com/Temutjin2k/campus-radar/internal/domain/types"
	"github.com/Temutjin2k/campus-radar/pkg/trm"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const testSchemaDDL = `
CREATE TABLE users (
	id uuid PRIMARY KEY
);

CREATE TABLE privacy_settings (
	user_id             uuid PRIMARY KEY REFERENCES users (id) ON DELETE CASCADE,
	profile_visibility  text NOT NULL,
	visibility_radius   integer NOT NULL,
	show_exact_location boolean NOT NULL,
	visible_fields      jsonb NOT NULL,
	updated_at          timestamptz NOT NULL DEFAULT now()
);`

// newTestPool creates a throwaway schema in POSTGRES_DSN and returns a pool bound to it.
func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_DSN not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	schema := "radar_test_" + uuid.NewString()[:8]

	admin, err := pgx.Connect(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if _, err := admin.Exec(ctx, "CREATE SCHEMA "+schema); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	t.Cleanup(func() {
		_, _ = admin.Exec(context.Background(), "DROP SCHEMA "+schema+" CASCADE")
		_ = admin.Close(context.Background())
	})

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		t.Fatalf("parse dsn: %v", err)
	}
	cfg.ConnConfig.RuntimeParams["search_path"] = schema

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		t.Fatalf("pool: %v", err)
	}
	t.Cleanup(pool.Close)

	if _, err := pool.Exec(ctx, testSchemaDDL); err != nil {
		t.Fatalf("schema: %v", err)
	}
	return pool
}

func TestPrivacyRepoConcurrentFirstPatches(t *testing.T) {
	pool := newTestPool(t)
	repo := NewPrivacyRepo(pool)
	tx := trm.New(pool)
	ctx := context.Background()

	user := uuid.New()
	if _, err := pool.Exec(ctx, "INSERT INTO users (id) VALUES ($1)", user.String()); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	public := types.VisibilityPublic
	radius := 700
	exact := true
	patches := []models.PrivacySettingsPatch{
		{ProfileVisibility: &public},
		{VisibilityRadius: &radius},
		{ShowExactLocation: &exact},
	}

	var wg sync.WaitGroup
	errs := make(chan error, len(patches))
	for _, p := range patches {
		wg.Add(1)
		go func(p models.PrivacySettingsPatch) {
			defer wg.Done()
			errs <- tx.Do(ctx, func(ctx context.Context) error {
				if err := repo.InsertDefault(ctx, models.DefaultPrivacySettings(user)); err != nil {
					return err
				}
				current, err := repo.GetForUpdate(ctx, user)
				if err != nil {
					return err
				}
				merged := p.Apply(*current)
				merged.UserID = user
				return repo.Upsert(ctx, &merged)
			})
		}(p)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("patch: %v", err)
		}
	}

	got, err := repo.Get(ctx, user)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ProfileVisibility != public || got.VisibilityRadius != radius || !got.ShowExactLocation {
		t.Fatalf("a concurrent patch was lost: %+v", got)
	}
}

func TestPrivacyRepoInsertDefault(t *testing.T) {
	pool := newTestPool(t)
	repo := NewPrivacyRepo(pool)
	ctx := context.Background()

	if err := repo.InsertDefault(ctx, models.DefaultPrivacySettings(uuid.New())); !errors.Is(err, types.ErrUserNotFound) {
		t.Fatalf("unknown user: err = %v, want ErrUserNotFound", err)
	}

	user := uuid.New()
	if _, err := pool.Exec(ctx, "INSERT INTO users (id) VALUES ($1)", user.String()); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	stored := models.DefaultPrivacySettings(user)
	stored.VisibilityRadius = 1234
	if err := repo.Upsert(ctx, stored); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := repo.InsertDefault(ctx, models.DefaultPrivacySettings(user)); err != nil {
		t.Fatalf("insert default over existing row: %v", err)
	}

	got, err := repo.Get(ctx, user)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.VisibilityRadius != 1234 {
		t.Fatalf("existing row was overwritten: %+v", got)
	}
}
