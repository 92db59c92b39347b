// Command migrate creates the postgres schema and mongo indexes, and seeds a
// small demo campus with users, a friendship, settings and positions.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/Temutjin2k/campus-radar/config"
	mongorepo "github.com/Temutjin2k/campus-radar/internal/adapter/mongo"
	repo "github.com/Temutjin2k/campus-radar/internal/adapter/postgres"
	"github.com/Temutjin2k/campus-radar/internal/domain/models"
	"github.com/Temutjin2k/campus-radar/internal/domain/types"
	"github.com/Temutjin2k/campus-radar/internal/service/auth"
	"github.com/Temutjin2k/campus-radar/pkg/mongo"
	"github.com/Temutjin2k/campus-radar/pkg/postgres"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	configPath = flag.String("config-path", "config.yaml", "Path to the config yaml file")
	seed       = flag.Bool("seed", true, "Insert demo users, settings and locations")
	tokenTTL   = flag.Duration("token-ttl", 24*time.Hour, "Lifetime of the printed demo access tokens")
)

const schema = `
CREATE EXTENSION IF NOT EXISTS pgcrypto;

CREATE TABLE IF NOT EXISTS users (
	id                  uuid PRIMARY KEY DEFAULT gen_random_uuid(),
	first_name          text NOT NULL DEFAULT '',
	last_name           text NOT NULL DEFAULT '',
	email               text NOT NULL UNIQUE,
	profile_picture_url text NOT NULL DEFAULT '',
	bio                 text NOT NULL DEFAULT '',
	program             text NOT NULL DEFAULT '',
	last_seen           timestamptz,
	created_at          timestamptz NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS privacy_settings (
	user_id             uuid PRIMARY KEY REFERENCES users (id) ON DELETE CASCADE,
	profile_visibility  text NOT NULL DEFAULT 'geofenced'
		CHECK (profile_visibility IN ('public', 'private', 'geofenced', 'friends_only')),
	visibility_radius   integer NOT NULL DEFAULT 100
		CHECK (visibility_radius BETWEEN 10 AND 5000),
	show_exact_location boolean NOT NULL DEFAULT false,
	visible_fields      jsonb NOT NULL DEFAULT '{"name":true,"photo":true,"bio":true,"program":true,"courses":false,"contact":false}',
	updated_at          timestamptz NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS connections (
	requester_id uuid NOT NULL REFERENCES users (id) ON DELETE CASCADE,
	addressee_id uuid NOT NULL REFERENCES users (id) ON DELETE CASCADE,
	status       text NOT NULL CHECK (status IN ('pending', 'accepted', 'blocked')),
	created_at   timestamptz NOT NULL DEFAULT now(),
	updated_at   timestamptz NOT NULL DEFAULT now(),
	UNIQUE (requester_id, addressee_id),
	CHECK (requester_id <> addressee_id)
);

CREATE INDEX IF NOT EXISTS connections_addressee_idx ON connections (addressee_id, requester_id);

CREATE TABLE IF NOT EXISTS location_history (
	id          bigserial PRIMARY KEY,
	user_id     uuid NOT NULL,
	latitude    double precision NOT NULL,
	longitude   double precision NOT NULL,
	accuracy    double precision NOT NULL DEFAULT 0,
	recorded_at timestamptz NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS location_history_user_time_idx ON location_history (user_id, recorded_at DESC);
`

type demoUser struct {
	user       models.User
	lat, lon   float64
	visibility types.Visibility
}

func main() {
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.NewConfig(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	pg, err := postgres.New(ctx, cfg.Database)
	if err != nil {
		log.Fatal(err)
	}
	defer pg.Close()

	mdb, err := mongo.New(ctx, cfg.Mongo)
	if err != nil {
		log.Fatal(err)
	}
	defer mdb.Close(ctx)

	migrateSchema(ctx, pg.Pool)

	locations := mongorepo.NewLocationRepo(mdb.DB, cfg.Mongo.Collection)
	if err := locations.EnsureIndexes(ctx); err != nil {
		log.Fatalf("ensure mongo indexes: %v", err)
	}
	log.Printf("mongo indexes ensured on %s.%s", cfg.Mongo.Database, cfg.Mongo.Collection)

	if !*seed {
		return
	}

	users := seedDemo(ctx, pg.Pool, locations)

	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, nil)
	for _, u := range users {
		token, err := tokens.IssueAccessToken(u.ID, u.Email, *tokenTTL)
		if err != nil {
			log.Fatalf("issue token for %s: %v", u.Email, err)
		}
		fmt.Printf("%-22s %s\n  %s\n", u.Email, u.ID, token)
	}
}

func migrateSchema(ctx context.Context, db *pgxpool.Pool) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := db.Exec(ctx, schema); err != nil {
		log.Fatalf("migrateSchema: %v", err)
	}
	log.Printf("migrateSchema: postgres schema is up to date")
}

func seedDemo(ctx context.Context, db *pgxpool.Pool, locations *mongorepo.LocationRepo) []models.User {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	demo := []demoUser{
		{
			user: models.User{
				ID: uuid.MustParse("0b6f2a52-6a43-4d5e-9d0e-1d2c9f5e0a01"), FirstName: "Aigerim", LastName: "Sadykova",
				Email: "aigerim@campus.kz", Bio: "Robotics club", Program: "Computer Science",
			},
			lat: 51.09052, lon: 71.39810, visibility: types.VisibilityPublic,
		},
		{
			user: models.User{
				ID: uuid.MustParse("0b6f2a52-6a43-4d5e-9d0e-1d2c9f5e0a02"), FirstName: "Dias", LastName: "Nurlanov",
				Email: "dias@campus.kz", Bio: "Chess, coffee", Program: "Mathematics",
			},
			lat: 51.09090, lon: 71.39850, visibility: types.VisibilityGeofenced,
		},
		{
			user: models.User{
				ID: uuid.MustParse("0b6f2a52-6a43-4d5e-9d0e-1d2c9f5e0a03"), FirstName: "Madina", LastName: "Abenova",
				Email: "madina@campus.kz", Program: "Economics",
			},
			lat: 51.08921, lon: 71.40102, visibility: types.VisibilityFriendsOnly,
		},
		{
			user: models.User{
				ID: uuid.MustParse("0b6f2a52-6a43-4d5e-9d0e-1d2c9f5e0a04"), FirstName: "Timur", LastName: "Zhakenov",
				Email: "timur@campus.kz", Program: "Physics",
			},
			lat: 51.09310, lon: 71.40420, visibility: types.VisibilityPrivate,
		},
	}

	userRepo := repo.NewUserRepo(db)
	privacyRepo := repo.NewPrivacyRepo(db)
	connections := repo.NewConnectionRepo(db)

	now := time.Now().UTC()
	out := make([]models.User, 0, len(demo))
	for _, d := range demo {
		u := d.user
		u.LastSeen = &now
		if _, err := userRepo.Create(ctx, &u); err != nil {
			log.Fatalf("seedDemo: insert user %s: %v", u.Email, err)
		}

		settings := models.DefaultPrivacySettings(u.ID)
		settings.ProfileVisibility = d.visibility
		if err := privacyRepo.Upsert(ctx, settings); err != nil {
			log.Fatalf("seedDemo: settings for %s: %v", u.Email, err)
		}

		// zero cooldown: reseeding always moves users back to their demo position
		if _, err := locations.Upsert(ctx, u.ID, models.Coordinates{Latitude: d.lat, Longitude: d.lon}, 10, now, 0); err != nil {
			log.Fatalf("seedDemo: location for %s: %v", u.Email, err)
		}
		out = append(out, u)
	}

	// Aigerim and Madina are friends, so friends_only lets Aigerim see Madina
	if err := connections.Create(ctx, out[0].ID, out[2].ID, types.ConnectionAccepted); err != nil {
		log.Fatalf("seedDemo: connection: %v", err)
	}

	log.Printf("seedDemo: inserted/ensured %d demo users", len(out))
	return out
}
