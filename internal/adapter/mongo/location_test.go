package mongo

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/Temutjin2k/campus-radar/internal/domain/models"
	"github.com/Temutjin2k/campus-radar/internal/domain/types"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func stageValue(t *testing.T, stage bson.D, key string) any {
	t.Helper()
	for _, e := range stage {
		if e.Key == key {
			return e.Value
		}
	}
	t.Fatalf("key %q missing from %v", key, stage)
	return nil
}

func TestNearbyPipeline(t *testing.T) {
	viewer := uuid.New()
	pipeline := nearbyPipeline(models.NearbyFilter{
		Center:        models.Coordinates{Latitude: 51.09, Longitude: 71.4},
		RadiusMeters:  250,
		ExcludeUserID: viewer,
	})

	if len(pipeline) != 1 || len(pipeline[0]) != 1 || pipeline[0][0].Key != "$geoNear" {
		t.Fatalf("expected a single $geoNear stage, got %v", pipeline)
	}
	geoNear := pipeline[0][0].Value.(bson.D)

	near := stageValue(t, geoNear, "near").(geoJSON)
	if near.Type != "Point" || near.Coordinates[0] != 71.4 || near.Coordinates[1] != 51.09 {
		t.Fatalf("near must be [lon, lat], got %+v", near)
	}
	if got := stageValue(t, geoNear, "maxDistance"); got != 250.0 {
		t.Fatalf("maxDistance = %v, want 250", got)
	}
	if got := stageValue(t, geoNear, "spherical"); got != true {
		t.Fatalf("spherical = %v", got)
	}

	query := stageValue(t, geoNear, "query").(bson.M)
	if query["is_active"] != true {
		t.Fatalf("inactive users must be excluded: %v", query)
	}
	if query["location_sharing_enabled"] != true {
		t.Fatalf("users with sharing off must be excluded: %v", query)
	}
	self, ok := query["user_id"].(bson.M)
	if !ok || self["$ne"] != viewer.String() {
		t.Fatalf("viewer must be excluded: %v", query["user_id"])
	}
}

func TestUpsertFilter(t *testing.T) {
	user := uuid.New()
	now := time.Date(2024, 9, 2, 9, 0, 0, 0, time.UTC)

	filter := upsertFilter(user, now, 0)
	if _, ok := filter["$or"]; ok || filter["user_id"] != user.String() {
		t.Fatalf("zero cooldown must match on user only: %v", filter)
	}

	filter = upsertFilter(user, now, 30*time.Second)
	or, ok := filter["$or"].(bson.A)
	if !ok || len(or) != 2 {
		t.Fatalf("expected two cooldown branches, got %v", filter["$or"])
	}
	older := or[0].(bson.M)["last_updated"].(bson.M)
	if got := older["$lte"].(time.Time); !got.Equal(now.Add(-30 * time.Second)) {
		t.Fatalf("cooldown bound = %v, want %v", got, now.Add(-30*time.Second))
	}
	missing := or[1].(bson.M)["last_updated"].(bson.M)
	if missing["$exists"] != false {
		t.Fatalf("records without last_updated must match: %v", missing)
	}
}

func TestUpsertUpdateDefaultsOnlyOnInsert(t *testing.T) {
	now := time.Date(2024, 9, 2, 9, 0, 0, 0, time.UTC)
	update := upsertUpdate(models.Coordinates{Latitude: 10, Longitude: 20}, 7, now)

	set := update["$set"].(bson.M)
	for _, k := range []string{"is_active", "location_sharing_enabled", "geofence_radius"} {
		if _, ok := set[k]; ok {
			t.Fatalf("%s must not be overwritten on update", k)
		}
	}
	if set["last_updated"] != now || set["last_seen"] != now || set["accuracy"] != 7.0 {
		t.Fatalf("unexpected $set: %v", set)
	}

	insert := update["$setOnInsert"].(bson.M)
	if insert["is_active"] != true || insert["location_sharing_enabled"] != true ||
		insert["geofence_radius"] != models.DefaultGeofenceRadius {
		t.Fatalf("unexpected $setOnInsert: %v", insert)
	}
}

// newIntegrationRepo connects to MONGO_URI and returns a repo on a throwaway collection.
func newIntegrationRepo(t *testing.T) *LocationRepo {
	t.Helper()

	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	db := client.Database("campus_radar_test")
	repo := NewLocationRepo(db, "locations_"+uuid.NewString()[:8])
	t.Cleanup(func() { _ = repo.coll.Drop(context.Background()) })

	if err := repo.EnsureIndexes(ctx); err != nil {
		t.Fatalf("indexes: %v", err)
	}
	return repo
}

func TestLocationRepoIntegration(t *testing.T) {
	repo := newIntegrationRepo(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)
	center := models.Coordinates{Latitude: 51.0900, Longitude: 71.4000}

	viewer, visible, hidden, incognito := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	for _, id := range []uuid.UUID{viewer, visible, hidden, incognito} {
		at := models.Coordinates{Latitude: center.Latitude + 0.0005, Longitude: center.Longitude}
		if id == viewer {
			at = center
		}
		if _, err := repo.Upsert(ctx, id, at, 5, now, 30*time.Second); err != nil {
			t.Fatalf("upsert %s: %v", id, err)
		}
	}
	if err := repo.SetSharing(ctx, hidden, false); err != nil {
		t.Fatalf("sharing: %v", err)
	}
	if err := repo.SetActive(ctx, incognito, false); err != nil {
		t.Fatalf("active: %v", err)
	}

	got, err := repo.Nearby(ctx, models.NearbyFilter{Center: center, RadiusMeters: 500, ExcludeUserID: viewer})
	if err != nil {
		t.Fatalf("nearby: %v", err)
	}
	if len(got) != 1 || got[0].UserID != visible {
		t.Fatalf("nearby = %+v, want only %s", got, visible)
	}

	_, err = repo.Upsert(ctx, viewer, center, 5, now.Add(5*time.Second), 30*time.Second)
	if !errors.Is(err, types.ErrRateLimited) {
		t.Fatalf("update inside cooldown: err = %v, want ErrRateLimited", err)
	}
	if _, err = repo.Upsert(ctx, viewer, center, 5, now.Add(31*time.Second), 30*time.Second); err != nil {
		t.Fatalf("update after cooldown: %v", err)
	}
}
