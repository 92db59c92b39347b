package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Temutjin2k/campus-radar/internal/domain/models"
	"github.com/Temutjin2k/campus-radar/internal/domain/types"
	wrap "github.com/Temutjin2k/campus-radar/pkg/logger/wrapper"
	"github.com/Temutjin2k/campus-radar/pkg/metrics"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const storeName = "mongo"

type LocationRepo struct {
	coll *mongo.Collection
}

func NewLocationRepo(db *mongo.Database, collection string) *LocationRepo {
	return &LocationRepo{
		coll: db.Collection(collection),
	}
}

// EnsureIndexes creates the spatial index and the per-user indexes. It is idempotent.
func (r *LocationRepo) EnsureIndexes(ctx context.Context) error {
	const op = "LocationRepo.EnsureIndexes"

	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "location", Value: "2dsphere"}},
			Options: options.Index().SetName("location_2dsphere"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetName("user_id_unique").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "is_active", Value: 1}},
			Options: options.Index().SetName("user_id_is_active"),
		},
	})
	if err != nil {
		ctx = wrap.WithAction(ctx, types.ActionDatabaseQueryFailed)
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	return nil
}

func (r *LocationRepo) Get(ctx context.Context, userID uuid.UUID) (_ *models.LocationRecord, err error) {
	const op = "LocationRepo.Get"
	defer observe(op, time.Now(), &err)

	var doc locationDoc
	err = r.coll.FindOne(ctx, bson.M{"user_id": userID.String()}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, types.ErrLocationNotFound
		}
		ctx = wrap.WithAction(ctx, types.ActionDatabaseQueryFailed)
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	return doc.toModel()
}

// Upsert writes a new position for the user, creating the record with default flags when absent.
// When cooldown is positive an existing record updated after now-cooldown is left untouched
// and ErrUpdateTooSoon is returned; the check and the write are a single statement.
func (r *LocationRepo) Upsert(ctx context.Context, userID uuid.UUID, at models.Coordinates, accuracy float64, now time.Time, cooldown time.Duration) (_ *models.LocationRecord, err error) {
	const op = "LocationRepo.Upsert"
	defer observe(op, time.Now(), &err)

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc locationDoc
	err = r.coll.FindOneAndUpdate(ctx, upsertFilter(userID, now, cooldown), upsertUpdate(at, accuracy, now), opts).Decode(&doc)
	if err != nil {
		// the filter missed an existing record, so the upsert collided with the unique user_id index
		if mongo.IsDuplicateKeyError(err) {
			return nil, types.ErrUpdateTooSoon
		}
		ctx = wrap.WithAction(ctx, types.ActionDatabaseQueryFailed)
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	return doc.toModel()
}

func (r *LocationRepo) SetSharing(ctx context.Context, userID uuid.UUID, enabled bool) error {
	return r.setFlag(ctx, "LocationRepo.SetSharing", userID, "location_sharing_enabled", enabled)
}

func (r *LocationRepo) SetActive(ctx context.Context, userID uuid.UUID, active bool) error {
	return r.setFlag(ctx, "LocationRepo.SetActive", userID, "is_active", active)
}

func (r *LocationRepo) setFlag(ctx context.Context, op string, userID uuid.UUID, field string, value bool) (err error) {
	defer observe(op, time.Now(), &err)

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"user_id": userID.String()},
		bson.M{"$set": bson.M{field: value}},
	)
	if err != nil {
		ctx = wrap.WithAction(ctx, types.ActionDatabaseQueryFailed)
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	if res.MatchedCount == 0 {
		return types.ErrLocationNotFound
	}
	return nil
}

// Nearby returns visible users within the radius, closest first. $geoNear does the ordering.
func (r *LocationRepo) Nearby(ctx context.Context, f models.NearbyFilter) (_ []models.NearbyUser, err error) {
	const op = "LocationRepo.Nearby"
	defer observe(op, time.Now(), &err)

	cur, err := r.coll.Aggregate(ctx, nearbyPipeline(f))
	if err != nil {
		ctx = wrap.WithAction(ctx, types.ActionDatabaseQueryFailed)
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	defer cur.Close(ctx)

	out := make([]models.NearbyUser, 0)
	for cur.Next(ctx) {
		var doc nearbyDoc
		if err = cur.Decode(&doc); err != nil {
			return nil, wrap.Error(ctx, fmt.Errorf("%s: decode: %w", op, err))
		}
		id, perr := uuid.Parse(doc.UserID)
		if perr != nil {
			continue
		}
		out = append(out, models.NearbyUser{
			UserID:      id,
			Distance:    doc.Distance,
			Accuracy:    doc.Accuracy,
			LastUpdated: doc.LastUpdated,
			LastSeen:    doc.LastSeen,
			Coordinates: doc.Location.toModel(),
		})
	}
	if err = cur.Err(); err != nil {
		ctx = wrap.WithAction(ctx, types.ActionDatabaseQueryFailed)
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	return out, nil
}

// upsertFilter matches the user's record only when it is older than the cooldown,
// so the rate-limit check and the write are one statement.
func upsertFilter(userID uuid.UUID, now time.Time, cooldown time.Duration) bson.M {
	filter := bson.M{"user_id": userID.String()}
	if cooldown > 0 {
		filter["$or"] = bson.A{
			bson.M{"last_updated": bson.M{"$lte": now.Add(-cooldown)}},
			bson.M{"last_updated": bson.M{"$exists": false}},
		}
	}
	return filter
}

func upsertUpdate(at models.Coordinates, accuracy float64, now time.Time) bson.M {
	return bson.M{
		"$set": bson.M{
			"location":     newGeoJSON(at.Latitude, at.Longitude),
			"accuracy":     accuracy,
			"last_updated": now,
			"last_seen":    now,
		},
		"$setOnInsert": bson.M{
			"is_active":                true,
			"location_sharing_enabled": true,
			"geofence_radius":          models.DefaultGeofenceRadius,
		},
	}
}

// nearbyPipeline never matches the caller, inactive users or users with sharing off.
func nearbyPipeline(f models.NearbyFilter) mongo.Pipeline {
	geoNear := bson.D{
		{Key: "near", Value: newGeoJSON(f.Center.Latitude, f.Center.Longitude)},
		{Key: "distanceField", Value: "distance"},
		{Key: "maxDistance", Value: f.RadiusMeters},
		{Key: "query", Value: bson.M{
			"user_id":                  bson.M{"$ne": f.ExcludeUserID.String()},
			"is_active":                true,
			"location_sharing_enabled": true,
		}},
		{Key: "spherical", Value: true},
		{Key: "key", Value: "location"},
	}
	return mongo.Pipeline{{{Key: "$geoNear", Value: geoNear}}}
}

func observe(op string, start time.Time, err *error) {
	metrics.RecordDatabaseQuery(storeName, op, *err, time.Since(start))
}
