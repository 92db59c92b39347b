package mongo

import (
	"fmt"
	"time"

	"github.com/Temutjin2k/campus-radar/internal/domain/models"
	"github.com/google/uuid"
)

type geoJSON struct {
	Type        string    `bson:"type"`
	Coordinates []float64 `bson:"coordinates"`
}

func newGeoJSON(lat, lon float64) geoJSON {
	return geoJSON{Type: "Point", Coordinates: []float64{lon, lat}}
}

func (g geoJSON) toModel() models.GeoPoint {
	if len(g.Coordinates) < 2 {
		return models.NewGeoPoint(0, 0)
	}
	return models.NewGeoPoint(g.Coordinates[1], g.Coordinates[0])
}

type locationDoc struct {
	UserID                 string    `bson:"user_id"`
	Location               geoJSON   `bson:"location"`
	Accuracy               float64   `bson:"accuracy"`
	LastUpdated            time.Time `bson:"last_updated"`
	LastSeen               time.Time `bson:"last_seen"`
	IsActive               bool      `bson:"is_active"`
	LocationSharingEnabled bool      `bson:"location_sharing_enabled"`
	GeofenceRadius         int       `bson:"geofence_radius"`
}

func (d locationDoc) toModel() (*models.LocationRecord, error) {
	id, err := uuid.Parse(d.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid user_id %q in location document: %w", d.UserID, err)
	}
	return &models.LocationRecord{
		UserID:                 id,
		Location:               d.Location.toModel(),
		Accuracy:               d.Accuracy,
		LastUpdated:            d.LastUpdated.UTC(),
		LastSeen:               d.LastSeen.UTC(),
		IsActive:               d.IsActive,
		LocationSharingEnabled: d.LocationSharingEnabled,
		GeofenceRadius:         d.GeofenceRadius,
	}, nil
}

type nearbyDoc struct {
	UserID      string    `bson:"user_id"`
	Location    geoJSON   `bson:"location"`
	Accuracy    float64   `bson:"accuracy"`
	LastUpdated time.Time `bson:"last_updated"`
	LastSeen    time.Time `bson:"last_seen"`
	Distance    float64   `bson:"distance"`
}
