package models

import (
	"time"

	"github.com/google/uuid"
)

const DefaultGeofenceRadius = 100

// GeoPoint is a GeoJSON point. Coordinates are [longitude, latitude].
type GeoPoint struct {
	Type        string     `json:"type" example:"Point"`
	Coordinates [2]float64 `json:"coordinates" swaggertype:"array,number" example:"71.4305,51.0903"`
}

func NewGeoPoint(lat, lon float64) GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: [2]float64{lon, lat}}
}

func (p GeoPoint) Lat() float64 { return p.Coordinates[1] }
func (p GeoPoint) Lon() float64 { return p.Coordinates[0] }

// Coordinates is a latitude/longitude pair as clients send it.
type Coordinates struct {
	Latitude  float64 `json:"latitude" example:"51.0903"`
	Longitude float64 `json:"longitude" example:"71.4305"`
}

// LocationRecord is the durable last known position of a user. At most one exists per user.
type LocationRecord struct {
	UserID                 uuid.UUID `json:"user_id"`
	Location               GeoPoint  `json:"location"`
	Accuracy               float64   `json:"accuracy"`
	LastUpdated            time.Time `json:"last_updated"`
	LastSeen               time.Time `json:"last_seen"`
	IsActive               bool      `json:"is_active"`
	LocationSharingEnabled bool      `json:"location_sharing_enabled"`
	GeofenceRadius         int       `json:"geofence_radius"`
}

// Cached returns the subset kept in the location cache.
func (r *LocationRecord) Cached() *CachedLocation {
	return &CachedLocation{
		Latitude:    r.Location.Lat(),
		Longitude:   r.Location.Lon(),
		Accuracy:    r.Accuracy,
		LastUpdated: r.LastUpdated,
		LastSeen:    r.LastSeen,
	}
}

type CachedLocation struct {
	Latitude    float64   `json:"lat"`
	Longitude   float64   `json:"lon"`
	Accuracy    float64   `json:"accuracy"`
	LastUpdated time.Time `json:"last_updated"`
	LastSeen    time.Time `json:"last_seen"`
}

type NearbyUser struct {
	UserID      uuid.UUID `json:"user_id"`
	Distance    float64   `json:"distance"`
	Accuracy    float64   `json:"accuracy"`
	LastUpdated time.Time `json:"last_updated"`
	LastSeen    time.Time `json:"last_seen"`
	Coordinates GeoPoint  `json:"coordinates"`
}

// NearbyFilter is a proximity query around Center, excluding one user.
type NearbyFilter struct {
	Center        Coordinates
	RadiusMeters  float64
	ExcludeUserID uuid.UUID
}

type LocationHistoryPoint struct {
	UserID     uuid.UUID `json:"user_id"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Accuracy   float64   `json:"accuracy"`
	RecordedAt time.Time `json:"recorded_at"`
}

type Building struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
