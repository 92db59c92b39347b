package dto

import (
	"math"
	"time"

	"github.com/Temutjin2k/campus-radar/internal/domain/models"
	"github.com/Temutjin2k/campus-radar/pkg/validator"
	"github.com/google/uuid"
)

type UpdateLocationReq struct {
	Latitude  *float64 `json:"latitude" example:"51.0903"`
	Longitude *float64 `json:"longitude" example:"71.4305"`
	Accuracy  *float64 `json:"accuracy,omitempty" example:"12.5"`
}

func (r *UpdateLocationReq) Validate(v *validator.Validator) {
	v.Check(r.Latitude != nil, "latitude", "must be provided")
	v.Check(r.Longitude != nil, "longitude", "must be provided")

	if r.Latitude != nil {
		v.Check(finite(*r.Latitude) && *r.Latitude >= -90 && *r.Latitude <= 90, "latitude", "must be between -90 and 90")
	}
	if r.Longitude != nil {
		v.Check(finite(*r.Longitude) && *r.Longitude >= -180 && *r.Longitude <= 180, "longitude", "must be between -180 and 180")
	}
	if r.Accuracy != nil {
		v.Check(finite(*r.Accuracy) && *r.Accuracy >= 0, "accuracy", "must be a non-negative number")
	}
}

func (r *UpdateLocationReq) Coordinates() models.Coordinates {
	return models.Coordinates{Latitude: *r.Latitude, Longitude: *r.Longitude}
}

func (r *UpdateLocationReq) AccuracyOrZero() float64 {
	if r.Accuracy == nil {
		return 0
	}
	return *r.Accuracy
}

// ToggleReq switches location sharing or incognito mode.
type ToggleReq struct {
	Enabled *bool `json:"enabled" example:"true"`
}

func (r *ToggleReq) Validate(v *validator.Validator) {
	v.Check(r.Enabled != nil, "enabled", "must be provided")
}

type LocationResponse struct {
	UserID                 uuid.UUID `json:"user_id"`
	Latitude               float64   `json:"latitude"`
	Longitude              float64   `json:"longitude"`
	Accuracy               float64   `json:"accuracy"`
	LastUpdated            time.Time `json:"last_updated"`
	LastSeen               time.Time `json:"last_seen"`
	IsActive               bool      `json:"is_active"`
	LocationSharingEnabled bool      `json:"location_sharing_enabled"`
}

func NewLocationResponse(r *models.LocationRecord) LocationResponse {
	return LocationResponse{
		UserID:                 r.UserID,
		Latitude:               r.Location.Lat(),
		Longitude:              r.Location.Lon(),
		Accuracy:               r.Accuracy,
		LastUpdated:            r.LastUpdated,
		LastSeen:               r.LastSeen,
		IsActive:               r.IsActive,
		LocationSharingEnabled: r.LocationSharingEnabled,
	}
}

type NearbyUserResponse struct {
	UserID      uuid.UUID `json:"user_id"`
	Distance    float64   `json:"distance" example:"42.7"`
	Accuracy    float64   `json:"accuracy"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	LastUpdated time.Time `json:"last_updated"`
	LastSeen    time.Time `json:"last_seen"`
}

func NewNearbyResponse(users []models.NearbyUser) []NearbyUserResponse {
	out := make([]NearbyUserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, NearbyUserResponse{
			UserID:      u.UserID,
			Distance:    math.Round(u.Distance*10) / 10,
			Accuracy:    u.Accuracy,
			Latitude:    u.Coordinates.Lat(),
			Longitude:   u.Coordinates.Lon(),
			LastUpdated: u.LastUpdated,
			LastSeen:    u.LastSeen,
		})
	}
	return out
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
