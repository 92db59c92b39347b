package models

import (
	"time"

	"github.com/Temutjin2k/campus-radar/internal/domain/types"
	"github.com/google/uuid"
)

// LocationEvent is published to the location topic exchange.
type LocationEvent struct {
	Type      types.LocationEvent `json:"type"`
	UserID    uuid.UUID           `json:"user_id"`
	Latitude  *float64            `json:"latitude,omitempty"`
	Longitude *float64            `json:"longitude,omitempty"`
	Accuracy  *float64            `json:"accuracy,omitempty"`
	Enabled   *bool               `json:"enabled,omitempty"`
	Timestamp time.Time           `json:"timestamp"`
}
