package location

import (
	"context"
	"time"

	"github.com/Temutjin2k/campus-radar/internal/domain/models"
	"github.com/google/uuid"
)

/*=================Location Repository====================*/

type LocationRepo interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.LocationRecord, error)
	// Upsert must refuse with ErrUpdateTooSoon when the stored record is younger than cooldown.
	Upsert(ctx context.Context, userID uuid.UUID, at models.Coordinates, accuracy float64, now time.Time, cooldown time.Duration) (*models.LocationRecord, error)
	SetSharing(ctx context.Context, userID uuid.UUID, enabled bool) error
	SetActive(ctx context.Context, userID uuid.UUID, active bool) error
	Nearby(ctx context.Context, f models.NearbyFilter) ([]models.NearbyUser, error)
}

/*=================History Repository=====================*/

type HistoryRepo interface {
	Append(ctx context.Context, p models.LocationHistoryPoint) error
	ListSince(ctx context.Context, userID uuid.UUID, since time.Time, limit int) ([]models.LocationHistoryPoint, error)
}

/*========================Publisher=======================*/

type Publisher interface {
	PublishLocationEvent(ctx context.Context, msg models.LocationEvent) error
}

/*=====================Building Resolver==================*/

// BuildingResolver names the building a point belongs to.
type BuildingResolver interface {
	Resolve(lat, lon float64) string
}
