package privacy

import (
	"context"

	"github.com/Temutjin2k/campus-radar/internal/domain/models"
	"github.com/google/uuid"
)

/*=================Settings Repository====================*/

type SettingsRepo interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.PrivacySettings, error)
	GetForUpdate(ctx context.Context, userID uuid.UUID) (*models.PrivacySettings, error)
	GetMany(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]*models.PrivacySettings, error)
	InsertDefault(ctx context.Context, s *models.PrivacySettings) error
	Upsert(ctx context.Context, s *models.PrivacySettings) error
}

/*=====================Location Reader====================*/

// LocationReader returns a user's last known position, or nil when there is none.
type LocationReader interface {
	CachedLocation(ctx context.Context, userID uuid.UUID) (*models.CachedLocation, error)
}

/*===================Relationship Graph===================*/

type RelationshipGraph interface {
	AreConnected(ctx context.Context, a, b uuid.UUID) (bool, error)
}
