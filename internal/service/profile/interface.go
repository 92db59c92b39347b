package profile

import (
	"context"

	"github.com/Temutjin2k/campus-radar/internal/domain/models"
	"github.com/google/uuid"
)

type PrivacyChecker interface {
	BatchCanViewProfile(ctx context.Context, viewerID uuid.UUID, subjectIDs []uuid.UUID) (map[uuid.UUID]bool, error)
	GetPrivacySettings(ctx context.Context, userID uuid.UUID) (*models.PrivacySettings, error)
}

type UserDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type LocationReader interface {
	CachedLocation(ctx context.Context, userID uuid.UUID) (*models.CachedLocation, error)
}

type BuildingResolver interface {
	Resolve(lat, lon float64) string
}
