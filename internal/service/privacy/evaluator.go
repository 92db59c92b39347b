package privacy

import (
	"math"

	"github.com/Temutjin2k/campus-radar/internal/domain/models"
	"github.com/Temutjin2k/campus-radar/internal/domain/types"
	"github.com/google/uuid"
)

// EvaluationInput is everything a single visibility decision depends on.
type EvaluationInput struct {
	ViewerID  uuid.UUID
	SubjectID uuid.UUID
	Settings  models.PrivacySettings
	// DistanceMeters is nil when either position is unknown.
	DistanceMeters *float64
	Connected      bool
}

// Evaluate decides whether the viewer may see the subject's profile.
func Evaluate(in EvaluationInput) bool {
	if in.ViewerID == in.SubjectID {
		return true
	}

	switch in.Settings.ProfileVisibility {
	case types.VisibilityPublic:
		return true
	case types.VisibilityPrivate:
		return false
	case types.VisibilityGeofenced:
		return in.DistanceMeters != nil && withinRadius(*in.DistanceMeters, in.Settings.VisibilityRadius)
	case types.VisibilityFriendsOnly:
		return in.Connected
	}
	return false
}

// withinRadius compares at whole-meter resolution.
func withinRadius(distance float64, radius int) bool {
	if math.IsNaN(distance) || distance < 0 {
		return false
	}
	return math.Round(distance) <= float64(radius)
}
