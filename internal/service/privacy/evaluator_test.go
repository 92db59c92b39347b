package privacy

import (
	"testing"

	"github.com/Temutjin2k/campus-radar/internal/domain/models"
	"github.com/Temutjin2k/campus-radar/internal/domain/types"
	"github.com/Temutjin2k/campus-radar/pkg/geo"
	"github.com/google/uuid"
)

func settingsWith(mode types.Visibility, radius int) models.PrivacySettings {
	s := models.DefaultPrivacySettings(uuid.Nil)
	s.ProfileVisibility = mode
	s.VisibilityRadius = radius
	return *s
}

func dist(d float64) *float64 { return &d }

func TestEvaluate(t *testing.T) {
	viewer, subject := uuid.New(), uuid.New()

	tests := []struct {
		name string
		in   EvaluationInput
		want bool
	}{
		{"self private", EvaluationInput{ViewerID: viewer, SubjectID: viewer, Settings: settingsWith(types.VisibilityPrivate, 100)}, true},
		{"self geofenced without location", EvaluationInput{ViewerID: viewer, SubjectID: viewer, Settings: settingsWith(types.VisibilityGeofenced, 100)}, true},
		{"public without location", EvaluationInput{ViewerID: viewer, SubjectID: subject, Settings: settingsWith(types.VisibilityPublic, 100)}, true},
		{"public far away", EvaluationInput{ViewerID: viewer, SubjectID: subject, Settings: settingsWith(types.VisibilityPublic, 10), DistanceMeters: dist(1e6)}, true},
		{"private", EvaluationInput{ViewerID: viewer, SubjectID: subject, Settings: settingsWith(types.VisibilityPrivate, 5000), DistanceMeters: dist(0), Connected: true}, false},
		{"geofenced inside", EvaluationInput{ViewerID: viewer, SubjectID: subject, Settings: settingsWith(types.VisibilityGeofenced, 100), DistanceMeters: dist(42)}, true},
		{"geofenced on the edge", EvaluationInput{ViewerID: viewer, SubjectID: subject, Settings: settingsWith(types.VisibilityGeofenced, 100), DistanceMeters: dist(100)}, true},
		{"geofenced rounds down to the edge", EvaluationInput{ViewerID: viewer, SubjectID: subject, Settings: settingsWith(types.VisibilityGeofenced, 100), DistanceMeters: dist(100.4)}, true},
		{"geofenced rounds up past the edge", EvaluationInput{ViewerID: viewer, SubjectID: subject, Settings: settingsWith(types.VisibilityGeofenced, 100), DistanceMeters: dist(100.5)}, false},
		{"geofenced outside", EvaluationInput{ViewerID: viewer, SubjectID: subject, Settings: settingsWith(types.VisibilityGeofenced, 100), DistanceMeters: dist(101)}, false},
		{"geofenced unknown distance", EvaluationInput{ViewerID: viewer, SubjectID: subject, Settings: settingsWith(types.VisibilityGeofenced, 5000)}, false},
		{"friends only connected", EvaluationInput{ViewerID: viewer, SubjectID: subject, Settings: settingsWith(types.VisibilityFriendsOnly, 100), Connected: true}, true},
		{"friends only stranger", EvaluationInput{ViewerID: viewer, SubjectID: subject, Settings: settingsWith(types.VisibilityFriendsOnly, 100), DistanceMeters: dist(1)}, false},
		{"unknown mode", EvaluationInput{ViewerID: viewer, SubjectID: subject, Settings: settingsWith("everyone", 100)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Evaluate(tt.in); got != tt.want {
				t.Fatalf("Evaluate() = %v, want %v", got, tt.want)
			}
		})
	}
}

// Viewer at (0, 0) and subject at (0.0009, 0) are about 100 m apart.
func TestEvaluateGeofenceScenario(t *testing.T) {
	viewer, subject := uuid.New(), uuid.New()
	d := geo.HaversineMeters(0, 0, 0.0009, 0)

	in := EvaluationInput{
		ViewerID:       viewer,
		SubjectID:      subject,
		Settings:       settingsWith(types.VisibilityGeofenced, 100),
		DistanceMeters: &d,
	}
	if !Evaluate(in) {
		t.Fatalf("radius 100 at %.3f m: expected visible", d)
	}

	in.Settings.VisibilityRadius = 50
	if Evaluate(in) {
		t.Fatalf("radius 50 at %.3f m: expected hidden", d)
	}
}

func TestEvaluateIsDeterministic(t *testing.T) {
	in := EvaluationInput{
		ViewerID:       uuid.New(),
		SubjectID:      uuid.New(),
		Settings:       settingsWith(types.VisibilityGeofenced, 250),
		DistanceMeters: dist(249.7),
	}
	first := Evaluate(in)
	for range 100 {
		if Evaluate(in) != first {
			t.Fatalf("decision changed between calls")
		}
	}
}
