package models

import (
	"time"

	"github.com/Temutjin2k/campus-radar/internal/domain/types"
	"github.com/google/uuid"
)

// VisibleFields is the per-field mask applied by the profile projector.
type VisibleFields struct {
	Name    bool `json:"name"`
	Photo   bool `json:"photo"`
	Bio     bool `json:"bio"`
	Program bool `json:"program"`
	Courses bool `json:"courses"`
	Contact bool `json:"contact"`
}

type PrivacySettings struct {
	UserID            uuid.UUID        `json:"user_id"`
	ProfileVisibility types.Visibility `json:"profile_visibility" example:"geofenced"`
	VisibilityRadius  int              `json:"visibility_radius" example:"100"`
	ShowExactLocation bool             `json:"show_exact_location"`
	VisibleFields     VisibleFields    `json:"visible_fields"`
	UpdatedAt         time.Time        `json:"updated_at,omitzero"`
}

// DefaultPrivacySettings is what a user without a stored row gets.
func DefaultPrivacySettings(userID uuid.UUID) *PrivacySettings {
	return &PrivacySettings{
		UserID:            userID,
		ProfileVisibility: types.VisibilityGeofenced,
		VisibilityRadius:  100,
		ShowExactLocation: false,
		VisibleFields: VisibleFields{
			Name:    true,
			Photo:   true,
			Bio:     true,
			Program: true,
			Courses: false,
			Contact: false,
		},
	}
}

type VisibleFieldsPatch struct {
	Name    *bool `json:"name,omitempty"`
	Photo   *bool `json:"photo,omitempty"`
	Bio     *bool `json:"bio,omitempty"`
	Program *bool `json:"program,omitempty"`
	Courses *bool `json:"courses,omitempty"`
	Contact *bool `json:"contact,omitempty"`
}

// PrivacySettingsPatch carries only the fields a caller wants to change.
type PrivacySettingsPatch struct {
	ProfileVisibility *types.Visibility   `json:"profile_visibility,omitempty" swaggertype:"string" example:"public"`
	VisibilityRadius  *int                `json:"visibility_radius,omitempty" example:"250"`
	ShowExactLocation *bool               `json:"show_exact_location,omitempty"`
	VisibleFields     *VisibleFieldsPatch `json:"visible_fields,omitempty"`
}

// Apply returns a copy of s with every non-nil patch field written over it.
func (p PrivacySettingsPatch) Apply(s PrivacySettings) PrivacySettings {
	if p.ProfileVisibility != nil {
		s.ProfileVisibility = *p.ProfileVisibility
	}
	if p.VisibilityRadius != nil {
		s.VisibilityRadius = *p.VisibilityRadius
	}
	if p.ShowExactLocation != nil {
		s.ShowExactLocation = *p.ShowExactLocation
	}
	if f := p.VisibleFields; f != nil {
		setIf(&s.VisibleFields.Name, f.Name)
		setIf(&s.VisibleFields.Photo, f.Photo)
		setIf(&s.VisibleFields.Bio, f.Bio)
		setIf(&s.VisibleFields.Program, f.Program)
		setIf(&s.VisibleFields.Courses, f.Courses)
		setIf(&s.VisibleFields.Contact, f.Contact)
	}
	return s
}

func setIf(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

// FilteredProfile is a profile with every field the subject hides removed.
type FilteredProfile struct {
	UserID            uuid.UUID  `json:"user_id"`
	Online            bool       `json:"online"`
	LastSeen          *time.Time `json:"last_seen"`
	LocationContext   string     `json:"location_context" example:"On Campus"`
	FirstName         *string    `json:"first_name,omitempty"`
	LastName          *string    `json:"last_name,omitempty"`
	ProfilePictureURL *string    `json:"profile_picture_url,omitempty"`
	Bio               *string    `json:"bio,omitempty"`
	Program           *string    `json:"program,omitempty"`
}
