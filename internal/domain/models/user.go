package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a record of the user directory.
type User struct {
	ID                uuid.UUID  `json:"id"`
	FirstName         string     `json:"first_name"`
	LastName          string     `json:"last_name"`
	Email             string     `json:"email"`
	ProfilePictureURL string     `json:"profile_picture_url"`
	Bio               string     `json:"bio"`
	Program           string     `json:"program"`
	LastSeen          *time.Time `json:"last_seen,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}
