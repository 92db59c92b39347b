package models

import (
	"time"

	"github.com/google/uuid"
)

// AccessToken is the only token type this service accepts.
const AccessToken = "access"

// Claims are the verified claims of an access token.
type Claims struct {
	UserID    uuid.UUID
	TokenID   uuid.UUID
	TokenType string
	Email     string
	ExpiresAt time.Time
}
