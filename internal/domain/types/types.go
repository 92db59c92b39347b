package types

// Visibility is the profile visibility mode chosen by a user.
type Visibility string

func (v Visibility) String() string {
	return string(v)
}

const (
	VisibilityPublic      Visibility = "public"
	VisibilityPrivate     Visibility = "private"
	VisibilityGeofenced   Visibility = "geofenced"
	VisibilityFriendsOnly Visibility = "friends_only"
)

var Visibilities = []Visibility{
	VisibilityPublic,
	VisibilityPrivate,
	VisibilityGeofenced,
	VisibilityFriendsOnly,
}

func (v Visibility) IsValid() bool {
	switch v {
	case VisibilityPublic, VisibilityPrivate, VisibilityGeofenced, VisibilityFriendsOnly:
		return true
	}
	return false
}

// Visibility radius bounds in meters.
const (
	MinVisibilityRadius = 10
	MaxVisibilityRadius = 5000
)

// ConnectionStatus mirrors connections.status in postgres.
type ConnectionStatus string

const (
	ConnectionPending  ConnectionStatus = "pending"
	ConnectionAccepted ConnectionStatus = "accepted"
	ConnectionBlocked  ConnectionStatus = "blocked"
)
