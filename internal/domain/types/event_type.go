package types

type LocationEvent string

func (s LocationEvent) String() string {
	return string(s)
}

const (
	EventLocationUpdated  LocationEvent = "LOCATION_UPDATED"
	EventSharingChanged   LocationEvent = "SHARING_CHANGED"
	EventIncognitoChanged LocationEvent = "INCOGNITO_CHANGED"
)

// RoutingKey returns the topic key for an event about userID, e.g. location.updated.<id>.
func (s LocationEvent) RoutingKey(userID string) string {
	switch s {
	case EventLocationUpdated:
		return "location.updated." + userID
	case EventSharingChanged:
		return "location.sharing." + userID
	case EventIncognitoChanged:
		return "location.incognito." + userID
	}
	return "location.unknown." + userID
}
