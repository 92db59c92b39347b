package privacy

import (
	"context"

	"github.com/google/uuid"
)

// NoConnections is the relationship graph used while friends_only evaluation is disabled.
// Nobody is connected, so friends_only profiles are visible only to their owner.
type NoConnections struct{}

func (NoConnections) AreConnected(context.Context, uuid.UUID, uuid.UUID) (bool, error) {
	return false, nil
}
