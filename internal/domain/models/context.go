package models

import (
	"context"

	"github.com/google/uuid"
)

type viewerCtxKey struct{}

// WithViewer stores the authenticated caller in ctx.
func WithViewer(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, viewerCtxKey{}, userID)
}

// ViewerFromContext returns the authenticated caller, if any.
func ViewerFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(viewerCtxKey{}).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}
