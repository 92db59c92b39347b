package wrap

import (
	"context"
)

type (
	// LogCtx holds contextual information for logging
	LogCtx struct {
		Action    string
		UserID    string
		RequestID string
		SubjectID string
	}

	// logCtxKeyStruct is an unexported type for context keys defined in this package.
	logCtxKeyStruct struct{}
)

// LogCtxKey is the key for log context values
var LogCtxKey = &logCtxKeyStruct{}

// FromContext returns the LogCtx stored in ctx, if any.
func FromContext(ctx context.Context) (LogCtx, bool) {
	lc, ok := ctx.Value(LogCtxKey).(LogCtx)
	return lc, ok
}

// WithLogCtx returns a new context with the provided LogCtx merged over the existing one.
func WithLogCtx(ctx context.Context, newLc LogCtx) context.Context {
	if lc, ok := FromContext(ctx); ok {
		if newLc.Action == "" {
			newLc.Action = lc.Action
		}
		if newLc.UserID == "" {
			newLc.UserID = lc.UserID
		}
		if newLc.RequestID == "" {
			newLc.RequestID = lc.RequestID
		}
		if newLc.SubjectID == "" {
			newLc.SubjectID = lc.SubjectID
		}
	}
	return context.WithValue(ctx, LogCtxKey, newLc)
}

// WithUserID adds or updates the UserID in the LogCtx within the context
func WithUserID(ctx context.Context, userID string) context.Context {
	lc, _ := FromContext(ctx)
	lc.UserID = userID
	return context.WithValue(ctx, LogCtxKey, lc)
}

// WithRequestID adds or updates the RequestID in the LogCtx within the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	lc, _ := FromContext(ctx)
	lc.RequestID = requestID
	return context.WithValue(ctx, LogCtxKey, lc)
}

// WithSubjectID adds or updates the profile being looked at.
func WithSubjectID(ctx context.Context, subjectID string) context.Context {
	lc, _ := FromContext(ctx)
	lc.SubjectID = subjectID
	return context.WithValue(ctx, LogCtxKey, lc)
}

// WithAction adds or updates the Action in the LogCtx within the context
func WithAction(ctx context.Context, action string) context.Context {
	lc, _ := FromContext(ctx)
	lc.Action = action
	return context.WithValue(ctx, LogCtxKey, lc)
}
