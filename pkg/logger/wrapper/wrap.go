package wrap

import (
	"context"
)

// Error attaches the LogCtx of ctx to err so it can be restored with ErrorCtx
// where the error is finally logged. A nil error stays nil.
func Error(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}

	lc, _ := FromContext(ctx)
	return &errorWithLogCtx{
		err:    err,
		logCtx: lc,
	}
}
