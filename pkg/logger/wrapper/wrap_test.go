package wrap

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestErrorCarriesLogCtx(t *testing.T) {
	if Error(context.Background(), nil) != nil {
		t.Fatalf("nil error must stay nil")
	}

	ctx := WithAction(WithUserID(context.Background(), "u1"), "nearby_search")
	base := errors.New("timeout")
	err := fmt.Errorf("Service.FindNearbyUsers: %w", Error(ctx, base))

	if !errors.Is(err, base) {
		t.Fatalf("wrapped error lost its cause")
	}

	lc, ok := FromContext(ErrorCtx(context.Background(), err))
	if !ok || lc.Action != "nearby_search" || lc.UserID != "u1" {
		t.Fatalf("restored log ctx = %+v", lc)
	}

	plain := context.Background()
	if ErrorCtx(plain, base) != plain {
		t.Fatalf("plain errors must leave ctx untouched")
	}
}

func TestWithLogCtxMerges(t *testing.T) {
	ctx := WithLogCtx(context.Background(), LogCtx{UserID: "u1", RequestID: "r1"})
	ctx = WithLogCtx(ctx, LogCtx{Action: "privacy_batch", SubjectID: "s1"})

	lc, _ := FromContext(ctx)
	want := LogCtx{Action: "privacy_batch", UserID: "u1", RequestID: "r1", SubjectID: "s1"}
	if lc != want {
		t.Fatalf("merged = %+v, want %+v", lc, want)
	}
}
