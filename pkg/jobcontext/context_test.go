package jobcontext

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestJobBegin_Metadata(t *testing.T) {
	jobID := uuid.New()
	ctx, cancel := JobBegin(context.Background(), jobID, 2)
	defer cancel()

	gotID, ok := GetJobID(ctx)
	if !ok || gotID != jobID {
		t.Fatalf("unexpected job id %v", gotID)
	}
	if GetWorkerID(ctx) != 2 {
		t.Fatalf("unexpected worker id %d", GetWorkerID(ctx))
	}
	if _, ok := ctx.Deadline(); !ok {
		t.Fatal("job context must carry a deadline")
	}
}

func TestJobEnd_Success(t *testing.T) {
	ctx, cancel := JobBegin(context.Background(), uuid.New(), 0)
	defer cancel()

	calls := 0
	err := JobEnd(ctx, func(context.Context) error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestJobEnd_NonRetryableFailsFast(t *testing.T) {
	ctx, cancel := JobBegin(context.Background(), uuid.New(), 0)
	defer cancel()

	calls := 0
	err := JobEnd(ctx, func(context.Context) error {
		calls++
		return errors.New("model output is invalid")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Fatalf("non-retryable error must not retry, got %d calls", calls)
	}
}

func TestJobEnd_RecoversPanic(t *testing.T) {
	ctx, cancel := JobBegin(context.Background(), uuid.New(), 0)
	defer cancel()

	err := JobEnd(ctx, func(context.Context) error {
		panic("boom")
	})
	if err == nil {
		t.Fatal("expected error from recovered panic")
	}
}

func TestIsRetryableError(t *testing.T) {
	cases := []struct {
		err       error
		retryable bool
	}{
		{nil, false},
		{errors.New("connection refused"), true},
		{errors.New("tgi returned status 503"), true},
		{errors.New("rate limit exceeded"), true},
		{errors.New("deadlock detected"), true},
		{errors.New("i/o timeout"), true},
		{errors.New("tgi returned status 400"), false},
		{errors.New("failed to parse JSON response"), false},
	}

	for _, tc := range cases {
		name := "nil"
		if tc.err != nil {
			name = tc.err.Error()
		}
		if got := IsRetryableError(tc.err); got != tc.retryable {
			t.Errorf("IsRetryableError(%q) = %v, want %v", name, got, tc.retryable)
		}
	}
}

func TestCalculateBackoff(t *testing.T) {
	base := 5 * time.Second

	if got := CalculateBackoff(0, base); got != 5*time.Second {
		t.Fatalf("attempt 0: got %v", got)
	}
	if got := CalculateBackoff(2, base); got != 20*time.Second {
		t.Fatalf("attempt 2: got %v", got)
	}
	// Capped at 60s
	if got := CalculateBackoff(10, base); got != 60*time.Second {
		t.Fatalf("attempt 10: got %v", got)
	}
	if got := CalculateBackoff(-1, base); got != 5*time.Second {
		t.Fatalf("negative attempt: got %v", got)
	}
}

func TestJobEnd_ContextCancelled(t *testing.T) {
	ctx, cancel := JobBegin(context.Background(), uuid.New(), 0)
	cancel()

	err := JobEnd(ctx, func(context.Context) error {
		return fmt.Errorf("should not run")
	})
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
