package series

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestResolveTimestampsBatched(t *testing.T) {
	base := time.Unix(1_700_000_000, 0).UTC()
	gateway := &fakeGateway{
		blockTimes: map[uint64]time.Time{
			1: base,
			2: base.Add(3 * time.Second),
			3: base.Add(6 * time.Second),
			4: base.Add(9 * time.Second),
			5: base.Add(12 * time.Second),
		},
	}

	resolved, skipped := resolveTimestamps(context.Background(), gateway, []uint64{1, 2, 3, 4, 5}, 2, zap.NewNop())
	if skipped != 0 {
		t.Fatalf("unexpected skips: %d", skipped)
	}
	if len(resolved) != 5 {
		t.Fatalf("expected 5 resolved blocks, got %d", len(resolved))
	}
	if resolved[3] != base.Add(6*time.Second).UnixMilli() {
		t.Fatalf("timestamp mismatch for block 3: %d", resolved[3])
	}
}

func TestResolveTimestampsPartialFailure(t *testing.T) {
	base := time.Unix(1_700_000_000, 0).UTC()
	gateway := &fakeGateway{
		blockTimes: map[uint64]time.Time{
			1: base,
			3: base.Add(6 * time.Second),
		},
		blockErrs: map[uint64]error{2: fmt.Errorf("header not found")},
	}

	resolved, skipped := resolveTimestamps(context.Background(), gateway, []uint64{1, 2, 3}, 2, zap.NewNop())
	if skipped != 1 {
		t.Fatalf("expected one skip, got %d", skipped)
	}
	if len(resolved) != 2 {
		t.Fatalf("expected 2 resolved blocks, got %d", len(resolved))
	}
	if _, ok := resolved[2]; ok {
		t.Fatalf("failed block should not be resolved")
	}
}

func TestResolveTimestampsEmptyInput(t *testing.T) {
	resolved, skipped := resolveTimestamps(context.Background(), &fakeGateway{}, nil, 50, zap.NewNop())
	if len(resolved) != 0 || skipped != 0 {
		t.Fatalf("empty input should resolve nothing: %d resolved, %d skipped", len(resolved), skipped)
	}
}

func TestResolveTimestampsCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gateway := &fakeGateway{
		blockErrs: map[uint64]error{
			1: context.Canceled, 2: context.Canceled, 3: context.Canceled,
		},
	}

	resolved, _ := resolveTimestamps(ctx, gateway, []uint64{1, 2, 3}, 1, zap.NewNop())
	if len(resolved) != 0 {
		t.Fatalf("canceled context should resolve nothing, got %d", len(resolved))
	}
}
