package memory_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/flemzord/toolclaw/internal/memory"
	"github.com/flemzord/toolclaw/pkg/plan"
)

func record(i int) memory.ExecutionRecord {
	return memory.ExecutionRecord{ID: fmt.Sprintf("rec-%d", i), Input: fmt.Sprintf("input %d", i)}
}

func ids(recs []memory.ExecutionRecord) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.ID
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestRingHistory_EvictsOldest(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	h := memory.NewRingHistory(3)
	for i := range 5 {
		if err := h.Append(ctx, record(i)); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	n, _ := h.Len(ctx)
	if n != 3 {
		t.Fatalf("Len = %d, want 3", n)
	}
	all, _ := h.Recent(ctx, 0)
	if got, want := ids(all), []string{"rec-2", "rec-3", "rec-4"}; !equal(got, want) {
		t.Fatalf("Recent(0) = %v, want %v", got, want)
	}
	if _, err := h.Get(ctx, "rec-0"); !errors.Is(err, memory.ErrRecordNotFound) {
		t.Fatalf("Get evicted record: err = %v", err)
	}
	if rec, err := h.Get(ctx, "rec-3"); err != nil || rec.Input != "input 3" {
		t.Fatalf("Get(rec-3) = %+v, %v", rec, err)
	}
}

func TestRingHistory_DefaultCapacity(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	h := memory.NewRingHistory(0)
	if h.Capacity() != memory.DefaultHistorySize {
		t.Fatalf("Capacity = %d, want %d", h.Capacity(), memory.DefaultHistorySize)
	}
	for i := range 150 {
		_ = h.Append(ctx, record(i))
	}
	recent, _ := h.Recent(ctx, 2)
	if got, want := ids(recent), []string{"rec-148", "rec-149"}; !equal(got, want) {
		t.Fatalf("Recent(2) = %v, want %v", got, want)
	}
	all, _ := h.Recent(ctx, -1)
	if len(all) != 100 || all[0].ID != "rec-50" {
		t.Fatalf("Recent(-1): len %d first %s", len(all), all[0].ID)
	}
}

func TestRingHistory_Prune(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	h := memory.NewRingHistory(4)
	for i := range 6 {
		_ = h.Append(ctx, record(i))
	}

	removed, err := h.Prune(ctx, 1)
	if err != nil || removed != 3 {
		t.Fatalf("Prune = %d, %v; want 3", removed, err)
	}
	all, _ := h.Recent(ctx, 0)
	if got := ids(all); !equal(got, []string{"rec-5"}) {
		t.Fatalf("after prune = %v", got)
	}

	if removed, _ := h.Prune(ctx, 10); removed != 0 {
		t.Fatalf("Prune above size removed %d", removed)
	}

	_ = h.Append(ctx, record(6))
	all, _ = h.Recent(ctx, 0)
	if got := ids(all); !equal(got, []string{"rec-5", "rec-6"}) {
		t.Fatalf("append after prune = %v", got)
	}
}

func TestRingHistory_Concurrent(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	h := memory.NewRingHistory(10)
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = h.Append(ctx, record(i))
			_, _ = h.Recent(ctx, 5)
		}()
	}
	wg.Wait()
	if n, _ := h.Len(ctx); n != 10 {
		t.Fatalf("Len = %d, want 10", n)
	}
}

func TestNewRecord(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("x", 3600))
	p := plan.Plan{Steps: []plan.Step{{Tool: "calculator"}}}
	a := memory.NewRecord("in", p, now)
	b := memory.NewRecord("in", p, now)
	if a.ID == "" || a.ID == b.ID {
		t.Fatalf("ids not unique: %q %q", a.ID, b.ID)
	}
	if !a.Timestamp.Equal(now) || a.Timestamp.Location() != time.UTC {
		t.Fatalf("timestamp = %v", a.Timestamp)
	}
	if a.Plan.Len() != 1 {
		t.Fatalf("plan not kept")
	}
}
