package goPerm

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMetricsDisabledIsInert(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: false})

	m.Inc(MetricPermissionSet)
	m.Observe(MetricCheckLatency, time.Millisecond)

	if m.Enabled() {
		t.Fatal("expected disabled metrics")
	}
	if m.Value(MetricPermissionSet) != 0 {
		t.Fatal("expected no counting when disabled")
	}
	snap := m.Snapshot()
	if len(snap.Counters) != 0 || len(snap.Histograms) != 0 {
		t.Fatal("expected empty snapshot when disabled")
	}
}

func TestRegistryCountsOperations(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()

	if err := reg.SetPermission(ctx, adminA, userX, 0x08); err != nil {
		t.Fatalf("SetPermission failed: %v", err)
	}
	if err := reg.AddPermission(ctx, adminA, userX, 0x01); err != nil {
		t.Fatalf("AddPermission failed: %v", err)
	}
	if err := reg.RemovePermission(ctx, adminA, userX, 0x01); err != nil {
		t.Fatalf("RemovePermission failed: %v", err)
	}
	if err := reg.ClearPermission(ctx, adminA, userX); err != nil {
		t.Fatalf("ClearPermission failed: %v", err)
	}
	if err := reg.SetPermission(ctx, userX, userY, 0x01); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	snap := reg.MetricsSnapshot()
	expect := map[MetricID]uint64{
		MetricPermissionSet:     1,
		MetricPermissionAdded:   1,
		MetricPermissionRemoved: 1,
		MetricPermissionCleared: 1,
		MetricUnauthorized:      1,
	}
	for id, want := range expect {
		if got := snap.Counters[id]; got != want {
			t.Fatalf("metric %d: expected %d, got %d", id, want, got)
		}
	}
}

func TestCheckLatencyHistogram(t *testing.T) {
	reg, err := New().
		WithInitialAdmin(adminA).
		WithLatencyHistograms(true).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer reg.Close()
	ctx := context.Background()

	if _, err := reg.HasPermission(ctx, userX, 0x01); err != nil {
		t.Fatalf("HasPermission failed: %v", err)
	}

	snap := reg.MetricsSnapshot()
	buckets, ok := snap.Histograms[MetricCheckLatency]
	if !ok {
		t.Fatal("expected check latency histogram in snapshot")
	}
	var total uint64
	for _, b := range buckets {
		total += b
	}
	if total != 1 {
		t.Fatalf("expected one observation, got %d", total)
	}
}
