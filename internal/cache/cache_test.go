package cache

import (
	"testing"
	"time"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(Config{
		SnapshotSizeMB: 8,
		SnapshotTTL:    1 * time.Minute,
		VariantEntries: 2,
	})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m
}

func TestSnapshotKey(t *testing.T) {
	got := SnapshotKey(1024, 768, 42)
	want := "snap:1024x768:v42"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
	if SnapshotKey(1024, 768, 43) == got {
		t.Fatal("different versions must produce different keys")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	m := newTestManager(t)

	if _, ok := m.GetSnapshot("missing"); ok {
		t.Fatal("unexpected hit for missing key")
	}

	key := SnapshotKey(64, 64, 1)
	if err := m.SetSnapshot(key, []byte{1, 2, 3}); err != nil {
		t.Fatalf("SetSnapshot failed: %v", err)
	}
	data, ok := m.GetSnapshot(key)
	if !ok || len(data) != 3 {
		t.Fatalf("expected cached snapshot, got ok=%v len=%d", ok, len(data))
	}
}

func TestVariantLRUEviction(t *testing.T) {
	m := newTestManager(t)

	m.SetVariant("a", []uint8{1})
	m.SetVariant("b", []uint8{2})
	m.SetVariant("c", []uint8{3})

	// Capacity 2: the oldest entry is gone.
	if _, ok := m.GetVariant("a"); ok {
		t.Fatal("expected oldest variant to be evicted")
	}
	if v, ok := m.GetVariant("c"); !ok || v[0] != 3 {
		t.Fatalf("expected newest variant cached, got ok=%v", ok)
	}
}
