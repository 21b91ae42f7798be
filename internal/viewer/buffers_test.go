package viewer

import (
	"errors"
	"testing"
)

func TestBufferManager_Initialize(t *testing.T) {
	m := NewBufferManager()
	base := []uint8{255, 0, 0, 0, 255, 0, 0, 0, 255, 255, 255, 255}
	if err := m.Initialize(base, 4); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	if got := len(m.Colors()); got != 12 {
		t.Fatalf("expected 12 color values, got %d", got)
	}
	if got := len(m.Brightness()); got != 4 {
		t.Fatalf("expected 4 brightness values, got %d", got)
	}
	for i, b := range m.Brightness() {
		if b != 1 {
			t.Fatalf("expected brightness 1.0 at %d, got %v", i, b)
		}
	}
	if c := m.Colors(); c[0] != 1 || c[1] != 0 || c[4] != 1 {
		t.Fatalf("unexpected normalized colors: %v", c)
	}
}

func TestBufferManager_Initialize_SizeMismatch(t *testing.T) {
	m := NewBufferManager()
	// 3N-1 bytes must abort, leaving no partially initialized buffers.
	err := m.Initialize(make([]uint8, 11), 4)
	if !errors.Is(err, ErrSizeMismatch) {
		t.Fatalf("expected ErrSizeMismatch, got %v", err)
	}
	if m.NumPoints() != 0 || m.Colors() != nil {
		t.Fatalf("buffers must stay empty after failed init")
	}
}

func TestBufferManager_ApplyAttributeColors(t *testing.T) {
	m := NewBufferManager()
	if err := m.Initialize(make([]uint8, 12), 4); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	t.Run("sizeMismatch", func(t *testing.T) {
		before := append([]float32(nil), m.Colors()...)
		if err := m.ApplyAttributeColors(make([]uint8, 11)); !errors.Is(err, ErrSizeMismatch) {
			t.Fatalf("expected ErrSizeMismatch, got %v", err)
		}
		for i, v := range m.Colors() {
			if v != before[i] {
				t.Fatalf("colors mutated by failed apply at %d", i)
			}
		}
	})

	t.Run("resetsBrightness", func(t *testing.T) {
		m.Brightness()[2] = 0.15
		if err := m.ApplyAttributeColors(make([]uint8, 12)); err != nil {
			t.Fatalf("ApplyAttributeColors failed: %v", err)
		}
		for i, b := range m.Brightness() {
			if b != 1 {
				t.Fatalf("expected brightness reset to 1.0 at %d, got %v", i, b)
			}
		}
	})
}

func TestBufferManager_ResetToBase(t *testing.T) {
	m := NewBufferManager()
	if err := m.Initialize([]uint8{10, 20, 30, 40, 50, 60}, 2); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	m.Brightness()[0] = 0.15

	m.ResetToBase()

	for i, v := range m.Colors() {
		if v != 1 {
			t.Fatalf("expected white at %d, got %v", i, v)
		}
	}
	for i, b := range m.Brightness() {
		if b != 1 {
			t.Fatalf("expected brightness 1.0 at %d, got %v", i, b)
		}
	}
}

func TestBufferManager_VersionAndNotify(t *testing.T) {
	m := NewBufferManager()
	notified := 0
	m.SetOnChange(func() { notified++ })

	if err := m.Initialize(make([]uint8, 6), 2); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	v1 := m.Version()
	m.ResetToBase()
	if m.Version() <= v1 {
		t.Fatalf("version must increase on mutation: %d -> %d", v1, m.Version())
	}
	if notified != 2 {
		t.Fatalf("expected 2 change notifications, got %d", notified)
	}
}
