package viewer

import "testing"

func newTestBuffers(t *testing.T) *BufferManager {
	t.Helper()
	m := NewBufferManager()
	base := []uint8{
		255, 0, 0,
		0, 255, 0,
		0, 0, 255,
		255, 255, 0,
	}
	if err := m.Initialize(base, 4); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	return m
}

func TestHighlightEngine_Scenario(t *testing.T) {
	m := newTestBuffers(t)
	e := NewHighlightEngine(m)
	codes := []uint8{0, 1, 0, 1}

	e.Apply(codes, 0)
	wantB := []float32{1, 0.15, 1, 0.15}
	for i, b := range m.Brightness() {
		if b != wantB[i] {
			t.Fatalf("highlight(0): brightness[%d] = %v, want %v", i, b, wantB[i])
		}
	}

	// Direct transition between highlights, no intermediate clear.
	e.Apply(codes, 1)
	wantB = []float32{0.15, 1, 0.15, 1}
	for i, b := range m.Brightness() {
		if b != wantB[i] {
			t.Fatalf("highlight(1): brightness[%d] = %v, want %v", i, b, wantB[i])
		}
	}

	e.Clear()
	for i, b := range m.Brightness() {
		if b != 1 {
			t.Fatalf("clear: brightness[%d] = %v, want 1.0", i, b)
		}
	}
	for i, v := range m.Colors() {
		if v != m.original[i] {
			t.Fatalf("clear: colors[%d] = %v, want original %v", i, v, m.original[i])
		}
	}
}

func TestHighlightEngine_PerPointRule(t *testing.T) {
	m := newTestBuffers(t)
	e := NewHighlightEngine(m)
	codes := []uint8{1, 0, 1, 1}

	e.Apply(codes, 1)

	for i := 0; i < 4; i++ {
		if int(codes[i]) == 1 {
			if m.Brightness()[i] != 1 {
				t.Fatalf("matching point %d: brightness = %v, want 1.0", i, m.Brightness()[i])
			}
			for k := 0; k < 3; k++ {
				if m.Colors()[3*i+k] != m.original[3*i+k] {
					t.Fatalf("matching point %d: color channel %d not restored", i, k)
				}
			}
		} else {
			if m.Brightness()[i] != 0.15 {
				t.Fatalf("dimmed point %d: brightness = %v, want 0.15", i, m.Brightness()[i])
			}
			for k := 0; k < 3; k++ {
				if m.Colors()[3*i+k] != 0.2 {
					t.Fatalf("dimmed point %d: color channel %d = %v, want 0.2", i, k, m.Colors()[3*i+k])
				}
			}
		}
	}
}

func TestHighlightEngine_RoundTripRestoresBitIdentical(t *testing.T) {
	m := newTestBuffers(t)
	e := NewHighlightEngine(m)
	original := append([]float32(nil), m.Colors()...)

	e.Apply([]uint8{0, 1, 0, 1}, 1)
	e.Clear()

	for i, v := range m.Colors() {
		if v != original[i] {
			t.Fatalf("colors[%d] = %v, want %v after round trip", i, v, original[i])
		}
	}
}

func TestHighlightEngine_ClearIsIdempotent(t *testing.T) {
	m := newTestBuffers(t)
	e := NewHighlightEngine(m)

	e.Apply([]uint8{0, 1, 0, 1}, 0)
	e.Clear()
	once := append([]float32(nil), m.Colors()...)
	onceB := append([]float32(nil), m.Brightness()...)

	e.Clear()
	for i, v := range m.Colors() {
		if v != once[i] {
			t.Fatalf("second clear changed colors[%d]", i)
		}
	}
	for i, b := range m.Brightness() {
		if b != onceB[i] {
			t.Fatalf("second clear changed brightness[%d]", i)
		}
	}
}

func TestHighlightEngine_OutOfRangeCodesAlwaysDim(t *testing.T) {
	m := newTestBuffers(t)
	e := NewHighlightEngine(m)

	// Code 7 exceeds any declared category; such points never match.
	e.Apply([]uint8{0, 7, 0, 7}, 0)
	if m.Brightness()[1] != 0.15 || m.Brightness()[3] != 0.15 {
		t.Fatalf("uncategorized points must dim, got %v", m.Brightness())
	}
	e.Apply([]uint8{0, 7, 0, 7}, 7)
	// 7 is not a valid category either; the engine still follows codes.
	if m.Brightness()[1] != 1 {
		t.Fatalf("engine matches raw codes; validation lives in the controller")
	}
}
