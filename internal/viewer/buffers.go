// Package viewer implements the attribute-driven rendering state machine:
// per-point color and brightness buffers, attribute switching, and category
// highlighting over datasets of a million+ points.
package viewer

import (
	"errors"
	"fmt"
)

// ErrSizeMismatch is returned when a color byte buffer does not match the
// point count.
var ErrSizeMismatch = errors.New("buffer size mismatch")

// BufferManager exclusively owns the live color and brightness arrays that
// the render surface draws from. All mutation goes through its methods; the
// loader and UI layers never touch the arrays directly.
//
// Colors are RGB float32 triples in [0,1], 3 per point. Brightness is one
// float32 per point in [0,1] multiplying rendered alpha, which controls the
// bloom intensity independently of hue. The original buffer snapshots the
// true colors of the active attribute and is the restore target when a
// highlight is cleared: restoring is an O(N) copy, never a recomputation.
type BufferManager struct {
	numPoints  int
	color      []float32 // 3N
	brightness []float32 // N
	original   []float32 // 3N

	version  uint64
	onChange func()
}

// NewBufferManager creates an empty manager. Initialize must run before any
// other operation.
func NewBufferManager() *BufferManager {
	return &BufferManager{}
}

// SetOnChange registers a callback invoked after every mutation. Used by the
// render layer in place of a backend-specific needsUpdate flag.
func (m *BufferManager) SetOnChange(fn func()) {
	m.onChange = fn
}

// Initialize sets the color buffer to the base colors, brightness to all 1.0,
// and snapshots the base colors as the original buffer.
func (m *BufferManager) Initialize(baseColors []uint8, numPoints int) error {
	if len(baseColors) != 3*numPoints {
		return fmt.Errorf("%w: got %d color bytes, expected %d for %d points", ErrSizeMismatch, len(baseColors), 3*numPoints, numPoints)
	}

	m.numPoints = numPoints
	m.color = make([]float32, 3*numPoints)
	m.original = make([]float32, 3*numPoints)
	m.brightness = make([]float32, numPoints)

	for i, b := range baseColors {
		v := float32(b) / 255
		m.color[i] = v
		m.original[i] = v
	}
	for i := range m.brightness {
		m.brightness[i] = 1
	}

	m.touch()
	return nil
}

// ApplyAttributeColors replaces both the live and original color buffers with
// a freshly fetched variant (3N bytes, 0-255) and resets brightness to 1.0,
// clearing any prior highlight dimming.
func (m *BufferManager) ApplyAttributeColors(colorBytes []uint8) error {
	if len(colorBytes) != 3*m.numPoints {
		return fmt.Errorf("%w: got %d color bytes, expected %d for %d points", ErrSizeMismatch, len(colorBytes), 3*m.numPoints, m.numPoints)
	}

	for i, b := range colorBytes {
		v := float32(b) / 255
		m.color[i] = v
		m.original[i] = v
	}
	for i := range m.brightness {
		m.brightness[i] = 1
	}

	m.touch()
	return nil
}

// ResetToBase switches to the "None (white)" display: all colors full white,
// brightness 1.0, no refetch required.
func (m *BufferManager) ResetToBase() {
	for i := range m.color {
		m.color[i] = 1
		m.original[i] = 1
	}
	for i := range m.brightness {
		m.brightness[i] = 1
	}
	m.touch()
}

// Colors returns the live color buffer. Read-only for callers; ownership
// stays with the manager.
func (m *BufferManager) Colors() []float32 {
	return m.color
}

// Brightness returns the live brightness buffer. Read-only for callers.
func (m *BufferManager) Brightness() []float32 {
	return m.brightness
}

// NumPoints returns the point count established by Initialize.
func (m *BufferManager) NumPoints() int {
	return m.numPoints
}

// Version increases on every mutation. Consumers cache derived artifacts
// (GPU uploads, snapshots) keyed by it.
func (m *BufferManager) Version() uint64 {
	return m.version
}

func (m *BufferManager) touch() {
	m.version++
	if m.onChange != nil {
		m.onChange()
	}
}
