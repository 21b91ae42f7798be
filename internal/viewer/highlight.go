package viewer

// Highlight display constants. Non-matching points drop to a fixed dim gray
// with a low brightness tuned to read as "unlit" under bloom.
const (
	dimGray       = 0.2
	dimBrightness = 0.15
)

// HighlightEngine computes the per-point dimming decision for a category
// selection. Every transition recomputes the full buffer in one O(N) pass;
// the previous selection is not tracked, so there is nothing cheap to diff
// against.
type HighlightEngine struct {
	buffers *BufferManager
}

// NewHighlightEngine creates an engine mutating buffers through the manager.
func NewHighlightEngine(buffers *BufferManager) *HighlightEngine {
	return &HighlightEngine{buffers: buffers}
}

// Apply keeps the original color and full brightness for points whose code
// equals category and dims everything else. Codes outside the declared
// category range never match, so uncategorized points always dim.
func (e *HighlightEngine) Apply(codes []uint8, category int) {
	m := e.buffers
	n := m.numPoints
	if len(codes) < n {
		n = len(codes)
	}

	for i := 0; i < n; i++ {
		if int(codes[i]) == category {
			m.color[3*i] = m.original[3*i]
			m.color[3*i+1] = m.original[3*i+1]
			m.color[3*i+2] = m.original[3*i+2]
			m.brightness[i] = 1
		} else {
			m.color[3*i] = dimGray
			m.color[3*i+1] = dimGray
			m.color[3*i+2] = dimGray
			m.brightness[i] = dimBrightness
		}
	}

	m.touch()
}

// Clear restores every point's original color and full brightness.
func (e *HighlightEngine) Clear() {
	m := e.buffers
	copy(m.color, m.original)
	for i := range m.brightness {
		m.brightness[i] = 1
	}
	m.touch()
}
