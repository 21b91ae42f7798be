// Package render draws point-cloud snapshots using fogleman/gg.
package render

import (
	"bytes"
	"image/png"
	"sync"

	"github.com/fogleman/gg"
)

// Config contains renderer configuration.
type Config struct {
	Width      int
	Height     int
	PointSize  float64
	Background string
}

// Bounds is the XY extent of a point cloud.
type Bounds struct {
	MinX, MaxX float64
	MinY, MaxY float64
}

// ComputeBounds scans positions (xyz triples) once for the XY extent.
func ComputeBounds(positions []float32) Bounds {
	b := Bounds{}
	if len(positions) < 3 {
		return b
	}
	b.MinX, b.MaxX = float64(positions[0]), float64(positions[0])
	b.MinY, b.MaxY = float64(positions[1]), float64(positions[1])
	for i := 3; i+1 < len(positions); i += 3 {
		x := float64(positions[i])
		y := float64(positions[i+1])
		if x < b.MinX {
			b.MinX = x
		}
		if x > b.MaxX {
			b.MaxX = x
		}
		if y < b.MinY {
			b.MinY = y
		}
		if y > b.MaxY {
			b.MaxY = y
		}
	}
	return b
}

// SnapshotRenderer rasterizes the live color/brightness buffers into a PNG.
// It approximates the viewer's bloom with two passes per point: a wide
// low-alpha halo scaled by brightness, then a solid core.
type SnapshotRenderer struct {
	config      Config
	contextPool sync.Pool
	bufferPool  sync.Pool
}

// NewSnapshotRenderer creates a renderer; pooled contexts use the configured
// default size.
func NewSnapshotRenderer(cfg Config) *SnapshotRenderer {
	return &SnapshotRenderer{
		config: cfg,
		contextPool: sync.Pool{
			New: func() interface{} {
				return gg.NewContext(cfg.Width, cfg.Height)
			},
		},
		bufferPool: sync.Pool{
			New: func() interface{} {
				return bytes.NewBuffer(make([]byte, 0, 256*1024))
			},
		},
	}
}

// Render draws the cloud with an orthographic XY projection. positions carry
// xyz triples, colors RGB triples in [0,1], brightness one scalar per point
// multiplying alpha.
func (r *SnapshotRenderer) Render(width, height int, positions []float32, bounds Bounds, colors, brightness []float32) ([]byte, error) {
	pooled := width == r.config.Width && height == r.config.Height

	var dc *gg.Context
	if pooled {
		dc = r.contextPool.Get().(*gg.Context)
		defer r.contextPool.Put(dc)
	} else {
		dc = gg.NewContext(width, height)
	}

	dc.SetHexColor(r.config.Background)
	dc.Clear()

	n := len(positions) / 3
	if len(brightness) < n {
		n = len(brightness)
	}
	if len(colors)/3 < n {
		n = len(colors) / 3
	}
	if n == 0 {
		return r.encodeContext(dc)
	}

	spanX := bounds.MaxX - bounds.MinX
	spanY := bounds.MaxY - bounds.MinY
	if spanX == 0 {
		spanX = 1
	}
	if spanY == 0 {
		spanY = 1
	}

	// Uniform scale with a small margin; preserves the embedding's aspect.
	margin := 0.05
	scaleX := float64(width) * (1 - 2*margin) / spanX
	scaleY := float64(height) * (1 - 2*margin) / spanY
	scale := scaleX
	if scaleY < scale {
		scale = scaleY
	}
	offsetX := (float64(width) - spanX*scale) / 2
	offsetY := (float64(height) - spanY*scale) / 2

	ps := r.config.PointSize
	if ps <= 0 {
		ps = 1
	}

	// Glow pass: wide soft halos whose alpha follows per-point brightness.
	for i := 0; i < n; i++ {
		px := (float64(positions[3*i]) - bounds.MinX) * scale
		// Flip Y so +y in the embedding points up in the image.
		py := spanY*scale - (float64(positions[3*i+1])-bounds.MinY)*scale

		a := float64(brightness[i]) * 0.25
		dc.SetRGBA(float64(colors[3*i]), float64(colors[3*i+1]), float64(colors[3*i+2]), a)
		dc.DrawCircle(px+offsetX, py+offsetY, ps*3)
		dc.Fill()
	}

	// Core pass: solid points, alpha multiplied by brightness.
	for i := 0; i < n; i++ {
		px := (float64(positions[3*i]) - bounds.MinX) * scale
		py := spanY*scale - (float64(positions[3*i+1])-bounds.MinY)*scale

		dc.SetRGBA(float64(colors[3*i]), float64(colors[3*i+1]), float64(colors[3*i+2]), float64(brightness[i]))
		dc.DrawCircle(px+offsetX, py+offsetY, ps)
		dc.Fill()
	}

	return r.encodeContext(dc)
}

func (r *SnapshotRenderer) encodeContext(dc *gg.Context) ([]byte, error) {
	buf := r.bufferPool.Get().(*bytes.Buffer)
	defer func() {
		buf.Reset()
		r.bufferPool.Put(buf)
	}()

	// Use fast PNG encoder
	encoder := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := encoder.Encode(buf, dc.Image()); err != nil {
		return nil, err
	}

	// Copy buffer contents (buffer will be reused)
	result := make([]byte, buf.Len())
	copy(result, buf.Bytes())
	return result, nil
}
