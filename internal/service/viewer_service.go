// Package service orchestrates one viewer session over a loaded bundle.
package service

import (
	"context"
	"errors"
	"log"

	"github.com/brandonlukas/lumap/internal/cache"
	"github.com/brandonlukas/lumap/internal/catalog"
	"github.com/brandonlukas/lumap/internal/data/bundle"
	"github.com/brandonlukas/lumap/internal/render"
	"github.com/brandonlukas/lumap/internal/viewer"
)

// ViewerServiceConfig contains viewer service configuration.
type ViewerServiceConfig struct {
	Dataset  *bundle.Dataset
	Fetcher  viewer.VariantFetcher
	Cache    *cache.Manager
	Renderer *render.SnapshotRenderer

	SnapshotWidth  int
	SnapshotHeight int
}

// ViewerService ties the loaded dataset, the view-state controller, the
// snapshot renderer, and the caches together behind one session API.
type ViewerService struct {
	controller *viewer.Controller
	positions  []float32
	bounds     render.Bounds
	cache      *cache.Manager
	renderer   *render.SnapshotRenderer

	defaultWidth  int
	defaultHeight int
}

// AttributeInfo describes one attribute for the UI dropdown.
type AttributeInfo struct {
	Name          string   `json:"name"`
	Categories    []string `json:"categories"`
	Highlightable bool     `json:"highlightable"`
}

// StateInfo is the externally visible view state.
type StateInfo struct {
	Attribute *string `json:"attribute"`
	Highlight *int    `json:"highlight"`
	Version   uint64  `json:"version"`
	Points    int     `json:"points"`
}

// NewViewerService builds a session from a loaded dataset.
func NewViewerService(cfg ViewerServiceConfig) (*ViewerService, error) {
	var variantCache viewer.VariantCache
	if cfg.Cache != nil {
		variantCache = cfg.Cache
	}

	controller, err := viewer.NewController(viewer.Config{
		Catalog:    cfg.Dataset.Catalog,
		BaseColors: cfg.Dataset.BaseColors,
		NumPoints:  cfg.Dataset.NumPoints,
		Codes:      cfg.Dataset.Codes,
		Variants:   cfg.Dataset.VariantColors,
		Fetcher:    cfg.Fetcher,
		Cache:      variantCache,
	})
	if err != nil {
		return nil, err
	}

	return &ViewerService{
		controller:    controller,
		positions:     cfg.Dataset.Positions,
		bounds:        render.ComputeBounds(cfg.Dataset.Positions),
		cache:         cfg.Cache,
		renderer:      cfg.Renderer,
		defaultWidth:  cfg.SnapshotWidth,
		defaultHeight: cfg.SnapshotHeight,
	}, nil
}

// Controller exposes the state machine for input adapters.
func (s *ViewerService) Controller() *viewer.Controller {
	return s.controller
}

// Attributes lists the declared attributes in declaration order.
func (s *ViewerService) Attributes() []AttributeInfo {
	cat := s.controller.Catalog()
	names := cat.List()
	out := make([]AttributeInfo, 0, len(names))
	for _, name := range names {
		categories, err := cat.CategoriesOf(name)
		if err != nil {
			continue
		}
		out = append(out, AttributeInfo{
			Name:          name,
			Categories:    categories,
			Highlightable: s.controller.HasCodes(name),
		})
	}
	return out
}

// DefaultAttribute returns the dataset's declared default, if any.
func (s *ViewerService) DefaultAttribute() (string, bool) {
	return s.controller.Catalog().ResolveDefault()
}

// State reports the current selection and buffer version.
func (s *ViewerService) State() StateInfo {
	st := s.controller.State()
	info := StateInfo{
		Version: s.controller.Version(),
		Points:  s.controller.NumPoints(),
	}
	if name, ok := st.Attribute(); ok {
		info.Attribute = &name
	}
	if category, ok := st.Highlight(); ok {
		info.Highlight = &category
	}
	return info
}

// Apply runs one command. Post-load failures are recovered locally: the
// viewer keeps rendering the last-known-good buffers and the error is
// reported for diagnostics.
func (s *ViewerService) Apply(ctx context.Context, cmd viewer.Command) error {
	err := s.controller.Apply(ctx, cmd)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, viewer.ErrStaleResponse):
		// Superseded fetch results are discarded, not surfaced.
		log.Printf("viewer: %v (discarded)", err)
		return nil
	case errors.Is(err, catalog.ErrUnknownAttribute):
		log.Printf("viewer: %v (ignored)", err)
		return err
	default:
		log.Printf("viewer: command failed, keeping last-good state: %v", err)
		return err
	}
}

// ColorBytes serializes the live color buffer as little-endian float32,
// ready for GPU upload by the web viewer.
func (s *ViewerService) ColorBytes() []byte {
	var out []byte
	s.controller.Read(func(colors, _ []float32, _ uint64) {
		out = bundle.Float32BytesLE(colors)
	})
	return out
}

// BrightnessBytes serializes the live brightness buffer as little-endian
// float32.
func (s *ViewerService) BrightnessBytes() []byte {
	var out []byte
	s.controller.Read(func(_, brightness []float32, _ uint64) {
		out = bundle.Float32BytesLE(brightness)
	})
	return out
}

// Snapshot renders (or serves from cache) a PNG of the current view.
// Width/height of 0 use the configured defaults.
func (s *ViewerService) Snapshot(width, height int) ([]byte, error) {
	if width <= 0 {
		width = s.defaultWidth
	}
	if height <= 0 {
		height = s.defaultHeight
	}

	var (
		png []byte
		err error
		key string
		hit bool
	)
	s.controller.Read(func(colors, brightness []float32, version uint64) {
		key = cache.SnapshotKey(width, height, version)
		if s.cache != nil {
			if cached, ok := s.cache.GetSnapshot(key); ok {
				png = cached
				hit = true
				return
			}
		}
		png, err = s.renderer.Render(width, height, s.positions, s.bounds, colors, brightness)
	})
	if err != nil {
		return nil, err
	}
	if s.cache != nil && !hit {
		if cerr := s.cache.SetSnapshot(key, png); cerr != nil {
			log.Printf("service: snapshot cache set failed: %v", cerr)
		}
	}
	return png, nil
}
