package viewer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/brandonlukas/lumap/internal/catalog"
)

// ErrStaleResponse marks a variant fetch that resolved after a newer
// selection superseded it. The result is discarded, never applied.
var ErrStaleResponse = errors.New("stale attribute response")

// ErrVariantUnavailable means an attribute's color variant is neither
// preloaded nor fetchable.
var ErrVariantUnavailable = errors.New("attribute colors unavailable")

// VariantFetcher lazily retrieves an attribute's color variant. Implemented
// by bundle.Client.
type VariantFetcher interface {
	FetchVariant(ctx context.Context, name string, numPoints int) ([]uint8, error)
}

// VariantCache holds fetched color variants so a repeat switch needs no
// network round trip.
type VariantCache interface {
	GetVariant(name string) ([]uint8, bool)
	SetVariant(name string, colors []uint8)
}

// mapVariantCache is the fallback cache when none is injected.
type mapVariantCache map[string][]uint8

func (c mapVariantCache) GetVariant(name string) ([]uint8, bool) {
	v, ok := c[name]
	return v, ok
}

func (c mapVariantCache) SetVariant(name string, colors []uint8) {
	c[name] = colors
}

// ViewState is the current selection: which attribute colors the cloud and
// which of its categories, if any, is highlighted.
type ViewState struct {
	attribute    string
	hasAttribute bool
	highlight    int
	hasHighlight bool
}

// Attribute returns the current attribute name, ok=false in base-color mode.
func (s ViewState) Attribute() (string, bool) {
	return s.attribute, s.hasAttribute
}

// Highlight returns the highlighted category index, ok=false when idle.
func (s ViewState) Highlight() (int, bool) {
	return s.highlight, s.hasHighlight
}

// Config assembles a controller from loaded dataset parts.
type Config struct {
	Catalog    *catalog.Catalog
	BaseColors []uint8
	NumPoints  int
	// Codes maps attribute name to per-point category codes.
	Codes map[string][]uint8
	// Variants holds color variants already fetched at load time.
	Variants map[string][]uint8
	// Fetcher retrieves variants on demand; nil disables lazy fetching.
	Fetcher VariantFetcher
	// Cache stores fetched variants; nil falls back to an unbounded map.
	Cache VariantCache
}

// Controller owns the view state machine. All mutation funnels through
// Apply, serialized by one mutex, so a reader observes either the pre- or
// the fully post-mutation buffers, never an interleaving. The only
// suspension point is a variant fetch, which runs outside the lock; a
// monotonically increasing request token discards superseded results.
type Controller struct {
	mu sync.Mutex

	catalog *catalog.Catalog
	buffers *BufferManager
	engine  *HighlightEngine

	baseColors []uint8
	codes      map[string][]uint8
	variants   VariantCache
	fetcher    VariantFetcher

	state ViewState
	token uint64 // latest requested attribute switch
}

// NewController initializes buffers from the base colors and selects the
// catalog's default attribute. The base colors already encode the default
// attribute's variant, so startup needs no fetch.
func NewController(cfg Config) (*Controller, error) {
	buffers := NewBufferManager()
	if err := buffers.Initialize(cfg.BaseColors, cfg.NumPoints); err != nil {
		return nil, err
	}

	variants := cfg.Cache
	if variants == nil {
		variants = make(mapVariantCache)
	}
	for name, colors := range cfg.Variants {
		variants.SetVariant(name, colors)
	}

	codes := cfg.Codes
	if codes == nil {
		codes = make(map[string][]uint8)
	}

	c := &Controller{
		catalog:    cfg.Catalog,
		buffers:    buffers,
		engine:     NewHighlightEngine(buffers),
		baseColors: cfg.BaseColors,
		codes:      codes,
		variants:   variants,
		fetcher:    cfg.Fetcher,
	}
	if name, ok := cfg.Catalog.ResolveDefault(); ok {
		c.state = ViewState{attribute: name, hasAttribute: true}
	}
	return c, nil
}

// Apply executes one typed command against the state machine.
func (c *Controller) Apply(ctx context.Context, cmd Command) error {
	switch cmd := cmd.(type) {
	case SwitchAttribute:
		return c.switchAttribute(ctx, cmd.Name)
	case ClearAttribute:
		c.clearAttribute()
		return nil
	case SetHighlight:
		return c.setHighlight(cmd.Category)
	case ClearHighlight:
		c.clearHighlight()
		return nil
	case ResetDefaults:
		return c.resetDefaults()
	default:
		return fmt.Errorf("unknown command %T", cmd)
	}
}

func (c *Controller) switchAttribute(ctx context.Context, name string) error {
	c.mu.Lock()
	if !c.catalog.Has(name) {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", catalog.ErrUnknownAttribute, name)
	}

	if colors, ok := c.variants.GetVariant(name); ok {
		c.token++
		err := c.applySwitchLocked(name, colors)
		c.mu.Unlock()
		return err
	}

	if c.fetcher == nil {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrVariantUnavailable, name)
	}

	c.token++
	token := c.token
	numPoints := c.buffers.NumPoints()
	c.mu.Unlock()

	// Suspension point: the previously displayed colors stay visible while
	// the fetch is in flight.
	colors, err := c.fetcher.FetchVariant(ctx, name, numPoints)

	c.mu.Lock()
	defer c.mu.Unlock()

	if token != c.token {
		// A newer selection won the race; this result must not clobber it.
		return fmt.Errorf("%w: %s", ErrStaleResponse, name)
	}
	if err != nil {
		// Buffers and view state stay at the last-known-good selection.
		return fmt.Errorf("%w: %s: %v", ErrVariantUnavailable, name, err)
	}

	c.variants.SetVariant(name, colors)
	return c.applySwitchLocked(name, colors)
}

// applySwitchLocked installs an attribute's colors and resets the highlight;
// category indices are only meaningful within one attribute's namespace.
func (c *Controller) applySwitchLocked(name string, colors []uint8) error {
	if err := c.buffers.ApplyAttributeColors(colors); err != nil {
		return err
	}
	c.state = ViewState{attribute: name, hasAttribute: true}
	return nil
}

func (c *Controller) clearAttribute() {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Bumping the token also supersedes any in-flight variant fetch.
	c.token++
	c.buffers.ResetToBase()
	c.state = ViewState{}
}

func (c *Controller) setHighlight(category int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	attr, ok := c.state.Attribute()
	if !ok {
		// No attribute selected: no codes to consult, silent no-op.
		return nil
	}

	categories, err := c.catalog.CategoriesOf(attr)
	if err != nil {
		return nil
	}
	if category < 0 || category >= len(categories) {
		// Invalid indices mean "no highlight".
		c.engine.Clear()
		c.state.hasHighlight = false
		return nil
	}

	codes, ok := c.codes[attr]
	if !ok {
		return nil
	}

	c.engine.Apply(codes, category)
	c.state.highlight = category
	c.state.hasHighlight = true
	return nil
}

func (c *Controller) clearHighlight() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.engine.Clear()
	c.state.hasHighlight = false
}

func (c *Controller) resetDefaults() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.token++
	if err := c.buffers.Initialize(c.baseColors, c.buffers.NumPoints()); err != nil {
		return err
	}
	c.state = ViewState{}
	if name, ok := c.catalog.ResolveDefault(); ok {
		c.state = ViewState{attribute: name, hasAttribute: true}
	}
	return nil
}

// State returns a copy of the current view state.
func (c *Controller) State() ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Version returns the buffer version for cache keying.
func (c *Controller) Version() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buffers.Version()
}

// NumPoints returns the dataset's point count.
func (c *Controller) NumPoints() int {
	return c.buffers.NumPoints()
}

// Catalog returns the dataset's attribute catalog.
func (c *Controller) Catalog() *catalog.Catalog {
	return c.catalog
}

// HasCodes reports whether highlight data exists for an attribute.
func (c *Controller) HasCodes(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.codes[name]
	return ok
}

// Read runs fn with the live buffers under the state lock, so the read sees
// a consistent, non-interleaved view. fn must not retain the slices.
func (c *Controller) Read(fn func(colors, brightness []float32, version uint64)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c.buffers.Colors(), c.buffers.Brightness(), c.buffers.Version())
}
