// Package bundle loads and writes lumap point-cloud bundles.
//
// A bundle is a fixed layout of files under one base URL: coords.bin
// (float32 LE, 3 per point), colors.bin (uint8 RGB, 3 per point), an optional
// attributes.json, and per-attribute code and color-variant buffers. Every
// .bin fetch transparently falls back to a zstd-compressed <file>.zst.
package bundle

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/brandonlukas/lumap/internal/catalog"
)

// LegacyAttribute is the single attribute name assumed when attributes.json
// is absent but the old celltype.bin/celltype_names.json pair is present.
const LegacyAttribute = "celltype"

// Dataset is the validated result of loading a bundle.
type Dataset struct {
	// Positions holds xyz triples, 3*NumPoints values, immutable after load.
	Positions []float32
	// BaseColors holds RGB byte triples, 3*NumPoints values.
	BaseColors []uint8
	// Catalog lists the declared attributes; empty in base-color mode.
	Catalog *catalog.Catalog
	// Codes maps attribute name to its per-point category codes. Attributes
	// whose code file is missing are absent from the map.
	Codes map[string][]uint8
	// VariantColors maps attribute name to its preloaded RGB byte triples.
	// Populated only for variants fetched at load time.
	VariantColors map[string][]uint8

	NumPoints int
}

// Client fetches bundle files over HTTP.
type Client struct {
	baseURL *url.URL
	hc      *http.Client
	decoder *zstd.Decoder
}

// NewClient creates a bundle client for the given base URL.
func NewClient(baseURL string) (*Client, error) {
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	return &Client{
		baseURL: u,
		hc:      &http.Client{Timeout: 60 * time.Second},
		decoder: decoder,
	}, nil
}

// Close releases the decompressor.
func (c *Client) Close() {
	if c.decoder != nil {
		c.decoder.Close()
	}
}

// fetch retrieves one file, trying <name> first and <name>.zst second.
func (c *Client) fetch(ctx context.Context, name string) ([]byte, error) {
	data, err := c.fetchRaw(ctx, name)
	if err == nil {
		return data, nil
	}
	if err != ErrNotFound || !strings.HasSuffix(name, ".bin") {
		return nil, err
	}

	compressed, zerr := c.fetchRaw(ctx, name+".zst")
	if zerr != nil {
		// Report the plain file's absence, not the .zst probe's.
		return nil, err
	}
	decompressed, zerr := c.decoder.DecodeAll(compressed, nil)
	if zerr != nil {
		return nil, fmt.Errorf("%w: %s.zst: zstd decompress: %v", ErrNetworkFailure, name, zerr)
	}
	return decompressed, nil
}

func (c *Client) fetchRaw(ctx context.Context, name string) ([]byte, error) {
	ref, err := url.Parse(name)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid file name %q", ErrNetworkFailure, name)
	}
	u := c.baseURL.ResolveReference(ref)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNetworkFailure, name, err)
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNetworkFailure, name, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: %s: status %d", ErrNetworkFailure, name, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNetworkFailure, name, err)
	}
	return data, nil
}

// LoadOptions controls optional load behavior.
type LoadOptions struct {
	// PreloadVariants fetches every attribute's colors_<name>.bin up front.
	PreloadVariants bool
}

// Load fetches and validates a full bundle. Required files (coords.bin,
// colors.bin) are fatal on absence or mismatch; optional files degrade to a
// dataset without that attribute's data.
func (c *Client) Load(ctx context.Context, opts LoadOptions) (*Dataset, error) {
	coordBytes, err := c.fetch(ctx, "coords.bin")
	if err != nil {
		return nil, fmt.Errorf("coords.bin: %w", err)
	}
	positions, err := float32sLE(coordBytes)
	if err != nil {
		return nil, fmt.Errorf("coords.bin: %w", err)
	}
	if len(positions)%3 != 0 {
		return nil, fmt.Errorf("%w: coords.bin holds %d values, not a multiple of 3", ErrFormatMismatch, len(positions))
	}
	n := len(positions) / 3

	baseColors, err := c.fetch(ctx, "colors.bin")
	if err != nil {
		return nil, fmt.Errorf("colors.bin: %w", err)
	}
	if len(baseColors) != 3*n {
		return nil, fmt.Errorf("%w: colors.bin is %d bytes, expected %d for %d points", ErrFormatMismatch, len(baseColors), 3*n, n)
	}

	ds := &Dataset{
		Positions:     positions,
		BaseColors:    baseColors,
		Codes:         make(map[string][]uint8),
		VariantColors: make(map[string][]uint8),
		NumPoints:     n,
	}

	if err := c.loadAttributes(ctx, ds); err != nil {
		return nil, err
	}

	if opts.PreloadVariants {
		for _, name := range ds.Catalog.List() {
			colors, err := c.FetchVariant(ctx, name, n)
			if err == nil {
				ds.VariantColors[name] = colors
				continue
			}
			if isOptionalMiss(err) {
				log.Printf("bundle: colors_%s.bin unavailable, will keep prior colors on switch: %v", name, err)
				continue
			}
			return nil, fmt.Errorf("colors_%s.bin: %w", name, err)
		}
	}

	return ds, nil
}

func (c *Client) loadAttributes(ctx context.Context, ds *Dataset) error {
	metaBytes, err := c.fetchRaw(ctx, "attributes.json")
	switch {
	case err == nil:
		md, perr := parseMetadata(metaBytes)
		if perr != nil {
			return fmt.Errorf("%w: %v", ErrFormatMismatch, perr)
		}
		ds.Catalog = catalog.New(md.DefaultAttribute, md.Attributes)
	case err == ErrNotFound:
		// Legacy fallback: a single hardcoded celltype attribute from two
		// files predating attributes.json.
		return c.loadLegacyAttribute(ctx, ds)
	default:
		return fmt.Errorf("attributes.json: %w", err)
	}

	for _, name := range ds.Catalog.List() {
		codes, err := c.fetch(ctx, "attribute_"+name+".bin")
		if err == ErrNotFound {
			// Missing code files are skipped, not fatal: the attribute can
			// still recolor, it just cannot highlight.
			log.Printf("bundle: attribute_%s.bin missing, highlight disabled for %q", name, name)
			continue
		}
		if err != nil {
			return fmt.Errorf("attribute_%s.bin: %w", name, err)
		}
		if len(codes) != ds.NumPoints {
			return fmt.Errorf("%w: attribute_%s.bin is %d bytes, expected %d", ErrFormatMismatch, name, len(codes), ds.NumPoints)
		}
		ds.Codes[name] = codes
	}
	return nil
}

func (c *Client) loadLegacyAttribute(ctx context.Context, ds *Dataset) error {
	namesBytes, nerr := c.fetchRaw(ctx, "celltype_names.json")
	codes, cerr := c.fetch(ctx, "celltype.bin")
	if nerr == ErrNotFound || cerr == ErrNotFound {
		// Neither metadata nor legacy files: degrade to base-color mode.
		ds.Catalog = catalog.Empty()
		return nil
	}
	if nerr != nil {
		return fmt.Errorf("celltype_names.json: %w", nerr)
	}
	if cerr != nil {
		return fmt.Errorf("celltype.bin: %w", cerr)
	}

	names, err := parseLegacyNames(namesBytes)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFormatMismatch, err)
	}
	if len(codes) != ds.NumPoints {
		return fmt.Errorf("%w: celltype.bin is %d bytes, expected %d", ErrFormatMismatch, len(codes), ds.NumPoints)
	}

	ds.Catalog = catalog.New(LegacyAttribute, []catalog.AttributeMeta{
		{Name: LegacyAttribute, Categories: names},
	})
	ds.Codes[LegacyAttribute] = codes
	return nil
}

// FetchVariant fetches colors_<name>.bin and validates it against the point
// count. Used lazily on first switch to an attribute whose colors were not
// preloaded.
func (c *Client) FetchVariant(ctx context.Context, name string, numPoints int) ([]uint8, error) {
	data, err := c.fetch(ctx, "colors_"+name+".bin")
	if err != nil {
		return nil, err
	}
	if len(data) != 3*numPoints {
		return nil, fmt.Errorf("%w: colors_%s.bin is %d bytes, expected %d", ErrFormatMismatch, name, len(data), 3*numPoints)
	}
	return data, nil
}

// isOptionalMiss reports whether err should degrade an optional fetch rather
// than abort the load.
func isOptionalMiss(err error) bool {
	return err == ErrNotFound
}
