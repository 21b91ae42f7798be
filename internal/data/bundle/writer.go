package bundle

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/brandonlukas/lumap/pkg/colormap"
)

// MaxCategories bounds category codes to one byte.
const MaxCategories = 255

// WriteAttribute is one categorical attribute to include in a written bundle.
type WriteAttribute struct {
	Name  string
	Names []string
	Codes []uint8
}

// WriteOptions describes a bundle to write.
type WriteOptions struct {
	// Coords holds xyz triples, 3 per point.
	Coords []float32
	// Attributes in declaration order; the first one becomes the default.
	Attributes []WriteAttribute
	// Palette colors each category code. Defaults to colormap.Bright.
	Palette colormap.Colormap
}

// Write materializes a bundle directory: coords.bin, colors.bin, and for each
// attribute its attribute_<name>.bin codes and colors_<name>.bin variant plus
// attributes.json. With no attributes it writes all-white colors.bin and no
// attributes.json.
func Write(dir string, opts WriteOptions) error {
	if len(opts.Coords)%3 != 0 {
		return fmt.Errorf("%w: coords hold %d values, not a multiple of 3", ErrFormatMismatch, len(opts.Coords))
	}
	n := len(opts.Coords) / 3

	palette := opts.Palette
	if palette == nil {
		palette = colormap.Bright
	}

	for _, attr := range opts.Attributes {
		if len(attr.Names) > MaxCategories {
			return fmt.Errorf("%w: attribute %q has %d categories, limit is %d", ErrFormatMismatch, attr.Name, len(attr.Names), MaxCategories)
		}
		if len(attr.Codes) != n {
			return fmt.Errorf("%w: attribute %q has %d codes, expected %d", ErrFormatMismatch, attr.Name, len(attr.Codes), n)
		}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	if err := writeFile(dir, "coords.bin", Float32BytesLE(opts.Coords)); err != nil {
		return err
	}

	if len(opts.Attributes) == 0 {
		// No attributes: all-white points, no attributes.json.
		white := bytes.Repeat([]byte{255}, 3*n)
		return writeFile(dir, "colors.bin", white)
	}

	for _, attr := range opts.Attributes {
		if err := writeFile(dir, "attribute_"+attr.Name+".bin", attr.Codes); err != nil {
			return err
		}
		if err := writeFile(dir, "colors_"+attr.Name+".bin", codesToColors(attr.Codes, palette)); err != nil {
			return err
		}
	}

	// The default attribute's variant doubles as the base colors.
	defaultAttr := opts.Attributes[0]
	if err := writeFile(dir, "colors.bin", codesToColors(defaultAttr.Codes, palette)); err != nil {
		return err
	}

	doc, err := marshalMetadata(defaultAttr.Name, opts.Attributes)
	if err != nil {
		return err
	}
	return writeFile(dir, "attributes.json", doc)
}

// codesToColors expands category codes into RGB byte triples by cycling the
// palette.
func codesToColors(codes []uint8, palette colormap.Colormap) []byte {
	out := make([]byte, 0, 3*len(codes))
	for _, code := range codes {
		c := palette.AtIndex(int(code))
		out = append(out, c.R, c.G, c.B)
	}
	return out
}

// marshalMetadata hand-assembles attributes.json so attribute declaration
// order survives; a map marshal would sort the keys.
func marshalMetadata(defaultAttribute string, attrs []WriteAttribute) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("{\n  \"default_attribute\": ")
	if err := encodeJSON(&buf, defaultAttribute); err != nil {
		return nil, err
	}
	buf.WriteString(",\n  \"attributes\": {")
	for i, attr := range attrs {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString("\n    ")
		if err := encodeJSON(&buf, attr.Name); err != nil {
			return nil, err
		}
		buf.WriteString(": {\"names\": ")
		if err := encodeJSON(&buf, attr.Names); err != nil {
			return nil, err
		}
		buf.WriteString("}")
	}
	buf.WriteString("\n  }\n}\n")
	return buf.Bytes(), nil
}

func encodeJSON(buf *bytes.Buffer, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	buf.Write(data)
	return nil
}

func writeFile(dir, name string, data []byte) error {
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
