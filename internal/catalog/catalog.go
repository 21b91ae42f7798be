// Package catalog holds the set of categorical attributes declared by a dataset.
package catalog

import (
	"errors"
	"fmt"
)

// ErrUnknownAttribute is returned when an attribute name was never declared.
var ErrUnknownAttribute = errors.New("unknown attribute")

// AttributeMeta describes one categorical attribute.
type AttributeMeta struct {
	Name       string
	Categories []string
}

// Catalog is the immutable set of attributes declared by a dataset.
// Declaration order is preserved so dropdowns render deterministically.
type Catalog struct {
	defaultAttribute string
	order            []string
	attrs            map[string]AttributeMeta
}

// New builds a catalog from attributes in declaration order. A defaultAttribute
// that is not among the declared attributes is ignored.
func New(defaultAttribute string, attrs []AttributeMeta) *Catalog {
	c := &Catalog{
		order: make([]string, 0, len(attrs)),
		attrs: make(map[string]AttributeMeta, len(attrs)),
	}
	for _, a := range attrs {
		if _, ok := c.attrs[a.Name]; ok {
			continue
		}
		c.order = append(c.order, a.Name)
		c.attrs[a.Name] = a
	}
	if _, ok := c.attrs[defaultAttribute]; ok {
		c.defaultAttribute = defaultAttribute
	}
	return c
}

// Empty returns a catalog with no attributes (base-color mode).
func Empty() *Catalog {
	return New("", nil)
}

// ResolveDefault returns the declared default attribute, or ok=false when the
// dataset starts in base-color mode.
func (c *Catalog) ResolveDefault() (string, bool) {
	if c.defaultAttribute == "" {
		return "", false
	}
	return c.defaultAttribute, true
}

// List returns attribute names in declaration order.
func (c *Catalog) List() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Len returns the number of declared attributes.
func (c *Catalog) Len() int {
	return len(c.order)
}

// Has reports whether name was declared.
func (c *Catalog) Has(name string) bool {
	_, ok := c.attrs[name]
	return ok
}

// CategoriesOf returns the ordered category names of an attribute.
func (c *Catalog) CategoriesOf(name string) ([]string, error) {
	meta, ok := c.attrs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAttribute, name)
	}
	return meta.Categories, nil
}
