// Package colormap provides categorical color palettes for point rendering.
package colormap

import (
	"image/color"
)

// Colormap assigns a color to a category code.
type Colormap interface {
	AtIndex(i int) color.RGBA
	Len() int
}

// CategoricalColormap cycles a fixed palette per category code.
type CategoricalColormap struct {
	colors []color.RGBA
}

// AtIndex returns the color at index i (wraps around).
func (c CategoricalColormap) AtIndex(i int) color.RGBA {
	if i < 0 {
		i = -i
	}
	return c.colors[i%len(c.colors)]
}

// Len returns the number of distinct colors before the palette repeats.
func (c CategoricalColormap) Len() int {
	return len(c.colors)
}

// Bright is the default lumap palette: 8 saturated colors cycled per
// category code, matching the colors baked into published bundles.
var Bright = CategoricalColormap{
	colors: []color.RGBA{
		{239, 83, 80, 255},   // red
		{255, 167, 38, 255},  // orange
		{255, 238, 88, 255},  // yellow
		{102, 187, 106, 255}, // green
		{66, 165, 245, 255},  // blue
		{171, 71, 188, 255},  // purple
		{0, 188, 212, 255},   // cyan
		{255, 202, 40, 255},  // gold
	},
}

// Tab20 is a 20-color categorical palette for attributes with many categories.
var Tab20 = CategoricalColormap{
	colors: []color.RGBA{
		{31, 119, 180, 255},  // Blue
		{255, 127, 14, 255},  // Orange
		{44, 160, 44, 255},   // Green
		{214, 39, 40, 255},   // Red
		{148, 103, 189, 255}, // Purple
		{140, 86, 75, 255},   // Brown
		{227, 119, 194, 255}, // Pink
		{127, 127, 127, 255}, // Gray
		{188, 189, 34, 255},  // Olive
		{23, 190, 207, 255},  // Cyan
		{174, 199, 232, 255}, // Light blue
		{255, 187, 120, 255}, // Light orange
		{152, 223, 138, 255}, // Light green
		{255, 152, 150, 255}, // Light red
		{197, 176, 213, 255}, // Light purple
		{196, 156, 148, 255}, // Light brown
		{247, 182, 210, 255}, // Light pink
		{199, 199, 199, 255}, // Light gray
		{219, 219, 141, 255}, // Light olive
		{158, 218, 229, 255}, // Light cyan
	},
}

// ByName resolves a palette by its config name. Unknown names fall back to Bright.
func ByName(name string) Colormap {
	switch name {
	case "tab20", "categorical":
		return Tab20
	default:
		return Bright
	}
}
