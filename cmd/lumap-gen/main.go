// Package main generates lumap bundles: either from a JSON point listing or
// as a synthetic demo cloud for trying the viewer without real data.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"

	"github.com/brandonlukas/lumap/internal/data/bundle"
	"github.com/brandonlukas/lumap/pkg/colormap"
)

// pointsFile is the JSON input schema for -in.
type pointsFile struct {
	Coords     []float32 `json:"coords"`
	Attributes []struct {
		Name  string   `json:"name"`
		Names []string `json:"names"`
		Codes []uint8  `json:"codes"`
	} `json:"attributes"`
}

func main() {
	inPath := flag.String("in", "", "JSON points file (coords + attributes)")
	outDir := flag.String("out", "lumap_bundle", "Output directory for the bundle")
	palette := flag.String("palette", "bright", "Palette for variant colors (bright, tab20)")
	demo := flag.Int("demo", 0, "Generate a synthetic demo cloud with N points instead of reading -in")
	seed := flag.Int64("seed", 1, "Random seed for -demo")
	flag.Parse()

	var opts bundle.WriteOptions
	var err error
	switch {
	case *demo > 0:
		opts = demoBundle(*demo, *seed)
	case *inPath != "":
		opts, err = readPoints(*inPath)
		if err != nil {
			log.Fatalf("Failed to read %s: %v", *inPath, err)
		}
	default:
		log.Fatal("Either -in or -demo is required")
	}
	opts.Palette = colormap.ByName(*palette)

	if err := bundle.Write(*outDir, opts); err != nil {
		log.Fatalf("Failed to write bundle: %v", err)
	}

	n := len(opts.Coords) / 3
	if len(opts.Attributes) == 0 {
		fmt.Printf("Wrote %d points to %s (no attributes; white points)\n", n, *outDir)
		return
	}
	fmt.Printf("Wrote %d points, %d attribute(s) to %s\n", n, len(opts.Attributes), *outDir)
}

func readPoints(path string) (bundle.WriteOptions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return bundle.WriteOptions{}, err
	}
	var pf pointsFile
	if err := json.Unmarshal(data, &pf); err != nil {
		return bundle.WriteOptions{}, err
	}

	opts := bundle.WriteOptions{Coords: pf.Coords}
	for _, a := range pf.Attributes {
		opts.Attributes = append(opts.Attributes, bundle.WriteAttribute{
			Name:  a.Name,
			Names: a.Names,
			Codes: a.Codes,
		})
	}
	return opts, nil
}

// demoBundle builds a synthetic cloud: eight Gaussian clusters on a ring,
// labeled by a single "celltype" attribute.
func demoBundle(n int, seed int64) bundle.WriteOptions {
	rng := rand.New(rand.NewSource(seed))

	const clusters = 8
	names := make([]string, clusters)
	for i := range names {
		names[i] = fmt.Sprintf("cluster_%d", i)
	}

	coords := make([]float32, 0, 3*n)
	codes := make([]uint8, 0, n)
	for i := 0; i < n; i++ {
		c := i % clusters
		angle := 2 * math.Pi * float64(c) / clusters
		cx := 10 * math.Cos(angle)
		cy := 10 * math.Sin(angle)
		coords = append(coords,
			float32(cx+rng.NormFloat64()*1.5),
			float32(cy+rng.NormFloat64()*1.5),
			float32(rng.NormFloat64()*0.5),
		)
		codes = append(codes, uint8(c))
	}

	return bundle.WriteOptions{
		Coords: coords,
		Attributes: []bundle.WriteAttribute{
			{Name: "celltype", Names: names, Codes: codes},
		},
	}
}
