package main

import (
	"fmt"
	"log"

	"github.com/beetlebugorg/gml/pkg/gml"
	"github.com/paulmach/orb"
)

func main() {
	r, err := gml.Open("cities.gml", gml.DefaultOptions())
	if err != nil {
		log.Fatal(err)
	}
	defer r.Close()

	// Read every feature into an R-tree
	idx, err := gml.BuildIndex(r)
	if err != nil {
		log.Fatal(err)
	}

	// Define viewport (Paris area)
	viewport := orb.Bound{
		Min: orb.Point{2.2, 48.8},
		Max: orb.Point{2.5, 48.9},
	}

	// Query R-tree index for visible features (O(log n))
	features := idx.Query(viewport)

	fmt.Printf("Visible features: %d of %d\n", len(features), idx.Count())

	for _, feature := range features {
		fmt.Printf("  %s %s: %s\n",
			feature.Class(),
			feature.FID(),
			feature.Geometry().GeoJSONType())
	}
}
