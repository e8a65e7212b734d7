package main

import (
	"fmt"
	"log"

	"github.com/beetlebugorg/gml/pkg/gml"
)

func main() {
	// Open document
	r, err := gml.Open("cities.gml", gml.DefaultOptions())
	if err != nil {
		log.Fatal(err)
	}
	defer r.Close()

	// Infer classes, counts and extents
	if err := r.Prescan(gml.DefaultPrescanOptions()); err != nil {
		log.Fatal(err)
	}

	// Print document info
	summary := r.Summary()
	fmt.Printf("Classes: %d\n", len(summary.Classes))
	fmt.Printf("Features: %d\n", summary.FeatureCount())
	if srs := r.GlobalSRSName(); srs != "" {
		fmt.Printf("SRS: %s\n", srs)
	}

	// Get document extent
	if e, ok := summary.Extent(); ok {
		fmt.Printf("Extent: [%.4f,%.4f] to [%.4f,%.4f]\n",
			e.MinX, e.MinY,
			e.MaxX, e.MaxY)
	}
}
