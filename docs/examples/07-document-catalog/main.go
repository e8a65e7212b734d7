package main

import (
	"fmt"
	"log"
	"os"

	"github.com/beetlebugorg/gml/pkg/gml"
)

// Find documents whose extent covers a location
func findDocumentsForLocation(catalog []gml.FileSummary, x, y float64) []string {
	var matches []string
	for _, info := range catalog {
		e, ok := info.Summary.Extent()
		if ok && x >= e.MinX && x <= e.MaxX && y >= e.MinY && y <= e.MaxY {
			matches = append(matches, info.Path)
		}
	}
	return matches
}

func main() {
	root := "data"
	if len(os.Args) > 1 {
		root = os.Args[1]
	}

	paths, err := gml.FindDocuments(root)
	if err != nil {
		log.Fatal(err)
	}

	opts := gml.DefaultScanOptions()
	opts.ErrorLog = os.Stderr
	opts.Progress = func(scanned, total int) {
		fmt.Printf("\rScanning: %d/%d (%.0f%%)", scanned, total, float64(scanned)/float64(total)*100)
	}

	catalog, errs := gml.ScanFiles(paths, opts)
	fmt.Println()
	if len(errs) > 0 {
		fmt.Printf("Skipped %d documents due to errors\n", len(errs))
	}

	fmt.Printf("Catalog contains %d documents\n\n", len(catalog))
	for _, info := range catalog {
		fmt.Printf("Document: %s\n", info.Path)
		fmt.Printf("  Classes: %d\n", len(info.Summary.Classes))
		fmt.Printf("  Features: %d\n", info.Summary.FeatureCount())
		if e, ok := info.Summary.Extent(); ok {
			fmt.Printf("  Extent: [%.4f,%.4f] to [%.4f,%.4f]\n", e.MinX, e.MinY, e.MaxX, e.MaxY)
		}
	}

	// Example location query
	x, y := 2.35, 48.85
	matches := findDocumentsForLocation(catalog, x, y)
	fmt.Printf("\nDocuments containing location %.4f, %.4f: %d\n", x, y, len(matches))
}
