package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/beetlebugorg/gml/pkg/gml"
	"github.com/pkg/errors"
)

func safeReadDocument(path string) (int, error) {
	opts := gml.DefaultOptions()

	// Non-fatal anomalies are reported and reading continues
	opts.OnDiagnostic = func(err error) {
		log.Printf("Warning: %s: %v", path, err)
	}

	r, err := gml.Open(path, opts)
	if err != nil {
		// Check if file exists
		if os.IsNotExist(errors.Cause(err)) {
			return 0, fmt.Errorf("document not found: %s", path)
		}
		return 0, err
	}
	defer r.Close()

	count := 0
	for {
		f, err := r.NextFeature()
		if err == io.EOF {
			return count, nil
		}
		if gml.IsFatal(err) {
			// Malformed XML or a resource limit: the document cannot be
			// read any further
			return count, errors.Wrapf(err, "reading %s", path)
		}
		if err != nil {
			return count, err
		}
		if f.GeometryError() != nil {
			log.Printf("Warning: %s feature %s has an invalid geometry", path, f.FID())
		}
		count++
	}
}

func main() {
	// Try to read a document
	count, err := safeReadDocument("cities.gml")
	if err != nil {
		log.Printf("Error: %v", err)
		return
	}
	fmt.Printf("Successfully read %d features\n", count)

	// Try to read a non-existent document
	_, err = safeReadDocument("NONEXISTENT.gml")
	if err != nil {
		log.Printf("Expected error: %v", err)
	}
}
