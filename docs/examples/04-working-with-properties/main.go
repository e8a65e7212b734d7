package main

import (
	"fmt"
	"io"
	"log"
	"strconv"

	"github.com/beetlebugorg/gml/pkg/gml"
)

func printFeatureDetails(feature *gml.Feature) {
	fmt.Printf("Feature: %s (ID %s)\n", feature.Class(), feature.FID())

	for _, p := range feature.Properties() {
		if p.IsNull() {
			continue
		}

		switch p.Type {
		case gml.PropertyTypeInteger, gml.PropertyTypeInteger64:
			n, err := strconv.ParseInt(p.Value(), 10, 64)
			if err == nil {
				fmt.Printf("  %s: %d\n", p.Name, n)
			}
		case gml.PropertyTypeReal:
			v, err := strconv.ParseFloat(p.Value(), 64)
			if err == nil {
				fmt.Printf("  %s: %.2f\n", p.Name, v)
			}
		default:
			// Repeated elements keep every value
			if len(p.Values) > 1 {
				fmt.Printf("  %s: %v\n", p.Name, p.Values)
			} else {
				fmt.Printf("  %s: %s\n", p.Name, p.Value())
			}
		}
	}
}

func main() {
	r, err := gml.Open("cities.gml", gml.DefaultOptions())
	if err != nil {
		log.Fatal(err)
	}
	defer r.Close()

	// Property types are final after a prescan
	if err := r.Prescan(gml.DefaultPrescanOptions()); err != nil {
		log.Fatal(err)
	}

	// Print details for first few features
	for count := 0; count < 5; count++ {
		f, err := r.NextFeature()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatal(err)
		}
		printFeatureDetails(f)
	}
}
