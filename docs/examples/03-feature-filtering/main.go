package main

import (
	"fmt"
	"io"
	"log"

	"github.com/beetlebugorg/gml/pkg/gml"
)

// Read every feature of one class
func featuresOfClass(r gml.Reader, class string) ([]*gml.Feature, error) {
	r.SetClassFilter(class)
	defer r.SetClassFilter("")
	r.Reset()

	var features []*gml.Feature
	for {
		f, err := r.NextFeature()
		if err == io.EOF {
			return features, nil
		}
		if err != nil {
			return nil, err
		}
		features = append(features, f)
	}
}

func main() {
	opts := gml.DefaultOptions()
	r, err := gml.Open("cities.gml", opts)
	if err != nil {
		log.Fatal(err)
	}
	defer r.Close()

	if err := r.Prescan(gml.DefaultPrescanOptions()); err != nil {
		log.Fatal(err)
	}

	// One pass per class
	for _, c := range r.Classes() {
		features, err := featuresOfClass(r, c.Name)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("%s: %d features (prescan counted %d)\n", c.Name, len(features), c.FeatureCount)
	}
}
