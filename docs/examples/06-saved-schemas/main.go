package main

import (
	"fmt"
	"log"
	"os"

	"github.com/beetlebugorg/gml/pkg/gml"
)

func main() {
	path := "cities.gml"
	schema := gml.SchemaPath(path) // cities.gfs

	// Prescan once and keep the result next to the document
	if _, err := os.Stat(schema); os.IsNotExist(err) {
		r, err := gml.Open(path, gml.DefaultOptions())
		if err != nil {
			log.Fatal(err)
		}
		if err := r.Prescan(gml.DefaultPrescanOptions()); err != nil {
			log.Fatal(err)
		}
		if err := r.SaveSchema(schema); err != nil {
			log.Fatal(err)
		}
		r.Close()
		fmt.Printf("Saved schema to %s\n", schema)
	}

	// Later runs load the locked schema instead of prescanning
	opts := gml.DefaultOptions()
	opts.SchemaPath = schema
	r, err := gml.Open(path, opts)
	if err != nil {
		log.Fatal(err)
	}
	defer r.Close()

	for _, c := range r.Classes() {
		fmt.Printf("%s: %d features, %s, %d properties\n",
			c.Name, c.FeatureCount, c.GeometryType(), len(c.Properties))
	}
}
