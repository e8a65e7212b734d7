package main

import (
	"fmt"
	"io"
	"log"

	"github.com/beetlebugorg/gml/pkg/gml"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/planar"
)

func processGeometry(feature *gml.Feature) {
	switch geom := feature.Geometry().(type) {
	case orb.Point:
		fmt.Printf("Point: %.6f, %.6f\n", geom.Lon(), geom.Lat())

	case orb.LineString:
		fmt.Printf("LineString with %d points, %.0f meters\n", len(geom), geo.Length(geom))

	case orb.Polygon:
		fmt.Printf("Polygon with %d rings, area %.6f\n", len(geom), planar.Area(geom))

	case nil:
		if err := feature.GeometryError(); err != nil {
			fmt.Printf("Invalid geometry: %v\n", err)
		} else {
			fmt.Println("No geometry")
		}

	default:
		fmt.Printf("%s, bounds %v\n", geom.GeoJSONType(), feature.Bounds())
	}
}

func main() {
	r, err := gml.Open("cities.gml", gml.DefaultOptions())
	if err != nil {
		log.Fatal(err)
	}
	defer r.Close()

	// Process first few features
	for count := 0; count < 3; count++ {
		f, err := r.NextFeature()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("\n%s:\n", f.Class())
		processGeometry(f)
	}
}
