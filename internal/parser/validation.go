package parser

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// ValidateCoordinate rejects NaN and infinite coordinates, which the number
// parser accepts but no extent can hold.
func ValidateCoordinate(x, y float64) error {
	if math.IsNaN(x) || math.IsInf(x, 0) || math.IsNaN(y) || math.IsInf(y, 0) {
		return fmt.Errorf("coordinate (%v, %v) is not finite", x, y)
	}
	return nil
}

// ValidateGeometry checks every vertex of a built geometry
func ValidateGeometry(g orb.Geometry) error {
	if g == nil {
		return errors.WithStack(&InvalidGeometryError{Reason: "geometry is nil"})
	}

	var bad error
	visitPoints(g, func(i int, p orb.Point) bool {
		if err := ValidateCoordinate(p[0], p[1]); err != nil {
			bad = errors.WithStack(&InvalidGeometryError{
				Element: GeometryTypeOf(g).String(),
				Reason:  fmt.Sprintf("vertex %d: %v", i, err),
			})
			return false
		}
		return true
	})
	return bad
}

// visitPoints calls fn for each vertex in order until fn returns false.
func visitPoints(g orb.Geometry, fn func(i int, p orb.Point) bool) {
	i := 0
	var walk func(g orb.Geometry) bool
	walkPoints := func(pts []orb.Point) bool {
		for _, p := range pts {
			if !fn(i, p) {
				return false
			}
			i++
		}
		return true
	}
	walk = func(g orb.Geometry) bool {
		switch g := g.(type) {
		case orb.Point:
			return walkPoints([]orb.Point{g})
		case orb.MultiPoint:
			return walkPoints(g)
		case orb.LineString:
			return walkPoints(g)
		case orb.Ring:
			return walkPoints(g)
		case orb.MultiLineString:
			for _, ls := range g {
				if !walkPoints(ls) {
					return false
				}
			}
		case orb.Polygon:
			for _, r := range g {
				if !walkPoints(r) {
					return false
				}
			}
		case orb.MultiPolygon:
			for _, p := range g {
				if !walk(p) {
					return false
				}
			}
		case orb.Collection:
			for _, c := range g {
				if !walk(c) {
					return false
				}
			}
		case orb.Bound:
			return walkPoints([]orb.Point{g.Min, g.Max})
		}
		return true
	}
	walk(g)
}
