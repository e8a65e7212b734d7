package parser

import (
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
	"github.com/pkg/errors"
)

// GeometryBuildOptions controls how fragments are turned into geometries.
type GeometryBuildOptions struct {
	InvertAxisOrderIfLatLong bool
	ConsiderEPSGAsURN        bool
	SwapCoordinates          SwapCoordinates

	// DefaultSRSName applies to fragments that declare no srsName.
	DefaultSRSName string
}

// BuildGeometry turns captured fragments into a geometry. Several fragments
// form a collection.
func BuildGeometry(nodes []*GeometryNode, opts GeometryBuildOptions) (orb.Geometry, error) {
	var geoms []orb.Geometry
	for _, n := range nodes {
		if n == nil {
			continue
		}
		g, err := buildFragment(n, opts)
		if err != nil {
			return nil, err
		}
		geoms = append(geoms, g)
	}
	switch len(geoms) {
	case 0:
		return nil, errors.WithStack(&InvalidGeometryError{Reason: "no geometry fragment"})
	case 1:
		return geoms[0], nil
	}
	return orb.Collection(geoms), nil
}

func buildFragment(n *GeometryNode, opts GeometryBuildOptions) (orb.Geometry, error) {
	b := &geometryBuilder{}
	g, err := b.build(n, 2)
	if err != nil {
		return nil, err
	}
	if shouldSwap(n, opts) {
		g = project.Geometry(g, func(p orb.Point) orb.Point { return orb.Point{p[1], p[0]} })
	}
	if err := ValidateGeometry(g); err != nil {
		return nil, err
	}
	return g, nil
}

func shouldSwap(n *GeometryNode, opts GeometryBuildOptions) bool {
	switch opts.SwapCoordinates {
	case SwapYes:
		return true
	case SwapNo:
		return false
	}
	if !opts.InvertAxisOrderIfLatLong {
		return false
	}
	srs, ok := n.Attr("srsName")
	if !ok {
		srs = opts.DefaultSRSName
	}
	if opts.ConsiderEPSGAsURN && strings.HasPrefix(srs, epsgPrefix) {
		srs = epsgURNPrefix + ":" + srs[len(epsgPrefix):]
	}
	return IsSRSLatLongOrder(srs)
}

// GeometryTypeOf maps a geometry to its well-known type.
func GeometryTypeOf(g orb.Geometry) GeometryType {
	switch g.(type) {
	case orb.Point:
		return GeometryTypePoint
	case orb.LineString, orb.Ring:
		return GeometryTypeLineString
	case orb.Polygon, orb.Bound:
		return GeometryTypePolygon
	case orb.MultiPoint:
		return GeometryTypeMultiPoint
	case orb.MultiLineString:
		return GeometryTypeMultiLineString
	case orb.MultiPolygon:
		return GeometryTypeMultiPolygon
	case orb.Collection:
		return GeometryTypeGeometryCollection
	}
	return GeometryTypeUnknown
}

// geometryBuilder walks a fragment. The dim argument of its methods is the
// srsDimension inherited from enclosing elements.
type geometryBuilder struct{}

func invalid(n *GeometryNode, reason string) error {
	return errors.WithStack(&InvalidGeometryError{Element: n.Name, Reason: reason})
}

func (b *geometryBuilder) build(n *GeometryNode, dim int) (orb.Geometry, error) {
	if d := srsDimensionOf(n); d > 0 {
		dim = d
	}

	switch n.Name {
	case "Point":
		pts, err := b.points(n, dim)
		if err != nil {
			return nil, err
		}
		return pts[0], nil

	case "LineString", "LinearRing", "Curve", "CompositeCurve", "OrientableCurve":
		pts, err := b.curvePoints(n, dim)
		if err != nil {
			return nil, err
		}
		return orb.LineString(pts), nil

	case "Polygon", "PolygonPatch", "Triangle", "Rectangle":
		return b.polygon(n, dim)

	case "SimplePolygon", "SimpleRectangle", "SimpleTriangle":
		pts, err := b.points(n, dim)
		if err != nil {
			return nil, err
		}
		return orb.Polygon{closeRing(pts)}, nil

	case "Envelope", "Box", "BoundingBox", "WGS84BoundingBox":
		bound, err := b.envelope(n, dim)
		if err != nil {
			return nil, err
		}
		return bound.ToPolygon(), nil

	case "MultiPoint":
		var mp orb.MultiPoint
		err := b.eachMember(n, dim, func(g orb.Geometry) error {
			p, ok := g.(orb.Point)
			if !ok {
				return invalid(n, "member is not a point")
			}
			mp = append(mp, p)
			return nil
		})
		if err != nil {
			return nil, err
		}
		return mp, nil

	case "SimpleMultiPoint":
		pts, err := b.points(n, dim)
		if err != nil {
			return nil, err
		}
		return orb.MultiPoint(pts), nil

	case "MultiLineString", "MultiCurve":
		var mls orb.MultiLineString
		err := b.eachMember(n, dim, func(g orb.Geometry) error {
			switch g := g.(type) {
			case orb.LineString:
				mls = append(mls, g)
			case orb.MultiLineString:
				mls = append(mls, g...)
			default:
				return invalid(n, "member is not a curve")
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		return mls, nil

	case "Surface", "PolyhedralSurface", "TriangulatedSurface", "Tin",
		"MultiPolygon", "MultiSurface", "CompositeSurface", "Shell", "Solid":
		mp, err := b.surfaces(n, dim)
		if err != nil {
			return nil, err
		}
		if len(mp) == 1 && (n.Name == "Surface" || n.Name == "CompositeSurface") {
			return mp[0], nil
		}
		return mp, nil

	case "MultiGeometry", "GeometryCollection":
		var c orb.Collection
		err := b.eachMember(n, dim, func(g orb.Geometry) error {
			c = append(c, g)
			return nil
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	return nil, invalid(n, "unsupported geometry element")
}

// eachMember builds every geometry held by the member properties of n.
func (b *geometryBuilder) eachMember(n *GeometryNode, dim int, fn func(orb.Geometry) error) error {
	for _, m := range n.Children {
		if !strings.HasSuffix(m.Name, "Member") && !strings.HasSuffix(m.Name, "Members") {
			continue
		}
		for _, c := range m.Children {
			g, err := b.build(c, dim)
			if err != nil {
				return err
			}
			if err := fn(g); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *geometryBuilder) surfaces(n *GeometryNode, dim int) (orb.MultiPolygon, error) {
	var mp orb.MultiPolygon
	add := func(g orb.Geometry) error {
		switch g := g.(type) {
		case orb.Polygon:
			mp = append(mp, g)
		case orb.MultiPolygon:
			mp = append(mp, g...)
		default:
			return invalid(n, "member is not a surface")
		}
		return nil
	}

	for _, c := range n.Children {
		switch c.Name {
		case "patches", "polygonPatches", "trianglePatches", "exterior", "interior":
			for _, p := range c.Children {
				g, err := b.build(p, dim)
				if err != nil {
					return nil, err
				}
				if err := add(g); err != nil {
					return nil, err
				}
			}
		}
	}
	if err := b.eachMember(n, dim, add); err != nil {
		return nil, err
	}
	if len(mp) == 0 {
		return nil, invalid(n, "no surface")
	}
	return mp, nil
}

func (b *geometryBuilder) polygon(n *GeometryNode, dim int) (orb.Polygon, error) {
	var poly orb.Polygon
	for _, c := range n.Children {
		switch c.Name {
		case "exterior", "outerBoundaryIs":
			ring, err := b.ring(c, dim)
			if err != nil {
				return nil, err
			}
			poly = append(orb.Polygon{ring}, poly...)
		case "interior", "innerBoundaryIs":
			ring, err := b.ring(c, dim)
			if err != nil {
				return nil, err
			}
			poly = append(poly, ring)
		}
	}
	if len(poly) == 0 {
		return nil, invalid(n, "missing exterior ring")
	}
	return poly, nil
}

// ring reads the ring held by a boundary property.
func (b *geometryBuilder) ring(boundary *GeometryNode, dim int) (orb.Ring, error) {
	for _, r := range boundary.Children {
		switch r.Name {
		case "LinearRing":
			pts, err := b.points(r, dimOf(r, dim))
			if err != nil {
				return nil, err
			}
			return closeRing(pts), nil
		case "Ring":
			var pts []orb.Point
			for _, m := range r.Children {
				if m.Name != "curveMember" {
					continue
				}
				for _, c := range m.Children {
					cp, err := b.curvePoints(c, dimOf(r, dim))
					if err != nil {
						return nil, err
					}
					pts = appendJoined(pts, cp)
				}
			}
			if len(pts) == 0 {
				return nil, invalid(r, "empty ring")
			}
			return closeRing(pts), nil
		}
	}
	return nil, invalid(boundary, "missing ring")
}

// curvePoints returns the vertices of a curve-like element, joining
// segments and members end to start.
func (b *geometryBuilder) curvePoints(n *GeometryNode, dim int) ([]orb.Point, error) {
	dim = dimOf(n, dim)
	switch n.Name {
	case "Curve":
		var pts []orb.Point
		for _, segs := range n.Children {
			if segs.Name != "segments" {
				continue
			}
			for _, s := range segs.Children {
				sp, err := b.points(s, dimOf(s, dim))
				if err != nil {
					return nil, err
				}
				pts = appendJoined(pts, sp)
			}
		}
		if len(pts) == 0 {
			return nil, invalid(n, "curve without segments")
		}
		return pts, nil

	case "CompositeCurve", "OrientableCurve":
		var pts []orb.Point
		for _, m := range n.Children {
			if m.Name != "curveMember" && m.Name != "baseCurve" {
				continue
			}
			for _, c := range m.Children {
				cp, err := b.curvePoints(c, dim)
				if err != nil {
					return nil, err
				}
				pts = appendJoined(pts, cp)
			}
		}
		if len(pts) == 0 {
			return nil, invalid(n, "no curve member")
		}
		return pts, nil
	}
	return b.points(n, dim)
}

func (b *geometryBuilder) envelope(n *GeometryNode, dim int) (orb.Bound, error) {
	lower := firstChild(n, "lowerCorner", "LowerCorner")
	upper := firstChild(n, "upperCorner", "UpperCorner")
	var pts []orb.Point
	if lower != nil && upper != nil {
		lo, err := parsePosList(lower, dimOf(lower, dim))
		if err != nil {
			return orb.Bound{}, err
		}
		hi, err := parsePosList(upper, dimOf(upper, dim))
		if err != nil {
			return orb.Bound{}, err
		}
		pts = append(lo, hi...)
	} else {
		var err error
		if pts, err = b.points(n, dim); err != nil {
			return orb.Bound{}, err
		}
	}
	if len(pts) < 2 {
		return orb.Bound{}, invalid(n, "envelope needs two corners")
	}
	bound := orb.Bound{Min: pts[0], Max: pts[0]}
	return bound.Extend(pts[1]), nil
}

// points reads the direct coordinate children of n: pos, posList,
// coordinates, coord, or nested Points through pointProperty/pointMember.
func (b *geometryBuilder) points(n *GeometryNode, dim int) ([]orb.Point, error) {
	var pts []orb.Point
	for _, c := range n.Children {
		switch c.Name {
		case "pos", "posList":
			p, err := parsePosList(c, dimOf(c, dim))
			if err != nil {
				return nil, err
			}
			pts = append(pts, p...)
		case "coordinates":
			p, err := parseCoordinates(c)
			if err != nil {
				return nil, err
			}
			pts = append(pts, p...)
		case "coord":
			x, xok := c.ChildText("X")
			y, yok := c.ChildText("Y")
			if !xok || !yok {
				return nil, invalid(c, "coord without X and Y")
			}
			p, err := parsePoint(x, y)
			if err != nil {
				return nil, invalid(c, err.Error())
			}
			pts = append(pts, p)
		case "pointProperty", "pointRep", "pointMember":
			for _, pc := range c.Children {
				if pc.Name != "Point" {
					continue
				}
				p, err := b.points(pc, dimOf(pc, dim))
				if err != nil {
					return nil, err
				}
				pts = append(pts, p...)
			}
		}
	}
	if len(pts) == 0 {
		return nil, invalid(n, "no coordinates")
	}
	return pts, nil
}

func parsePosList(n *GeometryNode, dim int) ([]orb.Point, error) {
	fields := strings.Fields(n.Text)
	if dim < 2 {
		dim = 2
	}
	if len(fields) == 0 || len(fields)%dim != 0 {
		return nil, invalid(n, "coordinate count "+strconv.Itoa(len(fields))+
			" is not a multiple of dimension "+strconv.Itoa(dim))
	}
	pts := make([]orb.Point, 0, len(fields)/dim)
	for i := 0; i < len(fields); i += dim {
		p, err := parsePoint(fields[i], fields[i+1])
		if err != nil {
			return nil, invalid(n, err.Error())
		}
		pts = append(pts, p)
	}
	return pts, nil
}

// parseCoordinates reads the legacy gml:coordinates encoding.
func parseCoordinates(n *GeometryNode) ([]orb.Point, error) {
	cs, ts, dec := ",", " ", "."
	if v, ok := n.Attr("cs"); ok && v != "" {
		cs = v
	}
	if v, ok := n.Attr("ts"); ok && v != "" {
		ts = v
	}
	if v, ok := n.Attr("decimal"); ok && v != "" {
		dec = v
	}

	var tuples []string
	if strings.TrimSpace(ts) == "" {
		tuples = strings.Fields(n.Text)
	} else {
		tuples = strings.Split(strings.TrimSpace(n.Text), ts)
	}

	var pts []orb.Point
	for _, t := range tuples {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		parts := strings.Split(t, cs)
		if len(parts) < 2 {
			return nil, invalid(n, "tuple "+strconv.Quote(t)+" has fewer than two coordinates")
		}
		x, y := parts[0], parts[1]
		if dec != "." {
			x = strings.Replace(x, dec, ".", 1)
			y = strings.Replace(y, dec, ".", 1)
		}
		p, err := parsePoint(x, y)
		if err != nil {
			return nil, invalid(n, err.Error())
		}
		pts = append(pts, p)
	}
	if len(pts) == 0 {
		return nil, invalid(n, "empty coordinates")
	}
	return pts, nil
}

func parsePoint(xs, ys string) (orb.Point, error) {
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return orb.Point{}, errors.Wrapf(err, "bad coordinate %q", xs)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return orb.Point{}, errors.Wrapf(err, "bad coordinate %q", ys)
	}
	return orb.Point{x, y}, nil
}

func dimOf(n *GeometryNode, inherited int) int {
	if d := srsDimensionOf(n); d > 0 {
		return d
	}
	return inherited
}

func firstChild(n *GeometryNode, names ...string) *GeometryNode {
	for _, name := range names {
		if c := n.Child(name); c != nil {
			return c
		}
	}
	return nil
}

// appendJoined appends next to pts, dropping the first vertex of next when
// it repeats the last vertex of pts.
func appendJoined(pts, next []orb.Point) []orb.Point {
	if len(pts) > 0 && len(next) > 0 && pts[len(pts)-1] == next[0] {
		next = next[1:]
	}
	return append(pts, next...)
}

func closeRing(pts []orb.Point) orb.Ring {
	ring := orb.Ring(pts)
	if len(ring) > 0 && ring[0] != ring[len(ring)-1] {
		ring = append(ring, ring[0])
	}
	return ring
}
