package parser

import (
	"strconv"
)

var gmlGeometryElements = map[string]bool{
	"BoundingBox":         true, // ows:BoundingBox
	"CompositeCurve":      true,
	"CompositeSurface":    true,
	"Curve":               true,
	"GeometryCollection":  true,
	"LineString":          true,
	"MultiCurve":          true,
	"MultiGeometry":       true,
	"MultiLineString":     true,
	"MultiPoint":          true,
	"MultiPolygon":        true,
	"MultiSurface":        true,
	"Point":               true,
	"Polygon":             true,
	"PolygonPatch":        true,
	"PolyhedralSurface":   true,
	"SimplePolygon":       true, // GML 3.3 compact encoding
	"SimpleRectangle":     true,
	"SimpleTriangle":      true,
	"SimpleMultiPoint":    true,
	"Solid":               true,
	"Surface":             true,
	"Tin":                 true,
	"TopoCurve":           true,
	"TopoSurface":         true,
	"TriangulatedSurface": true,
}

func (h *handler) isGeometryElement(name string) bool {
	switch h.appSchema {
	case AppSchemaAIXM:
		if name == "ElevatedPoint" {
			return true
		}
	case AppSchemaMTKGML:
		if name == "Piste" || name == "Alue" || name == "Murtoviiva" {
			return true
		}
	}
	return gmlGeometryElements[name]
}

func (h *handler) startElementGeometry(name string, attrs Attributes) {
	if name == "boundedBy" {
		h.push(stateBoundedBy)
		return
	}

	node := &GeometryNode{Name: name}
	for i := 0; i < attrs.Len(); i++ {
		key, val := attrs.At(i)
		node.Attrs = append(node.Attrs, GeometryAttr{Key: key, Value: val})
	}

	// Some CityGML producers omit srsDimension="3" on posList.
	if name == "posList" && h.srsDimensionIfMissing != 0 {
		if _, ok := node.Attr("srsDimension"); !ok {
			dim := "2"
			if h.srsDimensionIfMissing == 3 {
				dim = "3"
			}
			node.SetAttr("srsDimension", dim)
		}
	}

	if n := len(h.nodes); n > 0 {
		parent := h.nodes[n-1]
		parent.Children = append(parent.Children, node)
	}
	h.nodes = append(h.nodes, node)
	h.geomText = h.geomText[:0]
}

func (h *handler) endElementGeometry() {
	n := len(h.nodes)
	if n == 0 {
		return
	}
	node := h.nodes[n-1]
	h.nodes = h.nodes[:n-1]
	if len(h.geomText) > 0 {
		node.Text = string(h.geomText)
		h.geomText = h.geomText[:0]
	}

	if h.depth != h.frameDepth() {
		return
	}

	switch h.appSchema {
	case AppSchemaAIXM:
		if node.Name == "ElevatedPoint" {
			node = h.parseAIXMElevatedPoint(node)
		}
	case AppSchemaMTKGML:
		switch node.Name {
		case "Murtoviiva":
			node.Name = "LineString"
		case "Alue":
			node.Name = "Polygon"
		case "Piste":
			node.Name = "Point"
		}
	}

	f := h.r.state.Feature
	switch {
	case h.r.opts.FetchAllGeometries:
		f.AddGeometry(node)
	case f.Class().GeometryPropertyCount() > 1:
		f.SetGeometryDirectly(h.geometryPropertyIndex, node)
	default:
		f.SetGeometryDirectly(0, node)
	}
	h.pop()
}

// parseAIXMElevatedPoint lifts the elevation data of an aixm:ElevatedPoint
// into feature properties and returns a plain Point for the geometry.
func (h *handler) parseAIXMElevatedPoint(node *GeometryNode) *GeometryNode {
	r := h.r
	if c := node.Child("elevation"); c != nil {
		r.setFeaturePropertyDirectly("elevation", c.Text, -1, PropertyTypeUntyped)
		if uom, ok := c.Attr("uom"); ok {
			r.setFeaturePropertyDirectly("elevation_uom", uom, -1, PropertyTypeUntyped)
		}
	}
	if c := node.Child("geoidUndulation"); c != nil {
		r.setFeaturePropertyDirectly("geoidUndulation", c.Text, -1, PropertyTypeUntyped)
		if uom, ok := c.Attr("uom"); ok {
			r.setFeaturePropertyDirectly("geoidUndulation_uom", uom, -1, PropertyTypeUntyped)
		}
	}

	point := &GeometryNode{Name: "Point"}
	if srs, ok := node.Attr("srsName"); ok {
		point.SetAttr("srsName", srs)
	}
	if pos := node.Child("pos"); pos != nil {
		// srsDimension is unreliable on AIXM points, which carry two
		// coordinates in practice.
		point.Children = append(point.Children, &GeometryNode{Name: "pos", Text: pos.Text})
	} else if coords := node.Child("coordinates"); coords != nil {
		c := &GeometryNode{Name: "coordinates", Text: coords.Text}
		c.Attrs = append(c.Attrs, coords.Attrs...)
		point.Children = append(point.Children, c)
	} else {
		return node
	}
	return point
}

func srsDimensionOf(n *GeometryNode) int {
	v, ok := n.Attr("srsDimension")
	if !ok {
		return 0
	}
	d, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return d
}
