package parser

import (
	"strings"
	"testing"
)

// TestGeometryTypes tests geometry type names and codes
func TestGeometryTypes(t *testing.T) {
	tests := []struct {
		geomType GeometryType
		expected string
	}{
		{GeometryTypeUnknown, "Unknown"},
		{GeometryTypePoint, "Point"},
		{GeometryTypeLineString, "LineString"},
		{GeometryTypePolygon, "Polygon"},
		{GeometryTypeMultiPolygon, "MultiPolygon"},
		{GeometryTypeGeometryCollection, "GeometryCollection"},
		{GeometryTypeNone, "None"},
		{GeometryType(42), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.geomType.String(); got != tt.expected {
				t.Errorf("GeometryType.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

// TestParseGeometryType tests parsing of saved geometry types
func TestParseGeometryType(t *testing.T) {
	tests := []struct {
		in   string
		want GeometryType
		ok   bool
	}{
		{"1", GeometryTypePoint, true},
		{" 3 ", GeometryTypePolygon, true},
		{"100", GeometryTypeNone, true},
		{"multipolygon", GeometryTypeMultiPolygon, true},
		{"LineString", GeometryTypeLineString, true},
		{"99", GeometryType(99), false},
		{"Hexagon", GeometryTypeUnknown, false},
	}

	for _, tt := range tests {
		got, ok := ParseGeometryType(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseGeometryType(%q) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

// TestMergeGeometryTypes tests the geometry type lattice
func TestMergeGeometryTypes(t *testing.T) {
	tests := []struct {
		name        string
		main, extra GeometryType
		want        GeometryType
	}{
		{"none is identity", GeometryTypeNone, GeometryTypePoint, GeometryTypePoint},
		{"none on the right", GeometryTypePolygon, GeometryTypeNone, GeometryTypePolygon},
		{"same type", GeometryTypePoint, GeometryTypePoint, GeometryTypePoint},
		{"different simple types", GeometryTypePoint, GeometryTypeLineString, GeometryTypeUnknown},
		{"unknown absorbs", GeometryTypeUnknown, GeometryTypePoint, GeometryTypeUnknown},
		{"two typed collections", GeometryTypeMultiPoint, GeometryTypeMultiPolygon, GeometryTypeUnknown},
		{"multipoint and multilinestring", GeometryTypeMultiPoint, GeometryTypeMultiLineString, GeometryTypeUnknown},
		{"typed collection into collection", GeometryTypeGeometryCollection, GeometryTypeMultiLineString, GeometryTypeGeometryCollection},
		{"collection into typed collection", GeometryTypeMultiPolygon, GeometryTypeGeometryCollection, GeometryTypeGeometryCollection},
		{"collection and simple", GeometryTypeMultiPoint, GeometryTypePoint, GeometryTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MergeGeometryTypes(tt.main, tt.extra); got != tt.want {
				t.Errorf("MergeGeometryTypes(%v, %v) = %v, want %v", tt.main, tt.extra, got, tt.want)
			}
		})
	}
}

// TestGeometryNodeAttr tests attribute lookup on captured markup
func TestGeometryNodeAttr(t *testing.T) {
	n := &GeometryNode{
		Name: "Point",
		Attrs: []GeometryAttr{
			{Key: "gml:id", Value: "p1"},
			{Key: "srsName", Value: "EPSG:4326"},
		},
	}

	if v, ok := n.Attr("gml:id"); !ok || v != "p1" {
		t.Errorf("Attr(gml:id) = %q, %v", v, ok)
	}
	if v, ok := n.Attr("id"); !ok || v != "p1" {
		t.Errorf("Attr(id) should match the prefixed attribute, got %q, %v", v, ok)
	}
	if _, ok := n.Attr("xlink:id"); ok {
		t.Error("Attr(xlink:id) should not match gml:id")
	}

	n.SetAttr("srsName", "EPSG:3857")
	n.SetAttr("srsDimension", "2")
	if v, _ := n.Attr("srsName"); v != "EPSG:3857" {
		t.Errorf("SetAttr did not replace srsName, got %q", v)
	}
	if len(n.Attrs) != 3 {
		t.Errorf("Expected 3 attributes, got %d", len(n.Attrs))
	}
}

// TestGeometryNodeXML tests serialization of a captured fragment
func TestGeometryNodeXML(t *testing.T) {
	n := &GeometryNode{
		Name:  "Point",
		Attrs: []GeometryAttr{{Key: "srsName", Value: "EPSG:4326"}},
		Children: []*GeometryNode{
			{Name: "pos", Text: "1 2"},
		},
	}

	if v, ok := n.ChildText("pos"); !ok || v != "1 2" {
		t.Errorf("ChildText(pos) = %q, %v", v, ok)
	}
	if n.Child("coordinates") != nil {
		t.Error("Expected no coordinates child")
	}

	xml := n.XML()
	for _, want := range []string{`<gml:Point srsName="EPSG:4326">`, `<gml:pos>1 2</gml:pos>`, `</gml:Point>`} {
		if !strings.Contains(xml, want) {
			t.Errorf("XML() = %q, missing %q", xml, want)
		}
	}
}

// TestExtent tests extent merging and axis swapping
func TestExtent(t *testing.T) {
	e := Extent{MinX: 0, MaxX: 1, MinY: 10, MaxY: 11}
	e = e.Merge(Extent{MinX: -1, MaxX: 0.5, MinY: 12, MaxY: 13})
	want := Extent{MinX: -1, MaxX: 1, MinY: 10, MaxY: 13}
	if e != want {
		t.Errorf("Merge() = %+v, want %+v", e, want)
	}

	swapped := e.SwapXY()
	if swapped != (Extent{MinX: 10, MaxX: 13, MinY: -1, MaxY: 1}) {
		t.Errorf("SwapXY() = %+v", swapped)
	}
}
