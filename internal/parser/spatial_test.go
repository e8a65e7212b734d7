package parser

import (
	"testing"
)

// TestNormalizeGlobalSRSName tests rewriting of document level SRS names
func TestNormalizeGlobalSRSName(t *testing.T) {
	tests := []struct {
		name  string
		srs   string
		asURN bool
		want  string
	}{
		{"compound", "EPSG:4258, EPSG:5783", false, "EPSG:4258+5783"},
		{"compound with urn option", "EPSG:4258, EPSG:5783", true, "EPSG:4258+5783"},
		{"plain", "EPSG:4326", false, "EPSG:4326"},
		{"plain as urn", "EPSG:4326", true, "urn:ogc:def:crs:EPSG::4326"},
		{"urn untouched", "urn:ogc:def:crs:EPSG::3067", true, "urn:ogc:def:crs:EPSG::3067"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeGlobalSRSName(tt.srs, tt.asURN); got != tt.want {
				t.Errorf("normalizeGlobalSRSName(%q) = %q, want %q", tt.srs, got, tt.want)
			}
		})
	}
}

// TestExtractSRSName tests reading the SRS of captured geometry
func TestExtractSRSName(t *testing.T) {
	withSRS := func(srs string) *GeometryNode {
		return &GeometryNode{Name: "Point", Attrs: []GeometryAttr{{Key: "srsName", Value: srs}}}
	}

	tests := []struct {
		name  string
		nodes []*GeometryNode
		asURN bool
		want  string
	}{
		{"no srsName", []*GeometryNode{{Name: "Point"}}, false, ""},
		{"plain", []*GeometryNode{withSRS("EPSG:4326")}, false, "EPSG:4326"},
		{"plain as urn", []*GeometryNode{withSRS("EPSG:4326")}, true, "urn:ogc:def:crs:EPSG::4326"},
		{"epsg.xml form", []*GeometryNode{withSRS("http://www.opengis.net/gml/srs/epsg.xml#27700")}, false, "EPSG:27700"},
		{"several fragments", []*GeometryNode{withSRS("EPSG:4326"), withSRS("EPSG:4326")}, false, ""},
		{"none", nil, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractSRSName(tt.nodes, tt.asURN); got != tt.want {
				t.Errorf("extractSRSName() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestEPSGCode tests code extraction from the various SRS spellings
func TestEPSGCode(t *testing.T) {
	tests := []struct {
		srs  string
		code int
		ok   bool
	}{
		{"EPSG:4326", 4326, true},
		{"urn:ogc:def:crs:EPSG::4326", 4326, true},
		{"urn:ogc:def:crs:EPSG:6.6:4326", 4326, true},
		{"urn:x-ogc:def:crs:EPSG:31467", 31467, true},
		{"http://www.opengis.net/def/crs/EPSG/0/3857", 3857, true},
		{"urn:ogc:def:crs:OGC:1.3:CRS84", 0, false},
		{"EPSG:abc", 0, false},
	}

	for _, tt := range tests {
		code, ok := epsgCode(tt.srs)
		if code != tt.code || ok != tt.ok {
			t.Errorf("epsgCode(%q) = (%d, %v), want (%d, %v)", tt.srs, code, ok, tt.code, tt.ok)
		}
	}
}

// TestIsSRSLatLongOrder tests axis order detection
func TestIsSRSLatLongOrder(t *testing.T) {
	tests := []struct {
		srs  string
		want bool
	}{
		{"", false},
		{"EPSG:4326", false},
		{"urn:ogc:def:crs:EPSG::4326", true},
		{"http://www.opengis.net/def/crs/EPSG/0/4258", true},
		{"urn:ogc:def:crs:EPSG::3857", false},
		{"urn:ogc:def:crs:EPSG::2180", true},
		{"urn:ogc:def:crs:EPSG::31467", true},
		{"urn:ogc:def:crs:EPSG::25832", false},
		{"urn:ogc:def:crs:OGC:1.3:CRS84", false},
	}

	for _, tt := range tests {
		t.Run(tt.srs, func(t *testing.T) {
			if got := IsSRSLatLongOrder(tt.srs); got != tt.want {
				t.Errorf("IsSRSLatLongOrder(%q) = %v, want %v", tt.srs, got, tt.want)
			}
		})
	}
}

// TestStripAxis tests removal of axis order declarations
func TestStripAxis(t *testing.T) {
	tests := []struct {
		srs  string
		want string
	}{
		{"urn:ogc:def:crs:EPSG::4326", "EPSG:4326"},
		{"http://www.opengis.net/def/crs/EPSG/0/4258", "EPSG:4258"},
		{
			`GEOGCS["WGS 84",DATUM["WGS_1984"],AXIS["Lat",NORTH],AXIS["Long",EAST]]`,
			`GEOGCS["WGS 84",DATUM["WGS_1984"]]`,
		},
		{
			`PROJCS["ETRS89 / TM35FIN",GEOGCS["ETRS89",DATUM["ETRS_1989"],AXIS["Lat",NORTH],AXIS["Long",EAST]],PROJECTION["Transverse_Mercator"],AXIS["Northing",NORTH],AXIS["Easting",EAST]]`,
			`PROJCS["ETRS89 / TM35FIN",GEOGCS["ETRS89",DATUM["ETRS_1989"]],PROJECTION["Transverse_Mercator"],AXIS["Northing",NORTH],AXIS["Easting",EAST]]`,
		},
		{
			`PROJCS["x",PROJECTION["Mercator"],AXIS["Northing",NORTH]]`,
			`PROJCS["x",PROJECTION["Mercator"],AXIS["Northing",NORTH]]`,
		},
		{`LOCAL_CS["x"]`, `LOCAL_CS["x"]`},
		{`GEOGCS["x",AXIS["Lat",NORTH`, `GEOGCS["x",AXIS["Lat",NORTH`},
	}

	for _, tt := range tests {
		if got := stripAxis(tt.srs); got != tt.want {
			t.Errorf("stripAxis(%q) = %q, want %q", tt.srs, got, tt.want)
		}
	}
}

// TestEPSGAxisOrderTable tests the embedded axis order table
func TestEPSGAxisOrderTable(t *testing.T) {
	if order, ok := epsgAxisOrder(3006); !ok || order != axisNorthEast {
		t.Errorf("EPSG:3006 should be north-east, got %v %v", order, ok)
	}
	if order, ok := epsgAxisOrder(3857); !ok || order != axisEastNorth {
		t.Errorf("EPSG:3857 should be east-north, got %v %v", order, ok)
	}
	if _, ok := epsgAxisOrder(1); ok {
		t.Error("EPSG:1 should not be in the table")
	}
}
