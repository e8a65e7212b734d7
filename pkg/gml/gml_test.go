package gml

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paulmach/orb"
)

const citiesDoc = `<?xml version="1.0" encoding="UTF-8"?>
<gml:FeatureCollection xmlns:gml="http://www.opengis.net/gml" xmlns:app="urn:example:app">
  <gml:featureMember>
    <app:City gml:id="c1">
      <app:name>Paris</app:name>
      <app:population>2100000</app:population>
      <app:geometry><gml:Point srsName="EPSG:4326"><gml:pos>2.35 48.85</gml:pos></gml:Point></app:geometry>
    </app:City>
  </gml:featureMember>
  <gml:featureMember>
    <app:City gml:id="c2">
      <app:name>Lyon</app:name>
      <app:population>513000</app:population>
      <app:geometry><gml:Point srsName="EPSG:4326"><gml:pos>4.83 45.76</gml:pos></gml:Point></app:geometry>
    </app:City>
  </gml:featureMember>
  <gml:featureMember>
    <app:River gml:id="r1">
      <app:name>Seine</app:name>
      <app:geometry><gml:LineString><gml:posList>2.0 49.0 2.5 48.8 3.0 48.5</gml:posList></gml:LineString></app:geometry>
    </app:River>
  </gml:featureMember>
</gml:FeatureCollection>`

func writeDoc(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func readFeatures(t *testing.T, r Reader) []*Feature {
	t.Helper()
	var features []*Feature
	for {
		f, err := r.NextFeature()
		if err == io.EOF {
			return features
		}
		if err != nil {
			t.Fatalf("NextFeature: %v", err)
		}
		features = append(features, f)
	}
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	if opts.Backend != BackendChunk {
		t.Errorf("default backend = %v, want chunk", opts.Backend)
	}
	if !opts.InvertAxisOrderIfLatLong {
		t.Error("InvertAxisOrderIfLatLong should default to true")
	}
	if !opts.EmptyAsNull || !opts.SetWidth {
		t.Error("EmptyAsNull and SetWidth should default to true")
	}
}

func TestOpenAndRead(t *testing.T) {
	r, err := Open(writeDoc(t, "cities.gml", citiesDoc), DefaultOptions())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	features := readFeatures(t, r)
	if len(features) != 3 {
		t.Fatalf("got %d features, want 3", len(features))
	}

	paris := features[0]
	if paris.Class() != "City" || paris.FID() != "c1" {
		t.Errorf("first feature = %s/%s, want City/c1", paris.Class(), paris.FID())
	}
	if v, ok := paris.Value("name"); !ok || v != "Paris" {
		t.Errorf("name = %q, %v", v, ok)
	}
	if v, ok := paris.Value("population"); !ok || v != "2100000" {
		t.Errorf("population = %q, %v", v, ok)
	}
	if _, ok := paris.Value("missing"); ok {
		t.Error("unknown property reported a value")
	}
	if got, ok := paris.Geometry().(orb.Point); !ok || !got.Equal(orb.Point{2.35, 48.85}) {
		t.Errorf("geometry = %v", paris.Geometry())
	}
	if b := paris.Bounds(); b != (orb.Bound{Min: orb.Point{2.35, 48.85}, Max: orb.Point{2.35, 48.85}}) {
		t.Errorf("bounds = %v", b)
	}
	frags := paris.GeometryFragments()
	if len(frags) != 1 || !strings.Contains(frags[0], "<gml:pos>2.35 48.85</gml:pos>") {
		t.Errorf("fragments = %q", frags)
	}

	river := features[2]
	line, ok := river.Geometry().(orb.LineString)
	if !ok || len(line) != 3 {
		t.Fatalf("river geometry = %v", river.Geometry())
	}
	if !line[2].Equal(orb.Point{3.0, 48.5}) {
		t.Errorf("last vertex = %v", line[2])
	}

	// exhausted readers keep returning EOF
	if _, err := r.NextFeature(); err != io.EOF {
		t.Errorf("NextFeature after end = %v, want io.EOF", err)
	}
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.gml"), DefaultOptions())
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
	if !strings.Contains(err.Error(), "missing.gml") {
		t.Errorf("error %q does not name the file", err)
	}
}

func TestPrescanClasses(t *testing.T) {
	r, err := NewReader(strings.NewReader(citiesDoc), DefaultOptions())
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	if err := r.Prescan(DefaultPrescanOptions()); err != nil {
		t.Fatalf("Prescan: %v", err)
	}

	classes := r.Classes()
	if len(classes) != 2 {
		t.Fatalf("got %d classes, want 2", len(classes))
	}

	city, ok := r.Class("city")
	if !ok {
		t.Fatal("class lookup should ignore case")
	}
	if city.FeatureCount != 2 {
		t.Errorf("City count = %d", city.FeatureCount)
	}
	if city.GeometryType() != GeometryTypePoint {
		t.Errorf("City geometry = %v", city.GeometryType())
	}
	want := orb.Bound{Min: orb.Point{2.35, 45.76}, Max: orb.Point{4.83, 48.85}}
	if !city.HasExtent || city.Extent != want {
		t.Errorf("City extent = %v (%v), want %v", city.Extent, city.HasExtent, want)
	}
	if city.SRSName != "EPSG:4326" {
		t.Errorf("City SRS = %q", city.SRSName)
	}
	if len(city.Properties) != 2 || city.Properties[1].Name != "population" || city.Properties[1].Type != PropertyTypeInteger {
		t.Errorf("City properties = %+v", city.Properties)
	}
	if city.Locked {
		t.Error("prescanned classes should stay unlocked")
	}

	river, _ := r.Class("River")
	if river.GeometryType() != GeometryTypeLineString {
		t.Errorf("River geometry = %v", river.GeometryType())
	}

	s := r.Summary()
	if s.FeatureCount() != 3 {
		t.Errorf("summary count = %d", s.FeatureCount())
	}
	if !r.SequentialLayers() {
		t.Error("grouped classes should be sequential")
	}

	// prescan leaves the reader rewound
	if got := len(readFeatures(t, r)); got != 3 {
		t.Errorf("read %d features after prescan, want 3", got)
	}
}

func TestClassFilter(t *testing.T) {
	r, err := NewReader(strings.NewReader(citiesDoc), DefaultOptions())
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	r.SetClassFilter("River")
	if err := r.Prescan(DefaultPrescanOptions()); err != nil {
		t.Fatalf("Prescan: %v", err)
	}
	if len(r.Classes()) != 2 {
		t.Errorf("prescan should see every class, got %d", len(r.Classes()))
	}

	features := readFeatures(t, r)
	if len(features) != 1 || features[0].Class() != "River" {
		t.Fatalf("filtered read = %d features", len(features))
	}

	r.Reset()
	if r.ClassFilter() != "River" {
		t.Errorf("Reset dropped the filter")
	}
	if got := len(readFeatures(t, r)); got != 1 {
		t.Errorf("read %d features after Reset, want 1", got)
	}

	r.SetClassFilter("")
	r.Reset()
	if got := len(readFeatures(t, r)); got != 3 {
		t.Errorf("read %d features without filter, want 3", got)
	}
}

func TestSchemaRoundTrip(t *testing.T) {
	docPath := writeDoc(t, "cities.gml", citiesDoc)
	r, err := Open(docPath, DefaultOptions())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := r.Prescan(DefaultPrescanOptions()); err != nil {
		t.Fatalf("Prescan: %v", err)
	}
	schema := SchemaPath(docPath)
	if err := r.SaveSchema(schema); err != nil {
		t.Fatalf("SaveSchema: %v", err)
	}
	r.Close()

	opts := DefaultOptions()
	opts.SchemaPath = schema
	loaded, err := Open(docPath, opts)
	if err != nil {
		t.Fatalf("Open with schema: %v", err)
	}
	defer loaded.Close()

	classes := loaded.Classes()
	if len(classes) != 2 {
		t.Fatalf("loaded %d classes, want 2", len(classes))
	}
	for _, c := range classes {
		if !c.Locked {
			t.Errorf("class %s should be locked", c.Name)
		}
	}
	if classes[0].FeatureCount != 2 {
		t.Errorf("loaded count = %d", classes[0].FeatureCount)
	}

	features := readFeatures(t, loaded)
	if len(features) != 3 {
		t.Fatalf("read %d features, want 3", len(features))
	}
	if v, _ := features[1].Value("population"); v != "513000" {
		t.Errorf("population = %q", v)
	}
	if !features[2].HasGeometry() {
		t.Error("river geometry lost with the loaded schema")
	}
}

func TestBadSchemaPath(t *testing.T) {
	opts := DefaultOptions()
	opts.SchemaPath = writeDoc(t, "bad.gfs", "<NotAClassList/>")
	if _, err := NewReader(strings.NewReader(citiesDoc), opts); err == nil {
		t.Fatal("expected an error for an invalid schema")
	}
}

func TestInvalidGeometryIsKept(t *testing.T) {
	doc := `<FeatureCollection>
  <featureMember><Lake gml:id="l1"><name>Bad</name><geometry><gml:Point><gml:pos>1 abc</gml:pos></gml:Point></geometry></Lake></featureMember>
</FeatureCollection>`

	r, err := NewReader(strings.NewReader(doc), DefaultOptions())
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	features := readFeatures(t, r)
	if len(features) != 1 {
		t.Fatalf("got %d features", len(features))
	}
	f := features[0]
	if f.HasGeometry() {
		t.Error("an unparsable point should not produce a geometry")
	}
	if f.GeometryError() == nil {
		t.Error("expected a geometry error")
	}
	if len(f.GeometryFragments()) != 1 {
		t.Errorf("raw fragment should be kept, got %d", len(f.GeometryFragments()))
	}
	if b := f.Bounds(); b != (orb.Bound{}) {
		t.Errorf("bounds = %v, want empty", b)
	}
}

func TestFatalErrorThenEOF(t *testing.T) {
	r, err := NewReader(strings.NewReader(`<FeatureCollection><featureMember><City></featureMember>`), DefaultOptions())
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	_, err = r.NextFeature()
	if err == nil || !IsFatal(err) {
		t.Fatalf("NextFeature = %v, want a fatal error", err)
	}
	if _, err := r.NextFeature(); err != io.EOF {
		t.Errorf("second NextFeature = %v, want io.EOF", err)
	}
}

func TestLatLongAxisOrder(t *testing.T) {
	doc := `<FeatureCollection>
  <gml:boundedBy><gml:Envelope srsName="urn:ogc:def:crs:EPSG::4326">
    <gml:lowerCorner>48.85 2.35</gml:lowerCorner><gml:upperCorner>48.85 2.35</gml:upperCorner>
  </gml:Envelope></gml:boundedBy>
  <featureMember><City><geometry><gml:Point><gml:pos>48.85 2.35</gml:pos></gml:Point></geometry></City></featureMember>
</FeatureCollection>`

	tests := []struct {
		name   string
		invert bool
		want   orb.Point
	}{
		{"inverted", true, orb.Point{2.35, 48.85}},
		{"as stored", false, orb.Point{48.85, 2.35}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			opts.InvertAxisOrderIfLatLong = tt.invert
			r, err := NewReader(strings.NewReader(doc), opts)
			if err != nil {
				t.Fatalf("NewReader: %v", err)
			}
			features := readFeatures(t, r)
			if len(features) != 1 {
				t.Fatalf("got %d features", len(features))
			}
			if got := features[0].Geometry(); got != tt.want {
				t.Errorf("geometry = %v, want %v", got, tt.want)
			}
			if r.GlobalSRSName() != "urn:ogc:def:crs:EPSG::4326" {
				t.Errorf("global SRS = %q", r.GlobalSRSName())
			}
		})
	}
}
