package gml

import (
	"github.com/beetlebugorg/gml/internal/parser"
	"github.com/paulmach/orb"
)

// PropertyType is the inferred type of a feature property.
type PropertyType = parser.PropertyType

const (
	PropertyTypeUntyped   = parser.PropertyTypeUntyped
	PropertyTypeString    = parser.PropertyTypeString
	PropertyTypeInteger   = parser.PropertyTypeInteger
	PropertyTypeInteger64 = parser.PropertyTypeInteger64
	PropertyTypeReal      = parser.PropertyTypeReal
	PropertyTypeBoolean   = parser.PropertyTypeBoolean
	PropertyTypeDate      = parser.PropertyTypeDate
	PropertyTypeDateTime  = parser.PropertyTypeDateTime
)

// GeometryType is the geometry type of a class, using well known binary codes.
type GeometryType = parser.GeometryType

const (
	GeometryTypeUnknown            = parser.GeometryTypeUnknown
	GeometryTypePoint              = parser.GeometryTypePoint
	GeometryTypeLineString         = parser.GeometryTypeLineString
	GeometryTypePolygon            = parser.GeometryTypePolygon
	GeometryTypeMultiPoint         = parser.GeometryTypeMultiPoint
	GeometryTypeMultiLineString    = parser.GeometryTypeMultiLineString
	GeometryTypeMultiPolygon       = parser.GeometryTypeMultiPolygon
	GeometryTypeGeometryCollection = parser.GeometryTypeGeometryCollection
	GeometryTypeNone               = parser.GeometryTypeNone
)

// Property is one property value of a feature. Values is nil when the
// property is absent or null, and holds several entries for repeated
// elements.
type Property struct {
	Name   string
	Type   PropertyType
	Values []string
}

// IsNull reports whether the property has no value.
func (p Property) IsNull() bool { return p.Values == nil }

// Value returns the first value, or "" when null.
func (p Property) Value() string {
	if len(p.Values) == 0 {
		return ""
	}
	return p.Values[0]
}

// Feature is one feature read from a GML document.
//
// Properties are reported in class schema order. The geometry is built from
// the captured GML fragments when the feature is read; a fragment that
// cannot be built leaves Geometry nil and is reported by GeometryError.
type Feature struct {
	class      string
	fid        string
	properties []Property
	fragments  []string
	geometry   orb.Geometry
	geomErr    error
}

// Class returns the feature class name.
func (f *Feature) Class() string { return f.class }

// FID returns the gml:id or fid of the feature, or "".
func (f *Feature) FID() string { return f.fid }

// Properties returns the feature properties in schema order.
func (f *Feature) Properties() []Property { return f.properties }

// Property returns the property with the given name.
func (f *Feature) Property(name string) (Property, bool) {
	for _, p := range f.properties {
		if p.Name == name {
			return p, true
		}
	}
	return Property{}, false
}

// Value returns the first value of the named property. The second result
// is false when the property is unknown or null.
func (f *Feature) Value(name string) (string, bool) {
	p, ok := f.Property(name)
	if !ok || p.IsNull() {
		return "", false
	}
	return p.Value(), true
}

// GeometryFragments returns the raw GML of each captured geometry.
func (f *Feature) GeometryFragments() []string { return f.fragments }

// Geometry returns the feature geometry, or nil.
func (f *Feature) Geometry() orb.Geometry { return f.geometry }

// GeometryError returns the error met while building the geometry.
func (f *Feature) GeometryError() error { return f.geomErr }

// HasGeometry reports whether a geometry was built.
func (f *Feature) HasGeometry() bool { return f.geometry != nil }

// Bounds returns the envelope of the geometry. It is empty when the feature
// has no geometry.
func (f *Feature) Bounds() orb.Bound {
	if f.geometry == nil {
		return orb.Bound{}
	}
	return f.geometry.Bound()
}

func convertFeature(f *parser.Feature, build parser.GeometryBuildOptions) *Feature {
	class := f.Class()
	out := &Feature{
		class: class.Name(),
		fid:   f.FID(),
	}

	out.properties = make([]Property, class.PropertyCount())
	for i := range out.properties {
		defn := class.Property(i)
		out.properties[i] = Property{
			Name:   defn.Name(),
			Type:   defn.Type(),
			Values: f.Property(i),
		}
	}

	nodes := f.GeometryList()
	if len(nodes) == 0 {
		return out
	}
	for _, n := range nodes {
		out.fragments = append(out.fragments, n.XML())
	}
	out.geometry, out.geomErr = parser.BuildGeometry(nodes, build)
	return out
}

// PropertyInfo describes a property of a class schema.
type PropertyInfo struct {
	Name        string
	ElementPath string
	Type        PropertyType
	Width       int
	Precision   int
}

// GeometryInfo describes a geometry property of a class schema.
type GeometryInfo struct {
	Name         string
	ElementPath  string
	Type         GeometryType
	SRSDimension int
	Nullable     bool
}

// Class describes one feature class.
type Class struct {
	Name        string
	ElementPath string
	Properties  []PropertyInfo
	Geometries  []GeometryInfo

	// FeatureCount is -1 when unknown.
	FeatureCount int64

	Extent    orb.Bound
	HasExtent bool
	SRSName   string
	Locked    bool
}

// GeometryType returns the type of the first geometry property, or
// GeometryTypeNone.
func (c Class) GeometryType() GeometryType {
	if len(c.Geometries) == 0 {
		return GeometryTypeNone
	}
	return c.Geometries[0].Type
}

func convertClass(c *parser.FeatureClass) Class {
	out := Class{
		Name:         c.Name(),
		ElementPath:  c.ElementName(),
		FeatureCount: c.FeatureCount(),
		SRSName:      c.SRSName(),
		Locked:       c.IsSchemaLocked(),
	}
	for i := 0; i < c.PropertyCount(); i++ {
		p := c.Property(i)
		out.Properties = append(out.Properties, PropertyInfo{
			Name:        p.Name(),
			ElementPath: p.SrcElement(),
			Type:        p.Type(),
			Width:       p.Width(),
			Precision:   p.Precision(),
		})
	}
	for i := 0; i < c.GeometryPropertyCount(); i++ {
		g := c.GeometryProperty(i)
		out.Geometries = append(out.Geometries, GeometryInfo{
			Name:         g.Name(),
			ElementPath:  g.SrcElement(),
			Type:         g.Type(),
			SRSDimension: g.SRSDimension(),
			Nullable:     g.IsNullable(),
		})
	}
	if e, ok := c.Extent(); ok {
		out.Extent = extentBound(e)
		out.HasExtent = true
	}
	return out
}

func extentBound(e parser.Extent) orb.Bound {
	return orb.Bound{Min: orb.Point{e.MinX, e.MinY}, Max: orb.Point{e.MaxX, e.MaxY}}
}
