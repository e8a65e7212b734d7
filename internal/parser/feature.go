package parser

// Feature is one feature read from the stream. Property values are kept as
// text; a nil slot means the property was absent or null.
type Feature struct {
	class      *FeatureClass
	fid        string
	properties [][]string
	geometries []*GeometryNode
	extra      []*GeometryNode

	// geometryPath is the feature-relative path of the first geometry read
	geometryPath string
}

// NewFeature creates an empty feature of class c
func NewFeature(c *FeatureClass) *Feature {
	return &Feature{class: c}
}

// Class returns the feature class
func (f *Feature) Class() *FeatureClass { return f.class }

// FID returns the feature id or ""
func (f *Feature) FID() string { return f.fid }

// SetFID sets the feature id
func (f *Feature) SetFID(fid string) { f.fid = fid }

// PropertyCount returns the number of property slots in use.
func (f *Feature) PropertyCount() int { return len(f.properties) }

// Property returns the values stored for property index i. A single valued
// property has one entry, a repeated one has several.
func (f *Feature) Property(i int) []string {
	if i < 0 || i >= len(f.properties) {
		return nil
	}
	return f.properties[i]
}

// PropertyValue returns the first value of property i.
func (f *Feature) PropertyValue(i int) (string, bool) {
	vals := f.Property(i)
	if len(vals) == 0 {
		return "", false
	}
	return vals[0], true
}

// SetPropertyDirectly appends value to property slot i.
func (f *Feature) SetPropertyDirectly(i int, value string) {
	if i < 0 {
		return
	}
	for len(f.properties) <= i {
		f.properties = append(f.properties, nil)
	}
	f.properties[i] = append(f.properties[i], value)
}

// SetGeometryDirectly stores the fragment for geometry property i,
// replacing any previous one.
func (f *Feature) SetGeometryDirectly(i int, node *GeometryNode) {
	if i < 0 {
		return
	}
	for len(f.geometries) <= i {
		f.geometries = append(f.geometries, nil)
	}
	f.geometries[i] = node
}

// AddGeometry appends a fragment that does not belong to a declared
// geometry property.
func (f *Feature) AddGeometry(node *GeometryNode) {
	f.extra = append(f.extra, node)
}

// Geometry returns the fragment of geometry property i
func (f *Feature) Geometry(i int) *GeometryNode {
	if i < 0 || i >= len(f.geometries) {
		return nil
	}
	return f.geometries[i]
}

// GeometryList returns every captured fragment in reading order.
func (f *Feature) GeometryList() []*GeometryNode {
	list := make([]*GeometryNode, 0, len(f.geometries)+len(f.extra))
	for _, g := range f.geometries {
		if g != nil {
			list = append(list, g)
		}
	}
	return append(list, f.extra...)
}

// HasGeometry reports whether any fragment was captured
func (f *Feature) HasGeometry() bool {
	for _, g := range f.geometries {
		if g != nil {
			return true
		}
	}
	return len(f.extra) > 0
}

// GeometryPath returns the feature-relative path of the first geometry.
func (f *Feature) GeometryPath() string { return f.geometryPath }
