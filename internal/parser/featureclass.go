package parser

import (
	"strings"

	"github.com/pkg/errors"
)

// Extent is a 2D bounding box
type Extent struct {
	MinX, MaxX float64
	MinY, MaxY float64
}

// Merge grows the extent to include o.
func (e Extent) Merge(o Extent) Extent {
	if o.MinX < e.MinX {
		e.MinX = o.MinX
	}
	if o.MaxX > e.MaxX {
		e.MaxX = o.MaxX
	}
	if o.MinY < e.MinY {
		e.MinY = o.MinY
	}
	if o.MaxY > e.MaxY {
		e.MaxY = o.MaxY
	}
	return e
}

// SwapXY exchanges the X and Y ranges.
func (e Extent) SwapXY() Extent {
	return Extent{MinX: e.MinY, MaxX: e.MaxY, MinY: e.MinX, MaxY: e.MaxX}
}

// GeometryPropertyDefn describes one geometry property of a class.
type GeometryPropertyDefn struct {
	name       string
	srcElement string
	typ        GeometryType
	// srsDimension is the coordinate dimension to assume when the markup
	// omits it; 0 when unknown.
	srsDimension int
	nullable     bool
}

// NewGeometryPropertyDefn creates a nullable geometry property
func NewGeometryPropertyDefn(name, srcElement string, typ GeometryType) *GeometryPropertyDefn {
	return &GeometryPropertyDefn{name: name, srcElement: srcElement, typ: typ, nullable: true}
}

func (g *GeometryPropertyDefn) Name() string           { return g.name }
func (g *GeometryPropertyDefn) SrcElement() string     { return g.srcElement }
func (g *GeometryPropertyDefn) Type() GeometryType     { return g.typ }
func (g *GeometryPropertyDefn) SetType(t GeometryType) { g.typ = t }
func (g *GeometryPropertyDefn) SRSDimension() int      { return g.srsDimension }
func (g *GeometryPropertyDefn) SetSRSDimension(n int)  { g.srsDimension = n }
func (g *GeometryPropertyDefn) IsNullable() bool       { return g.nullable }
func (g *GeometryPropertyDefn) SetNullable(b bool)     { g.nullable = b }

// FeatureClass is the inferred or loaded schema of one kind of feature.
type FeatureClass struct {
	name        string
	elementName string

	properties []*PropertyDefn
	bySrc      map[string]int
	byName     map[string]int
	geometries []*GeometryPropertyDefn
	geomBySrc  map[string]int

	featureCount int64
	extent       *Extent

	srsName           string
	srsNameConsistent bool

	schemaLocked bool
}

// NewFeatureClass creates an empty, unlocked class whose element name
// defaults to its name.
func NewFeatureClass(name string) *FeatureClass {
	return &FeatureClass{
		name:              name,
		bySrc:             make(map[string]int),
		byName:            make(map[string]int),
		geomBySrc:         make(map[string]int),
		featureCount:      -1,
		srsNameConsistent: true,
	}
}

// Name returns the class name
func (c *FeatureClass) Name() string { return c.name }

// ElementName returns the element (or pipe separated element path) that
// introduces features of this class.
func (c *FeatureClass) ElementName() string {
	if c.elementName == "" {
		return c.name
	}
	return c.elementName
}

// SetElementName sets the introducing element
func (c *FeatureClass) SetElementName(name string) { c.elementName = name }

func (c *FeatureClass) PropertyCount() int { return len(c.properties) }

func (c *FeatureClass) Property(i int) *PropertyDefn {
	if i < 0 || i >= len(c.properties) {
		return nil
	}
	return c.properties[i]
}

// PropertyIndex finds a property by output name, ignoring case.
func (c *FeatureClass) PropertyIndex(name string) int {
	if i, ok := c.byName[strings.ToLower(name)]; ok {
		return i
	}
	return -1
}

// PropertyIndexBySrcElement finds a property by its source path.
func (c *FeatureClass) PropertyIndexBySrcElement(src string) int {
	if i, ok := c.bySrc[src]; ok {
		return i
	}
	return -1
}

// AddProperty registers p and returns its index. Names and source paths are
// unique within a class and a locked class accepts nothing.
func (c *FeatureClass) AddProperty(p *PropertyDefn) (int, error) {
	if c.schemaLocked {
		return -1, errors.WithStack(&SchemaLockedError{Class: c.name, Path: p.srcElement})
	}
	if c.PropertyIndex(p.name) >= 0 {
		return -1, errors.WithStack(&DuplicatePropertyError{Class: c.name, Name: p.name})
	}
	if c.PropertyIndexBySrcElement(p.srcElement) >= 0 {
		return -1, errors.WithStack(&DuplicatePropertyError{Class: c.name, Name: p.srcElement})
	}
	i := len(c.properties)
	c.properties = append(c.properties, p)
	c.byName[strings.ToLower(p.name)] = i
	c.bySrc[p.srcElement] = i
	return i, nil
}

func (c *FeatureClass) GeometryPropertyCount() int { return len(c.geometries) }

func (c *FeatureClass) GeometryProperty(i int) *GeometryPropertyDefn {
	if i < 0 || i >= len(c.geometries) {
		return nil
	}
	return c.geometries[i]
}

// GeometryPropertyIndexBySrcElement finds a geometry property by source path.
func (c *FeatureClass) GeometryPropertyIndexBySrcElement(src string) int {
	if i, ok := c.geomBySrc[src]; ok {
		return i
	}
	return -1
}

// AddGeometryProperty registers g and returns its index.
func (c *FeatureClass) AddGeometryProperty(g *GeometryPropertyDefn) (int, error) {
	if c.schemaLocked {
		return -1, errors.WithStack(&SchemaLockedError{Class: c.name, Path: g.srcElement})
	}
	if c.GeometryPropertyIndexBySrcElement(g.srcElement) >= 0 {
		return -1, errors.WithStack(&DuplicatePropertyError{Class: c.name, Name: g.srcElement})
	}
	i := len(c.geometries)
	c.geometries = append(c.geometries, g)
	c.geomBySrc[g.srcElement] = i
	return i, nil
}

// HasFeatureProperties reports whether any property references other features.
func (c *FeatureClass) HasFeatureProperties() bool {
	for _, p := range c.properties {
		if p.typ.IsFeatureProperty() {
			return true
		}
	}
	return false
}

// FeatureCount returns the number of features seen, or -1 if unknown.
func (c *FeatureClass) FeatureCount() int64     { return c.featureCount }
func (c *FeatureClass) SetFeatureCount(n int64) { c.featureCount = n }

// Extent returns the accumulated extent
func (c *FeatureClass) Extent() (Extent, bool) {
	if c.extent == nil {
		return Extent{}, false
	}
	return *c.extent, true
}

func (c *FeatureClass) SetExtent(e Extent) { c.extent = &e }

// SRSName returns the spatial reference name or "" when none is known.
func (c *FeatureClass) SRSName() string { return c.srsName }

func (c *FeatureClass) SetSRSName(name string) {
	c.srsNameConsistent = true
	c.srsName = name
}

// MergeSRSName folds the SRS of one feature into the class. The class keeps
// an SRS only while every feature that declares one agrees on it.
func (c *FeatureClass) MergeSRSName(name string) {
	if !c.srsNameConsistent {
		return
	}
	if c.srsName == "" {
		c.srsName = name
		return
	}
	c.srsNameConsistent = name != "" && name == c.srsName
	if !c.srsNameConsistent {
		c.srsName = ""
	}
}

// IsSchemaLocked reports whether properties may still be added.
func (c *FeatureClass) IsSchemaLocked() bool   { return c.schemaLocked }
func (c *FeatureClass) SetSchemaLocked(b bool) { c.schemaLocked = b }
