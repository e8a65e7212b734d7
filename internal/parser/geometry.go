package parser

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// GeometryType represents the type of a geometry property. Values match the
// well known binary codes so they can be written to saved schemas as is.
type GeometryType int

const (
	GeometryTypeUnknown            GeometryType = 0
	GeometryTypePoint              GeometryType = 1
	GeometryTypeLineString         GeometryType = 2
	GeometryTypePolygon            GeometryType = 3
	GeometryTypeMultiPoint         GeometryType = 4
	GeometryTypeMultiLineString    GeometryType = 5
	GeometryTypeMultiPolygon       GeometryType = 6
	GeometryTypeGeometryCollection GeometryType = 7
	GeometryTypeNone               GeometryType = 100
)

var geometryTypeNames = map[GeometryType]string{
	GeometryTypeUnknown:            "Unknown",
	GeometryTypePoint:              "Point",
	GeometryTypeLineString:         "LineString",
	GeometryTypePolygon:            "Polygon",
	GeometryTypeMultiPoint:         "MultiPoint",
	GeometryTypeMultiLineString:    "MultiLineString",
	GeometryTypeMultiPolygon:       "MultiPolygon",
	GeometryTypeGeometryCollection: "GeometryCollection",
	GeometryTypeNone:               "None",
}

func (g GeometryType) String() string {
	if name, ok := geometryTypeNames[g]; ok {
		return name
	}
	return "Unknown"
}

// ParseGeometryType accepts either the integer code or the type name.
func ParseGeometryType(s string) (GeometryType, bool) {
	s = strings.TrimSpace(s)
	if code, err := strconv.Atoi(s); err == nil {
		t := GeometryType(code)
		_, ok := geometryTypeNames[t]
		return t, ok
	}
	for t, name := range geometryTypeNames {
		if strings.EqualFold(name, s) {
			return t, true
		}
	}
	return GeometryTypeUnknown, false
}

func (g GeometryType) isCollection() bool {
	switch g {
	case GeometryTypeMultiPoint, GeometryTypeMultiLineString, GeometryTypeMultiPolygon,
		GeometryTypeGeometryCollection:
		return true
	}
	return false
}

// MergeGeometryTypes returns the narrowest type that describes geometries of
// both main and extra. None is the identity and Unknown absorbs everything.
// A typed collection merged with GeometryCollection widens to
// GeometryCollection; any other pair of distinct types is Unknown.
func MergeGeometryTypes(main, extra GeometryType) GeometryType {
	switch {
	case main == GeometryTypeNone:
		return extra
	case extra == GeometryTypeNone:
		return main
	case main == GeometryTypeUnknown || extra == GeometryTypeUnknown:
		return GeometryTypeUnknown
	case main == extra:
		return main
	case main == GeometryTypeGeometryCollection && extra.isCollection(),
		extra == GeometryTypeGeometryCollection && main.isCollection():
		return GeometryTypeGeometryCollection
	}
	return GeometryTypeUnknown
}

// GeometryAttr is one XML attribute of a captured geometry element.
type GeometryAttr struct {
	Key   string
	Value string
}

// GeometryNode is a verbatim capture of geometry markup. Element names are
// local names, attribute keys keep their prefix.
type GeometryNode struct {
	Name     string
	Attrs    []GeometryAttr
	Children []*GeometryNode
	Text     string
}

// Attr returns the value of the attribute with the given key. A key without
// prefix also matches a prefixed attribute with the same local name.
func (n *GeometryNode) Attr(key string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Key == key {
			return a.Value, true
		}
	}
	if !strings.Contains(key, ":") {
		for _, a := range n.Attrs {
			if localName(a.Key) == key {
				return a.Value, true
			}
		}
	}
	return "", false
}

// SetAttr replaces or appends an attribute.
func (n *GeometryNode) SetAttr(key, value string) {
	for i := range n.Attrs {
		if n.Attrs[i].Key == key {
			n.Attrs[i].Value = value
			return
		}
	}
	n.Attrs = append(n.Attrs, GeometryAttr{Key: key, Value: value})
}

// Child returns the first direct child with the given local name.
func (n *GeometryNode) Child(name string) *GeometryNode {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ChildText returns the text of the first child called name.
func (n *GeometryNode) ChildText(name string) (string, bool) {
	if c := n.Child(name); c != nil {
		return c.Text, true
	}
	return "", false
}

// Element converts the fragment into an etree element in the gml namespace.
func (n *GeometryNode) Element() *etree.Element {
	el := etree.NewElement("gml:" + n.Name)
	for _, a := range n.Attrs {
		el.CreateAttr(a.Key, a.Value)
	}
	for _, c := range n.Children {
		el.AddChild(c.Element())
	}
	if n.Text != "" {
		el.SetText(n.Text)
	}
	return el
}

// XML serializes the fragment back to markup.
func (n *GeometryNode) XML() string {
	doc := etree.NewDocument()
	doc.SetRoot(n.Element())
	s, err := doc.WriteToString()
	if err != nil {
		return ""
	}
	return s
}

func localName(qname string) string {
	if i := strings.IndexByte(qname, ':'); i >= 0 {
		return qname[i+1:]
	}
	return qname
}
