package parser

import (
	"os"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
	"github.com/beevik/etree"
	"github.com/pkg/errors"
)

const classListRoot = "GMLFeatureClassList"

var featureClassExpr = xpath.MustCompile("GMLFeatureClass")

// LoadClasses reads a saved feature class list. Every loaded class and the
// registry itself end up locked.
func (r *Reader) LoadClasses(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "opening feature class list %s", path)
	}
	defer f.Close()

	doc, err := xmlquery.Parse(f)
	if err != nil {
		return errors.WithStack(&InvalidClassListError{Path: path, Reason: err.Error()})
	}
	root := xmlquery.FindOne(doc, "/*")
	if root == nil || !strings.EqualFold(root.Data, classListRoot) {
		return errors.WithStack(&InvalidClassListError{Path: path, Reason: "not a " + classListRoot + " document"})
	}

	if v, ok := childText(root, "SequentialLayers"); ok {
		r.SetSequentialLayers(parseBool(v))
	}

	for _, n := range xmlquery.QuerySelectorAll(root, featureClassExpr) {
		c, err := parseFeatureClass(n)
		if err != nil {
			return errors.WithStack(&InvalidClassListError{Path: path, Reason: err.Error()})
		}
		c.SetSchemaLocked(true)
		if _, err := r.AddClass(c); err != nil {
			r.diagnostic(err)
		}
	}

	r.SetClassListLocked(true)
	return nil
}

func parseFeatureClass(n *xmlquery.Node) (*FeatureClass, error) {
	name, ok := childText(n, "Name")
	if !ok || name == "" {
		return nil, errors.New("GMLFeatureClass has no <Name> element")
	}
	c := NewFeatureClass(name)
	if path, ok := childText(n, "ElementPath"); ok {
		c.SetElementName(path)
	}

	geomDefs := n.SelectElements("GeomPropertyDefn")
	for _, g := range geomDefs {
		gname, _ := childText(g, "Name")
		gpath, _ := childText(g, "ElementPath")
		typ := GeometryTypeUnknown
		if v, ok := childText(g, "Type"); ok {
			if typ, ok = ParseGeometryType(v); !ok {
				return nil, errors.Errorf("unrecognized geometry type %q in class %s", v, name)
			}
		}
		gp := NewGeometryPropertyDefn(gname, gpath, typ)
		if v, ok := childText(g, "SRSDimension"); ok {
			dim, err := strconv.Atoi(v)
			if err != nil {
				return nil, errors.Wrapf(err, "bad SRSDimension in class %s", name)
			}
			gp.SetSRSDimension(dim)
		}
		if v, ok := childText(g, "Nullable"); ok {
			gp.SetNullable(parseBool(v))
		}
		if _, err := c.AddGeometryProperty(gp); err != nil {
			return nil, err
		}
	}

	// Older lists describe a single geometry directly on the class.
	if len(geomDefs) == 0 {
		typ := GeometryTypeUnknown
		if v, ok := childText(n, "GeometryType"); ok {
			if typ, ok = ParseGeometryType(v); !ok {
				return nil, errors.Errorf("unrecognized geometry type %q in class %s", v, name)
			}
		}
		if typ != GeometryTypeNone {
			gname, _ := childText(n, "GeometryName")
			gpath, _ := childText(n, "GeometryElementPath")
			if _, err := c.AddGeometryProperty(NewGeometryPropertyDefn(gname, gpath, typ)); err != nil {
				return nil, err
			}
		}
	}

	if srs, ok := childText(n, "SRSName"); ok {
		c.SetSRSName(srs)
	}

	if info := n.SelectElement("DatasetSpecificInfo"); info != nil {
		if v, ok := childText(info, "FeatureCount"); ok {
			count, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "bad FeatureCount in class %s", name)
			}
			c.SetFeatureCount(count)
		}
		if e, ok, err := parseExtent(info); err != nil {
			return nil, errors.Wrapf(err, "bad extent in class %s", name)
		} else if ok {
			c.SetExtent(e)
		}
	}

	for _, p := range n.SelectElements("PropertyDefn") {
		pname, ok := childText(p, "Name")
		if !ok || pname == "" {
			return nil, errors.Errorf("class %s has a PropertyDefn without a <Name>", name)
		}
		src, ok := childText(p, "ElementPath")
		if !ok {
			src = pname
		}
		pd := NewPropertyDefn(pname, src)
		if v, ok := childText(p, "Type"); ok {
			typ, ok := ParsePropertyType(v)
			if !ok {
				return nil, errors.Errorf("unrecognized property type %q for %s in class %s", v, pname, name)
			}
			pd.SetType(typ)
		}
		if v, ok := childText(p, "Width"); ok {
			w, err := strconv.Atoi(v)
			if err != nil {
				return nil, errors.Wrapf(err, "bad Width for %s in class %s", pname, name)
			}
			pd.SetWidth(w)
		}
		if v, ok := childText(p, "Precision"); ok {
			prec, err := strconv.Atoi(v)
			if err != nil {
				return nil, errors.Wrapf(err, "bad Precision for %s in class %s", pname, name)
			}
			pd.SetPrecision(prec)
		}
		if _, err := c.AddProperty(pd); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// parseExtent reads the four extent values; ok is false unless all of them
// are present.
func parseExtent(info *xmlquery.Node) (e Extent, ok bool, err error) {
	names := [4]string{"ExtentXMin", "ExtentXMax", "ExtentYMin", "ExtentYMax"}
	var vals [4]float64
	for i, name := range names {
		v, found := childText(info, name)
		if !found {
			return Extent{}, false, nil
		}
		if vals[i], err = strconv.ParseFloat(v, 64); err != nil {
			return Extent{}, false, err
		}
	}
	return Extent{MinX: vals[0], MaxX: vals[1], MinY: vals[2], MaxY: vals[3]}, true, nil
}

func childText(n *xmlquery.Node, name string) (string, bool) {
	c := n.SelectElement(name)
	if c == nil {
		return "", false
	}
	return strings.TrimSpace(c.InnerText()), true
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "no", "false", "off", "0":
		return false
	}
	return true
}

// SaveClasses writes the registry to a feature class list file.
func (r *Reader) SaveClasses(path string) error {
	doc := etree.NewDocument()
	root := doc.CreateElement(classListRoot)

	if r.sequentialLayers != -1 && len(r.classes) > 1 {
		root.CreateElement("SequentialLayers").SetText(strconv.FormatBool(r.IsSequentialLayers()))
	}
	for _, c := range r.classes {
		root.AddChild(featureClassElement(c))
	}

	doc.Indent(2)
	if err := doc.WriteToFile(path); err != nil {
		return errors.Wrapf(err, "writing feature class list %s", path)
	}
	return nil
}

func featureClassElement(c *FeatureClass) *etree.Element {
	el := etree.NewElement("GMLFeatureClass")
	el.CreateElement("Name").SetText(c.Name())
	el.CreateElement("ElementPath").SetText(c.ElementName())

	if c.GeometryPropertyCount() == 0 {
		el.CreateElement("GeometryType").SetText(strconv.Itoa(int(GeometryTypeNone)))
	}
	for i := 0; i < c.GeometryPropertyCount(); i++ {
		g := c.GeometryProperty(i)
		gel := el.CreateElement("GeomPropertyDefn")
		if g.Name() != "" {
			gel.CreateElement("Name").SetText(g.Name())
		}
		if g.SrcElement() != "" {
			gel.CreateElement("ElementPath").SetText(g.SrcElement())
		}
		gel.CreateElement("Type").SetText(strconv.Itoa(int(g.Type())))
		if g.SRSDimension() != 0 {
			gel.CreateElement("SRSDimension").SetText(strconv.Itoa(g.SRSDimension()))
		}
		if !g.IsNullable() {
			gel.CreateElement("Nullable").SetText("false")
		}
	}

	if c.SRSName() != "" {
		el.CreateElement("SRSName").SetText(c.SRSName())
	}

	e, hasExtent := c.Extent()
	if c.FeatureCount() != -1 || hasExtent {
		info := el.CreateElement("DatasetSpecificInfo")
		if c.FeatureCount() != -1 {
			info.CreateElement("FeatureCount").SetText(strconv.FormatInt(c.FeatureCount(), 10))
		}
		if hasExtent {
			info.CreateElement("ExtentXMin").SetText(formatFloat(e.MinX))
			info.CreateElement("ExtentXMax").SetText(formatFloat(e.MaxX))
			info.CreateElement("ExtentYMin").SetText(formatFloat(e.MinY))
			info.CreateElement("ExtentYMax").SetText(formatFloat(e.MaxY))
		}
	}

	for i := 0; i < c.PropertyCount(); i++ {
		p := c.Property(i)
		pel := el.CreateElement("PropertyDefn")
		pel.CreateElement("Name").SetText(p.Name())
		pel.CreateElement("ElementPath").SetText(p.SrcElement())
		pel.CreateElement("Type").SetText(p.Type().String())
		if p.Width() > 0 {
			pel.CreateElement("Width").SetText(strconv.Itoa(p.Width()))
		}
		if p.Precision() > 0 {
			pel.CreateElement("Precision").SetText(strconv.Itoa(p.Precision()))
		}
	}
	return el
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
