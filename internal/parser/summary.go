package parser

// ClassSummary describes one feature class of a scanned document.
type ClassSummary struct {
	Name          string
	ElementName   string
	FeatureCount  int64 // -1 when unknown
	PropertyCount int
	GeometryType  GeometryType
	Extent        Extent
	HasExtent     bool
	SRSName       string
}

// Summary is the registry content after a prescan or a schema load.
type Summary struct {
	Source           string
	GlobalSRSName    string
	SequentialLayers bool
	Classes          []ClassSummary
}

// FeatureCount returns the total number of features, ignoring classes whose
// count is unknown.
func (s Summary) FeatureCount() int64 {
	var n int64
	for _, c := range s.Classes {
		if c.FeatureCount > 0 {
			n += c.FeatureCount
		}
	}
	return n
}

// Extent returns the union of every class extent.
func (s Summary) Extent() (Extent, bool) {
	var e Extent
	found := false
	for _, c := range s.Classes {
		if !c.HasExtent {
			continue
		}
		if !found {
			e, found = c.Extent, true
			continue
		}
		e = e.Merge(c.Extent)
	}
	return e, found
}

// Summary snapshots the registry.
func (r *Reader) Summary() Summary {
	s := Summary{
		Source:           r.path,
		GlobalSRSName:    r.globalSRSName,
		SequentialLayers: r.IsSequentialLayers(),
	}
	for _, c := range r.classes {
		cs := ClassSummary{
			Name:          c.Name(),
			ElementName:   c.ElementName(),
			FeatureCount:  c.FeatureCount(),
			PropertyCount: c.PropertyCount(),
			GeometryType:  GeometryTypeNone,
			SRSName:       c.SRSName(),
		}
		if c.GeometryPropertyCount() > 0 {
			cs.GeometryType = c.GeometryProperty(0).Type()
		}
		cs.Extent, cs.HasExtent = c.Extent()
		s.Classes = append(s.Classes, cs)
	}
	return s
}
