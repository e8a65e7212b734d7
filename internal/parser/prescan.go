package parser

import (
	"io"
	"strings"

	"github.com/golang/glog"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// Prescan reads the whole document to build the schema: classes, their
// properties, feature counts and, when asked, geometry types, extents and
// SRS names. Unless only SRS detection is requested, the registry is
// cleared and unlocked first. The reader is left rewound.
func (r *Reader) Prescan(opts PrescanOptions) error {
	if r.input == nil && r.path == "" {
		return ErrNoSource
	}
	if !opts.OnlyDetectSRS {
		r.SetClassListLocked(false)
		r.ClearClasses()
	}

	r.cleanupParser()
	if err := r.setupParser(); err != nil {
		return err
	}
	r.readStarted = true
	defer r.cleanupParser()

	r.canUseGlobalSRSName = true
	r.sequentialLayers = 1
	// Extents of geometries relying on the document SRS are swapped once
	// at the end by finishSRS.
	build := r.GeometryBuildOptions()
	build.DefaultSRSName = ""

	var last *FeatureClass
	features := 0
	for {
		f, err := r.NextFeature()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrap(err, "prescanning GML")
		}
		features++

		class := f.Class()
		if last != nil && class != last && class.FeatureCount() != -1 {
			r.sequentialLayers = 0
		}
		last = class

		if class.FeatureCount() == -1 {
			class.SetFeatureCount(1)
		} else {
			class.SetFeatureCount(class.FeatureCount() + 1)
		}

		geoms := f.GeometryList()
		if len(geoms) == 0 {
			continue
		}
		if !opts.OnlyDetectSRS && class.GeometryPropertyCount() == 0 {
			g := NewGeometryPropertyDefn(geometryPropertyName(f.GeometryPath()), "", GeometryTypeUnknown)
			if _, err := class.AddGeometryProperty(g); err != nil {
				r.diagnostic(err)
			}
		}
		if opts.GetExtents {
			r.mergeFeatureGeometry(class, geoms, opts, build)
		}
	}

	r.finishSRS(opts)
	glog.V(1).Infof("prescan found %d features in %d classes", features, len(r.classes))
	return nil
}

// mergeFeatureGeometry folds the geometry of one feature into the type,
// extent and SRS of its class. A geometry that cannot be built is skipped.
func (r *Reader) mergeFeatureGeometry(class *FeatureClass, geoms []*GeometryNode, opts PrescanOptions, build GeometryBuildOptions) {
	g, err := BuildGeometry(geoms, build)
	if err != nil {
		r.diagnostic(err)
		return
	}
	if class.GeometryPropertyCount() == 0 {
		return
	}

	if opts.AnalyzeSRSPerFeature {
		srs := extractSRSName(geoms, r.opts.ConsiderEPSGAsURN)
		if srs != "" {
			r.canUseGlobalSRSName = false
		}
		class.MergeSRSName(srs)
	}

	gp := class.GeometryProperty(0)
	typ := gp.Type()
	if class.FeatureCount() == 1 && typ == GeometryTypeUnknown {
		typ = GeometryTypeNone
	}
	gp.SetType(MergeGeometryTypes(typ, GeometryTypeOf(g)))

	if isEmptyGeometry(g) {
		return
	}
	b := g.Bound()
	e := Extent{MinX: b.Min[0], MaxX: b.Max[0], MinY: b.Min[1], MaxY: b.Max[1]}
	if prev, ok := class.Extent(); ok {
		e = prev.Merge(e)
	}
	class.SetExtent(e)
}

// isEmptyGeometry reports whether g has no vertex. The bound of such a
// geometry is a zero point and must not reach the class extent.
func isEmptyGeometry(g orb.Geometry) bool {
	empty := true
	visitPoints(g, func(int, orb.Point) bool {
		empty = false
		return false
	})
	return empty
}

// finishSRS settles the SRS of every class once all features were seen and
// normalizes lat/long axis order when requested.
func (r *Reader) finishSRS(opts PrescanOptions) {
	for _, c := range r.classes {
		srs := c.SRSName()
		if r.canUseGlobalSRSName {
			srs = r.globalSRSName
		}

		switch {
		case r.opts.InvertAxisOrderIfLatLong && IsSRSLatLongOrder(srs):
			c.SetSRSName(stripAxis(srs))
			// Extents were accumulated before the SRS was known.
			if r.canUseGlobalSRSName {
				if e, ok := c.Extent(); ok {
					c.SetExtent(e.SwapXY())
				}
			}
		case !opts.AnalyzeSRSPerFeature && srs != "" && c.SRSName() == "":
			c.SetSRSName(srs)
		}
	}
}

// geometryPropertyName names the placeholder geometry property after the
// element that held the first geometry of the class.
func geometryPropertyName(path string) string {
	if i := strings.LastIndexByte(path, '|'); i >= 0 {
		return path[i+1:]
	}
	return path
}
