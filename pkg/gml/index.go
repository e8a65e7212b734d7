package gml

import (
	"io"
	"sort"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// minExtent pads degenerate envelopes, such as points, so they can be
// stored in the R-tree.
const minExtent = 1e-9

// FeatureIndex provides spatial queries over the features of a document.
//
// Features are indexed by the envelope of their geometry in an R-tree;
// features without geometry are kept but never returned by Query.
//
// Example:
//
//	r, _ := gml.Open("cities.gml", gml.DefaultOptions())
//	idx, err := gml.BuildIndex(r)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, f := range idx.Query(orb.Bound{Min: orb.Point{2, 48}, Max: orb.Point{3, 49}}) {
//	    fmt.Println(f.FID())
//	}
type FeatureIndex struct {
	features []*Feature
	rtree    *rtreego.Rtree
	bounds   orb.Bound
	indexed  int
}

// indexEntry adapts a feature to rtreego.Spatial
type indexEntry struct {
	order   int
	feature *Feature
	rect    rtreego.Rect
}

func (e *indexEntry) Bounds() rtreego.Rect { return e.rect }

// BuildIndex reads every remaining feature of r into a new index. The reader
// is rewound first and left exhausted.
func BuildIndex(r Reader) (*FeatureIndex, error) {
	r.Reset()
	idx := NewFeatureIndex()
	for {
		f, err := r.NextFeature()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "building feature index")
		}
		idx.Insert(f)
	}
	return idx, nil
}

// NewFeatureIndex returns an empty index.
func NewFeatureIndex() *FeatureIndex {
	// 2D, min=25 children, max=50 children
	return &FeatureIndex{rtree: rtreego.NewTree(2, 25, 50)}
}

// Insert adds a feature to the index.
func (idx *FeatureIndex) Insert(f *Feature) {
	order := len(idx.features)
	idx.features = append(idx.features, f)
	if !f.HasGeometry() {
		return
	}

	b := f.Bounds()
	rect, err := boundRect(b)
	if err != nil {
		return
	}
	idx.rtree.Insert(&indexEntry{order: order, feature: f, rect: rect})
	if idx.indexed == 0 {
		idx.bounds = b
	} else {
		idx.bounds = idx.bounds.Union(b)
	}
	idx.indexed++
}

// Query returns the features whose envelope intersects bounds, in document
// order.
func (idx *FeatureIndex) Query(bounds orb.Bound) []*Feature {
	rect, err := boundRect(bounds)
	if err != nil {
		return nil
	}

	spatials := idx.rtree.SearchIntersect(rect)
	entries := make([]*indexEntry, 0, len(spatials))
	for _, s := range spatials {
		entries = append(entries, s.(*indexEntry))
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].order < entries[j].order })

	result := make([]*Feature, len(entries))
	for i, e := range entries {
		result[i] = e.feature
	}
	return result
}

// Count returns the number of features in the index, with or without
// geometry.
func (idx *FeatureIndex) Count() int { return len(idx.features) }

// Bounds returns the union of every indexed envelope. The second result is
// false when no feature has a geometry.
func (idx *FeatureIndex) Bounds() (orb.Bound, bool) {
	return idx.bounds, idx.indexed > 0
}

// All returns every feature in document order.
func (idx *FeatureIndex) All() []*Feature { return idx.features }

func boundRect(b orb.Bound) (rtreego.Rect, error) {
	point := rtreego.Point{b.Min[0], b.Min[1]}
	lengths := []float64{
		b.Max[0] - b.Min[0],
		b.Max[1] - b.Min[1],
	}
	for i, l := range lengths {
		if l < minExtent {
			lengths[i] = minExtent
		}
	}
	return rtreego.NewRect(point, lengths)
}
