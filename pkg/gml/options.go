package gml

import (
	"github.com/beetlebugorg/gml/internal/parser"
)

// Backend selects how the document is tokenized.
type Backend = parser.Backend

const (
	// BackendStream hands the reader one XML token at a time.
	BackendStream = parser.BackendStream
	// BackendChunk hands the reader every token of the next input chunk.
	BackendChunk = parser.BackendChunk
)

// SwapCoordinates controls coordinate axis swapping.
type SwapCoordinates = parser.SwapCoordinates

const (
	SwapAuto = parser.SwapAuto
	SwapYes  = parser.SwapYes
	SwapNo   = parser.SwapNo
)

// Options configures reading behavior.
type Options struct {
	Backend Backend

	// InvertAxisOrderIfLatLong reports geometries in a lat/long SRS in
	// long/lat order. Default is true.
	InvertAxisOrderIfLatLong bool

	ConsiderEPSGAsURN   bool
	SwapCoordinates     SwapCoordinates
	FetchAllGeometries  bool
	ReportAllAttributes bool
	IsWFSJointLayer     bool
	EmptyAsNull         bool
	AlwaysString        bool

	// SetWidth tracks the maximum width of string properties.
	SetWidth bool

	// SchemaPath names a saved feature class list loaded when the reader is
	// created. The loaded schema is locked.
	SchemaPath string

	// ClassFilter restricts NextFeature to the named class.
	ClassFilter string

	// OnDiagnostic receives non-fatal anomalies.
	OnDiagnostic func(err error)
}

// DefaultOptions returns default options.
func DefaultOptions() Options {
	d := parser.DefaultReadOptions()
	return Options{
		Backend:                  d.Backend,
		InvertAxisOrderIfLatLong: d.InvertAxisOrderIfLatLong,
		SwapCoordinates:          d.SwapCoordinates,
		EmptyAsNull:              d.EmptyAsNull,
		SetWidth:                 d.SetWidth,
	}
}

func (o Options) readOptions() parser.ReadOptions {
	ro := parser.DefaultReadOptions()
	ro.Backend = o.Backend
	ro.InvertAxisOrderIfLatLong = o.InvertAxisOrderIfLatLong
	ro.ConsiderEPSGAsURN = o.ConsiderEPSGAsURN
	ro.SwapCoordinates = o.SwapCoordinates
	ro.FetchAllGeometries = o.FetchAllGeometries
	ro.ReportAllAttributes = o.ReportAllAttributes
	ro.IsWFSJointLayer = o.IsWFSJointLayer
	ro.EmptyAsNull = o.EmptyAsNull
	ro.AlwaysString = o.AlwaysString
	ro.SetWidth = o.SetWidth
	ro.OnDiagnostic = o.OnDiagnostic
	return ro
}

// PrescanOptions configures Reader.Prescan.
type PrescanOptions = parser.PrescanOptions

// DefaultPrescanOptions returns prescan options computing extents and
// per-feature SRS names.
func DefaultPrescanOptions() PrescanOptions {
	return parser.DefaultPrescanOptions()
}
