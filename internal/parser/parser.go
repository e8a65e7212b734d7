package parser

// SwapCoordinates controls coordinate axis swapping in the geometry builder
type SwapCoordinates int

const (
	// SwapAuto swaps axes only for lat/long SRS when InvertAxisOrderIfLatLong is set
	SwapAuto SwapCoordinates = iota
	// SwapYes always swaps
	SwapYes
	// SwapNo never swaps
	SwapNo
)

// ReadOptions configures reading behavior. The set is fixed; each field
// corresponds to one behavior switch of the reader.
type ReadOptions struct {
	// Backend: tokenizer delivery style
	// Default: BackendChunk
	Backend Backend

	// ChunkSize: input bytes consumed per feed by the chunk backend
	// Default: DefaultChunkSize
	ChunkSize int

	// MaxDepth: element nesting limit
	// Default: DefaultMaxDepth
	MaxDepth int

	// InvertAxisOrderIfLatLong: report lat/long SRS data in long/lat order
	// Default: true
	InvertAxisOrderIfLatLong bool

	// ConsiderEPSGAsURN: interpret "EPSG:n" names as "urn:ogc:def:crs:EPSG::n"
	// Default: false
	ConsiderEPSGAsURN bool

	// SwapCoordinates: axis swapping policy of the geometry builder
	// Default: SwapAuto
	SwapCoordinates SwapCoordinates

	// FetchAllGeometries: capture every geometry of a feature instead of
	// selecting one per geometry property
	// Default: false
	FetchAllGeometries bool

	// SetWidth: track the maximum width of string properties
	// Default: true
	SetWidth bool

	// ReportAllAttributes: expose every XML attribute of a property element
	// as a property of its own
	// Default: false
	ReportAllAttributes bool

	// IsWFSJointLayer: the document is the result of a WFS join query
	// Default: false
	IsWFSJointLayer bool

	// EmptyAsNull: empty elements produce null rather than empty strings
	// Default: true
	EmptyAsNull bool

	// AlwaysString: create every new property as a String
	// Default: false
	AlwaysString bool

	// OnDiagnostic receives non-fatal anomalies such as values for
	// properties missing from a locked schema. Diagnostics are always
	// logged at verbosity 1.
	OnDiagnostic func(err error)
}

// DefaultReadOptions returns read options with defaults
func DefaultReadOptions() ReadOptions {
	return ReadOptions{
		Backend:                  BackendChunk,
		ChunkSize:                DefaultChunkSize,
		MaxDepth:                 DefaultMaxDepth,
		InvertAxisOrderIfLatLong: true,
		SwapCoordinates:          SwapAuto,
		SetWidth:                 true,
		EmptyAsNull:              true,
	}
}

// PrescanOptions configures a schema prescan
type PrescanOptions struct {
	// GetExtents: build geometries to merge geometry types and extents
	GetExtents bool

	// AnalyzeSRSPerFeature: record the SRS of each feature geometry
	AnalyzeSRSPerFeature bool

	// OnlyDetectSRS: keep the current classes and only detect SRS
	OnlyDetectSRS bool
}

// DefaultPrescanOptions returns prescan options with defaults
func DefaultPrescanOptions() PrescanOptions {
	return PrescanOptions{
		GetExtents:           true,
		AnalyzeSRSPerFeature: true,
	}
}
