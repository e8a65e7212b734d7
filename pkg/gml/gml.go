// Package gml provides a public API for reading features from OGC GML
// documents.
//
// A Reader streams features out of a document, inferring the feature
// classes and their properties as it goes. Prescan reads the whole document
// once to settle the schema, feature counts, geometry types, extents and
// spatial reference before features are read. A schema saved with
// SaveSchema can be loaded later to skip the prescan.
//
// Example:
//
//	r, err := gml.Open("cities.gml", gml.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
//
//	if err := r.Prescan(gml.DefaultPrescanOptions()); err != nil {
//	    log.Fatal(err)
//	}
//	for {
//	    f, err := r.NextFeature()
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(f.Class(), f.FID(), f.Bounds())
//	}
package gml

import (
	"io"
	"os"

	"github.com/beetlebugorg/gml/internal/parser"
	"github.com/pkg/errors"
)

// Reader reads features and feature classes from one GML document.
type Reader interface {
	// Classes returns the feature classes known so far.
	Classes() []Class

	// Class returns the class with the given name, matched without regard
	// to case.
	Class(name string) (Class, bool)

	// NextFeature returns the next feature, or io.EOF once the document is
	// exhausted. A fatal parse error is returned once, after the features
	// completed before it; later calls return io.EOF.
	NextFeature() (*Feature, error)

	// Reset rewinds to the first feature. The class filter is kept.
	Reset()

	// Prescan reads the whole document to infer the schema. The reader is
	// left rewound.
	Prescan(opts PrescanOptions) error

	// LoadSchema loads a saved feature class list and locks the schema.
	LoadSchema(path string) error

	// SaveSchema writes the current classes to a feature class list.
	SaveSchema(path string) error

	// SetClassFilter restricts NextFeature to one class. An empty name
	// removes the filter.
	SetClassFilter(name string)
	ClassFilter() string

	// GlobalSRSName returns the document level SRS name, or "".
	GlobalSRSName() string

	// SequentialLayers reports whether the features of each class are
	// grouped together in the document, as found by the last prescan.
	SequentialLayers() bool

	// Summary snapshots the classes of the document.
	Summary() Summary

	// Close releases the input.
	Close() error
}

// Summary describes the classes of a scanned document.
type Summary = parser.Summary

// Errors returned by readers.
var (
	ErrNoSource    = parser.ErrNoSource
	ErrNotSeekable = parser.ErrNotSeekable
)

// IsFatal reports whether err stopped the parse of a document.
func IsFatal(err error) bool { return parser.IsFatal(err) }

// Open creates a reader for the GML file at path.
func Open(path string, opts Options) (Reader, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	r := parser.NewReader(opts.readOptions())
	r.SetSourceFile(path)
	return newReader(r, opts)
}

// NewReader creates a reader over an open document. The stream is not
// closed by the reader.
func NewReader(in io.ReadSeeker, opts Options) (Reader, error) {
	r := parser.NewReader(opts.readOptions())
	r.SetSource(in)
	return newReader(r, opts)
}

func newReader(r *parser.Reader, opts Options) (Reader, error) {
	w := &readerWrapper{internal: r}
	if opts.SchemaPath != "" {
		if err := w.LoadSchema(opts.SchemaPath); err != nil {
			r.Close()
			return nil, err
		}
	}
	w.SetClassFilter(opts.ClassFilter)
	return w, nil
}

// readerWrapper wraps the internal reader and converts its types
type readerWrapper struct {
	internal *parser.Reader
	filter   string
}

func (w *readerWrapper) Classes() []Class {
	classes := make([]Class, w.internal.ClassCount())
	for i := range classes {
		classes[i] = convertClass(w.internal.Class(i))
	}
	return classes
}

func (w *readerWrapper) Class(name string) (Class, bool) {
	c := w.internal.ClassByName(name)
	if c == nil {
		return Class{}, false
	}
	return convertClass(c), true
}

func (w *readerWrapper) NextFeature() (*Feature, error) {
	f, err := w.internal.NextFeature()
	if err != nil {
		return nil, err
	}
	return convertFeature(f, w.internal.GeometryBuildOptions()), nil
}

func (w *readerWrapper) Reset() {
	w.internal.ResetReading()
	w.internal.SetFilteredClassName(w.filter)
}

// Prescan sees every class; the filter is resolved again against the new
// registry afterwards.
func (w *readerWrapper) Prescan(opts PrescanOptions) error {
	w.internal.SetFilteredClassName("")
	defer w.internal.SetFilteredClassName(w.filter)
	return w.internal.Prescan(opts)
}

func (w *readerWrapper) LoadSchema(path string) error {
	defer w.internal.SetFilteredClassName(w.filter)
	return w.internal.LoadClasses(path)
}

func (w *readerWrapper) SaveSchema(path string) error {
	return w.internal.SaveClasses(path)
}

func (w *readerWrapper) SetClassFilter(name string) {
	w.filter = name
	w.internal.SetFilteredClassName(name)
}

func (w *readerWrapper) ClassFilter() string { return w.filter }

func (w *readerWrapper) GlobalSRSName() string { return w.internal.GlobalSRSName() }

func (w *readerWrapper) SequentialLayers() bool { return w.internal.IsSequentialLayers() }

func (w *readerWrapper) Summary() Summary { return w.internal.Summary() }

func (w *readerWrapper) Close() error { return w.internal.Close() }
