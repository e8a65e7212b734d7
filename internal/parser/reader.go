package parser

import (
	"io"
	"os"
	"strings"

	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// Reader streams features out of a GML document and owns the schema
// registry that describes them. A Reader is not safe for concurrent use.
type Reader struct {
	opts ReadOptions

	// input
	path     string
	input    io.Reader
	file     *os.File
	consumed bool

	// parse state
	source      EventSource
	handler     *handler
	state       *ReadState
	recycled    *ReadState
	readStarted bool
	stop        bool
	eof         bool
	failed      error
	pending     error
	setWidth    bool

	// completed features waiting to be returned
	features   []*Feature
	featureIdx int

	// schema registry
	classes                []*FeatureClass
	classListLocked        bool
	lookForClassAtAnyLevel bool
	filteredClassName      string
	filteredClassIndex     int
	sequentialLayers       int

	globalSRSName       string
	canUseGlobalSRSName bool
}

// NewReader creates a reader with the given options and no source.
func NewReader(opts ReadOptions) *Reader {
	return &Reader{
		opts:               opts,
		setWidth:           opts.SetWidth,
		filteredClassIndex: -1,
		sequentialLayers:   -1,
	}
}

// Options returns the options the reader was created with.
func (r *Reader) Options() ReadOptions { return r.opts }

// SetSourceFile selects a file to read. The file is opened on first use and
// closed by Close.
func (r *Reader) SetSourceFile(path string) {
	r.cleanupParser()
	r.closeFile()
	r.path = path
	r.input = nil
	r.consumed = false
}

// SetSource selects an open stream to read. Rewinding, as done by
// ResetReading after a read, requires the stream to implement io.Seeker.
// The stream is not closed by the reader.
func (r *Reader) SetSource(in io.Reader) {
	r.cleanupParser()
	r.closeFile()
	r.path = ""
	r.input = in
	r.consumed = false
}

// SourceFileName returns the path given to SetSourceFile.
func (r *Reader) SourceFileName() string { return r.path }

func (r *Reader) closeFile() {
	if r.file != nil {
		if err := r.file.Close(); err != nil {
			glog.Warningf("closing %s: %v", r.path, err)
		}
		r.file = nil
	}
}

// openInput returns the input positioned at its start.
func (r *Reader) openInput() (io.Reader, error) {
	if r.input == nil && r.path == "" {
		return nil, ErrNoSource
	}
	if r.path != "" && r.file == nil {
		f, err := os.Open(r.path)
		if err != nil {
			return nil, errors.Wrapf(err, "opening %s", r.path)
		}
		r.file = f
		r.consumed = false
	}

	var in io.Reader = r.input
	if r.file != nil {
		in = r.file
	}
	if r.consumed {
		s, ok := in.(io.Seeker)
		if !ok {
			return nil, ErrNotSeekable
		}
		if _, err := s.Seek(0, io.SeekStart); err != nil {
			return nil, errors.Wrap(err, "rewinding GML source")
		}
	}
	r.consumed = true
	return in, nil
}

func (r *Reader) setupParser() error {
	in, err := r.openInput()
	if err != nil {
		return err
	}
	r.source = newEventSource(in, sourceOptions{
		backend:   r.opts.Backend,
		chunkSize: r.opts.ChunkSize,
		maxDepth:  r.opts.MaxDepth,
	})
	r.handler = newHandler(r)
	r.stop, r.eof, r.failed, r.pending = false, false, nil, nil
	r.setWidth = r.opts.SetWidth
	r.features, r.featureIdx = r.features[:0], 0
	r.pushState(r.newState())
	glog.V(2).Infof("GML parser set up (%v backend)", r.opts.Backend)
	return nil
}

// cleanupParser tears the parse down. Features still owned by the context
// stack are discarded.
func (r *Reader) cleanupParser() {
	stop := r.stop
	r.stop = true
	for r.state != nil {
		r.popState()
	}
	r.stop = stop
	for i := range r.features {
		r.features[i] = nil
	}
	r.features, r.featureIdx = r.features[:0], 0
	r.pending = nil
	r.source = nil
	r.handler = nil
	r.readStarted = false
}

// NextFeature returns the next completed feature. It returns io.EOF once the
// document is exhausted. A fatal parse error stops the stream: features
// completed before it are still returned, then the error is returned once
// and later calls return io.EOF.
func (r *Reader) NextFeature() (*Feature, error) {
	if !r.readStarted {
		if err := r.setupParser(); err != nil {
			return nil, err
		}
		r.readStarted = true
	}

	for r.featureIdx >= len(r.features) {
		r.features, r.featureIdx = r.features[:0], 0
		if err := r.pending; err != nil {
			r.pending = nil
			return nil, err
		}
		if r.stop || r.eof {
			return nil, io.EOF
		}
		err := r.source.Feed(r.handler)
		if err == io.EOF {
			r.eof = true
			continue
		}
		if err != nil {
			r.abort(err)
		}
	}

	f := r.features[r.featureIdx]
	r.features[r.featureIdx] = nil
	r.featureIdx++
	return f, nil
}

// abort stops the stream after a fatal error. The feature being parsed is
// dropped with the context stack; completed features stay buffered ahead of
// the error.
func (r *Reader) abort(err error) {
	glog.Errorf("GML parsing stopped: %v", err)
	r.failed = err
	r.pending = err
	r.stop = true
}

// Err returns the fatal error that stopped the current read, if any.
func (r *Reader) Err() error { return r.failed }

// ResetReading rewinds to the start of the document and clears the class
// filter.
func (r *Reader) ResetReading() {
	r.cleanupParser()
	r.SetFilteredClassName("")
}

// Close releases the input and the parse state.
func (r *Reader) Close() error {
	r.cleanupParser()
	if r.file != nil {
		err := r.file.Close()
		r.file = nil
		if err != nil {
			return errors.Wrapf(err, "closing %s", r.path)
		}
	}
	return nil
}

func (r *Reader) newState() *ReadState {
	if s := r.recycled; s != nil {
		r.recycled = nil
		return s
	}
	return &ReadState{}
}

func (r *Reader) pushState(s *ReadState) {
	s.Parent = r.state
	r.state = s
}

// popState detaches the top frame. A feature it owned moves to the feature
// buffer unless parsing stopped.
func (r *Reader) popState() {
	s := r.state
	if s == nil {
		return
	}
	if s.Feature != nil && !r.stop {
		r.features = append(r.features, s.Feature)
	}
	r.state = s.Parent
	s.Reset()
	r.recycled = s
}

// pushFeature starts a feature of class index idx. newClassIndex selects the
// class by element name, creating it when unknown.
func (r *Reader) pushFeature(element, fid string, idx int) {
	if idx == newClassIndex {
		idx = -1
		for i, c := range r.classes {
			if strings.EqualFold(element, c.ElementName()) {
				idx = i
				break
			}
		}
		if idx < 0 {
			var err error
			if idx, err = r.AddClass(NewFeatureClass(element)); err != nil {
				r.diagnostic(err)
				idx = r.classIndexByName(element)
			}
		}
	}

	f := NewFeature(r.classes[idx])
	f.SetFID(fid)
	s := r.newState()
	s.Feature = f
	r.pushState(s)
}

// AddClass registers a class and returns its index.
func (r *Reader) AddClass(c *FeatureClass) (int, error) {
	if r.ClassByName(c.Name()) != nil {
		return -1, errors.WithStack(&DuplicateClassError{Name: c.Name()})
	}
	r.classes = append(r.classes, c)
	if c.HasFeatureProperties() {
		r.lookForClassAtAnyLevel = true
	}
	return len(r.classes) - 1, nil
}

// ClearClasses empties the registry.
func (r *Reader) ClearClasses() {
	r.classes = nil
	r.lookForClassAtAnyLevel = false
	r.filteredClassIndex = -1
	r.sequentialLayers = -1
}

func (r *Reader) ClassCount() int { return len(r.classes) }

func (r *Reader) Class(i int) *FeatureClass {
	if i < 0 || i >= len(r.classes) {
		return nil
	}
	return r.classes[i]
}

// ClassByName looks a class up by name, ignoring case.
func (r *Reader) ClassByName(name string) *FeatureClass {
	return r.Class(r.classIndexByName(name))
}

func (r *Reader) classIndexByName(name string) int {
	for i, c := range r.classes {
		if strings.EqualFold(c.Name(), name) {
			return i
		}
	}
	return -1
}

func (r *Reader) classIndexByElementName(element string) int {
	for i, c := range r.classes {
		if c.ElementName() == element {
			return i
		}
	}
	return -1
}

// IsClassListLocked reports whether new classes may still be created.
func (r *Reader) IsClassListLocked() bool { return r.classListLocked }

func (r *Reader) SetClassListLocked(b bool) { r.classListLocked = b }

// ShouldLookForClassAtAnyLevel reports whether features are searched below
// other features, which is needed once a class references other features.
func (r *Reader) ShouldLookForClassAtAnyLevel() bool { return r.lookForClassAtAnyLevel }

// SetFilteredClassName restricts reading to features of the class with the
// given element name. An empty name removes the filter.
func (r *Reader) SetFilteredClassName(name string) {
	r.filteredClassName = name
	r.filteredClassIndex = -1
	if name == "" {
		return
	}
	r.filteredClassIndex = r.classIndexByElementName(name)
}

func (r *Reader) FilteredClassName() string { return r.filteredClassName }

func (r *Reader) FilteredClassIndex() int { return r.filteredClassIndex }

// IsSequentialLayers reports whether a prescan or a loaded schema found that
// the features of each class form one contiguous run.
func (r *Reader) IsSequentialLayers() bool { return r.sequentialLayers == 1 }

func (r *Reader) SetSequentialLayers(b bool) {
	if b {
		r.sequentialLayers = 1
	} else {
		r.sequentialLayers = 0
	}
}

// SetGlobalSRSName records the document level SRS. Only the first name is
// kept.
func (r *Reader) SetGlobalSRSName(name string) {
	if r.globalSRSName == "" && name != "" {
		r.globalSRSName = normalizeGlobalSRSName(name, r.opts.ConsiderEPSGAsURN)
	}
}

func (r *Reader) GlobalSRSName() string { return r.globalSRSName }

// CanUseGlobalSRSName reports whether the document SRS applies to every
// class. Any feature geometry declaring its own SRS turns this off.
func (r *Reader) CanUseGlobalSRSName() bool {
	return r.canUseGlobalSRSName && r.globalSRSName != ""
}

// GeometryBuildOptions returns the geometry build options matching the read
// options. Fragments without srsName fall back to the document SRS.
func (r *Reader) GeometryBuildOptions() GeometryBuildOptions {
	return GeometryBuildOptions{
		InvertAxisOrderIfLatLong: r.opts.InvertAxisOrderIfLatLong,
		ConsiderEPSGAsURN:        r.opts.ConsiderEPSGAsURN,
		SwapCoordinates:          r.opts.SwapCoordinates,
		DefaultSRSName:           r.globalSRSName,
	}
}

// featureElementIndex classifies element as a feature start below the
// current path.
func (r *Reader) featureElementIndex(element string, schema AppSchema) int {
	return classifyFeatureElement(r.state, element, schema, r.classListLocked, r.classes)
}

func (r *Reader) isCityGMLGenericAttributeElement(element string, attrs Attributes) bool {
	switch element {
	case "stringAttribute", "intAttribute", "doubleAttribute", "dateAttribute":
	default:
		return false
	}
	name, ok := attrs.Value("name")
	if !ok {
		return false
	}
	class := r.state.Feature.Class()
	if !class.IsSchemaLocked() {
		return true
	}
	return class.PropertyIndexBySrcElement(name) >= 0
}

// setFeaturePropertyDirectly commits value to the current feature. When
// index does not name a property of the class, the property is resolved by
// element path and created if the class is unlocked.
func (r *Reader) setFeaturePropertyDirectly(element, value string, index int, typ PropertyType) {
	f := r.state.Feature
	class := f.Class()

	if index < 0 || index >= class.PropertyCount() {
		index = class.PropertyIndexBySrcElement(element)
	}
	if index < 0 {
		if class.IsSchemaLocked() {
			r.diagnostic(&SchemaLockedError{Class: class.Name(), Path: element})
			return
		}
		p := NewPropertyDefn(r.newFieldName(class, element), element)
		switch {
		case r.opts.AlwaysString:
			p.SetType(PropertyTypeString)
		case typ != PropertyTypeUntyped:
			p.SetType(typ)
		}
		var err error
		if index, err = class.AddProperty(p); err != nil {
			r.diagnostic(err)
			return
		}
	}

	f.SetPropertyDirectly(index, value)

	if !class.IsSchemaLocked() {
		class.Property(index).AnalysePropertyValue(f.Property(index), r.setWidth)
	}
}

// newFieldName derives the output field name of a new property from its
// element path.
func (r *Reader) newFieldName(class *FeatureClass, element string) string {
	var name string
	switch {
	case r.opts.IsWFSJointLayer:
		name = strings.TrimPrefix(element, "member|")
		name = strings.Replace(name, "|", ".", 1)
		if i := strings.Index(name, "@id"); i >= 0 && i+len("@id") == len(name) {
			name = name[:i] + ".gml_id"
		}
	case !strings.Contains(element, "|"):
		name = element
	default:
		name = element[strings.LastIndexByte(element, '|')+1:]
		if class.PropertyIndex(name) >= 0 {
			name = element
		}
	}
	name = strings.Replace(name, "@", "_", 1)

	for class.PropertyIndex(name) >= 0 {
		name += "_"
	}
	return name
}

// diagnostic reports a non-fatal anomaly.
func (r *Reader) diagnostic(err error) {
	glog.V(1).Infof("%v", err)
	if r.opts.OnDiagnostic != nil {
		r.opts.OnDiagnostic(err)
	}
}
