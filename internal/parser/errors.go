package parser

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrNoSource is returned when reading is requested before a source was set.
	ErrNoSource = errors.New("no GML source configured")

	// ErrNotSeekable is returned when a stream source has to be rewound but cannot be.
	ErrNotSeekable = errors.New("GML source does not support rewinding")
)

// MalformedDocumentError indicates a tokenizer-level syntax error or broken
// element nesting. It is fatal for the current parse.
type MalformedDocumentError struct {
	Line   int
	Reason string
}

func (e *MalformedDocumentError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("malformed GML document at line %d: %s", e.Line, e.Reason)
	}
	return fmt.Sprintf("malformed GML document: %s", e.Reason)
}

// ResourceLimitError indicates one of the input guards tripped, such as the
// nesting depth limit or the entity expansion guard.
type ResourceLimitError struct {
	Limit string
	Value int
}

func (e *ResourceLimitError) Error() string {
	return fmt.Sprintf("%s limit exceeded (%d), file probably corrupted", e.Limit, e.Value)
}

// DuplicateClassError indicates a class name already registered
type DuplicateClassError struct {
	Name string
}

func (e *DuplicateClassError) Error() string {
	return fmt.Sprintf("feature class %q already exists", e.Name)
}

// SchemaLockedError reports an attempt to grow a locked class or registry.
// Raised as a diagnostic while parsing, returned as an error from the
// registry mutators.
type SchemaLockedError struct {
	Class string
	Path  string
}

func (e *SchemaLockedError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("encountered property %q missing from locked class %q schema, ignoring",
			e.Path, e.Class)
	}
	return fmt.Sprintf("schema of %q is locked", e.Class)
}

// DuplicatePropertyError indicates a property name or source path already used within a class
type DuplicatePropertyError struct {
	Class string
	Name  string
}

func (e *DuplicatePropertyError) Error() string {
	return fmt.Sprintf("field with same name (%s) already exists in class %q", e.Name, e.Class)
}

// InvalidClassListError indicates a saved-schema document that could not be used
type InvalidClassListError struct {
	Path   string
	Reason string
}

func (e *InvalidClassListError) Error() string {
	return fmt.Sprintf("invalid feature class list %s: %s", e.Path, e.Reason)
}

// InvalidGeometryError indicates a geometry fragment the builder could not turn into a geometry
type InvalidGeometryError struct {
	Element string
	Reason  string
}

func (e *InvalidGeometryError) Error() string {
	if e.Element != "" {
		return fmt.Sprintf("invalid geometry (%s): %s", e.Element, e.Reason)
	}
	return fmt.Sprintf("invalid geometry: %s", e.Reason)
}

// IsFatal reports whether err terminates the current parse.
func IsFatal(err error) bool {
	switch errors.Cause(err).(type) {
	case *MalformedDocumentError, *ResourceLimitError:
		return true
	}
	return false
}
