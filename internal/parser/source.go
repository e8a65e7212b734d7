package parser

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding/htmlindex"
)

// Backend selects how input is tokenized and delivered to the handler.
type Backend int

const (
	// BackendStream delivers one token per feed, so reading stops as soon
	// as a feature completes.
	BackendStream Backend = iota
	// BackendChunk delivers every token of the next input chunk per feed;
	// completed features queue up in the feature buffer.
	BackendChunk
)

func (b Backend) String() string {
	if b == BackendChunk {
		return "chunk"
	}
	return "stream"
}

const (
	// DefaultChunkSize is the amount of input one chunk feed consumes.
	DefaultChunkSize = 10 * 8192
	// DefaultMaxDepth bounds element nesting.
	DefaultMaxDepth = 8192
)

// Attributes gives access to the attributes of a start element. Keys are
// qualified names such as "gml:id" or "xlink:href".
type Attributes interface {
	Len() int
	At(i int) (key, value string)
	Value(key string) (string, bool)
}

// EventHandler consumes the events of an EventSource in document order.
// Element names are local names.
type EventHandler interface {
	StartElement(name string, attrs Attributes) error
	EndElement(name string) error
	CharacterData(data []byte) error
}

// EventSource tokenizes a document and feeds its events to a handler.
type EventSource interface {
	// Feed delivers the next batch of events. It returns io.EOF once the
	// document is exhausted and every element was closed.
	Feed(h EventHandler) error
}

type sourceOptions struct {
	backend   Backend
	chunkSize int
	maxDepth  int
}

func newEventSource(r io.Reader, opts sourceOptions) EventSource {
	t := newTokenizer(r, opts.maxDepth)
	if opts.backend == BackendChunk {
		size := opts.chunkSize
		if size <= 0 {
			size = DefaultChunkSize
		}
		return &chunkSource{tok: t, chunkSize: size}
	}
	return &streamSource{tok: t}
}

// streamSource is the pull backend.
type streamSource struct {
	tok *tokenizer
}

func (s *streamSource) Feed(h EventHandler) error {
	_, err := s.tok.step(h)
	return err
}

// chunkSource is the push backend.
type chunkSource struct {
	tok       *tokenizer
	chunkSize int
}

func (s *chunkSource) Feed(h EventHandler) error {
	limit := s.tok.dec.InputOffset() + int64(s.chunkSize)
	dataEvents := 0
	for s.tok.dec.InputOffset() < limit {
		isData, err := s.tok.step(h)
		if err != nil {
			return err
		}
		if isData {
			// One byte of input expanding into many text fragments is the
			// signature of entity abuse.
			dataEvents++
			if dataEvents >= s.chunkSize {
				return errors.WithStack(&ResourceLimitError{Limit: "character data events per chunk", Value: dataEvents})
			}
		}
	}
	return nil
}

// tokenizer adapts encoding/xml raw tokens to handler events and checks
// nesting itself, since raw tokens are not matched by the decoder.
type tokenizer struct {
	dec      *xml.Decoder
	open     []string
	attrs    attrList
	maxDepth int
}

func newTokenizer(r io.Reader, maxDepth int) *tokenizer {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	dec := xml.NewDecoder(&trailingNULReader{br: bufio.NewReader(r)})
	dec.Strict = true
	dec.CharsetReader = charsetReader
	return &tokenizer{dec: dec, maxDepth: maxDepth}
}

// step reads one token and forwards it. isData reports a character data event.
func (t *tokenizer) step(h EventHandler) (isData bool, err error) {
	tok, err := t.dec.RawToken()
	if err == io.EOF {
		if len(t.open) > 0 {
			return false, t.malformed("unexpected end of input, element <%s> not closed", t.open[len(t.open)-1])
		}
		return false, io.EOF
	}
	if err != nil {
		if se, ok := err.(*xml.SyntaxError); ok {
			return false, errors.WithStack(&MalformedDocumentError{Line: se.Line, Reason: se.Msg})
		}
		return false, errors.Wrap(err, "reading GML input")
	}

	switch tok := tok.(type) {
	case xml.StartElement:
		if len(t.open) >= t.maxDepth {
			return false, errors.WithStack(&ResourceLimitError{Limit: "element nesting depth", Value: t.maxDepth})
		}
		t.open = append(t.open, qualifiedName(tok.Name))
		t.attrs.attrs = tok.Attr
		return false, h.StartElement(tok.Name.Local, &t.attrs)
	case xml.EndElement:
		name := qualifiedName(tok.Name)
		if len(t.open) == 0 {
			return false, t.malformed("end tag </%s> without start tag", name)
		}
		if top := t.open[len(t.open)-1]; top != name {
			return false, t.malformed("element <%s> closed by </%s>", top, name)
		}
		t.open = t.open[:len(t.open)-1]
		return false, h.EndElement(tok.Name.Local)
	case xml.CharData:
		if len(t.open) == 0 {
			return false, nil
		}
		return true, h.CharacterData(tok)
	}
	return false, nil
}

func (t *tokenizer) malformed(format string, args ...interface{}) error {
	line, _ := t.dec.InputPos()
	return errors.WithStack(&MalformedDocumentError{Line: line, Reason: fmt.Sprintf(format, args...)})
}

func qualifiedName(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

// attrList exposes raw decoder attributes through Attributes.
type attrList struct {
	attrs []xml.Attr
}

func (a *attrList) Len() int { return len(a.attrs) }

func (a *attrList) At(i int) (string, string) {
	return qualifiedName(a.attrs[i].Name), a.attrs[i].Value
}

func (a *attrList) Value(key string) (string, bool) {
	for _, at := range a.attrs {
		if qualifiedName(at.Name) == key {
			return at.Value, true
		}
	}
	return "", false
}

func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, errors.Wrapf(err, "unsupported document encoding %q", label)
	}
	return enc.NewDecoder().Reader(input), nil
}

// trailingNULReader hides NUL padding at the very end of the input.
type trailingNULReader struct {
	br *bufio.Reader
}

func (t *trailingNULReader) Read(p []byte) (int, error) {
	n, err := t.br.Read(p)
	end := n
	for end > 0 && p[end-1] == 0 {
		end--
	}
	if end == n {
		return n, err
	}
	if err != nil {
		return end, err
	}
	if !t.onlyNULsRemain() {
		return n, nil
	}
	return end, io.EOF
}

// onlyNULsRemain consumes NUL bytes and reports whether the input ended
// before anything else showed up.
func (t *trailingNULReader) onlyNULsRemain() bool {
	for {
		b, err := t.br.ReadByte()
		if err != nil {
			return true
		}
		if b != 0 {
			_ = t.br.UnreadByte()
			return false
		}
	}
}
