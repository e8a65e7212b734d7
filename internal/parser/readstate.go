package parser

// ReadState is one frame of the parse context stack. The frame that began a
// feature owns it until the frame is popped.
type ReadState struct {
	Feature *Feature
	Parent  *ReadState

	// Path is the pipe separated list of element names from the feature
	// root to the current element.
	Path string

	components []string
}

// PushPath appends an element to the current path.
func (s *ReadState) PushPath(element string) {
	if len(s.components) > 0 {
		s.Path += "|"
	}
	s.Path += element
	s.components = append(s.components, element)
}

// PopPath removes the last element from the current path.
func (s *ReadState) PopPath() {
	n := len(s.components)
	if n == 0 {
		return
	}
	last := s.components[n-1]
	cut := len(last)
	if n > 1 {
		cut++
	}
	s.Path = s.Path[:len(s.Path)-cut]
	s.components = s.components[:n-1]
}

// LastComponent returns the innermost element of the path or "" at the root.
func (s *ReadState) LastComponent() string {
	if len(s.components) == 0 {
		return ""
	}
	return s.components[len(s.components)-1]
}

// PathLength returns the number of elements in the path.
func (s *ReadState) PathLength() int {
	return len(s.components)
}

// Reset clears the frame for reuse.
func (s *ReadState) Reset() {
	s.Feature = nil
	s.Parent = nil
	s.Path = ""
	s.components = s.components[:0]
}
