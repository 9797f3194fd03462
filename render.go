package clipper

import (
	"strconv"
	"strings"
	"sync"
)

// RenderTarget is the collaborator translating a boundary into its native clip representation.
type RenderTarget interface {
	// ApplyBoundary applies the boundary and rotates the element by rotation degrees.
	// A "none" boundary means no constraint and no rotation.
	ApplyBoundary(b Boundary, rotation float64)
	// ApplyTransition receives the opaque transition spec once, at construction.
	ApplyTransition(spec string)
	// ClearBoundary removes any boundary constraint and rotation.
	ClearBoundary()
}

// Style properties written by StyleTarget.
const (
	PropClipPath   = "clip-path"
	PropTransform  = "transform"
	PropTransition = "transition"
)

var styleOrder = []string{PropClipPath, PropTransform, PropTransition}

// StyleTarget renders the boundary as inline CSS style properties.
type StyleTarget struct {
	mu    sync.RWMutex
	Name  string
	props map[string]string
}

var _ RenderTarget = (*StyleTarget)(nil)

// NewStyleTarget creates an empty style target. The name is only used for reporting.
func NewStyleTarget(name string) *StyleTarget {
	return &StyleTarget{
		Name:  name,
		props: make(map[string]string),
	}
}

// ApplyBoundary implements RenderTarget.
func (s *StyleTarget) ApplyBoundary(b Boundary, rotation float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if IsNone(b) {
		s.props[PropClipPath] = None.Raw
		s.props[PropTransform] = None.Raw
		return
	}
	s.props[PropClipPath] = b.String()
	s.props[PropTransform] = "rotate(" + strconv.FormatFloat(rotation, 'f', -1, 64) + "deg)"
}

// ApplyTransition implements RenderTarget.
func (s *StyleTarget) ApplyTransition(spec string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.props[PropTransition] = "all " + spec
}

// ClearBoundary implements RenderTarget.
func (s *StyleTarget) ClearBoundary() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.props[PropClipPath] = None.Raw
	s.props[PropTransform] = None.Raw
}

// Style returns the value of a single style property, or an empty string if unset.
func (s *StyleTarget) Style(prop string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.props[prop]
}

// CSS returns the style declarations block, e.g. "clip-path: circle(50% at 50% 50%); transform: rotate(0deg);".
func (s *StyleTarget) CSS() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	decls := make([]string, 0, len(styleOrder))
	for _, prop := range styleOrder {
		if v, ok := s.props[prop]; ok {
			decls = append(decls, prop+": "+v+";")
		}
	}
	return strings.Join(decls, " ")
}
