package clipper

import (
	"strconv"
	"strings"
)

// Boundary is the shape mask descriptor handed to a RenderTarget.
// It is one of CircleDesc, EllipseDesc, InsetDesc, PolygonDesc or OpaqueDesc.
// String renders the CSS clip-path syntax of the descriptor.
type Boundary interface {
	String() string
	boundary()
}

// Point is a coordinate pair expressed in percentages of the container.
type Point struct {
	X, Y float64
}

// CircleDesc is a circle of Radius percent centered at (CX, CY).
type CircleDesc struct {
	Radius float64
	CX, CY float64
}

// EllipseDesc is an ellipse with RX, RY radii centered at (CX, CY).
type EllipseDesc struct {
	RX, RY float64
	CX, CY float64
}

// InsetDesc is a rectangle inset from each container edge.
type InsetDesc struct {
	Top, Right, Bottom, Left float64
}

// PolygonDesc is a closed polygon.
type PolygonDesc struct {
	Points []Point
}

// OpaqueDesc is a raw clip-path value passed through untouched.
type OpaqueDesc struct {
	Raw string
}

// None is the "no boundary constraint" descriptor.
var None = OpaqueDesc{Raw: "none"}

func (CircleDesc) boundary()  {}
func (EllipseDesc) boundary() {}
func (InsetDesc) boundary()   {}
func (PolygonDesc) boundary() {}
func (OpaqueDesc) boundary()  {}

func (c CircleDesc) String() string {
	return "circle(" + pct(c.Radius) + " at " + pct(c.CX) + " " + pct(c.CY) + ")"
}

func (e EllipseDesc) String() string {
	return "ellipse(" + pct(e.RX) + " " + pct(e.RY) + " at " + pct(e.CX) + " " + pct(e.CY) + ")"
}

func (i InsetDesc) String() string {
	return "inset(" + pct(i.Top) + " " + pct(i.Right) + " " + pct(i.Bottom) + " " + pct(i.Left) + ")"
}

func (p PolygonDesc) String() string {
	var sb strings.Builder
	sb.WriteString("polygon(")
	for i, pt := range p.Points {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(pct(pt.X))
		sb.WriteByte(' ')
		sb.WriteString(pct(pt.Y))
	}
	sb.WriteByte(')')
	return sb.String()
}

func (o OpaqueDesc) String() string {
	if o.Raw == "" {
		return None.Raw
	}
	return o.Raw
}

// IsNone reports whether the descriptor removes any boundary constraint.
func (o OpaqueDesc) IsNone() bool {
	return o.Raw == "" || o.Raw == None.Raw
}

// IsNone reports whether b means "no boundary constraint".
func IsNone(b Boundary) bool {
	if b == nil {
		return true
	}
	o, ok := b.(OpaqueDesc)
	return ok && o.IsNone()
}

// pct formats v the shortest way it round trips, followed by a percent sign.
func pct(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "%"
}
