package clipper

import "strings"

// Shape identifies the clipping shape.
type Shape string

const (
	Circle    Shape = "circle"
	Ellipse   Shape = "ellipse"
	Rectangle Shape = "rectangle"
	Inset     Shape = "inset"
	Triangle  Shape = "triangle"
	Diamond   Shape = "diamond"
	Hexagon   Shape = "hexagon"
	Star      Shape = "star"
	Heart     Shape = "heart"
	Custom    Shape = "custom"
)

// Shapes lists the built-in shapes in the order they are cycled through by the previews.
var Shapes = []Shape{Circle, Ellipse, Rectangle, Triangle, Diamond, Hexagon, Star, Heart}

// ParseShape normalizes a user supplied shape name. Unknown names are kept as they are,
// since the geometry falls back to "none" for them anyway.
func ParseShape(name string) Shape {
	return Shape(strings.ToLower(strings.TrimSpace(name)))
}

// Known reports whether s is one of the shapes the geometry understands.
func (s Shape) Known() bool {
	switch s {
	case Circle, Ellipse, Rectangle, Inset, Triangle, Diamond, Hexagon, Star, Heart, Custom:
		return true
	}
	return false
}

// Next returns the shape following s in Shapes, wrapping around at the end.
func (s Shape) Next() Shape {
	for i, sh := range Shapes {
		if sh == s {
			return Shapes[(i+1)%len(Shapes)]
		}
	}
	return Shapes[0]
}
