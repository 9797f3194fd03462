package clipper

import "github.com/esimov/clipper/utils"

// ellipseSquash is the vertical to horizontal radius ratio of the ellipse.
const ellipseSquash = 0.7

// Vertex templates normalized to the unit square. They are scaled by the size
// and centered on the anchor before being clamped to the container.
var (
	diamondTemplate = []Point{
		{0.5, 0.0}, // top
		{1.0, 0.5}, // right
		{0.5, 1.0}, // bottom
		{0.0, 0.5}, // left
	}

	hexagonTemplate = []Point{
		{0.25, 0.0},
		{0.75, 0.0},
		{1.0, 0.5},
		{0.75, 1.0},
		{0.25, 1.0},
		{0.0, 0.5},
	}

	starTemplate = []Point{
		{0.5, 0.0}, // top point
		{0.61, 0.35},
		{0.98, 0.35}, // right point
		{0.68, 0.57},
		{0.79, 0.91}, // bottom right point
		{0.5, 0.70},
		{0.21, 0.91}, // bottom left point
		{0.32, 0.57},
		{0.02, 0.35}, // left point
		{0.39, 0.35},
	}

	// The bottom approach vertex is visited twice to fake the cusp of the heart.
	heartTemplate = []Point{
		{0.5, 0.2},
		{0.7, 0.05},
		{0.9, 0.05},
		{0.95, 0.15},
		{0.9, 0.3},
		{0.5, 0.7},
		{0.5, 0.95},
		{0.5, 0.7},
		{0.1, 0.3},
		{0.05, 0.15},
		{0.1, 0.05},
		{0.3, 0.05},
	}
)

// Template returns a copy of the normalized vertex template of a polygon shape.
// The second return value is false for shapes not defined by a template.
func Template(s Shape) ([]Point, bool) {
	var t []Point
	switch s {
	case Diamond:
		t = diamondTemplate
	case Hexagon:
		t = hexagonTemplate
	case Star:
		t = starTemplate
	case Heart:
		t = heartTemplate
	default:
		return nil, false
	}
	return append([]Point(nil), t...), true
}

// Compute maps a parameter set to its boundary descriptor.
// It is a pure function: it never fails and never touches shared state.
func Compute(p Params) Boundary {
	switch p.Shape {
	case Circle:
		return CircleDesc{Radius: p.Size, CX: p.X, CY: p.Y}
	case Ellipse:
		return EllipseDesc{RX: p.Size, RY: p.Size * ellipseSquash, CX: p.X, CY: p.Y}
	case Rectangle, Inset:
		inset := (100 - p.Size) / 2
		return InsetDesc{Top: inset, Right: inset, Bottom: inset, Left: inset}
	case Triangle:
		return PolygonDesc{Points: []Point{
			{p.X, utils.Max(0, p.Y-p.Size)},
			{utils.Max(0, p.X-p.Size), utils.Min(100, p.Y+p.Size)},
			{utils.Min(100, p.X+p.Size), utils.Min(100, p.Y+p.Size)},
		}}
	case Diamond, Hexagon, Star, Heart:
		t, _ := Template(p.Shape)
		return PolygonDesc{Points: place(t, p.Size, p.X, p.Y)}
	case Custom:
		if p.CustomPath == "" {
			return None
		}
		return OpaqueDesc{Raw: p.CustomPath}
	}
	return None
}

// place scales the template by size and centers it on the (x, y) anchor.
// Each axis is clamped to the container independently.
func place(template []Point, size, x, y float64) []Point {
	var (
		sizeFrac = size / 100
		ax       = x / 100
		ay       = y / 100
	)
	points := make([]Point, len(template))
	for i, t := range template {
		sx := ax + (t.X-0.5)*sizeFrac
		sy := ay + (t.Y-0.5)*sizeFrac
		points[i] = Point{
			X: utils.Clamp(sx*100, 0, 100),
			Y: utils.Clamp(sy*100, 0, 100),
		}
	}
	return points
}
