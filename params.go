package clipper

// DefaultTransition is the transition applied to the render target when none is given.
const DefaultTransition = "0.3s ease"

// Params is the complete clipping parameter set.
// Size, X and Y are percentages of the container, Rotation is expressed in degrees.
type Params struct {
	Shape      Shape
	Size       float64
	X          float64
	Y          float64
	Rotation   float64
	CustomPath string
	Transition string
}

// DefaultParams returns the documented default parameter set.
func DefaultParams() Params {
	return Params{
		Shape:      Circle,
		Size:       50,
		X:          50,
		Y:          50,
		Rotation:   0,
		Transition: DefaultTransition,
	}
}

// Patch is a partial parameter set. Nil fields are left untouched on merge.
type Patch struct {
	Shape      *Shape
	Size       *float64
	X          *float64
	Y          *float64
	Rotation   *float64
	CustomPath *string
	Transition *string
}

// WithShape returns a copy of the patch with the shape set.
func (p Patch) WithShape(s Shape) Patch {
	p.Shape = &s
	return p
}

// WithSize returns a copy of the patch with the size set.
func (p Patch) WithSize(v float64) Patch {
	p.Size = &v
	return p
}

// WithPosition returns a copy of the patch with both anchor coordinates set.
func (p Patch) WithPosition(x, y float64) Patch {
	p.X, p.Y = &x, &y
	return p
}

// WithX returns a copy of the patch with the horizontal anchor set.
func (p Patch) WithX(v float64) Patch {
	p.X = &v
	return p
}

// WithY returns a copy of the patch with the vertical anchor set.
func (p Patch) WithY(v float64) Patch {
	p.Y = &v
	return p
}

// WithRotation returns a copy of the patch with the rotation set.
func (p Patch) WithRotation(v float64) Patch {
	p.Rotation = &v
	return p
}

// WithCustomPath returns a copy of the patch with the custom clip-path set.
func (p Patch) WithCustomPath(path string) Patch {
	p.CustomPath = &path
	return p
}

// WithTransition returns a copy of the patch with the transition spec set.
func (p Patch) WithTransition(spec string) Patch {
	p.Transition = &spec
	return p
}

// IsEmpty reports whether the patch carries no field at all.
func (p Patch) IsEmpty() bool {
	return p == Patch{}
}

// Merge overrides the fields of p with the ones present in patch.
// Values are copied verbatim, no clamping takes place.
func (p Params) Merge(patch Patch) Params {
	if patch.Shape != nil {
		p.Shape = *patch.Shape
	}
	if patch.Size != nil {
		p.Size = *patch.Size
	}
	if patch.X != nil {
		p.X = *patch.X
	}
	if patch.Y != nil {
		p.Y = *patch.Y
	}
	if patch.Rotation != nil {
		p.Rotation = *patch.Rotation
	}
	if patch.CustomPath != nil {
		p.CustomPath = *patch.CustomPath
	}
	if patch.Transition != nil {
		p.Transition = *patch.Transition
	}
	return p
}

// Patch returns a patch carrying every field of p.
func (p Params) Patch() Patch {
	return Patch{}.
		WithShape(p.Shape).
		WithSize(p.Size).
		WithPosition(p.X, p.Y).
		WithRotation(p.Rotation).
		WithCustomPath(p.CustomPath).
		WithTransition(p.Transition)
}
