package clipper

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingTarget keeps every call it receives.
type recordingTarget struct {
	mu          sync.Mutex
	boundaries  []Boundary
	rotations   []float64
	transitions []string
	clears      int
}

func (r *recordingTarget) ApplyBoundary(b Boundary, rotation float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.boundaries = append(r.boundaries, b)
	r.rotations = append(r.rotations, rotation)
}

func (r *recordingTarget) ApplyTransition(spec string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.transitions = append(r.transitions, spec)
}

func (r *recordingTarget) ClearBoundary() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.clears++
}

func (r *recordingTarget) last() (Boundary, float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.boundaries)
	return r.boundaries[n-1], r.rotations[n-1]
}

// warnings collects the diagnostics.
type warnings struct {
	mu   sync.Mutex
	msgs []string
}

func (w *warnings) Warn(msg string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.msgs = append(w.msgs, msg)
}

func newTestClipper(t *testing.T, patch Patch, opts ...Option) (*Clipper, *StyleTarget) {
	t.Helper()

	target := NewStyleTarget("test")
	c, err := New(target, patch, opts...)
	require.NoError(t, err)

	return c, target
}

func TestClipper_NewWithoutTarget(t *testing.T) {
	_, err := New(nil, Patch{})
	assert.ErrorIs(t, err, ErrNoTarget)

	var typedNil *StyleTarget
	_, err = New(typedNil, Patch{})
	assert.ErrorIs(t, err, ErrNoTarget)
}

func TestClipper_NewPublishesDefaults(t *testing.T) {
	c, target := newTestClipper(t, Patch{})

	assert.Equal(t, DefaultParams(), c.Get())
	assert.Equal(t, "clip-path: circle(50% at 50% 50%); transform: rotate(0deg); transition: all 0.3s ease;", target.CSS())
}

func TestClipper_NewAppliesTransitionOnce(t *testing.T) {
	rec := &recordingTarget{}
	c, err := New(rec, Patch{}.WithTransition("1s linear"))
	require.NoError(t, err)

	c.SetSize(20)
	c.Reset()

	assert.Equal(t, []string{"1s linear"}, rec.transitions)
	assert.Len(t, rec.boundaries, 3)
}

func TestClipper_NewDoesNotClamp(t *testing.T) {
	c, target := newTestClipper(t, Patch{}.WithSize(150).WithPosition(-10, 120).WithRotation(400))

	p := c.Get()
	assert.Equal(t, 150.0, p.Size)
	assert.Equal(t, -10.0, p.X)
	assert.Equal(t, 120.0, p.Y)
	assert.Equal(t, 400.0, p.Rotation)
	assert.Equal(t, "circle(150% at -10% 120%)", target.Style(PropClipPath))
	assert.Equal(t, "rotate(400deg)", target.Style(PropTransform))
}

func TestClipper_SettersClamp(t *testing.T) {
	c, _ := newTestClipper(t, Patch{})

	assert.Equal(t, CircleDesc{Radius: 100, CX: 50, CY: 50}, c.SetSize(150))
	c.SetSize(-5)
	assert.Equal(t, 0.0, c.Get().Size)

	c.SetPosition(-10, 120)
	assert.Equal(t, 0.0, c.Get().X)
	assert.Equal(t, 100.0, c.Get().Y)

	c.SetX(33)
	c.SetY(101)
	assert.Equal(t, 33.0, c.Get().X)
	assert.Equal(t, 100.0, c.Get().Y)
}

func TestClipper_SetDoesNotClamp(t *testing.T) {
	c, _ := newTestClipper(t, Patch{})

	b := c.Set(Patch{}.WithSize(120).WithShape(Ellipse))
	assert.Equal(t, 120.0, c.Get().Size)
	assert.IsType(t, EllipseDesc{}, b)
}

func TestClipper_SetRotationWraps(t *testing.T) {
	c, target := newTestClipper(t, Patch{})

	testCases := []struct {
		in, want float64
	}{
		{370, 10},
		{-10, 350},
		{360, 0},
		{-720, 0},
		{45.5, 45.5},
	}
	for _, tc := range testCases {
		c.SetRotation(tc.in)
		assert.InDelta(t, tc.want, c.Get().Rotation, 1e-9, "rotation %v", tc.in)
	}

	c.SetRotation(370)
	assert.Equal(t, "rotate(10deg)", target.Style(PropTransform))
}

func TestClipper_SetShape(t *testing.T) {
	c, target := newTestClipper(t, Patch{})

	b := c.SetShape(Rectangle)
	assert.Equal(t, InsetDesc{25, 25, 25, 25}, b)
	assert.Equal(t, "inset(25% 25% 25% 25%)", target.Style(PropClipPath))

	b = c.SetShape(Shape("blob"))
	assert.True(t, IsNone(b))
	assert.Equal(t, "none", target.Style(PropClipPath))
	assert.Equal(t, "none", target.Style(PropTransform))
}

func TestClipper_SetCustomPath(t *testing.T) {
	c, target := newTestClipper(t, Patch{})
	path := "path('M 0 0 L 100 0 L 50 100 Z')"

	b := c.SetCustomPath(path)
	assert.Equal(t, Custom, c.Get().Shape)
	assert.Equal(t, OpaqueDesc{Raw: path}, b)
	assert.Equal(t, path, target.Style(PropClipPath))
	assert.Equal(t, b, c.ClipPath())

	assert.True(t, IsNone(c.SetCustomPath("")))
}

func TestClipper_ClipPathDoesNotPublish(t *testing.T) {
	rec := &recordingTarget{}
	c, err := New(rec, Patch{})
	require.NoError(t, err)

	assert.Equal(t, CircleDesc{Radius: 50, CX: 50, CY: 50}, c.ClipPath())
	assert.Len(t, rec.boundaries, 1)
}

func TestClipper_Preset(t *testing.T) {
	c, target := newTestClipper(t, Patch{}.WithRotation(90).WithCustomPath("url(#m)"))

	b := c.Preset("star")
	poly, ok := b.(PolygonDesc)
	require.True(t, ok)
	assert.Len(t, poly.Points, 10)

	p := c.Get()
	assert.Equal(t, Star, p.Shape)
	assert.Equal(t, 70.0, p.Size)
	assert.Equal(t, 50.0, p.X)
	assert.Equal(t, 50.0, p.Y)
	assert.Equal(t, 0.0, p.Rotation)
	assert.Equal(t, "url(#m)", p.CustomPath)
	assert.Equal(t, "rotate(0deg)", target.Style(PropTransform))
}

func TestClipper_PresetTable(t *testing.T) {
	want := map[string]struct {
		shape Shape
		size  float64
	}{
		"circle":   {Circle, 45},
		"ellipse":  {Ellipse, 60},
		"square":   {Rectangle, 70},
		"diamond":  {Diamond, 60},
		"triangle": {Triangle, 50},
		"hexagon":  {Hexagon, 60},
		"star":     {Star, 70},
		"heart":    {Heart, 60},
	}
	require.Len(t, PresetNames, len(want))

	for _, name := range PresetNames {
		c, _ := newTestClipper(t, Patch{}.WithPosition(10, 90))
		c.Preset(name)

		p := c.Get()
		assert.Equal(t, want[name].shape, p.Shape, name)
		assert.Equal(t, want[name].size, p.Size, name)
		assert.Equal(t, 50.0, p.X, name)
		assert.Equal(t, 50.0, p.Y, name)
	}
}

func TestClipper_UnknownPreset(t *testing.T) {
	diag := &warnings{}
	c, target := newTestClipper(t, Patch{}.WithShape(Hexagon), WithDiagnostics(diag))
	before, css := c.Get(), target.CSS()

	b := c.Preset("blob")
	assert.Equal(t, Compute(before), b)
	assert.Equal(t, before, c.Get())
	assert.Equal(t, css, target.CSS())
	assert.Equal(t, []string{`preset "blob" not found`}, diag.msgs)
}

func TestClipper_Reset(t *testing.T) {
	c, target := newTestClipper(t, Patch{}.WithShape(Star).WithTransition("2s"))
	c.SetRotation(30)

	b := c.Reset()
	assert.Equal(t, DefaultParams(), c.Get())
	assert.Equal(t, CircleDesc{Radius: 50, CX: 50, CY: 50}, b)
	assert.Equal(t, "circle(50% at 50% 50%)", target.Style(PropClipPath))
	assert.Equal(t, "rotate(0deg)", target.Style(PropTransform))
}

func TestClipper_ClearKeepsTheParameters(t *testing.T) {
	c, target := newTestClipper(t, Patch{}.WithShape(Diamond).WithRotation(20))

	c.Clear()
	assert.Equal(t, "none", target.Style(PropClipPath))
	assert.Equal(t, "none", target.Style(PropTransform))
	assert.Equal(t, Diamond, c.Get().Shape)
	assert.Equal(t, 20.0, c.Get().Rotation)

	// The next mutation re-applies the stored parameters.
	c.SetSize(60)
	assert.Equal(t, Compute(c.Get()).String(), target.Style(PropClipPath))
	assert.Equal(t, "rotate(20deg)", target.Style(PropTransform))
}

func TestClipper_NewAll(t *testing.T) {
	a, b := NewStyleTarget("a"), NewStyleTarget("b")

	clippers, err := NewAll([]RenderTarget{a, b}, Patch{}.WithShape(Heart))
	require.NoError(t, err)
	require.Len(t, clippers, 2)
	assert.Equal(t, a.CSS(), b.CSS())

	clippers[0].SetSize(10)
	assert.Equal(t, 10.0, clippers[0].Get().Size)
	assert.Equal(t, 50.0, clippers[1].Get().Size)
	assert.NotEqual(t, a.CSS(), b.CSS())
	assert.Same(t, RenderTarget(b), clippers[1].Target())
}

func TestClipper_NewAllFailsOnMissingTarget(t *testing.T) {
	_, err := NewAll([]RenderTarget{NewStyleTarget("a"), nil}, Patch{})
	require.ErrorIs(t, err, ErrNoTarget)
	assert.Contains(t, err.Error(), "target 1")
}

func TestClipper_ConcurrentMutations(t *testing.T) {
	rec := &recordingTarget{}
	c, err := New(rec, Patch{}, WithScheduler(NewStepScheduler(time.Time{}, FrameInterval)))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				c.SetSize(float64(j))
				c.SetPosition(float64(i), float64(j))
				c.SetRotation(float64(i * j))
				_ = c.Get()
			}
		}(i)
	}
	wg.Wait()

	// The last published boundary always matches the stored parameters.
	b, rot := rec.last()
	p := c.Get()
	assert.Equal(t, Compute(p), b)
	assert.Equal(t, p.Rotation, rot)
	assert.Len(t, rec.boundaries, 1+8*50*3)
}

func TestClipper_DiagnosticsFunc(t *testing.T) {
	var got []string
	c, _ := newTestClipper(t, Patch{}, WithDiagnostics(DiagnosticsFunc(func(msg string) {
		got = append(got, msg)
	})))

	for i := 0; i < 2; i++ {
		c.Preset(fmt.Sprintf("missing-%d", i))
	}
	assert.Equal(t, []string{`preset "missing-0" not found`, `preset "missing-1" not found`}, got)
}
