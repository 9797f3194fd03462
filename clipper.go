package clipper

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/esimov/clipper/utils"
)

// ErrNoTarget is returned when a Clipper is constructed without a render target.
var ErrNoTarget = errors.New("render target not found")

// Clipper holds the current parameter set of a single render target.
// Every mutation recomputes the boundary and publishes it to the target
// inside the same critical section, so observers never see a half updated set.
type Clipper struct {
	mu     sync.Mutex
	params Params
	target RenderTarget
	diag   Diagnostics
	sched  FrameScheduler
	anim   *Animation
}

// Option customizes a Clipper on construction.
type Option func(*Clipper)

// WithDiagnostics sets the receiver of non-fatal warnings.
// By default warnings are sent to the package logger.
func WithDiagnostics(d Diagnostics) Option {
	return func(c *Clipper) {
		if d != nil {
			c.diag = d
		}
	}
}

// WithScheduler sets the frame scheduler driving the animations.
// By default a shared ticker based scheduler running at FrameInterval is used.
func WithScheduler(s FrameScheduler) Option {
	return func(c *Clipper) {
		if s != nil {
			c.sched = s
		}
	}
}

// New creates a Clipper bound to target. The patch is merged over DefaultParams
// without any clamping. The transition spec and the initial boundary are
// applied to the target right away.
func New(target RenderTarget, patch Patch, opts ...Option) (*Clipper, error) {
	if isNil(target) {
		return nil, ErrNoTarget
	}
	c := &Clipper{
		params: DefaultParams().Merge(patch),
		target: target,
		diag:   logDiagnostics{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.sched == nil {
		c.sched = defaultScheduler()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.target.ApplyTransition(c.params.Transition)
	c.publish()

	return c, nil
}

// NewAll creates one independent Clipper per target, all sharing the same initial patch.
// It fails on the first unresolvable target.
func NewAll(targets []RenderTarget, patch Patch, opts ...Option) ([]*Clipper, error) {
	clippers := make([]*Clipper, 0, len(targets))
	for i, t := range targets {
		c, err := New(t, patch, opts...)
		if err != nil {
			return nil, fmt.Errorf("target %d: %w", i, err)
		}
		clippers = append(clippers, c)
	}
	return clippers, nil
}

// isNil also catches typed nil pointers wrapped into the interface.
func isNil(t RenderTarget) bool {
	if t == nil {
		return true
	}
	v := reflect.ValueOf(t)
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Func, reflect.Interface, reflect.Slice, reflect.Chan:
		return v.IsNil()
	}
	return false
}

// publish computes the boundary and hands it to the target. Caller must hold c.mu.
func (c *Clipper) publish() Boundary {
	b := Compute(c.params)
	c.target.ApplyBoundary(b, c.params.Rotation)
	return b
}

// update runs fn on the parameters and publishes the result.
func (c *Clipper) update(fn func(p *Params)) Boundary {
	c.mu.Lock()
	defer c.mu.Unlock()

	fn(&c.params)
	return c.publish()
}

// Get returns a snapshot of the current parameters.
func (c *Clipper) Get() Params {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.params
}

// Target returns the render target the clipper publishes to.
func (c *Clipper) Target() RenderTarget {
	return c.target
}

// Set merges patch into the current parameters. Values are not clamped.
func (c *Clipper) Set(patch Patch) Boundary {
	return c.update(func(p *Params) {
		*p = p.Merge(patch)
	})
}

// SetShape changes the clipping shape.
func (c *Clipper) SetShape(s Shape) Boundary {
	return c.update(func(p *Params) {
		p.Shape = s
	})
}

// SetSize sets the size, clamped to [0, 100].
func (c *Clipper) SetSize(size float64) Boundary {
	return c.update(func(p *Params) {
		p.Size = utils.Clamp(size, 0, 100)
	})
}

// SetPosition sets both anchor coordinates, each clamped to [0, 100].
func (c *Clipper) SetPosition(x, y float64) Boundary {
	return c.update(func(p *Params) {
		p.X = utils.Clamp(x, 0, 100)
		p.Y = utils.Clamp(y, 0, 100)
	})
}

// SetX sets the horizontal anchor, clamped to [0, 100].
func (c *Clipper) SetX(x float64) Boundary {
	return c.update(func(p *Params) {
		p.X = utils.Clamp(x, 0, 100)
	})
}

// SetY sets the vertical anchor, clamped to [0, 100].
func (c *Clipper) SetY(y float64) Boundary {
	return c.update(func(p *Params) {
		p.Y = utils.Clamp(y, 0, 100)
	})
}

// SetRotation sets the rotation wrapped into [0, 360), negative angles included.
func (c *Clipper) SetRotation(deg float64) Boundary {
	return c.update(func(p *Params) {
		p.Rotation = utils.Wrap(deg, 360)
	})
}

// SetCustomPath stores a raw clip-path value and switches to the custom shape.
func (c *Clipper) SetCustomPath(path string) Boundary {
	return c.update(func(p *Params) {
		p.CustomPath = path
		p.Shape = Custom
	})
}

// ClipPath returns the boundary of the current parameters without publishing it.
func (c *Clipper) ClipPath() Boundary {
	return Compute(c.Get())
}

// Reset restores DefaultParams and publishes them.
func (c *Clipper) Reset() Boundary {
	return c.update(func(p *Params) {
		*p = DefaultParams()
	})
}

// Clear removes the boundary and the rotation from the render target.
// The stored parameters are kept, so the next mutation re-applies them.
func (c *Clipper) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.target.ClearBoundary()
}

// Preset applies one of the named presets. An unknown name is reported to the
// diagnostics receiver and the current boundary is returned unchanged.
func (c *Clipper) Preset(name string) Boundary {
	patch, ok := LookupPreset(name)
	if !ok {
		c.diag.Warn(fmt.Sprintf("preset %q not found", name))
		return c.ClipPath()
	}
	return c.Set(patch)
}

// Animate tweens the current parameters towards target over d, using the
// clipper's frame scheduler. A non positive duration falls back to DefaultDuration.
// Starting an animation supersedes the one already running on the clipper.
func (c *Clipper) Animate(target Patch, d time.Duration) *Animation {
	if d <= 0 {
		d = DefaultDuration
	}

	c.mu.Lock()
	prev := c.anim
	a := newAnimation(c, c.params, target, d)
	if clock, ok := c.sched.(Clock); ok {
		a.began, a.started = clock.Now(), true
	}
	c.anim = a
	sched := c.sched
	c.mu.Unlock()

	if prev != nil {
		prev.finish()
	}
	Logger().Debug("animation started", "duration", d)
	sched.RequestTick(a.tick)

	return a
}

// Stop cancels the running animation, if any. The parameters stay where the last tick left them.
func (c *Clipper) Stop() {
	c.mu.Lock()
	a := c.anim
	c.anim = nil
	c.mu.Unlock()

	if a != nil {
		a.finish()
	}
}

// Animating reports whether an animation is currently driving the clipper.
func (c *Clipper) Animating() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.anim != nil
}
