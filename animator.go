package clipper

import (
	"math"
	"sync"
	"time"
)

// DefaultDuration is used when Animate receives a non positive duration.
const DefaultDuration = time.Second

// EaseOutCubic is the easing curve of the animations: fast start, slow end.
func EaseOutCubic(t float64) float64 {
	return 1 - math.Pow(1-t, 3)
}

// Progress returns elapsed/d bounded to [0, 1].
func Progress(elapsed, d time.Duration) float64 {
	if d <= 0 || elapsed >= d {
		return 1
	}
	if elapsed <= 0 {
		return 0
	}
	return float64(elapsed) / float64(d)
}

// Interpolate returns start with every field present in target moved towards
// its target value by the (already eased) factor t. Numeric fields are linearly
// interpolated, categorical ones (shape, custom path, transition) switch at once.
func Interpolate(start Params, target Patch, t float64) Params {
	return blend(start, start, target, t)
}

// blend writes the interpolated target fields over dst.
func blend(dst, start Params, target Patch, t float64) Params {
	lerp := func(a, b float64) float64 {
		if t >= 1 {
			return b
		}
		return a + (b-a)*t
	}
	if target.Shape != nil {
		dst.Shape = *target.Shape
	}
	if target.CustomPath != nil {
		dst.CustomPath = *target.CustomPath
	}
	if target.Transition != nil {
		dst.Transition = *target.Transition
	}
	if target.Size != nil {
		dst.Size = lerp(start.Size, *target.Size)
	}
	if target.X != nil {
		dst.X = lerp(start.X, *target.X)
	}
	if target.Y != nil {
		dst.Y = lerp(start.Y, *target.Y)
	}
	if target.Rotation != nil {
		dst.Rotation = lerp(start.Rotation, *target.Rotation)
	}
	return dst
}

// Animation is a running tween of a Clipper's parameters. The clock origin is the
// invocation time when the scheduler is a Clock, the timestamp of the first tick otherwise.
type Animation struct {
	c        *Clipper
	start    Params
	target   Patch
	duration time.Duration

	began   time.Time
	started bool

	once sync.Once
	done chan struct{}
}

func newAnimation(c *Clipper, start Params, target Patch, d time.Duration) *Animation {
	return &Animation{
		c:        c,
		start:    start,
		target:   target,
		duration: d,
		done:     make(chan struct{}),
	}
}

// Done is closed once the animation completed, got cancelled or superseded.
func (a *Animation) Done() <-chan struct{} {
	return a.done
}

// Duration returns the length of the animation.
func (a *Animation) Duration() time.Duration {
	return a.duration
}

// Cancel stops the animation. Ticks already scheduled become no-ops.
func (a *Animation) Cancel() {
	a.c.mu.Lock()
	if a.c.anim == a {
		a.c.anim = nil
	}
	a.c.mu.Unlock()

	a.finish()
}

func (a *Animation) finish() {
	a.once.Do(func() {
		close(a.done)
	})
}

// tick applies one frame. Stale ticks of a superseded animation are dropped.
func (a *Animation) tick(now time.Time) {
	c := a.c

	c.mu.Lock()
	if c.anim != a {
		c.mu.Unlock()
		a.finish()
		return
	}
	if !a.started {
		a.began = now
		a.started = true
	}
	progress := Progress(now.Sub(a.began), a.duration)
	c.params = blend(c.params, a.start, a.target, EaseOutCubic(progress))
	c.publish()

	finished := progress >= 1
	if finished {
		c.anim = nil
	}
	sched := c.sched
	c.mu.Unlock()

	if finished {
		Logger().Debug("animation finished", "duration", a.duration)
		a.finish()
		return
	}
	sched.RequestTick(a.tick)
}
