package clipper

import (
	"sync"
	"time"
)

// FrameInterval is the tick period of the default scheduler (~60 FPS).
const FrameInterval = 16 * time.Millisecond

// FrameScheduler invokes the requested callbacks once, on the next frame,
// with a monotonic frame timestamp. Callbacks requested during a frame run on the following one.
type FrameScheduler interface {
	RequestTick(fn func(now time.Time))
}

// Clock is implemented by the schedulers able to tell the time of the current frame.
// Animations started on such a scheduler count their time from the invocation,
// the others from their first tick.
type Clock interface {
	Now() time.Time
}

var defaultScheduler = sync.OnceValue(func() FrameScheduler {
	return NewTickerScheduler(FrameInterval)
})

// FrameQueue is a queue of frame callbacks. It is the building block of the
// schedulers: callbacks pushed while a flush runs are kept for the next one.
type FrameQueue struct {
	mu    sync.Mutex
	queue []func(time.Time)
}

// Push queues fn for the next flush.
func (q *FrameQueue) Push(fn func(time.Time)) {
	q.mu.Lock()
	q.queue = append(q.queue, fn)
	q.mu.Unlock()
}

// Flush runs the callbacks queued so far and returns how many ran.
func (q *FrameQueue) Flush(now time.Time) int {
	q.mu.Lock()
	pending := q.queue
	q.queue = nil
	q.mu.Unlock()

	for _, fn := range pending {
		fn(now)
	}
	return len(pending)
}

// Len returns the number of queued callbacks.
func (q *FrameQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.queue)
}

// TickerScheduler fires the queued callbacks from a single goroutine driven by a time.Ticker.
type TickerScheduler struct {
	FrameQueue
	ticker *time.Ticker
	quit   chan struct{}
	once   sync.Once
}

var (
	_ FrameScheduler = (*TickerScheduler)(nil)
	_ Clock          = (*TickerScheduler)(nil)
)

// NewTickerScheduler starts a scheduler ticking every interval.
func NewTickerScheduler(interval time.Duration) *TickerScheduler {
	if interval <= 0 {
		interval = FrameInterval
	}
	s := &TickerScheduler{
		ticker: time.NewTicker(interval),
		quit:   make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *TickerScheduler) run() {
	for {
		select {
		case <-s.quit:
			return
		case now := <-s.ticker.C:
			s.Flush(now)
		}
	}
}

// RequestTick implements FrameScheduler.
func (s *TickerScheduler) RequestTick(fn func(now time.Time)) {
	s.Push(fn)
}

// Now implements Clock.
func (s *TickerScheduler) Now() time.Time {
	return time.Now()
}

// Close stops the ticker. Pending callbacks are dropped.
func (s *TickerScheduler) Close() {
	s.once.Do(func() {
		s.ticker.Stop()
		close(s.quit)
	})
}

// StepScheduler is a scheduler driven by hand over a virtual clock.
// It makes animations deterministic, e.g. when exporting frames.
type StepScheduler struct {
	FrameQueue
	clock    sync.Mutex
	now      time.Time
	interval time.Duration
}

var (
	_ FrameScheduler = (*StepScheduler)(nil)
	_ Clock          = (*StepScheduler)(nil)
)

// NewStepScheduler creates a scheduler whose clock starts at start and
// advances by interval on every Step.
func NewStepScheduler(start time.Time, interval time.Duration) *StepScheduler {
	if interval <= 0 {
		interval = FrameInterval
	}
	return &StepScheduler{now: start, interval: interval}
}

// RequestTick implements FrameScheduler.
func (s *StepScheduler) RequestTick(fn func(now time.Time)) {
	s.Push(fn)
}

// Step fires the pending callbacks at the current virtual time, then advances the clock.
// It returns false if nothing was pending.
func (s *StepScheduler) Step() bool {
	s.clock.Lock()
	now := s.now
	s.now = s.now.Add(s.interval)
	s.clock.Unlock()

	return s.Flush(now) > 0
}

// Fire moves the clock to now and fires the pending callbacks with that timestamp.
func (s *StepScheduler) Fire(now time.Time) int {
	s.clock.Lock()
	s.now = now
	s.clock.Unlock()

	return s.Flush(now)
}

// Now returns the current virtual time. It implements Clock.
func (s *StepScheduler) Now() time.Time {
	s.clock.Lock()
	defer s.clock.Unlock()

	return s.now
}

// Pending returns the number of callbacks waiting for the next frame.
func (s *StepScheduler) Pending() int {
	return s.Len()
}
