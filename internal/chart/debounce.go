package chart

import "time"

// debouncer keeps at most one pending call. Arming while a call is pending
// does nothing; the pending call picks up whatever state is current when it
// fires.
type debouncer struct {
	sched Scheduler
	delay time.Duration
	timer Timer
	gen   uint64
}

func newDebouncer(sched Scheduler, delay time.Duration) *debouncer {
	return &debouncer{sched: sched, delay: delay}
}

// Arm schedules fn unless a call is already pending.
func (d *debouncer) Arm(fn func()) bool {
	if d.timer != nil {
		return false
	}

	d.gen++
	gen := d.gen
	d.timer = d.sched.AfterFunc(d.delay, func() {
		// A call cancelled after its timer already fired must not run.
		if d.timer == nil || d.gen != gen {
			return
		}
		d.timer = nil
		fn()
	})

	return true
}

// Cancel drops the pending call, if any.
func (d *debouncer) Cancel() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
}

// Pending reports whether a call is scheduled.
func (d *debouncer) Pending() bool {
	return d.timer != nil
}

// LoopScheduler fires timers by posting them onto an event loop, so the
// callbacks never race with the loop's own handlers.
type LoopScheduler struct {
	post func(fn func())
}

// NewLoopScheduler returns a scheduler that hands expired callbacks to post.
func NewLoopScheduler(post func(fn func())) *LoopScheduler {
	return &LoopScheduler{post: post}
}

func (s *LoopScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, func() {
		s.post(fn)
	})
}
