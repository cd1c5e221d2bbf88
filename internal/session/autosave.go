package session

import (
	"sync"
	"time"
)

const DefaultAutosaveDelay = 2 * time.Second

// Autosaver debounces persistence on the trailing edge: a burst of edits
// collapses into a single save that fires once the edits go quiet for the
// configured delay.
type Autosaver struct {
	mu      sync.Mutex
	delay   time.Duration
	timer   *time.Timer
	pending bool
	closed  bool
	save    func()
}

// NewAutosaver wires a debounce window around save. The callback runs on the
// timer's goroutine and must not call back into the Autosaver.
func NewAutosaver(delay time.Duration, save func()) *Autosaver {
	if delay <= 0 {
		delay = DefaultAutosaveDelay
	}
	return &Autosaver{delay: delay, save: save}
}

// Touch records a change and schedules the save. Each call pushes the
// deadline back by the full delay.
func (a *Autosaver) Touch() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	a.pending = true
	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(a.delay, a.fire)
}

func (a *Autosaver) fire() {
	a.mu.Lock()
	if !a.pending || a.closed {
		a.mu.Unlock()
		return
	}
	a.pending = false
	a.mu.Unlock()

	a.save()
}

// Flush saves immediately and cancels any scheduled save.
func (a *Autosaver) Flush() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	if a.timer != nil {
		a.timer.Stop()
	}
	a.pending = false
	a.mu.Unlock()

	a.save()
}

// Cancel drops any pending save without persisting it.
func (a *Autosaver) Cancel() {
	a.mu.Lock()
	if a.timer != nil {
		a.timer.Stop()
	}
	a.pending = false
	a.mu.Unlock()
}

// Pending reports whether a save is scheduled but has not fired yet.
func (a *Autosaver) Pending() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pending
}

// Close stops the Autosaver for good, saving first if a change is still
// pending. Touch calls after Close are ignored.
func (a *Autosaver) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	if a.timer != nil {
		a.timer.Stop()
	}
	pending := a.pending
	a.pending = false
	a.mu.Unlock()

	if pending {
		a.save()
	}
}
