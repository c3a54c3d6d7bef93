package service

import (
	"sync"
	"time"
)

// SessionTimer is a single cancellable countdown. Arm replaces any pending
// countdown; a cancelled or replaced countdown never fires.
type SessionTimer struct {
	mu       sync.Mutex
	timeout  time.Duration
	onExpire func()
	timer    *time.Timer
	gen      uint64
}

// NewSessionTimer returns an unarmed timer that calls onExpire timeout after
// each Arm.
func NewSessionTimer(timeout time.Duration, onExpire func()) *SessionTimer {
	return &SessionTimer{timeout: timeout, onExpire: onExpire}
}

// Arm cancels any pending countdown and starts a new one. Safe on a nil timer.
func (t *SessionTimer) Arm() {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopLocked()
	t.gen++
	gen := t.gen
	t.timer = time.AfterFunc(t.timeout, func() { t.fire(gen) })
}

// Cancel stops the pending countdown, if any, and reports whether one was pending.
func (t *SessionTimer) Cancel() bool {
	if t == nil {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	pending := t.timer != nil
	t.stopLocked()
	t.gen++
	return pending
}

// Pending reports whether a countdown is armed and has not fired.
func (t *SessionTimer) Pending() bool {
	if t == nil {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.timer != nil
}

func (t *SessionTimer) stopLocked() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

func (t *SessionTimer) fire(gen uint64) {
	t.mu.Lock()
	if gen != t.gen {
		// superseded by Arm or Cancel after the timer started firing
		t.mu.Unlock()
		return
	}
	t.timer = nil
	t.mu.Unlock()

	if t.onExpire != nil {
		t.onExpire()
	}
}
