/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package timer implements a one-shot millisecond deadline timer: Arm starts
// (or restarts) the countdown, and the registered callback fires exactly
// once when it elapses, unless Cancel or a new Arm happens first.
package timer

import (
	"sync"
	"time"
)

// Func is invoked once when an armed deadline elapses.
type Func func()

// DeadlineTimer is a single-shot timer re-armable at any point before it
// fires. Re-arming or cancelling a pending deadline prevents its callback
// from running.
type DeadlineTimer interface {
	// Arm (re)starts the countdown for ms milliseconds. Any previously
	// armed, not-yet-fired deadline is cancelled.
	Arm(ms int64)

	// Cancel stops a pending deadline. It is a no-op if nothing is armed
	// or the deadline already fired.
	Cancel()

	// IsArmed reports whether a deadline is currently pending.
	IsArmed() bool

	// Remaining returns the time left before the armed deadline fires, or
	// zero if nothing is armed.
	Remaining() time.Duration
}

type deadlineTimer struct {
	mu sync.Mutex

	fct Func

	armed    bool
	deadline time.Time
	timer    *time.Timer
	gen      uint64
}

// New builds a DeadlineTimer that invokes fct exactly once per armed
// deadline that is allowed to elapse. fct may be nil, in which case the
// deadline still elapses silently.
func New(fct Func) DeadlineTimer {
	return &deadlineTimer{fct: fct}
}

func (d *deadlineTimer) Arm(ms int64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}

	d.gen++
	gen := d.gen
	d.armed = true
	d.deadline = time.Now().Add(time.Duration(ms) * time.Millisecond)

	d.timer = time.AfterFunc(time.Duration(ms)*time.Millisecond, func() {
		d.fire(gen)
	})
}

func (d *deadlineTimer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || !d.armed {
		d.mu.Unlock()
		return
	}
	d.armed = false
	fct := d.fct
	d.mu.Unlock()

	if fct != nil {
		fct()
	}
}

func (d *deadlineTimer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	d.armed = false
}

func (d *deadlineTimer) IsArmed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.armed
}

func (d *deadlineTimer) Remaining() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.armed {
		return 0
	}

	r := time.Until(d.deadline)
	if r < 0 {
		return 0
	}
	return r
}
