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

package runtime

import (
	"context"
	"sync"

	"github.com/nabbar/golib/runner/startStop"
	"github.com/sirupsen/logrus"
)

// Hook is a function registered against one of the Runtime lifecycle
// stages.
type Hook func(ctx context.Context) error

// Runtime is the process-wide event loop every socket/server and
// socket/client instance registers against. It carries no work of its own:
// it exists to run the BeforeStart/BeforeStop/AfterStop hook chains in a
// single well-defined order around an otherwise empty start/stop lifecycle.
type Runtime interface {
	// RegisterBeforeStart appends a hook run, in registration order,
	// before the runtime is marked started.
	RegisterBeforeStart(h Hook)

	// RegisterBeforeStop appends a hook run, in LIFO order, by Stop after
	// the running lifecycle has been cancelled and before any AfterStop hook.
	RegisterBeforeStop(h Hook)

	// RegisterAfterStop appends a hook run, in LIFO order, once the
	// runtime has fully stopped. Guaranteed to run at most once per Stop.
	RegisterAfterStop(h Hook)

	// Start runs every BeforeStart hook then marks the runtime started.
	Start(ctx context.Context) error

	// Stop cancels the running lifecycle and waits for it to end, then runs
	// every BeforeStop hook (LIFO) followed by every AfterStop hook (LIFO).
	Stop(ctx context.Context) error

	// IsRunning reports whether the runtime is currently started.
	IsRunning() bool

	// Errors is the registry instances use to report abnormal state.
	Errors() ErrorRegistry
}

type runtime struct {
	mu sync.Mutex

	beforeStart []Hook
	beforeStop  []Hook
	afterStop   []Hook

	errs ErrorRegistry
	sr   startStop.StartStop
}

// New builds a standalone Runtime. Most callers want Instance, the
// process-wide singleton.
func New() Runtime {
	r := &runtime{errs: NewErrorRegistry()}
	r.sr = startStop.New(r.runStart, r.runStop)
	return r
}

var (
	singletonOnce sync.Once
	singleton     Runtime
)

// Instance returns the process-wide Runtime singleton.
func Instance() Runtime {
	singletonOnce.Do(func() {
		singleton = New()
	})
	return singleton
}

func (r *runtime) RegisterBeforeStart(h Hook) {
	if h == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.beforeStart = append(r.beforeStart, h)
}

func (r *runtime) RegisterBeforeStop(h Hook) {
	if h == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.beforeStop = append(r.beforeStop, h)
}

func (r *runtime) RegisterAfterStop(h Hook) {
	if h == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.afterStop = append(r.afterStop, h)
}

func (r *runtime) runStart(ctx context.Context) error {
	r.mu.Lock()
	hooks := append([]Hook{}, r.beforeStart...)
	r.mu.Unlock()

	for _, h := range hooks {
		if err := h(ctx); err != nil {
			logrus.WithError(err).Error("runtime: before-start hook failed")
			r.errs.SetState(Exception)
			return err
		}
	}

	r.errs.SetState(Ok)
	logrus.Debug("runtime started")
	<-ctx.Done()
	return nil
}

func (r *runtime) runStop(ctx context.Context) error {
	r.mu.Lock()
	before := reverse(r.beforeStop)
	after := reverse(r.afterStop)
	r.mu.Unlock()

	var firstErr error
	for _, h := range before {
		if err := h(ctx); err != nil {
			logrus.WithError(err).Warn("runtime: before-stop hook failed")
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	for _, h := range after {
		if err := h(ctx); err != nil {
			logrus.WithError(err).Warn("runtime: after-stop hook failed")
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	logrus.Debug("runtime stopped")
	return firstErr
}

func reverse(in []Hook) []Hook {
	out := make([]Hook, len(in))
	for i, h := range in {
		out[len(in)-1-i] = h
	}
	return out
}

func (r *runtime) Start(ctx context.Context) error {
	return r.sr.Start(ctx)
}

func (r *runtime) Stop(ctx context.Context) error {
	return r.sr.Stop(ctx)
}

func (r *runtime) IsRunning() bool {
	return r.sr.IsRunning()
}

func (r *runtime) Errors() ErrorRegistry {
	return r.errs
}
