/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
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

// Package startStop provides a minimal, reusable start/stop/restart
// lifecycle around a pair of user functions. The runtime event loop of this
// module is built on it.
package startStop

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Func is the shape of both the start and the stop function. The start
// function is expected to block until ctx is cancelled or the work is done;
// the stop function performs the actual teardown and should return quickly.
type Func func(ctx context.Context) error

// StartStop drives one start/stop lifecycle instance. A single instance may
// be started, stopped and restarted any number of times; each Start call
// begins a new generation that invalidates the previous one.
type StartStop interface {
	// Start launches the start function in a new goroutine. If the
	// instance is already running, the current run is stopped first. Start
	// itself never blocks on the start function's completion.
	Start(ctx context.Context) error

	// Stop cancels the running generation and waits for the stop function
	// to run. Once a Stop has returned, further calls return nil without
	// invoking the user stop function; callers that arrive concurrently
	// while the generation is still running each invoke it.
	Stop(ctx context.Context) error

	// Restart stops then starts the instance.
	Restart(ctx context.Context) error

	// IsRunning reports whether a generation is currently active.
	IsRunning() bool

	// Uptime returns how long the current generation has been running, or
	// zero if not running.
	Uptime() time.Duration

	// ErrorsLast returns the most recent error raised by either function,
	// reset at the beginning of every Start.
	ErrorsLast() error

	// ErrorsList returns every error raised since the beginning of the
	// current generation.
	ErrorsList() []error
}

type startStop struct {
	mu sync.Mutex

	fctStart Func
	fctStop  Func

	running bool
	cancel  context.CancelFunc
	started time.Time
	done    chan struct{}

	errMu sync.Mutex
	errs  []error
}

// New builds a StartStop instance around the given start and stop
// functions. Either may be nil: invoking the instance will then record an
// "invalid start/stop function" error instead of panicking.
func New(start, stop Func) StartStop {
	return &startStop{
		fctStart: start,
		fctStop:  stop,
	}
}

func (s *startStop) pushError(err error) {
	if err == nil {
		return
	}
	s.errMu.Lock()
	defer s.errMu.Unlock()
	s.errs = append(s.errs, err)
}

func (s *startStop) resetErrors() {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	s.errs = nil
}

func (s *startStop) ErrorsLast() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	if len(s.errs) == 0 {
		return nil
	}
	return s.errs[len(s.errs)-1]
}

func (s *startStop) ErrorsList() []error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	out := make([]error, len(s.errs))
	copy(out, s.errs)
	return out
}

func (s *startStop) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *startStop) Uptime() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return 0
	}
	return time.Since(s.started)
}

func (s *startStop) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		_ = s.Stop(ctx)
		s.mu.Lock()
	}

	s.resetErrors()

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	s.cancel = cancel
	s.done = done
	s.started = time.Now()
	s.running = true

	start := s.fctStart
	s.mu.Unlock()

	go func() {
		defer close(done)
		defer func() {
			if r := recover(); r != nil {
				s.pushError(fmt.Errorf("panic in start function: %v", r))
			}
			s.mu.Lock()
			s.running = false
			s.mu.Unlock()
		}()

		if start == nil {
			s.pushError(fmt.Errorf("invalid start function"))
			<-runCtx.Done()
			return
		}

		if err := start(runCtx); err != nil {
			s.pushError(err)
		}
	}()

	return nil
}

func (s *startStop) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}

	cancel := s.cancel
	done := s.done
	stop := s.fctStop
	s.mu.Unlock()

	cancel()

	select {
	case <-done:
	case <-ctx.Done():
	}

	func() {
		defer func() {
			if r := recover(); r != nil {
				s.pushError(fmt.Errorf("panic in stop function: %v", r))
			}
		}()

		if stop == nil {
			s.pushError(fmt.Errorf("invalid stop function"))
			return
		}

		if err := stop(ctx); err != nil {
			s.pushError(err)
		}
	}()

	return nil
}

func (s *startStop) Restart(ctx context.Context) error {
	if err := s.Stop(ctx); err != nil {
		return err
	}
	return s.Start(ctx)
}
