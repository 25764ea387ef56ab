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

// Package ticker runs a function repeatedly at a fixed interval, on top of
// the same start/stop lifecycle as runner/startStop.
package ticker

import (
	"context"
	"errors"
	"sync"
	"time"
)

// minInterval is the smallest tick period accepted; shorter requests are
// clamped to it to avoid a busy loop.
const minInterval = 1 * time.Millisecond

// Func is invoked on every tick. The *time.Ticker is exposed so a callback
// may adjust its own backpressure (e.g. skip a tick if overloaded).
type Func func(ctx context.Context, tck *time.Ticker) error

// Ticker repeats a function at a fixed interval until stopped.
type Ticker interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Restart(ctx context.Context) error
	IsRunning() bool
	Uptime() time.Duration
}

type ticker struct {
	mu sync.Mutex

	interval time.Duration
	fct      Func

	running bool
	cancel  context.CancelFunc
	started time.Time
	done    chan struct{}
}

// New builds a Ticker that invokes fct every interval. A nil fct is
// accepted; each tick is then a no-op.
func New(interval time.Duration, fct Func) Ticker {
	if interval < minInterval {
		interval = minInterval
	}
	return &ticker{
		interval: interval,
		fct:      fct,
	}
}

func (t *ticker) IsRunning() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

func (t *ticker) Uptime() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		return 0
	}
	return time.Since(t.started)
}

func (t *ticker) Start(ctx context.Context) error {
	if ctx == nil {
		return errors.New("ticker: invalid nil context")
	}

	t.mu.Lock()
	if t.running {
		t.mu.Unlock()
		_ = t.Stop(ctx)
		t.mu.Lock()
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	t.cancel = cancel
	t.done = done
	t.started = time.Now()
	t.running = true

	interval := t.interval
	fct := t.fct
	t.mu.Unlock()

	go func() {
		defer close(done)
		defer func() {
			t.mu.Lock()
			t.running = false
			t.mu.Unlock()
		}()

		tck := time.NewTicker(interval)
		defer tck.Stop()

		for {
			select {
			case <-runCtx.Done():
				return
			case <-tck.C:
				if fct == nil {
					continue
				}
				_ = fct(runCtx, tck)
			}
		}
	}()

	return nil
}

func (t *ticker) Stop(ctx context.Context) error {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return nil
	}

	cancel := t.cancel
	done := t.done
	t.mu.Unlock()

	cancel()

	select {
	case <-done:
	case <-ctx.Done():
	}

	return nil
}

func (t *ticker) Restart(ctx context.Context) error {
	_ = t.Stop(ctx)
	return t.Start(ctx)
}
