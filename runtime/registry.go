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
	"sync"

	"github.com/sirupsen/logrus"
)

// ErrorRegistry tracks the current RuntimeState and dispatches registered
// callbacks whenever the state transitions to the code they are registered
// for. It is the sole place a transport component reports an abnormal
// condition.
type ErrorRegistry interface {
	// State returns the current RuntimeState.
	State() RuntimeState

	// SetState transitions to the given state. If it differs from the
	// previous state, every callback registered for it is invoked with the
	// state.
	SetState(state RuntimeState)

	// RegisterCallback adds a callback invoked every time SetState moves
	// into the given state.
	RegisterCallback(state RuntimeState, cb func(RuntimeState))
}

type errorRegistry struct {
	mu    sync.Mutex
	state RuntimeState
	cbs   map[RuntimeState][]func(RuntimeState)
	log   *logrus.Entry
}

// NewErrorRegistry builds an ErrorRegistry starting in the Unknown state.
func NewErrorRegistry() ErrorRegistry {
	return &errorRegistry{
		state: Unknown,
		cbs:   make(map[RuntimeState][]func(RuntimeState)),
		log:   logrus.WithField("component", "runtime.errorRegistry"),
	}
}

func (e *errorRegistry) State() RuntimeState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *errorRegistry) SetState(state RuntimeState) {
	e.mu.Lock()
	if e.state == state {
		e.mu.Unlock()
		return
	}
	e.state = state
	cbs := append([]func(RuntimeState){}, e.cbs[state]...)
	e.mu.Unlock()

	if state == Exception {
		e.log.WithField("state", state.String()).Warn("runtime entered exception state")
	} else {
		e.log.WithField("state", state.String()).Debug("runtime state transition")
	}

	for _, cb := range cbs {
		cb(state)
	}
}

func (e *errorRegistry) RegisterCallback(state RuntimeState, cb func(RuntimeState)) {
	if cb == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cbs[state] = append(e.cbs[state], cb)
}
