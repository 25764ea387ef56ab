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

// Package runtime holds the process-wide transport state machine: the
// current RuntimeState, the registry of callbacks notified on transition,
// and the singleton event loop that every socket/server and socket/client
// instance registers its start/stop hooks with.
package runtime

// RuntimeState enumerates the terminal and transient states a running
// transport instance can be in.
type RuntimeState uint8

const (
	Unknown RuntimeState = iota
	Ok
	Exception
	ErrPortCount
	ErrChannelId
	ErrSocketCount
	ErrConnection
)

// String returns the human-readable label of the state.
func (r RuntimeState) String() string {
	switch r {
	case Ok:
		return "ok"
	case Exception:
		return "exception"
	case ErrPortCount:
		return "error: invalid port count"
	case ErrChannelId:
		return "error: invalid channel id"
	case ErrSocketCount:
		return "error: socket count exceeded"
	case ErrConnection:
		return "error: connection error"
	default:
		return "unknown"
	}
}
