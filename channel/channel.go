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

// Package channel bundles one side (input or output) of a session's data
// path: the accumulating buffer, the fixed-size scratch area used for a
// single socket read/write, and the callback notified when that side
// produces or consumes bytes.
package channel

import "github.com/nabbar/golib/ioutils/bytebuffer"

// DefaultBufferSize is the read/write scratch size used when a channel is
// built without an explicit one.
const DefaultBufferSize = 512

// Func is notified with the bytes a channel just produced (output side) or
// just accumulated (input side).
type Func func(p []byte)

// IoChannel pairs a ByteBuffer with the scratch buffer sized for a single
// socket operation and the callback driving that side of a session.
type IoChannel interface {
	// Buffer is the accumulating byte store for this channel.
	Buffer() bytebuffer.ByteBuffer

	// Scratch returns the fixed-size slice used for a single read/write
	// syscall.
	Scratch() []byte

	// BufferSize returns the configured scratch size.
	BufferSize() int

	// SetCallback installs the function notified on activity.
	SetCallback(f Func)

	// Callback returns the currently installed function, or nil.
	Callback() Func

	// Notify invokes the installed callback, if any, with p.
	Notify(p []byte)
}

type ioChannel struct {
	buf     bytebuffer.ByteBuffer
	scratch []byte
	cb      Func
}

// New builds an IoChannel with the given scratch size. A size <= 0 falls
// back to DefaultBufferSize.
func New(size int) IoChannel {
	if size <= 0 {
		size = DefaultBufferSize
	}
	return &ioChannel{
		buf:     bytebuffer.New(),
		scratch: make([]byte, size),
	}
}

func (c *ioChannel) Buffer() bytebuffer.ByteBuffer {
	return c.buf
}

func (c *ioChannel) Scratch() []byte {
	return c.scratch
}

func (c *ioChannel) BufferSize() int {
	return len(c.scratch)
}

func (c *ioChannel) SetCallback(f Func) {
	c.cb = f
}

func (c *ioChannel) Callback() Func {
	return c.cb
}

func (c *ioChannel) Notify(p []byte) {
	if c.cb != nil {
		c.cb(p)
	}
}
