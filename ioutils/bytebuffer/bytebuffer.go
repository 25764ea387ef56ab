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

// Package bytebuffer implements the mutex-protected byte accumulator shared
// by every session: bytes arriving off the wire are appended to it, a
// framer erases the range it has consumed, and it can drain to or fill from
// an io.Reader/io.Writer in bulk.
package bytebuffer

import (
	"io"
	"sync"
)

// ByteBuffer accumulates bytes received from, or pending towards, a
// connection. Every method is safe for concurrent use.
type ByteBuffer interface {
	// Append adds p to the end of the buffer.
	Append(p []byte) int

	// Bytes returns a copy of the buffer's current contents.
	Bytes() []byte

	// Len returns the number of bytes currently buffered.
	Len() int

	// EraseRange removes the half-open range [from, to) from the buffer.
	// It panics if the range is invalid or out of bounds, mirroring
	// slice-bounds panics elsewhere in the standard library.
	EraseRange(from, to int)

	// Reset empties the buffer.
	Reset()

	// DrainToStream writes the entire buffered content to w and empties
	// the buffer on success.
	DrainToStream(w io.Writer) (int, error)

	// FillFromStream reads up to max bytes from r and appends them to the
	// buffer. max <= 0 means read whatever is immediately available up to
	// a single internal read of DefaultReadSize.
	FillFromStream(r io.Reader, max int) (int, error)
}

// DefaultReadSize bounds a single FillFromStream read when max <= 0.
const DefaultReadSize = 32 * 1024

type byteBuffer struct {
	mu  sync.Mutex
	buf []byte
}

// New builds an empty ByteBuffer.
func New() ByteBuffer {
	return &byteBuffer{}
}

func (b *byteBuffer) Append(p []byte) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf = append(b.buf, p...)
	return len(p)
}

func (b *byteBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]byte, len(b.buf))
	copy(out, b.buf)
	return out
}

func (b *byteBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.buf)
}

func (b *byteBuffer) EraseRange(from, to int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if from < 0 || to > len(b.buf) || from > to {
		panic("bytebuffer: erase range out of bounds")
	}

	b.buf = append(b.buf[:from], b.buf[to:]...)
}

func (b *byteBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf = b.buf[:0]
}

func (b *byteBuffer) DrainToStream(w io.Writer) (int, error) {
	b.mu.Lock()
	p := b.buf
	b.buf = nil
	b.mu.Unlock()

	if len(p) == 0 {
		return 0, nil
	}

	n, err := w.Write(p)
	if err != nil {
		b.mu.Lock()
		b.buf = append(p[n:], b.buf...)
		b.mu.Unlock()
	}

	return n, err
}

func (b *byteBuffer) FillFromStream(r io.Reader, max int) (int, error) {
	if max <= 0 {
		max = DefaultReadSize
	}

	tmp := make([]byte, max)
	n, err := r.Read(tmp)

	if n > 0 {
		b.mu.Lock()
		b.buf = append(b.buf, tmp[:n]...)
		b.mu.Unlock()
	}

	return n, err
}
