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

package udp

import (
	"context"
	"io"
	"net"
	"sync"

	libsck "github.com/nabbar/golib/socket"
)

// udpContext adapts one datagram source address into a socket.Context: reads
// drain the per-source queue fed by the server's receive loop, writes go out
// through the shared PacketConn addressed back to that source.
type udpContext struct {
	mu sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc

	pc   net.PacketConn
	addr net.Addr

	queue    chan []byte
	pending  []byte
	onClose  func()
	closed   bool
}

func newUDPContext(parent context.Context, pc net.PacketConn, addr net.Addr, onClose func()) *udpContext {
	ctx, cancel := context.WithCancel(parent)
	return &udpContext{
		ctx:     ctx,
		cancel:  cancel,
		pc:      pc,
		addr:    addr,
		queue:   make(chan []byte, 64),
		onClose: onClose,
	}
}

func (c *udpContext) push(p []byte) {
	cp := make([]byte, len(p))
	copy(cp, p)

	select {
	case c.queue <- cp:
	default:
		// drop the datagram rather than block the receive loop
	}
}

func (c *udpContext) Read(p []byte) (int, error) {
	if len(c.pending) > 0 {
		n := copy(p, c.pending)
		c.pending = c.pending[n:]
		return n, nil
	}

	select {
	case dgram, ok := <-c.queue:
		if !ok {
			return 0, io.EOF
		}
		n := copy(p, dgram)
		if n < len(dgram) {
			c.pending = dgram[n:]
		}
		return n, nil
	case <-c.ctx.Done():
		return 0, io.EOF
	}
}

func (c *udpContext) Write(p []byte) (int, error) {
	return c.pc.WriteTo(p, c.addr)
}

func (c *udpContext) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.cancel()
	close(c.queue)
	if c.onClose != nil {
		c.onClose()
	}
	return nil
}

func (c *udpContext) IsConnected() bool {
	select {
	case <-c.ctx.Done():
		return false
	default:
		return true
	}
}

func (c *udpContext) RemoteHost() (string, net.Addr) {
	return c.addr.String(), c.addr
}

func (c *udpContext) LocalHost() (string, net.Addr) {
	a := c.pc.LocalAddr()
	if a == nil {
		return "", nil
	}
	return a.String(), a
}

func (c *udpContext) Done() <-chan struct{} {
	return c.ctx.Done()
}

func (c *udpContext) Err() error {
	return c.ctx.Err()
}

var _ libsck.Context = (*udpContext)(nil)
