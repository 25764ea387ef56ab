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

package tcp

import (
	"context"
	"net"
	"sync"

	libsck "github.com/nabbar/golib/socket"
)

// connContext adapts a net.Conn plus the accept loop's cancellation signal
// into the socket.Context handed to a HandlerFunc.
type connContext struct {
	net.Conn

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	err    error
}

func newConnContext(parent context.Context, conn net.Conn) *connContext {
	ctx, cancel := context.WithCancel(parent)
	c := &connContext{Conn: conn, ctx: ctx, cancel: cancel}

	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	return c
}

func (c *connContext) IsConnected() bool {
	select {
	case <-c.ctx.Done():
		return false
	default:
		return true
	}
}

func (c *connContext) RemoteHost() (string, net.Addr) {
	a := c.Conn.RemoteAddr()
	if a == nil {
		return "", nil
	}
	return a.String(), a
}

func (c *connContext) LocalHost() (string, net.Addr) {
	a := c.Conn.LocalAddr()
	if a == nil {
		return "", nil
	}
	return a.String(), a
}

func (c *connContext) Done() <-chan struct{} {
	return c.ctx.Done()
}

func (c *connContext) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	return c.ctx.Err()
}

func (c *connContext) Read(p []byte) (int, error) {
	n, err := c.Conn.Read(p)
	if err = libsck.ErrorFilter(err); err != nil {
		c.setErr(err)
	}
	return n, err
}

func (c *connContext) Write(p []byte) (int, error) {
	n, err := c.Conn.Write(p)
	if err = libsck.ErrorFilter(err); err != nil {
		c.setErr(err)
	}
	return n, err
}

func (c *connContext) Close() error {
	c.cancel()
	return c.Conn.Close()
}

func (c *connContext) setErr(err error) {
	c.mu.Lock()
	if c.err == nil {
		c.err = err
	}
	c.mu.Unlock()
}
