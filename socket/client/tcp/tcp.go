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

// Package tcp implements the Connector side of a TCP transport: it dials a
// remote endpoint, exposes the resulting connection as an io.ReadWriteCloser
// and supports the one-shot Once request/response pattern.
package tcp

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"sync"

	libsck "github.com/nabbar/golib/socket"
)

// ErrAddress is returned by New when address is empty or malformed.
var ErrAddress = errors.New("socket/client/tcp: invalid address")

// ErrNotConnected is returned by Read and Write when no dial has succeeded.
var ErrNotConnected = errors.New("socket/client/tcp: not connected")

// ClientTCP drives one outbound TCP connection.
type ClientTCP interface {
	libsck.Client

	// IsConnected reports whether a dial has succeeded and the connection
	// has not yet been closed.
	IsConnected() bool
}

type clientTCP struct {
	mu sync.Mutex

	address string
	dialer  net.Dialer

	fctErr libsck.FuncError

	conn net.Conn
}

// New validates address and builds a ClientTCP. No connection is made until
// Connect or Once is called.
func New(address string) (ClientTCP, error) {
	if address == "" {
		return nil, ErrAddress
	}

	if _, _, err := net.SplitHostPort(address); err != nil {
		return nil, ErrAddress
	}

	return &clientTCP{address: address}, nil
}

func (c *clientTCP) RegisterFuncError(f libsck.FuncError) {
	c.mu.Lock()
	c.fctErr = f
	c.mu.Unlock()
}

func (c *clientTCP) raiseErr(err error) {
	c.mu.Lock()
	f := c.fctErr
	c.mu.Unlock()
	if f != nil && err != nil {
		f(err)
	}
}

func (c *clientTCP) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

func (c *clientTCP) Connect(ctx context.Context) error {
	conn, err := c.dialer.DialContext(ctx, "tcp", c.address)
	if err != nil {
		c.raiseErr(err)
		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	return nil
}

func (c *clientTCP) Close() error {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn == nil {
		return nil
	}
	return conn.Close()
}

func (c *clientTCP) Write(p []byte) (int, error) {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	if conn == nil {
		return 0, ErrNotConnected
	}

	n, err := conn.Write(p)
	if err = libsck.ErrorFilter(err); err != nil {
		c.raiseErr(err)
	}
	return n, err
}

func (c *clientTCP) Read(p []byte) (int, error) {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	if conn == nil {
		return 0, ErrNotConnected
	}

	n, err := conn.Read(p)
	if err = libsck.ErrorFilter(err); err != nil {
		c.raiseErr(err)
	}
	return n, err
}

// Once dials, writes the contents of r, reads the reply into resp and
// closes the connection.
func (c *clientTCP) Once(ctx context.Context, r io.Reader, resp libsck.Response) error {
	if err := c.Connect(ctx); err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	if r != nil {
		if _, err := io.Copy(c, r); err != nil {
			return err
		}
	}

	if tc, ok := c.currentConn().(interface{ CloseWrite() error }); ok {
		_ = tc.CloseWrite()
	}

	if resp != nil {
		buf := &bytes.Buffer{}
		if _, err := io.Copy(buf, c); err != nil && err != io.EOF {
			return err
		}
		resp(buf)
	}

	return nil
}

func (c *clientTCP) currentConn() net.Conn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn
}
