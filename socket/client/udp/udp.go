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

// Package udp implements the Connector side of a UDP transport: it resolves
// and "connects" a datagram socket to a single remote peer, and supports the
// one-shot Once request/response pattern.
package udp

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
var ErrAddress = errors.New("socket/client/udp: invalid address")

// ErrNotConnected is returned by Read/Write when no dial has succeeded.
var ErrNotConnected = errors.New("socket/client/udp: not connected")

// ClientUDP drives one outbound UDP socket bound to a single remote peer.
type ClientUDP interface {
	libsck.Client

	// IsConnected reports whether the datagram socket is open.
	IsConnected() bool
}

type clientUDP struct {
	mu sync.Mutex

	address string
	fctErr  libsck.FuncError

	conn net.Conn
}

// New validates address and builds a ClientUDP. No socket is opened until
// Connect or Once is called.
func New(address string) (ClientUDP, error) {
	if address == "" {
		return nil, ErrAddress
	}

	if _, _, err := net.SplitHostPort(address); err != nil {
		return nil, ErrAddress
	}

	return &clientUDP{address: address}, nil
}

func (c *clientUDP) RegisterFuncError(f libsck.FuncError) {
	c.mu.Lock()
	c.fctErr = f
	c.mu.Unlock()
}

func (c *clientUDP) raiseErr(err error) {
	c.mu.Lock()
	f := c.fctErr
	c.mu.Unlock()
	if f != nil && err != nil {
		f(err)
	}
}

func (c *clientUDP) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

func (c *clientUDP) Connect(ctx context.Context) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "udp", c.address)
	if err != nil {
		c.raiseErr(err)
		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	return nil
}

func (c *clientUDP) Close() error {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn == nil {
		return nil
	}
	return conn.Close()
}

func (c *clientUDP) Write(p []byte) (int, error) {
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

func (c *clientUDP) Read(p []byte) (int, error) {
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

// Once dials, sends one datagram built from r, reads one reply datagram into
// resp and closes the socket.
func (c *clientUDP) Once(ctx context.Context, r io.Reader, resp libsck.Response) error {
	if err := c.Connect(ctx); err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	if r != nil {
		payload := &bytes.Buffer{}
		if _, err := io.Copy(payload, r); err != nil {
			return err
		}
		if _, err := c.Write(payload.Bytes()); err != nil {
			return err
		}
	}

	if resp != nil {
		buf := make([]byte, 65507)
		n, err := c.Read(buf)
		if err != nil && err != io.EOF {
			return err
		}
		resp(bytes.NewReader(buf[:n]))
	}

	return nil
}
