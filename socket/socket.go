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

// Package socket defines the contracts shared by every transport
// implementation under socket/client and socket/server: the per-connection
// Context handed to handlers, the Server/Client lifecycle interfaces, and the
// small set of types used to describe connection state transitions.
package socket

import (
	"context"
	"io"
	"net"
)

// DefaultBufferSize is the read buffer size that a zero
// socket/config.Server.BufferSize stands for. No package in this module
// allocates a buffer from it.
const DefaultBufferSize = 32 * 1024

// EOL is the default line terminator used by line-oriented handlers.
const EOL = '\n'

// ConnState enumerates the phases a connection goes through, reported to a
// FuncInfo callback for observability.
type ConnState uint8

const (
	ConnectionDial ConnState = iota
	ConnectionNew
	ConnectionRead
	ConnectionCloseRead
	ConnectionHandler
	ConnectionWrite
	ConnectionCloseWrite
	ConnectionClose
)

// String returns the human-readable label of the connection state.
func (c ConnState) String() string {
	switch c {
	case ConnectionDial:
		return "Dial Connection"
	case ConnectionNew:
		return "New Connection"
	case ConnectionRead:
		return "Read Incoming Stream"
	case ConnectionCloseRead:
		return "Close Incoming Stream"
	case ConnectionHandler:
		return "Run HandlerFunc"
	case ConnectionWrite:
		return "Write Outgoing Steam"
	case ConnectionCloseWrite:
		return "Close Outgoing Stream"
	case ConnectionClose:
		return "Close Connection"
	default:
		return "unknown connection state"
	}
}

const errClosedConnection = "use of closed network connection"

// ErrorFilter turns an error whose message is exactly "use of closed network
// connection" into nil. Any other error, including one that carries that
// phrase inside a longer message, is returned unchanged. The errors the net
// package returns after a local Close are of that longer form (for example
// "read tcp a->b: use of closed network connection"), so they are returned
// unchanged too.
func ErrorFilter(err error) error {
	if err == nil {
		return nil
	}

	if err.Error() == errClosedConnection {
		return nil
	}

	return err
}

// Context is handed to a HandlerFunc for the lifetime of one accepted or
// dialed connection. It wraps the raw net.Conn with the cancellation signal
// driven by the owning Server/Client.
type Context interface {
	io.ReadWriteCloser

	// IsConnected reports whether the underlying connection is still open.
	IsConnected() bool

	// RemoteHost returns the textual and typed address of the peer.
	RemoteHost() (string, net.Addr)

	// LocalHost returns the textual and typed address of the local end.
	LocalHost() (string, net.Addr)

	// Done is closed when the connection is being torn down.
	Done() <-chan struct{}

	// Err returns the reason Done was closed, if any.
	Err() error
}

// HandlerFunc processes one connection. It returns when the connection
// should be closed.
type HandlerFunc func(Context)

// FuncError receives errors raised by a Server or Client that have no other
// synchronous way to reach the caller.
type FuncError func(...error)

// FuncInfo is notified of every connection state transition, for logging and
// metrics.
type FuncInfo func(local, remote net.Addr, state ConnState)

// UpdateConn customizes a freshly dialed or accepted net.Conn before it is
// wrapped into a Context, e.g. to set deadlines or socket options.
type UpdateConn func(net.Conn)

// Response consumes the bytes received by Client.Once.
type Response func(io.Reader)

// Server drives the accept loop (TCP) or the receive loop (UDP) for one
// bound endpoint.
type Server interface {
	// RegisterFuncError installs the callback used to report asynchronous
	// errors encountered while serving.
	RegisterFuncError(f FuncError)

	// RegisterFuncInfo installs the callback used to report connection
	// state transitions.
	RegisterFuncInfo(f FuncInfo)

	// Listen binds the endpoint and serves until ctx is cancelled or
	// Shutdown is called.
	Listen(ctx context.Context) error

	// Shutdown closes the bound listener or socket, so Listen stops
	// serving. Connections already open are not closed by it; each ends
	// when its handler returns or when the context given to Listen is
	// cancelled.
	Shutdown(ctx context.Context) error
}

// Client drives a single outbound connection.
type Client interface {
	// RegisterFuncError installs the callback used to report asynchronous
	// errors encountered while connected.
	RegisterFuncError(f FuncError)

	// Connect dials the configured remote endpoint.
	Connect(ctx context.Context) error

	// Close releases the connection.
	Close() error

	// Write sends bytes on the connection.
	Write(p []byte) (int, error)

	// Read receives bytes from the connection.
	Read(p []byte) (int, error)

	// Once dials, writes the contents of r, reads the reply into resp and
	// closes the connection — a one-shot request/response helper.
	Once(ctx context.Context, r io.Reader, resp Response) error
}
