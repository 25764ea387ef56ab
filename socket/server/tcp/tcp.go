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

// Package tcp implements the bounded-concurrency TCP accept loop: it binds
// one listener, accepts connections up to the configured SocketsLimit, and
// runs the registered HandlerFunc for each one until Shutdown or context
// cancellation.
package tcp

import (
	"context"
	"errors"
	"net"
	"sync"
	"sync/atomic"

	libptc "github.com/nabbar/golib/network/protocol"
	libsck "github.com/nabbar/golib/socket"
	sckcfg "github.com/nabbar/golib/socket/config"
)

// ErrInvalidAddress is returned by New when the configuration does not
// validate.
var ErrInvalidAddress = errors.New("socket/server/tcp: invalid address")

// ServerTcp accepts and drives TCP connections for one bound endpoint.
type ServerTcp interface {
	libsck.Server

	// IsRunning reports whether the accept loop is currently serving.
	IsRunning() bool

	// IsGone reports whether the listener is closed and no connection is
	// open.
	IsGone() bool

	// OpenConnections returns the number of connections currently being
	// handled.
	OpenConnections() int64
}

type serverTcp struct {
	mu sync.Mutex

	upd libsck.UpdateConn
	hdl libsck.HandlerFunc
	cfg sckcfg.Server

	fctErr libsck.FuncError
	fctInf libsck.FuncInfo

	lis     net.Listener
	running bool
	open    atomic.Int64
	sem     chan struct{}
}

// New validates cfg and builds a ServerTcp. upd, when non-nil, is invoked on
// every accepted net.Conn before the handler runs.
func New(upd libsck.UpdateConn, handler libsck.HandlerFunc, cfg sckcfg.Server) (ServerTcp, error) {
	if err := cfg.Validate(); err != nil {
		return nil, ErrInvalidAddress
	}

	s := &serverTcp{
		upd: upd,
		hdl: handler,
		cfg: cfg,
	}

	if cfg.SocketsLimit > 0 {
		s.sem = make(chan struct{}, cfg.SocketsLimit)
	}

	return s, nil
}

func (s *serverTcp) RegisterFuncError(f libsck.FuncError) {
	s.mu.Lock()
	s.fctErr = f
	s.mu.Unlock()
}

func (s *serverTcp) RegisterFuncInfo(f libsck.FuncInfo) {
	s.mu.Lock()
	s.fctInf = f
	s.mu.Unlock()
}

func (s *serverTcp) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *serverTcp) IsGone() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.running && s.open.Load() == 0
}

func (s *serverTcp) OpenConnections() int64 {
	return s.open.Load()
}

func (s *serverTcp) raiseErr(err error) {
	s.mu.Lock()
	f := s.fctErr
	s.mu.Unlock()
	if f != nil && err != nil {
		f(err)
	}
}

func (s *serverTcp) raiseInfo(local, remote net.Addr, st libsck.ConnState) {
	s.mu.Lock()
	f := s.fctInf
	s.mu.Unlock()
	if f != nil {
		f(local, remote, st)
	}
}

func (s *serverTcp) Listen(ctx context.Context) error {
	netCode := libptc.NetworkTCP.Code()
	if s.cfg.Network != libptc.NetworkEmpty {
		netCode = s.cfg.Network.Code()
	}

	lis, err := net.Listen(netCode, s.cfg.Address)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.lis = lis
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	go func() {
		<-ctx.Done()
		_ = lis.Close()
	}()

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		conn, acceptErr := lis.Accept()
		if acceptErr != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				if libsck.ErrorFilter(acceptErr) == nil {
					return nil
				}
				s.raiseErr(acceptErr)
				return acceptErr
			}
		}

		if s.sem != nil {
			select {
			case s.sem <- struct{}{}:
			case <-ctx.Done():
				_ = conn.Close()
				return nil
			}
		}

		wg.Add(1)
		go func(c net.Conn) {
			defer wg.Done()
			s.serve(ctx, c)
		}(conn)
	}
}

func (s *serverTcp) serve(ctx context.Context, conn net.Conn) {
	s.open.Add(1)
	defer s.open.Add(-1)
	if s.sem != nil {
		defer func() { <-s.sem }()
	}

	if s.upd != nil {
		s.upd(conn)
	}

	s.raiseInfo(conn.LocalAddr(), conn.RemoteAddr(), libsck.ConnectionNew)

	c := newConnContext(ctx, conn)
	defer func() {
		_ = c.Close()
		s.raiseInfo(conn.LocalAddr(), conn.RemoteAddr(), libsck.ConnectionClose)
	}()

	if s.hdl != nil {
		s.raiseInfo(conn.LocalAddr(), conn.RemoteAddr(), libsck.ConnectionHandler)
		s.hdl(c)
	}
}

func (s *serverTcp) Shutdown(_ context.Context) error {
	s.mu.Lock()
	lis := s.lis
	s.mu.Unlock()

	if lis == nil {
		return nil
	}
	return lis.Close()
}
