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

// Package udp implements the single-socket UDP server: one bound
// net.PacketConn receives every datagram, and each distinct source address
// gets its own socket.Context and HandlerFunc goroutine for the lifetime of
// the bind cycle.
package udp

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
var ErrInvalidAddress = errors.New("socket/server/udp: invalid address")

// MaxDatagramSize bounds a single UDP datagram read.
const MaxDatagramSize = 65507

// ServerUdp receives datagrams on one bound socket and dispatches each
// distinct source address to its own HandlerFunc.
type ServerUdp interface {
	libsck.Server

	// IsRunning reports whether the receive loop is currently serving.
	IsRunning() bool

	// IsGone reports whether the socket is closed and no source session
	// remains open.
	IsGone() bool

	// OpenConnections returns the number of source addresses currently
	// tracked.
	OpenConnections() int64
}

type serverUdp struct {
	mu sync.Mutex

	upd libsck.UpdateConn
	hdl libsck.HandlerFunc
	cfg sckcfg.Server

	fctErr libsck.FuncError
	fctInf libsck.FuncInfo

	pc      net.PacketConn
	running bool
	open    atomic.Int64

	sessions map[string]*udpContext
}

// New validates cfg and builds a ServerUdp. upd, when non-nil, is invoked
// with the bound socket each time a datagram arrives from a new source
// address.
func New(upd libsck.UpdateConn, handler libsck.HandlerFunc, cfg sckcfg.Server) (ServerUdp, error) {
	if err := cfg.Validate(); err != nil {
		return nil, ErrInvalidAddress
	}

	return &serverUdp{
		upd:      upd,
		hdl:      handler,
		cfg:      cfg,
		sessions: make(map[string]*udpContext),
	}, nil
}

func (s *serverUdp) RegisterFuncError(f libsck.FuncError) {
	s.mu.Lock()
	s.fctErr = f
	s.mu.Unlock()
}

func (s *serverUdp) RegisterFuncInfo(f libsck.FuncInfo) {
	s.mu.Lock()
	s.fctInf = f
	s.mu.Unlock()
}

func (s *serverUdp) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *serverUdp) IsGone() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.running && s.open.Load() == 0
}

func (s *serverUdp) OpenConnections() int64 {
	return s.open.Load()
}

func (s *serverUdp) raiseErr(err error) {
	s.mu.Lock()
	f := s.fctErr
	s.mu.Unlock()
	if f != nil && err != nil {
		f(err)
	}
}

func (s *serverUdp) raiseInfo(local, remote net.Addr, st libsck.ConnState) {
	s.mu.Lock()
	f := s.fctInf
	s.mu.Unlock()
	if f != nil {
		f(local, remote, st)
	}
}

func (s *serverUdp) Listen(ctx context.Context) error {
	netCode := libptc.NetworkUDP.Code()
	if s.cfg.Network != libptc.NetworkEmpty {
		netCode = s.cfg.Network.Code()
	}

	pc, err := net.ListenPacket(netCode, s.cfg.Address)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.pc = pc
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	go func() {
		<-ctx.Done()
		_ = pc.Close()
	}()

	buf := make([]byte, MaxDatagramSize)
	for {
		n, addr, rerr := pc.ReadFrom(buf)
		if n > 0 {
			s.dispatch(ctx, pc, addr, buf[:n])
		}

		if rerr != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				if libsck.ErrorFilter(rerr) == nil {
					return nil
				}
				s.raiseErr(rerr)
				return rerr
			}
		}
	}
}

func (s *serverUdp) dispatch(ctx context.Context, pc net.PacketConn, addr net.Addr, payload []byte) {
	key := addr.String()

	s.mu.Lock()
	c, ok := s.sessions[key]
	if !ok {
		c = newUDPContext(ctx, pc, addr, func() {
			s.mu.Lock()
			delete(s.sessions, key)
			s.mu.Unlock()
			s.open.Add(-1)
		})
		s.sessions[key] = c
		s.mu.Unlock()

		s.open.Add(1)
		if uc, ok := pc.(net.Conn); ok && s.upd != nil {
			s.upd(uc)
		}
		s.raiseInfo(pc.LocalAddr(), addr, libsck.ConnectionNew)

		go func() {
			if s.hdl != nil {
				s.raiseInfo(pc.LocalAddr(), addr, libsck.ConnectionHandler)
				s.hdl(c)
			}
			_ = c.Close()
			s.raiseInfo(pc.LocalAddr(), addr, libsck.ConnectionClose)
		}()
	} else {
		s.mu.Unlock()
	}

	c.push(payload)
}

func (s *serverUdp) Shutdown(_ context.Context) error {
	s.mu.Lock()
	pc := s.pc
	s.mu.Unlock()

	if pc == nil {
		return nil
	}
	return pc.Close()
}
