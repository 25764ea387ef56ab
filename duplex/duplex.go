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

// Package duplex composes a full-duplex transport out of two independent
// simplex TCP servers: one bound port only ever receives packets, the other
// only ever sends them. FullDuplex is illegal at the session level (see
// package session), so this is where the two directions are actually
// combined, at the server level instead.
package duplex

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/nabbar/golib/framing"
	libsck "github.com/nabbar/golib/socket"
	sckcfg "github.com/nabbar/golib/socket/config"
	scktcp "github.com/nabbar/golib/socket/server/tcp"
	"github.com/nabbar/golib/session"
)

// connCtx adapts a socket.Context's Done/Err pair into a context.Context so
// a Session can be run against it.
type connCtx struct {
	c libsck.Context
}

func (a connCtx) Deadline() (time.Time, bool) { return time.Time{}, false }
func (a connCtx) Done() <-chan struct{}       { return a.c.Done() }
func (a connCtx) Err() error                  { return a.c.Err() }
func (a connCtx) Value(any) any               { return nil }

// ErrNotRunning is returned by Send when no output session is connected yet.
var ErrNotRunning = errors.New("duplex: no output session connected")

// Config describes the two endpoints a DuplexServer binds: one for inbound
// traffic, one for outbound.
type Config struct {
	Input  sckcfg.Server
	Output sckcfg.Server

	// IdleMs bounds how long either side's session may stay idle before
	// being closed. Zero disables the idle check.
	IdleMs int64

	// Framer frames and unframes packets on both sides. A nil Framer falls
	// back to framing.NewDefault().
	Framer framing.PacketFramer
}

// OnPacket is invoked with every packet received on the input side.
type OnPacket func(payload []byte)

// DuplexServer runs the paired input/output accept loops.
type DuplexServer interface {
	// Listen binds both endpoints and serves until ctx is cancelled or
	// Shutdown is called.
	Listen(ctx context.Context) error

	// Shutdown stops both accept loops.
	Shutdown(ctx context.Context) error

	// Send queues payload for delivery on the currently connected output
	// session. It returns ErrNotRunning if no output peer is connected.
	Send(payload []byte) error

	// IsRunning reports whether both endpoints are currently serving.
	IsRunning() bool
}

type duplexServer struct {
	mu sync.Mutex

	cfg      Config
	onPacket OnPacket
	framer   framing.PacketFramer

	in  scktcp.ServerTcp
	out scktcp.ServerTcp

	outSession session.Session
}

// New builds a DuplexServer from cfg. onPacket is invoked for every packet
// received on the input endpoint.
func New(cfg Config, onPacket OnPacket) (DuplexServer, error) {
	framer := cfg.Framer
	if framer == nil {
		framer = framing.NewDefault()
	}

	d := &duplexServer{cfg: cfg, onPacket: onPacket, framer: framer}

	in, err := scktcp.New(nil, d.handleInput, cfg.Input)
	if err != nil {
		return nil, err
	}
	out, err := scktcp.New(nil, d.handleOutput, cfg.Output)
	if err != nil {
		return nil, err
	}

	d.in = in
	d.out = out
	return d, nil
}

func (d *duplexServer) handleInput(c libsck.Context) {
	defer func() { _ = c.Close() }()

	s, err := session.New(c, session.SimplexIn, d.framer, d.cfg.IdleMs, d.onPacket)
	if err != nil {
		return
	}

	_ = s.Run(connCtx{c})
}

func (d *duplexServer) handleOutput(c libsck.Context) {
	defer func() { _ = c.Close() }()

	s, err := session.New(c, session.SimplexOut, d.framer, d.cfg.IdleMs, nil)
	if err != nil {
		return
	}

	d.mu.Lock()
	d.outSession = s
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		if d.outSession == s {
			d.outSession = nil
		}
		d.mu.Unlock()
	}()

	_ = s.Run(connCtx{c})
}

func (d *duplexServer) Send(payload []byte) error {
	d.mu.Lock()
	s := d.outSession
	d.mu.Unlock()

	if s == nil {
		return ErrNotRunning
	}
	return s.Send(payload)
}

func (d *duplexServer) IsRunning() bool {
	return d.in.IsRunning() && d.out.IsRunning()
}

func (d *duplexServer) Listen(ctx context.Context) error {
	errCh := make(chan error, 2)

	go func() { errCh <- d.in.Listen(ctx) }()
	go func() { errCh <- d.out.Listen(ctx) }()

	err := <-errCh
	second := <-errCh
	if err == nil {
		err = second
	}
	return err
}

func (d *duplexServer) Shutdown(ctx context.Context) error {
	err1 := d.in.Shutdown(ctx)
	err2 := d.out.Shutdown(ctx)
	if err1 != nil {
		return err1
	}
	return err2
}
