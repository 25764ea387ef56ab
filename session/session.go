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

// Package session drives the per-connection state machine: it pulls bytes
// off a net.Conn into a channel.IoChannel, hands complete packets to a
// framing.PacketFramer, and supervises an idle deadline with timer.DeadlineTimer.
// Every socket/server and socket/client session is one instance of this
// state machine, parameterized by its TransferType.
package session

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/nabbar/golib/channel"
	"github.com/nabbar/golib/framing"
	"github.com/nabbar/golib/timer"
)

// TransferType selects how a Session moves bytes across its connection.
type TransferType uint8

const (
	// SimplexIn only ever receives packets.
	SimplexIn TransferType = iota
	// SimplexOut only ever sends packets.
	SimplexOut
	// HalfDuplexIn receives one packet, then sends one response, and
	// repeats.
	HalfDuplexIn
	// HalfDuplexOut sends one packet, then receives one response, and
	// repeats.
	HalfDuplexOut
	// FullDuplex is illegal at the Session level: independent concurrent
	// read and write loops are composed one level up, by pairing two
	// simplex sessions (see the duplex server).
	FullDuplex
)

// State enumerates the phases of a Session's lifetime.
type State uint8

const (
	Idle State = iota
	RunningReceive
	RunningSend
	RunningHalfDuplexReceive
	RunningHalfDuplexSend
	Closed
)

// String returns a human-readable label for the state.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case RunningReceive:
		return "running-receive"
	case RunningSend:
		return "running-send"
	case RunningHalfDuplexReceive:
		return "running-hd-receive"
	case RunningHalfDuplexSend:
		return "running-hd-send"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// ErrFullDuplexUnsupported is returned by New when asked for FullDuplex: a
// Session never drives two directions concurrently on its own.
var ErrFullDuplexUnsupported = errors.New("session: full duplex is not a valid session transfer type")

// OnPacket is invoked with every packet received on the in-bound side of the
// session.
type OnPacket func(payload []byte)

// Session drives one connection through its configured TransferType.
type Session interface {
	// Run blocks until the connection closes, the context is cancelled, or
	// the idle deadline elapses.
	Run(ctx context.Context) error

	// Send queues a payload to be framed and written on the next send
	// turn. It only applies to SimplexOut, HalfDuplexIn (the response
	// side) and HalfDuplexOut (the request side).
	Send(payload []byte) error

	// State returns the current session state.
	State() State

	// Close tears down the underlying connection.
	Close() error
}

type session struct {
	mu sync.Mutex

	conn     io.ReadWriteCloser
	transfer TransferType
	framer   framing.PacketFramer
	in       channel.IoChannel
	out      channel.IoChannel
	deadline timer.DeadlineTimer
	onPacket OnPacket
	sendCh   chan []byte
	idleMs   int64

	state     State
	wroteOpen bool
}

// New builds a Session for conn. conn only needs to be an
// io.ReadWriteCloser: a net.Conn qualifies directly, as does a
// socket.Context. idleMs arms the idle deadline timer: the connection is
// closed once idleMs milliseconds pass without the deadline being re-armed.
// Every written packet re-arms it; on the receive side, SimplexIn re-arms it
// whenever bytes arrive and the half-duplex types whenever a complete packet
// is received. idleMs <= 0 disables the deadline.
func New(conn io.ReadWriteCloser, transfer TransferType, framer framing.PacketFramer, idleMs int64, onPacket OnPacket) (Session, error) {
	if transfer == FullDuplex {
		return nil, ErrFullDuplexUnsupported
	}

	s := &session{
		conn:     conn,
		transfer: transfer,
		framer:   framer,
		in:       channel.New(0),
		out:      channel.New(0),
		onPacket: onPacket,
		sendCh:   make(chan []byte, 16),
		idleMs:   idleMs,
		state:    Idle,
	}

	if idleMs > 0 {
		s.deadline = timer.New(func() { _ = s.Close() })
		s.deadline.Arm(idleMs)
	}

	return s, nil
}

func (s *session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *session) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

func (s *session) Send(payload []byte) error {
	select {
	case s.sendCh <- payload:
		return nil
	default:
		return errors.New("session: send queue full")
	}
}

func (s *session) Close() error {
	s.setState(Closed)
	if s.deadline != nil {
		s.deadline.Cancel()
	}
	return s.conn.Close()
}

func (s *session) touch() {
	if s.deadline != nil {
		s.deadline.Arm(s.idleMs)
	}
}

func (s *session) Run(ctx context.Context) error {
	switch s.transfer {
	case SimplexIn:
		return s.runReceiveLoop(ctx)
	case SimplexOut:
		return s.runSendLoop(ctx)
	case HalfDuplexIn:
		return s.runHalfDuplex(ctx, true)
	case HalfDuplexOut:
		return s.runHalfDuplex(ctx, false)
	default:
		return ErrFullDuplexUnsupported
	}
}

func (s *session) runReceiveLoop(ctx context.Context) error {
	s.setState(RunningReceive)
	defer s.setState(Closed)

	done := make(chan struct{})
	go func() {
		<-ctx.Done()
		_ = s.conn.Close()
		close(done)
	}()

	for {
		n, err := s.in.Buffer().FillFromStream(s.conn, s.in.BufferSize())
		if n > 0 {
			s.touch()
			for {
				pkt, ok := s.extractPacket()
				if !ok {
					break
				}
				if s.onPacket != nil {
					s.onPacket(pkt)
				}
			}
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			select {
			case <-ctx.Done():
				return nil
			default:
				return err
			}
		}
	}
}

func (s *session) runSendLoop(ctx context.Context) error {
	s.setState(RunningSend)
	defer s.setState(Closed)

	for {
		select {
		case <-ctx.Done():
			return nil
		case payload := <-s.sendCh:
			if err := s.writePacket(payload); err != nil {
				return err
			}
			s.touch()
		}
	}
}

// writePacket frames payload and writes it to conn. Every packet after the
// first on a connection omits its own opening header: the previous packet's
// closing header, already on the wire, doubles as this one's opener, so the
// receiver's GetPackage sees exactly one header between consecutive packets
// instead of two back to back.
func (s *session) writePacket(payload []byte) error {
	framed := s.framer.Stuff(payload)
	if s.wroteOpen {
		framed = framed[len(s.framer.Header()):]
	}
	s.wroteOpen = true

	_, err := s.conn.Write(framed)
	return err
}

// runHalfDuplex alternates a receive phase and a send phase on the same
// connection. When receiveFirst is true (HalfDuplexIn), each cycle starts
// by waiting for one inbound packet before a reply may be sent; otherwise
// (HalfDuplexOut) the cycle starts by waiting for an outbound payload to
// send before listening for the matching reply.
func (s *session) runHalfDuplex(ctx context.Context, receiveFirst bool) error {
	defer s.setState(Closed)

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if receiveFirst {
			s.setState(RunningHalfDuplexReceive)
			pkt, err := s.receiveOne(ctx)
			if err != nil {
				return ignoreEOF(err)
			}
			if s.onPacket != nil {
				s.onPacket(pkt)
			}

			s.setState(RunningHalfDuplexSend)
			select {
			case <-ctx.Done():
				return nil
			case payload := <-s.sendCh:
				if err := s.writePacket(payload); err != nil {
					return err
				}
				s.touch()
			}
		} else {
			s.setState(RunningHalfDuplexSend)
			select {
			case <-ctx.Done():
				return nil
			case payload := <-s.sendCh:
				if err := s.writePacket(payload); err != nil {
					return err
				}
				s.touch()
			}

			s.setState(RunningHalfDuplexReceive)
			pkt, err := s.receiveOne(ctx)
			if err != nil {
				return ignoreEOF(err)
			}
			if s.onPacket != nil {
				s.onPacket(pkt)
			}
		}
	}
}

func (s *session) receiveOne(ctx context.Context) ([]byte, error) {
	for {
		if pkt, ok := s.extractPacket(); ok {
			s.touch()
			return pkt, nil
		}

		n, err := s.in.Buffer().FillFromStream(s.conn, s.in.BufferSize())
		if n == 0 && err != nil {
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
	}
}

// extractPacket pulls one complete framed packet off the receive buffer,
// trims its header, and unstuffs the payload.
func (s *session) extractPacket() ([]byte, bool) {
	framed, ok := s.framer.GetPackage(s.in.Buffer())
	if !ok {
		return nil, false
	}

	h := s.framer.Header()
	return s.framer.Unstuff(framed[len(h):]), true
}

func ignoreEOF(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
