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

// Package config declares the static, validated endpoint configuration for
// the transports under socket/. A Client or Server value is filled from a
// loader (flags, file, env) and checked with Validate. The servers under
// socket/server take a Server value and validate it in New; the clients
// under socket/client take only an address string.
package config

import (
	"errors"
	"fmt"
	"net"

	libdur "github.com/nabbar/golib/duration"
	libptc "github.com/nabbar/golib/network/protocol"
)

var (
	// ErrInvalidProtocol is returned when Network is empty or is not a
	// TCP/UDP family protocol.
	ErrInvalidProtocol = errors.New("invalid protocol")

	// ErrInvalidAddress is returned when Address is empty, has an empty
	// port, or cannot be resolved for the configured Network.
	ErrInvalidAddress = errors.New("invalid address")

	// ErrInvalidSocketLimit is returned when Server.SocketsLimit is negative.
	ErrInvalidSocketLimit = errors.New("invalid socket limit")
)

// Client describes the parameters needed to dial a single remote endpoint.
type Client struct {
	// Network selects the socket family: tcp, tcp4, tcp6, udp, udp4 or udp6.
	Network libptc.NetworkProtocol

	// Address is a host:port pair accepted by net.Dial for Network.
	Address string

	// Timeout is the dial timeout carried by this configuration; zero
	// stands for no deadline. The clients under socket/client do not read
	// this field.
	Timeout libdur.Duration

	// KeepAlive selects TCP keep-alive probing for the dialed connection;
	// it has no meaning for UDP network families. The clients under
	// socket/client do not read this field.
	KeepAlive bool

	// KeepAlivePeriod is the keep-alive probe interval that goes with
	// KeepAlive; zero stands for the OS default. The clients under
	// socket/client do not read this field.
	KeepAlivePeriod libdur.Duration
}

// Validate checks that the Client configuration is coherent and that
// Address resolves for the configured Network.
func (c Client) Validate() error {
	if !isStreamOrPacket(c.Network) {
		return ErrInvalidProtocol
	}

	if c.Address == "" {
		return ErrInvalidAddress
	}

	return validateAddress(c.Network, c.Address)
}

// Server describes the parameters needed to bind and accept/receive on a
// single local endpoint.
type Server struct {
	// Network selects the socket family: tcp, tcp4, tcp6, udp, udp4 or udp6.
	Network libptc.NetworkProtocol

	// Address is a host:port pair accepted by net.Listen/net.ListenPacket
	// for Network. A missing host binds every local address.
	Address string

	// SocketsLimit caps the number of concurrent sessions the server
	// drives. Zero means unbounded; a negative value fails Validate.
	SocketsLimit int32

	// ConIdleTimeout is the session idle timeout (no read, no write)
	// carried by this configuration; zero stands for no idle check. The
	// servers under socket/server do not read this field and close no
	// connection for idleness.
	ConIdleTimeout libdur.Duration

	// BufferSize is the per-connection read buffer size carried by this
	// configuration; zero stands for socket.DefaultBufferSize. The servers
	// under socket/server do not read this field.
	BufferSize int
}

// Validate checks that the Server configuration is coherent and that
// Address resolves for the configured Network.
func (s Server) Validate() error {
	if !isStreamOrPacket(s.Network) {
		return ErrInvalidProtocol
	}

	if s.SocketsLimit < 0 {
		return ErrInvalidSocketLimit
	}

	return validateAddress(s.Network, s.Address)
}

func isStreamOrPacket(n libptc.NetworkProtocol) bool {
	switch n {
	case libptc.NetworkTCP, libptc.NetworkTCP4, libptc.NetworkTCP6,
		libptc.NetworkUDP, libptc.NetworkUDP4, libptc.NetworkUDP6:
		return true
	default:
		return false
	}
}

func isTCP(n libptc.NetworkProtocol) bool {
	switch n {
	case libptc.NetworkTCP, libptc.NetworkTCP4, libptc.NetworkTCP6:
		return true
	default:
		return false
	}
}

func validateAddress(n libptc.NetworkProtocol, addr string) error {
	if addr == "" {
		return ErrInvalidAddress
	}

	if _, port, err := net.SplitHostPort(addr); err == nil && port == "" {
		return ErrInvalidAddress
	}

	var err error
	if isTCP(n) {
		_, err = net.ResolveTCPAddr(n.Code(), addr)
	} else {
		_, err = net.ResolveUDPAddr(n.Code(), addr)
	}

	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}

	return nil
}
