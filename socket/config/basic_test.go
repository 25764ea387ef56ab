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

package config_test

import (
	libptc "github.com/nabbar/golib/network/protocol"
	"github.com/nabbar/golib/socket/config"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Client Configuration", func() {
	Context("struct initialization", func() {
		It("should create a zero-value client", func() {
			var c config.Client
			Expect(c.Network).To(Equal(libptc.NetworkProtocol(0)))
			Expect(c.Address).To(BeEmpty())
		})

		It("should create a client with values", func() {
			c := config.Client{
				Network: libptc.NetworkTCP,
				Address: "localhost:8080",
			}
			Expect(c.Network).To(Equal(libptc.NetworkTCP))
			Expect(c.Address).To(Equal("localhost:8080"))
		})
	})

	Context("TCP validation", func() {
		It("should accept every valid TCP address", func() {
			for _, proto := range tcpProtocols() {
				for _, addr := range validTCPAddresses() {
					c := config.Client{Network: proto, Address: addr}
					expectNoValidationError(c.Validate())
				}
			}
		})

		It("should reject every invalid TCP address", func() {
			for _, addr := range invalidTCPAddresses() {
				c := config.Client{Network: libptc.NetworkTCP, Address: addr}
				Expect(c.Validate()).To(HaveOccurred())
			}
		})
	})

	Context("UDP validation", func() {
		It("should accept every valid UDP address", func() {
			for _, proto := range udpProtocols() {
				for _, addr := range validUDPAddresses() {
					c := config.Client{Network: proto, Address: addr}
					expectNoValidationError(c.Validate())
				}
			}
		})

		It("should reject every invalid UDP address", func() {
			for _, addr := range invalidUDPAddresses() {
				c := config.Client{Network: libptc.NetworkUDP, Address: addr}
				Expect(c.Validate()).To(HaveOccurred())
			}
		})
	})

	Context("protocol validation", func() {
		It("should reject an empty protocol", func() {
			c := config.Client{Address: "localhost:8080"}
			expectValidationError(c.Validate(), config.ErrInvalidProtocol)
		})

		It("should reject a unix protocol", func() {
			c := config.Client{Network: libptc.NetworkUnix, Address: "/tmp/x.sock"}
			expectValidationError(c.Validate(), config.ErrInvalidProtocol)
		})
	})
})

var _ = Describe("Server Configuration", func() {
	Context("struct initialization", func() {
		It("should create a zero-value server", func() {
			var s config.Server
			Expect(s.Network).To(Equal(libptc.NetworkProtocol(0)))
			Expect(s.SocketsLimit).To(Equal(int32(0)))
		})
	})

	Context("address validation", func() {
		It("should accept a wildcard bind address", func() {
			s := config.Server{Network: libptc.NetworkTCP, Address: ":8080"}
			expectNoValidationError(s.Validate())
		})

		It("should reject an empty address", func() {
			s := config.Server{Network: libptc.NetworkTCP, Address: ""}
			expectValidationError(s.Validate(), config.ErrInvalidAddress)
		})
	})

	Context("socket limit validation", func() {
		It("should accept a zero limit as unbounded", func() {
			s := config.Server{Network: libptc.NetworkTCP, Address: ":8080", SocketsLimit: 0}
			expectNoValidationError(s.Validate())
		})

		It("should accept a positive limit", func() {
			s := config.Server{Network: libptc.NetworkTCP, Address: ":8080", SocketsLimit: 10}
			expectNoValidationError(s.Validate())
		})

		It("should reject a negative limit", func() {
			s := config.Server{Network: libptc.NetworkTCP, Address: ":8080", SocketsLimit: -1}
			expectValidationError(s.Validate(), config.ErrInvalidSocketLimit)
		})
	})
})
