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

	. "github.com/onsi/gomega"
)

func validTCPAddresses() []string {
	return []string{
		"localhost:8080",
		"127.0.0.1:8080",
		":8080",
		"0.0.0.0:8080",
		"[::1]:8080",
		"[::]:8080",
	}
}

func invalidTCPAddresses() []string {
	return []string{
		"",
		"localhost",
		"localhost:",
		":99999",
		"invalid:port",
		"[::1]",
	}
}

func validUDPAddresses() []string {
	return []string{
		"localhost:9000",
		"127.0.0.1:9000",
		":9000",
		"0.0.0.0:9000",
		"[::1]:9000",
		"[::]:9000",
	}
}

func invalidUDPAddresses() []string {
	return []string{
		"",
		"localhost",
		"localhost:",
		":99999",
		"invalid:port",
	}
}

func tcpProtocols() []libptc.NetworkProtocol {
	return []libptc.NetworkProtocol{
		libptc.NetworkTCP,
		libptc.NetworkTCP4,
		libptc.NetworkTCP6,
	}
}

func udpProtocols() []libptc.NetworkProtocol {
	return []libptc.NetworkProtocol{
		libptc.NetworkUDP,
		libptc.NetworkUDP4,
		libptc.NetworkUDP6,
	}
}

func expectValidationError(err error, expectedErr error) {
	ExpectWithOffset(1, err).To(HaveOccurred())
	ExpectWithOffset(1, err).To(MatchError(expectedErr))
}

func expectNoValidationError(err error) {
	ExpectWithOffset(1, err).NotTo(HaveOccurred())
}
