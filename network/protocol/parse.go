/***********************************************************************************************************************
 *
 *   MIT License
 *
 *   Copyright (c) 2022 Nicolas JUHEL
 *
 *   Permission is hereby granted, free of charge, to any person obtaining a copy
 *   of this software and associated documentation files (the "Software"), to deal
 *   in the Software without restriction, including without limitation the rights
 *   to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 *   copies of the Software, and to permit persons to whom the Software is
 *   furnished to do so, subject to the following conditions:
 *
 *   The above copyright notice and this permission notice shall be included in all
 *   copies or substantial portions of the Software.
 *
 *   THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 *   IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 *   FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 *   AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 *   LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 *   OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 *   SOFTWARE.
 *
 *
 **********************************************************************************************************************/

package protocol

import (
	"math"
	"strings"
)

var networkValues = map[string]NetworkProtocol{
	"unix":     NetworkUnix,
	"tcp":      NetworkTCP,
	"tcp4":     NetworkTCP4,
	"tcp6":     NetworkTCP6,
	"udp":      NetworkUDP,
	"udp4":     NetworkUDP4,
	"udp6":     NetworkUDP6,
	"ip":       NetworkIP,
	"ip4":      NetworkIP4,
	"ip6":      NetworkIP6,
	"unixgram": NetworkUnixGram,
}

func cleanToken(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "`")
	s = strings.Trim(s, `"`)
	s = strings.Trim(s, "'")
	return s
}

// Parse returns the NetworkProtocol matching s, case-insensitively and
// tolerant of surrounding whitespace/quotes. Unknown input returns NetworkEmpty.
func Parse(s string) NetworkProtocol {
	return networkValues[strings.ToLower(cleanToken(s))]
}

// ParseBytes is the []byte counterpart of Parse.
func ParseBytes(b []byte) NetworkProtocol {
	return Parse(string(b))
}

// ParseInt64 returns the NetworkProtocol whose ordinal equals i, or
// NetworkEmpty if i is out of the valid uint8 protocol range.
func ParseInt64(i int64) NetworkProtocol {
	if i <= 0 || i > math.MaxUint8 {
		return NetworkEmpty
	}

	n := NetworkProtocol(i)
	if n.String() == "" {
		return NetworkEmpty
	}

	return n
}
