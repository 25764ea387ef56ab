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

// Package framing implements the byte-stuffing wire codec used to split a
// continuous stream of bytes into discrete packets. A packet is delimited by
// a two-byte header marker, the concatenation of both rules' From bytes; any
// occurrence of a rule's From byte inside the payload is escaped by
// substitution before the packet is written, and reversed by Unstuff once the
// framed packet has been pulled out of a receive buffer.
package framing

import "github.com/nabbar/golib/ioutils/bytebuffer"

// Rule maps a literal byte that cannot appear verbatim in a framed payload
// to the two-byte sequence that replaces it on the wire.
type Rule struct {
	From byte
	To   [2]byte
}

// DefaultRules is the stuffing table used when a PacketFramer is built
// without an explicit one: 0xAA, the first half of the frame header, is
// escaped to 0xBB 0x00; 0xBB, the second half, is escaped to 0xBB 0x01.
var DefaultRules = [2]Rule{
	{From: 0xAA, To: [2]byte{0xBB, 0x00}},
	{From: 0xBB, To: [2]byte{0xBB, 0x01}},
}

// PacketFramer stuffs outgoing payloads into marker-delimited packets and
// extracts framed packets out of a received byte stream.
type PacketFramer interface {
	// Header returns the two-byte marker that opens and closes every
	// packet: rules[0].From followed by rules[1].From.
	Header() []byte

	// Stuff wraps payload into a complete framed packet: header, escaped
	// payload, header.
	Stuff(payload []byte) []byte

	// Unstuff reverses the byte-stuffing applied by Stuff. It expects the
	// stuffed payload with any header bytes already trimmed off.
	Unstuff(stuffed []byte) []byte

	// HasHeader reports whether buf begins with the frame header.
	HasHeader(buf []byte) bool

	// GetPackage extracts the first complete framed packet found at the
	// front of buf and removes its bytes from buf, except the closing
	// header, which is left in place to double as the next packet's
	// opening header. The returned bytes are the still-stuffed packet
	// Header()||Stuff(payload) without unstuffing — trim Header() off
	// the front and call Unstuff to recover payload. It returns ok=false
	// if buf does not yet hold a complete packet.
	GetPackage(buf bytebuffer.ByteBuffer) (framed []byte, ok bool)
}

type packetFramer struct {
	rules  [2]Rule
	header []byte
}

// New builds a PacketFramer using the given stuffing rules. The header
// marker is rules[0].From followed by rules[1].From.
func New(rules [2]Rule) PacketFramer {
	return &packetFramer{
		rules:  rules,
		header: []byte{rules[0].From, rules[1].From},
	}
}

// NewDefault builds a PacketFramer using DefaultRules.
func NewDefault() PacketFramer {
	return New(DefaultRules)
}

func (p *packetFramer) Header() []byte {
	h := make([]byte, len(p.header))
	copy(h, p.header)
	return h
}

func (p *packetFramer) Stuff(payload []byte) []byte {
	out := make([]byte, 0, 2*len(p.header)+len(payload))
	out = append(out, p.header...)

	for _, b := range payload {
		switch b {
		case p.rules[0].From:
			out = append(out, p.rules[0].To[0], p.rules[0].To[1])
		case p.rules[1].From:
			out = append(out, p.rules[1].To[0], p.rules[1].To[1])
		default:
			out = append(out, b)
		}
	}

	out = append(out, p.header...)
	return out
}

func (p *packetFramer) HasHeader(buf []byte) bool {
	if len(buf) < len(p.header) {
		return false
	}
	for i, b := range p.header {
		if buf[i] != b {
			return false
		}
	}
	return true
}

func (p *packetFramer) GetPackage(buf bytebuffer.ByteBuffer) ([]byte, bool) {
	raw := buf.Bytes()

	if !p.HasHeader(raw) {
		return nil, false
	}

	p2 := indexOf(raw, p.header, len(p.header))
	if p2 < 0 {
		return nil, false
	}

	framed := make([]byte, p2)
	copy(framed, raw[:p2])

	// Erase [0, p2): the closing header starting at p2 is left in place
	// to serve as the next packet's opening header.
	buf.EraseRange(0, p2)

	return framed, true
}

func (p *packetFramer) Unstuff(stuffed []byte) []byte {
	out := make([]byte, 0, len(stuffed))
	escape := p.rules[0].To[0]

	for i := 0; i < len(stuffed); i++ {
		b := stuffed[i]
		if b != escape || i+1 >= len(stuffed) {
			out = append(out, b)
			continue
		}

		next := stuffed[i+1]
		switch next {
		case p.rules[0].To[1]:
			out = append(out, p.rules[0].From)
			i++
		case p.rules[1].To[1]:
			out = append(out, p.rules[1].From)
			i++
		default:
			out = append(out, b)
		}
	}

	return out
}

// indexOf returns the index of the first occurrence of needle in raw at or
// after from, or -1 if none is found.
func indexOf(raw, needle []byte, from int) int {
	if len(needle) == 0 {
		return -1
	}

	last := len(raw) - len(needle)
	for i := from; i <= last; i++ {
		match := true
		for j := range needle {
			if raw[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}

	return -1
}
