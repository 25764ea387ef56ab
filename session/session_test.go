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

package session_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/nabbar/golib/framing"
	"github.com/nabbar/golib/session"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestSession(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Session Suite")
}

var _ = Describe("Session", func() {
	var client, server net.Conn

	BeforeEach(func() {
		client, server = net.Pipe()
	})

	AfterEach(func() {
		_ = client.Close()
		_ = server.Close()
	})

	It("rejects FullDuplex", func() {
		_, err := session.New(server, session.FullDuplex, framing.NewDefault(), 0, nil)
		Expect(err).To(Equal(session.ErrFullDuplexUnsupported))
	})

	It("delivers received packets to the onPacket callback", func() {
		received := make(chan []byte, 1)
		s, err := session.New(server, session.SimplexIn, framing.NewDefault(), 0, func(p []byte) {
			received <- p
		})
		Expect(err).ToNot(HaveOccurred())

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		go func() { _ = s.Run(ctx) }()

		framer := framing.NewDefault()
		_, werr := client.Write(framer.Stuff([]byte("hello")))
		Expect(werr).ToNot(HaveOccurred())

		select {
		case p := <-received:
			Expect(p).To(Equal([]byte("hello")))
		case <-time.After(time.Second):
			Fail("timed out waiting for packet")
		}

		Expect(s.State()).To(Equal(session.RunningReceive))
	})

	It("writes sent payloads framed on the wire", func() {
		s, err := session.New(server, session.SimplexOut, framing.NewDefault(), 0, nil)
		Expect(err).ToNot(HaveOccurred())

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() { _ = s.Run(ctx) }()

		Expect(s.Send([]byte("world"))).ToNot(HaveOccurred())

		buf := make([]byte, 64)
		_ = client.SetReadDeadline(time.Now().Add(time.Second))
		n, rerr := client.Read(buf)
		Expect(rerr).ToNot(HaveOccurred())

		framer := framing.NewDefault()
		Expect(buf[:n]).To(Equal(framer.Stuff([]byte("world"))))
	})

	It("shares one header between consecutive sends instead of doubling it", func() {
		s, err := session.New(server, session.SimplexOut, framing.NewDefault(), 0, nil)
		Expect(err).ToNot(HaveOccurred())

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() { _ = s.Run(ctx) }()

		Expect(s.Send([]byte("one"))).ToNot(HaveOccurred())
		Expect(s.Send([]byte("two"))).ToNot(HaveOccurred())

		framer := framing.NewDefault()
		want := append(framer.Stuff([]byte("one")), framer.Stuff([]byte("two"))[len(framer.Header()):]...)

		buf := make([]byte, 0, len(want))
		readDeadline := time.Now().Add(time.Second)
		for len(buf) < len(want) {
			_ = client.SetReadDeadline(readDeadline)
			chunk := make([]byte, len(want)-len(buf))
			n, rerr := client.Read(chunk)
			Expect(rerr).ToNot(HaveOccurred())
			buf = append(buf, chunk[:n]...)
		}

		Expect(buf).To(Equal(want))
	})

	It("reaches Closed after the context is cancelled", func() {
		s, err := session.New(server, session.SimplexIn, framing.NewDefault(), 0, nil)
		Expect(err).ToNot(HaveOccurred())

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			_ = s.Run(ctx)
			close(done)
		}()

		cancel()

		select {
		case <-done:
		case <-time.After(time.Second):
			Fail("session did not stop after cancellation")
		}
		Expect(s.State()).To(Equal(session.Closed))
	})

	It("reports the configured state label", func() {
		Expect(session.RunningHalfDuplexReceive.String()).To(Equal("running-hd-receive"))
		Expect(session.Idle.String()).To(Equal("idle"))
	})
})
