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

package timer_test

import (
	"sync/atomic"
	"time"

	"github.com/nabbar/golib/timer"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("DeadlineTimer", func() {
	It("fires once after the armed delay", func() {
		var fired atomic.Uint32
		tmr := timer.New(func() { fired.Add(1) })

		tmr.Arm(20)
		Expect(tmr.IsArmed()).To(BeTrue())

		Eventually(func() uint32 { return fired.Load() }, time.Second).Should(Equal(uint32(1)))
		Expect(tmr.IsArmed()).To(BeFalse())
	})

	It("does not fire once cancelled", func() {
		var fired atomic.Uint32
		tmr := timer.New(func() { fired.Add(1) })

		tmr.Arm(30)
		tmr.Cancel()

		Consistently(func() uint32 { return fired.Load() }, 60*time.Millisecond, 10*time.Millisecond).Should(Equal(uint32(0)))
		Expect(tmr.IsArmed()).To(BeFalse())
	})

	It("re-arming replaces the pending deadline", func() {
		var fired atomic.Uint32
		tmr := timer.New(func() { fired.Add(1) })

		tmr.Arm(15)
		tmr.Arm(200)

		Consistently(func() uint32 { return fired.Load() }, 50*time.Millisecond, 10*time.Millisecond).Should(Equal(uint32(0)))
		tmr.Cancel()
	})

	It("reports a decreasing remaining time while armed", func() {
		tmr := timer.New(nil)
		tmr.Arm(200)

		first := tmr.Remaining()
		time.Sleep(20 * time.Millisecond)
		second := tmr.Remaining()

		Expect(first).To(BeNumerically(">", 0))
		Expect(second).To(BeNumerically("<", first))
		tmr.Cancel()
	})

	It("reports zero remaining time when not armed", func() {
		tmr := timer.New(nil)
		Expect(tmr.Remaining()).To(Equal(time.Duration(0)))
	})
})
