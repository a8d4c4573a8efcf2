/*
 * Copyright (C) 2019-Present Pivotal Software, Inc. All rights reserved.
 *
 * This program and the accompanying materials are made available under the terms
 * of the Apache License, Version 2.0 (the "License”); you may not use this file
 * except in compliance with the License. You may obtain a copy of the License at:
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software distributed
 * under the License is distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR
 * CONDITIONS OF ANY KIND, either express or implied. See the License for the
 * specific language governing permissions and limitations under the License.
 */

package modeling

import (
	"testing"

	"github.com/sclevine/spec"
	"github.com/sclevine/spec/report"
	"github.com/stretchr/testify/assert"
)

func TestPort(t *testing.T) {
	spec.Run(t, "Port spec", testPort, spec.Report(report.Terminal{}))
}

func testPort(t *testing.T, describe spec.G, it spec.S) {
	var subject *Port

	it.Before(func() {
		subject = NewPort("in", In)
		assert.NotNil(t, subject)
	})

	describe("basic Port functionality", func() {
		it("has a name", func() {
			assert.Equal(t, "in", subject.Name())
		})

		it("has a direction", func() {
			assert.Equal(t, In, subject.Direction())
		})

		it("starts empty", func() {
			assert.True(t, subject.Empty())
		})

		it("is not servable by default", func() {
			assert.False(t, subject.IsServable())
		})
	})

	describe("Add()", func() {
		it.Before(func() {
			subject.Add(11)
		})

		it("buffers the event", func() {
			assert.False(t, subject.Empty())
			assert.Equal(t, []Event{11}, subject.Values())
		})
	})

	describe("Extend()", func() {
		it.Before(func() {
			subject.Add(1)
			subject.Extend([]Event{2, 3})
		})

		it("appends after existing events", func() {
			assert.Equal(t, []Event{1, 2, 3}, subject.Values())
		})
	})

	describe("Clear()", func() {
		it.Before(func() {
			subject.Add("payload")
			subject.Clear()
		})

		it("empties the buffer", func() {
			assert.True(t, subject.Empty())
			assert.Len(t, subject.Values(), 0)
		})
	})

	describe("MarkServable()", func() {
		it("flags the port for injection", func() {
			subject.MarkServable()
			assert.True(t, subject.IsServable())
		})
	})
}

func TestCoupling(t *testing.T) {
	spec.Run(t, "Coupling spec", testCoupling, spec.Report(report.Terminal{}))
}

func testCoupling(t *testing.T, describe spec.G, it spec.S) {
	var from, to *Port
	var subject *Coupling

	it.Before(func() {
		from = NewPort("out", Out)
		to = NewPort("in", In)
		subject = NewCoupling(from, to)
	})

	describe("Propagate()", func() {
		it("copies buffered events to the destination", func() {
			from.Add(42)
			subject.Propagate()

			assert.Equal(t, []Event{42}, to.Values())
		})

		it("leaves the source values in place", func() {
			from.Add(42)
			subject.Propagate()

			assert.Equal(t, []Event{42}, from.Values())
		})

		it("does nothing when the source is empty", func() {
			subject.Propagate()
			assert.True(t, to.Empty())
		})
	})
}
