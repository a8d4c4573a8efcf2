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

package devstone

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/sclevine/spec"
	"github.com/sclevine/spec/report"
	"github.com/stretchr/testify/assert"

	"godevs/pkg/modeling"
	"godevs/pkg/simulation"
)

func countAtomics(c *modeling.Coupled) int {
	count := 0
	for _, comp := range c.Components() {
		if nested, ok := comp.(*modeling.Coupled); ok {
			count += countAtomics(nested)
		} else {
			count++
		}
	}
	return count
}

func countEIC(c *modeling.Coupled) int {
	count := len(c.EIC())
	for _, comp := range c.Components() {
		if nested, ok := comp.(*modeling.Coupled); ok {
			count += countEIC(nested)
		}
	}
	return count
}

func countIC(c *modeling.Coupled) int {
	count := len(c.IC())
	for _, comp := range c.Components() {
		if nested, ok := comp.(*modeling.Coupled); ok {
			count += countIC(nested)
		}
	}
	return count
}

func countEOC(c *modeling.Coupled) int {
	count := len(c.EOC())
	for _, comp := range c.Components() {
		if nested, ok := comp.(*modeling.Coupled); ok {
			count += countEOC(nested)
		}
	}
	return count
}

func randomConfigs(r *rand.Rand, n, maxDepth, maxWidth int) []Config {
	configs := make([]Config, 0, n)
	for i := 0; i < n; i++ {
		configs = append(configs, Config{
			Depth: 1 + r.Intn(maxDepth),
			Width: 1 + r.Intn(maxWidth),
		})
	}
	return configs
}

func runWithOneInjection(t *testing.T, root *modeling.Coupled) {
	coord := simulation.NewCoordinator(root, simulation.CoordinatorConfig{})
	coord.Initialize()

	in, err := root.InPort("in")
	assert.NoError(t, err)

	assert.True(t, coord.Inject(in, 0, 0))
	coord.SimulateIterations(10000)
	coord.Exit()
}

func TestDevstone(t *testing.T) {
	suite := spec.New("DEVStone suite", spec.Report(report.Terminal{}))
	suite("LI", testLI)
	suite("HI", testHI)
	suite("Config", testConfig)

	suite.Run(t)
}

func testLI(t *testing.T, describe spec.G, it spec.S) {
	var r *rand.Rand

	it.Before(func() {
		r = rand.New(rand.NewSource(42))
	})

	describe("structure", func() {
		it("has the expected component and coupling counts", func() {
			for _, config := range randomConfigs(r, 10, 20, 30) {
				d, w := config.Depth, config.Width

				root, err := NewLI(fmt.Sprintf("li_%dx%d", d, w), config)
				assert.NoError(t, err)

				assert.Equal(t, (w-1)*(d-1)+1, countAtomics(root), "atomics for depth %d width %d", d, w)
				assert.Equal(t, w*(d-1)+1, countEIC(root), "eic for depth %d width %d", d, w)
				assert.Equal(t, d, countEOC(root), "eoc for depth %d width %d", d, w)
				assert.Equal(t, 0, countIC(root), "ic for depth %d width %d", d, w)
			}
		})
	})

	describe("behaviour", func() {
		it("fires one internal and one external transition per atomic", func() {
			for _, config := range randomConfigs(r, 10, 8, 8) {
				d, w := config.Depth, config.Width

				root, err := NewLI(fmt.Sprintf("li_%dx%d", d, w), config)
				assert.NoError(t, err)

				runWithOneInjection(t, root)

				internal, external := TransitionCounts(root)
				expected := (w-1)*(d-1) + 1
				assert.Equal(t, expected, internal, "internal for depth %d width %d", d, w)
				assert.Equal(t, expected, external, "external for depth %d width %d", d, w)
			}
		})

		it("behaves identically when flattened", func() {
			config := Config{Depth: 4, Width: 5}
			root, err := NewLI("li_flat", config)
			assert.NoError(t, err)

			coord := simulation.NewCoordinator(root, simulation.CoordinatorConfig{Flatten: true})
			coord.Initialize()

			in, err := root.InPort("in")
			assert.NoError(t, err)
			assert.True(t, coord.Inject(in, 0, 0))
			coord.SimulateIterations(10000)

			internal, external := TransitionCounts(root)
			assert.Equal(t, 13, internal)
			assert.Equal(t, 13, external)
		})
	})
}

func testHI(t *testing.T, describe spec.G, it spec.S) {
	var r *rand.Rand

	it.Before(func() {
		r = rand.New(rand.NewSource(43))
	})

	describe("structure", func() {
		it("has the expected component and coupling counts", func() {
			for _, config := range randomConfigs(r, 10, 20, 30) {
				d, w := config.Depth, config.Width

				root, err := NewHI(fmt.Sprintf("hi_%dx%d", d, w), config)
				assert.NoError(t, err)

				expectedIC := 0
				if w > 2 {
					expectedIC = (w - 2) * (d - 1)
				}

				assert.Equal(t, (w-1)*(d-1)+1, countAtomics(root), "atomics for depth %d width %d", d, w)
				assert.Equal(t, w*(d-1)+1, countEIC(root), "eic for depth %d width %d", d, w)
				assert.Equal(t, d, countEOC(root), "eoc for depth %d width %d", d, w)
				assert.Equal(t, expectedIC, countIC(root), "ic for depth %d width %d", d, w)
			}
		})
	})

	describe("behaviour", func() {
		it("cascades transitions along each layer's chain", func() {
			for _, config := range randomConfigs(r, 10, 6, 6) {
				d, w := config.Depth, config.Width

				root, err := NewHI(fmt.Sprintf("hi_%dx%d", d, w), config)
				assert.NoError(t, err)

				runWithOneInjection(t, root)

				internal, external := TransitionCounts(root)
				expected := (w*(w-1)/2)*(d-1) + 1
				assert.Equal(t, expected, internal, "internal for depth %d width %d", d, w)
				assert.Equal(t, expected, external, "external for depth %d width %d", d, w)
			}
		})

		it("matches sequential results under the parallel coordinator", func() {
			config := Config{Depth: 4, Width: 4}
			root, err := NewHI("hi_parallel", config)
			assert.NoError(t, err)

			coord := simulation.NewParallelCoordinator(root, simulation.CoordinatorConfig{Flatten: true}, 4)
			coord.Initialize()

			in, err := root.InPort("in")
			assert.NoError(t, err)
			assert.True(t, coord.Inject(in, 0, 0))
			coord.SimulateIterations(10000)

			internal, external := TransitionCounts(root)
			expected := (4*3/2)*3 + 1
			assert.Equal(t, expected, internal)
			assert.Equal(t, expected, external)
		})
	})
}

func testConfig(t *testing.T, describe spec.G, it spec.S) {
	describe("validation", func() {
		it("rejects a depth below 1", func() {
			_, err := NewLI("bad", Config{Depth: 0, Width: 3})
			assert.Error(t, err)
		})

		it("rejects a width below 1", func() {
			_, err := NewHI("bad", Config{Depth: 3, Width: 0})
			assert.Error(t, err)
		})

		it("rejects negative delays", func() {
			_, err := NewLI("bad", Config{Depth: 3, Width: 3, IntDelay: -1})
			assert.Error(t, err)
		})
	})
}
