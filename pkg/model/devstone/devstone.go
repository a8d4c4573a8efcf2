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

// Package devstone builds the DEVStone synthetic benchmark models. A
// DEVStone model is a recursive tower of coupled layers; one external
// event injected at the root fans out into a predictable number of
// transitions, which makes the models useful both as a benchmark and
// as a kernel correctness check.
package devstone

import (
	"fmt"
	"time"

	"godevs/pkg/modeling"
)

// Config shapes a DEVStone tower. Depth is the number of coupled
// layers, width the number of components per layer. The delays add
// artificial computational load to each transition.
type Config struct {
	Depth    int
	Width    int
	IntDelay time.Duration
	ExtDelay time.Duration
}

func (c Config) validate() error {
	if c.Depth < 1 {
		return fmt.Errorf("devstone depth must be at least 1, got %d", c.Depth)
	}
	if c.Width < 1 {
		return fmt.Errorf("devstone width must be at least 1, got %d", c.Width)
	}
	if c.IntDelay < 0 || c.ExtDelay < 0 {
		return fmt.Errorf("devstone delays must not be negative, got %v/%v", c.IntDelay, c.ExtDelay)
	}
	return nil
}

// DelayedAtomic counts its transitions. External input schedules an
// immediate internal transition, which emits one event and passivates.
type DelayedAtomic struct {
	modeling.AtomicBase
	In  *modeling.Port
	Out *modeling.Port

	intDelay time.Duration
	extDelay time.Duration

	IntCount int
	ExtCount int
}

func NewDelayedAtomic(name string, intDelay, extDelay time.Duration) *DelayedAtomic {
	a := &DelayedAtomic{
		AtomicBase: modeling.NewAtomicBase(name),
		In:         modeling.NewPort("in", modeling.In),
		Out:        modeling.NewPort("out", modeling.Out),
		intDelay:   intDelay,
		extDelay:   extDelay,
	}
	a.In.MarkServable()
	a.AddInPort(a.In)
	a.AddOutPort(a.Out)
	return a
}

func (a *DelayedAtomic) Initialize() {
	a.Passivate()
}

func (a *DelayedAtomic) Lambda() {
	a.Out.Add(0)
}

func (a *DelayedAtomic) DeltInt() {
	a.IntCount++
	if a.intDelay > 0 {
		time.Sleep(a.intDelay)
	}
	a.Passivate()
}

func (a *DelayedAtomic) DeltExt(e float64) {
	a.ExtCount++
	if a.extDelay > 0 {
		time.Sleep(a.extDelay)
	}
	a.Activate()
}

func (a *DelayedAtomic) DeltCon(e float64) {
	a.DeltInt()
	a.DeltExt(0)
}

// NewLI builds a Low-level-of-Interconnections tower: each layer holds
// one nested layer plus width-1 atomics fed from the layer input; only
// the nested layer's output reaches the layer output.
func NewLI(name string, config Config) (*modeling.Coupled, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	return buildTower(name, name, config.Depth, config, false), nil
}

// NewHI builds a High-level-of-Interconnections tower: LI plus a chain
// coupling each atomic's output to the next atomic's input within the
// layer.
func NewHI(name string, config Config) (*modeling.Coupled, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	return buildTower(name, name, config.Depth, config, true), nil
}

func buildTower(name, base string, depth int, config Config, chain bool) *modeling.Coupled {
	c := modeling.NewCoupled(name)
	in := modeling.NewPort("in", modeling.In)
	out := modeling.NewPort("out", modeling.Out)
	c.AddInPort(in)
	c.AddOutPort(out)

	if depth == 1 {
		a := NewDelayedAtomic(fmt.Sprintf("%s_d1_a1", base), config.IntDelay, config.ExtDelay)
		c.AddComponent(a)
		mustCouple(c, in, a.In)
		mustCouple(c, a.Out, out)
		return c
	}

	nested := buildTower(fmt.Sprintf("%s_d%d", base, depth-1), base, depth-1, config, chain)
	c.AddComponent(nested)

	nestedIn, err := nested.InPort("in")
	if err != nil {
		panic(err)
	}
	nestedOut, err := nested.OutPort("out")
	if err != nil {
		panic(err)
	}
	mustCouple(c, in, nestedIn)
	mustCouple(c, nestedOut, out)

	atomics := make([]*DelayedAtomic, 0, config.Width-1)
	for i := 1; i < config.Width; i++ {
		a := NewDelayedAtomic(fmt.Sprintf("%s_d%d_a%d", base, depth, i), config.IntDelay, config.ExtDelay)
		c.AddComponent(a)
		mustCouple(c, in, a.In)
		atomics = append(atomics, a)
	}

	if chain {
		for i := 0; i+1 < len(atomics); i++ {
			mustCouple(c, atomics[i].Out, atomics[i+1].In)
		}
	}

	return c
}

// mustCouple panics on coupling errors; the builder wires only ports
// it just created, so a failure is a bug, not an input error.
func mustCouple(c *modeling.Coupled, from, to *modeling.Port) {
	if err := c.AddCoupling(from, to); err != nil {
		panic(err)
	}
}

// TransitionCounts sums internal and external transition tallies over
// every DelayedAtomic in the tower.
func TransitionCounts(c *modeling.Coupled) (internal, external int) {
	for _, comp := range c.Components() {
		switch m := comp.(type) {
		case *DelayedAtomic:
			internal += m.IntCount
			external += m.ExtCount
		case *modeling.Coupled:
			i, e := TransitionCounts(m)
			internal += i
			external += e
		}
	}
	return internal, external
}
