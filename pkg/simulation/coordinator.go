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

package simulation

import (
	"fmt"

	"go.uber.org/zap"

	"godevs/pkg/modeling"
)

// CoordinatorConfig tunes a root coordinator. The zero value gives a
// sequential, untraced, silent coordinator.
type CoordinatorConfig struct {
	// Flatten collapses the model hierarchy before simulation.
	Flatten bool

	// Tracer receives the simulation trace. Nil discards it.
	Tracer Tracer

	// Logger for kernel debug output. Nil silences it.
	Logger *zap.SugaredLogger
}

// RootCoordinator is the surface shared by the sequential and parallel
// coordinators when driving a whole simulation.
type RootCoordinator interface {
	Initialize()
	Exit()
	Model() *modeling.Coupled
	Clock() *SimulationClock
	TimeLast() float64
	TimeNext() float64
	ServablePorts() map[string]*modeling.Port
	Inject(port *modeling.Port, elapsed float64, values ...modeling.Event) bool
	InjectByName(portName string, elapsed float64, values ...modeling.Event) (bool, error)
	SimulateIterations(iterations int)
	SimulateTime(interval float64)
	SimulateForever()
}

// Coordinator drives a coupled model: it owns one processor per child
// component and advances virtual time to the earliest scheduled
// internal transition among them.
type Coordinator struct {
	model        *modeling.Coupled
	clock        *SimulationClock
	coordinators []*Coordinator
	simulators   []*Simulator
	timeLast     float64
	timeNext     float64
	portsToServe map[string]*modeling.Port
	tracer       Tracer
	logger       *zap.SugaredLogger
	built        bool
}

// NewCoordinator creates the root coordinator for a model. The clock
// starts at virtual time zero and is shared by the whole hierarchy.
func NewCoordinator(model *modeling.Coupled, config CoordinatorConfig) *Coordinator {
	tracer := config.Tracer
	if tracer == nil {
		tracer = NewNopTracer()
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	if config.Flatten {
		model.Flatten()
	}

	return newCoordinator(model, NewSimulationClock(0), tracer, logger)
}

func newCoordinator(model *modeling.Coupled, clock *SimulationClock, tracer Tracer, logger *zap.SugaredLogger) *Coordinator {
	return &Coordinator{
		model:        model,
		clock:        clock,
		coordinators: make([]*Coordinator, 0),
		simulators:   make([]*Simulator, 0),
		portsToServe: make(map[string]*modeling.Port),
		tracer:       tracer,
		logger:       logger,
	}
}

func (c *Coordinator) Model() *modeling.Coupled {
	return c.model
}

func (c *Coordinator) Clock() *SimulationClock {
	return c.clock
}

func (c *Coordinator) TimeLast() float64 {
	return c.timeLast
}

func (c *Coordinator) TimeNext() float64 {
	return c.timeNext
}

// ServablePorts returns the injection registry: every servable input
// port in the hierarchy, keyed "component.port".
func (c *Coordinator) ServablePorts() map[string]*modeling.Port {
	ports := make(map[string]*modeling.Port, len(c.portsToServe))
	for name, port := range c.portsToServe {
		ports[name] = port
	}
	return ports
}

// Initialize builds the processor hierarchy and puts every model into
// its initial state.
func (c *Coordinator) Initialize() {
	c.buildHierarchy()

	for _, proc := range c.processors() {
		proc.Initialize()
	}

	c.timeLast = c.clock.Time
	c.timeNext = c.timeLast + c.TA()
}

func (c *Coordinator) buildHierarchy() {
	if c.built {
		return
	}
	c.built = true

	for _, comp := range c.model.Components() {
		switch m := comp.(type) {
		case *modeling.Coupled:
			child := newCoordinator(m, c.clock, c.tracer, c.logger)
			child.buildHierarchy()
			c.coordinators = append(c.coordinators, child)
			for name, port := range child.portsToServe {
				c.portsToServe[name] = port
			}
		case modeling.Atomic:
			sim := NewSimulator(m, c.clock, c.tracer, c.logger)
			c.simulators = append(c.simulators, sim)
			for _, port := range m.InPorts() {
				if port.IsServable() {
					c.portsToServe[fmt.Sprintf("%s.%s", m.Name(), port.Name())] = port
				}
			}
		}
	}
}

func (c *Coordinator) processors() []Processor {
	procs := make([]Processor, 0, len(c.coordinators)+len(c.simulators))
	for _, coord := range c.coordinators {
		procs = append(procs, coord)
	}
	for _, sim := range c.simulators {
		procs = append(procs, sim)
	}
	return procs
}

func (c *Coordinator) Exit() {
	for _, proc := range c.processors() {
		proc.Exit()
	}
}

// TA is the time remaining until the earliest internal transition in
// the hierarchy.
func (c *Coordinator) TA() float64 {
	if len(c.coordinators) == 0 && len(c.simulators) == 0 {
		return modeling.Infinity
	}

	min := modeling.Infinity
	for _, proc := range c.processors() {
		if tn := proc.TimeNext(); tn < min {
			min = tn
		}
	}
	return min - c.clock.Time
}

func (c *Coordinator) Lambda() {
	for _, proc := range c.processors() {
		proc.Lambda()
	}

	c.propagateOutput()
}

func (c *Coordinator) propagateOutput() {
	for _, coup := range c.model.IC() {
		coup.Propagate()
	}
	for _, coup := range c.model.EOC() {
		coup.Propagate()
	}
}

func (c *Coordinator) Transition() {
	c.propagateInput()

	for _, proc := range c.processors() {
		proc.Transition()
	}

	c.timeLast = c.clock.Time
	c.timeNext = c.timeLast + c.TA()
}

func (c *Coordinator) propagateInput() {
	for _, coup := range c.model.EIC() {
		coup.Propagate()
	}
}

func (c *Coordinator) Clear() {
	for _, proc := range c.processors() {
		proc.Clear()
	}

	for _, port := range c.model.InPorts() {
		port.Clear()
	}
	for _, port := range c.model.OutPorts() {
		port.Clear()
	}
}

// Inject inserts events on a port between cycles, elapsed time units
// after the last transition, and runs one full cycle at that instant.
// The injection is rejected when it would land beyond the next
// scheduled event.
func (c *Coordinator) Inject(port *modeling.Port, elapsed float64, values ...modeling.Event) bool {
	t := c.timeLast + elapsed

	if t > c.timeNext {
		c.logger.Errorw("injection rejected; elapsed time is out of bounds",
			"port", port.Name(), "elapsed", elapsed, "timeNext", c.timeNext)
		return false
	}

	port.Extend(values)
	c.clock.Time = t
	c.Lambda()
	c.Transition()
	c.Clear()
	c.clock.Time = c.timeNext

	return true
}

// InjectByName injects through the servable-port registry.
func (c *Coordinator) InjectByName(portName string, elapsed float64, values ...modeling.Event) (bool, error) {
	port, ok := c.portsToServe[portName]
	if !ok {
		return false, fmt.Errorf("port '%s' not found among servable ports", portName)
	}

	return c.Inject(port, elapsed, values...), nil
}

// SimulateIterations runs up to iterations cycles, stopping early when
// no further events are scheduled.
func (c *Coordinator) SimulateIterations(iterations int) {
	c.clock.Time = c.timeNext

	for count := 0; count < iterations && c.clock.Time < modeling.Infinity; count++ {
		c.cycle()
	}
}

// SimulateTime runs until virtual time has advanced by interval, or no
// further events are scheduled.
func (c *Coordinator) SimulateTime(interval float64) {
	c.clock.Time = c.timeNext
	end := c.clock.Time + interval

	for c.clock.Time < end {
		c.cycle()
	}
}

// SimulateForever runs until no further events are scheduled.
func (c *Coordinator) SimulateForever() {
	c.clock.Time = c.timeNext

	for c.clock.Time < modeling.Infinity {
		c.cycle()
	}
}

func (c *Coordinator) cycle() {
	c.Lambda()
	c.Transition()
	c.Clear()
	c.clock.Time = c.timeNext
}
