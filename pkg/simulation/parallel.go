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
	"sync"

	"godevs/pkg/modeling"
)

const defaultWorkers = 8

// ParallelCoordinator runs sibling atomic models concurrently within
// each lambda and transition phase. Phases stay barriered: every
// lambda completes before outputs propagate, every transition
// completes before the clock advances. Results are identical to the
// sequential Coordinator.
//
// Parallelism pays off when atomic transitions are expensive; it works
// best on flattened models, where every atomic is a direct child.
type ParallelCoordinator struct {
	*Coordinator
	workers int
}

func NewParallelCoordinator(model *modeling.Coupled, config CoordinatorConfig, workers int) *ParallelCoordinator {
	if workers <= 0 {
		workers = defaultWorkers
	}

	return &ParallelCoordinator{
		Coordinator: NewCoordinator(model, config),
		workers:     workers,
	}
}

func (pc *ParallelCoordinator) Lambda() {
	for _, coord := range pc.coordinators {
		coord.Lambda()
	}

	pc.eachSimulator(func(sim *Simulator) {
		sim.Lambda()
	})

	pc.propagateOutput()
}

func (pc *ParallelCoordinator) Transition() {
	pc.propagateInput()

	for _, coord := range pc.coordinators {
		coord.Transition()
	}

	pc.eachSimulator(func(sim *Simulator) {
		sim.Transition()
	})

	pc.timeLast = pc.clock.Time
	pc.timeNext = pc.timeLast + pc.TA()
}

// eachSimulator fans work out over a bounded pool of goroutines and
// waits for all of it.
func (pc *ParallelCoordinator) eachSimulator(task func(*Simulator)) {
	var wg sync.WaitGroup
	slots := make(chan struct{}, pc.workers)

	for _, sim := range pc.simulators {
		wg.Add(1)
		slots <- struct{}{}

		go func(s *Simulator) {
			defer wg.Done()
			task(s)
			<-slots
		}(sim)
	}

	wg.Wait()
}

func (pc *ParallelCoordinator) Inject(port *modeling.Port, elapsed float64, values ...modeling.Event) bool {
	t := pc.timeLast + elapsed

	if t > pc.timeNext {
		pc.logger.Errorw("injection rejected; elapsed time is out of bounds",
			"port", port.Name(), "elapsed", elapsed, "timeNext", pc.timeNext)
		return false
	}

	port.Extend(values)
	pc.clock.Time = t
	pc.runCycle()
	return true
}

func (pc *ParallelCoordinator) InjectByName(portName string, elapsed float64, values ...modeling.Event) (bool, error) {
	port, ok := pc.portsToServe[portName]
	if !ok {
		return false, fmt.Errorf("port '%s' not found among servable ports", portName)
	}

	return pc.Inject(port, elapsed, values...), nil
}

func (pc *ParallelCoordinator) SimulateIterations(iterations int) {
	pc.clock.Time = pc.timeNext

	for count := 0; count < iterations && pc.clock.Time < modeling.Infinity; count++ {
		pc.runCycle()
	}
}

func (pc *ParallelCoordinator) SimulateTime(interval float64) {
	pc.clock.Time = pc.timeNext
	end := pc.clock.Time + interval

	for pc.clock.Time < end {
		pc.runCycle()
	}
}

func (pc *ParallelCoordinator) SimulateForever() {
	pc.clock.Time = pc.timeNext

	for pc.clock.Time < modeling.Infinity {
		pc.runCycle()
	}
}

// runCycle is the parallel coordinator's cycle; it must dispatch through
// the overridden Lambda and Transition rather than the embedded ones.
func (pc *ParallelCoordinator) runCycle() {
	pc.Lambda()
	pc.Transition()
	pc.Clear()
	pc.clock.Time = pc.timeNext
}
