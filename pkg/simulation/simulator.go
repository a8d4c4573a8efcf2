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
	"go.uber.org/zap"

	"godevs/pkg/modeling"
)

// Processor is one node of the simulation hierarchy: a Simulator drives
// an atomic model, a Coordinator drives a coupled model.
type Processor interface {
	Initialize()
	Exit()
	Lambda()
	Transition()
	Clear()
	TimeLast() float64
	TimeNext() float64
}

// Simulator drives a single atomic model, windowing its lambda and
// transition functions on the shared clock.
type Simulator struct {
	model    modeling.Atomic
	clock    *SimulationClock
	timeLast float64
	timeNext float64
	tracer   Tracer
	logger   *zap.SugaredLogger
}

func NewSimulator(model modeling.Atomic, clock *SimulationClock, tracer Tracer, logger *zap.SugaredLogger) *Simulator {
	return &Simulator{
		model:  model,
		clock:  clock,
		tracer: tracer,
		logger: logger,
	}
}

func (s *Simulator) Model() modeling.Atomic {
	return s.model
}

func (s *Simulator) TimeLast() float64 {
	return s.timeLast
}

func (s *Simulator) TimeNext() float64 {
	return s.timeNext
}

func (s *Simulator) Initialize() {
	s.model.Initialize()
	s.timeLast = s.clock.Time
	s.timeNext = s.timeLast + s.model.TA()
}

func (s *Simulator) Exit() {
	s.model.Exit()
}

// Lambda fires the model's output function when its time advance has
// expired.
func (s *Simulator) Lambda() {
	if s.clock.Time != s.timeNext {
		return
	}

	s.model.Lambda()

	for _, port := range s.model.OutPorts() {
		for _, value := range port.Values() {
			s.tracer.RecordOutput(OutputEvent{
				OccursAt:  s.clock.Time,
				Component: s.model.Name(),
				Port:      port.Name(),
				Value:     value,
			})
		}
	}
}

// Transition applies the internal, external or confluent transition
// depending on pending input and the expiry of the time advance, then
// reschedules the model.
func (s *Simulator) Transition() {
	t := s.clock.Time

	if s.model.InputEmpty() {
		if t != s.timeNext {
			return
		}
		s.model.DeltInt()
		s.tracer.RecordTransition(Transition{OccursAt: t, Component: s.model.Name(), Kind: Internal})
	} else {
		e := t - s.timeLast
		s.model.Elapse(e)

		if t == s.timeNext {
			s.model.DeltCon(e)
			s.tracer.RecordTransition(Transition{OccursAt: t, Component: s.model.Name(), Kind: Confluent})
		} else {
			s.model.DeltExt(e)
			s.tracer.RecordTransition(Transition{OccursAt: t, Component: s.model.Name(), Kind: External})
		}
	}

	s.timeLast = t
	s.timeNext = s.timeLast + s.model.TA()
	s.logger.Debugw("transition", "model", s.model.Name(), "timeLast", s.timeLast, "timeNext", s.timeNext)
}

func (s *Simulator) Clear() {
	for _, port := range s.model.InPorts() {
		port.Clear()
	}
	for _, port := range s.model.OutPorts() {
		port.Clear()
	}
}
