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
	"sync"

	"godevs/pkg/modeling"
)

type TransitionKind string

const (
	Internal  TransitionKind = "internal"
	External  TransitionKind = "external"
	Confluent TransitionKind = "confluent"
)

// Transition records one state transition of an atomic model.
type Transition struct {
	OccursAt  float64
	Component string
	Kind      TransitionKind
}

// OutputEvent records one event written to an output port during a
// lambda phase.
type OutputEvent struct {
	OccursAt  float64
	Component string
	Port      string
	Value     modeling.Event
}

// Tracer receives the simulation trace as it happens. Implementations
// must be safe for concurrent use; the parallel coordinator fires
// transitions from multiple goroutines.
type Tracer interface {
	RecordTransition(t Transition)
	RecordOutput(o OutputEvent)
}

// TraceCollector accumulates the trace in memory for reporting and
// storage.
type TraceCollector struct {
	mu          sync.Mutex
	transitions []Transition
	outputs     []OutputEvent
}

func NewTraceCollector() *TraceCollector {
	return &TraceCollector{
		transitions: make([]Transition, 0),
		outputs:     make([]OutputEvent, 0),
	}
}

func (tc *TraceCollector) RecordTransition(t Transition) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.transitions = append(tc.transitions, t)
}

func (tc *TraceCollector) RecordOutput(o OutputEvent) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.outputs = append(tc.outputs, o)
}

func (tc *TraceCollector) Transitions() []Transition {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return append([]Transition(nil), tc.transitions...)
}

func (tc *TraceCollector) Outputs() []OutputEvent {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return append([]OutputEvent(nil), tc.outputs...)
}

// Tally counts transitions by kind.
func (tc *TraceCollector) Tally() map[TransitionKind]int {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	tally := make(map[TransitionKind]int, 3)
	for _, t := range tc.transitions {
		tally[t.Kind]++
	}
	return tally
}

type nopTracer struct{}

func (nopTracer) RecordTransition(Transition) {}
func (nopTracer) RecordOutput(OutputEvent)    {}

// NewNopTracer returns a tracer that discards everything.
func NewNopTracer() Tracer {
	return nopTracer{}
}
