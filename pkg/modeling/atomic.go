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
	"fmt"
	"math"
)

// Infinity is the time advance of a passivated model. A model whose
// time advance is Infinity never schedules an internal transition.
var Infinity = math.Inf(1)

const (
	PhaseActive  = "active"
	PhasePassive = "passive"
)

// Atomic is a component with DEVS transition behaviour. Implementations
// embed AtomicBase for the sigma/phase state machine and supply the
// five behaviour functions.
type Atomic interface {
	Component

	// Initialize puts the model into its initial phase before the
	// simulation starts.
	Initialize()

	// Exit releases any resources held by the model once the
	// simulation ends.
	Exit()

	// TA returns the time remaining until the next internal
	// transition.
	TA() float64

	// Lambda writes the model's output events to its output ports.
	// It runs immediately before an internal or confluent transition.
	Lambda()

	// DeltInt is the internal transition, fired when the time advance
	// expires with no pending input.
	DeltInt()

	// DeltExt is the external transition, fired when input arrives
	// before the time advance expires. e is the time elapsed since the
	// last transition.
	DeltExt(e float64)

	// DeltCon is the confluent transition, fired when input arrives at
	// the exact instant the time advance expires.
	DeltCon(e float64)

	// Elapse reduces the remaining time advance by e. The simulation
	// layer calls it before an external or confluent transition.
	Elapse(e float64)
}

// AtomicBase carries the sigma/phase state machine shared by atomic
// models. TA is derived from sigma.
type AtomicBase struct {
	component
	phase string
	sigma float64
}

func NewAtomicBase(name string) AtomicBase {
	return AtomicBase{
		component: newComponent(name),
		phase:     PhasePassive,
		sigma:     Infinity,
	}
}

func (a *AtomicBase) String() string {
	return fmt.Sprintf("Atomic{name: %s, phase: %s, sigma: %v}", a.Name(), a.phase, a.sigma)
}

func (a *AtomicBase) Phase() string {
	return a.phase
}

func (a *AtomicBase) Sigma() float64 {
	return a.sigma
}

func (a *AtomicBase) TA() float64 {
	return a.sigma
}

func (a *AtomicBase) Elapse(e float64) {
	a.sigma -= e
}

// HoldIn schedules the next internal transition sigma time units from
// now, in the given phase.
func (a *AtomicBase) HoldIn(phase string, sigma float64) {
	a.phase = phase
	a.sigma = sigma
}

// Activate schedules an immediate internal transition.
func (a *AtomicBase) Activate() {
	a.HoldIn(PhaseActive, 0)
}

// Passivate cancels any scheduled internal transition.
func (a *AtomicBase) Passivate() {
	a.HoldIn(PhasePassive, Infinity)
}

// PassivateIn cancels any scheduled internal transition, keeping the
// given phase.
func (a *AtomicBase) PassivateIn(phase string) {
	a.HoldIn(phase, Infinity)
}

// Exit is a no-op by default; models holding resources override it.
func (a *AtomicBase) Exit() {}
