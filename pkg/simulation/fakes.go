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
	"github.com/stretchr/testify/mock"

	"godevs/pkg/modeling"
)

// MockAtomic asserts which behaviour functions the kernel invokes. It
// passivates on initialize and internal transitions and activates on
// external input, so a simulation over it terminates.
type MockAtomic struct {
	modeling.AtomicBase
	mock.Mock
	In  *modeling.Port
	Out *modeling.Port
}

func NewMockAtomic(name string) *MockAtomic {
	m := &MockAtomic{
		AtomicBase: modeling.NewAtomicBase(name),
		In:         modeling.NewPort("in", modeling.In),
		Out:        modeling.NewPort("out", modeling.Out),
	}
	m.AddInPort(m.In)
	m.AddOutPort(m.Out)
	return m
}

func (m *MockAtomic) Initialize() {
	m.Called()
	m.Passivate()
}

func (m *MockAtomic) Exit() {
	m.Called()
}

func (m *MockAtomic) Lambda() {
	m.Called()
}

func (m *MockAtomic) DeltInt() {
	m.Called()
	m.Passivate()
}

func (m *MockAtomic) DeltExt(e float64) {
	m.Called(e)
	m.Activate()
}

func (m *MockAtomic) DeltCon(e float64) {
	m.Called(e)
	m.Passivate()
}
