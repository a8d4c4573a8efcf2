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

import "fmt"

type PortDirection int

const (
	In PortDirection = iota
	Out
)

func (pd PortDirection) String() string {
	if pd == In {
		return "in"
	}
	return "out"
}

// Port is a named, directional event buffer attached to a component.
// Values accumulate during a simulation cycle and are cleared by the
// simulation layer once transitions have consumed them.
type Port struct {
	name      string
	direction PortDirection
	values    []Event
	servable  bool
}

func NewPort(name string, direction PortDirection) *Port {
	return &Port{
		name:      name,
		direction: direction,
		values:    make([]Event, 0),
	}
}

func (p *Port) Name() string {
	return p.name
}

func (p *Port) String() string {
	return fmt.Sprintf("Port{name: %s, direction: %s, values: %d}", p.name, p.direction, len(p.values))
}

func (p *Port) Direction() PortDirection {
	return p.direction
}

// MarkServable flags the port for out-of-band injection. The root
// coordinator registers servable input ports under "component.port"
// keys so that remote callers can address them.
func (p *Port) MarkServable() {
	p.servable = true
}

func (p *Port) IsServable() bool {
	return p.servable
}

func (p *Port) Empty() bool {
	return len(p.values) == 0
}

func (p *Port) Add(value Event) {
	p.values = append(p.values, value)
}

func (p *Port) Extend(values []Event) {
	p.values = append(p.values, values...)
}

// Values returns the buffered events. Callers must not mutate the
// returned slice; it is owned by the port until Clear.
func (p *Port) Values() []Event {
	return p.values
}

func (p *Port) Clear() {
	p.values = p.values[:0]
}
