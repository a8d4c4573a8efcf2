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

// Component is an Entity that owns input and output ports. Atomic and
// Coupled models are the two kinds of component.
type Component interface {
	Entity
	InPorts() []*Port
	OutPorts() []*Port
	AddInPort(port *Port)
	AddOutPort(port *Port)
	InPort(name string) (*Port, error)
	OutPort(name string) (*Port, error)
	InputEmpty() bool
	Parent() Component
	setParent(parent Component)
}

// component carries the port bookkeeping shared by atomic and coupled
// models. Model types embed it.
type component struct {
	name     string
	parent   Component
	inPorts  []*Port
	outPorts []*Port
}

func newComponent(name string) component {
	return component{
		name:     name,
		inPorts:  make([]*Port, 0),
		outPorts: make([]*Port, 0),
	}
}

func (c *component) Name() string {
	return c.name
}

func (c *component) String() string {
	return fmt.Sprintf("Component{name: %s, in: %d, out: %d}", c.name, len(c.inPorts), len(c.outPorts))
}

func (c *component) InPorts() []*Port {
	return c.inPorts
}

func (c *component) OutPorts() []*Port {
	return c.outPorts
}

func (c *component) AddInPort(port *Port) {
	c.inPorts = append(c.inPorts, port)
}

func (c *component) AddOutPort(port *Port) {
	c.outPorts = append(c.outPorts, port)
}

func (c *component) InPort(name string) (*Port, error) {
	for _, p := range c.inPorts {
		if p.Name() == name {
			return p, nil
		}
	}
	return nil, fmt.Errorf("component '%s' has no input port '%s'", c.name, name)
}

func (c *component) OutPort(name string) (*Port, error) {
	for _, p := range c.outPorts {
		if p.Name() == name {
			return p, nil
		}
	}
	return nil, fmt.Errorf("component '%s' has no output port '%s'", c.name, name)
}

// InputEmpty reports whether every input port is empty.
func (c *component) InputEmpty() bool {
	for _, p := range c.inPorts {
		if !p.Empty() {
			return false
		}
	}
	return true
}

func (c *component) Parent() Component {
	return c.parent
}

func (c *component) setParent(parent Component) {
	c.parent = parent
}
