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

// Coupled is a component composed of child components wired together by
// three coupling sets:
//
//	EIC: own input  -> child input
//	IC:  child output -> child input
//	EOC: child output -> own output
type Coupled struct {
	component
	components []Component
	eic        []*Coupling
	ic         []*Coupling
	eoc        []*Coupling
}

func NewCoupled(name string) *Coupled {
	return &Coupled{
		component:  newComponent(name),
		components: make([]Component, 0),
		eic:        make([]*Coupling, 0),
		ic:         make([]*Coupling, 0),
		eoc:        make([]*Coupling, 0),
	}
}

func (c *Coupled) String() string {
	return fmt.Sprintf("Coupled{name: %s, components: %d, eic: %d, ic: %d, eoc: %d}",
		c.Name(), len(c.components), len(c.eic), len(c.ic), len(c.eoc))
}

func (c *Coupled) AddComponent(comp Component) {
	comp.setParent(c)
	c.components = append(c.components, comp)
}

func (c *Coupled) Components() []Component {
	return c.components
}

func (c *Coupled) EIC() []*Coupling {
	return c.eic
}

func (c *Coupled) IC() []*Coupling {
	return c.ic
}

func (c *Coupled) EOC() []*Coupling {
	return c.eoc
}

// AddCoupling wires from to to, classifying the coupling as EIC, IC or
// EOC by the ownership of the two ports. Both ports must be in scope:
// the coupled model's own ports or ports of its direct children.
func (c *Coupled) AddCoupling(from *Port, to *Port) error {
	ownsFromIn := c.ownsInPort(from)
	childFromOut := c.childOwningOutPort(from)
	ownsToOut := c.ownsOutPort(to)
	childToIn := c.childOwningInPort(to)

	switch {
	case ownsFromIn && childToIn != nil:
		c.eic = append(c.eic, NewCoupling(from, to))
	case childFromOut != nil && childToIn != nil:
		c.ic = append(c.ic, NewCoupling(from, to))
	case childFromOut != nil && ownsToOut:
		c.eoc = append(c.eoc, NewCoupling(from, to))
	default:
		return fmt.Errorf(
			"coupled model '%s' cannot couple port '%s' to port '%s'; ports must be in scope and direction-compatible",
			c.Name(), from.Name(), to.Name(),
		)
	}

	return nil
}

func (c *Coupled) ownsInPort(p *Port) bool {
	for _, own := range c.InPorts() {
		if own == p {
			return true
		}
	}
	return false
}

func (c *Coupled) ownsOutPort(p *Port) bool {
	for _, own := range c.OutPorts() {
		if own == p {
			return true
		}
	}
	return false
}

func (c *Coupled) childOwningInPort(p *Port) Component {
	for _, comp := range c.components {
		for _, cp := range comp.InPorts() {
			if cp == p {
				return comp
			}
		}
	}
	return nil
}

func (c *Coupled) childOwningOutPort(p *Port) Component {
	for _, comp := range c.components {
		for _, cp := range comp.OutPorts() {
			if cp == p {
				return comp
			}
		}
	}
	return nil
}

// Flatten removes intermediate coupled layers, splicing their atomic
// components into this model and rewiring couplings to direct
// connections. Observable behaviour is unchanged: the same atomics
// remain reachable over the same event routes.
func (c *Coupled) Flatten() {
	for {
		var child *Coupled
		for _, comp := range c.components {
			if cc, ok := comp.(*Coupled); ok {
				child = cc
				break
			}
		}
		if child == nil {
			return
		}

		child.Flatten()
		c.absorb(child)
	}
}

func (c *Coupled) absorb(child *Coupled) {
	remaining := make([]Component, 0, len(c.components)-1+len(child.components))
	for _, comp := range c.components {
		if comp == child {
			continue
		}
		remaining = append(remaining, comp)
	}
	for _, comp := range child.components {
		comp.setParent(c)
		remaining = append(remaining, comp)
	}
	c.components = remaining

	// Bridge couplings that cross the child's border ports.
	eic := make([]*Coupling, 0, len(c.eic))
	for _, coup := range c.eic {
		if child.ownsInPort(coup.To()) {
			for _, inner := range child.eic {
				if inner.From() == coup.To() {
					eic = append(eic, NewCoupling(coup.From(), inner.To()))
				}
			}
		} else {
			eic = append(eic, coup)
		}
	}
	c.eic = eic

	ic := make([]*Coupling, 0, len(c.ic)+len(child.ic))
	for _, coup := range c.ic {
		for _, bridged := range c.bridge(child, coup) {
			ic = append(ic, bridged)
		}
	}
	ic = append(ic, child.ic...)
	c.ic = ic

	eoc := make([]*Coupling, 0, len(c.eoc))
	for _, coup := range c.eoc {
		if child.ownsOutPort(coup.From()) {
			for _, inner := range child.eoc {
				if inner.To() == coup.From() {
					eoc = append(eoc, NewCoupling(inner.From(), coup.To()))
				}
			}
		} else {
			eoc = append(eoc, coup)
		}
	}
	c.eoc = eoc
}

// bridge expands an internal coupling across the child's border. Either
// end, or both, may land on the child being absorbed.
func (c *Coupled) bridge(child *Coupled, coup *Coupling) []*Coupling {
	froms := []*Port{coup.From()}
	if child.ownsOutPort(coup.From()) {
		froms = froms[:0]
		for _, inner := range child.eoc {
			if inner.To() == coup.From() {
				froms = append(froms, inner.From())
			}
		}
	}

	tos := []*Port{coup.To()}
	if child.ownsInPort(coup.To()) {
		tos = tos[:0]
		for _, inner := range child.eic {
			if inner.From() == coup.To() {
				tos = append(tos, inner.To())
			}
		}
	}

	bridged := make([]*Coupling, 0, len(froms)*len(tos))
	for _, f := range froms {
		for _, t := range tos {
			bridged = append(bridged, NewCoupling(f, t))
		}
	}
	return bridged
}
