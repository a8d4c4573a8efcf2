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

// Coupling routes events from one port to another within a coupled
// model's scope.
type Coupling struct {
	from *Port
	to   *Port
}

func NewCoupling(from *Port, to *Port) *Coupling {
	return &Coupling{
		from: from,
		to:   to,
	}
}

func (c *Coupling) Name() string {
	return fmt.Sprintf("%s->%s", c.from.Name(), c.to.Name())
}

func (c *Coupling) String() string {
	return fmt.Sprintf("Coupling{%s -> %s}", c.from, c.to)
}

func (c *Coupling) From() *Port {
	return c.from
}

func (c *Coupling) To() *Port {
	return c.to
}

// Propagate copies the source port's buffered events to the
// destination port. Source values stay in place until the simulation
// layer clears ports at the end of the cycle.
func (c *Coupling) Propagate() {
	if !c.from.Empty() {
		c.to.Extend(c.from.Values())
	}
}
