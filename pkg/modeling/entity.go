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

// Entity is the naming contract shared by every element of a model
// hierarchy. Components, ports and couplings are all entities.
type Entity interface {
	// Name returns the identifying name of this entity.
	Name() string

	// String returns diagnostic text about the current state of this
	// entity.
	String() string
}

// Event is a value carried between ports. Any value can serve as an
// event; models agree on payload types through their couplings.
type Event interface{}
