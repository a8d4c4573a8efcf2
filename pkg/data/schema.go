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

package data

// language=sql
var Schema = `create table if not exists simulation_runs
(
    id                 integer primary key, -- aliases to rowid

    recorded           text        not null,

    model_name         text        not null,
    model_kind         text        not null,
    flattened          integer     not null,
    workers            integer     not null,

    simulated_duration real        not null,
    wall_duration      big integer not null
);

create table if not exists components
(
    id   integer primary key, -- aliases to rowid
    name text not null
);
create unique index if not exists components_names on components (name);

create table if not exists transitions
(
    id                integer primary key, -- aliases to rowid
    occurs_at         real    not null,
    kind              text    not null,

    component         integer not null references components (id),

    simulation_run_id integer not null references simulation_runs (id)
);
create index if not exists transitions_per_run on transitions (simulation_run_id, occurs_at);

create table if not exists port_events
(
    id                integer primary key, -- aliases to rowid
    occurs_at         real    not null,
    port              text    not null,
    value             text    not null,

    component         integer not null references components (id),

    simulation_run_id integer not null references simulation_runs (id)
);
create index if not exists port_events_per_run on port_events (simulation_run_id, occurs_at);
`
