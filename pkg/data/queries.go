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
 *
 */

package data

// language=sql
var TransitionTallyQuery = `
select kind
     , count(*) as transitions
from transitions
where simulation_run_id = ?
group by kind
order by kind
;
`

// language=sql
var TimelineQuery = `
select t.occurs_at
     , c.name as component
     , t.kind

     , sum(case when t.kind in ('internal', 'confluent') then 1 else 0 end)
       over summation as internal_so_far
     , sum(case when t.kind in ('external', 'confluent') then 1 else 0 end)
       over summation as external_so_far

from transitions t
join components c on c.id = t.component
where t.simulation_run_id = ?
window summation as (order by t.occurs_at asc rows unbounded preceding)
order by t.occurs_at
;
`
