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

import (
	"fmt"
	"time"

	"github.com/bvinc/go-sqlite-lite/sqlite3"

	"godevs/pkg/simulation"
)

// RunConfig describes the run being stored alongside its trace.
type RunConfig struct {
	ModelName         string
	ModelKind         string
	Flattened         bool
	Workers           int
	SimulatedDuration float64
	WallDuration      time.Duration
}

type RunStore interface {
	Store(
		conf RunConfig,
		transitions []simulation.Transition,
		outputs []simulation.OutputEvent,
	) (simulationRunId int64, err error)
}

type storer struct {
	conn        *sqlite3.Conn
	conf        RunConfig
	transitions []simulation.Transition
	outputs     []simulation.OutputEvent
}

func (s *storer) Store(conf RunConfig, transitions []simulation.Transition,
	outputs []simulation.OutputEvent) (simulationRunId int64, err error) {

	s.conf = conf
	s.transitions = transitions
	s.outputs = outputs

	simulationRunId, err = s.simulationRun()
	if err != nil {
		return simulationRunId, err
	}

	err = s.conn.WithTx(func() error {
		return s.runData(simulationRunId)
	})
	if err != nil {
		return simulationRunId, err
	}

	return simulationRunId, nil
}

func (s *storer) simulationRun() (simulationRunId int64, err error) {
	runStmt, err := s.conn.Prepare(`insert into simulation_runs(
									    recorded
									  , model_name
									  , model_kind
									  , flattened
									  , workers
									  , simulated_duration
									  , wall_duration)
									 values (?, ?, ?, ?, ?, ?, ?);`)
	if err != nil {
		return -1, err
	}

	flattened := 0
	if s.conf.Flattened {
		flattened = 1
	}

	err = runStmt.Exec(
		time.Now().Format(time.RFC3339),
		s.conf.ModelName,
		s.conf.ModelKind,
		flattened,
		s.conf.Workers,
		s.conf.SimulatedDuration,
		s.conf.WallDuration.Nanoseconds(),
	)
	if err != nil {
		return -1, err
	}

	lastId := s.conn.LastInsertRowID()

	return lastId, nil
}

func (s *storer) runData(simulationRunId int64) error {
	componentStmt, err := s.conn.Prepare(`insert into components(name) values (?) on conflict do nothing`)
	if err != nil {
		return err
	}
	defer componentStmt.Close()

	transitionStmt, err := s.conn.Prepare(`insert into transitions(
            occurs_at
          , kind
          , component
          , simulation_run_id
        ) values (
              ?
            , ?
            , (select id from components where name = ?)
            , ?)
    `)
	if err != nil {
		return err
	}
	defer transitionStmt.Close()

	for _, tr := range s.transitions {
		err = componentStmt.Exec(tr.Component)
		if err != nil {
			return err
		}

		err = transitionStmt.Exec(
			tr.OccursAt,
			string(tr.Kind),
			tr.Component,
			simulationRunId,
		)
		if err != nil {
			return err
		}
	}

	outputStmt, err := s.conn.Prepare(`insert into port_events(
            occurs_at
          , port
          , value
          , component
          , simulation_run_id
        ) values (
              ?
            , ?
            , ?
            , (select id from components where name = ?)
            , ?)
    `)
	if err != nil {
		return err
	}
	defer outputStmt.Close()

	for _, out := range s.outputs {
		err = componentStmt.Exec(out.Component)
		if err != nil {
			return err
		}

		err = outputStmt.Exec(
			out.OccursAt,
			out.Port,
			fmt.Sprintf("%v", out.Value),
			out.Component,
			simulationRunId,
		)
		if err != nil {
			return err
		}
	}

	return nil
}

func NewRunStore(conn *sqlite3.Conn) RunStore {
	err := conn.Exec(Schema)
	if err != nil {
		panic(fmt.Errorf("could not apply godevs schema: %s", err.Error()))
	}

	return &storer{
		conn: conn,
	}
}

// OpenRunStore opens the database file, applies the schema and returns
// a store bound to the connection. Use ":memory:" for a throwaway
// database.
func OpenRunStore(dbFileName string) (RunStore, *sqlite3.Conn, error) {
	conn, err := sqlite3.Open(dbFileName)
	if err != nil {
		return nil, nil, fmt.Errorf("could not open database file '%s': %s", dbFileName, err.Error())
	}

	return NewRunStore(conn), conn, nil
}
