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

package serve

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"godevs/pkg/data"
	"godevs/pkg/model/devstone"
	"godevs/pkg/model/efp"
	"godevs/pkg/modeling"
	"godevs/pkg/simulation"
)

const defaultIterations = 100000

type RunRequest struct {
	Model string `json:"model"` // devstone-li, devstone-hi or efp

	Depth      int   `json:"depth"`
	Width      int   `json:"width"`
	IntDelayMs int64 `json:"int_delay_ms"`
	ExtDelayMs int64 `json:"ext_delay_ms"`

	Period          float64 `json:"period"`
	ProcessingTime  float64 `json:"processing_time"`
	ObservationTime float64 `json:"observation_time"`

	Iterations int     `json:"iterations"`
	Duration   float64 `json:"duration"`
	Flatten    bool    `json:"flatten"`
	Workers    int     `json:"workers"`

	StoreRun         bool `json:"store_run"`
	InMemoryDatabase bool `json:"in_memory_database"`
	IncludeTrace     bool `json:"include_trace"`
}

type TransitionLine struct {
	OccursAt  float64 `json:"occurs_at"`
	Component string  `json:"component"`
	Kind      string  `json:"kind"`
}

type OutputLine struct {
	OccursAt  float64 `json:"occurs_at"`
	Component string  `json:"component"`
	Port      string  `json:"port"`
	Value     string  `json:"value"`
}

type RunResponse struct {
	SimulationRunId int64 `json:"simulation_run_id,omitempty"`

	// ClockTime is the virtual time of the last processed event.
	ClockTime float64 `json:"clock_time"`
	RanFor          time.Duration    `json:"ran_for"`
	Tally           map[string]int   `json:"tally"`
	Transitions     []TransitionLine `json:"transitions,omitempty"`
	Outputs         []OutputLine     `json:"outputs,omitempty"`
}

func (ss *SimulationServer) RunHandler(w http.ResponseWriter, r *http.Request) {
	runRequest := &RunRequest{}
	err := json.NewDecoder(r.Body).Decode(runRequest)
	if err != nil {
		http.Error(w, fmt.Sprintf("could not decode run request: %s", err.Error()), http.StatusBadRequest)
		return
	}

	root, inject, err := buildModel(runRequest)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	trace := simulation.NewTraceCollector()
	conf := simulation.CoordinatorConfig{
		Flatten: runRequest.Flatten,
		Tracer:  trace,
		Logger:  ss.logger,
	}

	var coord simulation.RootCoordinator
	if runRequest.Workers > 1 {
		coord = simulation.NewParallelCoordinator(root, conf, runRequest.Workers)
	} else {
		coord = simulation.NewCoordinator(root, conf)
	}

	began := time.Now()
	coord.Initialize()

	if inject {
		in, err := root.InPort("in")
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		coord.Inject(in, 0, 0)
	}

	if runRequest.Duration > 0 {
		coord.SimulateTime(runRequest.Duration)
	} else {
		iterations := runRequest.Iterations
		if iterations <= 0 {
			iterations = defaultIterations
		}
		coord.SimulateIterations(iterations)
	}
	coord.Exit()
	ranFor := time.Since(began)

	runResponse := &RunResponse{
		ClockTime: jsonClock(coord.TimeLast()),
		RanFor:    ranFor,
		Tally:     map[string]int{},
	}
	for kind, count := range trace.Tally() {
		runResponse.Tally[string(kind)] = count
	}

	if runRequest.IncludeTrace {
		for _, tr := range trace.Transitions() {
			runResponse.Transitions = append(runResponse.Transitions, TransitionLine{
				OccursAt:  tr.OccursAt,
				Component: tr.Component,
				Kind:      string(tr.Kind),
			})
		}
		for _, out := range trace.Outputs() {
			runResponse.Outputs = append(runResponse.Outputs, OutputLine{
				OccursAt:  out.OccursAt,
				Component: out.Component,
				Port:      out.Port,
				Value:     fmt.Sprintf("%v", out.Value),
			})
		}
	}

	if runRequest.StoreRun {
		dbFileName := ss.DBFileName
		if runRequest.InMemoryDatabase {
			dbFileName = ":memory:"
		}

		store, conn, err := data.OpenRunStore(dbFileName)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		defer conn.Close()

		runConf := data.RunConfig{
			ModelName:         root.Name(),
			ModelKind:         runRequest.Model,
			Flattened:         runRequest.Flatten,
			Workers:           runRequest.Workers,
			SimulatedDuration: coord.TimeLast(),
			WallDuration:      ranFor,
		}

		runResponse.SimulationRunId, err = store.Store(runConf, trace.Transitions(), trace.Outputs())
		if err != nil {
			ss.logger.Errorf("there was an error saving data: %s", err.Error())
		}
	}

	w.Header().Set("Content-Type", "application/json")
	err = json.NewEncoder(w).Encode(runResponse)
	if err != nil {
		ss.logger.Errorf("could not encode run response: %s", err.Error())
	}
}

// buildModel maps the request onto a model tree. The second return
// reports whether the run needs a seed event injected at the root.
func buildModel(runRequest *RunRequest) (*modeling.Coupled, bool, error) {
	switch runRequest.Model {
	case "devstone-li":
		root, err := devstone.NewLI("tower", devstoneConfig(runRequest))
		return root, true, err
	case "devstone-hi":
		root, err := devstone.NewHI("tower", devstoneConfig(runRequest))
		return root, true, err
	case "efp":
		root, _, _, _, err := efp.New("efp", efp.Config{
			Period:          runRequest.Period,
			ProcessingTime:  runRequest.ProcessingTime,
			ObservationTime: runRequest.ObservationTime,
		})
		return root, false, err
	default:
		return nil, false, fmt.Errorf("unknown model kind '%s'", runRequest.Model)
	}
}

func devstoneConfig(runRequest *RunRequest) devstone.Config {
	return devstone.Config{
		Depth:    runRequest.Depth,
		Width:    runRequest.Width,
		IntDelay: time.Duration(runRequest.IntDelayMs) * time.Millisecond,
		ExtDelay: time.Duration(runRequest.ExtDelayMs) * time.Millisecond,
	}
}
