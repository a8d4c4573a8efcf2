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
	"math"
	"net/http"
	"sort"
	"sync"

	"go.uber.org/zap"

	"godevs/pkg/modeling"
	"godevs/pkg/simulation"
)

// liveSessions holds at most one live coordinator, kept initialized
// between requests so external callers can feed events in with
// /inject.
type liveSessions struct {
	mu     sync.Mutex
	coord  simulation.RootCoordinator
	logger *zap.SugaredLogger
}

// LiveResponse describes the live session. TimeNext is -1 when nothing
// further is scheduled; JSON has no way to carry infinity.
type LiveResponse struct {
	Model         string   `json:"model"`
	ServablePorts []string `json:"servable_ports"`
	TimeLast      float64  `json:"time_last"`
	TimeNext      float64  `json:"time_next"`
}

type InjectRequest struct {
	Port    string           `json:"port"` // "component.port"
	Elapsed float64          `json:"elapsed"`
	Values  []modeling.Event `json:"values"`
}

type InjectResponse struct {
	Accepted bool    `json:"accepted"`
	TimeLast float64 `json:"time_last"`
	TimeNext float64 `json:"time_next"`
}

// CreateHandler builds a model from the same request shape as /run,
// initializes a coordinator for it and keeps it live. An existing
// session is torn down first.
func (ls *liveSessions) CreateHandler(w http.ResponseWriter, r *http.Request) {
	runRequest := &RunRequest{}
	err := json.NewDecoder(r.Body).Decode(runRequest)
	if err != nil {
		http.Error(w, fmt.Sprintf("could not decode live request: %s", err.Error()), http.StatusBadRequest)
		return
	}

	root, _, err := buildModel(runRequest)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	coord := simulation.NewCoordinator(root, simulation.CoordinatorConfig{
		Flatten: runRequest.Flatten,
		Logger:  ls.logger,
	})
	coord.Initialize()

	ls.mu.Lock()
	if ls.coord != nil {
		ls.coord.Exit()
	}
	ls.coord = coord
	ls.mu.Unlock()

	ls.writeStatus(w, coord, runRequest.Model)
}

func (ls *liveSessions) StatusHandler(w http.ResponseWriter, r *http.Request) {
	ls.mu.Lock()
	coord := ls.coord
	ls.mu.Unlock()

	if coord == nil {
		http.Error(w, "no live session", http.StatusNotFound)
		return
	}

	ls.writeStatus(w, coord, coord.Model().Name())
}

func (ls *liveSessions) InjectHandler(w http.ResponseWriter, r *http.Request) {
	injectRequest := &InjectRequest{}
	err := json.NewDecoder(r.Body).Decode(injectRequest)
	if err != nil {
		http.Error(w, fmt.Sprintf("could not decode inject request: %s", err.Error()), http.StatusBadRequest)
		return
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	if ls.coord == nil {
		http.Error(w, "no live session", http.StatusNotFound)
		return
	}

	accepted, err := ls.coord.InjectByName(injectRequest.Port, injectRequest.Elapsed, injectRequest.Values...)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(&InjectResponse{
		Accepted: accepted,
		TimeLast: ls.coord.TimeLast(),
		TimeNext: jsonClock(ls.coord.TimeNext()),
	})
}

func (ls *liveSessions) DestroyHandler(w http.ResponseWriter, r *http.Request) {
	ls.destroy()
	w.WriteHeader(http.StatusNoContent)
}

func (ls *liveSessions) destroy() {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	if ls.coord != nil {
		ls.coord.Exit()
		ls.coord = nil
	}
}

func (ls *liveSessions) writeStatus(w http.ResponseWriter, coord simulation.RootCoordinator, model string) {
	ports := make([]string, 0, len(coord.ServablePorts()))
	for name := range coord.ServablePorts() {
		ports = append(ports, name)
	}
	sort.Strings(ports)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(&LiveResponse{
		Model:         model,
		ServablePorts: ports,
		TimeLast:      coord.TimeLast(),
		TimeNext:      jsonClock(coord.TimeNext()),
	})
}

// jsonClock flattens infinity, which JSON numbers cannot carry, to -1.
func jsonClock(t float64) float64 {
	if math.IsInf(t, 1) {
		return -1
	}
	return t
}
