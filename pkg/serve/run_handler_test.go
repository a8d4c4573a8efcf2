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

package serve

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/sclevine/spec"
	"github.com/sclevine/spec/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"godevs/pkg/modeling"
)

func TestServe(t *testing.T) {
	suite := spec.New("Serve suite", spec.Report(report.Terminal{}))
	suite("RunHandler", testRunHandler)
	suite("Live", testLiveHandlers)

	suite.Run(t)
}

func newTestRouter() chi.Router {
	return NewSimulationServer("127.0.0.1:0", ":memory:", nil).Router()
}

func postJSON(t *testing.T, router chi.Router, path string, body interface{}) *httptest.ResponseRecorder {
	reqBody := new(bytes.Buffer)
	err := json.NewEncoder(reqBody).Encode(body)
	require.NoError(t, err)

	req, err := http.NewRequest("POST", path, reqBody)
	require.NoError(t, err)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func testRunHandler(t *testing.T, describe spec.G, it spec.S) {
	var router chi.Router

	it.Before(func() {
		router = newTestRouter()
	})

	describe("GET /healthz", func() {
		it("responds 200", func() {
			req, err := http.NewRequest("GET", "/healthz", nil)
			require.NoError(t, err)

			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, req)

			assert.Equal(t, http.StatusOK, recorder.Code)
		})
	})

	describe("POST /run with a devstone model", func() {
		var recorder *httptest.ResponseRecorder
		var runResponse *RunResponse

		it.Before(func() {
			recorder = postJSON(t, router, "/run", &RunRequest{
				Model:            "devstone-li",
				Depth:            3,
				Width:            3,
				Iterations:       1000,
				StoreRun:         true,
				InMemoryDatabase: true,
				IncludeTrace:     true,
			})

			runResponse = &RunResponse{}
			err := json.NewDecoder(recorder.Result().Body).Decode(runResponse)
			require.NoError(t, err)
		})

		it("has status 200 OK", func() {
			assert.Equal(t, http.StatusOK, recorder.Code)
		})

		it("sets the content-type to JSON", func() {
			assert.Equal(t, "application/json", recorder.Header().Get("Content-Type"))
		})

		it("tallies one internal and one external transition per atomic", func() {
			assert.Equal(t, 5, runResponse.Tally["internal"])
			assert.Equal(t, 5, runResponse.Tally["external"])
		})

		it("includes the trace", func() {
			assert.Len(t, runResponse.Transitions, 10)
			assert.NotEmpty(t, runResponse.Outputs)
		})

		it("stores the run", func() {
			assert.Equal(t, int64(1), runResponse.SimulationRunId)
		})
	})

	describe("POST /run with an efp model", func() {
		var runResponse *RunResponse

		it.Before(func() {
			recorder := postJSON(t, router, "/run", &RunRequest{
				Model:           "efp",
				Period:          1.0,
				ProcessingTime:  0.5,
				ObservationTime: 5.0,
			})
			require.Equal(t, http.StatusOK, recorder.Code)

			runResponse = &RunResponse{}
			err := json.NewDecoder(recorder.Result().Body).Decode(runResponse)
			require.NoError(t, err)
		})

		it("runs to the last processed job", func() {
			assert.Equal(t, 5.5, runResponse.ClockTime)
		})
	})

	describe("POST /run with a bad request", func() {
		it("rejects an unknown model kind", func() {
			recorder := postJSON(t, router, "/run", &RunRequest{Model: "spherical-cow"})
			assert.Equal(t, http.StatusBadRequest, recorder.Code)
		})

		it("rejects an invalid shape", func() {
			recorder := postJSON(t, router, "/run", &RunRequest{Model: "devstone-hi", Depth: 0, Width: 3})
			assert.Equal(t, http.StatusBadRequest, recorder.Code)
		})

		it("rejects malformed JSON", func() {
			req, err := http.NewRequest("POST", "/run", bytes.NewBufferString("{nope"))
			require.NoError(t, err)

			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, req)

			assert.Equal(t, http.StatusBadRequest, recorder.Code)
		})
	})
}

func testLiveHandlers(t *testing.T, describe spec.G, it spec.S) {
	var router chi.Router

	efpRequest := &RunRequest{
		Model:           "efp",
		Period:          1.0,
		ProcessingTime:  0.5,
		ObservationTime: 5.0,
	}

	it.Before(func() {
		router = newTestRouter()
	})

	describe("with no live session", func() {
		it("GET /live responds 404", func() {
			req, err := http.NewRequest("GET", "/live", nil)
			require.NoError(t, err)

			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, req)

			assert.Equal(t, http.StatusNotFound, recorder.Code)
		})

		it("POST /inject responds 404", func() {
			recorder := postJSON(t, router, "/inject", &InjectRequest{Port: "efp_generator.stop"})
			assert.Equal(t, http.StatusNotFound, recorder.Code)
		})
	})

	describe("POST /live", func() {
		var liveResponse *LiveResponse

		it.Before(func() {
			recorder := postJSON(t, router, "/live", efpRequest)
			require.Equal(t, http.StatusOK, recorder.Code)

			liveResponse = &LiveResponse{}
			err := json.NewDecoder(recorder.Result().Body).Decode(liveResponse)
			require.NoError(t, err)
		})

		it("lists the servable ports", func() {
			assert.Equal(t, []string{"efp_generator.stop", "efp_processor.in"}, liveResponse.ServablePorts)
		})

		it("reports the initial schedule", func() {
			assert.Equal(t, 0.0, liveResponse.TimeLast)
			assert.Equal(t, 1.0, liveResponse.TimeNext)
		})
	})

	describe("POST /inject", func() {
		it.Before(func() {
			recorder := postJSON(t, router, "/live", efpRequest)
			require.Equal(t, http.StatusOK, recorder.Code)
		})

		it("accepts an in-bounds event", func() {
			recorder := postJSON(t, router, "/inject", &InjectRequest{
				Port:    "efp_generator.stop",
				Elapsed: 0.5,
				Values:  []modeling.Event{true},
			})
			require.Equal(t, http.StatusOK, recorder.Code)

			injectResponse := &InjectResponse{}
			err := json.NewDecoder(recorder.Result().Body).Decode(injectResponse)
			require.NoError(t, err)

			assert.True(t, injectResponse.Accepted)
			assert.Equal(t, 0.5, injectResponse.TimeLast)
		})

		it("rejects an out-of-bounds event", func() {
			recorder := postJSON(t, router, "/inject", &InjectRequest{
				Port:    "efp_generator.stop",
				Elapsed: 1.5,
				Values:  []modeling.Event{true},
			})
			require.Equal(t, http.StatusOK, recorder.Code)

			injectResponse := &InjectResponse{}
			err := json.NewDecoder(recorder.Result().Body).Decode(injectResponse)
			require.NoError(t, err)

			assert.False(t, injectResponse.Accepted)
		})

		it("errors for unknown ports", func() {
			recorder := postJSON(t, router, "/inject", &InjectRequest{Port: "nobody.in"})
			assert.Equal(t, http.StatusBadRequest, recorder.Code)
		})
	})

	describe("DELETE /live", func() {
		it.Before(func() {
			recorder := postJSON(t, router, "/live", efpRequest)
			require.Equal(t, http.StatusOK, recorder.Code)
		})

		it("tears the session down", func() {
			req, err := http.NewRequest("DELETE", "/live", nil)
			require.NoError(t, err)

			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, req)
			assert.Equal(t, http.StatusNoContent, recorder.Code)

			req, err = http.NewRequest("GET", "/live", nil)
			require.NoError(t, err)

			recorder = httptest.NewRecorder()
			router.ServeHTTP(recorder, req)
			assert.Equal(t, http.StatusNotFound, recorder.Code)
		})
	})
}
