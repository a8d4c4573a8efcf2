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
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"go.uber.org/zap"
)

// SimulationServer exposes simulation runs and live injection over
// HTTP.
type SimulationServer struct {
	Addr       string
	DBFileName string

	srv    *http.Server
	logger *zap.SugaredLogger
	live   *liveSessions
}

func NewSimulationServer(addr, dbFileName string, logger *zap.SugaredLogger) *SimulationServer {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	return &SimulationServer{
		Addr:       addr,
		DBFileName: dbFileName,
		logger:     logger,
		live:       &liveSessions{logger: logger},
	}
}

// Router wires the HTTP surface. Split out from Serve so tests can
// exercise handlers without a listener.
func (ss *SimulationServer) Router() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.NoCache)
	router.Use(middleware.Logger)

	router.Mount("/debug", middleware.Profiler())

	router.Get("/healthz", ss.HealthHandler)
	router.Post("/run", ss.RunHandler)

	router.Post("/live", ss.live.CreateHandler)
	router.Get("/live", ss.live.StatusHandler)
	router.Delete("/live", ss.live.DestroyHandler)
	router.Post("/inject", ss.live.InjectHandler)

	return router
}

func (ss *SimulationServer) Serve() {
	ss.srv = &http.Server{
		Addr:    ss.Addr,
		Handler: ss.Router(),
	}

	go func() {
		ss.logger.Infof("listening on %s", ss.Addr)
		err := ss.srv.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			ss.logger.Fatalf("listen error: %s", err.Error())
		}
	}()
}

func (ss *SimulationServer) Shutdown() {
	ss.logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := ss.srv.Shutdown(ctx)
	if err != nil {
		ss.logger.Fatalf("shutdown error: %s", err.Error())
	}

	ss.live.destroy()

	ss.logger.Info("done")
}

func (ss *SimulationServer) HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
