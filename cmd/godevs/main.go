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

package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/logrusorgru/aurora"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"godevs/pkg/data"
	"godevs/pkg/model/devstone"
	"godevs/pkg/model/efp"
	"godevs/pkg/modeling"
	"godevs/pkg/simulation"
)

var (
	startRunning = time.Now()
	au           = aurora.NewAurora(true)

	modelKind = flag.String("model", "devstone-li", "Model to simulate: devstone-li, devstone-hi or efp")

	depth    = flag.Int("depth", 4, "DEVStone tower depth")
	width    = flag.Int("width", 5, "DEVStone tower width")
	intDelay = flag.Duration("intDelay", 0, "Artificial work per internal transition")
	extDelay = flag.Duration("extDelay", 0, "Artificial work per external transition")

	period          = flag.Float64("period", 1.0, "EFP generator period, in virtual seconds")
	processingTime  = flag.Float64("processingTime", 2.5, "EFP processing time per job, in virtual seconds")
	observationTime = flag.Float64("observationTime", 10.0, "EFP observation window, in virtual seconds")

	iterations = flag.Int("iterations", 100000, "Maximum number of simulation cycles")
	flatten    = flag.Bool("flatten", false, "Flatten the model hierarchy before simulating")
	workers    = flag.Int("workers", 0, "Concurrent transition workers; above 1 selects the parallel coordinator")
	showTrace  = flag.Bool("showTrace", true, "Show simulation trace")
	storeRun   = flag.Bool("storeRun", true, "Store simulation run results in the database")
	dbFileName = flag.String("db", "godevs.db", "Database file for stored runs")
)

func main() {
	flag.Parse()
	r := NewRunner()

	root, inject, err := buildModel()
	if err != nil {
		fmt.Printf("could not build model: %s\n", err.Error())
		os.Exit(1)
	}

	coord := r.Coordinator(root)

	fmt.Print("Running simulation ... ")

	coord.Initialize()
	if inject {
		in, err := root.InPort("in")
		if err != nil {
			panic(err.Error())
		}
		coord.Inject(in, 0, 0)
	}
	coord.SimulateIterations(*iterations)
	coord.Exit()

	if *storeRun {
		store, conn, err := data.OpenRunStore(*dbFileName)
		if err != nil {
			fmt.Printf("there was an error opening the database: %s", err.Error())
		} else {
			defer conn.Close()

			conf := data.RunConfig{
				ModelName:         root.Name(),
				ModelKind:         *modelKind,
				Flattened:         *flatten,
				Workers:           *workers,
				SimulatedDuration: coord.TimeLast(),
				WallDuration:      time.Since(startRunning),
			}

			runId, err := store.Store(conf, r.Trace().Transitions(), r.Trace().Outputs())
			if err != nil {
				fmt.Printf("there was an error saving data: %s", err.Error())
			}

			fmt.Printf("#%d ", au.Bold(runId))
		}
	}

	if *showTrace {
		err = r.Report(coord, os.Stdout)
		if err != nil {
			fmt.Printf("there was an error reporting the run: %s", err.Error())
		}
	}
}

func buildModel() (*modeling.Coupled, bool, error) {
	switch *modelKind {
	case "devstone-li":
		root, err := devstone.NewLI("tower", devstoneConfig())
		return root, true, err
	case "devstone-hi":
		root, err := devstone.NewHI("tower", devstoneConfig())
		return root, true, err
	case "efp":
		root, _, _, _, err := efp.New("efp", efp.Config{
			Period:          *period,
			ProcessingTime:  *processingTime,
			ObservationTime: *observationTime,
		})
		return root, false, err
	default:
		return nil, false, fmt.Errorf("unknown model kind '%s'", *modelKind)
	}
}

func devstoneConfig() devstone.Config {
	return devstone.Config{
		Depth:    *depth,
		Width:    *width,
		IntDelay: *intDelay,
		ExtDelay: *extDelay,
	}
}

type Runner interface {
	Coordinator(root *modeling.Coupled) simulation.RootCoordinator
	Trace() *simulation.TraceCollector
	Report(coord simulation.RootCoordinator, writer io.Writer) error
}

type runner struct {
	trace  *simulation.TraceCollector
	logbuf *bytes.Buffer
}

func NewRunner() Runner {
	return &runner{
		trace:  simulation.NewTraceCollector(),
		logbuf: new(bytes.Buffer),
	}
}

func (r *runner) Coordinator(root *modeling.Coupled) simulation.RootCoordinator {
	conf := simulation.CoordinatorConfig{
		Flatten: *flatten,
		Tracer:  r.trace,
		Logger:  newLogger(r.logbuf),
	}

	if *workers > 1 {
		return simulation.NewParallelCoordinator(root, conf, *workers)
	}
	return simulation.NewCoordinator(root, conf)
}

func (r *runner) Trace() *simulation.TraceCollector {
	return r.trace
}

func (r *runner) Report(coord simulation.RootCoordinator, writer io.Writer) error {
	transitions := r.trace.Transitions()
	outputs := r.trace.Outputs()

	fmt.Fprintf(writer,
		"%5s      %19s %-8d  %17s %-8d  %20s %-10s    %20s %-12v\n\n",
		au.Bold("Done."),
		au.BgGreen("Transitions"),
		au.Bold(len(transitions)),
		au.BgBrown("Port events"),
		au.Bold(len(outputs)),
		au.Cyan("Running time:"),
		time.Since(startRunning).String(),
		au.Cyan("Simulated time:"),
		coord.TimeLast(),
	)

	printer := message.NewPrinter(language.AmericanEnglish)
	fmt.Fprintln(writer, au.BgGreen(fmt.Sprintf("%20s  %-44s %-14s", "Virtual Time", "Component", "Transition")).Bold())

	for _, tr := range transitions {
		coloredKind := ""
		switch tr.Kind {
		case simulation.Internal:
			coloredKind = au.Cyan(string(tr.Kind)).String()
		case simulation.External:
			coloredKind = au.Green(string(tr.Kind)).String()
		case simulation.Confluent:
			coloredKind = au.Magenta(string(tr.Kind)).String()
		}

		fmt.Fprintln(writer, printer.Sprintf(
			"%20.6f  %-44s %-14s",
			tr.OccursAt,
			tr.Component,
			coloredKind,
		))
	}

	fmt.Fprint(writer, "\n")
	fmt.Fprintln(writer, au.BgBrown(fmt.Sprintf("%20s  %-44s %-14s ⟶   %-34s", "Virtual Time", "Component", "Port", "Value")).Bold())
	for _, out := range outputs {
		fmt.Fprintln(writer, printer.Sprintf(
			"%20.6f  %-44s %-14s ⟶   %-34v",
			out.OccursAt,
			out.Component,
			out.Port,
			out.Value,
		))
	}

	fmt.Fprint(writer, "\n")
	fmt.Fprintln(writer, au.Bold(fmt.Sprintf("%-100s", "          Log output")).BgBlue())
	fmt.Fprintln(writer, r.logbuf.String())

	return nil
}

func newLogger(buf io.Writer) *zap.SugaredLogger {
	sink := zapcore.AddSync(buf)

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		sink,
		zap.InfoLevel,
	)

	unsugaredLogger := zap.New(core)

	return unsugaredLogger.Named("godevs").Sugar()
}
