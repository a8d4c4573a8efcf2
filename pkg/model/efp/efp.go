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

// Package efp is the experimental-frame/processor demo model: a
// Generator feeds numbered jobs to a Processor while a Transducer
// observes both streams and halts the experiment at its observation
// time.
package efp

import (
	"fmt"

	"godevs/pkg/modeling"
)

// Job is the event payload flowing through the pipeline.
type Job struct {
	ID int
}

// Config shapes an EFP experiment, in virtual seconds.
type Config struct {
	Period          float64
	ProcessingTime  float64
	ObservationTime float64
}

func (c Config) validate() error {
	if c.Period <= 0 {
		return fmt.Errorf("generator period must be positive, got %v", c.Period)
	}
	if c.ProcessingTime < 0 {
		return fmt.Errorf("processing time must not be negative, got %v", c.ProcessingTime)
	}
	if c.ObservationTime <= 0 {
		return fmt.Errorf("observation time must be positive, got %v", c.ObservationTime)
	}
	return nil
}

// Generator emits a numbered Job on Out every period until an event
// arrives on Stop.
type Generator struct {
	modeling.AtomicBase
	Stop *modeling.Port
	Out  *modeling.Port

	period  float64
	Emitted int
}

func NewGenerator(name string, period float64) *Generator {
	g := &Generator{
		AtomicBase: modeling.NewAtomicBase(name),
		Stop:       modeling.NewPort("stop", modeling.In),
		Out:        modeling.NewPort("out", modeling.Out),
		period:     period,
	}
	g.Stop.MarkServable()
	g.AddInPort(g.Stop)
	g.AddOutPort(g.Out)
	return g
}

func (g *Generator) Initialize() {
	g.HoldIn(modeling.PhaseActive, g.period)
}

func (g *Generator) Lambda() {
	g.Out.Add(Job{ID: g.Emitted + 1})
}

func (g *Generator) DeltInt() {
	g.Emitted++
	g.HoldIn(modeling.PhaseActive, g.period)
}

func (g *Generator) DeltExt(e float64) {
	g.Passivate()
}

func (g *Generator) DeltCon(e float64) {
	g.DeltInt()
	g.DeltExt(0)
}

// Processor serves one job at a time. Jobs arriving while busy are
// discarded.
type Processor struct {
	modeling.AtomicBase
	In  *modeling.Port
	Out *modeling.Port

	processingTime float64
	current        Job
	Processed      int
	Discarded      int
}

const phaseBusy = "busy"

func NewProcessor(name string, processingTime float64) *Processor {
	p := &Processor{
		AtomicBase:     modeling.NewAtomicBase(name),
		In:             modeling.NewPort("in", modeling.In),
		Out:            modeling.NewPort("out", modeling.Out),
		processingTime: processingTime,
	}
	p.In.MarkServable()
	p.AddInPort(p.In)
	p.AddOutPort(p.Out)
	return p
}

func (p *Processor) Initialize() {
	p.Passivate()
}

func (p *Processor) Lambda() {
	p.Out.Add(p.current)
}

func (p *Processor) DeltInt() {
	p.Processed++
	p.Passivate()
}

func (p *Processor) DeltExt(e float64) {
	jobs := p.In.Values()

	if p.Phase() == phaseBusy {
		p.Discarded += len(jobs)
		return
	}

	job, ok := jobs[0].(Job)
	if !ok {
		p.Discarded += len(jobs)
		return
	}

	p.current = job
	p.Discarded += len(jobs) - 1
	p.HoldIn(phaseBusy, p.processingTime)
}

func (p *Processor) DeltCon(e float64) {
	p.DeltInt()
	p.DeltExt(0)
}

// Transducer tallies generated and processed jobs. At observation time
// it emits a stop event and passivates; the experiment winds down.
type Transducer struct {
	modeling.AtomicBase
	Generated *modeling.Port
	Processed *modeling.Port
	Stop      *modeling.Port

	observationTime float64
	GeneratedCount  int
	ProcessedCount  int
}

const phaseObserving = "observing"

func NewTransducer(name string, observationTime float64) *Transducer {
	tr := &Transducer{
		AtomicBase:      modeling.NewAtomicBase(name),
		Generated:       modeling.NewPort("generated", modeling.In),
		Processed:       modeling.NewPort("processed", modeling.In),
		Stop:            modeling.NewPort("stop", modeling.Out),
		observationTime: observationTime,
	}
	tr.AddInPort(tr.Generated)
	tr.AddInPort(tr.Processed)
	tr.AddOutPort(tr.Stop)
	return tr
}

func (tr *Transducer) Initialize() {
	tr.HoldIn(phaseObserving, tr.observationTime)
}

func (tr *Transducer) Lambda() {
	tr.Stop.Add(true)
}

func (tr *Transducer) DeltInt() {
	tr.Passivate()
}

func (tr *Transducer) DeltExt(e float64) {
	tr.GeneratedCount += len(tr.Generated.Values())
	tr.ProcessedCount += len(tr.Processed.Values())
}

func (tr *Transducer) DeltCon(e float64) {
	tr.DeltExt(0)
	tr.DeltInt()
}

// Throughput is processed jobs per observed virtual second.
func (tr *Transducer) Throughput() float64 {
	if tr.observationTime <= 0 {
		return 0
	}
	return float64(tr.ProcessedCount) / tr.observationTime
}

// New wires the flat experiment:
//
//	generator.out -> processor.in
//	generator.out -> transducer.generated
//	processor.out -> transducer.processed
//	transducer.stop -> generator.stop
func New(name string, config Config) (*modeling.Coupled, *Generator, *Processor, *Transducer, error) {
	if err := config.validate(); err != nil {
		return nil, nil, nil, nil, err
	}

	gen := NewGenerator(name+"_generator", config.Period)
	proc := NewProcessor(name+"_processor", config.ProcessingTime)
	trans := NewTransducer(name+"_transducer", config.ObservationTime)

	root := modeling.NewCoupled(name)
	root.AddComponent(gen)
	root.AddComponent(proc)
	root.AddComponent(trans)

	couplings := [][2]*modeling.Port{
		{gen.Out, proc.In},
		{gen.Out, trans.Generated},
		{proc.Out, trans.Processed},
		{trans.Stop, gen.Stop},
	}
	for _, pair := range couplings {
		if err := root.AddCoupling(pair[0], pair[1]); err != nil {
			return nil, nil, nil, nil, err
		}
	}

	return root, gen, proc, trans, nil
}

// NewNested wires the same experiment with the experimental frame
// (generator + transducer) in its own coupled layer, exercising
// hierarchical coordination.
func NewNested(name string, config Config) (*modeling.Coupled, *Generator, *Processor, *Transducer, error) {
	if err := config.validate(); err != nil {
		return nil, nil, nil, nil, err
	}

	gen := NewGenerator(name+"_generator", config.Period)
	proc := NewProcessor(name+"_processor", config.ProcessingTime)
	trans := NewTransducer(name+"_transducer", config.ObservationTime)

	ef := modeling.NewCoupled(name + "_ef")
	efIn := modeling.NewPort("in", modeling.In)
	efOut := modeling.NewPort("out", modeling.Out)
	ef.AddInPort(efIn)
	ef.AddOutPort(efOut)
	ef.AddComponent(gen)
	ef.AddComponent(trans)

	root := modeling.NewCoupled(name)
	root.AddComponent(ef)
	root.AddComponent(proc)

	wiring := []struct {
		c        *modeling.Coupled
		from, to *modeling.Port
	}{
		{ef, efIn, trans.Processed},
		{ef, gen.Out, trans.Generated},
		{ef, trans.Stop, gen.Stop},
		{ef, gen.Out, efOut},
		{root, efOut, proc.In},
		{root, proc.Out, efIn},
	}
	for _, w := range wiring {
		if err := w.c.AddCoupling(w.from, w.to); err != nil {
			return nil, nil, nil, nil, err
		}
	}

	return root, gen, proc, trans, nil
}
