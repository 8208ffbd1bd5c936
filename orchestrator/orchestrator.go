// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package orchestrator implements StepOrchestrator (spec.md S4.9): the
// single-threaded, per-rank phased driver that composes the exchange,
// stability, iolet, and streamer components through one fixed Actor
// protocol, grounded on ele.Element's own per-phase method set
// (SetEqs/AddToRhs/AddToKb/... invoked by fem.Solver.Run at specific solver
// phases) and on fem/solver.go's allocators-style composition of
// independently-built collaborators into one driver.
package orchestrator

import (
	"github.com/cpmech/gosl/chk"
	"github.com/hemelb-go/corelb/domain"
	"github.com/hemelb-go/corelb/lattice"
	"github.com/hemelb-go/corelb/net"
	"github.com/hemelb-go/corelb/stability"
)

// Actor is the phased-step protocol of spec.md S4.9: "BeginIteration,
// RequestComms, PreSend, Send, PreReceive, Wait, PostReceive, EndIteration
// ... any may be a no-op". Send and Wait are listed for completeness with
// the spec's own actor/phase naming, but in this implementation the actual
// posting and completion of requests is owned by the single net.Net
// aggregator the orchestrator drives directly between phases — every
// concrete actor here leaves Send/Wait as no-ops (via NoopActor) and does
// its posting work in RequestComms instead.
type Actor interface {
	BeginIteration(step int, t float64)
	RequestComms(n *net.Net)
	PreSend()
	Send()
	PreReceive()
	Wait()
	PostReceive()
	EndIteration()
}

// NoopActor supplies every Actor method as a no-op; concrete actors embed
// it and override only the phases they participate in, matching
// ele.Element implementations that leave most visitor methods empty.
type NoopActor struct{}

func (NoopActor) BeginIteration(step int, t float64) {}
func (NoopActor) RequestComms(n *net.Net)            {}
func (NoopActor) PreSend()                           {}
func (NoopActor) Send()                              {}
func (NoopActor) PreReceive()                        {}
func (NoopActor) Wait()                              {}
func (NoopActor) PostReceive()                       {}
func (NoopActor) EndIteration()                      {}

// Status is the outcome of a StepOrchestrator.Run call (spec.md S4.9
// "Termination").
type Status int

const (
	Running Status = iota
	MaxStepsReached
	Converged
	TerminatedExternally
	Failed
)

func (s Status) String() string {
	switch s {
	case MaxStepsReached:
		return "MAX_STEPS_REACHED"
	case Converged:
		return "STABLE_AND_CONVERGED"
	case TerminatedExternally:
		return "TERMINATED_EXTERNALLY"
	case Failed:
		return "FAILED"
	default:
		return "RUNNING"
	}
}

// StepOrchestrator drives the eight-phase schedule of spec.md S4.9 over a
// fixed set of registered actors, plus the instability-triggered reset and
// termination logic of S4.8/S7.
type StepOrchestrator struct {
	Dom    *domain.Domain
	actors []Actor

	monitor *monitorActor
	iolets  *ioletActor

	maxSteps           int
	resetOnInstability bool
	resetUsed          bool

	dt        float64
	t         float64
	step      int
	terminate bool
}

// New builds an orchestrator over dom, driving the given actors in
// registration order within each phase. monitor and iolets are passed
// separately (in addition to being included in actors) because the
// orchestrator needs to read the monitor's reduced verdict and trigger the
// iolet rebroadcast on reset; every other actor is opaque to it.
func New(dom *domain.Domain, actors []Actor, monitor *monitorActor, iolets *ioletActor, maxSteps int, resetOnInstability bool, dt float64) *StepOrchestrator {
	return &StepOrchestrator{
		Dom:                dom,
		actors:             actors,
		monitor:            monitor,
		iolets:             iolets,
		maxSteps:           maxSteps,
		resetOnInstability: resetOnInstability,
		dt:                 dt,
	}
}

// CurrentStep returns the number of iterations completed so far (reset to
// 0 by an instability-triggered reset).
func (o *StepOrchestrator) CurrentStep() int { return o.step }

// Terminate sets the external terminate flag (spec.md S4.9 termination
// condition (c), steering/UI driven); checked at the end of the current
// iteration.
func (o *StepOrchestrator) Terminate() { o.terminate = true }

// Step runs the code phase schedule of spec.md S4.9 exactly once and
// returns the status to apply after it (Running if the loop should
// continue).
func (o *StepOrchestrator) Step() (Status, error) {
	o.t += o.dt
	for _, a := range o.actors {
		a.BeginIteration(o.step, o.t)
	}

	n := net.NewNet()
	for _, a := range o.actors {
		a.RequestComms(n)
	}
	n.Receive()
	for _, a := range o.actors {
		a.PreSend()
	}
	n.Send()
	for _, a := range o.actors {
		a.PreReceive()
	}
	if err := n.Wait(); err != nil {
		return Failed, chk.Err("orchestrator: communication failure at step %d: %v", o.step, err)
	}
	for _, a := range o.actors {
		a.PostReceive()
	}

	// "the domain swaps fOld/fNew" is the orchestrator's own EndIteration
	// action (spec.md S4.9 step 8), run before any actor's EndIteration so
	// an actor that inspects fOld there sees the state just produced by
	// this iteration rather than the previous one. None of this package's
	// actors does; the stability scan reads fOld in RequestComms.
	o.Dom.Swap()
	for _, a := range o.actors {
		a.EndIteration()
	}
	o.step++

	global := o.monitor.Global()
	switch global {
	case stability.Unstable:
		if !o.resetOnInstability {
			return Failed, chk.Err("orchestrator: numerical instability at step %d, resetOnInstability disabled", o.step)
		}
		if o.resetUsed {
			return Failed, chk.Err("orchestrator: repeated instability at step %d after the one permitted reset", o.step)
		}
		o.reset()
		o.resetUsed = true
	case stability.StableAndConverged:
		return Converged, nil
	}
	if o.terminate {
		return TerminatedExternally, nil
	}
	if o.step >= o.maxSteps {
		return MaxStepsReached, nil
	}
	return Running, nil
}

// Run drives Step until a non-Running status is reached.
func (o *StepOrchestrator) Run() (Status, error) {
	for {
		status, err := o.Step()
		if err != nil || status != Running {
			return status, err
		}
	}
}

// reset implements spec.md S4.7/S4.8's reset semantics: re-initialise
// every local distribution to the uniform-density rest equilibrium,
// rebroadcast iolet values immediately, return the stability monitor to
// its undefined state, and resume from t=0 at half the previous timestep
// size ("halve delta-t via doubling TimeStepsPerCycle").
func (o *StepOrchestrator) reset() {
	fillRestEquilibrium(o.Dom)
	o.t = 0
	o.step = 0
	o.dt /= 2
	o.monitor.Reset()
	if o.iolets != nil {
		o.iolets.rebroadcastAt(0)
	}
}

// fillRestEquilibrium overwrites every local site's fOld/fNew with the
// rho=1, u=0 equilibrium distribution (spec.md S4.8 "re-initialise fields
// at rest"); the shared-region and sentinel slots are left as-is, since
// every entry there is fully overwritten again before it is ever read, by
// the next iteration's PreSend/PostReceive.
func fillRestEquilibrium(dom *domain.Domain) {
	q := dom.Lat.Q
	feq := make([]float64, q)
	dom.Lat.Equilibrium(1, lattice.Vec3{}, feq)
	for s := 0; s < dom.NLocal; s++ {
		copy(dom.FOld[s*q:s*q+q], feq)
		copy(dom.FNew[s*q:s*q+q], feq)
	}
}
