// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package orchestrator

import (
	"github.com/hemelb-go/corelb/domain"
	"github.com/hemelb-go/corelb/iolet"
	"github.com/hemelb-go/corelb/kernel"
	"github.com/hemelb-go/corelb/net"
	"github.com/hemelb-go/corelb/stability"
	"github.com/hemelb-go/corelb/streamer"
)

// exchangeActor adapts net.Exchange to the Actor protocol (spec.md S4.4's
// NeighbourExchange wired into S4.9's PostReceive step).
type exchangeActor struct {
	NoopActor
	ex  *net.Exchange
	dom *domain.Domain
}

// NewExchangeActor wraps ex for dom. dom.FNew is still the scratch array
// the streamer phases (PreSend/PreReceive) have just written the new
// state into; CopyReceived must land here too, since Domain.Swap (the
// orchestrator's own EndIteration action) is what makes this the next
// iteration's fOld.
func NewExchangeActor(ex *net.Exchange, dom *domain.Domain) *exchangeActor {
	return &exchangeActor{ex: ex, dom: dom}
}

func (a *exchangeActor) RequestComms(n *net.Net) { a.ex.RequestComms(n) }
func (a *exchangeActor) PostReceive()             { a.ex.CopyReceived(a.dom.FNew) }

// monitorActor adapts stability.Monitor to the Actor protocol. The scan
// runs in RequestComms, directly against the current dom.FOld: that array
// already holds the fully-resolved state left by the previous iteration's
// EndIteration swap, so there is no need to defer the scan to a later
// iteration (spec.md S8 scenario 5: a value forced negative during step
// 500 must be caught by step 501's own RequestComms/scan, not step 502's).
type monitorActor struct {
	NoopActor
	mon     *stability.Monitor
	dom     *domain.Domain
	rhoPrev []float64
}

func NewMonitorActor(mon *stability.Monitor, dom *domain.Domain) *monitorActor {
	return &monitorActor{mon: mon, dom: dom, rhoPrev: siteDensities(dom, dom.FOld)}
}

func (a *monitorActor) RequestComms(n *net.Net) {
	rhoNew := siteDensities(a.dom, a.dom.FOld)
	local := a.mon.ScanLocal(a.dom.FOld[:a.dom.SentinelIndex()], a.rhoPrev, rhoNew)
	a.rhoPrev = rhoNew
	a.mon.RequestComms(n, local)
}

func (a *monitorActor) PostReceive() { a.mon.PostReceive() }

// Global returns the reduced verdict read back at PostReceive.
func (a *monitorActor) Global() stability.Status { return a.mon.Global }

// Reset sets the monitor's verdict back to STABLE and forgets the last
// density snapshot, so the next scan compares against the freshly
// re-initialised rest state rather than the pre-reset one (spec.md S8
// property 6, reset idempotence).
func (a *monitorActor) Reset() {
	a.mon.Reset()
	a.rhoPrev = siteDensities(a.dom, a.dom.FOld)
}

// siteDensities sums each local site's Q distributions into a per-site rho
// slice, the input stability.Monitor.ScanLocal's convergence check needs.
func siteDensities(dom *domain.Domain, f []float64) []float64 {
	q := dom.Lat.Q
	rho := make([]float64, dom.NLocal)
	for s := 0; s < dom.NLocal; s++ {
		var sum float64
		for d := 0; d < q; d++ {
			sum += f[s*q+d]
		}
		rho[s] = sum
	}
	return rho
}

// ioletActor adapts iolet.IoletValues to the Actor protocol: Now is read
// once per iteration, in BeginIteration, and the controlled iolets are
// evaluated at that time in PreSend, after RequestComms has already
// registered this rank's send/receive thunks with Net (spec.md S4.7 "the
// controller evaluates v_i(t) once per timestep").
type ioletActor struct {
	NoopActor
	iv  *iolet.IoletValues
	Now func(step int, t float64) float64
	t   float64
}

func NewIoletActor(iv *iolet.IoletValues, now func(step int, t float64) float64) *ioletActor {
	if now == nil {
		now = func(step int, t float64) float64 { return t }
	}
	return &ioletActor{iv: iv, Now: now}
}

func (a *ioletActor) BeginIteration(step int, t float64) { a.t = a.Now(step, t) }
func (a *ioletActor) RequestComms(n *net.Net)            { a.iv.RequestComms(n) }
func (a *ioletActor) PreSend()                           { a.iv.EvaluateLocal(a.t) }
func (a *ioletActor) PostReceive()                       { a.iv.PostReceive() }

// Value returns iolet i's value for the current iteration, valid once
// PostReceive has run.
func (a *ioletActor) Value(i int) float64 { return a.iv.Value(i) }

// rebroadcastAt immediately drives one full iolet broadcast round at
// simulation time t, outside the regular phase schedule (spec.md S4.7/S4.8
// "on instability-triggered reset, iolet values are rebroadcast").
func (a *ioletActor) rebroadcastAt(t float64) {
	n := net.NewNet()
	a.iv.Reset(t, n)
	n.Receive()
	n.Send()
	n.Wait()
	a.iv.PostReceive()
}

// streamerActor adapts streamer.Streamer to the Actor protocol, running
// edge-site StreamAndCollide in PreSend and inner-site StreamAndCollide in
// PreReceive, per spec.md S4.9's own literal examples for those two
// phases; PostStep runs over the edge ranges in PostReceive, once
// neighbouring ranks' halo data has landed.
type streamerActor struct {
	NoopActor
	st       *streamer.Streamer
	dom      *domain.Domain
	params   kernel.LbmParameters
	ioletRho func(ioletIndex int) float64
}

func NewStreamerActor(st *streamer.Streamer, dom *domain.Domain, params kernel.LbmParameters, ioletRho func(int) float64) *streamerActor {
	return &streamerActor{st: st, dom: dom, params: params, ioletRho: ioletRho}
}

func (a *streamerActor) PreSend() {
	for _, r := range a.dom.Ranges() {
		if r.Start >= a.dom.EdgeStart() {
			a.st.StreamAndCollide(a.params, r, a.ioletRho)
		}
	}
}

func (a *streamerActor) PreReceive() {
	for _, r := range a.dom.Ranges() {
		if r.Start < a.dom.EdgeStart() {
			a.st.StreamAndCollide(a.params, r, a.ioletRho)
		}
	}
}

func (a *streamerActor) PostReceive() {
	for _, r := range a.dom.Ranges() {
		if r.Start >= a.dom.EdgeStart() {
			a.st.PostStep(r)
		}
	}
}
