// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package stability implements StabilityMonitor (spec.md S4.8): a local
// positivity/convergence scan reduced to a single global verdict each
// iteration via a non-blocking MIN all-reduce, grounded on fem.Solver's own
// per-step residual-reduction pattern (Solver.Run's Newton-iteration
// convergence check) but driven through net.Communicator instead of
// gosl/mpi directly, so it composes with the orchestrator's Actor protocol.
package stability

import (
	"math"

	"github.com/hemelb-go/corelb/net"
)

// Status is the tri-state verdict of spec.md S4.8, ordered
// UNSTABLE < STABLE < STABLE_AND_CONVERGED so MIN reduction is correct.
type Status int

const (
	Unstable Status = iota
	Stable
	StableAndConverged
)

func (s Status) String() string {
	switch s {
	case Unstable:
		return "UNSTABLE"
	case Stable:
		return "STABLE"
	case StableAndConverged:
		return "STABLE_AND_CONVERGED"
	default:
		return "UNKNOWN"
	}
}

// Monitor implements the StabilityMonitor Actor. ConvergenceTol <= 0
// disables the convergence check (every step reports at most STABLE).
type Monitor struct {
	comm           net.Communicator
	convergenceTol float64

	localSend [1]float64
	recv      [1]float64
	req       net.Request

	Global Status // set by PostReceive once Wait has completed, spec.md S4.9 step 7
}

// NewMonitor creates a monitor driven by comm. convergenceTol is the
// relative density-change tolerance below which every site is considered
// converged (spec.md S4.8); pass 0 to disable convergence detection.
func NewMonitor(comm net.Communicator, convergenceTol float64) *Monitor {
	return &Monitor{comm: comm, convergenceTol: convergenceTol}
}

// ScanLocal computes this rank's local verdict (spec.md S4.8 "scans its
// local distributions for any value <= 0"). fOld is scanned directly for
// non-positive/NaN entries (catches both literal negatives and NaN, per
// spec); rhoOld/rhoNew (one entry per local site) drive the optional
// convergence check.
func (m *Monitor) ScanLocal(fOld []float64, rhoOld, rhoNew []float64) Status {
	for _, v := range fOld {
		if !(v > 0) { // false for v<=0 and for NaN
			return Unstable
		}
	}
	if m.convergenceTol <= 0 {
		return Stable
	}
	for i := range rhoNew {
		if rhoOld[i] == 0 {
			continue
		}
		rel := math.Abs(rhoNew[i]-rhoOld[i]) / rhoOld[i]
		if rel >= m.convergenceTol {
			return Stable
		}
	}
	return StableAndConverged
}

// RequestComms registers the non-blocking all-reduce with the iteration's
// Net aggregator (spec.md S4.9 step 1); local is this rank's ScanLocal
// result for the step.
func (m *Monitor) RequestComms(n *net.Net, local Status) {
	m.localSend[0] = float64(local)
	n.AddSend(func() net.Request {
		return m.comm.Iallreduce(net.Min, m.localSend[:], m.recv[:])
	})
}

// PostReceive reads back the reduced global verdict after Net.Wait
// completes (spec.md S4.9 step 7). Call after the orchestrator's Wait
// phase.
func (m *Monitor) PostReceive() Status {
	m.Global = Status(m.recv[0])
	return m.Global
}

// Reset sets the global verdict and the last reduced value back to STABLE
// after an instability-triggered reset (spec.md S4.7 "Reset semantics").
// Status has no separate undefined value; the next iteration starts from
// STABLE.
func (m *Monitor) Reset() {
	m.Global = Stable
	m.recv[0] = float64(Stable)
}
