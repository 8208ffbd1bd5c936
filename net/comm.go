// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package net implements NeighbourExchange (spec.md S4.4) and the Net
// per-iteration request aggregator used by the orchestrator (spec.md
// S4.9). Both ride on a small Communicator interface so the numerical
// core can be exercised without a live MPI runtime; the production
// adapter (GoslCommunicator, in mpi_adapter.go) wraps
// github.com/cpmech/gosl/mpi.
package net

// ReduceOp names a reduction operator for Iallreduce.
type ReduceOp int

const (
	Min ReduceOp = iota
	Sum
)

// Request is a handle to an in-flight non-blocking operation.
type Request interface {
	Wait() error
}

// Communicator is the minimal non-blocking transport the core needs:
// point-to-point send/receive of float64 buffers, tagged per logical
// channel (spec.md S5 "tags must be unique per logical channel"), and an
// all-reduce collective for the stability scalar (spec.md S4.8).
type Communicator interface {
	Rank() int
	Size() int
	Isend(tag, to int, buf []float64) Request
	Irecv(tag, from int, buf []float64) Request
	Iallreduce(op ReduceOp, send, recv []float64) Request
}

// Channel tags, one per logical protocol (spec.md S5 ordering note).
const (
	TagHalo      = 1
	TagIolet     = 2
	TagStability = 3
)
