// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package net

// Net is the per-iteration request aggregator of spec.md S4.9: actors
// register their send/receive posting thunks during the RequestComms phase,
// and the orchestrator drives Receive/Send/Wait at the fixed points in the
// phase schedule. Registrations are cleared after Wait so the next
// iteration starts from an empty Net.
type Net struct {
	recvFns []func() Request
	sendFns []func() Request
	reqs    []Request
}

// NewNet creates an empty aggregator.
func NewNet() *Net {
	return &Net{}
}

// AddRecv registers a receive-posting thunk, called by RequestComms
// (spec.md S4.9 step 1). The thunk itself is not invoked until Receive.
func (n *Net) AddRecv(f func() Request) {
	n.recvFns = append(n.recvFns, f)
}

// AddSend registers a send-posting thunk, called by RequestComms (spec.md
// S4.9 step 1) but not invoked until Send (step 4) — by which point PreSend
// (step 3) has filled whatever buffer the thunk packs from.
func (n *Net) AddSend(f func() Request) {
	n.sendFns = append(n.sendFns, f)
}

// Receive posts every registered Irecv (spec.md S4.9 step 2).
func (n *Net) Receive() {
	for _, f := range n.recvFns {
		n.reqs = append(n.reqs, f())
	}
}

// Send posts every registered Isend (spec.md S4.9 step 4).
func (n *Net) Send() {
	for _, f := range n.sendFns {
		n.reqs = append(n.reqs, f())
	}
}

// Wait completes every outstanding request (spec.md S4.9 step 6) and
// resets the aggregator for the next iteration.
func (n *Net) Wait() error {
	var firstErr error
	for _, r := range n.reqs {
		if err := r.Wait(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	n.recvFns = n.recvFns[:0]
	n.sendFns = n.sendFns[:0]
	n.reqs = n.reqs[:0]
	return firstErr
}
