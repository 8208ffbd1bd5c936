// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package iolet

import (
	"sort"

	"github.com/cpmech/gosl/chk"
	"github.com/hemelb-go/corelb/net"
)

// IoletValues implements the per-iteration IoletValues broadcast protocol of
// spec.md S4.7: for every iolet, a single controller rank evaluates v_i(t)
// once and every rank with local sites on that iolet (a "subscriber")
// receives it over net.Communicator before the streamer phase reads it.
// Controller/subscriber membership is collective: every rank must compute
// the same controllerOf/touchedBy maps (e.g. from the domain partition), so
// no handshake is needed at init beyond agreeing on those maps deterministically.
type IoletValues struct {
	comm   net.Communicator
	myRank int

	sources map[int]ValueSource // iolet index -> source, set only where this rank is controller
	values  map[int]float64     // iolet index -> current value, set for every iolet this rank touches

	sendPeers map[int][]int // peer rank -> sorted iolet indices this rank controls and peer subscribes to
	recvPeers map[int][]int // peer rank -> sorted iolet indices this rank subscribes to, controlled by peer
	sendBuf   map[int][]float64
	recvBuf   map[int][]float64
}

// NewIoletValues builds the controller/subscriber wiring for this rank.
// controllerOf maps iolet index to its controller rank; sources supplies a
// ValueSource for every iolet this rank controls (nil map entries elsewhere
// are fine — only the controller's source is ever read); touchedBy maps
// iolet index to the sorted set of ranks holding local sites on it. All
// three maps must be computed identically on every rank.
func NewIoletValues(comm net.Communicator, controllerOf map[int]int, sources map[int]ValueSource, touchedBy map[int][]int) (*IoletValues, error) {
	r := comm.Rank()
	iv := &IoletValues{
		comm:      comm,
		myRank:    r,
		sources:   make(map[int]ValueSource),
		values:    make(map[int]float64),
		sendPeers: make(map[int][]int),
		recvPeers: make(map[int][]int),
		sendBuf:   make(map[int][]float64),
		recvBuf:   make(map[int][]float64),
	}

	var ioletIdx []int
	for i := range controllerOf {
		ioletIdx = append(ioletIdx, i)
	}
	sort.Ints(ioletIdx)

	for _, i := range ioletIdx {
		ctrl := controllerOf[i]
		if ctrl == r {
			src := sources[i]
			if src == nil {
				return nil, chk.Err("iolet %d: this rank (%d) is its controller but no ValueSource was supplied", i, r)
			}
			iv.sources[i] = src
			for _, peer := range touchedBy[i] {
				if peer == r {
					continue
				}
				iv.sendPeers[peer] = append(iv.sendPeers[peer], i)
			}
			continue
		}
		for _, peer := range touchedBy[i] {
			if peer == r {
				iv.recvPeers[ctrl] = append(iv.recvPeers[ctrl], i)
				break
			}
		}
	}

	for peer, idxs := range iv.sendPeers {
		sort.Ints(idxs)
		iv.sendBuf[peer] = make([]float64, len(idxs))
	}
	for peer, idxs := range iv.recvPeers {
		sort.Ints(idxs)
		iv.recvBuf[peer] = make([]float64, len(idxs))
	}

	return iv, nil
}

// EvaluateLocal evaluates this rank's controlled iolets at time t (spec.md
// S4.7 "the controller evaluates v_i(t) once per timestep"), called during
// PreSend after the Net aggregator's RequestComms has already registered
// the posting thunks.
func (iv *IoletValues) EvaluateLocal(t float64) {
	for i, src := range iv.sources {
		iv.values[i] = src.Value(t)
	}
}

// RequestComms registers the broadcast's receive and send thunks with n
// (spec.md S4.9 step 1). Each peer gets one message carrying every iolet
// value this rank owes it, packed in sorted-index order on both ends so no
// per-value tagging is needed.
func (iv *IoletValues) RequestComms(n *net.Net) {
	for peer := range iv.recvPeers {
		peer := peer
		n.AddRecv(func() net.Request {
			return iv.comm.Irecv(net.TagIolet, peer, iv.recvBuf[peer])
		})
	}
	for peer, idxs := range iv.sendPeers {
		peer, idxs := peer, idxs
		n.AddSend(func() net.Request {
			buf := iv.sendBuf[peer]
			for k, i := range idxs {
				buf[k] = iv.values[i]
			}
			return iv.comm.Isend(net.TagIolet, peer, buf)
		})
	}
}

// PostReceive scatters each peer's received buffer back into values, keyed
// by the same sorted iolet-index order RequestComms packed it in (spec.md
// S4.9 step 7).
func (iv *IoletValues) PostReceive() {
	for peer, idxs := range iv.recvPeers {
		buf := iv.recvBuf[peer]
		for k, i := range idxs {
			iv.values[i] = buf[k]
		}
	}
}

// Value returns iolet i's current value, valid after EvaluateLocal (for a
// controlled iolet) or PostReceive (for a subscribed one) has run this
// iteration.
func (iv *IoletValues) Value(i int) float64 { return iv.values[i] }

// Reset rebroadcasts every iolet's value at the given reset time (spec.md
// S4.9 "on instability-triggered reset, iolet values ... are rebroadcast"):
// it runs EvaluateLocal at t and registers the broadcast thunks with n via
// RequestComms; the caller then drives n's Receive/Send/Wait and calls
// PostReceive exactly as for a normal iteration. Reset carries no extra
// state of its own.
func (iv *IoletValues) Reset(t float64, n *net.Net) {
	iv.EvaluateLocal(t)
	iv.RequestComms(n)
}
